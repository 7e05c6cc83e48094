package user

import (
	"strings"

	"github.com/google/uuid"

	domainResource "tour-booking/internal/domain/resource"
	domainUser "tour-booking/internal/domain/user"
	"tour-booking/internal/usecase/resource"
	appErrors "tour-booking/pkg/errors"
	"tour-booking/pkg/utils"
)

type SignupRequest struct {
	Name            string `json:"name" validate:"required,max=100"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required"`
	Role            string `json:"role" validate:"omitempty,user_role"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required"`
}

type UpdatePasswordRequest struct {
	PasswordCurrent string `json:"passwordCurrent" validate:"required"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required"`
}

// UpdateMeRequest carries the profile fields a user may change on their own
// account. The password fields are only decoded so they can be refused.
type UpdateMeRequest struct {
	Name            *string `json:"name" validate:"omitempty,max=100"`
	Email           *string `json:"email" validate:"omitempty,email"`
	Photo           *string `json:"photo" validate:"omitempty,max=255"`
	Password        *string `json:"password"`
	PasswordConfirm *string `json:"passwordConfirm"`
}

func (r *UpdateMeRequest) Apply(u *domainUser.User) error {
	if r.Password != nil || r.PasswordConfirm != nil {
		return domainUser.ErrPasswordFieldsInMe
	}
	if r.Name != nil {
		u.Name = utils.SanitizeString(*r.Name)
	}
	if r.Email != nil {
		u.Email = utils.SanitizeEmail(*r.Email)
	}
	if r.Photo != nil {
		u.Photo = strings.TrimSpace(*r.Photo)
	}
	return nil
}

// Patch is the admin update of a user. Passwords are never changed here.
type Patch struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Photo    *string `json:"photo"`
	Role     *string `json:"role"`
	Verified *bool   `json:"verified"`
	Password *string `json:"password"`
}

func (p *Patch) Apply(u *domainUser.User) error {
	if p.Password != nil {
		return appErrors.Validation("this route is not for password updates", nil)
	}
	if p.Name != nil {
		u.Name = utils.SanitizeString(*p.Name)
	}
	if p.Email != nil {
		u.Email = utils.SanitizeEmail(*p.Email)
	}
	if p.Photo != nil {
		u.Photo = strings.TrimSpace(*p.Photo)
	}
	if p.Role != nil {
		u.Role = domainUser.Role(*p.Role)
	}
	if p.Verified != nil {
		u.Verified = *p.Verified
	}
	return nil
}

// Session is a signed-in user together with their session token.
type Session struct {
	Token string
	User  *domainUser.User
}

// NewAdminService builds the admin user resource. Accounts are only created
// through Signup, so it carries no create hooks.
func NewAdminService(store domainResource.Store[domainUser.User], maxLimit int) *resource.Service[domainUser.User] {
	return resource.NewService[domainUser.User]("user", store,
		func(u *domainUser.User) uuid.UUID { return u.ID },
		resource.WithMaxLimit[domainUser.User](maxLimit),
	)
}
