package user

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleGuide     Role = "guide"
	RoleLeadGuide Role = "lead-guide"
	RoleAdmin     Role = "admin"
)

const DefaultPhoto = "default.jpeg"

// User represents a user entity in the domain
type User struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name" validate:"required,max=100"`
	Email string    `json:"email" validate:"required,email"`
	Photo string    `json:"photo"`
	Role  Role      `json:"role" validate:"required,user_role"`

	PasswordHash         string     `json:"-"`
	PasswordChangedAt    *time.Time `json:"-"`
	PasswordResetHash    string     `json:"-"`
	PasswordResetExpires *time.Time `json:"-"`
	VerifyHash           string     `json:"-"`
	VerifyExpires        *time.Time `json:"-"`

	Verified  bool      `json:"verified"`
	Active    bool      `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ChangedPasswordAfter reports whether the password changed after a token
// issued at iat (unix seconds).
func (u *User) ChangedPasswordAfter(iat int64) bool {
	if u.PasswordChangedAt == nil {
		return false
	}
	return iat < u.PasswordChangedAt.Unix()
}

// SetPassword stores a new hash and invalidates every token issued before now.
// The change time is backdated one second so a token issued right after the
// change is still accepted.
func (u *User) SetPassword(hash string, now time.Time) {
	changed := now.Add(-time.Second)
	u.PasswordHash = hash
	u.PasswordChangedAt = &changed
	u.ClearPasswordReset()
}

func (u *User) ClearPasswordReset() {
	u.PasswordResetHash = ""
	u.PasswordResetExpires = nil
}

func (u *User) ClearVerification() {
	u.VerifyHash = ""
	u.VerifyExpires = nil
}

func (u *User) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}
