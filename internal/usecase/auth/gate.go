package auth

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"tour-booking/internal/credential"
	domainUser "tour-booking/internal/domain/user"
	"tour-booking/internal/logger"
	appErrors "tour-booking/pkg/errors"
)

// Gate resolves session tokens to the users they belong to.
type Gate struct {
	codec *credential.Codec
	users domainUser.Repository
}

func NewGate(codec *credential.Codec, users domainUser.Repository) *Gate {
	return &Gate{codec: codec, users: users}
}

// Authenticate returns the active user a token was issued to. The token is
// rejected once its user is gone or has changed password since it was issued.
func (g *Gate) Authenticate(ctx context.Context, token string) (*domainUser.User, error) {
	if token == "" {
		return nil, appErrors.ErrNotLoggedIn
	}

	claims, err := g.codec.VerifyToken(token)
	if err != nil {
		return nil, err
	}

	user, err := g.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domainUser.ErrUserNotFound) {
			logger.Warn("Token presented for missing user",
				zap.String("user_id", claims.UserID.String()),
				zap.String("event", "auth_user_gone"),
			)
			return nil, appErrors.ErrUserNoLongerExists
		}
		return nil, err
	}

	if !user.Active {
		return nil, appErrors.ErrUserNoLongerExists
	}

	if user.ChangedPasswordAfter(claims.IssuedAtUnix()) {
		logger.Warn("Token issued before password change",
			zap.String("user_id", user.ID.String()),
			zap.String("event", "auth_password_changed"),
		)
		return nil, appErrors.ErrPasswordChanged
	}

	return user, nil
}

// Authorize fails with a Forbidden error unless user holds one of roles.
func Authorize(user *domainUser.User, roles ...domainUser.Role) error {
	if user == nil {
		return appErrors.ErrNotLoggedIn
	}
	if !user.HasRole(roles...) {
		return appErrors.ErrInsufficientPermissions
	}
	return nil
}
