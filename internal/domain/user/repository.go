package user

import (
	"context"
	"time"

	"github.com/google/uuid"
)

//go:generate mockgen -source=repository.go -destination=mocks/repository_mock.go -package=mocks

// Repository defines the account operations of the session lifecycle.
// Inactive users are invisible to every lookup.
type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, userID uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByResetHash(ctx context.Context, hash string) (*User, error)
	GetByVerifyHash(ctx context.Context, hash string) (*User, error)
	Update(ctx context.Context, user *User) error
	Deactivate(ctx context.Context, userID uuid.UUID) error
	ClearExpiredTokens(ctx context.Context, now time.Time) (int64, error)
}
