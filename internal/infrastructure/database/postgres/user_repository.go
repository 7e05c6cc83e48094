package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tour-booking/internal/domain/user"
	"tour-booking/internal/infrastructure/database/postgres/models"
	appErrors "tour-booking/pkg/errors"
)

// UserRepository serves both the session lifecycle and the admin user
// resource. Deactivated users are invisible to every query.
type UserRepository struct {
	*Store[user.User, models.UserModel]
	db *DB
}

var _ user.Repository = (*UserRepository)(nil)

func activeUsers(tx *gorm.DB) *gorm.DB {
	return tx.Where(clause.Eq{Column: column("active"), Value: true})
}

func NewUserRepository(db *DB) (*UserRepository, error) {
	store, err := NewStore(db,
		Mapper[user.User, models.UserModel]{ToModel: toUserModel, ToEntity: toUserEntity},
		WithBaseScope(activeUsers),
		WithSoftDelete("active"),
	)
	if err != nil {
		return nil, err
	}
	return &UserRepository{Store: store, db: db}, nil
}

func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	u.Email = strings.ToLower(u.Email)
	return r.Store.Insert(ctx, u)
}

func (r *UserRepository) GetByID(ctx context.Context, userID uuid.UUID) (*user.User, error) {
	u, err := r.Store.FindByID(ctx, userID)
	if errors.Is(err, appErrors.ErrNotFound) {
		return nil, user.ErrUserNotFound
	}
	return u, err
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.getBy(ctx, "email", strings.ToLower(email))
}

func (r *UserRepository) GetByResetHash(ctx context.Context, hash string) (*user.User, error) {
	return r.getBy(ctx, "password_reset_hash", hash)
}

func (r *UserRepository) GetByVerifyHash(ctx context.Context, hash string) (*user.User, error) {
	return r.getBy(ctx, "verify_hash", hash)
}

func (r *UserRepository) getBy(ctx context.Context, col string, value string) (*user.User, error) {
	var dbModel models.UserModel
	err := r.Store.base(ctx).
		Where(clause.Eq{Column: column(col), Value: value}).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, user.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by %s: %w", col, err)
	}

	return toUserEntity(&dbModel), nil
}

func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	u.Email = strings.ToLower(u.Email)
	err := r.Store.UpdateByID(ctx, u.ID, u)
	if errors.Is(err, appErrors.ErrNotFound) {
		return user.ErrUserNotFound
	}
	return err
}

func (r *UserRepository) Deactivate(ctx context.Context, userID uuid.UUID) error {
	err := r.Store.DeleteByID(ctx, userID)
	if errors.Is(err, appErrors.ErrNotFound) {
		return user.ErrUserNotFound
	}
	return err
}

// ClearExpiredTokens drops reset and verification hashes that can no longer
// be redeemed.
func (r *UserRepository) ClearExpiredTokens(ctx context.Context, now time.Time) (int64, error) {
	var total int64
	err := r.db.conn(ctx).Transaction(func(tx *gorm.DB) error {
		reset := tx.Model(&models.UserModel{}).
			Where("password_reset_expires IS NOT NULL AND password_reset_expires < ?", now).
			Updates(map[string]interface{}{
				"password_reset_hash":    nil,
				"password_reset_expires": nil,
			})
		if reset.Error != nil {
			return reset.Error
		}

		verify := tx.Model(&models.UserModel{}).
			Where("verify_expires IS NOT NULL AND verify_expires < ?", now).
			Updates(map[string]interface{}{
				"verify_hash":    nil,
				"verify_expires": nil,
			})
		if verify.Error != nil {
			return verify.Error
		}

		total = reset.RowsAffected + verify.RowsAffected
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to clear expired tokens: %w", err)
	}

	return total, nil
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func toUserModel(u *user.User) *models.UserModel {
	return &models.UserModel{
		ID:                   u.ID,
		Name:                 u.Name,
		Email:                u.Email,
		Photo:                u.Photo,
		Role:                 string(u.Role),
		PasswordHash:         u.PasswordHash,
		PasswordChangedAt:    u.PasswordChangedAt,
		PasswordResetHash:    optionalString(u.PasswordResetHash),
		PasswordResetExpires: u.PasswordResetExpires,
		VerifyHash:           optionalString(u.VerifyHash),
		VerifyExpires:        u.VerifyExpires,
		Verified:             u.Verified,
		Active:               u.Active,
		CreatedAt:            u.CreatedAt,
		UpdatedAt:            u.UpdatedAt,
	}
}

func toUserEntity(m *models.UserModel) *user.User {
	return &user.User{
		ID:                   m.ID,
		Name:                 m.Name,
		Email:                m.Email,
		Photo:                m.Photo,
		Role:                 user.Role(m.Role),
		PasswordHash:         m.PasswordHash,
		PasswordChangedAt:    m.PasswordChangedAt,
		PasswordResetHash:    stringValue(m.PasswordResetHash),
		PasswordResetExpires: m.PasswordResetExpires,
		VerifyHash:           stringValue(m.VerifyHash),
		VerifyExpires:        m.VerifyExpires,
		Verified:             m.Verified,
		Active:               m.Active,
		CreatedAt:            m.CreatedAt,
		UpdatedAt:            m.UpdatedAt,
	}
}
