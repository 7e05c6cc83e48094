package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"tour-booking/internal/config"
	"tour-booking/internal/credential"
	domainUser "tour-booking/internal/domain/user"
	"tour-booking/internal/domain/user/mocks"
	appErrors "tour-booking/pkg/errors"
)

func newGate(t *testing.T, now time.Time) (*Gate, *credential.Codec, *mocks.MockRepository) {
	t.Helper()

	codec, err := credential.NewCodec(config.JWTConfig{
		Secret:     "gate-test-secret",
		ExpiresIn:  time.Hour,
		BcryptCost: bcrypt.MinCost,
	}, credential.WithClock(func() time.Time { return now }))
	require.NoError(t, err)

	repo := mocks.NewMockRepository(gomock.NewController(t))
	return NewGate(codec, repo), codec, repo
}

func TestGate_Authenticate(t *testing.T) {
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	id := uuid.New()

	tests := []struct {
		name    string
		stored  *domainUser.User
		repoErr error
		wantErr error
	}{
		{
			name:   "active user",
			stored: &domainUser.User{ID: id, Role: domainUser.RoleUser, Active: true},
		},
		{
			name:    "user gone",
			repoErr: domainUser.ErrUserNotFound,
			wantErr: appErrors.ErrUserNoLongerExists,
		},
		{
			name:    "user deactivated",
			stored:  &domainUser.User{ID: id, Active: false},
			wantErr: appErrors.ErrUserNoLongerExists,
		},
		{
			name: "password changed after issue",
			stored: &domainUser.User{
				ID:                id,
				Active:            true,
				PasswordChangedAt: timePtr(now.Add(time.Minute)),
			},
			wantErr: appErrors.ErrPasswordChanged,
		},
		{
			name: "password changed before issue",
			stored: &domainUser.User{
				ID:                id,
				Active:            true,
				PasswordChangedAt: timePtr(now.Add(-time.Second)),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gate, codec, repo := newGate(t, now)
			token, err := codec.IssueToken(id)
			require.NoError(t, err)

			repo.EXPECT().GetByID(gomock.Any(), id).Return(tt.stored, tt.repoErr)

			user, err := gate.Authenticate(context.Background(), token)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, appErrors.KindUnauthenticated, appErrors.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, id, user.ID)
		})
	}
}

func TestGate_Authenticate_BadTokens(t *testing.T) {
	now := time.Now()
	gate, _, _ := newGate(t, now)

	_, err := gate.Authenticate(context.Background(), "")
	assert.ErrorIs(t, err, appErrors.ErrNotLoggedIn)

	_, err = gate.Authenticate(context.Background(), "not.a.token")
	assert.Equal(t, appErrors.KindUnauthenticated, appErrors.KindOf(err))

	other, err := credential.NewCodec(config.JWTConfig{
		Secret:     "another-secret",
		ExpiresIn:  time.Hour,
		BcryptCost: bcrypt.MinCost,
	})
	require.NoError(t, err)
	forged, err := other.IssueToken(uuid.New())
	require.NoError(t, err)

	_, err = gate.Authenticate(context.Background(), forged)
	assert.ErrorIs(t, err, appErrors.ErrInvalidToken)
}

func TestAuthorize(t *testing.T) {
	guide := &domainUser.User{Role: domainUser.RoleGuide}

	assert.NoError(t, Authorize(guide, domainUser.RoleGuide, domainUser.RoleLeadGuide))
	assert.ErrorIs(t, Authorize(guide, domainUser.RoleAdmin), appErrors.ErrInsufficientPermissions)
	assert.ErrorIs(t, Authorize(nil, domainUser.RoleAdmin), appErrors.ErrNotLoggedIn)
}

func timePtr(t time.Time) *time.Time { return &t }
