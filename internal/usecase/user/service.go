package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tour-booking/internal/config"
	"tour-booking/internal/credential"
	domainUser "tour-booking/internal/domain/user"
	storage "tour-booking/internal/infrastructure/storage/s3"
	"tour-booking/internal/logger"
	"tour-booking/internal/notifier"
	appErrors "tour-booking/pkg/errors"
	"tour-booking/pkg/utils"
)

// Presigner signs direct-to-bucket uploads.
type Presigner interface {
	PresignUpload(ctx context.Context, key, contentType string) (*storage.Upload, error)
}

// Service implements the account and session use cases.
type Service struct {
	userRepo  domainUser.Repository
	codec     *credential.Codec
	notifier  notifier.Notifier
	presigner Presigner
	config    *config.Config
}

// NewService creates a new user service. presigner may be nil when no
// bucket is configured.
func NewService(
	userRepo domainUser.Repository,
	codec *credential.Codec,
	n notifier.Notifier,
	presigner Presigner,
	cfg *config.Config,
) *Service {
	return &Service{
		userRepo:  userRepo,
		codec:     codec,
		notifier:  n,
		presigner: presigner,
		config:    cfg,
	}
}

func validationError(err error) error {
	var appErr *appErrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return appErrors.Validation(fmt.Sprintf("invalid input data. %s", err), err)
}

func (s *Service) Signup(ctx context.Context, req *SignupRequest) (*Session, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, validationError(err)
	}

	if err := utils.ValidatePassword(req.Password, req.PasswordConfirm); err != nil {
		return nil, err
	}

	email, err := utils.ValidateAndSanitizeEmail(req.Email)
	if err != nil {
		return nil, appErrors.Validation("please provide a valid email", err)
	}

	role := domainUser.RoleUser
	if req.Role != "" {
		role = domainUser.Role(req.Role)
	}
	if role == domainUser.RoleAdmin {
		logger.Warn("Signup attempted with admin role",
			zap.String("email", email),
			zap.String("event", "signup_admin_role_rejected"),
		)
		return nil, domainUser.ErrRoleNotAssignable
	}

	hashedPassword, err := s.codec.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	verify, err := s.codec.GenerateOneTimeToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate verify token: %w", err)
	}

	user := &domainUser.User{
		Name:          utils.SanitizeString(req.Name),
		Email:         email,
		Photo:         domainUser.DefaultPhoto,
		Role:          role,
		PasswordHash:  hashedPassword,
		VerifyHash:    verify.Hash,
		VerifyExpires: &verify.ExpiresAt,
		Active:        true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.codec.IssueToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	url := fmt.Sprintf("%s/me/%s", s.baseURL(), verify.Plain)
	if err := s.notifier.Send(ctx, notifier.TemplateEmailVerify, recipientOf(user), map[string]string{"url": url}); err != nil {
		logger.Error("Failed to send verification email",
			zap.Error(err),
			zap.String("user_id", user.ID.String()),
			zap.String("event", "verify_email_failed"),
		)
	}

	logger.Info("User signed up",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)),
		zap.String("event", "user_signed_up"),
	)

	return &Session{Token: token, User: user}, nil
}

func (s *Service) Login(ctx context.Context, req *LoginRequest) (*Session, error) {
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return nil, appErrors.Validation("please provide email and password", nil)
	}

	user, err := s.userRepo.GetByEmail(ctx, utils.SanitizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, domainUser.ErrUserNotFound) {
			logger.Warn("Login attempt with unknown email",
				zap.String("event", "login_failed_unknown_email"),
			)
			return nil, appErrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.codec.VerifyPassword(req.Password, user.PasswordHash) {
		logger.Warn("Login attempt with invalid password",
			zap.String("user_id", user.ID.String()),
			zap.String("event", "login_failed_invalid_password"),
		)
		return nil, appErrors.ErrInvalidCredentials
	}

	token, err := s.codec.IssueToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	logger.Info("User logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("event", "login_success"),
	)

	return &Session{Token: token, User: user}, nil
}

func (s *Service) ForgotPassword(ctx context.Context, req *ForgotPasswordRequest) error {
	if err := utils.ValidateStruct(req); err != nil {
		return validationError(err)
	}

	user, err := s.userRepo.GetByEmail(ctx, utils.SanitizeEmail(req.Email))
	if err != nil {
		return err
	}

	reset, err := s.codec.GenerateOneTimeToken()
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}

	user.PasswordResetHash = reset.Hash
	user.PasswordResetExpires = &reset.ExpiresAt
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	url := fmt.Sprintf("%s/api/v1/users/resetPassword/%s", s.baseURL(), reset.Plain)
	if err := s.notifier.Send(ctx, notifier.TemplatePasswordReset, recipientOf(user), map[string]string{"url": url}); err != nil {
		logger.Error("Failed to send password reset email",
			zap.Error(err),
			zap.String("user_id", user.ID.String()),
			zap.String("event", "password_reset_email_failed"),
		)

		user.ClearPasswordReset()
		if clearErr := s.userRepo.Update(ctx, user); clearErr != nil {
			logger.Error("Failed to clear password reset token",
				zap.Error(clearErr),
				zap.String("user_id", user.ID.String()),
			)
		}

		if appErrors.KindOf(err) == appErrors.KindDelivery {
			return err
		}
		return appErrors.Delivery(err)
	}

	logger.Info("Password reset token sent",
		zap.String("user_id", user.ID.String()),
		zap.String("event", "password_reset_requested"),
	)

	return nil
}

func (s *Service) ResetPassword(ctx context.Context, token string, req *ResetPasswordRequest) (*Session, error) {
	user, err := s.userRepo.GetByResetHash(ctx, credential.HashOneTimeToken(token))
	if err != nil {
		if errors.Is(err, domainUser.ErrUserNotFound) {
			return nil, appErrors.ErrOneTimeTokenInvalid
		}
		return nil, err
	}

	if !s.codec.VerifyOneTimeToken(token, user.PasswordResetHash, user.PasswordResetExpires) {
		return nil, appErrors.ErrOneTimeTokenInvalid
	}

	if err := utils.ValidatePassword(req.Password, req.PasswordConfirm); err != nil {
		return nil, err
	}

	if err := s.setPassword(ctx, user, req.Password); err != nil {
		return nil, err
	}

	logger.Info("Password reset",
		zap.String("user_id", user.ID.String()),
		zap.String("event", "password_reset"),
	)

	return s.session(user)
}

func (s *Service) UpdatePassword(ctx context.Context, userID uuid.UUID, req *UpdatePasswordRequest) (*Session, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, validationError(err)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !s.codec.VerifyPassword(req.PasswordCurrent, user.PasswordHash) {
		logger.Warn("Password update with wrong current password",
			zap.String("user_id", user.ID.String()),
			zap.String("event", "password_update_failed"),
		)
		return nil, appErrors.NewAppError(appErrors.KindUnauthenticated, appErrors.ErrInvalidCredentials.Code, "your current password is wrong", appErrors.ErrInvalidCredentials)
	}

	if err := utils.ValidatePassword(req.Password, req.PasswordConfirm); err != nil {
		return nil, err
	}

	if err := s.setPassword(ctx, user, req.Password); err != nil {
		return nil, err
	}

	logger.Info("Password updated",
		zap.String("user_id", user.ID.String()),
		zap.String("event", "password_updated"),
	)

	return s.session(user)
}

// VerifyEmail redeems a verification token, marks the account verified and
// signs the user in.
func (s *Service) VerifyEmail(ctx context.Context, token string) (*Session, error) {
	user, err := s.userRepo.GetByVerifyHash(ctx, credential.HashOneTimeToken(token))
	if err != nil {
		if errors.Is(err, domainUser.ErrUserNotFound) {
			return nil, appErrors.ErrOneTimeTokenInvalid
		}
		return nil, err
	}

	if !s.codec.VerifyOneTimeToken(token, user.VerifyHash, user.VerifyExpires) {
		return nil, appErrors.ErrOneTimeTokenInvalid
	}

	user.Verified = true
	user.ClearVerification()
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/me", s.baseURL())
	if err := s.notifier.Send(ctx, notifier.TemplateWelcome, recipientOf(user), map[string]string{"url": url}); err != nil {
		logger.Warn("Failed to send welcome email",
			zap.Error(err),
			zap.String("user_id", user.ID.String()),
		)
	}

	logger.Info("Email verified",
		zap.String("user_id", user.ID.String()),
		zap.String("event", "email_verified"),
	)

	return s.session(user)
}

func (s *Service) GetMe(ctx context.Context, userID uuid.UUID) (*domainUser.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

func (s *Service) UpdateMe(ctx context.Context, userID uuid.UUID, req *UpdateMeRequest) (*domainUser.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := req.Apply(user); err != nil {
		return nil, err
	}

	if err := utils.ValidateStruct(user); err != nil {
		return nil, validationError(err)
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	logger.Info("Profile updated",
		zap.String("user_id", user.ID.String()),
		zap.String("event", "profile_updated"),
	)

	return user, nil
}

func (s *Service) DeleteMe(ctx context.Context, userID uuid.UUID) error {
	if err := s.userRepo.Deactivate(ctx, userID); err != nil {
		return err
	}

	logger.Info("Account deactivated",
		zap.String("user_id", userID.String()),
		zap.String("event", "account_deactivated"),
	)
	return nil
}

// PhotoUploadURL presigns an upload for the user's next profile photo. The
// returned key is then saved through UpdateMe.
func (s *Service) PhotoUploadURL(ctx context.Context, userID uuid.UUID) (*storage.Upload, error) {
	if s.presigner == nil {
		return nil, appErrors.New(appErrors.KindUnknown, "UPLOADS_DISABLED", "photo uploads are not configured")
	}
	return s.presigner.PresignUpload(ctx, storage.UserPhotoKey(userID.String(), s.codec.Now()), "image/jpeg")
}

func (s *Service) setPassword(ctx context.Context, user *domainUser.User, password string) error {
	hash, err := s.codec.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.SetPassword(hash, s.codec.Now())
	return s.userRepo.Update(ctx, user)
}

func (s *Service) session(user *domainUser.User) (*Session, error) {
	token, err := s.codec.IssueToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &Session{Token: token, User: user}, nil
}

func (s *Service) baseURL() string {
	return strings.TrimRight(s.config.Server.BaseURL, "/")
}

func recipientOf(u *domainUser.User) notifier.Recipient {
	return notifier.Recipient{Name: u.Name, Email: u.Email}
}
