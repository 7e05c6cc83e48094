package user

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"tour-booking/internal/logger"
)

// StartTokenCleanupJob clears expired reset and verification tokens on the
// given cron schedule until ctx is done or the returned cron is stopped.
func (s *Service) StartTokenCleanupJob(ctx context.Context, schedule string) (*cron.Cron, error) {
	c := cron.New()

	if _, err := c.AddFunc(schedule, func() { s.cleanupExpiredTokens(ctx) }); err != nil {
		return nil, fmt.Errorf("invalid token cleanup schedule %q: %w", schedule, err)
	}

	c.Start()
	logger.Info("Token cleanup job started",
		zap.String("schedule", schedule),
	)

	go func() {
		<-ctx.Done()
		<-c.Stop().Done()
		logger.Info("Token cleanup job stopped")
	}()

	return c, nil
}

func (s *Service) cleanupExpiredTokens(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	cleared, err := s.userRepo.ClearExpiredTokens(ctx, s.codec.Now())
	if err != nil {
		logger.Error("Failed to clear expired tokens", zap.Error(err))
		return
	}

	logger.Debug("Expired tokens cleared",
		zap.Int64("cleared", cleared),
		zap.Time("at", time.Now()),
	)
}
