package notifier

import (
	"context"

	"go.uber.org/zap"

	"tour-booking/internal/logger"
	appErrors "tour-booking/pkg/errors"
)

// LogNotifier writes notifications to the application log instead of
// delivering them. Used in development.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Send(_ context.Context, tmpl Template, to Recipient, vars map[string]string) error {
	msg, err := Render(tmpl, to, vars)
	if err != nil {
		return appErrors.Delivery(err)
	}

	logger.Info("Notification",
		zap.String("template", string(tmpl)),
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("url", vars["url"]),
		zap.String("event", "notification_logged"),
	)
	return nil
}
