package notifier

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"tour-booking/internal/logger"
	appErrors "tour-booking/pkg/errors"
)

// Publisher is the part of pkg/mqtt.Client the notifier needs.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload []byte) error
}

// MQTTNotifier hands rendered messages to a mail worker over MQTT.
type MQTTNotifier struct {
	publisher Publisher
	topic     string
}

func NewMQTTNotifier(publisher Publisher, topic string) *MQTTNotifier {
	return &MQTTNotifier{publisher: publisher, topic: topic}
}

func (n *MQTTNotifier) Send(ctx context.Context, tmpl Template, to Recipient, vars map[string]string) error {
	if err := ctx.Err(); err != nil {
		return appErrors.Delivery(err)
	}

	msg, err := Render(tmpl, to, vars)
	if err != nil {
		return appErrors.Delivery(err)
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return appErrors.Delivery(fmt.Errorf("marshal mail job: %w", err))
	}

	// QoS 1: the mail worker must see every job at least once.
	if err := n.publisher.Publish(n.topic, 1, false, payload); err != nil {
		logger.Error("Failed to publish mail job",
			zap.Error(err),
			zap.String("topic", n.topic),
			zap.String("template", string(tmpl)),
			zap.String("event", "mail_job_publish_failed"),
		)
		return appErrors.Delivery(fmt.Errorf("publish mail job: %w", err))
	}

	logger.Debug("Mail job published",
		zap.String("topic", n.topic),
		zap.String("template", string(tmpl)),
	)
	return nil
}
