package notifier

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"

	"go.uber.org/zap"

	"tour-booking/internal/config"
	"tour-booking/internal/logger"
	appErrors "tour-booking/pkg/errors"
)

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPNotifier sends rendered messages through an SMTP relay.
type SMTPNotifier struct {
	cfg      config.SMTPConfig
	sendMail sendMailFunc
}

func NewSMTPNotifier(cfg config.SMTPConfig) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg, sendMail: smtp.SendMail}
}

func (n *SMTPNotifier) Send(ctx context.Context, tmpl Template, to Recipient, vars map[string]string) error {
	if err := ctx.Err(); err != nil {
		return appErrors.Delivery(err)
	}

	msg, err := Render(tmpl, to, vars)
	if err != nil {
		return appErrors.Delivery(err)
	}

	addr := net.JoinHostPort(n.cfg.Host, strconv.Itoa(n.cfg.Port))
	var auth smtp.Auth
	if n.cfg.User != "" {
		auth = smtp.PlainAuth("", n.cfg.User, n.cfg.Password, n.cfg.Host)
	}

	if err := n.sendMail(addr, auth, n.cfg.From, []string{msg.To}, n.compose(msg)); err != nil {
		logger.Error("Failed to send email",
			zap.Error(err),
			zap.String("template", string(tmpl)),
			zap.String("event", "email_send_failed"),
		)
		return appErrors.Delivery(fmt.Errorf("smtp send: %w", err))
	}

	logger.Info("Email sent",
		zap.String("template", string(tmpl)),
		zap.String("event", "email_sent"),
	)
	return nil
}

func (n *SMTPNotifier) compose(msg *Message) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", n.cfg.From)
	fmt.Fprintf(&buf, "To: %s\r\n", msg.To)
	fmt.Fprintf(&buf, "Subject: %s\r\n", msg.Subject)
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(msg.HTML)
	return buf.Bytes()
}
