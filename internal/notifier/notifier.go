package notifier

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"tour-booking/internal/config"
)

type Template string

const (
	TemplateWelcome       Template = "welcome"
	TemplateEmailVerify   Template = "emailVerify"
	TemplatePasswordReset Template = "passwordReset"
)

var subjects = map[Template]string{
	TemplateWelcome:       "Welcome to the Natours family!",
	TemplateEmailVerify:   "Please verify your account",
	TemplatePasswordReset: "Your password reset token is valid for 10 minutes",
}

// Recipient is the user a notification is addressed to.
type Recipient struct {
	Name  string
	Email string
}

func (r Recipient) FirstName() string {
	if fields := strings.Fields(r.Name); len(fields) > 0 {
		return fields[0]
	}
	return r.Name
}

//go:generate mockgen -source=notifier.go -destination=mocks/notifier_mock.go -package=mocks

// Notifier delivers templated account emails. Failures are reported as
// pkg/errors delivery errors.
type Notifier interface {
	Send(ctx context.Context, tmpl Template, to Recipient, vars map[string]string) error
}

//go:embed templates/*.html
var templateFS embed.FS

// Message is a rendered notification.
type Message struct {
	Template Template `json:"template"`
	To       string   `json:"to"`
	Name     string   `json:"name"`
	Subject  string   `json:"subject"`
	HTML     string   `json:"html"`
}

type templateData struct {
	Subject   string
	FirstName string
	URL       string
	Vars      map[string]string
}

// Render executes tmpl inside the shared layout.
func Render(tmpl Template, to Recipient, vars map[string]string) (*Message, error) {
	subject, ok := subjects[tmpl]
	if !ok {
		return nil, fmt.Errorf("unknown template %q", tmpl)
	}

	t, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+string(tmpl)+".html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", tmpl, err)
	}

	var buf bytes.Buffer
	err = t.ExecuteTemplate(&buf, "layout", templateData{
		Subject:   subject,
		FirstName: to.FirstName(),
		URL:       vars["url"],
		Vars:      vars,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render template %s: %w", tmpl, err)
	}

	return &Message{
		Template: tmpl,
		To:       to.Email,
		Name:     to.Name,
		Subject:  subject,
		HTML:     buf.String(),
	}, nil
}

// New picks the delivery driver named in cfg.Notifier.Driver. publisher is
// only required by the "mqtt" driver.
func New(cfg *config.Config, publisher Publisher) (Notifier, error) {
	switch cfg.Notifier.Driver {
	case "smtp":
		return NewSMTPNotifier(cfg.SMTP), nil
	case "mqtt":
		if publisher == nil {
			return nil, fmt.Errorf("mqtt notifier requires a connected publisher")
		}
		return NewMQTTNotifier(publisher, cfg.Notifier.Topic), nil
	case "log", "":
		return NewLogNotifier(), nil
	default:
		return nil, fmt.Errorf("unknown notifier driver %q", cfg.Notifier.Driver)
	}
}
