package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tour-booking/internal/config"
	appErrors "tour-booking/pkg/errors"
)

var jonas = Recipient{Name: "Jonas Schmedtmann", Email: "jonas@example.com"}

func TestRender(t *testing.T) {
	msg, err := Render(TemplatePasswordReset, jonas, map[string]string{"url": "http://localhost/reset/abc"})
	require.NoError(t, err)

	assert.Equal(t, "jonas@example.com", msg.To)
	assert.Equal(t, subjects[TemplatePasswordReset], msg.Subject)
	assert.Contains(t, msg.HTML, "Hi Jonas,")
	assert.Contains(t, msg.HTML, `href="http://localhost/reset/abc"`)

	_, err = Render(Template("invoice"), jonas, nil)
	assert.Error(t, err)
}

func TestRender_EscapesVariables(t *testing.T) {
	msg, err := Render(TemplateWelcome, Recipient{Name: "<b>Eve</b>", Email: "eve@example.com"}, nil)
	require.NoError(t, err)
	assert.NotContains(t, msg.HTML, "<b>Eve</b>")
}

type fakePublisher struct {
	topic   string
	qos     byte
	payload []byte
	err     error
}

func (f *fakePublisher) Publish(topic string, qos byte, _ bool, payload []byte) error {
	f.topic, f.qos, f.payload = topic, qos, payload
	return f.err
}

func TestMQTTNotifier_Send(t *testing.T) {
	pub := &fakePublisher{}
	n := NewMQTTNotifier(pub, "tour-booking/mail")

	err := n.Send(context.Background(), TemplateEmailVerify, jonas, map[string]string{"url": "http://localhost/me/tok"})
	require.NoError(t, err)

	assert.Equal(t, "tour-booking/mail", pub.topic)
	assert.Equal(t, byte(1), pub.qos)

	var job Message
	require.NoError(t, json.Unmarshal(pub.payload, &job))
	assert.Equal(t, TemplateEmailVerify, job.Template)
	assert.Equal(t, "jonas@example.com", job.To)
	assert.Contains(t, job.HTML, "http://localhost/me/tok")
}

func TestMQTTNotifier_Send_PublishFailure(t *testing.T) {
	n := NewMQTTNotifier(&fakePublisher{err: errors.New("not connected")}, "mail")

	err := n.Send(context.Background(), TemplateWelcome, jonas, nil)

	assert.ErrorIs(t, err, appErrors.ErrDelivery)
	assert.Equal(t, appErrors.KindDelivery, appErrors.KindOf(err))
}

func TestSMTPNotifier_Send(t *testing.T) {
	n := NewSMTPNotifier(config.SMTPConfig{Host: "smtp.example.com", Port: 587, User: "u", Password: "p", From: "Natours <hello@example.com>"})

	var gotAddr string
	var gotTo []string
	var gotMsg []byte
	n.sendMail = func(addr string, _ smtp.Auth, _ string, to []string, msg []byte) error {
		gotAddr, gotTo, gotMsg = addr, to, msg
		return nil
	}

	require.NoError(t, n.Send(context.Background(), TemplateWelcome, jonas, map[string]string{"url": "http://localhost/me"}))
	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, []string{"jonas@example.com"}, gotTo)
	assert.Contains(t, string(gotMsg), "Subject: Welcome to the Natours family!\r\n")

	n.sendMail = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("connection refused") }
	err := n.Send(context.Background(), TemplateWelcome, jonas, nil)
	assert.ErrorIs(t, err, appErrors.ErrDelivery)
}

func TestSend_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewMQTTNotifier(&fakePublisher{}, "mail").Send(ctx, TemplateWelcome, jonas, nil)
	assert.Equal(t, appErrors.KindDelivery, appErrors.KindOf(err))
}

func TestNew(t *testing.T) {
	cfg := &config.Config{}

	cfg.Notifier.Driver = "log"
	n, err := New(cfg, nil)
	require.NoError(t, err)
	assert.IsType(t, &LogNotifier{}, n)

	cfg.Notifier.Driver = "smtp"
	n, err = New(cfg, nil)
	require.NoError(t, err)
	assert.IsType(t, &SMTPNotifier{}, n)

	cfg.Notifier.Driver = "mqtt"
	_, err = New(cfg, nil)
	assert.Error(t, err)
	n, err = New(cfg, &fakePublisher{})
	require.NoError(t, err)
	assert.IsType(t, &MQTTNotifier{}, n)

	cfg.Notifier.Driver = "pigeon"
	_, err = New(cfg, nil)
	assert.Error(t, err)
}
