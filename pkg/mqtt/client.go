// Package mqtt wraps the paho client for the services that hand work to
// background workers over a broker.
package mqtt

import (
	"errors"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"tour-booking/internal/config"
	"tour-booking/internal/logger"
)

const (
	defaultKeepAlive            = 30 * time.Second
	defaultConnectTimeout       = 10 * time.Second
	defaultPublishTimeout       = 5 * time.Second
	defaultMaxReconnectInterval = time.Minute
	disconnectQuiesceMillis     = 250

	clientIDPrefix = "tour-booking-"
)

var ErrNotConnected = errors.New("mqtt client is not connected")

type Config struct {
	Broker               string
	ClientID             string
	Username             string
	Password             string
	KeepAlive            time.Duration
	ConnectTimeout       time.Duration
	PublishTimeout       time.Duration
	MaxReconnectInterval time.Duration
}

// FromConfig fills broker settings from the application config. A missing
// client id gets a random one so replicas do not kick each other off.
func FromConfig(cfg config.MQTTConfig) *Config {
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = clientIDPrefix + uuid.NewString()[:8]
	}
	return &Config{
		Broker:               cfg.Broker,
		ClientID:             clientID,
		Username:             cfg.Username,
		Password:             cfg.Password,
		KeepAlive:            defaultKeepAlive,
		ConnectTimeout:       defaultConnectTimeout,
		PublishTimeout:       defaultPublishTimeout,
		MaxReconnectInterval: defaultMaxReconnectInterval,
	}
}

// Client publishes messages with a bounded wait for the broker ack.
type Client struct {
	conn   paho.Client
	config *Config
}

func NewClient(cfg *Config) *Client {
	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetCleanSession(true).
		SetKeepAlive(cfg.KeepAlive).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetAutoReconnect(true).
		SetMaxReconnectInterval(cfg.MaxReconnectInterval).
		SetOnConnectHandler(func(paho.Client) {
			logger.Info("MQTT client connected",
				zap.String("broker", cfg.Broker),
				zap.String("client_id", cfg.ClientID),
			)
		}).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			logger.Warn("MQTT connection lost", zap.Error(err), zap.String("broker", cfg.Broker))
		})

	return newClient(paho.NewClient(opts), cfg)
}

func newClient(conn paho.Client, cfg *Config) *Client {
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = defaultPublishTimeout
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = defaultConnectTimeout
	}
	return &Client{conn: conn, config: cfg}
}

func (c *Client) Connect() error {
	token := c.conn.Connect()
	if !token.WaitTimeout(c.config.ConnectTimeout) {
		return fmt.Errorf("connecting to MQTT broker %s timed out", c.config.Broker)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to connect to MQTT broker %s: %w", c.config.Broker, err)
	}
	return nil
}

// Publish sends payload to topic and waits up to the publish timeout for the
// broker to acknowledge it.
func (c *Client) Publish(topic string, qos byte, retained bool, payload []byte) error {
	if !c.conn.IsConnectionOpen() {
		return ErrNotConnected
	}

	token := c.conn.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(c.config.PublishTimeout) {
		return fmt.Errorf("publish to %s timed out", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	return nil
}

func (c *Client) Disconnect() {
	c.conn.Disconnect(disconnectQuiesceMillis)
	logger.Info("Disconnected from MQTT broker", zap.String("broker", c.config.Broker))
}

func (c *Client) IsConnected() bool {
	return c.conn.IsConnected()
}
