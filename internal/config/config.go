package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	JWT        JWTConfig
	SMTP       SMTPConfig
	MQTT       MQTTConfig
	Notifier   NotifierConfig
	S3         S3Config
	RateLimit  RateLimitConfig
	CORS       CORSConfig
	Pagination PaginationConfig
	Jobs       JobsConfig
}

type ServerConfig struct {
	Port            string
	Host            string
	Environment     string
	BaseURL         string
	MaxRequestBytes int64
}

type DatabaseConfig struct {
	Host           string
	Port           string
	User           string
	Password       string
	DBName         string
	SSLMode        string
	MigrateOnStart bool
}

type JWTConfig struct {
	Secret            string
	ExpiresIn         time.Duration
	CookieExpiresDays int
	BcryptCost        int
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

type MQTTConfig struct {
	Broker   string
	ClientID string
	Username string
	Password string
}

type NotifierConfig struct {
	// Driver is one of "smtp", "mqtt" or "log".
	Driver string
	Topic  string
}

type S3Config struct {
	Endpoint     string
	Region       string
	Bucket       string
	AccessKey    string
	SecretKey    string
	UsePathStyle bool
}

type RateLimitConfig struct {
	GeneralRPS   float64 // Requests per second for /api
	GeneralBurst int     // Burst size for /api
}

type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int // seconds
}

type PaginationConfig struct {
	MaxLimit int
}

type JobsConfig struct {
	TokenCleanupSchedule string
}

func setDefaults() {
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("BASE_URL", "http://localhost:8080")
	viper.SetDefault("MAX_REQUEST_BYTES", 10<<10)

	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("MIGRATE_ON_START", true)

	viper.SetDefault("JWT_EXPIRES_IN", "90d")
	viper.SetDefault("JWT_COOKIE_EXPIRES_IN", 90)
	viper.SetDefault("BCRYPT_COST", 12)

	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("SMTP_FROM", "Natours <hello@natours.io>")

	viper.SetDefault("MQTT_CLIENT_ID", "tour-booking")
	viper.SetDefault("NOTIFIER_DRIVER", "log")
	viper.SetDefault("NOTIFIER_MQTT_TOPIC", "tour-booking/mail")

	viper.SetDefault("AWS_REGION", "us-east-1")

	// 100 requests per hour per IP
	viper.SetDefault("RATE_LIMIT_GENERAL_RPS", 100.0/3600.0)
	viper.SetDefault("RATE_LIMIT_GENERAL_BURST", 100)

	viper.SetDefault("CORS_ALLOWED_ORIGINS", []string{"*"})
	viper.SetDefault("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"})
	viper.SetDefault("CORS_ALLOWED_HEADERS", []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"})
	viper.SetDefault("CORS_EXPOSED_HEADERS", []string{"X-Request-ID"})
	viper.SetDefault("CORS_MAX_AGE", int((12 * time.Hour).Seconds()))

	viper.SetDefault("PAGINATION_MAX_LIMIT", 1000)
	viper.SetDefault("TOKEN_CLEANUP_SCHEDULE", "@every 1h")
}

func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AddConfigPath(".")
	if homeDir, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(homeDir)
	}
	viper.AutomaticEnv()
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		log.Printf("Warning: config file not found: %v. Falling back to environment variables only.", err)
	}

	expiresIn, err := ParseDuration(viper.GetString("JWT_EXPIRES_IN"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRES_IN: %w", err)
	}

	config := &Config{
		Server: ServerConfig{
			Port:            viper.GetString("SERVER_PORT"),
			Host:            viper.GetString("SERVER_HOST"),
			Environment:     viper.GetString("ENVIRONMENT"),
			BaseURL:         strings.TrimRight(viper.GetString("BASE_URL"), "/"),
			MaxRequestBytes: viper.GetInt64("MAX_REQUEST_BYTES"),
		},
		Database: DatabaseConfig{
			Host:           viper.GetString("DB_HOST"),
			Port:           viper.GetString("DB_PORT"),
			User:           viper.GetString("DB_USER"),
			Password:       viper.GetString("DB_PASSWORD"),
			DBName:         viper.GetString("DB_NAME"),
			SSLMode:        viper.GetString("DB_SSLMODE"),
			MigrateOnStart: viper.GetBool("MIGRATE_ON_START"),
		},
		JWT: JWTConfig{
			Secret:            viper.GetString("JWT_SECRET"),
			ExpiresIn:         expiresIn,
			CookieExpiresDays: viper.GetInt("JWT_COOKIE_EXPIRES_IN"),
			BcryptCost:        viper.GetInt("BCRYPT_COST"),
		},
		SMTP: SMTPConfig{
			Host:     viper.GetString("SMTP_HOST"),
			Port:     viper.GetInt("SMTP_PORT"),
			User:     viper.GetString("SMTP_USER"),
			Password: viper.GetString("SMTP_PASSWORD"),
			From:     viper.GetString("SMTP_FROM"),
		},
		MQTT: MQTTConfig{
			Broker:   viper.GetString("MQTT_BROKER"),
			ClientID: viper.GetString("MQTT_CLIENT_ID"),
			Username: viper.GetString("MQTT_USERNAME"),
			Password: viper.GetString("MQTT_PASSWORD"),
		},
		Notifier: NotifierConfig{
			Driver: viper.GetString("NOTIFIER_DRIVER"),
			Topic:  viper.GetString("NOTIFIER_MQTT_TOPIC"),
		},
		S3: S3Config{
			Endpoint:     viper.GetString("S3_ENDPOINT"),
			Region:       viper.GetString("AWS_REGION"),
			Bucket:       viper.GetString("S3_BUCKET_NAME"),
			AccessKey:    viper.GetString("AWS_ACCESS_KEY_ID"),
			SecretKey:    viper.GetString("AWS_SECRET_ACCESS_KEY"),
			UsePathStyle: viper.GetBool("S3_USE_PATH_STYLE"),
		},
		RateLimit: RateLimitConfig{
			GeneralRPS:   viper.GetFloat64("RATE_LIMIT_GENERAL_RPS"),
			GeneralBurst: viper.GetInt("RATE_LIMIT_GENERAL_BURST"),
		},
		CORS: CORSConfig{
			AllowedOrigins:   viper.GetStringSlice("CORS_ALLOWED_ORIGINS"),
			AllowedMethods:   viper.GetStringSlice("CORS_ALLOWED_METHODS"),
			AllowedHeaders:   viper.GetStringSlice("CORS_ALLOWED_HEADERS"),
			ExposedHeaders:   viper.GetStringSlice("CORS_EXPOSED_HEADERS"),
			AllowCredentials: viper.GetBool("CORS_ALLOW_CREDENTIALS"),
			MaxAge:           viper.GetInt("CORS_MAX_AGE"),
		},
		Pagination: PaginationConfig{
			MaxLimit: viper.GetInt("PAGINATION_MAX_LIMIT"),
		},
		Jobs: JobsConfig{
			TokenCleanupSchedule: viper.GetString("TOKEN_CLEANUP_SCHEDULE"),
		},
	}

	return config, nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func (c *ServerConfig) IsProduction() bool {
	return c.Environment == "production"
}

// ParseDuration accepts time.ParseDuration syntax plus a whole-day suffix ("90d").
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, err
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	return time.ParseDuration(s)
}
