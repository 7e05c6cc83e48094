package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const serviceName = "tour-booking"

var (
	// Logger is the process logger. It discards everything until Init runs,
	// so packages and tests may log freely.
	Logger = zap.NewNop()

	// wrapped reports the caller of the package level helpers below.
	wrapped = Logger
)

// Init switches to JSON output at info level in production and to colored
// console output at debug level anywhere else.
func Init(environment string) error {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	if environment == "production" {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	enc := &cfg.EncoderConfig
	enc.TimeKey, enc.MessageKey, enc.LevelKey = "timestamp", "message", "level"
	enc.EncodeTime = zapcore.ISO8601TimeEncoder

	l, err := cfg.Build(
		zap.AddStacktrace(zapcore.ErrorLevel),
		zap.Fields(
			zap.String("service", serviceName),
			zap.String("environment", environment),
		),
	)
	if err != nil {
		return err
	}

	set(l)
	zap.ReplaceGlobals(l)
	return nil
}

func set(l *zap.Logger) {
	Logger = l
	wrapped = l.WithOptions(zap.AddCallerSkip(1))
}

func Sync() {
	_ = Logger.Sync()
}

// With returns a child logger carrying fields, e.g. the request id.
func With(fields ...zap.Field) *zap.Logger {
	return Logger.With(fields...)
}

func Debug(msg string, fields ...zap.Field) { wrapped.Debug(msg, fields...) }

func Info(msg string, fields ...zap.Field) { wrapped.Info(msg, fields...) }

func Warn(msg string, fields ...zap.Field) { wrapped.Warn(msg, fields...) }

func Error(msg string, fields ...zap.Field) { wrapped.Error(msg, fields...) }

func Fatal(msg string, fields ...zap.Field) { wrapped.Fatal(msg, fields...) }
