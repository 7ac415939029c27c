package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	Level  string
	Format string
}

// Logger is a printf-style facade over a zap sugared logger.
type Logger struct {
	logger *zap.SugaredLogger
}

func NewLogger(cfg *Config) *Logger {
	var enc zapcore.Encoder
	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "console":
		ec := zap.NewDevelopmentEncoderConfig()
		ec.EncodeTime = zapcore.ISO8601TimeEncoder
		enc = zapcore.NewConsoleEncoder(ec)
	default:
		ec := zap.NewProductionEncoderConfig()
		ec.EncodeTime = zapcore.ISO8601TimeEncoder
		enc = zapcore.NewJSONEncoder(ec)
	}

	core := zapcore.NewCore(enc, zapcore.AddSync(os.Stdout), getLoggerLevel(cfg.Level))
	return &Logger{
		logger: zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)).Sugar(),
	}
}

func (l *Logger) Error(format string, v ...interface{}) {
	l.logger.Errorf(format, v...)
}
func (l *Logger) Warn(format string, v ...interface{}) {
	l.logger.Warnf(format, v...)
}
func (l *Logger) Info(format string, v ...interface{}) {
	l.logger.Infof(format, v...)
}
func (l *Logger) Debug(format string, v ...interface{}) {
	l.logger.Debugf(format, v...)
}

// Sync flushes buffered entries.
func (l *Logger) Sync() {
	_ = l.logger.Sync()
}

func getLoggerLevel(logLevel string) zapcore.Level {
	switch strings.ToLower(logLevel) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.DebugLevel
	}
}
