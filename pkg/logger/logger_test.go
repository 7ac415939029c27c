package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestGetLoggerLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"INFO":    zapcore.InfoLevel,
		"warn":    zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"verbose": zapcore.DebugLevel,
	}
	for in, want := range tests {
		if got := getLoggerLevel(in); got != want {
			t.Errorf("getLoggerLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
