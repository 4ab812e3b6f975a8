package main

import (
	"log/slog"
	"os"
	"strings"
)

const (
	logLevelError   = "ERROR"
	logLevelWarning = "WARNING"
	logLevelInfo    = "INFO"
	logLevelDebug   = "DEBUG"
)

func initLogger(logLevel string) {
	var level slog.Level
	switch strings.ToUpper(logLevel) {
	case logLevelError:
		level = slog.LevelError
	case logLevelWarning:
		level = slog.LevelWarn
	case logLevelInfo:
		level = slog.LevelInfo
	case logLevelDebug:
		level = slog.LevelDebug
	default:
		level = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}
