package main

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

type logConfig struct {
	Level  string
	Format string
	File   string
}

// newLogger builds the process logger and installs it as the fallback for
// contexts that carry none.
func newLogger(cfg logConfig, stderr io.Writer) (zerolog.Logger, error) {
	var w io.Writer = stderr
	if cfg.Format == "text" {
		w = zerolog.ConsoleWriter{Out: stderr}
	}
	if cfg.File != "" {
		w = io.MultiWriter(w, &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		})
	}

	level := zerolog.InfoLevel
	if cfg.Level != "" {
		parsed, err := zerolog.ParseLevel(cfg.Level)
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("log level: %w", err)
		}
		level = parsed
	}

	logger := zerolog.New(w).Level(level).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &logger
	return logger, nil
}
