package logger

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

type Config struct {
	Env       string
	AddSource bool
}

// Logger is a wrapper around slog.Logger with additional methods
type Logger struct {
	*slog.Logger
}

func New(config Config) (*Logger, error) {
	handlerOpts := &slog.HandlerOptions{
		Level:     parseLogLevel(config.Env),
		AddSource: config.AddSource,
	}

	handler, err := determineHandler(config.Env, handlerOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to determine handler: %w", err)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	return &Logger{
		Logger: logger,
	}, nil
}

func determineHandler(env string, opts *slog.HandlerOptions) (slog.Handler, error) {
	switch strings.ToLower(env) {
	case "prod":
		return slog.NewJSONHandler(os.Stdout, opts), nil
	case "dev":
		return slog.NewTextHandler(os.Stdout, opts), nil
	case "test":
		return slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelError,
		}), nil
	default:
		return nil, fmt.Errorf("unknown environment: %s (use 'dev', 'prod', or 'test')", env)
	}
}

func parseLogLevel(env string) slog.Level {
	switch strings.ToLower(env) {
	case "dev":
		return slog.LevelDebug
	case "prod":
		return slog.LevelInfo
	case "test":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
