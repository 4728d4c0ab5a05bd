package log

import (
	"log/slog"
	"os"
	"strings"
)

// Component names used across the binaries.
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentStorage = "storage"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentSheets  = "sheets"
)

// Config holds logger configuration.
type Config struct {
	Level     slog.Level
	Component string
	JSON      bool
}

// DefaultConfig returns sensible defaults for logging.
func DefaultConfig() Config {
	return Config{
		Level:     slog.LevelInfo,
		Component: ComponentApp,
	}
}

// FromEnv builds a config from LOG_LEVEL (debug, info, warn, error) and
// LOG_FORMAT (text, json), falling back to defaults for anything else.
func FromEnv(component string) Config {
	cfg := DefaultConfig()
	cfg.Component = component

	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		cfg.Level = slog.LevelDebug
	case "warn":
		cfg.Level = slog.LevelWarn
	case "error":
		cfg.Level = slog.LevelError
	}
	if strings.EqualFold(os.Getenv("LOG_FORMAT"), "json") {
		cfg.JSON = true
	}
	return cfg
}

// New creates a logger with the given configuration. Every record
// carries the component attribute so logs from the server and the
// worker can be told apart in a shared sink.
func New(config Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: config.Level}

	var handler slog.Handler
	if config.JSON {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler).With("component", config.Component)
}

// SetDefault installs the logger as the process-wide default.
func SetDefault(logger *slog.Logger) {
	slog.SetDefault(logger)
}
