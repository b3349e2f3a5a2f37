package observability

import (
	"log/slog"
	"os"
	"strings"

	"github.com/seismowatch/seismo-alert/internal/config"
)

// NewLogger builds a slog.Logger according to LOG_LEVEL and LOG_FORMAT.
// Unknown levels fall back to info; any format other than "text" selects
// the JSON handler.
func NewLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.ToLower(cfg.LogFormat) == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}
