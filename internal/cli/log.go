package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/topoview/topoview/pkg/config"
	apperrors "github.com/topoview/topoview/pkg/errors"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// applyLogConfig reconfigures the logger from the [log] config section.
// The --verbose flag wins over the configured level.
func (c *CLI) applyLogConfig(cfg config.LogConfig) error {
	if c.Logger.GetLevel() != log.DebugLevel {
		level, err := parseLevel(cfg.Level)
		if err != nil {
			return err
		}
		c.Logger.SetLevel(level)
	}
	if cfg.Format == "json" {
		c.Logger.SetFormatter(log.JSONFormatter)
	}
	return nil
}

func parseLevel(s string) (log.Level, error) {
	switch s {
	case "debug":
		return log.DebugLevel, nil
	case "info", "":
		return log.InfoLevel, nil
	case "warn":
		return log.WarnLevel, nil
	case "error":
		return log.ErrorLevel, nil
	}
	return log.InfoLevel, apperrors.New(apperrors.ErrCodeInvalidConfig, "unknown log level %q", s)
}

// progress tracks the start time of an operation and logs completion with
// elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}
