package logger

import (
    "io"
    "os"
    "time"

    "github.com/redhat-ai-tools/jira-dashboard/internal/config"
    "github.com/rs/zerolog"
    "github.com/rs/zerolog/log"
)

const serviceName = "jira-dashboard"

func New(cfg config.Config) zerolog.Logger { return NewTo(cfg, os.Stdout) }

// NewTo builds the logger against an explicit sink. Every event carries the
// service name so aggregated streams stay attributable.
func NewTo(cfg config.Config, w io.Writer) zerolog.Logger {
    zerolog.TimeFieldFormat = time.RFC3339
    if cfg.AppEnv == "dev" {
        w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
    }
    logger := zerolog.New(w).With().Timestamp().Str("service", serviceName).Logger()
    log.Logger = logger
    return logger
}
