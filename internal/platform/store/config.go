package store

import (
	"time"

	"sleuth/internal/platform/config"
)

// Config aggregates per backend configuration
type Config struct {
	AppName string

	PG PGConfig
}

// PGConfig configures postgres connectivity and tracing
type PGConfig struct {
	Enabled     bool
	URL         string
	MaxConns    int32
	LogSQL      bool
	SlowQueryMs int

	ConnectRetries int
	PingTimeout    time.Duration
}

// FromConf reads postgres settings from a config view
func FromConf(cfg config.Conf, appName string) Config {
	return Config{
		AppName: appName,
		PG: PGConfig{
			Enabled:     cfg.MayBool("ENABLE", true),
			URL:         cfg.MustString("URL"),
			MaxConns:    int32(cfg.MayInt("MAX_CONNS", 8)),
			LogSQL:      cfg.MayBool("LOG_SQL", false),
			SlowQueryMs: cfg.MayInt("SLOW_MS", 250),
		},
	}
}
