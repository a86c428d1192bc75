// Package membership parses membership service flags and launches the service.
package membership

import (
	"context"
	"flag"
	"time"

	entrypoint "github.com/louisbranch/memberdesk/internal/platform/cmd"
	"github.com/louisbranch/memberdesk/internal/services/membership/api/httpapi"
	server "github.com/louisbranch/memberdesk/internal/services/membership/app"
)

// Config holds membership command configuration.
type Config struct {
	Addr           string `env:"MEMBERDESK_MEMBERSHIP_ADDR" envDefault:":8095"`
	DBPath         string `env:"MEMBERDESK_MEMBERSHIP_DB_PATH" envDefault:"data/membership.db"`
	AuthIssuer     string `env:"MEMBERDESK_AUTH_ISSUER"`
	AuthAudience   string `env:"MEMBERDESK_AUTH_AUDIENCE"`
	AuthPublicKey  string `env:"MEMBERDESK_AUTH_PUBLIC_KEY"`
	MetricsEnabled bool   `env:"MEMBERDESK_METRICS_ENABLED" envDefault:"true"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "The membership HTTP server address")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "The membership SQLite database path")
	fs.BoolVar(&cfg.MetricsEnabled, "metrics", cfg.MetricsEnabled, "Serve Prometheus metrics at /metrics")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the membership HTTP API service.
func Run(ctx context.Context, cfg Config) error {
	auth, err := httpapi.ParseAuthConfig(cfg.AuthIssuer, cfg.AuthAudience, cfg.AuthPublicKey, time.Now)
	if err != nil {
		return err
	}
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceMembership, func(ctx context.Context) error {
		return server.Run(ctx, server.Config{
			Addr:           cfg.Addr,
			DBPath:         cfg.DBPath,
			Auth:           auth,
			MetricsEnabled: cfg.MetricsEnabled,
		})
	})
}
