// Package seed parses seed command flags and loads a membership fixture
// into the local database.
package seed

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	entrypoint "github.com/louisbranch/memberdesk/internal/platform/cmd"
	"github.com/louisbranch/memberdesk/internal/services/membership/domain"
	membershipseed "github.com/louisbranch/memberdesk/internal/services/membership/seed"
	membershipsqlite "github.com/louisbranch/memberdesk/internal/services/membership/storage/sqlite"
)

// Config holds seed command configuration.
type Config struct {
	DBPath string `env:"MEMBERDESK_MEMBERSHIP_DB_PATH" envDefault:"data/membership.db"`
	File   string `env:"MEMBERDESK_SEED_FILE"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "The membership SQLite database path")
	fs.StringVar(&cfg.File, "file", cfg.File, "The TOML fixture to load")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	if strings.TrimSpace(cfg.File) == "" {
		return Config{}, errors.New("seed file is required (-file or MEMBERDESK_SEED_FILE)")
	}
	return cfg, nil
}

// Run loads cfg.File and applies it to the database at cfg.DBPath.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceSeed, func(ctx context.Context) error {
		fixture, err := membershipseed.LoadFile(cfg.File)
		if err != nil {
			return err
		}
		if dir := filepath.Dir(cfg.DBPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create storage dir: %w", err)
			}
		}
		store, err := membershipsqlite.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open membership sqlite store: %w", err)
		}
		defer store.Close()

		result, err := membershipseed.Apply(ctx, domain.NewService(store, nil), fixture)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "seeded %d users, %d admins, %d groups, %d sections into %s\n",
			result.Users, result.Admins, len(result.GroupIDs), len(result.Sections), cfg.DBPath)
		return nil
	})
}
