package membership

import (
	"context"
	"flag"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("membership", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Addr != ":8095" {
		t.Fatalf("expected default addr :8095, got %q", cfg.Addr)
	}
	if cfg.DBPath != "data/membership.db" {
		t.Fatalf("expected default db path, got %q", cfg.DBPath)
	}
	if !cfg.MetricsEnabled {
		t.Fatal("expected metrics enabled by default")
	}
}

func TestParseConfigOverrides(t *testing.T) {
	t.Setenv("MEMBERDESK_MEMBERSHIP_ADDR", "env-addr")
	t.Setenv("MEMBERDESK_MEMBERSHIP_DB_PATH", "env.db")
	t.Setenv("MEMBERDESK_AUTH_ISSUER", "issuer")

	fs := flag.NewFlagSet("membership", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-addr", "flag-addr", "-metrics=false"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Addr != "flag-addr" {
		t.Fatalf("expected flag addr, got %q", cfg.Addr)
	}
	if cfg.DBPath != "env.db" {
		t.Fatalf("expected env db path, got %q", cfg.DBPath)
	}
	if cfg.AuthIssuer != "issuer" {
		t.Fatalf("expected env issuer, got %q", cfg.AuthIssuer)
	}
	if cfg.MetricsEnabled {
		t.Fatal("expected metrics disabled by flag")
	}
}

func TestRunRequiresAuthConfig(t *testing.T) {
	err := Run(context.Background(), Config{Addr: "127.0.0.1:0", DBPath: filepath.Join(t.TempDir(), "m.db")})
	if err == nil || !strings.Contains(err.Error(), "MEMBERDESK_AUTH_ISSUER") {
		t.Fatalf("expected missing issuer error, got %v", err)
	}
}
