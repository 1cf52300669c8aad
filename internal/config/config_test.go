package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNew_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if cfg.Carrier.SearchURL != "https://apps.penguin.bg/fly/quote3.aspx" {
		t.Fatalf("unexpected search url %q", cfg.Carrier.SearchURL)
	}
	if cfg.Carrier.ConnectTimeout != 3*time.Second || cfg.Carrier.ReadTimeout != 25*time.Second {
		t.Fatalf("unexpected timeouts: %v / %v", cfg.Carrier.ConnectTimeout, cfg.Carrier.ReadTimeout)
	}
	if strings.Join(cfg.Carrier.RowClasses, ",") != "selectedrow,bgrow" {
		t.Fatalf("unexpected row classes %v", cfg.Carrier.RowClasses)
	}
	if !cfg.Carrier.StrictIATA || cfg.Redis.Enabled {
		t.Fatalf("unexpected flags: strict=%v redis=%v", cfg.Carrier.StrictIATA, cfg.Redis.Enabled)
	}
}

func TestNew_EnvOverride(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("CARRIER_SEARCH_URL", "http://localhost:9999/quote3.aspx")
	t.Setenv("CARRIER_READ_TIMEOUT", "5s")
	t.Setenv("RATE_LIMIT_RPS", "4")

	cfg, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if cfg.Carrier.SearchURL != "http://localhost:9999/quote3.aspx" || cfg.Carrier.ReadTimeout != 5*time.Second {
		t.Fatalf("env not applied: %+v", cfg.Carrier)
	}
	if cfg.RateLimit.RPS != 4 || cfg.RateLimit.Burst != 2 {
		t.Fatalf("unexpected rate limit %+v", cfg.RateLimit)
	}
}

func TestRateLimiter_PerCarrierHost(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("RATE_LIMIT_SEARCH_RPS", "1000")
	t.Setenv("RATE_LIMIT_SEARCH_BURST", "3")
	t.Setenv("RATE_LIMIT_DIRECTORY_RPS", "0.001")

	cfg, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l, err := cfg.RateLimiter()
	if err != nil {
		t.Fatalf("RateLimiter: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	for i := 0; i < 3; i++ {
		if err := l.Wait(ctx, "apps.penguin.bg"); err != nil {
			t.Fatalf("search wait %d: %v", i, err)
		}
	}

	if err := l.Wait(ctx, "www.flybulgarien.dk"); err != nil {
		t.Fatalf("first directory wait should use the burst: %v", err)
	}
	short, cancelShort := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancelShort()
	if err := l.Wait(short, "www.flybulgarien.dk"); err == nil {
		t.Fatalf("directory host should be throttled by its own limit")
	}
}

func TestRateLimiter_BadSearchURL(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("CARRIER_SEARCH_URL", "quote3.aspx")

	cfg, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := cfg.RateLimiter(); err == nil {
		t.Fatalf("want error for a search url without host")
	}
}

func TestNew_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flybulgarien.yaml")
	yaml := "carrier:\n  lang: bg\n  table_selector: table#quotes\nredis:\n  enabled: true\n  ttl: 1h\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if cfg.TableConfig().TableSelector != "table#quotes" {
		t.Fatalf("file value not applied: %+v", cfg.TableConfig())
	}
	if base, _ := cfg.ProviderConfig().Lang.Base(); base.String() != "bg" {
		t.Fatalf("unexpected lang %v", cfg.ProviderConfig().Lang)
	}
	if !cfg.Redis.Enabled || cfg.SinkConfig().TTL != time.Hour {
		t.Fatalf("unexpected redis section %+v", cfg.Redis)
	}
	if cfg.Carrier.InboundMarkerClass != "returnrow" {
		t.Fatalf("default lost for unset field: %q", cfg.Carrier.InboundMarkerClass)
	}
}

func TestNew_MissingExplicitFile(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("want error for missing explicit config file")
	}
}

func TestNew_BadLang(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("CARRIER_LANG", "not a tag!")

	if _, err := New(""); err == nil {
		t.Fatalf("want error for invalid language tag")
	}
}
