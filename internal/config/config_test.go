package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := loadDefaults()
	if err != nil {
		t.Fatalf("loadDefaults: %v", err)
	}
	if len(cfg.News.Feeds) != 5 {
		t.Errorf("expected 5 default feeds, got %d", len(cfg.News.Feeds))
	}
	if cfg.Pools.Endpoint != "https://yields.llama.fi" {
		t.Errorf("unexpected pools endpoint %q", cfg.Pools.Endpoint)
	}
	if cfg.Pools.DefaultLimit != 10 || cfg.Pools.MaxLimit != 100 {
		t.Errorf("expected limits 10/100, got %d/%d", cfg.Pools.DefaultLimit, cfg.Pools.MaxLimit)
	}
	if err := validate(cfg); err != nil {
		t.Errorf("embedded defaults should validate: %v", err)
	}
}

func TestTTLs(t *testing.T) {
	cfg := &Config{Pools: Pools{TTL: "30m"}, News: News{TTL: "2h"}}
	if d := cfg.PoolsTTL(); d != 30*time.Minute {
		t.Errorf("expected 30m, got %v", d)
	}
	if d := cfg.NewsTTL(); d != 2*time.Hour {
		t.Errorf("expected 2h, got %v", d)
	}

	cfg.Pools.TTL = "invalid"
	if d := cfg.PoolsTTL(); d != time.Hour {
		t.Errorf("expected 1h default for invalid ttl, got %v", d)
	}
	cfg.News.TTL = ""
	if d := cfg.NewsTTL(); d != 15*time.Minute {
		t.Errorf("expected 15m default for empty ttl, got %v", d)
	}
}

func TestRetentionDuration(t *testing.T) {
	tests := []struct {
		input    string
		wantDays int
	}{
		{"90d", 90},
		{"7d", 7},
		{"720h", 30},
		{"", 30},        // default
		{"invalid", 30}, // fallback to default
	}
	for _, tt := range tests {
		cfg := &Config{Archive: Archive{Retention: tt.input}}
		got := cfg.RetentionDuration()
		wantHours := float64(tt.wantDays * 24)
		if got.Hours() != wantHours {
			t.Errorf("RetentionDuration(%q) = %v, want %dd", tt.input, got, tt.wantDays)
		}
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input string
		want  time.Duration
		err   bool
	}{
		{"7d", 7 * 24 * time.Hour, false},
		{"24h", 24 * time.Hour, false},
		{"2h30m", 2*time.Hour + 30*time.Minute, false},
		{"d", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseDuration(tt.input)
		if tt.err {
			if err == nil {
				t.Errorf("ParseDuration(%q): expected error, got %v", tt.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseDuration(%q): unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDuration(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestEnabledFeeds(t *testing.T) {
	cfg := &Config{
		News: News{Feeds: []Feed{
			{Name: "A", Enabled: true},
			{Name: "B", Enabled: false},
			{Name: "C", Enabled: true},
		}},
	}
	enabled := cfg.EnabledFeeds()
	if len(enabled) != 2 {
		t.Fatalf("expected 2 enabled feeds, got %d", len(enabled))
	}
	names := cfg.FeedNames()
	if names[0] != "A" || names[1] != "C" {
		t.Errorf("unexpected feed names: %v", names)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	content := `pools:
  ttl: 2h
  max_limit: 50
news:
  feeds:
    - name: Test
      url: https://example.com/feed
      enabled: true
    - name: Decrypt
      url: https://old.example.com/feed
      enabled: false
`
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PoolsTTL() != 2*time.Hour {
		t.Errorf("expected 2h, got %v", cfg.PoolsTTL())
	}
	if cfg.Pools.MaxLimit != 50 {
		t.Errorf("expected max_limit 50, got %d", cfg.Pools.MaxLimit)
	}
	// Keys absent from the file keep their defaults
	if cfg.Pools.DefaultLimit != 10 {
		t.Errorf("expected default_limit 10 from defaults, got %d", cfg.Pools.DefaultLimit)
	}
	if cfg.Pools.Endpoint != "https://yields.llama.fi" {
		t.Errorf("expected default endpoint, got %q", cfg.Pools.Endpoint)
	}
	if cfg.News.Feeds[0].Name != "Test" {
		t.Errorf("expected first feed Test, got %s", cfg.News.Feeds[0].Name)
	}
	if cfg.News.Feeds[1].Enabled {
		t.Error("user's enabled=false must survive the merge")
	}
	if cfg.News.Feeds[1].URL != "https://decrypt.co/feed" {
		t.Errorf("expected Decrypt URL refreshed from defaults, got %s", cfg.News.Feeds[1].URL)
	}
	if len(cfg.News.Feeds) != 6 {
		t.Errorf("expected 6 feeds after merge, got %d", len(cfg.News.Feeds))
	}
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("TOOLKITS_TEST_ADDR", "0.0.0.0:9999")
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("server:\n  addr: ${TOOLKITS_TEST_ADDR}\n"), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != "0.0.0.0:9999" {
		t.Errorf("expected expanded addr, got %q", cfg.Server.Addr)
	}
}

func TestLoadNonexistentFallsBackToDefaults(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "sub", "config.yaml")

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.News.Feeds) == 0 {
		t.Error("expected default feeds when config doesn't exist")
	}
	if _, err := os.Stat(cfgPath); err != nil {
		t.Errorf("expected defaults written to %s: %v", cfgPath, err)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("pools:\n  default_limit: 200\n"), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	if _, err := Load(cfgPath); err == nil {
		t.Error("expected error for default_limit above max_limit")
	}
}

func TestMergeDefaultFeeds(t *testing.T) {
	cfg := &Config{News: News{Feeds: []Feed{
		{Name: "Existing", URL: "https://example.com/feed", Enabled: true},
		{Name: "Shared", URL: "https://old.com/feed", Enabled: true},
	}}}
	defaults := &Config{News: News{Feeds: []Feed{
		{Name: "Shared", URL: "https://new.com/feed", Enabled: true},
		{Name: "NewFeed", URL: "https://new-feed.com/rss", Enabled: true},
	}}}
	mergeDefaultFeeds(cfg, defaults)

	if len(cfg.News.Feeds) != 3 {
		t.Fatalf("expected 3 feeds after merge, got %d", len(cfg.News.Feeds))
	}
	if cfg.News.Feeds[0].Name != "Existing" {
		t.Errorf("expected first feed Existing, got %s", cfg.News.Feeds[0].Name)
	}
	if cfg.News.Feeds[1].URL != "https://new.com/feed" {
		t.Errorf("expected Shared URL updated, got %s", cfg.News.Feeds[1].URL)
	}
	if cfg.News.Feeds[2].Name != "NewFeed" {
		t.Errorf("expected NewFeed appended, got %s", cfg.News.Feeds[2].Name)
	}
}

func validConfig() *Config {
	return &Config{Pools: Pools{Endpoint: "https://yields.llama.fi", DefaultLimit: 10, MaxLimit: 100}}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"feed missing name", func(c *Config) { c.News.Feeds = []Feed{{URL: "https://example.com"}} }, true},
		{"feed missing url", func(c *Config) { c.News.Feeds = []Feed{{Name: "Test"}} }, true},
		{"feed file scheme", func(c *Config) { c.News.Feeds = []Feed{{Name: "Test", URL: "file:///etc/passwd"}} }, true},
		{"feed http ok", func(c *Config) { c.News.Feeds = []Feed{{Name: "Test", URL: "http://example.com/feed"}} }, false},
		{"no endpoint", func(c *Config) { c.Pools.Endpoint = "" }, true},
		{"zero default limit", func(c *Config) { c.Pools.DefaultLimit = 0 }, true},
		{"max below default", func(c *Config) { c.Pools.MaxLimit = 5 }, true},
		{"bad ttl", func(c *Config) { c.Pools.TTL = "soon" }, true},
		{"day ttl", func(c *Config) { c.Archive.Retention = "14d" }, false},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, true},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, true},
	}
	for _, tt := range tests {
		cfg := validConfig()
		tt.mutate(cfg)
		err := validate(cfg)
		if tt.wantErr && err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
		if !tt.wantErr && err != nil {
			t.Errorf("%s: unexpected error: %v", tt.name, err)
		}
	}
}

func TestArchivePath(t *testing.T) {
	cfg := &Config{}
	if cfg.ArchivePath() != DefaultArchivePath() {
		t.Errorf("expected XDG default, got %s", cfg.ArchivePath())
	}
	cfg.Archive.Path = "/tmp/custom.db"
	if cfg.ArchivePath() != "/tmp/custom.db" {
		t.Errorf("expected custom path, got %s", cfg.ArchivePath())
	}
}
