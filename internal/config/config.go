package config

import (
	"embed"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var defaultConfigFS embed.FS

const appName = "unifai-toolkits"

type Feed struct {
	Name    string `yaml:"name"`
	URL     string `yaml:"url"`
	Enabled bool   `yaml:"enabled"`
}

type Pools struct {
	Endpoint     string `yaml:"endpoint"`
	TTL          string `yaml:"ttl"`
	Timeout      string `yaml:"timeout"`
	DefaultLimit int    `yaml:"default_limit"`
	MaxLimit     int    `yaml:"max_limit"`
}

type News struct {
	TTL     string `yaml:"ttl"`
	Timeout string `yaml:"timeout"`
	Feeds   []Feed `yaml:"feeds"`
}

type Server struct {
	Addr      string  `yaml:"addr"`
	RateLimit float64 `yaml:"rate_limit"` // requests per second, 0 disables
	Burst     int     `yaml:"burst"`
}

type Archive struct {
	Enabled   bool   `yaml:"enabled"`
	Path      string `yaml:"path,omitempty"`
	Retention string `yaml:"retention"`
}

// Logging selects the slog handler: level is debug|info|warn|error,
// format is text|json.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type Config struct {
	Pools   Pools   `yaml:"pools"`
	News    News    `yaml:"news"`
	Server  Server  `yaml:"server"`
	Archive Archive `yaml:"archive"`
	Logging Logging `yaml:"logging"`
}

// PoolsTTL returns how long the pools collection stays fresh (default 1h).
func (c *Config) PoolsTTL() time.Duration {
	return parseDuration(c.Pools.TTL, time.Hour)
}

// PoolsTimeout bounds a single upstream request (default 30s).
func (c *Config) PoolsTimeout() time.Duration {
	return parseDuration(c.Pools.Timeout, 30*time.Second)
}

// NewsTTL returns how long the news collection stays fresh (default 15m).
func (c *Config) NewsTTL() time.Duration {
	return parseDuration(c.News.TTL, 15*time.Minute)
}

func (c *Config) NewsTimeout() time.Duration {
	return parseDuration(c.News.Timeout, 20*time.Second)
}

func (c *Config) RetentionDuration() time.Duration {
	return parseDuration(c.Archive.Retention, 30*24*time.Hour)
}

func (c *Config) EnabledFeeds() []Feed {
	var out []Feed
	for _, f := range c.News.Feeds {
		if f.Enabled {
			out = append(out, f)
		}
	}
	return out
}

func (c *Config) FeedNames() []string {
	var names []string
	for _, f := range c.EnabledFeeds() {
		names = append(names, f.Name)
	}
	return names
}

// ArchivePath returns the configured archive database path or the XDG default.
func (c *Config) ArchivePath() string {
	if c.Archive.Path != "" {
		return c.Archive.Path
	}
	return DefaultArchivePath()
}

// ParseDuration accepts time.ParseDuration syntax plus "Nd" for days.
func ParseDuration(s string) (time.Duration, error) {
	if len(s) > 1 && s[len(s)-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(s, "%dd", &days); err == nil {
			return time.Duration(days) * 24 * time.Hour, nil
		}
	}
	return time.ParseDuration(s)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, appName, "config.yaml")
}

func DefaultArchivePath() string {
	return filepath.Join(xdg.DataHome, appName, "archive.db")
}

func loadDefaults() (*Config, error) {
	data, err := defaultConfigFS.ReadFile("default_config.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded config: %w", err)
	}
	return &cfg, nil
}

// Load reads the config at path (or the default path when empty). Missing
// keys keep their embedded defaults, and default feeds the user has not
// listed are appended. ${VAR} references are expanded from the environment.
func Load(path string) (*Config, error) {
	defaults, err := loadDefaults()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Non-fatal: embedded defaults are enough to run.
			_ = writeDefaults(path)
			return defaults, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg, err := loadDefaults()
	if err != nil {
		return nil, err
	}
	cfg.News.Feeds = nil
	if err := yaml.Unmarshal([]byte(expandEnvVars(string(data))), cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	mergeDefaultFeeds(cfg, defaults)

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func writeDefaults(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, _ := defaultConfigFS.ReadFile("default_config.yaml")
	return os.WriteFile(path, data, 0o644)
}

// mergeDefaultFeeds refreshes the URL of user feeds that share a name with a
// default feed and appends default feeds the user does not have.
func mergeDefaultFeeds(cfg, defaults *Config) {
	index := make(map[string]int, len(cfg.News.Feeds))
	for i, f := range cfg.News.Feeds {
		index[f.Name] = i
	}
	for _, d := range defaults.News.Feeds {
		if i, ok := index[d.Name]; ok {
			cfg.News.Feeds[i].URL = d.URL
			continue
		}
		cfg.News.Feeds = append(cfg.News.Feeds, d)
	}
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR_NAME} with the environment value, or "" when unset.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(envVarPattern.FindStringSubmatch(match)[1])
	})
}

func validate(cfg *Config) error {
	for i, f := range cfg.News.Feeds {
		if f.Name == "" {
			return fmt.Errorf("feed %d: name is required", i)
		}
		if f.URL == "" {
			return fmt.Errorf("feed %q: url is required", f.Name)
		}
		u, err := url.Parse(f.URL)
		if err != nil {
			return fmt.Errorf("feed %q: invalid url: %w", f.Name, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("feed %q: url scheme must be http or https, got %q", f.Name, u.Scheme)
		}
	}

	if cfg.Pools.Endpoint == "" {
		return fmt.Errorf("pools.endpoint is required")
	}
	if _, err := url.Parse(cfg.Pools.Endpoint); err != nil {
		return fmt.Errorf("pools.endpoint: invalid url: %w", err)
	}
	if cfg.Pools.DefaultLimit < 1 || cfg.Pools.MaxLimit < cfg.Pools.DefaultLimit {
		return fmt.Errorf("pools: need 1 <= default_limit (%d) <= max_limit (%d)", cfg.Pools.DefaultLimit, cfg.Pools.MaxLimit)
	}

	for name, raw := range map[string]string{
		"pools.ttl":         cfg.Pools.TTL,
		"pools.timeout":     cfg.Pools.Timeout,
		"news.ttl":          cfg.News.TTL,
		"news.timeout":      cfg.News.Timeout,
		"archive.retention": cfg.Archive.Retention,
	} {
		if raw == "" {
			continue
		}
		if _, err := ParseDuration(raw); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}

	switch cfg.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unknown level %q (valid: debug, info, warn, error)", cfg.Logging.Level)
	}
	switch cfg.Logging.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging.format: unknown format %q (valid: text, json)", cfg.Logging.Format)
	}
	return nil
}
