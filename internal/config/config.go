package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"eventclass/internal/dataset"
)

// FeedConfig describes the chamber calendar to scrape.
type FeedConfig struct {
	// BaseURL is the site root, e.g. "https://business.perdidochamber.com".
	BaseURL string `yaml:"base_url" json:"base_url"`

	// MonthsAhead is how many month-calendar pages to scan, starting
	// with the current month.
	MonthsAhead int `yaml:"months_ahead" json:"months_ahead"`

	// HorizonDays bounds recurrence expansion into the future.
	HorizonDays int `yaml:"horizon_days" json:"horizon_days"`

	// CacheDir holds the ICS HTTP cache.
	CacheDir string `yaml:"cache_dir" json:"cache_dir"`
}

// Config is the top-level application configuration.
type Config struct {
	// DataDir is where pipeline outputs are written.
	DataDir string `yaml:"data_dir" json:"data_dir"`

	// ModelPath is the trained classifier artifact.
	ModelPath string `yaml:"model_path" json:"model_path"`

	// StorePath is the SQLite run-history database.
	StorePath string `yaml:"store_path" json:"store_path"`

	// Threshold flags predictions whose confidence falls below it for
	// manual review. In [0,1].
	Threshold float64 `yaml:"threshold" json:"threshold"`

	// PropagationMode is "strict" or "majority".
	PropagationMode string `yaml:"propagation_mode" json:"propagation_mode"`

	// Schedule is a cron expression for the automated pipeline
	// (e.g. "0 6 * * 1" for Mondays at 06:00). Empty disables it.
	Schedule string `yaml:"schedule" json:"schedule"`

	// Columns maps canonical roles to input column names.
	Columns dataset.Columns `yaml:"columns" json:"columns"`

	// Feed configures scraping.
	Feed FeedConfig `yaml:"feed" json:"feed"`

	// LogLevel is debug/info/warn/error.
	LogLevel string `yaml:"log_level" json:"log_level"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		DataDir:         "./data",
		ModelPath:       "./models/community_svm.json",
		StorePath:       "./data/runs.db",
		Threshold:       0.55,
		PropagationMode: "strict",
		Schedule:        "",
		Columns:         dataset.DefaultColumns(),
		Feed: FeedConfig{
			BaseURL:     "https://business.perdidochamber.com",
			MonthsAhead: 2,
			HorizonDays: 90,
			CacheDir:    "./data/feed-cache",
		},
		LogLevel: "info",
	}
}

// Normalize fills in missing/zero values with sensible defaults so
// that partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	def := DefaultConfig()
	if c.DataDir == "" {
		c.DataDir = def.DataDir
	}
	if c.ModelPath == "" {
		c.ModelPath = def.ModelPath
	}
	if c.StorePath == "" {
		c.StorePath = def.StorePath
	}
	if c.Threshold <= 0 || c.Threshold > 1 {
		c.Threshold = def.Threshold
	}
	switch c.PropagationMode {
	case "strict", "majority":
		// ok
	default:
		c.PropagationMode = "strict"
	}
	c.Columns.Normalize()
	if c.Feed.BaseURL == "" {
		c.Feed.BaseURL = def.Feed.BaseURL
	}
	if c.Feed.MonthsAhead <= 0 {
		c.Feed.MonthsAhead = def.Feed.MonthsAhead
	}
	if c.Feed.HorizonDays <= 0 {
		c.Feed.HorizonDays = def.Feed.HorizonDays
	}
	if c.Feed.CacheDir == "" {
		c.Feed.CacheDir = def.Feed.CacheDir
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist: create parent directory if needed,
//     write a default config with 0600 perms, and return the defaults.
//   - If the file exists: read YAML, unmarshal, normalize defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the given configuration to the specified path,
// atomically via a temp file + rename, with 0600 permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".eventclass-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
