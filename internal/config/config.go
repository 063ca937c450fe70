package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

const (
	defaultListenAddr   = "127.0.0.1:8090"
	defaultPollInterval = 5
	defaultThumbSize    = 300
	defaultArtworkCap   = 10 * 1024 * 1024
)

// AppConfig holds application configuration
type AppConfig struct {
	Listen       string        `koanf:"listen"`
	PollInterval int           `koanf:"poll_interval_seconds"`
	Artwork      ArtworkConfig `koanf:"artwork"`
}

// ArtworkConfig holds artwork pipeline configuration
type ArtworkConfig struct {
	MaxBytes      int64 `koanf:"max_bytes"`
	ThumbnailSize int   `koanf:"thumbnail_size"`
}

// Load reads configuration files in priority order (last wins) and
// applies environment overrides on top
func Load(logger *zap.Logger) (*AppConfig, error) {
	k := koanf.New(".")

	for _, path := range configPaths() {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
			logger.Debug("Config file loaded", zap.String("path", path))
		}
	}

	cfg := &AppConfig{
		Listen:       defaultListenAddr,
		PollInterval: defaultPollInterval,
		Artwork: ArtworkConfig{
			MaxBytes:      defaultArtworkCap,
			ThumbnailSize: defaultThumbSize,
		},
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	// Environment overrides, useful for systemd drop-ins
	if listen := os.Getenv("NOWBRIDGE_LISTEN"); listen != "" {
		cfg.Listen = listen
	}
	if interval := os.Getenv("NOWBRIDGE_POLL_INTERVAL"); interval != "" {
		if n, err := strconv.Atoi(interval); err == nil && n > 0 {
			cfg.PollInterval = n
		}
	}

	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}

	logger.Info("Configuration loaded",
		zap.String("listen", cfg.Listen),
		zap.Int("pollIntervalSeconds", cfg.PollInterval))

	return cfg, nil
}

// configPaths returns candidate config files, lowest priority first.
// NOWBRIDGE_CONFIG pins a single explicit file and disables the search,
// so callers (and tests) can run independent of the home directory.
func configPaths() []string {
	if path := os.Getenv("NOWBRIDGE_CONFIG"); path != "" {
		return []string{path}
	}

	paths := []string{}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "nowbridge", "config.toml"))
	}

	// ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

// ListenAddr returns the address the HTTP relay binds to
func (c *AppConfig) ListenAddr() string {
	return c.Listen
}

// PollIntervalSeconds returns how often the engine queries the bridge
func (c *AppConfig) PollIntervalSeconds() int {
	return c.PollInterval
}

// ThumbnailSize returns the square thumbnail edge length in pixels
func (c *AppConfig) ThumbnailSize() int {
	return c.Artwork.ThumbnailSize
}

// ArtworkMaxBytes returns the artwork download size cap
func (c *AppConfig) ArtworkMaxBytes() int64 {
	return c.Artwork.MaxBytes
}
