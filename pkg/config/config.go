// Package config loads the spotfinder configuration file.
//
// The file is TOML with six optional sections:
//
//	[search]      grid_step, clearance_xy, margin, top_k, min_separation,
//	              lift_epsilon, debug_limit
//	[scoring]     wall_weight, clearance_weight
//	[classifier]  floor_min_xy, floor_max_z, wall_min_z, wall_max_thin,
//	              wall_min_long
//	[cache]       backend ("file", "redis", "none"), dir, redis_url, prefix, ttl
//	[batch]       workers
//	[server]      addr, max_body_bytes, max_grid_points, read_timeout,
//	              write_timeout
//
// Keys left out keep their defaults. Unknown keys are rejected so typos do
// not pass silently.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/spotfinder/pkg/errors"
	"github.com/matzehuels/spotfinder/pkg/placement"
	"github.com/matzehuels/spotfinder/pkg/scene"
)

// AppName names the config and cache directories.
const AppName = "spotfinder"

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Config is the full configuration file.
type Config struct {
	Search     Search           `toml:"search"`
	Scoring    Scoring          `toml:"scoring"`
	Classifier scene.Thresholds `toml:"classifier"`
	Cache      Cache            `toml:"cache"`
	Batch      Batch            `toml:"batch"`
	Server     Server           `toml:"server"`
}

// Search holds grid search options.
type Search struct {
	GridStep      float64 `toml:"grid_step"`
	ClearanceXY   float64 `toml:"clearance_xy"`
	Margin        float64 `toml:"margin"`
	TopK          int     `toml:"top_k"`
	MinSeparation float64 `toml:"min_separation"`
	LiftEpsilon   float64 `toml:"lift_epsilon"`
	DebugLimit    int     `toml:"debug_limit"`
}

// Scoring holds the candidate score weights.
type Scoring struct {
	WallWeight      float64 `toml:"wall_weight"`
	ClearanceWeight float64 `toml:"clearance_weight"`
}

// Cache selects and tunes the result cache.
type Cache struct {
	Backend  string        `toml:"backend"`
	Dir      string        `toml:"dir"`
	RedisURL string        `toml:"redis_url"`
	Prefix   string        `toml:"prefix"`
	TTL      time.Duration `toml:"ttl"`
}

// Batch tunes the batch command.
type Batch struct {
	// Workers bounds concurrent searches when --workers is not given.
	Workers int `toml:"workers"`
}

// Server tunes the HTTP API.
type Server struct {
	Addr         string `toml:"addr"`
	MaxBodyBytes int64  `toml:"max_body_bytes"`
	// MaxGridPoints rejects requests whose search grid would be larger.
	MaxGridPoints int           `toml:"max_grid_points"`
	ReadTimeout   time.Duration `toml:"read_timeout"`
	WriteTimeout  time.Duration `toml:"write_timeout"`
}

// DefaultMaxGridPoints caps one API search at a 2000x2000 grid.
const DefaultMaxGridPoints = 4_000_000

// Default returns the built-in configuration.
func Default() Config {
	p := placement.DefaultConfig()
	return Config{
		Search: Search{
			GridStep:      p.GridStep,
			ClearanceXY:   p.ClearanceXY,
			Margin:        p.Margin,
			TopK:          p.TopK,
			MinSeparation: p.MinSeparation,
			LiftEpsilon:   p.LiftEpsilon,
			DebugLimit:    p.DebugLimit,
		},
		Scoring: Scoring{
			WallWeight:      p.WallWeight,
			ClearanceWeight: p.ClearanceWeight,
		},
		Classifier: scene.DefaultThresholds(),
		Cache: Cache{
			Backend: BackendFile,
			Prefix:  AppName + ":",
		},
		Batch: Batch{
			Workers: 4,
		},
		Server: Server{
			Addr:          ":8080",
			MaxBodyBytes:  8 << 20,
			MaxGridPoints: DefaultMaxGridPoints,
			ReadTimeout:   30 * time.Second,
			WriteTimeout:  60 * time.Second,
		},
	}
}

// Placement returns the search and scoring sections as a placement config.
func (c Config) Placement() placement.Config {
	return placement.Config{
		GridStep:        c.Search.GridStep,
		ClearanceXY:     c.Search.ClearanceXY,
		Margin:          c.Search.Margin,
		TopK:            c.Search.TopK,
		MinSeparation:   c.Search.MinSeparation,
		WallWeight:      c.Scoring.WallWeight,
		ClearanceWeight: c.Scoring.ClearanceWeight,
		LiftEpsilon:     c.Search.LiftEpsilon,
		DebugLimit:      c.Search.DebugLimit,
	}
}

// Thresholds returns the classifier section with zero fields defaulted.
func (c Config) Thresholds() scene.Thresholds {
	return c.Classifier.WithDefaults()
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Placement().Validate(); err != nil {
		return err
	}
	if err := c.Thresholds().Validate(); err != nil {
		return err
	}
	switch c.Cache.Backend {
	case BackendFile, BackendNone:
	case BackendRedis:
		if strings.TrimSpace(c.Cache.RedisURL) == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache.redis_url is required for the redis backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig,
			"cache.backend must be %q, %q or %q, got %q", BackendFile, BackendRedis, BackendNone, c.Cache.Backend)
	}
	if c.Cache.TTL < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.ttl cannot be negative")
	}
	if c.Batch.Workers <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "batch.workers must be positive, got %d", c.Batch.Workers)
	}
	if c.Server.MaxBodyBytes <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "server.max_body_bytes must be positive")
	}
	if c.Server.MaxGridPoints <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "server.max_grid_points must be positive, got %d", c.Server.MaxGridPoints)
	}
	return nil
}

// Load reads the file at path on top of Default. An empty path reads
// DefaultPath and falls back to defaults when that file does not exist; an
// explicit path must exist.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return Default(), nil
		}
		path = p
	}

	f, err := os.Open(path)
	if os.IsNotExist(err) && !explicit {
		return Default(), nil
	}
	if os.IsNotExist(err) {
		return Config{}, errors.New(errors.ErrCodeFileNotFound, "config file not found: %s", path)
	}
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInternal, err, "open config %s", path)
	}
	defer f.Close()

	cfg, err := Decode(f)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Decode reads TOML from r on top of Default and validates the result.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse toml")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, errors.New(errors.ErrCodeInvalidConfig, "unknown keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Encode writes cfg as TOML.
func Encode(w io.Writer, cfg Config) error {
	return toml.NewEncoder(w).Encode(cfg)
}

// DefaultPath returns $XDG_CONFIG_HOME/spotfinder/config.toml, falling back
// to ~/.config.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, AppName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName, "config.toml"), nil
}

// DefaultCacheDir returns $XDG_CACHE_HOME/spotfinder, falling back to
// ~/.cache.
func DefaultCacheDir() (string, error) {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", AppName), nil
}
