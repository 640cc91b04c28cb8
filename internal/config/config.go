package config

import (
	"errors"
	"fmt"
	"image/color"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
)

type Config struct {
	Port      string `env:"PORT" envDefault:"8080"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"`

	// URLPrefix is the path namespace thumbnails are served and stored under
	URLPrefix string `env:"URL_PREFIX" envDefault:"lt_cache"`

	// Source images: local, r2 or http
	SourceBackend  string `env:"SOURCE_BACKEND" envDefault:"local"`
	MediaRoot      string `env:"MEDIA_ROOT" envDefault:"./media"`
	SourceBaseURL  string `env:"SOURCE_BASE_URL"`
	R2SourcePrefix string `env:"R2_SOURCE_PREFIX"`

	// Rendered thumbnails: local or r2
	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"local"`
	StorageRoot    string `env:"STORAGE_ROOT" envDefault:"./media"`

	// Negative-result cache: memory or redis
	CacheBackend string `env:"CACHE_BACKEND" envDefault:"memory"`
	CacheSize    int    `env:"CACHE_SIZE" envDefault:"10000"`
	RedisURL     string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`

	// Encoder: std or vips
	ImageEncoder string `env:"IMAGE_ENCODER" envDefault:"std"`

	Quality              int    `env:"LAZYTHUMBS_QUALITY_FACTOR" envDefault:"60"`
	Optimize             bool   `env:"LAZYTHUMBS_OPTIMIZE_FLAG" envDefault:"true"`
	Progressive          bool   `env:"LAZYTHUMBS_PROGRESSIVE_FLAG" envDefault:"true"`
	MatteBackgroundColor string `env:"LAZYTHUMBS_MATTE_BACKGROUND_COLOR" envDefault:"0,0,0"`
	// Cache lifetimes in seconds
	CacheTimeout         int `env:"LAZYTHUMBS_CACHE_TIMEOUT" envDefault:"2592000"`
	NotFoundCacheTimeout int `env:"LAZYTHUMBS_404_CACHE_TIMEOUT" envDefault:"300"`

	// Largest accepted width or height of a requested geometry
	MaxDimension int `env:"LAZYTHUMBS_MAX_DIMENSION" envDefault:"10000"`

	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	R2AccountID       string `env:"R2_ACCOUNT_ID"`
	R2AccessKeyID     string `env:"R2_ACCESS_KEY_ID"`
	R2SecretAccessKey string `env:"R2_SECRET_ACCESS_KEY"`
	R2Bucket          string `env:"R2_BUCKET" envDefault:"lazythumbs"`
	R2S3Endpoint      string `env:"R2_S3_ENDPOINT"`
}

// Load reads .env files, if any, then the process environment.
func Load() (*Config, error) {
	// Try to load .env file from project root
	envPath := filepath.Join("..", ".env")
	_ = godotenv.Load(envPath)

	// Also try loading from current directory
	_ = godotenv.Load(".env")

	return parse(env.Options{})
}

// LoadFromMap parses the given variables only.
func LoadFromMap(vars map[string]string) (*Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks backend names, ranges and required settings.
func (c *Config) Validate() error {
	var errs []error

	if !oneOf(c.SourceBackend, "local", "r2", "http") {
		errs = append(errs, fmt.Errorf("SOURCE_BACKEND must be local, r2 or http; got %q", c.SourceBackend))
	}
	if c.SourceBackend == "http" && c.SourceBaseURL == "" {
		errs = append(errs, errors.New("SOURCE_BASE_URL is required when SOURCE_BACKEND=http"))
	}
	if !oneOf(c.StorageBackend, "local", "r2") {
		errs = append(errs, fmt.Errorf("STORAGE_BACKEND must be local or r2; got %q", c.StorageBackend))
	}
	if (c.SourceBackend == "r2" || c.StorageBackend == "r2") && c.R2AccountID == "" && c.R2S3Endpoint == "" {
		errs = append(errs, errors.New("R2_ACCOUNT_ID or R2_S3_ENDPOINT is required for the r2 backend"))
	}
	if !oneOf(c.CacheBackend, "memory", "redis") {
		errs = append(errs, fmt.Errorf("CACHE_BACKEND must be memory or redis; got %q", c.CacheBackend))
	}
	if c.CacheBackend == "memory" && c.CacheSize <= 0 {
		errs = append(errs, fmt.Errorf("CACHE_SIZE must be positive; got %d", c.CacheSize))
	}
	if !oneOf(c.ImageEncoder, "std", "vips") {
		errs = append(errs, fmt.Errorf("IMAGE_ENCODER must be std or vips; got %q", c.ImageEncoder))
	}
	if c.Quality <= 0 || c.Quality > 100 {
		errs = append(errs, fmt.Errorf("LAZYTHUMBS_QUALITY_FACTOR must be in 1..100; got %d", c.Quality))
	}
	if c.MaxDimension <= 0 {
		errs = append(errs, fmt.Errorf("LAZYTHUMBS_MAX_DIMENSION must be positive; got %d", c.MaxDimension))
	}
	if c.CacheTimeout < 0 || c.NotFoundCacheTimeout < 0 {
		errs = append(errs, errors.New("cache timeouts must not be negative"))
	}
	if _, err := c.MatteColor(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// Addr is the HTTP listen address.
func (c *Config) Addr() string {
	return ":" + c.Port
}

func (c *Config) SuccessTTL() time.Duration {
	return time.Duration(c.CacheTimeout) * time.Second
}

func (c *Config) NotFoundTTL() time.Duration {
	return time.Duration(c.NotFoundCacheTimeout) * time.Second
}

// MatteColor parses LAZYTHUMBS_MATTE_BACKGROUND_COLOR, either "r,g,b" or
// "#rrggbb".
func (c *Config) MatteColor() (color.NRGBA, error) {
	s := strings.TrimSpace(c.MatteBackgroundColor)

	if strings.HasPrefix(s, "#") {
		hex := strings.TrimPrefix(s, "#")
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil || len(hex) != 6 {
			return color.NRGBA{}, fmt.Errorf("invalid matte color %q", c.MatteBackgroundColor)
		}
		return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
	}

	parts := strings.Split(strings.Trim(s, "()"), ",")
	if len(parts) != 3 {
		return color.NRGBA{}, fmt.Errorf("invalid matte color %q: want r,g,b", c.MatteBackgroundColor)
	}
	var rgb [3]uint8
	for i, p := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid matte color %q: %w", c.MatteBackgroundColor, err)
		}
		rgb[i] = uint8(v)
	}
	return color.NRGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: 0xff}, nil
}

func oneOf(value string, allowed ...string) bool {
	for _, a := range allowed {
		if value == a {
			return true
		}
	}
	return false
}
