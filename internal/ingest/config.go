package ingest

import (
	"fmt"
	"os"
	"strconv"

	"github.com/JaimeStill/folio/pkg/formatting"
)

const (
	DefaultMaxContentSize = "10MB"
	DefaultMaxSheetRows   = 100
	DefaultPreviewLength  = 200

	fallbackCeiling = 10 * 1024 * 1024
)

// Config holds ingestion limits.
type Config struct {
	MaxContentSize string `toml:"max_content_size"`
	MaxSheetRows   int    `toml:"max_sheet_rows"`
	PreviewLength  int    `toml:"preview_length"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	MaxContentSize string
	MaxSheetRows   string
	PreviewLength  string
}

// MaxContentSizeBytes returns the content ceiling in bytes.
func (c *Config) MaxContentSizeBytes() int64 {
	size, err := formatting.ParseBytes(c.MaxContentSize)
	if err != nil || size <= 0 {
		return fallbackCeiling
	}
	return size
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.MaxContentSize != "" {
		c.MaxContentSize = overlay.MaxContentSize
	}
	if overlay.MaxSheetRows != 0 {
		c.MaxSheetRows = overlay.MaxSheetRows
	}
	if overlay.PreviewLength != 0 {
		c.PreviewLength = overlay.PreviewLength
	}
}

func (c *Config) loadDefaults() {
	if c.MaxContentSize == "" {
		c.MaxContentSize = DefaultMaxContentSize
	}
	if c.MaxSheetRows == 0 {
		c.MaxSheetRows = DefaultMaxSheetRows
	}
	if c.PreviewLength == 0 {
		c.PreviewLength = DefaultPreviewLength
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.MaxContentSize != "" {
		if v := os.Getenv(env.MaxContentSize); v != "" {
			c.MaxContentSize = v
		}
	}
	if env.MaxSheetRows != "" {
		if v := os.Getenv(env.MaxSheetRows); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.MaxSheetRows = n
			}
		}
	}
	if env.PreviewLength != "" {
		if v := os.Getenv(env.PreviewLength); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.PreviewLength = n
			}
		}
	}
}

func (c *Config) validate() error {
	size, err := formatting.ParseBytes(c.MaxContentSize)
	if err != nil {
		return fmt.Errorf("invalid max_content_size: %w", err)
	}
	if size <= 0 {
		return fmt.Errorf("max_content_size must be positive")
	}
	if c.MaxSheetRows < 1 {
		return fmt.Errorf("max_sheet_rows must be positive: %d", c.MaxSheetRows)
	}
	if c.PreviewLength < 1 {
		return fmt.Errorf("preview_length must be positive: %d", c.PreviewLength)
	}
	return nil
}
