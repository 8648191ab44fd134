// Package pagination parses page requests and shapes paged results.
package pagination

import (
	"fmt"
	"os"
	"strconv"
)

// Config bounds page requests. Searches longer than MaxSearchLength runes
// are cut before they reach the query.
type Config struct {
	DefaultPageSize int `toml:"default_page_size"`
	MaxPageSize     int `toml:"max_page_size"`
	MaxSearchLength int `toml:"max_search_length"`
}

// ConfigEnv maps config fields to environment variable names.
type ConfigEnv struct {
	DefaultPageSize string
	MaxPageSize     string
	MaxSearchLength string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *ConfigEnv) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge applies non-zero values from overlay.
func (c *Config) Merge(overlay *Config) {
	for dst, v := range c.fields(overlay) {
		if v != 0 {
			*dst = v
		}
	}
}

func (c *Config) fields(o *Config) map[*int]int {
	return map[*int]int{
		&c.DefaultPageSize: o.DefaultPageSize,
		&c.MaxPageSize:     o.MaxPageSize,
		&c.MaxSearchLength: o.MaxSearchLength,
	}
}

func (c *Config) loadDefaults() {
	defaults := &Config{DefaultPageSize: 20, MaxPageSize: 100, MaxSearchLength: 200}
	for dst, v := range c.fields(defaults) {
		if *dst <= 0 {
			*dst = v
		}
	}
}

func (c *Config) loadEnv(env *ConfigEnv) {
	keys := map[*int]string{
		&c.DefaultPageSize: env.DefaultPageSize,
		&c.MaxPageSize:     env.MaxPageSize,
		&c.MaxSearchLength: env.MaxSearchLength,
	}
	for dst, key := range keys {
		if key == "" {
			continue
		}
		if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
			*dst = n
		}
	}
}

func (c *Config) validate() error {
	switch {
	case c.DefaultPageSize < 1:
		return fmt.Errorf("default_page_size must be positive")
	case c.MaxPageSize < 1:
		return fmt.Errorf("max_page_size must be positive")
	case c.DefaultPageSize > c.MaxPageSize:
		return fmt.Errorf("default_page_size cannot exceed max_page_size")
	case c.MaxSearchLength < 1:
		return fmt.Errorf("max_search_length must be positive")
	}
	return nil
}
