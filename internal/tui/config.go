package tui

import (
	"github.com/Veraticus/grantflow/internal/network"
	"github.com/Veraticus/grantflow/internal/tui/themes"
)

// Config holds explorer configuration.
type Config struct {
	Theme     themes.Theme
	Lookup    network.Lookup
	Years     []int
	MinAmount float64
	Depth     int
	MaxOrgs   int
	Width     int
	Height    int
}

// Option is a functional option for configuring the explorer.
type Option func(*Config)

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Theme:  themes.Default,
		Depth:  1,
		Width:  100,
		Height: 30,
	}
}

// WithLookup sets the indexed dataset queries run against.
func WithLookup(l network.Lookup) Option {
	return func(c *Config) {
		c.Lookup = l
	}
}

// WithQueryDefaults sets the starting filter values for network queries.
func WithQueryDefaults(depth int, minAmount float64, years []int) Option {
	return func(c *Config) {
		c.Depth = depth
		c.MinAmount = minAmount
		c.Years = years
	}
}

// WithMaxOrgs limits rendered networks to the root plus the n largest
// organizations. Zero disables the limit.
func WithMaxOrgs(n int) Option {
	return func(c *Config) {
		c.MaxOrgs = n
	}
}

// WithTheme sets a custom theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}
