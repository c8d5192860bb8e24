// SPDX-License-Identifier: MPL-2.0

package config

import "fmt"

type (
	// Config holds the bundler's settings. Field names follow the CUE schema
	// in config_schema.cue; mapstructure tags bind them through Viper.
	Config struct {
		// Output is the path the emitted bundle is written to.
		Output string `mapstructure:"output"`

		// Compat disables shared-module deduplication and the caching loader.
		Compat bool `mapstructure:"compat"`

		// MaxModules caps the number of modules one build may discover.
		MaxModules int `mapstructure:"max_modules"`

		Resolve ResolveConfig `mapstructure:"resolve"`
		UI      UIConfig      `mapstructure:"ui"`
	}

	// ResolveConfig controls import specifier resolution.
	ResolveConfig struct {
		// Extensions are probed, in order, for extension-less specifiers.
		Extensions []string `mapstructure:"extensions"`
	}

	// UIConfig controls terminal output.
	UIConfig struct {
		// Verbose emits debug-level discovery logs.
		Verbose bool `mapstructure:"verbose"`
	}
)

// DefaultConfig returns the built-in defaults used when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		Output:     "bundle.js",
		Compat:     false,
		MaxModules: 1024,
		Resolve: ResolveConfig{
			Extensions: []string{".js", ".mjs"},
		},
		UI: UIConfig{
			Verbose: false,
		},
	}
}

// Validate checks constraints the CUE schema cannot express for merged
// values (Viper merges file values over defaults after schema validation).
func (c *Config) Validate() error {
	if c.Output == "" {
		return fmt.Errorf("output: must not be empty")
	}
	if c.MaxModules <= 0 {
		return fmt.Errorf("max_modules: must be positive, got %d", c.MaxModules)
	}
	for i, ext := range c.Resolve.Extensions {
		if len(ext) < 2 || ext[0] != '.' {
			return fmt.Errorf("resolve.extensions[%d]: %q must start with '.'", i, ext)
		}
	}
	return nil
}
