package config

import (
	"os"
	"path/filepath"
	"time"
)

// Default values for configuration.
const (
	DefaultTimeout      = 5 * time.Minute
	DefaultFormat       = OutputText
	DefaultLinks        = LinksAuto
	DefaultLinkTemplate = "file://{path}"
	DefaultLogLevel     = "warn"
)

// Config file names searched by Find.
const (
	LocalFileName = ".gooracle.yaml"
	EnvConfigFile = "GOORACLE_CONFIG"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Oracle: OracleConfig{
			Timeout: DefaultTimeout,
		},
		Output: OutputConfig{
			Format:       DefaultFormat,
			Links:        DefaultLinks,
			LinkTemplate: DefaultLinkTemplate,
		},
		LogLevel: DefaultLogLevel,
	}
}

// SearchPaths returns the config files Find looks at, in order:
//  1. $GOORACLE_CONFIG
//  2. ./.gooracle.yaml
//  3. $XDG_CONFIG_HOME/gooracle/config.yaml (or the OS equivalent)
func SearchPaths() []string {
	var paths []string

	if p := os.Getenv(EnvConfigFile); p != "" {
		paths = append(paths, p)
	}
	paths = append(paths, LocalFileName)
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, "gooracle", "config.yaml"))
	}

	return paths
}
