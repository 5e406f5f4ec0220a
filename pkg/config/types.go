// Package config provides configuration loading and validation for gooracle.
package config

import (
	"time"
)

// Config is the root configuration structure loaded from YAML.
type Config struct {
	Oracle OracleConfig `yaml:"oracle"`
	Output OutputConfig `yaml:"output"`
	Modes  []ModeConfig `yaml:"modes,omitempty"`

	// LogLevel is the minimum level of diagnostic logging on stderr.
	LogLevel string `yaml:"log_level,omitempty"`

	// path is the file the configuration was loaded from, empty for defaults.
	path string
}

// Path returns the file the configuration was loaded from, or "" when no
// file was found.
func (c *Config) Path() string {
	return c.path
}

// OracleConfig controls how the oracle tool is invoked.
type OracleConfig struct {
	// Path is the oracle binary. Empty means search GOBIN, GOPATH/bin and PATH.
	Path string `yaml:"path,omitempty"`

	// Scope lists the packages passed after the mode name.
	Scope []string `yaml:"scope,omitempty"`

	// Args are flags passed to every query before the mode name.
	Args []string `yaml:"args,omitempty"`

	// WorkDir is the directory the tool runs in and relative output paths
	// are resolved against. Empty means the current directory.
	WorkDir string `yaml:"work_dir,omitempty"`

	// Timeout limits a single query. Zero disables the limit.
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// Env adds variables to the tool's environment. Values of the form
	// ${VAR} or $VAR are expanded.
	Env map[string]string `yaml:"env,omitempty"`
}

// OutputFormat selects the renderer.
type OutputFormat string

const (
	OutputText OutputFormat = "text"
	OutputJSON OutputFormat = "json"
)

// LinkMode controls terminal hyperlinks in text output.
type LinkMode string

const (
	// LinksAuto emits hyperlinks only when stdout is a terminal.
	LinksAuto LinkMode = "auto"
	// LinksAlways always emits hyperlinks.
	LinksAlways LinkMode = "always"
	// LinksNever never emits hyperlinks.
	LinksNever LinkMode = "never"
)

// OutputConfig controls rendering of tool output.
type OutputConfig struct {
	// Format is text or json.
	Format OutputFormat `yaml:"format,omitempty"`

	// Links is auto, always or never.
	Links LinkMode `yaml:"links,omitempty"`

	// LinkTemplate builds the hyperlink target. {path}, {row} and {column}
	// are replaced, e.g. "vscode://file/{path}:{row}:{column}".
	LinkTemplate string `yaml:"link_template,omitempty"`
}

// ModeConfig adds a mode or overrides a built-in one.
type ModeConfig struct {
	// Name is the mode name used on the command line.
	Name string `yaml:"name"`

	// Description is shown in help and mode listings.
	Description string `yaml:"description,omitempty"`

	// Command is the oracle subcommand to run. Defaults to Name for
	// built-in modes and is required for new ones.
	Command string `yaml:"command,omitempty"`

	// Position is required, optional or none.
	Position string `yaml:"position,omitempty"`

	// Args are flags placed before the subcommand.
	Args []string `yaml:"args,omitempty"`

	// Annotate toggles location scanning. Defaults to true.
	Annotate *bool `yaml:"annotate,omitempty"`
}
