package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/ccollicutt/gooracle/pkg/oracle"
)

// Load reads and validates a configuration file.
func Load(_ context.Context, path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided config path is expected
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	cfg.path = path

	if err := cfg.applyEnvironmentOverrides(nil); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Find loads the configuration file named by path. With an empty path it
// loads the first existing file from SearchPaths, falling back to defaults
// (with environment overrides) when there is none.
func Find(ctx context.Context, path string) (*Config, error) {
	if path != "" {
		return Load(ctx, path)
	}

	for _, candidate := range SearchPaths() {
		if _, err := os.Stat(candidate); err == nil {
			return Load(ctx, candidate)
		}
	}

	cfg := DefaultConfig()
	if err := cfg.applyEnvironmentOverrides(nil); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// overrides are the environment variables that take precedence over the
// config file.
type overrides struct {
	OraclePath   string         `env:"GOORACLE_PATH"`
	Scope        []string       `env:"GOORACLE_SCOPE" envSeparator:","`
	WorkDir      string         `env:"GOORACLE_WORKDIR"`
	Timeout      *time.Duration `env:"GOORACLE_TIMEOUT"`
	Format       string         `env:"GOORACLE_OUTPUT"`
	Links        string         `env:"GOORACLE_LINKS"`
	LinkTemplate string         `env:"GOORACLE_LINK_TEMPLATE"`
	LogLevel     string         `env:"GOORACLE_LOG_LEVEL"`
}

// applyEnvironmentOverrides applies GOORACLE_* variables to the config.
// A nil environ reads the process environment.
func (c *Config) applyEnvironmentOverrides(environ map[string]string) error {
	o, err := env.ParseAsWithOptions[overrides](env.Options{Environment: environ})
	if err != nil {
		return err
	}

	if o.OraclePath != "" {
		c.Oracle.Path = o.OraclePath
	}
	if len(o.Scope) > 0 {
		c.Oracle.Scope = o.Scope
	}
	if o.WorkDir != "" {
		c.Oracle.WorkDir = o.WorkDir
	}
	if o.Timeout != nil {
		c.Oracle.Timeout = *o.Timeout
	}
	if o.Format != "" {
		c.Output.Format = OutputFormat(o.Format)
	}
	if o.Links != "" {
		c.Output.Links = LinkMode(o.Links)
	}
	if o.LinkTemplate != "" {
		c.Output.LinkTemplate = o.LinkTemplate
	}
	if o.LogLevel != "" {
		c.LogLevel = o.LogLevel
	}

	return nil
}

// Validate checks a configuration for errors and fills in defaults for
// fields left empty.
func Validate(cfg *Config) error {
	if cfg.Output.Format == "" {
		cfg.Output.Format = DefaultFormat
	}
	switch cfg.Output.Format {
	case OutputText, OutputJSON:
	default:
		return fmt.Errorf("output.format: invalid format %q (must be text or json)", cfg.Output.Format)
	}

	if cfg.Output.Links == "" {
		cfg.Output.Links = DefaultLinks
	}
	switch cfg.Output.Links {
	case LinksAuto, LinksAlways, LinksNever:
	default:
		return fmt.Errorf("output.links: invalid value %q (must be auto, always, or never)", cfg.Output.Links)
	}

	if cfg.Output.LinkTemplate == "" {
		cfg.Output.LinkTemplate = DefaultLinkTemplate
	}
	if !strings.Contains(cfg.Output.LinkTemplate, "{path}") {
		return errors.New("output.link_template: must contain {path}")
	}

	if cfg.Oracle.Timeout < 0 {
		return errors.New("oracle.timeout: must not be negative")
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	switch strings.ToLower(cfg.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level: invalid level %q (must be debug, info, warn, or error)", cfg.LogLevel)
	}

	for k, v := range cfg.Oracle.Env {
		if k == "" || strings.ContainsAny(k, "= ") {
			return fmt.Errorf("oracle.env: invalid variable name %q", k)
		}
		cfg.Oracle.Env[k] = expandEnvVar(v)
	}

	seen := make(map[string]bool)
	for i := range cfg.Modes {
		m := &cfg.Modes[i]
		if err := validateMode(m); err != nil {
			name := m.Name
			if name == "" {
				name = "unnamed"
			}
			return fmt.Errorf("modes[%d] (%s): %w", i, name, err)
		}
		if seen[m.Name] {
			return fmt.Errorf("modes[%d] (%s): duplicate mode name", i, m.Name)
		}
		seen[m.Name] = true
	}

	return nil
}

func validateMode(m *ModeConfig) error {
	if m.Name == "" {
		return errors.New("name is required")
	}
	if !oracle.ValidModeName(m.Name) {
		return errors.New("name must be lower case letters, digits and dashes")
	}

	if m.Command == "" && !oracle.IsBuiltin(m.Name) {
		return errors.New("command is required for modes that are not built in")
	}
	if m.Command != "" && !oracle.ValidModeName(m.Command) {
		return fmt.Errorf("invalid command %q", m.Command)
	}

	if m.Position != "" && !oracle.PositionRequirement(m.Position).Valid() {
		return fmt.Errorf("invalid position %q (must be required, optional, or none)", m.Position)
	}

	return nil
}

// ModeSet returns the built-in modes with the configured modes applied on
// top. A configured mode with a built-in name inherits that mode's settings
// and overrides only the fields it sets.
func (c *Config) ModeSet() (*oracle.ModeSet, error) {
	set := oracle.DefaultModes()

	for _, mc := range c.Modes {
		m, err := set.Lookup(mc.Name)
		if err != nil {
			m = oracle.Mode{Name: mc.Name, Annotate: true}
		}
		if mc.Command != "" {
			m.Command = mc.Command
		}
		if mc.Description != "" {
			m.Short = mc.Description
		}
		if mc.Position != "" {
			m.Position = oracle.PositionRequirement(mc.Position)
		}
		if len(mc.Args) > 0 {
			m.Args = append([]string(nil), mc.Args...)
		}
		if mc.Annotate != nil {
			m.Annotate = *mc.Annotate
		}
		if err := set.Add(m); err != nil {
			return nil, err
		}
	}

	return set, nil
}

// expandEnvVar expands environment variables in the format ${VAR} or $VAR.
func expandEnvVar(s string) string {
	if s == "" {
		return s
	}

	// Handle ${VAR} format
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		varName := s[2 : len(s)-1]
		return os.Getenv(varName)
	}

	// Handle $VAR format (no braces)
	if strings.HasPrefix(s, "$") && !strings.HasPrefix(s, "${") {
		varName := s[1:]
		return os.Getenv(varName)
	}

	return s
}
