// Package config provides functionality for parsing and validating
// olyfilter profile files (JSON/YAML) and environment settings.
package config

import (
	"github.com/olyfilter/olyfilter/internal/modules/filter"
	"github.com/olyfilter/olyfilter/internal/modules/input"
)

// Settings are the effective options of one invocation.
//
// They are resolved in layers, later layers winning: defaults, environment,
// profile file, then command-line flags (applied by the caller).
type Settings struct {
	CSV            string
	Filters        []string
	Contains       bool
	Where          string
	ShowColumns    bool
	DefaultColumns []string
	Limit          int
	Out            string
	LogLevel       string
	LogFormat      string
}

// DefaultSettings returns the built-in defaults.
func DefaultSettings() Settings {
	return Settings{
		CSV:            input.DefaultPath,
		DefaultColumns: append([]string(nil), filter.DefaultColumns...),
		LogLevel:       "warn",
		LogFormat:      "human",
	}
}

// ApplyEnv overlays non-empty environment values.
func (s *Settings) ApplyEnv(env Env) {
	if env.CSV != "" {
		s.CSV = env.CSV
	}
	if len(env.DefaultColumns) > 0 {
		s.DefaultColumns = append([]string(nil), env.DefaultColumns...)
	}
	if env.LogLevel != "" {
		s.LogLevel = env.LogLevel
	}
	if env.LogFormat != "" {
		s.LogFormat = env.LogFormat
	}
}

// ApplyProfile overlays the values a profile sets. A nil profile is a no-op.
func (s *Settings) ApplyProfile(p *Profile) {
	if p == nil {
		return
	}
	if p.CSV != "" {
		s.CSV = p.CSV
	}
	if p.Filters != nil {
		s.Filters = append([]string(nil), p.Filters...)
	}
	if p.Contains != nil {
		s.Contains = *p.Contains
	}
	if p.Where != "" {
		s.Where = p.Where
	}
	if p.ShowColumns != nil {
		s.ShowColumns = *p.ShowColumns
	}
	if len(p.DefaultColumns) > 0 {
		s.DefaultColumns = append([]string(nil), p.DefaultColumns...)
	}
	if p.Limit != nil {
		s.Limit = *p.Limit
	}
	if p.Out != "" {
		s.Out = p.Out
	}
}
