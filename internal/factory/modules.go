// Package factory provides module creation functions for the pipeline runtime.
// It centralizes the logic for instantiating input, filter, and output modules
// from resolved settings.
//
// # Filter Order
//
// Filters run in a fixed order: column match, where expression, column
// projection, then row limit. A stage is omitted when its setting is unset.
package factory

import (
	"io"

	"github.com/olyfilter/olyfilter/internal/config"
	"github.com/olyfilter/olyfilter/internal/modules/filter"
	"github.com/olyfilter/olyfilter/internal/modules/input"
	"github.com/olyfilter/olyfilter/internal/modules/output"
)

// CreateInputModule creates the dataset loader for the configured path.
func CreateInputModule(s *config.Settings) input.Module {
	if s == nil {
		return nil
	}
	return input.NewCSVFile(s.CSV)
}

// CreateFilterModules creates filter module instances from settings.
// Filter expressions and the where expression are validated here, so argument
// errors surface before any file is read.
func CreateFilterModules(s *config.Settings) ([]filter.Module, error) {
	if s == nil {
		return nil, nil
	}

	var modules []filter.Module

	if len(s.Filters) > 0 {
		spec, err := filter.ParseExpressions(s.Filters)
		if err != nil {
			return nil, err
		}
		if s.Contains {
			spec.SetMode(filter.MatchSubstring)
		}
		modules = append(modules, filter.NewMatch(spec))
	}

	if s.Where != "" {
		cond, err := filter.NewCondition(s.Where)
		if err != nil {
			return nil, err
		}
		modules = append(modules, cond)
	}

	if s.ShowColumns {
		modules = append(modules, filter.NewSelect(s.DefaultColumns))
	}

	if s.Limit > 0 {
		modules = append(modules, filter.NewLimit(s.Limit))
	}
	return modules, nil
}

// CreateOutputModule creates a CSV file writer when an output path is set,
// otherwise a console renderer writing to w.
func CreateOutputModule(s *config.Settings, w io.Writer) (output.Module, error) {
	if s == nil {
		return nil, nil
	}
	if s.Out == "" {
		return output.NewConsole(w), nil
	}
	return output.NewCSVFile(s.Out)
}
