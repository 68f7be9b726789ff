// Package config provides functionality for parsing and validating
// olyfilter profile files (JSON/YAML) and environment settings.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables read by olyfilter.
const (
	EnvCSV            = "OLYFILTER_CSV"
	EnvDefaultColumns = "OLYFILTER_DEFAULT_COLUMNS"
	EnvLogLevel       = "OLYFILTER_LOG_LEVEL"
	EnvLogFormat      = "OLYFILTER_LOG_FORMAT"
)

// DefaultEnvFile is the dotenv file loaded from the working directory.
const DefaultEnvFile = ".env"

// LoadDotEnv loads variables from a dotenv file into the process
// environment. Variables already set are kept. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Env is the subset of settings that can come from the environment.
type Env struct {
	CSV            string
	DefaultColumns []string
	LogLevel       string
	LogFormat      string
}

// EnvFromOS reads Env from the process environment.
func EnvFromOS() Env {
	return EnvFromLookup(os.LookupEnv)
}

// EnvFromLookup reads Env through lookup.
func EnvFromLookup(lookup func(string) (string, bool)) Env {
	get := func(key string) string {
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}
	return Env{
		CSV:            get(EnvCSV),
		DefaultColumns: SplitList(get(EnvDefaultColumns)),
		LogLevel:       get(EnvLogLevel),
		LogFormat:      get(EnvLogFormat),
	}
}

// SplitList splits a comma-separated list, trimming items and dropping empty ones.
func SplitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
