// Package config provides functionality for parsing and validating
// olyfilter profile files (JSON/YAML) and environment settings.
package config

import (
	"encoding/json"
	"fmt"
)

// Profile holds flag defaults read from a profile file. Nil pointers and
// empty values mean "not set".
type Profile struct {
	CSV            string   `json:"csv,omitempty"`
	Filters        []string `json:"filters,omitempty"`
	Contains       *bool    `json:"contains,omitempty"`
	Where          string   `json:"where,omitempty"`
	ShowColumns    *bool    `json:"showColumns,omitempty"`
	DefaultColumns []string `json:"defaultColumns,omitempty"`
	Limit          *int     `json:"limit,omitempty"`
	Out            string   `json:"out,omitempty"`
}

// DecodeProfile converts validated profile data into a Profile.
func DecodeProfile(data map[string]interface{}) (*Profile, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encoding profile data: %w", err)
	}
	var p Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decoding profile: %w", err)
	}
	return &p, nil
}
