package main

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hengadev/obfx"
)

// Profile is a reusable redaction profile for the run and watch commands.
// Explicit command-line flags override profile values.
type Profile struct {
	Fields      []string `yaml:"fields"`
	PrimaryKey  string   `yaml:"primary_key"`
	Format      string   `yaml:"format"`
	Mode        string   `yaml:"mode"`
	MaskToken   string   `yaml:"mask_token"`
	TokenLength int      `yaml:"token_length"`
}

// LoadProfile loads a profile from a YAML file
func LoadProfile(path string) (*Profile, error) {
	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("profile not found: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}

	profile := &Profile{}
	if err := yaml.Unmarshal(data, profile); err != nil {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}

	return profile, nil
}

// SaveProfile saves a profile to a YAML file
func SaveProfile(profile *Profile, path string) error {
	data, err := yaml.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write profile: %w", err)
	}

	return nil
}

// DefaultProfile returns a starter profile for obfx init
func DefaultProfile() *Profile {
	return &Profile{
		Fields:      []string{"email"},
		PrimaryKey:  obfx.DefaultPrimaryKeyField,
		Format:      obfx.FormatCSV,
		Mode:        string(obfx.ModeToken),
		TokenLength: obfx.DefaultTokenLength,
	}
}

// Validate checks if the profile is usable
func (p *Profile) Validate() error {
	for _, field := range p.Fields {
		if strings.TrimSpace(field) == "" {
			return fmt.Errorf("fields cannot contain empty names")
		}
	}

	if p.Mode != "" && p.Mode != string(obfx.ModeToken) && p.Mode != string(obfx.ModeMask) {
		return fmt.Errorf("mode must be one of: %s, %s", obfx.ModeToken, obfx.ModeMask)
	}

	if p.Format != "" {
		if _, err := obfx.GetAdapter(p.Format); err != nil {
			return err
		}
	}

	if p.TokenLength < 0 {
		return fmt.Errorf("token_length cannot be negative")
	}

	return nil
}
