// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	// Default settings
	Defaults struct {
		Format        string  `yaml:"format"`
		Checks        string  `yaml:"checks"`
		MinConfidence float64 `yaml:"min_confidence"`
		OutputDir     string  `yaml:"output_dir"`
		Verbose       bool    `yaml:"verbose"`
		Debug         bool    `yaml:"debug"`
		NoColor       bool    `yaml:"no_color"`
	} `yaml:"defaults"`

	// Detection settings
	Detection struct {
		PaddingPx float64 `yaml:"padding_px"`
		EnableML  bool    `yaml:"enable_ml"`
	} `yaml:"detection"`

	// Render settings for paged formats
	Render struct {
		Scale float64 `yaml:"scale"`
	} `yaml:"render"`

	// Export settings
	Export struct {
		JPEGQuality int `yaml:"jpeg_quality"`
	} `yaml:"export"`

	// PDF metadata sanitization toggles
	Sanitizer struct {
		InfoDict    bool `yaml:"info_dict"`
		XMP         bool `yaml:"xmp"`
		Annotations bool `yaml:"annotations"`
		Forms       bool `yaml:"forms"`
		Attachments bool `yaml:"attachments"`
		JavaScript  bool `yaml:"javascript"`
	} `yaml:"sanitizer"`

	// Profiles for different redaction scenarios
	Profiles map[string]Profile `yaml:"profiles"`
}

// Profile represents a redaction profile with specific settings
type Profile struct {
	Checks        string  `yaml:"checks"`
	MinConfidence float64 `yaml:"min_confidence"`
	OutputDir     string  `yaml:"output_dir"`
	Verbose       bool    `yaml:"verbose"`
	Debug         bool    `yaml:"debug"`
	NoColor       bool    `yaml:"no_color"`
	Description   string  `yaml:"description"`
}

// LoadConfig loads configuration from the specified file, falling back to
// defaults for anything the file leaves out
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{
		Profiles: make(map[string]Profile),
	}

	// Set default values
	config.Defaults.Format = "text"
	config.Defaults.Checks = "all"
	config.Defaults.MinConfidence = 0.5
	config.Defaults.OutputDir = "./redacted"
	config.Detection.PaddingPx = 4.0
	config.Detection.EnableML = false
	config.Render.Scale = 2.0
	config.Export.JPEGQuality = 92
	config.Sanitizer.InfoDict = true
	config.Sanitizer.XMP = true
	config.Sanitizer.Annotations = true
	config.Sanitizer.Forms = true
	config.Sanitizer.Attachments = true
	config.Sanitizer.JavaScript = true

	config.Profiles["strict"] = Profile{
		Checks:        "all",
		MinConfidence: 0.3,
		OutputDir:     "./redacted",
		Description:   "Catch-everything profile: low confidence floor, all categories",
	}
	config.Profiles["financial"] = Profile{
		Checks:        "CREDIT_CARD,IBAN,SWIFT_BIC,SSN,CPF",
		MinConfidence: 0.6,
		OutputDir:     "./redacted",
		Description:   "Financial document profile: account and identity numbers only",
	}

	// If no config file specified, return default config
	if configPath == "" {
		return config, nil
	}

	cleanPath := filepath.Clean(configPath)
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Store default values before unmarshaling so bools not present in the
	// file keep their defaults instead of unmarshaling to false
	defaultSanitizer := config.Sanitizer

	err = yaml.Unmarshal(data, config)
	if err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if !containsField(data, "sanitizer") {
		config.Sanitizer = defaultSanitizer
	}
	if config.Render.Scale == 0 {
		config.Render.Scale = 2.0
	}
	if config.Detection.PaddingPx == 0 {
		config.Detection.PaddingPx = 4.0
	}
	if config.Export.JPEGQuality == 0 {
		config.Export.JPEGQuality = 92
	}

	if err := ValidateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// LoadConfigOrDefault loads the given config file, or the discovered
// default, or built-in defaults, in that order. Errors degrade to defaults.
func LoadConfigOrDefault(configFile string) *Config {
	if configFile == "" {
		configFile = FindConfigFile()
	}
	config, err := LoadConfig(configFile)
	if err != nil {
		config, _ = LoadConfig("")
	}
	return config
}

// FindConfigFile looks for a config file in standard locations
func FindConfigFile() string {
	candidates := []string{"inkblot.yaml", "inkblot.yml"}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates,
			filepath.Join(home, ".inkblot", "config.yaml"),
			filepath.Join(home, ".config", "inkblot", "config.yaml"),
		)
	}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c
		}
	}
	return ""
}

// ValidateConfig checks value ranges
func ValidateConfig(config *Config) error {
	if config.Defaults.MinConfidence < 0 || config.Defaults.MinConfidence > 1 {
		return fmt.Errorf("defaults.min_confidence must be in [0,1], got %v", config.Defaults.MinConfidence)
	}
	if config.Render.Scale <= 0 {
		return fmt.Errorf("render.scale must be positive, got %v", config.Render.Scale)
	}
	if config.Detection.PaddingPx < 0 {
		return fmt.Errorf("detection.padding_px must not be negative, got %v", config.Detection.PaddingPx)
	}
	if config.Export.JPEGQuality < 1 || config.Export.JPEGQuality > 100 {
		return fmt.Errorf("export.jpeg_quality must be in [1,100], got %d", config.Export.JPEGQuality)
	}
	for name, p := range config.Profiles {
		if p.MinConfidence < 0 || p.MinConfidence > 1 {
			return fmt.Errorf("profile %q: min_confidence must be in [0,1], got %v", name, p.MinConfidence)
		}
	}
	return nil
}

// ListProfiles returns the names of all configured profiles
func (c *Config) ListProfiles() []string {
	names := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		names = append(names, name)
	}
	return names
}

// GetProfile returns the named profile, or nil if it doesn't exist
func (c *Config) GetProfile(name string) *Profile {
	if profile, ok := c.Profiles[name]; ok {
		return &profile
	}
	return nil
}

// EnabledChecks parses a checks spec ("all" or a comma-separated category
// list) into the enablement map the validator registry takes. "all" and the
// empty string return nil, which enables every category.
func EnabledChecks(spec string) map[string]bool {
	spec = strings.TrimSpace(spec)
	if spec == "" || strings.EqualFold(spec, "all") {
		return nil
	}
	enabled := make(map[string]bool)
	for _, name := range strings.Split(spec, ",") {
		name = strings.ToUpper(strings.TrimSpace(name))
		if name != "" {
			enabled[name] = true
		}
	}
	return enabled
}

// containsField checks if a top-level field is present in the raw YAML
func containsField(data []byte, path ...string) bool {
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return false
	}
	current := raw
	for i, key := range path {
		v, ok := current[key]
		if !ok {
			return false
		}
		if i == len(path)-1 {
			return true
		}
		next, ok := v.(map[string]interface{})
		if !ok {
			return false
		}
		current = next
	}
	return false
}
