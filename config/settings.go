// Package config provides configuration structures for the artifact index service.
// It defines server settings and the registries served at startup.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Default values applied by ApplyDefaults
const (
	DefaultDataDir         = "./data"
	DefaultPort            = 8080
	DefaultLogFormat       = "text"
	DefaultMaxRequestBytes = 1 << 20
)

// RegistrySettings declares one local artifact registry: a directory tree of
// YAML artifact manifests served under a name.
type RegistrySettings struct {
	Name     string `json:"name" yaml:"name"`         // Unique registry name, used in API paths
	Location string `json:"location" yaml:"location"` // Directory holding the manifests
}

// Settings contains all configuration options for the service.
type Settings struct {
	DataDir         string             `json:"data_dir" yaml:"data_dir"`                   // Where persisted indexes live (DataDir/<registry>/index.json)
	Port            int                `json:"port" yaml:"port"`                           // HTTP listen port
	LogFormat       string             `json:"log_format" yaml:"log_format"`               // "json" or "text"
	Verbose         bool               `json:"verbose" yaml:"verbose"`                     // Enable debug logging
	MaxRequestBytes int64              `json:"max_request_bytes" yaml:"max_request_bytes"` // Upper bound for request bodies
	Registries      []RegistrySettings `json:"registries" yaml:"registries"`               // Registries loaded at startup
}

// Load reads settings from a YAML file and applies defaults. Validation is
// left to the caller so flags can override file values first.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from the operator
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var settings Settings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	settings.ApplyDefaults()
	return &settings, nil
}

// Validate checks the settings and returns one message per problem.
func (settings *Settings) Validate() []string {
	var problems []string

	if strings.TrimSpace(settings.DataDir) == "" {
		problems = append(problems, "data_dir cannot be empty")
	}
	if settings.Port <= 0 || settings.Port > 65535 {
		problems = append(problems, fmt.Sprintf("port %d is out of range", settings.Port))
	}
	if settings.LogFormat != "json" && settings.LogFormat != "text" {
		problems = append(problems, "Invalid log_format '"+settings.LogFormat+"' (must be 'json' or 'text')")
	}
	if settings.MaxRequestBytes <= 0 {
		problems = append(problems, "max_request_bytes must be positive")
	}

	names := make([]string, 0, len(settings.Registries))
	for i, registry := range settings.Registries {
		problems = append(problems, registry.Validate(i)...)
		names = append(names, registry.Name)
	}
	problems = append(problems, checkDuplicates("registries", names)...)

	return problems
}

// Validate checks one registry entry; position is used in messages.
func (registry *RegistrySettings) Validate(position int) []string {
	var problems []string
	if strings.TrimSpace(registry.Name) == "" {
		problems = append(problems, fmt.Sprintf("registries[%d]: name cannot be empty or whitespace-only", position))
	} else if strings.ContainsAny(registry.Name, `/\`) || registry.Name == "." || registry.Name == ".." {
		problems = append(problems, fmt.Sprintf("registries[%d]: name '%s' must be a single path segment", position, registry.Name))
	}
	if strings.TrimSpace(registry.Location) == "" {
		problems = append(problems, fmt.Sprintf("registries[%d]: location cannot be empty", position))
	}
	return problems
}

// checkDuplicates checks for duplicate values in a slice and returns error messages
func checkDuplicates(fieldName string, values []string) []string {
	var errors []string
	seen := make(map[string]bool)

	for _, value := range values {
		if seen[value] {
			errors = append(errors, "Duplicate name '"+value+"' found in "+fieldName)
		}
		seen[value] = true
	}

	return errors
}

// ApplyDefaults applies default values to the settings
func (settings *Settings) ApplyDefaults() {
	if settings.DataDir == "" {
		settings.DataDir = DefaultDataDir
	}
	if settings.Port == 0 {
		settings.Port = DefaultPort
	}
	if settings.LogFormat == "" {
		settings.LogFormat = DefaultLogFormat
	}
	if settings.MaxRequestBytes == 0 {
		settings.MaxRequestBytes = DefaultMaxRequestBytes
	}

	// Initialize empty slices if nil to prevent nil pointer issues
	if settings.Registries == nil {
		settings.Registries = []RegistrySettings{}
	}
}
