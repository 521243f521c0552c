// Package api exposes the artifact index over HTTP.
package api

import (
	"strings"

	"github.com/gcbaptista/go-artifact-index/config"
)

// ValidationError represents a validation error with field context
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult holds the result of validation operations
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// AddError adds a validation error to the result
func (vr *ValidationResult) AddError(field, message string) {
	vr.Valid = false
	vr.Errors = append(vr.Errors, ValidationError{
		Field:   field,
		Message: message,
	})
}

// HasErrors returns true if there are validation errors
func (vr *ValidationResult) HasErrors() bool {
	return len(vr.Errors) > 0
}

// ValidateRegistryName validates a registry name parameter
func ValidateRegistryName(name string) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if name == "" {
		result.AddError("name", "Registry name is required")
		return result
	}

	if strings.TrimSpace(name) != name {
		result.AddError("name", "Registry name cannot have leading or trailing whitespace")
	}

	return result
}

// ValidateRegistrySettings validates a registry declaration
func ValidateRegistrySettings(settings *config.RegistrySettings) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if settings == nil {
		result.AddError("settings", "Registry settings are required")
		return result
	}

	if strings.TrimSpace(settings.Name) == "" {
		result.AddError("name", "Registry name is required")
	} else if nameResult := ValidateRegistryName(settings.Name); nameResult.HasErrors() {
		result.Errors = append(result.Errors, nameResult.Errors...)
		result.Valid = false
	} else if strings.ContainsAny(settings.Name, `/\`) || settings.Name == "." || settings.Name == ".." {
		result.AddError("name", "Registry name must be a single path segment")
	}

	if strings.TrimSpace(settings.Location) == "" {
		result.AddError("location", "Registry location is required")
	}

	return result
}
