package api

import (
	"testing"

	"github.com/gcbaptista/go-artifact-index/config"
)

func TestValidationResult_AddError(t *testing.T) {
	result := &ValidationResult{Valid: true}

	result.AddError("field1", "error message")

	if result.Valid {
		t.Error("Expected Valid to be false after adding error")
	}

	if len(result.Errors) != 1 {
		t.Fatalf("Expected 1 error, got %d", len(result.Errors))
	}

	if result.Errors[0].Field != "field1" {
		t.Errorf("Expected field 'field1', got '%s'", result.Errors[0].Field)
	}

	if result.Errors[0].Message != "error message" {
		t.Errorf("Expected message 'error message', got '%s'", result.Errors[0].Message)
	}
}

func TestValidationResult_HasErrors(t *testing.T) {
	result := &ValidationResult{Valid: true}

	if result.HasErrors() {
		t.Error("Expected HasErrors to be false for empty result")
	}

	result.AddError("field", "message")

	if !result.HasErrors() {
		t.Error("Expected HasErrors to be true after adding error")
	}
}

func TestValidateRegistryName(t *testing.T) {
	tests := []struct {
		name         string
		registryName string
		wantValid    bool
	}{
		{name: "valid name", registryName: "default", wantValid: true},
		{name: "empty name", registryName: "", wantValid: false},
		{name: "leading whitespace", registryName: " default", wantValid: false},
		{name: "trailing whitespace", registryName: "default\t", wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateRegistryName(tt.registryName)
			if result.HasErrors() == tt.wantValid {
				t.Errorf("ValidateRegistryName(%q) valid = %v, want %v (errors: %v)",
					tt.registryName, !result.HasErrors(), tt.wantValid, result.Errors)
			}
		})
	}
}

func TestValidateRegistrySettings(t *testing.T) {
	tests := []struct {
		name       string
		settings   *config.RegistrySettings
		wantFields []string
	}{
		{
			name:     "valid settings",
			settings: &config.RegistrySettings{Name: "default", Location: "/srv/registry"},
		},
		{
			name:       "nil settings",
			settings:   nil,
			wantFields: []string{"settings"},
		},
		{
			name:       "missing everything",
			settings:   &config.RegistrySettings{},
			wantFields: []string{"name", "location"},
		},
		{
			name:       "path in name",
			settings:   &config.RegistrySettings{Name: "team/default", Location: "/srv/registry"},
			wantFields: []string{"name"},
		},
		{
			name:       "dot-dot name",
			settings:   &config.RegistrySettings{Name: "..", Location: "/srv/registry"},
			wantFields: []string{"name"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateRegistrySettings(tt.settings)
			if len(result.Errors) != len(tt.wantFields) {
				t.Fatalf("Expected %d errors, got %d: %v", len(tt.wantFields), len(result.Errors), result.Errors)
			}
			for i, field := range tt.wantFields {
				if result.Errors[i].Field != field {
					t.Errorf("Error %d: expected field '%s', got '%s'", i, field, result.Errors[i].Field)
				}
			}
			if result.Valid != (len(tt.wantFields) == 0) {
				t.Errorf("Expected Valid=%v, got %v", len(tt.wantFields) == 0, result.Valid)
			}
		})
	}
}
