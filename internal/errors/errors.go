package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions
var (
	// ErrRegistryNotFound is returned when a registry is not found
	ErrRegistryNotFound = errors.New("registry not found")

	// ErrRegistryAlreadyExists is returned when trying to add a registry that already exists
	ErrRegistryAlreadyExists = errors.New("registry already exists")

	// ErrJobNotFound is returned when a job is not found
	ErrJobNotFound = errors.New("job not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrManifestInvalid is returned when an artifact manifest cannot be indexed
	ErrManifestInvalid = errors.New("invalid artifact manifest")
)

// RegistryNotFoundError represents a registry not found error with context
type RegistryNotFoundError struct {
	RegistryName string
}

func (e *RegistryNotFoundError) Error() string {
	return fmt.Sprintf("registry named '%s' not found", e.RegistryName)
}

func (e *RegistryNotFoundError) Is(target error) bool {
	return target == ErrRegistryNotFound
}

// NewRegistryNotFoundError creates a new RegistryNotFoundError
func NewRegistryNotFoundError(registryName string) *RegistryNotFoundError {
	return &RegistryNotFoundError{RegistryName: registryName}
}

// RegistryAlreadyExistsError represents a registry already exists error with context
type RegistryAlreadyExistsError struct {
	RegistryName string
}

func (e *RegistryAlreadyExistsError) Error() string {
	return fmt.Sprintf("registry named '%s' already exists", e.RegistryName)
}

func (e *RegistryAlreadyExistsError) Is(target error) bool {
	return target == ErrRegistryAlreadyExists
}

// NewRegistryAlreadyExistsError creates a new RegistryAlreadyExistsError
func NewRegistryAlreadyExistsError(registryName string) *RegistryAlreadyExistsError {
	return &RegistryAlreadyExistsError{RegistryName: registryName}
}

// JobNotFoundError represents a job not found error with context
type JobNotFoundError struct {
	JobID string
}

func (e *JobNotFoundError) Error() string {
	return fmt.Sprintf("job with ID '%s' not found", e.JobID)
}

func (e *JobNotFoundError) Is(target error) bool {
	return target == ErrJobNotFound
}

// NewJobNotFoundError creates a new JobNotFoundError
func NewJobNotFoundError(jobID string) *JobNotFoundError {
	return &JobNotFoundError{JobID: jobID}
}

// ValidationError represents an input validation error with context
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// ManifestError names the manifest that could not be indexed and why
type ManifestError struct {
	Path   string
	Reason string
}

func (e *ManifestError) Error() string {
	return fmt.Sprintf("manifest '%s': %s", e.Path, e.Reason)
}

func (e *ManifestError) Is(target error) bool {
	return target == ErrManifestInvalid
}

// NewManifestError creates a new ManifestError
func NewManifestError(path, reason string) *ManifestError {
	return &ManifestError{Path: path, Reason: reason}
}
