package core

import (
	"fmt"
	"time"
)

// ConfigError represents a configuration-related error with actionable instructions.
type ConfigError struct {
	Code    string // Error code for programmatic handling
	Message string // Human-readable error message
	Action  string // Actionable instruction for resolution
}

func (e *ConfigError) Error() string {
	if e.Action != "" {
		return fmt.Sprintf("%s. %s", e.Message, e.Action)
	}
	return e.Message
}

// Error codes for configuration errors
const (
	ErrCodeMissingConfig     = "MISSING_CONFIG"
	ErrCodeInvalidDimensions = "INVALID_DIMENSIONS"
	ErrCodeInvalidBatchSize  = "INVALID_BATCH_SIZE"
	ErrCodeInvalidTimeout    = "INVALID_TIMEOUT"
)

// ErrMissingConfig returns an error for a required value that is unset.
func ErrMissingConfig(envVar string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeMissingConfig,
		Message: fmt.Sprintf("Required configuration %s is not set", envVar),
		Action:  fmt.Sprintf("Set %s in your environment or .env file", envVar),
	}
}

// ErrInvalidDimensions returns an error for non-positive image dimensions.
func ErrInvalidDimensions(width, height int) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeInvalidDimensions,
		Message: fmt.Sprintf("Invalid image dimensions %dx%d", width, height),
		Action:  "Set AISTUDIO_WIDTH and AISTUDIO_HEIGHT to positive integers",
	}
}

// ErrInvalidBatchSize returns an error for a non-positive batch size.
func ErrInvalidBatchSize(size int) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeInvalidBatchSize,
		Message: fmt.Sprintf("Invalid batch size %d", size),
		Action:  "Set AISTUDIO_BATCH_SIZE to a positive integer",
	}
}

// ErrInvalidTimeout returns an error for a non-positive fetch timeout.
func ErrInvalidTimeout(d time.Duration) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeInvalidTimeout,
		Message: fmt.Sprintf("Invalid fetch timeout %v", d),
		Action:  "Set AISTUDIO_FETCH_TIMEOUT to a positive duration (e.g. 10s)",
	}
}
