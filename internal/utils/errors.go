package utils

import "fmt"

// ConfigurationError represents invalid strategy or request parameters. It is
// raised before any simulation state is mutated.
type ConfigurationError struct {
	Message string
}

// Error returns the error message string.
func (e *ConfigurationError) Error() string {
	return e.Message
}

// NewConfigurationError creates a new ConfigurationError with a specific message.
func NewConfigurationError(message string) error {
	return &ConfigurationError{Message: message}
}

// NewConfigurationErrorf creates a new ConfigurationError with a formatted message.
func NewConfigurationErrorf(format string, args ...interface{}) error {
	return &ConfigurationError{Message: fmt.Sprintf(format, args...)}
}

// DataUnavailableError represents an empty or unusable market-data result for
// a requested symbol and date range.
type DataUnavailableError struct {
	Message string
}

// Error returns the error message string.
func (e *DataUnavailableError) Error() string {
	return e.Message
}

// NewDataUnavailableError creates a new DataUnavailableError with a specific message.
func NewDataUnavailableError(message string) error {
	return &DataUnavailableError{Message: message}
}

// NewDataUnavailableErrorf creates a new DataUnavailableError with a formatted message.
func NewDataUnavailableErrorf(format string, args ...interface{}) error {
	return &DataUnavailableError{Message: fmt.Sprintf(format, args...)}
}
