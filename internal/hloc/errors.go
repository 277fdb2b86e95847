package hloc

import (
	"errors"
	"fmt"
)

// ConfigError reports invalid user-supplied configuration. It is always
// raised before any subprocess is launched.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return e.Reason
}

// Configf builds a ConfigError from a format string.
func Configf(format string, args ...any) error {
	return &ConfigError{Reason: fmt.Sprintf(format, args...)}
}

// AsConfig wraps err as a ConfigError, preserving its message.
func AsConfig(err error) error {
	if err == nil {
		return nil
	}
	var ce *ConfigError
	if errors.As(err, &ce) {
		return err
	}
	return &ConfigError{Reason: err.Error()}
}

// IsConfig reports whether err is a configuration error.
func IsConfig(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// StageError reports a failure inside a delegated pipeline stage. The
// underlying toolchain owns the error taxonomy; we only record which stage
// failed.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s failed: %s", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
