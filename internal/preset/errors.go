package preset

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConflict matches every *ConflictError.
	ErrConflict = errors.New("monitor assignment conflict")
	// ErrNotFound is returned for unknown presets or monitors.
	ErrNotFound = errors.New("not found")
)

// ConflictError reports an enabled preset whose monitors overlap another
// enabled preset.
type ConflictError struct {
	Preset   string
	Existing string
	Monitors []string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("preset %q conflicts with enabled preset %q on monitors [%s]",
		e.Preset, e.Existing, strings.Join(e.Monitors, ", "))
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// ConfigurationError reports a backing file that could not be decoded.
type ConfigurationError struct {
	Path string
	Err  error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("preset file %s: %v", e.Path, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// BackendError wraps a failed display backend call.
type BackendError struct {
	Op      string
	Monitor string
	Err     error
}

func (e *BackendError) Error() string {
	if e.Monitor == "" {
		return fmt.Sprintf("display backend %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("display backend %s on %s: %v", e.Op, e.Monitor, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}
