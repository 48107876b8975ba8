package common

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSettings is wrapped by configuration errors raised from render settings validation.
	ErrInvalidSettings = errors.New("invalid render settings")

	// ErrDegenerateCamera is wrapped by configuration errors raised when the camera basis cannot be derived.
	ErrDegenerateCamera = errors.New("degenerate camera")

	// ErrUnresolvedMaterial is wrapped when a shape references a material that was never registered.
	ErrUnresolvedMaterial = errors.New("unresolved material reference")

	// ErrInvalidMaterial is wrapped when a material parameter is outside its valid range.
	ErrInvalidMaterial = errors.New("invalid material")

	// ErrInvalidShape is wrapped when a registered shape is nil or of an unsupported type.
	ErrInvalidShape = errors.New("invalid shape")

	// ErrContractMismatch is wrapped when a kernel's declared layouts disagree with the binding contract.
	ErrContractMismatch = errors.New("kernel does not match binding contract")

	// ErrPollTimeout is reported when a submission is not confirmed complete within the poll timeout.
	ErrPollTimeout = errors.New("device poll timed out")

	// ErrMapFailed is wrapped by readback errors when the result buffer could not be mapped for reading.
	ErrMapFailed = errors.New("result buffer map failed")
)

// ConfigError describes an invalid input detected before any GPU work is performed.
type ConfigError struct {
	// Field names the offending input, for example "camera.look_at" or "shapes[3].material".
	Field string
	// Reason is a human readable description of the problem.
	Reason string
	// Err is the sentinel or underlying cause, matched with errors.Is.
	Err error
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("config: %s", e.Reason)
	}
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// NewConfigError builds a ConfigError wrapping err.
//
// Parameters:
//   - err: the sentinel describing the error class
//   - field: the offending input
//   - format: printf style reason
//   - args: arguments for format
//
// Returns:
//   - *ConfigError: the constructed error
func NewConfigError(err error, field, format string, args ...any) *ConfigError {
	return &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...), Err: err}
}

// DeviceError wraps a failure reported by the GPU device or its queue.
// Device errors are fatal to a render and are routed through the renderer's fatal error handler.
type DeviceError struct {
	// Op is the operation that failed, for example "create buffer" or "poll".
	Op string
	// Err is the underlying error.
	Err error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("device: %s: %v", e.Op, e.Err)
}

func (e *DeviceError) Unwrap() error { return e.Err }

// ReadbackError reports that the finished image could not be read back from the GPU.
// It is the one recoverable render failure, no partial image accompanies it.
type ReadbackError struct {
	Err error
}

func (e *ReadbackError) Error() string {
	return fmt.Sprintf("readback: %v", e.Err)
}

func (e *ReadbackError) Unwrap() error { return e.Err }
