package errors

import "fmt"

// ErrorCode identifies a specific failure condition of the HMI supervisor.
type ErrorCode int

const (
	ErrCodeUnknown       ErrorCode = 1000
	ErrCodeConfigInvalid ErrorCode = 1001

	// Catalog loading
	ErrCodeCatalogEmpty ErrorCode = 2001
	ErrCodeModeInvalid  ErrorCode = 2002

	// Operator actions
	ErrCodeUnknownMode       ErrorCode = 3001
	ErrCodeUnknownMap        ErrorCode = 3002
	ErrCodeUnknownVehicle    ErrorCode = 3003
	ErrCodeModuleNotFound    ErrorCode = 3004
	ErrCodeActionUnsupported ErrorCode = 3005

	// Driving-mode handshake
	ErrCodeHandshakeFailed ErrorCode = 4001

	// External side effects
	ErrCodePersistence     ErrorCode = 5001
	ErrCodeVehicleActivate ErrorCode = 5002
	ErrCodeFlagfileWrite   ErrorCode = 5003
	ErrCodeEmitFailed      ErrorCode = 5004
)

// HMIError is a structured error carrying a code, the operation being
// performed and the underlying cause.
type HMIError struct {
	// Code is the specific error code.
	Code ErrorCode
	// Msg is a human-readable description of the error.
	Msg string
	// Operation describes the action being performed when the error occurred.
	Operation string
	// Err is the underlying error that caused this error, if any.
	Err error
}

// Error returns a formatted string representation of the error.
func (e *HMIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %s (cause: %v)", e.Code, e.Operation, e.Msg, e.Err)
	}
	return fmt.Sprintf("[%d] %s: %s", e.Code, e.Operation, e.Msg)
}

// Unwrap returns the underlying error.
func (e *HMIError) Unwrap() error {
	return e.Err
}

// New creates a new HMIError with the specified code, operation, message, and
// underlying cause.
func New(code ErrorCode, op, msg string, err error) error {
	return &HMIError{
		Code:      code,
		Msg:       msg,
		Operation: op,
		Err:       err,
	}
}

// CodeOf extracts the error code, returning ErrCodeUnknown for foreign errors.
func CodeOf(err error) ErrorCode {
	if e, ok := err.(*HMIError); ok {
		return e.Code
	}
	return ErrCodeUnknown
}
