package apperror

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"
)

// Process exit codes used by the command surface.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitUsage       = 2
	ExitUnavailable = 69 // EX_UNAVAILABLE
	ExitConfig      = 78 // EX_CONFIG
)

// AppError implements the error interface and provides structured error handling
type AppError struct {
	Code      Code
	Message   string
	ExitCode  int
	Context   string
	RunID     string
	Timestamp time.Time
	cause     error
	stack     []uintptr
}

// Error implements the error interface
func (e *AppError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Message)
	if e.Context != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Context)
	}
	fmt.Fprintf(&sb, " (code: %s)", e.Code)
	if e.cause != nil {
		fmt.Fprintf(&sb, ": %v", e.cause)
	}
	return sb.String()
}

// Unwrap implements the errors.Unwrap interface
func (e *AppError) Unwrap() error {
	return e.cause
}

// Is matches another AppError by code.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithRunID tags the error with the query run that produced it.
func (e *AppError) WithRunID(runID string) *AppError {
	e.RunID = runID
	return e
}

// LogArgs returns key/value pairs for structured logging.
func (e *AppError) LogArgs() []any {
	args := []any{"code", e.Code, "message", e.Message}
	if e.Context != "" {
		args = append(args, "context", e.Context)
	}
	if e.RunID != "" {
		args = append(args, "run_id", e.RunID)
	}
	if e.cause != nil {
		args = append(args, "cause", e.cause.Error())
	}
	if len(e.stack) > 0 {
		args = append(args, "stack", e.formatStack())
	}
	return args
}

func (e *AppError) formatStack() string {
	var sb strings.Builder
	frames := runtime.CallersFrames(e.stack)
	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.File, "runtime/") {
			sb.WriteString(fmt.Sprintf("\n\t%s:%d %s", frame.File, frame.Line, frame.Function))
		}
		if !more {
			break
		}
	}
	return sb.String()
}

func captureStack() []uintptr {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])
	return pcs[:n]
}

// New creates a new AppError with the given code and options
func New(code Code, opts ...Option) *AppError {
	err := &AppError{
		Code:      code,
		Message:   messages[code],
		ExitCode:  defaultExitCode(code),
		Timestamp: time.Now(),
		stack:     captureStack(),
	}

	for _, opt := range opts {
		opt(err)
	}

	if err.Message == "" {
		err.Message = string(code)
	}

	return err
}

// Option is a functional option for AppError
type Option func(*AppError)

// WithMessage sets a custom message
func WithMessage(message string) Option {
	return func(e *AppError) {
		e.Message = message
	}
}

// WithContext adds context information
func WithContext(context string) Option {
	return func(e *AppError) {
		e.Context = context
	}
}

// WithExitCode overrides the process exit code
func WithExitCode(code int) Option {
	return func(e *AppError) {
		e.ExitCode = code
	}
}

// WithCause wraps an underlying error
func WithCause(cause error) Option {
	return func(e *AppError) {
		e.cause = cause
	}
}

// NotFound creates a not found error
func NotFound(code Code, context string) *AppError {
	return New(code, WithContext(context))
}

// Validation creates a validation error
func Validation(code Code, context string) *AppError {
	return New(code, WithContext(context), WithExitCode(ExitUsage))
}

// External creates an external service error
func External(code Code, context string, cause error) *AppError {
	return New(code, WithContext(context), WithCause(cause), WithExitCode(ExitUnavailable))
}

// Wrap wraps a standard error into AppError
func Wrap(err error, code Code, context string) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		if context != "" && appErr.Context == "" {
			appErr.Context = context
		}
		return appErr
	}

	return New(code, WithContext(context), WithCause(err))
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetCode extracts the error code from an error
func GetCode(err error) Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknownError
}

// ExitCodeOf returns the exit code carried by err, or ExitFailure.
func ExitCodeOf(err error) int {
	if err == nil {
		return ExitOK
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.ExitCode
	}
	return ExitFailure
}

func defaultExitCode(code Code) int {
	switch {
	case code == CodeConfigurationError, code == CodeHoldingsLoadFailed:
		return ExitConfig
	case strings.Contains(string(code), "INVALID"),
		code == CodeUnknownCommand,
		code == CodeRequiredField,
		code == CodeValidationError:
		return ExitUsage
	case strings.Contains(string(code), "UNAVAILABLE"),
		strings.Contains(string(code), "TIMEOUT"),
		strings.HasPrefix(string(code), "CIRCUIT"):
		return ExitUnavailable
	default:
		return ExitFailure
	}
}
