package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeConfig   ErrorType = "config"
	ErrorTypeBuild    ErrorType = "build"
	ErrorTypeRender   ErrorType = "render"
	ErrorTypeNotReady ErrorType = "not_ready"
	ErrorTypeIO       ErrorType = "io"
	ErrorTypeInternal ErrorType = "internal"
)

// Common error codes.
const (
	ErrCodeNoPagesDir     = "ERR_NO_PAGES_DIR"
	ErrCodeConfigInvalid  = "ERR_CONFIG_INVALID"
	ErrCodeBuildFailed    = "ERR_BUILD_FAILED"
	ErrCodeAssetMissing   = "ERR_ASSET_MISSING"
	ErrCodeNoBuild        = "ERR_NO_BUILD"
	ErrCodeRenderFailed   = "ERR_RENDER_FAILED"
	ErrCodeFileNotFound   = "ERR_FILE_NOT_FOUND"
	ErrCodePathTraversal  = "ERR_PATH_TRAVERSAL"
	ErrCodeInternalError  = "ERR_INTERNAL"
	ErrCodeManifestFormat = "ERR_MANIFEST_FORMAT"
	ErrCodeFileExists     = "ERR_FILE_EXISTS"
)

// PageforgeError is a structured error type with context.
type PageforgeError struct {
	Type        ErrorType
	Code        string
	Message     string
	Cause       error
	Context     map[string]interface{}
	FilePath    string
	Suggestions []string
	Recoverable bool
}

// Error implements the error interface.
func (e *PageforgeError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}
	if e.FilePath != "" {
		parts = append(parts, e.FilePath)
	}
	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")
	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}
	return result
}

// Unwrap returns the underlying cause error.
func (e *PageforgeError) Unwrap() error {
	return e.Cause
}

// Is matches another PageforgeError with the same type and code.
func (e *PageforgeError) Is(target error) bool {
	var t *PageforgeError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}
	return false
}

// WithContext adds context information to the error.
func (e *PageforgeError) WithContext(key string, value interface{}) *PageforgeError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithFile records the file the error is about.
func (e *PageforgeError) WithFile(filePath string) *PageforgeError {
	e.FilePath = filePath
	return e
}

// WithSuggestion appends a hint shown by the CLI.
func (e *PageforgeError) WithSuggestion(s string) *PageforgeError {
	e.Suggestions = append(e.Suggestions, s)
	return e
}

// NewConfigError creates a configuration error.
func NewConfigError(code, message string) *PageforgeError {
	return &PageforgeError{
		Type:    ErrorTypeConfig,
		Code:    code,
		Message: message,
	}
}

// NewBuildError creates a build error.
func NewBuildError(code, message string, cause error) *PageforgeError {
	return &PageforgeError{
		Type:        ErrorTypeBuild,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: true,
	}
}

// NewRenderError creates a render error.
func NewRenderError(code, message string, cause error) *PageforgeError {
	return &PageforgeError{
		Type:        ErrorTypeRender,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: true,
	}
}

// NewNotReadyError reports that no compiled project is installed.
func NewNotReadyError(message string) *PageforgeError {
	return &PageforgeError{
		Type:    ErrorTypeNotReady,
		Code:    ErrCodeNoBuild,
		Message: message,
	}
}

// NewIOError creates an I/O error.
func NewIOError(code, message string, cause error) *PageforgeError {
	return &PageforgeError{
		Type:    ErrorTypeIO,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewInternalError creates an internal error.
func NewInternalError(code, message string, cause error) *PageforgeError {
	return &PageforgeError{
		Type:    ErrorTypeInternal,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Wrap attaches type and code to an existing error. A nil err stays nil.
func Wrap(err error, errType ErrorType, code, message string) *PageforgeError {
	if err == nil {
		return nil
	}
	return &PageforgeError{
		Type:    errType,
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

func hasType(err error, t ErrorType) bool {
	var pe *PageforgeError
	if errors.As(err, &pe) {
		return pe.Type == t
	}
	return false
}

// IsConfigError checks if an error is configuration-related.
func IsConfigError(err error) bool { return hasType(err, ErrorTypeConfig) }

// IsBuildError checks if an error is build-related.
func IsBuildError(err error) bool { return hasType(err, ErrorTypeBuild) }

// IsRenderError checks if an error is render-related.
func IsRenderError(err error) bool { return hasType(err, ErrorTypeRender) }

// IsNotReady checks if an error reports a missing build.
func IsNotReady(err error) bool { return hasType(err, ErrorTypeNotReady) }

// IsRecoverable checks if an error is recoverable.
func IsRecoverable(err error) bool {
	var pe *PageforgeError
	if errors.As(err, &pe) {
		return pe.Recoverable
	}
	return false
}

// HasErrorCode reports whether any error in the chain carries code.
func HasErrorCode(err error, code string) bool {
	for err != nil {
		var pe *PageforgeError
		if !errors.As(err, &pe) {
			return false
		}
		if pe.Code == code {
			return true
		}
		err = pe.Cause
	}
	return false
}

// FormatErrorWithSuggestions renders err for the terminal, followed by any
// suggestions found along its chain.
func FormatErrorWithSuggestions(err error) string {
	if err == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("Error: ")
	b.WriteString(err.Error())

	var suggestions []string
	for cur := err; cur != nil; {
		var pe *PageforgeError
		if !errors.As(cur, &pe) {
			break
		}
		suggestions = append(suggestions, pe.Suggestions...)
		cur = pe.Cause
	}
	if len(suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, s := range suggestions {
			b.WriteString("\n  • ")
			b.WriteString(s)
		}
	}
	return b.String()
}

// Logger is the subset of the logging interface the handler needs.
type Logger interface {
	Error(ctx context.Context, err error, msg string, fields ...interface{})
	Warn(ctx context.Context, err error, msg string, fields ...interface{})
}

// ErrorHandler routes errors to the log at a level chosen by type.
type ErrorHandler struct {
	logger Logger
}

// NewErrorHandler creates a new error handler.
func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Handle logs err with fields. Build and render failures are warnings
// because the development server keeps running after them.
func (h *ErrorHandler) Handle(ctx context.Context, err error, fields ...interface{}) {
	if err == nil || h.logger == nil {
		return
	}

	var pe *PageforgeError
	if !errors.As(err, &pe) {
		h.logger.Error(ctx, err, "Unhandled error occurred", fields...)
		return
	}

	switch pe.Type {
	case ErrorTypeBuild, ErrorTypeRender:
		h.logger.Warn(ctx, err, string(pe.Type)+" error occurred",
			append([]interface{}{"code", pe.Code, "file", pe.FilePath}, fields...)...)
	default:
		h.logger.Error(ctx, err, "Error occurred",
			append([]interface{}{"type", pe.Type, "code", pe.Code}, fields...)...)
	}
}
