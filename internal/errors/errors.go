package errors

import (
	"errors"
	"fmt"
	"html"
	"strings"
	"sync"
	"time"
)

// BuildError is a single diagnostic produced while building a project.
type BuildError struct {
	File      string
	Message   string
	Severity  ErrorSeverity
	Timestamp time.Time
}

// ErrorSeverity represents the severity of an error
type ErrorSeverity int

const (
	ErrorSeverityInfo ErrorSeverity = iota
	ErrorSeverityWarning
	ErrorSeverityError
	ErrorSeverityFatal
)

// String returns the string representation of the severity
func (s ErrorSeverity) String() string {
	switch s {
	case ErrorSeverityInfo:
		return "info"
	case ErrorSeverityWarning:
		return "warning"
	case ErrorSeverityError:
		return "error"
	case ErrorSeverityFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Error implements the error interface
func (be *BuildError) Error() string {
	if be.File == "" {
		return fmt.Sprintf("%s: %s", be.Severity, be.Message)
	}
	return fmt.Sprintf("%s: %s: %s", be.File, be.Severity, be.Message)
}

// ErrorCollector gathers diagnostics across one build.
type ErrorCollector struct {
	buildErrors []BuildError
	errors      []error
	mutex       sync.RWMutex
}

// NewErrorCollector creates a new error collector
func NewErrorCollector() *ErrorCollector {
	return &ErrorCollector{
		buildErrors: make([]BuildError, 0),
		errors:      make([]error, 0),
	}
}

// Add adds a build error to the collector
func (ec *ErrorCollector) Add(err BuildError) {
	ec.mutex.Lock()
	defer ec.mutex.Unlock()
	if err.Timestamp.IsZero() {
		err.Timestamp = time.Now()
	}
	ec.buildErrors = append(ec.buildErrors, err)
}

// AddError adds a general error to the collector
func (ec *ErrorCollector) AddError(err error) {
	if err == nil {
		return
	}
	ec.mutex.Lock()
	defer ec.mutex.Unlock()
	ec.errors = append(ec.errors, err)
}

// GetErrors returns a copy of the collected build errors
func (ec *ErrorCollector) GetErrors() []BuildError {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()
	result := make([]BuildError, len(ec.buildErrors))
	copy(result, ec.buildErrors)
	return result
}

// HasErrors reports whether anything at error severity or above, or any
// general error, was collected. Warnings alone do not fail a build.
func (ec *ErrorCollector) HasErrors() bool {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()
	if len(ec.errors) > 0 {
		return true
	}
	for _, be := range ec.buildErrors {
		if be.Severity >= ErrorSeverityError {
			return true
		}
	}
	return false
}

// Clear clears all errors
func (ec *ErrorCollector) Clear() {
	ec.mutex.Lock()
	defer ec.mutex.Unlock()
	ec.buildErrors = ec.buildErrors[:0]
	ec.errors = ec.errors[:0]
}

// Err joins everything at error severity or above into one error, or
// returns nil.
func (ec *ErrorCollector) Err() error {
	if !ec.HasErrors() {
		return nil
	}
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()

	all := make([]error, 0, len(ec.buildErrors)+len(ec.errors))
	for i := range ec.buildErrors {
		if ec.buildErrors[i].Severity >= ErrorSeverityError {
			be := ec.buildErrors[i]
			all = append(all, &be)
		}
	}
	all = append(all, ec.errors...)
	return errors.Join(all...)
}

// ErrorOverlay renders the collected diagnostics as a fixed overlay for the
// development server. Empty when nothing was collected.
func (ec *ErrorCollector) ErrorOverlay() string {
	ec.mutex.RLock()
	defer ec.mutex.RUnlock()
	if len(ec.buildErrors) == 0 && len(ec.errors) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(`<div id="pageforge-error-overlay" style="position:fixed;inset:0;background:rgba(0,0,0,.85);color:#fff;font-family:monospace;padding:20px;overflow:auto;z-index:9999">`)
	b.WriteString(`<h2 style="color:#ff6b6b">Build Errors</h2>`)
	for _, be := range ec.buildErrors {
		color := "#ff6b6b"
		switch be.Severity {
		case ErrorSeverityWarning:
			color = "#feca57"
		case ErrorSeverityInfo:
			color = "#48dbfb"
		}
		fmt.Fprintf(&b, `<div style="border-left:4px solid %s;padding:8px;margin-bottom:8px"><strong>%s</strong> %s<br><small>%s</small></div>`,
			color, be.Severity, html.EscapeString(be.Message), html.EscapeString(be.File))
	}
	for _, err := range ec.errors {
		fmt.Fprintf(&b, `<div style="border-left:4px solid #ff6b6b;padding:8px;margin-bottom:8px">%s</div>`,
			html.EscapeString(err.Error()))
	}
	b.WriteString(`</div>`)
	return b.String()
}
