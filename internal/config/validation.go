package config

import (
	"fmt"
	"path/filepath"
	"strings"

	pferrors "github.com/conneroisu/pageforge/internal/errors"
	"github.com/conneroisu/pageforge/internal/validation"
)

// ValidationError represents a configuration validation error with suggestions
type ValidationError struct {
	Field       string
	Value       interface{}
	Message     string
	Suggestions []string
}

func (ve *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", ve.Field, ve.Message)
}

// ValidationResult holds the result of configuration validation
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// HasErrors returns true if there are any validation errors
func (vr *ValidationResult) HasErrors() bool {
	return len(vr.Errors) > 0
}

// HasWarnings returns true if there are any validation warnings
func (vr *ValidationResult) HasWarnings() bool {
	return len(vr.Warnings) > 0
}

// String returns a formatted string of all validation issues
func (vr *ValidationResult) String() string {
	var builder strings.Builder

	write := func(title string, issues []ValidationError) {
		if len(issues) == 0 {
			return
		}
		builder.WriteString(title + ":\n")
		for _, issue := range issues {
			fmt.Fprintf(&builder, "  - %s: %s\n", issue.Field, issue.Message)
			for _, suggestion := range issue.Suggestions {
				fmt.Fprintf(&builder, "      %s\n", suggestion)
			}
		}
	}
	write("Validation errors", vr.Errors)
	write("Validation warnings", vr.Warnings)

	return builder.String()
}

// Err returns the first error as a config error carrying every error's
// suggestions, or nil.
func (vr *ValidationResult) Err() error {
	if !vr.HasErrors() {
		return nil
	}
	first := vr.Errors[0]
	err := pferrors.NewConfigError(pferrors.ErrCodeConfigInvalid, first.Error()).
		WithContext("field", first.Field)
	for _, e := range vr.Errors {
		for _, s := range e.Suggestions {
			err = err.WithSuggestion(s)
		}
	}
	if len(vr.Errors) > 1 {
		err = err.WithContext("additional_errors", len(vr.Errors)-1)
	}
	return err
}

func (vr *ValidationResult) addError(field string, value interface{}, message string, suggestions ...string) {
	vr.Errors = append(vr.Errors, ValidationError{Field: field, Value: value, Message: message, Suggestions: suggestions})
}

func (vr *ValidationResult) addWarning(field string, value interface{}, message string, suggestions ...string) {
	vr.Warnings = append(vr.Warnings, ValidationError{Field: field, Value: value, Message: message, Suggestions: suggestions})
}

// Validate checks a decoded configuration.
func Validate(config *Config) *ValidationResult {
	result := &ValidationResult{}

	validateServer(&config.Server, result)
	validatePaths(config, result)

	if !strings.HasPrefix(config.Router.Base, "/") {
		result.addError("router.base", config.Router.Base, "base must start with /",
			"Use a path such as /app/")
	}
	if strings.Trim(config.Pages.Extension, ".") == "" {
		result.addError("pages.extension", config.Pages.Extension, "page extension cannot be empty",
			"Use .templ")
	}

	if config.Cache.Enabled {
		if config.Cache.MaxEntries <= 0 {
			result.addError("cache.max_entries", config.Cache.MaxEntries, "must be positive when the cache is enabled")
		}
		if config.Cache.MaxAge <= 0 {
			result.addError("cache.max_age", config.Cache.MaxAge, "must be positive when the cache is enabled",
				"Use a duration such as 15m")
		}
		if config.Dev {
			result.addWarning("cache.enabled", true, "the view cache is skipped in development")
		}
	}

	if !config.Dev && config.Build.Sources.App == "" {
		result.addWarning("build.sources.app", "", "no client app source, production pages will have no client bundle",
			"Set build.sources.app to the client entry file")
	}

	return result
}

func validateServer(config *ServerConfig, result *ValidationResult) {
	if config.Port < 0 || config.Port > 65535 {
		result.addError("server.port", config.Port,
			fmt.Sprintf("port %d is not in valid range 0-65535", config.Port),
			"Use a port between 1024-65535 for non-privileged access",
			"Port 0 allows system to assign an available port",
		)
	} else if config.Port > 0 && config.Port < 1024 {
		result.addWarning("server.port", config.Port, "port below 1024 requires elevated privileges")
	}

	if err := validation.ValidateHost(config.Host); err != nil {
		result.addError("server.host", config.Host, err.Error(),
			"Use 'localhost' for local development",
			"Use '0.0.0.0' to bind to all interfaces",
		)
	}

	if config.ShutdownTimeout < 0 {
		result.addError("server.shutdown_timeout", config.ShutdownTimeout, "cannot be negative")
	}
	if config.RetryDelay < 0 {
		result.addError("server.retry_delay", config.RetryDelay, "cannot be negative")
	}
}

func validatePaths(config *Config, result *ValidationResult) {
	if config.SrcDir == "" {
		result.addError("src_dir", "", "source directory cannot be empty", "Use . for the current directory")
	}
	if config.BuildDir == "" {
		result.addError("build_dir", "", "build directory cannot be empty", "Use .pageforge")
	} else if filepath.Clean(config.BuildDir) == "." || filepath.Clean(config.BuildDir) == filepath.Clean(config.SrcDir) {
		result.addError("build_dir", config.BuildDir, "build directory cannot be the source directory",
			"Production builds empty the build directory")
	}

	for field, p := range map[string]string{"pages.dir": config.Pages.Dir, "static.dir": config.Static.Dir} {
		if err := validation.ValidateRelativePath(p); err != nil {
			result.addError(field, p, err.Error(), "Use a directory inside the source directory")
		}
	}

	if err := validation.ValidatePublicPath(config.Build.PublicPath); err != nil {
		result.addError("build.public_path", config.Build.PublicPath, err.Error(),
			"Use an absolute path such as /_pageforge/ or an http(s) URL")
	}
}
