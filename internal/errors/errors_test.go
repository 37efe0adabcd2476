package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorSeverityString(t *testing.T) {
	testCases := []struct {
		severity ErrorSeverity
		expected string
	}{
		{ErrorSeverityInfo, "info"},
		{ErrorSeverityWarning, "warning"},
		{ErrorSeverityError, "error"},
		{ErrorSeverityFatal, "fatal"},
		{ErrorSeverity(999), "unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.severity.String())
		})
	}
}

func TestBuildErrorError(t *testing.T) {
	err := BuildError{File: "assets/app.js", Message: "source missing", Severity: ErrorSeverityError}
	assert.Equal(t, "assets/app.js: error: source missing", err.Error())

	bare := BuildError{Message: "no pages", Severity: ErrorSeverityWarning}
	assert.Equal(t, "warning: no pages", bare.Error())
}

func TestErrorCollector(t *testing.T) {
	t.Run("timestamps are set", func(t *testing.T) {
		collector := NewErrorCollector()
		before := time.Now()
		collector.Add(BuildError{Message: "x", Severity: ErrorSeverityError})

		got := collector.GetErrors()
		require.Len(t, got, 1)
		assert.False(t, got[0].Timestamp.Before(before))
	})

	t.Run("warnings do not fail", func(t *testing.T) {
		collector := NewErrorCollector()
		collector.Add(BuildError{Message: "unused layout", Severity: ErrorSeverityWarning})

		assert.False(t, collector.HasErrors())
		assert.NoError(t, collector.Err())
		assert.Len(t, collector.GetErrors(), 1)
	})

	t.Run("errors are joined", func(t *testing.T) {
		collector := NewErrorCollector()
		sentinel := errors.New("disk full")
		collector.Add(BuildError{File: "a.js", Message: "missing", Severity: ErrorSeverityError})
		collector.Add(BuildError{Message: "ignored", Severity: ErrorSeverityInfo})
		collector.AddError(sentinel)
		collector.AddError(nil)

		err := collector.Err()
		require.Error(t, err)
		assert.ErrorIs(t, err, sentinel)
		assert.Contains(t, err.Error(), "a.js: error: missing")
		assert.NotContains(t, err.Error(), "ignored")
	})

	t.Run("clear", func(t *testing.T) {
		collector := NewErrorCollector()
		collector.AddError(errors.New("x"))
		collector.Clear()
		assert.False(t, collector.HasErrors())
		assert.Empty(t, collector.ErrorOverlay())
	})
}

func TestErrorOverlayEscapes(t *testing.T) {
	collector := NewErrorCollector()
	collector.Add(BuildError{File: "pages/<x>.templ", Message: "<script>", Severity: ErrorSeverityError})

	overlay := collector.ErrorOverlay()
	assert.Contains(t, overlay, `id="pageforge-error-overlay"`)
	assert.Contains(t, overlay, "&lt;script&gt;")
	assert.NotContains(t, overlay, "<script>")
}

func TestPageforgeError(t *testing.T) {
	cause := errors.New("permission denied")
	err := NewIOError(ErrCodeFileNotFound, "cannot read manifest", cause).
		WithFile(".pageforge/dist/manifest.json").
		WithContext("attempt", 1)

	assert.Equal(t, "[ERR_FILE_NOT_FOUND] .pageforge/dist/manifest.json cannot read manifest: permission denied", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 1, err.Context["attempt"])
}

func TestPageforgeErrorIs(t *testing.T) {
	err := fmt.Errorf("start: %w", NewNotReadyError("no build files found"))

	assert.True(t, errors.Is(err, &PageforgeError{Type: ErrorTypeNotReady, Code: ErrCodeNoBuild}))
	assert.False(t, errors.Is(err, &PageforgeError{Type: ErrorTypeBuild, Code: ErrCodeNoBuild}))
}

func TestTypePredicates(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", NewBuildError(ErrCodeBuildFailed, "bundle", nil))

	assert.True(t, IsBuildError(wrapped))
	assert.True(t, IsRecoverable(wrapped))
	assert.False(t, IsConfigError(wrapped))
	assert.True(t, IsConfigError(NewConfigError(ErrCodeNoPagesDir, "missing")))
	assert.True(t, IsRenderError(NewRenderError(ErrCodeRenderFailed, "x", nil)))
	assert.True(t, IsNotReady(NewNotReadyError("x")))
	assert.False(t, IsRecoverable(errors.New("plain")))
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrorTypeIO, "X", "y"))

	base := errors.New("eof")
	err := Wrap(base, ErrorTypeBuild, ErrCodeManifestFormat, "decode manifest")
	assert.True(t, HasErrorCode(err, ErrCodeManifestFormat))
	assert.ErrorIs(t, err, base)
}

func TestHasErrorCodeFollowsChain(t *testing.T) {
	inner := NewConfigError(ErrCodeNoPagesDir, "no pages")
	outer := NewBuildError(ErrCodeBuildFailed, "generate", inner)

	assert.True(t, HasErrorCode(outer, ErrCodeNoPagesDir))
	assert.True(t, HasErrorCode(outer, ErrCodeBuildFailed))
	assert.False(t, HasErrorCode(outer, ErrCodeAssetMissing))
	assert.False(t, HasErrorCode(errors.New("x"), ErrCodeAssetMissing))
}

func TestFormatErrorWithSuggestions(t *testing.T) {
	assert.Empty(t, FormatErrorWithSuggestions(nil))

	inner := NewConfigError(ErrCodeNoPagesDir, "no pages directory").
		WithSuggestion("create a pages directory")
	outer := NewBuildError(ErrCodeBuildFailed, "build", inner).
		WithSuggestion("run pageforge build again")

	out := FormatErrorWithSuggestions(outer)
	assert.Contains(t, out, "Error: ")
	assert.Contains(t, out, "Suggestions:")
	assert.Contains(t, out, "run pageforge build again")
	assert.Contains(t, out, "create a pages directory")
}

type recordingLogger struct {
	errors, warns []string
}

func (r *recordingLogger) Error(_ context.Context, _ error, msg string, _ ...interface{}) {
	r.errors = append(r.errors, msg)
}

func (r *recordingLogger) Warn(_ context.Context, _ error, msg string, _ ...interface{}) {
	r.warns = append(r.warns, msg)
}

func TestErrorHandler(t *testing.T) {
	logger := &recordingLogger{}
	h := NewErrorHandler(logger)
	ctx := context.Background()

	h.Handle(ctx, nil)
	h.Handle(ctx, NewBuildError(ErrCodeBuildFailed, "x", nil))
	h.Handle(ctx, NewRenderError(ErrCodeRenderFailed, "x", nil))
	h.Handle(ctx, NewConfigError(ErrCodeConfigInvalid, "x"))
	h.Handle(ctx, errors.New("plain"))

	assert.Equal(t, []string{"build error occurred", "render error occurred"}, logger.warns)
	assert.Equal(t, []string{"Error occurred", "Unhandled error occurred"}, logger.errors)
}
