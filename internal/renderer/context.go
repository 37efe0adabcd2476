// Package renderer is the view side of a request: the render context that a
// backend mutates, the Renderer contract, the templ-backed implementation,
// and the outer page template that wraps rendered markup.
package renderer

import (
	"context"
	"fmt"
	"net/http"
)

// PageError is an error recorded on a render context. Its status becomes
// the response status.
type PageError struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}

// Error implements error.
func (e *PageError) Error() string {
	return fmt.Sprintf("%d: %s", e.StatusCode, e.Message)
}

// Status returns StatusCode, or 500 when unset.
func (e *PageError) Status() int {
	if e == nil || e.StatusCode == 0 {
		return http.StatusInternalServerError
	}
	return e.StatusCode
}

// NotFound is the error recorded for a URL that matches no route.
func NotFound() *PageError {
	return &PageError{StatusCode: http.StatusNotFound, Message: "This page could not be found"}
}

// Result describes what happened during one render.
type Result struct {
	ServerRendered bool       `json:"serverRendered"`
	Error          *PageError `json:"error,omitempty"`
	Redirected     bool       `json:"redirected,omitempty"`
	Location       string     `json:"-"`
}

// Context is the per-request render context. The pipeline creates it, the
// backend fills in Result and Params.
type Context struct {
	URL      string
	IsServer bool
	Request  *http.Request
	Params   map[string]string
	Result   *Result
	Data     map[string]any
}

// NewContext creates a context for r with an empty result.
func NewContext(r *http.Request) *Context {
	return &Context{
		Request: r,
		Params:  map[string]string{},
		Result:  &Result{},
		Data:    map[string]any{},
	}
}

// Fail records err on the context. The first recorded error wins.
func (c *Context) Fail(err *PageError) {
	if c.Result == nil {
		c.Result = &Result{}
	}
	if c.Result.Error == nil {
		c.Result.Error = err
	}
}

// Redirect records a navigation redirect to location.
func Redirect(c *Context, location string) {
	if c == nil {
		return
	}
	if c.Result == nil {
		c.Result = &Result{}
	}
	c.Result.Redirected = true
	c.Result.Location = location
}

// Renderer turns a render context into page markup. Implementations record
// the outcome on rc.Result.
type Renderer interface {
	RenderToString(ctx context.Context, rc *Context) (string, error)
}

type contextKey struct{}

// WithContext stores rc in ctx for components rendered beneath it.
func WithContext(ctx context.Context, rc *Context) context.Context {
	return context.WithValue(ctx, contextKey{}, rc)
}

// FromContext returns the render context stored by WithContext, or nil.
func FromContext(ctx context.Context) *Context {
	rc, _ := ctx.Value(contextKey{}).(*Context)
	return rc
}
