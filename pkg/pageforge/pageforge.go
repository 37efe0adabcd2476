// Package pageforge is the public entry point for applications serving
// templ pages through pageforge.
//
// An application compiles its pages with templ, registers each one under
// the file it was generated from and hands the registry to Execute, which
// runs the pageforge command line:
//
//	func main() {
//		pages := pageforge.Registry{
//			"pages/index.templ":     pageforge.Static(pages.Index()),
//			"layouts/default.templ": pageforge.Static(layouts.Default()),
//			"pages/users/_id.templ": {
//				Component: func(rc *pageforge.Context) (templ.Component, error) {
//					return users.Show(rc.Params["id"]), nil
//				},
//			},
//		}
//		if err := pageforge.Execute(pages); err != nil {
//			os.Exit(1)
//		}
//	}
//
// Routes whose components are not registered are rendered by the client
// application only.
package pageforge

import (
	"context"

	"github.com/a-h/templ"

	"github.com/conneroisu/pageforge/cmd"
	"github.com/conneroisu/pageforge/internal/renderer"
)

type (
	// Registry maps page, layout and error component files to views.
	Registry = renderer.Registry

	// Page is one registered view.
	Page = renderer.Page

	// Context is the per-request render context.
	Context = renderer.Context

	// PageError is an error with an HTTP status, recorded on a Context.
	PageError = renderer.PageError
)

// Static wraps a component that does not depend on the request.
func Static(c templ.Component) Page {
	return renderer.Static(c)
}

// Redirect makes the current render answer with a redirect to location.
func Redirect(rc *Context, location string) {
	renderer.Redirect(rc, location)
}

// NotFound is the error recorded for unknown pages.
func NotFound() *PageError {
	return renderer.NotFound()
}

// FromContext returns the render context of the request a component is
// rendered for, or nil outside a render.
func FromContext(ctx context.Context) *Context {
	return renderer.FromContext(ctx)
}

// Execute runs the pageforge command line with pages.
func Execute(pages Registry) error {
	return cmd.ExecuteWithPages(pages)
}
