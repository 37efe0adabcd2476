package renderer

import (
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/a-h/templ"

	pferrors "github.com/conneroisu/pageforge/internal/errors"
	"github.com/conneroisu/pageforge/internal/logging"
	"github.com/conneroisu/pageforge/internal/routes"
	"github.com/conneroisu/pageforge/internal/viewcache"
)

// DefaultLayout is the layout name used when a page does not choose one.
const DefaultLayout = "default"

// Page is an application-supplied view bound to one component reference.
type Page struct {
	// Component builds the view for a request. Returning a *PageError
	// records it on the context and renders the error page instead.
	Component func(rc *Context) (templ.Component, error)

	// CacheKey, when set, makes the rendered page cacheable under the
	// returned key. An empty key skips the cache for that request.
	CacheKey func(rc *Context) string

	// Layout names the layout wrapping the page. Empty means DefaultLayout.
	Layout string
}

// Static wraps a request-independent component as a Page.
func Static(c templ.Component) Page {
	return Page{Component: func(*Context) (templ.Component, error) { return c, nil }}
}

// Registry maps component references, as they appear in the route table,
// to pages. Layouts and the error page are registered the same way.
type Registry map[string]Page

// BackendOption configures a TemplBackend.
type BackendOption func(*TemplBackend)

// WithLayouts sets the layout name to component reference map.
func WithLayouts(layouts map[string]string) BackendOption {
	return func(b *TemplBackend) { b.layouts = layouts }
}

// WithErrorComponent sets the component reference of the custom error page.
func WithErrorComponent(ref string) BackendOption {
	return func(b *TemplBackend) { b.errorComponent = ref }
}

// WithCache installs the view cache slot. A nil cache renders uncached.
func WithCache(c *viewcache.Cache) BackendOption {
	return func(b *TemplBackend) { b.cache = c }
}

// WithLogger sets the backend logger.
func WithLogger(l logging.Logger) BackendOption {
	return func(b *TemplBackend) { b.logger = l.WithComponent("render") }
}

// TemplBackend renders matched routes with templ components. Nested routes
// render leaf first and each parent receives its child through templ's
// children mechanism.
type TemplBackend struct {
	table          *routes.Table
	pages          Registry
	layouts        map[string]string
	errorComponent string
	cache          *viewcache.Cache
	logger         logging.Logger
}

var _ Renderer = (*TemplBackend)(nil)

// NewTemplBackend creates a backend for table. pages may be nil, in which
// case every page is client rendered.
func NewTemplBackend(table *routes.Table, pages Registry, opts ...BackendOption) *TemplBackend {
	b := &TemplBackend{
		table:  table,
		pages:  pages,
		logger: logging.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Cache returns the installed view cache, possibly nil.
func (b *TemplBackend) Cache() *viewcache.Cache {
	return b.cache
}

// RenderToString implements Renderer.
func (b *TemplBackend) RenderToString(ctx context.Context, rc *Context) (string, error) {
	if rc.Result == nil {
		rc.Result = &Result{}
	}

	match, ok := b.table.Match(rc.URL)
	if !ok {
		rc.Fail(NotFound())
		return b.renderError(ctx, rc)
	}
	for k, v := range match.Params {
		if rc.Params == nil {
			rc.Params = map[string]string{}
		}
		rc.Params[k] = v
	}

	chain := make([]Page, len(match.Chain))
	for i, r := range match.Chain {
		page, ok := b.pages[r.Component]
		if !ok || page.Component == nil {
			// Left to the client.
			b.logger.Debug(ctx, "No server component registered", "url", rc.URL, "component", r.Component)
			return "", nil
		}
		chain[i] = page
	}
	leaf := chain[len(chain)-1]

	cacheKey := ""
	if b.cache != nil && leaf.CacheKey != nil {
		if k := leaf.CacheKey(rc); k != "" {
			cacheKey = viewcache.Key(match.Leaf().Component, k)
			if html, ok := b.cache.Get(cacheKey); ok {
				rc.Result.ServerRendered = true
				return html, nil
			}
		}
	}

	var view templ.Component
	for i := len(chain) - 1; i >= 0; i-- {
		c, err := chain[i].Component(rc)
		if err != nil {
			return b.handlePageError(ctx, rc, err)
		}
		view = withChild(c, view)
	}
	view = withChild(b.layout(ctx, rc, leaf.Layout), view)

	html, err := renderComponent(ctx, rc, view)
	if err != nil {
		return b.handlePageError(ctx, rc, err)
	}
	if rc.Result.Error != nil {
		// A component recorded an error without failing.
		return b.renderError(ctx, rc)
	}

	rc.Result.ServerRendered = true
	if cacheKey != "" && !rc.Result.Redirected {
		b.cache.Set(cacheKey, html)
	}
	return html, nil
}

func (b *TemplBackend) handlePageError(ctx context.Context, rc *Context, err error) (string, error) {
	var pe *PageError
	if errors.As(err, &pe) {
		rc.Fail(pe)
		return b.renderError(ctx, rc)
	}
	return "", pferrors.NewRenderError(pferrors.ErrCodeRenderFailed, "rendering "+rc.URL, err)
}

// renderError renders the error page for the error recorded on rc inside
// the default layout.
func (b *TemplBackend) renderError(ctx context.Context, rc *Context) (string, error) {
	var view templ.Component = ErrorView(rc.Result.Error)
	if page, ok := b.pages[b.errorComponent]; ok && b.errorComponent != "" && page.Component != nil {
		c, err := page.Component(rc)
		if err != nil {
			return "", pferrors.NewRenderError(pferrors.ErrCodeRenderFailed, "rendering error page", err)
		}
		view = c
	}
	view = withChild(b.layout(ctx, rc, DefaultLayout), view)

	html, err := renderComponent(ctx, rc, view)
	if err != nil {
		return "", pferrors.NewRenderError(pferrors.ErrCodeRenderFailed, "rendering error page", err)
	}
	rc.Result.ServerRendered = true
	return html, nil
}

func (b *TemplBackend) layout(ctx context.Context, rc *Context, name string) templ.Component {
	if name == "" {
		name = DefaultLayout
	}
	ref, ok := b.layouts[name]
	if !ok {
		if name != DefaultLayout {
			b.logger.Warn(ctx, nil, "Unknown layout, using default", "layout", name)
		}
		ref = b.layouts[DefaultLayout]
	}
	if page, ok := b.pages[ref]; ok && ref != "" && page.Component != nil {
		c, err := page.Component(rc)
		if err == nil {
			return c
		}
		b.logger.Warn(ctx, err, "Layout failed, using built-in", "layout", name)
	}
	return ChildrenLayout
}

// ChildrenLayout renders only its children.
var ChildrenLayout templ.Component = templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
	children := templ.GetChildren(ctx)
	return children.Render(templ.ClearChildren(ctx), w)
})

func withChild(parent, child templ.Component) templ.Component {
	if child == nil {
		return parent
	}
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return parent.Render(templ.WithChildren(ctx, child), w)
	})
}

func renderComponent(ctx context.Context, rc *Context, c templ.Component) (string, error) {
	var buf bytes.Buffer
	if err := c.Render(WithContext(ctx, rc), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
