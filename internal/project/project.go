// Package project holds the compiled project snapshot that request handling
// reads and rebuilds replace.
package project

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/conneroisu/pageforge/internal/assets"
	"github.com/conneroisu/pageforge/internal/logging"
	"github.com/conneroisu/pageforge/internal/renderer"
	"github.com/conneroisu/pageforge/internal/routes"
	"github.com/conneroisu/pageforge/internal/viewcache"
)

// Project is one consistent compiled state. It is never mutated after
// Install; a rebuild produces a new value.
type Project struct {
	Routes    *routes.Table
	Layouts   map[string]string
	ErrorPage string
	Renderer  renderer.Renderer
	Manifest  *assets.Manifest
	Cache     *viewcache.Cache

	BuiltAt    time.Time
	Generation uint64
}

// Options are the inputs of New.
type Options struct {
	Routes    *routes.Table
	Layouts   map[string]string
	ErrorPage string
	Manifest  *assets.Manifest
	Pages     renderer.Registry

	// Cache configures the view cache. Nil disables caching.
	Cache *viewcache.Options

	Logger logging.Logger
}

// New assembles a project with its own view cache and a templ backend over
// the given routes.
func New(opts Options) *Project {
	var cache *viewcache.Cache
	if opts.Cache != nil {
		cache = viewcache.New(*opts.Cache)
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	if opts.Routes == nil {
		opts.Routes = &routes.Table{Routes: []*routes.Route{}}
	}

	backend := renderer.NewTemplBackend(opts.Routes, opts.Pages,
		renderer.WithLayouts(opts.Layouts),
		renderer.WithErrorComponent(opts.ErrorPage),
		renderer.WithCache(cache),
		renderer.WithLogger(opts.Logger),
	)

	return &Project{
		Routes:    opts.Routes,
		Layouts:   opts.Layouts,
		ErrorPage: opts.ErrorPage,
		Renderer:  backend,
		Manifest:  opts.Manifest,
		Cache:     cache,
	}
}

// Holder publishes the current Project to concurrent readers.
type Holder struct {
	current    atomic.Pointer[Project]
	generation atomic.Uint64

	mu          sync.Mutex
	subscribers []chan *Project
}

// NewHolder creates an empty holder.
func NewHolder() *Holder {
	return &Holder{}
}

// Load returns the installed project, or nil before the first Install.
func (h *Holder) Load() *Project {
	return h.current.Load()
}

// Ready reports whether a project is installed.
func (h *Holder) Ready() bool {
	return h.current.Load() != nil
}

// Install stamps p with the next generation, swaps it in and notifies
// subscribers. The previous project, and its cache, are dropped.
func (h *Holder) Install(p *Project) *Project {
	p.Generation = h.generation.Add(1)
	if p.BuiltAt.IsZero() {
		p.BuiltAt = time.Now()
	}
	h.current.Store(p)

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subscribers {
		// Drop a stale pending notification so the newest one fits.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- p:
		default:
		}
	}
	return p
}

// Subscribe returns a channel that receives every installed project. Slow
// readers only see the most recent one.
func (h *Holder) Subscribe() <-chan *Project {
	ch := make(chan *Project, 1)
	h.mu.Lock()
	h.subscribers = append(h.subscribers, ch)
	h.mu.Unlock()
	return ch
}

// Unsubscribe stops delivery to ch.
func (h *Holder) Unsubscribe(ch <-chan *Project) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, sub := range h.subscribers {
		if sub == ch {
			h.subscribers = append(h.subscribers[:i], h.subscribers[i+1:]...)
			return
		}
	}
}
