// Package server serves compiled projects over HTTP.
//
// Every page request runs through Pipeline, a fixed sequence of states that
// each may finish the request:
//
//	NotReady → DevMiddleware → BaseStrip → StaticServe → BuiltAssetServe
//	         → HotUpdateFilter → Render → Failure
//
// Server mounts the pipeline behind a chi router together with the health
// and metrics endpoints.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/conneroisu/pageforge/internal/assets"
	pferrors "github.com/conneroisu/pageforge/internal/errors"
	"github.com/conneroisu/pageforge/internal/logging"
	"github.com/conneroisu/pageforge/internal/monitoring"
	"github.com/conneroisu/pageforge/internal/project"
	"github.com/conneroisu/pageforge/internal/renderer"
)

// DefaultRetryDelay is how long a development request waits before checking
// again for a compiled project.
const DefaultRetryDelay = time.Second

const tracerName = "github.com/conneroisu/pageforge/internal/server"

// DevMiddleware runs before page handling in development. Returning true
// means the request was fully handled.
type DevMiddleware func(w http.ResponseWriter, r *http.Request) (handled bool, err error)

// PipelineOptions configures a Pipeline.
type PipelineOptions struct {
	Dev  bool
	Base string

	// Filenames are the development bundle names referenced by pages.
	Filenames assets.Filenames

	// StaticDir holds files served as-is. Empty disables static serving.
	StaticDir string

	// StaticDisabled turns off both static and built asset serving.
	StaticDisabled bool

	// DistDir holds the production client bundle.
	DistDir string

	RetryDelay    time.Duration
	DevMiddleware []DevMiddleware

	// Exit terminates the process when a production server has no build.
	// Defaults to os.Exit.
	Exit func(code int)

	Logger  logging.Logger
	Metrics *monitoring.Metrics
}

// Pipeline is the page request handler.
type Pipeline struct {
	holder  *project.Holder
	opts    PipelineOptions
	static  *StaticServer
	built   *StaticServer
	logger  logging.Logger
	errors  *pferrors.ErrorHandler
	metrics *monitoring.Metrics
	tracer  trace.Tracer
}

// NewPipeline creates a pipeline serving the projects installed in holder.
func NewPipeline(holder *project.Holder, opts PipelineOptions) *Pipeline {
	if opts.Base == "" {
		opts.Base = "/"
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = DefaultRetryDelay
	}
	if opts.Exit == nil {
		opts.Exit = os.Exit
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}

	logger := opts.Logger.WithComponent("server")
	p := &Pipeline{
		holder:  holder,
		opts:    opts,
		logger:  logger,
		errors:  pferrors.NewErrorHandler(logger),
		metrics: opts.Metrics,
		tracer:  otel.Tracer(tracerName),
	}
	if opts.StaticDir != "" {
		p.static = NewStaticServer(opts.StaticDir)
	}
	if opts.DistDir != "" {
		p.built = NewStaticServer(opts.DistDir)
	}
	return p
}

// ServeHTTP implements http.Handler.
func (p *Pipeline) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, span := p.tracer.Start(r.Context(), "pageforge.request",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("http.method", r.Method),
			attribute.String("http.target", r.URL.RequestURI()),
		),
	)
	defer span.End()

	state, err := p.serve(w, r.WithContext(ctx))
	span.SetAttributes(attribute.String("pageforge.state", state))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	p.metrics.ObserveRequest(state)
}

func (p *Pipeline) serve(w http.ResponseWriter, r *http.Request) (state string, err error) {
	proj := p.awaitProject(r.Context())
	if proj == nil {
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return monitoring.StateNotReady, pferrors.NewNotReadyError("no compiled project")
	}

	defer func() {
		if rec := recover(); rec != nil {
			err = pferrors.NewInternalError(pferrors.ErrCodeInternalError, fmt.Sprintf("panic: %v", rec), nil)
			state = p.fail(w, r, err)
		}
	}()

	state, err = p.handle(w, r, proj)
	if err != nil {
		state = p.fail(w, r, err)
	}
	return state, err
}

// awaitProject implements NotReady. Production without a build exits the
// process; development waits for the first rebuild.
func (p *Pipeline) awaitProject(ctx context.Context) *project.Project {
	proj := p.holder.Load()
	if proj != nil {
		return proj
	}

	if !p.opts.Dev {
		p.logger.Fatal(ctx, nil, "No build files found, please run `pageforge build` before launching `pageforge start`")
		p.opts.Exit(1)
		return nil
	}

	timer := time.NewTimer(p.opts.RetryDelay)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
		}
		if proj = p.holder.Load(); proj != nil {
			return proj
		}
		p.logger.Debug(ctx, "Waiting for the first build")
		timer.Reset(p.opts.RetryDelay)
	}
}

func (p *Pipeline) handle(w http.ResponseWriter, r *http.Request, proj *project.Project) (string, error) {
	if p.opts.Dev {
		for _, mw := range p.opts.DevMiddleware {
			handled, err := mw(w, r)
			if err != nil {
				return "", err
			}
			if handled {
				return monitoring.StateAsset, nil
			}
		}
	}

	r = p.stripBase(r)

	staticDisabled := p.opts.StaticDisabled
	if !staticDisabled && p.static != nil && p.static.Serve(w, r) {
		return monitoring.StateStatic, nil
	}

	if !p.opts.Dev && !staticDisabled && p.built != nil && strings.HasPrefix(r.URL.Path, assets.BuiltPrefix) {
		original := r.URL.Path
		r.URL.Path = "/" + strings.TrimPrefix(original, assets.BuiltPrefix)
		served := p.built.Serve(w, r)
		r.URL.Path = original
		if served {
			return monitoring.StateAsset, nil
		}
	}

	if p.opts.Dev && strings.HasPrefix(r.URL.Path, assets.BuiltPrefix) && strings.Contains(r.URL.Path, ".hot-update.json") {
		w.WriteHeader(http.StatusNotFound)
		return monitoring.StateHotUpdate, nil
	}

	return p.render(w, r, proj)
}

// stripBase returns r with the base prefix of its path replaced by "/".
func (p *Pipeline) stripBase(r *http.Request) *http.Request {
	base := p.opts.Base
	if base == "/" || !strings.HasPrefix(r.URL.Path, base) {
		return r
	}
	u := *r.URL
	u.Path = "/" + strings.TrimPrefix(u.Path, base)
	u.RawPath = ""
	r2 := r.Clone(r.Context())
	r2.URL = &u
	return r2
}

func (p *Pipeline) render(w http.ResponseWriter, r *http.Request, proj *project.Project) (string, error) {
	start := time.Now()
	rc := renderer.NewContext(r)

	res, err := p.renderRoute(r.Context(), proj, r.URL.RequestURI(), rc)
	if err != nil {
		return "", err
	}

	if res.Redirected {
		location := rc.Result.Location
		if location == "" {
			location = p.opts.Base
		}
		http.Redirect(w, r, location, http.StatusFound)
		p.metrics.ObserveRender(http.StatusFound, time.Since(start))
		return monitoring.StateRedirect, nil
	}

	status := http.StatusOK
	if res.Error != nil {
		status = res.Error.Status()
	}
	writeHTML(w, status, res.HTML)
	p.metrics.ObserveRender(status, time.Since(start))
	return monitoring.StateRender, nil
}

// fail implements the Failure state.
func (p *Pipeline) fail(w http.ResponseWriter, r *http.Request, err error) string {
	p.errors.Handle(r.Context(), err, "url", r.URL.RequestURI())
	writeHTML(w, http.StatusInternalServerError, renderer.ErrorPage(err))
	return monitoring.StateFailure
}

func writeHTML(w http.ResponseWriter, status int, html string) {
	h := w.Header()
	h.Set("Content-Type", "text/html; charset=utf-8")
	h.Set("Content-Length", strconv.Itoa(len(html)))
	w.WriteHeader(status)
	_, _ = w.Write([]byte(html))
}

// RouteResult is the outcome of RenderRoute.
type RouteResult struct {
	HTML       string
	Error      *renderer.PageError
	Redirected bool
}

// RenderRoute renders url into a full HTML document using the current
// project. rc may be nil.
func (p *Pipeline) RenderRoute(ctx context.Context, url string, rc *renderer.Context) (RouteResult, error) {
	proj := p.holder.Load()
	if proj == nil {
		return RouteResult{}, pferrors.NewNotReadyError("no compiled project")
	}
	if rc == nil {
		rc = renderer.NewContext(nil)
	}
	return p.renderRoute(ctx, proj, url, rc)
}

func (p *Pipeline) renderRoute(ctx context.Context, proj *project.Project, url string, rc *renderer.Context) (RouteResult, error) {
	p.logger.Debug(ctx, "Rendering url", "url", url)
	rc.URL = url
	rc.IsServer = true
	if rc.Result == nil {
		rc.Result = &renderer.Result{}
	}

	app, err := proj.Renderer.RenderToString(ctx, rc)
	if err != nil {
		return RouteResult{}, err
	}
	if !rc.Result.ServerRendered {
		app = renderer.MountPlaceholder
	}

	files, err := assets.Resolve(p.opts.Dev, p.opts.Base, p.opts.Filenames, proj.Manifest)
	if err != nil {
		return RouteResult{}, err
	}

	var b strings.Builder
	err = renderer.AppTemplate(renderer.AppData{
		Dev:     p.opts.Dev,
		BaseURL: p.opts.Base,
		App:     app,
		Context: rc,
		Files:   files,
	}).Render(ctx, &b)
	if err != nil {
		return RouteResult{}, pferrors.NewRenderError(pferrors.ErrCodeRenderFailed, "rendering page template", err)
	}

	return RouteResult{
		HTML:       b.String(),
		Error:      rc.Result.Error,
		Redirected: rc.Result.Redirected,
	}, nil
}
