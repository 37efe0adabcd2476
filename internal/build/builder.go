package build

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/conneroisu/pageforge/internal/assets"
	pferrors "github.com/conneroisu/pageforge/internal/errors"
	"github.com/conneroisu/pageforge/internal/logging"
	"github.com/conneroisu/pageforge/internal/routes"
	"github.com/conneroisu/pageforge/internal/scanner"
)

// Options configures a Builder.
type Options struct {
	SrcDir   string
	BuildDir string
	Dev      bool

	PagesDir  string
	Extension string

	// Bundler produces the client bundle. Only production builds use it; a
	// nil bundler skips the client bundle.
	Bundler assets.Bundler

	Logger logging.Logger
}

// Output is the result of one Generate call.
type Output struct {
	Bundle   *Bundle
	Manifest *assets.Manifest
	Duration time.Duration
}

// Builder scans a project and writes its build directory.
type Builder struct {
	opts    Options
	scanner *scanner.Scanner
	logger  logging.Logger
	now     func() time.Time
}

// NewBuilder creates a Builder. An empty BuildDir is DefaultBuildDir under
// SrcDir.
func NewBuilder(opts Options) *Builder {
	if opts.BuildDir == "" {
		opts.BuildDir = filepath.Join(opts.SrcDir, DefaultBuildDir)
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	return &Builder{
		opts: opts,
		scanner: scanner.New(opts.SrcDir, scanner.Options{
			PagesDir:  opts.PagesDir,
			Extension: opts.Extension,
		}),
		logger: opts.Logger.WithComponent("build"),
		now:    time.Now,
	}
}

// BuildDir is the directory Generate writes to.
func (b *Builder) BuildDir() string {
	return b.opts.BuildDir
}

// Scanner exposes the project scanner, mainly for the watcher setup.
func (b *Builder) Scanner() *scanner.Scanner {
	return b.scanner
}

// Generate scans pages and layouts, compiles the route table and writes the
// build directory. A production build starts from an empty build directory
// and runs the bundler; a development build only refreshes the files.
func (b *Builder) Generate(ctx context.Context) (*Output, error) {
	perf := logging.StartOperation(b.logger, "generate")

	out, err := b.generate(ctx)
	if err != nil {
		perf.EndWithError(ctx, err)
		return nil, err
	}
	out.Duration = perf.End(ctx,
		"routes", len(out.Bundle.Routes.Flatten()),
		"layouts", len(out.Bundle.Layouts),
		"dev", b.opts.Dev,
	)
	return out, nil
}

// Compile scans the source directory and compiles the route table without
// writing anything.
func (b *Builder) Compile(ctx context.Context) (*routes.Table, *scanner.Result, error) {
	scan, err := b.scanner.Scan()
	if err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	var compileOpts []routes.Option
	if b.opts.PagesDir != "" {
		compileOpts = append(compileOpts, routes.WithPagesDir(b.opts.PagesDir))
	}
	if b.opts.Extension != "" {
		compileOpts = append(compileOpts, routes.WithExtension(b.opts.Extension))
	}
	table, err := routes.Compile(scan.Pages, compileOpts...)
	if err != nil {
		return nil, nil, pferrors.NewBuildError(pferrors.ErrCodeBuildFailed, "compiling routes", err)
	}
	return table, scan, nil
}

func (b *Builder) generate(ctx context.Context) (*Output, error) {
	table, scan, err := b.Compile(ctx)
	if err != nil {
		return nil, err
	}
	if table.Empty() {
		b.logger.Warn(ctx, nil, "No pages found", "dir", b.scanner.PagesRoot())
	}

	if err := b.prepareDir(); err != nil {
		return nil, err
	}

	bundle := &Bundle{
		Routes:      table,
		Layouts:     scan.Layouts,
		ErrorPage:   scan.ErrorPage,
		Dev:         b.opts.Dev,
		GeneratedAt: b.now().UTC(),
	}
	if err := b.writeRoutes(table); err != nil {
		return nil, err
	}
	if err := b.writeBundle(bundle); err != nil {
		return nil, err
	}

	out := &Output{Bundle: bundle}
	if b.opts.Dev || b.opts.Bundler == nil {
		return out, nil
	}

	manifest, err := b.opts.Bundler.Bundle(ctx)
	if err != nil {
		return nil, err
	}
	out.Manifest = manifest
	return out, nil
}

func (b *Builder) prepareDir() error {
	dir := b.opts.BuildDir
	if !b.opts.Dev {
		if err := os.RemoveAll(dir); err != nil {
			return pferrors.NewIOError(pferrors.ErrCodeInternalError, "cleaning build directory", err).WithFile(dir)
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return pferrors.NewIOError(pferrors.ErrCodeInternalError, "creating build directory", err).WithFile(dir)
	}
	return nil
}

func (b *Builder) writeRoutes(table *routes.Table) error {
	path := filepath.Join(b.opts.BuildDir, RoutesFile)
	nav, err := table.NavData()
	if err != nil {
		return pferrors.NewBuildError(pferrors.ErrCodeBuildFailed, "encoding navigation data", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, nav, 0o644); err != nil {
		return pferrors.NewIOError(pferrors.ErrCodeInternalError, "writing navigation data", err).WithFile(path)
	}
	if err := os.Rename(tmp, path); err != nil {
		return pferrors.NewIOError(pferrors.ErrCodeInternalError, "writing navigation data", err).WithFile(path)
	}
	return nil
}

func (b *Builder) writeBundle(bundle *Bundle) error {
	path := filepath.Join(b.opts.BuildDir, ServerFile)
	if err := writeJSON(path, bundle); err != nil {
		return pferrors.NewIOError(pferrors.ErrCodeInternalError, "writing server bundle", err).WithFile(path)
	}
	return nil
}
