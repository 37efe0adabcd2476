package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/conneroisu/pageforge/internal/build"
	"github.com/conneroisu/pageforge/internal/monitoring"
	"github.com/conneroisu/pageforge/internal/server"
	"github.com/conneroisu/pageforge/internal/watcher"
)

var devCmd = &cobra.Command{
	Use:     "dev",
	Aliases: []string{"d"},
	Short:   "Start the development server with hot reload",
	Long: `Build the project in development mode and serve it. Adding, removing or
renaming pages and layouts rebuilds the route table and reloads connected
browsers; build errors are shown as an overlay.

Examples:
  pageforge dev                   # Serve on localhost:3000
  pageforge dev --base /docs/     # Serve under a base path`,
	RunE: runDev,
}

func init() {
	rootCmd.AddCommand(devCmd)
	addFlags(devCmd, serverFlags())
}

func runDev(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(true)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	d := newDevServer(newApp(cfg, logger))
	logger.Info(ctx, "Starting development server", "addr", cfg.Addr(), "base", cfg.Router.Base)
	return d.run(ctx)
}

// devServer ties the rebuild loop, file watcher and hot reload endpoint to
// the page pipeline.
type devServer struct {
	app       *app
	builder   *build.Builder
	rebuilder *build.Rebuilder
	hot       *server.HotReload
	pipeline  *server.Pipeline
}

func newDevServer(a *app) *devServer {
	d := &devServer{
		app:     a,
		builder: a.builder(true),
		hot:     server.NewHotReload(a.cfg.Router.Base, a.holder, a.logger, a.metrics),
	}

	d.rebuilder = build.NewRebuilder(d.rebuild, a.logger)
	a.health.RegisterCheck(monitoring.RebuildHealthChecker(d.rebuilder.Metrics().Snapshot))
	a.health.RegisterCheck(monitoring.HotReloadHealthChecker(d.hot.Clients))
	d.rebuilder.OnResult(func(result build.RebuildResult) {
		a.metrics.ObserveRebuild(result.Error, result.Duration)
		d.hot.NotifyError(result.Error)
	})

	// The hot reload transport runs after asset serving.
	d.pipeline = a.pipeline([]server.DevMiddleware{
		server.DevAssets(a.cfg.SrcDir, a.cfg.Router.Base, a.cfg.Build.Filenames, a.cfg.Build.Sources),
		d.hot.Middleware(),
	})
	return d
}

func (d *devServer) rebuild(ctx context.Context) error {
	out, err := d.builder.Generate(ctx)
	if err != nil {
		return err
	}
	d.app.install(out.Bundle, nil)
	return nil
}

// watch requests a rebuild whenever a page or layout file is added,
// removed or renamed.
func (d *devServer) watch(ctx context.Context) error {
	fw, err := watcher.NewFileWatcher(0, d.app.logger)
	if err != nil {
		return err
	}

	scan := d.builder.Scanner()
	fw.AddFilter(watcher.NoHiddenFilter)
	fw.AddFilter(watcher.NoTestFilter)
	fw.AddFilter(watcher.ExtensionFilter(d.app.cfg.Pages.Extension))
	fw.AddFilter(watcher.StructureFilter)
	fw.AddFilter(watcher.UnderFilter(scan.PagesRoot(), scan.LayoutsRoot()))
	fw.AddHandler(func(events []watcher.ChangeEvent) error {
		d.app.logger.Debug(ctx, "Project structure changed", "events", len(events))
		d.rebuilder.Request()
		return nil
	})

	for _, root := range []string{scan.PagesRoot(), scan.LayoutsRoot()} {
		if info, err := os.Stat(root); err != nil || !info.IsDir() {
			d.app.logger.Debug(ctx, "Not watching missing directory", "dir", root)
			continue
		}
		if err := fw.AddRecursive(root); err != nil {
			_ = fw.Stop()
			return err
		}
	}

	if err := fw.Start(ctx); err != nil {
		_ = fw.Stop()
		return err
	}
	go func() {
		<-ctx.Done()
		_ = fw.Stop()
	}()
	return nil
}

func (d *devServer) run(ctx context.Context) error {
	if err := d.watch(ctx); err != nil {
		return err
	}

	d.rebuilder.Request()
	go func() { _ = d.rebuilder.Run(ctx) }()
	go d.hot.Run(ctx)

	return d.app.server(d.pipeline).ListenAndServe(ctx)
}
