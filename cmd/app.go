package cmd

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/conneroisu/pageforge/internal/assets"
	"github.com/conneroisu/pageforge/internal/build"
	"github.com/conneroisu/pageforge/internal/config"
	"github.com/conneroisu/pageforge/internal/logging"
	"github.com/conneroisu/pageforge/internal/monitoring"
	"github.com/conneroisu/pageforge/internal/project"
	"github.com/conneroisu/pageforge/internal/server"
	"github.com/conneroisu/pageforge/internal/version"
	"github.com/conneroisu/pageforge/internal/viewcache"
)

// app is the state shared by the serving commands.
type app struct {
	cfg     *config.Config
	logger  logging.Logger
	holder  *project.Holder
	metrics *monitoring.Metrics
	health  *monitoring.HealthMonitor
}

func newApp(cfg *config.Config, logger logging.Logger) *app {
	a := &app{
		cfg:     cfg,
		logger:  logger,
		holder:  project.NewHolder(),
		metrics: monitoring.NewMetrics(),
		health:  monitoring.NewHealthMonitor(logger, version.GetVersion()),
	}

	a.health.RegisterCheck(monitoring.ReadyHealthChecker(a.holder.Ready, cfg.Dev))
	a.health.RegisterCheck(monitoring.DirectoryHealthChecker("build_dir", cfg.ResolvedBuildDir(), !cfg.Dev))
	a.health.RegisterCheck(monitoring.GoroutineHealthChecker())

	a.metrics.RegisterCacheStats(func() viewcache.Stats {
		p := a.holder.Load()
		if p == nil || p.Cache == nil {
			return viewcache.Stats{}
		}
		return p.Cache.Stats()
	})
	return a
}

// install publishes a compiled bundle as the current project.
func (a *app) install(bundle *build.Bundle, manifest *assets.Manifest) *project.Project {
	var cache *viewcache.Options
	if a.cfg.Cache.Enabled {
		cache = &viewcache.Options{MaxEntries: a.cfg.Cache.MaxEntries, TTL: a.cfg.Cache.MaxAge}
	}
	return a.holder.Install(project.New(project.Options{
		Routes:    bundle.Routes,
		Layouts:   bundle.Layouts,
		ErrorPage: bundle.ErrorPage,
		Manifest:  manifest,
		Pages:     pageRegistry,
		Cache:     cache,
		Logger:    a.logger,
	}))
}

func (a *app) builder(dev bool) *build.Builder {
	opts := build.Options{
		SrcDir:    a.cfg.SrcDir,
		BuildDir:  a.cfg.ResolvedBuildDir(),
		Dev:       dev,
		PagesDir:  a.cfg.Pages.Dir,
		Extension: a.cfg.Pages.Extension,
		Logger:    a.logger,
	}
	if !dev && a.cfg.Build.Sources.App != "" {
		opts.Bundler = &assets.FileBundler{
			SrcDir:     a.cfg.SrcDir,
			Sources:    a.cfg.Build.Sources,
			OutDir:     filepath.Join(a.cfg.ResolvedBuildDir(), build.DistDir),
			PublicPath: a.cfg.Build.PublicPath,
		}
	}
	return build.NewBuilder(opts)
}

func (a *app) pipeline(dev []server.DevMiddleware) *server.Pipeline {
	return server.NewPipeline(a.holder, server.PipelineOptions{
		Dev:            a.cfg.Dev,
		Base:           a.cfg.Router.Base,
		Filenames:      a.cfg.Build.Filenames,
		StaticDir:      a.cfg.ResolvedStaticDir(),
		StaticDisabled: a.cfg.Static.Disabled,
		DistDir:        filepath.Join(a.cfg.ResolvedBuildDir(), build.DistDir),
		RetryDelay:     a.cfg.Server.RetryDelay,
		DevMiddleware:  dev,
		Logger:         a.logger,
		Metrics:        a.metrics,
	})
}

func (a *app) server(pages *server.Pipeline) *server.Server {
	return server.New(server.Options{
		Addr:            a.cfg.Addr(),
		ShutdownTimeout: a.cfg.Server.ShutdownTimeout,
		Pages:           pages,
		Compress:        a.cfg.Server.Compress && !a.cfg.Dev,
		Health:          a.health,
		Metrics:         a.metrics,
		Logger:          a.logger,
	})
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
