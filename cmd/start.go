package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/conneroisu/pageforge/internal/assets"
	"github.com/conneroisu/pageforge/internal/build"
	pferrors "github.com/conneroisu/pageforge/internal/errors"
)

var startCmd = &cobra.Command{
	Use:     "start",
	Aliases: []string{"s"},
	Short:   "Serve a production build",
	Long: `Serve the output of a previous pageforge build. Requests made while no
build is present terminate the server.

Examples:
  pageforge start                 # Serve on localhost:3000
  pageforge start -p 8080 --host 0.0.0.0`,
	RunE: runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)
	addFlags(startCmd, serverFlags())
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(false)
	if err != nil {
		return err
	}
	a := newApp(cfg, logger)

	ctx, cancel := signalContext()
	defer cancel()

	if err := a.loadBuild(ctx); err != nil {
		if !pferrors.IsNotReady(err) {
			return err
		}
		logger.Warn(ctx, err, "Starting without a build")
	}

	logger.Info(ctx, "Starting production server", "addr", cfg.Addr(), "base", cfg.Router.Base)
	return a.server(a.pipeline(nil)).ListenAndServe(ctx)
}

// loadBuild installs the project found in the build directory. A build
// without a client bundle is served without one.
func (a *app) loadBuild(ctx context.Context) error {
	dir := a.cfg.ResolvedBuildDir()
	bundle, err := build.LoadBundle(dir)
	if err != nil {
		return err
	}

	manifest, err := assets.Load(build.ManifestPath(dir))
	if err != nil {
		if !pferrors.HasErrorCode(err, pferrors.ErrCodeFileNotFound) {
			return err
		}
		manifest = assets.NewManifest(a.cfg.Build.PublicPath)
	}

	p := a.install(bundle, manifest)
	a.logger.Info(ctx, "Loaded build",
		"routes", len(p.Routes.Flatten()),
		"generated_at", bundle.GeneratedAt.String(),
	)
	return nil
}
