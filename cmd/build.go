package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var buildCmd = &cobra.Command{
	Use:     "build",
	Aliases: []string{"b"},
	Short:   "Build the project for production",
	Long: `Scan the pages directory, compile the route table and write the build
directory. When build.sources.app is configured the client bundle is
fingerprinted into <build-dir>/dist together with its manifest.

Examples:
  pageforge build                 # Build the project in the current directory
  pageforge build --src ./site    # Build another project`,
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
	addFlags(buildCmd, projectFlags())
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(false)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	out, err := newApp(cfg, logger).builder(false).Generate(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Built %d routes into %s in %s\n",
		len(out.Bundle.Routes.Flatten()), cfg.ResolvedBuildDir(), out.Duration)
	if out.Manifest != nil {
		for _, key := range out.Manifest.Keys() {
			fmt.Fprintf(cmd.OutOrStdout(), "  %-10s %s\n", key, out.Manifest.URL(key))
		}
	}
	return nil
}
