package cmd

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Output formats accepted by --output.
var outputFormats = []string{"table", "json", "yaml"}

// serverFlags are shared by the commands that run a server. Each flag is
// bound to its configuration key.
func serverFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("server", pflag.ContinueOnError)
	fs.IntP("port", "p", 3000, "Port to serve on")
	fs.String("host", "localhost", "Host to bind to")
	fs.String("base", "/", "Router base path")
	fs.String("src", ".", "Project source directory")
	return fs
}

// projectFlags select the project without starting a server.
func projectFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("project", pflag.ContinueOnError)
	fs.String("src", ".", "Project source directory")
	fs.String("build-dir", "", "Build directory (default <src>/.pageforge)")
	return fs
}

var flagBindings = map[string]string{
	"port":      "server.port",
	"host":      "server.host",
	"base":      "router.base",
	"src":       "src_dir",
	"build-dir": "build_dir",
}

// addFlags adds fs to cmd. The flags are bound to viper when cmd runs, so
// commands sharing a flag name do not overwrite each other's binding.
func addFlags(cmd *cobra.Command, fs *pflag.FlagSet) {
	cmd.Flags().AddFlagSet(fs)

	prev := cmd.PreRunE
	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		bindFlags(cmd.Flags())
		if prev != nil {
			return prev(cmd, args)
		}
		return nil
	}
}

func bindFlags(fs *pflag.FlagSet) {
	fs.VisitAll(func(f *pflag.Flag) {
		if key, ok := flagBindings[f.Name]; ok {
			_ = viper.BindPFlag(key, f)
		}
	})
}

func addOutputFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVarP(target, "output", "o", "table", "Output format ("+strings.Join(outputFormats, "|")+")")
}

func validateFormat(format string) error {
	if slices.Contains(outputFormats, format) {
		return nil
	}
	return fmt.Errorf("invalid output format %q, must be one of: %s", format, strings.Join(outputFormats, ", "))
}
