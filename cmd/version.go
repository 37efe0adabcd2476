package cmd

import (
	"fmt"
	"io"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/pageforge/internal/version"
)

var (
	versionFormat string
	versionShort  bool
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long: `Display the version, git commit, build time, Go version and target
platform of this binary.

Examples:
  pageforge version               # Show version
  pageforge version --short       # Version only
  pageforge version -f json       # Output as JSON`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeVersion(cmd.OutOrStdout(), versionFormat, versionShort)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)

	versionCmd.Flags().StringVarP(&versionFormat, "format", "f", "text", "Output format (text, json, yaml)")
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Show short version only")
}

func writeVersion(w io.Writer, format string, short bool) error {
	info := version.GetBuildInfo()

	switch format {
	case "json":
		data, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "yaml":
		encoder := yaml.NewEncoder(w)
		defer encoder.Close()
		return encoder.Encode(info)
	case "text":
	default:
		return fmt.Errorf("unsupported format: %s (supported: text, json, yaml)", format)
	}

	if short {
		_, err := fmt.Fprintln(w, version.GetShortVersion())
		return err
	}
	fmt.Fprintf(w, "pageforge %s\n", version.GetShortVersion())
	if !info.BuildTime.IsZero() {
		fmt.Fprintf(w, "Built:      %s\n", info.BuildTime.Format("2006-01-02 15:04:05 UTC"))
	}
	fmt.Fprintf(w, "Go version: %s\n", info.GoVersion)
	fmt.Fprintf(w, "Platform:   %s\n", info.Platform)
	return nil
}
