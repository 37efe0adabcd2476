package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/pageforge/internal/routes"
)

var routesFormat string

var routesCmd = &cobra.Command{
	Use:     "routes",
	Aliases: []string{"r"},
	Short:   "Print the compiled route table",
	Long: `Scan the pages directory and print the route table it compiles to,
children indented beneath their parents.

Examples:
  pageforge routes                # Table output
  pageforge routes -o json        # JSON output
  pageforge routes -o yaml        # YAML output`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return validateFormat(routesFormat)
	},
	RunE: runRoutes,
}

func init() {
	rootCmd.AddCommand(routesCmd)
	addFlags(routesCmd, projectFlags())
	addOutputFlag(routesCmd, &routesFormat)
}

func runRoutes(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(false)
	if err != nil {
		return err
	}

	table, _, err := newApp(cfg, logger).builder(true).Compile(context.Background())
	if err != nil {
		return err
	}
	return writeRoutes(cmd.OutOrStdout(), table, routesFormat)
}

func writeRoutes(w io.Writer, table *routes.Table, format string) error {
	flat := table.Flatten()

	switch format {
	case "json":
		data, err := json.MarshalIndent(flat, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "yaml":
		encoder := yaml.NewEncoder(w)
		defer encoder.Close()
		return encoder.Encode(flat)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tPATH\tCOMPONENT")
	fmt.Fprintln(tw, "----\t----\t---------")
	for _, r := range flat {
		name := r.Name
		if name == "" {
			name = "-"
		}
		fmt.Fprintf(tw, "%s\t%s%s\t%s\n", name, strings.Repeat("  ", r.Depth), r.Pattern, r.Component)
	}
	return tw.Flush()
}
