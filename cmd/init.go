package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/conneroisu/pageforge/internal/scaffolding"
)

var (
	initName   string
	initModule string
	initForce  bool
)

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Create a new pageforge project",
	Long: `Create a project with pages, layouts, an error page, static files and a
client bundle. The directory defaults to the current one and the project
name to the directory name.

Examples:
  pageforge init                          # Initialize the current directory
  pageforge init blog                     # Create ./blog
  pageforge init blog -m example.com/blog # Set the Go module path`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}
		return runInit(cmd.OutOrStdout(), scaffolding.Options{
			Dir:    dir,
			Name:   initName,
			Module: initModule,
			Force:  initForce,
		})
	},
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().StringVarP(&initName, "name", "n", "", "Project name (default directory name)")
	initCmd.Flags().StringVarP(&initModule, "module", "m", "", "Go module path (default project name)")
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite existing files")
}

func runInit(w io.Writer, opts scaffolding.Options) error {
	written, err := scaffolding.New().Generate(opts)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Created %d files in %s\n", len(written), opts.Dir)
	for _, f := range written {
		fmt.Fprintf(w, "  %s\n", f)
	}
	fmt.Fprintln(w, "\nNext steps:")
	fmt.Fprintln(w, "  go generate ./...")
	fmt.Fprintln(w, "  go mod tidy")
	fmt.Fprintln(w, "  go run . dev")
	return nil
}
