// Package scaffolding creates new pageforge projects.
package scaffolding

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"text/template"

	pferrors "github.com/conneroisu/pageforge/internal/errors"
)

var projectNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)

// Options controls one project generation.
type Options struct {
	// Dir is the project directory. It is created when missing.
	Dir string

	// Name is the project name. Defaults to the base name of Dir.
	Name string

	// Module is the Go module path. Defaults to Name.
	Module string

	// Force overwrites files that already exist.
	Force bool
}

// templateContext is the data every project template is executed with.
type templateContext struct {
	Name   string
	Title  string
	Module string
}

// Generator writes a project from a set of file templates.
type Generator struct {
	files map[string]string
}

// New creates a generator with the built-in project templates.
func New() *Generator {
	return &Generator{files: projectFiles()}
}

// Files returns the paths the generator writes, relative to the project
// directory, sorted.
func (g *Generator) Files() []string {
	paths := make([]string, 0, len(g.files))
	for p := range g.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Generate writes the project described by opts and returns the files it
// wrote. No file is written when any of them already exists and Force is
// unset.
func (g *Generator) Generate(opts Options) ([]string, error) {
	if opts.Dir == "" {
		opts.Dir = "."
	}
	if opts.Name == "" {
		abs, err := filepath.Abs(opts.Dir)
		if err != nil {
			return nil, pferrors.NewIOError(pferrors.ErrCodeFileNotFound, "resolving project directory", err)
		}
		opts.Name = strings.ToLower(filepath.Base(abs))
	}
	if err := ValidateProjectName(opts.Name); err != nil {
		return nil, err
	}
	if opts.Module == "" {
		opts.Module = opts.Name
	}

	ctx := templateContext{
		Name:   opts.Name,
		Title:  capitalizeFirst(opts.Name),
		Module: opts.Module,
	}

	paths := g.Files()
	if !opts.Force {
		for _, p := range paths {
			target := filepath.Join(opts.Dir, filepath.FromSlash(p))
			if _, err := os.Stat(target); err == nil {
				return nil, pferrors.NewIOError(pferrors.ErrCodeFileExists, "refusing to overwrite existing file", nil).
					WithFile(target).
					WithSuggestion("Use --force to overwrite the existing project files")
			}
		}
	}

	written := make([]string, 0, len(paths))
	for _, p := range paths {
		target := filepath.Join(opts.Dir, filepath.FromSlash(p))
		if err := g.generateFile(target, g.files[p], ctx); err != nil {
			return written, err
		}
		written = append(written, p)
	}
	return written, nil
}

// generateFile executes content with ctx into filename.
func (g *Generator) generateFile(filename, content string, ctx templateContext) error {
	tmpl, err := template.New(filepath.Base(filename)).Parse(content)
	if err != nil {
		return pferrors.NewInternalError(pferrors.ErrCodeInternalError, "parsing template "+filename, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, ctx); err != nil {
		return pferrors.NewInternalError(pferrors.ErrCodeInternalError, "executing template "+filename, err)
	}

	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return pferrors.NewIOError(pferrors.ErrCodeInternalError, "creating directory", err).WithFile(filepath.Dir(filename))
	}
	if err := os.WriteFile(filename, buf.Bytes(), 0o644); err != nil {
		return pferrors.NewIOError(pferrors.ErrCodeInternalError, "writing file", err).WithFile(filename)
	}
	return nil
}

// ValidateProjectName checks that name is usable as a directory and
// module name.
func ValidateProjectName(name string) error {
	if name == "" {
		return pferrors.NewConfigError(pferrors.ErrCodeConfigInvalid, "project name cannot be empty")
	}
	if !projectNamePattern.MatchString(name) {
		return pferrors.NewConfigError(pferrors.ErrCodeConfigInvalid,
			fmt.Sprintf("invalid project name %q", name)).
			WithSuggestion("Use lowercase letters, digits, '-' and '_', starting with a letter")
	}
	return nil
}

func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
