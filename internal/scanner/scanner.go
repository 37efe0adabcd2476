// Package scanner discovers the page and layout files of a project.
//
// Pages live under <src>/pages (any depth) and layouts directly under
// <src>/layouts. Results are slash-separated paths relative to the source
// directory, sorted, ready for the route compiler.
package scanner

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	pferrors "github.com/conneroisu/pageforge/internal/errors"
	"github.com/conneroisu/pageforge/internal/routes"
)

// LayoutsDir is the layouts root inside the source directory.
const LayoutsDir = "layouts"

// ErrorLayout is the layout name reserved for the custom error page.
const ErrorLayout = "error"

// Options configures a Scanner. Zero values take the route compiler's
// defaults.
type Options struct {
	PagesDir  string
	Extension string
}

// Result is one scan of a source directory.
type Result struct {
	Pages []routes.PageFile

	// Layouts maps layout name to its file, excluding the error layout.
	Layouts map[string]string

	// ErrorPage is the error layout file, or "" when the project has none.
	ErrorPage string
}

// Scanner walks a project source directory.
type Scanner struct {
	srcDir    string
	pagesDir  string
	extension string
}

// New creates a Scanner rooted at srcDir.
func New(srcDir string, opts Options) *Scanner {
	s := &Scanner{
		srcDir:    srcDir,
		pagesDir:  routes.DefaultPagesDir,
		extension: routes.DefaultExtension,
	}
	if opts.PagesDir != "" {
		s.pagesDir = strings.Trim(filepath.ToSlash(opts.PagesDir), "/")
	}
	if opts.Extension != "" {
		s.extension = opts.Extension
		if !strings.HasPrefix(s.extension, ".") {
			s.extension = "." + s.extension
		}
	}
	return s
}

// PagesRoot is the absolute or srcDir-relative pages directory.
func (s *Scanner) PagesRoot() string {
	return filepath.Join(s.srcDir, filepath.FromSlash(s.pagesDir))
}

// LayoutsRoot is the layouts directory.
func (s *Scanner) LayoutsRoot() string {
	return filepath.Join(s.srcDir, LayoutsDir)
}

// CheckPagesDir reports a config error when the pages directory is missing,
// pointing at the parent directory when it has one.
func (s *Scanner) CheckPagesDir() error {
	info, err := os.Stat(s.PagesRoot())
	if err == nil && info.IsDir() {
		return nil
	}

	parent := filepath.Join(s.srcDir, "..", filepath.FromSlash(s.pagesDir))
	if info, perr := os.Stat(parent); perr == nil && info.IsDir() {
		return pferrors.NewConfigError(pferrors.ErrCodeNoPagesDir,
			"No `"+s.pagesDir+"` directory found. Did you mean to run `pageforge` in the parent (`../`) directory?").
			WithFile(s.srcDir).
			WithSuggestion("cd .. and run the command again")
	}
	return pferrors.NewConfigError(pferrors.ErrCodeNoPagesDir,
		"Couldn't find a `"+s.pagesDir+"` directory. Please create one under the project root").
		WithFile(s.srcDir).
		WithSuggestion("mkdir " + s.pagesDir)
}

// Scan lists pages and layouts.
func (s *Scanner) Scan() (*Result, error) {
	if err := s.CheckPagesDir(); err != nil {
		return nil, err
	}

	pages, err := s.scanPages()
	if err != nil {
		return nil, err
	}
	layouts, errorPage, err := s.scanLayouts()
	if err != nil {
		return nil, err
	}

	return &Result{Pages: pages, Layouts: layouts, ErrorPage: errorPage}, nil
}

func (s *Scanner) scanPages() ([]routes.PageFile, error) {
	root := s.PagesRoot()
	var pages []routes.PageFile

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if p != root && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !s.isPage(name) {
			return nil
		}
		rel, err := filepath.Rel(s.srcDir, p)
		if err != nil {
			return err
		}
		pages = append(pages, routes.PageFile(filepath.ToSlash(rel)))
		return nil
	})
	if err != nil {
		return nil, pferrors.NewIOError(pferrors.ErrCodeFileNotFound, "scanning pages", err).WithFile(root)
	}

	sort.Slice(pages, func(i, j int) bool { return pages[i] < pages[j] })
	return pages, nil
}

func (s *Scanner) scanLayouts() (map[string]string, string, error) {
	layouts := make(map[string]string)
	entries, err := os.ReadDir(s.LayoutsRoot())
	if os.IsNotExist(err) {
		return layouts, "", nil
	}
	if err != nil {
		return nil, "", pferrors.NewIOError(pferrors.ErrCodeFileNotFound, "scanning layouts", err).WithFile(s.LayoutsRoot())
	}

	errorPage := ""
	for _, e := range entries {
		if e.IsDir() || !s.isPage(e.Name()) {
			continue
		}
		name := strings.TrimSuffix(e.Name(), s.extension)
		file := path.Join(LayoutsDir, e.Name())
		if name == ErrorLayout {
			errorPage = file
			continue
		}
		layouts[name] = file
	}
	return layouts, errorPage, nil
}

func (s *Scanner) isPage(name string) bool {
	if strings.HasPrefix(name, ".") || !strings.HasSuffix(name, s.extension) {
		return false
	}
	return !strings.HasSuffix(name, "_test"+s.extension)
}
