package routes

import (
	"fmt"
	"path"
	"strings"
)

// DefaultPagesDir is the directory page files are rooted at.
const DefaultPagesDir = "pages"

// DefaultExtension is the page file extension stripped before tokenizing.
const DefaultExtension = ".templ"

// Option configures a compilation pass.
type Option func(*compileConfig)

type compileConfig struct {
	pagesDir      string
	extension     string
	componentRoot string
}

// WithPagesDir sets the pages root that is stripped from every file.
func WithPagesDir(dir string) Option {
	return func(c *compileConfig) {
		c.pagesDir = strings.Trim(dir, "/")
	}
}

// WithExtension sets the page file extension.
func WithExtension(ext string) Option {
	return func(c *compileConfig) {
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		c.extension = ext
	}
}

// WithComponentRoot prefixes component references with root, typically the
// project source directory.
func WithComponentRoot(root string) Option {
	return func(c *compileConfig) {
		c.componentRoot = root
	}
}

func (c *compileConfig) relativePath(file PageFile) string {
	p := strings.TrimPrefix(string(file), c.pagesDir)
	return strings.TrimSuffix(p, c.extension)
}

func (c *compileConfig) componentRef(file PageFile) string {
	if c.componentRoot == "" {
		return string(file)
	}
	return path.Join(c.componentRoot, string(file))
}

func (c *compileConfig) validate(file PageFile) error {
	p := string(file)
	if !strings.HasPrefix(p, c.pagesDir+"/") {
		return fmt.Errorf("page file %q is not under %q", p, c.pagesDir)
	}
	if c.extension != "" && !strings.HasSuffix(p, c.extension) {
		return fmt.Errorf("page file %q does not have extension %q", p, c.extension)
	}
	return nil
}

// Compile turns a set of page files into a route table. Input order is not
// significant. An empty file set yields an empty table.
func Compile(files []PageFile, opts ...Option) (*Table, error) {
	cfg := &compileConfig{
		pagesDir:  DefaultPagesDir,
		extension: DefaultExtension,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	for _, file := range files {
		if err := cfg.validate(file); err != nil {
			return nil, err
		}
	}

	return &Table{Routes: Collapse(buildTree(files, cfg))}, nil
}

// MustCompile is like Compile but panics on error. Intended for tests and
// static route sets.
func MustCompile(files []PageFile, opts ...Option) *Table {
	t, err := Compile(files, opts...)
	if err != nil {
		panic(err)
	}
	return t
}
