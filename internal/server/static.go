package server

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/conneroisu/pageforge/internal/assets"
)

// StaticServer serves regular files from a directory and passes on
// everything else.
type StaticServer struct {
	root string
}

// NewStaticServer creates a StaticServer rooted at dir.
func NewStaticServer(dir string) *StaticServer {
	return &StaticServer{root: dir}
}

// Serve writes the file for r's path and reports whether it did. Only GET
// and HEAD are served; directories and missing files pass through.
func (s *StaticServer) Serve(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		return false
	}
	name := path.Clean("/" + r.URL.Path)
	if name == "/" {
		return false
	}
	return serveFile(w, r, filepath.Join(s.root, filepath.FromSlash(name)))
}

func serveFile(w http.ResponseWriter, r *http.Request, file string) bool {
	f, err := os.Open(file)
	if err != nil {
		return false
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
	return true
}

// DevAssets serves the unbundled client sources in development under the
// configured bundle file names, e.g. <base>/_pageforge/pageforge.bundle.js.
func DevAssets(srcDir, base string, names assets.Filenames, sources assets.Sources) DevMiddleware {
	files := make(map[string]string)
	for _, pair := range [][2]string{
		{names.App, sources.App},
		{names.Vendor, sources.Vendor},
		{names.CSS, sources.CSS},
	} {
		if pair[0] != "" && pair[1] != "" {
			files[pair[0]] = filepath.Join(srcDir, filepath.FromSlash(pair[1]))
		}
	}
	prefix := assets.URLJoin(base, assets.BuiltPrefix)

	return func(w http.ResponseWriter, r *http.Request) (bool, error) {
		if !strings.HasPrefix(r.URL.Path, prefix) {
			return false, nil
		}
		file, ok := files[strings.TrimPrefix(r.URL.Path, prefix)]
		if !ok {
			return false, nil
		}
		w.Header().Set("Cache-Control", "no-cache")
		return serveFile(w, r, file), nil
	}
}
