// Package assets resolves the client bundle URLs embedded in every page and
// produces the fingerprinted production bundle.
//
// A production build writes a manifest.json next to the bundle:
//
//	{
//	  "publicPath": "/_pageforge/",
//	  "assets": {
//	    "app.js": "app.3f2a9c1e.js",
//	    "vendor.js": "vendor.77b01d42.js",
//	    "app.css": "app.0c9e5a13.css"
//	  }
//	}
package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	json "github.com/goccy/go-json"

	pferrors "github.com/conneroisu/pageforge/internal/errors"
)

// Logical asset keys.
const (
	KeyApp    = "app.js"
	KeyVendor = "vendor.js"
	KeyCSS    = "app.css"
)

// ManifestFile is the manifest's file name inside the dist directory.
const ManifestFile = "manifest.json"

// Manifest maps logical asset names to emitted file names.
type Manifest struct {
	PublicPath string            `json:"publicPath"`
	Assets     map[string]string `json:"assets"`
}

// NewManifest creates an empty manifest served from publicPath.
func NewManifest(publicPath string) *Manifest {
	return &Manifest{
		PublicPath: publicPath,
		Assets:     make(map[string]string),
	}
}

// Load reads a manifest written by Save.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, pferrors.NewIOError(pferrors.ErrCodeFileNotFound, "reading asset manifest", err).WithFile(path)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, pferrors.Wrap(err, pferrors.ErrorTypeBuild, pferrors.ErrCodeManifestFormat, "decoding asset manifest "+path)
	}
	if m.Assets == nil {
		m.Assets = make(map[string]string)
	}
	return &m, nil
}

// Save writes the manifest as indented JSON, creating parent directories.
func (m *Manifest) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating manifest directory: %w", err)
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// URL returns PublicPath joined with the emitted name of logical, or "" when
// the manifest has no such asset.
func (m *Manifest) URL(logical string) string {
	if m == nil {
		return ""
	}
	name, ok := m.Assets[logical]
	if !ok || name == "" {
		return ""
	}
	return m.PublicPath + name
}

// Keys lists the logical names in sorted order.
func (m *Manifest) Keys() []string {
	keys := make([]string, 0, len(m.Assets))
	for k := range m.Assets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
