// Package build generates the project build directory and runs the
// development rebuild loop.
//
// A build writes two files into the build directory (".pageforge" by
// default):
//
//	routes.json   navigation data for the client-side router
//	server.json   the server bundle: route table, layouts and error page
//
// Production builds also emit the fingerprinted client bundle and its
// manifest under dist/.
package build

import (
	"os"
	"path/filepath"
	"time"

	json "github.com/goccy/go-json"

	"github.com/conneroisu/pageforge/internal/assets"
	pferrors "github.com/conneroisu/pageforge/internal/errors"
	"github.com/conneroisu/pageforge/internal/routes"
)

// Build directory layout.
const (
	DefaultBuildDir = ".pageforge"
	RoutesFile      = "routes.json"
	ServerFile      = "server.json"
	DistDir         = "dist"
)

// ServerFileEnv overrides the server bundle path used by LoadBundle.
const ServerFileEnv = "PAGEFORGE_SERVER_FILE"

// Bundle is the server-side build output.
type Bundle struct {
	Routes      *routes.Table     `json:"routes"`
	Layouts     map[string]string `json:"layouts"`
	ErrorPage   string            `json:"errorPage,omitempty"`
	Dev         bool              `json:"dev"`
	GeneratedAt time.Time         `json:"generatedAt"`
}

// ServerFilePath is the server bundle location for buildDir, honoring
// PAGEFORGE_SERVER_FILE.
func ServerFilePath(buildDir string) string {
	if p := os.Getenv(ServerFileEnv); p != "" {
		return p
	}
	return filepath.Join(buildDir, ServerFile)
}

// ManifestPath is the production manifest location for buildDir.
func ManifestPath(buildDir string) string {
	return filepath.Join(buildDir, DistDir, assets.ManifestFile)
}

// LoadBundle reads the server bundle of a previous build. A missing bundle
// is reported as a not-ready error so callers can tell the user to build.
func LoadBundle(buildDir string) (*Bundle, error) {
	path := ServerFilePath(buildDir)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, pferrors.NewNotReadyError("no build files found").
			WithFile(path).
			WithSuggestion("run `pageforge build` first")
	}
	if err != nil {
		return nil, pferrors.NewIOError(pferrors.ErrCodeFileNotFound, "reading server bundle", err).WithFile(path)
	}

	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, pferrors.Wrap(err, pferrors.ErrorTypeBuild, pferrors.ErrCodeManifestFormat, "decoding server bundle "+path)
	}
	if b.Routes == nil {
		b.Routes = &routes.Table{Routes: []*routes.Route{}}
	}
	if b.Layouts == nil {
		b.Layouts = map[string]string{}
	}

	// Fingerprints are derived, not stored.
	b.Routes.Walk(func(r *routes.Route, _ string, _ int) bool {
		r.Fingerprint = routes.Fingerprint(r.Component)
		return true
	})
	return &b, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
