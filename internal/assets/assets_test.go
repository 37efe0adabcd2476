package assets

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pferrors "github.com/conneroisu/pageforge/internal/errors"
)

func TestURLJoin(t *testing.T) {
	testCases := []struct {
		parts    []string
		expected string
	}{
		{[]string{"/", "/_pageforge/", "style.css"}, "/_pageforge/style.css"},
		{[]string{"/app/", "/_pageforge/", "app.js"}, "/app/_pageforge/app.js"},
		{[]string{"/app", "_pageforge", "app.js"}, "/app/_pageforge/app.js"},
		{[]string{"", "/x/"}, "/x/"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, URLJoin(tc.parts...))
		})
	}
}

func TestResolveDevelopment(t *testing.T) {
	files, err := Resolve(true, "/", DefaultFilenames(), nil)
	require.NoError(t, err)

	assert.Equal(t, Files{
		App:    "/_pageforge/pageforge.bundle.js",
		Vendor: "/_pageforge/vendor.bundle.js",
		CSS:    "/_pageforge/style.css",
	}, files)

	files, err = Resolve(true, "/blog/", Filenames{App: "main.js"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "/blog/_pageforge/main.js", files.App)
	assert.Empty(t, files.CSS)
}

func TestResolveProduction(t *testing.T) {
	m := NewManifest("/_pageforge/")
	m.Assets[KeyApp] = "app.1.js"
	m.Assets[KeyVendor] = "vendor.2.js"

	files, err := Resolve(false, "/", DefaultFilenames(), m)
	require.NoError(t, err)
	assert.Equal(t, Files{App: "/_pageforge/app.1.js", Vendor: "/_pageforge/vendor.2.js"}, files)

	_, err = Resolve(false, "/", DefaultFilenames(), nil)
	assert.True(t, pferrors.IsNotReady(err))
}

func TestManifestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dist", ManifestFile)
	m := NewManifest("https://cdn.example.com/")
	m.Assets[KeyCSS] = "app.abc.css"
	require.NoError(t, m.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/app.abc.css", loaded.URL(KeyCSS))
	assert.Empty(t, loaded.URL(KeyApp))
	assert.Equal(t, []string{KeyCSS}, loaded.Keys())
}

func TestManifestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.True(t, pferrors.HasErrorCode(err, pferrors.ErrCodeFileNotFound))

	bad := filepath.Join(t.TempDir(), ManifestFile)
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o644))
	_, err = Load(bad)
	assert.True(t, pferrors.HasErrorCode(err, pferrors.ErrCodeManifestFormat))
}

func TestFingerprintName(t *testing.T) {
	a := FingerprintName("app.js", []byte("console.log(1)"))
	assert.Regexp(t, regexp.MustCompile(`^app\.[0-9a-f]{8}\.js$`), a)
	assert.Equal(t, a, FingerprintName("app.js", []byte("console.log(1)")))
	assert.NotEqual(t, a, FingerprintName("app.js", []byte("console.log(2)")))
}

func TestFileBundler(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(src, "client"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "client", "app.js"), []byte("app()"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "client", "app.css"), []byte("body{}"), 0o644))

	out := filepath.Join(t.TempDir(), "dist")
	b := &FileBundler{
		SrcDir:  src,
		Sources: Sources{App: "client/app.js", CSS: "client/app.css"},
		OutDir:  out,
	}

	m, err := b.Bundle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, BuiltPrefix, m.PublicPath)
	assert.Equal(t, []string{KeyCSS, KeyApp}, m.Keys())

	data, err := os.ReadFile(filepath.Join(out, m.Assets[KeyApp]))
	require.NoError(t, err)
	assert.Equal(t, "app()", string(data))

	onDisk, err := Load(filepath.Join(out, ManifestFile))
	require.NoError(t, err)
	assert.Equal(t, m, onDisk)
}

func TestFileBundlerMissingSources(t *testing.T) {
	out := t.TempDir()
	b := &FileBundler{
		SrcDir:  t.TempDir(),
		Sources: Sources{App: "client/app.js", Vendor: "client/vendor.js"},
		OutDir:  out,
	}

	_, err := b.Bundle(context.Background())
	require.Error(t, err)
	assert.True(t, pferrors.IsBuildError(err))
	assert.Contains(t, err.Error(), "app.js source")
	assert.Contains(t, err.Error(), "vendor.js source")
	assert.NoFileExists(t, filepath.Join(out, ManifestFile))
}

func TestFileBundlerRequiresApp(t *testing.T) {
	b := &FileBundler{SrcDir: t.TempDir(), OutDir: t.TempDir()}
	_, err := b.Bundle(context.Background())
	assert.True(t, pferrors.IsConfigError(err))
}
