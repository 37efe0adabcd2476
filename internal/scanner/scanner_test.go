package scanner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pferrors "github.com/conneroisu/pageforge/internal/errors"
	"github.com/conneroisu/pageforge/internal/routes"
)

func writeFiles(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		p := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	}
}

func TestScan(t *testing.T) {
	src := t.TempDir()
	writeFiles(t, src,
		"pages/index.templ",
		"pages/users/_id.templ",
		"pages/users.templ",
		"pages/users/profile_test.templ",
		"pages/.drafts/secret.templ",
		"pages/.hidden.templ",
		"pages/readme.md",
		"layouts/default.templ",
		"layouts/error.templ",
		"layouts/partials/nav.templ",
		"static/logo.png",
	)

	res, err := New(src, Options{}).Scan()
	require.NoError(t, err)

	assert.Equal(t, []routes.PageFile{
		"pages/index.templ",
		"pages/users.templ",
		"pages/users/_id.templ",
	}, res.Pages)
	assert.Equal(t, map[string]string{"default": "layouts/default.templ"}, res.Layouts)
	assert.Equal(t, "layouts/error.templ", res.ErrorPage)

	_, err = routes.Compile(res.Pages)
	assert.NoError(t, err)
}

func TestScanWithoutLayouts(t *testing.T) {
	src := t.TempDir()
	writeFiles(t, src, "pages/index.templ")

	res, err := New(src, Options{}).Scan()
	require.NoError(t, err)
	assert.Empty(t, res.Layouts)
	assert.Empty(t, res.ErrorPage)
}

func TestScanCustomExtension(t *testing.T) {
	src := t.TempDir()
	writeFiles(t, src, "views/home.html", "views/home.templ")

	res, err := New(src, Options{PagesDir: "views", Extension: "html"}).Scan()
	require.NoError(t, err)
	assert.Equal(t, []routes.PageFile{"views/home.html"}, res.Pages)
}

func TestMissingPagesDir(t *testing.T) {
	t.Run("suggests the parent", func(t *testing.T) {
		parent := t.TempDir()
		writeFiles(t, parent, "pages/index.templ")
		src := filepath.Join(parent, "app")
		require.NoError(t, os.Mkdir(src, 0o755))

		_, err := New(src, Options{}).Scan()
		require.Error(t, err)
		assert.True(t, pferrors.IsConfigError(err))
		assert.Contains(t, err.Error(), "Did you mean to run `pageforge` in the parent (`../`) directory?")
	})

	t.Run("asks to create one", func(t *testing.T) {
		_, err := New(t.TempDir(), Options{}).Scan()
		require.Error(t, err)
		assert.True(t, pferrors.HasErrorCode(err, pferrors.ErrCodeNoPagesDir))
		assert.Contains(t, err.Error(), "Couldn't find a `pages` directory")
	})
}
