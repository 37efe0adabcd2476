package pageforge

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/pageforge/internal/renderer"
	"github.com/conneroisu/pageforge/internal/routes"
)

func TestRegistryDrivesBackend(t *testing.T) {
	table := routes.MustCompile([]routes.PageFile{"pages/index.templ", "pages/users/_id.templ"})

	pages := Registry{
		"pages/index.templ": Static(templ.Raw("<h1>home</h1>")),
		"pages/users/_id.templ": {
			Component: func(rc *Context) (templ.Component, error) {
				if rc.Params["id"] == "0" {
					return nil, NotFound()
				}
				return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
					_, err := io.WriteString(w, "user "+FromContext(ctx).Params["id"])
					return err
				}), nil
			},
		},
	}
	backend := renderer.NewTemplBackend(table, pages)

	rc := renderer.NewContext(nil)
	rc.URL = "/users/7"
	html, err := backend.RenderToString(context.Background(), rc)
	require.NoError(t, err)
	assert.Contains(t, html, "user 7")
	assert.True(t, rc.Result.ServerRendered)

	rc = renderer.NewContext(nil)
	rc.URL = "/users/0"
	_, err = backend.RenderToString(context.Background(), rc)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, rc.Result.Error.Status())
}

func TestRedirect(t *testing.T) {
	rc := renderer.NewContext(nil)
	Redirect(rc, "/login")
	assert.True(t, rc.Result.Redirected)
	assert.Equal(t, "/login", rc.Result.Location)
}
