package scaffolding

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pferrors "github.com/conneroisu/pageforge/internal/errors"
	"github.com/conneroisu/pageforge/internal/routes"
	"github.com/conneroisu/pageforge/internal/scanner"
	"github.com/conneroisu/pageforge/internal/testutils"
)

func TestGenerateWritesProject(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "blog")

	written, err := New().Generate(Options{Dir: dir, Module: "example.com/blog"})
	require.NoError(t, err)
	assert.Equal(t, New().Files(), written)

	mainGo, err := os.ReadFile(filepath.Join(dir, "main.go"))
	require.NoError(t, err)
	assert.Contains(t, string(mainGo), `"example.com/blog/views"`)
	assert.Contains(t, string(mainGo), `views.Default("Blog")`)

	goMod, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	require.NoError(t, err)
	assert.Contains(t, string(goMod), "module example.com/blog")

	testutils.AssertFilePermissions(t, filepath.Join(dir, "pages", "index.templ"), 0o644)
}

func TestGeneratedProjectCompiles(t *testing.T) {
	dir := t.TempDir()
	_, err := New().Generate(Options{Dir: dir, Name: "site"})
	require.NoError(t, err)

	result, err := scanner.New(dir, scanner.Options{}).Scan()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"default": "layouts/default.templ"}, result.Layouts)
	assert.Equal(t, "layouts/error.templ", result.ErrorPage)

	table, err := routes.Compile(result.Pages)
	require.NoError(t, err)

	patterns := []string{}
	for _, r := range table.Flatten() {
		patterns = append(patterns, r.Pattern)
	}
	assert.ElementsMatch(t, []string{"/", "/about", "/users/:id?"}, patterns)

	match, ok := table.Match("/users/7")
	require.True(t, ok)
	assert.Equal(t, "pages/users/_id.templ", match.Leaf().Component)
	assert.Equal(t, "7", match.Params["id"])
}

func TestGenerateRefusesToOverwrite(t *testing.T) {
	dir := testutils.CreateTempProject(t, map[string]string{"main.go": "package main\n"})

	_, err := New().Generate(Options{Dir: dir, Name: "site"})
	require.Error(t, err)
	assert.True(t, pferrors.HasErrorCode(err, pferrors.ErrCodeFileExists))

	// nothing else was written
	_, statErr := os.Stat(filepath.Join(dir, "pages", "index.templ"))
	assert.True(t, os.IsNotExist(statErr))

	content, err := os.ReadFile(filepath.Join(dir, "main.go"))
	require.NoError(t, err)
	assert.Equal(t, "package main\n", string(content))
}

func TestGenerateForce(t *testing.T) {
	dir := testutils.CreateTempProject(t, map[string]string{"main.go": "package main\n"})

	_, err := New().Generate(Options{Dir: dir, Name: "site", Force: true})
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(dir, "main.go"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "pageforge.Execute")
}

func TestGenerateDefaultsNameFromDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "Docs")

	_, err := New().Generate(Options{Dir: dir})
	require.NoError(t, err)

	cfg, err := os.ReadFile(filepath.Join(dir, ".pageforge.yml"))
	require.NoError(t, err)
	assert.Contains(t, string(cfg), "configuration for docs.")
}

func TestValidateProjectName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "site", false},
		{"dashes and digits", "my-site-2", false},
		{"underscore", "my_site", false},
		{"empty", "", true},
		{"leading digit", "2site", true},
		{"uppercase", "Site", true},
		{"path", "../site", true},
		{"space", "my site", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateProjectName(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, pferrors.IsConfigError(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
