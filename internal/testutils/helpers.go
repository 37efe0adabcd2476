// Package testutils holds helpers shared by package tests.
package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/pageforge/internal/config"
)

// CreateTempProject creates a project in a temporary directory. files maps
// slash-separated paths to their content.
func CreateTempProject(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		WriteFile(t, filepath.Join(root, filepath.FromSlash(name)), content)
	}
	return root
}

// WriteFile writes content to path, creating parent directories.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// CreateTestConfig loads a validated configuration for the project in
// projectDir. overrides are set on top of the defaults by configuration key.
func CreateTestConfig(t *testing.T, projectDir string, overrides map[string]any) *config.Config {
	t.Helper()
	v := viper.New()
	v.Set("src_dir", projectDir)
	for key, value := range overrides {
		v.Set(key, value)
	}
	cfg, err := config.LoadFrom(v)
	require.NoError(t, err)
	return cfg
}

// AssertFilePermissions checks the permission bits of path.
func AssertFilePermissions(t *testing.T, path string, expectedMode os.FileMode) {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)

	actualMode := info.Mode() & os.FileMode(0o777)
	require.Equal(t, expectedMode, actualMode,
		"File %s has incorrect permissions: got %o, want %o", path, actualMode, expectedMode)
}
