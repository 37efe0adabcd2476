package assets

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zeebo/xxh3"

	pferrors "github.com/conneroisu/pageforge/internal/errors"
)

// Bundler produces the production client bundle and its manifest.
type Bundler interface {
	Bundle(ctx context.Context) (*Manifest, error)
}

// Sources are the client source files, relative to the project source
// directory. Vendor and CSS are optional.
type Sources struct {
	App    string `mapstructure:"app" json:"app"`
	Vendor string `mapstructure:"vendor" json:"vendor"`
	CSS    string `mapstructure:"css" json:"css"`
}

func (s Sources) entries() []struct{ key, path string } {
	return []struct{ key, path string }{
		{KeyApp, s.App},
		{KeyVendor, s.Vendor},
		{KeyCSS, s.CSS},
	}
}

// FileBundler copies each source into OutDir under a content-fingerprinted
// name and writes the manifest beside them.
type FileBundler struct {
	SrcDir     string
	Sources    Sources
	OutDir     string
	PublicPath string
}

// Bundle implements Bundler. Every missing source is reported; the manifest
// is only written when all configured sources were emitted.
func (b *FileBundler) Bundle(ctx context.Context) (*Manifest, error) {
	if b.Sources.App == "" {
		return nil, pferrors.NewConfigError(pferrors.ErrCodeConfigInvalid, "no client app source configured").
			WithSuggestion("set build.sources.app in .pageforge.yml")
	}
	if err := os.MkdirAll(b.OutDir, 0o755); err != nil {
		return nil, pferrors.NewIOError(pferrors.ErrCodeInternalError, "creating dist directory", err).WithFile(b.OutDir)
	}

	publicPath := b.PublicPath
	if publicPath == "" {
		publicPath = BuiltPrefix
	}
	manifest := NewManifest(publicPath)
	collector := pferrors.NewErrorCollector()

	for _, e := range b.Sources.entries() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if e.path == "" {
			continue
		}

		src := filepath.Join(b.SrcDir, e.path)
		data, err := os.ReadFile(src)
		if err != nil {
			collector.Add(pferrors.BuildError{
				File:     src,
				Message:  fmt.Sprintf("cannot read %s source: %v", e.key, err),
				Severity: pferrors.ErrorSeverityError,
			})
			continue
		}

		name := FingerprintName(e.key, data)
		if err := os.WriteFile(filepath.Join(b.OutDir, name), data, 0o644); err != nil {
			collector.AddError(fmt.Errorf("writing %s: %w", name, err))
			continue
		}
		manifest.Assets[e.key] = name
	}

	if err := collector.Err(); err != nil {
		return nil, pferrors.NewBuildError(pferrors.ErrCodeAssetMissing, "bundling client assets", err)
	}
	if err := manifest.Save(filepath.Join(b.OutDir, ManifestFile)); err != nil {
		return nil, err
	}
	return manifest, nil
}

// FingerprintName inserts the first eight hex digits of the content's xxh3
// hash before the extension of a logical name: app.js becomes app.<hash>.js.
func FingerprintName(logical string, content []byte) string {
	ext := filepath.Ext(logical)
	stem := strings.TrimSuffix(logical, ext)
	return fmt.Sprintf("%s.%08x%s", stem, uint32(xxh3.Hash(content)>>32), ext)
}
