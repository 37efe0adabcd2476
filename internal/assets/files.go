package assets

import (
	"strings"

	pferrors "github.com/conneroisu/pageforge/internal/errors"
)

// BuiltPrefix is the URL path under which built and development client
// assets are served.
const BuiltPrefix = "/_pageforge/"

// Filenames are the development-time names of the client bundle files.
type Filenames struct {
	App    string `mapstructure:"app" json:"app"`
	Vendor string `mapstructure:"vendor" json:"vendor"`
	CSS    string `mapstructure:"css" json:"css"`
}

// DefaultFilenames returns the development file names used when the
// configuration does not override them.
func DefaultFilenames() Filenames {
	return Filenames{
		App:    "pageforge.bundle.js",
		Vendor: "vendor.bundle.js",
		CSS:    "style.css",
	}
}

// Files are the resolved URLs of the client bundle for one render. Empty
// fields are left out of the page.
type Files struct {
	App    string `json:"app"`
	Vendor string `json:"vendor"`
	CSS    string `json:"css"`
}

// Resolve computes the bundle URLs. Production reads them from the manifest;
// development serves the configured file names under base + BuiltPrefix.
func Resolve(dev bool, base string, names Filenames, m *Manifest) (Files, error) {
	if dev {
		return Files{
			App:    devURL(base, names.App),
			Vendor: devURL(base, names.Vendor),
			CSS:    devURL(base, names.CSS),
		}, nil
	}

	if m == nil {
		return Files{}, pferrors.NewNotReadyError("no asset manifest loaded")
	}
	return Files{
		App:    m.URL(KeyApp),
		Vendor: m.URL(KeyVendor),
		CSS:    m.URL(KeyCSS),
	}, nil
}

func devURL(base, name string) string {
	if name == "" {
		return ""
	}
	return URLJoin(base, BuiltPrefix, name)
}

// URLJoin joins URL path parts with exactly one slash between each pair.
// The result keeps a leading slash if the first part had one and a trailing
// slash if the last part had one.
func URLJoin(parts ...string) string {
	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		if b.Len() == 0 {
			b.WriteString(p)
			continue
		}
		cur := b.String()
		switch {
		case strings.HasSuffix(cur, "/") && strings.HasPrefix(p, "/"):
			b.WriteString(p[1:])
		case strings.HasSuffix(cur, "/") || strings.HasPrefix(p, "/"):
			b.WriteString(p)
		default:
			b.WriteString("/")
			b.WriteString(p)
		}
	}
	return b.String()
}
