// Package validation checks user-supplied paths, hosts and URLs before they
// reach the file system or the rendered page.
package validation

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// shellChars are rejected in paths and hosts.
const shellChars = ";&|$`<>"

// urlChars are rejected in public URLs, which end up in HTML attributes.
const urlChars = shellChars + "()\"'\\ \n\r"

// ValidateRelativePath validates a directory that must stay inside the
// project source directory.
func ValidateRelativePath(path string) error {
	if path == "" {
		return fmt.Errorf("path cannot be empty")
	}
	if i := strings.IndexAny(path, shellChars); i >= 0 {
		return fmt.Errorf("path contains dangerous character: %c", path[i])
	}

	clean := filepath.Clean(path)
	if filepath.IsAbs(clean) || strings.HasPrefix(filepath.ToSlash(clean), "/") {
		return fmt.Errorf("path must be relative: %s", path)
	}
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return fmt.Errorf("path traversal detected: %s", path)
	}
	return nil
}

// ValidateHost validates a listen host name or address. Empty means every
// interface.
func ValidateHost(host string) error {
	if i := strings.IndexAny(host, shellChars+"()\"'\\ /"); i >= 0 {
		return fmt.Errorf("host contains invalid character: %c", host[i])
	}
	return nil
}

// ValidatePublicPath validates the prefix client assets are served from. It
// is either an absolute path such as /_pageforge/ or an http(s) URL such as
// a CDN origin. Empty selects the default.
func ValidatePublicPath(raw string) error {
	if raw == "" {
		return nil
	}
	if i := strings.IndexAny(raw, urlChars); i >= 0 {
		return fmt.Errorf("public path contains invalid character: %q", raw[i])
	}
	if strings.HasPrefix(raw, "/") {
		if strings.HasPrefix(raw, "//") {
			return fmt.Errorf("protocol-relative public path is not supported: %s", raw)
		}
		return nil
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme: %s (only http/https allowed)", parsed.Scheme)
	}
	if parsed.Host == "" {
		return fmt.Errorf("URL must have a valid hostname")
	}
	return nil
}
