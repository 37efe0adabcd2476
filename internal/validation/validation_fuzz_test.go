package validation

import (
	"path/filepath"
	"strings"
	"testing"
)

func FuzzValidateRelativePath(f *testing.F) {
	f.Add("pages")
	f.Add("../pages")
	f.Add("pages/../../etc")
	f.Add("/etc/passwd")
	f.Add("pages;rm -rf /")
	f.Add("")

	f.Fuzz(func(t *testing.T, path string) {
		if len(path) > 4096 {
			t.Skip("path too long")
		}
		if ValidateRelativePath(path) != nil {
			return
		}

		clean := filepath.Clean(path)
		if filepath.IsAbs(clean) {
			t.Errorf("accepted absolute path %q", path)
		}
		if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
			t.Errorf("accepted escaping path %q", path)
		}
		if strings.ContainsAny(path, shellChars) {
			t.Errorf("accepted dangerous path %q", path)
		}
	})
}

func FuzzValidatePublicPath(f *testing.F) {
	f.Add("/_pageforge/")
	f.Add("https://cdn.example.com/")
	f.Add("javascript:alert('xss')")
	f.Add("data:text/html,<script>alert('xss')</script>")
	f.Add("//evil.com/")

	f.Fuzz(func(t *testing.T, raw string) {
		if ValidatePublicPath(raw) != nil || raw == "" {
			return
		}
		if strings.ContainsAny(raw, urlChars) {
			t.Errorf("accepted public path with dangerous character: %q", raw)
		}
		lower := strings.ToLower(raw)
		if !strings.HasPrefix(raw, "/") && !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
			t.Errorf("accepted public path with unsafe scheme: %q", raw)
		}
	})
}
