package routes

import (
	"strings"

	json "github.com/goccy/go-json"
)

// Table is a compiled route table.
type Table struct {
	Routes []*Route `json:"routes"`
}

// FlatRoute is a route with its full URL pattern, as listed by the CLI.
type FlatRoute struct {
	Name        string `json:"name,omitempty" yaml:"name,omitempty"`
	Pattern     string `json:"pattern" yaml:"pattern"`
	Component   string `json:"component" yaml:"component"`
	Fingerprint string `json:"fingerprint" yaml:"fingerprint"`
	Depth       int    `json:"depth" yaml:"depth"`
	Parent      bool   `json:"parent,omitempty" yaml:"parent,omitempty"`
}

// Empty reports whether the table has no routes.
func (t *Table) Empty() bool {
	return t == nil || len(t.Routes) == 0
}

// NavData encodes the forest as nested name/path/component/children objects
// for the client-side router. Absent fields are omitted.
func (t *Table) NavData() ([]byte, error) {
	routes := []*Route{}
	if t != nil && t.Routes != nil {
		routes = t.Routes
	}
	return json.Marshal(routes)
}

// Walk visits every route depth-first, parents before children. The full
// URL pattern and depth are passed alongside each route. Returning false
// from fn skips the route's children.
func (t *Table) Walk(fn func(r *Route, pattern string, depth int) bool) {
	if t == nil {
		return
	}
	walk(t.Routes, "", 0, fn)
}

func walk(scope []*Route, base string, depth int, fn func(*Route, string, int) bool) {
	for _, r := range scope {
		pattern := JoinPattern(base, r.Path)
		if fn(r, pattern, depth) && len(r.Children) > 0 {
			walk(r.Children, pattern, depth+1, fn)
		}
	}
}

// Flatten lists every route with its full pattern in table order.
func (t *Table) Flatten() []FlatRoute {
	var flat []FlatRoute
	t.Walk(func(r *Route, pattern string, depth int) bool {
		flat = append(flat, FlatRoute{
			Name:        r.Name,
			Pattern:     pattern,
			Component:   r.Component,
			Fingerprint: r.Fingerprint,
			Depth:       depth,
			Parent:      r.IsParent(),
		})
		return true
	})
	return flat
}

// JoinPattern appends a child-relative path to its parent's pattern.
func JoinPattern(parent, child string) string {
	switch {
	case parent == "":
		if child == "" {
			return "/"
		}
		return child
	case child == "":
		return parent
	case strings.HasSuffix(parent, "/"):
		return parent + strings.TrimPrefix(child, "/")
	default:
		return parent + "/" + strings.TrimPrefix(child, "/")
	}
}
