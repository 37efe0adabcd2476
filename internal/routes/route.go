// Package routes compiles a tree of page files into the hierarchical route
// table used by the request router and by the client-side navigation data.
//
// A page file path such as "pages/users/_id.templ" is tokenized into
// segments, inserted into a nested forest keyed by dash-joined route names,
// ordered so that static paths are tried before parameterized ones, and
// finally collapsed so that index pages take over their parent's path:
//
//	pages/index.templ        → { name: "index",    path: "/" }
//	pages/users.templ        → { path: "/users", children: [
//	pages/users/index.templ  →     { name: "users",    path: "" },
//	pages/users/_id.templ    →     { name: "users-id", path: ":id" } ] }
//
// The forest is always rebuilt in full; nothing here mutates a previously
// returned table.
package routes

// PageFile is a slash-separated path rooted at the pages directory, for
// example "pages/users/_id.templ".
type PageFile string

// Route is a compiled routing unit.
type Route struct {
	// Name is empty for parent routes, which are pure path containers
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Path is relative to the parent. A trailing '?' marks an optional
	// dynamic segment.
	Path string `json:"path" yaml:"path"`

	// Component is an opaque reference to the view implementing the route
	Component string `json:"component,omitempty" yaml:"component,omitempty"`

	// Fingerprint is a short stable hash of Component
	Fingerprint string `json:"-" yaml:"-"`

	Children []*Route `json:"children,omitempty" yaml:"children,omitempty"`
}

// IsParent reports whether the route only groups children.
func (r *Route) IsParent() bool {
	return len(r.Children) > 0
}
