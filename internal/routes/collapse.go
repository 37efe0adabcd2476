package routes

import (
	"slices"
	"strings"
)

const indexSuffix = "-" + IndexName

// Collapse resolves index routes in a freshly built forest and returns a new
// forest; the input is left untouched.
//
// Within each sibling scope, scanned left to right:
//   - child paths lose their leading separator
//   - once an index route has been seen, later siblings lose their optional
//     marker (only siblings after it; earlier ones keep theirs)
//   - a route whose name minus its last segment plus "-index" names an
//     index route seen earlier in the scope loses its optional marker
//   - the "-index" suffix is dropped from names
//   - parents lose their name and their children are collapsed in turn
func Collapse(forest []*Route) []*Route {
	return collapseScope(forest, false)
}

func collapseScope(scope []*Route, isChild bool) []*Route {
	out := make([]*Route, 0, len(scope))
	hasIndex := false
	var indexNames []string

	for _, in := range scope {
		r := &Route{
			Name:        in.Name,
			Path:        in.Path,
			Component:   in.Component,
			Fingerprint: in.Fingerprint,
		}

		if isChild {
			r.Path = strings.Replace(r.Path, "/", "", 1)
		}

		if (isChild && strings.HasSuffix(r.Name, indexSuffix)) || (!isChild && r.Name == IndexName) {
			hasIndex = true
		}
		if hasIndex {
			r.Path = stripOptional(r.Path)
		}

		if strings.HasSuffix(r.Name, indexSuffix) {
			indexNames = append(indexNames, r.Name)
		} else if slices.Contains(indexNames, parentName(r.Name)+indexSuffix) {
			r.Path = stripOptional(r.Path)
		}

		r.Name = strings.TrimSuffix(r.Name, indexSuffix)

		if len(in.Children) > 0 {
			r.Name = ""
			r.Children = collapseScope(in.Children, true)
		}

		out = append(out, r)
	}

	return out
}

// stripOptional removes the first optional marker.
func stripOptional(path string) string {
	return strings.Replace(path, "?", "", 1)
}

// parentName drops the last dash-separated part of a route name.
func parentName(name string) string {
	if i := strings.LastIndex(name, "-"); i >= 0 {
		return name[:i]
	}
	return ""
}
