package routes

import (
	"fmt"
	"sort"

	"github.com/zeebo/xxh3"
)

// buildTree inserts every page file into a nested forest. Files are sorted
// first so the result does not depend on enumeration order.
func buildTree(files []PageFile, cfg *compileConfig) []*Route {
	sorted := make([]PageFile, len(files))
	copy(sorted, files)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	forest := make([]*Route, 0, len(sorted))
	for _, file := range sorted {
		segments := Tokenize(cfg.relativePath(file))
		if len(segments) == 0 {
			continue
		}

		route := &Route{Component: cfg.componentRef(file)}
		scope := &forest

		for i, seg := range segments {
			if route.Name == "" {
				route.Name = seg.Name
			} else {
				route.Name += "-" + seg.Name
			}

			// A sibling with the same accumulated name turns into a parent
			if existing := findByName(*scope, route.Name); existing != nil {
				scope = &existing.Children
				route.Path = ""
				continue
			}

			if seg.Kind == SegmentIndex && i == len(segments)-1 {
				if i == 0 {
					route.Path += "/"
				}
				continue
			}

			route.Path += "/" + seg.PathText
			if seg.Kind == SegmentDynamic {
				route.Path += "?"
			}
		}

		route.Fingerprint = Fingerprint(route.Component)
		*scope = append(*scope, route)
		sortScope(*scope)
	}

	return forest
}

func findByName(scope []*Route, name string) *Route {
	for _, r := range scope {
		if r.Name == name {
			return r
		}
	}
	return nil
}

// sortScope orders siblings by matching priority: static paths first, then
// paths with a dynamic segment at position 0 or 1; shorter before longer
// within each group. The sort is stable.
func sortScope(scope []*Route) {
	sort.SliceStable(scope, func(i, j int) bool {
		a, b := isDynamicPath(scope[i].Path), isDynamicPath(scope[j].Path)
		if a != b {
			return !a
		}
		return len(scope[i].Path) < len(scope[j].Path)
	})
}

func isDynamicPath(path string) bool {
	return (len(path) > 0 && path[0] == ':') || (len(path) > 1 && path[1] == ':')
}

// Fingerprint returns a short stable identifier derived from a component
// reference.
func Fingerprint(component string) string {
	return fmt.Sprintf("_%08x", uint32(xxh3.HashString(component)))
}
