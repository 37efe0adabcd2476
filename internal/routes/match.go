package routes

import (
	"net/url"
	"strings"
)

// Match is the result of resolving a URL against a table.
type Match struct {
	// Chain holds the matched routes from the outermost parent to the leaf
	Chain []*Route

	// Params are the decoded dynamic segment values
	Params map[string]string

	// Pattern is the full URL pattern of the leaf
	Pattern string
}

// Leaf returns the innermost matched route.
func (m *Match) Leaf() *Route {
	if m == nil || len(m.Chain) == 0 {
		return nil
	}
	return m.Chain[len(m.Chain)-1]
}

type param struct {
	name  string
	value string
}

// Match resolves a request URL. Siblings are tried in table order and the
// first match wins. A parent matches when its own path matches a prefix of
// the URL and one of its children matches the remainder, or when nothing
// remains after its own path.
func (t *Table) Match(rawURL string) (*Match, bool) {
	if t.Empty() {
		return nil, false
	}

	segments := urlSegments(rawURL)
	chain, params, pattern, ok := matchScope(t.Routes, segments, nil, "")
	if !ok {
		return nil, false
	}

	m := &Match{
		Chain:   chain,
		Params:  make(map[string]string, len(params)),
		Pattern: pattern,
	}
	for _, p := range params {
		m.Params[p.name] = p.value
	}
	return m, true
}

func matchScope(scope []*Route, segments []string, params []param, base string) ([]*Route, []param, string, bool) {
	for _, r := range scope {
		pattern := JoinPattern(base, r.Path)
		var (
			chain []*Route
			bound []param
			found bool
		)

		consume(splitPattern(r.Path), segments, params, func(rest []string, ps []param) bool {
			if len(r.Children) > 0 {
				if c, cp, leafPattern, ok := matchScope(r.Children, rest, ps, pattern); ok {
					chain = append([]*Route{r}, c...)
					bound = cp
					pattern = leafPattern
					found = true
					return true
				}
			}
			if len(rest) == 0 {
				chain = []*Route{r}
				bound = ps
				found = true
				return true
			}
			return false
		})

		if found {
			return chain, bound, pattern, true
		}
	}
	return nil, nil, "", false
}

// consume walks a route pattern against URL segments and calls done with
// every way the pattern can be satisfied (optional segments present first,
// then absent) until done returns true.
func consume(pattern, segments []string, params []param, done func(rest []string, ps []param) bool) bool {
	if len(pattern) == 0 {
		return done(segments, params)
	}

	head := pattern[0]
	marker := strings.Index(head, ":")
	if marker < 0 {
		if len(segments) == 0 || !strings.EqualFold(head, segments[0]) {
			return false
		}
		return consume(pattern[1:], segments[1:], params, done)
	}

	prefix := head[:marker]
	name := head[marker+1:]
	optional := strings.HasSuffix(name, "?")
	name = strings.TrimSuffix(name, "?")

	if prefix != "" {
		// foo:bar? is one segment starting with foo; the rest is the param.
		if len(segments) == 0 || len(segments[0]) < len(prefix) || !strings.EqualFold(prefix, segments[0][:len(prefix)]) {
			return false
		}
		rest := segments[0][len(prefix):]
		if rest == "" {
			if !optional {
				return false
			}
			return consume(pattern[1:], segments[1:], params, done)
		}
		bound := append(append([]param{}, params...), param{name: name, value: unescape(rest)})
		return consume(pattern[1:], segments[1:], bound, done)
	}

	if len(segments) > 0 {
		bound := append(append([]param{}, params...), param{name: name, value: unescape(segments[0])})
		if consume(pattern[1:], segments[1:], bound, done) {
			return true
		}
	}
	if optional {
		return consume(pattern[1:], segments, params, done)
	}
	return false
}

func unescape(segment string) string {
	value, err := url.PathUnescape(segment)
	if err != nil {
		return segment
	}
	return value
}

func splitPattern(p string) []string {
	return splitNonEmpty(p)
}

func urlSegments(rawURL string) []string {
	if i := strings.IndexAny(rawURL, "?#"); i >= 0 {
		rawURL = rawURL[:i]
	}
	return splitNonEmpty(rawURL)
}

func splitNonEmpty(p string) []string {
	parts := strings.Split(p, "/")
	out := parts[:0]
	for _, part := range parts {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
