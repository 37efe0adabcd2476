package routes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compile(t *testing.T, files ...string) []*Route {
	t.Helper()
	pageFiles := make([]PageFile, len(files))
	for i, f := range files {
		pageFiles[i] = PageFile(f)
	}
	table, err := Compile(pageFiles)
	require.NoError(t, err)
	return table.Routes
}

// shape strips component data so expectations stay readable.
func shape(routes []*Route) []*Route {
	out := make([]*Route, len(routes))
	for i, r := range routes {
		out[i] = &Route{Name: r.Name, Path: r.Path}
		if r.Children != nil {
			out[i].Children = shape(r.Children)
		}
	}
	return out
}

func TestSegmentKindString(t *testing.T) {
	testCases := []struct {
		kind     SegmentKind
		expected string
	}{
		{SegmentStatic, "static"},
		{SegmentDynamic, "dynamic"},
		{SegmentIndex, "index"},
		{SegmentKind(42), "unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.kind.String())
		})
	}
}

func TestTokenize(t *testing.T) {
	t.Run("static, dynamic and index", func(t *testing.T) {
		segs := Tokenize("users/_id/index")
		require.Len(t, segs, 3)

		assert.Equal(t, Segment{Raw: "users", Name: "users", PathText: "users", Kind: SegmentStatic}, segs[0])
		assert.Equal(t, Segment{Raw: "_id", Name: "id", PathText: ":id", Kind: SegmentDynamic}, segs[1])
		assert.Equal(t, Segment{Raw: "index", Name: "index", PathText: "index", Kind: SegmentIndex}, segs[2])
	})

	t.Run("only the first marker is interpreted", func(t *testing.T) {
		segs := Tokenize("_first_name")
		require.Len(t, segs, 1)
		assert.Equal(t, SegmentDynamic, segs[0].Kind)
		assert.Equal(t, "first_name", segs[0].Name)
		assert.Equal(t, ":first_name", segs[0].PathText)
	})

	t.Run("marker in the middle", func(t *testing.T) {
		segs := Tokenize("post_slug")
		require.Len(t, segs, 1)
		assert.Equal(t, SegmentDynamic, segs[0].Kind)
		assert.Equal(t, "postslug", segs[0].Name)
		assert.Equal(t, "post:slug", segs[0].PathText)
	})

	t.Run("two dynamic segments", func(t *testing.T) {
		segs := Tokenize("/_a/_b")
		require.Len(t, segs, 2)
		assert.Equal(t, "a", segs[0].Name)
		assert.Equal(t, "b", segs[1].Name)
		assert.Equal(t, SegmentDynamic, segs[0].Kind)
		assert.Equal(t, SegmentDynamic, segs[1].Kind)
	})

	t.Run("repeated separators collapse", func(t *testing.T) {
		segs := Tokenize("a//b///c")
		require.Len(t, segs, 3)
		assert.Equal(t, "c", segs[2].Raw)
	})

	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, Tokenize(""))
		assert.Empty(t, Tokenize("/"))
	})
}

func TestCompileRootIndex(t *testing.T) {
	routes := compile(t, "pages/index.templ")

	require.Len(t, routes, 1)
	assert.Equal(t, "index", routes[0].Name)
	assert.Equal(t, "/", routes[0].Path)
	assert.Equal(t, "pages/index.templ", routes[0].Component)
	assert.Empty(t, routes[0].Children)
}

func TestCompileEmpty(t *testing.T) {
	table, err := Compile(nil)
	require.NoError(t, err)
	assert.True(t, table.Empty())
	assert.NotNil(t, table.Routes)

	data, err := table.NavData()
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}

func TestCompileIndexStripsOptionalMarker(t *testing.T) {
	t.Run("with parent page", func(t *testing.T) {
		routes := compile(t,
			"pages/users.templ",
			"pages/users/index.templ",
			"pages/users/_id.templ",
		)

		expected := []*Route{{
			Path: "/users",
			Children: []*Route{
				{Name: "users", Path: ""},
				{Name: "users-id", Path: ":id"},
			},
		}}
		assert.Equal(t, expected, shape(routes))
	})

	t.Run("without parent page", func(t *testing.T) {
		routes := compile(t,
			"pages/users/index.templ",
			"pages/users/_id.templ",
		)

		expected := []*Route{
			{Name: "users", Path: "/users"},
			{Name: "users-id", Path: "/users/:id"},
		}
		assert.Equal(t, expected, shape(routes))
	})
}

func TestCompileOptionalMarkerRetained(t *testing.T) {
	t.Run("root level", func(t *testing.T) {
		routes := compile(t, "pages/users/_id.templ")
		assert.Equal(t, []*Route{{Name: "users-id", Path: "/users/:id?"}}, shape(routes))
	})

	t.Run("child level", func(t *testing.T) {
		routes := compile(t, "pages/users.templ", "pages/users/_id.templ")
		expected := []*Route{{
			Path:     "/users",
			Children: []*Route{{Name: "users-id", Path: ":id?"}},
		}}
		assert.Equal(t, expected, shape(routes))
	})
}

func TestCompileSiblingOrdering(t *testing.T) {
	routes := compile(t,
		"pages/_slug.templ",
		"pages/contact/us.templ",
		"pages/about.templ",
		"pages/index.templ",
	)

	expected := []*Route{
		{Name: "index", Path: "/"},
		{Name: "about", Path: "/about"},
		{Name: "contact-us", Path: "/contact/us"},
		{Name: "slug", Path: "/:slug"},
	}
	assert.Equal(t, expected, shape(routes))
}

func TestCompileDoubleMarker(t *testing.T) {
	t.Run("single file", func(t *testing.T) {
		routes := compile(t, "pages/_a/_b.templ")
		assert.Equal(t, []*Route{{Name: "a-b", Path: "/:a?/:b?"}}, shape(routes))
	})

	t.Run("nested", func(t *testing.T) {
		routes := compile(t, "pages/_a.templ", "pages/_a/_b.templ", "pages/_a/new.templ")
		expected := []*Route{{
			Path: "/:a?",
			Children: []*Route{
				{Name: "a-new", Path: "new"},
				{Name: "a-b", Path: ":b?"},
			},
		}}
		assert.Equal(t, expected, shape(routes))
	})
}

func TestCompileScanOrderDependentStripping(t *testing.T) {
	t.Run("param before index keeps marker", func(t *testing.T) {
		routes := compile(t,
			"pages/users.templ",
			"pages/users/_a.templ",
			"pages/users/_id/index.templ",
		)
		require.Len(t, routes, 1)
		assert.Equal(t, []*Route{
			{Name: "users-a", Path: ":a?"},
			{Name: "users-id", Path: ":id"},
		}, shape(routes[0].Children))
	})

	t.Run("param after index loses marker", func(t *testing.T) {
		routes := compile(t,
			"pages/users.templ",
			"pages/users/_zzzz.templ",
			"pages/users/_id/index.templ",
		)
		require.Len(t, routes, 1)
		assert.Equal(t, []*Route{
			{Name: "users-id", Path: ":id"},
			{Name: "users-zzzz", Path: ":zzzz"},
		}, shape(routes[0].Children))
	})
}

func TestCompileDeterministic(t *testing.T) {
	files := []PageFile{
		"pages/users/_id.templ",
		"pages/index.templ",
		"pages/users.templ",
		"pages/users/index.templ",
		"pages/blog/_slug/comments.templ",
		"pages/about.templ",
	}
	reversed := make([]PageFile, len(files))
	for i, f := range files {
		reversed[len(files)-1-i] = f
	}

	first, err := Compile(files)
	require.NoError(t, err)
	second, err := Compile(reversed)
	require.NoError(t, err)

	a, err := first.NavData()
	require.NoError(t, err)
	b, err := second.NavData()
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestCompileDoesNotShareState(t *testing.T) {
	files := []PageFile{"pages/users.templ", "pages/users/_id.templ"}
	first := MustCompile(files)
	first.Routes[0].Children[0].Path = "mutated"

	second := MustCompile(files)
	assert.Equal(t, ":id?", second.Routes[0].Children[0].Path)
}

func TestCompileRejectsFilesOutsidePages(t *testing.T) {
	_, err := Compile([]PageFile{"layouts/default.templ"})
	assert.Error(t, err)

	_, err = Compile([]PageFile{"pages/readme.md"})
	assert.Error(t, err)
}

func TestCompileOptions(t *testing.T) {
	table, err := Compile(
		[]PageFile{"views/home/index.html"},
		WithPagesDir("views"),
		WithExtension("html"),
		WithComponentRoot("/srv/app"),
	)
	require.NoError(t, err)
	require.Len(t, table.Routes, 1)
	assert.Equal(t, "home", table.Routes[0].Name)
	assert.Equal(t, "/home", table.Routes[0].Path)
	assert.Equal(t, "/srv/app/views/home/index.html", table.Routes[0].Component)
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint("pages/index.templ")
	assert.Equal(t, a, Fingerprint("pages/index.templ"))
	assert.NotEqual(t, a, Fingerprint("pages/about.templ"))
	assert.Len(t, a, 9)
	assert.Equal(t, byte('_'), a[0])

	routes := compile(t, "pages/index.templ")
	assert.Equal(t, a, routes[0].Fingerprint)
}

func TestCollapseIsPure(t *testing.T) {
	cfg := &compileConfig{pagesDir: DefaultPagesDir, extension: DefaultExtension}
	forest := buildTree([]PageFile{
		"pages/users.templ",
		"pages/users/index.templ",
		"pages/users/_id.templ",
	}, cfg)

	collapsed := Collapse(forest)

	assert.Equal(t, "users", forest[0].Name)
	assert.Equal(t, "users-index", forest[0].Children[0].Name)
	assert.Equal(t, "/:id?", forest[0].Children[1].Path)

	assert.Equal(t, "", collapsed[0].Name)
	assert.Equal(t, "users", collapsed[0].Children[0].Name)
	assert.Equal(t, ":id", collapsed[0].Children[1].Path)
}

func TestNavData(t *testing.T) {
	table := MustCompile([]PageFile{
		"pages/index.templ",
		"pages/users.templ",
		"pages/users/_id.templ",
	})

	data, err := table.NavData()
	require.NoError(t, err)

	assert.JSONEq(t, `[
		{"name":"index","path":"/","component":"pages/index.templ"},
		{"path":"/users","component":"pages/users.templ","children":[
			{"name":"users-id","path":":id?","component":"pages/users/_id.templ"}
		]}
	]`, string(data))
}

func TestFlatten(t *testing.T) {
	table := MustCompile([]PageFile{
		"pages/index.templ",
		"pages/users.templ",
		"pages/users/index.templ",
		"pages/users/_id.templ",
	})

	flat := table.Flatten()
	require.Len(t, flat, 4)

	assert.Equal(t, "/", flat[0].Pattern)
	assert.Equal(t, "/users", flat[1].Pattern)
	assert.True(t, flat[1].Parent)
	assert.Equal(t, "/users", flat[2].Pattern)
	assert.Equal(t, 1, flat[2].Depth)
	assert.Equal(t, "/users/:id", flat[3].Pattern)
}

func TestJoinPattern(t *testing.T) {
	testCases := []struct {
		parent, child, expected string
	}{
		{"", "/", "/"},
		{"", "", "/"},
		{"", "/users", "/users"},
		{"/users", "", "/users"},
		{"/users", ":id", "/users/:id"},
		{"/", "about", "/about"},
		{"/users/:id", "edit", "/users/:id/edit"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, JoinPattern(tc.parent, tc.child))
		})
	}
}

func TestMatch(t *testing.T) {
	table := MustCompile([]PageFile{
		"pages/index.templ",
		"pages/users.templ",
		"pages/users/index.templ",
		"pages/users/_id.templ",
	})

	t.Run("nested dynamic", func(t *testing.T) {
		m, ok := table.Match("/users/42")
		require.True(t, ok)
		require.Len(t, m.Chain, 2)
		assert.Equal(t, "/users", m.Chain[0].Path)
		assert.Equal(t, "users-id", m.Leaf().Name)
		assert.Equal(t, map[string]string{"id": "42"}, m.Params)
		assert.Equal(t, "/users/:id", m.Pattern)
	})

	t.Run("nested index", func(t *testing.T) {
		m, ok := table.Match("/users")
		require.True(t, ok)
		require.Len(t, m.Chain, 2)
		assert.Equal(t, "users", m.Leaf().Name)
		assert.Empty(t, m.Params)
	})

	t.Run("root", func(t *testing.T) {
		m, ok := table.Match("/")
		require.True(t, ok)
		assert.Equal(t, "index", m.Leaf().Name)
	})

	t.Run("static segments ignore case", func(t *testing.T) {
		m, ok := table.Match("/USERS/5")
		require.True(t, ok)
		assert.Equal(t, "5", m.Params["id"])
	})

	t.Run("escaped values are decoded", func(t *testing.T) {
		m, ok := table.Match("/users/a%20b")
		require.True(t, ok)
		assert.Equal(t, "a b", m.Params["id"])
	})

	t.Run("no match", func(t *testing.T) {
		m, ok := table.Match("/nope")
		assert.False(t, ok)
		assert.Nil(t, m)
		assert.Nil(t, m.Leaf())
	})
}

func TestMatchOptionalParam(t *testing.T) {
	table := MustCompile([]PageFile{"pages/users/_id.templ"})

	m, ok := table.Match("/users")
	require.True(t, ok)
	assert.Equal(t, "users-id", m.Leaf().Name)
	assert.Empty(t, m.Params)

	m, ok = table.Match("/users/7?x=1#top")
	require.True(t, ok)
	assert.Equal(t, "7", m.Params["id"])

	_, ok = table.Match("/users/7/extra")
	assert.False(t, ok)
}

func TestMatchMidSegmentParam(t *testing.T) {
	table := MustCompile([]PageFile{"pages/foo_bar.templ"})
	require.Equal(t, "/foo:bar?", table.Routes[0].Path)

	tests := []struct {
		url    string
		ok     bool
		params map[string]string
	}{
		{"/foo", true, map[string]string{}},
		{"/fooxyz", true, map[string]string{"bar": "xyz"}},
		{"/FOOxyz", true, map[string]string{"bar": "xyz"}},
		{"/foo%20x", true, map[string]string{"bar": " x"}},
		{"/fo", false, nil},
		{"/barxyz", false, nil},
		{"/fooxyz/more", false, nil},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			m, ok := table.Match(tt.url)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, "pages/foo_bar.templ", m.Leaf().Component)
				assert.Equal(t, tt.params, m.Params)
			}
		})
	}

	required := &Table{Routes: []*Route{{Name: "foobar", Path: "/foo:bar", Component: "pages/foo_bar.templ"}}}
	_, ok := required.Match("/foo")
	assert.False(t, ok)
	m, ok := required.Match("/foo1")
	require.True(t, ok)
	assert.Equal(t, "1", m.Params["bar"])
}

func TestMatchEmptyTable(t *testing.T) {
	_, ok := MustCompile(nil).Match("/")
	assert.False(t, ok)
}
