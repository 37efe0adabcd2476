package scaffolding

// projectFiles returns the project templates keyed by slash-separated
// path. Templates are executed with a templateContext.
func projectFiles() map[string]string {
	return map[string]string{
		".pageforge.yml":        configTemplate,
		".gitignore":            gitignoreTemplate,
		"go.mod":                goModTemplate,
		"main.go":               mainTemplate,
		"pages/index.templ":     pageMarker("pages", "/", "views.Home"),
		"pages/about.templ":     pageMarker("pages", "/about", "views.About"),
		"pages/users/_id.templ": pageMarker("users", "/users/:id?", "views.User"),
		"layouts/default.templ": layoutMarker("views.Default"),
		"layouts/error.templ":   layoutMarker("views.Error"),
		"views/pages.templ":     pagesViewTemplate,
		"views/layouts.templ":   layoutsViewTemplate,
		"views/errors.go":       errorsHelperTemplate,
		"static/robots.txt":     robotsTemplate,
		"client/app.js":         clientScriptTemplate,
		"client/style.css":      clientStyleTemplate,
	}
}

// pageMarker is a page file whose view is registered from the views
// package. Dynamic segment files start with an underscore, which the Go
// toolchain ignores, so no page keeps its component next to its route.
func pageMarker(pkg, pattern, view string) string {
	return "package " + pkg + "\n\n// Route " + pattern + " is rendered by " + view + ".\n"
}

func layoutMarker(view string) string {
	return "package layouts\n\n// Rendered by " + view + ".\n"
}

const configTemplate = `# pageforge configuration for {{.Name}}.
router:
  base: /

pages:
  dir: pages
  extension: .templ

build:
  sources:
    app: client/app.js
    css: client/style.css

cache:
  enabled: true
  max_entries: 500
  max_age: 10m

server:
  host: localhost
  port: 3000

log:
  level: info
  format: text
`

const gitignoreTemplate = `.pageforge/
*_templ.go
.env
`

const goModTemplate = `module {{.Module}}

go 1.24

require (
	github.com/a-h/templ v0.3.906
	github.com/conneroisu/pageforge v0.1.0
)
`

const mainTemplate = `package main

import (
	"os"

	"github.com/a-h/templ"
	"github.com/conneroisu/pageforge/pkg/pageforge"

	"{{.Module}}/views"
)

//go:generate templ generate

func main() {
	pages := pageforge.Registry{
		"pages/index.templ":     pageforge.Static(views.Home()),
		"pages/about.templ":     pageforge.Static(views.About()),
		"pages/users/_id.templ": {
			Component: func(rc *pageforge.Context) (templ.Component, error) {
				id := rc.Params["id"]
				if id == "" {
					return views.Users(), nil
				}
				return views.User(id), nil
			},
			CacheKey: func(rc *pageforge.Context) string { return rc.Params["id"] },
		},
		"layouts/default.templ": pageforge.Static(views.Default("{{.Title}}")),
		"layouts/error.templ":   pageforge.Static(views.Error()),
	}

	if err := pageforge.Execute(pages); err != nil {
		os.Exit(1)
	}
}
`

const pagesViewTemplate = `package views

templ Home() {
	<h1>Welcome to {{.Title}}</h1>
	<p>Edit <code>views/pages.templ</code> and add files under <code>pages/</code> to create routes.</p>
}

templ About() {
	<h1>About</h1>
	<p>{{.Title}} is served by pageforge.</p>
}

templ Users() {
	<h1>Users</h1>
	<ul>
		<li><a href="/users/1">User 1</a></li>
		<li><a href="/users/2">User 2</a></li>
	</ul>
}

templ User(id string) {
	<h1>User { id }</h1>
	<p><a href="/users">All users</a></p>
}
`

const layoutsViewTemplate = `package views

templ Default(title string) {
	<header>
		<strong>{ title }</strong>
		<nav>
			<a href="/">Home</a>
			<a href="/about">About</a>
			<a href="/users">Users</a>
		</nav>
	</header>
	<main>
		{ children... }
	</main>
}

templ Error() {
	<h1>{ errorStatus(ctx) }</h1>
	<p>{ errorMessage(ctx) }</p>
	<p><a href="/">Back home</a></p>
}
`

const errorsHelperTemplate = `package views

import (
	"context"
	"strconv"

	"github.com/conneroisu/pageforge/pkg/pageforge"
)

func pageError(ctx context.Context) *pageforge.PageError {
	rc := pageforge.FromContext(ctx)
	if rc == nil || rc.Result == nil {
		return nil
	}
	return rc.Result.Error
}

func errorStatus(ctx context.Context) string {
	return strconv.Itoa(pageError(ctx).Status())
}

func errorMessage(ctx context.Context) string {
	if pe := pageError(ctx); pe != nil && pe.Message != "" {
		return pe.Message
	}
	return "Something went wrong"
}
`

const robotsTemplate = `User-agent: *
Allow: /
`

const clientScriptTemplate = `// Client application for {{.Name}}. The server renders pages into the
// mount point and leaves this script to take over navigation.
document.addEventListener("DOMContentLoaded", () => {
  const state = window.__PAGEFORGE__ || {};
  if (!state.serverRendered) {
    console.info("{{.Name}}: page left to the client");
  }
});
`

const clientStyleTemplate = `body {
  font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
  line-height: 1.6;
  color: #1f2937;
  margin: 0 auto;
  max-width: 60rem;
  padding: 0 1rem;
}

header {
  display: flex;
  justify-content: space-between;
  align-items: center;
  padding: 1rem 0;
}

nav a {
  margin-left: 1rem;
}
`
