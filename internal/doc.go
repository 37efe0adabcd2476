// Package internal contains the implementation packages of pageforge.
//
// # Package Organization
//
//   - routes: page file tokenizing, the route tree compiler and URL matching
//   - scanner: discovery of page and layout files under a source directory
//   - build: the build step writing the route table and server bundle
//   - assets: client asset filenames, the build manifest and the file bundler
//   - renderer: the render context, the templ backend and the page document
//   - project: the compiled project and the holder swapped on rebuilds
//   - server: the request pipeline, static serving, hot reload and the HTTP server
//   - watcher: source monitoring with debouncing for development rebuilds
//   - viewcache: the rendered page cache
//   - monitoring: health checks and Prometheus metrics
//   - config: configuration loading and validation
//   - validation: path, host and public path checks shared by config
//   - errors: structured errors and build error overlays
//   - logging: structured logging
//   - scaffolding: new project generation
//   - testutils: helpers shared by package tests
//   - version: build information
//
// # Request Flow
//
// A build scans the pages directory, compiles the route tree and writes
// it to the build directory. The start command loads that build into a
// project, the dev command compiles it in memory and recompiles on every
// source change. Each request then passes through the pipeline states in
// order: readiness, development middleware, base path stripping, static
// files, built assets, the hot update filter and finally the render.
package internal
