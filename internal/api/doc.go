// Package api contains the HTTP handlers, request/response models, and
// error mapping for the taskboard REST API. Handlers depend on the store
// interfaces and services defined elsewhere and are wired to routes in
// cmd/server.
package api
