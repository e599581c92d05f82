// Package httpapi exposes the search and index services over HTTP.
//
// Routes:
//
//	GET  /healthz           liveness and readiness
//	GET  /search            title search (alias of /titles/search)
//	GET  /titles/search     title search
//	GET  /names/search      person search
//	GET  /titles/{id}       title lookup
//	GET  /names/{id}        person lookup
//	POST /admin/rebuild     start (or join) an index rebuild
//	GET  /admin/status      served generation and recent builds
//
// Responses are JSON. Errors carry {"message": "..."} and map domain errors to
// status codes: invalid queries to 400, unknown identifiers to 404 and a
// missing index to 503.
package httpapi
