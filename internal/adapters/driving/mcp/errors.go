// Package mcp provides an MCP (Model Context Protocol) server adapter for cinedex.
// It lets AI assistants search titles and people and manage the index.
package mcp

import "errors"

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")

// ErrIndexManagementUnavailable is returned by index tools when no index
// service was provided.
var ErrIndexManagementUnavailable = errors.New("mcp: index management is not available")
