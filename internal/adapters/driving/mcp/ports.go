package mcp

import (
	"github.com/custodia-labs/cinedex/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Search answers title and person queries.
	Search driving.SearchService

	// Index rebuilds and reports on the index. Optional: without it the
	// rebuild_index and index_status tools report ErrIndexManagementUnavailable.
	Index driving.IndexService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}
