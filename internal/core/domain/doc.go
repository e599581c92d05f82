// Package domain defines the core business entities for cinedex.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Rows: typed records decoded from the tabular datasets
//   - TitleDocument / NameDocument: composed, searchable records
//   - Schema: the tagged field kinds the index is built from
//   - TitleQuery / NameQuery: structured query requests
//   - BuildRecord: the outcome of one ingestion run
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
