// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - DatasetSource: Opens the tabular dataset files by kind
//   - IndexBuilder: Writes index generations and reopens them (bleve)
//   - IndexReader: Serves queries against one committed generation
//   - BuildCatalog: Build history and the last committed generation
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
//   - SchedulerStore: Rebuild schedule. Only needed when periodic rebuilds are enabled.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
