// Package memory provides in-memory implementations of the driven stores:
// configuration, build catalog and scheduler state. Nothing is persisted.
package memory
