// Package artifact provides bounded version history for Forge artifacts.
//
// An artifact is a unit of generated work (an app, a script, a document)
// produced across one or more conversation turns. Every time the action
// pipeline finishes applying a batch of changes, it records a Version:
// the ordered list of file writes and commands that produced the new
// state. File writes additionally feed a per-path snapshot history so
// any file can be inspected or restored as it was at a given version.
//
// Both tables are bounded FIFO histories: an artifact keeps at most
// DefaultArtifactCap versions, a file path at most DefaultFileCap
// snapshots, and the oldest entry is evicted first. History lives only
// for the process lifetime; use Export/WriteSnapshot to persist it.
//
// Thread Safety: Store is safe for concurrent use. Methods return
// copies, so callers can never reach into the underlying tables.
//
// Lifecycle: entries leave the store only through cap eviction, the
// Clear* operations, or Reset.
package artifact
