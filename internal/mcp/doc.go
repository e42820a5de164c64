// Package mcp implements a Model Context Protocol (MCP) server for the
// artifact version store.
//
// The MCP server exposes version history, file snapshots and diffs to
// MCP clients (Claude Code, Cursor, the MCP inspector, and similar
// tools), so an assistant can record the artifacts it generates and
// inspect how they evolved.
//
// # Architecture
//
//	MCP Client (editor, assistant, inspector)
//	     |
//	     | (MCP protocol over stdio)
//	     v
//	Server (MCP SDK)
//	     |
//	     +-- version tools   (record_version, list_versions, ...)
//	     +-- file tools      (file_versions, file_diff, ...)
//	     +-- store tools     (store_stats)
//	     |
//	     v
//	artifact.Store (in-memory, bounded histories)
//
// # Supported Tools
//
//   - record_version: record a new version from a list of changes
//   - list_versions, get_version, version_history: inspect an artifact
//   - compare_versions: paths added/modified/removed between versions
//   - file_versions, file_at_version, latest_file_version: file snapshots
//   - file_diff: unified line diff of one file between two versions
//   - store_stats: current store sizes
//
// # Tool Handler Pattern
//
// Tool handlers follow the net/http.Handler shape:
//
//  1. Define an input struct with json and jsonschema tags
//  2. Infer the JSON schema with jsonschema.For
//  3. Register with mcp.AddTool and a typed handler method
//  4. Build responses inline; results are JSON text content
//
// # Error Handling
//
// The server distinguishes two kinds of failure:
//
//   - Tool misuse (unknown change kind, lookup of a version that does
//     not exist): returned as a result with IsError=true, so the client
//     can read the message and correct itself.
//
//   - System errors: returned as Go errors and surfaced as MCP protocol
//     errors.
//
// Queries for unknown artifacts or files that yield lists return empty
// lists, matching the store's absence-is-not-an-error convention.
package mcp
