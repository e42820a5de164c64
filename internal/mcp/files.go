package mcp

import (
	"context"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/koopa0/forge/internal/diff"
)

// registerFileTools registers the per-file snapshot tools.
// Tools: file_versions, file_at_version, latest_file_version, file_diff
func (s *Server) registerFileTools() error {
	versionsSchema, err := jsonschema.For[fileVersionsInput](nil)
	if err != nil {
		return fmt.Errorf("schema for file_versions: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "file_versions",
		Description: "List all retained content snapshots of one file, oldest first.",
		InputSchema: versionsSchema,
	}, s.FileVersions)

	atVersionSchema, err := jsonschema.For[fileAtVersionInput](nil)
	if err != nil {
		return fmt.Errorf("schema for file_at_version: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "file_at_version",
		Description: "Fetch the content a file had at a specific version of an artifact.",
		InputSchema: atVersionSchema,
	}, s.FileAtVersion)

	latestSchema, err := jsonschema.For[latestFileVersionInput](nil)
	if err != nil {
		return fmt.Errorf("schema for latest_file_version: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "latest_file_version",
		Description: "Fetch the most recent content snapshot of a file.",
		InputSchema: latestSchema,
	}, s.LatestFileVersion)

	diffSchema, err := jsonschema.For[fileDiffInput](nil)
	if err != nil {
		return fmt.Errorf("schema for file_diff: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "file_diff",
		Description: "Produce a unified line diff of one file between two versions of an artifact.",
		InputSchema: diffSchema,
	}, s.FileDiff)

	return nil
}

type fileVersionsInput struct {
	Path string `json:"path" jsonschema:"File path whose snapshots to list"`
}

// FileVersions handles the file_versions MCP tool call.
func (s *Server) FileVersions(ctx context.Context, req *mcp.CallToolRequest, input fileVersionsInput) (*mcp.CallToolResult, any, error) {
	return dataToMCP(s.store.FileVersions(input.Path)), nil, nil
}

type fileAtVersionInput struct {
	Path       string `json:"path" jsonschema:"File path to look up"`
	ArtifactID string `json:"artifact_id" jsonschema:"ID of the artifact whose version to inspect"`
	Version    int    `json:"version" jsonschema:"Version number of the artifact"`
}

// FileAtVersion handles the file_at_version MCP tool call.
func (s *Server) FileAtVersion(ctx context.Context, req *mcp.CallToolRequest, input fileAtVersionInput) (*mcp.CallToolResult, any, error) {
	fv, ok := s.store.FileAtVersion(input.Path, input.ArtifactID, input.Version)
	if !ok {
		return errorResult("no snapshot of %q at version %d of artifact %q", input.Path, input.Version, input.ArtifactID), nil, nil
	}
	return dataToMCP(fv), nil, nil
}

type latestFileVersionInput struct {
	Path string `json:"path" jsonschema:"File path to look up"`
}

// LatestFileVersion handles the latest_file_version MCP tool call.
func (s *Server) LatestFileVersion(ctx context.Context, req *mcp.CallToolRequest, input latestFileVersionInput) (*mcp.CallToolResult, any, error) {
	fv, ok := s.store.LatestFileVersion(input.Path)
	if !ok {
		return errorResult("file %q has no snapshots", input.Path), nil, nil
	}
	return dataToMCP(fv), nil, nil
}

type fileDiffInput struct {
	Path       string `json:"path" jsonschema:"File path to diff"`
	ArtifactID string `json:"artifact_id" jsonschema:"ID of the artifact"`
	From       int    `json:"from" jsonschema:"Version number of the older side"`
	To         int    `json:"to" jsonschema:"Version number of the newer side"`
}

// FileDiff handles the file_diff MCP tool call. The result is unified
// diff text rather than JSON, ready to show as-is. A version without a
// snapshot of the file counts as the file not existing on that side.
func (s *Server) FileDiff(ctx context.Context, req *mcp.CallToolRequest, input fileDiffInput) (*mcp.CallToolResult, any, error) {
	fromFV, okFrom := s.store.FileAtVersion(input.Path, input.ArtifactID, input.From)
	toFV, okTo := s.store.FileAtVersion(input.Path, input.ArtifactID, input.To)
	if !okFrom && !okTo {
		return errorResult("no snapshot of %q at version %d or %d of artifact %q",
			input.Path, input.From, input.To, input.ArtifactID), nil, nil
	}

	var oldContent, newContent string
	if okFrom {
		oldContent = fromFV.Content
	}
	if okTo {
		newContent = toFV.Content
	}

	d := diff.Compute(input.Path, oldContent, newContent)
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: d.Unified()}},
	}, nil, nil
}
