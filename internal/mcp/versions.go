package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/koopa0/forge/internal/artifact"
)

// registerVersionTools registers the artifact version tools.
// Tools: record_version, list_versions, get_version, version_history,
// compare_versions
func (s *Server) registerVersionTools() error {
	recordSchema, err := jsonschema.For[recordVersionInput](nil)
	if err != nil {
		return fmt.Errorf("schema for record_version: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "record_version",
		Description: "Record a new version of an artifact from a list of file and command changes.",
		InputSchema: recordSchema,
	}, s.RecordVersion)

	listSchema, err := jsonschema.For[listVersionsInput](nil)
	if err != nil {
		return fmt.Errorf("schema for list_versions: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_versions",
		Description: "List all retained versions of an artifact, oldest first.",
		InputSchema: listSchema,
	}, s.ListVersions)

	getSchema, err := jsonschema.For[getVersionInput](nil)
	if err != nil {
		return fmt.Errorf("schema for get_version: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_version",
		Description: "Fetch one version of an artifact by its version number.",
		InputSchema: getSchema,
	}, s.GetVersion)

	historySchema, err := jsonschema.For[versionHistoryInput](nil)
	if err != nil {
		return fmt.Errorf("schema for version_history: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "version_history",
		Description: "Summarize an artifact's versions: number, timestamp, description, file and command counts.",
		InputSchema: historySchema,
	}, s.VersionHistory)

	compareSchema, err := jsonschema.For[compareVersionsInput](nil)
	if err != nil {
		return fmt.Errorf("schema for compare_versions: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "compare_versions",
		Description: "List file paths added, modified and removed between two versions of an artifact.",
		InputSchema: compareSchema,
	}, s.CompareVersions)

	return nil
}

type recordVersionInput struct {
	ArtifactID  string            `json:"artifact_id" jsonschema:"ID of the artifact being versioned"`
	MessageID   string            `json:"message_id" jsonschema:"ID of the message that produced the changes"`
	Description string            `json:"description,omitempty" jsonschema:"Optional summary of this version"`
	Changes     []artifact.Change `json:"changes,omitempty" jsonschema:"File and command changes in this version"`
}

// RecordVersion handles the record_version MCP tool call.
func (s *Server) RecordVersion(ctx context.Context, req *mcp.CallToolRequest, input recordVersionInput) (*mcp.CallToolResult, any, error) {
	for i, c := range input.Changes {
		if !c.Kind.Valid() {
			return errorResult("change %d has unknown kind %q", i, c.Kind), nil, nil
		}
	}

	v, err := s.store.CreateVersion(input.ArtifactID, input.MessageID, input.Changes, input.Description)
	if err != nil {
		if errors.Is(err, artifact.ErrEmptyArtifactID) || errors.Is(err, artifact.ErrEmptyMessageID) {
			return errorResult("%v", err), nil, nil
		}
		return nil, nil, fmt.Errorf("recording version: %w", err)
	}

	return dataToMCP(v), nil, nil
}

type listVersionsInput struct {
	ArtifactID string `json:"artifact_id" jsonschema:"ID of the artifact to list"`
}

// ListVersions handles the list_versions MCP tool call.
func (s *Server) ListVersions(ctx context.Context, req *mcp.CallToolRequest, input listVersionsInput) (*mcp.CallToolResult, any, error) {
	return dataToMCP(s.store.VersionsForArtifact(input.ArtifactID)), nil, nil
}

type getVersionInput struct {
	ArtifactID string `json:"artifact_id" jsonschema:"ID of the artifact"`
	Version    int    `json:"version" jsonschema:"Version number to fetch (1-based)"`
}

// GetVersion handles the get_version MCP tool call.
func (s *Server) GetVersion(ctx context.Context, req *mcp.CallToolRequest, input getVersionInput) (*mcp.CallToolResult, any, error) {
	v, ok := s.store.Version(input.ArtifactID, input.Version)
	if !ok {
		return errorResult("version %d of artifact %q not found", input.Version, input.ArtifactID), nil, nil
	}
	return dataToMCP(v), nil, nil
}

type versionHistoryInput struct {
	ArtifactID string `json:"artifact_id" jsonschema:"ID of the artifact to summarize"`
}

// VersionHistory handles the version_history MCP tool call.
func (s *Server) VersionHistory(ctx context.Context, req *mcp.CallToolRequest, input versionHistoryInput) (*mcp.CallToolResult, any, error) {
	return dataToMCP(s.store.History(input.ArtifactID)), nil, nil
}

type compareVersionsInput struct {
	ArtifactID string `json:"artifact_id" jsonschema:"ID of the artifact"`
	From       int    `json:"from" jsonschema:"Version number of the older side"`
	To         int    `json:"to" jsonschema:"Version number of the newer side"`
}

// CompareVersions handles the compare_versions MCP tool call.
// Comparing against an unknown version yields empty lists, not an error.
func (s *Server) CompareVersions(ctx context.Context, req *mcp.CallToolRequest, input compareVersionsInput) (*mcp.CallToolResult, any, error) {
	return dataToMCP(s.store.CompareVersions(input.ArtifactID, input.From, input.To)), nil, nil
}
