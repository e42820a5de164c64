package mcp

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/koopa0/forge/internal/artifact"
)

// connectServer creates a Forge MCP server from the given config and an
// SDK client connected via in-memory transports. Returns the client
// session for making protocol calls. Both sessions are cleaned up via
// t.Cleanup.
func connectServer(t *testing.T, cfg Config) *mcp.ClientSession {
	t.Helper()

	server, err := NewServer(cfg)
	if err != nil {
		t.Fatalf("NewServer() unexpected error: %v", err)
	}

	ctx := context.Background()
	serverTransport, clientTransport := mcp.NewInMemoryTransports()

	serverSession, err := server.mcpServer.Connect(ctx, serverTransport, nil)
	if err != nil {
		t.Fatalf("server.Connect() unexpected error: %v", err)
	}
	t.Cleanup(func() { _ = serverSession.Close() })

	client := mcp.NewClient(&mcp.Implementation{
		Name:    "test-client",
		Version: "1.0.0",
	}, nil)

	clientSession, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("client.Connect() unexpected error: %v", err)
	}
	t.Cleanup(func() { _ = clientSession.Close() })

	return clientSession
}

// connectTestServer creates a connected client session along with the
// backing store, so tests can seed versions directly.
func connectTestServer(t *testing.T) (*mcp.ClientSession, *artifact.Store) {
	t.Helper()
	cfg := testConfig()
	return connectServer(t, cfg), cfg.Store
}

// callToolText performs a tool call and returns the text of the first
// content item.
func callToolText(t *testing.T, session *mcp.ClientSession, name string, args map[string]any) string {
	t.Helper()

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		t.Fatalf("CallTool(%q) unexpected error: %v", name, err)
	}
	if result.IsError {
		t.Fatalf("CallTool(%q) returned error result: %+v", name, result.Content)
	}
	if len(result.Content) == 0 {
		t.Fatalf("CallTool(%q) returned empty content", name)
	}

	textContent, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("CallTool(%q) content[0] type = %T, want *mcp.TextContent", name, result.Content[0])
	}
	return textContent.Text
}

// callToolError performs a tool call and asserts it returned a
// tool-level error result, returning its message text.
func callToolError(t *testing.T, session *mcp.ClientSession, name string, args map[string]any) string {
	t.Helper()

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		t.Fatalf("CallTool(%q) unexpected error: %v", name, err)
	}
	if !result.IsError {
		t.Fatalf("CallTool(%q) result.IsError = false, want true", name)
	}
	if len(result.Content) == 0 {
		t.Fatalf("CallTool(%q) returned empty content", name)
	}

	textContent, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("CallTool(%q) content[0] type = %T, want *mcp.TextContent", name, result.Content[0])
	}
	return textContent.Text
}

// seedVersions records two versions of app-1: x.ts A, then x.ts B plus
// y.ts C and a shell command.
func seedVersions(t *testing.T, store *artifact.Store) {
	t.Helper()

	a := "A"
	if _, err := store.CreateVersion("app-1", "msg-1", []artifact.Change{
		{Kind: artifact.KindFile, FilePath: "x.ts", NewContent: &a},
	}, "initial"); err != nil {
		t.Fatalf("seeding version 1: %v", err)
	}

	b, c := "B", "C"
	if _, err := store.CreateVersion("app-1", "msg-2", []artifact.Change{
		{Kind: artifact.KindFile, FilePath: "x.ts", PreviousContent: &a, NewContent: &b},
		{Kind: artifact.KindFile, FilePath: "y.ts", NewContent: &c},
		{Kind: artifact.KindShell, Command: "npm install"},
	}, "rework"); err != nil {
		t.Fatalf("seeding version 2: %v", err)
	}
}

// TestProtocol_ListTools verifies that the MCP JSON-RPC tools/list
// endpoint returns all registered tools with correct names.
func TestProtocol_ListTools(t *testing.T) {
	session, _ := connectTestServer(t)

	result, err := session.ListTools(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListTools() unexpected error: %v", err)
	}

	var names []string
	for _, tool := range result.Tools {
		names = append(names, tool.Name)
	}
	sort.Strings(names)

	wantNames := []string{
		"compare_versions",
		"file_at_version",
		"file_diff",
		"file_versions",
		"get_version",
		"latest_file_version",
		"list_versions",
		"record_version",
		"store_stats",
		"version_history",
	}

	if len(names) != len(wantNames) {
		t.Fatalf("ListTools() returned %d tools, want %d\ngot:  %v\nwant: %v", len(names), len(wantNames), names, wantNames)
	}

	for i, got := range names {
		if got != wantNames[i] {
			t.Errorf("ListTools() tool[%d] = %q, want %q", i, got, wantNames[i])
		}
	}
}

// TestProtocol_ListTools_HaveDescriptions verifies that all tools
// include non-empty descriptions (required by MCP spec).
func TestProtocol_ListTools_HaveDescriptions(t *testing.T) {
	session, _ := connectTestServer(t)

	result, err := session.ListTools(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListTools() unexpected error: %v", err)
	}

	for _, tool := range result.Tools {
		if tool.Description == "" {
			t.Errorf("ListTools() tool %q has empty description", tool.Name)
		}
	}
}

// TestProtocol_RecordAndFetch verifies the record/list/get round trip
// through the JSON-RPC layer.
func TestProtocol_RecordAndFetch(t *testing.T) {
	session, _ := connectTestServer(t)

	text := callToolText(t, session, "record_version", map[string]any{
		"artifact_id": "app-1",
		"message_id":  "msg-1",
		"description": "initial",
		"changes": []map[string]any{
			{"kind": "file", "file_path": "x.ts", "new_content": "A"},
		},
	})

	var recorded artifact.Version
	if err := json.Unmarshal([]byte(text), &recorded); err != nil {
		t.Fatalf("parsing record_version result: %v\ntext: %s", err, text)
	}
	if recorded.Number != 1 {
		t.Errorf("record_version number = %d, want 1", recorded.Number)
	}
	if recorded.ID == "" {
		t.Error("record_version returned empty version ID")
	}

	text = callToolText(t, session, "get_version", map[string]any{
		"artifact_id": "app-1",
		"version":     1,
	})

	var fetched artifact.Version
	if err := json.Unmarshal([]byte(text), &fetched); err != nil {
		t.Fatalf("parsing get_version result: %v\ntext: %s", err, text)
	}
	if fetched.ID != recorded.ID {
		t.Errorf("get_version ID = %q, want %q", fetched.ID, recorded.ID)
	}
	if fetched.Description != "initial" {
		t.Errorf("get_version description = %q, want %q", fetched.Description, "initial")
	}

	text = callToolText(t, session, "list_versions", map[string]any{
		"artifact_id": "app-1",
	})

	var versions []artifact.Version
	if err := json.Unmarshal([]byte(text), &versions); err != nil {
		t.Fatalf("parsing list_versions result: %v\ntext: %s", err, text)
	}
	if len(versions) != 1 {
		t.Errorf("list_versions returned %d versions, want 1", len(versions))
	}
}

// TestProtocol_RecordVersion_Misuse verifies tool-level errors for bad
// arguments: the call succeeds at the protocol layer but carries
// IsError with a readable message.
func TestProtocol_RecordVersion_Misuse(t *testing.T) {
	session, _ := connectTestServer(t)

	t.Run("empty message id", func(t *testing.T) {
		text := callToolError(t, session, "record_version", map[string]any{
			"artifact_id": "app-1",
			"message_id":  "",
		})
		if !strings.Contains(text, "message id") {
			t.Errorf("error text = %q, want mention of message id", text)
		}
	})

	t.Run("unknown change kind", func(t *testing.T) {
		text := callToolError(t, session, "record_version", map[string]any{
			"artifact_id": "app-1",
			"message_id":  "msg-1",
			"changes": []map[string]any{
				{"kind": "teleport"},
			},
		})
		if !strings.Contains(text, "unknown kind") {
			t.Errorf("error text = %q, want mention of unknown kind", text)
		}
	})
}

// TestProtocol_CompareVersions verifies path-level comparison through
// the protocol layer.
func TestProtocol_CompareVersions(t *testing.T) {
	session, store := connectTestServer(t)
	seedVersions(t, store)

	text := callToolText(t, session, "compare_versions", map[string]any{
		"artifact_id": "app-1",
		"from":        1,
		"to":          2,
	})

	var cmp artifact.Comparison
	if err := json.Unmarshal([]byte(text), &cmp); err != nil {
		t.Fatalf("parsing compare_versions result: %v\ntext: %s", err, text)
	}

	if len(cmp.Added) != 1 || cmp.Added[0] != "y.ts" {
		t.Errorf("added = %v, want [y.ts]", cmp.Added)
	}
	if len(cmp.Modified) != 1 || cmp.Modified[0] != "x.ts" {
		t.Errorf("modified = %v, want [x.ts]", cmp.Modified)
	}
	if len(cmp.Removed) != 0 {
		t.Errorf("removed = %v, want []", cmp.Removed)
	}
}

// TestProtocol_VersionHistory verifies summaries through the protocol
// layer.
func TestProtocol_VersionHistory(t *testing.T) {
	session, store := connectTestServer(t)
	seedVersions(t, store)

	text := callToolText(t, session, "version_history", map[string]any{
		"artifact_id": "app-1",
	})

	var summaries []artifact.Summary
	if err := json.Unmarshal([]byte(text), &summaries); err != nil {
		t.Fatalf("parsing version_history result: %v\ntext: %s", err, text)
	}

	if len(summaries) != 2 {
		t.Fatalf("%d summaries, want 2", len(summaries))
	}
	if summaries[1].FileCount != 2 || summaries[1].CommandCount != 1 {
		t.Errorf("summary = %+v, want 2 files 1 command", summaries[1])
	}
}

// TestProtocol_FileTools verifies the per-file snapshot tools.
func TestProtocol_FileTools(t *testing.T) {
	session, store := connectTestServer(t)
	seedVersions(t, store)

	text := callToolText(t, session, "file_versions", map[string]any{
		"path": "x.ts",
	})

	var snapshots []artifact.FileVersion
	if err := json.Unmarshal([]byte(text), &snapshots); err != nil {
		t.Fatalf("parsing file_versions result: %v\ntext: %s", err, text)
	}
	if len(snapshots) != 2 || snapshots[0].Content != "A" || snapshots[1].Content != "B" {
		t.Fatalf("file_versions = %+v, want contents [A B]", snapshots)
	}

	text = callToolText(t, session, "file_at_version", map[string]any{
		"path":        "x.ts",
		"artifact_id": "app-1",
		"version":     1,
	})

	var fv artifact.FileVersion
	if err := json.Unmarshal([]byte(text), &fv); err != nil {
		t.Fatalf("parsing file_at_version result: %v\ntext: %s", err, text)
	}
	if fv.Content != "A" {
		t.Errorf("file_at_version content = %q, want %q", fv.Content, "A")
	}

	text = callToolText(t, session, "latest_file_version", map[string]any{
		"path": "x.ts",
	})

	if err := json.Unmarshal([]byte(text), &fv); err != nil {
		t.Fatalf("parsing latest_file_version result: %v\ntext: %s", err, text)
	}
	if fv.Content != "B" {
		t.Errorf("latest_file_version content = %q, want %q", fv.Content, "B")
	}

	errText := callToolError(t, session, "latest_file_version", map[string]any{
		"path": "ghost.ts",
	})
	if !strings.Contains(errText, "ghost.ts") {
		t.Errorf("error text = %q, want mention of the path", errText)
	}
}

// TestProtocol_FileDiff verifies that file_diff returns unified diff
// text rather than JSON.
func TestProtocol_FileDiff(t *testing.T) {
	session, store := connectTestServer(t)
	seedVersions(t, store)

	text := callToolText(t, session, "file_diff", map[string]any{
		"path":        "x.ts",
		"artifact_id": "app-1",
		"from":        1,
		"to":          2,
	})

	if !strings.Contains(text, "--- a/x.ts") || !strings.Contains(text, "+++ b/x.ts") {
		t.Errorf("file_diff missing unified headers:\n%s", text)
	}
	if !strings.Contains(text, "-A") || !strings.Contains(text, "+B") {
		t.Errorf("file_diff missing -A/+B lines:\n%s", text)
	}

	errText := callToolError(t, session, "file_diff", map[string]any{
		"path":        "ghost.ts",
		"artifact_id": "app-1",
		"from":        1,
		"to":          2,
	})
	if !strings.Contains(errText, "ghost.ts") {
		t.Errorf("error text = %q, want mention of the path", errText)
	}
}

// TestProtocol_StoreStats verifies store_stats through the protocol
// layer.
func TestProtocol_StoreStats(t *testing.T) {
	session, store := connectTestServer(t)
	seedVersions(t, store)

	text := callToolText(t, session, "store_stats", nil)

	var stats artifact.StoreStats
	if err := json.Unmarshal([]byte(text), &stats); err != nil {
		t.Fatalf("parsing store_stats result: %v\ntext: %s", err, text)
	}

	if stats.Artifacts != 1 {
		t.Errorf("artifacts = %d, want 1", stats.Artifacts)
	}
	if stats.Files != 2 {
		t.Errorf("files = %d, want 2", stats.Files)
	}
	if stats.Versions != 2 {
		t.Errorf("versions = %d, want 2", stats.Versions)
	}
	if stats.FileVersions != 3 {
		t.Errorf("file versions = %d, want 3", stats.FileVersions)
	}
}

// TestProtocol_CallTool_UnknownTool verifies that calling a
// non-existent tool returns a proper error through the JSON-RPC layer.
func TestProtocol_CallTool_UnknownTool(t *testing.T) {
	session, _ := connectTestServer(t)

	_, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name: "nonexistent_tool",
	})

	if err == nil {
		t.Fatal("CallTool(nonexistent_tool) expected error, got nil")
	}

	if !strings.Contains(err.Error(), "nonexistent_tool") {
		t.Errorf("CallTool(nonexistent_tool) error = %q, want to contain tool name", err.Error())
	}
}
