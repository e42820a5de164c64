package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/koopa0/forge/internal/artifact"
)

// Server exposes the artifact version store over the Model Context
// Protocol.
type Server struct {
	mcpServer *mcp.Server
	store     *artifact.Store
	logger    *slog.Logger
	name      string
	version   string
}

// Config holds MCP server configuration.
type Config struct {
	Name    string
	Version string
	Logger  *slog.Logger
	Store   *artifact.Store
}

// NewServer creates an MCP server with all tools registered.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Name == "" {
		return nil, errors.New("server name is required")
	}
	if cfg.Version == "" {
		return nil, errors.New("server version is required")
	}
	if cfg.Store == nil {
		return nil, errors.New("artifact store is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, nil)

	s := &Server{
		mcpServer: mcpServer,
		store:     cfg.Store,
		logger:    logger,
		name:      cfg.Name,
		version:   cfg.Version,
	}

	if err := s.registerTools(); err != nil {
		return nil, fmt.Errorf("registering tools: %w", err)
	}

	return s, nil
}

// Run starts the MCP server on the given transport. This is a blocking
// call that handles all MCP protocol communication.
func (s *Server) Run(ctx context.Context, transport mcp.Transport) error {
	return s.mcpServer.Run(ctx, transport)
}

// registerTools registers every tool group on the MCP server.
func (s *Server) registerTools() error {
	if err := s.registerVersionTools(); err != nil {
		return fmt.Errorf("version tools: %w", err)
	}
	if err := s.registerFileTools(); err != nil {
		return fmt.Errorf("file tools: %w", err)
	}
	if err := s.registerStoreTools(); err != nil {
		return fmt.Errorf("store tools: %w", err)
	}
	return nil
}

type storeStatsInput struct{}

// registerStoreTools registers the store-wide tools. Tools: store_stats
func (s *Server) registerStoreTools() error {
	statsSchema, err := jsonschema.For[storeStatsInput](nil)
	if err != nil {
		return fmt.Errorf("schema for store_stats: %w", err)
	}
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "store_stats",
		Description: "Report how many artifacts, files and retained versions the store currently holds.",
		InputSchema: statsSchema,
	}, s.StoreStats)

	return nil
}

// StoreStats handles the store_stats MCP tool call.
func (s *Server) StoreStats(ctx context.Context, req *mcp.CallToolRequest, input storeStatsInput) (*mcp.CallToolResult, any, error) {
	return dataToMCP(s.store.Stats()), nil, nil
}
