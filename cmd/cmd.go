// Package cmd provides CLI commands for Forge.
//
// Commands:
//   - serve: HTTP API server for the artifact version store
//   - mcp: Model Context Protocol server for IDE integration
//
// Signal handling and graceful shutdown are implemented
// for all commands via context cancellation.
package cmd

import (
	"fmt"
	"log/slog"
	"os"
)

// Execute is the main entry point for the Forge CLI application.
func Execute() error {
	// Initialize logger once at entry point
	level := slog.LevelInfo
	if os.Getenv("DEBUG") != "" {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if len(os.Args) < 2 {
		runHelp()
		return nil
	}

	switch os.Args[1] {
	case "serve":
		return runServe()
	case "mcp":
		return runMCP()
	case "version", "--version", "-v":
		runVersion()
		return nil
	case "help", "--help", "-h":
		runHelp()
		return nil
	default:
		return fmt.Errorf("unknown command: %s", os.Args[1])
	}
}

// runHelp displays the help message.
func runHelp() {
	fmt.Println("Forge - Version store for AI-generated artifacts")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  forge serve [addr] Start HTTP API server (default: 127.0.0.1:3400)")
	fmt.Println("  forge mcp          Start MCP server (for Claude Desktop/Cursor)")
	fmt.Println("  forge --version    Show version information")
	fmt.Println("  forge --help       Show this help")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  FORGE_ARTIFACT_CAP Max versions kept per artifact (default: 50)")
	fmt.Println("  FORGE_FILE_CAP     Max snapshots kept per file path (default: 100)")
	fmt.Println("  FORGE_SNAPSHOT_DIR Where history exports are written (default: ~/.forge)")
	fmt.Println("  FORGE_LOG_LEVEL    Log level: debug, info, warn, error")
	fmt.Println("  DEBUG              Enable debug logging before config loads")
	fmt.Println()
	fmt.Println("Learn more: https://github.com/koopa0/forge")
}
