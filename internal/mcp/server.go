package mcp

import (
	"log/slog"

	"github.com/dt-pm-tools/confluence-dc-mcp/internal/config"
	"github.com/dt-pm-tools/confluence-dc-mcp/internal/confluence"
	"github.com/dt-pm-tools/confluence-dc-mcp/internal/directory"

	"github.com/mark3labs/mcp-go/server"
)

// Dependencies bundles the services required for MCP server construction.
type Dependencies struct {
	ContentService  *confluence.Service
	DirectoryClient *directory.Client
	Confluence      config.ConfluenceConfig
	BaseURL         string
	Logger          *slog.Logger
}

// NewServer builds an MCP server with the registered Confluence tools.
func NewServer(deps Dependencies) *server.MCPServer {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	srv := server.NewMCPServer(
		"Confluence DC MCP",
		"0.1.0",
		server.WithToolCapabilities(true),
		server.WithInstructions("Tools for Confluence Data Center: page creation, page restrictions, page listing, and user directory sync."),
		server.WithRecovery(),
	)

	if deps.ContentService != nil {
		NewContentTools(srv, deps.ContentService, deps.BaseURL)
	}

	if deps.DirectoryClient != nil {
		NewDirectoryTools(srv, deps.DirectoryClient, deps.Confluence)
	}

	return srv
}
