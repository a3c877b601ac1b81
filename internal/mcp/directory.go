package mcp

import (
	"context"
	"fmt"

	"github.com/dt-pm-tools/confluence-dc-mcp/internal/config"
	"github.com/dt-pm-tools/confluence-dc-mcp/internal/directory"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// DirectoryTools wires the user-directory sync flow into an MCP tool.
type DirectoryTools struct {
	client *directory.Client
	conf   config.ConfluenceConfig
}

// NewDirectoryTools registers the directory sync tool on the server.
func NewDirectoryTools(s *server.MCPServer, client *directory.Client, conf config.ConfluenceConfig) *DirectoryTools {
	dt := &DirectoryTools{client: client, conf: conf}

	s.AddTool(
		mcp.NewTool(
			"confluence_sync_user_directory",
			mcp.WithDescription("Trigger a synchronization of a Confluence user directory (e.g. Active Directory); requires admin credentials"),
			mcp.WithTitleAnnotation("Sync User Directory"),
			mcp.WithReadOnlyHintAnnotation(false),
			mcp.WithDestructiveHintAnnotation(false),
			mcp.WithIdempotentHintAnnotation(true),
			mcp.WithOpenWorldHintAnnotation(true),
			mcp.WithInputSchema[SyncDirectoryArgs](),
			mcp.WithOutputSchema[SyncDirectoryResult](),
		),
		mcp.NewTypedToolHandler(dt.handleSync),
	)

	return dt
}

// SyncDirectoryArgs parameters for directory sync. All fields fall back to
// the server configuration.
type SyncDirectoryArgs struct {
	DirectoryID string `json:"directory_id,omitempty" jsonschema_description:"Directory ID to sync; defaults to CONFLUENCE_DIRECTORY_ID"`
	Login       string `json:"login,omitempty" jsonschema_description:"Admin login; defaults to CONFLUENCE_LOGIN"`
	Password    string `json:"password,omitempty" jsonschema_description:"Admin password; defaults to CONFLUENCE_LOGIN_PASSWORD"`
}

// SyncDirectoryResult response for the sync tool.
type SyncDirectoryResult struct {
	DirectoryID string `json:"directory_id"`
	Message     string `json:"message"`
}

func (d *DirectoryTools) handleSync(ctx context.Context, _ mcp.CallToolRequest, args SyncDirectoryArgs) (*mcp.CallToolResult, error) {
	login, password, directoryID := d.conf.SyncCredentials(args.Login, args.Password, args.DirectoryID)

	if login == "" || password == "" {
		return mcp.NewToolResultError("missing admin credentials: set CONFLUENCE_LOGIN and CONFLUENCE_LOGIN_PASSWORD or pass login/password"), nil
	}
	if directoryID == "" {
		return mcp.NewToolResultError("missing directory_id: set CONFLUENCE_DIRECTORY_ID or pass directory_id"), nil
	}

	err := d.client.Sync(ctx, directory.SyncInput{
		Login:       login,
		Password:    password,
		DirectoryID: directoryID,
	})
	if err != nil {
		return mcp.NewToolResultErrorFromErr("confluence directory sync failed", err), nil
	}

	result := SyncDirectoryResult{
		DirectoryID: directoryID,
		Message:     fmt.Sprintf("User directory sync triggered successfully for directory ID %s", directoryID),
	}

	return mcp.NewToolResultStructured(result, result.Message), nil
}
