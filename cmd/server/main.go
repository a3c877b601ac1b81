package main

import (
	"fmt"
	"os"
	"strings"

	"log/slog"

	"github.com/dt-pm-tools/confluence-dc-mcp/internal/config"
	"github.com/dt-pm-tools/confluence-dc-mcp/internal/confluence"
	"github.com/dt-pm-tools/confluence-dc-mcp/internal/directory"
	mcpserver "github.com/dt-pm-tools/confluence-dc-mcp/internal/mcp"
	"github.com/dt-pm-tools/confluence-dc-mcp/pkg/logging"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "confluence-dc-mcp",
	Short: "MCP stdio server for Confluence Data Center",
	Long: `Serves Confluence Data Center operations as MCP tools over stdio:
page creation, page restrictions, page listing, and user directory sync.

Configuration comes from a config.yaml and the CONFLUENCE_* environment
variables (CONFLUENCE_URL, CONFLUENCE_LOGIN, CONFLUENCE_API_TOKEN,
CONFLUENCE_LOGIN_PASSWORD, CONFLUENCE_DIRECTORY_ID).`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServer,
}

func init() {
	rootCmd.Flags().StringVar(&cfgPath, "config", "", "Path to configuration directory or file")
}

func runServer(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logger := logging.New(cfg.Server.LogLevel)

	site := ensureHTTPS(cfg.Confluence.URL)
	cfg.Confluence.URL = site

	apiClient, err := confluence.NewClient(site, cfg.Confluence, logger)
	if err != nil {
		return fmt.Errorf("initialize confluence client: %w", err)
	}

	dirClient, err := directory.NewClient(site, logger)
	if err != nil {
		return fmt.Errorf("initialize directory client: %w", err)
	}

	srv := mcpserver.NewServer(mcpserver.Dependencies{
		ContentService:  confluence.NewService(apiClient),
		DirectoryClient: dirClient,
		Confluence:      cfg.Confluence,
		BaseURL:         site,
		Logger:          logger,
	})

	logger.Info("starting stdio server", slog.String("site", site))

	if err := server.ServeStdio(srv); err != nil {
		return fmt.Errorf("stdio server terminated: %w", err)
	}

	return nil
}

func ensureHTTPS(site string) string {
	trimmed := strings.TrimSpace(site)
	if trimmed == "" {
		return ""
	}

	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		return strings.TrimRight(trimmed, "/")
	}

	return "https://" + strings.TrimRight(trimmed, "/")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Default().Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}
