//go:build integration
// +build integration

package integration

import (
	"os"
	"strings"
	"testing"

	"github.com/dt-pm-tools/confluence-dc-mcp/internal/config"
	"github.com/dt-pm-tools/confluence-dc-mcp/internal/confluence"
)

// requireIntegration skips the test unless MCP_INTEGRATION is set.
func requireIntegration(t *testing.T) {
	t.Helper()
	if os.Getenv("MCP_INTEGRATION") == "" {
		t.Skip("MCP_INTEGRATION not set; skipping integration tests")
	}
}

// ensureHTTPS adds an https:// prefix to bare hostnames.
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

// loadCredentials reads the Confluence credentials from the environment.
func loadCredentials() config.ConfluenceConfig {
	return config.ConfluenceConfig{
		URL:           ensureHTTPS(os.Getenv("CONFLUENCE_URL")),
		Login:         os.Getenv("CONFLUENCE_LOGIN"),
		APIToken:      os.Getenv("CONFLUENCE_API_TOKEN"),
		LoginPassword: os.Getenv("CONFLUENCE_LOGIN_PASSWORD"),
		DirectoryID:   os.Getenv("CONFLUENCE_DIRECTORY_ID"),
	}
}

func credsValid(creds config.ConfluenceConfig) bool {
	if creds.APIToken != "" {
		return true
	}
	return creds.Login != "" && creds.LoginPassword != ""
}

// setupService creates a Confluence service from environment variables.
// Skips the test when the site or credentials are not available.
func setupService(t *testing.T) (*confluence.Service, string) {
	t.Helper()

	creds := loadCredentials()
	if creds.URL == "" {
		t.Skip("CONFLUENCE_URL not set")
	}
	if !credsValid(creds) {
		t.Skip("Confluence credentials not provided")
	}

	client, err := confluence.NewClient(creds.URL, creds, nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	return confluence.NewService(client), creds.URL
}

// testSpaceKey returns the space used for listing tests, skipping when unset.
func testSpaceKey(t *testing.T) string {
	t.Helper()
	key := os.Getenv("CONFLUENCE_TEST_SPACE_KEY")
	if key == "" {
		t.Skip("CONFLUENCE_TEST_SPACE_KEY not set")
	}
	return key
}
