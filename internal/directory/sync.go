// Package directory triggers user-directory synchronization on a Confluence
// Data Center instance. There is no REST surface for this; the flow drives
// the same admin screens a browser would: log in, pass the websudo check,
// scrape the form token, and hit the embedded-crowd sync servlet.
package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"regexp"
	"strings"
	"time"

	"log/slog"
)

const (
	loginPath   = "/rest/tsv/1.0/authenticate"
	websudoPath = "/doauthenticate.action"
	syncPath    = "/plugins/servlet/embedded-crowd/directories/sync"
)

var (
	atlTokenAttr  = regexp.MustCompile(`name="atl_token"\s+value="([^"]+)"`)
	atlTokenParam = regexp.MustCompile(`atl_token=([^&"\s]+)`)
)

// Client runs directory sync sessions against a Confluence base URL.
type Client struct {
	baseURL string
	logger  *slog.Logger

	// newSession builds the per-sync HTTP client. Overridable in tests.
	newSession func() (*http.Client, error)
}

// NewClient constructs a directory sync client.
func NewClient(base string, logger *slog.Logger) (*Client, error) {
	if base == "" {
		return nil, fmt.Errorf("directory: base URL required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    strings.TrimRight(base, "/"),
		logger:     logger,
		newSession: newSessionClient,
	}, nil
}

// newSessionClient returns an HTTP client with a fresh cookie jar. Each sync
// gets its own session so admin cookies never outlive the call.
func newSessionClient() (*http.Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("directory: cookie jar: %w", err)
	}
	return &http.Client{
		Jar:     jar,
		Timeout: 60 * time.Second,
	}, nil
}

// SyncInput carries the admin credentials and target directory.
type SyncInput struct {
	Login       string
	Password    string
	DirectoryID string
}

func (in SyncInput) validate() error {
	if in.Login == "" || in.Password == "" {
		return fmt.Errorf("directory: admin login and password required")
	}
	if in.DirectoryID == "" {
		return fmt.Errorf("directory: directory id required")
	}
	return nil
}

// Sync triggers a synchronization of the given user directory. Input is
// validated before any network traffic.
func (c *Client) Sync(ctx context.Context, in SyncInput) error {
	if err := in.validate(); err != nil {
		return err
	}

	session, err := c.newSession()
	if err != nil {
		return err
	}

	if err := c.login(ctx, session, in); err != nil {
		return err
	}

	token, err := c.websudo(ctx, session, in)
	if err != nil {
		return err
	}

	return c.triggerSync(ctx, session, in.DirectoryID, token)
}

func (c *Client) login(ctx context.Context, session *http.Client, in SyncInput) error {
	payload := map[string]any{
		"username":   in.Login,
		"password":   in.Password,
		"rememberMe": true,
		"targetUrl":  "",
		"captchaId":  "",
	}

	body := new(bytes.Buffer)
	if err := json.NewEncoder(body).Encode(payload); err != nil {
		return fmt.Errorf("directory: encode login: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+loginPath+"?os_authType=none", body)
	if err != nil {
		return fmt.Errorf("directory: login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := session.Do(req)
	if err != nil {
		return fmt.Errorf("directory: login failed: %w", err)
	}
	defer res.Body.Close()
	io.Copy(io.Discard, res.Body)

	c.logger.Debug("directory login completed", slog.Int("status", res.StatusCode))
	return nil
}

func (c *Client) websudo(ctx context.Context, session *http.Client, in SyncInput) (string, error) {
	form := url.Values{}
	form.Set("password", in.Password)
	form.Set("authenticate", "Confirm")
	form.Set("destination", "/plugins/servlet/embedded-crowd/directories/list")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+websudoPath, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("directory: websudo request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Atlassian-Token", "no-check")

	res, err := session.Do(req)
	if err != nil {
		return "", fmt.Errorf("directory: websudo failed: %w", err)
	}
	defer res.Body.Close()

	page, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("directory: read websudo response: %w", err)
	}

	token := extractToken(string(page))
	if token == "" {
		return "", fmt.Errorf("directory: atl_token not found in response; authentication may have failed or the user lacks admin permissions")
	}

	return token, nil
}

// extractToken pulls the XSRF token out of the admin page HTML, accepting
// both the form-field and URL-parameter spellings.
func extractToken(page string) string {
	if m := atlTokenAttr.FindStringSubmatch(page); m != nil {
		return m[1]
	}
	if m := atlTokenParam.FindStringSubmatch(page); m != nil {
		return m[1]
	}
	return ""
}

func (c *Client) triggerSync(ctx context.Context, session *http.Client, directoryID, token string) error {
	params := url.Values{}
	params.Set("directoryId", directoryID)
	params.Set("atl_token", token)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+syncPath+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("directory: sync request: %w", err)
	}
	req.Header.Set("X-Atlassian-Token", "no-check")

	res, err := session.Do(req)
	if err != nil {
		return fmt.Errorf("directory: trigger sync: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK && res.StatusCode != http.StatusFound {
		page, _ := io.ReadAll(io.LimitReader(res.Body, 200))
		return fmt.Errorf("directory: sync returned status %d: %s", res.StatusCode, string(page))
	}

	c.logger.Info("directory sync triggered", slog.String("directory_id", directoryID))
	return nil
}
