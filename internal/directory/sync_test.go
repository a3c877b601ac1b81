package directory

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSyncFullFlow(t *testing.T) {
	t.Parallel()

	var loginSeen, websudoSeen, syncSeen bool

	mux := http.NewServeMux()
	mux.HandleFunc("/rest/tsv/1.0/authenticate", func(w http.ResponseWriter, r *http.Request) {
		loginSeen = true
		if r.Method != http.MethodPost {
			t.Errorf("login method = %s", r.Method)
		}
		if r.URL.Query().Get("os_authType") != "none" {
			t.Errorf("login query = %v", r.URL.Query())
		}
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode login payload: %v", err)
		}
		if payload["username"] != "admin" || payload["password"] != "secret" {
			t.Errorf("unexpected login payload %v", payload)
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/doauthenticate.action", func(w http.ResponseWriter, r *http.Request) {
		websudoSeen = true
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse websudo form: %v", err)
		}
		if r.PostForm.Get("password") != "secret" {
			t.Errorf("websudo form = %v", r.PostForm)
		}
		if r.Header.Get("X-Atlassian-Token") != "no-check" {
			t.Errorf("missing XSRF bypass header")
		}
		io.WriteString(w, `<form><input type="hidden" name="atl_token" value="tok-123"></form>`)
	})
	mux.HandleFunc("/plugins/servlet/embedded-crowd/directories/sync", func(w http.ResponseWriter, r *http.Request) {
		syncSeen = true
		if r.URL.Query().Get("directoryId") != "10100" {
			t.Errorf("sync query = %v", r.URL.Query())
		}
		if r.URL.Query().Get("atl_token") != "tok-123" {
			t.Errorf("token not forwarded: %v", r.URL.Query())
		}
		w.WriteHeader(http.StatusFound)
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	client, err := NewClient(server.URL, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}

	err = client.Sync(context.Background(), SyncInput{
		Login:       "admin",
		Password:    "secret",
		DirectoryID: "10100",
	})
	if err != nil {
		t.Fatalf("Sync error: %v", err)
	}

	if !loginSeen || !websudoSeen || !syncSeen {
		t.Fatalf("flow incomplete: login=%v websudo=%v sync=%v", loginSeen, websudoSeen, syncSeen)
	}
}

func TestSyncMissingToken(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/rest/tsv/1.0/authenticate", func(w http.ResponseWriter, r *http.Request) {})
	mux.HandleFunc("/doauthenticate.action", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `<html>login form without a token</html>`)
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	client, err := NewClient(server.URL, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}

	err = client.Sync(context.Background(), SyncInput{Login: "admin", Password: "secret", DirectoryID: "1"})
	if err == nil || !strings.Contains(err.Error(), "atl_token not found") {
		t.Fatalf("expected token error, got %v", err)
	}
}

func TestSyncServletFailure(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/rest/tsv/1.0/authenticate", func(w http.ResponseWriter, r *http.Request) {})
	mux.HandleFunc("/doauthenticate.action", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `href="/admin?atl_token=tok-456"`)
	})
	mux.HandleFunc("/plugins/servlet/embedded-crowd/directories/sync", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		io.WriteString(w, "permission denied")
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	client, err := NewClient(server.URL, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}

	err = client.Sync(context.Background(), SyncInput{Login: "admin", Password: "secret", DirectoryID: "1"})
	if err == nil || !strings.Contains(err.Error(), "status 403") {
		t.Fatalf("expected servlet failure, got %v", err)
	}
	if !strings.Contains(err.Error(), "permission denied") {
		t.Fatalf("expected body excerpt in error, got %v", err)
	}
}

func TestSyncValidatesBeforeNetwork(t *testing.T) {
	t.Parallel()

	client, err := NewClient("https://example.atlassian.internal", slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}
	client.newSession = func() (*http.Client, error) {
		t.Fatal("session created for invalid input")
		return nil, nil
	}

	cases := []struct {
		name string
		in   SyncInput
	}{
		{name: "missing login", in: SyncInput{Password: "p", DirectoryID: "1"}},
		{name: "missing password", in: SyncInput{Login: "admin", DirectoryID: "1"}},
		{name: "missing directory", in: SyncInput{Login: "admin", Password: "p"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := client.Sync(context.Background(), tc.in); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	t.Parallel()

	if _, err := NewClient("", nil); err == nil {
		t.Fatal("expected error for empty base URL")
	}
}

func TestExtractToken(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		page string
		want string
	}{
		{
			name: "hidden form field",
			page: `<input type="hidden" name="atl_token" value="abc123">`,
			want: "abc123",
		},
		{
			name: "url parameter",
			page: `<a href="/sync?directoryId=1&atl_token=def456&next=x">sync</a>`,
			want: "def456",
		},
		{
			name: "form field wins over parameter",
			page: `href="?atl_token=param" <input name="atl_token" value="field">`,
			want: "field",
		},
		{
			name: "absent",
			page: `<html>nothing here</html>`,
			want: "",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := extractToken(tc.page); got != tc.want {
				t.Fatalf("extractToken() = %q, want %q", got, tc.want)
			}
		})
	}
}
