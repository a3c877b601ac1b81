package confluence

import (
	"context"
	"net/http"
	"strings"
	"testing"
)

func TestFindUserByUsername(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		if !strings.HasSuffix(r.URL.Path, "/rest/api/user") {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("username") != "alice" {
			t.Fatalf("unexpected query %v", r.URL.Query())
		}
		return jsonResponse(t, http.StatusOK, map[string]any{
			"username":    "alice",
			"userKey":     "8a7f",
			"displayName": "Alice",
		}), nil
	})

	svc := NewService(client)
	id, err := svc.FindUser(context.Background(), "alice")
	if err != nil {
		t.Fatalf("FindUser error: %v", err)
	}
	if id != "alice" {
		t.Fatalf("unexpected id %q", id)
	}
}

func TestFindUserFallsBackToSearch(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		if strings.HasSuffix(r.URL.Path, "/rest/api/user") {
			return textResponse(http.StatusNotFound, `{"statusCode":404,"message":"no such user"}`), nil
		}
		if !strings.HasSuffix(r.URL.Path, "/rest/api/search/user") {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("query") != "alice@example.com" {
			t.Fatalf("unexpected query %v", r.URL.Query())
		}
		return jsonResponse(t, http.StatusOK, map[string]any{
			"results": []map[string]any{{"accountId": "acc-1", "displayName": "Alice"}},
		}), nil
	})

	svc := NewService(client)
	id, err := svc.FindUser(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("FindUser error: %v", err)
	}
	if id != "acc-1" {
		t.Fatalf("unexpected id %q", id)
	}
}

func TestFindUserNoMatch(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(r *http.Request) (*http.Response, error) {
		if strings.HasSuffix(r.URL.Path, "/rest/api/user") {
			return textResponse(http.StatusNotFound, `{"statusCode":404}`), nil
		}
		return jsonResponse(t, http.StatusOK, map[string]any{"results": []map[string]any{}}), nil
	})

	svc := NewService(client)
	id, err := svc.FindUser(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("FindUser error: %v", err)
	}
	if id != "" {
		t.Fatalf("expected empty id, got %q", id)
	}
}

func TestUserIdentityPreference(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		user User
		want string
	}{
		{name: "account id wins", user: User{AccountID: "acc", Username: "u", UserKey: "k"}, want: "acc"},
		{name: "username next", user: User{Username: "u", UserKey: "k"}, want: "u"},
		{name: "user key last", user: User{UserKey: "k"}, want: "k"},
		{name: "nothing", user: User{}, want: ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := tc.user.identity(); got != tc.want {
				t.Fatalf("identity() = %q, want %q", got, tc.want)
			}
		})
	}
}
