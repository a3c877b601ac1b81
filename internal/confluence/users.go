package confluence

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// FindUser resolves a user identifier (username or email) to the id the
// restriction API expects. The username endpoint is tried first, then the
// site-wide user search. Returns an empty id when no user matches.
func (s *Service) FindUser(ctx context.Context, identifier string) (string, error) {
	if identifier == "" {
		return "", fmt.Errorf("confluence: user identifier required")
	}

	query := url.Values{}
	query.Set("username", identifier)

	req, err := s.client.NewRequest(ctx, http.MethodGet, apiPath("user"), query, nil)
	if err != nil {
		return "", err
	}

	var user User
	if err := s.client.Do(req, &user); err == nil {
		if id := user.identity(); id != "" {
			return id, nil
		}
	}

	query = url.Values{}
	query.Set("query", identifier)

	req, err = s.client.NewRequest(ctx, http.MethodGet, apiPath("search", "user"), query, nil)
	if err != nil {
		return "", err
	}

	var response struct {
		Results []User `json:"results"`
	}
	if err := s.client.Do(req, &response); err != nil {
		return "", err
	}

	if len(response.Results) == 0 {
		return "", nil
	}

	return response.Results[0].identity(), nil
}

// identity picks the strongest identifier a directory hands back.
func (u User) identity() string {
	switch {
	case u.AccountID != "":
		return u.AccountID
	case u.Username != "":
		return u.Username
	default:
		return u.UserKey
	}
}
