package confluence

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// OperationRestrictions lists the subjects restricted for one operation.
type OperationRestrictions struct {
	Users  []User  `json:"users"`
	Groups []Group `json:"groups"`
}

// Restrictions maps operation ("read", "update") to its restricted subjects.
type Restrictions map[string]OperationRestrictions

// restrictionsResponse is the byOperation wire format.
type restrictionsResponse map[string]struct {
	Operation    string `json:"operation"`
	Restrictions struct {
		User struct {
			Results []User `json:"results"`
		} `json:"user"`
		Group struct {
			Results []Group `json:"results"`
		} `json:"group"`
	} `json:"restrictions"`
}

// GetRestrictions retrieves the read and update restrictions of a page with
// users and groups expanded.
func (s *Service) GetRestrictions(ctx context.Context, pageID string) (Restrictions, error) {
	if pageID == "" {
		return nil, fmt.Errorf("confluence: page id required")
	}

	query := url.Values{}
	query.Set("expand", "read.restrictions.user,read.restrictions.group,update.restrictions.user,update.restrictions.group")

	req, err := s.client.NewRequest(ctx, http.MethodGet, apiPath("content", pageID, "restriction", "byOperation"), query, nil)
	if err != nil {
		return nil, err
	}

	var response restrictionsResponse
	if err := s.client.Do(req, &response); err != nil {
		return nil, err
	}

	restrictions := make(Restrictions)
	for _, op := range []Operation{OperationRead, OperationUpdate} {
		entry, ok := response[string(op)]
		if !ok {
			continue
		}
		restrictions[string(op)] = OperationRestrictions{
			Users:  append([]User(nil), entry.Restrictions.User.Results...),
			Groups: append([]Group(nil), entry.Restrictions.Group.Results...),
		}
	}

	return restrictions, nil
}

// AddRestrictionsInput describes which subjects to restrict on a page.
// PageTitle steers the permission mix: pages named Private or Shared get view
// and edit locked together for the update operation, everything else keeps
// viewing open and restricts editing only.
type AddRestrictionsInput struct {
	PageID    string
	PageTitle string
	Operation Operation
	Users     []string
	Groups    []string
}

// AddRestrictions sets content permissions through the Data Center legacy
// form endpoint. The REST restriction API is read-only on the DC line, so
// writes go through /pages/setcontentpermissions.action.
func (s *Service) AddRestrictions(ctx context.Context, in AddRestrictionsInput) error {
	if in.PageID == "" {
		return fmt.Errorf("confluence: page id required")
	}
	if !in.Operation.Valid() {
		return fmt.Errorf("confluence: operation must be %q or %q", OperationRead, OperationUpdate)
	}
	if len(in.Users) == 0 && len(in.Groups) == 0 {
		return fmt.Errorf("confluence: at least one user or group must be specified")
	}

	lockView := in.Operation == OperationRead
	lockEdit := in.Operation == OperationUpdate
	if lockEdit && (strings.Contains(in.PageTitle, "Private") || strings.Contains(in.PageTitle, "Shared")) {
		lockView = true
	}

	form := url.Values{}
	for _, user := range in.Users {
		if lockView {
			form.Add("viewPermissionsUserList", user)
		}
		if lockEdit {
			form.Add("editPermissionsUserList", user)
		}
	}
	for _, group := range in.Groups {
		if lockView {
			form.Add("viewPermissionsGroupList", group)
		}
		if lockEdit {
			form.Add("editPermissionsGroupList", group)
		}
	}
	form.Set("contentId", in.PageID)

	body := RawBody{
		Reader:      strings.NewReader(form.Encode()),
		ContentType: "application/x-www-form-urlencoded; charset=UTF-8",
	}

	req, err := s.client.NewRequest(ctx, http.MethodPost, "/pages/setcontentpermissions.action", nil, body)
	if err != nil {
		return err
	}
	req.Header.Set("X-Atlassian-Token", "no-check")

	text, err := s.client.DoText(req)
	if err != nil {
		return err
	}

	if !strings.Contains(strings.ToLower(text), "true") {
		return fmt.Errorf("confluence: set content permissions returned unexpected response: %s", truncate(text, 200))
	}

	return nil
}

// RemoveRestrictions deletes the named restriction operation from a page.
// Removing an operation that holds no restrictions is not an error.
func (s *Service) RemoveRestrictions(ctx context.Context, pageID string, op Operation) error {
	if pageID == "" {
		return fmt.Errorf("confluence: page id required")
	}
	if !op.Valid() {
		return fmt.Errorf("confluence: operation must be %q or %q", OperationRead, OperationUpdate)
	}

	req, err := s.client.NewRequest(ctx, http.MethodDelete, apiPath("content", pageID, "restriction", "byOperation", string(op)), nil, nil)
	if err != nil {
		return err
	}

	if err := s.client.Do(req, nil); err != nil {
		if IsNotFound(err) {
			return nil
		}
		return err
	}

	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
