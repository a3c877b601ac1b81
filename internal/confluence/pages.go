package confluence

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// EditorVersion selects the Confluence editor a new page is created for.
type EditorVersion string

// Supported editor versions.
const (
	EditorV1 EditorVersion = "v1"
	EditorV2 EditorVersion = "v2"
)

// CreatePageInput describes a page creation request.
type CreatePageInput struct {
	SpaceKey      string
	Title         string
	Content       string
	ParentID      string
	ParentTitle   string
	EditorVersion EditorVersion
}

func (in CreatePageInput) validate() error {
	if in.SpaceKey == "" {
		return fmt.Errorf("confluence: space key required")
	}
	if in.Title == "" {
		return fmt.Errorf("confluence: title required")
	}
	if in.Content == "" {
		return fmt.Errorf("confluence: content required")
	}
	if in.ParentID != "" && in.ParentTitle != "" {
		return fmt.Errorf("confluence: cannot specify both parent id and parent title")
	}
	return nil
}

// blockTags are the markers that flag content as already being HTML.
var blockTags = []string{"<p>", "<h1>", "<h2>", "<h3>", "<div>", "<table>"}

// prepareStorage converts the supplied content into storage format. Plain
// text is wrapped in a paragraph; anything containing a block-level tag is
// passed through verbatim.
func prepareStorage(content string) string {
	lower := strings.ToLower(content)
	for _, tag := range blockTags {
		if strings.Contains(lower, tag) {
			return content
		}
	}
	return "<p>" + content + "</p>"
}

// CreatePage creates a Confluence page in storage representation. A parent
// given by title is resolved within the target space first.
func (s *Service) CreatePage(ctx context.Context, in CreatePageInput) (*Content, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	parentID := in.ParentID
	if in.ParentTitle != "" {
		id, err := s.FindPageByTitle(ctx, in.SpaceKey, in.ParentTitle)
		if err != nil {
			return nil, err
		}
		if id == "" {
			return nil, fmt.Errorf("confluence: parent page with title %q not found in space %q", in.ParentTitle, in.SpaceKey)
		}
		parentID = id
	}

	payload := map[string]any{
		"type":  "page",
		"title": in.Title,
		"space": map[string]string{
			"key": in.SpaceKey,
		},
		"body": map[string]any{
			"storage": map[string]string{
				"value":          prepareStorage(in.Content),
				"representation": "storage",
			},
		},
	}

	if parentID != "" {
		payload["ancestors"] = []map[string]string{
			{"id": parentID},
		}
	}

	if in.EditorVersion == EditorV2 {
		payload["metadata"] = map[string]any{
			"properties": map[string]any{
				"editor": map[string]string{"value": "v2"},
			},
		}
	}

	req, err := s.client.NewRequest(ctx, http.MethodPost, apiPath("content"), nil, payload)
	if err != nil {
		return nil, err
	}

	var created Content
	if err := s.client.Do(req, &created); err != nil {
		return nil, err
	}

	return &created, nil
}

// GetPage fetches a single content entity by id.
func (s *Service) GetPage(ctx context.Context, id string) (*Content, error) {
	if id == "" {
		return nil, fmt.Errorf("confluence: page id required")
	}

	req, err := s.client.NewRequest(ctx, http.MethodGet, apiPath("content", id), nil, nil)
	if err != nil {
		return nil, err
	}

	var page Content
	if err := s.client.Do(req, &page); err != nil {
		return nil, err
	}

	return &page, nil
}

// FindPageByTitle looks up a page id by exact title within a space. Returns
// an empty id when no page matches.
func (s *Service) FindPageByTitle(ctx context.Context, spaceKey, title string) (string, error) {
	if spaceKey == "" {
		return "", fmt.Errorf("confluence: space key required")
	}
	if title == "" {
		return "", fmt.Errorf("confluence: title required")
	}

	query := url.Values{}
	query.Set("spaceKey", spaceKey)
	query.Set("title", title)
	query.Set("type", "page")
	query.Set("limit", "1")

	req, err := s.client.NewRequest(ctx, http.MethodGet, apiPath("content"), query, nil)
	if err != nil {
		return "", err
	}

	var listing ContentPage
	if err := s.client.Do(req, &listing); err != nil {
		return "", err
	}

	if len(listing.Results) == 0 {
		return "", nil
	}

	return listing.Results[0].ID, nil
}
