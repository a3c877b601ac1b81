package confluence

import (
	"context"
	"fmt"
	"strings"
)

const apiPrefix = "/rest/api"

// Operation is a restriction operation type.
type Operation string

// Restriction operations supported by the content restriction API.
const (
	OperationRead   Operation = "read"
	OperationUpdate Operation = "update"
)

// Valid reports whether the operation is one the restriction API accepts.
func (o Operation) Valid() bool {
	return o == OperationRead || o == OperationUpdate
}

// Service exposes the Confluence REST endpoints used by the MCP server.
type Service struct {
	client *Client
}

// NewService constructs a Confluence service.
func NewService(client *Client) *Service {
	return &Service{client: client}
}

// PageRef identifies a page either directly by id or by title within a space.
// Exactly one of ID and Title must be set; Title requires SpaceKey.
type PageRef struct {
	ID       string
	Title    string
	SpaceKey string
}

// Validate checks the reference before any lookup takes place.
func (r PageRef) Validate() error {
	if r.ID != "" && r.Title != "" {
		return fmt.Errorf("confluence: cannot specify both page id and page title")
	}
	if r.ID == "" && r.Title == "" {
		return fmt.Errorf("confluence: must specify either page id or page title")
	}
	if r.Title != "" && r.SpaceKey == "" {
		return fmt.Errorf("confluence: space key is required when using page title")
	}
	return nil
}

// ResolvePage turns a PageRef into a concrete page id and title. When only an
// id is given the title is fetched best-effort; a failed title lookup is not
// an error.
func (s *Service) ResolvePage(ctx context.Context, ref PageRef) (id, title string, err error) {
	if err := ref.Validate(); err != nil {
		return "", "", err
	}

	if ref.Title != "" {
		id, err := s.FindPageByTitle(ctx, ref.SpaceKey, ref.Title)
		if err != nil {
			return "", "", err
		}
		if id == "" {
			return "", "", fmt.Errorf("confluence: page with title %q not found in space %q", ref.Title, ref.SpaceKey)
		}
		return id, ref.Title, nil
	}

	page, err := s.GetPage(ctx, ref.ID)
	if err != nil {
		return ref.ID, "", nil
	}
	return ref.ID, page.Title, nil
}

func apiPath(parts ...string) string {
	builder := strings.Builder{}
	builder.WriteString(strings.TrimRight(apiPrefix, "/"))

	for _, part := range parts {
		if trimmed := strings.Trim(part, "/"); trimmed != "" {
			builder.WriteByte('/')
			builder.WriteString(trimmed)
		}
	}

	return builder.String()
}
