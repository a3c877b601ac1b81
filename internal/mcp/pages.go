package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/dt-pm-tools/confluence-dc-mcp/internal/confluence"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Default expands match what the page listing tools report per page.
const (
	defaultSpacePagesExpand = "version,space,history,body.storage"
	defaultChildPagesExpand = "version,space,history"
)

const contentPreviewLength = 200

// ContentTools wires the Confluence content service into MCP tools.
type ContentTools struct {
	service *confluence.Service
	baseURL string
}

// NewContentTools registers the page and restriction tools on the server.
func NewContentTools(s *server.MCPServer, service *confluence.Service, baseURL string) *ContentTools {
	ct := &ContentTools{
		service: service,
		baseURL: strings.TrimRight(baseURL, "/"),
	}

	s.AddTool(
		mcp.NewTool(
			"confluence_create_page",
			mcp.WithDescription("Create a Confluence page with plain text or HTML content"),
			mcp.WithTitleAnnotation("Create Confluence Page"),
			mcp.WithReadOnlyHintAnnotation(false),
			mcp.WithDestructiveHintAnnotation(false),
			mcp.WithIdempotentHintAnnotation(false),
			mcp.WithOpenWorldHintAnnotation(true),
			mcp.WithInputSchema[CreatePageArgs](),
			mcp.WithOutputSchema[CreatePageResult](),
		),
		mcp.NewTypedToolHandler(ct.handleCreatePage),
	)

	s.AddTool(
		mcp.NewTool(
			"confluence_get_space_pages",
			mcp.WithDescription("List pages in a Confluence space with optional title filtering and pagination"),
			mcp.WithTitleAnnotation("Get Pages in Space"),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithDestructiveHintAnnotation(false),
			mcp.WithIdempotentHintAnnotation(true),
			mcp.WithOpenWorldHintAnnotation(false),
			mcp.WithInputSchema[SpacePagesArgs](),
			mcp.WithOutputSchema[SpacePagesResult](),
		),
		mcp.NewTypedToolHandler(ct.handleSpacePages),
	)

	s.AddTool(
		mcp.NewTool(
			"confluence_get_child_pages",
			mcp.WithDescription("List the child pages of a Confluence page"),
			mcp.WithTitleAnnotation("Get Child Pages"),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithDestructiveHintAnnotation(false),
			mcp.WithIdempotentHintAnnotation(true),
			mcp.WithOpenWorldHintAnnotation(false),
			mcp.WithInputSchema[ChildPagesArgs](),
			mcp.WithOutputSchema[ChildPagesResult](),
		),
		mcp.NewTypedToolHandler(ct.handleChildPages),
	)

	ct.registerRestrictionTools(s)

	return ct
}

// CreatePageArgs parameters for page creation.
type CreatePageArgs struct {
	SpaceKey      string `json:"space_key" jsonschema:"required" jsonschema_description:"Space key where the page will be created"`
	Title         string `json:"title" jsonschema:"required" jsonschema_description:"Page title"`
	Content       string `json:"content" jsonschema:"required" jsonschema_description:"Page content, plain text or HTML"`
	ParentID      string `json:"parent_id,omitempty" jsonschema_description:"Parent page ID for nested pages"`
	ParentTitle   string `json:"parent_title,omitempty" jsonschema_description:"Parent page title (alternative to parent_id)"`
	EditorVersion string `json:"editor_version,omitempty" jsonschema:"enum=v1,enum=v2" jsonschema_description:"Confluence editor version, v1 or v2 (default v2)"`
}

// CreatePageResult response for page creation.
type CreatePageResult struct {
	PageID   string `json:"page_id"`
	PageURL  string `json:"page_url"`
	Title    string `json:"title"`
	SpaceKey string `json:"space_key"`
	Message  string `json:"message"`
}

func (c *ContentTools) handleCreatePage(ctx context.Context, _ mcp.CallToolRequest, args CreatePageArgs) (*mcp.CallToolResult, error) {
	if strings.TrimSpace(args.SpaceKey) == "" {
		return mcp.NewToolResultError("space_key must not be empty"), nil
	}
	if strings.TrimSpace(args.Title) == "" {
		return mcp.NewToolResultError("title must not be empty"), nil
	}
	if args.Content == "" {
		return mcp.NewToolResultError("content must not be empty"), nil
	}
	if args.ParentID != "" && args.ParentTitle != "" {
		return mcp.NewToolResultError("cannot specify both parent_id and parent_title"), nil
	}

	editor := confluence.EditorVersion(args.EditorVersion)
	if editor == "" {
		editor = confluence.EditorV2
	}
	if editor != confluence.EditorV1 && editor != confluence.EditorV2 {
		return mcp.NewToolResultError("editor_version must be v1 or v2"), nil
	}

	created, err := c.service.CreatePage(ctx, confluence.CreatePageInput{
		SpaceKey:      args.SpaceKey,
		Title:         args.Title,
		Content:       args.Content,
		ParentID:      args.ParentID,
		ParentTitle:   args.ParentTitle,
		EditorVersion: editor,
	})
	if err != nil {
		return mcp.NewToolResultErrorFromErr("confluence create page failed", err), nil
	}

	result := CreatePageResult{
		PageID:   created.ID,
		PageURL:  c.pageURL(created.Links, created.ID),
		Title:    args.Title,
		SpaceKey: args.SpaceKey,
		Message:  fmt.Sprintf("Page %q created successfully", args.Title),
	}

	fallback := fmt.Sprintf("Created Confluence page %s (id %s)", args.Title, created.ID)
	return mcp.NewToolResultStructured(result, fallback), nil
}

// SpacePagesArgs parameters for listing pages of a space.
type SpacePagesArgs struct {
	SpaceKey string `json:"space_key" jsonschema:"required" jsonschema_description:"Space key to list pages from"`
	Title    string `json:"title,omitempty" jsonschema_description:"Title filter for searching specific pages"`
	Limit    int    `json:"limit,omitempty" jsonschema:"minimum=1,maximum=100" jsonschema_description:"Maximum results to return (default 25)"`
	Start    int    `json:"start,omitempty" jsonschema:"minimum=0" jsonschema_description:"Starting index for pagination"`
	Expand   string `json:"expand,omitempty" jsonschema_description:"Comma-separated properties to expand"`
}

// PageVersion summarises version metadata of a listed page.
type PageVersion struct {
	Number int    `json:"number"`
	When   string `json:"when,omitempty"`
	By     string `json:"by,omitempty"`
}

// PageSpace summarises the space of a listed page.
type PageSpace struct {
	Key  string `json:"key"`
	Name string `json:"name,omitempty"`
}

// PageSummary is the per-page payload of the listing tools.
type PageSummary struct {
	ID             string       `json:"id"`
	Title          string       `json:"title"`
	Type           string       `json:"type"`
	Status         string       `json:"status"`
	URL            string       `json:"url"`
	Version        *PageVersion `json:"version,omitempty"`
	Space          *PageSpace   `json:"space,omitempty"`
	CreatedDate    string       `json:"created_date,omitempty"`
	CreatedBy      string       `json:"created_by,omitempty"`
	ContentPreview string       `json:"content_preview,omitempty"`
	ContentLength  int          `json:"content_length,omitempty"`
}

// SpacePagesResult response for the space listing tool.
type SpacePagesResult struct {
	SpaceKey      string        `json:"space_key"`
	TotalCount    int           `json:"total_count"`
	ReturnedCount int           `json:"returned_count"`
	Start         int           `json:"start"`
	Limit         int           `json:"limit"`
	Pages         []PageSummary `json:"pages"`
	HasMore       bool          `json:"has_more"`
	NextStart     int           `json:"next_start,omitempty"`
}

func (c *ContentTools) handleSpacePages(ctx context.Context, _ mcp.CallToolRequest, args SpacePagesArgs) (*mcp.CallToolResult, error) {
	if strings.TrimSpace(args.SpaceKey) == "" {
		return mcp.NewToolResultError("space_key must not be empty"), nil
	}

	limit := args.Limit
	if limit <= 0 {
		limit = 25
	}

	expand := args.Expand
	if expand == "" {
		expand = defaultSpacePagesExpand
	}

	listing, err := c.service.SpacePages(ctx, confluence.SpacePagesQuery{
		SpaceKey: args.SpaceKey,
		Title:    args.Title,
		Limit:    limit,
		Start:    args.Start,
		Expand:   expand,
	})
	if err != nil {
		return mcp.NewToolResultErrorFromErr("confluence get space pages failed", err), nil
	}

	result := SpacePagesResult{
		SpaceKey:      args.SpaceKey,
		TotalCount:    listing.Size,
		ReturnedCount: len(listing.Results),
		Start:         args.Start,
		Limit:         limit,
		Pages:         c.summarize(listing.Results),
		HasMore:       listing.Links.Next != "",
	}
	if result.HasMore {
		result.NextStart = args.Start + limit
	}

	fallback := fmt.Sprintf("Found %d pages in space %s", result.ReturnedCount, args.SpaceKey)
	return mcp.NewToolResultStructured(result, fallback), nil
}

// ChildPagesArgs parameters for listing child pages.
type ChildPagesArgs struct {
	PageID    string `json:"page_id,omitempty" jsonschema_description:"ID of the parent page"`
	PageTitle string `json:"page_title,omitempty" jsonschema_description:"Title of the parent page (alternative to page_id)"`
	SpaceKey  string `json:"space_key,omitempty" jsonschema_description:"Space key, required when using page_title"`
	Limit     int    `json:"limit,omitempty" jsonschema:"minimum=1,maximum=100" jsonschema_description:"Maximum results to return (default 25)"`
	Start     int    `json:"start,omitempty" jsonschema:"minimum=0" jsonschema_description:"Starting index for pagination"`
	Expand    string `json:"expand,omitempty" jsonschema_description:"Comma-separated properties to expand"`
}

// ChildPagesResult response for the child listing tool.
type ChildPagesResult struct {
	ParentPageID    string        `json:"parent_page_id"`
	ParentPageTitle string        `json:"parent_page_title,omitempty"`
	TotalCount      int           `json:"total_count"`
	ReturnedCount   int           `json:"returned_count"`
	Start           int           `json:"start"`
	Limit           int           `json:"limit"`
	ChildPages      []PageSummary `json:"child_pages"`
	HasMore         bool          `json:"has_more"`
	NextStart       int           `json:"next_start,omitempty"`
}

func (c *ContentTools) handleChildPages(ctx context.Context, _ mcp.CallToolRequest, args ChildPagesArgs) (*mcp.CallToolResult, error) {
	ref := confluence.PageRef{ID: args.PageID, Title: args.PageTitle, SpaceKey: args.SpaceKey}
	if err := ref.Validate(); err != nil {
		return mcp.NewToolResultErrorFromErr("invalid parent page reference", err), nil
	}

	parentID, parentTitle, err := c.service.ResolvePage(ctx, ref)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("confluence resolve parent page failed", err), nil
	}

	limit := args.Limit
	if limit <= 0 {
		limit = 25
	}

	expand := args.Expand
	if expand == "" {
		expand = defaultChildPagesExpand
	}

	listing, err := c.service.ChildPages(ctx, parentID, confluence.ChildPagesQuery{
		Limit:  limit,
		Start:  args.Start,
		Expand: expand,
	})
	if err != nil {
		return mcp.NewToolResultErrorFromErr("confluence get child pages failed", err), nil
	}

	result := ChildPagesResult{
		ParentPageID:    parentID,
		ParentPageTitle: parentTitle,
		TotalCount:      listing.Size,
		ReturnedCount:   len(listing.Results),
		Start:           args.Start,
		Limit:           limit,
		ChildPages:      c.summarize(listing.Results),
		HasMore:         listing.Links.Next != "",
	}
	if result.HasMore {
		result.NextStart = args.Start + limit
	}

	fallback := fmt.Sprintf("Found %d child pages under %s", result.ReturnedCount, parentID)
	return mcp.NewToolResultStructured(result, fallback), nil
}

func (c *ContentTools) summarize(pages []confluence.Content) []PageSummary {
	summaries := make([]PageSummary, 0, len(pages))
	for _, page := range pages {
		summary := PageSummary{
			ID:     page.ID,
			Title:  page.Title,
			Type:   page.Type,
			Status: page.Status,
			URL:    c.pageURL(page.Links, page.ID),
		}

		if page.Version != nil {
			summary.Version = &PageVersion{
				Number: page.Version.Number,
				When:   page.Version.When,
				By:     page.Version.By.DisplayName,
			}
		}

		if page.Space != nil {
			summary.Space = &PageSpace{Key: page.Space.Key, Name: page.Space.Name}
		}

		if page.History != nil {
			summary.CreatedDate = page.History.CreatedDate
			summary.CreatedBy = page.History.CreatedBy.DisplayName
		}

		if page.Body != nil {
			content := page.Body.Storage.Value
			if len(content) > contentPreviewLength {
				summary.ContentPreview = content[:contentPreviewLength] + "..."
			} else {
				summary.ContentPreview = content
			}
			summary.ContentLength = len(content)
		}

		summaries = append(summaries, summary)
	}
	return summaries
}

// pageURL prefers the page's own webui link and falls back to the classic
// viewpage action.
func (c *ContentTools) pageURL(links confluence.Links, id string) string {
	if links.WebUI != "" {
		return c.baseURL + links.WebUI
	}
	return fmt.Sprintf("%s/pages/viewpage.action?pageId=%s", c.baseURL, id)
}
