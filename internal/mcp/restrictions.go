package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/dt-pm-tools/confluence-dc-mcp/internal/confluence"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func (c *ContentTools) registerRestrictionTools(s *server.MCPServer) {
	s.AddTool(
		mcp.NewTool(
			"confluence_add_restrictions",
			mcp.WithDescription("Add read or edit restrictions for users and groups on a Confluence page"),
			mcp.WithTitleAnnotation("Add Page Restrictions"),
			mcp.WithReadOnlyHintAnnotation(false),
			mcp.WithDestructiveHintAnnotation(false),
			mcp.WithIdempotentHintAnnotation(true),
			mcp.WithOpenWorldHintAnnotation(true),
			mcp.WithInputSchema[AddRestrictionsArgs](),
			mcp.WithOutputSchema[AddRestrictionsResult](),
		),
		mcp.NewTypedToolHandler(c.handleAddRestrictions),
	)

	s.AddTool(
		mcp.NewTool(
			"confluence_get_restrictions",
			mcp.WithDescription("Get the current read and edit restrictions of a Confluence page"),
			mcp.WithTitleAnnotation("Get Page Restrictions"),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithDestructiveHintAnnotation(false),
			mcp.WithIdempotentHintAnnotation(true),
			mcp.WithOpenWorldHintAnnotation(false),
			mcp.WithInputSchema[GetRestrictionsArgs](),
			mcp.WithOutputSchema[GetRestrictionsResult](),
		),
		mcp.NewTypedToolHandler(c.handleGetRestrictions),
	)

	s.AddTool(
		mcp.NewTool(
			"confluence_remove_restrictions",
			mcp.WithDescription("Remove read and/or edit restrictions from a Confluence page"),
			mcp.WithTitleAnnotation("Remove Page Restrictions"),
			mcp.WithReadOnlyHintAnnotation(false),
			mcp.WithDestructiveHintAnnotation(true),
			mcp.WithIdempotentHintAnnotation(true),
			mcp.WithOpenWorldHintAnnotation(true),
			mcp.WithInputSchema[RemoveRestrictionsArgs](),
			mcp.WithOutputSchema[RemoveRestrictionsResult](),
		),
		mcp.NewTypedToolHandler(c.handleRemoveRestrictions),
	)
}

// AddRestrictionsArgs parameters for adding restrictions.
type AddRestrictionsArgs struct {
	PageID          string   `json:"page_id,omitempty" jsonschema_description:"ID of the page to restrict"`
	PageTitle       string   `json:"page_title,omitempty" jsonschema_description:"Title of the page to restrict (alternative to page_id)"`
	SpaceKey        string   `json:"space_key,omitempty" jsonschema_description:"Space key, required when using page_title"`
	Operation       string   `json:"operation" jsonschema:"required,enum=read,enum=update" jsonschema_description:"Restriction type: read for viewing, update for editing"`
	UserAccountIDs  []string `json:"user_account_ids,omitempty" jsonschema_description:"User account IDs to restrict to"`
	UserIdentifiers []string `json:"user_identifiers,omitempty" jsonschema_description:"Usernames or emails, resolved via user search"`
	GroupIDs        []string `json:"group_ids,omitempty" jsonschema_description:"Group IDs to restrict to"`
	GroupNames      []string `json:"group_names,omitempty" jsonschema_description:"Group names to restrict to"`
}

// AddRestrictionsResult response for the add tool.
type AddRestrictionsResult struct {
	PageID      string `json:"page_id"`
	Operation   string `json:"operation"`
	UsersAdded  int    `json:"users_added"`
	GroupsAdded int    `json:"groups_added"`
	Message     string `json:"message"`
}

func (c *ContentTools) handleAddRestrictions(ctx context.Context, _ mcp.CallToolRequest, args AddRestrictionsArgs) (*mcp.CallToolResult, error) {
	op := confluence.Operation(args.Operation)
	if !op.Valid() {
		return mcp.NewToolResultError("operation must be read or update"), nil
	}
	if len(args.UserAccountIDs) == 0 && len(args.UserIdentifiers) == 0 && len(args.GroupIDs) == 0 && len(args.GroupNames) == 0 {
		return mcp.NewToolResultError("at least one user or group must be specified"), nil
	}

	ref := confluence.PageRef{ID: args.PageID, Title: args.PageTitle, SpaceKey: args.SpaceKey}
	if err := ref.Validate(); err != nil {
		return mcp.NewToolResultErrorFromErr("invalid page reference", err), nil
	}

	pageID, pageTitle, err := c.service.ResolvePage(ctx, ref)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("confluence resolve page failed", err), nil
	}

	users := append([]string(nil), args.UserAccountIDs...)
	for _, identifier := range args.UserIdentifiers {
		id, err := c.service.FindUser(ctx, identifier)
		if err != nil {
			return mcp.NewToolResultErrorFromErr(fmt.Sprintf("confluence lookup of user %q failed", identifier), err), nil
		}
		if id == "" {
			return mcp.NewToolResultError(fmt.Sprintf("user %q not found", identifier)), nil
		}
		users = append(users, id)
	}

	// The Data Center legacy API accepts group names directly as ids.
	groups := append([]string(nil), args.GroupIDs...)
	groups = append(groups, args.GroupNames...)

	err = c.service.AddRestrictions(ctx, confluence.AddRestrictionsInput{
		PageID:    pageID,
		PageTitle: pageTitle,
		Operation: op,
		Users:     users,
		Groups:    groups,
	})
	if err != nil {
		return mcp.NewToolResultErrorFromErr("confluence add restrictions failed", err), nil
	}

	result := AddRestrictionsResult{
		PageID:      pageID,
		Operation:   string(op),
		UsersAdded:  len(users),
		GroupsAdded: len(groups),
		Message:     fmt.Sprintf("Added %s restrictions: %d users, %d groups", op, len(users), len(groups)),
	}

	return mcp.NewToolResultStructured(result, result.Message), nil
}

// GetRestrictionsArgs parameters for reading restrictions.
type GetRestrictionsArgs struct {
	PageID string `json:"page_id" jsonschema:"required" jsonschema_description:"ID of the page to get restrictions for"`
}

// RestrictedUser is one user entry in a restriction listing.
type RestrictedUser struct {
	AccountID   string `json:"account_id,omitempty"`
	Username    string `json:"username,omitempty"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email,omitempty"`
}

// RestrictedGroup is one group entry in a restriction listing.
type RestrictedGroup struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// OperationRestrictions groups the subjects of one operation.
type OperationRestrictions struct {
	Users  []RestrictedUser  `json:"users"`
	Groups []RestrictedGroup `json:"groups"`
}

// GetRestrictionsResult response for the get tool.
type GetRestrictionsResult struct {
	PageID       string                           `json:"page_id"`
	Restrictions map[string]OperationRestrictions `json:"restrictions"`
}

func (c *ContentTools) handleGetRestrictions(ctx context.Context, _ mcp.CallToolRequest, args GetRestrictionsArgs) (*mcp.CallToolResult, error) {
	if strings.TrimSpace(args.PageID) == "" {
		return mcp.NewToolResultError("page_id must not be empty"), nil
	}

	restrictions, err := c.service.GetRestrictions(ctx, args.PageID)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("confluence get restrictions failed", err), nil
	}

	result := GetRestrictionsResult{
		PageID:       args.PageID,
		Restrictions: make(map[string]OperationRestrictions, len(restrictions)),
	}

	total := 0
	for op, entry := range restrictions {
		shaped := OperationRestrictions{
			Users:  make([]RestrictedUser, 0, len(entry.Users)),
			Groups: make([]RestrictedGroup, 0, len(entry.Groups)),
		}
		for _, user := range entry.Users {
			displayName := user.DisplayName
			if displayName == "" {
				displayName = user.PublicName
			}
			shaped.Users = append(shaped.Users, RestrictedUser{
				AccountID:   user.AccountID,
				Username:    user.Username,
				DisplayName: displayName,
				Email:       user.Email,
			})
		}
		for _, group := range entry.Groups {
			shaped.Groups = append(shaped.Groups, RestrictedGroup{ID: group.ID, Name: group.Name})
		}
		result.Restrictions[op] = shaped
		total += len(shaped.Users) + len(shaped.Groups)
	}

	fallback := fmt.Sprintf("Page %s has %d restriction entries", args.PageID, total)
	return mcp.NewToolResultStructured(result, fallback), nil
}

// RemoveRestrictionsArgs parameters for removing restrictions.
type RemoveRestrictionsArgs struct {
	PageID    string `json:"page_id,omitempty" jsonschema_description:"ID of the page to remove restrictions from"`
	PageTitle string `json:"page_title,omitempty" jsonschema_description:"Title of the page (alternative to page_id)"`
	SpaceKey  string `json:"space_key,omitempty" jsonschema_description:"Space key, required when using page_title"`
	Operation string `json:"operation,omitempty" jsonschema:"enum=read,enum=update" jsonschema_description:"Restriction type to remove; omit to remove all"`
	RemoveAll bool   `json:"remove_all,omitempty" jsonschema_description:"Remove both read and update restrictions"`
}

// RemoveRestrictionsResult response for the remove tool.
type RemoveRestrictionsResult struct {
	PageID            string   `json:"page_id"`
	PageTitle         string   `json:"page_title,omitempty"`
	RemovedOperations []string `json:"removed_operations"`
	Warnings          []string `json:"warnings,omitempty"`
	Message           string   `json:"message"`
}

func (c *ContentTools) handleRemoveRestrictions(ctx context.Context, _ mcp.CallToolRequest, args RemoveRestrictionsArgs) (*mcp.CallToolResult, error) {
	if args.Operation != "" && !confluence.Operation(args.Operation).Valid() {
		return mcp.NewToolResultError("operation must be read or update"), nil
	}

	ref := confluence.PageRef{ID: args.PageID, Title: args.PageTitle, SpaceKey: args.SpaceKey}
	if err := ref.Validate(); err != nil {
		return mcp.NewToolResultErrorFromErr("invalid page reference", err), nil
	}

	pageID, pageTitle, err := c.service.ResolvePage(ctx, ref)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("confluence resolve page failed", err), nil
	}

	operations := []confluence.Operation{confluence.OperationRead, confluence.OperationUpdate}
	if !args.RemoveAll && args.Operation != "" {
		operations = []confluence.Operation{confluence.Operation(args.Operation)}
	}

	removed := make([]string, 0, len(operations))
	var warnings []string
	for _, op := range operations {
		if err := c.service.RemoveRestrictions(ctx, pageID, op); err != nil {
			warnings = append(warnings, fmt.Sprintf("failed to remove %s restrictions: %v", op, err))
			continue
		}
		removed = append(removed, string(op))
	}

	if len(removed) == 0 {
		return mcp.NewToolResultError(strings.Join(warnings, "; ")), nil
	}

	result := RemoveRestrictionsResult{
		PageID:            pageID,
		PageTitle:         pageTitle,
		RemovedOperations: removed,
		Warnings:          warnings,
		Message:           fmt.Sprintf("Removed restrictions for: %s", strings.Join(removed, ", ")),
	}

	return mcp.NewToolResultStructured(result, result.Message), nil
}
