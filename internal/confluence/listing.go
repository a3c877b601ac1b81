package confluence

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/go-querystring/query"
)

const defaultPageLimit = 25

// SpacePages lists pages of a space, optionally filtered by title.
func (s *Service) SpacePages(ctx context.Context, q SpacePagesQuery) (*ContentPage, error) {
	if q.SpaceKey == "" {
		return nil, fmt.Errorf("confluence: space key required")
	}

	q.Type = "page"
	if q.Limit <= 0 {
		q.Limit = defaultPageLimit
	}
	if q.Start < 0 {
		q.Start = 0
	}

	params, err := query.Values(q)
	if err != nil {
		return nil, fmt.Errorf("confluence: encode query: %w", err)
	}

	req, err := s.client.NewRequest(ctx, http.MethodGet, apiPath("content"), params, nil)
	if err != nil {
		return nil, err
	}

	var listing ContentPage
	if err := s.client.Do(req, &listing); err != nil {
		return nil, err
	}

	return &listing, nil
}

// ChildPages lists the direct child pages of a parent page.
func (s *Service) ChildPages(ctx context.Context, parentID string, q ChildPagesQuery) (*ContentPage, error) {
	if parentID == "" {
		return nil, fmt.Errorf("confluence: page id required")
	}

	if q.Limit <= 0 {
		q.Limit = defaultPageLimit
	}
	if q.Start < 0 {
		q.Start = 0
	}

	params, err := query.Values(q)
	if err != nil {
		return nil, fmt.Errorf("confluence: encode query: %w", err)
	}

	req, err := s.client.NewRequest(ctx, http.MethodGet, apiPath("content", parentID, "child", "page"), params, nil)
	if err != nil {
		return nil, err
	}

	var listing ContentPage
	if err := s.client.Do(req, &listing); err != nil {
		return nil, err
	}

	return &listing, nil
}
