// Package service implements the configuration vocabularies: seeding, reads
// and admin edits.
package service

import (
	"context"
	"fmt"
	"strings"

	"campaign_portal_backend/internal/configurations/domain"
	"campaign_portal_backend/internal/configurations/repository"
	"campaign_portal_backend/internal/configurations/transport"
	"campaign_portal_backend/platform/apperr"
	"campaign_portal_backend/platform/batch"
	"campaign_portal_backend/platform/logger"
	"campaign_portal_backend/platform/sanitize"

	"github.com/google/uuid"
)

// Service provides business logic for configurations.
type Service struct {
	store repository.Store
	log   *logger.Logger
}

// New creates a new configurations service.
func New(store repository.Store, log *logger.Logger) *Service {
	return &Service{store: store, log: log}
}

// SeedDefaults loads the embedded vocabularies when the table is empty.
// It reports how many entries were written.
func (s *Service) SeedDefaults(ctx context.Context) (int, error) {
	n, err := s.store.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}

	entries, err := domain.Defaults()
	if err != nil {
		return 0, err
	}

	items := make([]repository.Configuration, 0, len(entries))
	for _, e := range entries {
		items = append(items, repository.Configuration{
			ID:        uuid.New(),
			Category:  e.Category,
			Label:     e.Label,
			Value:     e.Value,
			SortOrder: e.SortOrder,
			IsActive:  true,
		})
	}
	if err := s.store.InsertMany(ctx, items); err != nil {
		return 0, err
	}

	s.log.Info("configuration defaults seeded", "entries", len(items))
	return len(items), nil
}

func (s *Service) Categories(ctx context.Context) (transport.CategoriesResponse, error) {
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return transport.CategoriesResponse{}, err
	}
	if categories == nil {
		categories = []string{}
	}
	return transport.CategoriesResponse{Categories: categories}, nil
}

// List returns a category's entries in display order. Inactive entries are
// only included for admin views.
func (s *Service) List(ctx context.Context, category string, includeInactive bool) (transport.ListResponse, error) {
	if !domain.IsKey(category) {
		return transport.ListResponse{}, apperr.Validation("invalid category")
	}

	items, err := s.store.ListByCategory(ctx, category, includeInactive)
	if err != nil {
		return transport.ListResponse{}, err
	}

	resp := transport.ListResponse{Category: category, Items: make([]transport.ConfigurationResponse, 0, len(items))}
	for _, item := range items {
		resp.Items = append(resp.Items, toResponse(item))
	}
	return resp, nil
}

func (s *Service) Create(ctx context.Context, req transport.CreateRequest) (transport.ConfigurationResponse, error) {
	label := sanitize.Text(req.Label)
	if label == "" {
		return transport.ConfigurationResponse{}, apperr.Validation("label is required")
	}
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	created, err := s.store.Create(ctx, repository.Configuration{
		ID:        uuid.New(),
		Category:  strings.TrimSpace(req.Category),
		Label:     label,
		Value:     strings.TrimSpace(req.Value),
		SortOrder: req.SortOrder,
		IsActive:  isActive,
	})
	if err != nil {
		return transport.ConfigurationResponse{}, err
	}
	return toResponse(created), nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateRequest) (transport.ConfigurationResponse, error) {
	update := repository.ConfigurationUpdate{
		ID:        id,
		Label:     sanitize.TextPtr(req.Label),
		Value:     req.Value,
		SortOrder: req.SortOrder,
		IsActive:  req.IsActive,
	}
	if req.Label != nil && update.Label == nil {
		return transport.ConfigurationResponse{}, apperr.Validation("label cannot be blank")
	}

	item, err := s.store.Update(ctx, update)
	if err != nil {
		return transport.ConfigurationResponse{}, err
	}
	return toResponse(item), nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.store.Delete(ctx, id)
}

type position struct {
	id    uuid.UUID
	order int
}

// Reorder assigns sort orders 1..n following req.IDs. Each move is an
// independent update; when some fail the others stay applied and the error
// carries the per-item outcome.
func (s *Service) Reorder(ctx context.Context, req transport.ReorderRequest) (transport.ReorderResponse, error) {
	seen := make(map[uuid.UUID]bool, len(req.IDs))
	moves := make([]position, 0, len(req.IDs))
	for i, id := range req.IDs {
		if seen[id] {
			return transport.ReorderResponse{}, apperr.Validation("duplicate id in reorder")
		}
		seen[id] = true
		moves = append(moves, position{id: id, order: i + 1})
	}

	outcome := batch.Run(ctx, batch.DefaultLimit, moves,
		func(p position) string { return p.id.String() },
		func(ctx context.Context, p position) error {
			return s.store.SetSortOrder(ctx, req.Category, p.id, p.order)
		},
	)

	resp := transport.ReorderResponse{Category: req.Category, Outcome: outcome}
	if outcome.Partial() {
		s.log.Warn("configuration reorder partially applied",
			"category", req.Category, "failed", outcome.Failed, "succeeded", outcome.Succeeded)
		return resp, apperr.Partial(
			fmt.Sprintf("%d of %d entries could not be moved", outcome.Failed, len(moves)),
			resp,
		)
	}
	return resp, nil
}

func toResponse(c repository.Configuration) transport.ConfigurationResponse {
	return transport.ConfigurationResponse{
		ID:        c.ID,
		Category:  c.Category,
		Label:     c.Label,
		Value:     c.Value,
		SortOrder: c.SortOrder,
		IsActive:  c.IsActive,
	}
}
