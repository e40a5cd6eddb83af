package service

import (
	"context"
	"fmt"
	"strings"

	"consignhub/backend/internal/domain"
	"consignhub/backend/internal/store"
)

func (s *Service) CreateItem(ctx context.Context, req domain.ItemCreateRequest) (domain.Item, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return domain.Item{}, err
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	req.Category = strings.ToLower(strings.TrimSpace(req.Category))
	if err := validateStruct(req); err != nil {
		return domain.Item{}, err
	}
	if err := validatePrice(req.Price); err != nil {
		return domain.Item{}, err
	}

	consignor, err := s.repo.GetConsignor(ctx, actor.OrganizationID, req.ConsignorID)
	if err != nil {
		return domain.Item{}, err
	}
	if consignor.Status != domain.ConsignorStatusActive {
		return domain.Item{}, fmt.Errorf("%w: consignor %s is inactive", store.ErrConflict, consignor.Number)
	}

	sku, err := uniqueCode(ctx, func() string { return s.codes.SKU(req.Category) }, func(ctx context.Context, code string) (bool, error) {
		return s.repo.ItemSKUExists(ctx, actor.OrganizationID, code)
	})
	if err != nil {
		return domain.Item{}, err
	}

	now := s.now()
	created, err := s.repo.CreateItem(ctx, domain.Item{
		OrganizationID: actor.OrganizationID,
		ConsignorID:    consignor.ID,
		SKU:            sku,
		Title:          req.Title,
		Description:    req.Description,
		Category:       req.Category,
		Price:          req.Price.Round(2),
		Status:         domain.ItemStatusAvailable,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		return domain.Item{}, err
	}

	s.invalidate(ctx, actor.OrganizationID, consignor.ID)
	s.logAudit(ctx, actor.OrganizationID, "item_create", "item", created.ID,
		fmt.Sprintf("sku=%s,consignor=%s,price=%s", created.SKU, consignor.Number, created.Price.StringFixed(2)))
	return *created, nil
}

// UpdateItem edits listing details. Sold and removed items are frozen.
func (s *Service) UpdateItem(ctx context.Context, id string, req domain.ItemUpdateRequest) (domain.Item, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return domain.Item{}, err
	}
	if err := validateStruct(req); err != nil {
		return domain.Item{}, err
	}

	existing, err := s.repo.GetItem(ctx, actor.OrganizationID, id)
	if err != nil {
		return domain.Item{}, err
	}
	if existing.Status != domain.ItemStatusAvailable {
		return domain.Item{}, fmt.Errorf("%w: item is %s", store.ErrConflict, existing.Status)
	}

	updated := *existing
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return domain.Item{}, invalidInput("title must not be empty")
		}
		updated.Title = title
	}
	if req.Description != nil {
		updated.Description = strings.TrimSpace(*req.Description)
	}
	if req.Category != nil {
		category := strings.ToLower(strings.TrimSpace(*req.Category))
		if category == "" {
			return domain.Item{}, invalidInput("category must not be empty")
		}
		updated.Category = category
	}
	if req.Price != nil {
		if err := validatePrice(*req.Price); err != nil {
			return domain.Item{}, err
		}
		updated.Price = req.Price.Round(2)
	}
	updated.UpdatedAt = s.now()

	saved, err := s.repo.UpdateItem(ctx, updated)
	if err != nil {
		return domain.Item{}, err
	}
	s.invalidate(ctx, actor.OrganizationID, saved.ConsignorID)
	s.logAudit(ctx, actor.OrganizationID, "item_update", "item", saved.ID,
		fmt.Sprintf("sku=%s,price=%s", saved.SKU, saved.Price.StringFixed(2)))
	return *saved, nil
}

// RemoveItem takes an Available item off the floor, e.g. when it is returned
// to its consignor.
func (s *Service) RemoveItem(ctx context.Context, id string) (domain.Item, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return domain.Item{}, err
	}
	existing, err := s.repo.GetItem(ctx, actor.OrganizationID, id)
	if err != nil {
		return domain.Item{}, err
	}
	if existing.Status != domain.ItemStatusAvailable {
		return domain.Item{}, fmt.Errorf("%w: item is %s", store.ErrConflict, existing.Status)
	}

	now := s.now()
	updated := *existing
	updated.Status = domain.ItemStatusRemoved
	updated.RemovedAt = &now
	updated.UpdatedAt = now

	saved, err := s.repo.UpdateItem(ctx, updated)
	if err != nil {
		return domain.Item{}, err
	}
	s.invalidate(ctx, actor.OrganizationID, saved.ConsignorID)
	s.logAudit(ctx, actor.OrganizationID, "item_remove", "item", saved.ID, "sku="+saved.SKU)
	return *saved, nil
}

func (s *Service) GetItem(ctx context.Context, id string) (domain.Item, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return domain.Item{}, err
	}
	item, err := s.repo.GetItem(ctx, actor.OrganizationID, id)
	if err != nil {
		return domain.Item{}, err
	}
	return *item, nil
}

func (s *Service) ListItems(ctx context.Context, filter domain.ItemFilter) (domain.ItemListResponse, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return domain.ItemListResponse{}, err
	}
	switch filter.Status {
	case "", domain.ItemStatusAvailable, domain.ItemStatusSold, domain.ItemStatusRemoved:
	default:
		return domain.ItemListResponse{}, invalidInput("status must be Available, Sold or Removed")
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	filter.Limit = clampLimit(filter.Limit, 50, 200)

	items, total, err := s.repo.ListItems(ctx, actor.OrganizationID, filter)
	if err != nil {
		return domain.ItemListResponse{}, err
	}
	return domain.ItemListResponse{Items: items, Total: total}, nil
}
