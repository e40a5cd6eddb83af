package service

import (
	"context"
	"fmt"
	"strings"

	"consignhub/backend/internal/domain"
)

func (s *Service) CreateConsignor(ctx context.Context, req domain.ConsignorCreateRequest) (domain.Consignor, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return domain.Consignor{}, err
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Notes = strings.TrimSpace(req.Notes)
	if err := validateStruct(req); err != nil {
		return domain.Consignor{}, err
	}

	org, err := s.repo.GetOrganization(ctx, actor.OrganizationID)
	if err != nil {
		return domain.Consignor{}, err
	}
	split := org.DefaultSplitPercent
	if req.SplitPercent != nil {
		split = *req.SplitPercent
	}
	if err := validateSplit(split); err != nil {
		return domain.Consignor{}, err
	}
	phone, err := normalizePhone(req.Phone, s.phoneRegion)
	if err != nil {
		return domain.Consignor{}, err
	}

	number, err := uniqueCode(ctx, s.codes.ConsignorNumber, func(ctx context.Context, code string) (bool, error) {
		return s.repo.ConsignorNumberExists(ctx, actor.OrganizationID, code)
	})
	if err != nil {
		return domain.Consignor{}, err
	}

	now := s.now()
	created, err := s.repo.CreateConsignor(ctx, domain.Consignor{
		OrganizationID: actor.OrganizationID,
		Number:         number,
		Name:           req.Name,
		Email:          req.Email,
		Phone:          phone,
		SplitPercent:   split,
		Status:         domain.ConsignorStatusActive,
		Notes:          req.Notes,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		return domain.Consignor{}, err
	}

	s.logAudit(ctx, actor.OrganizationID, "consignor_create", "consignor", created.ID,
		fmt.Sprintf("number=%s,name=%s,split=%s", created.Number, created.Name, created.SplitPercent.String()))
	return *created, nil
}

// UpdateConsignor applies a partial update. Changing the split only affects
// future sales; recorded transactions keep their amounts.
func (s *Service) UpdateConsignor(ctx context.Context, id string, req domain.ConsignorUpdateRequest) (domain.Consignor, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return domain.Consignor{}, err
	}
	if err := validateStruct(req); err != nil {
		return domain.Consignor{}, err
	}

	existing, err := s.repo.GetConsignor(ctx, actor.OrganizationID, id)
	if err != nil {
		return domain.Consignor{}, err
	}
	updated := *existing
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Consignor{}, invalidInput("name must not be empty")
		}
		updated.Name = name
	}
	if req.Email != nil {
		updated.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Phone != nil {
		phone, err := normalizePhone(*req.Phone, s.phoneRegion)
		if err != nil {
			return domain.Consignor{}, err
		}
		updated.Phone = phone
	}
	if req.SplitPercent != nil {
		if err := validateSplit(*req.SplitPercent); err != nil {
			return domain.Consignor{}, err
		}
		updated.SplitPercent = *req.SplitPercent
	}
	if req.Status != nil {
		updated.Status = *req.Status
	}
	if req.Notes != nil {
		updated.Notes = strings.TrimSpace(*req.Notes)
	}
	updated.UpdatedAt = s.now()

	saved, err := s.repo.UpdateConsignor(ctx, updated)
	if err != nil {
		return domain.Consignor{}, err
	}
	s.invalidate(ctx, actor.OrganizationID, saved.ID)
	s.logAudit(ctx, actor.OrganizationID, "consignor_update", "consignor", saved.ID,
		fmt.Sprintf("status=%s,split=%s", saved.Status, saved.SplitPercent.String()))
	return *saved, nil
}

func (s *Service) GetConsignor(ctx context.Context, id string) (domain.Consignor, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return domain.Consignor{}, err
	}
	consignor, err := s.repo.GetConsignor(ctx, actor.OrganizationID, id)
	if err != nil {
		return domain.Consignor{}, err
	}
	return *consignor, nil
}

func (s *Service) ListConsignors(ctx context.Context, filter domain.ConsignorFilter) (domain.ConsignorListResponse, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return domain.ConsignorListResponse{}, err
	}
	switch filter.Status {
	case "", domain.ConsignorStatusActive, domain.ConsignorStatusInactive:
	default:
		return domain.ConsignorListResponse{}, invalidInput("status must be active or inactive")
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	filter.Limit = clampLimit(filter.Limit, 50, 200)

	consignors, total, err := s.repo.ListConsignors(ctx, actor.OrganizationID, filter)
	if err != nil {
		return domain.ConsignorListResponse{}, err
	}
	return domain.ConsignorListResponse{Consignors: consignors, Total: total}, nil
}
