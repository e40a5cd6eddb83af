package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"consignhub/backend/internal/domain"
	"consignhub/backend/internal/store"
)

// CreatePayout collects every completed, unpaid sale of the consignor into a
// new pending payout.
func (s *Service) CreatePayout(ctx context.Context, req domain.PayoutCreateRequest) (domain.PayoutResponse, error) {
	actor, err := requireAdmin(ctx)
	if err != nil {
		return domain.PayoutResponse{}, err
	}
	req.Notes = strings.TrimSpace(req.Notes)
	if err := validateStruct(req); err != nil {
		return domain.PayoutResponse{}, err
	}
	consignor, err := s.repo.GetConsignor(ctx, actor.OrganizationID, req.ConsignorID)
	if err != nil {
		return domain.PayoutResponse{}, err
	}

	var resp domain.PayoutResponse
	err = s.withLock(ctx, "consignor:"+actor.OrganizationID+":"+consignor.ID, func() error {
		unpaid, err := s.repo.ListTransactions(ctx, actor.OrganizationID, domain.TransactionFilter{
			ConsignorID: consignor.ID,
			UnpaidOnly:  true,
		})
		if err != nil {
			return err
		}
		amount := decimal.Zero
		ids := make([]string, 0, len(unpaid))
		for _, tx := range unpaid {
			amount = amount.Add(tx.ConsignorAmount)
			ids = append(ids, tx.ID)
		}
		if !amount.IsPositive() {
			return invalidInput("consignor has no unpaid earnings")
		}

		now := s.now()
		var created *domain.Payout
		for range codeAttempts {
			created, err = s.repo.CreatePayout(ctx, domain.Payout{
				OrganizationID: actor.OrganizationID,
				ConsignorID:    consignor.ID,
				Number:         s.codes.PayoutNumber(now),
				Amount:         amount,
				Notes:          req.Notes,
				CreatedAt:      now,
			}, ids)
			// A conflict here is almost always a payout number collision.
			if !errors.Is(err, store.ErrConflict) {
				break
			}
		}
		if err != nil {
			return err
		}

		for i := range unpaid {
			payoutID := created.ID
			unpaid[i].PayoutID = &payoutID
		}
		resp = domain.PayoutResponse{Payout: *created, Transactions: unpaid}
		return nil
	})
	if err != nil {
		return domain.PayoutResponse{}, err
	}

	s.invalidate(ctx, actor.OrganizationID, consignor.ID)
	s.logAudit(ctx, actor.OrganizationID, "payout_create", "payout", resp.Payout.ID,
		fmt.Sprintf("number=%s,consignor=%s,amount=%s,sales=%d", resp.Payout.Number, consignor.Number, resp.Payout.Amount.StringFixed(2), resp.Payout.TransactionCount))
	return resp, nil
}

func (s *Service) MarkPayoutPaid(ctx context.Context, id string, req domain.PayoutPayRequest) (domain.Payout, error) {
	actor, err := requireAdmin(ctx)
	if err != nil {
		return domain.Payout{}, err
	}
	req.Method = strings.ToLower(strings.TrimSpace(req.Method))
	req.Reference = strings.TrimSpace(req.Reference)
	if err := validateStruct(req); err != nil {
		return domain.Payout{}, err
	}

	paid, err := s.repo.MarkPayoutPaid(ctx, actor.OrganizationID, id, req.Method, req.Reference, s.now())
	if err != nil {
		return domain.Payout{}, err
	}
	s.invalidate(ctx, actor.OrganizationID, paid.ConsignorID)
	s.logAudit(ctx, actor.OrganizationID, "payout_paid", "payout", paid.ID,
		fmt.Sprintf("number=%s,method=%s,reference=%s", paid.Number, paid.Method, paid.Reference))
	return *paid, nil
}

// CancelPayout deletes a pending payout; its sales become unpaid again.
func (s *Service) CancelPayout(ctx context.Context, id string) error {
	actor, err := requireAdmin(ctx)
	if err != nil {
		return err
	}
	payout, err := s.repo.GetPayout(ctx, actor.OrganizationID, id)
	if err != nil {
		return err
	}
	if err := s.repo.CancelPayout(ctx, actor.OrganizationID, id); err != nil {
		return err
	}
	s.invalidate(ctx, actor.OrganizationID, payout.ConsignorID)
	s.logAudit(ctx, actor.OrganizationID, "payout_cancel", "payout", payout.ID,
		fmt.Sprintf("number=%s,amount=%s", payout.Number, payout.Amount.StringFixed(2)))
	return nil
}

func (s *Service) GetPayout(ctx context.Context, id string) (domain.PayoutResponse, error) {
	actor, err := requireAdmin(ctx)
	if err != nil {
		return domain.PayoutResponse{}, err
	}
	payout, err := s.repo.GetPayout(ctx, actor.OrganizationID, id)
	if err != nil {
		return domain.PayoutResponse{}, err
	}
	txs, err := s.repo.ListTransactions(ctx, actor.OrganizationID, domain.TransactionFilter{ConsignorID: payout.ConsignorID})
	if err != nil {
		return domain.PayoutResponse{}, err
	}
	linked := make([]domain.Transaction, 0, payout.TransactionCount)
	for _, tx := range txs {
		if tx.PayoutID != nil && *tx.PayoutID == payout.ID {
			linked = append(linked, tx)
		}
	}
	return domain.PayoutResponse{Payout: *payout, Transactions: linked}, nil
}

func (s *Service) ListPayouts(ctx context.Context, filter domain.PayoutFilter) (domain.PayoutListResponse, error) {
	actor, err := requireAdmin(ctx)
	if err != nil {
		return domain.PayoutListResponse{}, err
	}
	switch filter.Status {
	case "", domain.PayoutStatusPending, domain.PayoutStatusPaid:
	default:
		return domain.PayoutListResponse{}, invalidInput("status must be pending or paid")
	}
	filter.Limit = clampLimit(filter.Limit, 100, 500)

	payouts, err := s.repo.ListPayouts(ctx, actor.OrganizationID, filter)
	if err != nil {
		return domain.PayoutListResponse{}, err
	}
	return domain.PayoutListResponse{Payouts: payouts}, nil
}
