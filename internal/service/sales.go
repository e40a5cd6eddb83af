package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"consignhub/backend/internal/domain"
	"consignhub/backend/internal/store"
)

// SplitSale divides a sale price between consignor and shop. The consignor
// share is rounded to cents; the shop keeps the remainder so the two always
// add up to the sale price.
func SplitSale(salePrice decimal.Decimal, splitPercent decimal.Decimal) (consignorAmount decimal.Decimal, shopAmount decimal.Decimal) {
	consignorAmount = salePrice.Mul(splitPercent).Div(hundred).Round(2)
	return consignorAmount, salePrice.Sub(consignorAmount)
}

func (s *Service) RecordSale(ctx context.Context, req domain.SaleRequest) (domain.SaleResponse, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return domain.SaleResponse{}, err
	}
	req.ItemID = strings.TrimSpace(req.ItemID)
	req.PaymentMethod = strings.ToLower(strings.TrimSpace(req.PaymentMethod))
	if err := validateStruct(req); err != nil {
		return domain.SaleResponse{}, err
	}
	if req.PaymentMethod == "" {
		req.PaymentMethod = "cash"
	}

	var resp domain.SaleResponse
	err = s.withLock(ctx, "item:"+actor.OrganizationID+":"+req.ItemID, func() error {
		item, err := s.repo.GetItem(ctx, actor.OrganizationID, req.ItemID)
		if err != nil {
			return err
		}
		if item.Status != domain.ItemStatusAvailable {
			return fmt.Errorf("%w: item %s is %s", store.ErrConflict, item.SKU, item.Status)
		}
		consignor, err := s.repo.GetConsignor(ctx, actor.OrganizationID, item.ConsignorID)
		if err != nil {
			return err
		}

		salePrice := item.Price
		if req.SalePrice != nil {
			salePrice = req.SalePrice.Round(2)
		}
		if err := validatePrice(salePrice); err != nil {
			return err
		}

		now := s.now()
		saleDate := now
		if req.SaleDate != nil {
			saleDate = req.SaleDate.UTC()
		}
		if saleDate.After(now) {
			return invalidInput("sale_date must not be in the future")
		}

		consignorAmount, shopAmount := SplitSale(salePrice, consignor.SplitPercent)
		tx, err := s.repo.CreateSale(ctx, domain.Transaction{
			OrganizationID:  actor.OrganizationID,
			ItemID:          item.ID,
			ConsignorID:     consignor.ID,
			SaleDate:        saleDate,
			SalePrice:       salePrice,
			ConsignorAmount: consignorAmount,
			ShopAmount:      shopAmount,
			PaymentMethod:   req.PaymentMethod,
			Status:          domain.TxStatusCompleted,
			CreatedAt:       now,
		})
		if err != nil {
			return err
		}
		sold, err := s.repo.GetItem(ctx, actor.OrganizationID, item.ID)
		if err != nil {
			return err
		}

		resp = domain.SaleResponse{Transaction: *tx, Item: *sold}
		return nil
	})
	if err != nil {
		return domain.SaleResponse{}, err
	}

	s.invalidate(ctx, actor.OrganizationID, resp.Transaction.ConsignorID)
	s.logAudit(ctx, actor.OrganizationID, "sale_record", "transaction", resp.Transaction.ID,
		fmt.Sprintf("sku=%s,price=%s,consignor_amount=%s,method=%s",
			resp.Item.SKU, resp.Transaction.SalePrice.StringFixed(2), resp.Transaction.ConsignorAmount.StringFixed(2), resp.Transaction.PaymentMethod))
	return resp, nil
}

// VoidSale reverses a sale that has not been paid out and puts the item back
// on the floor.
func (s *Service) VoidSale(ctx context.Context, id string, reason string) (domain.Transaction, error) {
	actor, err := requireAdmin(ctx)
	if err != nil {
		return domain.Transaction{}, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return domain.Transaction{}, invalidInput("void reason is required")
	}

	voided, err := s.repo.VoidSale(ctx, actor.OrganizationID, id, reason, s.now())
	if err != nil {
		return domain.Transaction{}, err
	}
	s.invalidate(ctx, actor.OrganizationID, voided.ConsignorID)
	s.logAudit(ctx, actor.OrganizationID, "sale_void", "transaction", voided.ID, "reason="+reason)
	return *voided, nil
}

func (s *Service) GetSale(ctx context.Context, id string) (domain.Transaction, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return domain.Transaction{}, err
	}
	tx, err := s.repo.GetTransaction(ctx, actor.OrganizationID, id)
	if err != nil {
		return domain.Transaction{}, err
	}
	return *tx, nil
}

func (s *Service) ListSales(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return nil, err
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, invalidInput("to must not be before from")
	}
	filter.Limit = clampLimit(filter.Limit, 100, 1000)
	return s.repo.ListTransactions(ctx, actor.OrganizationID, filter)
}

// ParseDay reads a YYYY-MM-DD date as UTC midnight.
func ParseDay(raw string) (time.Time, error) {
	day, err := time.Parse(dateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, invalidInput("date must be YYYY-MM-DD")
	}
	return day.UTC(), nil
}
