package service

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"consignhub/backend/internal/domain"
	"consignhub/backend/internal/ledger"
)

// SalesReport lists completed sales between two inclusive UTC days. Empty
// bounds default to the current month up to today.
func (s *Service) SalesReport(ctx context.Context, from string, to string) (domain.SalesReport, error) {
	actor, err := requireAdmin(ctx)
	if err != nil {
		return domain.SalesReport{}, err
	}

	now := s.now()
	start := ledger.PeriodWindows(now).ThisMonthStart
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if strings.TrimSpace(from) != "" {
		if start, err = ParseDay(from); err != nil {
			return domain.SalesReport{}, err
		}
	}
	if strings.TrimSpace(to) != "" {
		if end, err = ParseDay(to); err != nil {
			return domain.SalesReport{}, err
		}
	}
	if end.Before(start) {
		return domain.SalesReport{}, invalidInput("to must not be before from")
	}
	endExclusive := end.AddDate(0, 0, 1)

	txs, err := s.repo.ListTransactions(ctx, actor.OrganizationID, domain.TransactionFilter{From: &start, To: &endExclusive})
	if err != nil {
		return domain.SalesReport{}, err
	}
	rows, err := s.salesRows(ctx, actor.OrganizationID, txs)
	if err != nil {
		return domain.SalesReport{}, err
	}

	report := domain.SalesReport{
		OrganizationID:       actor.OrganizationID,
		From:                 start.Format(dateLayout),
		To:                   end.Format(dateLayout),
		Sales:                len(rows),
		GrossSales:           decimal.Zero,
		ConsignorAmountTotal: decimal.Zero,
		ShopAmountTotal:      decimal.Zero,
		Rows:                 rows,
	}
	for _, row := range rows {
		report.GrossSales = report.GrossSales.Add(row.SalePrice)
		report.ConsignorAmountTotal = report.ConsignorAmountTotal.Add(row.ConsignorAmount)
		report.ShopAmountTotal = report.ShopAmountTotal.Add(row.ShopAmount)
	}
	return report, nil
}

// salesRows joins transactions with their item and consignor, oldest first.
func (s *Service) salesRows(ctx context.Context, orgID string, txs []domain.Transaction) ([]domain.SalesReportRow, error) {
	items, _, err := s.repo.ListItems(ctx, orgID, domain.ItemFilter{})
	if err != nil {
		return nil, err
	}
	consignors, _, err := s.repo.ListConsignors(ctx, orgID, domain.ConsignorFilter{})
	if err != nil {
		return nil, err
	}
	itemsByID := make(map[string]domain.Item, len(items))
	for _, item := range items {
		itemsByID[item.ID] = item
	}
	consignorsByID := make(map[string]domain.Consignor, len(consignors))
	for _, consignor := range consignors {
		consignorsByID[consignor.ID] = consignor
	}

	rows := make([]domain.SalesReportRow, 0, len(txs))
	for _, tx := range txs {
		item := itemsByID[tx.ItemID]
		consignor := consignorsByID[tx.ConsignorID]
		rows = append(rows, domain.SalesReportRow{
			TransactionID:   tx.ID,
			SaleDate:        tx.SaleDate,
			ItemSKU:         item.SKU,
			ItemTitle:       item.Title,
			ConsignorNumber: consignor.Number,
			ConsignorName:   consignor.Name,
			PaymentMethod:   tx.PaymentMethod,
			SalePrice:       tx.SalePrice,
			ConsignorAmount: tx.ConsignorAmount,
			ShopAmount:      tx.ShopAmount,
			PaidOut:         tx.PayoutID != nil,
		})
	}
	slices.SortStableFunc(rows, func(a, b domain.SalesReportRow) int {
		if c := a.SaleDate.Compare(b.SaleDate); c != 0 {
			return c
		}
		return strings.Compare(a.TransactionID, b.TransactionID)
	})
	return rows, nil
}

// ConsignorStatement reports one calendar month for a consignor alongside
// their all-time metrics. An empty month means the current one.
func (s *Service) ConsignorStatement(ctx context.Context, id string, month string) (domain.ConsignorStatement, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return domain.ConsignorStatement{}, err
	}
	now := s.now()
	if strings.TrimSpace(month) == "" {
		month = now.Format("2006-01")
	}
	start, end, err := ledger.MonthRange(month)
	if err != nil {
		return domain.ConsignorStatement{}, invalidInput(err.Error())
	}

	consignor, err := s.repo.GetConsignor(ctx, actor.OrganizationID, id)
	if err != nil {
		return domain.ConsignorStatement{}, err
	}
	inputs, err := s.loadLedgerInputs(ctx, actor.OrganizationID, consignor.ID)
	if err != nil {
		return domain.ConsignorStatement{}, err
	}

	inMonth := make([]domain.Transaction, 0)
	for _, tx := range inputs.transactions {
		if !tx.SaleDate.Before(start) && tx.SaleDate.Before(end) {
			inMonth = append(inMonth, tx)
		}
	}
	sales, err := s.salesRows(ctx, actor.OrganizationID, inMonth)
	if err != nil {
		return domain.ConsignorStatement{}, err
	}

	statement := domain.ConsignorStatement{
		Consignor:     *consignor,
		Month:         start.Format("2006-01"),
		Sales:         sales,
		Payouts:       make([]domain.Payout, 0),
		MonthEarnings: decimal.Zero,
		MonthPaid:     decimal.Zero,
		Metrics:       inputs.metrics(now),
	}
	for _, row := range sales {
		statement.MonthEarnings = statement.MonthEarnings.Add(row.ConsignorAmount)
	}
	for _, payout := range inputs.payouts {
		if !payout.CreatedAt.Before(start) && payout.CreatedAt.Before(end) {
			statement.Payouts = append(statement.Payouts, payout)
			statement.MonthPaid = statement.MonthPaid.Add(payout.Amount)
		}
	}
	return statement, nil
}

func (s *Service) InventoryAging(ctx context.Context) (domain.AgingReport, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return domain.AgingReport{}, err
	}
	items, _, err := s.repo.ListItems(ctx, actor.OrganizationID, domain.ItemFilter{Status: domain.ItemStatusAvailable})
	if err != nil {
		return domain.AgingReport{}, err
	}
	return s.aging.Report(items, s.now()), nil
}

// StorefrontItems is the public catalogue of a shop. It never exposes
// consignor data.
func (s *Service) StorefrontItems(ctx context.Context, slug string, category string, limit int) (domain.StorefrontResponse, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" {
		return domain.StorefrontResponse{}, invalidInput("shop slug is required")
	}
	org, err := s.repo.GetOrganizationBySlug(ctx, slug)
	if err != nil {
		return domain.StorefrontResponse{}, err
	}

	items, _, err := s.repo.ListItems(ctx, org.ID, domain.ItemFilter{
		Status:   domain.ItemStatusAvailable,
		Category: strings.TrimSpace(category),
		Limit:    clampLimit(limit, 50, 200),
	})
	if err != nil {
		return domain.StorefrontResponse{}, err
	}

	resp := domain.StorefrontResponse{
		Shop:     org.Name,
		Currency: org.Currency,
		Items:    make([]domain.StorefrontItem, 0, len(items)),
	}
	for _, item := range items {
		resp.Items = append(resp.Items, domain.StorefrontItem{
			SKU:         item.SKU,
			Title:       item.Title,
			Description: item.Description,
			Category:    item.Category,
			Price:       item.Price,
			ListedAt:    item.CreatedAt,
		})
	}
	return resp, nil
}
