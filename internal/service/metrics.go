package service

import (
	"context"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"consignhub/backend/internal/cache"
	"consignhub/backend/internal/domain"
	"consignhub/backend/internal/ledger"
)

// ledgerInputs holds the rows the ledger derives metrics from. Only completed
// transactions are loaded.
type ledgerInputs struct {
	items        []domain.Item
	transactions []domain.Transaction
	payouts      []domain.Payout
}

// loadLedgerInputs reads one consignor's rows, or the whole shop's when
// consignorID is empty.
func (s *Service) loadLedgerInputs(ctx context.Context, orgID string, consignorID string) (ledgerInputs, error) {
	items, _, err := s.repo.ListItems(ctx, orgID, domain.ItemFilter{ConsignorID: consignorID})
	if err != nil {
		return ledgerInputs{}, err
	}
	txs, err := s.repo.ListTransactions(ctx, orgID, domain.TransactionFilter{ConsignorID: consignorID})
	if err != nil {
		return ledgerInputs{}, err
	}
	payouts, err := s.repo.ListPayouts(ctx, orgID, domain.PayoutFilter{ConsignorID: consignorID})
	if err != nil {
		return ledgerInputs{}, err
	}
	return ledgerInputs{items: items, transactions: txs, payouts: payouts}, nil
}

// byConsignor splits shop-wide rows per consignor.
func (in ledgerInputs) byConsignor() map[string]*ledgerInputs {
	out := make(map[string]*ledgerInputs)
	get := func(id string) *ledgerInputs {
		group, ok := out[id]
		if !ok {
			group = &ledgerInputs{}
			out[id] = group
		}
		return group
	}
	for _, item := range in.items {
		group := get(item.ConsignorID)
		group.items = append(group.items, item)
	}
	for _, tx := range in.transactions {
		group := get(tx.ConsignorID)
		group.transactions = append(group.transactions, tx)
	}
	for _, payout := range in.payouts {
		group := get(payout.ConsignorID)
		group.payouts = append(group.payouts, payout)
	}
	return out
}

func (in *ledgerInputs) metrics(now time.Time) domain.ConsignorMetrics {
	if in == nil {
		return ledger.ComputeConsignorMetrics(nil, nil, nil, now)
	}
	return ledger.ComputeConsignorMetrics(in.items, in.transactions, in.payouts, now)
}

// cachedMetrics returns metrics under key, computing and storing them on a
// miss. Cache failures are logged and never fail the request. A result is
// not stored when an invalidation ran while it was computed. Another process
// sharing the Redis cache can still store stale metrics for up to metricsTTL.
func (s *Service) cachedMetrics(ctx context.Context, key string, compute func() (domain.ConsignorMetrics, error)) (domain.ConsignorMetrics, error) {
	s.cacheMu.Lock()
	generation := s.generation
	s.cacheMu.Unlock()

	cached, ok, err := s.metrics.Get(ctx, key)
	if err != nil {
		s.log.WithError(err).WithField("key", key).Warn("metrics cache read failed")
	}
	if ok && cached != nil {
		return *cached, nil
	}

	metrics, err := compute()
	if err != nil {
		return domain.ConsignorMetrics{}, err
	}
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	if s.generation != generation {
		return metrics, nil
	}
	if err := s.metrics.Set(ctx, key, &metrics, s.metricsTTL); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("metrics cache write failed")
	}
	return metrics, nil
}

func (s *Service) ConsignorMetrics(ctx context.Context, id string) (domain.ConsignorMetricsResponse, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return domain.ConsignorMetricsResponse{}, err
	}
	consignor, err := s.repo.GetConsignor(ctx, actor.OrganizationID, id)
	if err != nil {
		return domain.ConsignorMetricsResponse{}, err
	}

	now := s.now()
	metrics, err := s.cachedMetrics(ctx, cache.ConsignorKey(actor.OrganizationID, consignor.ID), func() (domain.ConsignorMetrics, error) {
		inputs, err := s.loadLedgerInputs(ctx, actor.OrganizationID, consignor.ID)
		if err != nil {
			return domain.ConsignorMetrics{}, err
		}
		return inputs.metrics(now), nil
	})
	if err != nil {
		return domain.ConsignorMetricsResponse{}, err
	}

	return domain.ConsignorMetricsResponse{
		Consignor: *consignor,
		Metrics:   metrics,
		AsOf:      now.Format(time.RFC3339),
	}, nil
}

// ConsignorSummaries returns one row per consignor sorted by sortBy. Status
// narrows the rows to active or inactive consignors when set.
func (s *Service) ConsignorSummaries(ctx context.Context, sortBy string, descending bool, status string) (domain.ConsignorSummaryResponse, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return domain.ConsignorSummaryResponse{}, err
	}
	key, err := ledger.ParseSortKey(sortBy)
	if err != nil {
		return domain.ConsignorSummaryResponse{}, invalidInput(err.Error())
	}

	consignors, _, err := s.repo.ListConsignors(ctx, actor.OrganizationID, domain.ConsignorFilter{Status: status})
	if err != nil {
		return domain.ConsignorSummaryResponse{}, err
	}
	inputs, err := s.loadLedgerInputs(ctx, actor.OrganizationID, "")
	if err != nil {
		return domain.ConsignorSummaryResponse{}, err
	}
	groups := inputs.byConsignor()

	now := s.now()
	rows := make([]domain.ConsignorSummary, 0, len(consignors))
	for _, consignor := range consignors {
		rows = append(rows, domain.ConsignorSummary{
			Consignor: consignor,
			Metrics:   groups[consignor.ID].metrics(now),
		})
	}
	ledger.SortSummaries(rows, key, descending)

	return domain.ConsignorSummaryResponse{
		SortBy:     string(key),
		Descending: descending,
		Summaries:  rows,
	}, nil
}

// PayoutApprovals lists consignors whose pending balance exceeds minBalance,
// largest balance first.
func (s *Service) PayoutApprovals(ctx context.Context, minBalance decimal.Decimal) (domain.PayoutApprovalResponse, error) {
	actor, err := requireAdmin(ctx)
	if err != nil {
		return domain.PayoutApprovalResponse{}, err
	}

	consignors, _, err := s.repo.ListConsignors(ctx, actor.OrganizationID, domain.ConsignorFilter{})
	if err != nil {
		return domain.PayoutApprovalResponse{}, err
	}
	inputs, err := s.loadLedgerInputs(ctx, actor.OrganizationID, "")
	if err != nil {
		return domain.PayoutApprovalResponse{}, err
	}
	groups := inputs.byConsignor()

	now := s.now()
	approvals := make([]domain.PayoutApproval, 0)
	for _, consignor := range consignors {
		group := groups[consignor.ID]
		metrics := group.metrics(now)
		if !metrics.PendingBalance.GreaterThan(minBalance) {
			continue
		}

		approval := domain.PayoutApproval{
			Consignor:      consignor,
			PendingBalance: metrics.PendingBalance,
			UnpaidAmount:   decimal.Zero,
			LastPayoutDate: metrics.LastPayoutDate,
		}
		for _, tx := range group.transactions {
			if tx.PayoutID == nil {
				approval.UnpaidSales++
				approval.UnpaidAmount = approval.UnpaidAmount.Add(tx.ConsignorAmount)
			}
		}
		approvals = append(approvals, approval)
	}

	slices.SortStableFunc(approvals, func(a, b domain.PayoutApproval) int {
		if c := b.PendingBalance.Cmp(a.PendingBalance); c != 0 {
			return c
		}
		if a.Consignor.Number < b.Consignor.Number {
			return -1
		}
		if a.Consignor.Number > b.Consignor.Number {
			return 1
		}
		return 0
	})

	return domain.PayoutApprovalResponse{MinBalance: minBalance, Approvals: approvals}, nil
}

// Dashboard runs the ledger over every row of the shop. It is not cached:
// the totals below need the same rows the ledger does.
func (s *Service) Dashboard(ctx context.Context) (domain.Dashboard, error) {
	actor, err := requireActor(ctx)
	if err != nil {
		return domain.Dashboard{}, err
	}

	now := s.now()
	inputs, err := s.loadLedgerInputs(ctx, actor.OrganizationID, "")
	if err != nil {
		return domain.Dashboard{}, err
	}
	metrics := inputs.metrics(now)

	consignors, _, err := s.repo.ListConsignors(ctx, actor.OrganizationID, domain.ConsignorFilter{})
	if err != nil {
		return domain.Dashboard{}, err
	}

	dash := domain.Dashboard{
		OrganizationID:     actor.OrganizationID,
		AsOf:               now.Format(time.RFC3339),
		PendingPayoutTotal: decimal.Zero,
		ShopRevenue:        decimal.Zero,
		GrossSales:         decimal.Zero,
		Metrics:            metrics,
	}
	for _, consignor := range consignors {
		if consignor.Status == domain.ConsignorStatusActive {
			dash.ActiveConsignors++
		} else {
			dash.InactiveConsignors++
		}
	}
	for _, payout := range inputs.payouts {
		if payout.PaidAt == nil {
			dash.PendingPayouts++
			dash.PendingPayoutTotal = dash.PendingPayoutTotal.Add(payout.Amount)
		}
	}
	for _, tx := range inputs.transactions {
		dash.GrossSales = dash.GrossSales.Add(tx.SalePrice)
		dash.ShopRevenue = dash.ShopRevenue.Add(tx.ShopAmount)
	}
	return dash, nil
}
