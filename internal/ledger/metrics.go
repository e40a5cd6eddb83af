package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"consignhub/backend/internal/domain"
)

// ComputeConsignorMetrics combines the ledger, period and item calculations
// into the record shown on dashboards and approval screens. The caller is
// responsible for passing only rows that belong to one consignor (or one
// organization, for shop-wide totals) and only completed transactions.
func ComputeConsignorMetrics(items []domain.Item, transactions []domain.Transaction, payouts []domain.Payout, now time.Time) domain.ConsignorMetrics {
	balance := ComputeLedger(transactions, payouts)
	period := BucketTransactions(transactions, PeriodWindows(now))
	itemMetrics := ComputeItemMetrics(items, transactions)

	m := domain.ConsignorMetrics{
		TotalItems:        itemMetrics.TotalItems,
		AvailableItems:    itemMetrics.AvailableItems,
		SoldItems:         itemMetrics.SoldItems,
		RemovedItems:      itemMetrics.RemovedItems,
		InventoryValue:    itemMetrics.InventoryValue,
		PendingBalance:    balance.PendingBalance,
		TotalEarnings:     balance.TotalEarnings,
		TotalPaid:         balance.TotalPaid,
		EarningsThisMonth: period.EarningsThisMonth,
		EarningsLastMonth: period.EarningsLastMonth,
		SalesThisMonth:    period.SalesThisMonth,
		SalesLastMonth:    period.SalesLastMonth,
		LastPayoutAmount:  decimal.Zero,
		AverageItemPrice:  itemMetrics.AverageItemPrice,
		AverageDaysToSell: itemMetrics.AverageDaysToSell,
	}

	for _, tx := range transactions {
		if m.LastSaleDate == nil || tx.SaleDate.After(*m.LastSaleDate) {
			saleDate := tx.SaleDate
			m.LastSaleDate = &saleDate
		}
	}

	// Latest payout by creation time, matching how payouts are counted in TotalPaid.
	var last *domain.Payout
	for i := range payouts {
		if last == nil || payouts[i].CreatedAt.After(last.CreatedAt) {
			last = &payouts[i]
		}
	}
	if last != nil {
		createdAt := last.CreatedAt
		m.LastPayoutDate = &createdAt
		m.LastPayoutAmount = last.Amount
	}

	return m
}
