package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"consignhub/backend/internal/domain"
)

// ItemMetrics describes the inventory side of a consignor's account.
type ItemMetrics struct {
	TotalItems        int
	AvailableItems    int
	SoldItems         int
	RemovedItems      int
	InventoryValue    decimal.Decimal
	AverageItemPrice  decimal.Decimal
	AverageDaysToSell float64
}

// ComputeItemMetrics counts items by status and derives value and
// sell-through figures. Transactions are indexed by item id once, so the
// cost stays linear in len(items)+len(transactions).
func ComputeItemMetrics(items []domain.Item, transactions []domain.Transaction) ItemMetrics {
	m := ItemMetrics{
		TotalItems:       len(items),
		InventoryValue:   decimal.Zero,
		AverageItemPrice: decimal.Zero,
	}

	priceSum := decimal.Zero
	for _, item := range items {
		priceSum = priceSum.Add(item.Price)
		switch item.Status {
		case domain.ItemStatusAvailable:
			m.AvailableItems++
			m.InventoryValue = m.InventoryValue.Add(item.Price)
		case domain.ItemStatusSold:
			m.SoldItems++
		case domain.ItemStatusRemoved:
			m.RemovedItems++
		}
	}
	if len(items) > 0 {
		m.AverageItemPrice = priceSum.Div(decimal.NewFromInt(int64(len(items))))
	}

	m.AverageDaysToSell = averageDaysToSell(items, indexByItem(transactions))
	return m
}

// indexByItem keeps the first transaction seen for each item.
func indexByItem(transactions []domain.Transaction) map[string]domain.Transaction {
	index := make(map[string]domain.Transaction, len(transactions))
	for _, tx := range transactions {
		if _, exists := index[tx.ItemID]; exists {
			continue
		}
		index[tx.ItemID] = tx
	}
	return index
}

func averageDaysToSell(items []domain.Item, byItem map[string]domain.Transaction) float64 {
	total := 0.0
	counted := 0
	for _, item := range items {
		if item.Status != domain.ItemStatusSold {
			continue
		}
		tx, ok := byItem[item.ID]
		if !ok {
			continue
		}
		days := DaysBetween(item.CreatedAt, tx.SaleDate)
		if days < 0 {
			continue
		}
		total += days
		counted++
	}
	if counted == 0 {
		return 0
	}
	return total / float64(counted)
}

// DaysBetween returns the elapsed time from start to end in fractional days.
func DaysBetween(start time.Time, end time.Time) float64 {
	return end.Sub(start).Hours() / 24
}
