package ledger

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"consignhub/backend/internal/domain"
)

// SortKey names a column of the consignor summary table.
type SortKey string

const (
	SortByName           SortKey = "name"
	SortByNumber         SortKey = "number"
	SortByPendingBalance SortKey = "pending_balance"
	SortByTotalEarnings  SortKey = "total_earnings"
	SortByTotalItems     SortKey = "total_items"
	SortByAvailableItems SortKey = "available_items"
	SortBySoldItems      SortKey = "sold_items"
	SortByLastSaleDate   SortKey = "last_sale_date"
	SortByCreatedAt      SortKey = "created_at"
)

type summaryCompare func(a, b domain.ConsignorSummary) int

var summaryComparators = map[SortKey]summaryCompare{
	SortByName: func(a, b domain.ConsignorSummary) int {
		return cmp.Compare(strings.ToLower(a.Consignor.Name), strings.ToLower(b.Consignor.Name))
	},
	SortByNumber: func(a, b domain.ConsignorSummary) int {
		return cmp.Compare(a.Consignor.Number, b.Consignor.Number)
	},
	SortByPendingBalance: func(a, b domain.ConsignorSummary) int {
		return a.Metrics.PendingBalance.Cmp(b.Metrics.PendingBalance)
	},
	SortByTotalEarnings: func(a, b domain.ConsignorSummary) int {
		return a.Metrics.TotalEarnings.Cmp(b.Metrics.TotalEarnings)
	},
	SortByTotalItems: func(a, b domain.ConsignorSummary) int {
		return cmp.Compare(a.Metrics.TotalItems, b.Metrics.TotalItems)
	},
	SortByAvailableItems: func(a, b domain.ConsignorSummary) int {
		return cmp.Compare(a.Metrics.AvailableItems, b.Metrics.AvailableItems)
	},
	SortBySoldItems: func(a, b domain.ConsignorSummary) int {
		return cmp.Compare(a.Metrics.SoldItems, b.Metrics.SoldItems)
	},
	SortByLastSaleDate: func(a, b domain.ConsignorSummary) int {
		return compareOptionalTime(a.Metrics.LastSaleDate, b.Metrics.LastSaleDate)
	},
	SortByCreatedAt: func(a, b domain.ConsignorSummary) int {
		return a.Consignor.CreatedAt.Compare(b.Consignor.CreatedAt)
	},
}

// ParseSortKey validates a client-supplied sort column. An empty value means
// sorting by name.
func ParseSortKey(raw string) (SortKey, error) {
	key := SortKey(strings.ToLower(strings.TrimSpace(raw)))
	if key == "" {
		return SortByName, nil
	}
	if _, ok := summaryComparators[key]; !ok {
		return "", fmt.Errorf("unknown sort key %q", raw)
	}
	return key, nil
}

// SortSummaries orders rows in place by key. Ties fall back to the consignor
// number so the output is stable across calls with the same input.
func SortSummaries(rows []domain.ConsignorSummary, key SortKey, descending bool) {
	compare, ok := summaryComparators[key]
	if !ok {
		compare = summaryComparators[SortByName]
	}
	slices.SortStableFunc(rows, func(a, b domain.ConsignorSummary) int {
		c := compare(a, b)
		if descending {
			c = -c
		}
		if c != 0 {
			return c
		}
		return cmp.Compare(a.Consignor.Number, b.Consignor.Number)
	})
}

// compareOptionalTime orders missing dates before any present date.
func compareOptionalTime(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	default:
		return a.Compare(*b)
	}
}
