// Package ledger derives consignor balances and dashboard metrics from
// already-fetched items, transactions and payouts. Every function is a pure
// transformation of its inputs: no I/O, no shared state, no errors.
package ledger

import (
	"github.com/shopspring/decimal"

	"consignhub/backend/internal/domain"
)

// Balance is the money side of a consignor's account.
type Balance struct {
	PendingBalance decimal.Decimal `json:"pending_balance"`
	TotalEarnings  decimal.Decimal `json:"total_earnings"`
	TotalPaid      decimal.Decimal `json:"total_paid"`
}

// ComputeLedger sums the consignor share of every transaction and subtracts
// every payout record, paid or still scheduled. A negative pending balance is
// returned as is so overpayments stay visible to the caller.
func ComputeLedger(transactions []domain.Transaction, payouts []domain.Payout) Balance {
	earnings := decimal.Zero
	for _, tx := range transactions {
		earnings = earnings.Add(tx.ConsignorAmount)
	}

	paid := decimal.Zero
	for _, p := range payouts {
		paid = paid.Add(p.Amount)
	}

	return Balance{
		PendingBalance: earnings.Sub(paid),
		TotalEarnings:  earnings,
		TotalPaid:      paid,
	}
}
