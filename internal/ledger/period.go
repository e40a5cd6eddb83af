package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"consignhub/backend/internal/domain"
)

// Windows holds calendar month boundaries in UTC. LastMonthEnd is exclusive
// and always equals ThisMonthStart.
type Windows struct {
	ThisMonthStart time.Time
	LastMonthStart time.Time
	LastMonthEnd   time.Time
}

// PeriodWindows returns the month windows containing now. The previous month
// is derived with time.AddDate from the first day of the current month, so
// January correctly rolls back to December of the previous year.
func PeriodWindows(now time.Time) Windows {
	now = now.UTC()
	thisMonthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return Windows{
		ThisMonthStart: thisMonthStart,
		LastMonthStart: thisMonthStart.AddDate(0, -1, 0),
		LastMonthEnd:   thisMonthStart,
	}
}

// InThisMonth reports whether t falls on or after the start of the current month.
func (w Windows) InThisMonth(t time.Time) bool {
	return !t.Before(w.ThisMonthStart)
}

// InLastMonth reports whether t falls in [LastMonthStart, LastMonthEnd).
func (w Windows) InLastMonth(t time.Time) bool {
	return !t.Before(w.LastMonthStart) && t.Before(w.LastMonthEnd)
}

// Period is the per-window earnings and sale counts.
type Period struct {
	EarningsThisMonth decimal.Decimal
	EarningsLastMonth decimal.Decimal
	SalesThisMonth    int
	SalesLastMonth    int
}

// BucketTransactions splits transactions into the this-month and last-month
// windows. Sales older than the previous month count toward neither.
func BucketTransactions(transactions []domain.Transaction, w Windows) Period {
	p := Period{EarningsThisMonth: decimal.Zero, EarningsLastMonth: decimal.Zero}
	for _, tx := range transactions {
		switch {
		case w.InThisMonth(tx.SaleDate):
			p.EarningsThisMonth = p.EarningsThisMonth.Add(tx.ConsignorAmount)
			p.SalesThisMonth++
		case w.InLastMonth(tx.SaleDate):
			p.EarningsLastMonth = p.EarningsLastMonth.Add(tx.ConsignorAmount)
			p.SalesLastMonth++
		}
	}
	return p
}

// MonthRange parses a YYYY-MM month and returns its [start, end) bounds in UTC.
func MonthRange(month string) (time.Time, time.Time, error) {
	start, err := time.ParseInLocation("2006-01", month, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, start.AddDate(0, 1, 0), nil
}
