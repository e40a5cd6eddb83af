package ledger

import (
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"consignhub/backend/internal/domain"
)

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func sale(itemID string, saleDate time.Time, consignorAmount string) domain.Transaction {
	return domain.Transaction{
		ID:              "tx-" + itemID,
		ItemID:          itemID,
		SaleDate:        saleDate,
		ConsignorAmount: dec(consignorAmount),
		Status:          domain.TxStatusCompleted,
	}
}

func payout(amount string, createdAt time.Time, paid bool) domain.Payout {
	p := domain.Payout{Amount: dec(amount), CreatedAt: createdAt}
	if paid {
		paidAt := createdAt.Add(time.Hour)
		p.PaidAt = &paidAt
	}
	return p
}

func utc(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 12, 0, 0, 0, time.UTC)
}

func TestComputeLedgerEmptyInputs(t *testing.T) {
	balance := ComputeLedger(nil, nil)
	if !balance.PendingBalance.IsZero() || !balance.TotalEarnings.IsZero() || !balance.TotalPaid.IsZero() {
		t.Fatalf("expected zero balance, got %+v", balance)
	}
}

func TestComputeLedgerIdentity(t *testing.T) {
	txs := []domain.Transaction{
		sale("a", utc(2024, 3, 1), "30.00"),
		sale("b", utc(2024, 3, 2), "12.50"),
		sale("c", utc(2024, 3, 3), "7.25"),
	}
	payouts := []domain.Payout{
		payout("20.00", utc(2024, 3, 5), true),
	}

	balance := ComputeLedger(txs, payouts)
	if !balance.TotalEarnings.Equal(dec("49.75")) {
		t.Fatalf("expected earnings 49.75, got %s", balance.TotalEarnings)
	}
	if !balance.TotalPaid.Equal(dec("20")) {
		t.Fatalf("expected paid 20, got %s", balance.TotalPaid)
	}
	if !balance.PendingBalance.Equal(balance.TotalEarnings.Sub(balance.TotalPaid)) {
		t.Fatalf("pending balance must equal earnings minus paid, got %s", balance.PendingBalance)
	}
}

func TestComputeLedgerCountsUnpaidPayoutRecords(t *testing.T) {
	txs := []domain.Transaction{sale("a", utc(2024, 3, 1), "100")}
	payouts := []domain.Payout{
		payout("40", utc(2024, 3, 2), true),
		payout("25", utc(2024, 3, 3), false),
	}

	balance := ComputeLedger(txs, payouts)
	if !balance.TotalPaid.Equal(dec("65")) {
		t.Fatalf("expected scheduled payouts to count toward paid, got %s", balance.TotalPaid)
	}
	if !balance.PendingBalance.Equal(dec("35")) {
		t.Fatalf("expected pending 35, got %s", balance.PendingBalance)
	}
}

func TestComputeLedgerKeepsNegativeBalance(t *testing.T) {
	txs := []domain.Transaction{sale("a", utc(2024, 3, 1), "10")}
	payouts := []domain.Payout{payout("15", utc(2024, 3, 2), true)}

	balance := ComputeLedger(txs, payouts)
	if !balance.PendingBalance.Equal(dec("-5")) {
		t.Fatalf("expected overpayment to surface as -5, got %s", balance.PendingBalance)
	}
}

func TestComputeLedgerIgnoresInputOrder(t *testing.T) {
	txs := []domain.Transaction{
		sale("a", utc(2024, 3, 1), "0.10"),
		sale("b", utc(2024, 3, 2), "0.20"),
		sale("c", utc(2024, 3, 3), "0.30"),
	}
	reversed := []domain.Transaction{txs[2], txs[1], txs[0]}

	first := ComputeLedger(txs, nil)
	second := ComputeLedger(reversed, nil)
	if !first.TotalEarnings.Equal(second.TotalEarnings) || !first.TotalEarnings.Equal(dec("0.6")) {
		t.Fatalf("expected exact 0.6 regardless of order, got %s and %s", first.TotalEarnings, second.TotalEarnings)
	}
}

func TestPeriodWindowsMidYear(t *testing.T) {
	w := PeriodWindows(time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC))

	if !w.ThisMonthStart.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected this month start %s", w.ThisMonthStart)
	}
	if !w.LastMonthStart.Equal(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected last month start %s", w.LastMonthStart)
	}
	if !w.LastMonthEnd.Equal(w.ThisMonthStart) {
		t.Fatalf("last month end must equal this month start")
	}
}

func TestPeriodWindowsJanuaryRollsBackToDecember(t *testing.T) {
	w := PeriodWindows(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))

	if !w.ThisMonthStart.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected this month start %s", w.ThisMonthStart)
	}
	if !w.LastMonthStart.Equal(time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected December 2023, got %s", w.LastMonthStart)
	}
}

func TestPeriodWindowsNormalizesToUTC(t *testing.T) {
	zone := time.FixedZone("UTC+9", 9*60*60)
	// 2024-04-01 05:00 in UTC+9 is still March 31 in UTC.
	w := PeriodWindows(time.Date(2024, 4, 1, 5, 0, 0, 0, zone))

	if !w.ThisMonthStart.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected March window in UTC, got %s", w.ThisMonthStart)
	}
}

func TestBucketTransactionsBoundaries(t *testing.T) {
	now := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	w := PeriodWindows(now)
	txs := []domain.Transaction{
		sale("exact-start", w.ThisMonthStart, "10"),
		sale("just-before", w.ThisMonthStart.Add(-time.Nanosecond), "4"),
		sale("last-start", w.LastMonthStart, "6"),
		sale("older", w.LastMonthStart.Add(-time.Second), "100"),
	}

	p := BucketTransactions(txs, w)
	if p.SalesThisMonth != 1 || !p.EarningsThisMonth.Equal(dec("10")) {
		t.Fatalf("unexpected this month bucket %+v", p)
	}
	if p.SalesLastMonth != 2 || !p.EarningsLastMonth.Equal(dec("10")) {
		t.Fatalf("unexpected last month bucket %+v", p)
	}
}

func TestComputeItemMetricsEmpty(t *testing.T) {
	m := ComputeItemMetrics(nil, nil)
	if m.TotalItems != 0 || !m.AverageItemPrice.IsZero() || m.AverageDaysToSell != 0 || !m.InventoryValue.IsZero() {
		t.Fatalf("expected zero metrics, got %+v", m)
	}
}

func TestComputeItemMetricsDaysToSell(t *testing.T) {
	listed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	items := []domain.Item{{ID: "a", Status: domain.ItemStatusSold, Price: dec("50"), CreatedAt: listed}}
	txs := []domain.Transaction{sale("a", time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC), "30")}

	m := ComputeItemMetrics(items, txs)
	if m.AverageDaysToSell != 10 {
		t.Fatalf("expected 10 days to sell, got %v", m.AverageDaysToSell)
	}
}

func TestComputeItemMetricsSkipsNegativeAndUnmatched(t *testing.T) {
	listed := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	items := []domain.Item{
		{ID: "backdated", Status: domain.ItemStatusSold, Price: dec("10"), CreatedAt: listed},
		{ID: "normal", Status: domain.ItemStatusSold, Price: dec("10"), CreatedAt: listed},
		{ID: "orphan", Status: domain.ItemStatusSold, Price: dec("10"), CreatedAt: listed},
	}
	txs := []domain.Transaction{
		sale("backdated", listed.AddDate(0, 0, -3), "5"),
		sale("normal", listed.AddDate(0, 0, 4), "5"),
	}

	m := ComputeItemMetrics(items, txs)
	if m.AverageDaysToSell != 4 {
		t.Fatalf("expected only the valid sale to count, got %v", m.AverageDaysToSell)
	}
	if m.SoldItems != 3 {
		t.Fatalf("expected 3 sold items, got %d", m.SoldItems)
	}
}

func TestComputeItemMetricsFirstTransactionWins(t *testing.T) {
	listed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	items := []domain.Item{{ID: "a", Status: domain.ItemStatusSold, Price: dec("10"), CreatedAt: listed}}
	txs := []domain.Transaction{
		sale("a", listed.AddDate(0, 0, 2), "5"),
		sale("a", listed.AddDate(0, 0, 8), "5"),
	}

	m := ComputeItemMetrics(items, txs)
	if m.AverageDaysToSell != 2 {
		t.Fatalf("expected the first transaction per item to be used, got %v", m.AverageDaysToSell)
	}
}

func TestComputeItemMetricsCountsSumToTotal(t *testing.T) {
	items := []domain.Item{
		{ID: "1", Status: domain.ItemStatusAvailable, Price: dec("10")},
		{ID: "2", Status: domain.ItemStatusAvailable, Price: dec("15.50")},
		{ID: "3", Status: domain.ItemStatusSold, Price: dec("20")},
		{ID: "4", Status: domain.ItemStatusRemoved, Price: dec("5")},
	}

	m := ComputeItemMetrics(items, nil)
	if m.AvailableItems+m.SoldItems+m.RemovedItems != m.TotalItems {
		t.Fatalf("status counts must add up to total: %+v", m)
	}
	if !m.InventoryValue.Equal(dec("25.50")) {
		t.Fatalf("expected inventory value 25.50, got %s", m.InventoryValue)
	}
	if !m.AverageItemPrice.Equal(dec("12.625")) {
		t.Fatalf("expected average price 12.625, got %s", m.AverageItemPrice)
	}
}

func TestComputeConsignorMetricsScenario(t *testing.T) {
	now := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	items := []domain.Item{
		{ID: "A", Status: domain.ItemStatusAvailable, Price: dec("10"), CreatedAt: time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC)},
		{ID: "B", Status: domain.ItemStatusSold, Price: dec("20"), CreatedAt: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "C", Status: domain.ItemStatusRemoved, Price: dec("30"), CreatedAt: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
	}
	saleDate := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	txs := []domain.Transaction{sale("B", saleDate, "12")}
	payoutDate := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	payouts := []domain.Payout{payout("5", payoutDate, true)}

	m := ComputeConsignorMetrics(items, txs, payouts, now)

	if m.TotalItems != 3 || m.AvailableItems != 1 || m.SoldItems != 1 || m.RemovedItems != 1 {
		t.Fatalf("unexpected counts %+v", m)
	}
	if !m.InventoryValue.Equal(dec("10")) {
		t.Fatalf("expected inventory value 10, got %s", m.InventoryValue)
	}
	if !m.AverageItemPrice.Equal(dec("20")) {
		t.Fatalf("expected average price 20, got %s", m.AverageItemPrice)
	}
	if !m.TotalEarnings.Equal(dec("12")) || !m.TotalPaid.Equal(dec("5")) || !m.PendingBalance.Equal(dec("7")) {
		t.Fatalf("unexpected ledger %s/%s/%s", m.TotalEarnings, m.TotalPaid, m.PendingBalance)
	}
	if !m.EarningsThisMonth.Equal(dec("12")) || m.SalesThisMonth != 1 || m.SalesLastMonth != 0 {
		t.Fatalf("unexpected period buckets %+v", m)
	}
	if !m.EarningsLastMonth.IsZero() {
		t.Fatalf("expected no earnings last month, got %s", m.EarningsLastMonth)
	}
	if math.Abs(m.AverageDaysToSell-33) > 1e-9 {
		t.Fatalf("expected 33 days to sell, got %v", m.AverageDaysToSell)
	}
	if m.LastSaleDate == nil || !m.LastSaleDate.Equal(saleDate) {
		t.Fatalf("unexpected last sale date %v", m.LastSaleDate)
	}
	if m.LastPayoutDate == nil || !m.LastPayoutDate.Equal(payoutDate) || !m.LastPayoutAmount.Equal(dec("5")) {
		t.Fatalf("unexpected last payout %v %s", m.LastPayoutDate, m.LastPayoutAmount)
	}
}

func TestComputeConsignorMetricsLastPayoutIsLatest(t *testing.T) {
	now := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	payouts := []domain.Payout{
		payout("50", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), true),
		payout("70", time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC), false),
		payout("20", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), true),
	}

	m := ComputeConsignorMetrics(nil, nil, payouts, now)
	if !m.LastPayoutAmount.Equal(dec("70")) {
		t.Fatalf("expected latest payout amount 70, got %s", m.LastPayoutAmount)
	}
	if m.LastSaleDate != nil {
		t.Fatalf("expected no last sale date")
	}
	if !m.PendingBalance.Equal(dec("-140")) {
		t.Fatalf("expected -140 pending, got %s", m.PendingBalance)
	}
}

func TestComputeConsignorMetricsIsDeterministic(t *testing.T) {
	now := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	items := []domain.Item{
		{ID: "x", Status: domain.ItemStatusSold, Price: dec("9.99"), CreatedAt: utc(2024, 1, 20)},
		{ID: "y", Status: domain.ItemStatusSold, Price: dec("14.50"), CreatedAt: utc(2024, 2, 1)},
		{ID: "z", Status: domain.ItemStatusAvailable, Price: dec("20"), CreatedAt: utc(2024, 2, 10)},
		{ID: "w", Status: domain.ItemStatusRemoved, Price: dec("3"), CreatedAt: utc(2024, 1, 5)},
	}
	txs := []domain.Transaction{
		sale("x", utc(2024, 2, 12), "5.99"),
		sale("y", utc(2024, 3, 4), "8.70"),
	}
	payouts := []domain.Payout{
		payout("5.99", utc(2024, 2, 28), true),
		payout("2.00", utc(2024, 3, 10), false),
	}

	first := ComputeConsignorMetrics(items, txs, payouts, now)
	second := ComputeConsignorMetrics(items, txs, payouts, now)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical results for identical input:\n%+v\n%+v", first, second)
	}
	if first.SalesLastMonth != 1 || first.SalesThisMonth != 1 || first.LastPayoutDate == nil || first.LastSaleDate == nil {
		t.Fatalf("expected every field to be populated, got %+v", first)
	}
}

func TestComputeItemMetricsAveragePrice(t *testing.T) {
	items := []domain.Item{
		{ID: "a", Status: domain.ItemStatusAvailable, Price: dec("10")},
		{ID: "b", Status: domain.ItemStatusSold, Price: dec("20")},
	}
	m := ComputeItemMetrics(items, nil)
	if !m.AverageItemPrice.Equal(dec("15")) {
		t.Fatalf("expected average price 15, got %s", m.AverageItemPrice)
	}
}

func TestMonthRange(t *testing.T) {
	start, end, err := MonthRange("2023-12")
	if err != nil {
		t.Fatalf("parse month: %v", err)
	}
	if !start.Equal(time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC)) || !end.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected range %s - %s", start, end)
	}
	if _, _, err := MonthRange("2023-13"); err == nil {
		t.Fatalf("expected invalid month to fail")
	}
}
