// Package report renders sales reports and consignor statements as CSV or
// XLSX downloads.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"consignhub/backend/internal/domain"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat accepts json, csv or xlsx. Empty means json.
func ParseFormat(raw string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(raw))); f {
	case "":
		return FormatJSON, nil
	case FormatJSON, FormatCSV, FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("format must be json, csv or xlsx")
	}
}

func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/json"
	}
}

var salesHeader = []string{
	"transaction_id", "sale_date", "sku", "title", "consignor_number", "consignor_name",
	"payment_method", "sale_price", "consignor_amount", "shop_amount", "paid_out",
}

func salesRecord(row domain.SalesReportRow) []string {
	return []string{
		row.TransactionID,
		row.SaleDate.UTC().Format(time.RFC3339),
		row.ItemSKU,
		row.ItemTitle,
		row.ConsignorNumber,
		row.ConsignorName,
		row.PaymentMethod,
		money(row.SalePrice),
		money(row.ConsignorAmount),
		money(row.ShopAmount),
		fmt.Sprintf("%t", row.PaidOut),
	}
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// WriteSalesCSV writes one line per sale followed by a totals line.
func WriteSalesCSV(w io.Writer, rep domain.SalesReport) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(salesHeader); err != nil {
		return err
	}
	for _, row := range rep.Rows {
		if err := cw.Write(salesRecord(row)); err != nil {
			return err
		}
	}
	totals := make([]string, len(salesHeader))
	totals[0] = "TOTAL"
	totals[7] = money(rep.GrossSales)
	totals[8] = money(rep.ConsignorAmountTotal)
	totals[9] = money(rep.ShopAmountTotal)
	if err := cw.Write(totals); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// WriteStatementCSV writes the month's sales, then its payouts, then a summary.
func WriteStatementCSV(w io.Writer, st domain.ConsignorStatement) error {
	cw := csv.NewWriter(w)
	records := [][]string{
		{"consignor", st.Consignor.Number, st.Consignor.Name},
		{"month", st.Month},
		{},
		salesHeader,
	}
	for _, row := range st.Sales {
		records = append(records, salesRecord(row))
	}
	records = append(records, []string{}, payoutHeader)
	for _, p := range st.Payouts {
		records = append(records, payoutRecord(p))
	}
	records = append(records,
		[]string{},
		[]string{"month_earnings", money(st.MonthEarnings)},
		[]string{"month_paid", money(st.MonthPaid)},
		[]string{"pending_balance", money(st.Metrics.PendingBalance)},
		[]string{"total_earnings", money(st.Metrics.TotalEarnings)},
		[]string{"total_paid", money(st.Metrics.TotalPaid)},
	)
	if err := cw.WriteAll(records); err != nil {
		return err
	}
	return cw.Error()
}

var payoutHeader = []string{"payout_number", "created_at", "amount", "method", "reference", "paid_at"}

func payoutRecord(p domain.Payout) []string {
	paidAt := ""
	if p.PaidAt != nil {
		paidAt = p.PaidAt.UTC().Format(time.RFC3339)
	}
	return []string{p.Number, p.CreatedAt.UTC().Format(time.RFC3339), money(p.Amount), p.Method, p.Reference, paidAt}
}
