package report

import (
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"consignhub/backend/internal/domain"
)

const (
	salesSheet   = "Sales"
	payoutsSheet = "Payouts"
	summarySheet = "Summary"
)

type workbook struct {
	f         *excelize.File
	moneyFmt  int
	headerFmt int
}

func newWorkbook(firstSheet string) (*workbook, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", firstSheet); err != nil {
		return nil, err
	}
	moneyFmt, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return nil, err
	}
	headerFmt, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	return &workbook{f: f, moneyFmt: moneyFmt, headerFmt: headerFmt}, nil
}

func (wb *workbook) header(sheet string, values []string) error {
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	if err := wb.f.SetSheetRow(sheet, "A1", &row); err != nil {
		return err
	}
	end, err := excelize.CoordinatesToCellName(len(values), 1)
	if err != nil {
		return err
	}
	return wb.f.SetCellStyle(sheet, "A1", end, wb.headerFmt)
}

// row writes values at rowNo; decimal values become numeric cells with a
// money format.
func (wb *workbook) row(sheet string, rowNo int, values ...interface{}) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, rowNo)
		if err != nil {
			return err
		}
		if d, ok := v.(decimal.Decimal); ok {
			if err := wb.f.SetCellFloat(sheet, cell, d.InexactFloat64(), -1, 64); err != nil {
				return err
			}
			if err := wb.f.SetCellStyle(sheet, cell, cell, wb.moneyFmt); err != nil {
				return err
			}
			continue
		}
		if err := wb.f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}

func (wb *workbook) salesRows(sheet string, rows []domain.SalesReportRow) (int, error) {
	if err := wb.header(sheet, salesHeader); err != nil {
		return 0, err
	}
	rowNo := 2
	for _, r := range rows {
		err := wb.row(sheet, rowNo,
			r.TransactionID, r.SaleDate.UTC().Format("2006-01-02 15:04"), r.ItemSKU, r.ItemTitle,
			r.ConsignorNumber, r.ConsignorName, r.PaymentMethod,
			r.SalePrice, r.ConsignorAmount, r.ShopAmount, r.PaidOut)
		if err != nil {
			return 0, err
		}
		rowNo++
	}
	return rowNo, nil
}

func (wb *workbook) write(w io.Writer) error {
	defer wb.f.Close()
	return wb.f.Write(w)
}

func WriteSalesXLSX(w io.Writer, rep domain.SalesReport) error {
	wb, err := newWorkbook(salesSheet)
	if err != nil {
		return err
	}
	next, err := wb.salesRows(salesSheet, rep.Rows)
	if err != nil {
		return err
	}
	if err := wb.row(salesSheet, next, "TOTAL", "", "", "", "", "", "",
		rep.GrossSales, rep.ConsignorAmountTotal, rep.ShopAmountTotal); err != nil {
		return err
	}
	return wb.write(w)
}

// WriteStatementXLSX lays the statement out on three sheets: the month's
// sales, its payouts and a summary of balances.
func WriteStatementXLSX(w io.Writer, st domain.ConsignorStatement) error {
	wb, err := newWorkbook(salesSheet)
	if err != nil {
		return err
	}
	if _, err := wb.salesRows(salesSheet, st.Sales); err != nil {
		return err
	}

	if _, err := wb.f.NewSheet(payoutsSheet); err != nil {
		return err
	}
	if err := wb.header(payoutsSheet, payoutHeader); err != nil {
		return err
	}
	for i, p := range st.Payouts {
		paidAt := ""
		if p.PaidAt != nil {
			paidAt = p.PaidAt.UTC().Format("2006-01-02 15:04")
		}
		if err := wb.row(payoutsSheet, i+2, p.Number, p.CreatedAt.UTC().Format("2006-01-02 15:04"),
			p.Amount, p.Method, p.Reference, paidAt); err != nil {
			return err
		}
	}

	if _, err := wb.f.NewSheet(summarySheet); err != nil {
		return err
	}
	summary := [][]interface{}{
		{"consignor", st.Consignor.Number + " " + st.Consignor.Name},
		{"month", st.Month},
		{"month_earnings", st.MonthEarnings},
		{"month_paid", st.MonthPaid},
		{"pending_balance", st.Metrics.PendingBalance},
		{"total_earnings", st.Metrics.TotalEarnings},
		{"total_paid", st.Metrics.TotalPaid},
		{"available_items", st.Metrics.AvailableItems},
		{"sold_items", st.Metrics.SoldItems},
	}
	for i, values := range summary {
		if err := wb.row(summarySheet, i+1, values...); err != nil {
			return err
		}
	}
	return wb.write(w)
}
