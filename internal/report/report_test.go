package report

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"consignhub/backend/internal/domain"
)

func sampleReport() domain.SalesReport {
	saleDate := time.Date(2024, 5, 3, 14, 30, 0, 0, time.UTC)
	return domain.SalesReport{
		OrganizationID:       "org-1",
		From:                 "2024-05-01",
		To:                   "2024-05-31",
		Sales:                1,
		GrossSales:           decimal.RequireFromString("30"),
		ConsignorAmountTotal: decimal.RequireFromString("18"),
		ShopAmountTotal:      decimal.RequireFromString("12"),
		Rows: []domain.SalesReportRow{{
			TransactionID:   "tx-1",
			SaleDate:        saleDate,
			ItemSKU:         "SKU-ACC-000001",
			ItemTitle:       "Silk Scarf, red",
			ConsignorNumber: "C-00001",
			ConsignorName:   "Maria Lopez",
			PaymentMethod:   "card",
			SalePrice:       decimal.RequireFromString("30"),
			ConsignorAmount: decimal.RequireFromString("18"),
			ShopAmount:      decimal.RequireFromString("12"),
		}},
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat(""); err != nil || f != FormatJSON {
		t.Fatalf("expected json default, got %q %v", f, err)
	}
	if f, err := ParseFormat("XLSX"); err != nil || f != FormatXLSX {
		t.Fatalf("expected xlsx, got %q %v", f, err)
	}
	if _, err := ParseFormat("pdf"); err == nil {
		t.Fatalf("expected pdf to be rejected")
	}
	if FormatCSV.ContentType() != "text/csv" {
		t.Fatalf("unexpected csv content type")
	}
}

func TestWriteSalesCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSalesCSV(&buf, sampleReport()); err != nil {
		t.Fatalf("write csv failed: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read csv failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header, row and totals, got %d records", len(records))
	}
	if records[1][3] != "Silk Scarf, red" || records[1][7] != "30.00" || records[1][10] != "false" {
		t.Fatalf("unexpected row %v", records[1])
	}
	if records[2][0] != "TOTAL" || records[2][9] != "12.00" {
		t.Fatalf("unexpected totals %v", records[2])
	}
}

func TestWriteSalesXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSalesXLSX(&buf, sampleReport()); err != nil {
		t.Fatalf("write xlsx failed: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open xlsx failed: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(salesSheet)
	if err != nil {
		t.Fatalf("get rows failed: %v", err)
	}
	if len(rows) != 3 || rows[0][0] != "transaction_id" || rows[1][4] != "C-00001" {
		t.Fatalf("unexpected rows %v", rows)
	}
	value, err := f.GetCellValue(salesSheet, "H2", excelize.Options{RawCellValue: true})
	if err != nil {
		t.Fatalf("get cell failed: %v", err)
	}
	if value != "30" {
		t.Fatalf("expected numeric sale price cell, got %q", value)
	}
}

func TestWriteStatementFormats(t *testing.T) {
	paidAt := time.Date(2024, 5, 20, 9, 0, 0, 0, time.UTC)
	st := domain.ConsignorStatement{
		Consignor:     domain.Consignor{Number: "C-00001", Name: "Maria Lopez"},
		Month:         "2024-05",
		Sales:         sampleReport().Rows,
		Payouts:       []domain.Payout{{Number: "PO-202405-0001", Amount: decimal.RequireFromString("18"), CreatedAt: paidAt, PaidAt: &paidAt, Method: "cash"}},
		MonthEarnings: decimal.RequireFromString("18"),
		MonthPaid:     decimal.RequireFromString("18"),
	}

	var csvBuf bytes.Buffer
	if err := WriteStatementCSV(&csvBuf, st); err != nil {
		t.Fatalf("write statement csv failed: %v", err)
	}
	r := csv.NewReader(&csvBuf)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		t.Fatalf("read statement csv failed: %v", err)
	}
	if records[0][1] != "C-00001" || records[1][1] != "2024-05" {
		t.Fatalf("unexpected statement header %v", records[:2])
	}

	var xlsxBuf bytes.Buffer
	if err := WriteStatementXLSX(&xlsxBuf, st); err != nil {
		t.Fatalf("write statement xlsx failed: %v", err)
	}
	f, err := excelize.OpenReader(&xlsxBuf)
	if err != nil {
		t.Fatalf("open xlsx failed: %v", err)
	}
	defer f.Close()
	if got := f.GetSheetList(); len(got) != 3 {
		t.Fatalf("expected 3 sheets, got %v", got)
	}
	payouts, err := f.GetRows(payoutsSheet)
	if err != nil {
		t.Fatalf("get payout rows failed: %v", err)
	}
	if len(payouts) != 2 || payouts[1][0] != "PO-202405-0001" {
		t.Fatalf("unexpected payout rows %v", payouts)
	}
}
