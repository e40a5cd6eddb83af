package sqlstore

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"consignhub/backend/internal/domain"
)

func TestPostgresSaleAndPayoutRoundTrip(t *testing.T) {
	databaseURL := os.Getenv("CONSIGN_TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("set CONSIGN_TEST_DATABASE_URL to run postgres integration test")
	}

	ctx := context.Background()
	s, err := Open(ctx, Postgres, databaseURL)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})
	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	stamp := time.Now().UnixNano()
	orgID := fmt.Sprintf("org-it-%d", stamp)
	t.Cleanup(func() {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM transactions WHERE organization_id = $1`, orgID)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM payouts WHERE organization_id = $1`, orgID)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM items WHERE organization_id = $1`, orgID)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM consignors WHERE organization_id = $1`, orgID)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM organizations WHERE id = $1`, orgID)
	})

	if _, err := s.CreateOrganization(ctx, domain.Organization{
		ID:                  orgID,
		Name:                "Integration Shop",
		Slug:                fmt.Sprintf("it-shop-%d", stamp),
		DefaultSplitPercent: decimal.NewFromInt(60),
		Currency:            "USD",
	}); err != nil {
		t.Fatalf("create organization: %v", err)
	}
	consignor, err := s.CreateConsignor(ctx, domain.Consignor{
		OrganizationID: orgID,
		Number:         "C-00001",
		Name:           "Integration Consignor",
		SplitPercent:   decimal.NewFromInt(60),
		Status:         domain.ConsignorStatusActive,
	})
	if err != nil {
		t.Fatalf("create consignor: %v", err)
	}
	item, err := s.CreateItem(ctx, domain.Item{
		OrganizationID: orgID,
		ConsignorID:    consignor.ID,
		SKU:            "SKU-IT-1",
		Title:          "Integration Item",
		Category:       "misc",
		Price:          decimal.RequireFromString("19.99"),
	})
	if err != nil {
		t.Fatalf("create item: %v", err)
	}

	tx, err := s.CreateSale(ctx, domain.Transaction{
		OrganizationID:  orgID,
		ItemID:          item.ID,
		SalePrice:       decimal.RequireFromString("19.99"),
		ConsignorAmount: decimal.RequireFromString("11.99"),
		ShopAmount:      decimal.RequireFromString("8.00"),
		PaymentMethod:   "card",
	})
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}
	if !tx.ConsignorAmount.Equal(decimal.RequireFromString("11.99")) {
		t.Fatalf("expected exact numeric round trip, got %s", tx.ConsignorAmount)
	}

	payout, err := s.CreatePayout(ctx, domain.Payout{
		OrganizationID: orgID,
		ConsignorID:    consignor.ID,
		Number:         "PO-IT-0001",
		Amount:         tx.ConsignorAmount,
	}, []string{tx.ID})
	if err != nil {
		t.Fatalf("create payout: %v", err)
	}
	if payout.TransactionCount != 1 {
		t.Fatalf("expected one linked transaction, got %d", payout.TransactionCount)
	}
}
