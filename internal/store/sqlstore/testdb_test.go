package sqlstore

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"consignhub/backend/internal/domain"
)

const testOrgID = "org-test"

// newTestStore opens a fresh in-memory SQLite database with the schema and
// one organization applied.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	ctx := context.Background()
	s, err := Open(ctx, SQLite, ":memory:")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}
	if _, err := s.CreateOrganization(ctx, domain.Organization{
		ID:                  testOrgID,
		Name:                "Test Shop",
		Slug:                "test-shop",
		DefaultSplitPercent: decimal.NewFromInt(60),
		Currency:            "USD",
	}); err != nil {
		t.Fatalf("creating test organization: %v", err)
	}
	return s
}

func seedConsignor(t *testing.T, s *Store, number string) domain.Consignor {
	t.Helper()
	c, err := s.CreateConsignor(context.Background(), domain.Consignor{
		OrganizationID: testOrgID,
		Number:         number,
		Name:           "Consignor " + number,
		SplitPercent:   decimal.NewFromInt(60),
		Status:         domain.ConsignorStatusActive,
	})
	if err != nil {
		t.Fatalf("create consignor: %v", err)
	}
	return *c
}

func seedItem(t *testing.T, s *Store, consignorID string, sku string, price string, createdAt time.Time) domain.Item {
	t.Helper()
	item, err := s.CreateItem(context.Background(), domain.Item{
		OrganizationID: testOrgID,
		ConsignorID:    consignorID,
		SKU:            sku,
		Title:          "Item " + sku,
		Category:       "apparel",
		Price:          decimal.RequireFromString(price),
		CreatedAt:      createdAt,
	})
	if err != nil {
		t.Fatalf("create item: %v", err)
	}
	return *item
}

func recordSale(t *testing.T, s *Store, item domain.Item, price string, consignorAmount string, saleDate time.Time) domain.Transaction {
	t.Helper()
	salePrice := decimal.RequireFromString(price)
	share := decimal.RequireFromString(consignorAmount)
	tx, err := s.CreateSale(context.Background(), domain.Transaction{
		OrganizationID:  testOrgID,
		ItemID:          item.ID,
		SaleDate:        saleDate,
		SalePrice:       salePrice,
		ConsignorAmount: share,
		ShopAmount:      salePrice.Sub(share),
		PaymentMethod:   "cash",
	})
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}
	return *tx
}
