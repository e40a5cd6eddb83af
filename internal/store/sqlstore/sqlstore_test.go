package sqlstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"consignhub/backend/internal/domain"
	"consignhub/backend/internal/store"
)

func TestRebindOnlyTouchesPlaceholders(t *testing.T) {
	s := &Store{dialect: SQLite}
	got := s.rebind(`SELECT '$' FROM t WHERE a = $1 AND b = $12`)
	want := `SELECT '$' FROM t WHERE a = ?1 AND b = ?12`
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}

	pg := &Store{dialect: Postgres}
	if pg.rebind("a = $1") != "a = $1" {
		t.Fatalf("postgres queries must not be rebound")
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("second migrate failed: %v", err)
	}
}

func TestOrganizationLookupBySlug(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	org, err := s.GetOrganizationBySlug(ctx, " Test-Shop ")
	if err != nil {
		t.Fatalf("get by slug: %v", err)
	}
	if org.ID != testOrgID || !org.DefaultSplitPercent.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("unexpected organization %+v", org)
	}

	org.Name = "Renamed"
	org.DefaultSplitPercent = decimal.RequireFromString("55.5")
	updated, err := s.UpdateOrganization(ctx, *org)
	if err != nil {
		t.Fatalf("update organization: %v", err)
	}
	if updated.Name != "Renamed" || !updated.DefaultSplitPercent.Equal(decimal.RequireFromString("55.5")) {
		t.Fatalf("unexpected update result %+v", updated)
	}

	if _, err := s.GetOrganizationBySlug(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUsersRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.CreateUser(ctx, domain.UserAccount{Username: " Clerk ", Password: "hash", OrganizationID: testOrgID}); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := s.CreateUser(ctx, domain.UserAccount{Username: "clerk", Password: "hash", OrganizationID: testOrgID}); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected duplicate username conflict, got %v", err)
	}
	if err := s.UpdateUserPassword(ctx, "clerk", "new-hash"); err != nil {
		t.Fatalf("update password: %v", err)
	}

	users, err := s.ListUsers(ctx)
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(users) != 1 || users[0].Username != "clerk" || users[0].Role != domain.RoleStaff || !users[0].Active || users[0].Password != "new-hash" {
		t.Fatalf("unexpected users %+v", users)
	}
}

func TestConsignorNumbersAreUniquePerOrganization(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedConsignor(t, s, "C-00001")

	_, err := s.CreateConsignor(ctx, domain.Consignor{
		OrganizationID: testOrgID,
		Number:         "C-00001",
		Name:           "Duplicate",
		SplitPercent:   decimal.NewFromInt(50),
		Status:         domain.ConsignorStatusActive,
	})
	if !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	exists, err := s.ConsignorNumberExists(ctx, testOrgID, "C-00001")
	if err != nil || !exists {
		t.Fatalf("expected number to exist, got %v %v", exists, err)
	}
}

func TestListConsignorsFiltersAndPages(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	for _, n := range []string{"C-00003", "C-00001", "C-00002"} {
		seedConsignor(t, s, n)
	}
	second, _ := s.GetConsignor(ctx, testOrgID, mustFindConsignor(t, s, "C-00002").ID)
	second.Status = domain.ConsignorStatusInactive
	if _, err := s.UpdateConsignor(ctx, *second); err != nil {
		t.Fatalf("update consignor: %v", err)
	}

	active, total, err := s.ListConsignors(ctx, testOrgID, domain.ConsignorFilter{Status: domain.ConsignorStatusActive})
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if total != 2 || len(active) != 2 || active[0].Number != "C-00001" {
		t.Fatalf("unexpected active list %d %+v", total, active)
	}

	paged, total, err := s.ListConsignors(ctx, testOrgID, domain.ConsignorFilter{Offset: 1, Limit: 1})
	if err != nil {
		t.Fatalf("list paged: %v", err)
	}
	if total != 3 || len(paged) != 1 || paged[0].Number != "C-00002" {
		t.Fatalf("unexpected page %d %+v", total, paged)
	}

	found, _, err := s.ListConsignors(ctx, testOrgID, domain.ConsignorFilter{Search: "00003"})
	if err != nil || len(found) != 1 {
		t.Fatalf("expected search hit, got %+v %v", found, err)
	}
}

func mustFindConsignor(t *testing.T, s *Store, number string) domain.Consignor {
	t.Helper()
	rows, _, err := s.ListConsignors(context.Background(), testOrgID, domain.ConsignorFilter{Search: number})
	if err != nil || len(rows) != 1 {
		t.Fatalf("find consignor %s: %v %+v", number, err, rows)
	}
	return rows[0]
}

func TestCreateItemRequiresConsignorInOrganization(t *testing.T) {
	s := newTestStore(t)
	_, err := s.CreateItem(context.Background(), domain.Item{
		OrganizationID: testOrgID,
		ConsignorID:    "cons-missing",
		SKU:            "SKU-1",
		Title:          "Orphan",
		Category:       "misc",
		Price:          decimal.NewFromInt(5),
	})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSaleMarksItemSoldAndBlocksDoubleSale(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	c := seedConsignor(t, s, "C-00001")
	item := seedItem(t, s, c.ID, "SKU-1", "40.00", time.Now().UTC().AddDate(0, 0, -3))

	saleDate := time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC)
	tx := recordSale(t, s, item, "40.00", "24.00", saleDate)
	if tx.ConsignorID != c.ID || tx.Status != domain.TxStatusCompleted || tx.PayoutID != nil {
		t.Fatalf("unexpected transaction %+v", tx)
	}
	if !tx.SaleDate.Equal(saleDate) || !tx.ConsignorAmount.Equal(decimal.NewFromInt(24)) {
		t.Fatalf("unexpected persisted values %+v", tx)
	}

	sold, err := s.GetItem(ctx, testOrgID, item.ID)
	if err != nil {
		t.Fatalf("get item: %v", err)
	}
	if sold.Status != domain.ItemStatusSold || sold.SoldAt == nil || !sold.SoldAt.Equal(saleDate) {
		t.Fatalf("expected sold item, got %+v", sold)
	}

	_, err = s.CreateSale(ctx, domain.Transaction{
		OrganizationID:  testOrgID,
		ItemID:          item.ID,
		SalePrice:       decimal.NewFromInt(40),
		ConsignorAmount: decimal.NewFromInt(24),
		ShopAmount:      decimal.NewFromInt(16),
		PaymentMethod:   "cash",
	})
	if !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected conflict for second sale, got %v", err)
	}
}

func TestVoidSaleRestoresItem(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	c := seedConsignor(t, s, "C-00001")
	item := seedItem(t, s, c.ID, "SKU-1", "10", time.Now().UTC())
	tx := recordSale(t, s, item, "10", "6", time.Now().UTC())

	voided, err := s.VoidSale(ctx, testOrgID, tx.ID, "wrong item", time.Now().UTC())
	if err != nil {
		t.Fatalf("void sale: %v", err)
	}
	if voided.Status != domain.TxStatusVoided || voided.VoidReason != "wrong item" {
		t.Fatalf("unexpected voided tx %+v", voided)
	}
	restored, _ := s.GetItem(ctx, testOrgID, item.ID)
	if restored.Status != domain.ItemStatusAvailable || restored.SoldAt != nil {
		t.Fatalf("expected item to be available again, got %+v", restored)
	}

	if _, err := s.VoidSale(ctx, testOrgID, tx.ID, "again", time.Now().UTC()); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected conflict on double void, got %v", err)
	}

	completed, err := s.ListTransactions(ctx, testOrgID, domain.TransactionFilter{ConsignorID: c.ID})
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	if len(completed) != 0 {
		t.Fatalf("voided sales must not be listed by default, got %d", len(completed))
	}
	all, _ := s.ListTransactions(ctx, testOrgID, domain.TransactionFilter{ConsignorID: c.ID, IncludeVoided: true})
	if len(all) != 1 {
		t.Fatalf("expected voided sale when requested, got %d", len(all))
	}
}

func TestListTransactionsDateWindow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	c := seedConsignor(t, s, "C-00001")
	dates := []time.Time{
		time.Date(2024, 2, 29, 23, 59, 59, 0, time.UTC),
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC),
		time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
	}
	for i, d := range dates {
		item := seedItem(t, s, c.ID, "SKU-"+string(rune('A'+i)), "10", d.AddDate(0, 0, -1))
		recordSale(t, s, item, "10", "6", d)
	}

	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	txs, err := s.ListTransactions(ctx, testOrgID, domain.TransactionFilter{From: &from, To: &to})
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("expected 2 sales in March, got %d", len(txs))
	}
	if !txs[0].SaleDate.After(txs[1].SaleDate) {
		t.Fatalf("expected newest first")
	}
}

func TestPayoutLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	c := seedConsignor(t, s, "C-00001")
	first := recordSale(t, s, seedItem(t, s, c.ID, "SKU-1", "20", time.Now().UTC()), "20", "12", time.Now().UTC())
	second := recordSale(t, s, seedItem(t, s, c.ID, "SKU-2", "10", time.Now().UTC()), "10", "6", time.Now().UTC())

	payout, err := s.CreatePayout(ctx, domain.Payout{
		OrganizationID: testOrgID,
		ConsignorID:    c.ID,
		Number:         "PO-202403-0001",
		Amount:         decimal.NewFromInt(18),
	}, []string{first.ID, second.ID})
	if err != nil {
		t.Fatalf("create payout: %v", err)
	}
	if payout.TransactionCount != 2 || payout.PaidAt != nil {
		t.Fatalf("unexpected payout %+v", payout)
	}

	unpaid, _ := s.ListTransactions(ctx, testOrgID, domain.TransactionFilter{ConsignorID: c.ID, UnpaidOnly: true})
	if len(unpaid) != 0 {
		t.Fatalf("expected all sales linked, got %d unpaid", len(unpaid))
	}
	if _, err := s.VoidSale(ctx, testOrgID, first.ID, "too late", time.Now().UTC()); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected linked sale void to conflict, got %v", err)
	}

	_, err = s.CreatePayout(ctx, domain.Payout{
		OrganizationID: testOrgID,
		ConsignorID:    c.ID,
		Number:         "PO-202403-0002",
		Amount:         decimal.NewFromInt(12),
	}, []string{first.ID})
	if !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected conflict when relinking, got %v", err)
	}
	if _, err := s.GetPayout(ctx, testOrgID, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	pending, _ := s.ListPayouts(ctx, testOrgID, domain.PayoutFilter{Status: domain.PayoutStatusPending})
	if len(pending) != 1 {
		t.Fatalf("expected one pending payout, got %d", len(pending))
	}

	paid, err := s.MarkPayoutPaid(ctx, testOrgID, payout.ID, "check", "CHK-100", time.Now().UTC())
	if err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if paid.PaidAt == nil || paid.Method != "check" || paid.Reference != "CHK-100" {
		t.Fatalf("unexpected paid payout %+v", paid)
	}
	if _, err := s.MarkPayoutPaid(ctx, testOrgID, payout.ID, "cash", "", time.Now().UTC()); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected conflict on double pay, got %v", err)
	}
	if err := s.CancelPayout(ctx, testOrgID, payout.ID); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("expected paid payout cancel to conflict, got %v", err)
	}
}

func TestCancelPayoutReleasesTransactions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	c := seedConsignor(t, s, "C-00001")
	tx := recordSale(t, s, seedItem(t, s, c.ID, "SKU-1", "20", time.Now().UTC()), "20", "12", time.Now().UTC())

	payout, err := s.CreatePayout(ctx, domain.Payout{
		OrganizationID: testOrgID,
		ConsignorID:    c.ID,
		Number:         "PO-202403-0001",
		Amount:         decimal.NewFromInt(12),
	}, []string{tx.ID})
	if err != nil {
		t.Fatalf("create payout: %v", err)
	}
	if err := s.CancelPayout(ctx, testOrgID, payout.ID); err != nil {
		t.Fatalf("cancel payout: %v", err)
	}

	released, _ := s.GetTransaction(ctx, testOrgID, tx.ID)
	if released.PayoutID != nil {
		t.Fatalf("expected transaction to be released")
	}
	if _, err := s.GetPayout(ctx, testOrgID, payout.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected cancelled payout to be gone, got %v", err)
	}
}

func TestAuditLogsWindow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()
	for i, at := range []time.Time{now.Add(-2 * time.Hour), now.Add(-time.Hour), now.Add(-48 * time.Hour)} {
		if err := s.CreateAuditLog(ctx, domain.AuditLog{
			OrganizationID: testOrgID,
			ActorUsername:  "admin",
			ActorRole:      domain.RoleAdmin,
			Action:         "test",
			EntityType:     "item",
			EntityID:       string(rune('a' + i)),
			CreatedAt:      at,
		}); err != nil {
			t.Fatalf("create audit log: %v", err)
		}
	}

	logs, err := s.ListAuditLogs(ctx, testOrgID, now.Add(-24*time.Hour), now, 10)
	if err != nil {
		t.Fatalf("list audit logs: %v", err)
	}
	if len(logs) != 2 || logs[0].EntityID != "b" {
		t.Fatalf("unexpected audit logs %+v", logs)
	}
}
