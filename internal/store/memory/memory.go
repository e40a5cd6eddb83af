package memory

import (
	"context"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"consignhub/backend/internal/domain"
	"consignhub/backend/internal/store"
	"consignhub/backend/internal/xid"
)

const (
	DemoOrganizationID   = "org-demo"
	DemoOrganizationSlug = "demo-shop"
)

type Store struct {
	mu               sync.RWMutex
	organizations    map[string]domain.Organization
	consignorsByID   map[string]domain.Consignor
	itemsByID        map[string]domain.Item
	transactionsByID map[string]domain.Transaction
	payoutsByID      map[string]domain.Payout
	auditLogs        []domain.AuditLog
	usersByUsername  map[string]domain.UserAccount
}

// New returns an empty store with a single organization and no users.
func New(org domain.Organization) *Store {
	s := &Store{
		organizations:    map[string]domain.Organization{org.ID: org},
		consignorsByID:   make(map[string]domain.Consignor),
		itemsByID:        make(map[string]domain.Item),
		transactionsByID: make(map[string]domain.Transaction),
		payoutsByID:      make(map[string]domain.Payout),
		auditLogs:        make([]domain.AuditLog, 0, 128),
		usersByUsername:  make(map[string]domain.UserAccount),
	}
	return s
}

// seedUsers builds the initial in-memory user accounts for dev/demo mode.
// Credentials are read from SEED_ADMIN_PASSWORD and SEED_STAFF_PASSWORD.
// If unset, hardcoded dev defaults are used with a warning.
func seedUsers(orgID string, now time.Time) map[string]domain.UserAccount {
	adminPwd := envOr("SEED_ADMIN_PASSWORD", "admin123")
	staffPwd := envOr("SEED_STAFF_PASSWORD", "staff123")
	if os.Getenv("SEED_ADMIN_PASSWORD") == "" || os.Getenv("SEED_STAFF_PASSWORD") == "" {
		logrus.WithField("component", "memory-store").
			Warn("using default dev credentials, set SEED_ADMIN_PASSWORD and SEED_STAFF_PASSWORD to override")
	}

	users := map[string]domain.UserAccount{}
	for _, u := range []struct {
		username string
		password string
		role     string
	}{
		{"admin", adminPwd, domain.RoleAdmin},
		{"staff", staffPwd, domain.RoleStaff},
	} {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			logrus.WithField("component", "memory-store").Fatalf("failed to hash seed password for %s: %v", u.username, err)
		}
		users[u.username] = domain.UserAccount{
			Username:       u.username,
			Password:       string(hash),
			Role:           u.role,
			OrganizationID: orgID,
			Active:         true,
			CreatedAt:      now,
		}
	}
	return users
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// NewSeeded returns a store holding one demo shop with two consignors, a few
// items and one completed sale.
func NewSeeded() *Store {
	now := time.Now().UTC()
	daysAgo := func(days int) time.Time { return now.AddDate(0, 0, -days) }

	s := New(domain.Organization{
		ID:                  DemoOrganizationID,
		Name:                "Demo Consignment Shop",
		Slug:                DemoOrganizationSlug,
		DefaultSplitPercent: decimal.NewFromInt(60),
		Currency:            "USD",
		CreatedAt:           daysAgo(120),
	})
	s.usersByUsername = seedUsers(DemoOrganizationID, now)

	consignors := []domain.Consignor{
		{ID: "cons-demo-1", Number: "C-00001", Name: "Maria Lopez", Email: "maria@example.com", Phone: "+14155550101", SplitPercent: decimal.NewFromInt(60), CreatedAt: daysAgo(100)},
		{ID: "cons-demo-2", Number: "C-00002", Name: "Ken Tanaka", Email: "ken@example.com", SplitPercent: decimal.NewFromInt(50), CreatedAt: daysAgo(80)},
	}
	for _, c := range consignors {
		c.OrganizationID = DemoOrganizationID
		c.Status = domain.ConsignorStatusActive
		c.UpdatedAt = c.CreatedAt
		s.consignorsByID[c.ID] = c
	}

	items := []domain.Item{
		{ID: "item-demo-1", ConsignorID: "cons-demo-1", SKU: "SKU-DEMO-0001", Title: "Wool Peacoat", Category: "outerwear", Price: decimal.RequireFromString("85.00"), CreatedAt: daysAgo(95)},
		{ID: "item-demo-2", ConsignorID: "cons-demo-1", SKU: "SKU-DEMO-0002", Title: "Leather Handbag", Category: "accessories", Price: decimal.RequireFromString("120.00"), CreatedAt: daysAgo(40)},
		{ID: "item-demo-3", ConsignorID: "cons-demo-1", SKU: "SKU-DEMO-0003", Title: "Silk Scarf", Category: "accessories", Price: decimal.RequireFromString("30.00"), CreatedAt: daysAgo(30)},
		{ID: "item-demo-4", ConsignorID: "cons-demo-2", SKU: "SKU-DEMO-0004", Title: "Denim Jacket", Category: "outerwear", Price: decimal.RequireFromString("45.00"), CreatedAt: daysAgo(10)},
	}
	for _, item := range items {
		item.OrganizationID = DemoOrganizationID
		item.Status = domain.ItemStatusAvailable
		item.UpdatedAt = item.CreatedAt
		s.itemsByID[item.ID] = item
	}

	saleDate := daysAgo(5)
	sold := s.itemsByID["item-demo-3"]
	sold.Status = domain.ItemStatusSold
	sold.SoldAt = &saleDate
	sold.UpdatedAt = saleDate
	s.itemsByID[sold.ID] = sold
	s.transactionsByID["tx-demo-1"] = domain.Transaction{
		ID:              "tx-demo-1",
		OrganizationID:  DemoOrganizationID,
		ItemID:          sold.ID,
		ConsignorID:     sold.ConsignorID,
		SaleDate:        saleDate,
		SalePrice:       decimal.RequireFromString("30.00"),
		ConsignorAmount: decimal.RequireFromString("18.00"),
		ShopAmount:      decimal.RequireFromString("12.00"),
		PaymentMethod:   "card",
		Status:          domain.TxStatusCompleted,
		CreatedAt:       saleDate,
	}

	return s
}

func (s *Store) GetOrganization(_ context.Context, id string) (*domain.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	org, ok := s.organizations[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &org, nil
}

func (s *Store) GetOrganizationBySlug(_ context.Context, slug string) (*domain.Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	slug = strings.ToLower(strings.TrimSpace(slug))
	for _, org := range s.organizations {
		if org.Slug == slug {
			found := org
			return &found, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) UpdateOrganization(_ context.Context, org domain.Organization) (*domain.Organization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.organizations[org.ID]
	if !ok {
		return nil, store.ErrNotFound
	}
	current.Name = org.Name
	current.DefaultSplitPercent = org.DefaultSplitPercent
	current.Currency = org.Currency
	s.organizations[org.ID] = current
	return &current, nil
}

func (s *Store) CreateConsignor(_ context.Context, consignor domain.Consignor) (*domain.Consignor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if consignor.OrganizationID == "" || consignor.Number == "" || strings.TrimSpace(consignor.Name) == "" {
		return nil, store.ErrInvalidInput
	}
	for _, existing := range s.consignorsByID {
		if existing.OrganizationID == consignor.OrganizationID && existing.Number == consignor.Number {
			return nil, store.ErrConflict
		}
	}
	if consignor.ID == "" {
		consignor.ID = xid.New("cons")
	}
	if consignor.CreatedAt.IsZero() {
		consignor.CreatedAt = time.Now().UTC()
	}
	if consignor.UpdatedAt.IsZero() {
		consignor.UpdatedAt = consignor.CreatedAt
	}
	s.consignorsByID[consignor.ID] = consignor
	return &consignor, nil
}

func (s *Store) GetConsignor(_ context.Context, orgID string, id string) (*domain.Consignor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	consignor, ok := s.consignorsByID[id]
	if !ok || consignor.OrganizationID != orgID {
		return nil, store.ErrNotFound
	}
	return &consignor, nil
}

func (s *Store) UpdateConsignor(_ context.Context, consignor domain.Consignor) (*domain.Consignor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.consignorsByID[consignor.ID]
	if !ok || current.OrganizationID != consignor.OrganizationID {
		return nil, store.ErrNotFound
	}
	consignor.Number = current.Number
	consignor.CreatedAt = current.CreatedAt
	if consignor.UpdatedAt.IsZero() {
		consignor.UpdatedAt = time.Now().UTC()
	}
	s.consignorsByID[consignor.ID] = consignor
	return &consignor, nil
}

func (s *Store) ListConsignors(_ context.Context, orgID string, filter domain.ConsignorFilter) ([]domain.Consignor, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	result := make([]domain.Consignor, 0, len(s.consignorsByID))
	for _, c := range s.consignorsByID {
		if c.OrganizationID != orgID {
			continue
		}
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		if search != "" && !containsAny(search, c.Name, c.Email, c.Phone, c.Number) {
			continue
		}
		result = append(result, c)
	}
	slices.SortFunc(result, func(a, b domain.Consignor) int {
		return cmpString(a.Number, b.Number)
	})

	total := len(result)
	return page(result, filter.Offset, filter.Limit), total, nil
}

func (s *Store) ConsignorNumberExists(_ context.Context, orgID string, number string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.consignorsByID {
		if c.OrganizationID == orgID && c.Number == number {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) CreateItem(_ context.Context, item domain.Item) (*domain.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if item.OrganizationID == "" || item.SKU == "" || item.Price.IsNegative() {
		return nil, store.ErrInvalidInput
	}
	consignor, ok := s.consignorsByID[item.ConsignorID]
	if !ok || consignor.OrganizationID != item.OrganizationID {
		return nil, store.ErrNotFound
	}
	for _, existing := range s.itemsByID {
		if existing.OrganizationID == item.OrganizationID && existing.SKU == item.SKU {
			return nil, store.ErrConflict
		}
	}
	if item.ID == "" {
		item.ID = xid.New("item")
	}
	if item.Status == "" {
		item.Status = domain.ItemStatusAvailable
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	if item.UpdatedAt.IsZero() {
		item.UpdatedAt = item.CreatedAt
	}
	s.itemsByID[item.ID] = cloneItem(item)
	return ptr(cloneItem(item)), nil
}

func (s *Store) GetItem(_ context.Context, orgID string, id string) (*domain.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.itemsByID[id]
	if !ok || item.OrganizationID != orgID {
		return nil, store.ErrNotFound
	}
	return ptr(cloneItem(item)), nil
}

func (s *Store) UpdateItem(_ context.Context, item domain.Item) (*domain.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.itemsByID[item.ID]
	if !ok || current.OrganizationID != item.OrganizationID {
		return nil, store.ErrNotFound
	}
	if item.Price.IsNegative() {
		return nil, store.ErrInvalidInput
	}
	item.SKU = current.SKU
	item.ConsignorID = current.ConsignorID
	item.CreatedAt = current.CreatedAt
	if item.UpdatedAt.IsZero() {
		item.UpdatedAt = time.Now().UTC()
	}
	s.itemsByID[item.ID] = cloneItem(item)
	return ptr(cloneItem(item)), nil
}

func (s *Store) ListItems(_ context.Context, orgID string, filter domain.ItemFilter) ([]domain.Item, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	result := make([]domain.Item, 0, len(s.itemsByID))
	for _, item := range s.itemsByID {
		if item.OrganizationID != orgID {
			continue
		}
		if filter.ConsignorID != "" && item.ConsignorID != filter.ConsignorID {
			continue
		}
		if filter.Status != "" && item.Status != filter.Status {
			continue
		}
		if filter.Category != "" && !strings.EqualFold(item.Category, filter.Category) {
			continue
		}
		if search != "" && !containsAny(search, item.Title, item.SKU, item.Description) {
			continue
		}
		result = append(result, cloneItem(item))
	}
	slices.SortFunc(result, func(a, b domain.Item) int {
		if a.CreatedAt.Equal(b.CreatedAt) {
			return cmpString(a.ID, b.ID)
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	total := len(result)
	return page(result, filter.Offset, filter.Limit), total, nil
}

func (s *Store) ItemSKUExists(_ context.Context, orgID string, sku string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, item := range s.itemsByID {
		if item.OrganizationID == orgID && item.SKU == sku {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) CreateSale(_ context.Context, tx domain.Transaction) (*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.itemsByID[tx.ItemID]
	if !ok || item.OrganizationID != tx.OrganizationID {
		return nil, store.ErrNotFound
	}
	if item.Status != domain.ItemStatusAvailable {
		return nil, store.ErrConflict
	}
	if tx.SalePrice.IsNegative() || !tx.ConsignorAmount.Add(tx.ShopAmount).Equal(tx.SalePrice) {
		return nil, store.ErrInvalidInput
	}
	if tx.ID == "" {
		tx.ID = xid.New("tx")
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now().UTC()
	}
	if tx.SaleDate.IsZero() {
		tx.SaleDate = tx.CreatedAt
	}
	tx.ConsignorID = item.ConsignorID
	tx.Status = domain.TxStatusCompleted
	tx.PayoutID = nil

	soldAt := tx.SaleDate
	item.Status = domain.ItemStatusSold
	item.SoldAt = &soldAt
	item.UpdatedAt = tx.CreatedAt
	s.itemsByID[item.ID] = item
	s.transactionsByID[tx.ID] = tx
	return ptr(cloneTransaction(tx)), nil
}

func (s *Store) VoidSale(_ context.Context, orgID string, id string, reason string, at time.Time) (*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, ok := s.transactionsByID[id]
	if !ok || tx.OrganizationID != orgID {
		return nil, store.ErrNotFound
	}
	if tx.Status != domain.TxStatusCompleted || tx.PayoutID != nil {
		return nil, store.ErrConflict
	}

	if item, ok := s.itemsByID[tx.ItemID]; ok {
		item.Status = domain.ItemStatusAvailable
		item.SoldAt = nil
		item.UpdatedAt = at
		s.itemsByID[item.ID] = item
	}

	tx.Status = domain.TxStatusVoided
	tx.VoidReason = reason
	s.transactionsByID[tx.ID] = tx
	return ptr(cloneTransaction(tx)), nil
}

func (s *Store) GetTransaction(_ context.Context, orgID string, id string) (*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, ok := s.transactionsByID[id]
	if !ok || tx.OrganizationID != orgID {
		return nil, store.ErrNotFound
	}
	return ptr(cloneTransaction(tx)), nil
}

func (s *Store) ListTransactions(_ context.Context, orgID string, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Transaction, 0, len(s.transactionsByID))
	for _, tx := range s.transactionsByID {
		if tx.OrganizationID != orgID {
			continue
		}
		if filter.ConsignorID != "" && tx.ConsignorID != filter.ConsignorID {
			continue
		}
		if filter.ItemID != "" && tx.ItemID != filter.ItemID {
			continue
		}
		if !filter.IncludeVoided && tx.Status != domain.TxStatusCompleted {
			continue
		}
		if filter.UnpaidOnly && tx.PayoutID != nil {
			continue
		}
		if filter.From != nil && tx.SaleDate.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !tx.SaleDate.Before(*filter.To) {
			continue
		}
		result = append(result, cloneTransaction(tx))
	}
	slices.SortFunc(result, func(a, b domain.Transaction) int {
		if a.SaleDate.Equal(b.SaleDate) {
			return cmpString(b.ID, a.ID)
		}
		return b.SaleDate.Compare(a.SaleDate)
	})
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

func (s *Store) CreatePayout(_ context.Context, payout domain.Payout, transactionIDs []string) (*domain.Payout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if payout.OrganizationID == "" || payout.ConsignorID == "" || payout.Number == "" || len(transactionIDs) == 0 {
		return nil, store.ErrInvalidInput
	}
	for _, existing := range s.payoutsByID {
		if existing.OrganizationID == payout.OrganizationID && existing.Number == payout.Number {
			return nil, store.ErrConflict
		}
	}
	for _, id := range transactionIDs {
		tx, ok := s.transactionsByID[id]
		if !ok || tx.OrganizationID != payout.OrganizationID || tx.ConsignorID != payout.ConsignorID {
			return nil, store.ErrConflict
		}
		if tx.Status != domain.TxStatusCompleted || tx.PayoutID != nil {
			return nil, store.ErrConflict
		}
	}

	if payout.ID == "" {
		payout.ID = xid.New("payout")
	}
	if payout.CreatedAt.IsZero() {
		payout.CreatedAt = time.Now().UTC()
	}
	payout.TransactionCount = len(transactionIDs)
	for _, id := range transactionIDs {
		tx := s.transactionsByID[id]
		payoutID := payout.ID
		tx.PayoutID = &payoutID
		s.transactionsByID[id] = tx
	}
	s.payoutsByID[payout.ID] = payout
	return ptr(clonePayout(payout)), nil
}

func (s *Store) GetPayout(_ context.Context, orgID string, id string) (*domain.Payout, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	payout, ok := s.payoutsByID[id]
	if !ok || payout.OrganizationID != orgID {
		return nil, store.ErrNotFound
	}
	return ptr(clonePayout(payout)), nil
}

func (s *Store) ListPayouts(_ context.Context, orgID string, filter domain.PayoutFilter) ([]domain.Payout, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Payout, 0, len(s.payoutsByID))
	for _, payout := range s.payoutsByID {
		if payout.OrganizationID != orgID {
			continue
		}
		if filter.ConsignorID != "" && payout.ConsignorID != filter.ConsignorID {
			continue
		}
		switch filter.Status {
		case domain.PayoutStatusPending:
			if payout.PaidAt != nil {
				continue
			}
		case domain.PayoutStatusPaid:
			if payout.PaidAt == nil {
				continue
			}
		}
		result = append(result, clonePayout(payout))
	}
	slices.SortFunc(result, func(a, b domain.Payout) int {
		if a.CreatedAt.Equal(b.CreatedAt) {
			return cmpString(b.ID, a.ID)
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

func (s *Store) MarkPayoutPaid(_ context.Context, orgID string, id string, method string, reference string, at time.Time) (*domain.Payout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	payout, ok := s.payoutsByID[id]
	if !ok || payout.OrganizationID != orgID {
		return nil, store.ErrNotFound
	}
	if payout.PaidAt != nil {
		return nil, store.ErrConflict
	}
	paidAt := at
	payout.PaidAt = &paidAt
	payout.Method = method
	payout.Reference = reference
	s.payoutsByID[id] = payout
	return ptr(clonePayout(payout)), nil
}

func (s *Store) CancelPayout(_ context.Context, orgID string, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payout, ok := s.payoutsByID[id]
	if !ok || payout.OrganizationID != orgID {
		return store.ErrNotFound
	}
	if payout.PaidAt != nil {
		return store.ErrConflict
	}
	for txID, tx := range s.transactionsByID {
		if tx.PayoutID != nil && *tx.PayoutID == id {
			tx.PayoutID = nil
			s.transactionsByID[txID] = tx
		}
	}
	delete(s.payoutsByID, id)
	return nil
}

func (s *Store) CreateAuditLog(_ context.Context, entry domain.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.ID == "" {
		entry.ID = xid.New("audit")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	s.auditLogs = append(s.auditLogs, entry)
	return nil
}

func (s *Store) ListAuditLogs(_ context.Context, orgID string, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.AuditLog, 0, 64)
	for _, entry := range s.auditLogs {
		if entry.OrganizationID != orgID {
			continue
		}
		if entry.CreatedAt.Before(from) || !entry.CreatedAt.Before(to) {
			continue
		}
		result = append(result, entry)
	}

	slices.SortFunc(result, func(a, b domain.AuditLog) int {
		if a.CreatedAt.Equal(b.CreatedAt) {
			return cmpString(b.ID, a.ID)
		}
		if a.CreatedAt.After(b.CreatedAt) {
			return -1
		}
		return 1
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *Store) CreateUser(_ context.Context, user domain.UserAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	username := strings.ToLower(strings.TrimSpace(user.Username))
	if username == "" || strings.TrimSpace(user.Password) == "" || user.OrganizationID == "" {
		return store.ErrInvalidInput
	}
	if _, exists := s.usersByUsername[username]; exists {
		return store.ErrConflict
	}
	user.Username = username
	if user.Role == "" {
		user.Role = domain.RoleStaff
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	user.Active = true
	s.usersByUsername[user.Username] = user
	return nil
}

func (s *Store) ListUsers(_ context.Context) ([]domain.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]domain.UserAccount, 0, len(s.usersByUsername))
	for _, user := range s.usersByUsername {
		users = append(users, user)
	}
	slices.SortFunc(users, func(a, b domain.UserAccount) int {
		return cmpString(a.Username, b.Username)
	})
	return users, nil
}

func (s *Store) UpdateUserPassword(_ context.Context, username string, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || strings.TrimSpace(password) == "" {
		return store.ErrInvalidInput
	}
	user, exists := s.usersByUsername[username]
	if !exists {
		return store.ErrNotFound
	}
	user.Password = password
	s.usersByUsername[username] = user
	return nil
}

func containsAny(needle string, haystacks ...string) bool {
	for _, h := range haystacks {
		if strings.Contains(strings.ToLower(h), needle) {
			return true
		}
	}
	return false
}

func page[T any](rows []T, offset int, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(rows) {
		return []T{}
	}
	rows = rows[offset:]
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}

func ptr[T any](v T) *T {
	return &v
}

func cmpString(a string, b string) int {
	if a == b {
		return 0
	}
	if a < b {
		return -1
	}
	return 1
}

func cloneTime(src *time.Time) *time.Time {
	if src == nil {
		return nil
	}
	dup := *src
	return &dup
}

func cloneItem(src domain.Item) domain.Item {
	src.SoldAt = cloneTime(src.SoldAt)
	src.RemovedAt = cloneTime(src.RemovedAt)
	return src
}

func cloneTransaction(src domain.Transaction) domain.Transaction {
	if src.PayoutID != nil {
		id := *src.PayoutID
		src.PayoutID = &id
	}
	return src
}

func clonePayout(src domain.Payout) domain.Payout {
	src.PaidAt = cloneTime(src.PaidAt)
	return src
}
