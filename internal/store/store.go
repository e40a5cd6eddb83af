package store

import (
	"context"
	"errors"
	"time"

	"consignhub/backend/internal/domain"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("conflict")
)

// Repository is the persistence boundary. Every tenant-owned row is addressed
// by organization id plus its own id; a row from another organization is
// reported as ErrNotFound. List filters treat Limit <= 0 as unlimited.
type Repository interface {
	GetOrganization(ctx context.Context, id string) (*domain.Organization, error)
	GetOrganizationBySlug(ctx context.Context, slug string) (*domain.Organization, error)
	UpdateOrganization(ctx context.Context, org domain.Organization) (*domain.Organization, error)

	CreateUser(ctx context.Context, user domain.UserAccount) error
	ListUsers(ctx context.Context) ([]domain.UserAccount, error)
	UpdateUserPassword(ctx context.Context, username string, password string) error

	CreateConsignor(ctx context.Context, consignor domain.Consignor) (*domain.Consignor, error)
	GetConsignor(ctx context.Context, orgID string, id string) (*domain.Consignor, error)
	UpdateConsignor(ctx context.Context, consignor domain.Consignor) (*domain.Consignor, error)
	ListConsignors(ctx context.Context, orgID string, filter domain.ConsignorFilter) ([]domain.Consignor, int, error)
	ConsignorNumberExists(ctx context.Context, orgID string, number string) (bool, error)

	CreateItem(ctx context.Context, item domain.Item) (*domain.Item, error)
	GetItem(ctx context.Context, orgID string, id string) (*domain.Item, error)
	UpdateItem(ctx context.Context, item domain.Item) (*domain.Item, error)
	ListItems(ctx context.Context, orgID string, filter domain.ItemFilter) ([]domain.Item, int, error)
	ItemSKUExists(ctx context.Context, orgID string, sku string) (bool, error)

	// CreateSale marks the item Sold and inserts the transaction in one unit.
	// It returns ErrConflict when the item is no longer Available.
	CreateSale(ctx context.Context, tx domain.Transaction) (*domain.Transaction, error)
	// VoidSale returns the item to Available. Transactions already linked to a
	// payout, or already voided, yield ErrConflict.
	VoidSale(ctx context.Context, orgID string, id string, reason string, at time.Time) (*domain.Transaction, error)
	GetTransaction(ctx context.Context, orgID string, id string) (*domain.Transaction, error)
	ListTransactions(ctx context.Context, orgID string, filter domain.TransactionFilter) ([]domain.Transaction, error)

	// CreatePayout inserts the payout and links every listed transaction to it.
	// Any transaction that cannot be linked yields ErrConflict.
	CreatePayout(ctx context.Context, payout domain.Payout, transactionIDs []string) (*domain.Payout, error)
	GetPayout(ctx context.Context, orgID string, id string) (*domain.Payout, error)
	ListPayouts(ctx context.Context, orgID string, filter domain.PayoutFilter) ([]domain.Payout, error)
	MarkPayoutPaid(ctx context.Context, orgID string, id string, method string, reference string, at time.Time) (*domain.Payout, error)
	// CancelPayout deletes an unpaid payout and releases its transactions.
	CancelPayout(ctx context.Context, orgID string, id string) error

	CreateAuditLog(ctx context.Context, entry domain.AuditLog) error
	ListAuditLogs(ctx context.Context, orgID string, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error)
}
