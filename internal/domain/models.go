package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Organization struct {
	ID                  string          `json:"id"`
	Name                string          `json:"name"`
	Slug                string          `json:"slug"`
	DefaultSplitPercent decimal.Decimal `json:"default_split_percent"`
	Currency            string          `json:"currency"`
	CreatedAt           time.Time       `json:"created_at"`
}

type OrganizationUpdateRequest struct {
	Name                *string          `json:"name,omitempty" validate:"omitempty,min=2,max=120"`
	DefaultSplitPercent *decimal.Decimal `json:"default_split_percent,omitempty"`
	Currency            *string          `json:"currency,omitempty" validate:"omitempty,len=3,alpha"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken    string `json:"access_token"`
	Role           string `json:"role"`
	OrganizationID string `json:"organization_id"`
	ExpiresAt      string `json:"expires_at"`
}

type Actor struct {
	Username       string
	Role           string
	OrganizationID string
}

type StaffCreateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type StaffUser struct {
	Username       string    `json:"username"`
	Role           string    `json:"role"`
	OrganizationID string    `json:"organization_id"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"created_at"`
}

// UserAccount is an internal persistence model for auth credentials.
type UserAccount struct {
	Username       string
	Password       string
	Role           string
	OrganizationID string
	Active         bool
	CreatedAt      time.Time
}

type Consignor struct {
	ID             string          `json:"id"`
	OrganizationID string          `json:"organization_id"`
	Number         string          `json:"number"`
	Name           string          `json:"name"`
	Email          string          `json:"email,omitempty"`
	Phone          string          `json:"phone,omitempty"`
	SplitPercent   decimal.Decimal `json:"split_percent"`
	Status         string          `json:"status"`
	Notes          string          `json:"notes,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

type ConsignorCreateRequest struct {
	Name         string           `json:"name" validate:"required,min=2,max=120"`
	Email        string           `json:"email" validate:"omitempty,email"`
	Phone        string           `json:"phone" validate:"omitempty,max=32"`
	SplitPercent *decimal.Decimal `json:"split_percent,omitempty"`
	Notes        string           `json:"notes" validate:"max=2000"`
}

type ConsignorUpdateRequest struct {
	Name         *string          `json:"name,omitempty" validate:"omitempty,min=2,max=120"`
	Email        *string          `json:"email,omitempty" validate:"omitempty,email"`
	Phone        *string          `json:"phone,omitempty" validate:"omitempty,max=32"`
	SplitPercent *decimal.Decimal `json:"split_percent,omitempty"`
	Status       *string          `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
	Notes        *string          `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

type ConsignorFilter struct {
	Status string
	Search string
	Offset int
	Limit  int
}

type ConsignorListResponse struct {
	Consignors []Consignor `json:"consignors"`
	Total      int         `json:"total"`
}

type Item struct {
	ID             string          `json:"id"`
	OrganizationID string          `json:"organization_id"`
	ConsignorID    string          `json:"consignor_id"`
	SKU            string          `json:"sku"`
	Title          string          `json:"title"`
	Description    string          `json:"description,omitempty"`
	Category       string          `json:"category"`
	Price          decimal.Decimal `json:"price"`
	Status         string          `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	SoldAt         *time.Time      `json:"sold_at,omitempty"`
	RemovedAt      *time.Time      `json:"removed_at,omitempty"`
}

type ItemCreateRequest struct {
	ConsignorID string          `json:"consignor_id" validate:"required"`
	Title       string          `json:"title" validate:"required,min=2,max=200"`
	Description string          `json:"description" validate:"max=4000"`
	Category    string          `json:"category" validate:"required,max=80"`
	Price       decimal.Decimal `json:"price"`
}

type ItemUpdateRequest struct {
	Title       *string          `json:"title,omitempty" validate:"omitempty,min=2,max=200"`
	Description *string          `json:"description,omitempty" validate:"omitempty,max=4000"`
	Category    *string          `json:"category,omitempty" validate:"omitempty,max=80"`
	Price       *decimal.Decimal `json:"price,omitempty"`
}

type ItemFilter struct {
	ConsignorID string
	Status      string
	Category    string
	Search      string
	Offset      int
	Limit       int
}

type ItemListResponse struct {
	Items []Item `json:"items"`
	Total int    `json:"total"`
}

type Transaction struct {
	ID              string          `json:"id"`
	OrganizationID  string          `json:"organization_id"`
	ItemID          string          `json:"item_id"`
	ConsignorID     string          `json:"consignor_id"`
	SaleDate        time.Time       `json:"sale_date"`
	SalePrice       decimal.Decimal `json:"sale_price"`
	ConsignorAmount decimal.Decimal `json:"consignor_amount"`
	ShopAmount      decimal.Decimal `json:"shop_amount"`
	PaymentMethod   string          `json:"payment_method"`
	PayoutID        *string         `json:"payout_id,omitempty"`
	Status          string          `json:"status"`
	VoidReason      string          `json:"void_reason,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

type SaleRequest struct {
	ItemID        string           `json:"item_id" validate:"required"`
	SalePrice     *decimal.Decimal `json:"sale_price,omitempty"`
	PaymentMethod string           `json:"payment_method" validate:"omitempty,oneof=cash card other"`
	SaleDate      *time.Time       `json:"sale_date,omitempty"`
}

type SaleResponse struct {
	Transaction Transaction `json:"transaction"`
	Item        Item        `json:"item"`
}

type VoidSaleRequest struct {
	Reason     string `json:"reason"`
	ManagerPIN string `json:"manager_pin"`
}

type TransactionFilter struct {
	ConsignorID   string
	ItemID        string
	From          *time.Time
	To            *time.Time
	UnpaidOnly    bool
	IncludeVoided bool
	Limit         int
}

type Payout struct {
	ID               string          `json:"id"`
	OrganizationID   string          `json:"organization_id"`
	ConsignorID      string          `json:"consignor_id"`
	Number           string          `json:"number"`
	Amount           decimal.Decimal `json:"amount"`
	Method           string          `json:"method,omitempty"`
	Reference        string          `json:"reference,omitempty"`
	Notes            string          `json:"notes,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	PaidAt           *time.Time      `json:"paid_at,omitempty"`
	TransactionCount int             `json:"transaction_count"`
}

type PayoutCreateRequest struct {
	ConsignorID string `json:"consignor_id" validate:"required"`
	Notes       string `json:"notes" validate:"max=2000"`
}

type PayoutPayRequest struct {
	Method    string `json:"method" validate:"required,oneof=cash check transfer store_credit"`
	Reference string `json:"reference" validate:"max=120"`
}

type PayoutFilter struct {
	ConsignorID string
	Status      string
	Limit       int
}

type PayoutResponse struct {
	Payout       Payout        `json:"payout"`
	Transactions []Transaction `json:"transactions,omitempty"`
}

type PayoutListResponse struct {
	Payouts []Payout `json:"payouts"`
}

// ConsignorMetrics is derived on every call from a consignor's items,
// completed transactions and payouts.
type ConsignorMetrics struct {
	TotalItems        int             `json:"total_items"`
	AvailableItems    int             `json:"available_items"`
	SoldItems         int             `json:"sold_items"`
	RemovedItems      int             `json:"removed_items"`
	InventoryValue    decimal.Decimal `json:"inventory_value"`
	PendingBalance    decimal.Decimal `json:"pending_balance"`
	TotalEarnings     decimal.Decimal `json:"total_earnings"`
	TotalPaid         decimal.Decimal `json:"total_paid"`
	EarningsThisMonth decimal.Decimal `json:"earnings_this_month"`
	EarningsLastMonth decimal.Decimal `json:"earnings_last_month"`
	SalesThisMonth    int             `json:"sales_this_month"`
	SalesLastMonth    int             `json:"sales_last_month"`
	LastSaleDate      *time.Time      `json:"last_sale_date,omitempty"`
	LastPayoutDate    *time.Time      `json:"last_payout_date,omitempty"`
	LastPayoutAmount  decimal.Decimal `json:"last_payout_amount"`
	AverageItemPrice  decimal.Decimal `json:"average_item_price"`
	AverageDaysToSell float64         `json:"average_days_to_sell"`
}

type ConsignorMetricsResponse struct {
	Consignor Consignor        `json:"consignor"`
	Metrics   ConsignorMetrics `json:"metrics"`
	AsOf      string           `json:"as_of"`
}

type ConsignorSummary struct {
	Consignor Consignor        `json:"consignor"`
	Metrics   ConsignorMetrics `json:"metrics"`
}

type ConsignorSummaryResponse struct {
	SortBy     string             `json:"sort_by"`
	Descending bool               `json:"descending"`
	Summaries  []ConsignorSummary `json:"summaries"`
}

type PayoutApproval struct {
	Consignor      Consignor       `json:"consignor"`
	PendingBalance decimal.Decimal `json:"pending_balance"`
	UnpaidSales    int             `json:"unpaid_sales"`
	UnpaidAmount   decimal.Decimal `json:"unpaid_amount"`
	LastPayoutDate *time.Time      `json:"last_payout_date,omitempty"`
}

type PayoutApprovalResponse struct {
	MinBalance decimal.Decimal  `json:"min_balance"`
	Approvals  []PayoutApproval `json:"approvals"`
}

type Dashboard struct {
	OrganizationID     string           `json:"organization_id"`
	AsOf               string           `json:"as_of"`
	ActiveConsignors   int              `json:"active_consignors"`
	InactiveConsignors int              `json:"inactive_consignors"`
	PendingPayouts     int              `json:"pending_payouts"`
	PendingPayoutTotal decimal.Decimal  `json:"pending_payout_total"`
	ShopRevenue        decimal.Decimal  `json:"shop_revenue"`
	GrossSales         decimal.Decimal  `json:"gross_sales"`
	Metrics            ConsignorMetrics `json:"metrics"`
}

type SalesReportRow struct {
	TransactionID   string          `json:"transaction_id"`
	SaleDate        time.Time       `json:"sale_date"`
	ItemSKU         string          `json:"item_sku"`
	ItemTitle       string          `json:"item_title"`
	ConsignorNumber string          `json:"consignor_number"`
	ConsignorName   string          `json:"consignor_name"`
	PaymentMethod   string          `json:"payment_method"`
	SalePrice       decimal.Decimal `json:"sale_price"`
	ConsignorAmount decimal.Decimal `json:"consignor_amount"`
	ShopAmount      decimal.Decimal `json:"shop_amount"`
	PaidOut         bool            `json:"paid_out"`
}

type SalesReport struct {
	OrganizationID       string           `json:"organization_id"`
	From                 string           `json:"from"`
	To                   string           `json:"to"`
	Sales                int              `json:"sales"`
	GrossSales           decimal.Decimal  `json:"gross_sales"`
	ConsignorAmountTotal decimal.Decimal  `json:"consignor_amount_total"`
	ShopAmountTotal      decimal.Decimal  `json:"shop_amount_total"`
	Rows                 []SalesReportRow `json:"rows"`
}

type ConsignorStatement struct {
	Consignor     Consignor        `json:"consignor"`
	Month         string           `json:"month"`
	Sales         []SalesReportRow `json:"sales"`
	Payouts       []Payout         `json:"payouts"`
	MonthEarnings decimal.Decimal  `json:"month_earnings"`
	MonthPaid     decimal.Decimal  `json:"month_paid"`
	Metrics       ConsignorMetrics `json:"metrics"`
}

type AgingBucket struct {
	Label           string          `json:"label"`
	MinDays         int             `json:"min_days"`
	MaxDays         int             `json:"max_days,omitempty"`
	Items           int             `json:"items"`
	Value           decimal.Decimal `json:"value"`
	MarkdownPercent int             `json:"markdown_percent"`
}

type AgingItem struct {
	ItemID          string          `json:"item_id"`
	SKU             string          `json:"sku"`
	Title           string          `json:"title"`
	ConsignorID     string          `json:"consignor_id"`
	AgeDays         int             `json:"age_days"`
	Price           decimal.Decimal `json:"price"`
	SuggestedPrice  decimal.Decimal `json:"suggested_price"`
	MarkdownPercent int             `json:"markdown_percent"`
}

type AgingReport struct {
	AsOf    string        `json:"as_of"`
	Buckets []AgingBucket `json:"buckets"`
	Items   []AgingItem   `json:"items"`
}

type StorefrontItem struct {
	SKU         string          `json:"sku"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	ListedAt    time.Time       `json:"listed_at"`
}

type StorefrontResponse struct {
	Shop     string           `json:"shop"`
	Currency string           `json:"currency"`
	Items    []StorefrontItem `json:"items"`
}

type AuditLog struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	ActorUsername  string    `json:"actor_username"`
	ActorRole      string    `json:"actor_role"`
	Action         string    `json:"action"`
	EntityType     string    `json:"entity_type"`
	EntityID       string    `json:"entity_id"`
	Detail         string    `json:"detail"`
	CreatedAt      time.Time `json:"created_at"`
}

const (
	ItemStatusAvailable = "Available"
	ItemStatusSold      = "Sold"
	ItemStatusRemoved   = "Removed"
)

const (
	ConsignorStatusActive   = "active"
	ConsignorStatusInactive = "inactive"
)

const (
	TxStatusCompleted = "completed"
	TxStatusVoided    = "voided"
)

const (
	PayoutStatusPending = "pending"
	PayoutStatusPaid    = "paid"
)

const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)
