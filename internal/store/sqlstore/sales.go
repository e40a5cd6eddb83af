package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"consignhub/backend/internal/domain"
	"consignhub/backend/internal/store"
	"consignhub/backend/internal/xid"
)

const transactionColumns = `id, organization_id, item_id, consignor_id, sale_date, sale_price, consignor_amount, shop_amount, payment_method, payout_id, status, void_reason, created_at`

func scanTransaction(row rowScanner) (*domain.Transaction, error) {
	var (
		tx       domain.Transaction
		payoutID sql.NullString
	)
	err := row.Scan(&tx.ID, &tx.OrganizationID, &tx.ItemID, &tx.ConsignorID, &tx.SaleDate, &tx.SalePrice,
		&tx.ConsignorAmount, &tx.ShopAmount, &tx.PaymentMethod, &payoutID, &tx.Status, &tx.VoidReason, &tx.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	tx.SaleDate = tx.SaleDate.UTC()
	tx.CreatedAt = tx.CreatedAt.UTC()
	tx.PayoutID = stringPtr(payoutID)
	return &tx, nil
}

func (s *Store) CreateSale(ctx context.Context, sale domain.Transaction) (*domain.Transaction, error) {
	if sale.SalePrice.IsNegative() || !sale.ConsignorAmount.Add(sale.ShopAmount).Equal(sale.SalePrice) {
		return nil, store.ErrInvalidInput
	}
	if sale.ID == "" {
		sale.ID = xid.New("tx")
	}
	if sale.CreatedAt.IsZero() {
		sale.CreatedAt = time.Now().UTC()
	}
	if sale.SaleDate.IsZero() {
		sale.SaleDate = sale.CreatedAt
	}
	sale.Status = domain.TxStatusCompleted
	sale.PayoutID = nil

	dbTx, err := s.beginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = dbTx.Rollback() }()

	var consignorID, status string
	err = s.queryRow(ctx, dbTx, `
		SELECT consignor_id, status
		FROM items
		WHERE organization_id = $1 AND id = $2`+s.forUpdate(),
		sale.OrganizationID, sale.ItemID).Scan(&consignorID, &status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	if status != domain.ItemStatusAvailable {
		return nil, store.ErrConflict
	}
	sale.ConsignorID = consignorID

	res, err := s.exec(ctx, dbTx, `
		UPDATE items
		SET status = $3, sold_at = $4, updated_at = $5
		WHERE organization_id = $1 AND id = $2 AND status = $6
	`, sale.OrganizationID, sale.ItemID, domain.ItemStatusSold, utc(sale.SaleDate), utc(sale.CreatedAt), domain.ItemStatusAvailable)
	if err != nil {
		return nil, err
	}
	if err := expectOne(res, store.ErrConflict); err != nil {
		return nil, err
	}

	_, err = s.exec(ctx, dbTx, `
		INSERT INTO transactions (`+transactionColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`, sale.ID, sale.OrganizationID, sale.ItemID, sale.ConsignorID, utc(sale.SaleDate), sale.SalePrice,
		sale.ConsignorAmount, sale.ShopAmount, sale.PaymentMethod, nil, sale.Status, sale.VoidReason, utc(sale.CreatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrConflict
		}
		return nil, err
	}

	if err := dbTx.Commit(); err != nil {
		return nil, err
	}
	return s.GetTransaction(ctx, sale.OrganizationID, sale.ID)
}

func (s *Store) VoidSale(ctx context.Context, orgID string, id string, reason string, at time.Time) (*domain.Transaction, error) {
	dbTx, err := s.beginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = dbTx.Rollback() }()

	var (
		itemID   string
		status   string
		payoutID sql.NullString
	)
	err = s.queryRow(ctx, dbTx, `
		SELECT item_id, status, payout_id
		FROM transactions
		WHERE organization_id = $1 AND id = $2`+s.forUpdate(),
		orgID, id).Scan(&itemID, &status, &payoutID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	if status != domain.TxStatusCompleted || payoutID.Valid {
		return nil, store.ErrConflict
	}

	_, err = s.exec(ctx, dbTx, `
		UPDATE transactions
		SET status = $3, void_reason = $4
		WHERE organization_id = $1 AND id = $2 AND status = $5
	`, orgID, id, domain.TxStatusVoided, reason, domain.TxStatusCompleted)
	if err != nil {
		return nil, err
	}

	_, err = s.exec(ctx, dbTx, `
		UPDATE items
		SET status = $3, sold_at = NULL, updated_at = $4
		WHERE organization_id = $1 AND id = $2
	`, orgID, itemID, domain.ItemStatusAvailable, utc(at))
	if err != nil {
		return nil, err
	}

	if err := dbTx.Commit(); err != nil {
		return nil, err
	}
	return s.GetTransaction(ctx, orgID, id)
}

func (s *Store) GetTransaction(ctx context.Context, orgID string, id string) (*domain.Transaction, error) {
	return scanTransaction(s.queryRow(ctx, s.db, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE organization_id = $1 AND id = $2
	`, orgID, id))
}

func (s *Store) ListTransactions(ctx context.Context, orgID string, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	var where whereBuilder
	where.add("organization_id = ?", orgID)
	if filter.ConsignorID != "" {
		where.add("consignor_id = ?", filter.ConsignorID)
	}
	if filter.ItemID != "" {
		where.add("item_id = ?", filter.ItemID)
	}
	if !filter.IncludeVoided {
		where.add("status = ?", domain.TxStatusCompleted)
	}
	if filter.UnpaidOnly {
		where.addRaw("payout_id IS NULL")
	}
	if filter.From != nil {
		where.add("sale_date >= ?", filter.From.UTC())
	}
	if filter.To != nil {
		where.add("sale_date < ?", filter.To.UTC())
	}

	page, args := s.pageClause(where.args, 0, filter.Limit)
	rows, err := s.query(ctx, s.db, `
		SELECT `+transactionColumns+`
		FROM transactions`+where.String()+`
		ORDER BY sale_date DESC, id DESC`+page, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	txs := make([]domain.Transaction, 0, 64)
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, *tx)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return txs, nil
}
