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

const payoutColumns = `id, organization_id, consignor_id, number, amount, method, reference, notes, transaction_count, created_at, paid_at`

func scanPayout(row rowScanner) (*domain.Payout, error) {
	var (
		p      domain.Payout
		paidAt sql.NullTime
	)
	err := row.Scan(&p.ID, &p.OrganizationID, &p.ConsignorID, &p.Number, &p.Amount, &p.Method, &p.Reference,
		&p.Notes, &p.TransactionCount, &p.CreatedAt, &paidAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	p.CreatedAt = p.CreatedAt.UTC()
	p.PaidAt = timePtr(paidAt)
	return &p, nil
}

func (s *Store) CreatePayout(ctx context.Context, payout domain.Payout, transactionIDs []string) (*domain.Payout, error) {
	if payout.OrganizationID == "" || payout.ConsignorID == "" || payout.Number == "" || len(transactionIDs) == 0 {
		return nil, store.ErrInvalidInput
	}
	if payout.ID == "" {
		payout.ID = xid.New("payout")
	}
	if payout.CreatedAt.IsZero() {
		payout.CreatedAt = time.Now().UTC()
	}
	payout.TransactionCount = len(transactionIDs)

	dbTx, err := s.beginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = dbTx.Rollback() }()

	_, err = s.exec(ctx, dbTx, `
		INSERT INTO payouts (`+payoutColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`, payout.ID, payout.OrganizationID, payout.ConsignorID, payout.Number, payout.Amount, payout.Method,
		payout.Reference, payout.Notes, payout.TransactionCount, utc(payout.CreatedAt), nullTime(payout.PaidAt))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrConflict
		}
		if isForeignKeyViolation(err) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	for _, txID := range transactionIDs {
		res, err := s.exec(ctx, dbTx, `
			UPDATE transactions
			SET payout_id = $1
			WHERE organization_id = $2 AND id = $3 AND consignor_id = $4
				AND status = $5 AND payout_id IS NULL
		`, payout.ID, payout.OrganizationID, txID, payout.ConsignorID, domain.TxStatusCompleted)
		if err != nil {
			return nil, err
		}
		if err := expectOne(res, store.ErrConflict); err != nil {
			return nil, err
		}
	}

	if err := dbTx.Commit(); err != nil {
		return nil, err
	}
	return s.GetPayout(ctx, payout.OrganizationID, payout.ID)
}

func (s *Store) GetPayout(ctx context.Context, orgID string, id string) (*domain.Payout, error) {
	return scanPayout(s.queryRow(ctx, s.db, `
		SELECT `+payoutColumns+`
		FROM payouts
		WHERE organization_id = $1 AND id = $2
	`, orgID, id))
}

func (s *Store) ListPayouts(ctx context.Context, orgID string, filter domain.PayoutFilter) ([]domain.Payout, error) {
	var where whereBuilder
	where.add("organization_id = ?", orgID)
	if filter.ConsignorID != "" {
		where.add("consignor_id = ?", filter.ConsignorID)
	}
	switch filter.Status {
	case domain.PayoutStatusPending:
		where.addRaw("paid_at IS NULL")
	case domain.PayoutStatusPaid:
		where.addRaw("paid_at IS NOT NULL")
	}

	page, args := s.pageClause(where.args, 0, filter.Limit)
	rows, err := s.query(ctx, s.db, `
		SELECT `+payoutColumns+`
		FROM payouts`+where.String()+`
		ORDER BY created_at DESC, id DESC`+page, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payouts := make([]domain.Payout, 0, 32)
	for rows.Next() {
		p, err := scanPayout(rows)
		if err != nil {
			return nil, err
		}
		payouts = append(payouts, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return payouts, nil
}

func (s *Store) MarkPayoutPaid(ctx context.Context, orgID string, id string, method string, reference string, at time.Time) (*domain.Payout, error) {
	res, err := s.exec(ctx, s.db, `
		UPDATE payouts
		SET paid_at = $3, method = $4, reference = $5
		WHERE organization_id = $1 AND id = $2 AND paid_at IS NULL
	`, orgID, id, utc(at), method, reference)
	if err != nil {
		return nil, err
	}
	if err := expectOne(res, store.ErrConflict); err != nil {
		if _, getErr := s.GetPayout(ctx, orgID, id); getErr != nil {
			return nil, getErr
		}
		return nil, err
	}
	return s.GetPayout(ctx, orgID, id)
}

func (s *Store) CancelPayout(ctx context.Context, orgID string, id string) error {
	dbTx, err := s.beginTx(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = dbTx.Rollback() }()

	var paidAt sql.NullTime
	err = s.queryRow(ctx, dbTx, `
		SELECT paid_at
		FROM payouts
		WHERE organization_id = $1 AND id = $2`+s.forUpdate(),
		orgID, id).Scan(&paidAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrNotFound
		}
		return err
	}
	if paidAt.Valid {
		return store.ErrConflict
	}

	if _, err := s.exec(ctx, dbTx, `
		UPDATE transactions SET payout_id = NULL WHERE organization_id = $1 AND payout_id = $2
	`, orgID, id); err != nil {
		return err
	}
	if _, err := s.exec(ctx, dbTx, `
		DELETE FROM payouts WHERE organization_id = $1 AND id = $2
	`, orgID, id); err != nil {
		return err
	}
	return dbTx.Commit()
}
