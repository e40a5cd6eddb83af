package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"consignhub/backend/internal/domain"
	"consignhub/backend/internal/store"
	"consignhub/backend/internal/xid"
)

const organizationColumns = `id, name, slug, default_split_percent, currency, created_at`

func scanOrganization(row rowScanner) (*domain.Organization, error) {
	var org domain.Organization
	if err := row.Scan(&org.ID, &org.Name, &org.Slug, &org.DefaultSplitPercent, &org.Currency, &org.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	org.CreatedAt = org.CreatedAt.UTC()
	return &org, nil
}

// CreateOrganization inserts a tenant. It is used by bootstrap tooling and
// tests; the HTTP API never creates organizations.
func (s *Store) CreateOrganization(ctx context.Context, org domain.Organization) (*domain.Organization, error) {
	org.Slug = strings.ToLower(strings.TrimSpace(org.Slug))
	if org.ID == "" {
		org.ID = xid.New("org")
	}
	if org.Name == "" || org.Slug == "" {
		return nil, store.ErrInvalidInput
	}
	if org.CreatedAt.IsZero() {
		org.CreatedAt = time.Now().UTC()
	}
	_, err := s.exec(ctx, s.db, `
		INSERT INTO organizations (id, name, slug, default_split_percent, currency, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, org.ID, org.Name, org.Slug, org.DefaultSplitPercent, org.Currency, utc(org.CreatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrConflict
		}
		return nil, err
	}
	return &org, nil
}

func (s *Store) GetOrganization(ctx context.Context, id string) (*domain.Organization, error) {
	return scanOrganization(s.queryRow(ctx, s.db, `
		SELECT `+organizationColumns+`
		FROM organizations
		WHERE id = $1
	`, id))
}

func (s *Store) GetOrganizationBySlug(ctx context.Context, slug string) (*domain.Organization, error) {
	return scanOrganization(s.queryRow(ctx, s.db, `
		SELECT `+organizationColumns+`
		FROM organizations
		WHERE slug = $1
	`, strings.ToLower(strings.TrimSpace(slug))))
}

func (s *Store) UpdateOrganization(ctx context.Context, org domain.Organization) (*domain.Organization, error) {
	res, err := s.exec(ctx, s.db, `
		UPDATE organizations
		SET name = $2, default_split_percent = $3, currency = $4
		WHERE id = $1
	`, org.ID, org.Name, org.DefaultSplitPercent, org.Currency)
	if err != nil {
		return nil, err
	}
	if err := expectOne(res, store.ErrNotFound); err != nil {
		return nil, err
	}
	return s.GetOrganization(ctx, org.ID)
}

func (s *Store) CreateUser(ctx context.Context, user domain.UserAccount) error {
	user.Username = strings.ToLower(strings.TrimSpace(user.Username))
	if user.Username == "" || strings.TrimSpace(user.Password) == "" || user.OrganizationID == "" {
		return store.ErrInvalidInput
	}
	if user.Role == "" {
		user.Role = domain.RoleStaff
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	_, err := s.exec(ctx, s.db, `
		INSERT INTO app_users (username, password, role, organization_id, active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$6)
	`, user.Username, user.Password, user.Role, user.OrganizationID, true, utc(user.CreatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrConflict
		}
		if isForeignKeyViolation(err) {
			return store.ErrNotFound
		}
		return err
	}
	return nil
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.UserAccount, error) {
	rows, err := s.query(ctx, s.db, `
		SELECT username, password, role, organization_id, active, created_at
		FROM app_users
		ORDER BY username ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.UserAccount, 0, 16)
	for rows.Next() {
		var user domain.UserAccount
		if err := rows.Scan(&user.Username, &user.Password, &user.Role, &user.OrganizationID, &user.Active, &user.CreatedAt); err != nil {
			return nil, err
		}
		user.CreatedAt = user.CreatedAt.UTC()
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Store) UpdateUserPassword(ctx context.Context, username string, password string) error {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || strings.TrimSpace(password) == "" {
		return store.ErrInvalidInput
	}

	res, err := s.exec(ctx, s.db, `
		UPDATE app_users
		SET password = $2, updated_at = $3
		WHERE username = $1
	`, username, password, time.Now().UTC())
	if err != nil {
		return err
	}
	return expectOne(res, store.ErrNotFound)
}

const consignorColumns = `id, organization_id, number, name, email, phone, split_percent, status, notes, created_at, updated_at`

func scanConsignor(row rowScanner) (*domain.Consignor, error) {
	var c domain.Consignor
	err := row.Scan(&c.ID, &c.OrganizationID, &c.Number, &c.Name, &c.Email, &c.Phone, &c.SplitPercent, &c.Status, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()
	return &c, nil
}

func (s *Store) CreateConsignor(ctx context.Context, consignor domain.Consignor) (*domain.Consignor, error) {
	if consignor.OrganizationID == "" || consignor.Number == "" || strings.TrimSpace(consignor.Name) == "" {
		return nil, store.ErrInvalidInput
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

	_, err := s.exec(ctx, s.db, `
		INSERT INTO consignors (`+consignorColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`, consignor.ID, consignor.OrganizationID, consignor.Number, consignor.Name, consignor.Email, consignor.Phone,
		consignor.SplitPercent, consignor.Status, consignor.Notes, utc(consignor.CreatedAt), utc(consignor.UpdatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrConflict
		}
		if isForeignKeyViolation(err) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return s.GetConsignor(ctx, consignor.OrganizationID, consignor.ID)
}

func (s *Store) GetConsignor(ctx context.Context, orgID string, id string) (*domain.Consignor, error) {
	return scanConsignor(s.queryRow(ctx, s.db, `
		SELECT `+consignorColumns+`
		FROM consignors
		WHERE organization_id = $1 AND id = $2
	`, orgID, id))
}

func (s *Store) UpdateConsignor(ctx context.Context, consignor domain.Consignor) (*domain.Consignor, error) {
	if consignor.UpdatedAt.IsZero() {
		consignor.UpdatedAt = time.Now().UTC()
	}
	res, err := s.exec(ctx, s.db, `
		UPDATE consignors
		SET name = $3, email = $4, phone = $5, split_percent = $6, status = $7, notes = $8, updated_at = $9
		WHERE organization_id = $1 AND id = $2
	`, consignor.OrganizationID, consignor.ID, consignor.Name, consignor.Email, consignor.Phone,
		consignor.SplitPercent, consignor.Status, consignor.Notes, utc(consignor.UpdatedAt))
	if err != nil {
		return nil, err
	}
	if err := expectOne(res, store.ErrNotFound); err != nil {
		return nil, err
	}
	return s.GetConsignor(ctx, consignor.OrganizationID, consignor.ID)
}

func (s *Store) ListConsignors(ctx context.Context, orgID string, filter domain.ConsignorFilter) ([]domain.Consignor, int, error) {
	var where whereBuilder
	where.add("organization_id = ?", orgID)
	if filter.Status != "" {
		where.add("status = ?", filter.Status)
	}
	if search := strings.ToLower(strings.TrimSpace(filter.Search)); search != "" {
		where.add("(LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(phone) LIKE ? OR LOWER(number) LIKE ?)", "%"+search+"%")
	}

	var total int
	if err := s.queryRow(ctx, s.db, `SELECT COUNT(*) FROM consignors`+where.String(), where.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page, args := s.pageClause(where.args, filter.Offset, filter.Limit)
	rows, err := s.query(ctx, s.db, `
		SELECT `+consignorColumns+`
		FROM consignors`+where.String()+`
		ORDER BY number ASC`+page, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	consignors := make([]domain.Consignor, 0, 32)
	for rows.Next() {
		c, err := scanConsignor(rows)
		if err != nil {
			return nil, 0, err
		}
		consignors = append(consignors, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return consignors, total, nil
}

func (s *Store) ConsignorNumberExists(ctx context.Context, orgID string, number string) (bool, error) {
	var count int
	err := s.queryRow(ctx, s.db, `
		SELECT COUNT(*) FROM consignors WHERE organization_id = $1 AND number = $2
	`, orgID, number).Scan(&count)
	return count > 0, err
}

const itemColumns = `id, organization_id, consignor_id, sku, title, description, category, price, status, created_at, updated_at, sold_at, removed_at`

func scanItem(row rowScanner) (*domain.Item, error) {
	var (
		item      domain.Item
		soldAt    sql.NullTime
		removedAt sql.NullTime
	)
	err := row.Scan(&item.ID, &item.OrganizationID, &item.ConsignorID, &item.SKU, &item.Title, &item.Description,
		&item.Category, &item.Price, &item.Status, &item.CreatedAt, &item.UpdatedAt, &soldAt, &removedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	item.CreatedAt = item.CreatedAt.UTC()
	item.UpdatedAt = item.UpdatedAt.UTC()
	item.SoldAt = timePtr(soldAt)
	item.RemovedAt = timePtr(removedAt)
	return &item, nil
}

func (s *Store) CreateItem(ctx context.Context, item domain.Item) (*domain.Item, error) {
	if item.OrganizationID == "" || item.SKU == "" || item.Price.IsNegative() {
		return nil, store.ErrInvalidInput
	}
	if _, err := s.GetConsignor(ctx, item.OrganizationID, item.ConsignorID); err != nil {
		return nil, err
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

	_, err := s.exec(ctx, s.db, `
		INSERT INTO items (`+itemColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`, item.ID, item.OrganizationID, item.ConsignorID, item.SKU, item.Title, item.Description, item.Category,
		item.Price, item.Status, utc(item.CreatedAt), utc(item.UpdatedAt), nullTime(item.SoldAt), nullTime(item.RemovedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrConflict
		}
		return nil, err
	}
	return s.GetItem(ctx, item.OrganizationID, item.ID)
}

func (s *Store) GetItem(ctx context.Context, orgID string, id string) (*domain.Item, error) {
	return scanItem(s.queryRow(ctx, s.db, `
		SELECT `+itemColumns+`
		FROM items
		WHERE organization_id = $1 AND id = $2
	`, orgID, id))
}

func (s *Store) UpdateItem(ctx context.Context, item domain.Item) (*domain.Item, error) {
	if item.Price.IsNegative() {
		return nil, store.ErrInvalidInput
	}
	if item.UpdatedAt.IsZero() {
		item.UpdatedAt = time.Now().UTC()
	}
	res, err := s.exec(ctx, s.db, `
		UPDATE items
		SET title = $3, description = $4, category = $5, price = $6, status = $7,
			updated_at = $8, sold_at = $9, removed_at = $10
		WHERE organization_id = $1 AND id = $2
	`, item.OrganizationID, item.ID, item.Title, item.Description, item.Category, item.Price, item.Status,
		utc(item.UpdatedAt), nullTime(item.SoldAt), nullTime(item.RemovedAt))
	if err != nil {
		return nil, err
	}
	if err := expectOne(res, store.ErrNotFound); err != nil {
		return nil, err
	}
	return s.GetItem(ctx, item.OrganizationID, item.ID)
}

func (s *Store) ListItems(ctx context.Context, orgID string, filter domain.ItemFilter) ([]domain.Item, int, error) {
	var where whereBuilder
	where.add("organization_id = ?", orgID)
	if filter.ConsignorID != "" {
		where.add("consignor_id = ?", filter.ConsignorID)
	}
	if filter.Status != "" {
		where.add("status = ?", filter.Status)
	}
	if filter.Category != "" {
		where.add("LOWER(category) = ?", strings.ToLower(strings.TrimSpace(filter.Category)))
	}
	if search := strings.ToLower(strings.TrimSpace(filter.Search)); search != "" {
		where.add("(LOWER(title) LIKE ? OR LOWER(sku) LIKE ? OR LOWER(description) LIKE ?)", "%"+search+"%")
	}

	var total int
	if err := s.queryRow(ctx, s.db, `SELECT COUNT(*) FROM items`+where.String(), where.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page, args := s.pageClause(where.args, filter.Offset, filter.Limit)
	rows, err := s.query(ctx, s.db, `
		SELECT `+itemColumns+`
		FROM items`+where.String()+`
		ORDER BY created_at DESC, id ASC`+page, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := make([]domain.Item, 0, 64)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (s *Store) ItemSKUExists(ctx context.Context, orgID string, sku string) (bool, error) {
	var count int
	err := s.queryRow(ctx, s.db, `
		SELECT COUNT(*) FROM items WHERE organization_id = $1 AND sku = $2
	`, orgID, sku).Scan(&count)
	return count > 0, err
}
