package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nileshdj/pavti/internal/receipt"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectReceiptColumns = `
	r.id, r.account_head, r.account_number, r.receipt_number, r.receipt_type,
	r.name, r.address1, r.address2, r.taluka, r.district, r.pin_code, r.state,
	r.mobile, r.gotra, r.gross_weight, r.net_weight, r.goods,
	r.image1, r.image2, r.created_at, r.updated_at,
	r.filled_by, fu.username AS filled_by_username,
	r.updated_by, uu.username AS updated_by_username
`

const receiptJoins = `
	FROM receipts r
	LEFT JOIN users fu ON r.filled_by = fu.id
	LEFT JOIN users uu ON r.updated_by = uu.id
`

// scanReceipt reads one receipt row in selectReceiptColumns order.
func scanReceipt(s scanner) (*receipt.Receipt, error) {
	var r receipt.Receipt

	var typeStr string

	var filledByName, updatedByName sql.NullString

	if err := s.Scan(
		&r.ID, &r.AccountHead, &r.AccountNumber, &r.ReceiptNumber, &typeStr,
		&r.Name, &r.Address1, &r.Address2, &r.Taluka, &r.District, &r.PinCode, &r.State,
		&r.Mobile, &r.Gotra, &r.GrossWeight, &r.NetWeight, &r.Goods,
		&r.Image1, &r.Image2, &r.CreatedAt, &r.UpdatedAt,
		&r.FilledBy, &filledByName,
		&r.UpdatedBy, &updatedByName,
	); err != nil {
		return nil, err
	}

	r.Type = receipt.Type(typeStr)
	r.FilledByUsername = filledByName.String
	r.UpdatedByUsername = updatedByName.String

	return &r, nil
}

const insertReceiptQuery = `
	INSERT INTO receipts (
		account_head, account_number, receipt_number, receipt_type,
		name, address1, address2, taluka, district, pin_code, state,
		mobile, gotra, gross_weight, net_weight, goods,
		image1, image2, filled_by, created_at, updated_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, NOW(), NOW())
	RETURNING id, created_at, updated_at
`

func insertArgs(r *receipt.Receipt) []any {
	return []any{
		r.AccountHead, r.AccountNumber, r.ReceiptNumber, r.Type,
		r.Name, r.Address1, r.Address2, r.Taluka, r.District, r.PinCode, r.State,
		r.Mobile, r.Gotra, r.GrossWeight, r.NetWeight, r.Goods,
		r.Image1, r.Image2, r.FilledBy,
	}
}

func (s *Store) CreateReceipt(ctx context.Context, r *receipt.Receipt) error {
	err := s.db.QueryRowContext(ctx, insertReceiptQuery, insertArgs(r)...).
		Scan(&r.ID, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating receipt: %w", err)
	}

	return nil
}

func (s *Store) GetReceipt(ctx context.Context, id int64) (*receipt.Receipt, error) {
	query := `SELECT ` + selectReceiptColumns + receiptJoins + `WHERE r.id = $1`

	r, err := scanReceipt(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, receipt.ErrNotFound
		}

		return nil, fmt.Errorf("getting receipt: %w", err)
	}

	return r, nil
}

func (s *Store) ListReceipts(ctx context.Context) ([]*receipt.Receipt, error) {
	query := `SELECT ` + selectReceiptColumns + receiptJoins + `ORDER BY r.created_at DESC, r.id DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing receipts: %w", err)
	}
	defer rows.Close()

	var rs []*receipt.Receipt

	for rows.Next() {
		r, err := scanReceipt(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning receipt: %w", err)
		}

		rs = append(rs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating receipt rows: %w", err)
	}

	return rs, nil
}

// UpdateReceipt writes the mutable field set plus the audit columns.
// created_at is never touched.
func (s *Store) UpdateReceipt(ctx context.Context, r *receipt.Receipt) error {
	query := `
		UPDATE receipts
		SET name = $1, gross_weight = $2, net_weight = $3, receipt_type = $4,
			image1 = $5, image2 = $6, updated_by = $7, updated_at = NOW()
		WHERE id = $8
	`

	res, err := s.db.ExecContext(ctx, query,
		r.Name,
		r.GrossWeight,
		r.NetWeight,
		r.Type,
		r.Image1,
		r.Image2,
		r.UpdatedBy,
		r.ID,
	)
	if err != nil {
		return fmt.Errorf("updating receipt: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating receipt: %w", err)
	}

	if n == 0 {
		return receipt.ErrNotFound
	}

	return nil
}

func (s *Store) DeleteReceipt(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM receipts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting receipt: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting receipt: %w", err)
	}

	if n == 0 {
		return receipt.ErrNotFound
	}

	return nil
}

// CreateReceipts inserts a batch in one transaction; all or nothing.
func (s *Store) CreateReceipts(ctx context.Context, rs []*receipt.Receipt) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning batch insert: %w", err)
	}
	defer tx.Rollback()

	for _, r := range rs {
		err := tx.QueryRowContext(ctx, insertReceiptQuery, insertArgs(r)...).
			Scan(&r.ID, &r.CreatedAt, &r.UpdatedAt)
		if err != nil {
			return fmt.Errorf("creating receipt: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing batch insert: %w", err)
	}

	return nil
}
