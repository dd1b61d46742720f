package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	domain "github.com/bryanwahyu/sentichain/internal/domain/marketplace"
)

type ListingRepository struct {
	db *sql.DB
	d  Dialect
}

func NewListingRepository(db *sql.DB, d Dialect) *ListingRepository {
	return &ListingRepository{db: db, d: d}
}

// Load returns listings ordered by position (newest first)
func (r *ListingRepository) Load(ctx context.Context, limit int) ([]*domain.Listing, error) {
	q := `
SELECT id, title, description, price, seller, category, sentiment, created_unix_nano, is_sold
FROM marketplace_listings
ORDER BY position ASC`
	var args []any
	if limit > 0 {
		q += "\nLIMIT ?"
		args = append(args, limit)
	}
	rows, err := r.db.QueryContext(ctx, r.d.Rebind(q), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Listing
	for rows.Next() {
		var l domain.Listing
		var created int64
		if err := rows.Scan(&l.ID, &l.Title, &l.Description, &l.Price, &l.Seller, &l.Category, &l.Sentiment, &created, &l.IsSold); err != nil {
			return nil, err
		}
		l.Created = time.Unix(0, created).UTC()
		out = append(out, &l)
	}
	return out, rows.Err()
}

// Replace overwrites the table with listings in one transaction. Demo listings are skipped.
func (r *ListingRepository) Replace(ctx context.Context, listings []*domain.Listing) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM marketplace_listings`); err != nil {
		return err
	}
	ins, err := tx.PrepareContext(ctx, r.d.Rebind(`
INSERT INTO marketplace_listings
  (id, position, title, description, price, seller, category, sentiment, created_unix_nano, is_sold)
VALUES (?,?,?,?,?,?,?,?,?,?)`))
	if err != nil {
		return err
	}
	defer ins.Close()

	pos := 0
	for _, l := range listings {
		if l.IsDemo() {
			continue
		}
		if _, err := ins.ExecContext(ctx, string(l.ID), pos, l.Title, l.Description, l.Price, l.Seller,
			l.Category, l.Sentiment, l.Created.UnixNano(), l.IsSold); err != nil {
			return fmt.Errorf("insert listing %s: %w", l.ID, err)
		}
		pos++
	}
	return tx.Commit()
}
