package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bryanwahyu/sentichain/internal/domain/chain"
	domain "github.com/bryanwahyu/sentichain/internal/domain/history"
	"github.com/bryanwahyu/sentichain/internal/domain/sentiment"
)

type HistoryRepository struct {
	db *sql.DB
	d  Dialect
}

func NewHistoryRepository(db *sql.DB, d Dialect) *HistoryRepository {
	return &HistoryRepository{db: db, d: d}
}

// Load returns entries ordered by position (newest first)
func (r *HistoryRepository) Load(ctx context.Context, limit int) ([]*domain.Entry, error) {
	q := `
SELECT id, text, model, keyword, result_json, chain_json, created_unix_nano
FROM history_entries
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

	var out []*domain.Entry
	for rows.Next() {
		var (
			e          domain.Entry
			model      string
			resultJSON string
			chainJSON  sql.NullString
			created    int64
		)
		if err := rows.Scan(&e.ID, &e.Text, &model, &e.Keyword, &resultJSON, &chainJSON, &created); err != nil {
			return nil, err
		}
		e.Model = sentiment.ParseModel(model)
		if err := json.Unmarshal([]byte(resultJSON), &e.Results); err != nil {
			return nil, fmt.Errorf("decode result of %s: %w", e.ID, err)
		}
		if chainJSON.Valid && chainJSON.String != "" {
			var ref chain.TxRef
			if err := json.Unmarshal([]byte(chainJSON.String), &ref); err != nil {
				return nil, fmt.Errorf("decode tx of %s: %w", e.ID, err)
			}
			e.BlockchainData = &ref
		}
		e.Timestamp = time.Unix(0, created).UTC()
		out = append(out, &e)
	}
	return out, rows.Err()
}

// Replace overwrites the table with entries in one transaction
func (r *HistoryRepository) Replace(ctx context.Context, entries []*domain.Entry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM history_entries`); err != nil {
		return err
	}
	ins, err := tx.PrepareContext(ctx, r.d.Rebind(`
INSERT INTO history_entries
  (id, position, text, model, keyword, result_json, chain_json, created_unix_nano)
VALUES (?,?,?,?,?,?,?,?)`))
	if err != nil {
		return err
	}
	defer ins.Close()

	for i, e := range entries {
		result, err := json.Marshal(e.Results)
		if err != nil {
			return fmt.Errorf("encode result of %s: %w", e.ID, err)
		}
		var chainJSON sql.NullString
		if e.BlockchainData != nil {
			b, err := json.Marshal(e.BlockchainData)
			if err != nil {
				return err
			}
			chainJSON = sql.NullString{String: string(b), Valid: true}
		}
		created := e.Timestamp
		if created.IsZero() {
			created = time.Now()
		}
		if _, err := ins.ExecContext(ctx, string(e.ID), i, e.Text, string(e.Model), e.Keyword, string(result), chainJSON, created.UnixNano()); err != nil {
			return fmt.Errorf("insert history %s: %w", e.ID, err)
		}
	}
	return tx.Commit()
}
