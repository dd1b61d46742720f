package mysql

import (
	"context"
	"database/sql"
	_ "embed"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/bryanwahyu/sentichain/internal/infra/db/sqlstore"
)

//go:embed schema.sql
var schema string

// Dialect for MySQL / MariaDB.
var Dialect = sqlstore.Dialect{Name: "mysql", Schema: sqlstore.SplitStatements(schema)}

func Connect(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	// test ping
	ctx2, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx2); err != nil {
		db.Close()
		return nil, err
	}
	if err := sqlstore.Migrate(ctx, db, Dialect); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func NewHistoryRepository(db *sql.DB) *sqlstore.HistoryRepository {
	return sqlstore.NewHistoryRepository(db, Dialect)
}

func NewListingRepository(db *sql.DB) *sqlstore.ListingRepository {
	return sqlstore.NewListingRepository(db, Dialect)
}
