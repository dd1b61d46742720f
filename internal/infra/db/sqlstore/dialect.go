// Package sqlstore holds the history and marketplace repositories shared by the
// mysql, postgres and sqlite adapters. Each adapter supplies a Dialect.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
)

// Dialect describes the differences between SQL backends that the repositories care about.
type Dialect struct {
	Name string
	// Numbered placeholders ($1, $2, ...) instead of ?.
	Numbered bool
	// Schema statements, applied in order by Migrate.
	Schema []string
}

// Rebind rewrites ? placeholders for dialects that number them.
func (d Dialect) Rebind(q string) string {
	if !d.Numbered {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Migrate applies the dialect schema. Statements must be idempotent.
func Migrate(ctx context.Context, db *sql.DB, d Dialect) error {
	for _, stmt := range d.Schema {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%s migrate: %w", d.Name, err)
		}
	}
	return nil
}

// SplitStatements splits an embedded schema file on semicolons.
func SplitStatements(schema string) []string {
	var out []string
	for _, s := range strings.Split(schema, ";") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
