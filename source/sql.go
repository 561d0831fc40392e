package source

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"

	"github.com/spektr-org/erlens/schema"
)

// DefaultQuery reads every column of a posts table.
const DefaultQuery = "SELECT * FROM posts"

// ErrNotReadOnly rejects statements other than SELECT / WITH queries.
var ErrNotReadOnly = errors.New("source query must be a SELECT")

// SQL runs a query against a database/sql driver. Result columns become the
// header; values are rendered to text.
//
// Drivers: "pgx" (jackc/pgx stdlib), "postgres" (lib/pq), "mysql".
type SQL struct {
	Driver string
	DSN    string
	Query  string

	// DB, when set, is used instead of opening Driver/DSN and is not closed.
	DB *sql.DB
}

func (s SQL) Name() string { return s.Driver }

func (s SQL) Load(ctx context.Context) (schema.RawTable, error) {
	query := strings.TrimSpace(s.Query)
	if query == "" {
		query = DefaultQuery
	}
	if !readOnly(query) {
		return schema.RawTable{}, ErrNotReadOnly
	}

	db := s.DB
	if db == nil {
		var err error
		db, err = sql.Open(s.Driver, s.DSN)
		if err != nil {
			return schema.RawTable{}, fmt.Errorf("failed to open %s: %w", s.Driver, err)
		}
		defer db.Close()
	}

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return schema.RawTable{}, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	header, err := rows.Columns()
	if err != nil {
		return schema.RawTable{}, fmt.Errorf("failed to read columns: %w", err)
	}

	raw := schema.RawTable{Header: header}
	values := make([]any, len(header))
	dest := make([]any, len(header))
	for i := range values {
		dest[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			log.Printf("⚠️ [source] %s: skipping row: %v", s.Driver, err)
			raw.Skipped++
			continue
		}
		row := make([]string, len(values))
		for i, v := range values {
			row[i] = cellText(v)
		}
		raw.Rows = append(raw.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return schema.RawTable{}, fmt.Errorf("failed to read rows: %w", err)
	}

	log.Printf("🗄️ [source] %s: %d rows", s.Driver, len(raw.Rows))
	return raw, nil
}

func readOnly(query string) bool {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return false
	}
	switch strings.ToUpper(fields[0]) {
	case "SELECT", "WITH":
		return true
	}
	return false
}
