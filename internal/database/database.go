// internal/database/database.go
//
// Database helpers for the games server.
// Responsibilities:
//   - Opening sqlite (default), postgres or mysql with sane defaults.
//   - Rewriting `?` placeholders for drivers that number them.
//   - Applying embedded migrations (idempotent, recorded in _migrations).

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/guessgames/assets"
)

// DB is a *sql.DB that knows its dialect.
type DB struct {
	*sql.DB
	Dialect string // "sqlite" | "postgres" | "mysql"
}

// Open connects to the database described by dialect and dsn.
// For sqlite, dsn is a file path; its parent directory is created.
func Open(dialect, dsn string) (*DB, error) {
	var (
		driver string
		source string
	)
	switch dialect {
	case "sqlite":
		dir := filepath.Dir(dsn)
		if dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("mkdir %s: %w", dir, err)
			}
		}
		driver, source = "sqlite3", dsn+"?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on"
	case "postgres":
		driver, source = "postgres", dsn
	case "mysql":
		driver, source = "mysql", dsn
	default:
		return nil, fmt.Errorf("unsupported dialect %q", dialect)
	}

	db, err := sql.Open(driver, source)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", dialect, err)
	}
	if dialect == "sqlite" {
		// One writer at a time keeps sqlite transactions from failing with SQLITE_BUSY.
		db.SetMaxOpenConns(1)
	}
	return &DB{DB: db, Dialect: dialect}, nil
}

// Rebind rewrites `?` placeholders to `$n` for postgres.
func (d *DB) Rebind(q string) string {
	if d.Dialect != "postgres" {
		return q
	}
	var b strings.Builder
	n := 0
	for i := 0; i < len(q); i++ {
		if q[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(q[i])
	}
	return b.String()
}

// ForUpdate is the row-lock suffix for SELECTs inside a read-modify-write.
func (d *DB) ForUpdate() string {
	if d.Dialect == "sqlite" {
		return ""
	}
	return " FOR UPDATE"
}

// Migrate applies the embedded migrations in lexical order.
//
//   - A _migrations table records applied files.
//   - Each file runs in its own transaction, statement by statement.
func Migrate(ctx context.Context, d *DB) error {
	if _, err := d.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS _migrations (name VARCHAR(255) PRIMARY KEY)`); err != nil {
		return fmt.Errorf("create _migrations: %w", err)
	}
	files, err := assets.Migrations()
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}

	for _, f := range files {
		var done int
		err := d.QueryRowContext(ctx, d.Rebind(`SELECT 1 FROM _migrations WHERE name=?`), f.Name).Scan(&done)
		if err == nil {
			log.Debug().Str("migration", f.Name).Msg("already applied")
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("query _migrations: %w", err)
		}

		tx, err := d.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		for _, stmt := range statements(f.SQL) {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("apply %s: %w", f.Name, err)
			}
		}
		if _, err := tx.ExecContext(ctx, d.Rebind(`INSERT INTO _migrations(name) VALUES (?)`), f.Name); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record %s: %w", f.Name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit %s: %w", f.Name, err)
		}
		log.Info().Str("migration", f.Name).Msg("applied")
	}
	return nil
}

// statements splits a migration file on `;`, dropping `--` comment lines.
// Migrations must not contain semicolons inside string literals.
func statements(src string) []string {
	var lines []string
	for _, l := range strings.Split(src, "\n") {
		if strings.HasPrefix(strings.TrimSpace(l), "--") {
			continue
		}
		lines = append(lines, l)
	}
	var out []string
	for _, s := range strings.Split(strings.Join(lines, "\n"), ";") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
