// internal/ledger/db.go
//
// SQLite helpers for the escape ledger.
// Responsibilities:
//   - Opening the database file with safe defaults (WAL, busy timeout).
//   - Applying the embedded migrations (idempotent, recorded in _migrations).

package ledger

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
	"github.com/samber/oops"

	"github.com/robalobadob/escaperoom/assets"
)

// openDB opens (and creates if missing) a SQLite database file.
// The parent directory is created for relative paths such as ./data/manor.db.
func openDB(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, oops.Code("LEDGER_OPEN_FAILED").With("dir", dir).Wrap(err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, oops.Code("LEDGER_OPEN_FAILED").With("path", path).Wrap(err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, oops.Code("LEDGER_OPEN_FAILED").With("path", path).Wrap(err)
	}
	return db, nil
}

// migrate applies the embedded migrations in lexical order, each inside its
// own transaction, skipping files already recorded in _migrations.
func migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY);`); err != nil {
		return oops.Code("LEDGER_MIGRATE_FAILED").With("operation", "create _migrations").Wrap(err)
	}

	migrations, err := assets.Migrations()
	if err != nil {
		return oops.Code("LEDGER_MIGRATE_FAILED").With("operation", "read embedded migrations").Wrap(err)
	}

	for _, m := range migrations {
		var done int
		err := db.QueryRowContext(ctx, `SELECT 1 FROM _migrations WHERE name=?`, m.Name).Scan(&done)
		if err == nil {
			log.Debug().Str("migration", m.Name).Msg("already applied")
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return oops.Code("LEDGER_MIGRATE_FAILED").With("migration", m.Name).Wrap(err)
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return oops.Code("LEDGER_MIGRATE_FAILED").With("migration", m.Name).Wrap(err)
		}
		if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
			_ = tx.Rollback()
			return oops.Code("LEDGER_MIGRATE_FAILED").With("migration", m.Name).With("operation", "apply").Wrap(err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO _migrations(name) VALUES (?)`, m.Name); err != nil {
			_ = tx.Rollback()
			return oops.Code("LEDGER_MIGRATE_FAILED").With("migration", m.Name).With("operation", "record").Wrap(err)
		}
		if err := tx.Commit(); err != nil {
			return oops.Code("LEDGER_MIGRATE_FAILED").With("migration", m.Name).With("operation", "commit").Wrap(err)
		}
		log.Info().Str("migration", m.Name).Msg("applied")
	}
	return nil
}
