package ledger

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/samber/oops"

	"github.com/robalobadob/escaperoom/internal/manor"
)

// timeLayout keeps stored timestamps lexically sortable.
const timeLayout = "2006-01-02T15:04:05.000000Z"

const (
	defaultLimit = 20
	maxLimit     = 100
)

// Entry is one recorded escape.
type Entry struct {
	ID        string    `json:"id"`
	PlayerID  string    `json:"playerId"`
	EscapedAt time.Time `json:"escapedAt"`
	ElapsedMs int64     `json:"elapsedMs"`
}

// Ledger records successful escapes in SQLite.
type Ledger struct {
	db *sql.DB
}

// Open opens the database at path and applies pending migrations.
func Open(ctx context.Context, path string) (*Ledger, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Ledger{db: db}, nil
}

// Close releases the database handle.
func (l *Ledger) Close() error { return l.db.Close() }

// RecordEscape implements manor.EscapeRecorder.
// Elapsed time is zero when the player never entered the parlor.
func (l *Ledger) RecordEscape(ctx context.Context, e manor.Escape) error {
	var (
		started sql.NullString
		elapsed int64
	)
	if !e.StartedAt.IsZero() {
		started = sql.NullString{String: e.StartedAt.UTC().Format(timeLayout), Valid: true}
		if d := e.EscapedAt.Sub(e.StartedAt); d > 0 {
			elapsed = d.Milliseconds()
		}
	}

	_, err := l.db.ExecContext(ctx, `
        INSERT INTO escapes (id, player_id, started_at, escaped_at, elapsed_ms)
        VALUES (?, ?, ?, ?, ?)`,
		uuid.NewString(), e.PlayerID, started, e.EscapedAt.UTC().Format(timeLayout), elapsed,
	)
	if err != nil {
		return oops.Code("LEDGER_WRITE_FAILED").With("player", e.PlayerID).Wrap(err)
	}
	return nil
}

// Leaderboard returns the fastest escapes, ordered by elapsed time then
// escape time. limit defaults to 20 and is capped at 100.
func (l *Ledger) Leaderboard(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	rows, err := l.db.QueryContext(ctx, `
        SELECT id, player_id, escaped_at, elapsed_ms
        FROM escapes
        ORDER BY elapsed_ms ASC, escaped_at ASC
        LIMIT ?`, limit,
	)
	if err != nil {
		return nil, oops.Code("LEDGER_READ_FAILED").Wrap(err)
	}
	defer rows.Close()

	out := make([]Entry, 0, limit)
	for rows.Next() {
		var (
			e         Entry
			escapedAt string
		)
		if err := rows.Scan(&e.ID, &e.PlayerID, &escapedAt, &e.ElapsedMs); err != nil {
			return nil, oops.Code("LEDGER_READ_FAILED").Wrap(err)
		}
		e.EscapedAt, _ = time.Parse(timeLayout, escapedAt)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("LEDGER_READ_FAILED").Wrap(err)
	}
	return out, nil
}
