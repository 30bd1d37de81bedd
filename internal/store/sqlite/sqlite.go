package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/vovakirdan/drawboard-server/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS room_sessions (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	room_id      TEXT     NOT NULL,
	opened_at    DATETIME NOT NULL,
	closed_at    DATETIME,
	peak_members INTEGER  NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_room_sessions_room ON room_sessions(room_id, closed_at);
`

// DefaultLimit caps RecentSessions when the caller passes a non-positive limit.
const DefaultLimit = 50

// SQLiteStore implements store.Journal for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

var _ store.Journal = (*SQLiteStore)(nil)

// New opens (or creates) the journal database at dbPath and applies the schema.
func New(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection; it also keeps
	// ":memory:" databases alive across queries.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// RecordOpened inserts a new open session for roomID.
func (s *SQLiteStore) RecordOpened(ctx context.Context, roomID string, at time.Time) error {
	query := `
		INSERT INTO room_sessions (room_id, opened_at, peak_members)
		VALUES (?, ?, 1)
	`
	if _, err := s.db.ExecContext(ctx, query, roomID, at.UTC()); err != nil {
		return fmt.Errorf("insert room session: %w", err)
	}
	return nil
}

// RecordClosed closes the newest open session for roomID. Closing a room with
// no open session is not an error.
func (s *SQLiteStore) RecordClosed(ctx context.Context, roomID string, at time.Time, peakMembers int) error {
	query := `
		UPDATE room_sessions
		SET closed_at = ?, peak_members = ?
		WHERE id = (
			SELECT id FROM room_sessions
			WHERE room_id = ? AND closed_at IS NULL
			ORDER BY id DESC
			LIMIT 1
		)
	`
	if _, err := s.db.ExecContext(ctx, query, at.UTC(), peakMembers, roomID); err != nil {
		return fmt.Errorf("close room session: %w", err)
	}
	return nil
}

// RecentSessions returns up to limit sessions, newest first.
func (s *SQLiteStore) RecentSessions(ctx context.Context, limit int) ([]store.RoomSession, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	query := `
		SELECT id, room_id, opened_at, closed_at, peak_members
		FROM room_sessions
		ORDER BY id DESC
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query room sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]store.RoomSession, 0, limit)
	for rows.Next() {
		var (
			rs       store.RoomSession
			closedAt sql.NullTime
		)
		if err := rows.Scan(&rs.ID, &rs.RoomID, &rs.OpenedAt, &closedAt, &rs.PeakMembers); err != nil {
			return nil, fmt.Errorf("scan room session: %w", err)
		}
		if closedAt.Valid {
			t := closedAt.Time
			rs.ClosedAt = &t
		}
		sessions = append(sessions, rs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate room sessions: %w", err)
	}

	return sessions, nil
}
