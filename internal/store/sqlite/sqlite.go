package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/arkail/chatroom-server/internal/store"
)

const schema = `
	CREATE TABLE IF NOT EXISTS messages (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		username      TEXT    NOT NULL,
		content       TEXT    NOT NULL DEFAULT '',
		file_url      TEXT    NOT NULL DEFAULT '',
		created_at_ns INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_messages_created_at ON messages(created_at_ns);
`

// SQLiteStore implements store.MessageStore for SQLite.
type SQLiteStore struct {
	db *sql.DB

	// appendMu serializes appends so that timestamp assignment and the
	// durability write are atomic relative to other appends. Reads do not
	// take this lock.
	appendMu sync.Mutex
	lastNS   int64
}

// New creates a new SQLite store and applies the message schema.
// dbPath is the path to the SQLite database file.
func New(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.loadLastTimestamp(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewWithSetup creates a new SQLite store and runs a setup function before
// the schema is applied. Useful for tests that seed data.
func NewWithSetup(dbPath string, setup func(*sql.DB) error) (*SQLiteStore, error) {
	s, err := New(dbPath)
	if err != nil {
		return nil, err
	}
	if setup != nil {
		if err := setup(s.db); err != nil {
			s.db.Close()
			return nil, fmt.Errorf("setup: %w", err)
		}
		if err := s.loadLastTimestamp(); err != nil {
			s.db.Close()
			return nil, err
		}
	}
	return s, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) loadLastTimestamp() error {
	var last sql.NullInt64
	err := s.db.QueryRow(`SELECT MAX(created_at_ns) FROM messages`).Scan(&last)
	if err != nil {
		return fmt.Errorf("load last timestamp: %w", err)
	}
	if last.Valid {
		s.lastNS = last.Int64
	}
	return nil
}

// Append validates the candidate, assigns an id and a strictly increasing
// timestamp, and persists the record before returning.
func (s *SQLiteStore) Append(ctx context.Context, cand store.Candidate) (*store.Message, error) {
	if err := cand.Validate(); err != nil {
		return nil, err
	}

	s.appendMu.Lock()
	defer s.appendMu.Unlock()

	// Clamp the clock so timestamps never repeat or go backwards within
	// this store instance.
	ns := time.Now().UTC().UnixNano()
	if ns <= s.lastNS {
		ns = s.lastNS + 1
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (username, content, file_url, created_at_ns)
		VALUES (?, ?, ?, ?)
	`, cand.Username, cand.Content, cand.FileURL, ns)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w: %w", store.ErrUnavailable, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w: %w", store.ErrUnavailable, err)
	}

	s.lastNS = ns

	return &store.Message{
		ID:        id,
		Username:  cand.Username,
		Content:   cand.Content,
		FileURL:   cand.FileURL,
		CreatedAt: time.Unix(0, ns).UTC(),
	}, nil
}

// Recent returns the most recent limit messages in chronological order.
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]*store.Message, error) {
	if limit <= 0 {
		return []*store.Message{}, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, username, content, file_url, created_at_ns
		FROM messages
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent messages: %w: %w", store.ErrUnavailable, err)
	}
	defer rows.Close()

	messages, err := scanMessages(rows)
	if err != nil {
		return nil, err
	}

	reverseChronological(messages)
	return messages, rows.Err()
}

// Page returns one page of history in chronological order plus the total
// page count. Pages are computed newest-first, then re-ascended so callers
// always render oldest-first.
func (s *SQLiteStore) Page(ctx context.Context, page, pageSize int) ([]*store.Message, int, error) {
	if pageSize <= 0 {
		return []*store.Message{}, 0, nil
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count messages: %w: %w", store.ErrUnavailable, err)
	}

	totalPages := (total + pageSize - 1) / pageSize
	if page < 1 || page > totalPages {
		return []*store.Message{}, totalPages, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, username, content, file_url, created_at_ns
		FROM messages
		ORDER BY id DESC
		LIMIT ? OFFSET ?
	`, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("query message page: %w: %w", store.ErrUnavailable, err)
	}
	defer rows.Close()

	messages, err := scanMessages(rows)
	if err != nil {
		return nil, 0, err
	}

	reverseChronological(messages)
	return messages, totalPages, rows.Err()
}

func scanMessages(rows *sql.Rows) ([]*store.Message, error) {
	var messages []*store.Message
	for rows.Next() {
		var (
			msg store.Message
			ns  int64
		)
		if err := rows.Scan(&msg.ID, &msg.Username, &msg.Content, &msg.FileURL, &ns); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msg.CreatedAt = time.Unix(0, ns).UTC()
		messages = append(messages, &msg)
	}
	if messages == nil {
		messages = []*store.Message{}
	}
	return messages, nil
}

// reverseChronological flips a newest-first result set into oldest-first.
func reverseChronological(messages []*store.Message) {
	for i := 0; i < len(messages)/2; i++ {
		messages[i], messages[len(messages)-1-i] = messages[len(messages)-1-i], messages[i]
	}
}
