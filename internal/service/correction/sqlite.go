package correction

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/litsalon/backend/internal/model/chat"
)

const schema = `
CREATE TABLE IF NOT EXISTS corrections (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	persona_id TEXT NOT NULL,
	prior_user_message TEXT NOT NULL,
	correction_text TEXT NOT NULL,
	priority TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_corrections_user ON corrections(user_id, persona_id, created_at);

CREATE TABLE IF NOT EXISTS global_learnings (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	persona_id TEXT NOT NULL,
	learning TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_global_persona ON global_learnings(persona_id, seq);
`

// SQLiteStore persists correction logs so they survive restarts. Sessions
// stay in memory either way; only the append-only logs are durable.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the correction database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open corrections db: %w", err)
	}
	// modernc.org/sqlite serializes writes; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init corrections schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Record(ctx context.Context, userID, personaID, priorUserMessage, text string, priority chat.Priority) (chat.CorrectionRecord, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return chat.CorrectionRecord{}, ErrEmptyCorrection
	}
	if priorUserMessage == "" {
		priorUserMessage = chat.UnknownQuestion
	}
	if priority == "" {
		priority = chat.PriorityNormal
	}

	record := chat.CorrectionRecord{
		ID:               uuid.NewString(),
		UserID:           userID,
		PersonaID:        personaID,
		PriorUserMessage: priorUserMessage,
		CorrectionText:   text,
		Priority:         priority,
		CreatedAt:        time.Now().UTC(),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return chat.CorrectionRecord{}, fmt.Errorf("begin correction tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO corrections
			(id, user_id, persona_id, prior_user_message, correction_text, priority, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.UserID, record.PersonaID, record.PriorUserMessage,
		record.CorrectionText, string(record.Priority),
		record.CreatedAt.Format(time.RFC3339Nano),
	); err != nil {
		return chat.CorrectionRecord{}, fmt.Errorf("insert correction: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO global_learnings (persona_id, learning, created_at)
		VALUES (?, ?, ?)`,
		record.PersonaID, GlobalLearning(priorUserMessage, text),
		record.CreatedAt.Format(time.RFC3339Nano),
	); err != nil {
		return chat.CorrectionRecord{}, fmt.Errorf("insert global learning: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return chat.CorrectionRecord{}, fmt.Errorf("commit correction: %w", err)
	}
	return record, nil
}

func (s *SQLiteStore) RecentForUser(ctx context.Context, userID, personaID string, limit int) ([]chat.CorrectionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, persona_id, prior_user_message, correction_text, priority, created_at
		FROM corrections
		WHERE user_id = ? AND persona_id = ?
		ORDER BY rowid`,
		userID, personaID)
	if err != nil {
		return nil, fmt.Errorf("query corrections: %w", err)
	}
	defer rows.Close()

	var records []chat.CorrectionRecord
	for rows.Next() {
		var record chat.CorrectionRecord
		var priority, createdAt string
		if err := rows.Scan(&record.ID, &record.UserID, &record.PersonaID,
			&record.PriorUserMessage, &record.CorrectionText, &priority, &createdAt); err != nil {
			return nil, fmt.Errorf("scan correction: %w", err)
		}
		record.Priority = chat.Priority(priority)
		if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			record.CreatedAt = ts
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate corrections: %w", err)
	}
	return tailRecords(records, limit), nil
}

func (s *SQLiteStore) RecentGlobal(ctx context.Context, personaID string, limit int) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT learning FROM global_learnings
		WHERE persona_id = ?
		ORDER BY seq`,
		personaID)
	if err != nil {
		return nil, fmt.Errorf("query global learnings: %w", err)
	}
	defer rows.Close()

	var entries []string
	for rows.Next() {
		var learning string
		if err := rows.Scan(&learning); err != nil {
			return nil, fmt.Errorf("scan global learning: %w", err)
		}
		entries = append(entries, learning)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate global learnings: %w", err)
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	return entries, nil
}

func (s *SQLiteStore) Counts(ctx context.Context, userID, personaID string) (int, int, error) {
	var total, forPersona int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM corrections WHERE user_id = ?`, userID).Scan(&total); err != nil {
		return 0, 0, fmt.Errorf("count corrections: %w", err)
	}
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM corrections WHERE user_id = ? AND persona_id = ?`,
		userID, personaID).Scan(&forPersona); err != nil {
		return 0, 0, fmt.Errorf("count persona corrections: %w", err)
	}
	return total, forPersona, nil
}
