// Package correction keeps the append-only logs of user-submitted factual
// corrections, per user and promoted per persona. Logs only grow within a
// process lifetime; readers always get a bounded most-recent window.
package correction

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/litsalon/backend/internal/model/chat"
)

var ErrEmptyCorrection = errors.New("correction text is empty")

// Store is the correction log contract shared by the in-memory and SQLite
// backends.
type Store interface {
	// Record validates and appends a correction to the user's log, and
	// promotes a derived learning string to the persona's global log.
	Record(ctx context.Context, userID, personaID, priorUserMessage, text string, priority chat.Priority) (chat.CorrectionRecord, error)
	// RecentForUser returns at most limit records for the persona, oldest
	// of the selected window first. The log itself is never mutated.
	RecentForUser(ctx context.Context, userID, personaID string, limit int) ([]chat.CorrectionRecord, error)
	// RecentGlobal returns at most limit derived learning strings for the
	// persona, independent of which user contributed them.
	RecentGlobal(ctx context.Context, personaID string, limit int) ([]string, error)
	// Counts reports the user's total corrections and those scoped to the
	// given persona, for the stats view.
	Counts(ctx context.Context, userID, personaID string) (total int, forPersona int, err error)
}

// GlobalLearning derives the cross-user learning string promoted to the
// persona's shared log. Every user benefits from it; a wrong correction
// pollutes it for everyone, which is the accepted trust trade-off.
func GlobalLearning(priorUserMessage, text string) string {
	return fmt.Sprintf("When asked about: %s → Answer: %s", priorUserMessage, text)
}

// MemoryStore keeps correction logs in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	byUser   map[string][]chat.CorrectionRecord
	byGlobal map[string][]string
}

// NewMemoryStore bootstraps the in-memory correction store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byUser:   make(map[string][]chat.CorrectionRecord),
		byGlobal: make(map[string][]string),
	}
}

func (s *MemoryStore) Record(_ context.Context, userID, personaID, priorUserMessage, text string, priority chat.Priority) (chat.CorrectionRecord, error) {
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

	s.mu.Lock()
	s.byUser[userID] = append(s.byUser[userID], record)
	s.byGlobal[personaID] = append(s.byGlobal[personaID], GlobalLearning(priorUserMessage, text))
	s.mu.Unlock()

	return record, nil
}

func (s *MemoryStore) RecentForUser(_ context.Context, userID, personaID string, limit int) ([]chat.CorrectionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var scoped []chat.CorrectionRecord
	for _, record := range s.byUser[userID] {
		if record.PersonaID == personaID {
			scoped = append(scoped, record)
		}
	}
	return tailRecords(scoped, limit), nil
}

func (s *MemoryStore) RecentGlobal(_ context.Context, personaID string, limit int) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.byGlobal[personaID]
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	return append([]string(nil), entries...), nil
}

func (s *MemoryStore) Counts(_ context.Context, userID, personaID string) (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := s.byUser[userID]
	forPersona := 0
	for _, record := range records {
		if record.PersonaID == personaID {
			forPersona++
		}
	}
	return len(records), forPersona, nil
}

func tailRecords(records []chat.CorrectionRecord, limit int) []chat.CorrectionRecord {
	if limit > 0 && len(records) > limit {
		records = records[len(records)-limit:]
	}
	return append([]chat.CorrectionRecord(nil), records...)
}
