package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/litsalon/backend/internal/model/chat"
	"github.com/litsalon/backend/internal/model/persona"
)

var ErrPersonaNotFound = errors.New("persona not found")

const (
	// DefaultTranscriptCap bounds how many entries a transcript keeps.
	DefaultTranscriptCap = 50
	// DefaultContextWindow is how many recent entries feed the model.
	DefaultContextWindow = 15
)

// Store manages per-user conversation state. Transcripts are bounded and
// live only for the process lifetime: a restart loses every session.
type Store struct {
	mu            sync.RWMutex
	sessions      map[string]*chat.Session
	personas      persona.Store
	transcriptCap int
}

// NewStore bootstraps the in-memory session store.
func NewStore(personas persona.Store, transcriptCap int) *Store {
	if transcriptCap <= 0 {
		transcriptCap = DefaultTranscriptCap
	}
	return &Store{
		sessions:      make(map[string]*chat.Session),
		personas:      personas,
		transcriptCap: transcriptCap,
	}
}

// GetOrCreate returns the user's session, creating an empty one (no persona
// selected) on first contact.
func (s *Store) GetOrCreate(_ context.Context, userID string) chat.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot(s.getOrCreateLocked(userID))
}

// SelectPersona binds the session to a persona and resets the transcript to
// a single synthesized greeting. Prior corrections for the user are kept;
// they live in the correction store, not here.
func (s *Store) SelectPersona(_ context.Context, userID, personaID string) (chat.Session, error) {
	p, ok := s.personas.FindByID(personaID)
	if !ok {
		return chat.Session{}, fmt.Errorf("%w: %s", ErrPersonaNotFound, personaID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session := s.getOrCreateLocked(userID)
	session.PersonaID = p.ID
	session.Transcript = []chat.Entry{{
		Role:    chat.RoleAssistant,
		Content: Greeting(p),
	}}
	return snapshot(session), nil
}

// AppendTurn records one completed exchange, user message first, then trims
// the transcript to the most recent transcriptCap entries.
func (s *Store) AppendTurn(_ context.Context, userID, userMessage, assistantMessage string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := s.getOrCreateLocked(userID)
	session.Transcript = append(session.Transcript,
		chat.Entry{Role: chat.RoleUser, Content: userMessage},
		chat.Entry{Role: chat.RoleAssistant, Content: assistantMessage},
	)
	if over := len(session.Transcript) - s.transcriptCap; over > 0 {
		session.Transcript = append([]chat.Entry(nil), session.Transcript[over:]...)
	}
}

// RecentContext returns the most recent window entries, oldest first. This
// is the conversational context sent to the completion service and is
// normally smaller than the storage cap.
func (s *Store) RecentContext(_ context.Context, userID string, window int) []chat.Entry {
	if window <= 0 {
		window = DefaultContextWindow
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[userID]
	if !ok {
		return nil
	}
	start := 0
	if len(session.Transcript) > window {
		start = len(session.Transcript) - window
	}
	return append([]chat.Entry(nil), session.Transcript[start:]...)
}

// LastUserMessage returns the newest user-authored transcript entry, or
// chat.UnknownQuestion when there is none yet.
func (s *Store) LastUserMessage(_ context.Context, userID string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[userID]
	if !ok {
		return chat.UnknownQuestion
	}
	for i := len(session.Transcript) - 1; i >= 0; i-- {
		if session.Transcript[i].Role == chat.RoleUser {
			return session.Transcript[i].Content
		}
	}
	return chat.UnknownQuestion
}

// Greeting synthesizes the assistant entry a fresh persona selection starts
// with.
func Greeting(p persona.Persona) string {
	return fmt.Sprintf("Greetings! I am %s. Delighted to make your acquaintance. Ask me about my works, my life, or literature itself.", p.DisplayName)
}

func (s *Store) getOrCreateLocked(userID string) *chat.Session {
	session, ok := s.sessions[userID]
	if !ok {
		session = &chat.Session{UserID: userID}
		s.sessions[userID] = session
	}
	return session
}

func snapshot(session *chat.Session) chat.Session {
	copied := *session
	copied.Transcript = append([]chat.Entry(nil), session.Transcript...)
	return copied
}
