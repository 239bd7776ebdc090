// Package orchestrator drives one inbound turn end to end: classify the
// message, resolve session state, compose the prompt, call the completion
// collaborator with retries, and record the exchange. All transports (HTTP,
// SSE, WebSocket, Matrix) share this one core.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/litsalon/backend/internal/model/chat"
	"github.com/litsalon/backend/internal/model/persona"
	"github.com/litsalon/backend/internal/retry"
	"github.com/litsalon/backend/internal/service/correction"
	"github.com/litsalon/backend/internal/service/knowledge"
	"github.com/litsalon/backend/internal/service/llm"
	"github.com/litsalon/backend/internal/service/prompt"
	"github.com/litsalon/backend/internal/service/session"
)

var ErrNoPersonaSelected = errors.New("no persona selected")

// ReplyKind tells transports how to render a turn's outcome.
type ReplyKind int

const (
	// ReplyAnswer is a model-generated reply ready for chunked delivery.
	ReplyAnswer ReplyKind = iota
	// ReplyNeedsPersona redirects the caller to persona selection.
	ReplyNeedsPersona
	// ReplyAcknowledged answers an affirmation locally.
	ReplyAcknowledged
	// ReplyCorrectionStored confirms a recorded correction.
	ReplyCorrectionStored
	// ReplyCorrectionMissing asks for the correction text that was absent.
	ReplyCorrectionMissing
	// ReplyFailure reports an upstream failure in coarse terms.
	ReplyFailure
)

// String names the kind for wire payloads and logs.
func (k ReplyKind) String() string {
	switch k {
	case ReplyAnswer:
		return "answer"
	case ReplyNeedsPersona:
		return "needs_persona"
	case ReplyAcknowledged:
		return "acknowledged"
	case ReplyCorrectionStored:
		return "correction_stored"
	case ReplyCorrectionMissing:
		return "correction_missing"
	case ReplyFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// Reply is the transport-agnostic result of one turn.
type Reply struct {
	Kind ReplyKind
	Text string
}

// Stats summarizes a user's correction history.
type Stats struct {
	PersonaID          string `json:"personaId,omitempty"`
	TotalCorrections   int    `json:"totalCorrections"`
	PersonaCorrections int    `json:"personaCorrections"`
}

// Config tunes the turn pipeline.
type Config struct {
	ContextWindow  int
	RetryAttempts  int
	RetryDelay     time.Duration
	AttemptTimeout time.Duration
}

// DefaultConfig matches the documented turn policy: 15-entry context,
// 3 attempts 1s apart, 30s per attempt.
func DefaultConfig() Config {
	return Config{
		ContextWindow:  session.DefaultContextWindow,
		RetryAttempts:  3,
		RetryDelay:     time.Second,
		AttemptTimeout: 30 * time.Second,
	}
}

// Orchestrator owns the turn state machine. Construct once at startup and
// inject into every transport.
type Orchestrator struct {
	personas    persona.Store
	sessions    *session.Store
	corrections correction.Store
	knowledge   *knowledge.Service
	completer   llm.Completer
	cfg         Config

	mu        sync.Mutex
	userLocks map[string]*sync.Mutex
}

// New wires the orchestrator. knowledge may be nil to disable the fact
// section; completer may be nil when no provider is configured, in which
// case regular turns fail with a configuration reply.
func New(personas persona.Store, sessions *session.Store, corrections correction.Store, facts *knowledge.Service, completer llm.Completer, cfg Config) *Orchestrator {
	if cfg.ContextWindow <= 0 {
		cfg.ContextWindow = session.DefaultContextWindow
	}
	if cfg.RetryAttempts <= 0 {
		cfg.RetryAttempts = 3
	}
	if cfg.AttemptTimeout <= 0 {
		cfg.AttemptTimeout = 30 * time.Second
	}
	return &Orchestrator{
		personas:    personas,
		sessions:    sessions,
		corrections: corrections,
		knowledge:   facts,
		completer:   completer,
		cfg:         cfg,
		userLocks:   make(map[string]*sync.Mutex),
	}
}

// ListPersonas returns the selectable personas in registration order.
func (o *Orchestrator) ListPersonas() []persona.Summary {
	items := o.personas.List()
	summaries := make([]persona.Summary, 0, len(items))
	for _, p := range items {
		summaries = append(summaries, persona.Summary{
			ID:          p.ID,
			DisplayName: p.DisplayName,
			Era:         p.Era,
			Bio:         p.Bio,
		})
	}
	return summaries
}

// SelectPersona binds the user's session to a persona and returns the reset
// session. Correction history for the user is untouched.
func (o *Orchestrator) SelectPersona(ctx context.Context, userID, personaID string) (chat.Session, error) {
	unlock := o.lockUser(userID)
	defer unlock()
	return o.sessions.SelectPersona(ctx, userID, personaID)
}

// About returns the full persona detail for the user's current selection.
func (o *Orchestrator) About(ctx context.Context, userID string) (persona.Persona, error) {
	sess := o.sessions.GetOrCreate(ctx, userID)
	if sess.PersonaID == "" {
		return persona.Persona{}, ErrNoPersonaSelected
	}
	p, ok := o.personas.FindByID(sess.PersonaID)
	if !ok {
		return persona.Persona{}, fmt.Errorf("%w: %s", session.ErrPersonaNotFound, sess.PersonaID)
	}
	return p, nil
}

// Stats reports the user's correction counts, scoped to the currently
// selected persona when there is one.
func (o *Orchestrator) Stats(ctx context.Context, userID string) (Stats, error) {
	sess := o.sessions.GetOrCreate(ctx, userID)
	total, forPersona, err := o.corrections.Counts(ctx, userID, sess.PersonaID)
	if err != nil {
		return Stats{}, fmt.Errorf("load correction stats: %w", err)
	}
	return Stats{
		PersonaID:          sess.PersonaID,
		TotalCorrections:   total,
		PersonaCorrections: forPersona,
	}, nil
}

// SubmitTurn processes one inbound message. Turns from the same user are
// serialized for their full duration; turns from different users proceed
// concurrently.
func (o *Orchestrator) SubmitTurn(ctx context.Context, userID, text string) (Reply, error) {
	unlock := o.lockUser(userID)
	defer unlock()

	input := Classify(text)

	if input.Kind == KindAffirmation {
		return Reply{Kind: ReplyAcknowledged, Text: "Thank you for confirming! Glad the answer was helpful."}, nil
	}

	sess := o.sessions.GetOrCreate(ctx, userID)
	if sess.PersonaID == "" {
		return Reply{Kind: ReplyNeedsPersona, Text: "Please choose a writer to talk to first."}, nil
	}

	if input.Kind == KindCorrection {
		return o.handleCorrection(ctx, userID, sess.PersonaID, input)
	}
	return o.handleMessage(ctx, userID, sess.PersonaID, input.Text)
}

func (o *Orchestrator) handleCorrection(ctx context.Context, userID, personaID string, input Input) (Reply, error) {
	if input.Text == "" {
		return Reply{
			Kind: ReplyCorrectionMissing,
			Text: fmt.Sprintf("Please write the correct answer after %s.", CorrectionMarker),
		}, nil
	}

	prior := o.sessions.LastUserMessage(ctx, userID)
	record, err := o.corrections.Record(ctx, userID, personaID, prior, input.Text, input.Priority)
	if err != nil {
		if errors.Is(err, correction.ErrEmptyCorrection) {
			return Reply{
				Kind: ReplyCorrectionMissing,
				Text: fmt.Sprintf("Please write the correct answer after %s.", CorrectionMarker),
			}, nil
		}
		return Reply{}, fmt.Errorf("record correction: %w", err)
	}

	total, _, err := o.corrections.Counts(ctx, userID, personaID)
	if err != nil {
		// Counting is cosmetic; the record itself is already stored.
		log.Printf("[orchestrator] correction count failed for user=%s: %v", userID, err)
	}
	log.Printf("[orchestrator] correction recorded user=%s persona=%s priority=%s", userID, personaID, record.Priority)

	return Reply{
		Kind: ReplyCorrectionStored,
		Text: fmt.Sprintf("Thank you for the correction, I will remember it. Corrections so far: %d.", total),
	}, nil
}

func (o *Orchestrator) handleMessage(ctx context.Context, userID, personaID, text string) (Reply, error) {
	if o.completer == nil {
		return Reply{Kind: ReplyFailure, Text: "The language model is not configured."}, nil
	}

	p, ok := o.personas.FindByID(personaID)
	if !ok {
		return Reply{}, fmt.Errorf("%w: %s", session.ErrPersonaNotFound, personaID)
	}

	userCorrections, err := o.corrections.RecentForUser(ctx, userID, personaID, prompt.MaxUserCorrections)
	if err != nil {
		return Reply{}, fmt.Errorf("load user corrections: %w", err)
	}
	global, err := o.corrections.RecentGlobal(ctx, personaID, prompt.MaxGlobalCorrections)
	if err != nil {
		return Reply{}, fmt.Errorf("load global corrections: %w", err)
	}

	var facts []string
	if o.knowledge != nil {
		facts = o.knowledge.Facts(ctx, p.ID, p.DisplayName)
	}

	systemPrompt := prompt.Compose(p, userCorrections, global, facts)
	history := o.sessions.RecentContext(ctx, userID, o.cfg.ContextWindow)

	var replyText string
	err = retry.Do(ctx, retry.Config{
		Attempts:    o.cfg.RetryAttempts,
		Delay:       o.cfg.RetryDelay,
		ShouldRetry: llm.Retryable,
	}, func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, o.cfg.AttemptTimeout)
		defer cancel()
		out, completeErr := o.completer.Complete(attemptCtx, systemPrompt, history, text)
		if completeErr != nil {
			return completeErr
		}
		replyText = out
		return nil
	})
	if err != nil {
		log.Printf("[orchestrator] completion failed user=%s persona=%s: %v", userID, personaID, err)
		return Reply{Kind: ReplyFailure, Text: failureMessage(err)}, nil
	}

	if strings.Contains(replyText, prompt.SelfCorrectionPhrase) {
		// Informational only; the model already fixed itself in-reply.
		log.Printf("[orchestrator] model self-corrected for user=%s persona=%s", userID, personaID)
	}

	o.sessions.AppendTurn(ctx, userID, text, replyText)
	return Reply{Kind: ReplyAnswer, Text: replyText}, nil
}

// failureMessage maps the upstream error taxonomy onto user-facing text
// without leaking internal detail.
func failureMessage(err error) string {
	switch {
	case errors.Is(err, llm.ErrAuth):
		return "Authentication with the language model failed. Please check the configured credentials."
	case errors.Is(err, llm.ErrConfig):
		return "The language model rejected the request configuration. Please check the model settings."
	default:
		return "Something went wrong while generating a reply. Please try again later."
	}
}

// lockUser acquires the per-user turn lock, creating it on first use. The
// returned func releases it and must run on every exit path.
func (o *Orchestrator) lockUser(userID string) func() {
	o.mu.Lock()
	lock, ok := o.userLocks[userID]
	if !ok {
		lock = &sync.Mutex{}
		o.userLocks[userID] = lock
	}
	o.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
