// Package llm abstracts the external completion collaborator. The
// orchestrator only sees Complete plus a coarse error taxonomy; which
// provider answers is a configuration concern.
package llm

import (
	"context"
	"errors"

	"github.com/litsalon/backend/internal/model/chat"
)

// Upstream error kinds. Auth and config failures are not retryable and are
// surfaced distinctly; everything else is treated as transient.
var (
	ErrAuth   = errors.New("upstream authentication failed")
	ErrConfig = errors.New("upstream rejected request configuration")
)

// Completer is the completion collaborator contract: one system prompt, the
// recent conversational context, and the new user message in, one assistant
// reply out.
type Completer interface {
	Complete(ctx context.Context, systemPrompt string, history []chat.Entry, userMessage string) (string, error)
}

// Retryable reports whether an upstream error is worth another attempt.
func Retryable(err error) bool {
	return !errors.Is(err, ErrAuth) && !errors.Is(err, ErrConfig)
}
