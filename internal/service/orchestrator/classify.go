package orchestrator

import (
	"strings"

	"github.com/litsalon/backend/internal/model/chat"
)

// Markers users prefix messages with to steer the turn. They are matched
// only here; the rest of the pipeline works with the classified Input.
const (
	AffirmationMarker = "✅"
	CorrectionMarker  = "❌"
)

// InputKind tags what a raw inbound message turned out to be.
type InputKind int

const (
	// KindRegular is an ordinary chat message bound for the model.
	KindRegular InputKind = iota
	// KindAffirmation confirms the previous reply; acknowledged locally.
	KindAffirmation
	// KindCorrection carries a factual correction for the correction log.
	KindCorrection
)

// Input is a classified inbound message.
type Input struct {
	Kind InputKind
	// Text is the message body with any marker stripped.
	Text string
	// Priority applies to corrections only. A doubled correction marker
	// flags the correction as critical.
	Priority chat.Priority
}

// Classify resolves the marker-prefix dispatch into a tagged Input.
func Classify(text string) Input {
	trimmed := strings.TrimSpace(text)

	if strings.HasPrefix(trimmed, AffirmationMarker) {
		return Input{Kind: KindAffirmation}
	}

	if strings.HasPrefix(trimmed, CorrectionMarker) {
		rest := strings.TrimPrefix(trimmed, CorrectionMarker)
		priority := chat.PriorityNormal
		if strings.HasPrefix(strings.TrimSpace(rest), CorrectionMarker) {
			rest = strings.TrimPrefix(strings.TrimSpace(rest), CorrectionMarker)
			priority = chat.PriorityCritical
		}
		return Input{Kind: KindCorrection, Text: strings.TrimSpace(rest), Priority: priority}
	}

	return Input{Kind: KindRegular, Text: trimmed}
}
