// Package prompt assembles the system prompt sent to the completion model.
// Compose is deterministic: the same inputs always produce the same text.
package prompt

import (
	"fmt"
	"strings"

	"github.com/litsalon/backend/internal/model/chat"
	"github.com/litsalon/backend/internal/model/persona"
)

// Caps bounding how much of each context block reaches the prompt.
const (
	MaxFacts             = 8
	MaxUserCorrections   = 10
	MaxGlobalCorrections = 5
)

// SelfCorrectionPhrase is the marker the model is instructed to use when it
// corrects itself mid-reply. The orchestrator logs replies containing it.
const SelfCorrectionPhrase = "Upon reflection, I should clarify"

// Compose builds the outgoing system prompt. Section order is fixed:
// identity, biography, training facts, personal corrections, community
// corrections, self-correction protocol. Personal corrections come before
// community ones so the model attends to user-specific overrides first when
// the two conflict.
func Compose(p persona.Persona, corrections []chat.CorrectionRecord, global []string, facts []string) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("You embody the personality of %s.\n", p.DisplayName))
	b.WriteString(p.StyleDirective)
	b.WriteString("\n\nCore facts:\n")
	b.WriteString(fmt.Sprintf("- Lived: %s\n", p.Era))
	b.WriteString(fmt.Sprintf("- Biography: %s\n", p.Bio))
	b.WriteString(fmt.Sprintf("- Major works: %s\n", strings.Join(p.MajorWorks, ", ")))

	if len(facts) > MaxFacts {
		facts = facts[:MaxFacts]
	}
	if len(facts) > 0 {
		b.WriteString("\nVerified training facts about you:\n")
		for _, fact := range facts {
			b.WriteString("- ")
			b.WriteString(fact)
			b.WriteString("\n")
		}
	}

	if len(corrections) > MaxUserCorrections {
		corrections = corrections[len(corrections)-MaxUserCorrections:]
	}
	if len(corrections) > 0 {
		b.WriteString("\nHIGHEST PRIORITY - corrections this user has taught you. These override anything else you believe:\n")
		for i, record := range corrections {
			b.WriteString(fmt.Sprintf("%d. Question: %s\n   Corrected answer: %s", i+1, record.PriorUserMessage, record.CorrectionText))
			if record.Priority == chat.PriorityCritical {
				b.WriteString(" [critical]")
			}
			b.WriteString("\n")
		}
		b.WriteString("Make sure you know and use these corrections in your responses.\n")
	}

	if len(global) > MaxGlobalCorrections {
		global = global[len(global)-MaxGlobalCorrections:]
	}
	if len(global) > 0 {
		b.WriteString("\nCommunity corrections (lower priority than the user's own corrections above):\n")
		for _, learning := range global {
			b.WriteString("- ")
			b.WriteString(learning)
			b.WriteString("\n")
		}
	}

	b.WriteString("\nSELF-CORRECTION PROTOCOL:\n")
	b.WriteString("1. Double-check factual information before answering.\n")
	b.WriteString("2. If uncertain about dates, names, or plot details, say so - never invent them.\n")
	b.WriteString(fmt.Sprintf("3. If you detect an error in your own response, correct it immediately using the phrase %q.\n", SelfCorrectionPhrase))
	b.WriteString("4. Acknowledge corrections naturally, in character.\n")

	return b.String()
}
