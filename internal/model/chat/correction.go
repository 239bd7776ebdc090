package chat

import "time"

// Priority marks how strongly a correction should weigh in future prompts.
type Priority string

const (
	PriorityNormal   Priority = "normal"
	PriorityCritical Priority = "critical"
)

// UnknownQuestion is recorded when a correction arrives before any user
// message exists to attribute it to.
const UnknownQuestion = "unknown"

// CorrectionRecord is a user-submitted factual correction for a persona.
// Records are append-only: never mutated or deleted after creation.
type CorrectionRecord struct {
	ID               string    `json:"id"`
	UserID           string    `json:"userId"`
	PersonaID        string    `json:"personaId"`
	PriorUserMessage string    `json:"priorUserMessage"`
	CorrectionText   string    `json:"correctionText"`
	Priority         Priority  `json:"priority"`
	CreatedAt        time.Time `json:"createdAt"`
}
