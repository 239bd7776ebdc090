package chat

// Roles recorded in a session transcript.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Entry is one transcript line: a user message or an assistant reply.
type Entry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Session holds a user's persona selection and bounded conversation
// transcript. Sessions live for the process lifetime only.
type Session struct {
	UserID     string  `json:"userId"`
	PersonaID  string  `json:"personaId,omitempty"`
	Transcript []Entry `json:"transcript"`
}
