package matrix

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"maunium.net/go/mautrix/event"
	"maunium.net/go/mautrix/id"

	"github.com/litsalon/backend/internal/chunk"
	"github.com/litsalon/backend/internal/service/orchestrator"
)

// Bot dispatches Matrix room messages through the turn core. The Matrix
// sender ID is the user identity, so correction memory follows the person
// across rooms.
type Bot struct {
	client     *Client
	core       *orchestrator.Orchestrator
	chunkLimit int
}

// NewBot wires the bot.
func NewBot(client *Client, core *orchestrator.Orchestrator, chunkLimit int) *Bot {
	if chunkLimit <= 0 {
		chunkLimit = 4000
	}
	return &Bot{client: client, core: core, chunkLimit: chunkLimit}
}

// Run starts the sync loop and blocks until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	if err := b.client.Start(b.onMessage); err != nil {
		return err
	}
	log.Printf("[matrix] bot running")

	<-ctx.Done()
	b.client.Stop()
	return nil
}

func (b *Bot) onMessage(ctx context.Context, evt *event.Event) {
	body := strings.TrimSpace(evt.Content.AsMessage().Body)
	if body == "" {
		return
	}

	userID := evt.Sender.String()
	roomID := evt.RoomID

	if strings.HasPrefix(body, "/") {
		b.handleCommand(ctx, roomID, userID, body)
		return
	}

	b.client.SetTyping(ctx, roomID, true, 30*time.Second)
	defer b.client.SetTyping(ctx, roomID, false, 0)

	reply, err := b.core.SubmitTurn(ctx, userID, body)
	if err != nil {
		log.Printf("[matrix] turn failed for user=%s: %v", userID, err)
		b.reply(ctx, roomID, "Something went wrong. Please try again.")
		return
	}

	b.reply(ctx, roomID, reply.Text)
}

func (b *Bot) handleCommand(ctx context.Context, roomID id.RoomID, userID, body string) {
	fields := strings.Fields(body)
	command := strings.ToLower(fields[0])

	switch command {
	case "/start", "/help":
		b.reply(ctx, roomID, b.helpText())
	case "/writers":
		b.reply(ctx, roomID, b.writersText())
	case "/select":
		if len(fields) < 2 {
			b.reply(ctx, roomID, "Usage: /select <writer id>. Try /writers for the list.")
			return
		}
		sess, err := b.core.SelectPersona(ctx, userID, fields[1])
		if err != nil {
			b.reply(ctx, roomID, fmt.Sprintf("I do not know the writer %q. Try /writers for the list.", fields[1]))
			return
		}
		b.reply(ctx, roomID, sess.Transcript[len(sess.Transcript)-1].Content)
	case "/stats":
		stats, err := b.core.Stats(ctx, userID)
		if err != nil {
			log.Printf("[matrix] stats failed for user=%s: %v", userID, err)
			b.reply(ctx, roomID, "Could not load your stats right now.")
			return
		}
		b.reply(ctx, roomID, fmt.Sprintf(
			"Corrections you have taught: %d total, %d for the current writer.",
			stats.TotalCorrections, stats.PersonaCorrections))
	case "/about":
		p, err := b.core.About(ctx, userID)
		if err != nil {
			b.reply(ctx, roomID, "Please choose a writer first with /select.")
			return
		}
		b.reply(ctx, roomID, fmt.Sprintf("%s (%s)\n%s\nMajor works: %s",
			p.DisplayName, p.Era, p.Bio, strings.Join(p.MajorWorks, ", ")))
	default:
		b.reply(ctx, roomID, "Unknown command. Try /help.")
	}
}

func (b *Bot) helpText() string {
	return strings.Join([]string{
		"I host conversations with classic writers.",
		"",
		"/writers - list available writers",
		"/select <id> - start talking to a writer",
		"/about - about the current writer",
		"/stats - your correction stats",
		"",
		"Prefix a message with " + orchestrator.CorrectionMarker + " to correct my last answer,",
		"or with " + orchestrator.AffirmationMarker + " to confirm it was right.",
	}, "\n")
}

func (b *Bot) writersText() string {
	var sb strings.Builder
	sb.WriteString("Available writers:\n")
	for _, p := range b.core.ListPersonas() {
		fmt.Fprintf(&sb, "  %s - %s (%s)\n", p.ID, p.DisplayName, p.Era)
	}
	sb.WriteString("Choose one with /select <id>.")
	return sb.String()
}

// reply sends the text in chunks so long answers survive message limits.
func (b *Bot) reply(ctx context.Context, roomID id.RoomID, text string) {
	for _, part := range chunk.Split(text, b.chunkLimit) {
		if err := b.client.SendText(ctx, roomID, part); err != nil {
			log.Printf("[matrix] send failed for room=%s: %v", roomID, err)
			return
		}
	}
}
