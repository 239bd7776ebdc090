// Package matrix runs the chat service as a Matrix bot. Each Matrix sender
// is its own user; rooms carry the conversation.
package matrix

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"maunium.net/go/mautrix"
	"maunium.net/go/mautrix/event"
	"maunium.net/go/mautrix/id"

	"github.com/litsalon/backend/internal/config"
)

// Reconnect schedule for the sync loop.
const (
	backoffMin = 2 * time.Second
	backoffMax = 5 * time.Minute
)

// nextBackoff doubles the reconnect wait, capped at backoffMax.
func nextBackoff(current time.Duration) time.Duration {
	next := current * 2
	if next > backoffMax {
		next = backoffMax
	}
	return next
}

// MessageHandler processes one inbound room message.
type MessageHandler func(ctx context.Context, evt *event.Event)

// Client wraps the homeserver connection and the sync loop.
type Client struct {
	client     *mautrix.Client
	cfg        config.MatrixConfig
	stopCh     chan struct{}
	msgHandler MessageHandler
}

// NewClient connects to the homeserver described by cfg.
func NewClient(cfg config.MatrixConfig) (*Client, error) {
	client, err := mautrix.NewClient(cfg.Homeserver, id.UserID(cfg.UserID), cfg.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("create matrix client: %w", err)
	}

	return &Client{
		client: client,
		cfg:    cfg,
		stopCh: make(chan struct{}),
	}, nil
}

// Start joins the configured rooms and begins syncing in the background.
// The sync loop reconnects with exponential backoff so a transient
// homeserver error does not leave the bot deaf.
func (c *Client) Start(handler MessageHandler) error {
	c.msgHandler = handler

	syncer := c.client.Syncer.(*mautrix.DefaultSyncer)
	syncer.OnEventType(event.EventMessage, c.handleMessage)

	for _, roomID := range c.cfg.Rooms {
		if err := c.joinRoom(id.RoomID(roomID)); err != nil {
			return fmt.Errorf("join room %s: %w", roomID, err)
		}
	}

	go func() {
		backoff := backoffMin
		for {
			if err := c.client.Sync(); err != nil {
				select {
				case <-c.stopCh:
					return
				default:
				}
				log.Printf("[matrix] sync stopped, reconnecting in %s: %v", backoff, err)
				select {
				case <-c.stopCh:
					return
				case <-time.After(backoff):
				}
				backoff = nextBackoff(backoff)
				continue
			}
			return
		}
	}()

	return nil
}

// Stop halts the sync loop.
func (c *Client) Stop() {
	close(c.stopCh)
	c.client.StopSync()
}

// SendText sends a plain text message to a room.
func (c *Client) SendText(ctx context.Context, roomID id.RoomID, message string) error {
	if _, err := c.client.SendText(ctx, roomID, message); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// SetTyping toggles the typing indicator in a room.
func (c *Client) SetTyping(ctx context.Context, roomID id.RoomID, typing bool, timeout time.Duration) {
	if _, err := c.client.UserTyping(ctx, roomID, typing, timeout); err != nil {
		log.Printf("[matrix] typing indicator failed for room=%s: %v", roomID, err)
	}
}

func (c *Client) allowedRoom(roomID string) bool {
	if len(c.cfg.Rooms) == 0 {
		return true
	}
	for _, room := range c.cfg.Rooms {
		if room == roomID {
			return true
		}
	}
	return false
}

func (c *Client) handleMessage(ctx context.Context, evt *event.Event) {
	if evt.Sender == id.UserID(c.cfg.UserID) {
		return
	}

	msgContent := evt.Content.AsMessage()
	if msgContent == nil || msgContent.MsgType != event.MsgText {
		return
	}

	if !c.allowedRoom(evt.RoomID.String()) {
		return
	}

	if c.msgHandler != nil {
		c.msgHandler(ctx, evt)
	}
}

func (c *Client) joinRoom(roomID id.RoomID) error {
	if _, err := c.client.JoinRoomByID(context.Background(), roomID); err != nil {
		// MForbidden usually means the bot is already a member.
		if errors.Is(err, mautrix.MForbidden) {
			log.Printf("[matrix] join room %s: already a member or access denied, continuing", roomID)
			return nil
		}
		return err
	}
	return nil
}
