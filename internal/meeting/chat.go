package meeting

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const ChatTopic = "chat"

type ChatMessageKind string

const (
	ChatKindUser   ChatMessageKind = "user"
	ChatKindSystem ChatMessageKind = "system"
)

type ChatMessage struct {
	ID        string
	Kind      ChatMessageKind
	Sender    string
	Text      string
	Timestamp time.Time
	IsLocal   bool
}

// wireChatMessage is the only cross-process chat format: JSON over the
// transport's reliable data channel, topic "chat".
type wireChatMessage struct {
	Type   string  `json:"type"`
	Sender string  `json:"sender"`
	Text   string  `json:"text"`
	TS     float64 `json:"ts"`
}

// DataSender is the slice of the transport chat needs.
type DataSender interface {
	SendData(ctx context.Context, payload []byte, topic string) error
}

// ChatChannel keeps the local message log and codes messages on and off
// the wire. Decode problems degrade to plain text, never to an error.
type ChatChannel struct {
	sender DataSender

	mu        sync.Mutex
	localName string
	messages  []ChatMessage

	now func() time.Time
}

func NewChatChannel(sender DataSender) *ChatChannel {
	return &ChatChannel{sender: sender, now: time.Now}
}

// SetLocalSender names the local participant for outgoing messages.
func (c *ChatChannel) SetLocalSender(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.localName = name
}

// Send trims and transmits text. Whitespace-only input is a no-op.
// The local log is only appended once the transport accepted the payload.
func (c *ChatChannel) Send(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	c.mu.Lock()
	sender := c.localName
	c.mu.Unlock()

	sentAt := c.now()
	payload, err := json.Marshal(wireChatMessage{
		Type:   "chat",
		Sender: sender,
		Text:   text,
		TS:     float64(sentAt.UnixNano()) / float64(time.Second),
	})
	if err != nil {
		return err
	}
	if err := c.sender.SendData(ctx, payload, ChatTopic); err != nil {
		return err
	}

	c.append(ChatMessage{
		ID:        uuid.NewString(),
		Kind:      ChatKindUser,
		Sender:    sender,
		Text:      text,
		Timestamp: sentAt,
		IsLocal:   true,
	})
	return nil
}

// Receive handles an inbound data payload. Topics other than "chat" are
// ignored. Malformed payloads fall back to raw text attributed to the
// sending participant, timestamped at receipt.
func (c *ChatChannel) Receive(payload []byte, topic, senderName string) {
	if topic != ChatTopic {
		return
	}

	var wire wireChatMessage
	if err := json.Unmarshal(payload, &wire); err == nil && wire.Type == "chat" {
		c.append(ChatMessage{
			ID:        uuid.NewString(),
			Kind:      ChatKindUser,
			Sender:    wire.Sender,
			Text:      wire.Text,
			Timestamp: time.Unix(0, int64(wire.TS*float64(time.Second))),
		})
		return
	}

	text := "<binary data>"
	if utf8.Valid(payload) {
		text = string(payload)
	}
	c.append(ChatMessage{
		ID:        uuid.NewString(),
		Kind:      ChatKindUser,
		Sender:    senderName,
		Text:      text,
		Timestamp: c.now(),
	})
}

// AppendSystem logs a local-only notification (join/leave). System
// messages are never transmitted.
func (c *ChatChannel) AppendSystem(text string) {
	c.append(ChatMessage{
		ID:        uuid.NewString(),
		Kind:      ChatKindSystem,
		Sender:    "system",
		Text:      text,
		Timestamp: c.now(),
	})
}

func (c *ChatChannel) append(m ChatMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, m)
}

// Messages returns a copy of the log.
func (c *ChatChannel) Messages() []ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]ChatMessage, len(c.messages))
	copy(out, c.messages)
	return out
}

func (c *ChatChannel) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = nil
}
