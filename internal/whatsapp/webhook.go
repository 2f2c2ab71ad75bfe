// Package whatsapp holds the Evolution API collaborator: the typed webhook
// payload schema validated at the boundary, and the outbound sendText
// client. Nothing in here knows about intents or the ledger.
package whatsapp

import (
	"encoding/json"
	"fmt"
	"strings"
)

// EventMessagesUpsert is the only webhook event the bot reacts to.
const EventMessagesUpsert = "messages.upsert"

// WebhookEvent is the envelope Evolution API posts to the webhook.
type WebhookEvent struct {
	Event string       `json:"event"`
	Data  *MessageData `json:"data"`
}

// MessageData describes one inbound (or echoed) WhatsApp message.
type MessageData struct {
	Key struct {
		RemoteJid string `json:"remoteJid"`
		FromMe    bool   `json:"fromMe"`
		ID        string `json:"id"`
	} `json:"key"`
	Message struct {
		Conversation string `json:"conversation"`
	} `json:"message"`
	MessageTimestamp int64 `json:"messageTimestamp"`
}

// ParseWebhookEvent decodes and validates a webhook body.
func ParseWebhookEvent(body []byte) (*WebhookEvent, error) {
	var ev WebhookEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return nil, fmt.Errorf("decode webhook event: %w", err)
	}
	if ev.Event == "" {
		return nil, fmt.Errorf("webhook event missing event field")
	}
	return &ev, nil
}

// IsUserMessage reports whether the event carries a text message written by
// the user. Bot echoes (fromMe) and non-text events are skipped upstream
// with a 200, never an error.
func (ev *WebhookEvent) IsUserMessage() bool {
	return ev.Event == EventMessagesUpsert &&
		ev.Data != nil &&
		!ev.Data.Key.FromMe &&
		strings.TrimSpace(ev.Data.Message.Conversation) != ""
}

// PhoneNumber extracts the sender's phone from the remoteJid
// ("5511999990000@s.whatsapp.net" -> "5511999990000").
func (d *MessageData) PhoneNumber() string {
	jid := d.Key.RemoteJid
	if i := strings.IndexByte(jid, '@'); i >= 0 {
		return jid[:i]
	}
	return jid
}

// Text returns the raw conversation text.
func (d *MessageData) Text() string {
	return d.Message.Conversation
}
