package whatsapp

import "testing"

const sampleEvent = `{
  "event": "messages.upsert",
  "data": {
    "key": {
      "remoteJid": "5511999990000@s.whatsapp.net",
      "fromMe": false,
      "id": "ABC123"
    },
    "message": {
      "conversation": "Gastei R$50 em almoço"
    },
    "messageTimestamp": 1741512345
  }
}`

func TestParseWebhookEvent(t *testing.T) {
	ev, err := ParseWebhookEvent([]byte(sampleEvent))
	if err != nil {
		t.Fatalf("ParseWebhookEvent: %v", err)
	}
	if ev.Event != EventMessagesUpsert {
		t.Errorf("event = %q, want messages.upsert", ev.Event)
	}
	if !ev.IsUserMessage() {
		t.Error("sample event should count as a user message")
	}
	if got := ev.Data.PhoneNumber(); got != "5511999990000" {
		t.Errorf("PhoneNumber = %q, want 5511999990000", got)
	}
	if got := ev.Data.Text(); got != "Gastei R$50 em almoço" {
		t.Errorf("Text = %q", got)
	}
}

func TestParseWebhookEventRejectsGarbage(t *testing.T) {
	if _, err := ParseWebhookEvent([]byte("not json")); err == nil {
		t.Error("invalid JSON should fail")
	}
	if _, err := ParseWebhookEvent([]byte(`{"data": {}}`)); err == nil {
		t.Error("missing event field should fail")
	}
}

func TestIsUserMessageFilters(t *testing.T) {
	tests := []struct {
		name string
		body string
		want bool
	}{
		{
			name: "from the bot itself",
			body: `{"event":"messages.upsert","data":{"key":{"remoteJid":"x@s.whatsapp.net","fromMe":true},"message":{"conversation":"eco"}}}`,
			want: false,
		},
		{
			name: "no text content",
			body: `{"event":"messages.upsert","data":{"key":{"remoteJid":"x@s.whatsapp.net","fromMe":false},"message":{}}}`,
			want: false,
		},
		{
			name: "other event type",
			body: `{"event":"connection.update","data":{"key":{"remoteJid":"x"},"message":{"conversation":"oi"}}}`,
			want: false,
		},
		{
			name: "event without data",
			body: `{"event":"messages.upsert"}`,
			want: false,
		},
		{
			name: "real user message",
			body: `{"event":"messages.upsert","data":{"key":{"remoteJid":"551199@s.whatsapp.net","fromMe":false},"message":{"conversation":"saldo"}}}`,
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := ParseWebhookEvent([]byte(tt.body))
			if err != nil {
				t.Fatalf("ParseWebhookEvent: %v", err)
			}
			if got := ev.IsUserMessage(); got != tt.want {
				t.Errorf("IsUserMessage = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPhoneNumberWithoutSuffix(t *testing.T) {
	d := &MessageData{}
	d.Key.RemoteJid = "5511999990000"
	if got := d.PhoneNumber(); got != "5511999990000" {
		t.Errorf("PhoneNumber = %q", got)
	}
}
