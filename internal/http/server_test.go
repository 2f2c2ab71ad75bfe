package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"finbot/internal/log"
)

type fakeDispatcher struct {
	calls []string
	reply string
}

func (d *fakeDispatcher) Handle(ctx context.Context, phone, text string) string {
	d.calls = append(d.calls, phone+"|"+text)
	return d.reply
}

type fakeEnqueuer struct {
	enqueued []string
	fail     bool
}

func (e *fakeEnqueuer) Enqueue(ctx context.Context, recipient, text string) (int64, error) {
	if e.fail {
		return 0, errors.New("outbox unavailable")
	}
	e.enqueued = append(e.enqueued, recipient+"|"+text)
	return int64(len(e.enqueued)), nil
}

func newTestServer(d *fakeDispatcher, e *fakeEnqueuer) *Server {
	return NewServer(":0", d, e, "secret-token", log.New(log.DefaultConfig()))
}

const upsertBody = `{
	"event": "messages.upsert",
	"data": {
		"key": {"remoteJid": "5511999990000@s.whatsapp.net", "fromMe": false, "id": "ABC"},
		"message": {"conversation": "gastei 45,90 em transporte"},
		"messageTimestamp": 1741521600
	}
}`

func TestWebhookVerification(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantBody   string
	}{
		{"correct token", "?token=secret-token", http.StatusOK, "Webhook verified"},
		{"wrong token", "?token=nope", http.StatusForbidden, "Forbidden"},
		{"missing token", "", http.StatusForbidden, "Forbidden"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(&fakeDispatcher{}, &fakeEnqueuer{})
			req := httptest.NewRequest(http.MethodGet, "/webhook"+tt.query, nil)
			rec := httptest.NewRecorder()

			s.Server.Handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := strings.TrimSpace(rec.Body.String()); got != tt.wantBody {
				t.Errorf("body = %q, want %q", got, tt.wantBody)
			}
		})
	}
}

func TestWebhookDispatchesUserMessage(t *testing.T) {
	d := &fakeDispatcher{reply: "Gasto registrado!"}
	e := &fakeEnqueuer{}
	s := newTestServer(d, e)

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(upsertBody))
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Body.String() != "OK" {
		t.Errorf("body = %q, want OK", rec.Body.String())
	}
	if len(d.calls) != 1 || d.calls[0] != "5511999990000|gastei 45,90 em transporte" {
		t.Errorf("dispatcher calls = %v", d.calls)
	}
	if len(e.enqueued) != 1 || e.enqueued[0] != "5511999990000|Gasto registrado!" {
		t.Errorf("enqueued = %v", e.enqueued)
	}
}

func TestWebhookIgnoresNonUserEvents(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"other event", `{"event": "connection.update", "data": null}`},
		{"own echo", `{"event": "messages.upsert", "data": {"key": {"remoteJid": "551199@s.whatsapp.net", "fromMe": true}, "message": {"conversation": "oi"}}}`},
		{"no text", `{"event": "messages.upsert", "data": {"key": {"remoteJid": "551199@s.whatsapp.net", "fromMe": false}, "message": {"conversation": ""}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &fakeDispatcher{reply: "x"}
			s := newTestServer(d, &fakeEnqueuer{})

			req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			s.Server.Handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusOK {
				t.Errorf("status = %d, want 200 (ignored events are still acknowledged)", rec.Code)
			}
			if len(d.calls) != 0 {
				t.Errorf("dispatcher must not be called, got %v", d.calls)
			}
		})
	}
}

func TestWebhookMalformedBody(t *testing.T) {
	s := newTestServer(&fakeDispatcher{}, &fakeEnqueuer{})

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestWebhookEnqueueFailure(t *testing.T) {
	s := newTestServer(&fakeDispatcher{reply: "oi"}, &fakeEnqueuer{fail: true})

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(upsertBody))
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestWebhookMethodNotAllowed(t *testing.T) {
	s := newTestServer(&fakeDispatcher{}, &fakeEnqueuer{})

	req := httptest.NewRequest(http.MethodDelete, "/webhook", nil)
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(&fakeDispatcher{}, &fakeEnqueuer{})

	for _, path := range []string{"/healthz", "/readyz"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		s.Server.Handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d, want 200", path, rec.Code)
		}
	}
}

func TestSecurityHeaders(t *testing.T) {
	s := newTestServer(&fakeDispatcher{}, &fakeEnqueuer{})

	req := httptest.NewRequest(http.MethodGet, "/webhook?token=secret-token", nil)
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q, want DENY", got)
	}
}
