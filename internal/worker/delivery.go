// Package worker delivers outbox messages to the WhatsApp gateway. It is
// driven two ways: by AMQP delivery messages and by a periodic sweep over
// rows whose publication was lost.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"finbot/internal/amqp"
	"finbot/internal/storage"
)

// OutboxStore is the slice of the repository the worker needs.
type OutboxStore interface {
	GetOutbound(ctx context.Context, id int64) (storage.OutboundMessage, error)
	GetPendingOutbound(ctx context.Context, limit int) ([]storage.OutboundMessage, error)
	MarkOutboundSent(ctx context.Context, id int64) error
	MarkOutboundError(ctx context.Context, id int64) error
}

// Gateway sends a text message to a phone number. Implemented by
// whatsapp.Client.
type Gateway interface {
	SendText(ctx context.Context, number, text string) error
}

type DeliveryWorker struct {
	store     OutboxStore
	gateway   Gateway
	batchSize int
}

func NewDeliveryWorker(store OutboxStore, gateway Gateway, batchSize int) *DeliveryWorker {
	if batchSize <= 0 {
		batchSize = 50
	}
	return &DeliveryWorker{
		store:     store,
		gateway:   gateway,
		batchSize: batchSize,
	}
}

// HandleDeliveryMessage delivers the outbox row named by an AMQP message.
// A store read failure is returned so the message is requeued; a gateway
// failure marks the row and acks, delivery is fire-and-forget per message.
func (w *DeliveryWorker) HandleDeliveryMessage(ctx context.Context, msg *amqp.DeliveryMessage) error {
	row, err := w.store.GetOutbound(ctx, msg.ID)
	if err != nil {
		return fmt.Errorf("load outbound message %d: %w", msg.ID, err)
	}
	return w.deliver(ctx, row)
}

// ProcessPending sweeps rows still pending, covering publications lost to
// broker outages. Individual failures do not stop the sweep.
func (w *DeliveryWorker) ProcessPending(ctx context.Context) error {
	rows, err := w.store.GetPendingOutbound(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("load pending outbound messages: %w", err)
	}
	if len(rows) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending outbound messages", "count", len(rows))

	for _, row := range rows {
		if err := w.deliver(ctx, row); err != nil {
			slog.ErrorContext(ctx, "Failed to process pending message",
				"id", row.ID, "error", err)
		}
	}
	return nil
}

// StartupCheck runs one sweep so messages accumulated while the worker was
// down go out immediately.
func (w *DeliveryWorker) StartupCheck(ctx context.Context) error {
	slog.InfoContext(ctx, "Running startup delivery check")
	return w.ProcessPending(ctx)
}

func (w *DeliveryWorker) deliver(ctx context.Context, row storage.OutboundMessage) error {
	if row.Status != storage.OutboundPending {
		slog.InfoContext(ctx, "Skipping outbound message, not pending",
			"id", row.ID, "status", row.Status)
		return nil
	}

	if err := w.gateway.SendText(ctx, row.Recipient, row.Body); err != nil {
		slog.ErrorContext(ctx, "Gateway send failed",
			"id", row.ID, "recipient", row.Recipient, "error", err)
		if markErr := w.store.MarkOutboundError(ctx, row.ID); markErr != nil {
			return fmt.Errorf("mark outbound error: %w", markErr)
		}
		return nil
	}

	if err := w.store.MarkOutboundSent(ctx, row.ID); err != nil {
		return fmt.Errorf("mark outbound sent: %w", err)
	}

	slog.InfoContext(ctx, "Outbound message delivered",
		"id", row.ID, "recipient", row.Recipient)
	return nil
}
