// Package messenger hands replies off for delivery: persist to the outbox,
// then nudge the worker over AMQP. From the dispatcher's point of view the
// send is fire-and-forget.
package messenger

import (
	"context"
	"fmt"
	"log/slog"
)

// Outbox persists messages awaiting delivery. Implemented by
// storage.Repository.
type Outbox interface {
	InsertOutbound(ctx context.Context, recipient, body string) (int64, error)
}

// Publisher notifies the delivery worker. Implemented by amqp.Client.
type Publisher interface {
	PublishDelivery(ctx context.Context, id int64) error
}

type Service struct {
	outbox    Outbox
	publisher Publisher
}

func NewService(outbox Outbox, publisher Publisher) *Service {
	return &Service{outbox: outbox, publisher: publisher}
}

// Enqueue persists the reply and publishes the delivery message. A publish
// failure is logged but not returned: the worker's periodic sweep picks the
// row up from the outbox.
func (s *Service) Enqueue(ctx context.Context, recipient, text string) (int64, error) {
	id, err := s.outbox.InsertOutbound(ctx, recipient, text)
	if err != nil {
		return 0, fmt.Errorf("enqueue outbound message: %w", err)
	}

	if s.publisher == nil {
		slog.WarnContext(ctx, "No publisher available, message waits for the pending sweep", "id", id)
		return id, nil
	}

	if err := s.publisher.PublishDelivery(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish delivery message",
			"id", id, "error", err)
		// The row is persisted; the sweep will deliver it.
	}

	return id, nil
}
