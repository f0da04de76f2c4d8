package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/iyhunko/inventory-console/internal/metrics"
	"github.com/iyhunko/inventory-console/internal/model"
	"github.com/iyhunko/inventory-console/internal/repository"
	"github.com/iyhunko/inventory-console/internal/sqs"
)

// outboxBatchSize caps the events drained per tick.
const outboxBatchSize = 100

// MessagePublisher sends mutation outcome messages to the queue.
type MessagePublisher interface {
	PublishMutationMessage(ctx context.Context, msg sqs.MutationMessage) error
}

// OutboxWorker polls the journal and publishes pending events.
type OutboxWorker struct {
	events    repository.EventRepository
	publisher MessagePublisher
	interval  time.Duration
	stopChan  chan struct{}
}

// NewOutboxWorker creates a new OutboxWorker.
func NewOutboxWorker(events repository.EventRepository, publisher MessagePublisher, interval time.Duration) *OutboxWorker {
	return &OutboxWorker{
		events:    events,
		publisher: publisher,
		interval:  interval,
		stopChan:  make(chan struct{}),
	}
}

// Start drains the outbox every interval until ctx ends or Stop is called.
func (w *OutboxWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	slog.Info("Outbox worker started", slog.Duration("interval", w.interval))

	for {
		select {
		case <-ctx.Done():
			slog.Info("Outbox worker stopped by context")
			return
		case <-w.stopChan:
			slog.Info("Outbox worker stopped")
			return
		case <-ticker.C:
			w.ProcessEvents(ctx)
		}
	}
}

// Stop stops the outbox worker.
func (w *OutboxWorker) Stop() {
	close(w.stopChan)
}

// ProcessEvents publishes one batch of pending events and returns how many were published.
func (w *OutboxWorker) ProcessEvents(ctx context.Context) int {
	query := repository.NewQuery().With(repository.StatusField, string(model.EventStatusPending))
	query.Limit = outboxBatchSize
	resources, err := w.events.List(ctx, *query)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to retrieve pending events", slog.Any("err", err))
		return 0
	}

	if len(resources) == 0 {
		return 0
	}

	slog.DebugContext(ctx, "Processing pending events", slog.Int("count", len(resources)))

	published := 0
	for _, resource := range resources {
		event, ok := resource.(*model.Event)
		if !ok {
			slog.ErrorContext(ctx, "Invalid event type in outbox")
			continue
		}

		status := model.EventStatusProcessed
		if err := w.publish(ctx, event); err != nil {
			slog.ErrorContext(ctx, "Failed to publish event",
				slog.String("event_id", event.ID.String()),
				slog.String("event_type", event.EventType),
				slog.Any("err", err))
			status = model.EventStatusFailed
		} else {
			published++
		}
		metrics.JournalEventsTotal.WithLabelValues(string(status)).Inc()

		if err := w.events.UpdateStatus(ctx, event.ID, status); err != nil {
			slog.ErrorContext(ctx, "Failed to update event status",
				slog.String("event_id", event.ID.String()),
				slog.String("status", string(status)),
				slog.Any("err", err))
		}
	}
	return published
}

func (w *OutboxWorker) publish(ctx context.Context, event *model.Event) error {
	var msg sqs.MutationMessage
	if err := json.Unmarshal(event.EventData, &msg); err != nil {
		return fmt.Errorf("failed to decode event data: %w", err)
	}
	return w.publisher.PublishMutationMessage(ctx, msg)
}
