package service

import (
	"context"
	"fmt"

	"github.com/iyhunko/inventory-console/internal/metrics"
	"github.com/iyhunko/inventory-console/internal/model"
	"github.com/iyhunko/inventory-console/internal/repository"
	reposql "github.com/iyhunko/inventory-console/internal/repository/sql"
	"github.com/iyhunko/inventory-console/internal/sqs"
)

// EventTypePrefix prefixes the journal event type of a mutation outcome.
const EventTypePrefix = "mutation."

// JournalSink writes mutation outcomes to the journal outbox.
type JournalSink struct {
	repo repository.Repository
}

// NewJournalSink creates a sink backed by repo.
func NewJournalSink(repo repository.Repository) *JournalSink {
	return &JournalSink{repo: repo}
}

// Record stores msg as a pending journal event.
func (s *JournalSink) Record(ctx context.Context, msg sqs.MutationMessage) error {
	event, err := reposql.CreateEvent(EventTypePrefix+msg.Action, msg)
	if err != nil {
		return err
	}
	if _, err := s.repo.Create(ctx, event); err != nil {
		return fmt.Errorf("failed to journal %s outcome: %w", msg.Action, err)
	}
	metrics.JournalEventsTotal.WithLabelValues(string(model.EventStatusPending)).Inc()
	return nil
}

// PublishSink sends mutation outcomes straight to the queue when no journal is configured.
type PublishSink struct {
	publisher MessagePublisher
}

// NewPublishSink creates a sink backed by publisher.
func NewPublishSink(publisher MessagePublisher) *PublishSink {
	return &PublishSink{publisher: publisher}
}

// Record publishes msg.
func (s *PublishSink) Record(ctx context.Context, msg sqs.MutationMessage) error {
	return s.publisher.PublishMutationMessage(ctx, msg)
}
