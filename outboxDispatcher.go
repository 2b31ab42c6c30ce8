package main

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/storeops/shiftdesk_backend/config"
	"github.com/storeops/shiftdesk_backend/models"
	"gorm.io/gorm"
)

// OutboxDispatcher drains pending outbox events to Pub/Sub after commit.
// Delivery is at-least-once; consumers must dedupe on event id.
type OutboxDispatcher struct {
	DB        *gorm.DB
	Logger    *logrus.Logger
	BatchSize int
	Interval  time.Duration
}

func NewOutboxDispatcher(db *gorm.DB, logger *logrus.Logger) *OutboxDispatcher {
	return &OutboxDispatcher{
		DB:        db,
		Logger:    logger,
		BatchSize: 50,
		Interval:  2 * time.Second,
	}
}

func (d *OutboxDispatcher) Run(ctx context.Context) {
	if d == nil || d.DB == nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		d.dispatchOnce(ctx)
		select {
		case <-ctx.Done():
			return
		case <-time.After(d.Interval):
		}
	}
}

func (d *OutboxDispatcher) dispatchOnce(ctx context.Context) {
	events, err := models.PendingOutboxEvents(ctx, d.DB, d.BatchSize)
	if err != nil {
		config.LogError(d.Logger, "outboxDispatcher.go", "dispatchOnce", "PendingOutboxEvents", nil, err)
		return
	}

	for _, event := range events {
		msg := config.ShiftEventMessage{
			ID:            event.ID,
			StoreId:       event.StoreId,
			OccurredAt:    event.OccurredAt,
			ReferenceId:   event.ReferenceId,
			ReferenceType: string(event.ReferenceType),
			Action:        string(event.Action),
			Payload:       event.Payload,
			CorrelationId: event.CorrelationId,
		}

		if _, err := config.PublishShiftEventWithResult(ctx, msg); err != nil {
			config.LogError(d.Logger, "outboxDispatcher.go", "dispatchOnce", "Publish", event.ID, err)
			if merr := models.MarkOutboxFailed(ctx, d.DB, event.ID, err); merr != nil {
				config.LogError(d.Logger, "outboxDispatcher.go", "dispatchOnce", "MarkOutboxFailed", event.ID, merr)
			}
			continue
		}
		if err := models.MarkOutboxPublished(ctx, d.DB, event.ID); err != nil {
			// Publish succeeded but the mark failed; the event will be
			// re-published on the next sweep. At-least-once, so safe.
			config.LogError(d.Logger, "outboxDispatcher.go", "dispatchOnce", "MarkOutboxPublished", event.ID, err)
		}
	}
}
