package models

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/storeops/shiftdesk_backend/utils"
	"gorm.io/gorm"
)

// OutboxEvent is the transactional outbox: lifecycle events are written in
// the same transaction as the state change and published to Pub/Sub
// asynchronously by the dispatcher. Downstream consumers (payroll, POS sync)
// must tolerate at-least-once delivery.
type OutboxEvent struct {
	ID            int                 `gorm:"primary_key" json:"id"`
	StoreId       int                 `gorm:"index;not null" json:"store_id"`
	OccurredAt    time.Time           `gorm:"not null" json:"occurred_at"`
	ReferenceId   int                 `gorm:"not null" json:"reference_id"`
	ReferenceType EventReferenceType  `gorm:"size:32;not null" json:"reference_type"`
	Action        EventAction         `gorm:"size:64;not null" json:"action"`
	Payload       json.RawMessage     `gorm:"type:json" json:"payload"`
	PublishStatus OutboxPublishStatus `gorm:"size:16;not null;default:'PENDING';index" json:"publish_status"`
	PublishError  string              `gorm:"type:text" json:"publish_error"`
	PublishedAt   *time.Time          `json:"published_at"`
	CorrelationId string              `gorm:"size:64" json:"correlation_id"`
	CreatedAt     time.Time           `gorm:"autoCreateTime" json:"created_at"`
}

// PublishShiftEvent writes the event record inside the caller's transaction.
// It never talks to Pub/Sub itself.
func PublishShiftEvent(ctx context.Context, tx *gorm.DB, storeId int, occurredAt time.Time, refId int, refType EventReferenceType, action EventAction, obj interface{}) error {
	payload, err := json.Marshal(obj)
	if err != nil {
		return err
	}
	event := OutboxEvent{
		StoreId:       storeId,
		OccurredAt:    occurredAt,
		ReferenceId:   refId,
		ReferenceType: refType,
		Action:        action,
		Payload:       payload,
		PublishStatus: OutboxPublishStatusPending,
		CorrelationId: correlationIdFromContextOrNew(ctx),
	}
	return tx.WithContext(ctx).Create(&event).Error
}

func correlationIdFromContextOrNew(ctx context.Context) string {
	if ctx != nil {
		if v, ok := utils.GetCorrelationIdFromContext(ctx); ok && v != "" {
			return v
		}
	}
	return uuid.NewString()
}

// PendingOutboxEvents returns unpublished events in insertion order for the
// dispatcher. FAILED rows are retried alongside PENDING ones.
func PendingOutboxEvents(ctx context.Context, db *gorm.DB, limit int) ([]OutboxEvent, error) {
	var events []OutboxEvent
	err := db.WithContext(ctx).
		Where("publish_status IN ?", []OutboxPublishStatus{OutboxPublishStatusPending, OutboxPublishStatusFailed}).
		Order("id ASC").
		Limit(limit).
		Find(&events).Error
	return events, err
}

func MarkOutboxPublished(ctx context.Context, db *gorm.DB, eventId int) error {
	now := time.Now().UTC()
	return db.WithContext(ctx).Model(&OutboxEvent{}).
		Where("id = ?", eventId).
		Updates(map[string]interface{}{
			"publish_status": OutboxPublishStatusPublished,
			"published_at":   &now,
			"publish_error":  "",
		}).Error
}

func MarkOutboxFailed(ctx context.Context, db *gorm.DB, eventId int, publishErr error) error {
	msg := ""
	if publishErr != nil {
		msg = publishErr.Error()
	}
	return db.WithContext(ctx).Model(&OutboxEvent{}).
		Where("id = ?", eventId).
		Updates(map[string]interface{}{
			"publish_status": OutboxPublishStatusFailed,
			"publish_error":  msg,
		}).Error
}
