package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/quotedesk/quotedesk-backend/pkg/enums"
)

// OutboxTask is a durable provider call queued in the same transaction as
// the quote state change it belongs to. The worker drains pending rows.
type OutboxTask struct {
	ID      uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	Kind    enums.OutboxTaskKind `gorm:"column:kind;not null;index"`
	QuoteID uuid.UUID            `gorm:"column:quote_id;type:uuid;not null;index"`
	Payload json.RawMessage      `gorm:"column:payload;type:jsonb;not null"`

	Status        enums.OutboxTaskStatus `gorm:"column:status;not null;default:pending;index"`
	AttemptCount  int                    `gorm:"column:attempt_count;not null;default:0"`
	NextAttemptAt time.Time              `gorm:"column:next_attempt_at;not null;index"`
	LastError     *string                `gorm:"column:last_error"`

	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	CompletedAt *time.Time `gorm:"column:completed_at"`
}

func (OutboxTask) TableName() string { return "outbox_tasks" }

func (t *OutboxTask) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.NextAttemptAt.IsZero() {
		t.NextAttemptAt = time.Now().UTC()
	}
	return nil
}

// OutboxDLQ keeps a copy of tasks the worker gave up on.
type OutboxDLQ struct {
	ID      uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	TaskID  uuid.UUID            `gorm:"column:task_id;type:uuid;not null;uniqueIndex"`
	Kind    enums.OutboxTaskKind `gorm:"column:kind;not null"`
	QuoteID uuid.UUID            `gorm:"column:quote_id;type:uuid;not null"`
	Payload json.RawMessage      `gorm:"column:payload;type:jsonb;not null"`

	ErrorReason  enums.OutboxDLQReason `gorm:"column:error_reason;not null"`
	ErrorMessage *string               `gorm:"column:error_message"`
	AttemptCount int                   `gorm:"column:attempt_count;not null"`
	FailedAt     time.Time             `gorm:"column:failed_at;not null"`
}

func (OutboxDLQ) TableName() string { return "outbox_dlq" }

func (d *OutboxDLQ) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
