package enums

import "fmt"

// OutboxTaskKind identifies which provider call a queued task performs.
type OutboxTaskKind string

const (
	TaskDraftOrderCreate      OutboxTaskKind = "draft_order.create"
	TaskEmailQuoteConfirm     OutboxTaskKind = "email.quote_confirmation"
	TaskEmailLabelReady       OutboxTaskKind = "email.label_ready"
	TaskEmailAddressProblem   OutboxTaskKind = "email.address_problem"
	TaskProductTagLabelStatus OutboxTaskKind = "product.tag_label_requested"
)

var validTaskKinds = []OutboxTaskKind{
	TaskDraftOrderCreate,
	TaskEmailQuoteConfirm,
	TaskEmailLabelReady,
	TaskEmailAddressProblem,
	TaskProductTagLabelStatus,
}

// IsValid reports whether the value matches a registered task kind.
func (k OutboxTaskKind) IsValid() bool {
	for _, candidate := range validTaskKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseOutboxTaskKind converts raw input into OutboxTaskKind.
func ParseOutboxTaskKind(raw string) (OutboxTaskKind, error) {
	kind := OutboxTaskKind(raw)
	if !kind.IsValid() {
		return "", fmt.Errorf("invalid outbox task kind %q", raw)
	}
	return kind, nil
}

// OutboxTaskStatus tracks a task through the worker.
type OutboxTaskStatus string

const (
	TaskStatusPending   OutboxTaskStatus = "pending"
	TaskStatusSucceeded OutboxTaskStatus = "succeeded"
	TaskStatusDead      OutboxTaskStatus = "dead"
)

// OutboxDLQReason explains why a task was dead-lettered.
type OutboxDLQReason string

const (
	DLQReasonMaxAttempts  OutboxDLQReason = "max_attempts"
	DLQReasonNonRetryable OutboxDLQReason = "non_retryable"
)
