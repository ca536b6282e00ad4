package outbox

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/quotedesk/quotedesk-backend/pkg/db/models"
	"github.com/quotedesk/quotedesk-backend/pkg/enums"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// InsertTx queues a task inside the caller's transaction so the task and
// the quote state change commit or roll back together.
func (r *Repository) InsertTx(tx *gorm.DB, task models.OutboxTask) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	return tx.Create(&task).Error
}

// FetchDueTx returns pending tasks whose next attempt time has passed.
func (r *Repository) FetchDueTx(tx *gorm.DB, limit int, now time.Time) ([]models.OutboxTask, error) {
	if tx == nil {
		return nil, errors.New("transaction required")
	}
	var rows []models.OutboxTask
	err := tx.Where("status = ? AND next_attempt_at <= ?", enums.TaskStatusPending, now).
		Order("created_at ASC").
		Order("id ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// MarkSucceededTx finalizes a completed task.
func (r *Repository) MarkSucceededTx(tx *gorm.DB, id uuid.UUID, now time.Time) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	return tx.Model(&models.OutboxTask{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":       enums.TaskStatusSucceeded,
			"completed_at": now,
		}).Error
}

// MarkRetryTx records a failed attempt and schedules the next one.
func (r *Repository) MarkRetryTx(tx *gorm.DB, id uuid.UUID, attemptErr error, nextAttemptAt time.Time) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	return tx.Model(&models.OutboxTask{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"last_error":      attemptErr.Error(),
			"attempt_count":   gorm.Expr("attempt_count + 1"),
			"next_attempt_at": nextAttemptAt,
		}).Error
}

// MarkDeadTx parks a task that will never be retried.
func (r *Repository) MarkDeadTx(tx *gorm.DB, id uuid.UUID, attemptErr error) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	updates := map[string]any{
		"status":        enums.TaskStatusDead,
		"attempt_count": gorm.Expr("attempt_count + 1"),
	}
	if attemptErr != nil {
		updates["last_error"] = attemptErr.Error()
	}
	return tx.Model(&models.OutboxTask{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// CountPendingForQuote reports undelivered side effects for a quote.
func (r *Repository) CountPendingForQuote(quoteID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&models.OutboxTask{}).
		Where("quote_id = ? AND status = ?", quoteID, enums.TaskStatusPending).
		Count(&count).Error
	return count, err
}
