package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/quotedesk/quotedesk-backend/pkg/db/models"
	"github.com/quotedesk/quotedesk-backend/pkg/enums"
	"github.com/quotedesk/quotedesk-backend/pkg/logger"
)

// Task describes a provider call to queue.
type Task struct {
	Kind    enums.OutboxTaskKind
	QuoteID uuid.UUID
	Data    any
}

type Service struct {
	repo *Repository
	logg *logger.Logger
}

func NewService(repo *Repository, logg *logger.Logger) *Service {
	return &Service{repo: repo, logg: logg}
}

// Enqueue serializes the task payload and inserts it in the caller's
// transaction.
func (s *Service) Enqueue(ctx context.Context, tx *gorm.DB, task Task) error {
	if tx == nil {
		return errors.New("transaction required")
	}
	if !task.Kind.IsValid() {
		return fmt.Errorf("unknown task kind %q", task.Kind)
	}
	if task.QuoteID == uuid.Nil {
		return errors.New("quote id required")
	}

	payload, err := json.Marshal(task.Data)
	if err != nil {
		return fmt.Errorf("encoding task payload: %w", err)
	}

	row := models.OutboxTask{
		Kind:    task.Kind,
		QuoteID: task.QuoteID,
		Payload: json.RawMessage(payload),
		Status:  enums.TaskStatusPending,
	}
	if err := s.repo.InsertTx(tx, row); err != nil {
		return err
	}

	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"task_kind": task.Kind,
			"quote_id":  task.QuoteID.String(),
		})
		s.logg.Info(logCtx, "outbox task queued")
	}
	return nil
}
