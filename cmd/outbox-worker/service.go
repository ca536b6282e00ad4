package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/quotedesk/quotedesk-backend/pkg/config"
	"github.com/quotedesk/quotedesk-backend/pkg/db/models"
	"github.com/quotedesk/quotedesk-backend/pkg/enums"
	"github.com/quotedesk/quotedesk-backend/pkg/logger"
	"github.com/quotedesk/quotedesk-backend/pkg/metrics"
	"github.com/quotedesk/quotedesk-backend/pkg/outbox"
)

const (
	defaultBatchSize      = 50
	defaultPollMs         = 500
	defaultExecuteTimeout = 30 * time.Second
	defaultMaxAttempts    = 10
	retryBaseDelay        = time.Second
	maxRetryDelay         = 5 * time.Minute
	maxBackoff            = 10 * time.Second
	jitterWindow          = 250 * time.Millisecond
)

var jitterSource = rand.New(rand.NewSource(time.Now().UnixNano()))

type dbClient interface {
	Ping(context.Context) error
	WithTx(context.Context, func(tx *gorm.DB) error) error
}

type taskRepository interface {
	FetchDueTx(tx *gorm.DB, limit int, now time.Time) ([]models.OutboxTask, error)
	MarkSucceededTx(tx *gorm.DB, id uuid.UUID, now time.Time) error
	MarkRetryTx(tx *gorm.DB, id uuid.UUID, attemptErr error, nextAttemptAt time.Time) error
	MarkDeadTx(tx *gorm.DB, id uuid.UUID, attemptErr error) error
}

type dlqRepository interface {
	InsertTx(tx *gorm.DB, entry models.OutboxDLQ) error
}

type executorResolver interface {
	Resolve(kind enums.OutboxTaskKind) (outbox.ExecutorFunc, error)
}

type ServiceParams struct {
	Config        *config.Config
	Logger        *logger.Logger
	DB            dbClient
	Repository    taskRepository
	DLQRepository dlqRepository
	Registry      executorResolver
	Metrics       *metrics.OutboxMetrics
}

type Service struct {
	cfg          *config.Config
	logg         *logger.Logger
	db           dbClient
	repo         taskRepository
	dlq          dlqRepository
	registry     executorResolver
	metrics      *metrics.OutboxMetrics
	batchSize    int
	maxAttempts  int
	pollInterval time.Duration
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Config == nil {
		return nil, errors.New("config is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if params.DB == nil {
		return nil, errors.New("database client is required")
	}
	if params.Repository == nil {
		return nil, errors.New("task repository is required")
	}
	if params.DLQRepository == nil {
		return nil, errors.New("dlq repository is required")
	}
	if params.Registry == nil {
		return nil, errors.New("executor registry is required")
	}

	batch := params.Config.Outbox.BatchSize
	if batch <= 0 {
		batch = defaultBatchSize
	}
	pollMs := params.Config.Outbox.PollIntervalMS
	if pollMs <= 0 {
		pollMs = defaultPollMs
	}
	maxAttempts := params.Config.Outbox.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}

	return &Service{
		cfg:          params.Config,
		logg:         params.Logger,
		db:           params.DB,
		repo:         params.Repository,
		dlq:          params.DLQRepository,
		registry:     params.Registry,
		metrics:      params.Metrics,
		batchSize:    batch,
		maxAttempts:  maxAttempts,
		pollInterval: time.Duration(pollMs) * time.Millisecond,
	}, nil
}

func (s *Service) ensureReadiness(ctx context.Context) error {
	if err := s.db.Ping(ctx); err != nil {
		s.logg.Error(ctx, "database ping failed", err)
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

func (s *Service) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if err := s.ensureReadiness(ctx); err != nil {
		return err
	}

	interval := s.pollInterval
	if interval <= 0 {
		interval = time.Duration(defaultPollMs) * time.Millisecond
	}
	backoff := interval

	for {
		select {
		case <-ctx.Done():
			s.logg.Info(ctx, "outbox worker context canceled")
			return ctx.Err()
		default:
		}

		processed, err := s.processBatch(ctx)
		if err != nil {
			s.logg.Error(ctx, "outbox worker batch error", err)
			backoff = nextBackoff(backoff, interval, maxBackoff)
			if err := s.sleep(ctx, withJitter(backoff)); err != nil {
				return err
			}
			continue
		}

		backoff = interval

		if processed {
			continue
		}

		if err := s.sleep(ctx, withJitter(interval)); err != nil {
			return err
		}
	}
}

func (s *Service) processBatch(ctx context.Context) (bool, error) {
	processed := false
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		tasks, err := s.repo.FetchDueTx(tx, s.batchSize, time.Now().UTC())
		if err != nil {
			return err
		}
		if len(tasks) == 0 {
			return nil
		}

		processed = true
		for _, task := range tasks {
			fields := s.taskFields(task)

			executor, err := s.registry.Resolve(task.Kind)
			if err != nil {
				if markErr := s.handleTerminal(ctx, tx, task, enums.DLQReasonNonRetryable, err, fields); markErr != nil {
					return markErr
				}
				continue
			}

			if err := s.executeTask(ctx, task, executor); err != nil {
				var nonRetry outbox.NonRetryableError
				if errors.As(err, &nonRetry) {
					if markErr := s.handleTerminal(ctx, tx, task, enums.DLQReasonNonRetryable, err, fields); markErr != nil {
						return markErr
					}
					continue
				}

				nextAttempt := task.AttemptCount + 1
				fields["attempt_count"] = nextAttempt

				if nextAttempt >= s.maxAttempts {
					fields["terminal_reason"] = "max_attempts"
					terminalErr := fmt.Errorf("max delivery attempts reached: %w", err)
					if markErr := s.handleTerminal(ctx, tx, task, enums.DLQReasonMaxAttempts, terminalErr, fields); markErr != nil {
						return markErr
					}
					continue
				}

				ctxWithFields := s.logg.WithFields(ctx, fields)
				ctxWithFields = s.logg.WithField(ctxWithFields, "error", err.Error())
				s.logg.Warn(ctxWithFields, "outbox task failed")
				s.metrics.IncFailure(string(task.Kind))
				nextAttemptAt := time.Now().UTC().Add(retryDelay(nextAttempt))
				if markErr := s.repo.MarkRetryTx(tx, task.ID, err, nextAttemptAt); markErr != nil {
					return fmt.Errorf("mark retry %s: %w", task.ID, markErr)
				}
				continue
			}

			if markErr := s.repo.MarkSucceededTx(tx, task.ID, time.Now().UTC()); markErr != nil {
				return fmt.Errorf("mark succeeded %s: %w", task.ID, markErr)
			}
			s.metrics.IncSuccess(string(task.Kind))
			s.logg.Info(s.logg.WithFields(ctx, fields), "outbox task delivered")
		}
		return nil
	})
	return processed, err
}

func (s *Service) executeTask(ctx context.Context, task models.OutboxTask, executor outbox.ExecutorFunc) error {
	execCtx, cancel := context.WithTimeout(ctx, defaultExecuteTimeout)
	defer cancel()
	start := time.Now()
	err := executor(execCtx, task)
	s.metrics.ObserveDuration(string(task.Kind), time.Since(start))
	return err
}

func (s *Service) handleTerminal(ctx context.Context, tx *gorm.DB, task models.OutboxTask, reason enums.OutboxDLQReason, err error, fields map[string]any) error {
	fields["error_reason"] = reason
	ctxWithFields := s.logg.WithFields(ctx, fields)
	ctxWithFields = s.logg.WithField(ctxWithFields, "error", err.Error())
	s.logg.Warn(ctxWithFields, "outbox task will not be retried")

	dlqEntry := models.OutboxDLQ{
		TaskID:       task.ID,
		Kind:         task.Kind,
		QuoteID:      task.QuoteID,
		Payload:      task.Payload,
		ErrorReason:  reason,
		ErrorMessage: dlqErrorMessage(err),
		AttemptCount: task.AttemptCount,
		FailedAt:     time.Now().UTC(),
	}
	if dlqErr := s.dlq.InsertTx(tx, dlqEntry); dlqErr != nil {
		return fmt.Errorf("insert dlq %s: %w", task.ID, dlqErr)
	}
	if markErr := s.repo.MarkDeadTx(tx, task.ID, err); markErr != nil {
		return fmt.Errorf("mark dead %s: %w", task.ID, markErr)
	}
	s.metrics.IncDead(string(task.Kind))
	return nil
}

func (s *Service) taskFields(task models.OutboxTask) map[string]any {
	fields := map[string]any{
		"task_id":       task.ID.String(),
		"kind":          string(task.Kind),
		"quote_id":      task.QuoteID.String(),
		"batch_size":    s.batchSize,
		"attempt_count": task.AttemptCount,
	}
	if task.LastError != nil {
		fields["last_error"] = *task.LastError
	}
	return fields
}

func dlqErrorMessage(err error) *string {
	if err == nil {
		return nil
	}
	msg := err.Error()
	return &msg
}

func (s *Service) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// retryDelay doubles per attempt up to maxRetryDelay.
func retryDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := retryBaseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= maxRetryDelay {
			return maxRetryDelay
		}
	}
	return withJitter(delay)
}

func nextBackoff(current, base, max time.Duration) time.Duration {
	if current <= 0 {
		current = base
	}
	next := current * 2
	if next > max {
		return max
	}
	return next
}

func withJitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	jitter := time.Duration(jitterSource.Int63n(int64(jitterWindow)))
	return d + jitter
}
