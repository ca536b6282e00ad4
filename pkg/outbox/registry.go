package outbox

import (
	"context"
	"fmt"
	"sync"

	"github.com/quotedesk/quotedesk-backend/pkg/db/models"
	"github.com/quotedesk/quotedesk-backend/pkg/enums"
)

// ExecutorFunc performs the provider call a task describes. Returning a
// NonRetryableError dead-letters the task immediately.
type ExecutorFunc func(ctx context.Context, task models.OutboxTask) error

// ExecutorRegistry maps task kinds to their executors.
type ExecutorRegistry struct {
	mtx      sync.RWMutex
	registry map[enums.OutboxTaskKind]ExecutorFunc
}

func NewExecutorRegistry() *ExecutorRegistry {
	return &ExecutorRegistry{registry: make(map[enums.OutboxTaskKind]ExecutorFunc)}
}

func (r *ExecutorRegistry) Register(kind enums.OutboxTaskKind, executor ExecutorFunc) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	r.registry[kind] = executor
}

func (r *ExecutorRegistry) Resolve(kind enums.OutboxTaskKind) (ExecutorFunc, error) {
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	if executor, ok := r.registry[kind]; ok {
		return executor, nil
	}
	return nil, fmt.Errorf("executor not registered for %s", kind)
}

// NonRetryableError marks a task failure that retrying cannot fix.
type NonRetryableError struct {
	cause error
}

func NewNonRetryableError(cause error) NonRetryableError {
	return NonRetryableError{cause: cause}
}

func (e NonRetryableError) Error() string {
	if e.cause == nil {
		return "non-retryable task failure"
	}
	return e.cause.Error()
}

func (e NonRetryableError) Unwrap() error {
	return e.cause
}
