package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/quotedesk/quotedesk-backend/internal/quotes"
	"github.com/quotedesk/quotedesk-backend/pkg/db/models"
	"github.com/quotedesk/quotedesk-backend/pkg/enums"
	pkgerrors "github.com/quotedesk/quotedesk-backend/pkg/errors"
	"github.com/quotedesk/quotedesk-backend/pkg/logger"
	"github.com/quotedesk/quotedesk-backend/pkg/mailer"
	"github.com/quotedesk/quotedesk-backend/pkg/outbox"
	"github.com/quotedesk/quotedesk-backend/pkg/shopify"
)

type commerceAPI interface {
	CreateDraftOrder(ctx context.Context, params shopify.DraftOrderCreateParams) (*shopify.DraftOrder, error)
	GetProduct(ctx context.Context, productID int64) (*shopify.Product, error)
	UpdateProductTags(ctx context.Context, productID int64, tags string) error
}

type mailSender interface {
	Send(ctx context.Context, msg mailer.Message) error
}

// Executors owns the provider calls the outbox worker dispatches. A nil
// mail sender (SendGrid not configured) turns email tasks into logged
// no-ops.
type Executors struct {
	commerce commerceAPI
	mail     mailSender
	logg     *logger.Logger
}

func NewExecutors(commerce commerceAPI, mail mailSender, logg *logger.Logger) *Executors {
	return &Executors{commerce: commerce, mail: mail, logg: logg}
}

// Register wires every task kind into the registry.
func (e *Executors) Register(registry *outbox.ExecutorRegistry) {
	registry.Register(enums.TaskDraftOrderCreate, e.executeDraftOrder)
	registry.Register(enums.TaskEmailQuoteConfirm, e.executeEmail)
	registry.Register(enums.TaskEmailLabelReady, e.executeEmail)
	registry.Register(enums.TaskEmailAddressProblem, e.executeEmail)
	registry.Register(enums.TaskProductTagLabelStatus, e.executeProductTag)
}

func (e *Executors) executeDraftOrder(ctx context.Context, task models.OutboxTask) error {
	var payload outbox.DraftOrderPayload
	if err := json.Unmarshal(task.Payload, &payload); err != nil {
		return outbox.NewNonRetryableError(fmt.Errorf("decoding draft order payload: %w", err))
	}
	if payload.CustomerID <= 0 || len(payload.VariantIDs) == 0 {
		return outbox.NewNonRetryableError(fmt.Errorf("draft order payload missing customer or variants"))
	}

	lineItems := make([]shopify.LineItemParam, 0, len(payload.VariantIDs))
	for _, variantID := range payload.VariantIDs {
		lineItems = append(lineItems, shopify.LineItemParam{VariantID: variantID, Quantity: 1})
	}

	params := shopify.DraftOrderCreateParams{
		CustomerID:                payload.CustomerID,
		Customer:                  shopify.CustomerRef{ID: payload.CustomerID},
		LineItems:                 lineItems,
		Tags:                      payload.Tags,
		UseCustomerDefaultAddress: true,
	}

	draftOrder, err := e.commerce.CreateDraftOrder(ctx, params)
	if err != nil {
		return markNonRetryable(err)
	}

	if e.logg != nil {
		logCtx := e.logg.WithQuoteID(ctx, task.QuoteID.String())
		logCtx = e.logg.WithField(logCtx, "draft_order_id", draftOrder.ID)
		e.logg.Info(logCtx, "draft order created")
	}
	return nil
}

func (e *Executors) executeEmail(ctx context.Context, task models.OutboxTask) error {
	var payload outbox.EmailPayload
	if err := json.Unmarshal(task.Payload, &payload); err != nil {
		return outbox.NewNonRetryableError(fmt.Errorf("decoding email payload: %w", err))
	}
	if payload.ToEmail == "" {
		return outbox.NewNonRetryableError(fmt.Errorf("email task without recipient"))
	}

	if e.mail == nil {
		if e.logg != nil {
			logCtx := e.logg.WithQuoteID(ctx, task.QuoteID.String())
			logCtx = e.logg.WithField(logCtx, "task_kind", task.Kind)
			e.logg.Warn(logCtx, "mailer disabled, dropping email task")
		}
		return nil
	}

	msg, err := composeEmail(task.Kind, payload)
	if err != nil {
		return outbox.NewNonRetryableError(err)
	}
	return markNonRetryable(e.mail.Send(ctx, msg))
}

func (e *Executors) executeProductTag(ctx context.Context, task models.OutboxTask) error {
	var payload outbox.ProductTagPayload
	if err := json.Unmarshal(task.Payload, &payload); err != nil {
		return outbox.NewNonRetryableError(fmt.Errorf("decoding product tag payload: %w", err))
	}
	if payload.ProductID <= 0 || payload.Tag == "" {
		return outbox.NewNonRetryableError(fmt.Errorf("product tag payload missing product or tag"))
	}

	product, err := e.commerce.GetProduct(ctx, payload.ProductID)
	if err != nil {
		return markNonRetryable(err)
	}

	merged := quotes.MergeTags(product.Tags, payload.Tag)
	if merged == product.Tags {
		return nil
	}
	return markNonRetryable(e.commerce.UpdateProductTags(ctx, payload.ProductID, merged))
}

// markNonRetryable converts provider errors whose code cannot heal on
// retry into dead-letter failures. Transient dependency and internal
// errors pass through untouched so the worker backs off and retries.
func markNonRetryable(err error) error {
	if err == nil {
		return nil
	}
	typed := pkgerrors.As(err)
	if typed == nil {
		return err
	}
	switch typed.Code() {
	case pkgerrors.CodeValidation, pkgerrors.CodeNotFound, pkgerrors.CodeUnauthorized:
		return outbox.NewNonRetryableError(err)
	default:
		return err
	}
}
