package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/quotedesk/quotedesk-backend/pkg/db/models"
	"github.com/quotedesk/quotedesk-backend/pkg/enums"
	pkgerrors "github.com/quotedesk/quotedesk-backend/pkg/errors"
	"github.com/quotedesk/quotedesk-backend/pkg/mailer"
	"github.com/quotedesk/quotedesk-backend/pkg/outbox"
	"github.com/quotedesk/quotedesk-backend/pkg/shopify"
)

type fakeCommerce struct {
	createDraftOrder  func(ctx context.Context, params shopify.DraftOrderCreateParams) (*shopify.DraftOrder, error)
	getProduct        func(ctx context.Context, productID int64) (*shopify.Product, error)
	updateProductTags func(ctx context.Context, productID int64, tags string) error
}

func (f *fakeCommerce) CreateDraftOrder(ctx context.Context, params shopify.DraftOrderCreateParams) (*shopify.DraftOrder, error) {
	return f.createDraftOrder(ctx, params)
}

func (f *fakeCommerce) GetProduct(ctx context.Context, productID int64) (*shopify.Product, error) {
	return f.getProduct(ctx, productID)
}

func (f *fakeCommerce) UpdateProductTags(ctx context.Context, productID int64, tags string) error {
	return f.updateProductTags(ctx, productID, tags)
}

type fakeMail struct {
	send func(ctx context.Context, msg mailer.Message) error
}

func (f *fakeMail) Send(ctx context.Context, msg mailer.Message) error {
	return f.send(ctx, msg)
}

func taskWith(t *testing.T, kind enums.OutboxTaskKind, payload any) models.OutboxTask {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshaling payload: %v", err)
	}
	return models.OutboxTask{ID: uuid.New(), Kind: kind, QuoteID: uuid.New(), Payload: raw}
}

func TestExecuteDraftOrderOneLineItemPerVariant(t *testing.T) {
	var captured shopify.DraftOrderCreateParams
	commerce := &fakeCommerce{
		createDraftOrder: func(ctx context.Context, params shopify.DraftOrderCreateParams) (*shopify.DraftOrder, error) {
			captured = params
			return &shopify.DraftOrder{ID: 3001}, nil
		},
	}
	execs := NewExecutors(commerce, nil, nil)

	task := taskWith(t, enums.TaskDraftOrderCreate, outbox.DraftOrderPayload{
		CustomerID: 501,
		VariantIDs: []int64{11, 12, 13},
		Tags:       "pending",
	})
	if err := execs.executeDraftOrder(context.Background(), task); err != nil {
		t.Fatalf("executeDraftOrder: %v", err)
	}

	if captured.Customer.ID != 501 {
		t.Errorf("customer id = %d", captured.Customer.ID)
	}
	if captured.Tags != "pending" {
		t.Errorf("tags = %q", captured.Tags)
	}
	if !captured.UseCustomerDefaultAddress {
		t.Error("use_customer_default_address not set")
	}
	if len(captured.LineItems) != 3 {
		t.Fatalf("line items = %d, want one per variant", len(captured.LineItems))
	}
	for i, item := range captured.LineItems {
		if item.Quantity != 1 {
			t.Errorf("line item %d quantity = %d, want 1", i, item.Quantity)
		}
		if item.VariantID != []int64{11, 12, 13}[i] {
			t.Errorf("line item %d variant = %d", i, item.VariantID)
		}
	}
}

func TestExecuteDraftOrderBadPayloadIsNonRetryable(t *testing.T) {
	execs := NewExecutors(&fakeCommerce{}, nil, nil)
	task := models.OutboxTask{Kind: enums.TaskDraftOrderCreate, Payload: []byte(`{not json`)}

	err := execs.executeDraftOrder(context.Background(), task)
	var nre outbox.NonRetryableError
	if !errors.As(err, &nre) {
		t.Fatalf("err = %v, want NonRetryableError", err)
	}
}

func TestExecuteDraftOrderKeepsTransientErrorsRetryable(t *testing.T) {
	commerce := &fakeCommerce{
		createDraftOrder: func(ctx context.Context, params shopify.DraftOrderCreateParams) (*shopify.DraftOrder, error) {
			return nil, pkgerrors.New(pkgerrors.CodeDependency, "shopify 502")
		},
	}
	execs := NewExecutors(commerce, nil, nil)

	task := taskWith(t, enums.TaskDraftOrderCreate, outbox.DraftOrderPayload{CustomerID: 501, VariantIDs: []int64{11}})
	err := execs.executeDraftOrder(context.Background(), task)
	var nre outbox.NonRetryableError
	if errors.As(err, &nre) {
		t.Fatalf("transient dependency error marked non-retryable: %v", err)
	}
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestExecuteDraftOrderNotFoundIsNonRetryable(t *testing.T) {
	commerce := &fakeCommerce{
		createDraftOrder: func(ctx context.Context, params shopify.DraftOrderCreateParams) (*shopify.DraftOrder, error) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer gone")
		},
	}
	execs := NewExecutors(commerce, nil, nil)

	task := taskWith(t, enums.TaskDraftOrderCreate, outbox.DraftOrderPayload{CustomerID: 501, VariantIDs: []int64{11}})
	err := execs.executeDraftOrder(context.Background(), task)
	var nre outbox.NonRetryableError
	if !errors.As(err, &nre) {
		t.Fatalf("err = %v, want NonRetryableError", err)
	}
}

func TestExecuteEmailSendsComposedMessage(t *testing.T) {
	var sent mailer.Message
	mail := &fakeMail{send: func(ctx context.Context, msg mailer.Message) error {
		sent = msg
		return nil
	}}
	execs := NewExecutors(&fakeCommerce{}, mail, nil)

	task := taskWith(t, enums.TaskEmailLabelReady, outbox.EmailPayload{
		ToEmail:        "pat@example.com",
		ToName:         "Pat",
		LabelURL:       "https://deliver.goshippo.com/label.pdf",
		TrackingNumber: "1Z999",
	})
	if err := execs.executeEmail(context.Background(), task); err != nil {
		t.Fatalf("executeEmail: %v", err)
	}

	if sent.ToEmail != "pat@example.com" {
		t.Errorf("to = %q", sent.ToEmail)
	}
	if sent.Subject != subjectLabelReady {
		t.Errorf("subject = %q", sent.Subject)
	}
	if !strings.Contains(sent.HTMLBody, "label.pdf") || !strings.Contains(sent.HTMLBody, "1Z999") {
		t.Errorf("body missing label details: %s", sent.HTMLBody)
	}
}

func TestExecuteEmailWithoutMailerIsNoop(t *testing.T) {
	execs := NewExecutors(&fakeCommerce{}, nil, nil)
	task := taskWith(t, enums.TaskEmailQuoteConfirm, outbox.EmailPayload{ToEmail: "pat@example.com"})

	if err := execs.executeEmail(context.Background(), task); err != nil {
		t.Fatalf("executeEmail with nil mailer: %v", err)
	}
}

func TestExecuteEmailEscapesPayloadValues(t *testing.T) {
	var sent mailer.Message
	mail := &fakeMail{send: func(ctx context.Context, msg mailer.Message) error {
		sent = msg
		return nil
	}}
	execs := NewExecutors(&fakeCommerce{}, mail, nil)

	task := taskWith(t, enums.TaskEmailQuoteConfirm, outbox.EmailPayload{
		ToEmail: "pat@example.com",
		ToName:  `<script>alert("x")</script>`,
		Vendor:  "Herman Miller",
	})
	if err := execs.executeEmail(context.Background(), task); err != nil {
		t.Fatalf("executeEmail: %v", err)
	}
	if strings.Contains(sent.HTMLBody, "<script>") {
		t.Errorf("body not escaped: %s", sent.HTMLBody)
	}
}

func TestExecuteProductTagAppendsWithoutDuplicating(t *testing.T) {
	var written string
	commerce := &fakeCommerce{
		getProduct: func(ctx context.Context, productID int64) (*shopify.Product, error) {
			return &shopify.Product{ID: productID, Tags: "quote, hide-from-feed"}, nil
		},
		updateProductTags: func(ctx context.Context, productID int64, tags string) error {
			written = tags
			return nil
		},
	}
	execs := NewExecutors(commerce, nil, nil)

	task := taskWith(t, enums.TaskProductTagLabelStatus, outbox.ProductTagPayload{ProductID: 7001, Tag: "LabelRequested"})
	if err := execs.executeProductTag(context.Background(), task); err != nil {
		t.Fatalf("executeProductTag: %v", err)
	}
	if written != "quote, hide-from-feed, LabelRequested" {
		t.Errorf("tags = %q", written)
	}
}

func TestExecuteProductTagAlreadyPresentSkipsWrite(t *testing.T) {
	updated := false
	commerce := &fakeCommerce{
		getProduct: func(ctx context.Context, productID int64) (*shopify.Product, error) {
			return &shopify.Product{ID: productID, Tags: "quote, LabelRequested"}, nil
		},
		updateProductTags: func(ctx context.Context, productID int64, tags string) error {
			updated = true
			return nil
		},
	}
	execs := NewExecutors(commerce, nil, nil)

	task := taskWith(t, enums.TaskProductTagLabelStatus, outbox.ProductTagPayload{ProductID: 7001, Tag: "LabelRequested"})
	if err := execs.executeProductTag(context.Background(), task); err != nil {
		t.Fatalf("executeProductTag: %v", err)
	}
	if updated {
		t.Error("tag already present, write should be skipped")
	}
}

func TestComposeEmailUnknownKind(t *testing.T) {
	if _, err := composeEmail(enums.TaskDraftOrderCreate, outbox.EmailPayload{ToEmail: "pat@example.com"}); err == nil {
		t.Fatal("expected error for non-email kind")
	}
}
