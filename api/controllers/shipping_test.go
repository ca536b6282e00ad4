package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/quotedesk/quotedesk-backend/internal/shipping"
	pkgerrors "github.com/quotedesk/quotedesk-backend/pkg/errors"
	"github.com/quotedesk/quotedesk-backend/pkg/types"
)

type fakePurchaser struct {
	purchase func(ctx context.Context, params shipping.LabelParams) (*shipping.Result, error)
}

func (f *fakePurchaser) PurchaseLabel(ctx context.Context, params shipping.LabelParams) (*shipping.Result, error) {
	return f.purchase(ctx, params)
}

const labelBody = `{
	"customer_name": "Pat Seller",
	"street1": "12 Elm St",
	"city": "Austin",
	"state": "TX",
	"zip": "78701",
	"country": "US",
	"email": "pat@example.com",
	"product_id_update": 7001
}`

func TestPurchaseShippingLabel(t *testing.T) {
	var captured shipping.LabelParams
	svc := &fakePurchaser{purchase: func(ctx context.Context, params shipping.LabelParams) (*shipping.Result, error) {
		captured = params
		return &shipping.Result{
			Purchased:      true,
			Message:        "shipping label purchased",
			LabelURL:       "https://deliver.goshippo.com/label.pdf",
			TrackingNumber: "1Z999",
			Carrier:        "UPS",
		}, nil
	}}

	req := httptest.NewRequest(http.MethodPost, "/shipping-label", strings.NewReader(labelBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	PurchaseShippingLabel(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if captured.ProductID != 7001 || captured.Street1 != "12 Elm St" {
		t.Errorf("params = %+v", captured)
	}

	var envelope types.SuccessEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	data, ok := envelope.Data.(map[string]any)
	if !ok || data["purchased"] != true || data["tracking_number"] != "1Z999" {
		t.Errorf("data = %+v", envelope.Data)
	}
}

func TestPurchaseShippingLabelValidation(t *testing.T) {
	svc := &fakePurchaser{purchase: func(ctx context.Context, params shipping.LabelParams) (*shipping.Result, error) {
		t.Fatal("service must not be called")
		return nil, nil
	}}

	req := httptest.NewRequest(http.MethodPost, "/shipping-label", strings.NewReader(`{"street1":"12 Elm St"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	PurchaseShippingLabel(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestPurchaseShippingLabelStateConflict(t *testing.T) {
	svc := &fakePurchaser{purchase: func(ctx context.Context, params shipping.LabelParams) (*shipping.Result, error) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "quote is submitted, label purchase needs approved")
	}}

	req := httptest.NewRequest(http.MethodPost, "/shipping-label", strings.NewReader(labelBody))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	PurchaseShippingLabel(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
}
