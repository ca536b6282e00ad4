package controllers

import (
	"context"
	"net/http"

	"github.com/quotedesk/quotedesk-backend/api/responses"
	"github.com/quotedesk/quotedesk-backend/api/validators"
	"github.com/quotedesk/quotedesk-backend/internal/shipping"
	pkgerrors "github.com/quotedesk/quotedesk-backend/pkg/errors"
	"github.com/quotedesk/quotedesk-backend/pkg/logger"
)

type labelPurchaser interface {
	PurchaseLabel(ctx context.Context, params shipping.LabelParams) (*shipping.Result, error)
}

type labelRequest struct {
	CustomerName string `json:"customer_name" validate:"required"`
	Company      string `json:"company"`
	Street1      string `json:"street1" validate:"required"`
	Street2      string `json:"street2"`
	City         string `json:"city" validate:"required"`
	State        string `json:"state" validate:"required"`
	Zip          string `json:"zip" validate:"required"`
	Country      string `json:"country" validate:"required"`
	Phone        string `json:"phone"`
	Email        string `json:"email" validate:"omitempty,email"`

	ProductIDUpdate int64 `json:"product_id_update" validate:"required,gt=0"`
}

func (l labelRequest) toParams() shipping.LabelParams {
	return shipping.LabelParams{
		CustomerName: validators.SanitizeString(l.CustomerName, maxFieldLen),
		Company:      validators.SanitizeString(l.Company, maxFieldLen),
		Street1:      validators.SanitizeString(l.Street1, maxFieldLen),
		Street2:      validators.SanitizeString(l.Street2, maxFieldLen),
		City:         validators.SanitizeString(l.City, maxFieldLen),
		State:        validators.SanitizeString(l.State, maxFieldLen),
		Zip:          validators.SanitizeString(l.Zip, maxFieldLen),
		Country:      validators.SanitizeString(l.Country, maxFieldLen),
		Phone:        validators.SanitizeString(l.Phone, maxFieldLen),
		Email:        validators.SanitizeString(l.Email, maxFieldLen),
		ProductID:    l.ProductIDUpdate,
	}
}

// PurchaseShippingLabel buys a return label for an approved quote.
func PurchaseShippingLabel(svc labelPurchaser, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "shipping service unavailable"))
			return
		}

		var payload labelRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.PurchaseLabel(r.Context(), payload.toParams())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
