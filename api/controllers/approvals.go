package controllers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/quotedesk/quotedesk-backend/api/responses"
	"github.com/quotedesk/quotedesk-backend/api/validators"
	"github.com/quotedesk/quotedesk-backend/internal/quotes"
	"github.com/quotedesk/quotedesk-backend/pkg/enums"
	pkgerrors "github.com/quotedesk/quotedesk-backend/pkg/errors"
	"github.com/quotedesk/quotedesk-backend/pkg/logger"
	"github.com/quotedesk/quotedesk-backend/pkg/types"
)

type quoteApprover interface {
	Approve(ctx context.Context, params quotes.ApprovalParams) error
}

type approvalRequest struct {
	CustomerID         int64    `json:"customer_id" validate:"required,gt=0"`
	ProductID          int64    `json:"product_id" validate:"required,gt=0"`
	OrderNumber        string   `json:"ordernumb" validate:"required"`
	UnwantedVariantIDs []string `json:"unwanted_variant_ids"`
	PaymentMethodTag   string   `json:"payment_method_tag" validate:"required,oneof=paypal bank-transfer bank-international"`
	Markdown           string   `json:"markdown"`

	PaypalEmail string `json:"pp_email" validate:"omitempty,email"`

	BankName          string `json:"bt_name"`
	BankInstitution   string `json:"bt_bank_name"`
	BankAccountNumber string `json:"bt_account_number"`
	BankRoutingNumber string `json:"bt_routing_number"`

	IntlName        string `json:"bi_name"`
	IntlInstitution string `json:"bi_bank_name"`
	IntlIBAN        string `json:"bi_iban"`
	IntlSWIFT       string `json:"bi_swift"`
	IntlCountry     string `json:"bi_country"`
}

func (a approvalRequest) toParams() (quotes.ApprovalParams, error) {
	variantIDs := make([]int64, 0, len(a.UnwantedVariantIDs))
	for _, raw := range a.UnwantedVariantIDs {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}
		id, err := strconv.ParseInt(trimmed, 10, 64)
		if err != nil {
			return quotes.ApprovalParams{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid unwanted variant id").
				WithDetails(map[string]string{"unwanted_variant_ids": raw + " is not a variant id"})
		}
		variantIDs = append(variantIDs, id)
	}

	return quotes.ApprovalParams{
		CustomerID:         a.CustomerID,
		ProductID:          a.ProductID,
		OrderNumber:        validators.SanitizeString(a.OrderNumber, maxFieldLen),
		UnwantedVariantIDs: variantIDs,
		PaymentMethod:      enums.PaymentMethodTag(a.PaymentMethodTag),
		Markdown:           validators.SanitizeString(a.Markdown, maxFieldLen),
		Payout: types.PayoutDetails{
			PaypalEmail:       validators.SanitizeString(a.PaypalEmail, maxFieldLen),
			BankName:          validators.SanitizeString(a.BankName, maxFieldLen),
			BankInstitution:   validators.SanitizeString(a.BankInstitution, maxFieldLen),
			BankAccountNumber: validators.SanitizeString(a.BankAccountNumber, maxFieldLen),
			BankRoutingNumber: validators.SanitizeString(a.BankRoutingNumber, maxFieldLen),
			IntlName:          validators.SanitizeString(a.IntlName, maxFieldLen),
			IntlInstitution:   validators.SanitizeString(a.IntlInstitution, maxFieldLen),
			IntlIBAN:          validators.SanitizeString(a.IntlIBAN, maxFieldLen),
			IntlSWIFT:         validators.SanitizeString(a.IntlSWIFT, maxFieldLen),
			IntlCountry:       validators.SanitizeString(a.IntlCountry, maxFieldLen),
		},
	}, nil
}

// ApproveQuote prunes the declined offer variants and records the order on
// the Shopify customer.
func ApproveQuote(svc quoteApprover, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "approval service unavailable"))
			return
		}

		var payload approvalRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := payload.toParams()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Approve(r.Context(), params); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "approved"})
	}
}
