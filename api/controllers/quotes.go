package controllers

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/quotedesk/quotedesk-backend/api/responses"
	"github.com/quotedesk/quotedesk-backend/api/validators"
	"github.com/quotedesk/quotedesk-backend/internal/quotes"
	"github.com/quotedesk/quotedesk-backend/pkg/config"
	"github.com/quotedesk/quotedesk-backend/pkg/db/models"
	pkgerrors "github.com/quotedesk/quotedesk-backend/pkg/errors"
	"github.com/quotedesk/quotedesk-backend/pkg/logger"
)

const (
	photoFieldName     = "photos"
	multipartMemoryCap = 32 << 20
	maxFieldLen        = 8192
)

type quoteSubmitter interface {
	Submit(ctx context.Context, params quotes.SubmissionParams) (*models.Quote, error)
}

type quoteRequest struct {
	CustomerID    int64  `json:"customer_id" validate:"required,gt=0"`
	Vendor        string `json:"vendor" validate:"required"`
	ProductType   string `json:"product_type"`
	Type          string `json:"type"`
	BodyHTML      string `json:"body_html"`
	Condition     string `json:"condition"`
	Dimensions    string `json:"dimensions"`
	YearPurchased string `json:"year_purchased"`
	OriginalPrice string `json:"original_price"`
	CustomerEmail string `json:"customer_email" validate:"omitempty,email"`
	CustomerFN    string `json:"customer_fn"`
}

func (q quoteRequest) toParams() quotes.SubmissionParams {
	productType := q.ProductType
	if productType == "" {
		productType = q.Type
	}
	return quotes.SubmissionParams{
		CustomerID:    q.CustomerID,
		Vendor:        validators.SanitizeString(q.Vendor, maxFieldLen),
		ProductType:   validators.SanitizeString(productType, maxFieldLen),
		BodyHTML:      validators.SanitizeString(q.BodyHTML, maxFieldLen),
		Condition:     validators.SanitizeString(q.Condition, maxFieldLen),
		Dimensions:    validators.SanitizeString(q.Dimensions, maxFieldLen),
		YearPurchased: validators.SanitizeString(q.YearPurchased, maxFieldLen),
		OriginalPrice: validators.SanitizeString(q.OriginalPrice, maxFieldLen),
		CustomerEmail: validators.SanitizeString(q.CustomerEmail, maxFieldLen),
		CustomerName:  validators.SanitizeString(q.CustomerFN, maxFieldLen),
	}
}

// SubmitQuote accepts the storefront quote form as JSON or multipart with
// photo attachments.
func SubmitQuote(svc quoteSubmitter, uploads config.UploadConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "quote service unavailable"))
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, uploads.MaxBytes)

		params, err := decodeQuoteRequest(r, uploads)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if _, err := svc.Submit(r.Context(), params); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, "New Quote Created")
	}
}

func decodeQuoteRequest(r *http.Request, uploads config.UploadConfig) (quotes.SubmissionParams, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if strings.HasPrefix(mediaType, "multipart/") {
		return decodeMultipartQuote(r, uploads)
	}

	var payload quoteRequest
	if err := validators.DecodeJSONBody(r, &payload); err != nil {
		return quotes.SubmissionParams{}, err
	}
	return payload.toParams(), nil
}

func decodeMultipartQuote(r *http.Request, uploads config.UploadConfig) (quotes.SubmissionParams, error) {
	if err := r.ParseMultipartForm(multipartMemoryCap); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return quotes.SubmissionParams{}, pkgerrors.New(pkgerrors.CodeValidation, "upload exceeds the size limit")
		}
		return quotes.SubmissionParams{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form")
	}

	payload := quoteRequest{
		Vendor:        r.FormValue("vendor"),
		ProductType:   r.FormValue("product_type"),
		Type:          r.FormValue("type"),
		BodyHTML:      r.FormValue("body_html"),
		Condition:     r.FormValue("condition"),
		Dimensions:    r.FormValue("dimensions"),
		YearPurchased: r.FormValue("year_purchased"),
		OriginalPrice: r.FormValue("original_price"),
		CustomerEmail: r.FormValue("customer_email"),
		CustomerFN:    r.FormValue("customer_fn"),
	}
	if raw := strings.TrimSpace(r.FormValue("customer_id")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return quotes.SubmissionParams{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid customer_id")
		}
		payload.CustomerID = id
	}
	if err := validators.ValidateStruct(&payload); err != nil {
		return quotes.SubmissionParams{}, err
	}

	params := payload.toParams()

	files := r.MultipartForm.File[photoFieldName]
	if uploads.MaxPhotos > 0 && len(files) > uploads.MaxPhotos {
		return quotes.SubmissionParams{}, pkgerrors.New(pkgerrors.CodeValidation,
			"too many photos").WithDetails(map[string]any{"max_photos": uploads.MaxPhotos})
	}
	for _, header := range files {
		file, err := header.Open()
		if err != nil {
			return quotes.SubmissionParams{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "reading photo")
		}
		content, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			return quotes.SubmissionParams{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "reading photo")
		}
		params.Photos = append(params.Photos, quotes.Photo{
			Filename: header.Filename,
			Content:  content,
		})
	}

	return params, nil
}
