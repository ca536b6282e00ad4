package quotes

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/quotedesk/quotedesk-backend/pkg/db/models"
	"github.com/quotedesk/quotedesk-backend/pkg/enums"
	pkgerrors "github.com/quotedesk/quotedesk-backend/pkg/errors"
	"github.com/quotedesk/quotedesk-backend/pkg/logger"
	"github.com/quotedesk/quotedesk-backend/pkg/outbox"
	"github.com/quotedesk/quotedesk-backend/pkg/shopify"
	"github.com/quotedesk/quotedesk-backend/pkg/types"
)

const (
	productTagDefaults = "quote, hide-from-feed"
	draftOrderTag      = "pending"
)

// commerceAPI is the slice of the Shopify client this service calls.
type commerceAPI interface {
	CreateProduct(ctx context.Context, params shopify.ProductCreateParams) (*shopify.Product, error)
	GetProduct(ctx context.Context, productID int64) (*shopify.Product, error)
	UpdateProductTags(ctx context.Context, productID int64, tags string) error
	DeleteVariant(ctx context.Context, productID, variantID int64) error
	GetCustomer(ctx context.Context, customerID int64) (*shopify.Customer, error)
	UpdateCustomer(ctx context.Context, customerID int64, tags, note string) error
}

// TxRunner runs a function inside one database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type taskEnqueuer interface {
	Enqueue(ctx context.Context, tx *gorm.DB, task outbox.Task) error
}

// Service orchestrates the quote lifecycle against Shopify and the outbox.
type Service struct {
	tx       TxRunner
	repo     *Repository
	tasks    taskEnqueuer
	commerce commerceAPI
	logg     *logger.Logger
}

func NewService(tx TxRunner, repo *Repository, tasks taskEnqueuer, commerce commerceAPI, logg *logger.Logger) *Service {
	return &Service{tx: tx, repo: repo, tasks: tasks, commerce: commerce, logg: logg}
}

// Submit creates the quote product with its offer variants, then commits
// the quote row and the follow-up tasks in one transaction. The draft order
// and confirmation email run async off the outbox.
func (s *Service) Submit(ctx context.Context, params SubmissionParams) (*models.Quote, error) {
	if params.CustomerID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}

	now := time.Now().UTC()
	productParams := buildProductParams(params, now)

	product, err := s.commerce.CreateProduct(ctx, productParams)
	if err != nil {
		return nil, err
	}

	offers := enums.OfferKinds()
	if len(product.Variants) != len(offers) {
		return nil, pkgerrors.New(pkgerrors.CodeDependency,
			fmt.Sprintf("shopify returned %d variants for %d offers", len(product.Variants), len(offers)))
	}

	variantIDs := make(models.VariantIDList, 0, len(product.Variants))
	for _, variant := range product.Variants {
		variantIDs = append(variantIDs, variant.ID)
	}

	quote := &models.Quote{
		Status:        enums.QuoteStatusSubmitted,
		CustomerID:    params.CustomerID,
		CustomerEmail: strings.TrimSpace(params.CustomerEmail),
		CustomerName:  strings.TrimSpace(params.CustomerName),
		ProductID:     product.ID,
		Vendor:        params.Vendor,
		ProductType:   params.ProductType,
		Title:         productParams.Title,
		VariantIDs:    variantIDs,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.InsertTx(tx, quote); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "inserting quote")
		}

		draftTask := outbox.Task{
			Kind:    enums.TaskDraftOrderCreate,
			QuoteID: quote.ID,
			Data: outbox.DraftOrderPayload{
				CustomerID: params.CustomerID,
				VariantIDs: variantIDs,
				Tags:       draftOrderTag,
			},
		}
		if err := s.tasks.Enqueue(ctx, tx, draftTask); err != nil {
			return err
		}

		if quote.CustomerEmail == "" {
			return nil
		}
		emailTask := outbox.Task{
			Kind:    enums.TaskEmailQuoteConfirm,
			QuoteID: quote.ID,
			Data: outbox.EmailPayload{
				ToEmail:     quote.CustomerEmail,
				ToName:      quote.CustomerName,
				Vendor:      params.Vendor,
				ProductType: params.ProductType,
			},
		}
		return s.tasks.Enqueue(ctx, tx, emailTask)
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		logCtx := s.logg.WithQuoteID(ctx, quote.ID.String())
		logCtx = s.logg.WithProductID(logCtx, product.ID)
		s.logg.Info(logCtx, "quote submitted")
	}
	return quote, nil
}

// Approve prunes the unwanted offer variants, records the order number and
// payment method on the Shopify customer, and marks the quote approved.
func (s *Service) Approve(ctx context.Context, params ApprovalParams) error {
	if !params.PaymentMethod.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown payment method tag %q", params.PaymentMethod))
	}

	quote, err := s.repo.ByProductID(ctx, params.ProductID)
	if err != nil {
		return err
	}
	if quote.Status != enums.QuoteStatusSubmitted {
		return pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("quote is %s, approval needs %s", quote.Status, enums.QuoteStatusSubmitted))
	}

	for _, id := range params.UnwantedVariantIDs {
		if !quote.VariantIDs.Contains(id) {
			return pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("variant %d does not belong to product %d", id, params.ProductID))
		}
	}

	if err := s.deleteVariants(ctx, params.ProductID, params.UnwantedVariantIDs); err != nil {
		return err
	}

	if markdown := strings.TrimSpace(params.Markdown); markdown != "" {
		product, err := s.commerce.GetProduct(ctx, params.ProductID)
		if err != nil {
			return err
		}
		if err := s.commerce.UpdateProductTags(ctx, params.ProductID, MergeTags(product.Tags, markdown)); err != nil {
			return err
		}
	}

	customer, err := s.commerce.GetCustomer(ctx, params.CustomerID)
	if err != nil {
		return err
	}

	mergedTags := MergeTags(customer.Tags, params.OrderNumber, string(params.PaymentMethod))
	payout := payoutForRail(params.PaymentMethod, params.Payout)
	if err := s.commerce.UpdateCustomer(ctx, params.CustomerID, mergedTags, payout.Note()); err != nil {
		return err
	}

	method := params.PaymentMethod
	updates := map[string]any{
		"order_number":   params.OrderNumber,
		"payment_method": string(method),
	}
	if !payout.Empty() {
		updates["payout"] = &payout
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.TransitionTx(tx, quote.ID, enums.QuoteStatusSubmitted, enums.QuoteStatusApproved, updates)
	})
	if err != nil {
		return err
	}

	if s.logg != nil {
		logCtx := s.logg.WithQuoteID(ctx, quote.ID.String())
		logCtx = s.logg.WithProductID(logCtx, params.ProductID)
		s.logg.Info(logCtx, "quote approved")
	}
	return nil
}

// deleteVariants fires one delete per variant concurrently and waits for
// every outcome before reporting.
func (s *Service) deleteVariants(ctx context.Context, productID int64, variantIDs []int64) error {
	if len(variantIDs) == 0 {
		return nil
	}

	errs := make([]error, len(variantIDs))
	var wg sync.WaitGroup
	for i, id := range variantIDs {
		wg.Add(1)
		go func(i int, id int64) {
			defer wg.Done()
			errs[i] = s.commerce.DeleteVariant(ctx, productID, id)
		}(i, id)
	}
	wg.Wait()

	if combined := multierr.Combine(errs...); combined != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, combined, "deleting unwanted variants")
	}
	return nil
}

func buildProductParams(params SubmissionParams, now time.Time) shopify.ProductCreateParams {
	offers := enums.OfferKinds()
	values := make([]string, 0, len(offers))
	variants := make([]shopify.VariantParams, 0, len(offers))
	for _, offer := range offers {
		values = append(values, string(offer))
		variants = append(variants, shopify.VariantParams{Option1: string(offer)})
	}

	images := make([]shopify.ImageParams, 0, len(params.Photos))
	for _, photo := range params.Photos {
		images = append(images, shopify.ImageParams{
			Attachment: base64.StdEncoding.EncodeToString(photo.Content),
			Filename:   photo.Filename,
		})
	}

	return shopify.ProductCreateParams{
		Title:       "New Quote: " + now.Format(time.RFC3339),
		BodyHTML:    buildBodyHTML(params),
		Vendor:      params.Vendor,
		ProductType: params.ProductType,
		Published:   false,
		Tags:        productTagDefaults,
		Options:     []shopify.ProductOption{{Name: enums.OfferOptionName, Values: values}},
		Variants:    variants,
		Images:      images,
	}
}

func buildBodyHTML(params SubmissionParams) string {
	lines := []struct {
		label string
		value string
	}{
		{"Condition", strings.TrimSpace(params.Condition)},
		{"Dimensions", strings.TrimSpace(params.Dimensions)},
		{"Year Purchased", strings.TrimSpace(params.YearPurchased)},
		{"Original Price", formatPrice(params.OriginalPrice)},
	}

	var b strings.Builder
	b.WriteString(strings.TrimSpace(params.BodyHTML))
	for _, line := range lines {
		if line.value == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("<br>")
		}
		b.WriteString(line.label)
		b.WriteString(": ")
		b.WriteString(line.value)
	}
	return b.String()
}

// formatPrice normalizes a free-text price to $X.XX, leaving unparseable
// input as submitted.
func formatPrice(raw string) string {
	trimmed := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), "$"))
	if trimmed == "" {
		return ""
	}
	amount, err := decimal.NewFromString(trimmed)
	if err != nil {
		return strings.TrimSpace(raw)
	}
	return "$" + amount.StringFixed(2)
}

// payoutForRail keeps only the fields of the declared payment rail so a
// request mixing rails never leaks the extras into the customer note.
func payoutForRail(method enums.PaymentMethodTag, payout types.PayoutDetails) types.PayoutDetails {
	switch method {
	case enums.PaymentMethodPaypal:
		return types.PayoutDetails{PaypalEmail: payout.PaypalEmail}
	case enums.PaymentMethodBank:
		return types.PayoutDetails{
			BankName:          payout.BankName,
			BankInstitution:   payout.BankInstitution,
			BankAccountNumber: payout.BankAccountNumber,
			BankRoutingNumber: payout.BankRoutingNumber,
		}
	case enums.PaymentMethodBankIntl:
		return types.PayoutDetails{
			IntlName:        payout.IntlName,
			IntlInstitution: payout.IntlInstitution,
			IntlIBAN:        payout.IntlIBAN,
			IntlSWIFT:       payout.IntlSWIFT,
			IntlCountry:     payout.IntlCountry,
		}
	default:
		return types.PayoutDetails{}
	}
}
