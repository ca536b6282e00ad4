package shipping

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/quotedesk/quotedesk-backend/internal/quotes"
	"github.com/quotedesk/quotedesk-backend/pkg/config"
	"github.com/quotedesk/quotedesk-backend/pkg/db/models"
	"github.com/quotedesk/quotedesk-backend/pkg/enums"
	pkgerrors "github.com/quotedesk/quotedesk-backend/pkg/errors"
	"github.com/quotedesk/quotedesk-backend/pkg/logger"
	"github.com/quotedesk/quotedesk-backend/pkg/outbox"
	"github.com/quotedesk/quotedesk-backend/pkg/shippo"
)

// LabelRequestedTag marks the Shopify product once a label is purchased.
const LabelRequestedTag = "LabelRequested"

// LabelParams is the seller's pickup address plus the product whose quote
// the label belongs to.
type LabelParams struct {
	CustomerName string
	Company      string
	Street1      string
	Street2      string
	City         string
	State        string
	Zip          string
	Country      string
	Phone        string
	Email        string

	ProductID int64
}

// Result is the sanitized outcome returned to the storefront. Provider
// diagnostics stay in the logs.
type Result struct {
	Purchased      bool   `json:"purchased"`
	Message        string `json:"message"`
	LabelURL       string `json:"label_url,omitempty"`
	TrackingNumber string `json:"tracking_number,omitempty"`
	Carrier        string `json:"carrier,omitempty"`
}

type labelAPI interface {
	CreateShipment(ctx context.Context, params shippo.ShipmentCreateParams) (*shippo.Shipment, error)
	PurchaseLabel(ctx context.Context, rateID string) (*shippo.Transaction, error)
}

type taskEnqueuer interface {
	Enqueue(ctx context.Context, tx *gorm.DB, task outbox.Task) error
}

// Service purchases return labels for approved quotes.
type Service struct {
	tx     quotes.TxRunner
	repo   *quotes.Repository
	tasks  taskEnqueuer
	labels labelAPI
	cfg    config.ShippoConfig
	logg   *logger.Logger
}

func NewService(tx quotes.TxRunner, repo *quotes.Repository, tasks taskEnqueuer, labels labelAPI, cfg config.ShippoConfig, logg *logger.Logger) *Service {
	return &Service{tx: tx, repo: repo, tasks: tasks, labels: labels, cfg: cfg, logg: logg}
}

// PurchaseLabel quotes the shipment, buys the selected rate, and commits
// the labeled transition with its follow-up tasks. A declined purchase or
// unusable address reports a problem result instead of an error.
func (s *Service) PurchaseLabel(ctx context.Context, params LabelParams) (*Result, error) {
	quote, err := s.repo.ByProductID(ctx, params.ProductID)
	if err != nil {
		return nil, err
	}
	if quote.Status != enums.QuoteStatusApproved {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("quote is %s, label purchase needs %s", quote.Status, enums.QuoteStatusApproved))
	}

	recipient := quote.CustomerEmail
	if recipient == "" {
		recipient = params.Email
	}

	shipment, err := s.labels.CreateShipment(ctx, s.shipmentParams(params))
	if err != nil {
		return nil, err
	}
	if len(shipment.Rates) == 0 {
		s.logProblem(ctx, quote.ProductID, "shipment returned no rates", shipment.Messages)
		return s.reportProblem(ctx, quote, recipient)
	}

	rate, err := SelectRate(shipment.Rates, s.cfg.RatePolicy)
	if err != nil {
		return nil, err
	}

	transaction, err := s.labels.PurchaseLabel(ctx, rate.ObjectID)
	if err != nil {
		return nil, err
	}
	if transaction.Status != shippo.TransactionSuccess {
		s.logProblem(ctx, quote.ProductID, fmt.Sprintf("label purchase status %s", transaction.Status), transaction.Messages)
		return s.reportProblem(ctx, quote, recipient)
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		updates := map[string]any{
			"label_url":       transaction.LabelURL,
			"tracking_number": transaction.TrackingNumber,
		}
		if err := s.repo.TransitionTx(tx, quote.ID, enums.QuoteStatusApproved, enums.QuoteStatusLabeled, updates); err != nil {
			return err
		}

		tagTask := outbox.Task{
			Kind:    enums.TaskProductTagLabelStatus,
			QuoteID: quote.ID,
			Data:    outbox.ProductTagPayload{ProductID: quote.ProductID, Tag: LabelRequestedTag},
		}
		if err := s.tasks.Enqueue(ctx, tx, tagTask); err != nil {
			return err
		}

		if recipient == "" {
			return nil
		}
		emailTask := outbox.Task{
			Kind:    enums.TaskEmailLabelReady,
			QuoteID: quote.ID,
			Data: outbox.EmailPayload{
				ToEmail:        recipient,
				ToName:         quote.CustomerName,
				LabelURL:       transaction.LabelURL,
				TrackingNumber: transaction.TrackingNumber,
			},
		}
		return s.tasks.Enqueue(ctx, tx, emailTask)
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		logCtx := s.logg.WithQuoteID(ctx, quote.ID.String())
		logCtx = s.logg.WithFields(logCtx, map[string]any{
			"carrier": rate.Provider,
			"rate_id": rate.ObjectID,
		})
		s.logg.Info(logCtx, "shipping label purchased")
	}

	return &Result{
		Purchased:      true,
		Message:        "shipping label purchased",
		LabelURL:       transaction.LabelURL,
		TrackingNumber: transaction.TrackingNumber,
		Carrier:        rate.Provider,
	}, nil
}

// reportProblem queues the address-problem email and answers 200 with a
// sanitized body. The quote stays approved so the seller can retry.
func (s *Service) reportProblem(ctx context.Context, quote *models.Quote, recipient string) (*Result, error) {
	if recipient != "" {
		err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			return s.tasks.Enqueue(ctx, tx, outbox.Task{
				Kind:    enums.TaskEmailAddressProblem,
				QuoteID: quote.ID,
				Data:    outbox.EmailPayload{ToEmail: recipient, ToName: quote.CustomerName},
			})
		})
		if err != nil {
			return nil, err
		}
	}

	return &Result{
		Purchased: false,
		Message:   "we could not generate a label for this address",
	}, nil
}

func (s *Service) shipmentParams(params LabelParams) shippo.ShipmentCreateParams {
	return shippo.ShipmentCreateParams{
		AddressFrom: shippo.Address{
			Name:    params.CustomerName,
			Company: params.Company,
			Street1: params.Street1,
			Street2: params.Street2,
			City:    params.City,
			State:   params.State,
			Zip:     params.Zip,
			Country: params.Country,
			Phone:   params.Phone,
			Email:   params.Email,
		},
		AddressTo: shippo.Address{
			Name:    s.cfg.WarehouseName,
			Street1: s.cfg.WarehouseStreet1,
			City:    s.cfg.WarehouseCity,
			State:   s.cfg.WarehouseState,
			Zip:     s.cfg.WarehouseZip,
			Country: s.cfg.WarehouseCountry,
			Phone:   s.cfg.WarehousePhone,
			Email:   s.cfg.WarehouseEmail,
		},
		Parcels: []shippo.Parcel{{
			Length:       s.cfg.ParcelLengthIn,
			Width:        s.cfg.ParcelWidthIn,
			Height:       s.cfg.ParcelHeightIn,
			DistanceUnit: "in",
			Weight:       s.cfg.ParcelWeightLb,
			MassUnit:     "lb",
		}},
	}
}

func (s *Service) logProblem(ctx context.Context, productID int64, reason string, messages []shippo.Message) {
	if s.logg == nil {
		return
	}
	logCtx := s.logg.WithProductID(ctx, productID)
	logCtx = s.logg.WithFields(logCtx, map[string]any{
		"reason":   reason,
		"messages": messages,
	})
	s.logg.Warn(logCtx, "shipping label problem")
}
