package shippo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/quotedesk/quotedesk-backend/pkg/config"
	pkgerrors "github.com/quotedesk/quotedesk-backend/pkg/errors"
	"github.com/quotedesk/quotedesk-backend/pkg/logger"
)

const defaultBaseURL = "https://api.goshippo.com"

var (
	errAPIKeyRequired = errors.New("shippo api key is required")
	errLoggerRequired = errors.New("shippo logger is required")
)

// Client wraps the Shippo REST API for shipment quoting and label purchase.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     *logger.Logger
}

// NewClient validates the token and builds the wrapper.
func NewClient(ctx context.Context, cfg config.ShippoConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errAPIKeyRequired
	}

	c := &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		logger:     logg,
	}

	logg.Info(ctx, "shippo client initialized")
	return c, nil
}

// CreateShipment submits the address pair and parcel and returns the
// shipment including its rates. Rates are requested synchronously.
func (c *Client) CreateShipment(ctx context.Context, params ShipmentCreateParams) (*Shipment, error) {
	params.Async = false
	c.log(ctx, "request", "create_shipment", map[string]any{
		"from_zip": params.AddressFrom.Zip,
		"to_zip":   params.AddressTo.Zip,
		"parcels":  len(params.Parcels),
	})

	var out Shipment
	if err := c.do(ctx, http.MethodPost, "/shipments/", params, &out); err != nil {
		c.log(ctx, "error", "create_shipment", map[string]any{"error": err.Error()})
		return nil, err
	}

	c.log(ctx, "response", "create_shipment", map[string]any{
		"shipment_id": out.ObjectID,
		"status":      out.Status,
		"rates":       len(out.Rates),
	})
	return &out, nil
}

// PurchaseLabel buys a label for the chosen rate.
func (c *Client) PurchaseLabel(ctx context.Context, rateID string) (*Transaction, error) {
	c.log(ctx, "request", "purchase_label", map[string]any{"rate_id": rateID})

	payload := transactionCreateParams{
		Rate:          rateID,
		LabelFileType: "PDF",
		Async:         false,
	}
	var out Transaction
	if err := c.do(ctx, http.MethodPost, "/transactions/", payload, &out); err != nil {
		c.log(ctx, "error", "purchase_label", map[string]any{"error": err.Error()})
		return nil, err
	}

	c.log(ctx, "response", "purchase_label", map[string]any{
		"transaction_id": out.ObjectID,
		"status":         out.Status,
	})
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding shippo request")
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building shippo request")
	}
	req.Header.Set("Authorization", "ShippoToken "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("shippo %s %s failed", method, path))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := fmt.Errorf("shippo responded %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
		code := pkgerrors.CodeDependency
		if resp.StatusCode == http.StatusUnauthorized {
			code = pkgerrors.CodeUnauthorized
		}
		return pkgerrors.Wrap(code, err, fmt.Sprintf("shippo %s %s failed", method, path))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decoding shippo response")
	}
	return nil
}

func (c *Client) log(ctx context.Context, phase, op string, fields map[string]any) {
	if c == nil || c.logger == nil {
		return
	}
	logFields := map[string]any{
		"operation": op,
		"phase":     phase,
	}
	for k, v := range fields {
		logFields[k] = v
	}
	ctx = c.logger.WithFields(ctx, logFields)
	switch phase {
	case "error":
		c.logger.Error(ctx, fmt.Sprintf("shippo %s", op), errors.New(fmt.Sprint(fields["error"])))
	default:
		c.logger.Info(ctx, fmt.Sprintf("shippo %s", phase))
	}
}
