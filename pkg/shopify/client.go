package shopify

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

var (
	errShopURLRequired     = errors.New("shopify shop url is required")
	errCredentialsRequired = errors.New("shopify api key and password are required")
	errLoggerRequired      = errors.New("shopify logger is required")
)

const maxErrorBodyLen = 512

// Client wraps the Shopify admin REST API with centralized auth, logging,
// and error mapping. Credentials are injected once at construction.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	password   string
	logger     *logger.Logger
}

// NewClient validates the credentials and builds the admin API wrapper.
func NewClient(ctx context.Context, cfg config.ShopifyConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	shopURL := strings.TrimSpace(cfg.ShopURL)
	if shopURL == "" {
		return nil, errShopURLRequired
	}
	apiKey := strings.TrimSpace(cfg.APIKey)
	password := strings.TrimSpace(cfg.Password)
	if apiKey == "" || password == "" {
		return nil, errCredentialsRequired
	}

	version := strings.TrimSpace(cfg.APIVersion)
	if version == "" {
		version = "2023-10"
	}

	c := &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    fmt.Sprintf("https://%s/admin/api/%s", shopURL, version),
		apiKey:     apiKey,
		password:   password,
		logger:     logg,
	}

	logg.Info(ctx, "shopify client initialized")
	return c, nil
}

// CreateProduct creates an unpublished product carrying the offer variants.
func (c *Client) CreateProduct(ctx context.Context, params ProductCreateParams) (*Product, error) {
	c.log(ctx, "request", "create_product", map[string]any{
		"title":    params.Title,
		"vendor":   params.Vendor,
		"variants": len(params.Variants),
		"images":   len(params.Images),
	})

	var out productEnvelope
	if err := c.do(ctx, http.MethodPost, "/products.json", productCreateEnvelope{Product: params}, &out); err != nil {
		c.log(ctx, "error", "create_product", map[string]any{"error": err.Error()})
		return nil, err
	}
	if out.Product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "shopify create product returned no product")
	}

	c.log(ctx, "response", "create_product", map[string]any{
		"product_id": out.Product.ID,
		"variants":   len(out.Product.Variants),
	})
	return out.Product, nil
}

// GetProduct fetches a product including its tags and variants.
func (c *Client) GetProduct(ctx context.Context, productID int64) (*Product, error) {
	c.log(ctx, "request", "get_product", map[string]any{"product_id": productID})

	var out productEnvelope
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/products/%d.json", productID), nil, &out); err != nil {
		c.log(ctx, "error", "get_product", map[string]any{"error": err.Error()})
		return nil, err
	}
	if out.Product == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shopify product not found")
	}
	return out.Product, nil
}

// UpdateProductTags replaces the product's tag string.
func (c *Client) UpdateProductTags(ctx context.Context, productID int64, tags string) error {
	c.log(ctx, "request", "update_product_tags", map[string]any{"product_id": productID, "tags": tags})

	payload := productUpdateEnvelope{Product: productUpdate{ID: productID, Tags: tags}}
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/products/%d.json", productID), payload, nil); err != nil {
		c.log(ctx, "error", "update_product_tags", map[string]any{"error": err.Error()})
		return err
	}
	return nil
}

// DeleteVariant removes a single variant from a product.
func (c *Client) DeleteVariant(ctx context.Context, productID, variantID int64) error {
	c.log(ctx, "request", "delete_variant", map[string]any{"product_id": productID, "variant_id": variantID})

	path := fmt.Sprintf("/products/%d/variants/%d.json", productID, variantID)
	if err := c.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		c.log(ctx, "error", "delete_variant", map[string]any{"error": err.Error()})
		return err
	}
	return nil
}

// CreateDraftOrder opens a draft order holding one line item per variant.
func (c *Client) CreateDraftOrder(ctx context.Context, params DraftOrderCreateParams) (*DraftOrder, error) {
	c.log(ctx, "request", "create_draft_order", map[string]any{
		"customer_id": params.CustomerID,
		"line_items":  len(params.LineItems),
		"tags":        params.Tags,
	})

	var out draftOrderEnvelope
	if err := c.do(ctx, http.MethodPost, "/draft_orders.json", draftOrderCreateEnvelope{DraftOrder: params}, &out); err != nil {
		c.log(ctx, "error", "create_draft_order", map[string]any{"error": err.Error()})
		return nil, err
	}
	if out.DraftOrder == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "shopify create draft order returned no draft order")
	}

	c.log(ctx, "response", "create_draft_order", map[string]any{"draft_order_id": out.DraftOrder.ID})
	return out.DraftOrder, nil
}

// GetCustomer reads the customer's current tags, email, and name.
func (c *Client) GetCustomer(ctx context.Context, customerID int64) (*Customer, error) {
	c.log(ctx, "request", "get_customer", map[string]any{"customer_id": customerID})

	var out customerEnvelope
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/customers/%d.json", customerID), nil, &out); err != nil {
		c.log(ctx, "error", "get_customer", map[string]any{"error": err.Error()})
		return nil, err
	}
	if out.Customer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shopify customer not found")
	}
	return out.Customer, nil
}

// UpdateCustomer writes back the customer's tag string and note.
func (c *Client) UpdateCustomer(ctx context.Context, customerID int64, tags, note string) error {
	c.log(ctx, "request", "update_customer", map[string]any{"customer_id": customerID, "tags": tags})

	payload := customerUpdateEnvelope{Customer: customerUpdate{ID: customerID, Tags: tags, Note: note}}
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/customers/%d.json", customerID), payload, nil); err != nil {
		c.log(ctx, "error", "update_customer", map[string]any{"error": err.Error()})
		return err
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding shopify request")
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building shopify request")
	}
	req.SetBasicAuth(c.apiKey, c.password)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("shopify %s %s failed", method, path))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLen))
		err := fmt.Errorf("shopify responded %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
		return pkgerrors.Wrap(codeForStatus(resp.StatusCode), err, fmt.Sprintf("shopify %s %s failed", method, path))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decoding shopify response")
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
		logFields[k] = redact(k, v)
	}
	ctx = c.logger.WithFields(ctx, logFields)
	switch phase {
	case "error":
		c.logger.Error(ctx, fmt.Sprintf("shopify %s", op), errors.New(fmt.Sprint(fields["error"])))
	default:
		c.logger.Info(ctx, fmt.Sprintf("shopify %s", phase))
	}
}

func redact(key string, value any) any {
	lower := strings.ToLower(key)
	for _, sensitive := range []string{"email", "phone", "note", "address"} {
		if strings.Contains(lower, sensitive) {
			return "[REDACTED]"
		}
	}
	return value
}

func codeForStatus(status int) pkgerrors.Code {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return pkgerrors.CodeUnauthorized
	case http.StatusNotFound:
		return pkgerrors.CodeNotFound
	case http.StatusTooManyRequests:
		return pkgerrors.CodeRateLimit
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return pkgerrors.CodeValidation
	default:
		if status >= 400 && status < 500 {
			return pkgerrors.CodeValidation
		}
		return pkgerrors.CodeDependency
	}
}
