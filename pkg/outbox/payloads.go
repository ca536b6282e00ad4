package outbox

// DraftOrderPayload queues the draft-order creation that follows a product
// create. Variant ids are the ones Shopify returned, in offer order.
type DraftOrderPayload struct {
	CustomerID int64   `json:"customer_id"`
	VariantIDs []int64 `json:"variant_ids"`
	Tags       string  `json:"tags"`
}

// EmailPayload queues one of the transactional emails. Fields irrelevant to
// a given template stay empty.
type EmailPayload struct {
	ToEmail string `json:"to_email"`
	ToName  string `json:"to_name,omitempty"`

	Vendor      string `json:"vendor,omitempty"`
	ProductType string `json:"product_type,omitempty"`

	LabelURL       string `json:"label_url,omitempty"`
	TrackingNumber string `json:"tracking_number,omitempty"`
}

// ProductTagPayload queues a tag append on a Shopify product.
type ProductTagPayload struct {
	ProductID int64  `json:"product_id"`
	Tag       string `json:"tag"`
}
