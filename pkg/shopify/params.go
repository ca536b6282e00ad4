package shopify

// ProductCreateParams is the admin REST payload for creating a quote
// product. Variants must line up with the option values in order.
type ProductCreateParams struct {
	Title       string          `json:"title"`
	BodyHTML    string          `json:"body_html"`
	Vendor      string          `json:"vendor,omitempty"`
	ProductType string          `json:"product_type,omitempty"`
	Published   bool            `json:"published"`
	Tags        string          `json:"tags,omitempty"`
	Options     []ProductOption `json:"options,omitempty"`
	Variants    []VariantParams `json:"variants,omitempty"`
	Images      []ImageParams   `json:"images,omitempty"`
}

type ProductOption struct {
	Name   string   `json:"name"`
	Values []string `json:"values,omitempty"`
}

type VariantParams struct {
	Option1             string `json:"option1"`
	InventoryManagement string `json:"inventory_management,omitempty"`
	InventoryQuantity   int    `json:"inventory_quantity"`
}

// ImageParams attaches a photo as base64 content.
type ImageParams struct {
	Attachment string `json:"attachment,omitempty"`
	Filename   string `json:"filename,omitempty"`
}

// Product is the subset of Shopify's product resource this service reads.
type Product struct {
	ID       int64           `json:"id"`
	Title    string          `json:"title"`
	Tags     string          `json:"tags"`
	Options  []ProductOption `json:"options"`
	Variants []Variant       `json:"variants"`
	Images   []ProductImage  `json:"images"`
}

type Variant struct {
	ID      int64  `json:"id"`
	Option1 string `json:"option1"`
}

type ProductImage struct {
	ID  int64  `json:"id"`
	Src string `json:"src"`
}

// DraftOrderCreateParams opens a draft order against a customer.
type DraftOrderCreateParams struct {
	CustomerID                int64           `json:"-"`
	Customer                  CustomerRef     `json:"customer"`
	LineItems                 []LineItemParam `json:"line_items"`
	Tags                      string          `json:"tags,omitempty"`
	UseCustomerDefaultAddress bool            `json:"use_customer_default_address"`
}

type CustomerRef struct {
	ID int64 `json:"id"`
}

type LineItemParam struct {
	VariantID int64 `json:"variant_id"`
	Quantity  int   `json:"quantity"`
}

// DraftOrder is the subset of the created draft order this service reads.
type DraftOrder struct {
	ID        int64           `json:"id"`
	Tags      string          `json:"tags"`
	LineItems []LineItemParam `json:"line_items"`
}

// Customer is the subset of Shopify's customer resource this service reads.
type Customer struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	Tags      string `json:"tags"`
	Note      string `json:"note"`
}

type productCreateEnvelope struct {
	Product ProductCreateParams `json:"product"`
}

type productEnvelope struct {
	Product *Product `json:"product"`
}

type productUpdate struct {
	ID   int64  `json:"id"`
	Tags string `json:"tags"`
}

type productUpdateEnvelope struct {
	Product productUpdate `json:"product"`
}

type draftOrderCreateEnvelope struct {
	DraftOrder DraftOrderCreateParams `json:"draft_order"`
}

type draftOrderEnvelope struct {
	DraftOrder *DraftOrder `json:"draft_order"`
}

type customerEnvelope struct {
	Customer *Customer `json:"customer"`
}

type customerUpdate struct {
	ID   int64  `json:"id"`
	Tags string `json:"tags"`
	Note string `json:"note,omitempty"`
}

type customerUpdateEnvelope struct {
	Customer customerUpdate `json:"customer"`
}
