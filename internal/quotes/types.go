package quotes

import (
	"github.com/quotedesk/quotedesk-backend/pkg/enums"
	"github.com/quotedesk/quotedesk-backend/pkg/types"
)

// Photo is one uploaded attachment, already read into memory by the
// controller's multipart handling.
type Photo struct {
	Filename string
	Content  []byte
}

// SubmissionParams carries a validated quote form.
type SubmissionParams struct {
	CustomerID    int64
	Vendor        string
	ProductType   string
	BodyHTML      string
	Condition     string
	Dimensions    string
	YearPurchased string
	OriginalPrice string

	CustomerEmail string
	CustomerName  string

	Photos []Photo
}

// ApprovalParams carries a validated approval request.
type ApprovalParams struct {
	CustomerID         int64
	ProductID          int64
	OrderNumber        string
	UnwantedVariantIDs []int64
	PaymentMethod      enums.PaymentMethodTag
	Markdown           string
	Payout             types.PayoutDetails
}
