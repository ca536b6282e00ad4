package enums

// OfferKind is one of the purchase-method options presented on every quote
// product. The variant set on the product must match this list in order, or
// the draft order line items desynchronize from the offers.
type OfferKind string

const (
	OfferConsignment OfferKind = "Consignment"
	OfferUpfront     OfferKind = "Upfront"
	OfferStoreCredit OfferKind = "Store Credit"
)

// OfferKinds returns the canonical offer list in presentation order.
func OfferKinds() []OfferKind {
	return []OfferKind{OfferConsignment, OfferUpfront, OfferStoreCredit}
}

// OfferOptionName is the Shopify option that carries the offer values.
const OfferOptionName = "Offer"

// PaymentMethodTag is the customer tag recording how a seller is paid out.
type PaymentMethodTag string

const (
	PaymentMethodPaypal   PaymentMethodTag = "paypal"
	PaymentMethodBank     PaymentMethodTag = "bank-transfer"
	PaymentMethodBankIntl PaymentMethodTag = "bank-international"
)

var validPaymentMethods = []PaymentMethodTag{
	PaymentMethodPaypal,
	PaymentMethodBank,
	PaymentMethodBankIntl,
}

// IsValid reports whether the tag names a supported payment rail.
func (p PaymentMethodTag) IsValid() bool {
	for _, candidate := range validPaymentMethods {
		if candidate == p {
			return true
		}
	}
	return false
}
