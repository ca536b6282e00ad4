package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// PayoutDetails snapshots whichever payout fields arrived with an approval.
// Stored as JSONB alongside the quote so the payment rail survives even if
// the Shopify customer note is edited later.
type PayoutDetails struct {
	PaypalEmail string `json:"pp_email,omitempty"`

	BankName          string `json:"bt_name,omitempty"`
	BankInstitution   string `json:"bt_bank_name,omitempty"`
	BankAccountNumber string `json:"bt_account_number,omitempty"`
	BankRoutingNumber string `json:"bt_routing_number,omitempty"`

	IntlName        string `json:"bi_name,omitempty"`
	IntlInstitution string `json:"bi_bank_name,omitempty"`
	IntlIBAN        string `json:"bi_iban,omitempty"`
	IntlSWIFT       string `json:"bi_swift,omitempty"`
	IntlCountry     string `json:"bi_country,omitempty"`
}

// Empty reports whether no payout field was supplied at all.
func (p PayoutDetails) Empty() bool {
	return p == PayoutDetails{}
}

// Note renders the customer-note line for every supplied field, in a fixed
// order so repeated approvals produce identical notes.
func (p PayoutDetails) Note() string {
	pairs := []struct {
		label string
		value string
	}{
		{"PayPal Email", p.PaypalEmail},
		{"Bank Account Name", p.BankName},
		{"Bank Name", p.BankInstitution},
		{"Bank Account Number", p.BankAccountNumber},
		{"Bank Routing Number", p.BankRoutingNumber},
		{"Intl Account Name", p.IntlName},
		{"Intl Bank Name", p.IntlInstitution},
		{"IBAN", p.IntlIBAN},
		{"SWIFT", p.IntlSWIFT},
		{"Bank Country", p.IntlCountry},
	}

	lines := make([]string, 0, len(pairs))
	for _, pair := range pairs {
		if strings.TrimSpace(pair.value) == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s", pair.label, strings.TrimSpace(pair.value)))
	}
	return strings.Join(lines, "\n")
}

// Value serializes the payout snapshot to JSON.
func (p *PayoutDetails) Value() (driver.Value, error) {
	if p == nil {
		return nil, nil
	}
	return json.Marshal(p)
}

// Scan decodes JSONB into the payout snapshot.
func (p *PayoutDetails) Scan(value interface{}) error {
	if value == nil {
		*p = PayoutDetails{}
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, p)
}

func asJSON(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported jsonb source type %T", value)
	}
}
