package enums

import "fmt"

// QuoteStatus is the persisted lifecycle state of a quote.
type QuoteStatus string

const (
	QuoteStatusSubmitted QuoteStatus = "submitted"
	QuoteStatusApproved  QuoteStatus = "approved"
	QuoteStatusLabeled   QuoteStatus = "labeled"
	QuoteStatusRejected  QuoteStatus = "rejected"
)

var validQuoteStatuses = []QuoteStatus{
	QuoteStatusSubmitted,
	QuoteStatusApproved,
	QuoteStatusLabeled,
	QuoteStatusRejected,
}

// IsValid reports whether the value matches the canonical quote_status enum.
func (s QuoteStatus) IsValid() bool {
	for _, candidate := range validQuoteStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// CanTransitionTo encodes the allowed lifecycle edges. A quote cannot be
// approved twice and only an approved quote can be labeled.
func (s QuoteStatus) CanTransitionTo(next QuoteStatus) bool {
	switch s {
	case QuoteStatusSubmitted:
		return next == QuoteStatusApproved || next == QuoteStatusRejected
	case QuoteStatusApproved:
		return next == QuoteStatusLabeled
	default:
		return false
	}
}

// ParseQuoteStatus converts raw input into QuoteStatus.
func ParseQuoteStatus(raw string) (QuoteStatus, error) {
	status := QuoteStatus(raw)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid quote status %q", raw)
	}
	return status, nil
}
