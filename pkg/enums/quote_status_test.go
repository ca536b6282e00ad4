package enums

import "testing"

func TestQuoteStatusTransitions(t *testing.T) {
	cases := []struct {
		from    QuoteStatus
		to      QuoteStatus
		allowed bool
	}{
		{QuoteStatusSubmitted, QuoteStatusApproved, true},
		{QuoteStatusSubmitted, QuoteStatusRejected, true},
		{QuoteStatusSubmitted, QuoteStatusLabeled, false},
		{QuoteStatusApproved, QuoteStatusLabeled, true},
		{QuoteStatusApproved, QuoteStatusApproved, false},
		{QuoteStatusLabeled, QuoteStatusApproved, false},
		{QuoteStatusRejected, QuoteStatusApproved, false},
	}

	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.allowed {
			t.Fatalf("%s -> %s: expected %v, got %v", tc.from, tc.to, tc.allowed, got)
		}
	}
}

func TestParseQuoteStatus(t *testing.T) {
	if _, err := ParseQuoteStatus("submitted"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParseQuoteStatus("pending"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestPaymentMethodValidation(t *testing.T) {
	if !PaymentMethodPaypal.IsValid() {
		t.Fatal("paypal should be valid")
	}
	if PaymentMethodTag("venmo").IsValid() {
		t.Fatal("venmo should not be valid")
	}
}
