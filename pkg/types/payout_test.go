package types

import (
	"strings"
	"testing"
)

func TestPayoutNoteIncludesOnlySuppliedFields(t *testing.T) {
	payout := PayoutDetails{
		PaypalEmail: "seller@example.com",
		IntlCountry: " DE ",
	}

	note := payout.Note()
	if !strings.Contains(note, "PayPal Email: seller@example.com") {
		t.Fatalf("expected paypal line, got %q", note)
	}
	if !strings.Contains(note, "Bank Country: DE") {
		t.Fatalf("expected trimmed country line, got %q", note)
	}
	if strings.Contains(note, "Routing") {
		t.Fatalf("unexpected bank line in %q", note)
	}
}

func TestPayoutScanRoundTrip(t *testing.T) {
	original := PayoutDetails{BankName: "J. Doe", BankAccountNumber: "0001112223"}
	raw, err := original.Value()
	if err != nil {
		t.Fatalf("value failed: %v", err)
	}

	var decoded PayoutDetails
	if err := decoded.Scan(raw); err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if decoded != original {
		t.Fatalf("round trip mismatch: %+v vs %+v", decoded, original)
	}
	if decoded.Empty() {
		t.Fatal("expected non-empty payout")
	}
}
