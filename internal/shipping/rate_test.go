package shipping

import (
	"testing"

	"github.com/quotedesk/quotedesk-backend/pkg/config"
	pkgerrors "github.com/quotedesk/quotedesk-backend/pkg/errors"
	"github.com/quotedesk/quotedesk-backend/pkg/shippo"
)

func rate(id, amount, provider string, days int) shippo.Rate {
	return shippo.Rate{
		ObjectID:      id,
		Amount:        amount,
		Currency:      "USD",
		Provider:      provider,
		EstimatedDays: days,
	}
}

func TestSelectRateCheapest(t *testing.T) {
	rates := []shippo.Rate{
		rate("r1", "182.40", "FedEx", 2),
		rate("r2", "129.95", "UPS", 5),
		rate("r3", "240.00", "FedEx", 1),
	}
	got, err := SelectRate(rates, config.RatePolicyCheapest)
	if err != nil {
		t.Fatalf("SelectRate: %v", err)
	}
	if got.ObjectID != "r2" {
		t.Errorf("selected %s, want r2 (cheapest)", got.ObjectID)
	}
}

func TestSelectRateFastest(t *testing.T) {
	rates := []shippo.Rate{
		rate("r1", "182.40", "FedEx", 2),
		rate("r2", "129.95", "UPS", 5),
		rate("r3", "240.00", "FedEx", 1),
	}
	got, err := SelectRate(rates, config.RatePolicyFastest)
	if err != nil {
		t.Fatalf("SelectRate: %v", err)
	}
	if got.ObjectID != "r3" {
		t.Errorf("selected %s, want r3 (fastest)", got.ObjectID)
	}
}

func TestSelectRateCheapestBreaksPriceTieOnSpeed(t *testing.T) {
	rates := []shippo.Rate{
		rate("r1", "99.00", "UPS", 6),
		rate("r2", "99.00", "USPS", 3),
	}
	got, err := SelectRate(rates, config.RatePolicyCheapest)
	if err != nil {
		t.Fatalf("SelectRate: %v", err)
	}
	if got.ObjectID != "r2" {
		t.Errorf("selected %s, want r2 (same price, fewer days)", got.ObjectID)
	}
}

func TestSelectRateFastestTreatsMissingEstimateAsSlowest(t *testing.T) {
	rates := []shippo.Rate{
		rate("r1", "50.00", "UPS", 0),
		rate("r2", "75.00", "FedEx", 4),
	}
	got, err := SelectRate(rates, config.RatePolicyFastest)
	if err != nil {
		t.Fatalf("SelectRate: %v", err)
	}
	if got.ObjectID != "r2" {
		t.Errorf("selected %s, want r2 (r1 has no transit estimate)", got.ObjectID)
	}
}

func TestSelectRateIsDeterministicOnFullTie(t *testing.T) {
	rates := []shippo.Rate{
		rate("r-b", "99.00", "UPS", 3),
		rate("r-a", "99.00", "UPS", 3),
	}
	for i := 0; i < 5; i++ {
		got, err := SelectRate(rates, config.RatePolicyCheapest)
		if err != nil {
			t.Fatalf("SelectRate: %v", err)
		}
		if got.ObjectID != "r-a" {
			t.Fatalf("selected %s on run %d, want r-a every time", got.ObjectID, i)
		}
	}
}

func TestSelectRateEmpty(t *testing.T) {
	_, err := SelectRate(nil, config.RatePolicyCheapest)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("err = %v, want dependency error", err)
	}
}

func TestSelectRatePushesUnparseableAmountLast(t *testing.T) {
	rates := []shippo.Rate{
		rate("r1", "not-a-number", "UPS", 2),
		rate("r2", "310.00", "FedEx", 5),
	}
	got, err := SelectRate(rates, config.RatePolicyCheapest)
	if err != nil {
		t.Fatalf("SelectRate: %v", err)
	}
	if got.ObjectID != "r2" {
		t.Errorf("selected %s, want r2", got.ObjectID)
	}
}
