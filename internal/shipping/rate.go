package shipping

import (
	"github.com/shopspring/decimal"

	"github.com/quotedesk/quotedesk-backend/pkg/config"
	pkgerrors "github.com/quotedesk/quotedesk-backend/pkg/errors"
	"github.com/quotedesk/quotedesk-backend/pkg/shippo"
)

// SelectRate picks one rate deterministically. Under the cheapest policy
// the lowest amount wins with transit time as tiebreaker; under fastest the
// order flips. Remaining ties fall through to carrier name then rate id so
// identical inputs always pick the identical rate.
func SelectRate(rates []shippo.Rate, policy string) (*shippo.Rate, error) {
	if len(rates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "no shipping rates returned")
	}

	best := 0
	for i := 1; i < len(rates); i++ {
		if rateLess(rates[i], rates[best], policy) {
			best = i
		}
	}
	return &rates[best], nil
}

func rateLess(a, b shippo.Rate, policy string) bool {
	if policy == config.RatePolicyFastest {
		if a.EstimatedDays != b.EstimatedDays {
			return transitDays(a) < transitDays(b)
		}
		if cmp := compareAmounts(a, b); cmp != 0 {
			return cmp < 0
		}
	} else {
		if cmp := compareAmounts(a, b); cmp != 0 {
			return cmp < 0
		}
		if a.EstimatedDays != b.EstimatedDays {
			return transitDays(a) < transitDays(b)
		}
	}
	if a.Provider != b.Provider {
		return a.Provider < b.Provider
	}
	if a.ServiceLevel.Name != b.ServiceLevel.Name {
		return a.ServiceLevel.Name < b.ServiceLevel.Name
	}
	return a.ObjectID < b.ObjectID
}

// transitDays treats a missing estimate as slower than any quoted one.
func transitDays(r shippo.Rate) int {
	if r.EstimatedDays <= 0 {
		return int(^uint(0) >> 1)
	}
	return r.EstimatedDays
}

// compareAmounts orders by price, pushing unparseable amounts last.
func compareAmounts(a, b shippo.Rate) int {
	amountA, errA := decimal.NewFromString(a.Amount)
	amountB, errB := decimal.NewFromString(b.Amount)
	switch {
	case errA != nil && errB != nil:
		return 0
	case errA != nil:
		return 1
	case errB != nil:
		return -1
	}
	return amountA.Cmp(amountB)
}
