// Package arbiter selects the winning supplier offer for one product and
// turns it into a sheet decision. Both steps are pure functions over
// normalized probe results, so every rule here is testable without a page or
// a store.
package arbiter

import (
	"pricewatch/lib/probe"
)

// Outcome is the result of weighing every supplier's probe for one product.
type Outcome struct {
	// nil when no source produced a usable price
	Winner      *probe.SourceResult
	LandedPrice float64
	// the winner came from an out-of-stock source, usable for trend
	// annotation but not for purchase
	StaleFallback bool
	// every source was actively refused and none produced a price
	AllBlocked bool
	// at least one price was found, none of the priced sources in stock
	AllOutOfStock bool
}

// Arbitrate picks the lowest landed cost among in-stock priced sources,
// falling back to out-of-stock priced sources when nothing is purchasable.
// Ties keep the first-encountered source, which preserves the configured
// supplier order.
func Arbitrate(results []probe.SourceResult) Outcome {
	var out Outcome

	inStock := make([]int, 0, len(results))
	outOfStock := make([]int, 0, len(results))
	anyPrice := false
	allBlocking := len(results) > 0
	for i, r := range results {
		if r.HasPrice {
			anyPrice = true
			if r.InStock {
				inStock = append(inStock, i)
			} else {
				outOfStock = append(outOfStock, i)
			}
		}
		if !r.Failure.Blocking() {
			allBlocking = false
		}
	}

	out.AllBlocked = allBlocking && !anyPrice
	out.AllOutOfStock = anyPrice && len(inStock) == 0

	pick := func(indices []int) {
		best := indices[0]
		for _, i := range indices[1:] {
			if results[i].Landed() < results[best].Landed() {
				best = i
			}
		}
		winner := results[best]
		out.Winner = &winner
		out.LandedPrice = winner.Landed()
	}

	switch {
	case len(inStock) > 0:
		pick(inStock)
	case len(outOfStock) > 0:
		pick(outOfStock)
		out.StaleFallback = true
	}
	return out
}
