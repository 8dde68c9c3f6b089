package analytics

import (
	"sort"
	"time"

	"portfolio-assistant-go/internal/models"
)

// RoundTrip is one closed position: a sell matched against the earliest
// eligible buy of the same security class. Quantity and prices are taken
// from the matched legs as-is; unequal lots are not split.
type RoundTrip struct {
	Class       models.SecurityClass
	Symbol      string
	BuyDate     time.Time
	SellDate    time.Time
	Quantity    float64
	BuyPrice    float64
	SellPrice   float64
	RealizedPnL float64
}

// MatchRoundTrips pairs sells with buys first-in-first-out, per security
// class. Both inputs must be pre-sorted ascending by (date, external id);
// the deterministic secondary key keeps same-day trades matching in a
// reproducible order.
//
// A sell matches the earliest still-unmatched buy dated on or before it.
// A buy is consumed by at most one sell. Sells with no eligible buy are
// dropped silently — that is a short position or a lot outside the queried
// window, not an error.
func MatchRoundTrips(buys, sells []models.TradeRecord) []RoundTrip {
	trips := matchClass(buys, sells, models.SecurityEquity)
	return append(trips, matchClass(buys, sells, models.SecurityOption)...)
}

func matchClass(buys, sells []models.TradeRecord, class models.SecurityClass) []RoundTrip {
	var classBuys []models.TradeRecord
	for _, b := range buys {
		if b.Class == class {
			classBuys = append(classBuys, b)
		}
	}

	matched := make([]bool, len(classBuys))
	var trips []RoundTrip

	for _, sell := range sells {
		if sell.Class != class {
			continue
		}
		for i, buy := range classBuys {
			if matched[i] || buy.TradeDate.After(sell.TradeDate) {
				continue
			}
			matched[i] = true
			buyPrice := priceOrZero(&classBuys[i])
			sellPrice := priceOrZero(&sell)
			trips = append(trips, RoundTrip{
				Class:       class,
				Symbol:      buy.Symbol,
				BuyDate:     buy.TradeDate,
				SellDate:    sell.TradeDate,
				Quantity:    buy.Quantity,
				BuyPrice:    buyPrice,
				SellPrice:   sellPrice,
				RealizedPnL: (sellPrice - buyPrice) * buy.Quantity,
			})
			break
		}
	}
	return trips
}

// ProfitableOnly filters round-trips to positive realized P&L and orders
// them by profit descending. Pure postprocessing; the input slice is left
// untouched.
func ProfitableOnly(trips []RoundTrip) []RoundTrip {
	var out []RoundTrip
	for _, t := range trips {
		if t.RealizedPnL > 0 {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RealizedPnL > out[j].RealizedPnL
	})
	return out
}

// priceOrZero follows the skip-and-continue policy for malformed prices:
// a bad leg contributes zero to the round-trip instead of aborting the
// whole match.
func priceOrZero(t *models.TradeRecord) float64 {
	p, ok := t.Price()
	if !ok {
		return 0
	}
	return p
}
