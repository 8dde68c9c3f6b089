// Package analytics holds the pure trade computations: price/aggregate
// statistics over a filtered trade set, and FIFO round-trip matching of
// buy and sell lots. Nothing here performs I/O or mutates its inputs, so
// every function is safe to call concurrently.
package analytics

import (
	"time"

	"portfolio-assistant-go/internal/models"
)

// PricePoint is an extremum observation: the price together with the
// trade it came from.
type PricePoint struct {
	Price    float64
	Date     time.Time
	Quantity float64
}

// PriceStat aggregates a filtered trade set. Highest, Lowest and Average
// are nil when no record carried a usable price; callers must distinguish
// "no trades" from "price is zero".
type PriceStat struct {
	Highest       *PricePoint
	Lowest        *PricePoint
	Average       *float64
	TradeCount    int
	TotalQuantity float64
	TotalNotional float64
}

// Aggregate computes price statistics over trades in the order given.
// Records with a malformed or non-positive price are skipped; a single bad
// record never blanks out the report. When several records tie at an
// extreme, the first one in the input order is the representative — with
// the usual descending-by-date input this surfaces the most recent
// occurrence.
func Aggregate(trades []models.TradeRecord) PriceStat {
	var stat PriceStat
	var sum float64

	for i := range trades {
		price, ok := trades[i].Price()
		if !ok {
			continue
		}
		point := PricePoint{
			Price:    price,
			Date:     trades[i].TradeDate,
			Quantity: trades[i].Quantity,
		}
		if stat.Highest == nil || price > stat.Highest.Price {
			p := point
			stat.Highest = &p
		}
		if stat.Lowest == nil || price < stat.Lowest.Price {
			p := point
			stat.Lowest = &p
		}
		sum += price
		stat.TradeCount++
		stat.TotalQuantity += trades[i].Quantity
		stat.TotalNotional += abs(trades[i].NetAmount)
	}

	if stat.TradeCount > 0 {
		avg := sum / float64(stat.TradeCount)
		stat.Average = &avg
	}
	return stat
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
