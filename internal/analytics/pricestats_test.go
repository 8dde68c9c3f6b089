package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-assistant-go/internal/models"
)

func day(d int) time.Time {
	return time.Date(2025, time.January, d, 0, 0, 0, 0, time.UTC)
}

func equityTrade(d int, price string, qty, net float64) models.TradeRecord {
	return models.TradeRecord{
		TradeDate: day(d),
		Symbol:    "AAPL",
		Class:     models.SecurityEquity,
		Quantity:  qty,
		UnitPrice: price,
		NetAmount: net,
	}
}

func TestAggregateEmpty(t *testing.T) {
	stat := Aggregate(nil)
	assert.Nil(t, stat.Highest)
	assert.Nil(t, stat.Lowest)
	assert.Nil(t, stat.Average)
	assert.Equal(t, 0, stat.TradeCount)
	assert.Zero(t, stat.TotalQuantity)
	assert.Zero(t, stat.TotalNotional)
}

func TestAggregateExtremesAndAverage(t *testing.T) {
	trades := []models.TradeRecord{
		equityTrade(4, "10", 1, -10),
		equityTrade(3, "20", 2, -40),
		equityTrade(2, "20", 3, -60),
		equityTrade(1, "5", 4, 20),
	}

	stat := Aggregate(trades)
	require.NotNil(t, stat.Highest)
	require.NotNil(t, stat.Lowest)
	require.NotNil(t, stat.Average)

	// Two records tie at 20; the first in input order (index 1, the more
	// recent under descending-date ordering) is the representative.
	assert.Equal(t, 20.0, stat.Highest.Price)
	assert.Equal(t, day(3), stat.Highest.Date)
	assert.Equal(t, 2.0, stat.Highest.Quantity)

	assert.Equal(t, 5.0, stat.Lowest.Price)
	assert.Equal(t, day(1), stat.Lowest.Date)

	// Unweighted mean, not volume-weighted.
	assert.InDelta(t, (10.0+20+20+5)/4, *stat.Average, 1e-9)
	assert.Equal(t, 4, stat.TradeCount)
	assert.Equal(t, 10.0, stat.TotalQuantity)
	// Notional strips the sign from net amounts before summing.
	assert.InDelta(t, 130.0, stat.TotalNotional, 1e-9)
}

func TestAggregateTieBreakDeterministic(t *testing.T) {
	trades := []models.TradeRecord{
		equityTrade(9, "42", 1, -42),
		equityTrade(2, "42", 7, -42),
	}
	first := Aggregate(trades)
	for i := 0; i < 5; i++ {
		again := Aggregate(trades)
		assert.Equal(t, first.Highest, again.Highest)
		assert.Equal(t, first.Lowest, again.Lowest)
	}
	assert.Equal(t, day(9), first.Highest.Date)
	assert.Equal(t, day(9), first.Lowest.Date)
}

func TestAggregateSkipsBadPrices(t *testing.T) {
	trades := []models.TradeRecord{
		equityTrade(5, "not-a-number", 1, -10),
		equityTrade(4, "0", 1, -10),
		equityTrade(3, "-3", 1, -10),
		equityTrade(2, "15", 2, -30),
	}

	stat := Aggregate(trades)
	require.NotNil(t, stat.Highest)
	assert.Equal(t, 15.0, stat.Highest.Price)
	assert.Equal(t, 1, stat.TradeCount)
	assert.Equal(t, 2.0, stat.TotalQuantity)
	assert.InDelta(t, 30.0, stat.TotalNotional, 1e-9)
}

func TestAggregateAllBadPrices(t *testing.T) {
	trades := []models.TradeRecord{
		equityTrade(1, "", 1, -10),
		equityTrade(2, "zero", 1, -10),
	}
	stat := Aggregate(trades)
	assert.Nil(t, stat.Highest)
	assert.Nil(t, stat.Lowest)
	assert.Nil(t, stat.Average)
	assert.Equal(t, 0, stat.TradeCount)
}

func TestAggregateDoesNotMutateInput(t *testing.T) {
	trades := []models.TradeRecord{equityTrade(1, "10", 1, -10)}
	before := trades[0]
	Aggregate(trades)
	assert.Equal(t, before, trades[0])
}
