package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"portfolio-assistant-go/internal/models"
)

func day(d int) time.Time {
	return time.Date(2025, 3, d, 0, 0, 0, 0, time.UTC)
}

func record(account, external string, d time.Time, symbol, underlying string, class models.SecurityClass, dir models.Direction) models.TradeRecord {
	return models.TradeRecord{
		ExternalID: external,
		AccountID:  account,
		TradeDate:  d,
		Symbol:     symbol,
		Underlying: underlying,
		Class:      class,
		Direction:  dir,
		Quantity:   1,
		UnitPrice:  "100.00",
	}
}

func newTestStore(t *testing.T) *TradeStore {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.TradeRecord{}))

	seed := []models.TradeRecord{
		record("acct-1", "t1", day(3), "AAPL", "AAPL", models.SecurityEquity, models.DirectionBuy),
		record("acct-1", "t2", day(5), "AAPL", "AAPL", models.SecurityEquity, models.DirectionSell),
		record("acct-1", "t3", day(5), "AAPL 250321C00190000", "AAPL", models.SecurityOption, models.DirectionBuy),
		record("acct-1", "t4", day(7), "TSLA", "TSLA", models.SecurityEquity, models.DirectionBuy),
		// Same external id under another account; the uniqueness is per
		// (account, external id).
		record("acct-2", "t1", day(3), "AAPL", "AAPL", models.SecurityEquity, models.DirectionBuy),
	}
	require.NoError(t, db.Create(&seed).Error)

	return NewTradeStore(db, zap.NewNop())
}

func externalIDs(trades []models.TradeRecord) []string {
	ids := make([]string, 0, len(trades))
	for _, tr := range trades {
		ids = append(ids, tr.ExternalID)
	}
	return ids
}

func TestQueryTrades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	t.Run("ScopedToAccount", func(t *testing.T) {
		trades, err := s.QueryTrades(ctx, TradeFilter{AccountID: "acct-2"})
		require.NoError(t, err)
		assert.Equal(t, []string{"t1"}, externalIDs(trades))
	})

	t.Run("SymbolMatchesUnderlyingToo", func(t *testing.T) {
		trades, err := s.QueryTrades(ctx, TradeFilter{AccountID: "acct-1", Symbol: "AAPL"})
		require.NoError(t, err)
		assert.Len(t, trades, 3, "the option row must match via its underlying")
	})

	t.Run("ClassFilter", func(t *testing.T) {
		trades, err := s.QueryTrades(ctx, TradeFilter{AccountID: "acct-1", Class: models.SecurityOption})
		require.NoError(t, err)
		assert.Equal(t, []string{"t3"}, externalIDs(trades))
	})

	t.Run("DirectionFilter", func(t *testing.T) {
		trades, err := s.QueryTrades(ctx, TradeFilter{AccountID: "acct-1", Direction: models.DirectionSell})
		require.NoError(t, err)
		assert.Equal(t, []string{"t2"}, externalIDs(trades))
	})

	t.Run("DateRangeInclusive", func(t *testing.T) {
		from, to := day(5), day(7)
		trades, err := s.QueryTrades(ctx, TradeFilter{
			AccountID: "acct-1",
			DateFrom:  &from,
			DateTo:    &to,
			Ascending: true,
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"t2", "t3", "t4"}, externalIDs(trades))
	})

	t.Run("DescendingOrderWithExternalIDTieBreak", func(t *testing.T) {
		trades, err := s.QueryTrades(ctx, TradeFilter{AccountID: "acct-1"})
		require.NoError(t, err)
		assert.Equal(t, []string{"t4", "t3", "t2", "t1"}, externalIDs(trades))
	})

	t.Run("AscendingOrderForLotMatching", func(t *testing.T) {
		trades, err := s.QueryTrades(ctx, TradeFilter{AccountID: "acct-1", Ascending: true})
		require.NoError(t, err)
		assert.Equal(t, []string{"t1", "t2", "t3", "t4"}, externalIDs(trades))
	})

	t.Run("NoMatchesIsEmptyNotError", func(t *testing.T) {
		trades, err := s.QueryTrades(ctx, TradeFilter{AccountID: "acct-1", Symbol: "MSFT"})
		require.NoError(t, err)
		assert.Empty(t, trades)
	})
}
