package intent

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"portfolio-assistant-go/internal/models"
)

// 2025-03-12 is a Wednesday.
var anchor = time.Date(2025, time.March, 12, 0, 0, 0, 0, time.UTC)

func resolve(t *testing.T, text, priorSymbol string) *Resolution {
	t.Helper()
	return NewResolver(zap.NewNop()).Resolve(text, priorSymbol, anchor)
}

func TestCascadeTags(t *testing.T) {
	testCases := []struct {
		name  string
		reply string
		prior string
		want  Tag
	}{
		{
			name:  "account balance",
			reply: "Your current buying power is $12,450.32.",
			want:  TagAccountBalance,
		},
		{
			name:  "margin balance",
			reply: "Your margin used is $3,200 and your net liquidation value is $54,100.",
			want:  TagAccountBalance,
		},
		{
			name:  "fees",
			reply: "You paid $45.20 in fees this month.",
			want:  TagFees,
		},
		{
			name:  "commissions",
			reply: "Total commissions for the year came to $112.80.",
			want:  TagFees,
		},
		{
			name:  "expiring options",
			reply: "You have 2 option contracts expiring this week.",
			want:  TagExpiringOptions,
		},
		{
			name:  "stock and option combined summary",
			reply: "You made 8 stock trades and 4 option trades last week.",
			want:  TagStockAndOptionTrades,
		},
		{
			name:  "bulk option trades",
			reply: "You made 4 option trades this week.",
			want:  TagOptionTrades,
		},
		{
			name:  "most recent option trade",
			reply: "Your most recent option trade was a TSLA call bought at $3.20.",
			want:  TagLastOptionTrade,
		},
		{
			name:  "highest strike",
			reply: "Your highest strike was $450 on an NVDA call.",
			want:  TagStrikeExtreme,
		},
		{
			name:  "total premium",
			reply: "You collected $1,240 in premiums this month.",
			want:  TagTotalPremium,
		},
		{
			name:  "advanced option filter",
			reply: "You sold 3 SPY puts last week at $2.10 each.",
			want:  TagAdvancedOptionQuery,
		},
		{
			name:  "time window listing",
			reply: "Here are your trades from the last 3 trading days.",
			prior: "AAPL",
			want:  TagTimeWindowTrades,
		},
		{
			name:  "average price",
			reply: "Your average price for AAPL this month was $182.40.",
			want:  TagAveragePrice,
		},
		{
			name:  "full price statistics",
			reply: "The highest price you paid was $198.50 and the lowest was $172.10 across 12 trades.",
			want:  TagPriceExtremes,
		},
		{
			name:  "profitable trades",
			reply: "You have 2 profitable trades totaling $340.",
			want:  TagProfitableTrades,
		},
		{
			name:  "profitable count with symbol interposed",
			reply: "You had 1 profitable TSLA trade this month, netting $150.",
			want:  TagProfitableTrades,
		},
		{
			name:  "profitable count over option trades",
			reply: "You closed 3 profitable option trades, up $940.",
			want:  TagProfitableTrades,
		},
		{
			name:  "detailed listing",
			reply: "You sold 100 shares of Apple at $182.50, netting $18,230 after fees.",
			want:  TagDetailedTrades,
		},
		{
			name:  "bare trade count summary",
			reply: "You made 12 trades in total.",
			want:  TagTradeSummary,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res := resolve(t, tc.reply, tc.prior)
			require.NotNil(t, res)
			assert.Equal(t, tc.want, res.Tag)
		})
	}
}

func TestCascadeNoMatch(t *testing.T) {
	for _, reply := range []string{
		"Hello! How can I help you today?",
		"Sure, sounds good.",
		"Your cash balance is looking healthy.", // balance words but no amount
	} {
		assert.Nil(t, resolve(t, reply, ""), "reply %q should not resolve", reply)
	}
}

func TestStillCheckingGuard(t *testing.T) {
	// Announcing a lookup without result data renders no card.
	assert.Nil(t, resolve(t, "I'll check your profitable trades.", ""))
	assert.Nil(t, resolve(t, "Let me pull up your account balance.", ""))
	assert.Nil(t, resolve(t, "One moment, checking your trades now...", ""))

	// The same announcement with concrete data is a real result.
	res := resolve(t, "Let me recap: you made 3 AAPL trades today.", "")
	require.NotNil(t, res)
	assert.Equal(t, TagTimeWindowTrades, res.Tag)
}

func TestCascadeOrdering(t *testing.T) {
	t.Run("expiring beats bulk option even when the count pattern matches", func(t *testing.T) {
		// "2 option contracts" satisfies the bulk pattern too.
		res := resolve(t, "You have 2 option contracts expiring this week.", "")
		require.NotNil(t, res)
		assert.Equal(t, TagExpiringOptions, res.Tag)
	})

	t.Run("mixed summary beats bulk options", func(t *testing.T) {
		res := resolve(t, "You made 8 stock trades and 4 option trades last week.", "")
		require.NotNil(t, res)
		assert.Equal(t, TagStockAndOptionTrades, res.Tag)
	})

	t.Run("bulk options beat the single most-recent pattern", func(t *testing.T) {
		res := resolve(t, "Here are your 4 option trades, the latest option trade first.", "")
		require.NotNil(t, res)
		assert.Equal(t, TagOptionTrades, res.Tag)
	})

	t.Run("average yields to full statistics when both extremes present", func(t *testing.T) {
		res := resolve(t, "Highest $198.50, lowest $172.10, average price $185.30.", "")
		require.NotNil(t, res)
		assert.Equal(t, TagPriceExtremes, res.Tag)
	})

	t.Run("windowed profitable count defers to profitable trades", func(t *testing.T) {
		// "you had" + "this month" + "trade" satisfies the window-listing
		// rule too; the profit-count guard must hand it down even with a
		// ticker between "profitable" and "trade".
		res := resolve(t, "You had 1 profitable TSLA trade this month, netting $150.", "")
		require.NotNil(t, res)
		assert.Equal(t, TagProfitableTrades, res.Tag)
	})

	t.Run("passing mention of profit stays a generic listing", func(t *testing.T) {
		res := resolve(t, "Here are your trades; you sold 100 shares of AAPL at $182.50 for a tidy sum.", "")
		require.NotNil(t, res)
		assert.Equal(t, TagDetailedTrades, res.Tag)
	})
}

// The rule 6 / rule 13 conflict from the cascade contract: a reply carrying
// both triggers resolves to last-option-trade only while the bulk-query
// signal is absent, and to profitable-trades otherwise — never to both.
func TestLastOptionVersusProfitable(t *testing.T) {
	t.Run("no bulk signal resolves to last option trade", func(t *testing.T) {
		res := resolve(t, "Your latest option trade realized a profit of $120.", "")
		require.NotNil(t, res)
		assert.Equal(t, TagLastOptionTrade, res.Tag)
	})

	t.Run("bulk signal present falls through to profitable trades", func(t *testing.T) {
		res := resolve(t, "Across your 5 trades, your latest option trade realized a profit of $120.", "")
		require.NotNil(t, res)
		assert.Equal(t, TagProfitableTrades, res.Tag)
	})
}

func TestCascadeEntities(t *testing.T) {
	t.Run("balance amount and kind", func(t *testing.T) {
		res := resolve(t, "Your current buying power is $12,450.32.", "")
		require.NotNil(t, res)
		assert.True(t, res.Entities.HasAmount)
		assert.InDelta(t, 12450.32, res.Entities.Amount, 1e-9)
		assert.Equal(t, "buying power", res.Entities.BalanceKind)
	})

	t.Run("option entities", func(t *testing.T) {
		res := resolve(t, "You sold 3 SPY puts last week at $2.10 each.", "")
		require.NotNil(t, res)
		assert.Equal(t, "SPY", res.Entities.Symbol)
		assert.Equal(t, models.DirectionSell, res.Entities.Direction)
		assert.Equal(t, models.RightPut, res.Entities.Right)
		require.NotNil(t, res.Entities.Window)
		assert.Equal(t, "last week", res.Entities.Window.Description)
	})

	t.Run("strike extreme side", func(t *testing.T) {
		res := resolve(t, "Your lowest strike this year is $95 on a PLTR put.", "")
		require.NotNil(t, res)
		assert.Equal(t, TagStrikeExtreme, res.Tag)
		assert.Equal(t, "lowest", res.Entities.Extreme)
		assert.Equal(t, "PLTR", res.Entities.Symbol)
	})

	t.Run("expiry window looks forward", func(t *testing.T) {
		res := resolve(t, "You have 2 option contracts expiring tomorrow.", "")
		require.NotNil(t, res)
		require.NotNil(t, res.Entities.ExpiryWindow)
		assert.Equal(t, anchor.AddDate(0, 0, 1), res.Entities.ExpiryWindow.Start)
		assert.Equal(t, res.Entities.ExpiryWindow.Start, res.Entities.ExpiryWindow.End)
	})

	t.Run("company name resolved through normalizer", func(t *testing.T) {
		res := resolve(t, "You sold 100 shares of Apple at $182.50, netting $18,230 after fees.", "")
		require.NotNil(t, res)
		assert.Equal(t, "AAPL", res.Entities.Symbol)
	})

	t.Run("prior symbol used when the reply names none", func(t *testing.T) {
		res := resolve(t, "Here are your trades from the last 3 trading days.", "NVDA")
		require.NotNil(t, res)
		assert.Equal(t, "NVDA", res.Entities.Symbol)
		assert.False(t, res.Entities.PortfolioWide)
		require.NotNil(t, res.Entities.Window)
		assert.Equal(t, 3, res.Entities.Window.TradingDays)
	})

	t.Run("bought and sold together means either direction", func(t *testing.T) {
		res := resolve(t, "You bought and sold AAPL calls 3 times today.", "")
		require.NotNil(t, res)
		assert.Equal(t, models.DirectionEither, res.Entities.Direction)
	})
}

func TestPortfolioWide(t *testing.T) {
	t.Run("bare weekday with no symbol", func(t *testing.T) {
		res := resolve(t, "Here are your trades from Monday.", "")
		require.NotNil(t, res)
		assert.Equal(t, TagTimeWindowTrades, res.Tag)
		assert.True(t, res.Entities.PortfolioWide)
		assert.Empty(t, res.Entities.Symbol)
	})

	t.Run("weekday with an independently extracted symbol stays scoped", func(t *testing.T) {
		res := resolve(t, "Here are your AAPL trades from Monday.", "")
		require.NotNil(t, res)
		assert.False(t, res.Entities.PortfolioWide)
		assert.Equal(t, "AAPL", res.Entities.Symbol)
	})

	t.Run("multiple symbols force portfolio-wide", func(t *testing.T) {
		res := resolve(t, "You traded AAPL, MSFT and NVDA yesterday.", "")
		require.NotNil(t, res)
		assert.Equal(t, TagTimeWindowTrades, res.Tag)
		assert.True(t, res.Entities.PortfolioWide)
		assert.Empty(t, res.Entities.Symbol)
	})
}

func TestCascadeShortCircuitDeterminism(t *testing.T) {
	reply := "You made 4 option trades this week."
	first := resolve(t, reply, "")
	require.NotNil(t, first)
	for i := 0; i < 10; i++ {
		again := resolve(t, reply, "")
		require.NotNil(t, again)
		assert.Equal(t, first.Tag, again.Tag)
	}
}
