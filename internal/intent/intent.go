// Package intent resolves an assistant's free-form reply into one of the
// analytical intents and the entities needed to back it with a query.
//
// Resolution is a priority-ordered cascade of mutually exclusive
// detectors. Each detector either claims the reply or defers; the chain
// short-circuits at the first claim, so the fixed ordering is part of the
// contract — higher rules are more specific and would be masked by the
// broader rules below them.
package intent

import (
	"portfolio-assistant-go/internal/models"
	"portfolio-assistant-go/internal/timewindow"
)

// Tag identifies which analytical card a reply resolves to.
type Tag string

const (
	TagAccountBalance       Tag = "account-balance"
	TagFees                 Tag = "fees"
	TagExpiringOptions      Tag = "expiring-options"
	TagStockAndOptionTrades Tag = "stock-and-option-trades"
	TagOptionTrades         Tag = "option-trades"
	TagLastOptionTrade      Tag = "last-option-trade"
	TagStrikeExtreme        Tag = "highest-or-lowest-strike"
	TagTotalPremium         Tag = "total-premium"
	TagAdvancedOptionQuery  Tag = "advanced-option-query"
	TagTimeWindowTrades     Tag = "time-window-trades"
	TagAveragePrice         Tag = "average-price"
	TagPriceExtremes        Tag = "price-extremes"
	TagProfitableTrades     Tag = "profitable-trades"
	TagDetailedTrades       Tag = "detailed-trades"
	TagTradeSummary         Tag = "trade-summary"
)

// Entities is the parameter bag extracted alongside an intent.
type Entities struct {
	// Symbol is the resolved ticker, empty for portfolio-wide queries.
	Symbol    string
	Direction models.Direction
	Right     models.OptionRight

	// TimePhrase is the raw matched phrase; Window its resolution against
	// the anchor date. Both empty/nil when the reply carried no time
	// reference.
	TimePhrase string
	Window     *timewindow.Window

	// Expiration horizon for expiring-options queries (forward-looking).
	ExpiryPhrase string
	ExpiryWindow *timewindow.Window

	// PortfolioWide marks queries that span all symbols: bare weekday
	// phrases with no independently extracted symbol, or replies naming
	// several symbols.
	PortfolioWide bool

	// Extreme is "highest" or "lowest" for strike queries.
	Extreme string

	// Amount is the first currency amount stated in the reply; balance and
	// fee cards render it directly.
	Amount    float64
	HasAmount bool

	// BalanceKind is the balance keyword that fired (e.g. "buying power").
	BalanceKind string
}

// Resolution is a claimed intent plus its entities.
type Resolution struct {
	Tag      Tag
	Entities Entities
}
