package orchestrator

import "portfolio-assistant-go/internal/intent"

// Payload is the structured card handed to rendering. It is a tagged
// union keyed by Intent: exactly one variant pointer is populated, so
// producer and consumer agree statically on each variant's fields. All
// currency values are rounded to two decimal places here and nowhere
// earlier.
type Payload struct {
	Intent intent.Tag `json:"intent"`

	PriceStats       *PriceStatsPayload       `json:"price_stats,omitempty"`
	ProfitableTrades *ProfitableTradesPayload `json:"profitable_trades,omitempty"`
	TimeWindowTrades *TimeWindowTradesPayload `json:"time_window_trades,omitempty"`
	TradeSummary     *TradeSummaryPayload     `json:"trade_summary,omitempty"`
	OptionTrades     *OptionTradesPayload     `json:"option_trades,omitempty"`
	LastOptionTrade  *OptionTradeItem         `json:"last_option_trade,omitempty"`
	StrikeExtreme    *StrikeExtremePayload    `json:"strike_extreme,omitempty"`
	TotalPremium     *TotalPremiumPayload     `json:"total_premium,omitempty"`
	ExpiringOptions  *ExpiringOptionsPayload  `json:"expiring_options,omitempty"`
	AccountBalance   *AccountBalancePayload   `json:"account_balance,omitempty"`
	Fees             *FeesPayload             `json:"fees,omitempty"`
}

// WindowPayload describes the resolved time window on a card.
type WindowPayload struct {
	Description     string `json:"description"`
	DisplayRange    string `json:"display_range"`
	TradingDayCount int    `json:"trading_day_count"`
}

// PriceStatsPayload backs both the price-extremes and average-price
// cards. Pointer fields are absent — not zero — when no trade carried a
// usable price.
type PriceStatsPayload struct {
	Symbol          string   `json:"symbol"`
	Period          string   `json:"period,omitempty"`
	Direction       string   `json:"direction,omitempty"`
	Highest         *float64 `json:"highest,omitempty"`
	HighestDate     string   `json:"highest_date,omitempty"`
	HighestQuantity float64  `json:"highest_quantity,omitempty"`
	Lowest          *float64 `json:"lowest,omitempty"`
	LowestDate      string   `json:"lowest_date,omitempty"`
	LowestQuantity  float64  `json:"lowest_quantity,omitempty"`
	Average         *float64 `json:"average,omitempty"`
	TradeCount      int      `json:"trade_count"`
	TotalQuantity   float64  `json:"total_quantity"`
	TotalNotional   float64  `json:"total_notional"`
}

// ProfitableTradesPayload lists closed round-trips with positive realized
// P&L, ordered by profit descending.
type ProfitableTradesPayload struct {
	Symbol                string          `json:"symbol,omitempty"`
	TotalProfitableTrades int             `json:"total_profitable_trades"`
	TotalProfit           float64         `json:"total_profit"`
	Trades                []RoundTripItem `json:"trades"`
}

// RoundTripItem is one closed position on the profitable-trades card.
type RoundTripItem struct {
	SecurityClass string  `json:"security_class"`
	Symbol        string  `json:"symbol"`
	BuyDate       string  `json:"buy_date"`
	SellDate      string  `json:"sell_date"`
	Quantity      float64 `json:"quantity"`
	BuyPrice      float64 `json:"buy_price"`
	SellPrice     float64 `json:"sell_price"`
	ProfitLoss    float64 `json:"profit_loss"`
}

// TimeWindowTradesPayload lists the trades inside a resolved window.
type TimeWindowTradesPayload struct {
	Window  WindowPayload      `json:"window"`
	Summary TradeWindowSummary `json:"summary"`
	Trades  []TradeItem        `json:"trades"`
}

// TradeWindowSummary aggregates the listed window.
type TradeWindowSummary struct {
	TotalTrades   int      `json:"total_trades"`
	EquityCount   int      `json:"equity_count"`
	OptionCount   int      `json:"option_count"`
	TotalNotional float64  `json:"total_notional"`
	AveragePrice  *float64 `json:"average_price,omitempty"`
}

// TradeItem is one trade row on a listing card.
type TradeItem struct {
	Date      string  `json:"date"`
	Symbol    string  `json:"symbol"`
	Class     string  `json:"class"`
	Direction string  `json:"direction"`
	Quantity  float64 `json:"quantity"`
	Price     float64 `json:"price"`
	NetAmount float64 `json:"net_amount"`
}

// TradeSummaryPayload backs the bare count summary and the combined
// stock-and-option summary.
type TradeSummaryPayload struct {
	Period      string `json:"period,omitempty"`
	TotalTrades int    `json:"total_trades"`
	EquityCount int    `json:"equity_count"`
	OptionCount int    `json:"option_count"`
}

// OptionTradesPayload lists option trades for the bulk and advanced
// option queries.
type OptionTradesPayload struct {
	Symbol       string            `json:"symbol,omitempty"`
	Right        string            `json:"right,omitempty"`
	Direction    string            `json:"direction,omitempty"`
	Period       string            `json:"period,omitempty"`
	TotalPremium float64           `json:"total_premium"`
	Trades       []OptionTradeItem `json:"trades"`
}

// OptionTradeItem is one option contract row.
type OptionTradeItem struct {
	Date       string  `json:"date"`
	Underlying string  `json:"underlying"`
	Right      string  `json:"right"`
	Strike     float64 `json:"strike"`
	Expiration string  `json:"expiration,omitempty"`
	Direction  string  `json:"direction"`
	Quantity   float64 `json:"quantity"`
	Premium    float64 `json:"premium"`
	NetAmount  float64 `json:"net_amount"`
}

// StrikeExtremePayload is the highest/lowest strike card.
type StrikeExtremePayload struct {
	Extreme    string  `json:"extreme"` // "highest" or "lowest"
	Strike     float64 `json:"strike"`
	Underlying string  `json:"underlying"`
	Right      string  `json:"right,omitempty"`
	Date       string  `json:"date"`
	Expiration string  `json:"expiration,omitempty"`
}

// TotalPremiumPayload is the aggregate premium card. Premium is per-share;
// the total applies the 100-share contract multiplier.
type TotalPremiumPayload struct {
	Symbol        string  `json:"symbol,omitempty"`
	Period        string  `json:"period,omitempty"`
	Direction     string  `json:"direction,omitempty"`
	TotalPremium  float64 `json:"total_premium"`
	ContractCount float64 `json:"contract_count"`
	TradeCount    int     `json:"trade_count"`
}

// ExpiringOptionsPayload lists contracts whose expiration falls inside the
// forward horizon.
type ExpiringOptionsPayload struct {
	Horizon   WindowPayload     `json:"horizon"`
	Contracts []OptionTradeItem `json:"contracts"`
}

// AccountBalancePayload renders the balance figure the assistant stated.
type AccountBalancePayload struct {
	Kind   string  `json:"kind"`
	Amount float64 `json:"amount"`
}

// FeesPayload is the aggregate fees card, derived from the gross/net
// spread of the records in the period.
type FeesPayload struct {
	Period     string  `json:"period,omitempty"`
	TotalFees  float64 `json:"total_fees"`
	TradeCount int     `json:"trade_count"`
}
