package models

import (
	"strconv"
	"time"

	"gorm.io/gorm"
)

// SecurityClass distinguishes stock trades from option trades.
type SecurityClass string

const (
	SecurityEquity SecurityClass = "EQUITY"
	SecurityOption SecurityClass = "OPTION"
)

// Direction is the side of a trade. The empty value means "either side"
// when used as a query filter.
type Direction string

const (
	DirectionBuy    Direction = "BUY"
	DirectionSell   Direction = "SELL"
	DirectionEither Direction = ""
)

// OptionRight is the contract right of an option trade. Empty for equities
// and for "no filter" in queries.
type OptionRight string

const (
	RightCall OptionRight = "CALL"
	RightPut  OptionRight = "PUT"
)

// ContractMultiplier is the number of underlying shares one option
// contract represents.
const ContractMultiplier = 100

// TradeRecord is a settled trade row as supplied by the brokerage feed.
// Records are immutable once created; corrections arrive as new offsetting
// records. At most one record per (account, external id).
type TradeRecord struct {
	gorm.Model

	ExternalID string `gorm:"uniqueIndex:idx_account_external" json:"external_id"`
	AccountID  string `gorm:"uniqueIndex:idx_account_external;index" json:"account_id"`

	// TradeDate is a calendar date; the time-of-day component is always midnight UTC.
	TradeDate time.Time `gorm:"index" json:"trade_date"`
	Symbol    string    `gorm:"index" json:"symbol"`

	// Underlying equals Symbol for equity records and the underlying ticker
	// for option records.
	Underlying string        `gorm:"index" json:"underlying"`
	Class      SecurityClass `json:"class"`
	Direction  Direction     `json:"direction"`

	// Quantity is shares for equities and contracts for options.
	Quantity float64 `json:"quantity"`

	// UnitPrice is the per-share trade price (equity) or per-share premium
	// (option), as the upstream feed delivered it. Kept as a string so a
	// malformed value can be skipped instead of silently becoming zero.
	UnitPrice string `json:"unit_price"`

	// Option-only fields.
	Strike     float64     `json:"strike,omitempty"`
	Expiration *time.Time  `json:"expiration,omitempty"`
	Right      OptionRight `json:"right,omitempty"`

	GrossAmount float64 `json:"gross_amount"`

	// NetAmount is signed: negative for purchases, positive for sales, after fees.
	NetAmount float64 `json:"net_amount"`
}

// Price parses the record's unit price. ok is false for a malformed or
// non-positive value; such records are excluded from extremum and average
// computation rather than aborting the whole aggregation.
func (t *TradeRecord) Price() (float64, bool) {
	p, err := strconv.ParseFloat(t.UnitPrice, 64)
	if err != nil || p <= 0 {
		return 0, false
	}
	return p, true
}
