package intent

import (
	"regexp"
	"time"

	"go.uber.org/zap"

	"portfolio-assistant-go/internal/timewindow"
)

var (
	balanceRe = regexp.MustCompile(`\b(?:cash balance|buying power|net liquidation|account value|margin (?:balance|used|available)|market value|debit balance|credit balance|available (?:cash|funds))\b`)
	feeRe     = regexp.MustCompile(`\b(?:total fees|in fees|fees? (?:paid|charged|totaled)|commissions? (?:paid|charged|totaled)|total commissions?|interest (?:charged|paid|accrued)|regulatory charges?)\b`)
	expireRe  = regexp.MustCompile(`\bexpir(?:e|es|ing|ation)\b`)
	horizonRe = regexp.MustCompile(`\b(?:today|tomorrow|this week|next week|this month|next month)\b`)

	stockCountRe  = regexp.MustCompile(`\b\d+\s+(?:stock|equity)\s+trades?\b`)
	optionCountRe = regexp.MustCompile(`\b\d+\s+option\s+trades?\b`)

	bulkOptionRe = regexp.MustCompile(`\b\d+\s+option\s+(?:trades?|contracts?|positions?)\b|\ball (?:of )?(?:your|the) option trades\b|\bhere are your option trades\b`)
	lastOptionRe = regexp.MustCompile(`\b(?:most recent|last|latest)\s+(?:option|call|put)\b`)

	strikeRe  = regexp.MustCompile(`\b(highest|lowest)\s+strike\b`)
	premiumRe = regexp.MustCompile(`\btotal premiums?\b|\bpremiums? (?:paid|collected|received)\b|\bin premiums?\b`)

	listingRe    = regexp.MustCompile(`\bhere (?:are|is)\b|\byou (?:made|had|have|executed|placed|bought|sold|traded)\b|\bfilled at\b`)
	sharesRe     = regexp.MustCompile(`\bshares?\b`)
	tradeCountRe = regexp.MustCompile(`\b\d+\s+(?:stock\s+|equity\s+|option\s+)?trades?\b`)

	averageRe = regexp.MustCompile(`\baverage\s+(?:price|cost|premium)\b|\bavg\.?\s+price\b`)
	rangeRe   = regexp.MustCompile(`\bprice range\b|\bhigh and low\b`)

	// The count form tolerates one interposed token so "2 profitable TSLA
	// trades" and "3 profitable option trades" both count.
	profitableRe = regexp.MustCompile(`\b(?:\d+|no|one|two|three|four|five|six|seven|eight|nine|ten)\s+profitable(?:\s+[a-z.]{1,10})?\s+trades?\b|\bmost profitable\b|\brealized (?:a\s+)?(?:net\s+)?(?:profit|gain)s?\b|\btotal profit\b|\bprofit of \$`)
)

type detectFunc func(*reply) (Resolution, bool)

type namedDetector struct {
	name   string
	detect detectFunc
}

// Resolver runs the detector cascade. Safe for concurrent use; it holds
// no mutable state beyond the fixed chain built at construction.
type Resolver struct {
	logger    *zap.Logger
	detectors []namedDetector
}

// NewResolver builds the cascade in its fixed precedence order. The order
// is load-bearing: reordering entries changes which card a reply selects.
func NewResolver(logger *zap.Logger) *Resolver {
	return &Resolver{
		logger: logger,
		detectors: []namedDetector{
			{"account-balance", detectAccountBalance},
			{"fees", detectFees},
			{"expiring-options", detectExpiringOptions},
			{"stock-and-option-trades", detectStockAndOption},
			{"bulk-option-trades", detectBulkOptions},
			{"last-option-trade", detectLastOption},
			{"strike-extreme", detectStrike},
			{"total-premium", detectTotalPremium},
			{"advanced-option-query", detectAdvancedOption},
			{"time-window-trades", detectTimeWindowTrades},
			{"average-price", detectAveragePrice},
			{"price-extremes", detectPriceStats},
			{"profitable-trades", detectProfitable},
			{"detailed-trades", detectDetailedTrades},
			{"trade-summary", detectTradeSummary},
		},
	}
}

// Resolve inspects a reply and returns the first detector's claim, or nil
// when no detector fires — the expected common case, shown as plain text.
func (c *Resolver) Resolve(text, priorSymbol string, anchor time.Time) *Resolution {
	r := newReply(text, priorSymbol, anchor)
	if r.deferral() {
		return nil
	}
	for _, d := range c.detectors {
		if res, ok := d.detect(r); ok {
			c.logger.Debug("intent resolved",
				zap.String("detector", d.name),
				zap.String("tag", string(res.Tag)))
			return &res
		}
	}
	return nil
}

// Rule 1: balance-domain keywords gated on a currency amount being present.
func detectAccountBalance(r *reply) (Resolution, bool) {
	kind := balanceRe.FindString(r.lower)
	if kind == "" || !r.hasCurrency() {
		return Resolution{}, false
	}
	e := Entities{BalanceKind: kind}
	e.Amount, e.HasAmount = r.firstAmount()
	return Resolution{Tag: TagAccountBalance, Entities: e}, true
}

// Rule 2: fee-domain keywords, same currency gate.
func detectFees(r *reply) (Resolution, bool) {
	if !feeRe.MatchString(r.lower) || !r.hasCurrency() {
		return Resolution{}, false
	}
	e := r.baseEntities()
	e.Amount, e.HasAmount = r.firstAmount()
	return Resolution{Tag: TagFees, Entities: e}, true
}

// Rule 3: expiring options. Checked before the bulk rule because an
// expiring reply also satisfies the bulk trade-count pattern.
func detectExpiringOptions(r *reply) (Resolution, bool) {
	if !expireRe.MatchString(r.lower) || !optionWordRe.MatchString(r.lower) {
		return Resolution{}, false
	}
	phrase := horizonRe.FindString(r.lower)
	if phrase == "" {
		return Resolution{}, false
	}
	e := r.baseEntities()
	e.ExpiryPhrase = phrase
	if w, ok := timewindow.ResolveForward(phrase, r.anchor); ok {
		e.ExpiryWindow = &w
	}
	return Resolution{Tag: TagExpiringOptions, Entities: e}, true
}

// Rule 4: combined stock-and-option summaries, before bulk options so a
// mixed summary is not rendered as options-only.
func detectStockAndOption(r *reply) (Resolution, bool) {
	if !stockCountRe.MatchString(r.lower) || !optionCountRe.MatchString(r.lower) {
		return Resolution{}, false
	}
	return Resolution{Tag: TagStockAndOptionTrades, Entities: r.baseEntities()}, true
}

// Rule 5: bulk option listings, before the single most-recent rule since a
// bulk response can accidentally satisfy the looser single-trade pattern.
func detectBulkOptions(r *reply) (Resolution, bool) {
	if !bulkOptionRe.MatchString(r.lower) {
		return Resolution{}, false
	}
	return Resolution{Tag: TagOptionTrades, Entities: r.baseEntities()}, true
}

// Rule 6: single most-recent option trade. Guard: only fires when the
// bulk-query signal — any explicit multi-trade counting language, not
// just the option-specific bulk pattern — is absent.
func detectLastOption(r *reply) (Resolution, bool) {
	if !lastOptionRe.MatchString(r.lower) || bulkSignal(r) {
		return Resolution{}, false
	}
	return Resolution{Tag: TagLastOptionTrade, Entities: r.baseEntities()}, true
}

func bulkSignal(r *reply) bool {
	return bulkOptionRe.MatchString(r.lower) || tradeCountRe.MatchString(r.lower)
}

// Rule 7: highest/lowest strike.
func detectStrike(r *reply) (Resolution, bool) {
	m := strikeRe.FindStringSubmatch(r.lower)
	if m == nil {
		return Resolution{}, false
	}
	e := r.baseEntities()
	e.Extreme = m[1]
	return Resolution{Tag: TagStrikeExtreme, Entities: e}, true
}

// Rule 8: total premium.
func detectTotalPremium(r *reply) (Resolution, bool) {
	if !premiumRe.MatchString(r.lower) {
		return Resolution{}, false
	}
	e := r.baseEntities()
	e.Amount, e.HasAmount = r.firstAmount()
	return Resolution{Tag: TagTotalPremium, Entities: e}, true
}

// Rule 9: general option filters — option language plus at least one
// concrete filter (side, right, symbol or window).
func detectAdvancedOption(r *reply) (Resolution, bool) {
	if !optionWordRe.MatchString(r.lower) || !r.hasConcreteData() {
		return Resolution{}, false
	}
	e := r.baseEntities()
	if e.Direction == "" && e.Right == "" && e.Symbol == "" && e.Window == nil {
		return Resolution{}, false
	}
	return Resolution{Tag: TagAdvancedOptionQuery, Entities: e}, true
}

// Rule 10: time-window trade listings. The stat-style rules below would be
// masked by a bare "window + trades" test, so listings that read as price
// statistics or profit narratives defer to rules 11-13.
func detectTimeWindowTrades(r *reply) (Resolution, bool) {
	if r.window == nil || !tradeWordRe.MatchString(r.lower) || !listingRe.MatchString(r.lower) {
		return Resolution{}, false
	}
	if profitableRe.MatchString(r.lower) || averageRe.MatchString(r.lower) || hasHighAndLow(r) {
		return Resolution{}, false
	}
	e := r.baseEntities()
	if r.multiSymbol() || (r.window.Weekday && r.symbolFromText == "") {
		e.PortfolioWide = true
		e.Symbol = ""
	}
	return Resolution{Tag: TagTimeWindowTrades, Entities: e}, true
}

// Rule 11: average price alone. Excluded when the reply also carries both
// highest and lowest language — that combination belongs to rule 12.
func detectAveragePrice(r *reply) (Resolution, bool) {
	if !averageRe.MatchString(r.lower) || hasHighAndLow(r) {
		return Resolution{}, false
	}
	return Resolution{Tag: TagAveragePrice, Entities: r.baseEntities()}, true
}

// Rule 12: full price statistics.
func detectPriceStats(r *reply) (Resolution, bool) {
	if !hasHighAndLow(r) && !rangeRe.MatchString(r.lower) {
		return Resolution{}, false
	}
	return Resolution{Tag: TagPriceExtremes, Entities: r.baseEntities()}, true
}

// Rule 13: profitable-trade narratives. Requires profit-specific phrasing;
// a listing that mentions "profit" in passing must not land here.
func detectProfitable(r *reply) (Resolution, bool) {
	if !profitableRe.MatchString(r.lower) {
		return Resolution{}, false
	}
	return Resolution{Tag: TagProfitableTrades, Entities: r.baseEntities()}, true
}

// Rule 14: generic detailed listings — listing language plus per-trade
// detail (currency amounts).
func detectDetailedTrades(r *reply) (Resolution, bool) {
	if !r.hasCurrency() || !listingRe.MatchString(r.lower) {
		return Resolution{}, false
	}
	if !tradeWordRe.MatchString(r.lower) && !sharesRe.MatchString(r.lower) {
		return Resolution{}, false
	}
	return Resolution{Tag: TagDetailedTrades, Entities: r.baseEntities()}, true
}

// Rule 15: bare trade-count summaries.
func detectTradeSummary(r *reply) (Resolution, bool) {
	if !tradeCountRe.MatchString(r.lower) {
		return Resolution{}, false
	}
	return Resolution{Tag: TagTradeSummary, Entities: r.baseEntities()}, true
}

func hasHighAndLow(r *reply) bool {
	return containsAll(r.lower, "highest", "lowest")
}

func containsAll(text string, words ...string) bool {
	for _, w := range words {
		if !contains(text, w) {
			return false
		}
	}
	return true
}

func contains(text, word string) bool {
	idx := indexWord(text, word)
	return idx >= 0
}

func indexWord(text, word string) int {
	for i := 0; i+len(word) <= len(text); i++ {
		if text[i:i+len(word)] != word {
			continue
		}
		leftOK := i == 0 || !isAlpha(text[i-1])
		rightOK := i+len(word) == len(text) || !isAlpha(text[i+len(word)])
		if leftOK && rightOK {
			return i
		}
	}
	return -1
}

func isAlpha(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
