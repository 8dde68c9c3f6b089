// Package orchestrator composes the engine: it resolves an assistant
// reply to an intent, fetches the matching trade records, runs the
// calculator or matcher, and returns the structured card payload. It is
// the only piece that performs I/O; the analytics it calls are pure.
package orchestrator

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"portfolio-assistant-go/internal/analytics"
	"portfolio-assistant-go/internal/cache"
	"portfolio-assistant-go/internal/classifier"
	"portfolio-assistant-go/internal/intent"
	"portfolio-assistant-go/internal/models"
	"portfolio-assistant-go/internal/store"
	"portfolio-assistant-go/internal/timewindow"
)

// Request is one assistant reply to resolve and back with data.
type Request struct {
	AccountID      string
	ConversationID string
	Reply          string
	// PriorSymbol is the conversation's current subject ticker, when the
	// transport layer already knows it.
	PriorSymbol string
	// Anchor is the date relative phrases resolve against. Threaded
	// explicitly so resolution never depends on the wall clock.
	Anchor time.Time
}

// AliasResolver scans free text for stored company-name aliases the
// static normalizer does not know.
type AliasResolver interface {
	ResolveText(ctx context.Context, text string) (string, bool)
}

// Orchestrator wires the resolver, the trade store and the analytics.
type Orchestrator struct {
	trades     store.TradeQuerier
	resolver   *intent.Resolver
	classifier classifier.ClassifierInterface // nil when the AI path is disabled
	aliases    AliasResolver                  // nil when no alias table is wired
	cache      *cache.Cache
	logger     *zap.Logger
	dayShift   int
}

// New creates a new Orchestrator. classifier and aliases may be nil.
func New(trades store.TradeQuerier, resolver *intent.Resolver, cls classifier.ClassifierInterface, aliases AliasResolver, c *cache.Cache, logger *zap.Logger, dayShift int) *Orchestrator {
	return &Orchestrator{
		trades:     trades,
		resolver:   resolver,
		classifier: cls,
		aliases:    aliases,
		cache:      c,
		logger:     logger,
		dayShift:   dayShift,
	}
}

// Respond resolves the reply and builds its card. A nil payload with a
// nil error means no card applies and the reply is shown as plain text —
// the expected common case.
func (o *Orchestrator) Respond(ctx context.Context, req Request) (*Payload, error) {
	prior := req.PriorSymbol
	if prior == "" && req.ConversationID != "" {
		if sym, ok := o.cache.GetSubjectSymbol(ctx, req.ConversationID); ok {
			prior = sym
		}
	}

	res := o.resolver.Resolve(req.Reply, prior, req.Anchor)
	if res == nil && o.classifier != nil {
		tag, err := o.classifier.Classify(ctx, req.Reply)
		if err != nil {
			// Advisory path only; degrade to plain text.
			o.logger.Debug("classifier declined", zap.Error(err))
		} else {
			res = &intent.Resolution{
				Tag:      tag,
				Entities: intent.ExtractEntities(req.Reply, prior, req.Anchor),
			}
		}
	}
	if res == nil {
		return nil, nil
	}

	// The static normalizer runs inside the cascade; the store-backed
	// alias table gets a second look only when it came up empty.
	if res.Entities.Symbol == "" && o.aliases != nil {
		if sym, ok := o.aliases.ResolveText(ctx, req.Reply); ok {
			res.Entities.Symbol = sym
		}
	}

	if res.Entities.Symbol != "" && req.ConversationID != "" {
		o.cache.SetSubjectSymbol(ctx, req.ConversationID, res.Entities.Symbol)
	}

	payload, err := o.buildPayload(ctx, req, res)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s payload: %w", res.Tag, err)
	}
	return payload, nil
}

func (o *Orchestrator) buildPayload(ctx context.Context, req Request, res *intent.Resolution) (*Payload, error) {
	e := res.Entities
	switch res.Tag {
	case intent.TagAccountBalance:
		return &Payload{Intent: res.Tag, AccountBalance: &AccountBalancePayload{
			Kind:   e.BalanceKind,
			Amount: round2(e.Amount),
		}}, nil

	case intent.TagFees:
		return o.feesPayload(ctx, req, e)

	case intent.TagPriceExtremes, intent.TagAveragePrice:
		return o.priceStatsPayload(ctx, req, res.Tag, e)

	case intent.TagProfitableTrades:
		return o.profitablePayload(ctx, req, e)

	case intent.TagTimeWindowTrades, intent.TagDetailedTrades:
		return o.timeWindowPayload(ctx, req, res.Tag, e)

	case intent.TagTradeSummary, intent.TagStockAndOptionTrades:
		return o.summaryPayload(ctx, req, res.Tag, e)

	case intent.TagOptionTrades, intent.TagAdvancedOptionQuery:
		return o.optionTradesPayload(ctx, req, res.Tag, e)

	case intent.TagLastOptionTrade:
		return o.lastOptionPayload(ctx, req, e)

	case intent.TagStrikeExtreme:
		return o.strikeExtremePayload(ctx, req, e)

	case intent.TagTotalPremium:
		return o.totalPremiumPayload(ctx, req, e)

	case intent.TagExpiringOptions:
		return o.expiringOptionsPayload(ctx, req, e)
	}
	return nil, fmt.Errorf("no payload builder for intent %q", res.Tag)
}

func (o *Orchestrator) priceStatsPayload(ctx context.Context, req Request, tag intent.Tag, e intent.Entities) (*Payload, error) {
	trades, err := o.fetch(ctx, req, e, "", false)
	if err != nil {
		return nil, err
	}
	stat := analytics.Aggregate(trades)

	p := &PriceStatsPayload{
		Symbol:        e.Symbol,
		Period:        period(e),
		Direction:     string(e.Direction),
		TradeCount:    stat.TradeCount,
		TotalQuantity: stat.TotalQuantity,
		TotalNotional: round2(stat.TotalNotional),
	}
	if stat.Highest != nil {
		p.Highest = round2p(stat.Highest.Price)
		p.HighestDate = o.fmtDate(stat.Highest.Date)
		p.HighestQuantity = stat.Highest.Quantity
	}
	if stat.Lowest != nil {
		p.Lowest = round2p(stat.Lowest.Price)
		p.LowestDate = o.fmtDate(stat.Lowest.Date)
		p.LowestQuantity = stat.Lowest.Quantity
	}
	if stat.Average != nil {
		p.Average = round2p(*stat.Average)
	}
	return &Payload{Intent: tag, PriceStats: p}, nil
}

func (o *Orchestrator) profitablePayload(ctx context.Context, req Request, e intent.Entities) (*Payload, error) {
	buys, err := o.fetchDirected(ctx, req, e, models.DirectionBuy)
	if err != nil {
		return nil, err
	}
	sells, err := o.fetchDirected(ctx, req, e, models.DirectionSell)
	if err != nil {
		return nil, err
	}

	trips := analytics.ProfitableOnly(analytics.MatchRoundTrips(buys, sells))

	p := &ProfitableTradesPayload{
		Symbol:                e.Symbol,
		TotalProfitableTrades: len(trips),
		Trades:                make([]RoundTripItem, 0, len(trips)),
	}
	var total float64
	for _, tr := range trips {
		total += tr.RealizedPnL
		p.Trades = append(p.Trades, RoundTripItem{
			SecurityClass: string(tr.Class),
			Symbol:        tr.Symbol,
			BuyDate:       o.fmtDate(tr.BuyDate),
			SellDate:      o.fmtDate(tr.SellDate),
			Quantity:      tr.Quantity,
			BuyPrice:      round2(tr.BuyPrice),
			SellPrice:     round2(tr.SellPrice),
			ProfitLoss:    round2(tr.RealizedPnL),
		})
	}
	p.TotalProfit = round2(total)
	return &Payload{Intent: intent.TagProfitableTrades, ProfitableTrades: p}, nil
}

func (o *Orchestrator) timeWindowPayload(ctx context.Context, req Request, tag intent.Tag, e intent.Entities) (*Payload, error) {
	// Unresolved window falls back to year-to-date; that policy lives
	// here, not in the resolver.
	w := e.Window
	if w == nil {
		ytd, _ := timewindow.Resolve("this year", req.Anchor)
		w = &ytd
	}

	symbol := e.Symbol
	if e.PortfolioWide {
		symbol = ""
	}
	trades, err := o.fetch(ctx, req, intent.Entities{
		Symbol:    symbol,
		Direction: e.Direction,
		Window:    w,
	}, "", false)
	if err != nil {
		return nil, err
	}

	stat := analytics.Aggregate(trades)
	summary := TradeWindowSummary{
		TotalTrades:   len(trades),
		TotalNotional: round2(notional(trades)),
	}
	if stat.Average != nil {
		summary.AveragePrice = round2p(*stat.Average)
	}

	p := &TimeWindowTradesPayload{
		Window: o.windowPayload(w),
		Trades: make([]TradeItem, 0, len(trades)),
	}
	for i := range trades {
		t := &trades[i]
		if t.Class == models.SecurityOption {
			summary.OptionCount++
		} else {
			summary.EquityCount++
		}
		price, _ := t.Price()
		p.Trades = append(p.Trades, TradeItem{
			Date:      o.fmtDate(t.TradeDate),
			Symbol:    t.Symbol,
			Class:     string(t.Class),
			Direction: string(t.Direction),
			Quantity:  t.Quantity,
			Price:     round2(price),
			NetAmount: round2(t.NetAmount),
		})
	}
	p.Summary = summary
	return &Payload{Intent: tag, TimeWindowTrades: p}, nil
}

func (o *Orchestrator) summaryPayload(ctx context.Context, req Request, tag intent.Tag, e intent.Entities) (*Payload, error) {
	trades, err := o.fetch(ctx, req, e, "", false)
	if err != nil {
		return nil, err
	}
	p := &TradeSummaryPayload{Period: period(e), TotalTrades: len(trades)}
	for i := range trades {
		if trades[i].Class == models.SecurityOption {
			p.OptionCount++
		} else {
			p.EquityCount++
		}
	}
	return &Payload{Intent: tag, TradeSummary: p}, nil
}

func (o *Orchestrator) optionTradesPayload(ctx context.Context, req Request, tag intent.Tag, e intent.Entities) (*Payload, error) {
	options, err := o.fetchOptions(ctx, req, e)
	if err != nil {
		return nil, err
	}
	p := &OptionTradesPayload{
		Symbol:    e.Symbol,
		Right:     string(e.Right),
		Direction: string(e.Direction),
		Period:    period(e),
		Trades:    make([]OptionTradeItem, 0, len(options)),
	}
	var total float64
	for i := range options {
		p.Trades = append(p.Trades, o.optionItem(&options[i]))
		if premium, ok := options[i].Price(); ok {
			total += premium * options[i].Quantity * models.ContractMultiplier
		}
	}
	p.TotalPremium = round2(total)
	return &Payload{Intent: tag, OptionTrades: p}, nil
}

func (o *Orchestrator) lastOptionPayload(ctx context.Context, req Request, e intent.Entities) (*Payload, error) {
	options, err := o.fetchOptions(ctx, req, e)
	if err != nil {
		return nil, err
	}
	payload := &Payload{Intent: intent.TagLastOptionTrade}
	if len(options) > 0 {
		// Descending order: the first row is the most recent trade.
		item := o.optionItem(&options[0])
		payload.LastOptionTrade = &item
	}
	return payload, nil
}

func (o *Orchestrator) strikeExtremePayload(ctx context.Context, req Request, e intent.Entities) (*Payload, error) {
	options, err := o.fetchOptions(ctx, req, e)
	if err != nil {
		return nil, err
	}

	var best *models.TradeRecord
	for i := range options {
		t := &options[i]
		if t.Strike <= 0 {
			continue
		}
		if best == nil {
			best = t
			continue
		}
		// Strict comparison keeps the first occurrence on ties; with the
		// descending fetch that is the most recent contract.
		if e.Extreme == "lowest" {
			if t.Strike < best.Strike {
				best = t
			}
		} else if t.Strike > best.Strike {
			best = t
		}
	}

	payload := &Payload{Intent: intent.TagStrikeExtreme}
	if best != nil {
		p := &StrikeExtremePayload{
			Extreme:    e.Extreme,
			Strike:     round2(best.Strike),
			Underlying: best.Underlying,
			Right:      string(best.Right),
			Date:       o.fmtDate(best.TradeDate),
		}
		if best.Expiration != nil {
			p.Expiration = o.fmtDate(*best.Expiration)
		}
		payload.StrikeExtreme = p
	}
	return payload, nil
}

func (o *Orchestrator) totalPremiumPayload(ctx context.Context, req Request, e intent.Entities) (*Payload, error) {
	options, err := o.fetchOptions(ctx, req, e)
	if err != nil {
		return nil, err
	}
	p := &TotalPremiumPayload{
		Symbol:    e.Symbol,
		Period:    period(e),
		Direction: string(e.Direction),
	}
	var total float64
	for i := range options {
		premium, ok := options[i].Price()
		if !ok {
			continue
		}
		total += premium * options[i].Quantity * models.ContractMultiplier
		p.ContractCount += options[i].Quantity
		p.TradeCount++
	}
	p.TotalPremium = round2(total)
	return &Payload{Intent: intent.TagTotalPremium, TotalPremium: p}, nil
}

func (o *Orchestrator) expiringOptionsPayload(ctx context.Context, req Request, e intent.Entities) (*Payload, error) {
	horizon := e.ExpiryWindow
	if horizon == nil {
		w, _ := timewindow.ResolveForward("this week", req.Anchor)
		horizon = &w
	}

	// Expiration filtering is postprocessing: the store indexes trade
	// dates, not expirations.
	options, err := o.fetchOptions(ctx, req, intent.Entities{Symbol: e.Symbol, Right: e.Right})
	if err != nil {
		return nil, err
	}

	p := &ExpiringOptionsPayload{Horizon: o.windowPayload(horizon)}
	for i := range options {
		exp := options[i].Expiration
		if exp == nil || exp.Before(horizon.Start) || exp.After(horizon.End) {
			continue
		}
		p.Contracts = append(p.Contracts, o.optionItem(&options[i]))
	}
	return &Payload{Intent: intent.TagExpiringOptions, ExpiringOptions: p}, nil
}

func (o *Orchestrator) feesPayload(ctx context.Context, req Request, e intent.Entities) (*Payload, error) {
	trades, err := o.fetch(ctx, req, e, "", false)
	if err != nil {
		return nil, err
	}
	p := &FeesPayload{Period: period(e), TradeCount: len(trades)}
	var total float64
	for i := range trades {
		// The fee is the spread between gross and net, independent of the
		// trade's sign convention.
		total += math.Abs(math.Abs(trades[i].GrossAmount) - math.Abs(trades[i].NetAmount))
	}
	p.TotalFees = round2(total)
	return &Payload{Intent: intent.TagFees, Fees: p}, nil
}

// fetch queries trade records for the entity filters. Descending order by
// default; the FIFO path uses fetchDirected instead.
func (o *Orchestrator) fetch(ctx context.Context, req Request, e intent.Entities, class models.SecurityClass, ascending bool) ([]models.TradeRecord, error) {
	f := store.TradeFilter{
		AccountID: req.AccountID,
		Symbol:    e.Symbol,
		Class:     class,
		Direction: e.Direction,
		Ascending: ascending,
	}
	if e.Window != nil {
		f.DateFrom = &e.Window.Start
		f.DateTo = &e.Window.End
	}
	return o.trades.QueryTrades(ctx, f)
}

// fetchDirected queries one side in ascending (date, id) order, the
// precondition the FIFO matcher requires.
func (o *Orchestrator) fetchDirected(ctx context.Context, req Request, e intent.Entities, dir models.Direction) ([]models.TradeRecord, error) {
	side := e
	side.Direction = dir
	return o.fetch(ctx, req, side, "", true)
}

// fetchOptions queries option records descending and applies the contract
// right filter, which the store interface does not cover.
func (o *Orchestrator) fetchOptions(ctx context.Context, req Request, e intent.Entities) ([]models.TradeRecord, error) {
	options, err := o.fetch(ctx, req, e, models.SecurityOption, false)
	if err != nil {
		return nil, err
	}
	if e.Right == "" {
		return options, nil
	}
	var filtered []models.TradeRecord
	for _, t := range options {
		if t.Right == e.Right {
			filtered = append(filtered, t)
		}
	}
	return filtered, nil
}

func (o *Orchestrator) optionItem(t *models.TradeRecord) OptionTradeItem {
	premium, _ := t.Price()
	item := OptionTradeItem{
		Date:       o.fmtDate(t.TradeDate),
		Underlying: t.Underlying,
		Right:      string(t.Right),
		Strike:     round2(t.Strike),
		Direction:  string(t.Direction),
		Quantity:   t.Quantity,
		Premium:    round2(premium),
		NetAmount:  round2(t.NetAmount),
	}
	if t.Expiration != nil {
		item.Expiration = o.fmtDate(*t.Expiration)
	}
	return item
}

func (o *Orchestrator) windowPayload(w *timewindow.Window) WindowPayload {
	return WindowPayload{
		Description:     w.Description,
		DisplayRange:    o.fmtDisplay(w.Start) + " – " + o.fmtDisplay(w.End),
		TradingDayCount: w.TradingDays,
	}
}

// fmtDate applies the configured display-calendar shift; dates shift only
// here, never inside computations.
func (o *Orchestrator) fmtDate(t time.Time) string {
	return t.AddDate(0, 0, o.dayShift).Format("2006-01-02")
}

func (o *Orchestrator) fmtDisplay(t time.Time) string {
	return t.AddDate(0, 0, o.dayShift).Format("Jan 2, 2006")
}

func period(e intent.Entities) string {
	if e.Window != nil {
		return e.Window.Description
	}
	return ""
}

func notional(trades []models.TradeRecord) float64 {
	var sum float64
	for i := range trades {
		sum += math.Abs(trades[i].NetAmount)
	}
	return sum
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round2p(v float64) *float64 {
	r := round2(v)
	return &r
}
