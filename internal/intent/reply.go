package intent

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"portfolio-assistant-go/internal/models"
	"portfolio-assistant-go/internal/symbols"
	"portfolio-assistant-go/internal/timewindow"
)

var (
	currencyRe = regexp.MustCompile(`\$\s*([\d,]+(?:\.\d+)?)`)
	digitRe    = regexp.MustCompile(`\d`)

	// Fragments that announce a lookup in progress. They suppress every
	// detector unless the fragment also carries concrete result data, so
	// no card renders while the agent is still "thinking".
	deferralRe = regexp.MustCompile(`\b(?:let me|i'?ll|i will|one (?:moment|second|sec)|hold on|just a (?:moment|second)|checking|looking (?:that|this|it) up|pulling (?:that|this|it) up|fetching)\b`)

	// Shared time sub-pattern handed to the time window resolver for
	// validation; the resolver owns the semantics.
	timePhraseRe = regexp.MustCompile(`\b(?:last|past)\s+(?:[a-z]+|\d+)\s+(?:trading\s+)?days?\b|\b\d+\s+trading\s+days?\b|\byesterday\b|\btoday\b|\bthis week\b|\blast week\b|\bthis month\b|\blast month\b|\bthis year\b|\b(?:on\s+)?(?:monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)

	buyRe  = regexp.MustCompile(`\b(?:bought|buying|buys?|purchased|long)\b`)
	sellRe = regexp.MustCompile(`\b(?:sold|selling|sells?|shorted|short)\b`)
	callRe = regexp.MustCompile(`\bcalls?\b`)
	putRe  = regexp.MustCompile(`\bputs?\b`)

	optionWordRe = regexp.MustCompile(`\boptions?\b|\bcalls?\b|\bputs?\b|\bcontracts?\b`)
	tradeWordRe  = regexp.MustCompile(`\btrades?\b|\btraded\b|\btransactions?\b|\bactivity\b`)

	// Candidate symbol positions: "for X", "X shares", "shares of X".
	symbolAfterForRe    = regexp.MustCompile(`\bfor\s+([A-Za-z][A-Za-z.]{0,6})\b`)
	symbolBeforeNounRe  = regexp.MustCompile(`\b([A-Za-z][A-Za-z.]{0,6})\s+(?:shares|stock|trades?|options?|calls?|puts?|position)\b`)
	symbolAfterSharesRe = regexp.MustCompile(`\b(?:shares|stock)\s+of\s+([A-Za-z][A-Za-z.]{0,6})\b`)
	allCapsTokenRe      = regexp.MustCompile(`\b[A-Z]{1,5}\b`)
)

// reply wraps one assistant reply with its lowered form and the context
// the detectors share. Built once per resolution; detectors never mutate it.
type reply struct {
	text        string
	lower       string
	anchor      time.Time
	priorSymbol string

	// symbolFromText is the ticker extracted from the reply itself, as
	// opposed to the conversation's prior subject. The weekday
	// portfolio-wide rule depends on the distinction.
	symbolFromText string
	timePhrase     string
	window         *timewindow.Window
}

func newReply(text, priorSymbol string, anchor time.Time) *reply {
	r := &reply{
		text:        text,
		lower:       strings.ToLower(text),
		anchor:      anchor,
		priorSymbol: priorSymbol,
	}
	r.symbolFromText, _ = r.extractSymbol()
	if phrase := timePhraseRe.FindString(r.lower); phrase != "" {
		if w, ok := timewindow.Resolve(phrase, anchor); ok {
			r.timePhrase = phrase
			r.window = &w
		}
	}
	return r
}

func (r *reply) hasCurrency() bool { return currencyRe.MatchString(r.text) }
func (r *reply) hasNumber() bool   { return digitRe.MatchString(r.text) }

// hasConcreteData reports whether the reply carries an actual result (a
// number, amount or count) rather than just narration.
func (r *reply) hasConcreteData() bool { return r.hasNumber() || r.hasCurrency() }

// deferral is the still-checking guard.
func (r *reply) deferral() bool {
	return deferralRe.MatchString(r.lower) && !r.hasConcreteData()
}

func (r *reply) firstAmount() (float64, bool) {
	m := currencyRe.FindStringSubmatch(r.text)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func (r *reply) direction() models.Direction {
	hasBuy := buyRe.MatchString(r.lower)
	hasSell := sellRe.MatchString(r.lower)
	switch {
	case hasBuy && !hasSell:
		return models.DirectionBuy
	case hasSell && !hasBuy:
		return models.DirectionSell
	}
	return models.DirectionEither
}

func (r *reply) right() models.OptionRight {
	hasCall := callRe.MatchString(r.lower)
	hasPut := putRe.MatchString(r.lower)
	switch {
	case hasCall && !hasPut:
		return models.RightCall
	case hasPut && !hasCall:
		return models.RightPut
	}
	return ""
}

// extractSymbol tries the positional patterns in order, then falls back to
// a literal company-name scan.
func (r *reply) extractSymbol() (string, bool) {
	for _, re := range []*regexp.Regexp{symbolBeforeNounRe, symbolAfterSharesRe, symbolAfterForRe} {
		for _, m := range re.FindAllStringSubmatch(r.text, -1) {
			if sym, ok := symbols.Normalize(m[1]); ok {
				return sym, true
			}
		}
	}
	return symbols.FindInText(r.text)
}

// symbol is the subject ticker: extracted from the reply when possible,
// otherwise carried over from the conversation.
func (r *reply) symbol() string {
	if r.symbolFromText != "" {
		return r.symbolFromText
	}
	return r.priorSymbol
}

// multiSymbol reports whether the reply names two or more distinct
// tickers; such listings are portfolio-wide.
func (r *reply) multiSymbol() bool {
	seen := map[string]struct{}{}
	for _, tok := range allCapsTokenRe.FindAllString(r.text, -1) {
		if sym, ok := symbols.Normalize(tok); ok {
			seen[sym] = struct{}{}
		}
	}
	for _, sym := range symbols.FindAllInText(r.text) {
		seen[sym] = struct{}{}
	}
	return len(seen) > 1
}

// ExtractEntities runs the shared entity extraction without any detector:
// the AI-assisted classification path pairs it with an externally supplied
// tag.
func ExtractEntities(text, priorSymbol string, anchor time.Time) Entities {
	return newReply(text, priorSymbol, anchor).baseEntities()
}

// baseEntities collects the entity extractions shared by most detectors.
func (r *reply) baseEntities() Entities {
	e := Entities{
		Symbol:     r.symbol(),
		Direction:  r.direction(),
		Right:      r.right(),
		TimePhrase: r.timePhrase,
		Window:     r.window,
	}
	return e
}
