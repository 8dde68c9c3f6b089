// Package symbols maps free-form company references to ticker symbols.
package symbols

import (
	"regexp"
	"sort"
	"strings"
)

// companyNames is the built-in alias set. The store-backed alias table
// extends it at runtime; this set covers the names the assistant is most
// likely to transcribe from voice input.
var companyNames = map[string]string{
	"apple":     "AAPL",
	"microsoft": "MSFT",
	"tesla":     "TSLA",
	"amazon":    "AMZN",
	"google":    "GOOGL",
	"alphabet":  "GOOGL",
	"meta":      "META",
	"facebook":  "META",
	"nvidia":    "NVDA",
	"netflix":   "NFLX",
	"intel":     "INTC",
	"amd":       "AMD",
	"boeing":    "BA",
	"disney":    "DIS",
	"palantir":  "PLTR",
	"paypal":    "PYPL",
	"visa":      "V",
	"walmart":   "WMT",
	"costco":    "COST",
	"starbucks": "SBUX",
}

// stopwords are tokens that look like short tickers but are ordinary
// English words in this domain; candidates matching them are rejected.
var stopwords = map[string]struct{}{
	"a": {}, "all": {}, "an": {}, "and": {}, "any": {}, "are": {},
	"at": {}, "buy": {}, "call": {}, "for": {}, "i": {}, "in": {},
	"is": {}, "it": {}, "my": {}, "of": {}, "ok": {}, "on": {}, "or": {}, "put": {},
	"sell": {}, "set": {}, "stock": {}, "the": {}, "these": {},
	"this": {}, "to": {}, "trade": {}, "was": {}, "with": {}, "you": {},
	"your": {},
}

var tickerRe = regexp.MustCompile(`^[A-Za-z]{1,5}(?:\.[A-Za-z])?$`)

// Normalize resolves a single candidate token to a ticker symbol. ok is
// false when the token is neither a known company name nor plausibly a
// ticker.
func Normalize(raw string) (string, bool) {
	token := strings.Trim(strings.TrimSpace(raw), ".,!?:;'\"")
	if token == "" {
		return "", false
	}
	lower := strings.ToLower(token)
	if sym, ok := companyNames[lower]; ok {
		return sym, true
	}
	if _, ok := stopwords[lower]; ok {
		return "", false
	}
	// Upper-case tokens of ticker length pass through verbatim; mixed or
	// lower case must be an exact ticker shape to avoid swallowing words.
	if tickerRe.MatchString(token) && token == strings.ToUpper(token) {
		return token, true
	}
	return "", false
}

// FindInText scans whole text for a known company name and returns its
// ticker. Used as a last resort when no candidate token could be
// extracted by position. Names are tried in a fixed order so a text
// mentioning several companies always resolves to the same one.
func FindInText(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, name := range orderedNames() {
		if containsWord(lower, name) {
			return companyNames[name], true
		}
	}
	return "", false
}

// FindAllInText returns every distinct ticker whose company name appears
// in the text, in name order.
func FindAllInText(text string) []string {
	lower := strings.ToLower(text)
	seen := map[string]struct{}{}
	var out []string
	for _, name := range orderedNames() {
		if containsWord(lower, name) {
			sym := companyNames[name]
			if _, dup := seen[sym]; dup {
				continue
			}
			seen[sym] = struct{}{}
			out = append(out, sym)
		}
	}
	return out
}

func orderedNames() []string {
	names := make([]string, 0, len(companyNames))
	for name := range companyNames {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ContainsWord reports whether word occurs in text on letter boundaries.
// Exported for the store-backed alias scan, which matches multi-word
// company names the same way the built-in set is matched.
func ContainsWord(text, word string) bool {
	return containsWord(text, word)
}

func containsWord(text, word string) bool {
	idx := 0
	for {
		i := strings.Index(text[idx:], word)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(word)
		leftOK := start == 0 || !isLetter(text[start-1])
		rightOK := end == len(text) || !isLetter(text[end])
		if leftOK && rightOK {
			return true
		}
		idx = start + 1
	}
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
