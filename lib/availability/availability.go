// Package availability classifies a supplier page's raw signals into a
// stock state. The precedence encodes one rule learned the hard way: trust
// negative signals over positive ones. A page can carry "in stock"
// boilerplate and "cannot be shipped to your area" at the same time, and
// only the latter reflects reality.
package availability

import "strings"

type State int

const (
	StateUnknown State = iota
	StateInStock
	StateOutOfStock
	StateBlocked
)

func (s State) String() string {
	switch s {
	case StateInStock:
		return "in_stock"
	case StateOutOfStock:
		return "out_of_stock"
	case StateBlocked:
		return "blocked"
	default:
		return "unknown"
	}
}

// Signals collects everything the probe observed on one page. PageText is
// scanned case-insensitively for phrases; the two marker booleans report
// structural selector hits evaluated by the caller.
type Signals struct {
	PageText string
	// a site-profile in-stock selector matched (add-to-cart affordance)
	HasStockMarker bool
	// a site-profile out-of-stock selector matched
	HasOutOfStockMarker bool
	// a price was successfully extracted from the page
	PriceFound bool
}

// Rules holds the phrase lists consulted during classification, in
// decreasing specificity. Site lists come from the matched site profile,
// generic lists from the registry defaults.
type Rules struct {
	BlockedPhrases  []string
	SiteNegative    []string
	SitePositive    []string
	GenericNegative []string
	GenericPositive []string
}

// Merge overlays site-specific phrase lists onto r, leaving the blocked and
// generic lists intact.
func (r Rules) Merge(siteNegative, sitePositive []string) Rules {
	out := r
	out.SiteNegative = siteNegative
	out.SitePositive = sitePositive
	return out
}

// DefaultRules returns the phrase lists that ship with the binary. They are
// a starting point, site profiles are expected to extend them.
func DefaultRules() Rules {
	return Rules{
		BlockedPhrases: []string{
			"robot or human",
			"solve the captcha",
			"complete the captcha",
			"verify the captcha",
			"please verify you are human",
			"verify you are human",
			"captcha verification required",
			"enter the captcha",
			"access denied",
			"unusual traffic detected",
			"security check required",
			"bot detection",
			"robot check",
			"rate limit exceeded",
			"too many requests",
			"please wait while we verify",
			"checking your browser before accessing",
			"enable javascript and cookies",
			"ddos protection by cloudflare",
			"cloudflare security check",
			"we need to verify that you're human",
			"security verification required",
		},
		GenericNegative: []string{
			"out of stock",
			"currently unavailable",
			"unavailable",
			"backorder",
			"sold out",
			"no longer available",
		},
		GenericPositive: []string{
			"in stock",
			"add to cart",
			"add to bag",
			"add to basket",
			"buy now",
		},
	}
}

// Classify applies the precedence order, first match wins:
//
//  1. blocking indicators -> Blocked
//  2. site-specific negative phrases or out-of-stock markers -> OutOfStock
//  3. site-specific positive markers or phrases -> InStock
//  4. generic negative phrases -> OutOfStock
//  5. generic positive phrases -> InStock
//  6. nothing matched: InStock when a price was found, Unknown otherwise
//
// Unknown is treated as out-of-stock downstream, never as in-stock.
func Classify(sig Signals, rules Rules) State {
	text := strings.ToLower(sig.PageText)

	if containsAny(text, rules.BlockedPhrases) {
		return StateBlocked
	}
	if sig.HasOutOfStockMarker || containsAny(text, rules.SiteNegative) {
		return StateOutOfStock
	}
	if sig.HasStockMarker || containsAny(text, rules.SitePositive) {
		return StateInStock
	}
	if containsAny(text, rules.GenericNegative) {
		return StateOutOfStock
	}
	if containsAny(text, rules.GenericPositive) {
		return StateInStock
	}
	if sig.PriceFound {
		return StateInStock
	}
	return StateUnknown
}

// IsBlockedText reports whether raw page content matches any blocking
// indicator. Exposed separately because the probe checks for blocking
// before it attempts any extraction.
func IsBlockedText(content string, rules Rules) bool {
	return containsAny(strings.ToLower(content), rules.BlockedPhrases)
}

func containsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if p == "" {
			continue
		}
		if strings.Contains(text, strings.ToLower(p)) {
			return true
		}
	}
	return false
}
