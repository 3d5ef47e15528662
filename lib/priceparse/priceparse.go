// Package priceparse turns raw price text scraped from supplier pages into
// numeric values. supplier pages disagree wildly on formatting: currency
// symbols, comma vs period grouping, comma decimals, split whole/fraction
// nodes. everything here is pure string work with no I/O.
package priceparse

import (
	"regexp"
	"strconv"
	"strings"
)

// prices above this are treated as extraction noise, nothing we track
// legitimately costs a million dollars.
const MaxPrice = 999999.99

var currencySymbol = regexp.MustCompile(`[$€£¥₹]\s*`)

// negative-looking input is rejected outright rather than salvaging a
// positive fragment out of it.
var negativeValue = regexp.MustCompile(`-\s*\d`)

// candidate patterns in priority order: strictly grouped thousands values
// first, then plain decimals, then bare integers. the first pattern that
// yields a sane number wins.
var candidatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\d{1,3}(?:[,.]\d{3})+(?:[,.]\d{1,2})?`),
	regexp.MustCompile(`\d+[,.]\d{1,2}`),
	regexp.MustCompile(`\d+`),
}

var innerWhitespace = regexp.MustCompile(`\s+`)

// Parse extracts the first plausible price from text. It returns false for
// unparseable input, negative values and values above MaxPrice. It never
// panics regardless of input.
func Parse(text string) (float64, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, false
	}
	text = innerWhitespace.ReplaceAllString(text, " ")
	cleaned := currencySymbol.ReplaceAllString(text, "")
	if negativeValue.MatchString(cleaned) {
		return 0, false
	}

	for _, pattern := range candidatePatterns {
		match := pattern.FindString(cleaned)
		if match == "" {
			continue
		}
		value, ok := normalize(match)
		if !ok {
			// malformed grouping, fall through to a looser pattern
			continue
		}
		if value <= 0 || value > MaxPrice {
			// a syntactically valid candidate outside sane bounds is
			// extraction noise, not something to salvage fragments from
			return 0, false
		}
		return value, true
	}
	return 0, false
}

// Join composes a price from separately rendered whole and fraction parts
// ("12" + "99" -> 12.99). Some sites split the two into sibling nodes.
func Join(whole, fraction string) (float64, bool) {
	whole = strings.TrimSpace(strings.Trim(strings.TrimSpace(whole), ".,"))
	fraction = strings.TrimSpace(fraction)
	if whole == "" || fraction == "" {
		return 0, false
	}
	if !isDigits(whole) || !isDigits(fraction) {
		return 0, false
	}
	return Parse(whole + "." + fraction)
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}

// normalize resolves separator ambiguity in a matched numeric string.
// when both separators appear, the one closest to the end is the decimal
// point. a lone separator followed by exactly two digits at the tail is a
// decimal point, a lone separator slicing the string into 3-digit groups
// is a thousands separator.
func normalize(s string) (float64, bool) {
	lastComma := strings.LastIndexByte(s, ',')
	lastPeriod := strings.LastIndexByte(s, '.')

	switch {
	case lastComma >= 0 && lastPeriod >= 0:
		var thousands, decimal byte
		if lastComma > lastPeriod {
			thousands, decimal = '.', ','
		} else {
			thousands, decimal = ',', '.'
		}
		if !validGroups(s, thousands, decimal) {
			return 0, false
		}
		s = strings.ReplaceAll(s, string(thousands), "")
		s = strings.Replace(s, string(decimal), ".", 1)

	case lastComma >= 0:
		s = resolveLoneSeparator(s, ',')
		if s == "" {
			return 0, false
		}

	case lastPeriod >= 0:
		s = resolveLoneSeparator(s, '.')
		if s == "" {
			return 0, false
		}
	}

	value, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// resolveLoneSeparator rewrites s into plain decimal notation given that only
// one separator rune occurs in it. returns "" when the grouping is malformed
// (e.g. "1,23,4").
func resolveLoneSeparator(s string, sep byte) string {
	parts := strings.Split(s, string(sep))

	if len(parts) == 2 && len(parts[1]) <= 2 {
		// tail of one or two digits reads as cents
		return parts[0] + "." + parts[1]
	}

	// otherwise it has to be valid thousands grouping
	if len(parts[0]) == 0 || len(parts[0]) > 3 {
		return ""
	}
	for _, group := range parts[1:] {
		if len(group) != 3 || !isDigits(group) {
			return ""
		}
	}
	return strings.ReplaceAll(s, string(sep), "")
}

// validGroups checks thousands grouping in a mixed-separator value like
// "1.234,56": every thousands group must be exactly three digits.
func validGroups(s string, thousands, decimal byte) bool {
	intPart := s
	if i := strings.LastIndexByte(s, decimal); i >= 0 {
		intPart = s[:i]
		if tail := s[i+1:]; len(tail) == 0 || len(tail) > 2 || !isDigits(tail) {
			return false
		}
	}
	groups := strings.Split(intPart, string(thousands))
	if len(groups[0]) == 0 || len(groups[0]) > 3 {
		return false
	}
	for _, g := range groups[1:] {
		if len(g) != 3 || !isDigits(g) {
			return false
		}
	}
	return true
}
