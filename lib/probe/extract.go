package probe

import (
	"context"
	"regexp"
	"strings"

	"pricewatch/lib/page"
	"pricewatch/lib/priceparse"
	"pricewatch/lib/siteprofile"
)

var errorPagePhrases = []string{
	"404 page not found",
	"404 not found",
	"page not found",
	"page does not exist",
	"page you requested does not exist",
	"error 404",
	"page unavailable",
	"page is temporarily unavailable",
	"resource not found",
	"sorry, we can't find that page",
	"oops! page not found",
	"the requested url was not found",
}

func isErrorPage(content string) bool {
	lower := strings.ToLower(content)
	for _, phrase := range errorPagePhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// extractPrice walks the selector fallback chain: site-specific selectors
// in order, the site's split whole/fraction selectors, generic selectors,
// and finally a full-text pattern over the raw content.
func (p *Prober) extractPrice(ctx context.Context, pg page.Page, profile siteprofile.Profile, content string) (float64, bool) {
	if price, ok := priceFromSelectors(ctx, pg, profile.PriceSelectors); ok {
		return price, true
	}
	if profile.SplitPrice != nil {
		if price, ok := priceFromSplit(ctx, pg, profile.SplitPrice); ok {
			return price, true
		}
	}
	generic := p.registry.Generic()
	if len(generic.PriceSelectors) > 0 {
		if price, ok := priceFromSelectors(ctx, pg, generic.PriceSelectors); ok {
			return price, true
		}
	}
	return priceFromContent(content)
}

func priceFromSelectors(ctx context.Context, pg page.Page, selectors []siteprofile.Selector) (float64, bool) {
	for _, sel := range selectors {
		for _, el := range pg.QueryAll(ctx, sel.Query) {
			if isQuantityElement(el) {
				continue
			}
			text := el.Text()
			if sel.Attr != "" {
				text = el.Attr(sel.Attr)
			}
			if text == "" {
				continue
			}
			price, ok := priceparse.Parse(text)
			if !ok {
				continue
			}
			if looksLikeQuantity(price, text) {
				continue
			}
			return price, true
		}
	}
	return 0, false
}

func priceFromSplit(ctx context.Context, pg page.Page, split *siteprofile.SplitPriceSelectors) (float64, bool) {
	wholes := pg.QueryAll(ctx, split.Whole)
	fractions := pg.QueryAll(ctx, split.Fraction)
	for i, whole := range wholes {
		if i >= len(fractions) {
			break
		}
		if isQuantityElement(whole) {
			continue
		}
		price, ok := priceparse.Join(whole.Text(), fractions[i].Text())
		if !ok {
			continue
		}
		// split prices never carry a symbol, so only the magnitude check
		// can reject quantities here
		if price <= 10 && price == float64(int64(price)) {
			continue
		}
		return price, true
	}
	return 0, false
}

var contentPricePattern = regexp.MustCompile(`[$€£]\s*(\d{1,3}(?:,\d{3})*(?:\.\d{2})?)`)

func priceFromContent(content string) (float64, bool) {
	match := contentPricePattern.FindStringSubmatch(content)
	if match == nil {
		return 0, false
	}
	return priceparse.Parse(match[1])
}

var currencyAdjacent = regexp.MustCompile(`[$€£¥₹]`)

// looksLikeQuantity rejects small bare integers: a "3" sitting next to a
// price selector is far more likely a quantity dropdown value than a three
// dollar product.
func looksLikeQuantity(price float64, text string) bool {
	if price > 10 || price != float64(int64(price)) {
		return false
	}
	return !currencyAdjacent.MatchString(text)
}

var quantityIndicators = []string{"quantity", "qty", "amount", "count"}

func isQuantityElement(el page.Element) bool {
	for _, attr := range []string{"name", "id", "class"} {
		value := strings.ToLower(el.Attr(attr))
		if value == "" {
			continue
		}
		for _, indicator := range quantityIndicators {
			if strings.Contains(value, indicator) {
				return true
			}
		}
	}
	return false
}

// shipping fee phrases over page text; keyword plus an adjacent amount, or
// an explicit free-shipping marker.
var shippingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)shipping[:\s]*\$?(\d+\.?\d*)`),
	regexp.MustCompile(`(?i)delivery[:\s]*\$?(\d+\.?\d*)`),
	regexp.MustCompile(`(?i)freight[:\s]*\$?(\d+\.?\d*)`),
	regexp.MustCompile(`(?i)handling[:\s]*\$?(\d+\.?\d*)`),
	regexp.MustCompile(`(?i)\+\s*\$?(\d+\.?\d*)\s*shipping`),
	regexp.MustCompile(`(?i)\+\s*\$?(\d+\.?\d*)\s*delivery`),
}

var freeShippingPattern = regexp.MustCompile(`(?i)free\s+(shipping|delivery)`)

func extractShippingFee(content string) (float64, bool) {
	for _, pattern := range shippingPatterns {
		match := pattern.FindStringSubmatch(content)
		if match == nil {
			continue
		}
		fee, ok := priceparse.Parse(match[1])
		if ok && fee > 0 {
			return fee, true
		}
	}
	if freeShippingPattern.MatchString(content) {
		return 0, true
	}
	return 0, false
}
