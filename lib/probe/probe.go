// Package probe fetches one supplier's raw signals for one product and
// packages them into a normalized result. It never raises: every failure of
// the underlying page turns into a typed failure on the result, so callers
// can arbitrate over a uniform set.
package probe

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"pricewatch/lib/availability"
	"pricewatch/lib/page"
	"pricewatch/lib/siteprofile"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("pricewatch.lib.probe")

type FailureKind int

const (
	FailureNone FailureKind = iota
	FailureNavigation
	FailureBlocked
	FailureBlockedCaptcha
	FailurePriceNotFound
)

func (k FailureKind) String() string {
	switch k {
	case FailureNone:
		return ""
	case FailureNavigation:
		return "navigation error"
	case FailureBlocked:
		return "blocked"
	case FailureBlockedCaptcha:
		return "blocked by CAPTCHA"
	case FailurePriceNotFound:
		return "price not found"
	default:
		return "unknown failure"
	}
}

// Blocking reports whether the failure is an active access refusal rather
// than missing data.
func (k FailureKind) Blocking() bool {
	return k == FailureBlocked || k == FailureBlockedCaptcha
}

// SourceResult is one supplier's normalized outcome. Invariant: when
// Failure is set, HasPrice is false.
type SourceResult struct {
	URL          string
	SupplierName string

	Price    float64
	HasPrice bool

	ShippingFee float64
	HasShipping bool

	Availability availability.State
	InStock      bool

	Failure FailureKind
	Detail  string
}

func (r SourceResult) Failed() bool {
	return r.Failure != FailureNone
}

// Landed is the cross-supplier comparison cost: price plus shipping fee,
// with an unknown fee counted as zero.
func (r SourceResult) Landed() float64 {
	if r.HasShipping {
		return r.Price + r.ShippingFee
	}
	return r.Price
}

// CaptchaSolver is the narrow view of the external solving service. The
// probe only ever asks whether it is configured and reachable, solving
// itself happens out of process.
type CaptchaSolver interface {
	Ready(ctx context.Context) bool
}

type Options struct {
	Registry *siteprofile.Registry
	Rules    availability.Rules
	// optional
	Captcha CaptchaSolver
	// defaults to 60s
	NavigateTimeout time.Duration
}

type Prober struct {
	registry   *siteprofile.Registry
	rules      availability.Rules
	captcha    CaptchaSolver
	navTimeout time.Duration
}

func New(opts Options) *Prober {
	registry := opts.Registry
	if registry == nil {
		registry = siteprofile.Default()
	}
	timeout := opts.NavigateTimeout
	if timeout == 0 {
		timeout = time.Second * 60
	}
	rules := opts.Rules
	if len(rules.BlockedPhrases) == 0 && len(rules.GenericNegative) == 0 && len(rules.GenericPositive) == 0 {
		rules = availability.DefaultRules()
	}
	return &Prober{
		registry:   registry,
		rules:      rules,
		captcha:    opts.Captcha,
		navTimeout: timeout,
	}
}

// Probe runs the full extraction pipeline against one listing url. Steps
// fail independently; the first hard failure stops the pipeline and is
// recorded on the result.
func (p *Prober) Probe(ctx context.Context, pg page.Page, url string) SourceResult {
	ctx, span := tracer.Start(ctx, "Probe", trace.WithAttributes(
		attribute.String("url", url),
	))
	defer span.End()

	profile := p.registry.Profile(url)
	result := SourceResult{
		URL:          url,
		SupplierName: p.registry.SupplierName(url),
	}
	rules := p.rules.Merge(profile.NegativePhrases, profile.PositivePhrases)

	failed := func(kind FailureKind, detail string) SourceResult {
		result.Failure = kind
		result.Detail = detail
		result.Availability = availability.StateUnknown
		if kind.Blocking() {
			result.Availability = availability.StateBlocked
		}
		span.SetAttributes(attribute.String("failure", kind.String()))
		slog.DebugContext(ctx, "probe failed", "url", url, "failure", kind.String(), "detail", detail)
		return result
	}

	status, err := pg.Navigate(ctx, url, p.navTimeout)
	if err != nil {
		return failed(FailureNavigation, fmt.Sprintf("navigation: %s", err))
	}
	span.SetAttributes(attribute.Int("status", status))

	content, err := pg.Content(ctx)
	if err != nil {
		return failed(FailureNavigation, fmt.Sprintf("read content: %s", err))
	}

	if availability.IsBlockedText(content, rules) {
		if p.captcha != nil && p.captcha.Ready(ctx) {
			return failed(FailureBlockedCaptcha, "anti-bot challenge, solver configured")
		}
		return failed(FailureBlocked, "anti-bot challenge")
	}

	if isErrorPage(content) {
		return failed(FailurePriceNotFound, "error page")
	}

	price, ok := p.extractPrice(ctx, pg, profile, content)
	if !ok {
		// a product with no price cannot be arbitrated, skip the rest
		return failed(FailurePriceNotFound, "no selector or pattern matched")
	}
	result.Price = price
	result.HasPrice = true
	span.SetAttributes(attribute.Float64("price", price))

	if fee, ok := extractShippingFee(content); ok {
		result.ShippingFee = fee
		result.HasShipping = true
	}

	state := availability.Classify(availability.Signals{
		PageText:            content,
		HasStockMarker:      p.anyPresent(ctx, pg, profile.InStockSelectors, p.registry.Generic().InStockSelectors),
		HasOutOfStockMarker: p.anyPresent(ctx, pg, profile.OutOfStockSelectors, p.registry.Generic().OutOfStockSelectors),
		PriceFound:          true,
	}, rules)
	result.Availability = state
	result.InStock = state == availability.StateInStock

	slog.DebugContext(ctx, "probe complete",
		"url", url,
		"supplier", result.SupplierName,
		"price", result.Price,
		"availability", state.String(),
	)
	return result
}

func (p *Prober) anyPresent(ctx context.Context, pg page.Page, site, generic []string) bool {
	for _, sel := range site {
		if _, ok := pg.Query(ctx, sel); ok {
			return true
		}
	}
	for _, sel := range generic {
		if _, ok := pg.Query(ctx, sel); ok {
			return true
		}
	}
	return false
}
