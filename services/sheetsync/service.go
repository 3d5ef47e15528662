// Package sheetsync writes one product's decision back to the sheet. Two
// rules hold no matter how the transport behaves: the last-checked timestamp
// is attempted independently of the price write, and every synced product
// produces exactly one audit line.
package sheetsync

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"pricewatch/lib/arbiter"
	"pricewatch/lib/auditlog"
	"pricewatch/lib/retry"
	"pricewatch/lib/sheetstore"
	"pricewatch/lib/timezone"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("pricewatch.services.sheetsync")

const lastCheckedFormat = "01/02/2006"

// Layout maps the sheet's fixed columns. Columns are zero-based.
type Layout struct {
	NoteCol        int
	LastCheckedCol int
	PriceCol       int
	ShippingCol    int
	SourceCol      int
	// last column covered by row-wide fills
	RowEndCol int
}

// DefaultLayout matches the production sheet.
func DefaultLayout() Layout {
	return Layout{
		NoteCol:        0,
		LastCheckedCol: 3,
		PriceCol:       23,
		ShippingCol:    25,
		SourceCol:      31,
		RowEndCol:      33,
	}
}

// Target identifies the product row being written.
type Target struct {
	// zero-based sheet row
	Row        int
	ProductID  string
	PriorPrice float64
	HasPrior   bool
}

type Config struct {
	// quota retry bound, total attempts including the first; defaults to 5
	MaxAttempts int
	// first retry delay, doubled each attempt; defaults to 2s
	BackoffBase time.Duration
	// random extra per retry; defaults to 1s
	BackoffJitter time.Duration
	// pause after every successful write; defaults to 2s
	Cooldown time.Duration
	// random extra pause; defaults to 2s
	CooldownJitter time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxAttempts == 0 {
		c.MaxAttempts = 5
	}
	if c.BackoffBase == 0 {
		c.BackoffBase = time.Second * 2
	}
	if c.BackoffJitter == 0 {
		c.BackoffJitter = time.Second
	}
	if c.Cooldown == 0 {
		c.Cooldown = time.Second * 2
	}
	if c.CooldownJitter == 0 {
		c.CooldownJitter = time.Second * 2
	}
	return c
}

// Result reports what actually landed in the sheet.
type Result struct {
	Success          bool
	PriceWritten     bool
	TimestampWritten bool
	// attempts spent on the decision mutation batch
	Attempts int
	Message  string
}

type Engine struct {
	store  sheetstore.Store
	audit  *auditlog.Logger
	layout Layout
	config Config
	clock  retry.Clock
	rng    *rand.Rand
	now    func() time.Time
}

type Options struct {
	Layout Layout
	Config Config
	// nil for the wall clock
	Clock retry.Clock
	// nil for a time-seeded source
	Rand *rand.Rand
	// nil for the pinned ops-team wall clock
	Now func() time.Time
}

func New(store sheetstore.Store, audit *auditlog.Logger, opts Options) *Engine {
	layout := opts.Layout
	if layout.RowEndCol == 0 {
		layout = DefaultLayout()
	}
	clock := opts.Clock
	if clock == nil {
		clock = retry.SystemClock()
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	now := opts.Now
	if now == nil {
		now = timezone.Now
	}
	return &Engine{
		store:  store,
		audit:  audit,
		layout: layout,
		config: opts.Config.withDefaults(),
		clock:  clock,
		rng:    rng,
		now:    now,
	}
}

func (e *Engine) policy() retry.Policy {
	return retry.Policy{
		MaxAttempts: e.config.MaxAttempts,
		Backoff:     retry.ExponentialBackoff(e.config.BackoffBase, e.config.BackoffJitter, e.rng),
		Retryable:   sheetstore.IsQuota,
		Clock:       e.clock,
	}
}

// Sync applies the decision to the target row. It never returns an error:
// every failure mode ends up in the Result and on the audit line.
func (e *Engine) Sync(ctx context.Context, target Target, d arbiter.Decision) Result {
	ctx, span := tracer.Start(ctx, "Sync", trace.WithAttributes(attribute.Int("row", target.Row)))
	defer span.End()

	var res Result
	defer func() {
		entry := auditlog.Entry{
			Row:         target.Row + 1,
			ProductID:   target.ProductID,
			OldPrice:    target.PriorPrice,
			HasOldPrice: target.HasPrior,
			Success:     res.Success,
			Message:     res.Message,
		}
		if res.PriceWritten {
			entry.NewPrice = d.NewPrice
			entry.HasNewPrice = true
		}
		if err := e.audit.Record(entry); err != nil {
			span.RecordError(err)
		}
	}()

	// the timestamp goes first and on its own, so the row records the visit
	// even when the price write fails
	tsErr := e.store.BatchMutate(ctx, []sheetstore.Mutation{{
		Row:      target.Row,
		StartCol: e.layout.LastCheckedCol,
		Values:   []sheetstore.Value{sheetstore.TextValue(e.now().Format(lastCheckedFormat))},
	}})
	res.TimestampWritten = tsErr == nil
	if tsErr != nil {
		span.RecordError(tsErr)
	}

	muts := e.buildMutations(target, d)
	attempts, err := e.policy().Do(ctx, func() error {
		return e.store.BatchMutate(ctx, muts)
	})
	res.Attempts = attempts
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "decision write failed")
		res.Message = failureMessage(err, attempts, tsErr)
		return res
	}

	res.Success = true
	res.PriceWritten = d.HasNewPrice
	res.Message = successMessage(target, d, tsErr)
	span.SetAttributes(attribute.Int("attempts", attempts))

	e.clock.Sleep(e.cooldown())
	return res
}

func (e *Engine) cooldown() time.Duration {
	d := e.config.Cooldown
	if e.config.CooldownJitter > 0 {
		d += time.Duration(e.rng.Int63n(int64(e.config.CooldownJitter)))
	}
	return d
}

func (e *Engine) buildMutations(target Target, d arbiter.Decision) []sheetstore.Mutation {
	layout := e.layout
	muts := []sheetstore.Mutation{{
		Row:      target.Row,
		StartCol: layout.NoteCol,
		Values:   []sheetstore.Value{sheetstore.TextValue(d.Note.CellText(d.Stale))},
	}}

	if d.HasNewPrice {
		muts = append(muts, sheetstore.Mutation{
			Row:      target.Row,
			StartCol: layout.PriceCol,
			Values:   []sheetstore.Value{sheetstore.NumberValue(d.NewPrice)},
		})
		shipping := sheetstore.TextValue("")
		if d.HasShipping {
			shipping = sheetstore.NumberValue(d.ShippingFee)
		}
		muts = append(muts, sheetstore.Mutation{
			Row:      target.Row,
			StartCol: layout.ShippingCol,
			Values:   []sheetstore.Value{shipping},
		})
		muts = append(muts, sheetstore.Mutation{
			Row:      target.Row,
			StartCol: layout.SourceCol,
			Values:   []sheetstore.Value{sheetstore.TextValue(d.SupplierName)},
		})
	}

	if d.Format.RowFill != nil {
		muts = append(muts, sheetstore.Mutation{
			Row:      target.Row,
			StartCol: 0,
			EndCol:   layout.RowEndCol,
			Fill:     d.Format.RowFill,
		})
	}
	if d.Format.NoteFill != nil || d.Format.NoteText != nil {
		muts = append(muts, sheetstore.Mutation{
			Row:       target.Row,
			StartCol:  layout.NoteCol,
			EndCol:    layout.NoteCol,
			Fill:      d.Format.NoteFill,
			TextColor: d.Format.NoteText,
		})
	}
	return muts
}

func successMessage(target Target, d arbiter.Decision, tsErr error) string {
	var msg string
	switch {
	case d.Note == arbiter.NoteBlocked:
		msg = "all sources blocked, price kept"
	case !d.HasNewPrice:
		msg = "no usable source data, price kept"
	case d.Note == arbiter.NoteUnchanged:
		msg = fmt.Sprintf("price confirmed at %.2f from %s", d.NewPrice, d.SupplierName)
	default:
		msg = fmt.Sprintf("price set to %.2f (%s) from %s", d.NewPrice, d.Note, d.SupplierName)
	}
	if d.Stale {
		msg += ", out-of-stock fallback"
	}
	if tsErr != nil {
		msg += fmt.Sprintf("; last-checked write failed: %s", tsErr)
	}
	return msg
}

func failureMessage(err error, attempts int, tsErr error) string {
	msg := fmt.Sprintf("sheet write error after %d attempt(s): %s", attempts, err)
	if sheetstore.IsQuota(err) {
		msg = fmt.Sprintf("quota exhausted after %d attempt(s): %s", attempts, err)
	}
	if tsErr != nil {
		msg += "; last-checked write also failed"
	}
	return msg
}
