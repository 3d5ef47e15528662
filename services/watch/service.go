// Package watch drives a full pricing run: read the product table, probe
// every supplier per product, arbitrate, decide, and sync the result back.
// Products are processed strictly one at a time, which keeps the page
// collaborator single-user and the sheet's rate limit trivial to respect.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"pricewatch/lib/arbiter"
	"pricewatch/lib/page"
	"pricewatch/lib/priceparse"
	"pricewatch/lib/probe"
	"pricewatch/lib/sheetstore"
	"pricewatch/services/sheetsync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("pricewatch.services.watch")

// product id doubles as the in-use supplier link
const productIDCol = 31

// supplierURLCols lists every column that may hold a listing URL, in
// priority order. The in-use supplier comes first.
var supplierURLCols = []int{31, 33, 34, 35, 36, 37, 38, 39, 40, 41, 42}

type Config struct {
	// A1 range of the product table; defaults to "A2:AQ"
	SheetRange string `json:"sheet_range"`
	// stop after this many products; 0 processes everything
	RowLimit int `json:"row_limit"`
	// zero-based row offset of the first data row inside SheetRange
	FirstDataRow int `json:"-"`
	// passed through to the decision rules
	HighValueThreshold float64 `json:"high_value_threshold"`
	// assigned by the caller to correlate logs; generated when empty
	RunID string `json:"-"`
}

// ProductRecord is one sheet row lifted into typed fields.
type ProductRecord struct {
	// zero-based sheet row
	Row        int
	ProductID  string
	PriorPrice float64
	HasPrior   bool
	SourceURLs []string
}

// Stats accumulates per-run counters.
type Stats struct {
	Processed int
	Updated   int
	Unchanged int
	Failed    int
	Skipped   int
}

// SuccessRate is the share of processed products that synced cleanly.
func (s Stats) SuccessRate() float64 {
	if s.Processed == 0 {
		return 0
	}
	return float64(s.Processed-s.Failed) / float64(s.Processed)
}

// Report is the outcome of one full run.
type Report struct {
	RunID    string
	Started  time.Time
	Duration time.Duration
	Stats    Stats
}

type Service struct {
	store  sheetstore.Store
	pg     page.Page
	prober *probe.Prober
	sync   *sheetsync.Engine
	config Config
}

func NewService(store sheetstore.Store, pg page.Page, prober *probe.Prober, sync *sheetsync.Engine, config Config) Service {
	if config.SheetRange == "" {
		config.SheetRange = "A2:AQ"
	}
	return Service{
		store:  store,
		pg:     pg,
		prober: prober,
		sync:   sync,
		config: config,
	}
}

// Run processes the whole product table and returns the run report. The
// returned error covers only the initial snapshot read; per-product failures
// land in the stats and the audit log instead of aborting the run.
func (s Service) Run(ctx context.Context) (Report, error) {
	runID := s.config.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	ctx, span := tracer.Start(ctx, "Run", trace.WithAttributes(
		attribute.String("run_id", runID),
	))
	defer span.End()

	report := Report{RunID: runID, Started: time.Now()}
	defer func() {
		report.Duration = time.Since(report.Started)
	}()

	slog.InfoContext(ctx, "run started", "run_id", runID, "range", s.config.SheetRange)

	rows, err := s.store.ReadRange(ctx, s.config.SheetRange)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "snapshot read failed")
		return report, fmt.Errorf("read product table: %w", err)
	}

	bounds, err := sheetstore.ParseRange(s.config.SheetRange)
	if err != nil {
		return report, err
	}

	for i, row := range rows {
		if ctx.Err() != nil {
			slog.WarnContext(ctx, "run aborted", "run_id", runID, "err", ctx.Err())
			break
		}
		if i < s.config.FirstDataRow {
			continue
		}
		if s.config.RowLimit > 0 && report.Stats.Processed >= s.config.RowLimit {
			break
		}

		record, ok := buildRecord(bounds.StartRow+i, row)
		if !ok {
			report.Stats.Skipped++
			continue
		}
		report.Stats.Processed++
		s.processProduct(ctx, record, &report.Stats)
	}

	slog.InfoContext(ctx, "run finished",
		"run_id", runID,
		"processed", report.Stats.Processed,
		"updated", report.Stats.Updated,
		"failed", report.Stats.Failed,
		"skipped", report.Stats.Skipped,
		"success_rate", fmt.Sprintf("%.1f%%", report.Stats.SuccessRate()*100),
	)
	return report, nil
}

func (s Service) processProduct(ctx context.Context, record ProductRecord, stats *Stats) {
	ctx, span := tracer.Start(ctx, "processProduct", trace.WithAttributes(
		attribute.Int("row", record.Row),
	))
	defer span.End()

	results := make([]probe.SourceResult, 0, len(record.SourceURLs))
	for _, url := range record.SourceURLs {
		results = append(results, s.prober.Probe(ctx, s.pg, url))
	}

	outcome := arbiter.Arbitrate(results)
	decision := arbiter.Decide(record.PriorPrice, record.HasPrior, outcome, arbiter.Config{
		HighValueThreshold: s.config.HighValueThreshold,
	})

	res := s.sync.Sync(ctx, sheetsync.Target{
		Row:        record.Row,
		ProductID:  record.ProductID,
		PriorPrice: record.PriorPrice,
		HasPrior:   record.HasPrior,
	}, decision)

	switch {
	case !res.Success:
		stats.Failed++
	case res.PriceWritten && decision.Note != arbiter.NoteUnchanged:
		stats.Updated++
	default:
		stats.Unchanged++
	}
}

// buildRecord lifts one snapshot row. Rows with no listing URLs are not
// products and get skipped.
func buildRecord(rowIndex int, row []sheetstore.Value) (ProductRecord, bool) {
	record := ProductRecord{Row: rowIndex}

	for _, col := range supplierURLCols {
		if col >= len(row) {
			continue
		}
		text := strings.TrimSpace(row[col].Text)
		if strings.HasPrefix(text, "http://") || strings.HasPrefix(text, "https://") {
			record.SourceURLs = append(record.SourceURLs, text)
		}
	}
	if len(record.SourceURLs) == 0 {
		return ProductRecord{}, false
	}

	if productIDCol < len(row) {
		record.ProductID = strings.TrimSpace(row[productIDCol].String())
	}
	if record.ProductID == "" {
		record.ProductID = fmt.Sprintf("row-%d", rowIndex+1)
	}

	layout := sheetsync.DefaultLayout()
	if layout.PriceCol < len(row) {
		cell := row[layout.PriceCol]
		if cell.Numeric {
			record.PriorPrice = cell.Number
			record.HasPrior = true
		} else if price, ok := priceparse.Parse(cell.Text); ok {
			record.PriorPrice = price
			record.HasPrior = true
		}
	}
	return record, true
}
