package watch

import (
	"context"
	"strings"
	"testing"
	"time"

	"pricewatch/lib/auditlog"
	"pricewatch/lib/page"
	"pricewatch/lib/probe"
	"pricewatch/lib/sheetstore"
	"pricewatch/lib/telemetry"
	"pricewatch/services/sheetsync"

	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time        { return c.now }
func (c *fakeClock) Sleep(d time.Duration) { c.now = c.now.Add(d) }

func newService(store sheetstore.Store, pg page.Page, audit *strings.Builder, config Config) Service {
	clock := &fakeClock{now: time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)}
	log := auditlog.New(audit, nil, clock.Now)
	sync := sheetsync.New(store, log, sheetsync.Options{Clock: clock, Now: clock.Now})
	return NewService(store, pg, probe.New(probe.Options{}), sync, config)
}

func TestRunEndToEnd(t *testing.T) {
	cleanup := telemetry.SetupForTesting("test:services/watch")
	defer cleanup()

	const (
		inStockURL = "https://www.amazon.com/dp/B0E2E"
		blockedURL = "https://www.walmart.com/ip/5"
	)

	store := sheetstore.NewFake()
	store.Set(1, 23, sheetstore.NumberValue(100))
	store.Set(1, 31, sheetstore.TextValue(inStockURL))
	store.Set(1, 33, sheetstore.TextValue(blockedURL))

	pg := &page.Fake{Docs: map[string]string{
		inStockURL: `<html><body>
			<span class="a-price"><span class="a-offscreen">$90.00</span></span>
			<div id="add-to-cart-button">Add to Cart</div>
		</body></html>`,
		blockedURL: `<html><body><h1>Robot or human?</h1></body></html>`,
	}}

	var audit strings.Builder
	svc := newService(store, pg, &audit, Config{})

	report, err := svc.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, 1, report.Stats.Processed)
	require.Equal(t, 1, report.Stats.Updated)
	require.Zero(t, report.Stats.Failed)

	price, ok := store.Cell(1, 23)
	require.True(t, ok)
	require.InDelta(t, 90, price.Number, 0.001)

	note, ok := store.Cell(1, 0)
	require.True(t, ok)
	require.Equal(t, "Down", note.Text)

	source, ok := store.Cell(1, 31)
	require.True(t, ok)
	require.Equal(t, "Amazon", source.Text)

	lines := strings.Split(strings.TrimSpace(audit.String()), "\n")
	require.Len(t, lines, 1)
	require.Contains(t, lines[0], "Status: Success")
	require.Contains(t, lines[0], "Old Price: 100.00")
	require.Contains(t, lines[0], "New Price: 90.00")
}

func TestRunSkipsRowsWithoutURLs(t *testing.T) {
	store := sheetstore.NewFake()
	store.Set(1, 15, sheetstore.TextValue("Desk Lamp"))
	store.Set(2, 31, sheetstore.TextValue("https://shop.example.org/1"))
	store.Set(2, 23, sheetstore.NumberValue(50))

	pg := &page.Fake{Docs: map[string]string{
		"https://shop.example.org/1": `<html><body>
			<span class="price">$45.00</span>
			<div class="add-to-cart">Add</div>
		</body></html>`,
	}}

	var audit strings.Builder
	svc := newService(store, pg, &audit, Config{})

	report, err := svc.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, report.Stats.Skipped)
	require.Equal(t, 1, report.Stats.Processed)
	require.Equal(t, 1, report.Stats.Updated)
}

func TestRunRowLimit(t *testing.T) {
	store := sheetstore.NewFake()
	pg := &page.Fake{Docs: map[string]string{}}
	for row := 1; row <= 3; row++ {
		store.Set(row, 31, sheetstore.TextValue("https://shop.example.org/x"))
	}
	pg.Docs["https://shop.example.org/x"] = `<html><body>
		<span class="price">$5.50</span>
		<div class="add-to-cart">Add</div>
	</body></html>`

	var audit strings.Builder
	svc := newService(store, pg, &audit, Config{RowLimit: 2})

	report, err := svc.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, report.Stats.Processed)
}

func TestRunAllBlockedMarksRow(t *testing.T) {
	const url = "https://www.walmart.com/ip/9"
	store := sheetstore.NewFake()
	store.Set(1, 23, sheetstore.NumberValue(75))
	store.Set(1, 31, sheetstore.TextValue(url))

	pg := &page.Fake{Docs: map[string]string{
		url: `<html><body>Access Denied</body></html>`,
	}}

	var audit strings.Builder
	svc := newService(store, pg, &audit, Config{})

	report, err := svc.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, report.Stats.Processed)
	require.Zero(t, report.Stats.Failed, "a blocked product still syncs its note")

	note, ok := store.Cell(1, 0)
	require.True(t, ok)
	require.Equal(t, "Blocked", note.Text)

	price, ok := store.Cell(1, 23)
	require.True(t, ok)
	require.InDelta(t, 75, price.Number, 0.001)

	require.Contains(t, audit.String(), "blocked")
}

func TestSummaryTable(t *testing.T) {
	r := Report{
		RunID:   "run-1",
		Started: time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC),
		Stats:   Stats{Processed: 10, Updated: 6, Unchanged: 2, Failed: 2, Skipped: 1},
	}
	out := r.SummaryTable()
	require.Contains(t, out, "run-1")
	require.Contains(t, out, "80.0%")
}
