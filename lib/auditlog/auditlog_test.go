package auditlog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func fixedNow() time.Time {
	return time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
}

func TestRecordLineFormat(t *testing.T) {
	var out, errOut strings.Builder
	l := New(&out, &errOut, fixedNow)

	require.NoError(t, l.Record(Entry{
		Row:         5,
		ProductID:   "B0ABC123",
		OldPrice:    100,
		HasOldPrice: true,
		NewPrice:    90.5,
		HasNewPrice: true,
		Success:     true,
		Message:     "price updated",
	}))

	require.Equal(t,
		"[2025-03-14 09:26:53] Row: 5, Product ID: B0ABC123, Old Price: 100.00, New Price: 90.50, Status: Success, Message: price updated\n",
		out.String())
	require.Empty(t, errOut.String(), "a clean success line is not mirrored")
}

func TestRecordNoData(t *testing.T) {
	var out strings.Builder
	l := New(&out, nil, fixedNow)

	require.NoError(t, l.Record(Entry{
		Row:       2,
		ProductID: "X",
		Message:   "no price found on any source",
	}))

	line := out.String()
	require.Contains(t, line, "Old Price: No Data")
	require.Contains(t, line, "New Price: No Data")
	require.Contains(t, line, "Status: Failed")
}

func TestRecordErrorMirror(t *testing.T) {
	var out, errOut strings.Builder
	l := New(&out, &errOut, fixedNow)

	require.NoError(t, l.Record(Entry{Row: 1, ProductID: "A", Message: "all sources Blocked"}))
	require.NoError(t, l.Record(Entry{Row: 2, ProductID: "B", Success: true, Message: "unchanged"}))
	require.NoError(t, l.Record(Entry{Row: 3, ProductID: "C", Message: "navigation timeout"}))

	mainLines := strings.Split(strings.TrimSpace(out.String()), "\n")
	errLines := strings.Split(strings.TrimSpace(errOut.String()), "\n")
	require.Len(t, mainLines, 3)
	require.Len(t, errLines, 2)
	require.Contains(t, errLines[0], "Blocked")
	require.Contains(t, errLines[1], "timeout")
}

func TestTruncateLongProductID(t *testing.T) {
	var out strings.Builder
	l := New(&out, nil, fixedNow)

	long := strings.Repeat("a", 60) + strings.Repeat("b", 60)
	require.NoError(t, l.Record(Entry{Row: 1, ProductID: long, Message: "ok", Success: true}))

	require.NotContains(t, out.String(), long)
	rendered := strings.Repeat("a", 50) + "..." + strings.Repeat("b", 47)
	require.Contains(t, out.String(), rendered)
	require.Len(t, rendered, 100)
}

func TestTruncateShortIDUntouched(t *testing.T) {
	id := strings.Repeat("x", 100)
	require.Equal(t, id, truncateID(id))
}

func TestOpenWritesRunHeader(t *testing.T) {
	dir := t.TempDir()
	l, closeLogs, err := Open(dir, "run-42")
	require.NoError(t, err)

	require.NoError(t, l.Record(Entry{Row: 1, ProductID: "A", Success: true, Message: "ok"}))
	require.NoError(t, closeLogs())

	data, err := os.ReadFile(filepath.Join(dir, "audit.log"))
	require.NoError(t, err)
	require.Contains(t, string(data), "Run ID: run-42")
	require.Contains(t, string(data), "Row: 1")
}
