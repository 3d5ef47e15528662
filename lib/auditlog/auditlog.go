// Package auditlog writes the append-only per-product audit trail. The line
// format is stable and consumed by downstream tooling, do not reorder fields.
package auditlog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"pricewatch/lib/timezone"
)

const (
	noData     = "No Data"
	timeFormat = "2006-01-02 15:04:05"

	maxProductIDLen = 100
)

// messages matching any of these are mirrored into the error-only log
var errorKeywords = []string{
	"blocked",
	"captcha",
	"timeout",
	"error",
	"failed",
	"quota",
}

// Entry is one product's final status for one run.
type Entry struct {
	Row       int
	ProductID string

	OldPrice    float64
	HasOldPrice bool
	NewPrice    float64
	HasNewPrice bool

	Success bool
	Message string
}

// Logger appends audit lines to a main writer and mirrors failure-looking
// lines to an error-only writer. Safe for concurrent use.
type Logger struct {
	mu     sync.Mutex
	out    io.Writer
	errOut io.Writer
	now    func() time.Time
}

// New builds a logger over explicit writers. errOut may be nil to disable
// the error mirror. nowFn may be nil for the pinned wall clock.
func New(out, errOut io.Writer, nowFn func() time.Time) *Logger {
	if nowFn == nil {
		nowFn = timezone.Now
	}
	return &Logger{out: out, errOut: errOut, now: nowFn}
}

// Open creates the audit and error log files under dir and stamps the run id
// at the top of the main log. The returned closer flushes both files.
func Open(dir, runID string) (*Logger, func() error, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create audit log dir: %w", err)
	}
	flags := os.O_CREATE | os.O_WRONLY | os.O_APPEND
	main, err := os.OpenFile(filepath.Join(dir, "audit.log"), flags, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open audit log: %w", err)
	}
	errs, err := os.OpenFile(filepath.Join(dir, "audit_errors.log"), flags, 0o644)
	if err != nil {
		main.Close()
		return nil, nil, fmt.Errorf("open error log: %w", err)
	}

	l := New(main, errs, nil)
	fmt.Fprintf(main, "[%s] Run started, Run ID: %s\n", l.now().Format(timeFormat), runID)

	closer := func() error {
		errClose := errs.Close()
		if err := main.Close(); err != nil {
			return err
		}
		return errClose
	}
	return l, closer, nil
}

// Record appends one line for the entry, mirroring it to the error log when
// the message carries a failure keyword.
func (l *Logger) Record(e Entry) error {
	line := l.format(e)

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := io.WriteString(l.out, line+"\n"); err != nil {
		return fmt.Errorf("write audit line: %w", err)
	}
	if l.errOut != nil && looksLikeError(e.Message) {
		if _, err := io.WriteString(l.errOut, line+"\n"); err != nil {
			return fmt.Errorf("write error line: %w", err)
		}
	}
	return nil
}

func (l *Logger) format(e Entry) string {
	status := "Failed"
	if e.Success {
		status = "Success"
	}
	return fmt.Sprintf("[%s] Row: %d, Product ID: %s, Old Price: %s, New Price: %s, Status: %s, Message: %s",
		l.now().Format(timeFormat),
		e.Row,
		truncateID(e.ProductID),
		formatPrice(e.OldPrice, e.HasOldPrice),
		formatPrice(e.NewPrice, e.HasNewPrice),
		status,
		e.Message,
	)
}

func formatPrice(p float64, present bool) string {
	if !present {
		return noData
	}
	return strconv.FormatFloat(p, 'f', 2, 64)
}

// truncateID keeps the head and tail of oversized ids so both the prefix and
// the trailing disambiguator stay visible.
func truncateID(id string) string {
	if len(id) <= maxProductIDLen {
		return id
	}
	return id[:50] + "..." + id[len(id)-47:]
}

func looksLikeError(message string) bool {
	lower := strings.ToLower(message)
	for _, kw := range errorKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
