// Package sheetstore is the remote product-sheet capability: read a
// rectangular range of cells, apply a batch of cell mutations. Implementations
// wrap the actual transport; callers only see ranges, values and colors.
package sheetstore

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
)

// Color is an RGB triple in the 0..1 channel space the sheet transport
// expects.
type Color struct {
	Red   float64 `json:"red"`
	Green float64 `json:"green"`
	Blue  float64 `json:"blue"`
}

// RGB builds a Color from 8-bit channels.
func RGB(r, g, b uint8) Color {
	return Color{
		Red:   float64(r) / 255,
		Green: float64(g) / 255,
		Blue:  float64(b) / 255,
	}
}

var (
	White  = RGB(255, 255, 255)
	Black  = RGB(0, 0, 0)
	Blue   = RGB(61, 133, 198)
	Yellow = RGB(255, 249, 196)
)

// Value is one cell's content. Numeric cells keep their float so price
// comparisons do not round-trip through strings.
type Value struct {
	Text    string
	Number  float64
	Numeric bool
}

func TextValue(s string) Value {
	return Value{Text: s}
}

func NumberValue(f float64) Value {
	return Value{Number: f, Numeric: true}
}

// String renders the cell the way it would appear in the sheet.
func (v Value) String() string {
	if v.Numeric {
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	}
	return v.Text
}

// Mutation is one independent cell update: values written left to right from
// (Row, StartCol), plus optional formatting over [StartCol, EndCol]. A
// mutation with no values and only a fill repaints the range.
type Mutation struct {
	Row      int
	StartCol int
	// inclusive; when zero the span is derived from Values
	EndCol    int
	Values    []Value
	Fill      *Color
	TextColor *Color
}

// Span returns the inclusive column range the mutation covers.
func (m Mutation) Span() (int, int) {
	end := m.EndCol
	if last := m.StartCol + len(m.Values) - 1; last > end {
		end = last
	}
	if end < m.StartCol {
		end = m.StartCol
	}
	return m.StartCol, end
}

// Store is the remote sheet capability. Both operations honor ctx; ReadRange
// takes an A1-style range within the configured sheet.
type Store interface {
	ReadRange(ctx context.Context, rng string) ([][]Value, error)
	BatchMutate(ctx context.Context, muts []Mutation) error
}

// TransportError is a failed store call. Status carries the HTTP-shaped
// status code the transport reported.
type TransportError struct {
	Status int
	Op     string
	Msg    string
}

func (e *TransportError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("%s: transport status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: transport status %d: %s", e.Op, e.Status, e.Msg)
}

// IsQuota reports whether err is a rate-limit/quota rejection, the only
// transport failure worth retrying.
func IsQuota(err error) bool {
	var te *TransportError
	return errors.As(err, &te) && te.Status == http.StatusTooManyRequests
}
