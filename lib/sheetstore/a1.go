package sheetstore

import (
	"fmt"
	"strconv"
	"strings"
)

// Range is a parsed A1-style rectangle with zero-based, inclusive bounds.
// EndRow is -1 when the range is open-ended ("A2:AH").
type Range struct {
	StartRow, EndRow int
	StartCol, EndCol int
}

// ParseRange parses "A2:AH600", "A2:AH" or a single cell like "B5".
func ParseRange(rng string) (Range, error) {
	rng = strings.TrimSpace(rng)
	if rng == "" {
		return Range{}, fmt.Errorf("empty range")
	}
	parts := strings.SplitN(rng, ":", 2)

	startCol, startRow, err := parseCell(parts[0])
	if err != nil {
		return Range{}, fmt.Errorf("range %q: %w", rng, err)
	}
	if len(parts) == 1 {
		return Range{StartRow: startRow, EndRow: startRow, StartCol: startCol, EndCol: startCol}, nil
	}

	endCol, endRow, err := parseCell(parts[1])
	if err != nil {
		return Range{}, fmt.Errorf("range %q: %w", rng, err)
	}
	if endCol < startCol || (endRow >= 0 && startRow >= 0 && endRow < startRow) {
		return Range{}, fmt.Errorf("range %q: end before start", rng)
	}
	return Range{StartRow: startRow, EndRow: endRow, StartCol: startCol, EndCol: endCol}, nil
}

// parseCell splits "AH600" into a zero-based column and row. A bare column
// reference yields row -1, used for open-ended ranges.
func parseCell(cell string) (col, row int, err error) {
	cell = strings.ToUpper(strings.TrimSpace(cell))
	i := 0
	for i < len(cell) && cell[i] >= 'A' && cell[i] <= 'Z' {
		i++
	}
	if i == 0 {
		return 0, 0, fmt.Errorf("cell %q: no column letters", cell)
	}

	col = 0
	for _, c := range cell[:i] {
		col = col*26 + int(c-'A') + 1
	}
	col--

	if i == len(cell) {
		return col, -1, nil
	}
	n, err := strconv.Atoi(cell[i:])
	if err != nil || n < 1 {
		return 0, 0, fmt.Errorf("cell %q: bad row number", cell)
	}
	return col, n - 1, nil
}

// ColumnName renders a zero-based column index as A1 letters.
func ColumnName(col int) string {
	name := ""
	for col >= 0 {
		name = string(rune('A'+col%26)) + name
		col = col/26 - 1
	}
	return name
}
