package sheetstore

import (
	"context"
	"sync"
)

// Fake is an in-memory Store for tests and dry runs. It records every
// mutation batch and can be scripted to fail.
type Fake struct {
	mu    sync.Mutex
	cells map[[2]int]Value

	// applied batches, in order
	Batches [][]Mutation
	// errors returned by successive BatchMutate calls; nil entries succeed,
	// calls past the end succeed
	MutateErrs []error
	ReadErr    error

	mutateCalls int
}

func NewFake() *Fake {
	return &Fake{cells: map[[2]int]Value{}}
}

// Set seeds one cell.
func (f *Fake) Set(row, col int, v Value) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cells[[2]int{row, col}] = v
}

// Cell reads one cell back, post-mutation.
func (f *Fake) Cell(row, col int) (Value, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.cells[[2]int{row, col}]
	return v, ok
}

func (f *Fake) ReadRange(ctx context.Context, rng string) ([][]Value, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ReadErr != nil {
		return nil, f.ReadErr
	}

	bounds, err := ParseRange(rng)
	if err != nil {
		return nil, err
	}
	endRow := bounds.EndRow
	if endRow < 0 {
		endRow = -1
		for key := range f.cells {
			if key[0] > endRow {
				endRow = key[0]
			}
		}
	}
	if endRow < bounds.StartRow {
		return nil, nil
	}

	grid := make([][]Value, endRow-bounds.StartRow+1)
	for i := range grid {
		grid[i] = make([]Value, bounds.EndCol-bounds.StartCol+1)
		for j := range grid[i] {
			if v, ok := f.cells[[2]int{bounds.StartRow + i, bounds.StartCol + j}]; ok {
				grid[i][j] = v
			}
		}
	}
	return grid, nil
}

func (f *Fake) BatchMutate(ctx context.Context, muts []Mutation) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	call := f.mutateCalls
	f.mutateCalls++
	if call < len(f.MutateErrs) && f.MutateErrs[call] != nil {
		return f.MutateErrs[call]
	}

	f.Batches = append(f.Batches, muts)
	for _, m := range muts {
		for i, v := range m.Values {
			f.cells[[2]int{m.Row, m.StartCol + i}] = v
		}
	}
	return nil
}

// MutateCalls reports how many BatchMutate calls were made, including the
// scripted failures.
func (f *Fake) MutateCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mutateCalls
}
