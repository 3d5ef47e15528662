package sheetstore

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func TestParseRange(t *testing.T) {
	r, err := ParseRange("A2:AH600")
	require.NoError(t, err)
	require.Equal(t, Range{StartRow: 1, EndRow: 599, StartCol: 0, EndCol: 33}, r)

	r, err = ParseRange("B5")
	require.NoError(t, err)
	require.Equal(t, Range{StartRow: 4, EndRow: 4, StartCol: 1, EndCol: 1}, r)

	r, err = ParseRange("A2:AH")
	require.NoError(t, err)
	require.Equal(t, -1, r.EndRow)
	require.Equal(t, 33, r.EndCol)
}

func TestParseRangeRejectsGarbage(t *testing.T) {
	for _, bad := range []string{"", "123", "A0", "C3:A1", ":B2"} {
		_, err := ParseRange(bad)
		require.Error(t, err, "input %q", bad)
	}
}

func TestColumnName(t *testing.T) {
	require.Equal(t, "A", ColumnName(0))
	require.Equal(t, "Z", ColumnName(25))
	require.Equal(t, "AA", ColumnName(26))
	require.Equal(t, "AH", ColumnName(33))
}

func TestMutationSpan(t *testing.T) {
	m := Mutation{Row: 1, StartCol: 3, Values: []Value{TextValue("a"), TextValue("b")}}
	start, end := m.Span()
	require.Equal(t, 3, start)
	require.Equal(t, 4, end)

	fillOnly := Mutation{Row: 1, StartCol: 0, EndCol: 33}
	start, end = fillOnly.Span()
	require.Equal(t, 0, start)
	require.Equal(t, 33, end)
}

func TestIsQuota(t *testing.T) {
	require.True(t, IsQuota(&TransportError{Status: http.StatusTooManyRequests}))
	require.False(t, IsQuota(&TransportError{Status: http.StatusInternalServerError}))
	require.False(t, IsQuota(errors.New("plain")))
}

func TestSQLiteRoundTrip(t *testing.T) {
	raw, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { raw.Close() })

	store, err := NewSQLite(raw)
	require.NoError(t, err)

	ctx := context.Background()
	yellow := Yellow
	err = store.BatchMutate(ctx, []Mutation{
		{Row: 1, StartCol: 23, Values: []Value{NumberValue(19.99)}},
		{Row: 1, StartCol: 0, Values: []Value{TextValue("Down")}},
		{Row: 1, StartCol: 0, EndCol: 33, Fill: &yellow},
	})
	require.NoError(t, err)

	grid, err := store.ReadRange(ctx, "A2:AH2")
	require.NoError(t, err)
	require.Len(t, grid, 1)

	expected := make([]Value, 34)
	expected[0] = TextValue("Down")
	expected[23] = NumberValue(19.99)
	diff := cmp.Diff(expected, grid[0])
	if diff != "" {
		t.Fatal(diff)
	}
}

func TestSQLiteUpsertOverwrites(t *testing.T) {
	raw, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { raw.Close() })

	store, err := NewSQLite(raw)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.BatchMutate(ctx, []Mutation{
		{Row: 3, StartCol: 23, Values: []Value{NumberValue(100)}},
	}))
	require.NoError(t, store.BatchMutate(ctx, []Mutation{
		{Row: 3, StartCol: 23, Values: []Value{NumberValue(90)}},
	}))

	grid, err := store.ReadRange(ctx, "X4")
	require.NoError(t, err)
	require.Len(t, grid, 1)
	require.InDelta(t, 90, grid[0][0].Number, 0.001)
}

func TestFakeStoreScriptedFailure(t *testing.T) {
	f := NewFake()
	f.MutateErrs = []error{&TransportError{Status: 429, Op: "batch mutate"}, nil}

	ctx := context.Background()
	err := f.BatchMutate(ctx, []Mutation{{Row: 1, StartCol: 0, Values: []Value{TextValue("x")}}})
	require.True(t, IsQuota(err))

	require.NoError(t, f.BatchMutate(ctx, []Mutation{{Row: 1, StartCol: 0, Values: []Value{TextValue("x")}}}))
	v, ok := f.Cell(1, 0)
	require.True(t, ok)
	require.Equal(t, "x", v.Text)
	require.Equal(t, 2, f.MutateCalls())
}
