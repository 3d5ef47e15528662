package sheetstore

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

var tracer = otel.Tracer("pricewatch.lib.sheetstore")

//go:embed schema.sql
var schema string

// SQLiteStore keeps the sheet in a local cell table, used for offline runs
// and tests. The same database/sql surface also serves a libsql remote.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite wraps an open database handle and ensures the schema exists.
func NewSQLite(db *sql.DB) (*SQLiteStore, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("apply sheet schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// OpenSQLite opens (or creates) a sheet database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sheet db: %w", err)
	}
	store, err := NewSQLite(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ReadRange(ctx context.Context, rng string) ([][]Value, error) {
	ctx, span := tracer.Start(ctx, "ReadRange")
	defer span.End()

	bounds, err := ParseRange(rng)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	endRow := bounds.EndRow
	if endRow < 0 {
		err := s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(row), -1) FROM cells").Scan(&endRow)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("resolve open range: %w", err)
		}
	}
	if endRow < bounds.StartRow {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT row, col, text, number FROM cells
		 WHERE row BETWEEN ? AND ? AND col BETWEEN ? AND ?
		 ORDER BY row, col`,
		bounds.StartRow, endRow, bounds.StartCol, bounds.EndCol)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("read range %q: %w", rng, err)
	}
	defer rows.Close()

	width := bounds.EndCol - bounds.StartCol + 1
	grid := make([][]Value, endRow-bounds.StartRow+1)
	for i := range grid {
		grid[i] = make([]Value, width)
	}
	for rows.Next() {
		var (
			row, col int
			text     string
			number   sql.NullFloat64
		)
		if err := rows.Scan(&row, &col, &text, &number); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("scan cell: %w", err)
		}
		cell := TextValue(text)
		if number.Valid {
			cell = NumberValue(number.Float64)
		}
		grid[row-bounds.StartRow][col-bounds.StartCol] = cell
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("read range %q: %w", rng, err)
	}
	return grid, nil
}

func (s *SQLiteStore) BatchMutate(ctx context.Context, muts []Mutation) error {
	ctx, span := tracer.Start(ctx, "BatchMutate")
	defer span.End()

	if len(muts) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("begin mutate: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	for _, m := range muts {
		if err := applyMutation(ctx, tx, m, now); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("commit mutate: %w", err)
	}
	return nil
}

func applyMutation(ctx context.Context, tx *sql.Tx, m Mutation, now int64) error {
	for i, v := range m.Values {
		col := m.StartCol + i
		var number sql.NullFloat64
		if v.Numeric {
			number = sql.NullFloat64{Float64: v.Number, Valid: true}
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO cells (row, col, text, number, updated_at)
			 VALUES (?, ?, ?, ?, ?)
			 ON CONFLICT (row, col) DO UPDATE SET
			   text = excluded.text,
			   number = excluded.number,
			   updated_at = excluded.updated_at`,
			m.Row, col, v.Text, number, now)
		if err != nil {
			return fmt.Errorf("write cell (%d,%d): %w", m.Row, col, err)
		}
	}

	if m.Fill == nil && m.TextColor == nil {
		return nil
	}
	fill, err := colorJSON(m.Fill)
	if err != nil {
		return err
	}
	textColor, err := colorJSON(m.TextColor)
	if err != nil {
		return err
	}
	start, end := m.Span()
	for col := start; col <= end; col++ {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO cells (row, col, fill, text_color, updated_at)
			 VALUES (?, ?, ?, ?, ?)
			 ON CONFLICT (row, col) DO UPDATE SET
			   fill = COALESCE(excluded.fill, cells.fill),
			   text_color = COALESCE(excluded.text_color, cells.text_color),
			   updated_at = excluded.updated_at`,
			m.Row, col, fill, textColor, now)
		if err != nil {
			return fmt.Errorf("format cell (%d,%d): %w", m.Row, col, err)
		}
	}
	return nil
}

func colorJSON(c *Color) (sql.NullString, error) {
	if c == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(c)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("encode color: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}
