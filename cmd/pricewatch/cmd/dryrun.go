package cmd

import (
	"context"
	"log/slog"

	"pricewatch/lib/sheetstore"
)

// readOnlyStore reads through to the real store but swallows mutations, used
// by --dry-run.
type readOnlyStore struct {
	inner sheetstore.Store
}

func shadowStore(inner sheetstore.Store) sheetstore.Store {
	return readOnlyStore{inner: inner}
}

func (s readOnlyStore) ReadRange(ctx context.Context, rng string) ([][]sheetstore.Value, error) {
	return s.inner.ReadRange(ctx, rng)
}

func (s readOnlyStore) BatchMutate(ctx context.Context, muts []sheetstore.Mutation) error {
	for _, m := range muts {
		for i, v := range m.Values {
			slog.InfoContext(ctx, "dry-run mutation",
				"row", m.Row,
				"col", sheetstore.ColumnName(m.StartCol+i),
				"value", v.String(),
			)
		}
	}
	return nil
}
