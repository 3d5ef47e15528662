package arbiter

import "pricewatch/lib/sheetstore"

// Note is the short status label attached to a product record.
type Note int

const (
	// no usable data, nothing to say
	NoteEmpty Note = iota
	NoteUp
	NoteDown
	// price matched the prior exactly
	NoteUnchanged
	NoteBlocked
	// price at or above the high-value threshold, flagged regardless of
	// direction
	NotePriceTier
)

// String is the log-facing name of the note.
func (n Note) String() string {
	switch n {
	case NoteUp:
		return "Up"
	case NoteDown:
		return "Down"
	case NoteUnchanged:
		return "Unchanged"
	case NoteBlocked:
		return "Blocked"
	case NotePriceTier:
		return "PriceTierFlag"
	default:
		return "Empty"
	}
}

// CellText renders the note as written into the sheet. Unchanged and Empty
// both clear the cell; Up and Down carry a trailing star when the price came
// from the out-of-stock fallback.
func (n Note) CellText(stale bool) string {
	switch n {
	case NoteUp:
		if stale {
			return "Up*"
		}
		return "Up"
	case NoteDown:
		if stale {
			return "Down*"
		}
		return "Down"
	case NoteBlocked:
		return "Blocked"
	case NotePriceTier:
		return "$$$"
	default:
		return ""
	}
}

// Format carries the cell coloring that accompanies a decision. Nil fields
// mean "leave as is".
type Format struct {
	RowFill  *sheetstore.Color
	NoteFill *sheetstore.Color
	NoteText *sheetstore.Color
}

// Decision is what the sync layer writes for one product.
type Decision struct {
	Note  Note
	Stale bool

	// the winner's base price, shipping excluded; prior is kept when absent
	NewPrice    float64
	HasNewPrice bool

	ShippingFee float64
	HasShipping bool

	SupplierName string
	SourceURL    string

	Format Format
}

// Config tunes the decision rules.
type Config struct {
	// prices at or above this get the tier flag; defaults to 299.99
	HighValueThreshold float64
}

const DefaultHighValueThreshold = 299.99

// Decide turns an arbitration outcome plus the prior recorded price into the
// sheet decision. The threshold check runs before the up/down comparison, so
// a high-value price is always flagged regardless of direction.
func Decide(priorPrice float64, hasPrior bool, outcome Outcome, cfg Config) Decision {
	threshold := cfg.HighValueThreshold
	if threshold == 0 {
		threshold = DefaultHighValueThreshold
	}

	if outcome.AllBlocked {
		blue := sheetstore.Blue
		white := sheetstore.White
		return Decision{
			Note: NoteBlocked,
			Format: Format{
				NoteFill: &white,
				NoteText: &blue,
			},
		}
	}

	if outcome.Winner == nil {
		// out-of-stock everywhere or no data at all: keep the prior price
		return Decision{Note: NoteEmpty}
	}

	winner := *outcome.Winner
	d := Decision{
		NewPrice:     winner.Price,
		HasNewPrice:  true,
		ShippingFee:  winner.ShippingFee,
		HasShipping:  winner.HasShipping,
		SupplierName: winner.SupplierName,
		SourceURL:    winner.URL,
		Stale:        outcome.StaleFallback,
	}

	switch {
	case winner.Price >= threshold:
		d.Note = NotePriceTier
	case !hasPrior:
		d.Note = NoteEmpty
	case winner.Price > priorPrice:
		d.Note = NoteUp
	case winner.Price < priorPrice:
		d.Note = NoteDown
	default:
		d.Note = NoteUnchanged
	}

	if outcome.StaleFallback {
		yellow := sheetstore.Yellow
		d.Format.RowFill = &yellow
	} else {
		white := sheetstore.White
		d.Format.RowFill = &white
	}
	return d
}
