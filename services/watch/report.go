package watch

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
)

const timeRounding = time.Millisecond * 10

// SummaryTable renders the run report for terminals and the summary email.
func (r Report) SummaryTable() string {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Run", r.RunID})
	t.AppendRows([]table.Row{
		{"Started", r.Started.Format("2006-01-02 15:04:05")},
		{"Duration", r.Duration.Round(timeRounding).String()},
		{"Processed", r.Stats.Processed},
		{"Updated", r.Stats.Updated},
		{"Unchanged", r.Stats.Unchanged},
		{"Failed", r.Stats.Failed},
		{"Skipped", r.Stats.Skipped},
		{"Success rate", fmt.Sprintf("%.1f%%", r.Stats.SuccessRate()*100)},
	})
	return t.Render()
}
