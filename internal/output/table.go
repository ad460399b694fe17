package output

import (
	"github.com/jedib0t/go-pretty/v6/table"
)

// Table prints rows under headers with a light borderless style.
func (w *Writer) Table(headers []string, rows [][]string) {
	w.Println("%s", renderTable(headers, rows, nil))
}

func renderTable(headers []string, rows [][]string, footer []string) string {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.SeparateColumns = false
	tbl.Style().Options.DrawBorder = false

	tbl.AppendHeader(toRow(headers))
	for _, row := range rows {
		tbl.AppendRow(toRow(row))
	}
	if len(footer) > 0 {
		tbl.AppendFooter(toRow(footer))
	}
	return tbl.Render()
}

func toRow(cells []string) table.Row {
	row := make(table.Row, len(cells))
	for i, c := range cells {
		row[i] = c
	}
	return row
}
