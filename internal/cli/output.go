package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/johan-st/shopdash/internal/catalog"
	"github.com/johan-st/shopdash/internal/datatable"
	"github.com/mattn/go-runewidth"
)

// maxCellWidth caps table columns; longer cells are truncated.
const maxCellWidth = 40

// printJSON writes JSON to a writer.
func printJSON(w io.Writer, v any) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}

// printCSV writes headers and rows as CSV.
func printCSV(w io.Writer, headers []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(headers); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}

// printTable writes an aligned text table. Widths are measured in terminal
// cells so wide runes line up.
func printTable(w io.Writer, headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], min(runewidth.StringWidth(cell), maxCellWidth))
			}
		}
	}

	line := func(cells []string) {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			cell = runewidth.Truncate(cell, widths[i], "…")
			if i == len(cells)-1 {
				parts[i] = cell
			} else {
				parts[i] = runewidth.FillRight(cell, widths[i])
			}
		}
		fmt.Fprintln(w, strings.TrimRight(strings.Join(parts, "  "), " "))
	}

	upper := make([]string, len(headers))
	for i, h := range headers {
		upper[i] = strings.ToUpper(h)
	}
	line(upper)
	for _, row := range rows {
		line(row)
	}
}

// printListing writes a listing as a table followed by its page bar.
func printListing(w io.Writer, l catalog.Listing) {
	headers := append([]string{"ID"}, l.Headers...)
	rows := make([][]string, len(l.Rows))
	for i, row := range l.Rows {
		rows[i] = append([]string{l.IDs[i]}, row...)
	}
	if l.Empty() {
		printTable(w, headers, nil)
		fmt.Fprintln(w, datatable.NoResults)
	} else {
		printTable(w, headers, rows)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, pageBar(l.Page, l.Markers))
}

// pageBar renders e.g. "Page 2 of 9 (87 items)  ‹ 1 [2] 3 … 9 ›".
func pageBar(p datatable.PageState, markers []datatable.Marker) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Page %d of %d (%d items)", p.CurrentPage, p.LastPage(), p.TotalItems)
	if len(markers) == 0 {
		return b.String()
	}
	b.WriteString("  ")
	if p.HasPrev() {
		b.WriteString("‹ ")
	}
	for i, m := range markers {
		if i > 0 {
			b.WriteString(" ")
		}
		switch {
		case m.Ellipsis:
			b.WriteString("…")
		case m.Current:
			fmt.Fprintf(&b, "[%d]", m.Page)
		default:
			fmt.Fprintf(&b, "%d", m.Page)
		}
	}
	if p.HasNext() {
		b.WriteString(" ›")
	}
	return b.String()
}
