package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/johan-st/shopdash/internal/access"
	"github.com/johan-st/shopdash/internal/catalog"
	"github.com/johan-st/shopdash/internal/datatable"
	"github.com/johan-st/shopdash/internal/debounce"
	"github.com/johan-st/shopdash/internal/store"
	"github.com/mattn/go-runewidth"
)

const (
	minColWidth = 6
	maxColWidth = 36
)

// listRow is one rendered record. Cells are the resource's formatted
// columns; field lookups go to the record for client-mode search.
type listRow struct {
	id     string
	cells  []string
	record any
}

func (r listRow) Field(name string) any {
	if rec, ok := r.record.(datatable.Record); ok {
		return rec.Field(name)
	}
	return nil
}

func rowsOf(l catalog.Listing) []listRow {
	rows := make([]listRow, len(l.Rows))
	for i := range l.Rows {
		rows[i] = listRow{id: l.IDs[i], cells: l.Rows[i], record: l.Records[i]}
	}
	return rows
}

// pageHooks receive the row intents of a resource page.
type pageHooks struct {
	edit   func(id string) tea.Cmd
	delete func(id string) tea.Cmd
}

// resourcePage is the table view of one collection. The table owns page
// and query; its callbacks turn page changes, settled searches and row
// intents into commands that the page hands back to the app.
type resourcePage struct {
	ctx       context.Context
	coll      catalog.Collection
	table     *datatable.Table[listRow]
	search    textinput.Model
	searching bool
	hooks     pageHooks

	// next is the command queued by the last table callback.
	next    tea.Cmd
	cursor  int
	seq     int
	loading bool
	err     error
}

func newResourcePage(ctx context.Context, c catalog.Collection, limit int, delay time.Duration, hooks pageHooks) *resourcePage {
	in := textinput.New()
	in.Prompt = "/ "
	in.PromptStyle = promptStyle
	in.Placeholder = "Search " + strings.ToLower(c.Title()) + "..."
	in.CharLimit = 100

	p := &resourcePage{ctx: ctx, coll: c, search: in, hooks: hooks}

	headers := c.Headers()
	cols := make([]datatable.Column[listRow], len(headers))
	for i, h := range headers {
		cols[i] = datatable.Column[listRow]{
			Header: h,
			Render: func(r listRow) string {
				if i < len(r.cells) {
					return r.cells[i]
				}
				return ""
			},
		}
	}
	opts := datatable.Options[listRow]{
		Mode:         c.Mode(),
		Columns:      cols,
		SearchFields: c.SearchFields(),
		PageSize:     limit,
		Debounce:     delay,
		OnEdit:       func(r listRow) { p.queue(hooks.edit, r.id) },
		OnDelete:     func(r listRow) { p.queue(hooks.delete, r.id) },
	}
	if c.Mode() == datatable.ServerMode {
		opts.OnPageChange = func(int) { p.next = p.load() }
		opts.OnSearch = func(string) { p.next = p.load() }
	}
	p.table = datatable.New(opts)
	return p
}

func (p *resourcePage) queue(hook func(string) tea.Cmd, id string) {
	if hook != nil {
		p.next = hook(id)
	}
}

// take returns and clears the queued command.
func (p *resourcePage) take() tea.Cmd {
	cmd := p.next
	p.next = nil
	return cmd
}

// load requests data for the table: the whole collection in client mode,
// the current page in server mode. Replies to older requests are dropped.
func (p *resourcePage) load() tea.Cmd {
	p.seq++
	p.loading = true
	seq, name, coll, ctx := p.seq, p.coll.Name(), p.coll, p.ctx

	if p.table.Mode() == datatable.ClientMode {
		return func() tea.Msg {
			l, err := coll.Snapshot(ctx)
			return listingLoadedMsg{resource: name, seq: seq, listing: l, err: err}
		}
	}
	pg := p.table.Page()
	q := store.PageQuery{Page: pg.CurrentPage, Limit: pg.PageSize, Search: p.table.Query()}
	return func() tea.Msg {
		l, err := coll.List(ctx, q)
		return listingLoadedMsg{resource: name, seq: seq, listing: l, err: err}
	}
}

// apply hands a loaded listing to the table. It reports false for stale
// replies.
func (p *resourcePage) apply(msg listingLoadedMsg) bool {
	if msg.seq != p.seq {
		return false
	}
	p.loading = false
	p.err = msg.err
	if msg.err != nil {
		return true
	}
	rows := rowsOf(msg.listing)
	if p.table.Mode() == datatable.ClientMode {
		p.table.SetItems(rows)
	} else {
		p.table.SetPageData(rows, msg.listing.Page.TotalItems)
	}
	p.clampCursor()
	return true
}

// setQuery passes the search text to the table. Client-mode tables filter
// at once; server-mode ones return a tick that settles the search after
// the debounce delay.
func (p *resourcePage) setQuery(value string) tea.Cmd {
	ticket := p.table.SetQuery(value)
	p.cursor = 0
	if ticket == 0 {
		return nil
	}
	name := p.coll.Name()
	return tea.Tick(p.table.SearchDelay(), func(time.Time) tea.Msg {
		return searchSettledMsg{resource: name, ticket: ticket}
	})
}

// settle forwards a debounced search if ticket is still the newest.
func (p *resourcePage) settle(ticket debounce.Ticket) tea.Cmd {
	if !p.table.SettleSearch(ticket) {
		return nil
	}
	return p.take()
}

func (p *resourcePage) nextPage() tea.Cmd {
	if !p.table.NextPage() {
		return nil
	}
	p.cursor = 0
	return p.take()
}

func (p *resourcePage) prevPage() tea.Cmd {
	if !p.table.PrevPage() {
		return nil
	}
	p.cursor = 0
	return p.take()
}

// edit and remove emit the row intents for the row under the cursor.
func (p *resourcePage) edit() tea.Cmd {
	p.table.Edit(p.cursor)
	return p.take()
}

func (p *resourcePage) remove() tea.Cmd {
	p.table.Delete(p.cursor)
	return p.take()
}

func (p *resourcePage) clampCursor() {
	n := len(p.table.Rows())
	p.cursor = min(max(p.cursor, 0), max(n-1, 0))
}

func (p *resourcePage) moveCursor(delta int) {
	p.cursor += delta
	p.clampCursor()
}

// selected returns the id and record under the cursor.
func (p *resourcePage) selected() (string, any, bool) {
	r, ok := p.table.At(p.cursor)
	if !ok {
		return "", nil, false
	}
	return r.id, r.record, true
}

// view renders the page for a pane of the given inner size.
func (p *resourcePage) view(width, height int, spinner string) string {
	var b strings.Builder

	level := p.coll.Level(p.ctx)
	header := titleStyle.Render(p.coll.Title()) + " " + levelBadge(level)
	if p.coll.ReadOnly() {
		header += " " + dimItemStyle.Render("read-only")
	}
	if p.loading {
		header += " " + spinner
	}
	b.WriteString(header + "\n")

	if p.searching || p.search.Value() != "" {
		b.WriteString(p.search.View())
	} else {
		b.WriteString(dimItemStyle.Render("Press / to search"))
	}
	b.WriteString("\n\n")

	if p.err != nil {
		b.WriteString(errorStyle.Render(errText(p.err)))
		return b.String()
	}

	b.WriteString(p.renderTable(width, height-6))
	b.WriteString("\n")
	b.WriteString(p.renderPageBar())
	return b.String()
}

// renderTable draws the header, a rule and the visible rows.
func (p *resourcePage) renderTable(width, maxRows int) string {
	headers := p.table.Headers()
	if len(headers) == 0 {
		return ""
	}
	rows := p.table.Rows()

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = max(runewidth.StringWidth(h), minColWidth)
	}
	for _, row := range rows {
		for i, cell := range row.Cells {
			widths[i] = max(widths[i], min(runewidth.StringWidth(cell.Text), maxColWidth))
		}
	}
	fitWidths(widths, width)

	line := func(cells []string, style func(s string) string) string {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			text := runewidth.FillRight(runewidth.Truncate(cell, widths[i], "…"), widths[i])
			parts[i] = style(text)
		}
		return strings.Join(parts, " ")
	}

	var b strings.Builder
	b.WriteString(line(headers, func(s string) string { return tableHeaderStyle.Render(s) }))
	b.WriteString("\n")
	total := len(widths) - 1
	for _, w := range widths {
		total += w
	}
	b.WriteString(tableRuleStyle.Render(strings.Repeat("─", total)))
	b.WriteString("\n")

	if p.table.Empty() {
		b.WriteString(lipgloss.PlaceHorizontal(total, lipgloss.Center, dimItemStyle.Render(datatable.NoResults)))
		return b.String()
	}

	start := 0
	if maxRows > 0 && p.cursor >= maxRows {
		start = p.cursor - maxRows + 1
	}
	for i := start; i < len(rows); i++ {
		if maxRows > 0 && i-start >= maxRows {
			break
		}
		cells := make([]string, len(rows[i].Cells))
		for j, c := range rows[i].Cells {
			cells[j] = c.Text
		}
		selected := i == p.cursor
		text := line(cells, func(s string) string {
			if st, ok := statusStyles[strings.TrimSpace(s)]; ok && !selected {
				return st.Render(s)
			}
			return s
		})
		if selected {
			text = tableSelectedRowStyle.Render(text)
		}
		b.WriteString(text + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// renderPageBar renders "Page 2 of 9 (87 items)  ‹ 1 2 3 … 9 ›" with the
// current page highlighted.
func (p *resourcePage) renderPageBar() string {
	pg := p.table.Page()
	markers := p.table.Markers()
	var b strings.Builder
	b.WriteString(dimItemStyle.Render(fmt.Sprintf("Page %d of %d (%d items)", pg.CurrentPage, pg.LastPage(), pg.TotalItems)))
	if len(markers) == 0 {
		return b.String()
	}
	b.WriteString("  ")
	if pg.HasPrev() {
		b.WriteString("‹ ")
	}
	for i, m := range markers {
		if i > 0 {
			b.WriteString(" ")
		}
		switch {
		case m.Ellipsis:
			b.WriteString(dimItemStyle.Render("…"))
		case m.Current:
			b.WriteString(pageCurrentStyle.Render(fmt.Sprintf("[%d]", m.Page)))
		default:
			fmt.Fprintf(&b, "%d", m.Page)
		}
	}
	if pg.HasNext() {
		b.WriteString(" ›")
	}
	return b.String()
}

// fitWidths shrinks the widest columns until the row fits width.
func fitWidths(widths []int, width int) {
	total := func() int {
		t := len(widths) - 1
		for _, w := range widths {
			t += w
		}
		return t
	}
	for total() > width {
		widest := 0
		for i, w := range widths {
			if w > widths[widest] {
				widest = i
			}
		}
		if widths[widest] <= minColWidth {
			return
		}
		widths[widest]--
	}
}

func levelBadge(l access.Level) string {
	switch l {
	case access.Admin:
		return adminBadge.Render("ADMIN")
	case access.ReadWrite:
		return readWriteBadge.Render("RW")
	case access.ReadOnly:
		return readOnlyBadge.Render("RO")
	default:
		return noBadge.Render("NO")
	}
}
