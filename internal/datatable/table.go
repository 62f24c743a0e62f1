// Package datatable is a render-free table engine: columns, search and
// pagination over a slice of records.
//
// A table runs in one of two modes. In client mode it holds the whole
// collection and filters and slices it itself. In server mode it holds only
// the current page and delegates paging and searching to callbacks.
package datatable

import (
	"time"

	"github.com/johan-st/shopdash/internal/debounce"
)

// NoResults is the text of the placeholder row shown for an empty page.
const NoResults = "No results found."

// DefaultPageSize is used when Options.PageSize is not positive.
const DefaultPageSize = 10

// Mode selects where paging and searching happen.
type Mode int

const (
	// ClientMode filters and slices a fully loaded collection.
	ClientMode Mode = iota
	// ServerMode renders the page it is given and reports page and search changes.
	ServerMode
)

func (m Mode) String() string {
	if m == ServerMode {
		return "server"
	}
	return "client"
}

// Options configures a Table.
type Options[T Record] struct {
	Mode         Mode
	Columns      []Column[T]
	SearchFields []string
	PageSize     int
	// Debounce delays OnSearch in server mode.
	Debounce time.Duration

	OnPageChange func(page int)
	OnSearch     func(query string)
	OnEdit       func(item T)
	OnDelete     func(item T)
}

// Row is a visible row with its formatted cells.
type Row[T Record] struct {
	Item  T
	Cells []Cell
}

// state is the only mutable view state of a table.
type state struct {
	page  int
	query string
}

// Table holds items and view state for one table instance.
type Table[T Record] struct {
	opts     Options[T]
	items    []T
	total    int
	state    state
	debounce *debounce.Debouncer
}

// New creates a table positioned on page 1 with an empty query.
func New[T Record](opts Options[T]) *Table[T] {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	return &Table[T]{
		opts:     opts,
		state:    state{page: 1},
		debounce: debounce.New(opts.Debounce),
	}
}

// Mode returns the table mode.
func (t *Table[T]) Mode() Mode {
	return t.opts.Mode
}

// Columns returns the column descriptors.
func (t *Table[T]) Columns() []Column[T] {
	return t.opts.Columns
}

// Headers returns the column headers in order.
func (t *Table[T]) Headers() []string {
	headers := make([]string, len(t.opts.Columns))
	for i, c := range t.opts.Columns {
		headers[i] = c.Header
	}
	return headers
}

// SearchDelay is the debounce delay applied to server-mode searches.
func (t *Table[T]) SearchDelay() time.Duration {
	return t.debounce.Delay()
}

// SetItems replaces the collection. In client mode items is the whole
// collection; in server mode it is the current page and the total is kept.
func (t *Table[T]) SetItems(items []T) {
	t.items = items
	if t.opts.Mode == ClientMode {
		t.total = len(items)
	}
	t.state.page = t.Page().CurrentPage
}

// SetPageData replaces the current page and the total item count.
// It is meant for server mode.
func (t *Table[T]) SetPageData(items []T, totalItems int) {
	t.items = items
	t.total = max(totalItems, 0)
	t.state.page = t.Page().CurrentPage
}

// Items returns the items held by the table.
func (t *Table[T]) Items() []T {
	return t.items
}

// Query returns the current search query.
func (t *Table[T]) Query() string {
	return t.state.query
}

// Page returns the clamped pagination state.
func (t *Table[T]) Page() PageState {
	total := t.total
	if t.opts.Mode == ClientMode {
		total = len(t.filtered())
	}
	return PageState{
		CurrentPage: t.state.page,
		PageSize:    t.opts.PageSize,
		TotalItems:  total,
	}.Clamp()
}

// Markers returns the pagination bar for the current page.
func (t *Table[T]) Markers() []Marker {
	p := t.Page()
	return PageMarkers(p.CurrentPage, p.TotalPages())
}

// SetPage moves to page, clamped to the valid range. It reports whether the
// page changed and calls OnPageChange when it did.
func (t *Table[T]) SetPage(page int) bool {
	p := t.Page()
	p.CurrentPage = page
	p = p.Clamp()
	if p.CurrentPage == t.state.page {
		return false
	}
	t.state.page = p.CurrentPage
	if t.opts.OnPageChange != nil {
		t.opts.OnPageChange(t.state.page)
	}
	return true
}

// NextPage advances one page. It is a no-op on the last page.
func (t *Table[T]) NextPage() bool {
	if !t.Page().HasNext() {
		return false
	}
	return t.SetPage(t.state.page + 1)
}

// PrevPage goes back one page. It is a no-op on the first page.
func (t *Table[T]) PrevPage() bool {
	if !t.Page().HasPrev() {
		return false
	}
	return t.SetPage(t.state.page - 1)
}

// SetQuery changes the search query and resets the table to page 1.
// Client mode filters immediately. Server mode schedules the query for
// OnSearch and returns the ticket to pass to SettleSearch once the
// debounce delay has passed.
func (t *Table[T]) SetQuery(query string) debounce.Ticket {
	if query == t.state.query {
		return 0
	}
	t.state.query = query
	t.state.page = 1
	if t.opts.Mode == ClientMode {
		return 0
	}
	return t.debounce.Schedule(query)
}

// SettleSearch forwards the scheduled query to OnSearch if ticket is still
// the newest one. It reports whether OnSearch was called.
func (t *Table[T]) SettleSearch(ticket debounce.Ticket) bool {
	query, ok := t.debounce.Fire(ticket)
	if !ok {
		return false
	}
	if t.opts.OnSearch != nil {
		t.opts.OnSearch(query)
	}
	return true
}

// Rows returns the visible rows of the current page.
func (t *Table[T]) Rows() []Row[T] {
	visible := t.visible()
	rows := make([]Row[T], len(visible))
	for i, item := range visible {
		cells := make([]Cell, len(t.opts.Columns))
		for j, c := range t.opts.Columns {
			cells[j] = c.Cell(item)
		}
		rows[i] = Row[T]{Item: item, Cells: cells}
	}
	return rows
}

// Empty reports whether the current page has no rows, in which case a
// single NoResults row spanning every column should be shown.
func (t *Table[T]) Empty() bool {
	return len(t.visible()) == 0
}

// Edit emits an edit intent for the visible row at index i.
func (t *Table[T]) Edit(i int) bool {
	return t.emit(i, t.opts.OnEdit)
}

// Delete emits a delete intent for the visible row at index i.
func (t *Table[T]) Delete(i int) bool {
	return t.emit(i, t.opts.OnDelete)
}

// At returns the visible row item at index i.
func (t *Table[T]) At(i int) (T, bool) {
	visible := t.visible()
	if i < 0 || i >= len(visible) {
		var zero T
		return zero, false
	}
	return visible[i], true
}

func (t *Table[T]) emit(i int, fn func(T)) bool {
	item, ok := t.At(i)
	if !ok || fn == nil {
		return false
	}
	fn(item)
	return true
}

func (t *Table[T]) filtered() []T {
	return Filter(t.items, t.opts.SearchFields, t.state.query)
}

func (t *Table[T]) visible() []T {
	if t.opts.Mode == ServerMode {
		return t.items
	}
	items := t.filtered()
	p := t.Page()
	start := min(p.Offset(), len(items))
	end := min(start+p.PageSize, len(items))
	return items[start:end]
}
