package datatable

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	id     int
	name   string
	note   *string
	active bool
}

func (i item) Field(name string) any {
	switch name {
	case "id":
		return i.id
	case "name":
		return i.name
	case "note":
		return i.note
	case "active":
		return i.active
	}
	return nil
}

func makeItems(n int) []item {
	items := make([]item, n)
	for i := range items {
		items[i] = item{id: i + 1, name: fmt.Sprintf("item-%02d", i+1)}
	}
	return items
}

func columns() []Column[item] {
	return []Column[item]{
		{Header: "ID", Accessor: Key[item]("id")},
		{Header: "Name", Accessor: Key[item]("name")},
		{Header: "Note", Accessor: Key[item]("note")},
		{Header: "Active", Accessor: Key[item]("active")},
	}
}

func TestPageStateTotalPagesAndClamp(t *testing.T) {
	tests := []struct {
		total, size, current int
		wantPages, wantPage  int
	}{
		{0, 10, 1, 0, 1},
		{0, 10, 5, 0, 1},
		{1, 10, 1, 1, 1},
		{10, 10, 2, 1, 1},
		{11, 10, 2, 2, 2},
		{25, 10, 3, 3, 3},
		{25, 10, 9, 3, 3},
		{25, 10, -4, 3, 1},
		{100, 7, 15, 15, 15},
	}
	for _, tt := range tests {
		p := PageState{CurrentPage: tt.current, PageSize: tt.size, TotalItems: tt.total}
		assert.Equal(t, tt.wantPages, p.TotalPages(), "TotalPages(%d/%d)", tt.total, tt.size)
		assert.Equal(t, tt.wantPage, p.Clamp().CurrentPage, "Clamp(%d of %d/%d)", tt.current, tt.total, tt.size)
	}
}

func TestPageMarkers(t *testing.T) {
	e := Marker{Ellipsis: true}
	m := func(page, current int) Marker { return Marker{Page: page, Current: page == current} }

	tests := []struct {
		name           string
		current, total int
		want           []Marker
	}{
		{"single page", 1, 1, []Marker{m(1, 1)}},
		{"no pages", 1, 0, []Marker{m(1, 1)}},
		{"middle", 5, 10, []Marker{m(1, 5), e, m(4, 5), m(5, 5), m(6, 5), e, m(10, 5)}},
		{"first", 1, 10, []Marker{m(1, 1), m(2, 1), e, m(10, 1)}},
		{"last", 10, 10, []Marker{m(1, 10), e, m(9, 10), m(10, 10)}},
		{"window touches first", 3, 10, []Marker{m(1, 3), m(2, 3), m(3, 3), m(4, 3), e, m(10, 3)}},
		{"window touches last", 8, 10, []Marker{m(1, 8), e, m(7, 8), m(8, 8), m(9, 8), m(10, 8)}},
		{"three pages", 2, 3, []Marker{m(1, 2), m(2, 2), m(3, 2)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PageMarkers(tt.current, tt.total))
		})
	}
}

func TestFilterEmptyQueryKeepsOrder(t *testing.T) {
	items := makeItems(5)
	got := Filter(items, []string{"name"}, "")
	assert.Equal(t, items, got)
}

func TestFilterCaseInsensitive(t *testing.T) {
	note := "Bright RED mug"
	items := []item{
		{id: 1, name: "Alpha"},
		{id: 2, name: "beta", note: &note},
		{id: 3, name: "ALPHABET"},
	}

	got := Filter(items, []string{"name"}, "alpha")
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].id)
	assert.Equal(t, 3, got[1].id)

	got = Filter(items, []string{"name", "note"}, "red")
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].id)

	assert.Empty(t, Filter(items, []string{"note"}, "nil"))
}

func TestClientQueryResetsPage(t *testing.T) {
	items := makeItems(25)
	for i := 0; i < 5; i++ {
		items[i*5].name = fmt.Sprintf("special-%d", i)
	}

	tbl := New(Options[item]{Columns: columns(), SearchFields: []string{"name"}, PageSize: 10})
	tbl.SetItems(items)
	require.True(t, tbl.SetPage(3))
	assert.Equal(t, 3, tbl.Page().CurrentPage)
	assert.Len(t, tbl.Rows(), 5)

	tbl.SetQuery("special")
	p := tbl.Page()
	assert.Equal(t, 1, p.CurrentPage)
	assert.Equal(t, 1, p.TotalPages())
	assert.Len(t, tbl.Rows(), 5)
}

func TestClientPaging(t *testing.T) {
	tbl := New(Options[item]{Columns: columns(), PageSize: 10})
	tbl.SetItems(makeItems(25))

	assert.False(t, tbl.PrevPage(), "prev on first page")
	assert.True(t, tbl.NextPage())
	assert.True(t, tbl.NextPage())
	assert.False(t, tbl.NextPage(), "next on last page")

	rows := tbl.Rows()
	require.Len(t, rows, 5)
	assert.Equal(t, "21", rows[0].Cells[0].Text)

	assert.False(t, tbl.SetPage(99), "clamped to the page already shown")
	assert.Equal(t, 3, tbl.Page().CurrentPage)

	// shrinking the collection clamps the page
	tbl.SetItems(makeItems(4))
	assert.Equal(t, 1, tbl.Page().CurrentPage)
}

func TestEmptyTable(t *testing.T) {
	tbl := New(Options[item]{Columns: columns(), SearchFields: []string{"name"}})
	tbl.SetItems(makeItems(3))
	tbl.SetQuery("zzz")

	assert.True(t, tbl.Empty())
	assert.Empty(t, tbl.Rows())
	assert.Equal(t, 1, tbl.Page().LastPage())
}

func TestCellFormatting(t *testing.T) {
	tbl := New(Options[item]{Columns: columns()})
	tbl.SetItems([]item{{id: 7, name: "x", active: true}})

	cells := tbl.Rows()[0].Cells
	assert.Equal(t, Cell{Text: "7", Kind: CellText}, cells[0])
	assert.Equal(t, Cell{Kind: CellEmpty}, cells[2], "nil note is empty")
	assert.Equal(t, Cell{Text: "Yes", Kind: CellYes}, cells[3])

	assert.Equal(t, "No", FormatValue(false).Text)
	assert.Equal(t, "", FormatValue(nil).Text)
}

func TestRenderOverridesAccessor(t *testing.T) {
	col := Column[item]{
		Header:   "Name",
		Accessor: Derived(func(i item) any { return i.name }),
		Render:   func(i item) string { return "<" + i.name + ">" },
	}
	cell := col.Cell(item{name: "a"})
	assert.Equal(t, "<a>", cell.Text)
	assert.Equal(t, CellRendered, cell.Kind)

	col.Render = nil
	assert.Equal(t, "a", col.Cell(item{name: "a"}).Text)
	assert.Equal(t, "", col.Accessor.FieldKey())
	assert.Equal(t, "name", Key[item]("name").FieldKey())
}

func TestServerMode(t *testing.T) {
	var pages []int
	var searches []string
	tbl := New(Options[item]{
		Mode:         ServerMode,
		Columns:      columns(),
		PageSize:     10,
		OnPageChange: func(p int) { pages = append(pages, p) },
		OnSearch:     func(q string) { searches = append(searches, q) },
	})

	// Server mode renders what it is given, without slicing.
	tbl.SetPageData(makeItems(10), 95)
	assert.Len(t, tbl.Rows(), 10)
	assert.Equal(t, 10, tbl.Page().TotalPages())

	require.True(t, tbl.SetPage(5))
	assert.Equal(t, []int{5}, pages)
	assert.Len(t, tbl.Rows(), 10)

	first := tbl.SetQuery("a")
	second := tbl.SetQuery("ab")
	assert.Equal(t, 1, tbl.Page().CurrentPage)

	assert.False(t, tbl.SettleSearch(first), "stale ticket is discarded")
	assert.True(t, tbl.SettleSearch(second))
	assert.False(t, tbl.SettleSearch(second), "ticket fires once")
	assert.Equal(t, []string{"ab"}, searches)
}

func TestEditDeleteIntents(t *testing.T) {
	var edited, deleted []int
	tbl := New(Options[item]{
		Columns:  columns(),
		PageSize: 2,
		OnEdit:   func(i item) { edited = append(edited, i.id) },
		OnDelete: func(i item) { deleted = append(deleted, i.id) },
	})
	tbl.SetItems(makeItems(5))
	tbl.NextPage()

	assert.True(t, tbl.Edit(1))
	assert.True(t, tbl.Delete(0))
	assert.False(t, tbl.Edit(5))
	assert.Equal(t, []int{4}, edited)
	assert.Equal(t, []int{3}, deleted)
}
