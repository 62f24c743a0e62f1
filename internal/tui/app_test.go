package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/johan-st/shopdash/internal/access"
	"github.com/johan-st/shopdash/internal/catalog"
	"github.com/johan-st/shopdash/internal/form"
	"github.com/johan-st/shopdash/internal/querycache"
	"github.com/johan-st/shopdash/internal/shop"
	"github.com/johan-st/shopdash/internal/store"
	"github.com/johan-st/shopdash/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	r := access.NewResolver()
	r.AddUserRule("reader", "*", access.ReadOnly)

	cat, err := catalog.New(context.Background(), catalog.Deps{
		Store:    testutil.Store(t, true),
		History:  testutil.History(t),
		Cache:    querycache.New(time.Minute),
		Resolver: r,
		Logger:   testutil.Logger(),
		PageSize: 5,
	})
	require.NoError(t, err)
	return cat
}

func adminCtx() context.Context {
	user := access.LocalUser("admin")
	ctx := access.WithUser(context.Background(), user)
	return access.WithSession(ctx, &access.SessionInfo{ID: "tui-test", User: user})
}

func collection(t *testing.T, cat *catalog.Catalog, name string) catalog.Collection {
	t.Helper()
	c, ok := cat.Collection(name)
	require.True(t, ok)
	return c
}

func newPage(t *testing.T, cat *catalog.Catalog, name string, limit int, delay time.Duration, hooks pageHooks) *resourcePage {
	t.Helper()
	return newResourcePage(adminCtx(), collection(t, cat, name), limit, delay, hooks)
}

func loaded(t *testing.T, p *resourcePage, cmd tea.Cmd) {
	t.Helper()
	require.NotNil(t, cmd)
	msg, ok := cmd().(listingLoadedMsg)
	require.True(t, ok)
	require.True(t, p.apply(msg))
	require.NoError(t, p.err)
}

func firstCells(p *resourcePage) []string {
	var out []string
	for _, r := range p.table.Rows() {
		out = append(out, r.Cells[0].Text)
	}
	return out
}

func TestClientSearchFiltersImmediately(t *testing.T) {
	cat := newCatalog(t)
	p := newPage(t, cat, shop.ResProducts, 5, time.Hour, pageHooks{})

	loaded(t, p, p.load())
	assert.Equal(t, 12, p.table.Page().TotalItems)

	assert.Nil(t, p.setQuery("BOOTS"), "client mode filters without reloading")
	assert.Equal(t, []string{"Rain Boots"}, firstCells(p))
	assert.Equal(t, 1, p.table.Page().CurrentPage)
}

func TestServerSearchIsDebounced(t *testing.T) {
	cat := newCatalog(t)
	p := newPage(t, cat, shop.ResPromotions, 5, 10*time.Millisecond, pageHooks{})
	loaded(t, p, p.load())

	first := p.setQuery("summer")
	second := p.setQuery("black")

	stale := first().(searchSettledMsg)
	assert.Nil(t, p.settle(stale.ticket), "superseded query must not load")

	fresh := second().(searchSettledMsg)
	loaded(t, p, p.settle(fresh.ticket))
	assert.Equal(t, []string{"Black Friday"}, firstCells(p))
	assert.Equal(t, "black", p.table.Query())
}

func TestStaleListingIsIgnored(t *testing.T) {
	cat := newCatalog(t)
	p := newPage(t, cat, shop.ResProducts, 5, time.Hour, pageHooks{})

	old := p.load()
	loaded(t, p, p.load())

	msg := old().(listingLoadedMsg)
	assert.False(t, p.apply(msg))
}

func TestClientPaging(t *testing.T) {
	cat := newCatalog(t)
	p := newPage(t, cat, shop.ResProducts, 5, time.Hour, pageHooks{})
	loaded(t, p, p.load())

	assert.Nil(t, p.prevPage())
	assert.Nil(t, p.nextPage(), "client mode pages without reloading")
	assert.Nil(t, p.nextPage())
	assert.Equal(t, 3, p.table.Page().CurrentPage)
	assert.Len(t, p.table.Rows(), 2)

	assert.Nil(t, p.nextPage())
	assert.Equal(t, 3, p.table.Page().CurrentPage)
	assert.Contains(t, p.renderPageBar(), "Page 3 of 3 (12 items)")
}

func TestServerPagingLoadsThroughTable(t *testing.T) {
	cat := newCatalog(t)
	p := newPage(t, cat, shop.ResPromotions, 2, time.Hour, pageHooks{})
	loaded(t, p, p.load())
	assert.Equal(t, 2, p.table.Page().LastPage())
	assert.Nil(t, p.prevPage())

	loaded(t, p, p.nextPage())
	assert.Equal(t, 2, p.table.Page().CurrentPage)
	assert.Len(t, p.table.Rows(), 2)
	assert.Nil(t, p.nextPage())
}

func TestRowIntentsReachHooks(t *testing.T) {
	cat := newCatalog(t)
	var edited, deleted string
	p := newPage(t, cat, shop.ResMemberships, 5, time.Hour, pageHooks{
		edit:   func(id string) tea.Cmd { edited = id; return tea.Quit },
		delete: func(id string) tea.Cmd { deleted = id; return nil },
	})
	loaded(t, p, p.load())
	p.moveCursor(1)
	id, _, ok := p.selected()
	require.True(t, ok)

	assert.NotNil(t, p.edit())
	assert.Equal(t, id, edited)
	assert.Nil(t, p.remove())
	assert.Equal(t, id, deleted)
}

func TestDeleteAsksForConfirmation(t *testing.T) {
	cat := newCatalog(t)
	app := NewApp(adminCtx(), cat, Options{PageSize: 5}, 120, 40)

	cmd := app.open(shop.ResMemberships)
	require.NotNil(t, cmd)
	app.Update(cmd())
	require.Len(t, app.pages[shop.ResMemberships].table.Rows(), 2)

	_, cmd = app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'d'}})
	assert.Nil(t, cmd)
	require.NotNil(t, app.confirm)
	assert.Contains(t, app.confirm.prompt, "Delete membership")

	_, cmd = app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	assert.Nil(t, cmd)
	assert.Nil(t, app.confirm)
	assert.Len(t, app.pages[shop.ResMemberships].table.Rows(), 2)
}

func TestFormValidationKeepsFormOpen(t *testing.T) {
	cat := newCatalog(t)
	c := collection(t, cat, shop.ResCategories)
	f := newFormView("New Category", c.Name(), "", c.Schema(), nil, c.Save)

	assert.Nil(t, f.submit(adminCtx()))
	assert.Equal(t, "Name must be at least 2 characters.", f.session.FieldError("category_name"))
	assert.True(t, f.session.IsOpen())
	assert.Equal(t, "Save", f.session.SubmitLabel())
}

func TestFormSubmitSaves(t *testing.T) {
	cat := newCatalog(t)
	ctx := adminCtx()
	app := NewApp(ctx, cat, Options{CompactWidth: 100}, 120, 40)

	app.Update(formReadyMsg{resource: shop.ResCategories})
	require.NotNil(t, app.form)
	for _, r := range "Garden" {
		app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	require.NotNil(t, cmd)
	assert.Equal(t, "Saving...", app.form.session.SubmitLabel())

	msg, ok := cmd().(savedMsg)
	require.True(t, ok)
	require.NoError(t, msg.err)
	app.Update(msg)
	assert.Nil(t, app.form)
	assert.Equal(t, "Category created", app.toast)

	l, err := collection(t, cat, shop.ResCategories).List(ctx, storeQuery("Garden"))
	require.NoError(t, err)
	assert.Len(t, l.Rows, 2) // "Home & Garden" and the new one
}

func TestSaveResultOfCancelledFormLeavesNewFormAlone(t *testing.T) {
	cat := newCatalog(t)
	ctx := adminCtx()
	app := NewApp(ctx, cat, Options{CompactWidth: 100}, 120, 40)
	typeText := func(text string) {
		for _, r := range text {
			app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		}
	}

	app.Update(formReadyMsg{resource: shop.ResCategories})
	typeText("Garden")
	_, save := app.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	require.NotNil(t, save)

	app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Nil(t, app.form, "cancel stays enabled while saving")

	app.Update(formReadyMsg{resource: shop.ResCategories})
	typeText("Tools")

	_, cmd := app.Update(save())
	assert.NotNil(t, cmd, "the view still reloads")
	require.NotNil(t, app.form)
	assert.True(t, app.form.session.IsOpen())
	assert.Equal(t, "Tools", app.form.session.Value("category_name"))
	assert.Empty(t, app.toast)

	l, err := collection(t, cat, shop.ResCategories).List(ctx, storeQuery("Garden"))
	require.NoError(t, err)
	assert.Len(t, l.Rows, 2)
}

func TestEditFormTakesLock(t *testing.T) {
	cat := newCatalog(t)
	ctx := adminCtx()
	app := NewApp(ctx, cat, Options{}, 120, 40)
	c := collection(t, cat, shop.ResMemberships)

	l, err := c.List(ctx, storeQuery(""))
	require.NoError(t, err)
	id := l.IDs[0]

	msg := app.requestForm(c, id)().(formReadyMsg)
	require.NoError(t, msg.err)
	app.Update(msg)
	require.NotNil(t, app.form)

	other := access.WithSession(access.WithUser(context.Background(), access.LocalUser("other")),
		&access.SessionInfo{ID: "other-session"})
	assert.Error(t, c.Lock(other, id))

	app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Nil(t, app.form)
	assert.NoError(t, c.Lock(other, id))
}

func TestFormLayout(t *testing.T) {
	cat := newCatalog(t)
	c := collection(t, cat, shop.ResShipping)
	f := newFormView("New Shipping Method", c.Name(), "", c.Schema(), nil, c.Save)

	compact := form.CompactBelow(100)
	base := strings.Repeat("row\n", 30)

	sheet := f.render(base, form.LayoutFor(compact, 80), 80, 30)
	assert.True(t, strings.HasPrefix(sheet, "row"), "sheet keeps the page above it")

	modal := f.render(base, form.LayoutFor(compact, 120), 120, 30)
	assert.NotContains(t, modal, "row")
	assert.Contains(t, modal, "New Shipping Method")
}

func TestReaderCannotOpenForms(t *testing.T) {
	cat := newCatalog(t)
	ctx := access.WithUser(context.Background(), &access.UserInfo{Name: "reader"})
	app := NewApp(ctx, cat, Options{}, 120, 40)

	app.open(shop.ResProducts)
	cmd := app.handleResourceKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}})
	assert.NotNil(t, cmd)
	assert.Nil(t, app.form)
	assert.True(t, app.toastErr)
}

func TestViewRenders(t *testing.T) {
	cat := newCatalog(t)
	app := NewApp(adminCtx(), cat, Options{}, 120, 40)
	msg := app.loadStats()().(statsLoadedMsg)
	app.Update(msg)

	out := app.View()
	assert.Contains(t, out, "Dashboard")
	assert.Contains(t, out, "Revenue")

	small := NewApp(adminCtx(), cat, Options{}, 30, 8)
	assert.Contains(t, small.View(), "Terminal too small")
}

func storeQuery(search string) store.PageQuery {
	return store.PageQuery{Page: 1, Limit: 20, Search: search}
}
