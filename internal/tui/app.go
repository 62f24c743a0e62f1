// Package tui implements the interactive dashboard.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/johan-st/shopdash/internal/access"
	"github.com/johan-st/shopdash/internal/catalog"
	"github.com/johan-st/shopdash/internal/form"
	"github.com/johan-st/shopdash/internal/store"
)

// Focus represents which pane is focused
type Focus int

const (
	FocusNav Focus = iota
	FocusMain
)

const (
	dashboardResource = "dashboard"
	settingsResource  = "settings"

	navWidth   = 24
	toastDelay = 3 * time.Second
)

// Options tunes the table and form views.
type Options struct {
	PageSize       int
	SearchDebounce time.Duration
	// CompactWidth is the width below which forms open as a bottom sheet.
	CompactWidth int
}

// navItem implements list.Item for the sidebar.
type navItem struct {
	name  string
	title string
	desc  string
}

func (i navItem) Title() string       { return i.title }
func (i navItem) Description() string { return i.desc }
func (i navItem) FilterValue() string { return i.title }

// confirmDialog asks before a destructive action.
type confirmDialog struct {
	prompt string
	run    tea.Cmd
}

// App is the main TUI application model.
type App struct {
	// Dependencies
	cat  *catalog.Catalog
	ctx  context.Context
	user *access.UserInfo
	opts Options

	// Window size
	width, height int

	// State
	focus    Focus
	current  string
	nav      list.Model
	pages    map[string]*resourcePage
	stats    *catalog.Stats
	settings form.Values
	setErr   error

	// Overlays
	form     *formView
	formSeq  int
	confirm  *confirmDialog
	showHelp bool

	spinner  spinner.Model
	toast    string
	toastErr bool
	toastSeq int

	keys KeyMap
	help help.Model
}

// NewApp creates a new TUI application for the user in ctx.
func NewApp(ctx context.Context, cat *catalog.Catalog, opts Options, width, height int) *App {
	user, _ := access.UserFromContext(ctx)
	if opts.PageSize <= 0 {
		opts.PageSize = cat.PageSize()
	}

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false
	delegate.SetHeight(1)
	nav := list.New([]list.Item{}, delegate, navWidth, max(height-4, 1))
	nav.Title = "Shop"
	nav.SetShowStatusBar(false)
	nav.SetFilteringEnabled(false)
	nav.SetShowHelp(false)
	nav.Styles.Title = paneHeaderStyle

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = promptStyle

	app := &App{
		cat:     cat,
		ctx:     ctx,
		user:    user,
		opts:    opts,
		width:   width,
		height:  height,
		focus:   FocusNav,
		current: dashboardResource,
		nav:     nav,
		pages:   make(map[string]*resourcePage),
		spinner: sp,
		keys:    DefaultKeyMap(),
		help:    help.New(),
	}
	app.buildNav()
	return app
}

// buildNav lists the dashboard, the readable collections and settings.
func (a *App) buildNav() {
	items := []list.Item{navItem{name: dashboardResource, title: "Dashboard"}}
	for _, c := range a.cat.Visible(a.ctx) {
		items = append(items, navItem{name: c.Name(), title: c.Title(), desc: c.Level(a.ctx).String()})
	}
	if a.cat.Settings.Level(a.ctx).CanRead() {
		items = append(items, navItem{name: settingsResource, title: "Settings"})
	}
	a.nav.SetItems(items)
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.loadStats(), a.spinner.Tick)
}

func (a *App) loadStats() tea.Cmd {
	ctx, cat := a.ctx, a.cat
	return func() tea.Msg {
		st, err := cat.Stats(ctx)
		return statsLoadedMsg{stats: st, err: err}
	}
}

// page returns the page of the current collection, creating it on first use.
func (a *App) page() *resourcePage {
	if p, ok := a.pages[a.current]; ok {
		return p
	}
	c, ok := a.cat.Collection(a.current)
	if !ok {
		return nil
	}
	p := newResourcePage(a.ctx, c, a.opts.PageSize, a.opts.SearchDebounce, pageHooks{
		edit: func(id string) tea.Cmd { return a.requestForm(c, id) },
		delete: func(id string) tea.Cmd {
			a.confirmDelete(c, id)
			return nil
		},
	})
	a.pages[a.current] = p
	return p
}

// open switches the main pane to the named view and loads its data.
func (a *App) open(name string) tea.Cmd {
	a.current = name
	a.focus = FocusMain
	switch name {
	case dashboardResource:
		return a.loadStats()
	case settingsResource:
		return loadSettings(a.ctx, a.cat.Settings)
	}
	if p := a.page(); p != nil {
		return p.load()
	}
	return nil
}

// notify shows a toast that hides itself after a few seconds.
func (a *App) notify(text string, isErr bool) tea.Cmd {
	a.toastSeq++
	a.toast = text
	a.toastErr = isErr
	seq := a.toastSeq
	return tea.Tick(toastDelay, func(time.Time) tea.Msg { return toastExpiredMsg{seq: seq} })
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKey(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.nav.SetSize(navWidth, max(a.height-4, 1))
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case statsLoadedMsg:
		if msg.err != nil {
			return a, a.notify(errText(msg.err), true)
		}
		a.stats = &msg.stats
		return a, nil

	case settingsLoadedMsg:
		a.settings, a.setErr = msg.values, msg.err
		return a, nil

	case listingLoadedMsg:
		if p, ok := a.pages[msg.resource]; ok {
			p.apply(msg)
		}
		return a, nil

	case searchSettledMsg:
		if p, ok := a.pages[msg.resource]; ok {
			return a, p.settle(msg.ticket)
		}
		return a, nil

	case formReadyMsg:
		if msg.err != nil {
			return a, a.notify(errText(msg.err), true)
		}
		return a, a.openForm(msg)

	case savedMsg:
		return a, a.finishForm(msg)

	case actionDoneMsg:
		if msg.err != nil {
			return a, a.notify(errText(msg.err), true)
		}
		return a, tea.Batch(a.notify(msg.text, false), a.reload(msg.resource))

	case toastExpiredMsg:
		if msg.seq == a.toastSeq {
			a.toast = ""
		}
		return a, nil
	}

	return a, nil
}

// reload refreshes the named view and the dashboard counts.
func (a *App) reload(resource string) tea.Cmd {
	cmds := []tea.Cmd{a.loadStats()}
	if p, ok := a.pages[resource]; ok {
		cmds = append(cmds, p.load())
	}
	if resource == settingsResource {
		cmds = append(cmds, loadSettings(a.ctx, a.cat.Settings))
	}
	return tea.Batch(cmds...)
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}

	if a.form != nil {
		return a, a.handleFormKey(msg)
	}

	if a.confirm != nil {
		run := a.confirm.run
		a.confirm = nil
		if key.Matches(msg, a.keys.ConfirmYes) {
			return a, run
		}
		return a, nil
	}

	if a.showHelp {
		if key.Matches(msg, a.keys.Back) || key.Matches(msg, a.keys.Help) {
			a.showHelp = false
		}
		return a, nil
	}

	if p := a.page(); p != nil && p.searching && a.focus == FocusMain {
		return a, a.handleSearchKey(p, msg)
	}

	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit

	case key.Matches(msg, a.keys.Help):
		a.showHelp = true
		return a, nil

	case key.Matches(msg, a.keys.NextPane):
		if a.focus == FocusNav {
			a.focus = FocusMain
		} else {
			a.focus = FocusNav
		}
		return a, nil
	}

	if a.focus == FocusNav {
		if key.Matches(msg, a.keys.Select) {
			if item, ok := a.nav.SelectedItem().(navItem); ok {
				return a, a.open(item.name)
			}
			return a, nil
		}
		var cmd tea.Cmd
		a.nav, cmd = a.nav.Update(msg)
		return a, cmd
	}

	switch a.current {
	case dashboardResource:
		if key.Matches(msg, a.keys.Refresh) {
			return a, a.loadStats()
		}
		if key.Matches(msg, a.keys.Back) {
			a.focus = FocusNav
		}
		return a, nil
	case settingsResource:
		return a, a.handleSettingsKey(msg)
	}
	return a, a.handleResourceKey(msg)
}

func (a *App) handleSearchKey(p *resourcePage, msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter", "esc":
		p.searching = false
		p.search.Blur()
		return nil
	}
	var cmd tea.Cmd
	p.search, cmd = p.search.Update(msg)
	return tea.Batch(cmd, p.setQuery(p.search.Value()))
}

func (a *App) handleResourceKey(msg tea.KeyMsg) tea.Cmd {
	p := a.page()
	if p == nil {
		return nil
	}
	canWrite := p.coll.Level(a.ctx).CanWrite() && !p.coll.ReadOnly()

	switch {
	case key.Matches(msg, a.keys.Back):
		a.focus = FocusNav
	case key.Matches(msg, a.keys.Up):
		p.moveCursor(-1)
	case key.Matches(msg, a.keys.Down):
		p.moveCursor(1)
	case key.Matches(msg, a.keys.PrevPage):
		return p.prevPage()
	case key.Matches(msg, a.keys.NextPage):
		return p.nextPage()
	case key.Matches(msg, a.keys.Search):
		p.searching = true
		return p.search.Focus()
	case key.Matches(msg, a.keys.Refresh):
		return p.load()

	case key.Matches(msg, a.keys.New):
		if !canWrite {
			return a.notify(a.denied(p), true)
		}
		return a.requestForm(p.coll, "")

	case key.Matches(msg, a.keys.Edit), key.Matches(msg, a.keys.Select):
		if _, _, ok := p.selected(); !ok {
			return nil
		}
		if !canWrite {
			return a.notify(a.denied(p), true)
		}
		return p.edit()

	case key.Matches(msg, a.keys.Delete):
		if _, _, ok := p.selected(); !ok {
			return nil
		}
		if !canWrite {
			return a.notify(a.denied(p), true)
		}
		return p.remove()

	case key.Matches(msg, a.keys.Toggle):
		id, rec, ok := p.selected()
		if !ok {
			return nil
		}
		if !canWrite {
			return a.notify(a.denied(p), true)
		}
		active := true
		if r, ok := rec.(interface{ Active() bool }); ok {
			active = r.Active()
		}
		coll, ctx := p.coll, a.ctx
		return func() tea.Msg {
			err := coll.SetActive(ctx, id, !active)
			state := "activated"
			if active {
				state = "deactivated"
			}
			return actionDoneMsg{resource: coll.Name(), text: coll.Singular() + " " + state, err: err}
		}
	}
	return nil
}

func (a *App) handleSettingsKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, a.keys.Back):
		a.focus = FocusNav
	case key.Matches(msg, a.keys.Refresh):
		return loadSettings(a.ctx, a.cat.Settings)
	case key.Matches(msg, a.keys.Edit), key.Matches(msg, a.keys.Select):
		if a.settings == nil {
			return nil
		}
		if !a.cat.Settings.Level(a.ctx).CanWrite() {
			return a.notify("Access denied: settings are read-only for you", true)
		}
		a.showForm(settingsForm(a.cat.Settings, a.settings))
	}
	return nil
}

// confirmDelete asks before deleting record id of c.
func (a *App) confirmDelete(c catalog.Collection, id string) {
	ctx := a.ctx
	a.confirm = &confirmDialog{
		prompt: fmt.Sprintf("Delete %s %s?", strings.ToLower(c.Singular()), shortID(id)),
		run: func() tea.Msg {
			err := c.Delete(ctx, id)
			return actionDoneMsg{resource: c.Name(), text: c.Singular() + " deleted", err: err}
		},
	}
}

// requestForm loads defaults for a create or edit form. Editing takes the
// record lock so two sessions cannot change the same record.
func (a *App) requestForm(c catalog.Collection, id string) tea.Cmd {
	ctx := a.ctx
	return func() tea.Msg {
		if id == "" {
			return formReadyMsg{resource: c.Name()}
		}
		if err := c.Lock(ctx, id); err != nil {
			return formReadyMsg{resource: c.Name(), id: id, err: err}
		}
		values, err := c.EditValues(ctx, id)
		if err != nil {
			c.Unlock(ctx, id)
		}
		return formReadyMsg{resource: c.Name(), id: id, values: values, err: err}
	}
}

func (a *App) openForm(msg formReadyMsg) tea.Cmd {
	c, ok := a.cat.Collection(msg.resource)
	if !ok {
		return nil
	}
	title := "New " + c.Singular()
	if msg.id != "" {
		title = "Edit " + c.Singular()
	}
	a.showForm(newFormView(title, c.Name(), msg.id, c.Schema(), msg.values, c.Save))
	return textinput.Blink
}

// showForm opens f with a token of its own, so that results of forms closed
// while saving are not applied to it.
func (a *App) showForm(f *formView) {
	a.formSeq++
	f.token = a.formSeq
	a.form = f
}

func (a *App) handleFormKey(msg tea.KeyMsg) tea.Cmd {
	f := a.form
	switch {
	case key.Matches(msg, a.keys.Back):
		if !f.session.CanCancel() {
			return nil
		}
		a.closeForm()
		return nil
	case key.Matches(msg, a.keys.Submit):
		if !f.session.CanSubmit() {
			return nil
		}
		return f.submit(a.ctx)
	}
	return f.update(msg, a.keys)
}

// closeForm drops the form and releases its record lock.
func (a *App) closeForm() {
	f := a.form
	if f == nil {
		return
	}
	f.session.Close()
	if f.id != "" {
		if c, ok := a.cat.Collection(f.resource); ok {
			c.Unlock(a.ctx, f.id)
		}
	}
	a.form = nil
}

// finishForm applies a save result. A failed save keeps the form open with
// its values and shows the queued notification. The result of a form that
// was cancelled while saving only refreshes the view.
func (a *App) finishForm(msg savedMsg) tea.Cmd {
	f := a.form
	if f == nil || f.token != msg.token {
		if msg.err != nil {
			return nil
		}
		return a.reload(msg.resource)
	}

	if err := f.session.Finish(msg.err); err != nil {
		text := strings.Join(f.session.Notifications(), " ")
		var denied *access.DeniedError
		var locked *store.LockError
		if errors.As(err, &denied) || errors.As(err, &locked) {
			text = errText(err)
		}
		return a.notify(text, true)
	}

	a.closeForm()
	text := "Settings saved"
	if msg.resource != settingsResource {
		c, _ := a.cat.Collection(msg.resource)
		verb := "updated"
		if msg.created {
			verb = "created"
		}
		text = c.Singular() + " " + verb
	}
	return tea.Batch(a.notify(text, false), a.reload(msg.resource))
}

func (a *App) denied(p *resourcePage) string {
	if p.coll.ReadOnly() {
		return p.coll.Title() + " are read-only"
	}
	return "Access denied: you cannot change " + strings.ToLower(p.coll.Title())
}

// View implements tea.Model.
func (a *App) View() string {
	if a.width < 40 || a.height < 10 {
		return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center,
			errorStyle.Render("Terminal too small\nMin: 40x10"))
	}

	if a.showHelp {
		return a.renderHelp()
	}

	contentHeight := a.height - 2 // toast (1) + status (1)
	mainWidth := a.width - navWidth - 4

	navPane := paneStyle
	mainPane := focusedPaneStyle
	if a.focus == FocusNav {
		navPane, mainPane = focusedPaneStyle, paneStyle
	}
	left := navPane.Width(navWidth).Height(contentHeight - 2).Render(a.nav.View())
	right := mainPane.Width(mainWidth - 2).Height(contentHeight - 2).Render(a.renderMain(mainWidth-4, contentHeight-2))

	var b strings.Builder
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, right))
	b.WriteString("\n")
	b.WriteString(a.renderToast())
	b.WriteString("\n")
	b.WriteString(a.renderStatusBar())
	screen := b.String()

	switch {
	case a.form != nil:
		layout := form.LayoutFor(form.CompactBelow(a.opts.CompactWidth), a.width)
		return a.form.render(screen, layout, a.width, a.height)
	case a.confirm != nil:
		dialog := modalStyle.Render(a.confirm.prompt + "\n\n" + dimItemStyle.Render("y confirm · any other key cancels"))
		return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, dialog)
	}
	return screen
}

func (a *App) renderMain(width, height int) string {
	switch a.current {
	case dashboardResource:
		return renderDashboard(a.cat, a.stats, width)
	case settingsResource:
		return renderSettings(a.cat.Settings, a.settings, a.setErr, a.cat.Settings.Level(a.ctx).CanWrite())
	}
	if p := a.page(); p != nil {
		return p.view(width, height, a.spinner.View())
	}
	return ""
}

func (a *App) renderToast() string {
	if a.toast == "" {
		return ""
	}
	if a.toastErr {
		return toastErrorStyle.Render(a.toast)
	}
	return toastStyle.Render(a.toast)
}

func (a *App) renderStatusBar() string {
	left := titleStyle.Render("shopdash") + " " + dimItemStyle.Render(a.user.DisplayName())
	right := a.help.ShortHelpView(a.keys.ShortHelp())
	if c, ok := a.cat.Collection(a.current); ok {
		right = statusKeyStyle.Render(c.Title()) + " " + levelBadge(c.Level(a.ctx)) + "  " + right
	}

	padding := max(a.width-lipgloss.Width(left)-lipgloss.Width(right)-2, 1)
	return statusBarStyle.Width(a.width).Render(left + strings.Repeat(" ", padding) + right)
}

func (a *App) renderHelp() string {
	var b strings.Builder
	for _, group := range a.keys.FullHelp() {
		for _, binding := range group {
			h := binding.Help()
			b.WriteString(helpKeyStyle.Render(fmt.Sprintf("%-12s", h.Key)))
			b.WriteString(helpDescStyle.Render(h.Desc))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(dimItemStyle.Render("Press ? or Esc to close"))

	modal := modalStyle.Render(titleStyle.Render("Help") + "\n\n" + b.String())
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, modal)
}

// errText turns an error into a short message for the user.
func errText(err error) string {
	var denied *access.DeniedError
	var locked *store.LockError
	switch {
	case errors.As(err, &denied):
		return "Access denied: " + denied.Error()
	case errors.As(err, &locked):
		return locked.Error()
	case errors.Is(err, catalog.ErrReadOnly):
		return "This resource is read-only"
	case catalog.IsNotFound(err):
		return "Record not found"
	}
	return err.Error()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
