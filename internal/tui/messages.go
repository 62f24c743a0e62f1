package tui

import (
	"github.com/johan-st/shopdash/internal/catalog"
	"github.com/johan-st/shopdash/internal/debounce"
	"github.com/johan-st/shopdash/internal/form"
)

// Messages for async operations

// statsLoadedMsg is sent when the dashboard summary is loaded.
type statsLoadedMsg struct {
	stats catalog.Stats
	err   error
}

// listingLoadedMsg carries one page of a resource. seq discards replies
// to superseded requests.
type listingLoadedMsg struct {
	resource string
	seq      int
	listing  catalog.Listing
	err      error
}

// searchSettledMsg fires when the search debounce delay has passed.
type searchSettledMsg struct {
	resource string
	ticket   debounce.Ticket
}

// formReadyMsg opens a form once its defaults are loaded and, for edits,
// the record lock is taken.
type formReadyMsg struct {
	resource string
	id       string
	values   form.Values
	err      error
}

// savedMsg reports the outcome of a form submit. token identifies the
// form that submitted.
type savedMsg struct {
	token    int
	resource string
	id       string
	created  bool
	err      error
}

// actionDoneMsg reports a delete or activation change.
type actionDoneMsg struct {
	resource string
	text     string
	err      error
}

// toastExpiredMsg hides toast seq.
type toastExpiredMsg struct {
	seq int
}
