package form

// Layout is where a form is drawn.
type Layout int

const (
	// Modal is a centred dialog.
	Modal Layout = iota
	// Sheet is anchored to the bottom of the screen.
	Sheet
)

func (l Layout) String() string {
	if l == Sheet {
		return "sheet"
	}
	return "modal"
}

// Viewport reports whether a viewport of the given width is compact.
type Viewport func(width int) bool

// CompactBelow treats widths under threshold as compact.
func CompactBelow(threshold int) Viewport {
	return func(width int) bool {
		return width < threshold
	}
}

// LayoutFor picks a sheet for compact viewports and a modal otherwise.
func LayoutFor(compact Viewport, width int) Layout {
	if compact != nil && compact(width) {
		return Sheet
	}
	return Modal
}
