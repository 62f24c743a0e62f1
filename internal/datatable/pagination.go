package datatable

// windowSize is how many page markers surround and include the current page.
const windowSize = 3

// PageState is the pagination position of a table.
type PageState struct {
	CurrentPage int
	PageSize    int
	TotalItems  int
}

// TotalPages returns ceil(TotalItems / PageSize).
func (p PageState) TotalPages() int {
	if p.PageSize <= 0 || p.TotalItems <= 0 {
		return 0
	}
	return (p.TotalItems + p.PageSize - 1) / p.PageSize
}

// LastPage is the highest page that can be current, at least 1.
func (p PageState) LastPage() int {
	return max(1, p.TotalPages())
}

// Clamp returns the state with CurrentPage inside [1, LastPage].
func (p PageState) Clamp() PageState {
	if p.PageSize <= 0 {
		p.PageSize = 1
	}
	if p.TotalItems < 0 {
		p.TotalItems = 0
	}
	p.CurrentPage = min(max(p.CurrentPage, 1), p.LastPage())
	return p
}

// Offset is the index of the first item on the current page.
func (p PageState) Offset() int {
	return (p.CurrentPage - 1) * p.PageSize
}

// HasPrev reports whether a previous page exists.
func (p PageState) HasPrev() bool {
	return p.CurrentPage > 1
}

// HasNext reports whether a next page exists.
func (p PageState) HasNext() bool {
	return p.CurrentPage < p.LastPage()
}

// Marker is one entry of a pagination bar.
type Marker struct {
	Page     int
	Ellipsis bool
	Current  bool
}

// PageMarkers builds the pagination bar for current out of totalPages.
// Page 1 and the last page are always present, together with a window of
// up to three pages centred on current. Every hidden gap becomes a single
// ellipsis marker.
func PageMarkers(current, totalPages int) []Marker {
	totalPages = max(totalPages, 1)
	current = min(max(current, 1), totalPages)

	start := max(current-windowSize/2, 1)
	end := min(current+windowSize/2, totalPages)

	var markers []Marker
	add := func(page int) {
		markers = append(markers, Marker{Page: page, Current: page == current})
	}

	if start > 1 {
		add(1)
		if start > 2 {
			markers = append(markers, Marker{Ellipsis: true})
		}
	}
	for page := start; page <= end; page++ {
		add(page)
	}
	if end < totalPages {
		if end < totalPages-1 {
			markers = append(markers, Marker{Ellipsis: true})
		}
		add(totalPages)
	}
	return markers
}
