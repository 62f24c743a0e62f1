package catalog

import (
	"context"

	"github.com/johan-st/shopdash/internal/access"
	"github.com/johan-st/shopdash/internal/datatable"
	"github.com/johan-st/shopdash/internal/form"
	"github.com/johan-st/shopdash/internal/history"
	"github.com/johan-st/shopdash/internal/store"
)

// Collection is a resource seen without its record type, for callers
// that work with rendered rows and raw form values.
type Collection interface {
	Name() string
	Title() string
	Singular() string
	Mode() datatable.Mode
	ReadOnly() bool
	Schema() *form.Schema
	Headers() []string
	SearchFields() []string
	Level(ctx context.Context) access.Level

	// List renders one page of the collection.
	List(ctx context.Context, q store.PageQuery) (Listing, error)
	// Snapshot renders the whole collection on a single page.
	Snapshot(ctx context.Context) (Listing, error)
	// Export is Snapshot recorded as an export in the audit log.
	Export(ctx context.Context) (Listing, error)
	Record(ctx context.Context, id string) (any, error)
	EditValues(ctx context.Context, id string) (form.Values, error)
	// Submit validates raw values through the resource form and creates a
	// record, or updates record id when id is set. It returns the record id.
	Submit(ctx context.Context, id string, raw form.Values) (string, error)
	// Save stores values already validated by the resource form.
	Save(ctx context.Context, id string, values map[string]any) (string, error)
	Lock(ctx context.Context, id string) error
	Unlock(ctx context.Context, id string)
	Delete(ctx context.Context, id string) error
	SetActive(ctx context.Context, id string, active bool) error
	DeactivateAll(ctx context.Context) (int64, error)
}

// Listing is a rendered page of a collection.
type Listing struct {
	Headers []string
	Rows    [][]string
	IDs     []string
	Records []any
	Page    datatable.PageState
	Markers []datatable.Marker
	Query   string
}

// Empty reports whether the listing has no rows.
func (l Listing) Empty() bool {
	return len(l.Rows) == 0
}

// List renders page q.Page. Client-mode resources are filtered and paged
// in memory from the cached collection, server-mode ones by the store.
func (s *Service[T]) List(ctx context.Context, q store.PageQuery) (Listing, error) {
	if q.Limit <= 0 {
		q.Limit = s.core.pageSize
	}
	q = q.Normalize()
	t := s.Table(datatable.Options[T]{PageSize: q.Limit})

	if t.Mode() == datatable.ClientMode {
		items, err := s.All(ctx)
		if err != nil {
			return Listing{}, err
		}
		t.SetItems(items)
		t.SetQuery(q.Search)
		t.SetPage(q.Page)
		return listing(t), nil
	}

	page, err := s.Page(ctx, q)
	if err != nil {
		return Listing{}, err
	}
	// A page past the end is answered with the last page.
	last := datatable.PageState{PageSize: q.Limit, TotalItems: page.Total}.LastPage()
	if q.Page > last {
		q.Page = last
		if page, err = s.Page(ctx, q); err != nil {
			return Listing{}, err
		}
	}
	t.SetPageData(page.Items, page.Total)
	t.SetPage(q.Page)
	l := listing(t)
	l.Query = q.Search
	return l, nil
}

// Snapshot renders every record on a single page.
func (s *Service[T]) Snapshot(ctx context.Context) (Listing, error) {
	items, err := s.All(ctx)
	if err != nil {
		return Listing{}, err
	}
	t := s.Table(datatable.Options[T]{PageSize: max(len(items), 1)})
	t.SetPageData(items, len(items))
	return listing(t), nil
}

// Export renders every record and records the export.
func (s *Service[T]) Export(ctx context.Context) (Listing, error) {
	l, err := s.Snapshot(ctx)
	if err != nil {
		return Listing{}, err
	}
	s.core.audit(ctx, history.ActionExport, s.Name(), "", map[string]any{"count": len(l.Rows)})
	return l, nil
}

func listing[T Entity](t *datatable.Table[T]) Listing {
	rows := t.Rows()
	l := Listing{
		Headers: t.Headers(),
		Rows:    make([][]string, len(rows)),
		IDs:     make([]string, len(rows)),
		Records: make([]any, len(rows)),
		Page:    t.Page(),
		Markers: t.Markers(),
		Query:   t.Query(),
	}
	for i, row := range rows {
		cells := make([]string, len(row.Cells))
		for j, c := range row.Cells {
			cells[j] = c.Text
		}
		l.Rows[i] = cells
		l.IDs[i] = row.Item.Key()
		l.Records[i] = row.Item
	}
	return l
}

// Record returns record id as a value suitable for JSON encoding.
func (s *Service[T]) Record(ctx context.Context, id string) (any, error) {
	return s.Get(ctx, id)
}

// Submit runs raw values through a form session bound to the resource
// schema. Updates start from the current record so that only the given
// fields change.
func (s *Service[T]) Submit(ctx context.Context, id string, raw form.Values) (string, error) {
	if err := s.requireWrite(ctx, access.ReadWrite); err != nil {
		return "", err
	}

	defaults := form.Values{}
	if id != "" {
		current, err := s.EditValues(ctx, id)
		if err != nil {
			return "", err
		}
		defaults = current
	}

	session := form.NewSession(s.Schema())
	session.Open(defaults)
	for name, v := range raw {
		if err := session.Set(name, v); err != nil {
			return "", err
		}
	}

	saved := id
	err := session.Submit(ctx, func(ctx context.Context, values map[string]any) error {
		var err error
		saved, err = s.Save(ctx, id, values)
		return err
	})
	if err != nil {
		return "", err
	}
	return saved, nil
}

// Save creates a record from values, or updates record id when id is set.
func (s *Service[T]) Save(ctx context.Context, id string, values map[string]any) (string, error) {
	if id == "" {
		return s.Create(ctx, values)
	}
	return id, s.Update(ctx, id, values)
}
