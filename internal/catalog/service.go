package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/johan-st/shopdash/internal/access"
	"github.com/johan-st/shopdash/internal/datatable"
	"github.com/johan-st/shopdash/internal/form"
	"github.com/johan-st/shopdash/internal/history"
	"github.com/johan-st/shopdash/internal/querycache"
	"github.com/johan-st/shopdash/internal/shop"
	"github.com/johan-st/shopdash/internal/store"
)

// Entity is a stored record that can be shown in a table.
type Entity interface {
	datatable.Record
	Key() string
	Active() bool
}

// Service serves one resource.
type Service[T Entity] struct {
	core *core
	repo *store.Repo[T]

	mu  sync.RWMutex
	res shop.Resource[T]
}

func newService[T Entity](c *core, res shop.Resource[T], repo *store.Repo[T]) *Service[T] {
	return &Service[T]{core: c, repo: repo, res: res}
}

func (s *Service[T]) rebind(res shop.Resource[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.res = res
	s.core.cache.Invalidate(res.Name)
}

// Resource returns the resource description.
func (s *Service[T]) Resource() shop.Resource[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.res
}

func (s *Service[T]) Name() string           { return s.Resource().Name }
func (s *Service[T]) Title() string          { return s.Resource().Title }
func (s *Service[T]) Singular() string       { return s.Resource().Singular }
func (s *Service[T]) Mode() datatable.Mode   { return s.Resource().Mode }
func (s *Service[T]) ReadOnly() bool         { return s.Resource().ReadOnly }
func (s *Service[T]) Schema() *form.Schema   { return s.Resource().Schema }
func (s *Service[T]) SearchFields() []string { return s.Resource().SearchFields }

// Headers returns the column headers of the resource table.
func (s *Service[T]) Headers() []string {
	cols := s.Resource().Columns
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Header
	}
	return out
}

// Level returns the access level of the context user.
func (s *Service[T]) Level(ctx context.Context) access.Level {
	return s.core.level(ctx, s.Name())
}

// Table creates a table bound to this resource.
func (s *Service[T]) Table(opts datatable.Options[T]) *datatable.Table[T] {
	res := s.Resource()
	opts.Mode = res.Mode
	opts.Columns = res.Columns
	opts.SearchFields = res.SearchFields
	if opts.PageSize <= 0 {
		opts.PageSize = s.core.pageSize
	}
	return datatable.New(opts)
}

// All returns the whole collection.
func (s *Service[T]) All(ctx context.Context) ([]T, error) {
	if err := s.core.require(ctx, s.Name(), access.ReadOnly); err != nil {
		return nil, err
	}
	return querycache.Fetch(s.core.cache, querycache.AllKey(s.Name()), func() ([]T, error) {
		return s.repo.All(ctx)
	})
}

// Page returns one page of the collection filtered by q.Search.
func (s *Service[T]) Page(ctx context.Context, q store.PageQuery) (store.Page[T], error) {
	if err := s.core.require(ctx, s.Name(), access.ReadOnly); err != nil {
		return store.Page[T]{}, err
	}
	q = q.Normalize()
	key := querycache.PageKey(s.Name(), q.Page, q.Limit, q.Search)
	return querycache.Fetch(s.core.cache, key, func() (store.Page[T], error) {
		return s.repo.Page(ctx, q)
	})
}

// Get returns one record.
func (s *Service[T]) Get(ctx context.Context, id string) (T, error) {
	if err := s.core.require(ctx, s.Name(), access.ReadOnly); err != nil {
		var zero T
		return zero, err
	}
	return s.repo.Get(ctx, id)
}

// EditValues returns the form defaults of record id.
func (s *Service[T]) EditValues(ctx context.Context, id string) (form.Values, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	res := s.Resource()
	if res.Values == nil {
		return nil, fmt.Errorf("%s: %w", res.Name, ErrReadOnly)
	}
	return res.Values(item), nil
}

func (s *Service[T]) requireWrite(ctx context.Context, need access.Level) error {
	if s.ReadOnly() {
		return fmt.Errorf("%s: %w", s.Name(), ErrReadOnly)
	}
	return s.core.require(ctx, s.Name(), need)
}

// Create inserts a record from validated form values.
func (s *Service[T]) Create(ctx context.Context, values map[string]any) (string, error) {
	if err := s.requireWrite(ctx, access.ReadWrite); err != nil {
		return "", err
	}
	id, err := s.repo.Create(ctx, values)
	if err != nil {
		return "", err
	}
	s.changed(ctx, history.ActionCreate, id, map[string]any{"values": values})
	return id, nil
}

// Update saves validated form values to record id.
func (s *Service[T]) Update(ctx context.Context, id string, values map[string]any) error {
	if err := s.requireWrite(ctx, access.ReadWrite); err != nil {
		return err
	}
	err := s.withLock(ctx, id, func() error {
		return s.repo.Update(ctx, id, values)
	})
	if err != nil {
		return err
	}
	s.changed(ctx, history.ActionUpdate, id, map[string]any{"values": values})
	return nil
}

// Delete removes record id.
func (s *Service[T]) Delete(ctx context.Context, id string) error {
	if err := s.requireWrite(ctx, access.ReadWrite); err != nil {
		return err
	}
	err := s.withLock(ctx, id, func() error {
		return s.repo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.changed(ctx, history.ActionDelete, id, nil)
	return nil
}

// SetActive activates or deactivates record id.
func (s *Service[T]) SetActive(ctx context.Context, id string, active bool) error {
	if err := s.requireWrite(ctx, access.ReadWrite); err != nil {
		return err
	}
	err := s.withLock(ctx, id, func() error {
		return s.repo.SetActive(ctx, id, active)
	})
	if err != nil {
		return err
	}
	action := history.ActionDeactivate
	if active {
		action = history.ActionActivate
	}
	s.changed(ctx, action, id, nil)
	return nil
}

// DeactivateAll deactivates every record. It needs admin access.
func (s *Service[T]) DeactivateAll(ctx context.Context) (int64, error) {
	if err := s.requireWrite(ctx, access.Admin); err != nil {
		return 0, err
	}
	n, err := s.repo.DeactivateAll(ctx)
	if err != nil {
		return 0, err
	}
	s.changed(ctx, history.ActionDeactivateAll, "", map[string]any{"count": n})
	return n, nil
}

// Lock marks record id as being edited by the context session.
func (s *Service[T]) Lock(ctx context.Context, id string) error {
	user, _ := access.UserFromContext(ctx)
	return s.core.store.Locks.TryLock(store.RecordKey(s.Name(), id), user.DisplayName(), access.SessionID(ctx))
}

// Unlock releases the edit lock of the context session on record id.
func (s *Service[T]) Unlock(ctx context.Context, id string) {
	s.core.store.Locks.Unlock(store.RecordKey(s.Name(), id), access.SessionID(ctx))
}

// withLock runs fn while holding the record lock. A lock the session
// already holds, e.g. from an open edit form, is left in place.
func (s *Service[T]) withLock(ctx context.Context, id string, fn func() error) error {
	key := store.RecordKey(s.Name(), id)
	sessionID := access.SessionID(ctx)
	held := false
	if info, ok := s.core.store.Locks.Holder(key); ok && info.SessionID == sessionID {
		held = true
	}
	if err := s.Lock(ctx, id); err != nil {
		return err
	}
	if !held {
		defer s.Unlock(ctx, id)
	}
	return fn()
}

func (s *Service[T]) changed(ctx context.Context, action, id string, details map[string]any) {
	s.core.cache.Invalidate(s.Name())
	s.core.audit(ctx, action, s.Name(), id, details)
}

// IsNotFound reports whether err means the record does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}
