// Package catalog is the application layer between the user interfaces
// and the store. It checks access, validates input through the resource
// form schemas, serves reads from the query cache, takes record locks and
// writes the audit trail.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/johan-st/shopdash/internal/access"
	"github.com/johan-st/shopdash/internal/history"
	"github.com/johan-st/shopdash/internal/querycache"
	"github.com/johan-st/shopdash/internal/shop"
	"github.com/johan-st/shopdash/internal/store"
)

// ErrReadOnly is returned when writing to a read-only resource.
var ErrReadOnly = errors.New("resource is read-only")

// Deps are the collaborators of a Catalog. History and Cache may be nil.
type Deps struct {
	Store    *store.Store
	History  *history.Store
	Cache    *querycache.Cache
	Resolver *access.Resolver
	Logger   *log.Logger
	// PageSize is the default page size of listings.
	PageSize int
}

// core is the state shared by every service.
type core struct {
	store    *store.Store
	history  *history.Store
	cache    *querycache.Cache
	logger   *log.Logger
	pageSize int

	mu       sync.RWMutex
	resolver *access.Resolver
}

func (c *core) level(ctx context.Context, resource string) access.Level {
	c.mu.RLock()
	resolver := c.resolver
	c.mu.RUnlock()

	if resolver == nil {
		return access.None
	}
	user, _ := access.UserFromContext(ctx)
	return resolver.Resolve(user, resource)
}

func (c *core) require(ctx context.Context, resource string, need access.Level) error {
	return c.level(ctx, resource).Require(need, resource)
}

// audit records an action. Failures are logged, never returned: the change
// itself already happened.
func (c *core) audit(ctx context.Context, action, resource, id string, details map[string]any) {
	user, _ := access.UserFromContext(ctx)
	c.logger.Info(action, "resource", resource, "id", id, "user", user.DisplayName())
	if c.history == nil {
		return
	}
	err := c.history.Record(ctx, history.Entry{
		SessionID: access.SessionID(ctx),
		Actor:     user.DisplayName(),
		Action:    action,
		Resource:  resource,
		RecordID:  id,
		Details:   details,
	})
	if err != nil {
		c.logger.Error("failed to record audit entry", "action", action, "err", err)
	}
}

// Catalog exposes every resource of the shop.
type Catalog struct {
	core *core

	Users       *Service[shop.User]
	Products    *Service[shop.Product]
	Categories  *Service[shop.Category]
	Memberships *Service[shop.Membership]
	Orders      *Service[shop.Order]
	Promotions  *Service[shop.Promotion]
	Shipping    *Service[shop.ShippingMethod]
	Reviews     *Service[shop.Review]
	Settings    *SettingsService

	collections map[string]Collection

	fmtMu  sync.RWMutex
	format shop.Format
}

// New wires a catalog. The display format is taken from the saved settings.
func New(ctx context.Context, deps Deps) (*Catalog, error) {
	if deps.Store == nil {
		return nil, errors.New("catalog: store is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = log.Default()
	}
	if deps.PageSize <= 0 {
		deps.PageSize = 10
	}

	c := &core{
		store:    deps.Store,
		history:  deps.History,
		cache:    deps.Cache,
		logger:   logger.WithPrefix("catalog"),
		pageSize: deps.PageSize,
		resolver: deps.Resolver,
	}

	settings, err := deps.Store.Settings.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	f := shop.FormatFor(settings)

	cat := &Catalog{
		core:        c,
		Users:       newService(c, shop.Users(), deps.Store.Users),
		Products:    newService(c, shop.Products(), deps.Store.Products),
		Categories:  newService(c, shop.Categories(), deps.Store.Categories),
		Memberships: newService(c, shop.Memberships(), deps.Store.Memberships),
		Orders:      newService(c, shop.Orders(f), deps.Store.Orders),
		Promotions:  newService(c, shop.Promotions(), deps.Store.Promotions),
		Shipping:    newService(c, shop.Shipping(f), deps.Store.Shipping),
		Reviews:     newService(c, shop.Reviews(), deps.Store.Reviews),
	}
	cat.format = f
	cat.Settings = &SettingsService{core: c, onSave: cat.applyFormat}

	cat.collections = map[string]Collection{
		shop.ResUsers:       cat.Users,
		shop.ResProducts:    cat.Products,
		shop.ResCategories:  cat.Categories,
		shop.ResMemberships: cat.Memberships,
		shop.ResOrders:      cat.Orders,
		shop.ResPromotions:  cat.Promotions,
		shop.ResShipping:    cat.Shipping,
		shop.ResReviews:     cat.Reviews,
	}
	return cat, nil
}

// applyFormat rebinds the resources whose columns depend on settings.
func (cat *Catalog) applyFormat(s shop.Settings) {
	f := shop.FormatFor(s)
	cat.fmtMu.Lock()
	cat.format = f
	cat.fmtMu.Unlock()
	cat.Orders.rebind(shop.Orders(f))
	cat.Shipping.rebind(shop.Shipping(f))
}

// Format returns the display format derived from the saved settings.
func (cat *Catalog) Format() shop.Format {
	cat.fmtMu.RLock()
	defer cat.fmtMu.RUnlock()
	return cat.format
}

// Store returns the underlying store.
func (cat *Catalog) Store() *store.Store {
	return cat.core.store
}

// History returns the history store, which may be nil.
func (cat *Catalog) History() *history.Store {
	return cat.core.history
}

// PageSize is the default page size of listings.
func (cat *Catalog) PageSize() int {
	return cat.core.pageSize
}

// SetResolver swaps the access resolver, e.g. after a config reload.
func (cat *Catalog) SetResolver(r *access.Resolver) {
	cat.core.mu.Lock()
	defer cat.core.mu.Unlock()
	cat.core.resolver = r
}

// Level returns the access level of the context user on resource.
func (cat *Catalog) Level(ctx context.Context, resource string) access.Level {
	return cat.core.level(ctx, resource)
}

// Collection returns the named resource.
func (cat *Catalog) Collection(name string) (Collection, bool) {
	c, ok := cat.collections[name]
	return c, ok
}

// Collections returns every table resource in navigation order.
func (cat *Catalog) Collections() []Collection {
	out := make([]Collection, 0, len(shop.Names))
	for _, name := range shop.Names {
		out = append(out, cat.collections[name])
	}
	return out
}

// Visible returns the resources the context user can read.
func (cat *Catalog) Visible(ctx context.Context) []Collection {
	var out []Collection
	for _, c := range cat.Collections() {
		if cat.Level(ctx, c.Name()).CanRead() {
			out = append(out, c)
		}
	}
	return out
}

// Stats summarises the shop for the dashboard.
type Stats struct {
	Counts    map[string]int
	Revenue   float64
	Recent    []shop.Order
	StoreSize int64
}

// Stats returns record counts for the readable resources, revenue and the
// most recent orders.
func (cat *Catalog) Stats(ctx context.Context) (Stats, error) {
	counts, err := cat.core.store.Counts(ctx)
	if err != nil {
		return Stats{}, err
	}
	st := Stats{Counts: make(map[string]int), StoreSize: cat.core.store.Size()}
	for name, n := range counts {
		if cat.Level(ctx, name).CanRead() {
			st.Counts[name] = n
		}
	}

	if cat.Level(ctx, shop.ResOrders).CanRead() {
		if st.Revenue, err = cat.core.store.Revenue(ctx); err != nil {
			return Stats{}, err
		}
		page, err := cat.Orders.Page(ctx, store.PageQuery{Page: 1, Limit: 5})
		if err != nil {
			return Stats{}, err
		}
		st.Recent = page.Items
	}
	return st, nil
}
