package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/johan-st/shopdash/internal/datatable"
	"github.com/johan-st/shopdash/internal/shop"
	"github.com/johan-st/shopdash/internal/store"
	"github.com/johan-st/shopdash/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedIsIdempotent(t *testing.T) {
	s := testutil.Store(t, true)
	ctx := context.Background()

	require.NoError(t, s.Seed(ctx))

	counts, err := s.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, counts[shop.ResCategories])
	assert.Equal(t, 12, counts[shop.ResProducts])
	assert.Equal(t, 2, counts[shop.ResMemberships])
	assert.Equal(t, 4, counts[shop.ResUsers])
	assert.Equal(t, 15, counts[shop.ResOrders])
	assert.Equal(t, 4, counts[shop.ResPromotions])
	assert.Equal(t, 4, counts[shop.ResShipping])
	assert.Equal(t, 4, counts[shop.ResReviews])
}

func TestRepoCRUD(t *testing.T) {
	s := testutil.Store(t, false)
	ctx := context.Background()

	id, err := s.Memberships.Create(ctx, map[string]any{"name": "Platinum"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	m, err := s.Memberships.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Platinum", m.Name)
	assert.True(t, m.Active())
	assert.False(t, m.CreatedAt.IsZero())

	require.NoError(t, s.Memberships.Update(ctx, id, map[string]any{"name": "Diamond"}))
	m, err = s.Memberships.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Diamond", m.Name)

	require.NoError(t, s.Memberships.Delete(ctx, id))
	_, err = s.Memberships.Get(ctx, id)
	assert.True(t, errors.Is(err, store.ErrNotFound), "got %v", err)

	err = s.Memberships.Delete(ctx, id)
	assert.True(t, errors.Is(err, store.ErrNotFound), "got %v", err)
}

func TestRepoRejectsUnknownColumns(t *testing.T) {
	s := testutil.Store(t, false)
	ctx := context.Background()

	_, err := s.Memberships.Create(ctx, map[string]any{"name": "x", "id; DROP TABLE users": 1})
	assert.Error(t, err)

	err = s.Memberships.Update(ctx, "missing", map[string]any{})
	assert.Error(t, err)
}

func TestRepoPage(t *testing.T) {
	s := testutil.Store(t, true)
	ctx := context.Background()

	page, err := s.Products.Page(ctx, store.PageQuery{Page: 1, Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, 12, page.Total)
	assert.Len(t, page.Items, 5)

	last, err := s.Products.Page(ctx, store.PageQuery{Page: 3, Limit: 5})
	require.NoError(t, err)
	assert.Len(t, last.Items, 2)

	// Search matches name or description, ignoring case.
	found, err := s.Products.Page(ctx, store.PageQuery{Page: 1, Limit: 10, Search: "CHARGER"})
	require.NoError(t, err)
	assert.Equal(t, 1, found.Total)
	require.Len(t, found.Items, 1)
	assert.Equal(t, "USB-C Charger", found.Items[0].Name)

	byDesc, err := s.Products.Page(ctx, store.PageQuery{Search: "denim"})
	require.NoError(t, err)
	assert.Equal(t, 1, byDesc.Total)

	// LIKE wildcards are literal.
	none, err := s.Products.Page(ctx, store.PageQuery{Search: "%"})
	require.NoError(t, err)
	assert.Equal(t, 0, none.Total)
	assert.Empty(t, none.Items)
}

func TestRepoPageFoldsUnicode(t *testing.T) {
	s := testutil.Store(t, false)
	ctx := context.Background()

	for _, name := range []string{"Élan Express", "Standard"} {
		_, err := s.Shipping.Create(ctx, map[string]any{"name": name, "price": 5.0})
		require.NoError(t, err)
	}
	all, err := s.Shipping.All(ctx)
	require.NoError(t, err)

	for _, q := range []string{"élan", "ÉLAN", "Élan"} {
		page, err := s.Shipping.Page(ctx, store.PageQuery{Page: 1, Limit: 10, Search: q})
		require.NoError(t, err)
		require.Equal(t, 1, page.Total, q)
		assert.Equal(t, "Élan Express", page.Items[0].Name)

		client := datatable.Filter(all, []string{"name"}, q)
		assert.Len(t, client, 1, "client and server search agree on %q", q)
	}
}

func TestPageQueryNormalize(t *testing.T) {
	q := store.PageQuery{Page: -2, Limit: 0}.Normalize()
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, 10, q.Limit)
}

func TestSetActiveAndDeactivateAll(t *testing.T) {
	s := testutil.Store(t, true)
	ctx := context.Background()

	methods, err := s.Shipping.All(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, methods)

	first := methods[0].ID
	require.NoError(t, s.Shipping.SetActive(ctx, first, false))
	got, err := s.Shipping.Get(ctx, first)
	require.NoError(t, err)
	assert.False(t, got.Active())

	n, err := s.Shipping.DeactivateAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(len(methods)-1), n)

	all, err := s.Shipping.All(ctx)
	require.NoError(t, err)
	for _, m := range all {
		assert.False(t, m.Active(), m.Name)
	}

	require.NoError(t, s.Shipping.SetActive(ctx, first, true))
	got, err = s.Shipping.Get(ctx, first)
	require.NoError(t, err)
	assert.True(t, got.Active())

	assert.True(t, errors.Is(s.Shipping.SetActive(ctx, "nope", true), store.ErrNotFound))
}

func TestOrdersScanTimestamps(t *testing.T) {
	s := testutil.Store(t, true)
	ctx := context.Background()

	orders, err := s.Orders.All(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 15)
	for i := 1; i < len(orders); i++ {
		assert.False(t, orders[i].OrderDate.After(orders[i-1].OrderDate.Time), "orders sorted newest first")
	}

	revenue, err := s.Revenue(ctx)
	require.NoError(t, err)
	assert.Greater(t, revenue, 0.0)
}

func TestSettings(t *testing.T) {
	s := testutil.Store(t, false)
	ctx := context.Background()

	got, err := s.Settings.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, shop.DefaultSettings(), got)

	saved := store.SettingsFromValues(map[string]any{
		"site_name":       "Corner Shop",
		"logo_url":        "",
		"primary_color":   "#112233",
		"contact_email":   "hi@corner.test",
		"currency_symbol": "€",
		"tax_rate":        21.0,
	})
	assert.Nil(t, saved.LogoURL)
	require.NoError(t, s.Settings.Save(ctx, saved))

	got, err = s.Settings.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Corner Shop", got.SiteName)
	assert.Equal(t, "€", got.CurrencySymbol)
	assert.Equal(t, 21.0, got.TaxRate)
	assert.False(t, got.UpdatedAt.IsZero())

	saved.SiteName = "Corner Shop 2"
	require.NoError(t, s.Settings.Save(ctx, saved))
	got, err = s.Settings.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Corner Shop 2", got.SiteName)
}

func TestLockManager(t *testing.T) {
	lm := store.NewLockManager()
	key := store.RecordKey(shop.ResProducts, "p1")
	assert.Equal(t, "products/p1", key)

	require.NoError(t, lm.TryLock(key, "alice", "s1"))
	require.NoError(t, lm.TryLock(key, "alice", "s1"))

	err := lm.TryLock(key, "bob", "s2")
	var lockErr *store.LockError
	require.True(t, errors.As(err, &lockErr))
	assert.Equal(t, "alice", lockErr.HeldBy)

	lm.Unlock(key, "s2")
	_, held := lm.Holder(key)
	assert.True(t, held, "only the holder may unlock")

	require.NoError(t, lm.TryLock(store.RecordKey(shop.ResUsers, "u1"), "alice", "s1"))
	assert.Len(t, lm.List(), 2)

	lm.ReleaseAllForSession("s1")
	assert.Empty(t, lm.List())
	require.NoError(t, lm.TryLock(key, "bob", "s2"))
}
