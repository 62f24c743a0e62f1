package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/johan-st/shopdash/internal/shop"
)

// Tables maps each resource to its table.
var Tables = map[string]Table{
	shop.ResCategories: {
		Name:    "categories",
		Columns: []string{"category_name", "parent_category_id"},
		Search:  []string{"category_name"},
		OrderBy: "category_name",
	},
	shop.ResProducts: {
		Name:    "products",
		Columns: []string{"category_id", "name", "description", "product_image"},
		Search:  []string{"name", "description"},
		OrderBy: "name",
	},
	shop.ResMemberships: {
		Name:    "memberships",
		Columns: []string{"name"},
		Search:  []string{"name"},
		OrderBy: "name",
	},
	shop.ResUsers: {
		Name:    "users",
		Columns: []string{"username", "email_address", "phone_number", "is_member", "membership_id"},
		Search:  []string{"username", "email_address", "phone_number"},
		OrderBy: "username",
	},
	shop.ResOrders: {
		Name:    "orders",
		Columns: []string{"user_id", "order_date", "shipping_method", "order_total", "order_status"},
		Search:  []string{"id", "user_id", "order_status"},
		OrderBy: "order_date DESC",
	},
	shop.ResPromotions: {
		Name:    "promotions",
		Columns: []string{"name", "description", "discount_rate", "start_date", "end_date"},
		Search:  []string{"name", "description"},
		OrderBy: "start_date DESC, name",
	},
	shop.ResShipping: {
		Name:    "shipping_methods",
		Columns: []string{"name", "price"},
		Search:  []string{"name"},
		OrderBy: "price, name",
	},
	shop.ResReviews: {
		Name:    "reviews",
		Columns: []string{"user_id", "ordered_product_id", "rating_value", "comment"},
		Search:  []string{"user_id", "ordered_product_id", "comment"},
		OrderBy: "created_at DESC",
	},
}

// Store is the shop database with a repository per entity.
type Store struct {
	conn   *Connection
	logger *log.Logger

	Categories  *Repo[shop.Category]
	Products    *Repo[shop.Product]
	Memberships *Repo[shop.Membership]
	Users       *Repo[shop.User]
	Orders      *Repo[shop.Order]
	Promotions  *Repo[shop.Promotion]
	Shipping    *Repo[shop.ShippingMethod]
	Reviews     *Repo[shop.Review]
	Settings    *SettingsRepo
	Locks       *LockManager
}

// Open opens or creates the store at path and migrates it.
func Open(ctx context.Context, path string, logger *log.Logger) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	conn, err := Connect(path, DefaultOpenOptions())
	if err != nil {
		return nil, err
	}

	s := &Store{
		conn:        conn,
		logger:      logger.WithPrefix("store"),
		Categories:  newRepo[shop.Category](conn, Tables[shop.ResCategories]),
		Products:    newRepo[shop.Product](conn, Tables[shop.ResProducts]),
		Memberships: newRepo[shop.Membership](conn, Tables[shop.ResMemberships]),
		Users:       newRepo[shop.User](conn, Tables[shop.ResUsers]),
		Orders:      newRepo[shop.Order](conn, Tables[shop.ResOrders]),
		Promotions:  newRepo[shop.Promotion](conn, Tables[shop.ResPromotions]),
		Shipping:    newRepo[shop.ShippingMethod](conn, Tables[shop.ResShipping]),
		Reviews:     newRepo[shop.Review](conn, Tables[shop.ResReviews]),
		Settings:    &SettingsRepo{conn: conn},
		Locks:       NewLockManager(),
	}

	if err := s.migrate(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	s.logger.Debug("store opened", "path", path)
	return s, nil
}

func (s *Store) Close() error {
	return s.conn.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.conn.Path
}

// Size returns the size of the database file in bytes.
func (s *Store) Size() int64 {
	info, err := os.Stat(s.conn.Path)
	if err != nil {
		return 0
	}
	return info.Size()
}

// Counts returns the number of records per resource.
func (s *Store) Counts(ctx context.Context) (map[string]int, error) {
	counters := map[string]interface {
		Count(context.Context) (int, error)
	}{
		shop.ResCategories:  s.Categories,
		shop.ResProducts:    s.Products,
		shop.ResMemberships: s.Memberships,
		shop.ResUsers:       s.Users,
		shop.ResOrders:      s.Orders,
		shop.ResPromotions:  s.Promotions,
		shop.ResShipping:    s.Shipping,
		shop.ResReviews:     s.Reviews,
	}
	out := make(map[string]int, len(counters))
	for name, c := range counters {
		n, err := c.Count(ctx)
		if err != nil {
			return nil, err
		}
		out[name] = n
	}
	return out, nil
}

// Revenue returns the sum of all non-cancelled order totals.
func (s *Store) Revenue(ctx context.Context) (float64, error) {
	var total float64
	err := s.conn.Get(ctx, &total,
		"SELECT COALESCE(SUM(order_total), 0) FROM orders WHERE COALESCE(order_status, '') != ?", shop.StatusCancelled)
	if err != nil {
		return 0, fmt.Errorf("revenue: %w", err)
	}
	return total, nil
}
