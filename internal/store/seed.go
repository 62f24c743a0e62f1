package store

import (
	"context"
	"fmt"
	"time"

	"github.com/johan-st/shopdash/internal/shop"
)

// Seed fills an empty store with a demo catalogue. It does nothing when
// products already exist.
func (s *Store) Seed(ctx context.Context) error {
	n, err := s.Products.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	catIDs := map[string]string{}
	for _, name := range []string{"Clothing", "Electronics", "Home & Garden", "Books", "Toys"} {
		id, err := s.Categories.Create(ctx, map[string]any{"category_name": name})
		if err != nil {
			return fmt.Errorf("seed categories: %w", err)
		}
		catIDs[name] = id
	}

	products := []struct{ name, desc, category string }{
		{"Classic T-Shirt", "100% cotton crew neck", "Clothing"},
		{"Denim Jacket", "Stonewashed denim", "Clothing"},
		{"Wireless Earbuds", "Bluetooth 5.3 with charging case", "Electronics"},
		{"USB-C Charger", "65W GaN fast charger", "Electronics"},
		{"Mechanical Keyboard", "Hot-swappable switches", "Electronics"},
		{"Ceramic Planter", "Matte white, 20cm", "Home & Garden"},
		{"Garden Hose", "15m expandable hose", "Home & Garden"},
		{"Go in Action", "Programming book", "Books"},
		{"Field Guide to Birds", "Illustrated guide", "Books"},
		{"Wooden Train Set", "40 pieces", "Toys"},
		{"Puzzle 1000", "Landscape jigsaw", "Toys"},
		{"Rain Boots", "Waterproof rubber boots", "Clothing"},
	}
	for _, p := range products {
		_, err := s.Products.Create(ctx, map[string]any{
			"name":        p.name,
			"description": p.desc,
			"category_id": catIDs[p.category],
		})
		if err != nil {
			return fmt.Errorf("seed products: %w", err)
		}
	}

	gold, err := s.Memberships.Create(ctx, map[string]any{"name": "Gold"})
	if err != nil {
		return fmt.Errorf("seed memberships: %w", err)
	}
	if _, err := s.Memberships.Create(ctx, map[string]any{"name": "Silver"}); err != nil {
		return fmt.Errorf("seed memberships: %w", err)
	}

	users := []struct {
		name, email string
		member      bool
	}{
		{"john_doe", "john@example.com", true},
		{"jane_smith", "jane@example.com", false},
		{"sam_lee", "sam@example.com", true},
		{"ana_costa", "ana@example.com", false},
	}
	var userIDs []string
	for _, u := range users {
		values := map[string]any{"username": u.name, "email_address": u.email, "is_member": u.member}
		if u.member {
			values["membership_id"] = gold
		}
		id, err := s.Users.Create(ctx, values)
		if err != nil {
			return fmt.Errorf("seed users: %w", err)
		}
		userIDs = append(userIDs, id)
	}

	statuses := []string{shop.StatusPending, shop.StatusProcessing, shop.StatusShipped, shop.StatusDelivered, shop.StatusCancelled}
	base := time.Now().UTC().Truncate(time.Hour)
	for i := 0; i < 15; i++ {
		_, err := s.Orders.Create(ctx, map[string]any{
			"user_id":         userIDs[i%len(userIDs)],
			"order_date":      shop.Timestamp{Time: base.Add(-time.Duration(i*19) * time.Hour)},
			"shipping_method": "Standard",
			"order_total":     float64(20+i*13) + 0.99,
			"order_status":    statuses[i%len(statuses)],
		})
		if err != nil {
			return fmt.Errorf("seed orders: %w", err)
		}
	}

	promotions := []struct {
		name, desc string
		rate       float64
		start, end string
	}{
		{"Summer Sale", "Seasonal discount on clothing", 20, "2024-06-01", "2024-08-31"},
		{"Black Friday", "Storewide deals", 35, "2024-11-29", "2024-11-30"},
		{"Back to School", "Books and electronics", 10, "2024-08-15", "2024-09-15"},
		{"Spring Garden", "Home & garden promotion", 15, "2024-03-20", "2024-04-30"},
	}
	for _, p := range promotions {
		_, err := s.Promotions.Create(ctx, map[string]any{
			"name": p.name, "description": p.desc, "discount_rate": p.rate,
			"start_date": p.start, "end_date": p.end,
		})
		if err != nil {
			return fmt.Errorf("seed promotions: %w", err)
		}
	}

	for _, m := range []struct {
		name  string
		price float64
	}{{"Standard", 4.99}, {"Express", 12.99}, {"Next Day", 24.5}, {"Pickup", 0}} {
		if _, err := s.Shipping.Create(ctx, map[string]any{"name": m.name, "price": m.price}); err != nil {
			return fmt.Errorf("seed shipping: %w", err)
		}
	}

	comments := []string{"Great quality", "Arrived late", "Exactly as described", "Would buy again"}
	for i, c := range comments {
		_, err := s.Reviews.Create(ctx, map[string]any{
			"user_id":            userIDs[i%len(userIDs)],
			"ordered_product_id": fmt.Sprintf("order-line-%d", i+1),
			"rating_value":       int64(5 - i%3),
			"comment":            c,
		})
		if err != nil {
			return fmt.Errorf("seed reviews: %w", err)
		}
	}

	s.logger.Info("seeded demo catalogue")
	return nil
}
