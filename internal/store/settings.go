package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/johan-st/shopdash/internal/shop"
)

// SettingsRepo reads and writes the settings row.
type SettingsRepo struct {
	conn *Connection
}

const settingsColumns = "site_name, logo_url, primary_color, contact_email, currency_symbol, tax_rate, updated_at"

// Get returns the saved settings, or the defaults if none were saved.
func (r *SettingsRepo) Get(ctx context.Context) (shop.Settings, error) {
	var s shop.Settings
	err := r.conn.Get(ctx, &s, "SELECT "+settingsColumns+" FROM settings WHERE id = 1")
	if errors.Is(err, sql.ErrNoRows) {
		return shop.DefaultSettings(), nil
	}
	if err != nil {
		return s, fmt.Errorf("get settings: %w", err)
	}
	return s, nil
}

// Save stores the settings.
func (r *SettingsRepo) Save(ctx context.Context, s shop.Settings) error {
	s.UpdatedAt = shop.Now()
	_, err := r.conn.NamedExec(ctx, `
		INSERT INTO settings (id, `+settingsColumns+`)
		VALUES (1, :site_name, :logo_url, :primary_color, :contact_email, :currency_symbol, :tax_rate, :updated_at)
		ON CONFLICT(id) DO UPDATE SET
			site_name = excluded.site_name,
			logo_url = excluded.logo_url,
			primary_color = excluded.primary_color,
			contact_email = excluded.contact_email,
			currency_symbol = excluded.currency_symbol,
			tax_rate = excluded.tax_rate,
			updated_at = excluded.updated_at`, s)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// SettingsFromValues builds settings from validated form values.
func SettingsFromValues(v map[string]any) shop.Settings {
	s := shop.Settings{}
	s.SiteName, _ = v["site_name"].(string)
	if logo, ok := v["logo_url"].(string); ok && logo != "" {
		s.LogoURL = &logo
	}
	s.PrimaryColor, _ = v["primary_color"].(string)
	s.ContactEmail, _ = v["contact_email"].(string)
	s.CurrencySymbol, _ = v["currency_symbol"].(string)
	s.TaxRate, _ = v["tax_rate"].(float64)
	return s
}
