package catalog

import (
	"context"

	"github.com/johan-st/shopdash/internal/access"
	"github.com/johan-st/shopdash/internal/form"
	"github.com/johan-st/shopdash/internal/history"
	"github.com/johan-st/shopdash/internal/shop"
	"github.com/johan-st/shopdash/internal/store"
)

// SettingsService reads and saves the site settings.
type SettingsService struct {
	core   *core
	onSave func(shop.Settings)
}

// Schema returns the settings form schema.
func (s *SettingsService) Schema() *form.Schema {
	return shop.SettingsSchema()
}

// Level returns the access level of the context user on settings.
func (s *SettingsService) Level(ctx context.Context) access.Level {
	return s.core.level(ctx, shop.ResSettings)
}

// Get returns the current settings.
func (s *SettingsService) Get(ctx context.Context) (shop.Settings, error) {
	if err := s.core.require(ctx, shop.ResSettings, access.ReadOnly); err != nil {
		return shop.Settings{}, err
	}
	return s.core.store.Settings.Get(ctx)
}

// Values returns the current settings as form values.
func (s *SettingsService) Values(ctx context.Context) (form.Values, error) {
	settings, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	return shop.SettingsValues(settings), nil
}

// Save stores validated settings values.
func (s *SettingsService) Save(ctx context.Context, values map[string]any) error {
	if err := s.core.require(ctx, shop.ResSettings, access.ReadWrite); err != nil {
		return err
	}
	settings := store.SettingsFromValues(values)
	if err := s.core.store.Settings.Save(ctx, settings); err != nil {
		return err
	}
	if s.onSave != nil {
		s.onSave(settings)
	}
	s.core.audit(ctx, history.ActionSettingsUpdate, shop.ResSettings, "", map[string]any{"values": values})
	return nil
}

// Submit applies raw values on top of the current settings.
func (s *SettingsService) Submit(ctx context.Context, raw form.Values) error {
	if err := s.core.require(ctx, shop.ResSettings, access.ReadWrite); err != nil {
		return err
	}
	current, err := s.Values(ctx)
	if err != nil {
		return err
	}
	session := form.NewSession(s.Schema())
	session.Open(current)
	for name, v := range raw {
		if err := session.Set(name, v); err != nil {
			return err
		}
	}
	return session.Submit(ctx, s.Save)
}
