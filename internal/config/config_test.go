package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/johan-st/shopdash/internal/access"
)

const sample = `
name: test-shop
store:
  path: /tmp/shop.db
ui:
  page_size: 25
  search_debounce: 150ms
  compact_width: 90
anonymous_access: read-only
users:
  - name: alice
    admin: true
  - name: bob
    public_keys:
      - SHA256:abcdef
    access:
      - pattern: "promo*"
        level: read-write
public:
  - pattern: settings
    level: none
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, sample))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Name != "test-shop" {
		t.Errorf("Name = %q", cfg.Name)
	}
	if cfg.UI.PageSize != 25 {
		t.Errorf("PageSize = %d, want 25", cfg.UI.PageSize)
	}
	if got := cfg.SearchDebounce(); got != 150*time.Millisecond {
		t.Errorf("SearchDebounce() = %v", got)
	}
	// Unset values keep their defaults.
	if got := cfg.CacheTTL(); got != 5*time.Minute {
		t.Errorf("CacheTTL() = %v, want default", got)
	}
	if cfg.Server.SSH.Listen != ":2323" {
		t.Errorf("Listen = %q, want default", cfg.Server.SSH.Listen)
	}
	if !cfg.AllowsAnonymous() {
		t.Error("AllowsAnonymous() = false with read-only anonymous access")
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"bad yaml":     "ui: [",
		"zero page":    "ui:\n  page_size: 0\n",
		"bad duration": "ui:\n  cache_ttl: soon\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, content)); err == nil {
				t.Error("Load() error = nil, want error")
			}
		})
	}
}

func TestBuildResolver(t *testing.T) {
	cfg, err := Load(writeConfig(t, sample))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	r := cfg.BuildResolver()

	tests := []struct {
		user     *access.UserInfo
		resource string
		want     access.Level
	}{
		{&access.UserInfo{Name: "alice"}, "settings", access.Admin},
		{&access.UserInfo{Name: "bob"}, "promotions", access.ReadWrite},
		{&access.UserInfo{Name: "bob"}, "products", access.ReadOnly},
		{&access.UserInfo{Name: "bob"}, "settings", access.None},
		{&access.UserInfo{IsAnonymous: true}, "orders", access.ReadOnly},
	}
	for _, tt := range tests {
		if got := r.Resolve(tt.user, tt.resource); got != tt.want {
			t.Errorf("Resolve(%s, %s) = %v, want %v", tt.user.DisplayName(), tt.resource, got, tt.want)
		}
	}
}

func TestReloadKeepsOldOnError(t *testing.T) {
	path := writeConfig(t, sample)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if err := os.WriteFile(path, []byte("ui:\n  page_size: -1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := cfg.Reload(); err == nil {
		t.Fatal("Reload() error = nil, want error")
	}
	if cfg.UISettings().PageSize != 25 {
		t.Errorf("PageSize = %d after failed reload, want 25", cfg.UISettings().PageSize)
	}

	if err := os.WriteFile(path, []byte("ui:\n  page_size: 5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := cfg.Reload(); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if cfg.UISettings().PageSize != 5 {
		t.Errorf("PageSize = %d, want 5", cfg.UISettings().PageSize)
	}
}
