// Package config loads the YAML configuration and reloads it on change.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/johan-st/shopdash/internal/access"
	gossh "golang.org/x/crypto/ssh"
	"gopkg.in/yaml.v3"
)

// Config is the application configuration.
type Config struct {
	Name   string       `yaml:"name"`
	Server ServerConfig `yaml:"server"`
	Store  StoreConfig  `yaml:"store"`
	UI     UIConfig     `yaml:"ui"`
	Log    LogConfig    `yaml:"log"`

	// none, read-only or read-write
	AnonymousAccess string `yaml:"anonymous_access"`
	AllowKeyless    bool   `yaml:"allow_keyless"`

	Users  []User       `yaml:"users"`
	Public []AccessRule `yaml:"public"`

	path    string
	modTime time.Time
	mu      sync.RWMutex
}

type ServerConfig struct {
	SSH   SSHConfig   `yaml:"ssh"`
	Local LocalConfig `yaml:"local"`
}

type SSHConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Listen      string `yaml:"listen"`
	HostKeyPath string `yaml:"host_key_path"`
	IdleTimeout string `yaml:"idle_timeout"`
	MaxTimeout  string `yaml:"max_timeout"`
}

type LocalConfig struct {
	Enabled bool `yaml:"enabled"`
	// User is the name recorded for local sessions.
	User string `yaml:"user"`
}

// StoreConfig locates the shop database.
type StoreConfig struct {
	Path string `yaml:"path"`
	// Seed fills an empty database with demo records.
	Seed bool `yaml:"seed"`
}

// UIConfig tunes the table and form views.
type UIConfig struct {
	PageSize       int    `yaml:"page_size"`
	SearchDebounce string `yaml:"search_debounce"`
	// CompactWidth is the terminal width below which forms open as a bottom sheet.
	CompactWidth int    `yaml:"compact_width"`
	CacheTTL     string `yaml:"cache_ttl"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text or json
	File   string `yaml:"file"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Name: "shopdash",
		Server: ServerConfig{
			SSH: SSHConfig{
				Enabled:     true,
				Listen:      ":2323",
				HostKeyPath: ".shopdash/host_key",
				IdleTimeout: "30m",
				MaxTimeout:  "24h",
			},
			Local: LocalConfig{Enabled: true, User: "local"},
		},
		Store: StoreConfig{Path: ".shopdash/shop.db"},
		UI: UIConfig{
			PageSize:       10,
			SearchDebounce: "300ms",
			CompactWidth:   100,
			CacheTTL:       "5m",
		},
		Log:             LogConfig{Level: "info", Format: "text"},
		AnonymousAccess: "none",
	}
}

// Load reads path over the defaults.
func Load(path string) (*Config, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}

	cfg, err := parse(absPath)
	if err != nil {
		return nil, err
	}
	cfg.path = absPath
	if info, err := os.Stat(absPath); err == nil {
		cfg.modTime = info.ModTime()
	}
	return cfg, nil
}

func parse(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.UI.PageSize <= 0 {
		return fmt.Errorf("ui.page_size must be positive, got %d", c.UI.PageSize)
	}
	for _, field := range []struct{ name, value string }{
		{"ui.search_debounce", c.UI.SearchDebounce},
		{"ui.cache_ttl", c.UI.CacheTTL},
		{"server.ssh.idle_timeout", c.Server.SSH.IdleTimeout},
		{"server.ssh.max_timeout", c.Server.SSH.MaxTimeout},
	} {
		if _, err := time.ParseDuration(field.value); err != nil {
			return fmt.Errorf("%s: %w", field.name, err)
		}
	}
	return nil
}

// Path returns the absolute path of the loaded file, or "" for defaults.
func (c *Config) Path() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.path
}

// Reload re-reads the file. The current values are kept if it is invalid.
func (c *Config) Reload() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := parse(c.path)
	if err != nil {
		return err
	}

	c.Name = next.Name
	c.Server = next.Server
	c.Store = next.Store
	c.UI = next.UI
	c.Log = next.Log
	c.AnonymousAccess = next.AnonymousAccess
	c.AllowKeyless = next.AllowKeyless
	c.Users = next.Users
	c.Public = next.Public

	if info, err := os.Stat(c.path); err == nil {
		c.modTime = info.ModTime()
	}
	return nil
}

// HasChanged reports whether the file is newer than the loaded copy.
func (c *Config) HasChanged() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	info, err := os.Stat(c.path)
	if err != nil {
		return false
	}
	return info.ModTime().After(c.modTime)
}

// BuildResolver turns the user and public rules into an access.Resolver.
func (c *Config) BuildResolver() *access.Resolver {
	c.mu.RLock()
	defer c.mu.RUnlock()

	resolver := access.NewResolver()
	resolver.SetAnonymousAccess(access.ParseLevel(c.AnonymousAccess))

	for _, pub := range c.Public {
		rule := pub.ToAccessRule()
		resolver.AddPublicRule(rule.Pattern, rule.Level)
	}
	for _, user := range c.Users {
		if user.Admin {
			resolver.AddAdmin(user.Name)
		}
		for _, r := range user.Access {
			rule := r.ToAccessRule()
			resolver.AddUserRule(user.Name, rule.Pattern, rule.Level)
		}
	}
	return resolver
}

// FindUserByKey returns the configured user owning key, if any.
func (c *Config) FindUserByKey(key gossh.PublicKey) (User, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, u := range c.Users {
		if u.HasKey(key) {
			return u, true
		}
	}
	return User{}, false
}

// AllowsAnonymous reports whether unknown keys may connect.
func (c *Config) AllowsAnonymous() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.AllowKeyless || access.ParseLevel(c.AnonymousAccess) != access.None
}

// KeylessAllowed reports whether keyboard-interactive logins are accepted.
func (c *Config) KeylessAllowed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.AllowKeyless
}

// UISettings returns a copy of the UI section.
func (c *Config) UISettings() UIConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.UI
}

// SearchDebounce is the delay before a typed search is sent to the store.
func (c *Config) SearchDebounce() time.Duration {
	return c.duration(func() string { return c.UI.SearchDebounce }, 300*time.Millisecond)
}

// CacheTTL is how long fetched collections stay cached.
func (c *Config) CacheTTL() time.Duration {
	return c.duration(func() string { return c.UI.CacheTTL }, 5*time.Minute)
}

func (c *Config) GetIdleTimeout() time.Duration {
	return c.duration(func() string { return c.Server.SSH.IdleTimeout }, 30*time.Minute)
}

func (c *Config) GetMaxTimeout() time.Duration {
	return c.duration(func() string { return c.Server.SSH.MaxTimeout }, 24*time.Hour)
}

func (c *Config) duration(get func() string, fallback time.Duration) time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()

	d, err := time.ParseDuration(get())
	if err != nil {
		return fallback
	}
	return d
}

// GetDataDir is where history, host keys and the default store live.
func (c *Config) GetDataDir() string {
	return ".shopdash"
}
