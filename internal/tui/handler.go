package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish/bubbletea"
	"github.com/johan-st/shopdash/internal/catalog"
	"github.com/johan-st/shopdash/internal/config"
	"github.com/johan-st/shopdash/internal/server"
)

// OptionsFromConfig reads the UI section of cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	ui := cfg.UISettings()
	return Options{
		PageSize:       ui.PageSize,
		SearchDebounce: cfg.SearchDebounce(),
		CompactWidth:   ui.CompactWidth,
	}
}

// Handler returns a bubbletea middleware handler for SSH sessions.
func Handler(cat *catalog.Catalog, cfg *config.Config) bubbletea.Handler {
	return func(s ssh.Session) (tea.Model, []tea.ProgramOption) {
		pty, _, ok := s.Pty()
		if !ok {
			// This shouldn't happen as routing middleware checks for PTY
			return nil, nil
		}

		app := NewApp(server.RequestContext(s), cat, OptionsFromConfig(cfg), pty.Window.Width, pty.Window.Height)

		return app, []tea.ProgramOption{
			tea.WithAltScreen(),
			tea.WithMouseCellMotion(),
		}
	}
}
