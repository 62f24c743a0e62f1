package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/johan-st/shopdash/internal/catalog"
	"github.com/johan-st/shopdash/internal/form"
)

// settingsLoadedMsg carries the current settings as form values.
type settingsLoadedMsg struct {
	values form.Values
	err    error
}

func loadSettings(ctx context.Context, s *catalog.SettingsService) tea.Cmd {
	return func() tea.Msg {
		values, err := s.Values(ctx)
		return settingsLoadedMsg{values: values, err: err}
	}
}

// settingsForm opens the settings form over the current values.
func settingsForm(s *catalog.SettingsService, values form.Values) *formView {
	save := func(ctx context.Context, _ string, v map[string]any) (string, error) {
		return "", s.Save(ctx, v)
	}
	return newFormView("Store Settings", settingsResource, "", s.Schema(), values, save)
}

// renderSettings lists the saved settings.
func renderSettings(s *catalog.SettingsService, values form.Values, err error, canWrite bool) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Settings"))
	b.WriteString("\n\n")

	if err != nil {
		b.WriteString(errorStyle.Render(errText(err)))
		return b.String()
	}
	if values == nil {
		b.WriteString(dimItemStyle.Render("Loading..."))
		return b.String()
	}

	label := lipgloss.NewStyle().Width(18)
	for _, f := range s.Schema().Fields() {
		v := values[f.Name]
		if f.Kind == form.Color && v != "" {
			v = lipgloss.NewStyle().Foreground(lipgloss.Color(v)).Render("■ ") + v
		}
		b.WriteString(label.Render(labelStyle.Render(f.Label)) + v + "\n")
	}
	if canWrite {
		b.WriteString("\n" + dimItemStyle.Render("Press e to edit"))
	}
	return b.String()
}
