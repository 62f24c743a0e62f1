package tui

import (
	"context"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/johan-st/shopdash/internal/form"
)

// saveFunc stores validated form values and returns the record id.
type saveFunc func(ctx context.Context, id string, values map[string]any) (string, error)

// formView is an open form: one text input per schema field, bound to a
// form session that owns values, errors and the submit lifecycle.
type formView struct {
	token    int
	title    string
	resource string
	id       string // empty when creating
	session  *form.Session
	fields   []form.Field
	inputs   []textinput.Model
	focus    int
	save     saveFunc
}

func newFormView(title, resource, id string, schema *form.Schema, defaults form.Values, save saveFunc) *formView {
	session := form.NewSession(schema)
	session.Open(defaults)

	fields := schema.Fields()
	inputs := make([]textinput.Model, len(fields))
	for i, f := range fields {
		in := textinput.New()
		in.Prompt = ""
		in.Placeholder = f.Placeholder
		in.CharLimit = 500
		in.Width = 40
		in.SetValue(session.Value(f.Name))
		inputs[i] = in
	}

	fv := &formView{
		title:    title,
		resource: resource,
		id:       id,
		session:  session,
		fields:   fields,
		inputs:   inputs,
		save:     save,
	}
	fv.setFocus(0)
	return fv
}

func (f *formView) setFocus(i int) {
	if len(f.inputs) == 0 {
		return
	}
	f.focus = (i + len(f.inputs)) % len(f.inputs)
	for j := range f.inputs {
		if j == f.focus {
			f.inputs[j].Focus()
		} else {
			f.inputs[j].Blur()
		}
	}
}

// update handles a key while the form is open and not submitting.
func (f *formView) update(msg tea.KeyMsg, keys KeyMap) tea.Cmd {
	if f.session.IsSubmitting() {
		return nil
	}

	switch {
	case key.Matches(msg, keys.NextField):
		f.setFocus(f.focus + 1)
		return nil
	case key.Matches(msg, keys.PrevField):
		f.setFocus(f.focus - 1)
		return nil
	}

	field := f.fields[f.focus]
	if field.Kind == form.Bool {
		if msg.String() == " " || msg.String() == "enter" {
			cur, _ := strconv.ParseBool(f.inputs[f.focus].Value())
			f.inputs[f.focus].SetValue(strconv.FormatBool(!cur))
			f.session.Set(field.Name, f.inputs[f.focus].Value())
		}
		return nil
	}
	if msg.String() == "enter" {
		f.setFocus(f.focus + 1)
		return nil
	}

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	f.session.Set(field.Name, f.inputs[f.focus].Value())
	return cmd
}

// submit validates the form. On success it returns a command that saves
// the values; on validation failure the errors stay on the fields.
func (f *formView) submit(ctx context.Context) tea.Cmd {
	values, err := f.session.Begin()
	if err != nil {
		for i, field := range f.fields {
			if f.session.FieldError(field.Name) != "" {
				f.setFocus(i)
				break
			}
		}
		return nil
	}

	token, resource, id, save := f.token, f.resource, f.id, f.save
	return func() tea.Msg {
		saved, err := save(ctx, id, values)
		return savedMsg{token: token, resource: resource, id: saved, created: id == "", err: err}
	}
}

// view renders the form body.
func (f *formView) view(width int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(f.title))
	b.WriteString("\n\n")

	for i, field := range f.fields {
		label := field.Label
		if field.Required {
			label += " *"
		}
		marker := "  "
		if i == f.focus {
			marker = promptStyle.Render("> ")
		}
		b.WriteString(marker + labelStyle.Render(label))
		if field.Kind != form.Text {
			b.WriteString(dimItemStyle.Render(" (" + field.Kind.String() + ")"))
		}
		b.WriteString("\n  ")
		if field.Kind == form.Bool {
			box := "[ ]"
			if v, _ := strconv.ParseBool(f.inputs[i].Value()); v {
				box = "[x]"
			}
			b.WriteString(box + dimItemStyle.Render(" space to toggle"))
		} else {
			f.inputs[i].Width = max(width-8, 10)
			b.WriteString(f.inputs[i].View())
		}
		b.WriteString("\n")
		if msg := f.session.FieldError(field.Name); msg != "" {
			b.WriteString("  " + fieldErrorStyle.Render(msg) + "\n")
		}
	}

	b.WriteString("\n")
	button := buttonStyle
	if !f.session.CanSubmit() {
		button = buttonDisabledStyle
	}
	b.WriteString(button.Render(f.session.SubmitLabel()))
	if f.session.CanCancel() {
		b.WriteString("  " + dimItemStyle.Render("ctrl+s save · esc cancel"))
	}
	return b.String()
}

// render draws the form over base using the given layout.
func (f *formView) render(base string, layout form.Layout, width, height int) string {
	if layout == form.Sheet {
		sheet := sheetStyle.Width(width).Render(f.view(width - 2))
		return overlayBottom(base, sheet, height)
	}
	w := min(70, width-4)
	modal := modalStyle.Width(w).Render(f.view(w - 6))
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, modal)
}

// overlayBottom keeps the top of base and draws sheet below it.
func overlayBottom(base, sheet string, height int) string {
	sheetLines := strings.Split(sheet, "\n")
	keep := max(height-len(sheetLines), 0)
	baseLines := strings.Split(base, "\n")
	if len(baseLines) > keep {
		baseLines = baseLines[:keep]
	}
	for len(baseLines) < keep {
		baseLines = append(baseLines, "")
	}
	return strings.Join(append(baseLines, sheetLines...), "\n")
}
