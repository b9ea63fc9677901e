package tui

import (
	"errors"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nebari-dev/mlperm/internal/cliclient"
	"github.com/nebari-dev/mlperm/internal/validate"
)

// formField is one input of a dialog. name matches validate.FieldError.Field.
type formField struct {
	name  string
	label string
	input textinput.Model
}

// form is the add dialog: a grant in exact mode, a regex grant in regex mode.
type form struct {
	regex  bool
	fields []formField
	focus  int
	errs   map[string]string
}

func newInput(placeholder string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 256
	ti.Width = 40
	return ti
}

func newGrantForm() *form {
	return &form{fields: []formField{
		{name: "id", label: "Resource", input: newInput("experiment id or model name")},
		{name: "permission", label: "Level", input: newInput("READ")},
	}}
}

func newPatternForm() *form {
	return &form{regex: true, fields: []formField{
		{name: "regex", label: "Regex", input: newInput("^team-.*")},
		{name: "priority", label: "Priority", input: newInput("0")},
		{name: "permission", label: "Level", input: newInput("READ")},
	}}
}

func (f *form) title() string {
	if f.regex {
		return "Add regex permission"
	}
	return "Grant permission"
}

// focusField moves the cursor to field i, wrapping around.
func (f *form) focusField(i int) tea.Cmd {
	n := len(f.fields)
	f.focus = ((i % n) + n) % n
	for j := range f.fields {
		f.fields[j].input.Blur()
	}
	f.fields[f.focus].input.Focus()
	return textinput.Blink
}

func (f *form) last() bool { return f.focus == len(f.fields)-1 }

func (f *form) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.fields[f.focus].input, cmd = f.fields[f.focus].input.Update(msg)
	return cmd
}

func (f *form) value(name string) string {
	for _, fld := range f.fields {
		if fld.name == name {
			return strings.TrimSpace(fld.input.Value())
		}
	}
	return ""
}

// addError records err against its field. Errors that are not field errors
// are shown at the bottom of the dialog.
func (f *form) addError(err error) {
	if f.errs == nil {
		f.errs = make(map[string]string)
	}
	var fe *validate.FieldError
	if errors.As(err, &fe) {
		f.errs[fe.Field] = fe.Message
		return
	}
	f.errs[""] = err.Error()
}

func (f *form) level() (cliclient.Level, error) {
	raw := f.value("permission")
	if raw == "" {
		return cliclient.LevelRead, nil
	}
	return validate.ParseLevel(raw)
}

// grant reads the exact-mode fields. Every invalid field is recorded.
func (f *form) grant() (string, cliclient.Level, bool) {
	f.errs = nil
	id := f.value("id")
	if id == "" {
		f.addError(&validate.FieldError{Field: "id", Message: "must not be empty"})
	}
	level, err := f.level()
	if err != nil {
		f.addError(err)
	}
	return id, level, len(f.errs) == 0
}

// pattern reads the regex-mode fields. Every invalid field is recorded.
func (f *form) pattern() (cliclient.PatternRequest, bool) {
	f.errs = nil
	req := cliclient.PatternRequest{Regex: f.value("regex")}
	if err := validate.Pattern(req.Regex); err != nil {
		f.addError(err)
	}
	if raw := f.value("priority"); raw != "" {
		p, err := strconv.Atoi(raw)
		if err != nil {
			f.addError(&validate.FieldError{Field: "priority", Message: "must be a whole number"})
		} else if err := validate.Priority(p); err != nil {
			f.addError(err)
		} else {
			req.Priority = p
		}
	}
	level, err := f.level()
	if err != nil {
		f.addError(err)
	}
	req.Permission = level
	return req, len(f.errs) == 0
}

func (f *form) view(s styles) string {
	var b strings.Builder
	b.WriteString(s.header.Render(f.title()) + "\n")
	for _, fld := range f.fields {
		b.WriteString(s.muted.Render(padRight(fld.label, 9)) + fld.input.View() + "\n")
		if msg := f.errs[fld.name]; msg != "" {
			b.WriteString(s.toastErr.Render("         "+fld.name+": "+msg) + "\n")
		}
	}
	if msg := f.errs[""]; msg != "" {
		b.WriteString(s.toastErr.Render(msg) + "\n")
	}
	b.WriteString(s.muted.Render("tab next field  •  enter submit on last field  •  esc cancel") + "\n")
	return b.String()
}

func padRight(s string, n int) string {
	if len(s) >= n {
		return s + " "
	}
	return s + strings.Repeat(" ", n-len(s))
}
