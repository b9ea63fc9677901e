// Package tui is the interactive permissions console.
package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nebari-dev/mlperm/internal/cliclient"
	"github.com/nebari-dev/mlperm/internal/filter"
	"github.com/nebari-dev/mlperm/internal/permview"
)

// Options configures the console.
type Options struct {
	Page *permview.Page
	Dark bool
}

type model struct {
	ctx    context.Context
	page   *permview.Page
	styles styles

	view     permview.View
	selected int
	notice   string

	filtering   bool
	filterInput textinput.Model

	// form is the open add dialog, if any.
	form *form
}

// viewMsg carries the page state after a load or mutation finished.
type viewMsg struct {
	view permview.View
	err  error
}

// Run shows the console for opts.Page until the user quits or ctx is done.
// A load still in flight on exit is abandoned.
func Run(ctx context.Context, opts Options) error {
	defer opts.Page.Close()
	m := initialModel(ctx, opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func initialModel(ctx context.Context, opts Options) model {
	ti := textinput.New()
	ti.Placeholder = "filter by name"
	ti.CharLimit = 128
	ti.Width = 40
	return model{
		ctx:         ctx,
		page:        opts.Page,
		styles:      newStyles(opts.Dark),
		view:        opts.Page.Snapshot(),
		filterInput: ti,
	}
}

func (m model) Init() tea.Cmd { return m.loadCmd() }

func (m model) loadCmd() tea.Cmd {
	page, ctx := m.page, m.ctx
	return func() tea.Msg { return viewMsg{view: page.Load(ctx)} }
}

func (m model) retryCmd() tea.Cmd {
	page, ctx := m.page, m.ctx
	return func() tea.Msg { return viewMsg{view: page.Retry(ctx)} }
}

func (m model) mutateCmd(op func(ctx context.Context) (permview.View, error)) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		v, err := op(ctx)
		return viewMsg{view: v, err: err}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.form != nil {
			return m.updateForm(msg)
		}
		if m.filtering {
			switch msg.String() {
			case "esc", "enter":
				m.filtering = false
				m.filterInput.Blur()
				m.clampSelection()
				return m, nil
			default:
				var cmd tea.Cmd
				m.filterInput, cmd = m.filterInput.Update(msg)
				m.clampSelection()
				return m, cmd
			}
		}
		m.notice = ""
		switch msg.String() {
		case "ctrl+c", "q":
			m.page.Close()
			return m, tea.Quit
		case "1", "2", "3":
			i, _ := strconv.Atoi(msg.String())
			return m.switchTab(permview.Tabs[i-1])
		case "tab":
			return m.switchTab(permview.Tabs[(int(m.view.Tab)+1)%len(permview.Tabs)])
		case "r":
			v, err := m.page.SelectRegex(!m.view.Regex)
			m.view = v
			if err != nil {
				m.notice = err.Error()
				return m, nil
			}
			m.selected = 0
			return m, m.loadCmd()
		case "R":
			if m.view.Err == nil {
				return m, nil
			}
			return m, m.retryCmd()
		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}
		case "down", "j":
			if m.selected < m.rowCount()-1 {
				m.selected++
			}
		case "/":
			m.filtering = true
			m.filterInput.Focus()
			return m, textinput.Blink
		case "x":
			m.view = m.page.DismissToast()
		case "e":
			return m, m.editSelected()
		case "d":
			return m, m.deleteSelected()
		case "a":
			if m.view.Regex {
				m.form = newPatternForm()
			} else {
				m.form = newGrantForm()
			}
			return m, m.form.focusField(0)
		}
		return m, nil
	case viewMsg:
		m.view = msg.view
		m.clampSelection()
		return m, nil
	}
	return m, nil
}

func (m model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.form
	switch msg.String() {
	case "ctrl+c":
		m.page.Close()
		return m, tea.Quit
	case "esc":
		m.form = nil
		return m, nil
	case "tab", "down":
		return m, f.focusField(f.focus + 1)
	case "shift+tab", "up":
		return m, f.focusField(f.focus - 1)
	case "enter":
		if !f.last() {
			return m, f.focusField(f.focus + 1)
		}
		return m.submitForm()
	}
	return m, f.update(msg)
}

// submitForm validates the dialog and sends it. Invalid fields keep the
// dialog open with the error under each field.
func (m model) submitForm() (tea.Model, tea.Cmd) {
	f := m.form
	var op func(ctx context.Context) (permview.View, error)
	if f.regex {
		req, ok := f.pattern()
		if !ok {
			return m, nil
		}
		op = func(ctx context.Context) (permview.View, error) { return m.page.AddPattern(ctx, req) }
	} else {
		id, level, ok := f.grant()
		if !ok {
			return m, nil
		}
		op = func(ctx context.Context) (permview.View, error) { return m.page.Grant(ctx, id, level) }
	}
	m.form = nil
	return m, m.mutateCmd(op)
}

func (m model) switchTab(tab permview.Tab) (tea.Model, tea.Cmd) {
	m.view = m.page.SelectTab(tab)
	m.selected = 0
	return m, m.loadCmd()
}

func (m model) editSelected() tea.Cmd {
	if m.view.Regex {
		pats := m.visiblePatterns()
		if m.selected >= len(pats) {
			return nil
		}
		pp := pats[m.selected]
		req := cliclient.PatternRequest{Regex: pp.Regex, Priority: pp.Priority, Permission: pp.Permission.Next()}
		return m.mutateCmd(func(ctx context.Context) (permview.View, error) {
			return m.page.EditPattern(ctx, pp.ID, req)
		})
	}
	grants := m.visibleGrants()
	if m.selected >= len(grants) {
		return nil
	}
	g := grants[m.selected]
	return m.mutateCmd(func(ctx context.Context) (permview.View, error) {
		return m.page.Edit(ctx, g.Key(), g.Permission.Next())
	})
}

func (m model) deleteSelected() tea.Cmd {
	if m.view.Regex {
		pats := m.visiblePatterns()
		if m.selected >= len(pats) {
			return nil
		}
		id := pats[m.selected].ID
		return m.mutateCmd(func(ctx context.Context) (permview.View, error) {
			return m.page.DeletePattern(ctx, id)
		})
	}
	grants := m.visibleGrants()
	if m.selected >= len(grants) {
		return nil
	}
	key := grants[m.selected].Key()
	return m.mutateCmd(func(ctx context.Context) (permview.View, error) {
		return m.page.Revoke(ctx, key)
	})
}

func (m model) filterOptions() filter.Options {
	return filter.Options{Search: m.filterInput.Value()}
}

func (m model) visibleGrants() []cliclient.Grant {
	return filter.Apply(m.view.Grants, func(g cliclient.Grant) string { return g.Name }, m.filterOptions())
}

func (m model) visiblePatterns() []cliclient.PatternPermission {
	return filter.Apply(m.view.Patterns, func(p cliclient.PatternPermission) string { return p.Regex }, m.filterOptions())
}

func (m model) rowCount() int {
	if m.view.Regex {
		return len(m.visiblePatterns())
	}
	return len(m.visibleGrants())
}

func (m *model) clampSelection() {
	if n := m.rowCount(); m.selected >= n {
		m.selected = max(0, n-1)
	}
}

func (m model) View() string {
	s := m.styles
	var b strings.Builder

	b.WriteString(s.title.Render("Permissions for "+m.view.Principal.String()) + "\n")
	b.WriteString(s.muted.Render("1/2/3 tab  •  r regex  •  / filter  •  a add  •  e cycle level  •  d delete  •  x dismiss  •  q quit") + "\n\n")

	tabs := make([]string, 0, len(permview.Tabs))
	for _, t := range permview.Tabs {
		if t == m.view.Tab {
			tabs = append(tabs, s.activeTab.Render(t.String()))
		} else {
			tabs = append(tabs, s.tab.Render(t.String()))
		}
	}
	mode := "Exact"
	if m.view.Regex {
		mode = "Regex"
	}
	b.WriteString(strings.Join(tabs, " ") + "  " + s.muted.Render("mode: "+mode) + "\n\n")

	if m.filtering || m.filterInput.Value() != "" {
		b.WriteString("Filter: " + m.filterInput.View() + "\n\n")
	}

	switch {
	case m.view.Err != nil:
		b.WriteString(s.errBlock.Render("Failed to load permissions\n"+m.view.Err.Error()+"\nPress R to retry") + "\n")
	case m.view.Loading && !m.view.Loaded:
		b.WriteString(s.muted.Render("Loading...") + "\n")
	case m.view.Regex:
		m.renderPatterns(&b)
	default:
		m.renderGrants(&b)
	}

	if m.form != nil {
		b.WriteString("\n" + m.form.view(s))
	}

	if m.notice != "" {
		b.WriteString("\n" + s.toastErr.Render(m.notice) + "\n")
	}
	if m.view.Toast != "" {
		style := s.toast
		if strings.HasPrefix(m.view.Toast, "Error:") {
			style = s.toastErr
		}
		b.WriteString("\n" + style.Render(m.view.Toast) + "\n")
	}
	return b.String()
}

func (m model) cursor(i int) string {
	if i == m.selected {
		return m.styles.selected.Render("> ")
	}
	return "  "
}

func (m model) renderGrants(b *strings.Builder) {
	rows := m.visibleGrants()
	b.WriteString(m.styles.header.Render(fmt.Sprintf("  %-40s %-16s %s", "NAME", "PERMISSION", "SOURCE")) + "\n")
	if len(rows) == 0 {
		b.WriteString(m.styles.muted.Render("  (no permissions)") + "\n")
		return
	}
	for i, g := range rows {
		fmt.Fprintf(b, "%s%-40s %-16s %s\n", m.cursor(i), g.Name, g.Permission, g.Kind)
	}
}

func (m model) renderPatterns(b *strings.Builder) {
	rows := m.visiblePatterns()
	b.WriteString(m.styles.header.Render(fmt.Sprintf("  %-6s %-40s %-9s %s", "ID", "REGEX", "PRIORITY", "PERMISSION")) + "\n")
	if len(rows) == 0 {
		b.WriteString(m.styles.muted.Render("  (no patterns)") + "\n")
		return
	}
	for i, p := range rows {
		fmt.Fprintf(b, "%s%-6d %-40s %-9d %s\n", m.cursor(i), p.ID, p.Regex, p.Priority, p.Permission)
	}
}
