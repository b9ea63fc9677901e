package tui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nebari-dev/mlperm/internal/cliclient"
	"github.com/nebari-dev/mlperm/internal/endpoints"
	"github.com/nebari-dev/mlperm/internal/permview"
)

type fakeService struct {
	mu       sync.Mutex
	grants   map[endpoints.ResourceKind][]cliclient.Grant
	patterns []cliclient.PatternPermission
	listErr  error
	calls    []string
	// hold, when set, makes ListPermissions signal on it and then wait for
	// its context to end.
	hold chan struct{}
}

func (f *fakeService) record(s string) {
	f.mu.Lock()
	f.calls = append(f.calls, s)
	f.mu.Unlock()
}

func (f *fakeService) ListPermissions(ctx context.Context, _ cliclient.Principal, kind endpoints.ResourceKind) ([]cliclient.Grant, error) {
	f.record("list " + kind.String())
	f.mu.Lock()
	hold := f.hold
	f.mu.Unlock()
	if hold != nil {
		hold <- struct{}{}
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.grants[kind], nil
}

func (f *fakeService) GrantPermission(_ context.Context, _ cliclient.Principal, _ endpoints.ResourceKind, id string, level cliclient.Level) error {
	f.record("grant " + id + " " + string(level))
	return nil
}

func (f *fakeService) UpdatePermission(_ context.Context, _ cliclient.Principal, _ endpoints.ResourceKind, id string, level cliclient.Level) error {
	f.record("update " + id + " " + string(level))
	return nil
}

func (f *fakeService) RevokePermission(_ context.Context, _ cliclient.Principal, _ endpoints.ResourceKind, id string) error {
	f.record("revoke " + id)
	return nil
}

func (f *fakeService) ListPatternPermissions(_ context.Context, _ cliclient.Principal, kind endpoints.ResourceKind) ([]cliclient.PatternPermission, error) {
	f.record("patterns " + kind.String())
	return f.patterns, nil
}

func (f *fakeService) CreatePatternPermission(_ context.Context, _ cliclient.Principal, _ endpoints.ResourceKind, req cliclient.PatternRequest) (*cliclient.PatternPermission, error) {
	f.record("create-pattern " + req.Regex)
	return &cliclient.PatternPermission{ID: 99, Regex: req.Regex}, nil
}

func (f *fakeService) UpdatePatternPermission(_ context.Context, _ cliclient.Principal, _ endpoints.ResourceKind, id int, req cliclient.PatternRequest) error {
	f.record("update-pattern " + string(req.Permission))
	return nil
}

func (f *fakeService) DeletePatternPermission(_ context.Context, _ cliclient.Principal, _ endpoints.ResourceKind, id int) error {
	f.record("delete-pattern")
	return nil
}

func (f *fakeService) lastCall() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return ""
	}
	return f.calls[len(f.calls)-1]
}

func newFake() *fakeService {
	return &fakeService{
		grants: map[endpoints.ResourceKind][]cliclient.Grant{
			endpoints.Experiment: {
				{ID: "1", Name: "churn", Permission: cliclient.LevelRead, Kind: "user"},
				{ID: "2", Name: "fraud", Permission: cliclient.LevelManage, Kind: "group"},
			},
			endpoints.Model: {
				{Name: "ranker", Permission: cliclient.LevelEdit, Kind: "user"},
			},
		},
		patterns: []cliclient.PatternPermission{{ID: 7, Regex: "^team-.*", Priority: 1, Permission: cliclient.LevelRead}},
	}
}

func newModel(t *testing.T, svc *fakeService, admin bool) model {
	t.Helper()
	page := permview.New(svc, cliclient.UserPrincipal("alice"), admin)
	m := initialModel(context.Background(), Options{Page: page})
	return run(t, m, m.Init())
}

// run executes cmd synchronously and feeds its message back into the model.
func run(t *testing.T, m model, cmd tea.Cmd) model {
	t.Helper()
	if cmd == nil {
		return m
	}
	msg := cmd()
	if _, ok := msg.(viewMsg); !ok {
		return m
	}
	updated, _ := m.Update(msg)
	return updated.(model)
}

func press(t *testing.T, m model, key string) model {
	t.Helper()
	var msg tea.KeyMsg
	switch key {
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	updated, cmd := m.Update(msg)
	next := updated.(model)
	if next.filtering || next.form != nil {
		// cursor blink commands tick on a timer
		return next
	}
	return run(t, next, cmd)
}

func TestInitialLoadRendersGrants(t *testing.T) {
	m := newModel(t, newFake(), false)

	out := m.View()
	for _, want := range []string{"churn", "fraud", "MANAGE", "user alice"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q:\n%s", want, out)
		}
	}
}

func TestTabSwitching(t *testing.T) {
	svc := newFake()
	m := newModel(t, svc, false)

	m = press(t, m, "2")
	if m.view.Tab != permview.Models {
		t.Fatalf("tab = %v, want Models", m.view.Tab)
	}
	if !strings.Contains(m.View(), "ranker") {
		t.Fatalf("models tab should show ranker:\n%s", m.View())
	}

	m = press(t, m, "tab")
	if m.view.Tab != permview.Prompts {
		t.Fatalf("tab = %v, want Prompts", m.view.Tab)
	}
	if svc.lastCall() != "list prompts" {
		t.Fatalf("last call = %q", svc.lastCall())
	}
}

func TestRegexRequiresAdmin(t *testing.T) {
	svc := newFake()
	m := newModel(t, svc, false)

	m = press(t, m, "r")
	if m.view.Regex {
		t.Fatal("non-admin should stay in exact mode")
	}
	if !strings.Contains(m.View(), "administrators only") {
		t.Fatalf("expected admin notice:\n%s", m.View())
	}
}

func TestRegexShowsPatternTable(t *testing.T) {
	svc := newFake()
	m := newModel(t, svc, true)

	m = press(t, m, "r")
	if !m.view.Regex {
		t.Fatal("expected regex mode")
	}
	if svc.lastCall() != "patterns experiments" {
		t.Fatalf("last call = %q", svc.lastCall())
	}
	out := m.View()
	if !strings.Contains(out, "^team-.*") || strings.Contains(out, "churn") {
		t.Fatalf("pattern table should replace grants:\n%s", out)
	}

	m = press(t, m, "e")
	if svc.lastCall() != "patterns experiments" {
		t.Fatalf("edit should refetch, last call = %q", svc.lastCall())
	}
	found := false
	for _, c := range svc.calls {
		if c == "update-pattern EDIT" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected pattern level cycled to EDIT, calls = %v", svc.calls)
	}
}

func TestErrorBlockAndRetry(t *testing.T) {
	svc := newFake()
	svc.listErr = errors.New("boom")
	m := newModel(t, svc, false)

	out := m.View()
	if !strings.Contains(out, "boom") || !strings.Contains(out, "Press R to retry") {
		t.Fatalf("expected error block:\n%s", out)
	}

	svc.listErr = nil
	m = press(t, m, "R")
	if m.view.Err != nil {
		t.Fatalf("retry should clear error, got %v", m.view.Err)
	}
	if !strings.Contains(m.View(), "churn") {
		t.Fatalf("rows should load after retry:\n%s", m.View())
	}
}

func TestFilterNarrowsRows(t *testing.T) {
	m := newModel(t, newFake(), false)

	m = press(t, m, "/")
	for _, r := range "FRA" {
		m = press(t, m, string(r))
	}
	m = press(t, m, "enter")

	if m.filtering {
		t.Fatal("enter should leave filter mode")
	}
	out := m.View()
	if !strings.Contains(out, "fraud") || strings.Contains(out, "churn") {
		t.Fatalf("filter should keep only fraud:\n%s", out)
	}
}

func TestRevokeSelectedShowsToast(t *testing.T) {
	svc := newFake()
	m := newModel(t, svc, false)

	m = press(t, m, "j")
	m = press(t, m, "d")

	found := false
	for _, c := range svc.calls {
		if c == "revoke 2" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected revoke of second row, calls = %v", svc.calls)
	}
	if !strings.Contains(m.View(), "Revoked 2") {
		t.Fatalf("expected toast:\n%s", m.View())
	}

	m = press(t, m, "x")
	if m.view.Toast != "" {
		t.Fatal("x should dismiss the toast")
	}
}

func typeText(t *testing.T, m model, text string) model {
	t.Helper()
	for _, r := range text {
		m = press(t, m, string(r))
	}
	return m
}

func (f *fakeService) called(call string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c == call {
			return true
		}
	}
	return false
}

func TestGrantDialog(t *testing.T) {
	svc := newFake()
	m := newModel(t, svc, false)

	m = press(t, m, "a")
	if m.form == nil || m.form.regex {
		t.Fatal("a should open the grant dialog in exact mode")
	}
	if !strings.Contains(m.View(), "Grant permission") {
		t.Fatalf("dialog not rendered:\n%s", m.View())
	}

	// Submitting without a resource keeps the dialog open.
	m = press(t, m, "tab")
	m = typeText(t, m, "bogus")
	m = press(t, m, "enter")
	if m.form == nil {
		t.Fatal("invalid input should keep the dialog open")
	}
	if m.form.errs["id"] == "" || m.form.errs["permission"] == "" {
		t.Fatalf("expected errors on id and permission, got %v", m.form.errs)
	}
	if svc.lastCall() != "list experiments" {
		t.Fatalf("invalid grant reached the service, last call = %q", svc.lastCall())
	}

	m = press(t, m, "esc")
	m = press(t, m, "a")
	m = typeText(t, m, "42")
	m = press(t, m, "enter")
	m = typeText(t, m, "edit")
	m = press(t, m, "enter")

	if m.form != nil {
		t.Fatal("dialog should close after a valid submit")
	}
	if !svc.called("grant 42 EDIT") {
		t.Fatalf("expected grant call, calls = %v", svc.calls)
	}
	if svc.lastCall() != "list experiments" {
		t.Fatalf("grant should refetch, last call = %q", svc.lastCall())
	}
	if !strings.Contains(m.View(), "Granted EDIT on 42") {
		t.Fatalf("expected toast:\n%s", m.View())
	}
}

func TestPatternDialog(t *testing.T) {
	svc := newFake()
	m := newModel(t, svc, true)
	m = press(t, m, "r")

	m = press(t, m, "a")
	if m.form == nil || !m.form.regex {
		t.Fatal("a should open the pattern dialog in regex mode")
	}
	m = typeText(t, m, "([")
	m = press(t, m, "enter")
	m = typeText(t, m, "x")
	m = press(t, m, "enter")
	m = press(t, m, "enter")

	if m.form == nil {
		t.Fatal("invalid pattern should keep the dialog open")
	}
	if m.form.errs["regex"] == "" || m.form.errs["priority"] == "" {
		t.Fatalf("expected regex and priority errors, got %v", m.form.errs)
	}
	out := m.View()
	if !strings.Contains(out, "regex:") || !strings.Contains(out, "must be a whole number") {
		t.Fatalf("field errors not rendered:\n%s", out)
	}

	m = press(t, m, "esc")
	m = press(t, m, "a")
	m = typeText(t, m, "^team-")
	m = press(t, m, "enter")
	m = typeText(t, m, "5")
	m = press(t, m, "enter")
	m = typeText(t, m, "manage")
	m = press(t, m, "enter")

	if !svc.called("create-pattern ^team-") {
		t.Fatalf("expected pattern creation, calls = %v", svc.calls)
	}
	if svc.called("create-pattern ([") {
		t.Fatal("invalid regex reached the service")
	}
	if svc.lastCall() != "patterns experiments" {
		t.Fatalf("add should refetch patterns, last call = %q", svc.lastCall())
	}
	if !strings.Contains(m.View(), "Added pattern ^team-") {
		t.Fatalf("expected toast:\n%s", m.View())
	}
}

func TestQuitAbandonsPendingLoad(t *testing.T) {
	svc := newFake()
	m := newModel(t, svc, false)

	svc.mu.Lock()
	svc.hold = make(chan struct{}, 1)
	svc.mu.Unlock()

	load := m.loadCmd()
	done := make(chan tea.Msg, 1)
	go func() { done <- load() }()
	<-svc.hold

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("q should quit")
	}
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("pending load was not canceled on quit")
	}
}
