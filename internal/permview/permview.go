// Package permview holds the view state of a principal's permissions page:
// the active resource tab, exact or regex mode, and the loaded rows.
package permview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/nebari-dev/mlperm/internal/cliclient"
	"github.com/nebari-dev/mlperm/internal/endpoints"
	"github.com/nebari-dev/mlperm/internal/fetch"
	"github.com/nebari-dev/mlperm/internal/validate"
)

// ErrAdminOnly is returned when a non-admin tries to use regex mode.
var ErrAdminOnly = errors.New("regex mode is available to administrators only")

// ErrWrongMode is returned when a mutation does not fit the current mode.
var ErrWrongMode = errors.New("operation not available in the current mode")

// Tab is a resource tab of the permissions page.
type Tab int

const (
	Experiments Tab = iota
	Models
	Prompts
)

// Tabs lists the tabs in display order.
var Tabs = []Tab{Experiments, Models, Prompts}

// Kind returns the resource kind shown on the tab.
func (t Tab) Kind() endpoints.ResourceKind {
	switch t {
	case Experiments:
		return endpoints.Experiment
	case Models:
		return endpoints.Model
	case Prompts:
		return endpoints.Prompt
	default:
		panic(fmt.Sprintf("permview: unknown tab %d", int(t)))
	}
}

func (t Tab) String() string {
	switch t {
	case Experiments:
		return "Experiments"
	case Models:
		return "Models"
	case Prompts:
		return "Prompts"
	default:
		return fmt.Sprintf("Tab(%d)", int(t))
	}
}

// Service is the subset of the API client the page needs.
type Service interface {
	ListPermissions(ctx context.Context, p cliclient.Principal, kind endpoints.ResourceKind) ([]cliclient.Grant, error)
	GrantPermission(ctx context.Context, p cliclient.Principal, kind endpoints.ResourceKind, id string, level cliclient.Level) error
	UpdatePermission(ctx context.Context, p cliclient.Principal, kind endpoints.ResourceKind, id string, level cliclient.Level) error
	RevokePermission(ctx context.Context, p cliclient.Principal, kind endpoints.ResourceKind, id string) error
	ListPatternPermissions(ctx context.Context, p cliclient.Principal, kind endpoints.ResourceKind) ([]cliclient.PatternPermission, error)
	CreatePatternPermission(ctx context.Context, p cliclient.Principal, kind endpoints.ResourceKind, req cliclient.PatternRequest) (*cliclient.PatternPermission, error)
	UpdatePatternPermission(ctx context.Context, p cliclient.Principal, kind endpoints.ResourceKind, id int, req cliclient.PatternRequest) error
	DeletePatternPermission(ctx context.Context, p cliclient.Principal, kind endpoints.ResourceKind, id int) error
}

// View is a snapshot of the page.
type View struct {
	Principal cliclient.Principal
	Tab       Tab
	Regex     bool
	IsAdmin   bool

	Loading bool
	// Loaded is true once rows for the current tab and mode have arrived.
	Loaded   bool
	Grants   []cliclient.Grant
	Patterns []cliclient.PatternPermission

	// Err is the last fetch failure; Retry clears it.
	Err error
	// Toast is a transient message about the last mutation.
	Toast string
}

type rows struct {
	tab      Tab
	regex    bool
	grants   []cliclient.Grant
	patterns []cliclient.PatternPermission
}

// Page is the permissions page of one principal. It is safe for concurrent
// use; the most recent load always wins.
type Page struct {
	svc    Service
	logger *slog.Logger

	loads fetch.Latest[rows]

	mu   sync.Mutex
	view View
}

// New returns a page for principal starting on the experiments tab in exact mode.
func New(svc Service, principal cliclient.Principal, isAdmin bool) *Page {
	return &Page{
		svc:    svc,
		logger: slog.Default().With("principal", principal.String()),
		view: View{
			Principal: principal,
			Tab:       Experiments,
			IsAdmin:   isAdmin,
		},
	}
}

// Snapshot returns the current view.
func (p *Page) Snapshot() View {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

func (p *Page) snapshotLocked() View {
	v := p.view
	v.Grants = append([]cliclient.Grant(nil), p.view.Grants...)
	v.Patterns = append([]cliclient.PatternPermission(nil), p.view.Patterns...)
	return v
}

// resetLocked drops the rows of the previous tab or mode.
func (p *Page) resetLocked() {
	p.view.Grants = nil
	p.view.Patterns = nil
	p.view.Loaded = false
	p.view.Err = nil
	p.view.Loading = true
}

// SelectTab switches tabs without loading. Call Load afterwards.
func (p *Page) SelectTab(tab Tab) View {
	switch tab {
	case Experiments, Models, Prompts:
	default:
		panic(fmt.Sprintf("permview: unknown tab %d", int(tab)))
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.view.Tab != tab || !p.view.Loaded {
		p.view.Tab = tab
		p.resetLocked()
	}
	return p.snapshotLocked()
}

// SelectRegex switches between exact and regex mode without loading.
func (p *Page) SelectRegex(on bool) (View, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if on && !p.view.IsAdmin {
		return p.snapshotLocked(), ErrAdminOnly
	}
	if p.view.Regex != on || !p.view.Loaded {
		p.view.Regex = on
		p.resetLocked()
	}
	return p.snapshotLocked(), nil
}

// Retry clears a fetch error and loads again.
func (p *Page) Retry(ctx context.Context) View {
	p.mu.Lock()
	p.view.Err = nil
	p.mu.Unlock()
	return p.Load(ctx)
}

// DismissToast clears the toast.
func (p *Page) DismissToast() View {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.view.Toast = ""
	return p.snapshotLocked()
}

// Close abandons the in-flight load, if any. Its result is discarded.
func (p *Page) Close() {
	p.loads.Cancel()
}

// Load fetches the rows for the current tab and mode. A load superseded by
// a newer one leaves the view untouched.
func (p *Page) Load(ctx context.Context) View {
	p.mu.Lock()
	tab, regex, principal := p.view.Tab, p.view.Regex, p.view.Principal
	p.view.Loading = true
	p.mu.Unlock()

	res, committed, err := p.loads.Do(ctx, func(ctx context.Context) (rows, error) {
		r := rows{tab: tab, regex: regex}
		var err error
		if regex {
			r.patterns, err = p.svc.ListPatternPermissions(ctx, principal, tab.Kind())
		} else {
			r.grants, err = p.svc.ListPermissions(ctx, principal, tab.Kind())
		}
		return r, err
	})

	p.mu.Lock()
	defer p.mu.Unlock()
	if !committed || p.view.Tab != tab || p.view.Regex != regex {
		return p.snapshotLocked()
	}
	p.view.Loading = false
	if err != nil {
		p.logger.Warn("loading permissions failed", "tab", tab.String(), "regex", regex, "error", err)
		p.view.Err = err
		return p.snapshotLocked()
	}
	p.view.Err = nil
	p.view.Loaded = true
	p.view.Grants = res.grants
	p.view.Patterns = res.patterns
	return p.snapshotLocked()
}

// mutate runs op and refreshes the list on success. On failure the toast
// carries the error and the rows stay as they were.
func (p *Page) mutate(ctx context.Context, wantRegex bool, success string, op func(ctx context.Context, principal cliclient.Principal, kind endpoints.ResourceKind) error) (View, error) {
	p.mu.Lock()
	if p.view.Regex != wantRegex {
		v := p.snapshotLocked()
		p.mu.Unlock()
		return v, ErrWrongMode
	}
	principal, kind := p.view.Principal, p.view.Tab.Kind()
	p.mu.Unlock()

	if err := op(ctx, principal, kind); err != nil {
		if cliclient.IsCanceled(err) {
			return p.Snapshot(), nil
		}
		p.mu.Lock()
		p.view.Toast = "Error: " + err.Error()
		v := p.snapshotLocked()
		p.mu.Unlock()
		return v, err
	}

	p.mu.Lock()
	p.view.Toast = success
	p.mu.Unlock()
	return p.Load(ctx), nil
}

// Grant gives the principal level on resource id.
func (p *Page) Grant(ctx context.Context, id string, level cliclient.Level) (View, error) {
	return p.mutate(ctx, false, fmt.Sprintf("Granted %s on %s", level, id), func(ctx context.Context, pr cliclient.Principal, kind endpoints.ResourceKind) error {
		return p.svc.GrantPermission(ctx, pr, kind, id, level)
	})
}

// Edit changes the level of an existing grant.
func (p *Page) Edit(ctx context.Context, id string, level cliclient.Level) (View, error) {
	return p.mutate(ctx, false, fmt.Sprintf("Updated %s to %s", id, level), func(ctx context.Context, pr cliclient.Principal, kind endpoints.ResourceKind) error {
		return p.svc.UpdatePermission(ctx, pr, kind, id, level)
	})
}

// Revoke removes the grant on resource id.
func (p *Page) Revoke(ctx context.Context, id string) (View, error) {
	return p.mutate(ctx, false, "Revoked "+id, func(ctx context.Context, pr cliclient.Principal, kind endpoints.ResourceKind) error {
		return p.svc.RevokePermission(ctx, pr, kind, id)
	})
}

func checkPattern(req cliclient.PatternRequest) error {
	if err := validate.Pattern(req.Regex); err != nil {
		return err
	}
	if err := validate.Priority(req.Priority); err != nil {
		return err
	}
	_, err := validate.ParseLevel(string(req.Permission))
	return err
}

// AddPattern creates a regex grant. The regex is compiled before anything
// is sent.
func (p *Page) AddPattern(ctx context.Context, req cliclient.PatternRequest) (View, error) {
	if err := checkPattern(req); err != nil {
		return p.Snapshot(), err
	}
	return p.mutate(ctx, true, "Added pattern "+req.Regex, func(ctx context.Context, pr cliclient.Principal, kind endpoints.ResourceKind) error {
		_, err := p.svc.CreatePatternPermission(ctx, pr, kind, req)
		return err
	})
}

// EditPattern replaces a regex grant.
func (p *Page) EditPattern(ctx context.Context, id int, req cliclient.PatternRequest) (View, error) {
	if err := checkPattern(req); err != nil {
		return p.Snapshot(), err
	}
	return p.mutate(ctx, true, "Updated pattern "+strconv.Itoa(id), func(ctx context.Context, pr cliclient.Principal, kind endpoints.ResourceKind) error {
		return p.svc.UpdatePatternPermission(ctx, pr, kind, id, req)
	})
}

// DeletePattern removes a regex grant.
func (p *Page) DeletePattern(ctx context.Context, id int) (View, error) {
	return p.mutate(ctx, true, "Deleted pattern "+strconv.Itoa(id), func(ctx context.Context, pr cliclient.Principal, kind endpoints.ResourceKind) error {
		return p.svc.DeletePatternPermission(ctx, pr, kind, id)
	})
}
