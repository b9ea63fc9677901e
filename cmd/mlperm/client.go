package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nebari-dev/mlperm/internal/audit"
	"github.com/nebari-dev/mlperm/internal/cliclient"
	"github.com/nebari-dev/mlperm/internal/endpoints"
	"github.com/nebari-dev/mlperm/internal/guard"
	"github.com/nebari-dev/mlperm/internal/store"
)

var commandRoutes = map[*cobra.Command]guard.Route{}

func setRoute(cmd *cobra.Command, r guard.Route) {
	commandRoutes[cmd] = r
}

// routeFor returns the route of cmd or its nearest ancestor.
func routeFor(cmd *cobra.Command) (guard.Route, bool) {
	for c := cmd; c != nil; c = c.Parent() {
		if r, ok := commandRoutes[c]; ok {
			return r, true
		}
	}
	return 0, false
}

// resolveServerURL returns the server from flags or config, falling back to
// the one stored at login.
func resolveServerURL(creds *store.Credentials) (string, error) {
	if cfg.Server.URL != "" {
		return endpoints.RemoveTrailingSlashes(cfg.Server.URL), nil
	}
	if creds.ServerURL != "" {
		return creds.ServerURL, nil
	}
	return "", fmt.Errorf("no server configured; run 'mlperm login <server-url>' first")
}

// getAuthenticatedClient loads credentials and returns an authenticated API client.
func getAuthenticatedClient() (*cliclient.Client, error) {
	s, err := store.New()
	if err != nil {
		return nil, err
	}
	defer s.Close()

	creds, err := s.LoadCredentials()
	if err != nil {
		return nil, fmt.Errorf("loading credentials: %w", err)
	}
	serverURL, err := resolveServerURL(creds)
	if err != nil {
		return nil, err
	}
	if !creds.LoggedIn() || creds.ServerURL != serverURL {
		return nil, fmt.Errorf("%w to %s; run 'mlperm login %s' first", guard.ErrUnauthenticated, serverURL, serverURL)
	}

	return cliclient.New(serverURL,
		cliclient.WithBasicAuth(creds.Username, creds.Token),
		cliclient.WithTimeout(cfg.Server.Timeout),
	), nil
}

// authorize asks the server who the caller is and applies the route policy.
func authorize(cmd *cobra.Command, client *cliclient.Client, route guard.Route) (*cliclient.User, error) {
	me, err := client.CurrentUser(cmd.Context())
	switch {
	case cliclient.IsUnauthorized(err):
		return nil, fmt.Errorf("%w: stored token was rejected by %s", guard.Err(guard.Check(route, guard.Session{})), client.BaseURL())
	case err != nil:
		return nil, fmt.Errorf("checking current user: %w", err)
	}
	if err := guard.Err(guard.Check(route, guard.Session{Authenticated: true, IsAdmin: me.IsAdmin})); err != nil {
		return nil, fmt.Errorf("%s: %w", cmd.CommandPath(), err)
	}
	return me, nil
}

// recordHistory logs a successful mutation. Failures only produce a warning.
func recordHistory(action, target string, details interface{}) {
	s, err := store.New()
	if err != nil {
		slog.Warn("opening history", "error", err)
		return
	}
	defer s.Close()

	server, actor := "", ""
	if session.client != nil {
		server = session.client.BaseURL()
	}
	if session.user != nil {
		actor = session.user.Username
	}
	if err := audit.LogAction(s.DB(), server, actor, action, target, details); err != nil {
		slog.Warn("recording history", "action", action, "error", err)
	}
}

func jsonOutput() bool {
	return cfg.Output.Format == "json"
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(cmd *cobra.Command) *tabwriter.Writer {
	return tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return ""
}
