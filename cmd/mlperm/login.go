package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/nebari-dev/mlperm/internal/audit"
	"github.com/nebari-dev/mlperm/internal/cliclient"
	"github.com/nebari-dev/mlperm/internal/endpoints"
	"github.com/nebari-dev/mlperm/internal/guard"
	"github.com/nebari-dev/mlperm/internal/runtimeconfig"
	"github.com/nebari-dev/mlperm/internal/store"
)

var (
	loginUsername string
	loginToken    string
	loginForce    bool
)

var loginCmd = &cobra.Command{
	Use:   "login <server-url>",
	Short: "Connect to an MLflow server",
	Long: `Authenticates with an MLflow server using a username and access token.
The token is kept in the OS keyring when one is available.

Examples:
  mlperm login https://mlflow.company.com
  mlperm login https://mlflow.company.com --username alice --token <access-token>`,
	Args: cobra.ExactArgs(1),
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored access token",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged in user",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

func init() {
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "Username (prompted when omitted)")
	loginCmd.Flags().StringVar(&loginToken, "token", "", "Access token (prompted when omitted)")
	loginCmd.Flags().BoolVar(&loginForce, "force", false, "Log in again even if a session exists")
}

func runLogin(cmd *cobra.Command, args []string) error {
	serverURL := endpoints.RemoveTrailingSlashes(args[0])

	if !strings.HasPrefix(serverURL, "http://") && !strings.HasPrefix(serverURL, "https://") {
		return fmt.Errorf("server URL must start with http:// or https://")
	}

	s, err := store.New()
	if err != nil {
		return err
	}
	defer s.Close()

	existing, err := s.LoadCredentials()
	if err != nil {
		return err
	}
	if !loginForce && existing.LoggedIn() && existing.ServerURL == serverURL {
		if err := guard.Err(guard.Check(guard.Login, guard.Session{Authenticated: true})); err != nil {
			return fmt.Errorf("%w to %s as %s; use --force to log in again", err, serverURL, existing.Username)
		}
	}

	in := bufio.NewReader(cmd.InOrStdin())
	username := loginUsername
	if username == "" {
		fmt.Fprint(cmd.ErrOrStderr(), "Username: ")
		if username, err = readLine(in); err != nil {
			return fmt.Errorf("reading username: %w", err)
		}
	}
	token := loginToken
	if token == "" {
		fmt.Fprint(cmd.ErrOrStderr(), "Token: ")
		if token, err = readSecret(cmd, in); err != nil {
			return fmt.Errorf("reading token: %w", err)
		}
	}
	if username == "" || token == "" {
		return fmt.Errorf("username and token are required")
	}

	client := cliclient.New(serverURL,
		cliclient.WithBasicAuth(username, token),
		cliclient.WithTimeout(cfg.Server.Timeout),
	)
	me, err := client.CurrentUser(cmd.Context())
	if err != nil {
		if cliclient.IsUnauthorized(err) {
			return fmt.Errorf("login failed: invalid username or token")
		}
		return fmt.Errorf("login failed: %w", err)
	}

	if err := s.SaveCredentials(&store.Credentials{ServerURL: serverURL, Username: me.Username, Token: token}); err != nil {
		return err
	}

	session.client, session.user = client, me
	recordHistory(audit.ActionLogin, serverURL, nil)

	fmt.Fprintf(cmd.ErrOrStderr(), "Logged in to %s as %s\n", serverURL, me.Username)
	return nil
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// readSecret reads without echo from a terminal, or a plain line otherwise.
func readSecret(cmd *cobra.Command, r *bufio.Reader) (string, error) {
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}
	return readLine(r)
}

func runLogout(cmd *cobra.Command, args []string) error {
	s, err := store.New()
	if err != nil {
		return err
	}
	defer s.Close()

	creds, err := s.LoadCredentials()
	if err != nil {
		return err
	}
	if !creds.LoggedIn() {
		fmt.Fprintln(cmd.ErrOrStderr(), "Not logged in.")
		return nil
	}
	if err := s.ClearCredentials(); err != nil {
		return err
	}
	if err := audit.LogAction(s.DB(), creds.ServerURL, creds.Username, audit.ActionLogout, creds.ServerURL, nil); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Logged out of %s\n", creds.ServerURL)
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	me := session.user
	rc, err := runtimeconfig.New(session.client, cfg.Server.UIPath).Load(cmd.Context())
	if err != nil {
		return err
	}

	if jsonOutput() {
		return printJSON(cmd, struct {
			*cliclient.User
			Server   string `json:"server"`
			Provider string `json:"provider,omitempty"`
		}{me, session.client.BaseURL(), rc.Provider})
	}

	w := newTable(cmd)
	fmt.Fprintf(w, "Server:\t%s\n", session.client.BaseURL())
	if rc.Provider != "" {
		fmt.Fprintf(w, "Provider:\t%s\n", rc.Provider)
	}
	fmt.Fprintf(w, "Username:\t%s\n", me.Username)
	if me.DisplayName != "" {
		fmt.Fprintf(w, "Display name:\t%s\n", me.DisplayName)
	}
	fmt.Fprintf(w, "Admin:\t%v\n", me.IsAdmin)
	if groups := me.GroupNames(); len(groups) > 0 {
		fmt.Fprintf(w, "Groups:\t%s\n", strings.Join(groups, ", "))
	}
	if me.PasswordExpiration != nil {
		fmt.Fprintf(w, "Token expires:\t%s\n", me.PasswordExpiration.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}
