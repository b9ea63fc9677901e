package store

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/zalando/go-keyring"
	"gorm.io/gorm"
)

const keyringService = "mlperm"

// Credentials is what a login leaves behind.
type Credentials struct {
	ServerURL string
	Username  string
	Token     string
}

// LoggedIn reports whether the credentials can authenticate requests.
func (c *Credentials) LoggedIn() bool {
	return c.ServerURL != "" && c.Token != ""
}

// LoadCredentials reads the stored session. Missing data yields empty fields.
func (s *Store) LoadCredentials() (*Credentials, error) {
	var sess Session
	if err := s.db.First(&sess, 1).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &Credentials{}, nil
		}
		return nil, fmt.Errorf("reading session: %w", err)
	}

	creds := &Credentials{ServerURL: sess.ServerURL, Username: sess.Username, Token: sess.Token}
	if sess.TokenInKeyring {
		tok, err := keyring.Get(keyringService, sess.ServerURL)
		switch {
		case errors.Is(err, keyring.ErrNotFound):
			creds.Token = ""
		case err != nil:
			return nil, fmt.Errorf("reading token from keyring: %w", err)
		default:
			creds.Token = tok
		}
	}
	return creds, nil
}

// SaveCredentials stores the session. The token goes to the OS keyring when
// one is available and to the database otherwise.
func (s *Store) SaveCredentials(creds *Credentials) error {
	sess := Session{ID: 1, ServerURL: creds.ServerURL, Username: creds.Username}

	if s.useKeyring && creds.Token != "" {
		if err := keyring.Set(keyringService, creds.ServerURL, creds.Token); err != nil {
			slog.Debug("keyring unavailable, storing token in database", "error", err)
			sess.Token = creds.Token
		} else {
			sess.TokenInKeyring = true
		}
	} else {
		sess.Token = creds.Token
	}

	if err := s.db.Save(&sess).Error; err != nil {
		return fmt.Errorf("saving credentials: %w", err)
	}
	return nil
}

// ClearCredentials forgets the token but keeps the server URL.
func (s *Store) ClearCredentials() error {
	var sess Session
	if err := s.db.First(&sess, 1).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("reading session: %w", err)
	}
	if sess.TokenInKeyring {
		if err := keyring.Delete(keyringService, sess.ServerURL); err != nil && !errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("removing token from keyring: %w", err)
		}
	}
	sess.Token = ""
	sess.Username = ""
	sess.TokenInKeyring = false
	if err := s.db.Save(&sess).Error; err != nil {
		return fmt.Errorf("clearing credentials: %w", err)
	}
	return nil
}
