package store

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/zalando/go-keyring"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	keyring.MockInit()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCredentialsRoundTrip(t *testing.T) {
	s := testStore(t)

	creds, err := s.LoadCredentials()
	if err != nil {
		t.Fatalf("LoadCredentials: %v", err)
	}
	if creds.LoggedIn() {
		t.Fatal("expected empty credentials on a fresh store")
	}

	in := &Credentials{ServerURL: "https://mlflow.example.com", Username: "alice", Token: "secret"}
	if err := s.SaveCredentials(in); err != nil {
		t.Fatalf("SaveCredentials: %v", err)
	}

	got, err := s.LoadCredentials()
	if err != nil {
		t.Fatalf("LoadCredentials: %v", err)
	}
	if *got != *in {
		t.Fatalf("got %+v, want %+v", got, in)
	}

	var sess Session
	s.DB().First(&sess, 1)
	if !sess.TokenInKeyring || sess.Token != "" {
		t.Fatalf("token should live in the keyring, row = %+v", sess)
	}
}

func TestCredentialsKeyringFallback(t *testing.T) {
	s := testStore(t)
	keyring.MockInitWithError(errors.New("no secret service"))
	t.Cleanup(keyring.MockInit)

	in := &Credentials{ServerURL: "https://mlflow.example.com", Username: "bob", Token: "tok"}
	if err := s.SaveCredentials(in); err != nil {
		t.Fatalf("SaveCredentials: %v", err)
	}

	var sess Session
	s.DB().First(&sess, 1)
	if sess.TokenInKeyring || sess.Token != "tok" {
		t.Fatalf("expected token in database, row = %+v", sess)
	}

	got, err := s.LoadCredentials()
	if err != nil {
		t.Fatalf("LoadCredentials: %v", err)
	}
	if got.Token != "tok" {
		t.Fatalf("token = %q, want tok", got.Token)
	}
}

func TestClearCredentialsKeepsServer(t *testing.T) {
	s := testStore(t)

	s.SaveCredentials(&Credentials{ServerURL: "https://a.example.com", Username: "alice", Token: "t"})
	if err := s.ClearCredentials(); err != nil {
		t.Fatalf("ClearCredentials: %v", err)
	}

	got, _ := s.LoadCredentials()
	if got.LoggedIn() || got.Username != "" {
		t.Fatalf("expected logged out, got %+v", got)
	}
	if got.ServerURL != "https://a.example.com" {
		t.Fatalf("server url = %q", got.ServerURL)
	}
	if _, err := keyring.Get(keyringService, "https://a.example.com"); !errors.Is(err, keyring.ErrNotFound) {
		t.Fatalf("keyring entry should be gone, err = %v", err)
	}
}

func TestDarkModeWritesBothKeys(t *testing.T) {
	s := testStore(t)

	dark, err := s.DarkMode()
	if err != nil || dark {
		t.Fatalf("default DarkMode = %v, %v", dark, err)
	}

	if err := s.SetDarkMode(true); err != nil {
		t.Fatalf("SetDarkMode: %v", err)
	}
	if v, _, _ := s.Preference(DarkModeKey); v != "true" {
		t.Fatalf("%s = %q", DarkModeKey, v)
	}
	if v, _, _ := s.Preference(DarkModeShadowKey); v != "dark" {
		t.Fatalf("%s = %q", DarkModeShadowKey, v)
	}

	s.SetDarkMode(false)
	if dark, _ := s.DarkMode(); dark {
		t.Fatal("expected light mode after toggling back")
	}
	if v, _, _ := s.Preference(DarkModeShadowKey); v != "light" {
		t.Fatalf("%s = %q", DarkModeShadowKey, v)
	}
}

func TestDarkModeFallsBackToShadow(t *testing.T) {
	s := testStore(t)

	s.SetPreference(DarkModeShadowKey, "dark")
	if dark, _ := s.DarkMode(); !dark {
		t.Fatal("expected shadow key to decide when primary is missing")
	}

	s.SetPreference(DarkModeKey, "garbage")
	if dark, _ := s.DarkMode(); !dark {
		t.Fatal("expected shadow key to decide when primary is unreadable")
	}
}

func TestDefaultDataDirEnv(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	t.Setenv("MLPERM_DATA_DIR", dir)

	got, err := DefaultDataDir()
	if err != nil {
		t.Fatalf("DefaultDataDir: %v", err)
	}
	if got != dir {
		t.Fatalf("got %q, want %q", got, dir)
	}
}

func TestLoadCredentialsMissingRow(t *testing.T) {
	s := testStore(t)
	if err := s.DB().Delete(&Session{}, 1).Error; err != nil {
		t.Fatal(err)
	}

	creds, err := s.LoadCredentials()
	if err != nil {
		t.Fatalf("missing session row should not fail: %v", err)
	}
	if creds.LoggedIn() {
		t.Fatalf("expected empty credentials, got %+v", creds)
	}
	if err := s.ClearCredentials(); err != nil {
		t.Fatalf("ClearCredentials without a row: %v", err)
	}
}

func TestLoadCredentialsReportsDatabaseErrors(t *testing.T) {
	s := testStore(t)
	if err := s.DB().Migrator().DropTable(&Session{}); err != nil {
		t.Fatal(err)
	}

	if _, err := s.LoadCredentials(); err == nil {
		t.Fatal("expected an error when the session table is unreadable")
	}
	if err := s.ClearCredentials(); err == nil {
		t.Fatal("expected ClearCredentials to report the database error")
	}
}
