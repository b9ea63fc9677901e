package runtimeconfig

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nebari-dev/mlperm/internal/cliclient"
)

type fakeFetcher struct {
	base    string
	calls   atomic.Int32
	release chan struct{}
	body    string
	err     error
	path    atomic.Value
}

func (f *fakeFetcher) BaseURL() string { return f.base }

func (f *fakeFetcher) Do(ctx context.Context, req cliclient.Request, result interface{}) (*cliclient.Response, error) {
	f.calls.Add(1)
	f.path.Store(req.Path)
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return nil, f.err
	}
	return &cliclient.Response{StatusCode: 200, JSON: true, Text: f.body}, json.Unmarshal([]byte(f.body), result)
}

func TestLoadSingleFlight(t *testing.T) {
	f := &fakeFetcher{
		base:    "https://mlflow.example.com",
		release: make(chan struct{}),
		body:    `{"basePath":"/mlflow/","uiPath":"/mlflow/oidc/ui","provider":"Keycloak","authenticated":true}`,
	}
	l := New(f, "")

	const callers = 20
	var wg sync.WaitGroup
	results := make([]*Config, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = l.Load(context.Background())
		}(i)
	}

	// Give every caller time to join the in-flight fetch.
	time.Sleep(50 * time.Millisecond)
	close(f.release)
	wg.Wait()

	if n := f.calls.Load(); n != 1 {
		t.Fatalf("underlying fetches = %d, want 1", n)
	}
	for i := range results {
		if errs[i] != nil {
			t.Fatalf("caller %d: %v", i, errs[i])
		}
		if results[i] != results[0] {
			t.Fatalf("caller %d received a different config instance", i)
		}
	}
	cfg := results[0]
	if cfg.BasePath != "/mlflow" || cfg.Provider != "Keycloak" || !cfg.Authenticated || cfg.Fallback {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if p := f.path.Load().(string); p != "/oidc/ui/config.json" {
		t.Errorf("fetched path = %q", p)
	}

	// Later callers hit the cache.
	if _, err := l.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	if n := f.calls.Load(); n != 1 {
		t.Errorf("fetches after cache = %d, want 1", n)
	}
}

func TestLoadFallback(t *testing.T) {
	f := &fakeFetcher{
		base: "https://host.example.com/mlflow/oidc/ui/",
		err:  &cliclient.APIError{StatusCode: 404},
	}
	l := New(f, "/custom/ui/")

	cfg, err := l.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Fallback || cfg.Authenticated {
		t.Errorf("expected unauthenticated fallback, got %+v", cfg)
	}
	if cfg.BasePath != "/mlflow" || cfg.UIPath != "/mlflow/oidc/ui" {
		t.Errorf("unexpected inferred paths: %+v", cfg)
	}
	if p := f.path.Load().(string); p != "/custom/ui/config.json" {
		t.Errorf("fetched path = %q", p)
	}

	// The fallback is memoized as well.
	if _, err := l.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	if n := f.calls.Load(); n != 1 {
		t.Errorf("fetches = %d, want 1", n)
	}
}

func TestLoadCallerCancellation(t *testing.T) {
	f := &fakeFetcher{
		base:    "https://h",
		release: make(chan struct{}),
		body:    `{"basePath":"","provider":"p","authenticated":true}`,
	}
	l := New(f, "")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := l.Load(ctx)
		done <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("canceled caller error = %v", err)
	}

	close(f.release)
	cfg, err := l.Load(context.Background())
	if err != nil {
		t.Fatalf("Load after cancel: %v", err)
	}
	if cfg.Provider != "p" || cfg.UIPath != "/oidc/ui" {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if n := f.calls.Load(); n != 1 {
		t.Errorf("fetches = %d, want 1", n)
	}
}

func TestInfer(t *testing.T) {
	tests := []struct {
		url      string
		basePath string
	}{
		{"https://h", ""},
		{"https://h/", ""},
		{"https://h/mlflow///", "/mlflow"},
		{"https://h/a/b/oidc/ui/users", "/a/b"},
		{"://bad", ""},
	}
	for _, tt := range tests {
		cfg := Infer(tt.url)
		if cfg.BasePath != tt.basePath {
			t.Errorf("Infer(%q).BasePath = %q, want %q", tt.url, cfg.BasePath, tt.basePath)
		}
		if cfg.UIPath != tt.basePath+DefaultUIPath {
			t.Errorf("Infer(%q).UIPath = %q", tt.url, cfg.UIPath)
		}
		if cfg.Authenticated {
			t.Errorf("Infer(%q) should not be authenticated", tt.url)
		}
	}
}

func TestLoadFallsBackOnHTMLPage(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path != "/mlflow/oidc/ui/config.json" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("<html><body>Sign in</body></html>"))
	}))
	defer srv.Close()

	l := New(cliclient.New(srv.URL+"/mlflow"), "")
	cfg, err := l.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Fallback || cfg.Authenticated {
		t.Errorf("HTML answer should yield an unauthenticated fallback, got %+v", cfg)
	}
	if cfg.BasePath != "/mlflow" || cfg.UIPath != "/mlflow/oidc/ui" {
		t.Errorf("unexpected inferred paths: %+v", cfg)
	}

	if _, err := l.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("requests = %d, want 1", n)
	}
}

func TestLoadFallsBackOnEmptyJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg, err := New(cliclient.New(srv.URL+"/tracking/"), "").Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Fallback || cfg.BasePath != "/tracking" {
		t.Errorf("empty body should fall back, got %+v", cfg)
	}
}
