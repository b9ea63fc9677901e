// Package runtimeconfig loads the backend's UI runtime configuration once per
// session and shares it with every consumer.
package runtimeconfig

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/nebari-dev/mlperm/internal/cliclient"
	"github.com/nebari-dev/mlperm/internal/endpoints"
)

// DefaultUIPath is where the backend serves its UI assets.
const DefaultUIPath = "/oidc/ui"

// Config mirrors config.json served next to the UI.
type Config struct {
	BasePath      string `json:"basePath"`
	UIPath        string `json:"uiPath"`
	Provider      string `json:"provider"`
	Authenticated bool   `json:"authenticated"`
	// Fallback is set when the document could not be fetched and the values
	// were inferred from the server URL.
	Fallback bool `json:"-"`
}

// Fetcher issues the underlying request. *cliclient.Client satisfies it.
type Fetcher interface {
	Do(ctx context.Context, req cliclient.Request, result interface{}) (*cliclient.Response, error)
	BaseURL() string
}

// Loader fetches config.json at most once. The zero value is not usable;
// construct it with New.
type Loader struct {
	fetcher Fetcher
	uiPath  string
	logger  *slog.Logger

	group singleflight.Group

	mu     sync.RWMutex
	cached *Config
}

// New returns a Loader that reads <uiPath>/config.json through f.
func New(f Fetcher, uiPath string) *Loader {
	if uiPath == "" {
		uiPath = DefaultUIPath
	}
	return &Loader{
		fetcher: f,
		uiPath:  endpoints.RemoveTrailingSlashes(uiPath),
		logger:  slog.Default(),
	}
}

// Load returns the runtime config. Concurrent callers share a single fetch;
// once a result is available it is returned for the life of the Loader.
func (l *Loader) Load(ctx context.Context) (*Config, error) {
	l.mu.RLock()
	cached := l.cached
	l.mu.RUnlock()
	if cached != nil {
		return cached, nil
	}

	ch := l.group.DoChan("config", func() (interface{}, error) {
		l.mu.RLock()
		cached := l.cached
		l.mu.RUnlock()
		if cached != nil {
			return cached, nil
		}

		// Detached so one caller's cancellation does not fail the others.
		cfg := l.fetch(context.WithoutCancel(ctx))

		l.mu.Lock()
		l.cached = cfg
		l.mu.Unlock()
		return cfg, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Config), nil
	}
}

func (l *Loader) fetch(ctx context.Context) *Config {
	var cfg Config
	resp, err := l.fetcher.Do(ctx, cliclient.Request{
		Method: http.MethodGet,
		Path:   l.uiPath + "/config.json",
	}, &cfg)
	if err != nil {
		l.logger.Warn("runtime config unavailable, inferring from server URL", "error", err)
		return Infer(l.fetcher.BaseURL())
	}
	// A login redirect or an SPA index page answers 200 with HTML.
	if resp == nil || !resp.JSON || strings.TrimSpace(resp.Text) == "" {
		l.logger.Warn("runtime config is not JSON, inferring from server URL",
			"content_type", contentType(resp))
		return Infer(l.fetcher.BaseURL())
	}
	cfg.BasePath = endpoints.RemoveTrailingSlashes(cfg.BasePath)
	if cfg.UIPath == "" {
		cfg.UIPath = cfg.BasePath + DefaultUIPath
	}
	return &cfg
}

func contentType(resp *cliclient.Response) string {
	if resp == nil {
		return ""
	}
	return resp.Header.Get("Content-Type")
}

// Infer derives a config from a server URL when config.json is unavailable.
// The base path is the part before "/oidc/ui" when present, else the URL path
// without trailing slashes.
func Infer(serverURL string) *Config {
	path := ""
	if u, err := url.Parse(serverURL); err == nil {
		path = u.Path
	}
	base := path
	if i := strings.Index(path, DefaultUIPath); i >= 0 {
		base = path[:i]
	}
	base = endpoints.RemoveTrailingSlashes(base)
	return &Config{
		BasePath:      base,
		UIPath:        base + DefaultUIPath,
		Authenticated: false,
		Fallback:      true,
	}
}

func (c *Config) String() string {
	return fmt.Sprintf("basePath=%q uiPath=%q provider=%q authenticated=%v", c.BasePath, c.UIPath, c.Provider, c.Authenticated)
}
