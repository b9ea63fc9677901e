package cliclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"
)

func TestDoDecodesJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Write([]byte(`{"username":"alice","is_admin":true}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	var user User
	resp, err := c.Get(context.Background(), "/u", nil, &user)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !resp.JSON {
		t.Error("expected JSON response")
	}
	if user.Username != "alice" || !user.IsAdmin {
		t.Errorf("unexpected user: %+v", user)
	}
}

func TestDoReturnsTextForNonJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte(`{"looks":"like json"}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	var out map[string]string
	resp, err := c.Get(context.Background(), "/", nil, &out)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if resp.JSON {
		t.Error("expected non-JSON response")
	}
	if out != nil {
		t.Errorf("result should be untouched, got %v", out)
	}
	if resp.Text != `{"looks":"like json"}` {
		t.Errorf("Text = %q", resp.Text)
	}
}

func TestDoNon2xxReturnsAPIError(t *testing.T) {
	for _, code := range []int{http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound, http.StatusInternalServerError, http.StatusMultipleChoices} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(code)
			w.Write([]byte("boom"))
		}))

		c := New(srv.URL, WithHTTPClient(&http.Client{
			CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse },
		}))
		_, err := c.Get(context.Background(), "/", nil, nil)
		srv.Close()

		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("status %d: expected *APIError, got %v", code, err)
		}
		if apiErr.StatusCode != code || apiErr.Body != "boom" {
			t.Errorf("unexpected error: %+v", apiErr)
		}
		if !strings.Contains(err.Error(), strconv.Itoa(code)) {
			t.Errorf("error %q does not contain status %d", err.Error(), code)
		}
	}
}

func TestErrorPredicates(t *testing.T) {
	tests := []struct {
		code  int
		check func(error) bool
	}{
		{404, IsNotFound},
		{403, IsForbidden},
		{401, IsUnauthorized},
	}
	for _, tt := range tests {
		err := error(&APIError{StatusCode: tt.code})
		if !tt.check(err) {
			t.Errorf("predicate for %d returned false", tt.code)
		}
		wrapped := errors.Join(errors.New("ctx"), err)
		if !tt.check(wrapped) {
			t.Errorf("predicate for %d returned false on wrapped error", tt.code)
		}
		if tt.check(&APIError{StatusCode: 500}) {
			t.Errorf("predicate for %d matched 500", tt.code)
		}
	}
	if IsNotFound(errors.New("plain")) {
		t.Error("plain error should not be NotFound")
	}
}

func TestDoSetsHeadersAndAuth(t *testing.T) {
	var got *http.Request
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(srv.URL+"/mlflow/", WithBasicAuth("alice", "tok"))
	_, err := c.Do(context.Background(), Request{
		Method: http.MethodPost,
		Path:   "/api/x",
		Query:  url.Values{"q": []string{"a b"}},
		Header: http.Header{"Accept": []string{"text/plain"}},
		Body:   map[string]string{"k": "v"},
	}, nil)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}

	if got.URL.Path != "/mlflow/api/x" {
		t.Errorf("path = %q", got.URL.Path)
	}
	if got.URL.Query().Get("q") != "a b" {
		t.Errorf("query = %q", got.URL.RawQuery)
	}
	if ct := got.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	if a := got.Header.Get("Accept"); a != "text/plain" {
		t.Errorf("Accept override lost: %q", a)
	}
	if got.Header.Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID")
	}
	user, pass, ok := got.BasicAuth()
	if !ok || user != "alice" || pass != "tok" {
		t.Errorf("basic auth = %q/%q/%v", user, pass, ok)
	}
	if body != `{"k":"v"}` {
		t.Errorf("body = %q", body)
	}
}

func TestDoSendsCookies(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.SetCookie(w, &http.Cookie{Name: "session", Value: "s1", Path: "/"})
			return
		}
		if ck, err := r.Cookie("session"); err != nil || ck.Value != "s1" {
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
	defer srv.Close()

	c := New(srv.URL)
	if _, err := c.Get(context.Background(), "/login", nil, nil); err != nil {
		t.Fatalf("first request: %v", err)
	}
	if _, err := c.Get(context.Background(), "/me", nil, nil); err != nil {
		t.Fatalf("second request should carry session cookie: %v", err)
	}
}

func TestDoCanceled(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	c := New(srv.URL)
	_, err := c.Get(ctx, "/slow", nil, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsCanceled(err) {
		t.Errorf("expected canceled error, got %v", err)
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		t.Error("cancellation must not surface as an API error")
	}
}

func TestWithHTTPClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/login" {
			http.SetCookie(w, &http.Cookie{Name: "session", Value: "s1", Path: "/"})
			return
		}
		if _, err := r.Cookie("session"); err != nil {
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
	defer srv.Close()

	if _, err := New(srv.URL, WithHTTPClient(nil)).Get(context.Background(), "/login", nil, nil); err != nil {
		t.Fatalf("nil http.Client should fall back to the default: %v", err)
	}

	hc := &http.Client{Timeout: 5 * time.Second}
	c := New(srv.URL, WithHTTPClient(hc))
	if hc.Jar != nil {
		t.Error("caller's http.Client must not be modified")
	}
	if _, err := c.Get(context.Background(), "/login", nil, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Get(context.Background(), "/me", nil, nil); err != nil {
		t.Fatalf("copied client should still keep cookies: %v", err)
	}
}

func TestListWebhooksStopsOnRepeatedPageToken(t *testing.T) {
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"webhooks":[{"webhook_id":"w` + strconv.Itoa(requests) + `"}],"next_page_token":"again"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).ListWebhooks(context.Background())
	if err == nil || !strings.Contains(err.Error(), `repeated page token "again"`) {
		t.Fatalf("ListWebhooks error = %v", err)
	}
	if requests != 2 {
		t.Errorf("requests = %d, want 2", requests)
	}
}
