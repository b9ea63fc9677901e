// Package clienttest runs an in-memory permissions backend for tests.
package clienttest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nebari-dev/mlperm/internal/cliclient"
	"github.com/nebari-dev/mlperm/internal/endpoints"
)

type grantKey struct {
	principal endpoints.PrincipalKind
	name      string
	kind      endpoints.ResourceKind
	id        string
}

type patternKey struct {
	principal endpoints.PrincipalKind
	name      string
	kind      endpoints.ResourceKind
}

type failure struct {
	method string
	path   string
	status int
}

// Server is a fake permissions backend. All methods are safe for concurrent use.
type Server struct {
	*httptest.Server

	mu            sync.Mutex
	current       string
	users         map[string]cliclient.User
	groups        map[string][]string
	resources     map[endpoints.ResourceKind][]cliclient.Resource
	grants        map[grantKey]cliclient.Level
	patterns      map[patternKey][]cliclient.PatternPermission
	nextPatternID int
	webhooks      []cliclient.Webhook
	pageSize      int
	deletedExps   []cliclient.DeletedExperiment
	deletedRuns   []cliclient.DeletedRun
	tokens        map[string]string
	requests      []string
	failures      []failure
	configHits    int
	config        gin.H
}

// New starts a Server and registers its shutdown with t.
func New(t testing.TB) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := &Server{
		users:     make(map[string]cliclient.User),
		groups:    make(map[string][]string),
		resources: make(map[endpoints.ResourceKind][]cliclient.Resource),
		grants:    make(map[grantKey]cliclient.Level),
		patterns:  make(map[patternKey][]cliclient.PatternPermission),
		tokens:    make(map[string]string),
		pageSize:  2,
	}

	r := gin.New()
	r.UseRawPath = true
	r.UnescapePathValues = false
	r.GET("/oidc/ui/config.json", s.handleConfig)
	r.Any("/api/2.0/mlflow/*path", s.handleAPI)

	s.Server = httptest.NewServer(r)
	s.config = gin.H{"basePath": "", "uiPath": "/oidc/ui", "provider": "Login with Test", "authenticated": true}
	t.Cleanup(s.Close)
	return s
}

// AddUser registers a user. The first admin added becomes the current user
// unless SetCurrentUser is called.
func (s *Server) AddUser(u cliclient.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.Username] = u
	for _, g := range u.Groups {
		s.groups[g.Name] = append(s.groups[g.Name], u.Username)
	}
	if s.current == "" {
		s.current = u.Username
	}
}

// SetCurrentUser selects who /users/current reports when the request
// carries no basic auth.
func (s *Server) SetCurrentUser(username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = username
}

// SetToken makes token valid for username.
func (s *Server) SetToken(username, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[username] = token
}

// AddResource registers a resource of kind.
func (s *Server) AddResource(kind endpoints.ResourceKind, r cliclient.Resource) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resources[kind] = append(s.resources[kind], r)
}

// SetGrant stores a grant directly.
func (s *Server) SetGrant(p cliclient.Principal, kind endpoints.ResourceKind, id string, level cliclient.Level) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grants[grantKey{p.Kind, p.Name, kind, id}] = level
}

// Grant returns a stored grant.
func (s *Server) Grant(p cliclient.Principal, kind endpoints.ResourceKind, id string) (cliclient.Level, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.grants[grantKey{p.Kind, p.Name, kind, id}]
	return l, ok
}

// AddPattern stores a pattern permission and returns its id.
func (s *Server) AddPattern(p cliclient.Principal, kind endpoints.ResourceKind, req cliclient.PatternRequest) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addPatternLocked(patternKey{p.Kind, p.Name, kind}, req).ID
}

// Patterns returns the patterns stored for p and kind.
func (s *Server) Patterns(p cliclient.Principal, kind endpoints.ResourceKind) []cliclient.PatternPermission {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]cliclient.PatternPermission(nil), s.patterns[patternKey{p.Kind, p.Name, kind}]...)
}

// AddWebhook stores a webhook.
func (s *Server) AddWebhook(w cliclient.Webhook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.webhooks = append(s.webhooks, w)
}

// Webhooks returns the stored webhooks.
func (s *Server) Webhooks() []cliclient.Webhook {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]cliclient.Webhook(nil), s.webhooks...)
}

// AddDeletedExperiment puts an experiment in the trash.
func (s *Server) AddDeletedExperiment(e cliclient.DeletedExperiment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletedExps = append(s.deletedExps, e)
}

// AddDeletedRun puts a run in the trash.
func (s *Server) AddDeletedRun(r cliclient.DeletedRun) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletedRuns = append(s.deletedRuns, r)
}

// FailNext makes the next request matching method and escaped path fail
// with status.
func (s *Server) FailNext(method, path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, failure{method, path, status})
}

// Requests returns every request seen so far as "METHOD escaped-path".
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// ConfigHits returns how many times config.json was served.
func (s *Server) ConfigHits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.configHits
}

func (s *Server) handleConfig(c *gin.Context) {
	s.mu.Lock()
	s.configHits++
	cfg := s.config
	s.mu.Unlock()
	c.JSON(http.StatusOK, cfg)
}

func (s *Server) handleAPI(c *gin.Context) {
	raw := c.Request.URL.EscapedPath()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = append(s.requests, c.Request.Method+" "+raw)
	for i, f := range s.failures {
		if f.method == c.Request.Method && f.path == raw {
			s.failures = append(s.failures[:i], s.failures[i+1:]...)
			c.String(f.status, "injected failure")
			return
		}
	}

	if !s.authorizedLocked(c) {
		c.String(http.StatusUnauthorized, "unauthorized")
		return
	}

	segs, err := splitPath(strings.TrimPrefix(raw, endpoints.APIPrefix))
	if err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}
	if len(segs) == 0 {
		c.Status(http.StatusNotFound)
		return
	}

	switch segs[0] {
	case "webhooks":
		s.webhooksLocked(c, segs[1:])
	case "permissions":
		s.permissionsLocked(c, segs[1:])
	default:
		c.Status(http.StatusNotFound)
	}
}

func (s *Server) authorizedLocked(c *gin.Context) bool {
	user, pass, ok := c.Request.BasicAuth()
	if !ok {
		return true
	}
	want, known := s.tokens[user]
	return known && want == pass
}

func (s *Server) callerLocked(c *gin.Context) (cliclient.User, bool) {
	name := s.current
	if user, _, ok := c.Request.BasicAuth(); ok {
		name = user
	}
	u, ok := s.users[name]
	return u, ok
}

func splitPath(p string) ([]string, error) {
	var segs []string
	for _, part := range strings.Split(strings.Trim(p, "/"), "/") {
		if part == "" {
			continue
		}
		un, err := url.PathUnescape(part)
		if err != nil {
			return nil, err
		}
		segs = append(segs, un)
	}
	return segs, nil
}

// parseResource consumes a resource segment from segs.
func parseResource(segs []string) (kind endpoints.ResourceKind, pattern bool, rest []string, ok bool) {
	if len(segs) == 0 {
		return 0, false, nil, false
	}
	head, n := segs[0], 1
	if head == "gateways" && len(segs) > 1 {
		head, n = "gateways/"+segs[1], 2
	}
	if strings.HasSuffix(head, "-patterns") {
		pattern = true
		head = strings.TrimSuffix(head, "-patterns")
	}
	for _, k := range endpoints.ResourceKinds {
		if k.Segment() == head {
			return k, pattern, segs[n:], true
		}
	}
	return 0, false, nil, false
}

func (s *Server) permissionsLocked(c *gin.Context, segs []string) {
	method := c.Request.Method

	switch {
	case len(segs) == 2 && segs[0] == "users" && segs[1] == "current" && method == http.MethodGet:
		u, ok := s.callerLocked(c)
		if !ok {
			c.String(http.StatusUnauthorized, "no session")
			return
		}
		c.JSON(http.StatusOK, u)
		return
	case len(segs) == 2 && segs[0] == "users" && segs[1] == "access-token" && method == http.MethodPost:
		s.accessTokenLocked(c)
		return
	case len(segs) == 1 && segs[0] == "users" && method == http.MethodGet:
		c.JSON(http.StatusOK, s.userListLocked(false))
		return
	case len(segs) == 2 && segs[0] == "users" && method == http.MethodGet:
		u, ok := s.users[segs[1]]
		if !ok {
			c.String(http.StatusNotFound, "user not found")
			return
		}
		c.JSON(http.StatusOK, u)
		return
	case len(segs) >= 1 && segs[0] == "service-accounts":
		s.serviceAccountsLocked(c, segs[1:])
		return
	case len(segs) == 1 && segs[0] == "groups" && method == http.MethodGet:
		names := make([]string, 0, len(s.groups))
		for g := range s.groups {
			names = append(names, g)
		}
		sort.Strings(names)
		groups := make([]cliclient.Group, len(names))
		for i, n := range names {
			groups[i] = cliclient.Group{Name: n}
		}
		c.JSON(http.StatusOK, groups)
		return
	case len(segs) == 3 && segs[0] == "groups" && segs[2] == "users" && method == http.MethodGet:
		members, ok := s.groups[segs[1]]
		if !ok {
			c.String(http.StatusNotFound, "group not found")
			return
		}
		users := make([]cliclient.User, 0, len(members))
		for _, m := range members {
			users = append(users, s.users[m])
		}
		c.JSON(http.StatusOK, users)
		return
	case len(segs) >= 1 && segs[0] == "trash":
		s.trashLocked(c, segs[1:])
		return
	case len(segs) >= 3 && (segs[0] == "users" || segs[0] == "groups"):
		pk := endpoints.User
		if segs[0] == "groups" {
			pk = endpoints.Group
		}
		kind, pattern, rest, ok := parseResource(segs[2:])
		if !ok {
			c.Status(http.StatusNotFound)
			return
		}
		if pattern {
			s.patternsLocked(c, patternKey{pk, segs[1], kind}, rest)
		} else {
			s.grantsLocked(c, pk, segs[1], kind, rest)
		}
		return
	}

	kind, pattern, rest, ok := parseResource(segs)
	if !ok || pattern || method != http.MethodGet {
		c.Status(http.StatusNotFound)
		return
	}
	switch len(rest) {
	case 0:
		res := s.resources[kind]
		if res == nil {
			res = []cliclient.Resource{}
		}
		c.JSON(http.StatusOK, res)
	case 2:
		pk := endpoints.User
		switch rest[1] {
		case "users":
		case "groups":
			pk = endpoints.Group
		default:
			c.Status(http.StatusNotFound)
			return
		}
		out := []cliclient.PrincipalGrant{}
		for k, lvl := range s.grants {
			if k.kind == kind && k.id == rest[0] && k.principal == pk {
				out = append(out, cliclient.PrincipalGrant{Name: k.name, Permission: lvl, Kind: pk.String()})
			}
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
		c.JSON(http.StatusOK, out)
	default:
		c.Status(http.StatusNotFound)
	}
}

func (s *Server) userListLocked(serviceAccounts bool) []cliclient.User {
	out := []cliclient.User{}
	for _, u := range s.users {
		if u.IsServiceAccount == serviceAccounts {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out
}

func (s *Server) accessTokenLocked(c *gin.Context) {
	var req cliclient.AccessTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.String(http.StatusBadRequest, err.Error())
		return
	}
	username := req.Username
	if username == "" {
		u, ok := s.callerLocked(c)
		if !ok {
			c.String(http.StatusUnauthorized, "no session")
			return
		}
		username = u.Username
	}
	if _, ok := s.users[username]; !ok {
		c.String(http.StatusNotFound, "user not found")
		return
	}
	token := fmt.Sprintf("tok-%s-%d", username, len(s.tokens)+1)
	s.tokens[username] = token
	c.JSON(http.StatusOK, cliclient.AccessToken{Token: token, Username: username, Expiration: req.Expiration})
}

func (s *Server) serviceAccountsLocked(c *gin.Context, segs []string) {
	switch {
	case len(segs) == 0 && c.Request.Method == http.MethodGet:
		c.JSON(http.StatusOK, s.userListLocked(true))
	case len(segs) == 0 && c.Request.Method == http.MethodPost:
		var req cliclient.CreateServiceAccountRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.String(http.StatusBadRequest, err.Error())
			return
		}
		if _, exists := s.users[req.Username]; exists {
			c.String(http.StatusConflict, "user exists")
			return
		}
		u := cliclient.User{Username: req.Username, DisplayName: req.DisplayName, IsAdmin: req.IsAdmin, IsServiceAccount: true}
		s.users[u.Username] = u
		c.JSON(http.StatusCreated, u)
	case len(segs) == 1 && c.Request.Method == http.MethodDelete:
		u, ok := s.users[segs[0]]
		if !ok || !u.IsServiceAccount {
			c.String(http.StatusNotFound, "service account not found")
			return
		}
		delete(s.users, segs[0])
		c.Status(http.StatusNoContent)
	default:
		c.Status(http.StatusNotFound)
	}
}

func (s *Server) grantsLocked(c *gin.Context, pk endpoints.PrincipalKind, name string, kind endpoints.ResourceKind, rest []string) {
	if len(rest) == 0 {
		if c.Request.Method != http.MethodGet {
			c.Status(http.StatusMethodNotAllowed)
			return
		}
		out := []cliclient.Grant{}
		for k, lvl := range s.grants {
			if k.principal == pk && k.name == name && k.kind == kind {
				g := cliclient.Grant{Name: k.id, Permission: lvl, Kind: pk.String()}
				if kind == endpoints.Experiment {
					g.ID = k.id
					g.Name = s.resourceNameLocked(kind, k.id)
				}
				out = append(out, g)
			}
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
		c.JSON(http.StatusOK, out)
		return
	}
	if len(rest) != 1 {
		c.Status(http.StatusNotFound)
		return
	}

	key := grantKey{pk, name, kind, rest[0]}
	switch c.Request.Method {
	case http.MethodGet:
		lvl, ok := s.grants[key]
		if !ok {
			c.String(http.StatusNotFound, "grant not found")
			return
		}
		c.JSON(http.StatusOK, cliclient.Grant{ID: key.id, Name: s.resourceNameLocked(kind, key.id), Permission: lvl, Kind: pk.String()})
	case http.MethodPost, http.MethodPatch:
		var req struct {
			Permission cliclient.Level `json:"permission"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || req.Permission == "" {
			c.String(http.StatusBadRequest, "permission required")
			return
		}
		_, exists := s.grants[key]
		if c.Request.Method == http.MethodPost && exists {
			c.String(http.StatusConflict, "grant exists")
			return
		}
		if c.Request.Method == http.MethodPatch && !exists {
			c.String(http.StatusNotFound, "grant not found")
			return
		}
		s.grants[key] = req.Permission
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	case http.MethodDelete:
		if _, ok := s.grants[key]; !ok {
			c.String(http.StatusNotFound, "grant not found")
			return
		}
		delete(s.grants, key)
		c.Status(http.StatusNoContent)
	default:
		c.Status(http.StatusMethodNotAllowed)
	}
}

func (s *Server) resourceNameLocked(kind endpoints.ResourceKind, id string) string {
	for _, r := range s.resources[kind] {
		if r.Key() == id {
			return r.Name
		}
	}
	return id
}

func (s *Server) addPatternLocked(key patternKey, req cliclient.PatternRequest) cliclient.PatternPermission {
	s.nextPatternID++
	p := cliclient.PatternPermission{ID: s.nextPatternID, Regex: req.Regex, Priority: req.Priority, Permission: req.Permission}
	s.patterns[key] = append(s.patterns[key], p)
	return p
}

func (s *Server) patternsLocked(c *gin.Context, key patternKey, rest []string) {
	if len(rest) == 0 {
		switch c.Request.Method {
		case http.MethodGet:
			out := append([]cliclient.PatternPermission{}, s.patterns[key]...)
			sort.SliceStable(out, func(i, j int) bool { return out[i].Priority < out[j].Priority })
			c.JSON(http.StatusOK, out)
		case http.MethodPost:
			var req cliclient.PatternRequest
			if err := c.ShouldBindJSON(&req); err != nil || req.Regex == "" {
				c.String(http.StatusBadRequest, "regex required")
				return
			}
			c.JSON(http.StatusCreated, s.addPatternLocked(key, req))
		default:
			c.Status(http.StatusMethodNotAllowed)
		}
		return
	}

	id, err := strconv.Atoi(rest[0])
	if err != nil || len(rest) != 1 {
		c.Status(http.StatusNotFound)
		return
	}
	list := s.patterns[key]
	idx := -1
	for i, p := range list {
		if p.ID == id {
			idx = i
		}
	}
	if idx < 0 {
		c.String(http.StatusNotFound, "pattern not found")
		return
	}

	switch c.Request.Method {
	case http.MethodPatch:
		var req cliclient.PatternRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.String(http.StatusBadRequest, err.Error())
			return
		}
		list[idx] = cliclient.PatternPermission{ID: id, Regex: req.Regex, Priority: req.Priority, Permission: req.Permission}
		c.JSON(http.StatusOK, list[idx])
	case http.MethodDelete:
		s.patterns[key] = append(list[:idx], list[idx+1:]...)
		c.Status(http.StatusNoContent)
	default:
		c.Status(http.StatusMethodNotAllowed)
	}
}

func (s *Server) webhooksLocked(c *gin.Context, segs []string) {
	method := c.Request.Method
	switch {
	case len(segs) == 0 && method == http.MethodGet:
		start := 0
		if tok := c.Query("page_token"); tok != "" {
			start, _ = strconv.Atoi(tok)
		}
		end := start + s.pageSize
		if end > len(s.webhooks) {
			end = len(s.webhooks)
		}
		resp := gin.H{"webhooks": append([]cliclient.Webhook{}, s.webhooks[start:end]...)}
		if end < len(s.webhooks) {
			resp["next_page_token"] = strconv.Itoa(end)
		}
		c.JSON(http.StatusOK, resp)
	case len(segs) == 0 && method == http.MethodPost:
		var req cliclient.CreateWebhookRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.String(http.StatusBadRequest, err.Error())
			return
		}
		status := req.Status
		if status == "" {
			status = cliclient.WebhookActive
		}
		now := time.Now().UnixMilli()
		w := cliclient.Webhook{
			ID:                   fmt.Sprintf("wh-%d", len(s.webhooks)+1),
			Name:                 req.Name,
			Description:          req.Description,
			URL:                  req.URL,
			Events:               req.Events,
			Status:               status,
			CreationTimestamp:    now,
			LastUpdatedTimestamp: now,
		}
		s.webhooks = append(s.webhooks, w)
		c.JSON(http.StatusOK, gin.H{"webhook": w})
	case len(segs) >= 1:
		idx := -1
		for i, w := range s.webhooks {
			if w.ID == segs[0] {
				idx = i
			}
		}
		if idx < 0 {
			c.String(http.StatusNotFound, "webhook not found")
			return
		}
		switch {
		case len(segs) == 2 && segs[1] == "test" && method == http.MethodPost:
			c.JSON(http.StatusOK, gin.H{"result": cliclient.WebhookTestResult{Success: true, ResponseStatus: 200, ResponseBody: "ok"}})
		case len(segs) == 1 && method == http.MethodGet:
			c.JSON(http.StatusOK, gin.H{"webhook": s.webhooks[idx]})
		case len(segs) == 1 && method == http.MethodPatch:
			var req cliclient.UpdateWebhookRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				c.String(http.StatusBadRequest, err.Error())
				return
			}
			w := &s.webhooks[idx]
			if req.Name != nil {
				w.Name = *req.Name
			}
			if req.Description != nil {
				w.Description = *req.Description
			}
			if req.URL != nil {
				w.URL = *req.URL
			}
			if req.Events != nil {
				w.Events = req.Events
			}
			if req.Status != nil {
				w.Status = *req.Status
			}
			w.LastUpdatedTimestamp = time.Now().UnixMilli()
			c.JSON(http.StatusOK, gin.H{"webhook": *w})
		case len(segs) == 1 && method == http.MethodDelete:
			s.webhooks = append(s.webhooks[:idx], s.webhooks[idx+1:]...)
			c.Status(http.StatusNoContent)
		default:
			c.Status(http.StatusNotFound)
		}
	default:
		c.Status(http.StatusNotFound)
	}
}

func (s *Server) trashLocked(c *gin.Context, segs []string) {
	method := c.Request.Method
	switch {
	case len(segs) == 1 && segs[0] == "experiments" && method == http.MethodGet:
		c.JSON(http.StatusOK, append([]cliclient.DeletedExperiment{}, s.deletedExps...))
	case len(segs) == 1 && segs[0] == "runs" && method == http.MethodGet:
		c.JSON(http.StatusOK, append([]cliclient.DeletedRun{}, s.deletedRuns...))
	case len(segs) == 1 && segs[0] == "cleanup" && method == http.MethodPost:
		var req cliclient.CleanupRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.String(http.StatusBadRequest, err.Error())
			return
		}
		result := cliclient.CleanupResult{}
		if len(req.ExperimentIDs) == 0 && len(req.RunIDs) == 0 {
			result.DeletedExperiments = len(s.deletedExps)
			result.DeletedRuns = len(s.deletedRuns)
			s.deletedExps, s.deletedRuns = nil, nil
		} else {
			for _, id := range req.ExperimentIDs {
				for i, e := range s.deletedExps {
					if e.ExperimentID == id {
						s.deletedExps = append(s.deletedExps[:i], s.deletedExps[i+1:]...)
						result.DeletedExperiments++
						break
					}
				}
			}
			for _, id := range req.RunIDs {
				for i, r := range s.deletedRuns {
					if r.RunID == id {
						s.deletedRuns = append(s.deletedRuns[:i], s.deletedRuns[i+1:]...)
						result.DeletedRuns++
						break
					}
				}
			}
		}
		c.JSON(http.StatusOK, result)
	case len(segs) == 3 && segs[2] == "restore" && method == http.MethodPost:
		switch segs[0] {
		case "experiments":
			for i, e := range s.deletedExps {
				if e.ExperimentID == segs[1] {
					s.deletedExps = append(s.deletedExps[:i], s.deletedExps[i+1:]...)
					s.resources[endpoints.Experiment] = append(s.resources[endpoints.Experiment], cliclient.Resource{ID: e.ExperimentID, Name: e.Name})
					c.JSON(http.StatusOK, gin.H{})
					return
				}
			}
		case "runs":
			for i, r := range s.deletedRuns {
				if r.RunID == segs[1] {
					s.deletedRuns = append(s.deletedRuns[:i], s.deletedRuns[i+1:]...)
					c.JSON(http.StatusOK, gin.H{})
					return
				}
			}
		}
		c.String(http.StatusNotFound, "not in trash")
	default:
		c.Status(http.StatusNotFound)
	}
}
