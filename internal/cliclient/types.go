package cliclient

import (
	"fmt"
	"strings"
	"time"
)

// Level is a permission level.
type Level string

const (
	LevelRead          Level = "READ"
	LevelEdit          Level = "EDIT"
	LevelManage        Level = "MANAGE"
	LevelNoPermissions Level = "NO_PERMISSIONS"
)

// Levels lists every level from weakest to strongest grant.
var Levels = []Level{LevelNoPermissions, LevelRead, LevelEdit, LevelManage}

// Next returns the level after l in Levels, wrapping around.
func (l Level) Next() Level {
	for i, lv := range Levels {
		if lv == l {
			return Levels[(i+1)%len(Levels)]
		}
	}
	return LevelRead
}

// Group represents a group of users.
type Group struct {
	Name string `json:"group_name"`
}

// User represents a user or service account.
type User struct {
	Username         string  `json:"username"`
	DisplayName      string  `json:"display_name"`
	IsAdmin          bool    `json:"is_admin"`
	IsServiceAccount bool    `json:"is_service_account"`
	Groups           []Group `json:"groups,omitempty"`
	// PasswordExpiration is nil when the user's token never expires.
	PasswordExpiration *time.Time `json:"password_expiration"`
}

// GroupNames returns the names of the user's groups.
func (u User) GroupNames() []string {
	names := make([]string, len(u.Groups))
	for i, g := range u.Groups {
		names[i] = g.Name
	}
	return names
}

// Resource is an experiment, registered model, prompt or gateway object.
// Models, prompts and gateway objects are identified by name, so ID is
// empty for them.
type Resource struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// Key returns the identifier used in permission paths.
func (r Resource) Key() string {
	if r.ID != "" {
		return r.ID
	}
	return r.Name
}

// Grant is a permission a principal holds on one resource.
type Grant struct {
	ID         string `json:"id,omitempty"`
	Name       string `json:"name"`
	Permission Level  `json:"permission"`
	// Kind tells where the effective permission comes from: "user",
	// "group", "pattern" or "fallback".
	Kind string `json:"kind,omitempty"`
}

// Key returns the identifier used in permission paths.
func (g Grant) Key() string {
	if g.ID != "" {
		return g.ID
	}
	return g.Name
}

// PrincipalGrant is a grant seen from the resource side.
type PrincipalGrant struct {
	Name       string `json:"name"`
	Permission Level  `json:"permission"`
	Kind       string `json:"kind,omitempty"`
}

// PatternPermission is a regex based bulk grant.
type PatternPermission struct {
	ID         int    `json:"id"`
	Regex      string `json:"regex"`
	Priority   int    `json:"priority"`
	Permission Level  `json:"permission"`
}

// PatternRequest creates or updates a pattern permission.
type PatternRequest struct {
	Regex      string `json:"regex"`
	Priority   int    `json:"priority"`
	Permission Level  `json:"permission"`
}

type permissionRequest struct {
	Permission Level `json:"permission"`
}

// CreateServiceAccountRequest represents a request to create a service account.
type CreateServiceAccountRequest struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	IsAdmin     bool   `json:"is_admin"`
}

// AccessTokenRequest represents a request to issue an access token.
type AccessTokenRequest struct {
	Username   string    `json:"username,omitempty"`
	Expiration time.Time `json:"expiration"`
}

// AccessToken is an issued access token.
type AccessToken struct {
	Token      string    `json:"token"`
	Username   string    `json:"username,omitempty"`
	Expiration time.Time `json:"expiration"`
}

// WebhookStatus is the delivery state of a webhook.
type WebhookStatus string

const (
	WebhookActive   WebhookStatus = "ACTIVE"
	WebhookDisabled WebhookStatus = "DISABLED"
)

// WebhookEvent is an entity/action pair a webhook subscribes to.
type WebhookEvent struct {
	Entity string `json:"entity"`
	Action string `json:"action"`
}

func (e WebhookEvent) String() string {
	return e.Entity + "." + e.Action
}

// ParseWebhookEvent parses "entity.action".
func ParseWebhookEvent(s string) (WebhookEvent, error) {
	entity, action, ok := strings.Cut(strings.TrimSpace(s), ".")
	if !ok || entity == "" || action == "" {
		return WebhookEvent{}, fmt.Errorf("invalid webhook event %q, want entity.action", s)
	}
	return WebhookEvent{Entity: entity, Action: action}, nil
}

// Webhook represents a webhook subscription.
type Webhook struct {
	ID                   string         `json:"webhook_id"`
	Name                 string         `json:"name"`
	Description          string         `json:"description,omitempty"`
	URL                  string         `json:"url"`
	Events               []WebhookEvent `json:"events"`
	Status               WebhookStatus  `json:"status"`
	CreationTimestamp    int64          `json:"creation_timestamp,omitempty"`
	LastUpdatedTimestamp int64          `json:"last_updated_timestamp,omitempty"`
}

// CreateWebhookRequest represents a request to create a webhook.
type CreateWebhookRequest struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	URL         string         `json:"url"`
	Events      []WebhookEvent `json:"events"`
	Secret      string         `json:"secret,omitempty"`
	Status      WebhookStatus  `json:"status,omitempty"`
}

// UpdateWebhookRequest represents a request to update a webhook.
type UpdateWebhookRequest struct {
	Name        *string        `json:"name,omitempty"`
	Description *string        `json:"description,omitempty"`
	URL         *string        `json:"url,omitempty"`
	Events      []WebhookEvent `json:"events,omitempty"`
	Secret      *string        `json:"secret,omitempty"`
	Status      *WebhookStatus `json:"status,omitempty"`
}

// WebhookTestResult is the outcome of a test delivery.
type WebhookTestResult struct {
	Success        bool   `json:"success"`
	ResponseStatus int    `json:"response_status,omitempty"`
	ResponseBody   string `json:"response_body,omitempty"`
	ErrorMessage   string `json:"error_message,omitempty"`
}

// DeletedExperiment is an experiment in the trash.
type DeletedExperiment struct {
	ExperimentID   string `json:"experiment_id"`
	Name           string `json:"name"`
	LifecycleStage string `json:"lifecycle_stage,omitempty"`
	LastUpdateTime int64  `json:"last_update_time,omitempty"`
}

// DeletedRun is a run in the trash.
type DeletedRun struct {
	RunID        string `json:"run_id"`
	ExperimentID string `json:"experiment_id"`
	RunName      string `json:"run_name,omitempty"`
	EndTime      int64  `json:"end_time,omitempty"`
}

// CleanupRequest permanently removes trashed items.
type CleanupRequest struct {
	// OlderThan is a duration such as "30d"; empty removes everything selected.
	OlderThan     string   `json:"older_than,omitempty"`
	ExperimentIDs []string `json:"experiment_ids,omitempty"`
	RunIDs        []string `json:"run_ids,omitempty"`
}

// CleanupResult reports what a cleanup removed.
type CleanupResult struct {
	DeletedExperiments int `json:"deleted_experiments"`
	DeletedRuns        int `json:"deleted_runs"`
}
