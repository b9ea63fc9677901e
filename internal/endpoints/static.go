package endpoints

import (
	"fmt"
	"net/url"
	"strings"
)

// Static names an endpoint whose path has no parameters.
type Static int

const (
	CurrentUser Static = iota
	Users
	Groups
	ServiceAccounts
	AccessToken
	Experiments
	Models
	Prompts
	GatewayEndpoints
	GatewaySecrets
	GatewayModels
	TrashExperiments
	TrashRuns
	TrashCleanup
	Webhooks
)

// Path returns the REST path for s.
func (s Static) Path() string {
	switch s {
	case CurrentUser:
		return permissionsPrefix + "/users/current"
	case Users:
		return permissionsPrefix + "/users"
	case Groups:
		return permissionsPrefix + "/groups"
	case ServiceAccounts:
		return permissionsPrefix + "/service-accounts"
	case AccessToken:
		return permissionsPrefix + "/users/access-token"
	case Experiments:
		return ResourceCollection(Experiment)
	case Models:
		return ResourceCollection(Model)
	case Prompts:
		return ResourceCollection(Prompt)
	case GatewayEndpoints:
		return ResourceCollection(GatewayEndpoint)
	case GatewaySecrets:
		return ResourceCollection(GatewaySecret)
	case GatewayModels:
		return ResourceCollection(GatewayModel)
	case TrashExperiments:
		return permissionsPrefix + "/trash/experiments"
	case TrashRuns:
		return permissionsPrefix + "/trash/runs"
	case TrashCleanup:
		return permissionsPrefix + "/trash/cleanup"
	case Webhooks:
		return APIPrefix + "/webhooks"
	default:
		panic(fmt.Sprintf("endpoints: unknown static endpoint %d", int(s)))
	}
}

// UserDetail returns the path of a single user record.
func UserDetail(username string) string {
	return Users.Path() + "/" + url.PathEscape(username)
}

// ServiceAccount returns the path of a single service account.
func ServiceAccount(username string) string {
	return ServiceAccounts.Path() + "/" + url.PathEscape(username)
}

// GroupMembers returns the path listing the members of group.
func GroupMembers(group string) string {
	return Groups.Path() + "/" + url.PathEscape(group) + "/users"
}

// Webhook returns the path of a single webhook.
func Webhook(id string) string {
	return Webhooks.Path() + "/" + url.PathEscape(id)
}

// WebhookTest returns the path that fires a test event at a webhook.
func WebhookTest(id string) string {
	return Webhook(id) + "/test"
}

// TrashRestore returns the restore path for a deleted experiment or run.
func TrashRestore(collection Static, id string) string {
	if collection != TrashExperiments && collection != TrashRuns {
		panic(fmt.Sprintf("endpoints: %d is not a trash collection", int(collection)))
	}
	return collection.Path() + "/" + url.PathEscape(id) + "/restore"
}

// RemoveTrailingSlashes strips every trailing '/' from s.
func RemoveTrailingSlashes(s string) string {
	return strings.TrimRight(s, "/")
}

// Join appends an endpoint path to a backend base path such as "/mlflow".
func Join(base, path string) string {
	base = RemoveTrailingSlashes(base)
	if path == "" {
		return base
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}
