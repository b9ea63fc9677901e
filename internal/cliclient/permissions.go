package cliclient

import (
	"context"
	"strconv"

	"github.com/nebari-dev/mlperm/internal/endpoints"
)

// Principal is a user or group that can hold grants.
type Principal struct {
	Kind endpoints.PrincipalKind
	Name string
}

// UserPrincipal returns the principal for a user.
func UserPrincipal(name string) Principal {
	return Principal{Kind: endpoints.User, Name: name}
}

// GroupPrincipal returns the principal for a group.
func GroupPrincipal(name string) Principal {
	return Principal{Kind: endpoints.Group, Name: name}
}

func (p Principal) String() string {
	return p.Kind.String() + " " + p.Name
}

func (p Principal) target(kind endpoints.ResourceKind, pattern bool, id string) string {
	return endpoints.Resolve(endpoints.Target{
		Principal:     p.Kind,
		Resource:      kind,
		Pattern:       pattern,
		PrincipalName: p.Name,
		ResourceID:    id,
	})
}

// ListPermissions returns the exact grants p holds on resources of kind.
func (c *Client) ListPermissions(ctx context.Context, p Principal, kind endpoints.ResourceKind) ([]Grant, error) {
	var grants []Grant
	_, err := c.Get(ctx, p.target(kind, false, ""), nil, &grants)
	if err != nil {
		return nil, err
	}
	return grants, nil
}

// GetPermission returns the grant p holds on resource id.
func (c *Client) GetPermission(ctx context.Context, p Principal, kind endpoints.ResourceKind, id string) (*Grant, error) {
	var grant Grant
	_, err := c.Get(ctx, p.target(kind, false, id), nil, &grant)
	if err != nil {
		return nil, err
	}
	return &grant, nil
}

// GrantPermission creates a grant of level on resource id.
func (c *Client) GrantPermission(ctx context.Context, p Principal, kind endpoints.ResourceKind, id string, level Level) error {
	_, err := c.Post(ctx, p.target(kind, false, id), permissionRequest{Permission: level}, nil)
	return err
}

// UpdatePermission changes the level of an existing grant.
func (c *Client) UpdatePermission(ctx context.Context, p Principal, kind endpoints.ResourceKind, id string, level Level) error {
	_, err := c.Patch(ctx, p.target(kind, false, id), permissionRequest{Permission: level}, nil)
	return err
}

// RevokePermission removes the grant p holds on resource id.
func (c *Client) RevokePermission(ctx context.Context, p Principal, kind endpoints.ResourceKind, id string) error {
	_, err := c.Delete(ctx, p.target(kind, false, id))
	return err
}

// ListPatternPermissions returns the regex grants p holds for kind.
func (c *Client) ListPatternPermissions(ctx context.Context, p Principal, kind endpoints.ResourceKind) ([]PatternPermission, error) {
	var patterns []PatternPermission
	_, err := c.Get(ctx, p.target(kind, true, ""), nil, &patterns)
	if err != nil {
		return nil, err
	}
	return patterns, nil
}

// CreatePatternPermission adds a regex grant.
func (c *Client) CreatePatternPermission(ctx context.Context, p Principal, kind endpoints.ResourceKind, req PatternRequest) (*PatternPermission, error) {
	var pattern PatternPermission
	_, err := c.Post(ctx, p.target(kind, true, ""), req, &pattern)
	if err != nil {
		return nil, err
	}
	return &pattern, nil
}

// UpdatePatternPermission replaces the regex, priority and level of a pattern.
func (c *Client) UpdatePatternPermission(ctx context.Context, p Principal, kind endpoints.ResourceKind, id int, req PatternRequest) error {
	_, err := c.Patch(ctx, p.target(kind, true, strconv.Itoa(id)), req, nil)
	return err
}

// DeletePatternPermission removes a regex grant.
func (c *Client) DeletePatternPermission(ctx context.Context, p Principal, kind endpoints.ResourceKind, id int) error {
	_, err := c.Delete(ctx, p.target(kind, true, strconv.Itoa(id)))
	return err
}
