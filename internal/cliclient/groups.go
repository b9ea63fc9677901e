package cliclient

import (
	"context"

	"github.com/nebari-dev/mlperm/internal/endpoints"
)

// ListGroups returns all groups.
func (c *Client) ListGroups(ctx context.Context) ([]Group, error) {
	var groups []Group
	_, err := c.Get(ctx, endpoints.Groups.Path(), nil, &groups)
	if err != nil {
		return nil, err
	}
	return groups, nil
}

// ListGroupMembers returns the users in group.
func (c *Client) ListGroupMembers(ctx context.Context, group string) ([]User, error) {
	var users []User
	_, err := c.Get(ctx, endpoints.GroupMembers(group), nil, &users)
	if err != nil {
		return nil, err
	}
	return users, nil
}
