package cliclient

import (
	"context"

	"github.com/nebari-dev/mlperm/internal/endpoints"
)

// CurrentUser returns the authenticated user.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	var user User
	_, err := c.Get(ctx, endpoints.CurrentUser.Path(), nil, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUsers returns all users.
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	_, err := c.Get(ctx, endpoints.Users.Path(), nil, &users)
	if err != nil {
		return nil, err
	}
	return users, nil
}

// GetUser returns a single user.
func (c *Client) GetUser(ctx context.Context, username string) (*User, error) {
	var user User
	_, err := c.Get(ctx, endpoints.UserDetail(username), nil, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ListServiceAccounts returns all service accounts (admin only).
func (c *Client) ListServiceAccounts(ctx context.Context) ([]User, error) {
	var users []User
	_, err := c.Get(ctx, endpoints.ServiceAccounts.Path(), nil, &users)
	if err != nil {
		return nil, err
	}
	return users, nil
}

// CreateServiceAccount creates a service account (admin only).
func (c *Client) CreateServiceAccount(ctx context.Context, req CreateServiceAccountRequest) (*User, error) {
	var user User
	_, err := c.Post(ctx, endpoints.ServiceAccounts.Path(), req, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteServiceAccount removes a service account (admin only).
func (c *Client) DeleteServiceAccount(ctx context.Context, username string) error {
	_, err := c.Delete(ctx, endpoints.ServiceAccount(username))
	return err
}

// CreateAccessToken issues an access token. An empty username issues the
// token for the caller.
func (c *Client) CreateAccessToken(ctx context.Context, req AccessTokenRequest) (*AccessToken, error) {
	var token AccessToken
	_, err := c.Post(ctx, endpoints.AccessToken.Path(), req, &token)
	if err != nil {
		return nil, err
	}
	return &token, nil
}
