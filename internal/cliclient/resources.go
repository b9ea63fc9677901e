package cliclient

import (
	"context"

	"github.com/nebari-dev/mlperm/internal/endpoints"
)

// ListResources returns every resource of kind visible to the caller.
func (c *Client) ListResources(ctx context.Context, kind endpoints.ResourceKind) ([]Resource, error) {
	var resources []Resource
	_, err := c.Get(ctx, endpoints.ResourceCollection(kind), nil, &resources)
	if err != nil {
		return nil, err
	}
	return resources, nil
}

// ListExperiments returns all experiments.
func (c *Client) ListExperiments(ctx context.Context) ([]Resource, error) {
	return c.ListResources(ctx, endpoints.Experiment)
}

// ListModels returns all registered models.
func (c *Client) ListModels(ctx context.Context) ([]Resource, error) {
	return c.ListResources(ctx, endpoints.Model)
}

// ListPrompts returns all prompts.
func (c *Client) ListPrompts(ctx context.Context) ([]Resource, error) {
	return c.ListResources(ctx, endpoints.Prompt)
}

// ListGatewayResources returns gateway endpoints, secrets or model definitions.
func (c *Client) ListGatewayResources(ctx context.Context, kind endpoints.ResourceKind) ([]Resource, error) {
	if !kind.IsGateway() {
		return nil, &KindError{Kind: kind, Want: "gateway"}
	}
	return c.ListResources(ctx, kind)
}

// ResourceUserPermissions lists users holding grants on resource id.
func (c *Client) ResourceUserPermissions(ctx context.Context, kind endpoints.ResourceKind, id string) ([]PrincipalGrant, error) {
	return c.resourcePrincipals(ctx, kind, endpoints.User, id)
}

// ResourceGroupPermissions lists groups holding grants on resource id.
func (c *Client) ResourceGroupPermissions(ctx context.Context, kind endpoints.ResourceKind, id string) ([]PrincipalGrant, error) {
	return c.resourcePrincipals(ctx, kind, endpoints.Group, id)
}

func (c *Client) resourcePrincipals(ctx context.Context, kind endpoints.ResourceKind, p endpoints.PrincipalKind, id string) ([]PrincipalGrant, error) {
	var grants []PrincipalGrant
	_, err := c.Get(ctx, endpoints.ResourcePrincipals(kind, p, id), nil, &grants)
	if err != nil {
		return nil, err
	}
	return grants, nil
}

// KindError reports a resource kind used where it does not apply.
type KindError struct {
	Kind endpoints.ResourceKind
	Want string
}

func (e *KindError) Error() string {
	return "resource kind " + e.Kind.String() + " is not a " + e.Want + " kind"
}
