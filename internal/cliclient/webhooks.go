package cliclient

import (
	"context"
	"fmt"
	"net/url"

	"github.com/nebari-dev/mlperm/internal/endpoints"
)

type listWebhooksResponse struct {
	Webhooks      []Webhook `json:"webhooks"`
	NextPageToken string    `json:"next_page_token,omitempty"`
}

type webhookResponse struct {
	Webhook Webhook `json:"webhook"`
}

// ListWebhooks returns all webhooks, following pagination (admin only).
func (c *Client) ListWebhooks(ctx context.Context) ([]Webhook, error) {
	var all []Webhook
	pageToken := ""
	seen := map[string]bool{}
	for {
		q := url.Values{}
		if pageToken != "" {
			q.Set("page_token", pageToken)
		}
		var page listWebhooksResponse
		if _, err := c.Get(ctx, endpoints.Webhooks.Path(), q, &page); err != nil {
			return nil, err
		}
		all = append(all, page.Webhooks...)
		if page.NextPageToken == "" {
			return all, nil
		}
		if seen[page.NextPageToken] {
			return nil, fmt.Errorf("listing webhooks: server repeated page token %q", page.NextPageToken)
		}
		seen[page.NextPageToken] = true
		pageToken = page.NextPageToken
	}
}

// GetWebhook returns a single webhook.
func (c *Client) GetWebhook(ctx context.Context, id string) (*Webhook, error) {
	var resp webhookResponse
	if _, err := c.Get(ctx, endpoints.Webhook(id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Webhook, nil
}

// CreateWebhook creates a webhook.
func (c *Client) CreateWebhook(ctx context.Context, req CreateWebhookRequest) (*Webhook, error) {
	var resp webhookResponse
	if _, err := c.Post(ctx, endpoints.Webhooks.Path(), req, &resp); err != nil {
		return nil, err
	}
	return &resp.Webhook, nil
}

// UpdateWebhook applies the non-nil fields of req.
func (c *Client) UpdateWebhook(ctx context.Context, id string, req UpdateWebhookRequest) (*Webhook, error) {
	var resp webhookResponse
	if _, err := c.Patch(ctx, endpoints.Webhook(id), req, &resp); err != nil {
		return nil, err
	}
	return &resp.Webhook, nil
}

// DeleteWebhook removes a webhook.
func (c *Client) DeleteWebhook(ctx context.Context, id string) error {
	_, err := c.Delete(ctx, endpoints.Webhook(id))
	return err
}

// TestWebhook sends a test event to a webhook.
func (c *Client) TestWebhook(ctx context.Context, id string) (*WebhookTestResult, error) {
	var resp struct {
		Result WebhookTestResult `json:"result"`
	}
	if _, err := c.Post(ctx, endpoints.WebhookTest(id), struct{}{}, &resp); err != nil {
		return nil, err
	}
	return &resp.Result, nil
}
