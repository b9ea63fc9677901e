package cliclient

import (
	"context"

	"github.com/nebari-dev/mlperm/internal/endpoints"
)

// ListDeletedExperiments returns experiments in the trash (admin only).
func (c *Client) ListDeletedExperiments(ctx context.Context) ([]DeletedExperiment, error) {
	var exps []DeletedExperiment
	if _, err := c.Get(ctx, endpoints.TrashExperiments.Path(), nil, &exps); err != nil {
		return nil, err
	}
	return exps, nil
}

// ListDeletedRuns returns runs in the trash (admin only).
func (c *Client) ListDeletedRuns(ctx context.Context) ([]DeletedRun, error) {
	var runs []DeletedRun
	if _, err := c.Get(ctx, endpoints.TrashRuns.Path(), nil, &runs); err != nil {
		return nil, err
	}
	return runs, nil
}

// RestoreExperiment moves an experiment out of the trash.
func (c *Client) RestoreExperiment(ctx context.Context, id string) error {
	_, err := c.Post(ctx, endpoints.TrashRestore(endpoints.TrashExperiments, id), struct{}{}, nil)
	return err
}

// RestoreRun moves a run out of the trash.
func (c *Client) RestoreRun(ctx context.Context, id string) error {
	_, err := c.Post(ctx, endpoints.TrashRestore(endpoints.TrashRuns, id), struct{}{}, nil)
	return err
}

// CleanupTrash permanently deletes trashed items.
func (c *Client) CleanupTrash(ctx context.Context, req CleanupRequest) (*CleanupResult, error) {
	var result CleanupResult
	if _, err := c.Post(ctx, endpoints.TrashCleanup.Path(), req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
