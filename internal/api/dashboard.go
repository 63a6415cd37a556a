package api

import (
	"context"

	"github.com/minhng/taskdeck/internal/model"
)

// HealthStatus is the liveness payload from /api/health.
type HealthStatus struct {
	Status string `json:"status"`
}

// GetDashboard fetches the backend-computed dashboard summary.
func (c *Client) GetDashboard(ctx context.Context) (*model.DashboardSummary, error) {
	var summary model.DashboardSummary
	if err := c.get(ctx, "/api/dashboard", &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// Health checks backend liveness.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	var status HealthStatus
	if err := c.get(ctx, "/api/health", &status); err != nil {
		return nil, err
	}
	return &status, nil
}
