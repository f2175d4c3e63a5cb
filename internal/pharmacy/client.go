// Package pharmacy covers the pharmacy-side inventory surface: stocked
// medicines and the restock request workflow.
package pharmacy

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/swiftmeds/client/internal/api"
	"github.com/swiftmeds/client/types"
)

type Client struct {
	api    *api.Client
	logger *zap.Logger
}

func New(apiClient *api.Client, logger *zap.Logger) *Client {
	return &Client{api: apiClient, logger: logger}
}

func (c *Client) Medicines(ctx context.Context) ([]types.PharmacyMedicine, error) {
	var out []types.PharmacyMedicine
	if err := c.api.Get(ctx, "pharmacy-medicines/", &out); err != nil {
		return nil, fmt.Errorf("fetch pharmacy medicines: %w", err)
	}
	return out, nil
}

func (c *Client) UpdateStock(ctx context.Context, id, stock int) (*types.PharmacyMedicine, error) {
	if stock < 0 {
		return nil, api.Validationf("stock cannot be negative, got %d", stock)
	}

	var updated types.PharmacyMedicine
	body := map[string]int{"stock": stock}
	if err := c.api.Patch(ctx, fmt.Sprintf("pharmacy-medicines/%d/", id), body, &updated); err != nil {
		return nil, fmt.Errorf("update stock for %d: %w", id, err)
	}
	return &updated, nil
}

func (c *Client) RequestRestock(ctx context.Context, medicineID, quantity int, notes string) (*types.RestockRequest, error) {
	if quantity < 1 {
		return nil, api.Validationf("restock quantity must be at least 1, got %d", quantity)
	}

	var req types.RestockRequest
	body := map[string]any{
		"medicine_id": medicineID,
		"quantity":    quantity,
		"notes":       notes,
	}
	if err := c.api.Post(ctx, "restock-requests/", body, &req); err != nil {
		return nil, fmt.Errorf("request restock: %w", err)
	}

	c.logger.Info("restock requested",
		zap.Int("medicine_id", medicineID),
		zap.Int("quantity", quantity),
	)
	return &req, nil
}

func (c *Client) Restocks(ctx context.Context) ([]types.RestockRequest, error) {
	var out []types.RestockRequest
	if err := c.api.Get(ctx, "restock-requests/", &out); err != nil {
		return nil, fmt.Errorf("fetch restock requests: %w", err)
	}
	return out, nil
}

// ApproveRestock and RejectRestock are admin actions on a pending request.

func (c *Client) ApproveRestock(ctx context.Context, id int) error {
	if err := c.api.Post(ctx, fmt.Sprintf("restock-requests/%d/approve/", id), nil, nil); err != nil {
		return fmt.Errorf("approve restock %d: %w", id, err)
	}
	return nil
}

func (c *Client) RejectRestock(ctx context.Context, id int) error {
	if err := c.api.Post(ctx, fmt.Sprintf("restock-requests/%d/reject/", id), nil, nil); err != nil {
		return fmt.Errorf("reject restock %d: %w", id, err)
	}
	return nil
}
