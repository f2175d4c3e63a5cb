// Package notify polls the per-role notification feed, reconciles
// read/unread state, and housekeeps expired notices.
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/swiftmeds/client/internal/api"
	"github.com/swiftmeds/client/types"
)

// Expiry thresholds for client-initiated cleanup. Past these ages the
// notice is deleted on the next poll; everything else lives until the user
// deletes it.
const (
	otpNoticeMaxAge       = 2 * time.Hour
	refundNoticeMaxAge    = 1 * time.Hour
	deliveredNoticeMaxAge = 24 * time.Hour
)

// RoleSource supplies the session role at call time, so a re-login in the
// same process switches feeds without a restart.
type RoleSource interface {
	Role() string
}

type Client struct {
	api    *api.Client
	roles  RoleSource
	logger *zap.Logger
}

// NewClient builds a notification client over the session's role. Couriers
// read delivery-notifications/, everyone else user-notifications/.
func NewClient(apiClient *api.Client, roles RoleSource, logger *zap.Logger) *Client {
	return &Client{api: apiClient, roles: roles, logger: logger}
}

func (c *Client) endpoint() string {
	if c.roles.Role() == "delivery" {
		return "delivery-notifications/"
	}
	return "user-notifications/"
}

func (c *Client) Fetch(ctx context.Context) ([]types.Notification, error) {
	var out []types.Notification
	if err := c.api.Get(ctx, c.endpoint(), &out); err != nil {
		return nil, fmt.Errorf("fetch notifications: %w", err)
	}
	return out, nil
}

// MarkAllRead flags every unread notification in one batched call. Never
// per-item; the request volume must stay bounded.
func (c *Client) MarkAllRead(ctx context.Context, list []types.Notification) error {
	var unread []int
	for _, n := range list {
		if !n.IsRead {
			unread = append(unread, n.ID)
		}
	}
	if len(unread) == 0 {
		return nil
	}

	body := map[string][]int{"notification_ids": unread}
	if err := c.api.Post(ctx, "mark-notifications-read/", body, nil); err != nil {
		return fmt.Errorf("mark notifications read: %w", err)
	}
	c.logger.Debug("notifications marked read", zap.Int("count", len(unread)))
	return nil
}

func (c *Client) Delete(ctx context.Context, ids []int) error {
	if len(ids) == 0 {
		return nil
	}
	body := map[string][]int{"notification_ids": ids}
	if err := c.api.Delete(ctx, "delete-notifications/", body, nil); err != nil {
		return fmt.Errorf("delete notifications: %w", err)
	}
	return nil
}

// Expired reports whether n has outlived its type's age threshold.
func Expired(n types.Notification, now time.Time) bool {
	age := now.Sub(n.CreatedAt)

	if n.Type == types.NotifyDeliveryOTP {
		return age > otpNoticeMaxAge
	}
	if n.Type == types.NotifyOrderStatus &&
		(strings.Contains(n.Title, "Refund") || strings.Contains(strings.ToLower(n.Message), "refund")) {
		return age > refundNoticeMaxAge
	}
	if strings.Contains(n.Title, "Delivered") {
		return age > deliveredNoticeMaxAge
	}
	return false
}
