// Package orders drives the order lifecycle: creation, cart checkout,
// status transitions, and the pharmacy accept/reject decision. All state
// lives in the backend; after any mutation callers re-fetch the feeds they
// display instead of patching local copies.
package orders

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/swiftmeds/client/internal/api"
	"github.com/swiftmeds/client/internal/metrics"
	"github.com/swiftmeds/client/types"
)

type Client struct {
	api    *api.Client
	logger *zap.Logger
}

func New(apiClient *api.Client, logger *zap.Logger) *Client {
	return &Client{api: apiClient, logger: logger}
}

type CreateRequest struct {
	MedicineID       int    `json:"medicine_id"`
	PharmacyID       int    `json:"pharmacy_id"`
	Quantity         int    `json:"quantity"`
	DeliveryRequired bool   `json:"delivery_required"`
	DeliveryAddress  string `json:"delivery_address"`
	// OrderID, when set, groups this line item under a shared identifier.
	// The cart checkout sets it; single orders leave it empty and let the
	// backend mint one.
	OrderID string `json:"order_id,omitempty"`
}

func (r CreateRequest) validate() error {
	if r.Quantity < 1 {
		return api.Validationf("quantity must be at least 1, got %d", r.Quantity)
	}
	if r.DeliveryRequired && strings.TrimSpace(r.DeliveryAddress) == "" {
		return api.Validationf("delivery requested without a delivery address")
	}
	return nil
}

// Create places one order line item. Invalid requests are rejected locally
// and never reach the network.
func (c *Client) Create(ctx context.Context, req CreateRequest) (*types.Order, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	var order types.Order
	if err := c.api.Post(ctx, "create-order/", req, &order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	metrics.OrdersCreatedTotal.Inc()
	c.logger.Info("order created",
		zap.String("order_id", order.OrderID),
		zap.Int("quantity", order.Quantity),
	)
	return &order, nil
}

// NewOrderID mints the client-side shared identifier a cart checkout stamps
// on every line item. Same scheme the backend uses for single orders.
func NewOrderID() string {
	return "ORD-" + strings.ToUpper(uuid.NewString()[:8])
}

type CartItem struct {
	MedicineID int
	PharmacyID int
	Quantity   int
}

type DeliveryInfo struct {
	Required bool
	Address  string
}

type CheckoutResult struct {
	// SharedID is the human-readable identifier all line items carry.
	SharedID string
	// OrderIDs are the distinct identifiers returned by the backend, in
	// creation order. Normally just SharedID; collected rather than assumed
	// so payment always references what the server actually stored.
	OrderIDs []string
	Orders   []types.Order
}

// Checkout creates one order per cart item, all under a shared identifier,
// and collects the resulting ids for the payment fan-in. The first failed
// creation aborts the rest; already-created items stay behind in
// pending_pharmacy_confirmation for the backend to reconcile.
func (c *Client) Checkout(ctx context.Context, items []CartItem, delivery DeliveryInfo) (*CheckoutResult, error) {
	if len(items) == 0 {
		return nil, api.Validationf("cart is empty")
	}
	for _, item := range items {
		if item.Quantity < 1 {
			return nil, api.Validationf("quantity must be at least 1, got %d", item.Quantity)
		}
	}
	if delivery.Required && strings.TrimSpace(delivery.Address) == "" {
		return nil, api.Validationf("delivery requested without a delivery address")
	}

	result := &CheckoutResult{SharedID: NewOrderID()}
	seen := make(map[string]bool)

	for _, item := range items {
		order, err := c.Create(ctx, CreateRequest{
			MedicineID:       item.MedicineID,
			PharmacyID:       item.PharmacyID,
			Quantity:         item.Quantity,
			DeliveryRequired: delivery.Required,
			DeliveryAddress:  delivery.Address,
			OrderID:          result.SharedID,
		})
		if err != nil {
			return nil, fmt.Errorf("checkout item %d of %d: %w", len(result.Orders)+1, len(items), err)
		}
		result.Orders = append(result.Orders, *order)
		if !seen[order.OrderID] {
			seen[order.OrderID] = true
			result.OrderIDs = append(result.OrderIDs, order.OrderID)
		}
	}

	c.logger.Info("cart checked out",
		zap.String("order_id", result.SharedID),
		zap.Int("items", len(result.Orders)),
	)
	return result, nil
}

// UpdateStatus asks the backend to move order id to target. Legality is
// enforced server-side; a rejection carries the server reason verbatim.
func (c *Client) UpdateStatus(ctx context.Context, id int, target types.OrderStatus) (*types.Order, error) {
	if !target.Valid() {
		return nil, api.Validationf("unknown order status %q", target)
	}

	var order types.Order
	body := map[string]types.OrderStatus{"order_status": target}
	if err := c.api.Patch(ctx, fmt.Sprintf("orders/%d/", id), body, &order); err != nil {
		return nil, fmt.Errorf("update order %d: %w", id, err)
	}
	return &order, nil
}

func (c *Client) Cancel(ctx context.Context, id int) (*types.Order, error) {
	return c.UpdateStatus(ctx, id, types.OrderCancelled)
}

type decisionResponse struct {
	Message    string `json:"message"`
	OrderID    string `json:"order_id"`
	ItemsCount int    `json:"items_count"`
}

// PharmacyAccept accepts every line item grouped under orderID. The backend
// checks payment and stock; stock problems come back as the server reason.
func (c *Client) PharmacyAccept(ctx context.Context, orderID string) error {
	body := map[string]string{"action": "accept"}
	var resp decisionResponse
	if err := c.api.Post(ctx, "pharmacy-accept-order/"+orderID+"/", body, &resp); err != nil {
		return fmt.Errorf("accept order %s: %w", orderID, err)
	}
	c.logger.Info("order accepted", zap.String("order_id", orderID), zap.Int("items", resp.ItemsCount))
	return nil
}

func (c *Client) PharmacyReject(ctx context.Context, orderID, reason string) error {
	body := map[string]string{"action": "reject", "reason": reason}
	var resp decisionResponse
	if err := c.api.Post(ctx, "pharmacy-accept-order/"+orderID+"/", body, &resp); err != nil {
		return fmt.Errorf("reject order %s: %w", orderID, err)
	}
	c.logger.Info("order rejected", zap.String("order_id", orderID))
	return nil
}

// Feed fetchers. One per role; each returns the authoritative list and is
// re-invoked after every mutation touching it.

func (c *Client) All(ctx context.Context) ([]types.Order, error) {
	var out []types.Order
	if err := c.api.Get(ctx, "orders/", &out); err != nil {
		return nil, fmt.Errorf("fetch orders: %w", err)
	}
	return out, nil
}

func (c *Client) UserOrders(ctx context.Context) ([]types.Order, error) {
	var out []types.Order
	if err := c.api.Get(ctx, "user-orders/", &out); err != nil {
		return nil, fmt.Errorf("fetch user orders: %w", err)
	}
	return out, nil
}

func (c *Client) PharmacyOrders(ctx context.Context) ([]types.Order, error) {
	var out []types.Order
	if err := c.api.Get(ctx, "pharmacy-orders/", &out); err != nil {
		return nil, fmt.Errorf("fetch pharmacy orders: %w", err)
	}
	return out, nil
}

func (c *Client) DeliveryOrders(ctx context.Context) ([]types.Order, error) {
	var out []types.Order
	if err := c.api.Get(ctx, "delivery-orders/", &out); err != nil {
		return nil, fmt.Errorf("fetch delivery orders: %w", err)
	}
	return out, nil
}

// Group is a cart checkout viewed as one logical order.
type Group struct {
	OrderID string
	Items   []types.Order
}

// GroupByOrderID folds line items sharing an order_id into display groups,
// preserving first-seen order.
func GroupByOrderID(list []types.Order) []Group {
	index := make(map[string]int)
	var groups []Group
	for _, o := range list {
		i, ok := index[o.OrderID]
		if !ok {
			i = len(groups)
			index[o.OrderID] = i
			groups = append(groups, Group{OrderID: o.OrderID})
		}
		groups[i].Items = append(groups[i].Items, o)
	}
	return groups
}
