// Package payment runs gateway checkout and the refund flow. The gateway
// itself is an injected widget; a checkout that fails or is dismissed leaves
// the order exactly where it was.
package payment

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/swiftmeds/client/internal/api"
	"github.com/swiftmeds/client/internal/metrics"
	"github.com/swiftmeds/client/types"
)

// RefundSettlementWindow is the display estimate for when an initiated
// refund should land. Not a contract the client enforces.
const RefundSettlementWindow = 72 * time.Hour

type Client struct {
	api     *api.Client
	gateway Gateway
	logger  *zap.Logger
}

func New(apiClient *api.Client, gateway Gateway, logger *zap.Logger) *Client {
	return &Client{api: apiClient, gateway: gateway, logger: logger}
}

type VerifyResult struct {
	Message       string       `json:"message"`
	TransactionID string       `json:"transaction_id"`
	Order         *types.Order `json:"order,omitempty"`
	// Orders lists the order ids a cart confirmation fanned out to.
	Orders []string `json:"orders,omitempty"`
}

// Pay runs the three-step checkout for a single order: create the gateway
// order, open the widget, verify the signed confirmation server-side. Any
// failure, including the customer dismissing the widget, returns an error
// with the order's payment state unchanged; retrying is a fresh Pay call
// and creates no duplicate orders.
func (c *Client) Pay(ctx context.Context, orderID string, customer Customer) (*VerifyResult, error) {
	var session CheckoutSession
	if err := c.api.Post(ctx, "create-razorpay-order/"+orderID+"/", nil, &session); err != nil {
		return nil, fmt.Errorf("create gateway order for %s: %w", orderID, err)
	}

	confirmation, err := c.gateway.Collect(ctx, session, customer)
	if err != nil {
		c.logger.Warn("checkout not completed",
			zap.String("order_id", orderID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("checkout for %s: %w", orderID, err)
	}

	var result VerifyResult
	if err := c.api.Post(ctx, "verify-razorpay-payment/"+orderID+"/", confirmation, &result); err != nil {
		return nil, fmt.Errorf("verify payment for %s: %w", orderID, err)
	}

	metrics.PaymentsCapturedTotal.Inc()
	c.logger.Info("payment captured",
		zap.String("order_id", orderID),
		zap.String("transaction_id", result.TransactionID),
	)
	return &result, nil
}

// PayCart is Pay for a batch: one gateway transaction covering every order
// id, with the confirmation fanned back out to all of them server-side.
func (c *Client) PayCart(ctx context.Context, orderIDs []string, customer Customer) (*VerifyResult, error) {
	if len(orderIDs) == 0 {
		return nil, api.Validationf("no orders to pay for")
	}

	var session CheckoutSession
	body := map[string][]string{"order_ids": orderIDs}
	if err := c.api.Post(ctx, "cart/create-razorpay-order/", body, &session); err != nil {
		return nil, fmt.Errorf("create cart gateway order: %w", err)
	}

	confirmation, err := c.gateway.Collect(ctx, session, customer)
	if err != nil {
		c.logger.Warn("cart checkout not completed",
			zap.Strings("order_ids", orderIDs),
			zap.Error(err),
		)
		return nil, fmt.Errorf("cart checkout: %w", err)
	}

	verifyBody := struct {
		OrderIDs []string `json:"order_ids"`
		GatewayResponse
	}{OrderIDs: orderIDs, GatewayResponse: *confirmation}

	var result VerifyResult
	if err := c.api.Post(ctx, "cart/verify-razorpay-payment/", verifyBody, &result); err != nil {
		return nil, fmt.Errorf("verify cart payment: %w", err)
	}

	metrics.PaymentsCapturedTotal.Inc()
	c.logger.Info("cart payment captured",
		zap.String("transaction_id", result.TransactionID),
		zap.Int("orders", len(result.Orders)),
	)
	return &result, nil
}

type RefundResult struct {
	Message       string             `json:"message"`
	RefundStatus  types.RefundStatus `json:"refund_status"`
	RefundAmount  string             `json:"refund_amount"`
	InitiatedAt   time.Time          `json:"refund_initiated_at"`
	// ExpectedBy is derived locally; the backend never promises a date.
	ExpectedBy time.Time `json:"-"`
}

// RequestRefund asks for the captured payment back. Permitted only for a
// rejected or cancelled order with no refund already on record; both checks
// run locally first, then again server-side.
func (c *Client) RequestRefund(ctx context.Context, order types.Order, reason string) (*RefundResult, error) {
	if order.OrderStatus != types.OrderPharmacyRejected && order.OrderStatus != types.OrderCancelled {
		return nil, api.Validationf("order %s cannot be refunded while %s", order.OrderID, order.OrderStatus)
	}
	if order.Payment != nil && order.Payment.RefundStatus != "" && order.Payment.RefundStatus != types.RefundNone {
		return nil, api.Validationf("refund already %s for order %s", order.Payment.RefundStatus, order.OrderID)
	}
	if reason == "" {
		reason = "Order cancelled by user"
	}

	var result RefundResult
	body := map[string]string{"reason": reason}
	if err := c.api.Post(ctx, "refund/"+order.OrderID+"/", body, &result); err != nil {
		return nil, fmt.Errorf("request refund for %s: %w", order.OrderID, err)
	}
	result.ExpectedBy = ExpectedCompletion(result.InitiatedAt)

	metrics.RefundsRequestedTotal.Inc()
	c.logger.Info("refund requested",
		zap.String("order_id", order.OrderID),
		zap.String("status", string(result.RefundStatus)),
		zap.String("amount", result.RefundAmount),
	)
	return &result, nil
}

// ExpectedCompletion is the advertised settlement date for a refund.
func ExpectedCompletion(initiatedAt time.Time) time.Time {
	return initiatedAt.Add(RefundSettlementWindow)
}

// CanRequestRefund mirrors the RequestRefund guards for rendering the
// button state without issuing a request.
func CanRequestRefund(order types.Order) bool {
	if order.OrderStatus != types.OrderPharmacyRejected && order.OrderStatus != types.OrderCancelled {
		return false
	}
	if order.Payment == nil {
		return true
	}
	return order.Payment.RefundStatus == "" || order.Payment.RefundStatus == types.RefundNone
}
