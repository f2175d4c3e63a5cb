// Package delivery runs the courier side of an order: assignment, the
// accept/reject decision, and the OTP handshake proving physical handoff.
package delivery

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/swiftmeds/client/internal/api"
	"github.com/swiftmeds/client/types"
)

// DefaultRejectReason is stamped on a rejection when the courier gives none.
const DefaultRejectReason = "Not available for delivery"

// OTPCache remembers which orders already got an OTP so the UI can say
// "resend" instead of "send" across restarts. It is a UX cache; the server
// holds the actual code.
type OTPCache interface {
	OTPSent(orderID string) bool
	MarkOTPSent(orderID string) error
	ClearOTPSent(orderID string) error
}

type Client struct {
	api    *api.Client
	cache  OTPCache
	logger *zap.Logger
}

func New(apiClient *api.Client, cache OTPCache, logger *zap.Logger) *Client {
	return &Client{api: apiClient, cache: cache, logger: logger}
}

func (c *Client) All(ctx context.Context) ([]types.Delivery, error) {
	var out []types.Delivery
	if err := c.api.Get(ctx, "deliveries/", &out); err != nil {
		return nil, fmt.Errorf("fetch deliveries: %w", err)
	}
	return out, nil
}

// Assign attaches a driver to an unclaimed delivery. Refused locally when
// the fetched copy already shows a driver; the backend re-checks anyway.
func (c *Client) Assign(ctx context.Context, d types.Delivery, driverID int) (*types.Delivery, error) {
	if d.Driver != nil {
		return nil, api.Validationf("delivery %d already has a driver assigned", d.ID)
	}

	var updated types.Delivery
	body := map[string]int{"driver": driverID}
	if err := c.api.Patch(ctx, fmt.Sprintf("deliveries/%d/", d.ID), body, &updated); err != nil {
		return nil, fmt.Errorf("assign delivery %d: %w", d.ID, err)
	}
	c.logger.Info("driver assigned",
		zap.Int("delivery_id", d.ID),
		zap.Int("driver_id", driverID),
	)
	return &updated, nil
}

// Accept takes a delivery job that was assigned to this courier. The order
// moves to out_for_delivery server-side.
func (c *Client) Accept(ctx context.Context, orderID string) error {
	body := map[string]string{"action": "accept"}
	if err := c.api.Post(ctx, "delivery-accept-order/"+orderID+"/", body, nil); err != nil {
		return fmt.Errorf("accept delivery %s: %w", orderID, err)
	}
	c.logger.Info("delivery accepted", zap.String("order_id", orderID))
	return nil
}

// Reject declines an assigned job, freeing the slot for another courier.
func (c *Client) Reject(ctx context.Context, orderID, reason string) error {
	if reason == "" {
		reason = DefaultRejectReason
	}
	body := map[string]string{"action": "reject", "reason": reason}
	if err := c.api.Post(ctx, "delivery-accept-order/"+orderID+"/", body, nil); err != nil {
		return fmt.Errorf("reject delivery %s: %w", orderID, err)
	}
	c.logger.Info("delivery rejected", zap.String("order_id", orderID), zap.String("reason", reason))
	return nil
}

// Claim grabs an order from the open delivery pool before any assignment.
func (c *Client) Claim(ctx context.Context, orderID string) error {
	if err := c.api.Post(ctx, "accept-delivery-order/"+orderID+"/", nil, nil); err != nil {
		return fmt.Errorf("claim delivery %s: %w", orderID, err)
	}
	c.logger.Info("delivery claimed", zap.String("order_id", orderID))
	return nil
}

// UpdateStatus moves the delivery along its chain. The server arbitrates; a
// transition the local copy says is illegal is still sent, just logged,
// because the copy may be stale.
func (c *Client) UpdateStatus(ctx context.Context, d types.Delivery, target types.DeliveryStatus) (*types.Delivery, error) {
	if !target.Valid() {
		return nil, api.Validationf("unknown delivery status %q", target)
	}
	if !d.Status.CanTransition(target) {
		c.logger.Warn("requesting transition the local copy considers illegal",
			zap.Int("delivery_id", d.ID),
			zap.String("from", string(d.Status)),
			zap.String("to", string(target)),
		)
	}

	var updated types.Delivery
	body := map[string]types.DeliveryStatus{"status": target}
	if err := c.api.Patch(ctx, fmt.Sprintf("deliveries/%d/", d.ID), body, &updated); err != nil {
		return nil, fmt.Errorf("update delivery %d: %w", d.ID, err)
	}
	return &updated, nil
}

type OTPResult struct {
	Message string `json:"message"`
	Sent    bool   `json:"otp_sent"`
	// Existing means a still-valid code was reused instead of minting a new
	// one; the customer should check the notification they already have.
	Existing bool `json:"existing_otp"`
	// Resend means this client asked before. Set locally from the cache.
	Resend bool `json:"-"`
}

// GenerateOTP asks the backend to mint a six-digit code and notify the
// customer. Refused until the delivery has at least been assigned; there
// is no courier to hand the code to before that. A new code invalidates
// any outstanding one, so any locally remembered code is worthless
// afterwards.
func (c *Client) GenerateOTP(ctx context.Context, d types.Delivery) (*OTPResult, error) {
	if !d.Status.AtLeast(types.DeliveryAssigned) {
		return nil, api.Validationf("OTP cannot be sent while delivery %d is %s", d.ID, d.Status)
	}

	orderID := d.Order.OrderID
	resend := c.cache.OTPSent(orderID)

	var result OTPResult
	if err := c.api.Post(ctx, "generate-delivery-otp/"+orderID+"/", nil, &result); err != nil {
		return nil, fmt.Errorf("generate otp for %s: %w", orderID, err)
	}
	result.Resend = resend

	if err := c.cache.MarkOTPSent(orderID); err != nil {
		c.logger.Error("failed to persist otp-sent marker", zap.Error(err))
	}
	c.logger.Info("otp requested",
		zap.String("order_id", orderID),
		zap.Bool("resend", resend),
		zap.Bool("existing", result.Existing),
	)
	return &result, nil
}

// VerifyOTP submits the code the customer read out. Malformed codes never
// reach the network. Success is only believed on a 2xx; a consumed code
// cannot be replayed.
func (c *Client) VerifyOTP(ctx context.Context, orderID, code string) error {
	if !types.ValidOTP(code) {
		return api.Validationf("OTP must be exactly 6 digits")
	}

	body := map[string]string{"otp": code}
	if err := c.api.Post(ctx, "verify-delivery-otp/"+orderID+"/", body, nil); err != nil {
		return fmt.Errorf("verify otp for %s: %w", orderID, err)
	}

	if err := c.cache.ClearOTPSent(orderID); err != nil {
		c.logger.Error("failed to clear otp-sent marker", zap.Error(err))
	}
	c.logger.Info("delivery confirmed via otp", zap.String("order_id", orderID))
	return nil
}

// MarkComplete is the no-OTP completion path. Once an OTP is outstanding
// for the order this client refuses the shortcut and requires VerifyOTP;
// the server remains the final arbiter either way.
func (c *Client) MarkComplete(ctx context.Context, orderID string) error {
	if c.cache.OTPSent(orderID) {
		return api.Validationf("an OTP was sent for order %s; confirm it with verify instead", orderID)
	}

	if err := c.api.Post(ctx, "mark-delivery-complete/"+orderID+"/", nil, nil); err != nil {
		return fmt.Errorf("complete delivery %s: %w", orderID, err)
	}
	c.logger.Info("delivery completed without otp", zap.String("order_id", orderID))
	return nil
}
