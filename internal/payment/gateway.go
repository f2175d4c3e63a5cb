//go:generate mockgen -source ./gateway.go -destination=./mocks/gateway.go -package=payment_mocks
package payment

import (
	"context"
	"errors"
)

// ErrPaymentCancelled is returned by a Gateway when the customer dismisses
// the checkout without paying.
var ErrPaymentCancelled = errors.New("payment cancelled by user")

// CheckoutSession is what the backend hands us to open the gateway widget.
type CheckoutSession struct {
	GatewayOrderID string   `json:"razorpay_order_id"`
	KeyID          string   `json:"razorpay_key_id"`
	Amount         int64    `json:"amount"` // smallest currency unit
	Currency       string   `json:"currency"`
	OrderID        string   `json:"order_id,omitempty"`
	Receipt        string   `json:"receipt,omitempty"`
	OrderIDs       []string `json:"order_ids,omitempty"`
}

// GatewayResponse is the signed confirmation the widget produces on success.
type GatewayResponse struct {
	GatewayOrderID string `json:"razorpay_order_id"`
	PaymentID      string `json:"razorpay_payment_id"`
	Signature      string `json:"razorpay_signature"`
}

type Customer struct {
	Name  string
	Email string
	Phone string
}

// Gateway is the embedded third-party checkout. Collect blocks until the
// customer completes or dismisses the widget.
type Gateway interface {
	Collect(ctx context.Context, session CheckoutSession, customer Customer) (*GatewayResponse, error)
}
