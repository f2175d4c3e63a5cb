package payment

import (
	"bufio"
	"context"
	"fmt"
	"io"
)

// ConsoleGateway drives checkout over the terminal. It prints what the
// hosted widget would show and reads the signed confirmation back. An empty
// payment id means the customer walked away, which maps to
// ErrPaymentCancelled exactly like dismissing the widget.
type ConsoleGateway struct {
	in  *bufio.Scanner
	out io.Writer
}

func NewConsoleGateway(in *bufio.Scanner, out io.Writer) *ConsoleGateway {
	return &ConsoleGateway{in: in, out: out}
}

func (g *ConsoleGateway) Collect(ctx context.Context, session CheckoutSession, customer Customer) (*GatewayResponse, error) {
	fmt.Fprintf(g.out, "Checkout %s: %d %s (gateway order %s)\n",
		customer.Email, session.Amount, session.Currency, session.GatewayOrderID)

	paymentID, err := g.readLine("payment id (empty to cancel): ")
	if err != nil {
		return nil, err
	}
	if paymentID == "" {
		return nil, ErrPaymentCancelled
	}

	signature, err := g.readLine("signature: ")
	if err != nil {
		return nil, err
	}

	return &GatewayResponse{
		GatewayOrderID: session.GatewayOrderID,
		PaymentID:      paymentID,
		Signature:      signature,
	}, nil
}

func (g *ConsoleGateway) readLine(prompt string) (string, error) {
	fmt.Fprint(g.out, prompt)
	if !g.in.Scan() {
		if err := g.in.Err(); err != nil {
			return "", err
		}
		return "", ErrPaymentCancelled
	}
	return g.in.Text(), nil
}
