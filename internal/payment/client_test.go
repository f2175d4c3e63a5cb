package payment_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/swiftmeds/client/internal/api"
	"github.com/swiftmeds/client/internal/payment"
	payment_mocks "github.com/swiftmeds/client/internal/payment/mocks"
	"github.com/swiftmeds/client/types"
)

type tokenStub struct{}

func (tokenStub) Token() string     { return "test-token" }
func (tokenStub) Invalidate() error { return nil }

func TestPayDismissedWidgetLeavesOrderUntouched(t *testing.T) {
	ctrl := gomock.NewController(t)

	var verifyCalls atomic.Int32
	router := mux.NewRouter()
	router.HandleFunc("/create-razorpay-order/{orderID}/", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(payment.CheckoutSession{
			GatewayOrderID: "rzp_123",
			Amount:         45000,
			Currency:       "INR",
		})
	}).Methods(http.MethodPost)
	router.HandleFunc("/verify-razorpay-payment/{orderID}/", func(w http.ResponseWriter, r *http.Request) {
		verifyCalls.Add(1)
		w.Write([]byte(`{"message":"ok"}`))
	}).Methods(http.MethodPost)

	srv := httptest.NewServer(router)
	defer srv.Close()

	gateway := payment_mocks.NewMockGateway(ctrl)
	gateway.EXPECT().
		Collect(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, payment.ErrPaymentCancelled)

	client := payment.New(api.New(srv.URL, tokenStub{}, zap.NewNop()), gateway, zap.NewNop())

	_, err := client.Pay(context.Background(), "ORD-AAAA1111", payment.Customer{Email: "u@example.com"})
	require.Error(t, err)
	assert.ErrorIs(t, err, payment.ErrPaymentCancelled)
	assert.Equal(t, int32(0), verifyCalls.Load(), "verification must not run after a dismissal")
}

func TestPayForwardsConfirmationToVerify(t *testing.T) {
	ctrl := gomock.NewController(t)

	var gotVerify payment.GatewayResponse
	router := mux.NewRouter()
	router.HandleFunc("/create-razorpay-order/{orderID}/", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(payment.CheckoutSession{
			GatewayOrderID: "rzp_123",
			KeyID:          "key_test",
			Amount:         45000,
			Currency:       "INR",
		})
	}).Methods(http.MethodPost)
	router.HandleFunc("/verify-razorpay-payment/{orderID}/", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotVerify))
		w.Write([]byte(`{"message":"Payment successful","transaction_id":"pay_789"}`))
	}).Methods(http.MethodPost)

	srv := httptest.NewServer(router)
	defer srv.Close()

	gateway := payment_mocks.NewMockGateway(ctrl)
	gateway.EXPECT().
		Collect(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, session payment.CheckoutSession, _ payment.Customer) (*payment.GatewayResponse, error) {
			assert.Equal(t, "rzp_123", session.GatewayOrderID)
			assert.Equal(t, int64(45000), session.Amount)
			return &payment.GatewayResponse{
				GatewayOrderID: session.GatewayOrderID,
				PaymentID:      "pay_789",
				Signature:      "sig_abc",
			}, nil
		})

	client := payment.New(api.New(srv.URL, tokenStub{}, zap.NewNop()), gateway, zap.NewNop())

	result, err := client.Pay(context.Background(), "ORD-AAAA1111", payment.Customer{Email: "u@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "pay_789", result.TransactionID)
	assert.Equal(t, "rzp_123", gotVerify.GatewayOrderID)
	assert.Equal(t, "sig_abc", gotVerify.Signature)
}

func TestPayCartSingleGatewayTransaction(t *testing.T) {
	ctrl := gomock.NewController(t)

	var gotCreate, gotVerify map[string]any
	router := mux.NewRouter()
	router.HandleFunc("/cart/create-razorpay-order/", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotCreate))
		json.NewEncoder(w).Encode(payment.CheckoutSession{
			GatewayOrderID: "rzp_cart",
			Amount:         90000,
			Currency:       "INR",
		})
	}).Methods(http.MethodPost)
	router.HandleFunc("/cart/verify-razorpay-payment/", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotVerify))
		w.Write([]byte(`{"message":"ok","transaction_id":"pay_cart","orders":["ORD-A","ORD-B"]}`))
	}).Methods(http.MethodPost)

	srv := httptest.NewServer(router)
	defer srv.Close()

	gateway := payment_mocks.NewMockGateway(ctrl)
	gateway.EXPECT().
		Collect(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&payment.GatewayResponse{GatewayOrderID: "rzp_cart", PaymentID: "pay_cart", Signature: "s"}, nil).
		Times(1)

	client := payment.New(api.New(srv.URL, tokenStub{}, zap.NewNop()), gateway, zap.NewNop())

	result, err := client.PayCart(context.Background(), []string{"ORD-A", "ORD-B"}, payment.Customer{})
	require.NoError(t, err)
	assert.Equal(t, []string{"ORD-A", "ORD-B"}, result.Orders)
	assert.Equal(t, []any{"ORD-A", "ORD-B"}, gotCreate["order_ids"])
	assert.Equal(t, []any{"ORD-A", "ORD-B"}, gotVerify["order_ids"])
	assert.Equal(t, "pay_cart", gotVerify["razorpay_payment_id"])
}

func TestPayCartEmptyRejectedLocally(t *testing.T) {
	ctrl := gomock.NewController(t)
	gateway := payment_mocks.NewMockGateway(ctrl)

	client := payment.New(api.New("http://unreachable.invalid", tokenStub{}, zap.NewNop()), gateway, zap.NewNop())

	_, err := client.PayCart(context.Background(), nil, payment.Customer{})
	require.Error(t, err)

	var verr *api.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func refundBackend(t *testing.T, initiatedAt time.Time) *payment.Client {
	t.Helper()
	router := mux.NewRouter()
	router.HandleFunc("/refund/{orderID}/", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"message":             "Refund initiated",
			"refund_status":       "initiated",
			"refund_amount":       "450.00",
			"refund_initiated_at": initiatedAt,
		})
	}).Methods(http.MethodPost)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	ctrl := gomock.NewController(t)
	return payment.New(api.New(srv.URL, tokenStub{}, zap.NewNop()), payment_mocks.NewMockGateway(ctrl), zap.NewNop())
}

func TestRequestRefundGuards(t *testing.T) {
	client := refundBackend(t, time.Now())

	tests := []struct {
		name  string
		order types.Order
	}{
		{"pending order", types.Order{OrderID: "ORD-A", OrderStatus: types.OrderPendingPharmacy}},
		{"delivered order", types.Order{OrderID: "ORD-A", OrderStatus: types.OrderDelivered}},
		{
			"refund already in flight",
			types.Order{
				OrderID:     "ORD-A",
				OrderStatus: types.OrderCancelled,
				Payment:     &types.Payment{RefundStatus: types.RefundProcessing},
			},
		},
		{
			"refund already completed",
			types.Order{
				OrderID:     "ORD-A",
				OrderStatus: types.OrderPharmacyRejected,
				Payment:     &types.Payment{RefundStatus: types.RefundCompleted},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.RequestRefund(context.Background(), tt.order, "")
			require.Error(t, err)

			var verr *api.ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}
}

func TestRequestRefundComputesExpectedCompletion(t *testing.T) {
	initiatedAt := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	client := refundBackend(t, initiatedAt)

	order := types.Order{
		OrderID:     "ORD-A",
		OrderStatus: types.OrderPharmacyRejected,
		Payment:     &types.Payment{RefundStatus: types.RefundNone},
	}

	result, err := client.RequestRefund(context.Background(), order, "wrong item")
	require.NoError(t, err)
	assert.Equal(t, types.RefundInitiated, result.RefundStatus)
	assert.Equal(t, "450.00", result.RefundAmount)
	assert.Equal(t, initiatedAt.Add(72*time.Hour), result.ExpectedBy)
}

func TestCanRequestRefund(t *testing.T) {
	assert.True(t, payment.CanRequestRefund(types.Order{OrderStatus: types.OrderCancelled}))
	assert.True(t, payment.CanRequestRefund(types.Order{
		OrderStatus: types.OrderPharmacyRejected,
		Payment:     &types.Payment{RefundStatus: types.RefundNone},
	}))
	assert.False(t, payment.CanRequestRefund(types.Order{OrderStatus: types.OrderDelivered}))
	assert.False(t, payment.CanRequestRefund(types.Order{
		OrderStatus: types.OrderCancelled,
		Payment:     &types.Payment{RefundStatus: types.RefundPending},
	}))
}
