package orders

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/swiftmeds/client/internal/api"
	"github.com/swiftmeds/client/types"
)

type tokenStub struct{}

func (tokenStub) Token() string     { return "test-token" }
func (tokenStub) Invalidate() error { return nil }

// fakeBackend records create-order requests and answers like the real API.
type fakeBackend struct {
	router   *mux.Router
	requests atomic.Int32
	created  []CreateRequest
}

func newFakeBackend(t *testing.T) (*fakeBackend, *Client) {
	t.Helper()
	fb := &fakeBackend{router: mux.NewRouter()}

	nextID := 0
	fb.router.HandleFunc("/create-order/", func(w http.ResponseWriter, r *http.Request) {
		fb.requests.Add(1)

		var req CreateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		fb.created = append(fb.created, req)

		orderID := req.OrderID
		if orderID == "" {
			orderID = "ORD-SINGLE01"
		}
		nextID++
		json.NewEncoder(w).Encode(types.Order{
			ID:          nextID,
			OrderID:     orderID,
			Quantity:    req.Quantity,
			OrderStatus: types.OrderPendingPharmacy,
		})
	}).Methods(http.MethodPost)

	srv := httptest.NewServer(fb.router)
	t.Cleanup(srv.Close)

	client := New(api.New(srv.URL, tokenStub{}, zap.NewNop()), zap.NewNop())
	return fb, client
}

func TestCreateRejectsInvalidQuantityLocally(t *testing.T) {
	fb, client := newFakeBackend(t)

	_, err := client.Create(context.Background(), CreateRequest{MedicineID: 1, PharmacyID: 1, Quantity: 0})
	require.Error(t, err)

	var verr *api.ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Equal(t, int32(0), fb.requests.Load(), "invalid request must never reach the network")
}

func TestCreateRejectsDeliveryWithoutAddress(t *testing.T) {
	fb, client := newFakeBackend(t)

	_, err := client.Create(context.Background(), CreateRequest{
		MedicineID: 1, PharmacyID: 1, Quantity: 2,
		DeliveryRequired: true, DeliveryAddress: "   ",
	})
	require.Error(t, err)
	assert.Equal(t, int32(0), fb.requests.Load())
}

func TestCheckoutSharesOneOrderID(t *testing.T) {
	fb, client := newFakeBackend(t)

	items := []CartItem{
		{MedicineID: 1, PharmacyID: 1, Quantity: 2},
		{MedicineID: 2, PharmacyID: 1, Quantity: 1},
		{MedicineID: 3, PharmacyID: 2, Quantity: 5},
	}

	result, err := client.Checkout(context.Background(), items, DeliveryInfo{})
	require.NoError(t, err)

	assert.Equal(t, int32(3), fb.requests.Load(), "one create call per cart item")
	assert.Len(t, result.Orders, 3)
	assert.Equal(t, []string{result.SharedID}, result.OrderIDs)
	for _, req := range fb.created {
		assert.Equal(t, result.SharedID, req.OrderID)
	}
}

func TestCheckoutAbortsOnFirstFailure(t *testing.T) {
	router := mux.NewRouter()
	var calls atomic.Int32
	router.HandleFunc("/create-order/", func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 2 {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"Insufficient stock"}`))
			return
		}
		json.NewEncoder(w).Encode(types.Order{ID: 1, OrderID: "ORD-TEST0001"})
	}).Methods(http.MethodPost)

	srv := httptest.NewServer(router)
	defer srv.Close()
	client := New(api.New(srv.URL, tokenStub{}, zap.NewNop()), zap.NewNop())

	items := []CartItem{
		{MedicineID: 1, PharmacyID: 1, Quantity: 1},
		{MedicineID: 2, PharmacyID: 1, Quantity: 1},
		{MedicineID: 3, PharmacyID: 1, Quantity: 1},
	}

	_, err := client.Checkout(context.Background(), items, DeliveryInfo{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Insufficient stock")
	assert.Equal(t, int32(2), calls.Load(), "remaining items are not created after a failure")
}

func TestCheckoutValidatesBeforeAnyRequest(t *testing.T) {
	fb, client := newFakeBackend(t)

	items := []CartItem{
		{MedicineID: 1, PharmacyID: 1, Quantity: 1},
		{MedicineID: 2, PharmacyID: 1, Quantity: 0},
	}

	_, err := client.Checkout(context.Background(), items, DeliveryInfo{})
	require.Error(t, err)
	assert.Equal(t, int32(0), fb.requests.Load())

	_, err = client.Checkout(context.Background(), nil, DeliveryInfo{})
	require.Error(t, err)
	assert.Equal(t, int32(0), fb.requests.Load())
}

func TestNewOrderIDFormat(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		id := NewOrderID()
		assert.Len(t, id, 12)
		assert.True(t, strings.HasPrefix(id, "ORD-"))
		assert.Equal(t, strings.ToUpper(id), id)
		seen[id] = true
	}
	assert.Greater(t, len(seen), 1)
}

func TestPharmacyDecisionBodies(t *testing.T) {
	var bodies []map[string]string
	router := mux.NewRouter()
	router.HandleFunc("/pharmacy-accept-order/{orderID}/", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		bodies = append(bodies, body)
		fmt.Fprintf(w, `{"message":"ok","order_id":%q,"items_count":2}`, mux.Vars(r)["orderID"])
	}).Methods(http.MethodPost)

	srv := httptest.NewServer(router)
	defer srv.Close()
	client := New(api.New(srv.URL, tokenStub{}, zap.NewNop()), zap.NewNop())

	require.NoError(t, client.PharmacyAccept(context.Background(), "ORD-AAAA1111"))
	require.NoError(t, client.PharmacyReject(context.Background(), "ORD-AAAA1111", "out of stock"))

	require.Len(t, bodies, 2)
	assert.Equal(t, map[string]string{"action": "accept"}, bodies[0])
	assert.Equal(t, map[string]string{"action": "reject", "reason": "out of stock"}, bodies[1])
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	fb, client := newFakeBackend(t)

	_, err := client.UpdateStatus(context.Background(), 1, types.OrderStatus("shipped"))
	require.Error(t, err)

	var verr *api.ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Equal(t, int32(0), fb.requests.Load())
}

func TestGroupByOrderID(t *testing.T) {
	list := []types.Order{
		{ID: 1, OrderID: "ORD-A"},
		{ID: 2, OrderID: "ORD-B"},
		{ID: 3, OrderID: "ORD-A"},
		{ID: 4, OrderID: "ORD-C"},
	}

	groups := GroupByOrderID(list)
	require.Len(t, groups, 3)
	assert.Equal(t, "ORD-A", groups[0].OrderID)
	assert.Len(t, groups[0].Items, 2)
	assert.Equal(t, "ORD-B", groups[1].OrderID)
	assert.Equal(t, "ORD-C", groups[2].OrderID)
}
