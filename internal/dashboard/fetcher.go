// Package dashboard assembles per-role view data. Independent feeds are
// fetched concurrently and awaited jointly; whichever response lands last
// wins, and the next snapshot supersedes it entirely.
package dashboard

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/swiftmeds/client/internal/api"
	"github.com/swiftmeds/client/types"
)

type Fetcher struct {
	api    *api.Client
	logger *zap.Logger
}

func New(apiClient *api.Client, logger *zap.Logger) *Fetcher {
	return &Fetcher{api: apiClient, logger: logger}
}

// Snapshot is the admin view: every core feed at one logical moment.
type Snapshot struct {
	Orders     []types.Order
	Deliveries []types.Delivery
	Users      []types.User
	Pharmacies []types.Pharmacy
	Medicines  []types.Medicine
	FetchedAt  time.Time
}

// Snapshot fetches all admin feeds concurrently and fails as a unit: one
// failed feed invalidates the whole snapshot rather than rendering a
// partially stale view as current.
func (f *Fetcher) Snapshot(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return f.api.Get(ctx, "orders/", &snap.Orders) })
	g.Go(func() error { return f.api.Get(ctx, "deliveries/", &snap.Deliveries) })
	g.Go(func() error { return f.api.Get(ctx, "users/", &snap.Users) })
	g.Go(func() error { return f.api.Get(ctx, "pharmacies/", &snap.Pharmacies) })
	g.Go(func() error { return f.api.Get(ctx, "medicines/", &snap.Medicines) })

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fetch dashboard snapshot: %w", err)
	}

	snap.FetchedAt = time.Now()
	f.logger.Debug("dashboard snapshot fetched",
		zap.Int("orders", len(snap.Orders)),
		zap.Int("deliveries", len(snap.Deliveries)),
	)
	return snap, nil
}

type PharmacyStats struct {
	TotalMedicines int    `json:"total_medicines"`
	LowStockItems  int    `json:"low_stock_items"`
	TodayOrders    int    `json:"today_orders"`
	Revenue        string `json:"revenue"`
}

type PharmacyDashboard struct {
	Stats        PharmacyStats            `json:"stats"`
	Medicines    []types.PharmacyMedicine `json:"medicines"`
	RecentOrders []struct {
		ID          int    `json:"id"`
		OrderID     string `json:"order_id"`
		TotalAmount string `json:"total_amount"`
		Status      string `json:"status"`
	} `json:"recent_orders"`
}

func (f *Fetcher) Pharmacy(ctx context.Context) (*PharmacyDashboard, error) {
	var out PharmacyDashboard
	if err := f.api.Get(ctx, "pharmacy-dashboard/", &out); err != nil {
		return nil, fmt.Errorf("fetch pharmacy dashboard: %w", err)
	}
	return &out, nil
}

type DeliveryStats struct {
	ActiveDeliveries int    `json:"active_deliveries"`
	CompletedToday   int    `json:"completed_today"`
	PendingOrders    int    `json:"pending_orders"`
	AvgDeliveryTime  string `json:"avg_delivery_time"`
}

type DeliveryDashboard struct {
	Stats            DeliveryStats    `json:"stats"`
	ActiveDeliveries []types.Delivery `json:"active_deliveries"`
}

func (f *Fetcher) Delivery(ctx context.Context) (*DeliveryDashboard, error) {
	var out DeliveryDashboard
	if err := f.api.Get(ctx, "delivery-dashboard/", &out); err != nil {
		return nil, fmt.Errorf("fetch delivery dashboard: %w", err)
	}
	return &out, nil
}

// PendingDeliveryOrders is the open pool a courier can claim from.
func (f *Fetcher) PendingDeliveryOrders(ctx context.Context) ([]types.Order, error) {
	var out []types.Order
	if err := f.api.Get(ctx, "pending-delivery-orders/", &out); err != nil {
		return nil, fmt.Errorf("fetch pending delivery orders: %w", err)
	}
	return out, nil
}
