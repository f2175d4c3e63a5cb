package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/swiftmeds/client/internal/metrics"
	"github.com/swiftmeds/client/types"
)

// Subscriber receives each reconciled snapshot after a poll completes.
type Subscriber func(batch []types.Notification)

// Poller fetches the notification feed on a fixed interval and on demand
// after mutating actions. There is no visibility throttling; the ticker
// runs until shutdown.
type Poller struct {
	client         *Client
	store          *Store
	subscriber     Subscriber
	logger         *zap.Logger
	interval       time.Duration
	refreshSignal  chan struct{}
	shutdownSignal chan struct{}
	wg             sync.WaitGroup
	stopOnce       sync.Once

	now func() time.Time
}

func NewPoller(client *Client, store *Store, interval time.Duration, subscriber Subscriber, logger *zap.Logger) *Poller {
	return &Poller{
		client:         client,
		store:          store,
		subscriber:     subscriber,
		logger:         logger,
		interval:       interval,
		refreshSignal:  make(chan struct{}, 1),
		shutdownSignal: make(chan struct{}),
		now:            time.Now,
	}
}

func (p *Poller) Run(ctx context.Context) {
	p.logger.Info("starting notification poller", zap.Duration("interval", p.interval))
	p.wg.Add(1)
	defer p.wg.Done()

	p.poll(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.poll(ctx)
		case <-p.refreshSignal:
			p.poll(ctx)
		case <-p.shutdownSignal:
			p.logger.Info("notification poller received shutdown signal, stopping")
			return
		case <-ctx.Done():
			p.logger.Info("notification poller context cancelled, stopping")
			return
		}
	}
}

// ForceRefresh schedules an immediate poll. Called after every mutating
// action; coalesces when one is already pending.
func (p *Poller) ForceRefresh() {
	select {
	case p.refreshSignal <- struct{}{}:
	default:
	}
}

func (p *Poller) Shutdown() {
	p.stopOnce.Do(func() {
		close(p.shutdownSignal)

		done := make(chan struct{})
		go func() {
			p.wg.Wait()
			close(done)
		}()
		select {
		case <-done:
			p.logger.Info("notification poller shutdown complete")
		case <-time.After(30 * time.Second):
			p.logger.Warn("notification poller shutdown timed out")
		}
	})
}

func (p *Poller) poll(ctx context.Context) {
	batch, err := p.client.Fetch(ctx)
	if err != nil {
		p.logger.Error("notification poll failed", zap.Error(err))
		return
	}

	kept := p.cleanup(ctx, batch)

	p.store.ReplaceAll(kept)
	metrics.PollCyclesTotal.Inc()
	metrics.UnreadNotifications.Set(float64(p.store.Unread()))

	if p.subscriber != nil {
		p.subscriber(kept)
	}
}

// cleanup deletes expired notices and returns the survivors. A failed
// delete is logged and the notice kept; housekeeping never blocks
// rendering.
func (p *Poller) cleanup(ctx context.Context, batch []types.Notification) []types.Notification {
	now := p.now()

	var expired []int
	kept := make([]types.Notification, 0, len(batch))
	for _, n := range batch {
		if Expired(n, now) {
			expired = append(expired, n.ID)
		} else {
			kept = append(kept, n)
		}
	}

	if len(expired) == 0 {
		return kept
	}

	if err := p.client.Delete(ctx, expired); err != nil {
		p.logger.Warn("notification cleanup failed", zap.Error(err), zap.Ints("ids", expired))
		return batch
	}

	metrics.NotificationsDeletedTotal.Add(float64(len(expired)))
	p.logger.Debug("expired notifications deleted", zap.Int("count", len(expired)))
	return kept
}
