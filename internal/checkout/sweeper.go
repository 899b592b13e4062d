package checkout

import (
	"context"
	"log"
	"time"
)

// Sweeper expires stale pending orders. An abandoned gateway session
// produces no webhook, so without this the order would stay pending
// forever. Pending orders hold no stock, so failing them needs no
// compensation.
type Sweeper struct {
	Orders   Orders
	Interval time.Duration
	MaxAge   time.Duration
}

func NewSweeper(orders Orders, interval, maxAge time.Duration) *Sweeper {
	return &Sweeper{Orders: orders, Interval: interval, MaxAge: maxAge}
}

// Run sweeps on every tick until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

func (s *Sweeper) SweepOnce(ctx context.Context) {
	swept, err := s.Orders.ExpirePending(ctx, time.Now().Add(-s.MaxAge))
	if err != nil {
		log.Printf("Pending order sweep failed: %v", err)
		return
	}
	if swept > 0 {
		log.Printf("Swept %d stale pending orders to failed", swept)
	}
}
