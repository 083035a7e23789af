package products

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper permanently purges trashed products whose retention window has
// elapsed. It runs inside the server process on a fixed interval.
type Sweeper struct {
	service   *Service
	retention time.Duration
	interval  time.Duration
	logger    *slog.Logger
}

func NewSweeper(service *Service, retention, interval time.Duration, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		service:   service,
		retention: retention,
		interval:  interval,
		logger:    logger,
	}
}

// Run sweeps once immediately, then on every tick until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// sweep purges every expired product, continuing past individual failures so
// one bad record cannot wedge the whole trash.
func (s *Sweeper) sweep(ctx context.Context) {
	trash, err := s.service.ListTrash(ctx)
	if err != nil {
		s.logger.Error("trash sweep failed to list trash", "error", err)
		return
	}

	now := time.Now().UTC()
	purged := 0
	for i := range trash {
		p := &trash[i]
		if !p.TrashExpired(now, s.retention) {
			continue
		}
		if err := s.service.Purge(ctx, p.ID); err != nil {
			s.logger.Error("trash sweep failed to purge product",
				"error", err, "product_id", p.ID, "name", p.Name)
			continue
		}
		purged++
	}

	if purged > 0 {
		s.logger.Info("trash sweep purged expired products", "purged", purged)
	}
}
