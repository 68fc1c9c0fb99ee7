package service

import (
	"context"
	"time"

	"github.com/cuisports/sportsreg/internal/logger"
	"github.com/cuisports/sportsreg/internal/metrics"
	"github.com/cuisports/sportsreg/internal/model"
)

// Purger periodically evicts expired pending registrations.
type Purger struct {
	store    model.ExpiredPurger
	interval time.Duration
	logger   *logger.Logger
	metrics  *metrics.Metrics
}

// defaultPurgeInterval applies when the configured interval is not positive.
const defaultPurgeInterval = 5 * time.Minute

func NewPurger(store model.ExpiredPurger, interval time.Duration, logger *logger.Logger, m *metrics.Metrics) *Purger {
	if interval <= 0 {
		interval = defaultPurgeInterval
	}
	return &Purger{
		store:    store,
		interval: interval,
		logger:   logger,
		metrics:  m,
	}
}

// Run purges every interval until ctx is done.
func (p *Purger) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			p.PurgeOnce(ctx)
		}
	}
}

// PurgeOnce runs a single eviction pass and returns how many records were removed.
func (p *Purger) PurgeOnce(ctx context.Context) int64 {
	n, err := p.store.PurgeExpired(ctx)
	if err != nil {
		p.logger.Error("Purger service: failed to purge expired pending registrations",
			"error", err.Error())
		return 0
	}

	if n > 0 {
		p.metrics.AddPendingPurged(n)
		p.logger.Info("Purger service: purged expired pending registrations",
			"count", n)
	}

	return n
}
