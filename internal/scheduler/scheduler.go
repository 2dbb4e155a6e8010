package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/agriplanner/internal/config"
)

const syncTimeout = 2 * time.Minute

// PriceSyncer refreshes stored price quotes from the external source.
type PriceSyncer interface {
	SyncFromSource(ctx context.Context) (int, error)
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron     *cron.Cron
	schedule string
	syncer   PriceSyncer
	logger   *zap.Logger
}

// NewScheduler creates a scheduler running in the configured timezone.
func NewScheduler(cfg config.PricingConfig, syncer PriceSyncer, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		schedule: cfg.SyncSchedule,
		syncer:   syncer,
		logger:   logger,
	}, nil
}

// Start registers the price sync job and starts the scheduler.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler", zap.String("price_sync", s.schedule))

	if _, err := s.cron.AddFunc(s.schedule, s.syncPrices); err != nil {
		return fmt.Errorf("schedule price sync %q: %w", s.schedule, err)
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

// RunNow performs one price sync immediately, as done at startup.
func (s *Scheduler) RunNow() {
	s.syncPrices()
}

func (s *Scheduler) syncPrices() {
	ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
	defer cancel()

	stored, err := s.syncer.SyncFromSource(ctx)
	if err != nil {
		s.logger.Error("price sync failed", zap.Error(err))
		return
	}

	s.logger.Info("price sync finished", zap.Int("stored", stored))
}
