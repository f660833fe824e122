// Package scheduler runs the background refresh jobs: market-data series
// downloads and the catalog snapshot reload. Jobs never run mid-request;
// requests keep whatever snapshot and series were current when they
// started.
package scheduler

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"homeyield/server/internal/catalog"
	"homeyield/server/internal/marketdata"
)

// Scheduler manages periodic market-data refreshes and catalog reloads
type Scheduler struct {
	store    *marketdata.Store
	provider *catalog.Provider
	logger   *logrus.Logger
	cron     *cron.Cron
	jobMutex sync.Mutex // Ensures sequential job execution
}

// NewScheduler creates a new scheduler
func NewScheduler(store *marketdata.Store, provider *catalog.Provider, logger *logrus.Logger) *Scheduler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
		logger.SetLevel(logrus.InfoLevel)
	}

	return &Scheduler{
		store:    store,
		provider: provider,
		logger:   logger,
		cron:     cron.New(),
	}
}

// Start registers the refresh job on the given cron schedule and begins
// execution. The first refresh runs immediately in the background so the
// process does not serve week-old series after a long downtime.
func (s *Scheduler) Start(schedule string) error {
	if _, err := s.cron.AddFunc(schedule, s.runRefresh); err != nil {
		return fmt.Errorf("failed to register refresh schedule %q: %w", schedule, err)
	}
	s.cron.Start()

	go func() {
		s.logger.Info("Running startup market-data refresh")
		s.runRefresh()
		s.logger.Info("Startup market-data refresh completed")
	}()
	return nil
}

// runRefresh downloads fresh index and risk-free series, then reloads the
// catalog snapshot so new ingest rows become visible.
func (s *Scheduler) runRefresh() {
	s.jobMutex.Lock()
	defer s.jobMutex.Unlock()

	started := time.Now()
	ctx := context.Background()

	s.store.RefreshAll(ctx)

	if err := s.provider.Reload(); err != nil {
		s.logger.WithError(err).Error("Catalog reload failed")
		return
	}

	s.logger.WithField("elapsed", time.Since(started).String()).Info("Refresh job completed")
}

// Stop gracefully stops the scheduler, waiting for a running job to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
