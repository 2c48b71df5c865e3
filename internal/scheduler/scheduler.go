package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/google/uuid"

	"github.com/chuvadata/precip-aggregation/internal/observability"
	"github.com/chuvadata/precip-aggregation/internal/precip"
)

// Warmer periodically rebuilds the hourly outlook for every catalog city so
// interactive requests hit a warm cache. Request paths never depend on it;
// a dead warmer only means colder caches.
type Warmer struct {
	scheduler *gocron.Scheduler
	service   *precip.Service
	cities    []string
	interval  time.Duration
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// New creates a Warmer over the named catalog cities.
func New(cities []string, interval time.Duration, service *precip.Service, logger *slog.Logger, metrics *observability.Metrics) *Warmer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Warmer{
		scheduler: gocron.NewScheduler(time.UTC),
		service:   service,
		cities:    cities,
		interval:  interval,
		logger:    logger,
		metrics:   metrics,
	}
}

// Start schedules the periodic warm job and starts the underlying scheduler.
func (w *Warmer) Start() error {
	if len(w.cities) == 0 || w.interval <= 0 {
		w.logger.Info("cache warmer disabled", "cities", len(w.cities), "interval", w.interval)
		return nil
	}

	_, err := w.scheduler.Every(w.interval).Do(w.runOnce)
	if err != nil {
		return err
	}

	w.scheduler.StartAsync()
	return nil
}

// runOnce refreshes every city concurrently. Cities are independent units of
// work; one failing fetch does not hold up the rest.
func (w *Warmer) runOnce() {
	runID := uuid.NewString()
	logger := w.logger.With("run_id", runID)
	logger.Info("cache warm run started", "cities", len(w.cities))

	var wg sync.WaitGroup
	for _, city := range w.cities {
		city := city
		wg.Add(1)
		go func() {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			_, err := w.service.HourlyOutlook(ctx, precip.OutlookRequest{City: city, Refresh: true})
			if err != nil {
				logger.Warn("cache warm fetch failed", "city", city, "error", err)
			}
		}()
	}
	wg.Wait()

	if w.metrics != nil {
		w.metrics.SchedulerRuns.Inc()
	}
	logger.Info("cache warm run completed")
}

// Stop stops the scheduler and cancels any future jobs.
func (w *Warmer) Stop() {
	if w.scheduler != nil {
		w.scheduler.Stop()
	}
}
