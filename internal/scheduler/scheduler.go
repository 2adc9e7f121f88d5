package scheduler

import (
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/i474232898/ircweather/internal/weather"
)

// Scheduler periodically evicts expired snapshots from the cache.
type Scheduler struct {
	scheduler *gocron.Scheduler
	cache     weather.SnapshotCache
	interval  time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

// New creates a new Scheduler.
func New(cache weather.SnapshotCache, interval time.Duration, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		cache:     cache,
		interval:  interval,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Start schedules the sweep job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if s.cache == nil || s.interval <= 0 {
		s.logger.Info("cache sweep disabled")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).WaitForSchedule().Do(s.sweep)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

func (s *Scheduler) sweep() {
	removed := s.cache.Sweep(s.now())
	s.logger.Debug("snapshot cache swept", zap.Int("removed", removed))
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
