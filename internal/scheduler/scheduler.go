package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/i474232898/weather-dashboard/internal/clock"
)

// Refresher re-fetches every live panel.
type Refresher interface {
	RefreshAll(ctx context.Context)
}

// Broadcaster pushes a message to connected clients.
type Broadcaster interface {
	Broadcast(msgType string, data any)
}

// Scheduler drives the live clock and the periodic panel refresh.
type Scheduler struct {
	scheduler *gocron.Scheduler
	clock     *clock.Clock
	refresher Refresher
	out       Broadcaster
	interval  time.Duration
	timeout   time.Duration
	logger    *zap.Logger
}

// New creates a Scheduler. An interval of zero disables the refresh job.
func New(c *clock.Clock, refresher Refresher, out Broadcaster, interval time.Duration, logger *zap.Logger) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		clock:     c,
		refresher: refresher,
		out:       out,
		interval:  interval,
		timeout:   2 * time.Minute,
		logger:    logger.Named("scheduler"),
	}
}

// Start schedules the jobs and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if _, err := s.scheduler.Every(1).Second().Do(s.tick); err != nil {
		return err
	}

	if s.interval <= 0 {
		s.logger.Info("scheduled refresh disabled")
	} else {
		// the first refresh happens on load
		if _, err := s.scheduler.Every(s.interval).WaitForSchedule().Do(s.refresh); err != nil {
			return err
		}
		s.logger.Info("scheduled refresh enabled", zap.Duration("interval", s.interval))
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

func (s *Scheduler) tick() {
	s.out.Broadcast("clock.tick", s.clock.Now())
}

func (s *Scheduler) refresh() {
	s.logger.Debug("running scheduled refresh")

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	s.refresher.RefreshAll(ctx)
	s.logger.Debug("scheduled refresh finished", zap.Duration("took", time.Since(start)))
}
