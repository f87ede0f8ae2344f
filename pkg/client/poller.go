package client

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	// ScheduleInterval is how often schedule and progress are refreshed
	ScheduleInterval = 5 * time.Second
	// StatsInterval is how often admin requests and stats are refreshed
	StatsInterval = 10 * time.Second
)

// RefreshFunc loads one piece of remote state
type RefreshFunc func(ctx context.Context) error

// Poller runs the schedule and stats refresh loops independently of each other.
// A failed refresh is logged and retried on the next tick.
type Poller struct {
	schedule         RefreshFunc
	stats            RefreshFunc
	scheduleInterval time.Duration
	statsInterval    time.Duration
	logger           *logrus.Logger
}

// NewPoller creates a poller; either refresh may be nil to skip that loop
func NewPoller(schedule, stats RefreshFunc, logger *logrus.Logger) *Poller {
	return &Poller{
		schedule:         schedule,
		stats:            stats,
		scheduleInterval: ScheduleInterval,
		statsInterval:    StatsInterval,
		logger:           logger,
	}
}

// WithIntervals overrides the loop periods
func (p *Poller) WithIntervals(schedule, stats time.Duration) *Poller {
	p.scheduleInterval = schedule
	p.statsInterval = stats
	return p
}

// Run polls until ctx is cancelled
func (p *Poller) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	if p.schedule != nil {
		g.Go(func() error {
			p.loop(ctx, "schedule", p.scheduleInterval, p.schedule)
			return nil
		})
	}
	if p.stats != nil {
		g.Go(func() error {
			p.loop(ctx, "stats", p.statsInterval, p.stats)
			return nil
		})
	}

	return g.Wait()
}

func (p *Poller) loop(ctx context.Context, name string, interval time.Duration, refresh RefreshFunc) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := refresh(ctx); err != nil && ctx.Err() == nil {
			p.logger.WithFields(logrus.Fields{
				"loop":  name,
				"error": err.Error(),
			}).Warn("Refresh failed")
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
