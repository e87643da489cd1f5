// Package sched runs the pipeline once a day at a configured local time.
package sched

import (
	"context"
	"fmt"
	"time"

	"paperwatch/internal/logger"
)

// Runner is the work executed on each tick.
type Runner func(ctx context.Context)

// Scheduler fires a Runner daily at a fixed HH:MM.
type Scheduler struct {
	hour, minute int
	runOnStart   bool
	run          Runner
}

// New parses at ("HH:MM", 24-hour) and builds a scheduler.
func New(at string, runOnStart bool, run Runner) (*Scheduler, error) {
	parsed, err := time.Parse("15:04", at)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule time %q: %w", at, err)
	}
	return &Scheduler{
		hour:       parsed.Hour(),
		minute:     parsed.Minute(),
		runOnStart: runOnStart,
		run:        run,
	}, nil
}

// Start blocks, firing the runner daily until the context is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.runOnStart {
		logger.Info("Running immediately on start")
		s.run(ctx)
	}

	for {
		next := nextRun(time.Now(), s.hour, s.minute)
		logger.Info("Next run scheduled", "at", next.Format(time.RFC3339))

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
			s.run(ctx)
		}
	}
}

// nextRun is the next occurrence of hh:mm strictly after now.
func nextRun(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
