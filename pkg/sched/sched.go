// Package sched runs the booking job on a fixed period. Invocations that
// overlap a still-running attempt queue on the session controller's lock
// rather than interleave, so the scheduler itself stays dumb: fire and let
// the controller serialize.
package sched

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// Logger is the logging contract the scheduler needs.
type Logger interface {
	Infof(format string, v ...interface{})
	Errorf(format string, v ...interface{})
}

// Scheduler fires a job every fixed interval.
type Scheduler struct {
	cron *cron.Cron
	log  Logger
}

// New builds a scheduler firing job every period. The first run happens
// after one full period, matching the underlying cron semantics.
func New(period time.Duration, job func(), log Logger) (*Scheduler, error) {
	if period <= 0 {
		return nil, fmt.Errorf("scheduler period must be positive, got %s", period)
	}

	c := cron.New()
	spec := fmt.Sprintf("@every %s", period)
	if _, err := c.AddFunc(spec, job); err != nil {
		return nil, fmt.Errorf("failed to schedule job: %w", err)
	}
	return &Scheduler{cron: c, log: log}, nil
}

// Start begins firing. Non-blocking.
func (s *Scheduler) Start() {
	s.log.Infof("scheduler started")
	s.cron.Start()
}

// Stop stops firing and waits for in-flight jobs to return.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Infof("scheduler stopped")
}
