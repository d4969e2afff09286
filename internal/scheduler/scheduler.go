package scheduler

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/robfig/cron/v3"

	appLog "evcal/internal/log"
)

// Archiver moves ended events out of the active set and reports how many
// it moved. *store.Store satisfies it.
type Archiver interface {
	ArchivePastEvents() int
}

// Scheduler runs the archive job on a cron schedule.
type Scheduler struct {
	cron   *cron.Cron
	target Archiver
	spec   string
	runs   atomic.Int64
}

// New validates spec (standard 5-field cron or a descriptor such as
// "@every 30s") and registers the archive job. Nothing runs until Run.
func New(spec string, target Archiver) (*Scheduler, error) {
	if target == nil {
		return nil, fmt.Errorf("scheduler: nil archiver")
	}
	l := cronLogger{}
	s := &Scheduler{
		cron: cron.New(
			cron.WithLogger(l),
			cron.WithChain(cron.Recover(l), cron.SkipIfStillRunning(l)),
		),
		target: target,
		spec:   spec,
	}
	if _, err := s.cron.AddFunc(spec, func() { s.RunOnce() }); err != nil {
		return nil, fmt.Errorf("scheduler: invalid spec %q: %w", spec, err)
	}
	return s, nil
}

// RunOnce archives immediately and returns the number of events moved.
func (s *Scheduler) RunOnce() int {
	n := s.target.ArchivePastEvents()
	s.runs.Add(1)
	if n > 0 {
		appLog.Info("archived past events", "count", n)
	} else {
		appLog.Debug("archive pass found nothing", "spec", s.spec)
	}
	return n
}

// Runs reports how many archive passes have completed.
func (s *Scheduler) Runs() int64 {
	return s.runs.Load()
}

// Run archives once, starts the cron loop and blocks until ctx is done.
// It waits for a running job to finish before returning.
func (s *Scheduler) Run(ctx context.Context) error {
	s.RunOnce()
	s.cron.Start()
	appLog.Info("scheduler started", "spec", s.spec)

	<-ctx.Done()

	<-s.cron.Stop().Done()
	appLog.Info("scheduler stopped")
	return nil
}

// cronLogger adapts the application logger to cron.Logger. cron's info
// messages are per-tick noise, so they go to DEBUG.
type cronLogger struct{}

func (cronLogger) Info(msg string, kv ...interface{}) {
	appLog.Debug("cron: "+msg, kv...)
}

func (cronLogger) Error(err error, msg string, kv ...interface{}) {
	appLog.Error("cron: "+msg, err, kv...)
}
