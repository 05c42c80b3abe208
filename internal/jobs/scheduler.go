// Package jobs runs periodic background jobs.
package jobs

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/robfig/cron/v3"
)

// Runner is a periodic job.
type Runner interface {
	Name() string
	Spec() string
	Func(ctx context.Context) func()
}

// Scheduler is a cron-like job scheduler.
type Scheduler struct {
	*cron.Cron
	ids    map[string]cron.EntryID
	logger *log.Logger
}

// cronLogger adapts the service logger to the cron logger interface.
type cronLogger struct {
	logger *log.Logger
}

// Info logs routine messages about cron's operation.
func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

// Error logs an error condition.
func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, append(keysAndValues, "err", err)...)
}

// NewScheduler returns a new Scheduler.
func NewScheduler(ctx context.Context) *Scheduler {
	logger := log.FromContext(ctx).WithPrefix("cron")
	return &Scheduler{
		Cron:   cron.New(cron.WithLogger(cronLogger{logger}), cron.WithChain(cron.Recover(cronLogger{logger}))),
		ids:    map[string]cron.EntryID{},
		logger: logger,
	}
}

// Register schedules the runners. A runner with an invalid spec is skipped
// with a warning.
func (s *Scheduler) Register(ctx context.Context, runners ...Runner) {
	for _, r := range runners {
		id, err := s.Cron.AddFunc(r.Spec(), r.Func(ctx))
		if err != nil {
			s.logger.Warn("error adding cron job", "job", r.Name(), "err", err)
			continue
		}
		s.ids[r.Name()] = id
	}
}

// Jobs returns the names of the registered jobs.
func (s *Scheduler) Jobs() []string {
	names := make([]string, 0, len(s.ids))
	for n := range s.ids {
		names = append(names, n)
	}
	return names
}

// Shutdown removes the jobs and waits up to 30 seconds for running ones.
func (s *Scheduler) Shutdown() {
	for n, id := range s.ids {
		s.Cron.Remove(id)
		delete(s.ids, n)
	}
	ctx, cancel := context.WithTimeout(s.Cron.Stop(), 30*time.Second)
	defer cancel()
	<-ctx.Done()
}
