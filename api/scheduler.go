/*
scheduler.go - Monthly background job

PURPOSE:
  On the 1st of each month (configurable cron spec), generates the pending
  payment rows for every active tenant and logs the current reminder feed
  size so operators see what needs attention.

  The job is idempotent: EnsureMonth only creates rows that do not exist,
  so a restart mid-month never duplicates anything.

SEE ALSO:
  - store/sqlite: EnsureMonth
  - reminders: feed assembly
*/
package api

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/Lavillacoliving/la-villa-coliving-sub001/engine"
	"github.com/Lavillacoliving/la-villa-coliving-sub001/reminders"
	"github.com/Lavillacoliving/la-villa-coliving-sub001/store/sqlite"
)

// Scheduler runs the monthly payment-generation job.
type Scheduler struct {
	store *sqlite.Store
	log   *logrus.Logger
	cron  *cron.Cron
}

// NewScheduler registers the job on the given cron spec (standard 5-field).
func NewScheduler(store *sqlite.Store, log *logrus.Logger, spec string) (*Scheduler, error) {
	s := &Scheduler{
		store: store,
		log:   log,
		cron:  cron.New(),
	}
	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return nil, err
	}
	return s, nil
}

// Start launches the cron loop in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the cron loop and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	month := time.Now().UTC().Format("2006-01")
	created, err := s.store.EnsureMonth(ctx, "", month)
	if err != nil {
		s.log.WithError(err).WithField("month", month).Error("monthly payment generation failed")
		return
	}
	s.log.WithFields(logrus.Fields{
		"month":   month,
		"created": created,
	}).Info("monthly payment rows generated")

	tenants, err := s.store.ListTenants(ctx, sqlite.TenantFilter{})
	if err != nil {
		s.log.WithError(err).Error("reminder scan failed")
		return
	}
	series, err := s.store.ListIndexEntries(ctx)
	if err != nil {
		s.log.WithError(err).Error("reminder scan failed")
		return
	}

	feed := reminders.Upcoming(tenants, series, engine.Today())
	counts := map[reminders.Kind]int{}
	for _, r := range feed {
		counts[r.Kind]++
	}
	s.log.WithFields(logrus.Fields{
		"birthdays":        counts[reminders.KindBirthday],
		"revisions":        counts[reminders.KindRevision],
		"deposits_overdue": counts[reminders.KindDepositOverdue],
	}).Info("reminder feed")
}
