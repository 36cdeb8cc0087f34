// Package janitor sweeps expired jobs off disk and out of the database on
// a schedule, backed by robfig/cron.
package janitor

import (
	"context"
	"os"
	"time"

	cronlib "github.com/robfig/cron/v3"

	"github.com/tycoonteritory/AutoCut/internal/db"
	"github.com/tycoonteritory/AutoCut/internal/logging"
)

// Janitor periodically deletes jobs (and their output directories) older
// than a retention TTL.
type Janitor struct {
	store    *db.Store
	ttl      time.Duration
	cron     *cronlib.Cron
	schedule string
}

// New creates a Janitor that sweeps on schedule (a standard 5-field cron
// expression) using ttl as the retention window.
func New(store *db.Store, ttl time.Duration, schedule string) *Janitor {
	if schedule == "" {
		schedule = "@hourly"
	}
	return &Janitor{
		store:    store,
		ttl:      ttl,
		cron:     cronlib.New(),
		schedule: schedule,
	}
}

// Start registers the sweep and begins the cron scheduler's timer.
func (j *Janitor) Start() error {
	_, err := j.cron.AddFunc(j.schedule, func() {
		j.Sweep(context.Background())
	})
	if err != nil {
		return err
	}
	j.cron.Start()
	return nil
}

// Stop halts the scheduler, letting any in-flight sweep finish.
func (j *Janitor) Stop() {
	ctx := j.cron.Stop()
	<-ctx.Done()
}

// Sweep deletes every job older than the retention TTL that is in a
// terminal state: in-flight jobs are never swept regardless of age.
func (j *Janitor) Sweep(ctx context.Context) {
	expired, err := j.store.ExpiredJobs(ctx, j.ttl)
	if err != nil {
		logging.Errorf("janitor: list expired jobs: %v", err)
		return
	}

	removed := 0
	for _, job := range expired {
		if !job.Status.Terminal() {
			continue
		}
		if job.OutputDir != "" {
			if err := os.RemoveAll(job.OutputDir); err != nil {
				logging.Warnf("janitor: remove output dir for job %s: %v", job.ID, err)
			}
		}
		if job.SourcePath != "" {
			_ = os.Remove(job.SourcePath)
		}
		if err := j.store.DeleteJob(ctx, job.ID); err != nil {
			logging.Errorf("janitor: delete job %s: %v", job.ID, err)
			continue
		}
		removed++
	}
	if removed > 0 {
		logging.Infof("janitor: swept %d expired job(s)", removed)
	}
}
