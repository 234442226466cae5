package jobs

import (
	"agency_site_go/config"
	"agency_site_go/services"
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Deps are the services the scheduled jobs work on
type Deps struct {
	Config      *config.Config
	Submissions services.SubmissionRepository
	Identity    *services.DBIdentityProvider
	Storage     services.StorageProvider
}

const jobTimeout = 2 * time.Minute

// NewScheduler registers the digest, backup and session cleanup jobs
func NewScheduler(deps Deps) (*cron.Cron, error) {
	loc, err := time.LoadLocation(deps.Config.JobsTimezone)
	if err != nil {
		log.Printf("[CRON] Unknown timezone %q, using UTC: %v", deps.Config.JobsTimezone, err)
		loc = time.UTC
	}
	c := cron.New(cron.WithLocation(loc))

	schedule := []struct {
		spec string
		name string
		run  func(ctx context.Context) error
	}{
		{deps.Config.DigestCron, "unread digest", func(ctx context.Context) error {
			_, err := SendUnreadDigest(ctx, deps.Config, deps.Submissions, loc)
			return err
		}},
		{deps.Config.BackupCron, "submission backup", func(ctx context.Context) error {
			_, err := BackupSubmissions(ctx, deps.Config, deps.Submissions, deps.Storage, loc)
			return err
		}},
		{"@hourly", "session cleanup", func(ctx context.Context) error {
			_, err := CleanupSessions(ctx, deps.Identity)
			return err
		}},
	}

	for _, job := range schedule {
		job := job
		if _, err := c.AddFunc(job.spec, func() { runJob(job.name, job.run) }); err != nil {
			return nil, fmt.Errorf("failed to schedule %s (%q): %w", job.name, job.spec, err)
		}
	}

	return c, nil
}

// StartScheduler builds and starts the scheduler
func StartScheduler(deps Deps) *cron.Cron {
	c, err := NewScheduler(deps)
	if err != nil {
		log.Fatalf("[CRON] Error scheduling jobs: %v", err)
	}
	c.Start()
	log.Println("[CRON] Scheduler started")
	return c
}

func runJob(name string, run func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	start := time.Now()
	log.Printf("[CRON] Running %s...", name)
	if err := run(ctx); err != nil {
		log.Printf("[CRON] %s failed after %s: %v", name, time.Since(start).Round(time.Millisecond), err)
		return
	}
	log.Printf("[CRON] %s finished in %s", name, time.Since(start).Round(time.Millisecond))
}
