package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is one housekeeping task run on a cron schedule.
type Job struct {
	Name string
	// Spec is a standard 5-field cron expression or a descriptor such as
	// "@daily" or "@every 10m".
	Spec string
	Run  func(ctx context.Context) error
	// Timeout bounds a single run. Zero means one minute.
	Timeout time.Duration
}

// Start registers jobs on a new cron runner and starts it. The runner stops
// when ctx is done; the returned channel closes once running jobs finish.
// An invalid Spec is reported before anything is started.
func Start(ctx context.Context, log *slog.Logger, jobs ...Job) (<-chan struct{}, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	for _, j := range jobs {
		if j.Timeout <= 0 {
			j.Timeout = time.Minute
		}
		_, err := c.AddFunc(j.Spec, func() {
			runCtx, cancel := context.WithTimeout(ctx, j.Timeout)
			defer cancel()

			start := time.Now()
			if err := j.Run(runCtx); err != nil {
				log.Error("scheduler: job failed", "job", j.Name, "error", err)
				return
			}
			log.Debug("scheduler: job done", "job", j.Name, "duration", time.Since(start))
		})
		if err != nil {
			return nil, fmt.Errorf("scheduler: job %q: invalid schedule %q: %w", j.Name, j.Spec, err)
		}
		log.Info("scheduler: added job", "job", j.Name, "schedule", j.Spec)
	}

	c.Start()

	done := make(chan struct{})
	go func() {
		<-ctx.Done()
		<-c.Stop().Done()
		close(done)
	}()
	return done, nil
}
