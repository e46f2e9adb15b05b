package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultCron runs the sweep every day at 09:00.
const DefaultCron = "0 9 * * *"

// Scheduler periodically runs a Sweeper on a cron expression.
type Scheduler struct {
	Sweeper  *Sweeper
	Spec     string
	Location *time.Location
	Logger   *slog.Logger
}

// ParseCron validates a standard five field cron expression or descriptor such as @daily.
func ParseCron(spec string) (cron.Schedule, error) {
	return cron.ParseStandard(spec)
}

// Start runs sweeps until ctx is cancelled. A sweep still running when the next one
// is due causes that tick to be skipped.
func (s *Scheduler) Start(ctx context.Context) error {
	log := s.Logger.With("component", "scheduler")

	spec := s.Spec
	if spec == "" {
		spec = DefaultCron
	}

	loc := s.Location
	if loc == nil {
		loc = time.Local
	}

	c := cron.New(
		cron.WithLocation(loc),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)

	_, err := c.AddFunc(spec, func() {
		_, err := s.Sweeper.Sweep()
		if err != nil {
			log.Error("Reminder sweep failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", spec, err)
	}

	c.Start()
	log.Info("Starting reminder scheduler", "cron", spec, "timezone", loc.String())

	for _, entry := range c.Entries() {
		log.Debug("Next reminder sweep scheduled", "at", entry.Next.Format(time.RFC3339))
	}

	<-ctx.Done()

	log.Info("Stopping reminder scheduler")
	<-c.Stop().Done()

	return nil
}
