package run

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

// Scheduled posts at fixed local wall-clock times. The times are
// converted to UTC once at startup and registered as daily gocron jobs;
// each tick is strictly sequential: read latest, compose, post.
type Scheduled struct {
	reporter *Reporter
	times    []string
	location *time.Location
	log      *slog.Logger

	scheduler *gocron.Scheduler
}

// NewScheduled builds the scheduled mode. times are "HH:MM" strings in
// the given local location.
func NewScheduled(reporter *Reporter, times []string, location *time.Location, log *slog.Logger) *Scheduled {
	if location == nil {
		location = time.Local
	}
	return &Scheduled{
		reporter:  reporter,
		times:     times,
		location:  location,
		log:       log,
		scheduler: gocron.NewScheduler(time.UTC),
	}
}

// Run registers the jobs and blocks until ctx ends.
func (s *Scheduled) Run(ctx context.Context) error {
	if len(s.times) == 0 {
		return fmt.Errorf("no post times configured")
	}

	for _, local := range s.times {
		utc, err := LocalClockToUTC(local, s.location, time.Now())
		if err != nil {
			return fmt.Errorf("invalid post time %q: %w", local, err)
		}

		s.log.Info("scheduling daily post", "local", local, "utc", utc)

		_, err = s.scheduler.Every(1).Day().At(utc).Do(func() {
			jobCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
			defer cancel()

			if err := s.reporter.PublishLatest(jobCtx); err != nil {
				s.log.Error("scheduled post failed", "error", err)
			}
		})
		if err != nil {
			return fmt.Errorf("scheduling %q: %w", local, err)
		}
	}

	s.scheduler.StartAsync()
	defer s.scheduler.Stop()

	<-ctx.Done()
	return ctx.Err()
}

// LocalClockToUTC converts an "HH:MM" wall-clock time in loc to the
// equivalent "HH:MM" in UTC, anchored on ref's date. Note the UTC time
// drifts by an hour across DST transitions; the schedule is rebuilt on
// process restart, which is how deployments cross them.
func LocalClockToUTC(hhmm string, loc *time.Location, ref time.Time) (string, error) {
	clock, err := time.Parse("15:04", hhmm)
	if err != nil {
		return "", err
	}

	ref = ref.In(loc)
	local := time.Date(ref.Year(), ref.Month(), ref.Day(),
		clock.Hour(), clock.Minute(), 0, 0, loc)

	return local.UTC().Format("15:04"), nil
}
