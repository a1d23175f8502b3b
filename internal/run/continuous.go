package run

import (
	"context"
	"log/slog"
	"time"

	"github.com/jgrandin/wxpost/internal/wx"
)

// ArchiveWatchSource is the slice of the archive store continuous mode
// polls for new rows.
type ArchiveWatchSource interface {
	Latest(ctx context.Context) (wx.Observation, error)
	NewerThan(ctx context.Context, since time.Time) ([]wx.Observation, error)
}

// Continuous posts on every new archive record: a poller enqueues rows
// as the station writes them, and a single worker drains the queue one
// post at a time. A failing post is reported and the worker moves on;
// it never kills the loop.
type Continuous struct {
	source   ArchiveWatchSource
	reporter *Reporter
	interval time.Duration
	log      *slog.Logger
}

func NewContinuous(source ArchiveWatchSource, reporter *Reporter, pollInterval time.Duration, log *slog.Logger) *Continuous {
	if pollInterval <= 0 {
		pollInterval = 30 * time.Second
	}
	return &Continuous{
		source:   source,
		reporter: reporter,
		interval: pollInterval,
		log:      log,
	}
}

// Run blocks until ctx ends. Records already in the archive at startup
// are not reposted; only rows that arrive afterwards are.
func (c *Continuous) Run(ctx context.Context) error {
	lastSeen := time.Now().UTC()
	if latest, err := c.source.Latest(ctx); err == nil && latest.Time.After(lastSeen) {
		lastSeen = latest.Time
	}

	q := newQueue()

	done := make(chan struct{})
	go func() {
		defer close(done)
		c.drain(ctx, q)
	}()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			q.close()
			<-done
			return ctx.Err()
		case <-ticker.C:
			rows, err := c.source.NewerThan(ctx, lastSeen)
			if err != nil {
				c.log.Warn("archive poll failed", "error", err)
				continue
			}
			for _, obs := range rows {
				q.push(obs)
				lastSeen = obs.Time
			}
			if n := len(rows); n > 0 {
				c.log.Debug("enqueued new records", "count", n, "backlog", q.len())
			}
		}
	}
}

func (c *Continuous) drain(ctx context.Context, q *queue) {
	for {
		obs, ok := q.pop()
		if !ok {
			return
		}
		if err := c.reporter.Publish(ctx, obs); err != nil {
			c.log.Error("post failed for record", "time", obs.Time, "error", err)
		}
	}
}
