package run

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jgrandin/wxpost/internal/archive"
	"github.com/jgrandin/wxpost/internal/compose"
	"github.com/jgrandin/wxpost/internal/enrich"
	"github.com/jgrandin/wxpost/internal/post"
	"github.com/jgrandin/wxpost/internal/wx"
)

// ArchiveReader is the slice of the archive store the reporter needs.
type ArchiveReader interface {
	wx.History
	Latest(ctx context.Context) (wx.Observation, error)
	LastNonNull(ctx context.Context, column string) (*float64, error)
}

// Enricher produces the merged third-party snapshot.
type Enricher interface {
	Snapshot(ctx context.Context) enrich.Snapshot
}

// Reporter performs one read → enrich → compose → post cycle. It is
// shared by both execution modes and by the preview endpoint.
type Reporter struct {
	store    ArchiveReader
	enricher Enricher
	poster   post.Poster
	media    *post.MediaResolver

	station   string
	footerURL string
	imageRefs []string
	trendCfg  wx.TrendConfig
	uvDivisor float64
	dryRun    bool

	log *slog.Logger
}

// ReporterConfig carries the composition settings a Reporter needs.
type ReporterConfig struct {
	Station   string
	FooterURL string
	ImageRefs []string
	TrendCfg  wx.TrendConfig
	UVDivisor float64
	DryRun    bool
}

func NewReporter(
	store ArchiveReader,
	enricher Enricher,
	poster post.Poster,
	media *post.MediaResolver,
	cfg ReporterConfig,
	log *slog.Logger,
) *Reporter {
	return &Reporter{
		store:     store,
		enricher:  enricher,
		poster:    poster,
		media:     media,
		station:   cfg.Station,
		footerURL: cfg.FooterURL,
		imageRefs: cfg.ImageRefs,
		trendCfg:  cfg.TrendCfg,
		uvDivisor: cfg.UVDivisor,
		dryRun:    cfg.DryRun,
		log:       log,
	}
}

// Compose reads the latest archive row and renders the post text
// without sending anything.
func (r *Reporter) Compose(ctx context.Context) (string, error) {
	obs, err := r.store.Latest(ctx)
	if err != nil {
		return "", err
	}
	return r.ComposeFor(ctx, obs), nil
}

// ComposeFor renders the post text for a specific observation. Every
// missing input degrades to its line-level fallback; this never fails.
func (r *Reporter) ComposeFor(ctx context.Context, obs wx.Observation) string {
	snap := r.enricher.Snapshot(ctx)
	trend := wx.PressureTrendAt(ctx, r.store, obs, r.trendCfg)

	dayRain, err := r.store.LastNonNull(ctx, "dayRain")
	if err != nil && !errors.Is(err, archive.ErrNoData) {
		r.log.Warn("daily rain lookup failed", "error", err)
	}

	station := r.station
	if station == "" {
		station = obs.Station
	}

	return compose.Message(compose.Input{
		Obs:       obs,
		Trend:     trend,
		Enrich:    snap,
		RainDayMm: wx.RainAccumulation(dayRain),
		Station:   station,
		FooterURL: r.footerURL,
		UVDivisor: r.uvDivisor,
	})
}

// Publish composes and posts the observation. In dry-run mode the text
// is logged instead of sent.
func (r *Reporter) Publish(ctx context.Context, obs wx.Observation) error {
	text := r.ComposeFor(ctx, obs)

	if r.dryRun {
		r.log.Info("dry run, not posting", "text", text)
		return nil
	}

	var mediaIDs []string
	if r.media != nil && len(r.imageRefs) > 0 {
		mediaIDs = r.media.Resolve(ctx, r.imageRefs)
	}

	start := time.Now()
	id, err := r.poster.Post(ctx, text, mediaIDs)
	if err != nil {
		return err
	}

	r.log.Info("posted", "id", id, "chars", len([]rune(text)), "media", len(mediaIDs), "took", time.Since(start))
	return nil
}

// PublishLatest reads the newest archive row and publishes it.
func (r *Reporter) PublishLatest(ctx context.Context) error {
	obs, err := r.store.Latest(ctx)
	if err != nil {
		return err
	}
	return r.Publish(ctx, obs)
}
