package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/jgrandin/wxpost/internal/api/http"
	"github.com/jgrandin/wxpost/internal/archive"
	"github.com/jgrandin/wxpost/internal/config"
	"github.com/jgrandin/wxpost/internal/enrich"
	"github.com/jgrandin/wxpost/internal/enrich/providers"
	"github.com/jgrandin/wxpost/internal/logging"
	"github.com/jgrandin/wxpost/internal/post"
	"github.com/jgrandin/wxpost/internal/run"
	"github.com/jgrandin/wxpost/internal/wx"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to YAML config file")
		testMode   = flag.Bool("test", false, "run the normal loop without posting")
		testNow    = flag.Bool("test-now", false, "compose one post, print it, and exit")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	cfg.DryRun = *testMode || *testNow

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	log := logging.New(cfg.LogLevel)

	store, err := archive.Open(cfg.ArchivePath, cfg.Station)
	if err != nil {
		log.Error("failed to open archive", "path", cfg.ArchivePath, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	cache, err := enrich.NewCache(cfg.CacheDir, cfg.CacheMaxAge.Std())
	if err != nil {
		log.Error("failed to create enrichment cache", "dir", cfg.CacheDir, "error", err)
		os.Exit(1)
	}
	cache.SetMaxAge("snow", cfg.SnowCacheMaxAge.Std())

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{Timeout: 30 * time.Second}

	var conditions *providers.ConditionsProvider
	var astronomy *providers.AstronomyProvider
	if cfg.WeatherAPIKey != "" {
		conditions = providers.NewConditionsProvider(httpClient, cfg.WeatherAPIKey, cfg.ProviderQuery())
		astronomy = providers.NewAstronomyProvider(httpClient, cfg.WeatherAPIKey, cfg.ProviderQuery())
	}
	snow := providers.NewSnowProvider(httpClient, cfg.Latitude, cfg.Longitude)

	enricher := enrich.NewService(conditions, astronomy, snow, cache, log)

	var poster post.Poster
	var media *post.MediaResolver
	if !cfg.DryRun {
		client := post.NewXClient(post.Credentials{
			AppKey:           cfg.XAppKey,
			AppKeySecret:     cfg.XAppKeySecret,
			OAuthToken:       cfg.XOAuthToken,
			OAuthTokenSecret: cfg.XOAuthTokenSecret,
		})
		poster = post.NewRetrier(client, cfg.MaxTries, cfg.RetryWait.Std(), log)
		media = post.NewMediaResolver(client, log)
	}

	reporter := run.NewReporter(store, enricher, poster, media, run.ReporterConfig{
		Station:   cfg.Station,
		FooterURL: cfg.FooterURL,
		ImageRefs: cfg.ImagePaths,
		TrendCfg: wx.TrendConfig{
			Lookback:    cfg.TrendLookback.Std(),
			Window:      30 * time.Minute,
			ThresholdMb: cfg.TrendThresholdMb,
		},
		UVDivisor: cfg.UVDivisor,
		DryRun:    cfg.DryRun,
	}, log)

	if *testNow {
		text, err := reporter.Compose(context.Background())
		if err != nil {
			log.Error("failed to compose preview", "error", err)
			os.Exit(1)
		}
		fmt.Println(text)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Optional status server.
	if cfg.ListenAddr != "" {
		app := fiber.New(fiber.Config{
			AppName:               "wxpost",
			DisableStartupMessage: true,
			ReadTimeout:           10 * time.Second,
			WriteTimeout:          10 * time.Second,
			ErrorHandler: func(c *fiber.Ctx, err error) error {
				code := fiber.StatusInternalServerError
				if e, ok := err.(*fiber.Error); ok {
					code = e.Code
				}
				return c.Status(code).JSON(fiber.Map{
					"error":   true,
					"message": err.Error(),
				})
			},
		})
		app.Use(recover.New())
		httpapi.RegisterRoutes(app, reporter)

		go func() {
			if err := app.Listen(cfg.ListenAddr); err != nil {
				log.Error("status server stopped", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := app.ShutdownWithContext(shutdownCtx); err != nil {
				log.Warn("error during status server shutdown", "error", err)
			}
		}()
	}

	log.Info("starting", "mode", cfg.Mode, "dry_run", cfg.DryRun, "archive", cfg.ArchivePath)

	switch cfg.Mode {
	case "continuous":
		err = run.NewContinuous(store, reporter, cfg.PollInterval.Std(), log).Run(ctx)
	default:
		err = run.NewScheduled(reporter, cfg.PostTimes, cfg.Location(), log).Run(ctx)
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		log.Error("run loop exited", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}
