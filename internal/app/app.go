// Package app assembles the collaborators from configuration and owns the
// process lifecycle for both replay and live operation.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/newthinker/tradewind/internal/broker"
	"github.com/newthinker/tradewind/internal/broker/paper"
	"github.com/newthinker/tradewind/internal/config"
	"github.com/newthinker/tradewind/internal/engine"
	"github.com/newthinker/tradewind/internal/indicator"
	"github.com/newthinker/tradewind/internal/live"
	"github.com/newthinker/tradewind/internal/marketdata"
	"github.com/newthinker/tradewind/internal/metrics"
	"github.com/newthinker/tradewind/internal/notifier"
	"github.com/newthinker/tradewind/internal/notifier/webhook"
	"github.com/newthinker/tradewind/internal/predictor"
	"github.com/newthinker/tradewind/internal/predictor/onnx"
	"github.com/newthinker/tradewind/internal/storage/archive"
	"github.com/newthinker/tradewind/internal/store"
	"github.com/newthinker/tradewind/internal/strategy"
)

// App wires the execution core to its collaborators.
type App struct {
	cfg    *config.Config
	logger *zap.Logger

	Strategies *strategy.Registry
	Provider   marketdata.Provider
	Broker     broker.Broker
	Store      store.Store
	Predictors map[string]predictor.Predictor
	Notifiers  *notifier.Registry
	Metrics    *metrics.Registry
	Engine     *engine.Engine
	Archiver   *archive.Archiver
}

// New builds an App from validated configuration.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &App{
		cfg:        cfg,
		logger:     logger,
		Strategies: strategy.NewRegistry(logger),
		Store:      store.NewMemory(cfg.Store.Capacity),
		Notifiers:  notifier.NewRegistry(logger),
		Metrics:    metrics.NewRegistry(),
		Predictors: make(map[string]predictor.Predictor),
	}

	for i := range cfg.Strategies {
		if err := a.Strategies.Register(&cfg.Strategies[i]); err != nil {
			return nil, err
		}
	}

	var base marketdata.Provider
	switch cfg.Data.Provider {
	case "csv":
		base = marketdata.NewCSV(cfg.Data.CSVDir, "1d")
	default:
		base = marketdata.NewYahoo()
	}
	a.Provider = marketdata.NewCache(base, cfg.Data.CacheTTL)

	a.Broker = paper.New(cfg.Broker.Cash)

	for name, p := range cfg.Predictors {
		model, err := onnx.New(name, p.Path, p.SequenceLength)
		if err != nil {
			return nil, fmt.Errorf("loading predictor %q: %w", name, err)
		}
		a.Predictors[name] = model
	}

	for name, n := range cfg.Notifiers {
		if !n.Enabled {
			continue
		}
		if n.URL == "" {
			return nil, fmt.Errorf("notifier %q needs a url", name)
		}
		a.Notifiers.Register(webhook.New(n.URL, n.Headers))
	}

	a.Engine = engine.New(a.Predictors, logger)

	storage, err := newArchiveStorage(cfg.Archive)
	if err != nil {
		return nil, err
	}
	a.Archiver = archive.NewArchiver(storage)

	return a, nil
}

func newArchiveStorage(cfg config.ArchiveConfig) (archive.Storage, error) {
	if cfg.Type == "s3" {
		return archive.NewS3(archive.S3Config{
			Bucket:    cfg.S3.Bucket,
			Endpoint:  cfg.S3.Endpoint,
			Region:    cfg.S3.Region,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Prefix:    cfg.S3.Prefix,
		})
	}
	return archive.NewLocalFS(cfg.Path)
}

// Backtest replays one strategy over historical bars for a symbol and
// archives the resulting report.
func (a *App) Backtest(ctx context.Context, strategyName, symbol string, bars int) (*engine.Result, string, error) {
	cfg, ok := a.Strategies.Get(strategyName)
	if !ok {
		return nil, "", fmt.Errorf("unknown strategy %q", strategyName)
	}

	started := time.Now()
	raw, err := a.Provider.FetchBars(ctx, symbol, cfg.Interval, bars)
	if err != nil {
		a.Metrics.RecordBacktest("failed", time.Since(started).Seconds())
		return nil, "", err
	}
	enriched := indicator.Enrich(raw)

	result, err := a.Engine.Evaluate(ctx, cfg, enriched)
	if err != nil {
		a.Metrics.RecordBacktest("failed", time.Since(started).Seconds())
		return nil, "", err
	}
	a.Metrics.RecordBacktest("success", time.Since(started).Seconds())

	path, err := a.Archiver.Save(ctx, archive.Report{
		Strategy:   strategyName,
		Symbol:     symbol,
		Interval:   cfg.Interval,
		Bars:       len(enriched),
		StartedAt:  started,
		FinishedAt: time.Now(),
		Result:     result,
	})
	if err != nil {
		a.logger.Warn("report archive failed", zap.Error(err))
		path = ""
	}

	return result, path, nil
}

// RunLive drives the live loop and, when enabled, the metrics endpoint,
// until the context is canceled.
func (a *App) RunLive(ctx context.Context) error {
	driver := live.New(live.Deps{
		Strategies: a.Strategies,
		Provider:   a.Provider,
		Broker:     a.Broker,
		Store:      a.Store,
		Predictors: a.Predictors,
		Notifier:   a.Notifiers,
		Metrics:    a.Metrics,
	}, live.Config{
		TickInterval: a.cfg.Live.TickInterval,
		Workers:      a.cfg.Live.Workers,
		CallTimeout:  a.cfg.Live.CallTimeout,
	}, a.logger)

	var server *http.Server
	if a.cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle(a.cfg.Metrics.Path, promhttp.HandlerFor(a.Metrics, promhttp.HandlerOpts{}))
		server = &http.Server{Addr: a.cfg.Metrics.Listen, Handler: mux}
		go func() {
			a.logger.Info("metrics endpoint up",
				zap.String("listen", a.cfg.Metrics.Listen),
				zap.String("path", a.cfg.Metrics.Path))
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("metrics server error", zap.Error(err))
			}
		}()
	}

	err := driver.Run(ctx)

	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}
	return err
}
