package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"DrawdownSentinel/internal/collector"
	"DrawdownSentinel/internal/config"
	"DrawdownSentinel/internal/logger"
	"DrawdownSentinel/internal/metrics"
	"DrawdownSentinel/internal/model"
	"DrawdownSentinel/internal/notifier"
	"DrawdownSentinel/internal/recorder"
	"DrawdownSentinel/internal/scheduler"
	"DrawdownSentinel/internal/sentiment"
	"DrawdownSentinel/internal/watchlist"
)

func main() {
	app := &cli.App{
		Name:  "drawdown-sentinel",
		Usage: "daily drawdown buy-signal and Fear & Greed report via Telegram",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   config.DefaultPath,
				EnvVars: []string{"CONFIG_PATH"},
				Usage:   "path to the YAML config file",
			},
			&cli.StringFlag{
				Name:    "period",
				Aliases: []string{"p"},
				Usage:   "analysis period (" + model.PeriodList() + ")",
			},
			&cli.BoolFlag{
				Name:    "bot",
				Aliases: []string{"b"},
				Usage:   "run the scheduler and answer bot commands until interrupted",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if c.IsSet("period") {
		cfg.Analysis.Period = c.String("period")
	}

	closer, err := logger.Init(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return err
	}
	defer closer.Close()

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	period, _ := cfg.ReportPeriod()
	loc, _ := cfg.Location()

	log.Info("DrawdownSentinel starting...")

	var fetcher collector.Fetcher
	if cfg.DataSource.BaseURL != "" {
		fetcher = collector.NewRESTFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy)
	} else {
		fetcher = collector.NewYahooFetcher(cfg.Proxy, cfg.DataSource.YahooRPM)
	}
	log.Infof("data source: %s", fetcher.Name())

	m := metrics.New()
	col := collector.NewCollector(fetcher, sentiment.NewClient(cfg.Proxy), cfg.Analysis.MAWindow, m)

	wl, err := watchlist.NewStore(cfg.Watchlist.File, cfg.Watchlist.DefaultSymbols, cfg.Watchlist.DefaultMASymbols)
	if err != nil {
		return fmt.Errorf("init watchlist: %w", err)
	}
	snap := wl.Snapshot()
	log.Infof("watching %v (MA: %v), period %s", snap.Symbols, snap.MAEnabled, period.Display())

	tn, err := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
	if err != nil {
		return err
	}

	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Warnf("init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sched := scheduler.NewScheduler(ctx, col, wl, tn, rec, m, period, loc)

	if !c.Bool("bot") {
		res := sched.RunReport(period)
		if !res.OK {
			return fmt.Errorf("delivery failed: %s", res.Error)
		}
		log.Info("done")
		return nil
	}

	if err := sched.RegisterDaily(cfg.Schedule.DailyCron); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	if cfg.Metrics.Addr != "" {
		srv := &http.Server{Addr: cfg.Metrics.Addr, Handler: m.Handler(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			log.Infof("metrics listening on %s", cfg.Metrics.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Errorf("metrics server: %v", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
	}

	log.Infof("DrawdownSentinel is running (daily cron %q). Press Ctrl+C to stop.", cfg.Schedule.DailyCron)
	tn.StartPolling(ctx, sched.HandleCommand)

	log.Info("shutdown signal received, stopping...")
	return nil
}
