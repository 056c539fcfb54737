package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"deltawatch/internal/application/usecase/compare"
	"deltawatch/internal/infrastructure/config"
	"deltawatch/internal/infrastructure/container"
	"deltawatch/internal/infrastructure/logger"
	"deltawatch/internal/interfaces/console"

	"github.com/rs/zerolog/log"
)

func main() {
	logger.Setup(false)

	configPath := flag.String("config", "configs/config.toml", "path to config.toml")
	once := flag.Bool("once", false, "run a single cycle, ignoring app.refresh_interval_sec")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Str("config", *configPath).Msg("load config failed")
	}
	logger.Setup(cfg.App.Debug)

	c, err := container.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("init container failed")
	}
	defer func() {
		if err := c.Close(); err != nil {
			log.Warn().Err(err).Msg("close container")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	refresh := cfg.RefreshEvery()
	if *once {
		refresh = 0
	}

	svc, err := compare.NewService(compare.ServiceDeps{
		Market:         c.Market(),
		Account:        c.Account(),
		Sink:           console.NewSink(),
		Repo:           c.ReportRepository(),
		Symbol:         cfg.Market.Symbol,
		Resolution:     cfg.Market.Resolution,
		Location:       cfg.Location(),
		Policy:         cfg.FuturePolicy(),
		Targets:        cfg.Targets(),
		RefreshEvery:   refresh,
		MaxConcurrency: cfg.App.MaxConcurrency,
		Color:          cfg.App.Color,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("init compare service failed")
	}

	log.Info().
		Str("config", *configPath).
		Str("symbol", cfg.Market.Symbol).
		Str("offset", cfg.Market.ReferenceOffset).
		Int("targets", len(cfg.Targets())).
		Dur("refresh", refresh).
		Msg("deltawatch started")

	// 启动时检查一次 API 凭证，失败不退出
	_, _ = svc.CheckAccount(ctx)

	if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("compare service exited")
	}
}
