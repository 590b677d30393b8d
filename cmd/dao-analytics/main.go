package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ubiquity-os/dao-analytics/internal/adapters/github"
	"github.com/ubiquity-os/dao-analytics/internal/adapters/openai"
	"github.com/ubiquity-os/dao-analytics/internal/adapters/telegram"
	"github.com/ubiquity-os/dao-analytics/internal/config"
	httpapi "github.com/ubiquity-os/dao-analytics/internal/http"
	"github.com/ubiquity-os/dao-analytics/internal/jobs"
	"github.com/ubiquity-os/dao-analytics/internal/logger"
	"github.com/ubiquity-os/dao-analytics/internal/repo"
	"github.com/ubiquity-os/dao-analytics/internal/services"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Adapters
	forge := github.NewClient(cfg, log)
	var llm services.LLM
	if cfg.OpenAIKey != "" { llm = openai.NewClient(cfg, log) }
	var tg services.Notifier
	if cfg.TelegramToken != "" { tg = telegram.NewClient(cfg, log) }

	// Services
	repository := repo.New(cfg.OutputDir, log)
	svc := services.New(cfg, log, repository, forge, llm, tg)

	// One-shot mode: run a single analysis and exit nonzero on failure.
	if len(os.Args) > 1 && os.Args[1] == "run" {
		if err := svc.RunAnalysis(ctx); err != nil {
			log.Error().Err(err).Msg("run failed")
			os.Exit(1)
		}
		return
	}

	// HTTP server (Gin)
	router := httpapi.NewRouter(cfg, log, svc)

	// Cron
	cron := jobs.NewCron(cfg, log, svc)
	cron.Start()
	defer cron.Stop()

	// graceful shutdown
	errCh := make(chan error, 1)
	go func() { errCh <- router.Run(cfg.HTTPAddr) }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		log.Info().Msg("shutting down...")
	case err := <-errCh:
		if err != nil { log.Error().Err(err).Msg("http server error") }
	}

	time.Sleep(500 * time.Millisecond)
}
