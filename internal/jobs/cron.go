package jobs

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/ubiquity-os/dao-analytics/internal/config"
	"github.com/ubiquity-os/dao-analytics/internal/services"
)

type service interface{ RunAnalysis(ctx context.Context) error }

type Cron struct {
	cfg config.Config
	log zerolog.Logger
	svc service
	c   *cron.Cron
}

func NewCron(cfg config.Config, log zerolog.Logger, svc service) *Cron {
	loc, _ := time.LoadLocation(cfg.TZ)
	c := cron.New(cron.WithLocation(loc), cron.WithParser(cron.NewParser(cron.Minute|cron.Hour|cron.Dom|cron.Month|cron.Dow)))
	cr := &Cron{cfg: cfg, log: log, svc: svc, c: c}
	_, _ = c.AddFunc(cfg.RunCron, cr.run)
	return cr
}

func (cr *Cron) Start() { cr.c.Start() }
func (cr *Cron) Stop()  { cr.c.Stop() }

func (cr *Cron) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Hour)
	defer cancel()
	cr.log.Info().Msg("cron: scheduled analysis")
	err := cr.svc.RunAnalysis(ctx)
	if errors.Is(err, services.ErrRunInProgress) {
		cr.log.Info().Msg("cron: run already in progress, skipping")
		return
	}
	if err != nil { cr.log.Error().Err(err).Msg("cron: analysis failed") }
}
