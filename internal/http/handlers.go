package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/ubiquity-os/dao-analytics/internal/config"
	"github.com/ubiquity-os/dao-analytics/internal/repo"
	"github.com/ubiquity-os/dao-analytics/internal/services"
)

type service interface {
	RunAnalysis(ctx context.Context) error
	GetLastRun() *repo.RunInfo
}

type Handlers struct {
	cfg config.Config
	log zerolog.Logger
	svc service
}

func NewHandlers(cfg config.Config, log zerolog.Logger, svc any) *Handlers {
	return &Handlers{cfg: cfg, log: log, svc: svc.(service)}
}

func (h *Handlers) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handlers) LastRun(c *gin.Context) {
	lr := h.svc.GetLastRun()
	if lr == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no runs yet"})
		return
	}
	c.JSON(http.StatusOK, lr)
}

func (h *Handlers) RunNow(c *gin.Context) {
	// Run in background detached from the HTTP request to avoid context cancellation
	go func() {
		if err := h.svc.RunAnalysis(context.Background()); err != nil && !errors.Is(err, services.ErrRunInProgress) {
			h.log.Error().Err(err).Msg("manual run failed")
		}
	}()
	c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}
