package handler

import (
	"context"
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jaeho19/sdc-lab-dashboard2-sub001/internal/service/sweeper"
	"github.com/jaeho19/sdc-lab-dashboard2-sub001/internal/util"
)

type SweepRunner interface {
	Run(ctx context.Context) *sweeper.Result
}

// SweepHandler exposes the deadline sweep to the external scheduler. The
// only auth is a shared-secret bearer token; this endpoint never reaches
// the normal user session path.
type SweepHandler struct {
	sweeper    SweepRunner
	cronSecret string
	logger     *zap.Logger
}

func NewSweepHandler(sweeper SweepRunner, cronSecret string, logger *zap.Logger) *SweepHandler {
	return &SweepHandler{sweeper: sweeper, cronSecret: cronSecret, logger: logger}
}

func (h *SweepHandler) Trigger(c *gin.Context) {
	if h.cronSecret != "" {
		token := util.ExtractToken(c.Request)
		if subtle.ConstantTimeCompare([]byte(token), []byte(h.cronSecret)) != 1 {
			h.logger.Warn("Sweep trigger rejected: bad or missing secret",
				zap.String("client_ip", c.ClientIP()),
			)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
	}

	result := h.sweeper.Run(c.Request.Context())

	// Per-offset failures are reported inside the body; the sweep itself
	// always answers 200 once authorized.
	c.JSON(http.StatusOK, result)
}
