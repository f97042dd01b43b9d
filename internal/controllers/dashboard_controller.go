package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lkendi/Task-Management-System/internal/logging"
	"github.com/lkendi/Task-Management-System/internal/service"
)

type DashboardController struct {
	dashboards service.DashboardService
	gate       Gate
}

func NewDashboardController(dashboards service.DashboardService, gate Gate) *DashboardController {
	return &DashboardController{dashboards: dashboards, gate: gate}
}

// Global handles GET /dashboard
func (dc *DashboardController) Global(c *gin.Context) {
	if _, ok := dc.gate.Require(c, adminOnly...); !ok {
		return
	}

	resp, err := dc.dashboards.Global(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Mine handles GET /my-dashboard
func (dc *DashboardController) Mine(c *gin.Context) {
	actor, ok := dc.gate.Require(c, anyRole...)
	if !ok {
		return
	}

	resp, err := dc.dashboards.ForUser(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Health handles GET /health
func Health(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			logging.Logger.WithError(err).Warn("Health check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": "down"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "up"})
	}
}
