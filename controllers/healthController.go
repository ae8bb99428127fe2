package controllers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthController struct {
	db      Pinger
	timeout time.Duration
}

func NewHealthController(db Pinger, timeout time.Duration) *HealthController {
	return &HealthController{db: db, timeout: timeout}
}

// Ping reports whether the database answers within the query timeout.
func (hc *HealthController) Ping(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), hc.timeout)
	defer cancel()

	if err := hc.db.PingContext(ctx); err != nil {
		log.Printf("Health check failed: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "pong"})
}
