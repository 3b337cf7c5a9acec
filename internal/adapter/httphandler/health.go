package httphandler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/niksmo/spellshop/internal/core/port"
)

const pingTimeout = 2 * time.Second

func RegisterHealth(public gin.IRouter, pinger port.Pinger) {
	public.GET("/health", func(c *gin.Context) {
		const op = "Health"
		log := slog.With("op", op)

		ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
		defer cancel()

		if err := pinger.Ping(ctx); err != nil {
			log.Error("storage is unavailable", "err", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
