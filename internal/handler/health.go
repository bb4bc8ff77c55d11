package handler

import (
	"context"
	"net/http"
	"time"

	"posfront/internal/infra"
	"posfront/internal/masterdata"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Health returns a JSON health check response.
// Checks Redis connectivity, master-data readiness and the backend circuit
// breaker state; never exposes credentials or internals.
func Health(rdb *redis.Client, idx *masterdata.Index, breaker *infra.CircuitBreaker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		redisStatus := "connected"
		if rdb.Ping(ctx).Err() != nil {
			redisStatus = "error"
		}

		status := http.StatusOK
		if redisStatus != "connected" {
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, gin.H{
			"ok":      status == http.StatusOK,
			"redis":   redisStatus,
			"masters": idx.Ready(),
			"backend": breaker.State().String(),
		})
	}
}
