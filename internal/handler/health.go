package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/Zakuwantungsten/fuel-Order-sytem-sub000/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health reports connectivity of the two stores the lookup and order flows
// depend on, plus the order-notice dead-letter backlog. Any degraded
// dependency turns the whole check 503 so the depot frontend can warn clerks
// before they start keying orders.
func Health(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		deps := gin.H{}
		healthy := true

		dbStatus := "up"
		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "down"
			healthy = false
		}
		deps["postgres"] = dbStatus

		redisStatus := "up"
		if rdb.Ping(ctx).Err() != nil {
			redisStatus = "down"
			healthy = false
		}
		deps["redis"] = redisStatus

		// Backlog only makes sense when redis answered.
		if redisStatus == "up" {
			if n, err := worker.DLQLength(ctx, rdb, worker.QueueOrderNotice); err == nil {
				deps["order_notice_dlq"] = n
			}
		}

		status := http.StatusOK
		if !healthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{
			"service":      "fueldesk",
			"ok":           healthy,
			"dependencies": deps,
		})
	}
}
