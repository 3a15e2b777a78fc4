package engine

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"go-payops/internal/middleware"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, rdb *redis.Client) {
	periods := r.Group("/periods/:id")
	periods.Use(middleware.AuthMiddleware())
	{
		periods.POST("/recalculate",
			middleware.RoleMiddleware("admin", "hr"),
			middleware.RateLimitByUser(rate.Limit(1), 3),
			middleware.Idempotency(rdb),
			handler.Recalculate)
		periods.GET("/summary", handler.GetSummary)
		periods.GET("/computed", handler.ListComputed)
		periods.GET("/mismatches", handler.ListMismatches)
	}
}
