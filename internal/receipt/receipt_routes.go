package receipt

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"go-payops/internal/middleware"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, rdb *redis.Client) {
	receipts := r.Group("/periods/:id/receipts")
	receipts.Use(middleware.AuthMiddleware())
	{
		receipts.GET("", handler.ListByPeriod)
		receipts.POST("/send",
			middleware.RoleMiddleware("admin", "hr"),
			middleware.Idempotency(rdb),
			handler.Send)
	}
}
