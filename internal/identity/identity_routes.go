package identity

import (
	"go-payops/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	mappings := r.Group("/identity-mappings")
	mappings.Use(middleware.AuthMiddleware())
	{
		mappings.GET("", handler.List)
		mappings.POST("/sync", middleware.RoleMiddleware("admin", "hr"), handler.Sync)
	}
}
