package travel

import (
	"go-payops/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	travel := r.Group("/travel")
	travel.Use(middleware.AuthMiddleware())
	{
		travel.GET("/tiers", handler.ListTiers)
		travel.POST("/tiers", middleware.RoleMiddleware("admin"), handler.CreateTier)
		travel.PUT("/profiles", middleware.RoleMiddleware("admin", "hr"), handler.UpsertProfile)
	}
}
