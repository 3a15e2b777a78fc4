package taxyear

import (
	"go-payops/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	years := r.Group("/financial-years")
	years.Use(middleware.AuthMiddleware())
	{
		years.GET("", handler.List)
		years.POST("", middleware.RoleMiddleware("admin"), handler.Create)
	}
}
