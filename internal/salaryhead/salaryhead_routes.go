package salaryhead

import (
	"go-payops/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	heads := r.Group("/salary-heads")
	heads.Use(middleware.AuthMiddleware())
	{
		heads.GET("", handler.ListActive)
		heads.POST("", middleware.RoleMiddleware("admin"), handler.Create)
	}
}
