package period

import (
	"go-payops/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	periods := r.Group("/periods")
	periods.Use(middleware.AuthMiddleware())
	{
		periods.GET("", handler.GetAll)
		periods.GET("/:id", handler.GetById)
		periods.POST("", middleware.RoleMiddleware("admin", "hr"), handler.Create)
		periods.POST("/carry-forward", middleware.RoleMiddleware("admin", "hr"), handler.CarryForward)
		periods.POST("/:id/approve", middleware.RoleMiddleware("admin"), handler.Approve)
		periods.POST("/:id/lock", middleware.RoleMiddleware("admin"), handler.Lock)
	}
}
