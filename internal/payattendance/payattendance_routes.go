package payattendance

import (
	"go-payops/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	attendance := r.Group("/periods/:id")
	attendance.Use(middleware.AuthMiddleware())
	{
		attendance.POST("/attendance", middleware.RoleMiddleware("admin", "hr"), handler.Import)
	}
}
