package payinput

import (
	"go-payops/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	inputs := r.Group("/periods/:id")
	inputs.Use(middleware.AuthMiddleware())
	{
		inputs.GET("/inputs", handler.ListByPeriod)
		inputs.POST("/inputs", middleware.RoleMiddleware("admin", "hr"), handler.Import)
		inputs.POST("/expenses", middleware.RoleMiddleware("admin", "hr"), handler.ImportExpenses)
		inputs.PUT("/inputs/override", middleware.RoleMiddleware("admin", "hr"), handler.SetOverride)
	}
}
