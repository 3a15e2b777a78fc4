package revision

import (
	"go-payops/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	revisions := r.Group("/salary-revisions")
	revisions.Use(middleware.AuthMiddleware())
	{
		revisions.GET("/:userId", handler.ListByUser)
		revisions.POST("", middleware.RoleMiddleware("admin"), handler.Create)
	}
}
