package routes

import (
	"smartcite/controllers"
	"smartcite/middlewares"

	"github.com/gin-gonic/gin"
)

// CategoryRoutes sets up the category routes
func CategoryRoutes(r *gin.Engine) {
	category := r.Group("/api/category")
	{
		category.GET("/all", middlewares.AuthMiddleware(), controllers.GetAllCategories)
	}
}
