package routes

import (
	"smartcite/controllers"
	"smartcite/middlewares"

	"github.com/gin-gonic/gin"
)

// ProfileRoutes sets up the profile routes
func ProfileRoutes(r *gin.Engine) {
	profile := r.Group("/api/profile", middlewares.AuthMiddleware())
	{
		profile.GET("/:username", controllers.GetProfile)
		profile.PUT("/", controllers.UpdateProfile)
	}
}
