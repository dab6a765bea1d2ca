package routes

import (
	"smartcite/controllers"
	"smartcite/middlewares"

	"github.com/gin-gonic/gin"
)

// NotificationRoutes sets up the notification routes
func NotificationRoutes(r *gin.Engine) {
	notification := r.Group("/api/notification", middlewares.AuthMiddleware())
	{
		notification.GET("/all", controllers.GetAllNotifications)
		notification.GET("/mine", controllers.GetNotificationsByUser)
		notification.POST("/read", controllers.MarkNotificationsRead)
	}
}
