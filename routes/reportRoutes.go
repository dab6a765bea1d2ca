package routes

import (
	"smartcite/controllers"
	"smartcite/middlewares"

	"github.com/gin-gonic/gin"
)

// ReportRoutes sets up the report routes
func ReportRoutes(r *gin.Engine) {
	report := r.Group("/api/report", middlewares.AuthMiddleware())
	{
		report.POST("/create", middlewares.ReportRateLimiter(10), controllers.CreateReport)
		report.GET("/all", controllers.GetAllReports)
		report.GET("/mine", controllers.GetReportsByUser)
		report.GET("/:id", controllers.GetReport)
		report.PUT("/:id", controllers.UpdateReport)
		report.DELETE("/:id", controllers.DeleteReport)
		report.PATCH("/:id/status", controllers.AdvanceReportStatus)
	}
}
