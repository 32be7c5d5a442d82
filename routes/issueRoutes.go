package routes

import (
	"github.com/gin-gonic/gin"

	"civicconnect-be/controllers"
	"civicconnect-be/middlewares"
)

// IssueRoutes sets up the issue routes
func IssueRoutes(r *gin.RouterGroup, ic *controllers.IssueController, limiter gin.HandlerFunc) {
	issue := r.Group("/issues")
	{
		issue.GET("", ic.GetIssues)
		issue.GET("/stats", ic.GetIssueStats)
		issue.POST("", middlewares.RequireAuth(), limiter, ic.CreateIssue)
		issue.PATCH("/:id", middlewares.RequireManager(), ic.UpdateIssue)
	}
}
