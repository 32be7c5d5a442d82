package routes

import (
	"github.com/gin-gonic/gin"

	"civicconnect-be/controllers"
	"civicconnect-be/middlewares"
)

// AuthRoutes sets up the authentication routes
func AuthRoutes(r *gin.RouterGroup, ac *controllers.AuthController) {
	auth := r.Group("/auth")
	{
		auth.POST("/register", ac.RegisterUser)
		auth.POST("/login", ac.LoginUser)
		auth.POST("/logout", middlewares.RequireAuth(), ac.LogoutUser)
		auth.GET("/me", ac.GetMe)
	}
}
