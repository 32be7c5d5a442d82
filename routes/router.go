package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"civicconnect-be/controllers"
	"civicconnect-be/middlewares"
)

// Options carries the HTTP-level settings of the API.
type Options struct {
	AllowedOrigins []string
	Cookies        controllers.CookieSettings
	Redis          *redis.Client
	LimitPrefix    string
	DailyLimit     int
}

// Services is what the router needs from the service layer. The resolver
// is usually the same value as Auth.
type Services struct {
	Auth     controllers.AuthService
	Resolver middlewares.SessionResolver
	Issues   controllers.IssueService
}

// NewRouter builds the gin engine with every route mounted.
func NewRouter(svc Services, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(middlewares.CORS(opts.AllowedOrigins))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	ac := controllers.NewAuthController(svc.Auth, opts.Cookies)
	api := r.Group("/api", middlewares.Authenticate(svc.Resolver, ac.ClearTokenCookie))
	AuthRoutes(api, ac)
	IssueRoutes(api, controllers.NewIssueController(svc.Issues),
		middlewares.IssueRateLimiter(opts.Redis, opts.LimitPrefix, opts.DailyLimit))

	return r
}
