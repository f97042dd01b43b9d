// Package router assembles the gin engine.
package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/lkendi/Task-Management-System/internal/controllers"
	"github.com/lkendi/Task-Management-System/internal/middleware"
)

// Handlers are the controllers served by the engine.
type Handlers struct {
	Auth       *controllers.AuthController
	Users      *controllers.UserController
	Projects   *controllers.ProjectController
	Tasks      *controllers.TaskController
	QRCodes    *controllers.QRCodeController
	Dashboards *controllers.DashboardController
	DB         controllers.Pinger
}

// Options configures the middleware stack. Nil limiters disable rate limiting.
type Options struct {
	AllowedOrigins []string
	GeneralLimiter *middleware.RateLimiter
	LoginLimiter   *middleware.RateLimiter
	Tokens         middleware.TokenVerifier
	Users          middleware.UserFinder
}

func New(opts Options, h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     opts.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint (no rate limiting)
	r.GET("/health", controllers.Health(h.DB))

	app := r.Group("")
	app.Use(middleware.Session(opts.Tokens, opts.Users))
	app.Use(middleware.RequestLogger())
	if opts.GeneralLimiter != nil {
		app.Use(opts.GeneralLimiter.Middleware())
	}

	login := []gin.HandlerFunc{h.Auth.Login}
	if opts.LoginLimiter != nil {
		login = append([]gin.HandlerFunc{opts.LoginLimiter.Middleware()}, login...)
	}
	app.GET("/login", h.Auth.LoginPage)
	app.POST("/login", login...)
	app.POST("/logout", h.Auth.Logout)
	app.GET("/me", h.Auth.Me)
	app.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/my-dashboard")
	})

	users := app.Group("/users")
	{
		users.GET("", h.Users.List)
		users.POST("", h.Users.Create)
		users.GET("/:id", h.Users.Get)
		users.PUT("/:id", h.Users.Update)
		users.DELETE("/:id", h.Users.Delete)
	}

	projects := app.Group("/projects")
	{
		projects.GET("", h.Projects.List)
		projects.POST("", h.Projects.Create)
		projects.GET("/:id", h.Projects.Get)
		projects.PUT("/:id", h.Projects.Update)
		projects.DELETE("/:id", h.Projects.Delete)
	}

	tasks := app.Group("/tasks")
	{
		tasks.GET("", h.Tasks.List)
		tasks.POST("", h.Tasks.Create)
		tasks.GET("/:id", h.Tasks.Get)
		tasks.PATCH("/:id", h.Tasks.Update)
		tasks.DELETE("/:id", h.Tasks.Delete)
		tasks.GET("/:id/qrcode", h.QRCodes.TaskQRCode)
	}

	app.GET("/my-tasks", h.Tasks.MyTasks)
	app.PATCH("/my-tasks/:id", h.Tasks.UpdateMyTask)
	app.GET("/dashboard", h.Dashboards.Global)
	app.GET("/my-dashboard", h.Dashboards.Mine)

	return r
}
