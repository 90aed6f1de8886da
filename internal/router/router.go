package router

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/projectpulse-io/projectpulse/internal/config"
	"github.com/projectpulse-io/projectpulse/internal/middleware"
	"github.com/projectpulse-io/projectpulse/internal/modules/handler"
	"github.com/projectpulse-io/projectpulse/internal/modules/model"
	"github.com/projectpulse-io/projectpulse/internal/modules/serializer"
	"github.com/projectpulse-io/projectpulse/internal/modules/service"
)

type RouterDeps struct {
	Config           *config.Config
	Log              *zap.Logger
	AuthService      service.AuthService
	AuthHandler      *handler.AuthHandler
	ProjectHandler   *handler.ProjectHandler
	DashboardHandler *handler.DashboardHandler
}

func New(d RouterDeps) *gin.Engine {
	gin.SetMode(d.Config.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowOrigins = d.Config.CORS.AllowOrigins
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	r.Use(cors.New(corsCfg))

	// health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, serializer.Response{Msg: "ok"}) })

	v1 := r.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", d.AuthHandler.Register)
			auth.POST("/login", d.AuthHandler.Login)

			authed := auth.Group("")
			authed.Use(middleware.UserAuth(d.AuthService))
			{
				authed.GET("/me", d.AuthHandler.Me)
				authed.POST("/logout", d.AuthHandler.Logout)
			}
		}

		projects := v1.Group("/projects")
		projects.Use(middleware.UserAuth(d.AuthService))
		{
			projects.GET("", d.ProjectHandler.GetProjects)
			projects.POST("", d.ProjectHandler.CreateProject)
			projects.GET("/:id", d.ProjectHandler.GetProject)
			projects.PUT("/:id", d.ProjectHandler.UpdateProject)
			projects.PATCH("/:id/status", d.ProjectHandler.UpdateProjectStatus)
			projects.DELETE("/:id", middleware.RequireRole(model.RoleAdmin), d.ProjectHandler.DeleteProject)
		}

		dashboard := v1.Group("/dashboard")
		dashboard.Use(middleware.UserAuth(d.AuthService))
		{
			dashboard.GET("/counters", d.DashboardHandler.GetCounters)
			dashboard.GET("/chart", d.DashboardHandler.GetDepartmentChart)
			dashboard.GET("/timeline", d.DashboardHandler.GetTimelineStats)
		}
	}

	return r
}
