package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/custodian-app/upkeep/docs"
	"github.com/custodian-app/upkeep/internal/config"
	"github.com/custodian-app/upkeep/internal/middleware"
	"github.com/custodian-app/upkeep/internal/modules/handler"
	"github.com/custodian-app/upkeep/internal/modules/serializer"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	Config          *config.Config
	Log             *zap.Logger
	Redis           *redis.Client
	AuthHandler     *handler.AuthHandler
	UserHandler     *handler.UserHandler
	AssetHandler    *handler.AssetHandler
	TaskHandler     *handler.TaskHandler
	CalendarHandler *handler.CalendarHandler
}

func NewRouter(d RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	if d.Config.Telemetry.Enabled && d.Config.Telemetry.OtlpEndpoint != "" {
		r.Use(middleware.OtelTracing(d.Config.App.Name))
		r.Use(middleware.TraceID())
	}

	r.Use(middleware.ZapLogger(d.Log))

	// health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, serializer.Response{Msg: "ok"}) })

	// swagger
	r.GET("/swagger", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/signup", d.AuthHandler.Signup)
			auth.POST("/signin", d.AuthHandler.Signin)
			auth.GET("/refresh", d.AuthHandler.Refresh)
			auth.POST("/signout", middleware.UserAuth(d.Config), d.AuthHandler.Signout)
		}

		authed := v1.Group("")
		authed.Use(middleware.UserAuth(d.Config))
		{
			authed.GET("/me", d.UserHandler.Me)

			assets := authed.Group("/assets")
			{
				assets.GET("", d.AssetHandler.ListAssets)
				assets.POST("", d.AssetHandler.CreateAsset)
				assets.GET("/:asset_id", d.AssetHandler.GetAsset)
				assets.PATCH("/:asset_id", d.AssetHandler.UpdateAsset)
				assets.DELETE("/:asset_id", d.AssetHandler.DeleteAsset)

				assets.POST("/:asset_id/image", d.AssetHandler.UploadImage)
				assets.GET("/:asset_id/image_url", d.AssetHandler.ImageURL)

				assets.GET("/:asset_id/tasks", d.TaskHandler.ListTasks)
				assets.POST("/:asset_id/tasks/generate",
					middleware.RateLimit(d.Redis, d.Log, d.Config.Tasks.RateLimitPerMin),
					d.TaskHandler.GenerateTasks)

				assets.GET("/:asset_id/tasks/:task_id/ics", d.CalendarHandler.TaskICS)
			}
		}
	}

	return r
}
