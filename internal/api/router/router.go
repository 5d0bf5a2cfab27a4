// Package router assembles the gin engine: middleware, API routes, static uploads and docs.
package router

import (
	"net/http"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	_ "github.com/d60-Lab/socialfeed/docs"
	"github.com/d60-Lab/socialfeed/internal/api/handler"
	"github.com/d60-Lab/socialfeed/internal/api/middleware"
	"github.com/d60-Lab/socialfeed/internal/service"
	"github.com/d60-Lab/socialfeed/pkg/logger"
)

type Options struct {
	Mode        string
	ServiceName string
	Tracing     bool
	Swagger     bool
	// UploadDir 非空时在 UploadPrefix 下提供本地媒体文件
	UploadDir         string
	UploadPrefix      string
	MaxMultipartBytes int64
}

func New(h *handler.Handler, auth service.AuthService, opts Options) *gin.Engine {
	if opts.Mode != "" {
		gin.SetMode(opts.Mode)
	}
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := service.RegisterValidations(v); err != nil {
			logger.Warn("register validations failed", zap.Error(err))
		}
	}

	r := gin.New()
	if opts.MaxMultipartBytes > 0 {
		r.MaxMultipartMemory = opts.MaxMultipartBytes
	}
	r.Use(middleware.Recovery(), middleware.Logger())
	if opts.Tracing {
		r.Use(otelgin.Middleware(opts.ServiceName))
	}
	// SSE 连接不能经过 gzip 缓冲
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/api/notifications"})))

	r.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"message": "pong"}) })
	if opts.UploadDir != "" {
		r.Static(opts.UploadPrefix, opts.UploadDir)
	}
	r.GET("/media/:id", h.ServeMedia)
	if opts.Swagger {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	required := middleware.Auth(auth)
	optional := middleware.OptionalAuth(auth)

	api := r.Group("/api")
	{
		a := api.Group("/auth")
		a.POST("/signup", h.Signup)
		a.POST("/login", h.Login)
		a.GET("/me", required, h.Me)

		u := api.Group("/users")
		u.GET("", h.SearchUsers)
		u.PUT("", required, h.UpdateProfile)
		u.GET("/:username", optional, h.GetProfile)
		u.POST("/:username/follow", required, h.Follow)
		u.POST("/:username/unfollow", required, h.Unfollow)
		u.GET("/:username/following", h.ListFollowing)
		u.GET("/:username/followers", h.ListFollowers)

		p := api.Group("/posts")
		p.POST("", required, h.CreatePost)
		p.GET("/feed", required, h.GetFeed)
		p.GET("/explore", h.Explore)
		p.GET("/user/:userId", h.ListUserPosts)
		p.GET("/:id", h.GetPost)
		p.DELETE("/:id", required, h.DeletePost)
		p.POST("/:id/like", required, h.ToggleLike)
		p.POST("/:id/comment", required, h.AddComment)
		p.POST("/:id/repost", required, h.Repost)

		api.GET("/notifications/stream", required, h.NotificationStream)
	}
	return r
}
