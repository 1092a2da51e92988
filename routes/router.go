package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yatube/yatube/cache"
	"github.com/yatube/yatube/config"
	"github.com/yatube/yatube/controllers"
	"github.com/yatube/yatube/middleware"
	"github.com/yatube/yatube/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB, listingCache cache.Cache) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		// fallback to default recovery if logger failed to init
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	// Record PV after each request
	r.Use(middleware.PageViewRecorder(db))

	r.Static("/static", "./static")

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	authController := controllers.NewAuthController(db)
	postController := controllers.NewPostController(db, listingCache)
	followController := controllers.NewFollowController(db)
	statsController := controllers.NewStatsController(db)

	// Public listings and detail
	r.GET("/", postController.Index)
	r.GET("/group/:slug", postController.GroupPosts)
	r.GET("/posts/:id", postController.PostDetail)
	r.GET("/profile/:username", middleware.OptionalAuth(), postController.Profile)

	// Static about pages
	r.GET("/about/author", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"title": "About the author", "body": "Posts, groups and follows, end to end."})
	})
	r.GET("/about/tech", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"title": "Technology", "body": "Gin, GORM and Redis behind a paginated blog."})
	})

	// Auth endpoints
	auth := r.Group("/auth")
	auth.Use(middleware.RateLimitMiddleware())
	auth.POST("/register", authController.Register)
	auth.POST("/login", authController.Login)
	auth.GET("/login", func(ctx *gin.Context) {
		// Login form is rendered externally; expose the next target.
		utils.Success(ctx, gin.H{"next": ctx.Query("next")})
	})
	auth.GET("/oauth/:provider/login", authController.OAuthRedirect)
	auth.GET("/oauth/:provider/callback", authController.OAuthCallback)
	auth.POST("/logout", middleware.AuthRequired(), authController.Logout)
	auth.GET("/me", middleware.AuthRequired(), authController.Me)

	// Authenticated actions
	protected := r.Group("")
	protected.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware())
	protected.GET("/follow", postController.FollowIndex)
	protected.POST("/create", postController.PostCreate)
	protected.GET("/posts/:id/edit", postController.PostEditForm)
	protected.POST("/posts/:id/edit", postController.PostEdit)
	protected.POST("/posts/:id/comment", postController.AddComment)
	protected.POST("/profile/:username/follow", followController.ProfileFollow)
	protected.POST("/profile/:username/unfollow", followController.ProfileUnfollow)
	protected.POST("/admin/cache/clear", postController.ClearIndexCache)

	// Public stats endpoints
	r.GET("/stats", statsController.GetStats)
	r.GET("/stats/posts/:id", statsController.GetPostStats)

	r.NoRoute(func(ctx *gin.Context) {
		path := ctx.Request.URL.Path
		if strings.HasPrefix(path, "/static/") {
			ctx.JSON(http.StatusNotFound, gin.H{"message": "static asset not found"})
			return
		}
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
