package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/GameNest/controllers"
	"github.com/GameNest/initializers"
	"github.com/GameNest/middlewares"
	"github.com/GameNest/services"
)

func main() {
	initializers.LoadEnv()
	cfg, err := initializers.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}
	gin.SetMode(cfg.GinMode)

	ctx := context.Background()
	db, sqlDB, err := initializers.ConnectDB(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer sqlDB.Close()

	if cfg.DBAutoMigrate {
		if err := initializers.Migrate(ctx, db); err != nil {
			log.Fatal(err)
		}
		log.Println("Database schema applied")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := services.NewMetrics(registry)

	timeout := cfg.DBQueryTimeout
	tokens := services.NewTokenService(cfg.Secret, cfg.TokenTTL, cfg.ResetTokenTTL)
	relations := services.NewRelationService(db, timeout, metrics)
	comments := services.NewCommentService(db, timeout, cfg.MaxCommentDepth)
	hub := services.NewChatHub(cfg.ChatSendBuffer, metrics)

	users := controllers.NewUserController(services.NewUserService(db, tokens, timeout))
	games := controllers.NewGameController(services.NewGameService(db, relations, timeout))
	community := controllers.NewCommunityController(services.NewCommunityService(db, relations, timeout))
	gameComments := controllers.NewCommentController(comments, services.GameComments)
	communityComments := controllers.NewCommentController(comments, services.CommunityComments)
	chat := controllers.NewChatController(
		services.NewChatGate(db, tokens, timeout, metrics),
		hub,
		services.NewChatService(db, hub, timeout, metrics),
		cfg.AllowedOrigins,
	)
	health := controllers.NewHealthController(sqlDB, timeout)

	router := gin.Default()
	router.Use(middlewares.RequestID(), middlewares.Metrics(metrics))

	getKey := func(c *gin.Context) string {
		if gin.Mode() == gin.DebugMode {
			return c.FullPath()
		}
		return c.ClientIP()
	}
	requireAuth := middlewares.CheckAuth(tokens)
	optionalAuth := middlewares.OptionalAuth(tokens)

	router.GET("/ping", health.Ping)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	// auth routes
	auth := router.Group("/auth")
	{
		auth.POST("/register", middlewares.RateLimitMiddleware(2, 2, getKey), users.Register)
		auth.POST("/login", middlewares.RateLimitMiddleware(2, 2, getKey), users.Login)
		auth.POST("/find-id", middlewares.RateLimitMiddleware(2, 2, getKey), users.FindLoginID)
		auth.POST("/find-password", middlewares.RateLimitMiddleware(2, 2, getKey), users.FindPassword)
		auth.PUT("/reset-password", middlewares.RateLimitMiddleware(2, 2, getKey), users.ResetPassword)
		auth.PATCH("/update", requireAuth, users.UpdateProfile)
		auth.PUT("/change-password", requireAuth, users.ChangePassword)
		auth.GET("/me", requireAuth, users.Me)
	}

	// game routes
	game := router.Group("/game")
	{
		game.GET("/list", games.List)
		game.GET("/likes", requireAuth, games.Liked)
		game.GET("/category/:type/:value", games.ByCategory)
		game.GET("/:id/detail", optionalAuth, games.Detail)
		game.POST("/:id/like", requireAuth, games.ToggleLike)
		game.POST("/:id/rating", requireAuth, games.Rate)
		game.GET("/:id/rating", optionalAuth, games.Rating)
	}

	// community routes
	posts := router.Group("/community")
	{
		posts.GET("", community.List)
		posts.POST("/write", requireAuth, community.Create)
		posts.GET("/my-posts", requireAuth, community.MyPosts)
		posts.GET("/:id", optionalAuth, community.Detail)
		posts.POST("/:id/action", requireAuth, community.Act)
	}
	router.GET("/myScrap", requireAuth, community.Scraps)

	// comment routes
	for prefix, cc := range map[string]*controllers.CommentController{
		"/gameComment":      gameComments,
		"/communityComment": communityComments,
	} {
		group := router.Group(prefix)
		group.GET("/:id/comments", cc.List)
		group.POST("/:id/comments", requireAuth, cc.Create)
		group.PUT("/:id/comments/:commentId", requireAuth, cc.Update)
		group.DELETE("/:id/comments/:commentId", requireAuth, cc.Delete)
	}
	router.GET("/myComment", requireAuth, gameComments.Mine)

	// chat routes
	router.GET("/chat/ws", chat.Connect)
	router.GET("/chat/messages", chat.History)

	if err := router.Run(cfg.Addr()); err != nil {
		log.Fatal(err)
	}
}
