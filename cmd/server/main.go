package main

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"shortlink-platform/internal/config"
	"shortlink-platform/internal/handler"
	"shortlink-platform/internal/middleware"
	"shortlink-platform/internal/service"
	"shortlink-platform/internal/store"
	"shortlink-platform/pkg/database"
	auth "shortlink-platform/pkg/jwt"
	"shortlink-platform/pkg/logger"
	"shortlink-platform/pkg/redis"

	_ "shortlink-platform/docs"

	"github.com/gin-gonic/gin"
	redisClient "github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// @title 短链接服务 API
// @version 1.0
// @description 短码分配、解析计数与匿名链接认领
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

func main() {
	logger.InitLogger()
	defer func() {
		if err := logger.Logger.Sync(); err != nil {
			fmt.Println("日志同步失败:", err)
		}
	}()
	sugaredLogger := zap.S()

	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		sugaredLogger.Fatalf("配置加载失败: %v", err)
	}

	db, err := database.InitMySQL(cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Password, cfg.Database.Name)
	if err != nil {
		sugaredLogger.Fatalf("数据库初始化失败: %v", err)
	}
	sugaredLogger.Info("✅ 数据库连接成功")

	var rdb *redisClient.Client
	if cfg.Cache.Host != "" {
		rdb, err = redis.NewClient(&redis.Options{
			Host: cfg.Cache.Host, Port: cfg.Cache.Port, Password: cfg.Cache.Password, DB: cfg.Cache.DB,
		})
		if err != nil {
			sugaredLogger.Warnf("缓存连接失败: %v", err)
		} else {
			defer func() {
				if err := rdb.Close(); err != nil {
					sugaredLogger.Errorf("关闭 Redis 连接失败: %v", err)
				}
			}()
			sugaredLogger.Info("✅ 缓存连接成功")
		}
	}

	tokenManager := auth.NewManager(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.ExpirationHours)
	sugaredLogger.Info("✅ 认证管理器初始化成功")

	// 存储和核心服务都显式注入，不走包级全局
	linkStore := store.NewGormLinkStore(db)
	linkService := service.NewLinkService(linkStore, rdb, service.RealClock{}, sugaredLogger, service.Options{
		AnonymousTTL: time.Duration(cfg.Link.AnonymousTTLDays) * 24 * time.Hour,
		MaxAttempts:  cfg.Link.MaxAllocAttempts,
		CacheTTL:     time.Duration(cfg.Link.CacheTTLHours) * time.Hour,
		StoreTimeout: time.Duration(cfg.Link.StoreTimeoutSecs) * time.Second,
	})
	sugaredLogger.Info("✅ 链接服务初始化成功")

	if cfg.App.Mode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.GinZapRecovery(logger.Logger, true))
	router.Use(middleware.GinZapLogger(logger.Logger))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	authMiddleware := middleware.AuthMiddleware(tokenManager)
	optionalAuth := middleware.OptionalAuth(tokenManager)
	rateLimitMiddleware := middleware.RateLimit(rdb, &cfg.RateLimit)
	router.Use(rateLimitMiddleware)

	linkHandler := handler.NewLinkHandler(linkService)
	authHandler := handler.NewAuthHandler(db, rdb, tokenManager)

	registerRoutes(router, linkHandler, authHandler, authMiddleware, optionalAuth)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	sugaredLogger.Infof("🚀 服务启动成功, 访问 http://localhost:%d", cfg.Server.Port)
	sugaredLogger.Infof("📚 Swagger 文档地址: http://localhost:%d/swagger/index.html", cfg.Server.Port)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		sugaredLogger.Fatalf("服务启动失败: %v", err)
	}
}

func registerRoutes(
	router *gin.Engine,
	linkHandler *handler.LinkHandler,
	authHandler *handler.AuthHandler,
	authMiddleware, optionalAuth gin.HandlerFunc,
) {
	router.GET("/health", linkHandler.HealthCheck)
	router.GET("/link-not-found", linkHandler.LinkNotFound)
	router.GET("/:code", linkHandler.Redirect)

	authGroup := router.Group("/auth")
	{
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/register", authHandler.Register)
	}

	api := router.Group("/api")
	{
		api.GET("/me", authMiddleware, authHandler.GetCurrentUser)

		// 创建和列表允许匿名访问，认领和删除必须带身份
		api.POST("/links", optionalAuth, linkHandler.CreateLink)
		api.GET("/links", optionalAuth, linkHandler.ListLinks)
		api.GET("/links/:code", linkHandler.InspectLink)
		api.DELETE("/links/:code", authMiddleware, linkHandler.DeleteLink)
		api.POST("/links/claim", authMiddleware, linkHandler.ClaimLinks)
	}
}
