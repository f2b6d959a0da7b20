package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	cartHandler "smart-grocer/internal/api/handlers/cart"
	catalogHandler "smart-grocer/internal/api/handlers/catalog"
	"smart-grocer/internal/api/handlers/health"
	recipeHandler "smart-grocer/internal/api/handlers/recipe"
	"smart-grocer/internal/api/middleware"
	"smart-grocer/internal/core/ai/cache"
	"smart-grocer/internal/core/ai/service"
	"smart-grocer/internal/core/catalog"
	"smart-grocer/internal/core/enrich"
	"smart-grocer/internal/core/predict"
	"smart-grocer/internal/core/rank"
	recipeService "smart-grocer/internal/core/recipe"
	"smart-grocer/internal/infrastructure/config"
	"smart-grocer/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// 超時設置
	timeoutDuration = 120 * time.Second
	// 請求體大小限制 (1MB)，這個服務只收小 JSON
	maxBodySize = 1 << 20
)

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, cacheManager *cache.CacheManager) (*gin.Engine, error) {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	// 設置 gin 模式
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	// 創建路由引擎
	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(requestid.New()) // 自動生成請求 ID

	// CORS 設置
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// 請求體大小限制
	router.Use(middleware.BodySizeLimit(maxBodySize))

	// 速率限制與請求去重
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}
	router.Use(middleware.Deduplication(cfg))

	common.LogInfo("Initializing services",
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
		zap.String("model", cfg.OpenRouter.Model),
		zap.String("catalog_path", cfg.Catalog.Path),
		zap.Duration("timeout", timeoutDuration),
	)

	// 初始化商品目錄
	catalogStore := catalog.NewStore(cfg.Catalog.Path)
	common.LogInfo("商品目錄已載入",
		zap.Int("products", catalogStore.Len()),
	)

	// 初始化 AI 服務
	aiService, err := service.NewService(cfg, cacheManager)
	if err != nil || aiService == nil {
		common.LogError("Failed to initialize AI service", zap.Error(err))
		return nil, fmt.Errorf("failed to initialize AI service: %w", err)
	}

	// 初始化個人化、預測與豐富化服務
	rankService := rank.NewService(rank.NewKumoRanker(cfg))
	predictService := predict.NewService(cfg, catalogStore)
	enrichService := enrich.NewService(catalogStore, rankService)
	recipeSvc := recipeService.NewRecipeService(aiService)

	// 全局中間件：設置超時和服務
	router.Use(func(c *gin.Context) {
		// 設置請求超時
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)

		// 設置配置與目錄，健康檢查會用到
		c.Set("config", cfg)
		c.Set("catalog_store", catalogStore)

		// 處理請求
		c.Next()

		// 檢查是否超時
		if ctx.Err() == context.DeadlineExceeded {
			common.LogError("Request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", c.GetHeader("X-Request-ID")),
				zap.Duration("timeout", timeoutDuration),
			)
			c.JSON(http.StatusGatewayTimeout, gin.H{
				"error": "Request timeout",
				"code":  "REQUEST_TIMEOUT",
				"details": gin.H{
					"timeout": timeoutDuration.String(),
				},
			})
			c.Abort()
			return
		}
	})

	// 健康檢查路由
	router.GET("/health", health.HealthCheck)
	router.GET("/ready", health.ReadinessCheck)
	router.GET("/live", health.LivenessCheck)

	// API 路由組
	api := router.Group("/api/v1")
	{
		catalogHandlerInstance := catalogHandler.NewHandler(catalogStore)
		cartHandlerInstance := cartHandler.NewHandler(predictService)
		recipeHandlerInstance := recipeHandler.NewHandler(recipeSvc, predictService, enrichService)

		// 商品目錄
		api.GET("/products", catalogHandlerInstance.HandleList)

		// 購物預測
		api.GET("/cart/:user_id", cartHandlerInstance.HandleCart)
		api.GET("/recommendations/:user_id", cartHandlerInstance.HandleRecommendations)
		api.GET("/delivery/:user_id", cartHandlerInstance.HandleDelivery)

		// 食譜與食材購買選項
		recipeGroup := api.Group("/recipe")
		{
			recipeGroup.POST("/generate", recipeHandlerInstance.HandleGenerate)
		}
		api.POST("/ingredients/options", recipeHandlerInstance.HandleIngredientOptions)
	}

	common.LogInfo("Router setup completed successfully",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
		zap.Int("catalog_products", catalogStore.Len()),
		zap.Bool("cache_manager_initialized", cacheManager != nil),
		zap.Duration("timeout", timeoutDuration),
		zap.Int64("max_body_size", maxBodySize),
	)

	return router, nil
}
