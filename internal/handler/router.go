package handler

import (
	"net/http"

	"github.com/SergeiKhy/url-analytics/internal/middleware"
	"github.com/SergeiKhy/url-analytics/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RouterDeps зависимости HTTP слоя
type RouterDeps struct {
	URLService       service.URLService
	AnalyticsService service.AnalyticsService
	ClickProcessor   service.ClickProcessor
	Tokens           middleware.TokenParser
	CreateLimiter    *middleware.RateLimiter
	AnalyticsLimiter *middleware.RateLimiter
	BaseURL          string
	Logger           *zap.Logger
}

func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(deps.Logger))

	urlHandler := NewURLHandler(deps.URLService, deps.ClickProcessor, deps.BaseURL, deps.Logger)
	analyticsHandler := NewAnalyticsHandler(deps.AnalyticsService, deps.Logger)

	router.GET("/api/v1/health", HealthCheck(deps.ClickProcessor))

	// Все эндпоинты /api требуют токен
	api := router.Group("/api")
	api.Use(middleware.RequireAuth(deps.Tokens))
	{
		api.POST("/shorten", limit(deps.CreateLimiter), urlHandler.Shorten)
		api.GET("/shorten", urlHandler.ListURLs)

		api.GET("/analytics/:alias", limit(deps.AnalyticsLimiter), analyticsHandler.GetURLAnalytics)
		api.GET("/topicAnalytics/:topic", limit(deps.AnalyticsLimiter), analyticsHandler.GetTopicAnalytics)
		api.GET("/overallAnalytics", limit(deps.AnalyticsLimiter), analyticsHandler.GetOverallAnalytics)
	}

	// Редирект (корневой путь) без аутентификации
	router.GET("/:alias", urlHandler.Redirect)

	return router
}

// HealthCheck godoc
// @Summary Health check
// @Description Service liveness and click queue state
// @Tags health
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/v1/health [get]
func HealthCheck(clickProcessor service.ClickProcessor) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"clicks": clickProcessor.Stats(),
		})
	}
}

func limit(rl *middleware.RateLimiter) gin.HandlerFunc {
	if rl == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return rl.Middleware()
}
