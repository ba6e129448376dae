package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"news-hub/api/handlers"
	"news-hub/api/middleware"
	"news-hub/metrics"
	"news-hub/services"
	_ "news-hub/docs"
)

// Deps are the services the HTTP surface is built from.
type Deps struct {
	Articles *services.ArticleService
	Chat     *services.ChatService
	Sync     *services.SyncService
	Metrics  *metrics.Metrics
	Health   map[string]handlers.HealthCheck
}

func New(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestTrace(), middleware.CORS(), middleware.Metrics(d.Metrics))

	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthHandler(d.Health))

		api.POST("/sync", handlers.SyncHandler(d.Sync))

		api.GET("/articles", handlers.ListArticlesHandler(d.Articles))
		api.GET("/articles/:id", handlers.GetArticleHandler(d.Articles))

		api.POST("/chat", handlers.ChatHandler(d.Chat))
		api.GET("/chat/:sessionId", handlers.ChatHistoryHandler(d.Chat))
	}

	return r
}
