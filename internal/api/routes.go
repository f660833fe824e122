package api

import (
	"github.com/gin-gonic/gin"

	"homeyield/server/internal/metrics"
)

func SetupRoutes(router *gin.Engine, handler *Handler) {
	router.Use(metrics.Middleware())

	api := router.Group("/api")
	{
		api.POST("/explore", handler.Explore)
		api.POST("/search", handler.Search)
		api.POST("/saved", handler.Saved)
		api.POST("/toggle-save", handler.ToggleSave)
		api.POST("/compare", handler.Compare)
		api.POST("/ingest", handler.Ingest)
		api.GET("/regions", handler.Regions)
		api.GET("/tickers", handler.Tickers)
	}

	router.GET("/healthz", handler.Health)
	router.GET("/metrics", metrics.Handler())
}
