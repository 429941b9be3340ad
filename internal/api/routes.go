package api

import (
	"github.com/gin-gonic/gin"

	"compscope/server/internal/database"
	"compscope/server/internal/syncer"
)

func SetupRoutes(router *gin.Engine, db *database.Database, s *syncer.Syncer) {
	handler := NewHandler(db, s, nil)

	api := router.Group("/api")
	{
		api.GET("/markets", handler.GetMarkets)
		api.POST("/deals", handler.CreateDeal)
		api.GET("/deals", handler.GetAllDeals)
		api.POST("/deals/:id/trade-area", handler.CreateTradeArea)
		api.POST("/deals/:id/sync", handler.SyncDeal)
		api.GET("/deals/:id/sync-status", handler.GetSyncStatus)
		api.GET("/deals/:id/metrics", handler.GetMetrics)
		api.GET("/deals/:id/trends", handler.GetTrends)
		api.GET("/deals/:id/comparables", handler.GetComparables)
		api.GET("/deals/:id/analysis-input", handler.GetAnalysisInput)
		api.GET("/alerts", handler.GetMarketAlerts)
		api.POST("/update-coordinates", handler.UpdateCoordinates)
		api.GET("/notifier-config", handler.GetNotifierConfig)
		api.POST("/notifier-config", handler.UpdateNotifierConfig)
		api.POST("/notifier-config/test", handler.TestNotifierConfig)
	}
}
