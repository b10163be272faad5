package api

import (
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, handler *Handler) {
	router.GET("/health", handler.HealthCheck)
	router.GET("/metrics", handler.Metrics)

	v1 := router.Group("/api/v1")
	{
		items := v1.Group("/items")
		{
			items.POST("", handler.IngestItem)        // POST /api/v1/items
			items.POST("/batch", handler.IngestBatch) // POST /api/v1/items/batch
		}

		triggers := v1.Group("/triggers")
		{
			triggers.GET("", handler.ListTriggers)   // GET /api/v1/triggers
			triggers.GET("/stats", handler.GetStats) // GET /api/v1/triggers/stats
		}

		v1.GET("/export/csv", handler.ExportCSV) // GET /api/v1/export/csv
	}
}
