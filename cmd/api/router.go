package api

import (
	"net/http"

	enrichDelivery "inbox-organizer-backend/internal/enrichment/delivery"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, inboxHandler *enrichDelivery.InboxHandler) {
	api := r.Group("/api")
	{
		// Health check
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Inbox ingest routes
		inbox := api.Group("/inbox")
		{
			inbox.POST("/reload", inboxHandler.ReloadInbox)
			inbox.GET("/summary", inboxHandler.GetIngestSummary)
		}

		// Email routes
		emails := api.Group("/emails")
		{
			emails.GET("", inboxHandler.ListEmails)
			emails.GET("/:id", inboxHandler.GetEmailByID)
			emails.POST("/:id/enrich", inboxHandler.EnrichEmail)
			emails.DELETE("/:id/enrichment", inboxHandler.DeleteEnrichment)
		}

		// Batch enrichment and dashboard stats
		api.POST("/enrich", inboxHandler.EnrichAll)
		api.GET("/stats", inboxHandler.GetStats)

		// Settings routes - runtime AI configuration
		settings := api.Group("/settings")
		{
			settings.GET("/ollama", GetOllamaSettings)
			settings.PUT("/ollama", UpdateOllamaSettings)
			settings.POST("/ollama/test", TestOllamaConnection)
		}
	}
}
