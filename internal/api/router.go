package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"merchant-backoffice/internal/config"
	"merchant-backoffice/internal/logging"
)

func NewRouter(h *Handler, logger *logging.Logger, cfg config.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLoggingMiddleware(logger))

	api := r.Group(cfg.API.BasePath)
	{
		// Action templates
		api.POST("/templates", h.CreateTemplate)
		api.GET("/templates", h.ListTemplates)
		api.GET("/templates/:id", h.GetTemplate)
		api.PUT("/templates/:id", h.UpdateTemplate)
		api.DELETE("/templates/:id", h.DeleteTemplate)
		api.POST("/templates/:id/duplicate", h.DuplicateTemplate)
		api.POST("/templates/:id/preview", h.PreviewTemplate)
		api.GET("/templates/:id/variables", h.TemplateVariables)

		// Trigger catalog
		api.POST("/triggers", h.CreateTrigger)
		api.GET("/triggers", h.ListTriggers)
		api.GET("/triggers/:id", h.GetTrigger)
		api.PUT("/triggers/:id", h.UpdateTrigger)
		api.DELETE("/triggers/:id", h.DeleteTrigger)

		// Trigger actions
		api.GET("/triggers/:id/actions", h.ListTriggerActions)
		api.POST("/triggers/:id/actions", h.CreateTriggerAction)
		api.PUT("/triggers/:id/actions/:actionID", h.UpdateTriggerAction)
		api.DELETE("/triggers/:id/actions/:actionID", h.DeleteTriggerAction)

		// Test firing
		api.POST("/dispatch/:key", h.FireTrigger)

		// Signature requests
		api.POST("/signatures", h.CreateSignature)
		api.GET("/signatures", h.ListSignatures)
		api.GET("/signatures/:id", h.GetSignature)
		api.POST("/signatures/:id/complete", h.CompleteSignature)
		api.POST("/sweep", h.RunSweep)

		// Dispatch log
		api.GET("/activity", h.ListActivity)
		api.GET("/activity/summary", h.ActivitySummary)

		// Recipient preferences
		api.GET("/preferences/:recipient", h.GetPreference)
		api.PUT("/preferences/:recipient", h.UpdatePreference)
	}

	// API-key authenticated surface for external integrations
	integration := r.Group("/integration")
	integration.Use(APIKeyAuthMiddleware(cfg.Integration.APIKeys, NewHourlyLimiter(cfg.Integration.HourlyLimit), logger))
	{
		integration.POST("/dispatch/:key", h.FireTrigger)
	}

	r.GET("/ws", h.WebSocket)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return r
}
