package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"merchant-backoffice/internal/models"
)

func (h *Handler) GetPreference(c *gin.Context) {
	recipient := c.Param("recipient")
	p, err := h.db.GetPreference(c.Request.Context(), recipient)
	if err != nil {
		h.logger.Errorf("Failed to get preference for %s: %v", recipient, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get preference"})
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) UpdatePreference(c *gin.Context) {
	recipient := c.Param("recipient")

	var p models.NotificationPreference
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	p.Recipient = recipient

	if err := h.db.UpsertPreference(c.Request.Context(), p); err != nil {
		h.logger.Errorf("Failed to update preference for %s: %v", recipient, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update preference"})
		return
	}
	c.JSON(http.StatusOK, p)
}
