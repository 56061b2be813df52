package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"merchant-backoffice/internal/models"
)

func (h *Handler) CreateSignature(c *gin.Context) {
	var s models.SignatureCapture
	if err := c.ShouldBindJSON(&s); err != nil {
		h.logger.Errorf("Invalid signature request body: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	created, err := h.db.CreateSignature(c.Request.Context(), s)
	if err != nil {
		h.logger.Errorf("Failed to create signature request: %v", err)
		respondError(c, err)
		return
	}
	h.logger.Infof("Created signature request %s for %s", created.ID, created.SignerEmail)
	c.JSON(http.StatusCreated, created)
}

func (h *Handler) ListSignatures(c *gin.Context) {
	sigs, err := h.db.ListSignatures(c.Request.Context(), c.Query("status"))
	if err != nil {
		h.logger.Errorf("Failed to list signatures: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list signatures"})
		return
	}
	c.JSON(http.StatusOK, sigs)
}

func (h *Handler) GetSignature(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	s, err := h.db.GetSignature(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Signature request not found"})
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *Handler) CompleteSignature(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.db.CompleteSignature(c.Request.Context(), id); err != nil {
		h.logger.Errorf("Failed to complete signature %s: %v", id, err)
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	h.logger.Infof("Completed signature %s", id)
	c.JSON(http.StatusOK, gin.H{"status": models.SignatureStatusCompleted})
}

// RunSweep runs one expiration sweep pass immediately instead of waiting for
// the next scheduled tick.
func (h *Handler) RunSweep(c *gin.Context) {
	h.sweeper.Run(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"status": "sweep completed"})
}
