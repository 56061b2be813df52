package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"merchant-backoffice/internal/models"
)

func (h *Handler) CreateTrigger(c *gin.Context) {
	var t models.TriggerCatalogEntry
	if err := c.ShouldBindJSON(&t); err != nil {
		h.logger.Errorf("Invalid trigger request body: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	created, err := h.db.CreateTrigger(c.Request.Context(), t)
	if err != nil {
		h.logger.Errorf("Failed to create trigger: %v", err)
		respondError(c, err)
		return
	}
	h.logger.Infof("Created trigger %s (%s)", created.TriggerKey, created.ID)
	c.JSON(http.StatusCreated, created)
}

func (h *Handler) GetTrigger(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	t, err := h.db.GetTrigger(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Trigger not found"})
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handler) ListTriggers(c *gin.Context) {
	triggers, err := h.db.ListTriggers(c.Request.Context())
	if err != nil {
		h.logger.Errorf("Failed to list triggers: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list triggers"})
		return
	}
	c.JSON(http.StatusOK, triggers)
}

func (h *Handler) UpdateTrigger(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var t models.TriggerCatalogEntry
	if err := c.ShouldBindJSON(&t); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	t.ID = id

	if err := h.db.UpdateTrigger(c.Request.Context(), t); err != nil {
		h.logger.Errorf("Failed to update trigger %s: %v", id, err)
		respondError(c, err)
		return
	}

	updated, err := h.db.GetTrigger(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Trigger not found"})
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) DeleteTrigger(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.db.DeleteTrigger(c.Request.Context(), id); err != nil {
		h.logger.Errorf("Failed to delete trigger %s: %v", id, err)
		respondError(c, err)
		return
	}
	h.logger.Infof("Deleted trigger %s", id)
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListTriggerActions(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	actions, err := h.db.ListTriggerActions(c.Request.Context(), id)
	if err != nil {
		h.logger.Errorf("Failed to list actions for trigger %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list trigger actions"})
		return
	}
	c.JSON(http.StatusOK, actions)
}

func (h *Handler) CreateTriggerAction(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var a models.TriggerAction
	if err := c.ShouldBindJSON(&a); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	a.TriggerID = id

	created, err := h.db.CreateTriggerAction(c.Request.Context(), a)
	if err != nil {
		h.logger.Errorf("Failed to create action for trigger %s: %v", id, err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *Handler) UpdateTriggerAction(c *gin.Context) {
	actionID, ok := parseID(c, "actionID")
	if !ok {
		return
	}
	var a models.TriggerAction
	if err := c.ShouldBindJSON(&a); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	a.ID = actionID

	if err := h.db.UpdateTriggerAction(c.Request.Context(), a); err != nil {
		h.logger.Errorf("Failed to update trigger action %s: %v", actionID, err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *Handler) DeleteTriggerAction(c *gin.Context) {
	actionID, ok := parseID(c, "actionID")
	if !ok {
		return
	}
	if err := h.db.DeleteTriggerAction(c.Request.Context(), actionID); err != nil {
		h.logger.Errorf("Failed to delete trigger action %s: %v", actionID, err)
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// FireTrigger hands a trigger key and its event context to the dispatcher.
// Unknown or inactive keys are accepted and silently dropped, so the response
// is 202 either way.
func (h *Handler) FireTrigger(c *gin.Context) {
	key := c.Param("key")

	var data map[string]string
	if err := c.ShouldBindJSON(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	h.dispatcher.Fire(c.Request.Context(), key, data)
	c.JSON(http.StatusAccepted, gin.H{"status": "accepted", "trigger_key": key})
}
