package api

import (
	"errors"
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"merchant-backoffice/internal/models"
	"merchant-backoffice/internal/render"
)

// respondError maps typed errors to HTTP responses: validation failures name
// the first offending field, delete conflicts enumerate the blocking
// triggers.
func respondError(c *gin.Context, err error) {
	var fieldErr *models.FieldError
	if errors.As(err, &fieldErr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": fieldErr.Error(), "field": fieldErr.Field})
		return
	}
	var inUseErr *models.InUseError
	if errors.As(err, &inUseErr) {
		c.JSON(http.StatusConflict, gin.H{"error": inUseErr.Error(), "triggers": inUseErr.Triggers})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

func parseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ID"})
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) CreateTemplate(c *gin.Context) {
	var t models.ActionTemplate
	if err := c.ShouldBindJSON(&t); err != nil {
		h.logger.Errorf("Invalid template request body: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	created, err := h.db.CreateTemplate(c.Request.Context(), t)
	if err != nil {
		h.logger.Errorf("Failed to create template: %v", err)
		respondError(c, err)
		return
	}
	h.logger.Infof("Created template %s (%s)", created.Name, created.ID)
	c.JSON(http.StatusCreated, created)
}

func (h *Handler) GetTemplate(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	t, err := h.db.GetTemplate(c.Request.Context(), id)
	if err != nil {
		h.logger.Errorf("Failed to get template %s: %v", id, err)
		c.JSON(http.StatusNotFound, gin.H{"error": "Template not found"})
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handler) ListTemplates(c *gin.Context) {
	templates, err := h.db.ListTemplates(c.Request.Context(), c.Query("action_type"), c.Query("category"))
	if err != nil {
		h.logger.Errorf("Failed to list templates: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list templates"})
		return
	}
	c.JSON(http.StatusOK, templates)
}

func (h *Handler) UpdateTemplate(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var t models.ActionTemplate
	if err := c.ShouldBindJSON(&t); err != nil {
		h.logger.Errorf("Invalid template request body: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	t.ID = id

	updated, err := h.db.UpdateTemplate(c.Request.Context(), t)
	if err != nil {
		h.logger.Errorf("Failed to update template %s: %v", id, err)
		respondError(c, err)
		return
	}
	h.logger.Infof("Updated template %s (version %d)", updated.ID, updated.Version)
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) DeleteTemplate(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.db.DeleteTemplate(c.Request.Context(), id); err != nil {
		h.logger.Errorf("Failed to delete template %s: %v", id, err)
		respondError(c, err)
		return
	}
	h.logger.Infof("Deleted template %s", id)
	c.Status(http.StatusNoContent)
}

func (h *Handler) DuplicateTemplate(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	dup, err := h.db.DuplicateTemplate(c.Request.Context(), id)
	if err != nil {
		h.logger.Errorf("Failed to duplicate template %s: %v", id, err)
		respondError(c, err)
		return
	}
	h.logger.Infof("Duplicated template %s as %s", id, dup.ID)
	c.JSON(http.StatusCreated, dup)
}

// PreviewTemplate renders the template's text fields against sample values
// supplied by the caller.
func (h *Handler) PreviewTemplate(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var sample map[string]string
	if err := c.ShouldBindJSON(&sample); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	t, err := h.db.GetTemplate(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Template not found"})
		return
	}

	rendered := render.RenderMap(textFields(t), sample)
	c.JSON(http.StatusOK, gin.H{"action_type": t.ActionType, "rendered": rendered})
}

// TemplateVariables returns the deduplicated variable names found across the
// template's text fields, for the preview UI.
func (h *Handler) TemplateVariables(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	t, err := h.db.GetTemplate(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Template not found"})
		return
	}

	fields := textFields(t)
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	values := make([]string, 0, len(fields))
	for _, k := range keys {
		values = append(values, fields[k])
	}

	c.JSON(http.StatusOK, gin.H{"variables": render.ExtractVariables(values...)})
}

// textFields collects the renderable string fields of a template config.
func textFields(t models.ActionTemplate) map[string]string {
	fields := make(map[string]string)
	for k, v := range t.Config {
		if s, ok := v.(string); ok {
			fields[k] = s
		}
	}
	return fields
}
