package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	defaultActivityLimit = 50
	maxActivityLimit     = 500
)

func (h *Handler) ListActivity(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultActivityLimit)))
	if err != nil || limit <= 0 || limit > maxActivityLimit {
		limit = defaultActivityLimit
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	entries, err := h.db.ListActivity(c.Request.Context(), c.Query("channel"), c.Query("status"), limit, offset)
	if err != nil {
		h.logger.Errorf("Failed to list activity: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list activity"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries, "limit": limit, "offset": offset})
}

// ActivitySummary aggregates send counts by channel and status over a
// trailing window (default 7 days).
func (h *Handler) ActivitySummary(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", "7"))
	if err != nil || days <= 0 {
		days = 7
	}
	since := time.Now().Add(-time.Duration(days) * 24 * time.Hour)

	summary, err := h.db.SummarizeActivity(c.Request.Context(), since)
	if err != nil {
		h.logger.Errorf("Failed to summarize activity: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to summarize activity"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"since": since, "summary": summary})
}
