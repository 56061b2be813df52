package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"merchant-backoffice/internal/models"
)

func TestRespondErrorInUseTemplateNamesBlockingTriggers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	respondError(c, &models.InUseError{
		Name:     "welcome_email",
		Triggers: []string{"application_submitted", "prospect_created"},
	})

	assert.Equal(t, http.StatusConflict, w.Code)

	var body struct {
		Error    string   `json:"error"`
		Triggers []string `json:"triggers"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, []string{"application_submitted", "prospect_created"}, body.Triggers)
	assert.Contains(t, body.Error, "welcome_email")
}

func TestRespondErrorValidationNamesFirstField(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	respondError(c, &models.FieldError{Field: "config.subject", Reason: "required for email templates"})

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body struct {
		Error string `json:"error"`
		Field string `json:"field"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "config.subject", body.Field)
}
