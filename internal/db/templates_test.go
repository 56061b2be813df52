package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"merchant-backoffice/internal/models"
)

func TestGuardTemplateDeleteRejectsInUseTemplate(t *testing.T) {
	err := guardTemplateDelete("welcome_email", []string{"application_submitted", "prospect_created"})
	require.Error(t, err)

	var inUse *models.InUseError
	require.ErrorAs(t, err, &inUse)
	assert.Equal(t, "welcome_email", inUse.Name)
	assert.Equal(t, []string{"application_submitted", "prospect_created"}, inUse.Triggers)
	assert.Contains(t, inUse.Error(), "application_submitted")
}

func TestGuardTemplateDeleteAllowsDetachedTemplate(t *testing.T) {
	assert.NoError(t, guardTemplateDelete("welcome_email", nil))
	assert.NoError(t, guardTemplateDelete("welcome_email", []string{}))
}
