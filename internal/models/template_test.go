package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionTemplateValidate(t *testing.T) {
	tests := []struct {
		name      string
		template  ActionTemplate
		wantField string
	}{
		{
			name:      "missing name",
			template:  ActionTemplate{ActionType: ActionTypeEmail},
			wantField: "name",
		},
		{
			name:      "missing action type",
			template:  ActionTemplate{Name: "welcome"},
			wantField: "action_type",
		},
		{
			name:      "unknown action type",
			template:  ActionTemplate{Name: "welcome", ActionType: "pigeon"},
			wantField: "action_type",
		},
		{
			name: "email missing subject",
			template: ActionTemplate{Name: "welcome", ActionType: ActionTypeEmail, Config: map[string]interface{}{
				"html_content": "<p>hi</p>",
			}},
			wantField: "config.subject",
		},
		{
			name: "email missing html content",
			template: ActionTemplate{Name: "welcome", ActionType: ActionTypeEmail, Config: map[string]interface{}{
				"subject": "Welcome",
			}},
			wantField: "config.html_content",
		},
		{
			name:      "sms missing message",
			template:  ActionTemplate{Name: "alert", ActionType: ActionTypeSMS},
			wantField: "config.message",
		},
		{
			name:      "webhook missing url",
			template:  ActionTemplate{Name: "hook", ActionType: ActionTypeWebhook},
			wantField: "config.url",
		},
		{
			name: "webhook relative url",
			template: ActionTemplate{Name: "hook", ActionType: ActionTypeWebhook, Config: map[string]interface{}{
				"url":    "/relative/path",
				"method": "POST",
			}},
			wantField: "config.url",
		},
		{
			name: "webhook bad method",
			template: ActionTemplate{Name: "hook", ActionType: ActionTypeWebhook, Config: map[string]interface{}{
				"url":    "https://example.com/hook",
				"method": "YEET",
			}},
			wantField: "config.method",
		},
		{
			name:      "notification missing title",
			template:  ActionTemplate{Name: "ping", ActionType: ActionTypeNotification},
			wantField: "config.title",
		},
		{
			name:      "slack missing message",
			template:  ActionTemplate{Name: "slack", ActionType: ActionTypeSlack},
			wantField: "config.message",
		},
		{
			name: "teams bad webhook url",
			template: ActionTemplate{Name: "teams", ActionType: ActionTypeTeams, Config: map[string]interface{}{
				"message":     "deployed",
				"webhook_url": "not a url",
			}},
			wantField: "config.webhook_url",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.template.Validate()
			require.Error(t, err)
			var fieldErr *FieldError
			require.ErrorAs(t, err, &fieldErr)
			assert.Equal(t, tt.wantField, fieldErr.Field)
		})
	}
}

func TestActionTemplateValidateAccepts(t *testing.T) {
	tests := []ActionTemplate{
		{Name: "welcome", ActionType: ActionTypeEmail, Config: map[string]interface{}{
			"subject":      "Welcome {{ownerName}}",
			"html_content": "<p>Hello</p>",
		}},
		{Name: "alert", ActionType: ActionTypeSMS, Config: map[string]interface{}{
			"message": "Your application was approved",
		}},
		{Name: "hook", ActionType: ActionTypeWebhook, Config: map[string]interface{}{
			"url":    "https://example.com/hook",
			"method": "POST",
		}},
		{Name: "ping", ActionType: ActionTypeNotification, Config: map[string]interface{}{
			"title":   "Application update",
			"message": "Status changed",
		}},
		{Name: "slack", ActionType: ActionTypeSlack, Config: map[string]interface{}{
			"message": "New application submitted",
		}},
		{Name: "teams", ActionType: ActionTypeTeams, Config: map[string]interface{}{
			"message":     "New application submitted",
			"webhook_url": "https://outlook.office.com/webhook/abc",
		}},
	}

	for _, tmpl := range tests {
		assert.NoError(t, tmpl.Validate(), "template %s", tmpl.Name)
	}
}
