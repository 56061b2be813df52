package models

import (
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
)

// Supported action template channel types.
const (
	ActionTypeEmail        = "email"
	ActionTypeSMS          = "sms"
	ActionTypeWebhook      = "webhook"
	ActionTypeNotification = "notification"
	ActionTypeSlack        = "slack"
	ActionTypeTeams        = "teams"
)

var actionTypes = map[string]bool{
	ActionTypeEmail:        true,
	ActionTypeSMS:          true,
	ActionTypeWebhook:      true,
	ActionTypeNotification: true,
	ActionTypeSlack:        true,
	ActionTypeTeams:        true,
}

var webhookMethods = map[string]bool{
	"GET": true, "POST": true, "PUT": true, "PATCH": true, "DELETE": true,
}

// ActionTemplate is a stored, channel-typed, variable-parameterized message
// definition. Config holds channel-specific fields (subject, message, url...).
// Variables maps variable name to a human description used by the preview UI.
type ActionTemplate struct {
	ID          uuid.UUID              `json:"id"`
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	ActionType  string                 `json:"action_type"`
	Category    string                 `json:"category"`
	Config      map[string]interface{} `json:"config"`
	Variables   map[string]string      `json:"variables"`
	IsActive    bool                   `json:"is_active"`
	Version     int                    `json:"version"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

// ConfigString returns the named config field as a string, or "" when the
// field is absent or not a string.
func (t ActionTemplate) ConfigString(key string) string {
	v, ok := t.Config[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

// Validate checks the template shape against its action type and reports the
// first invalid field. Nothing is persisted when validation fails.
func (t ActionTemplate) Validate() error {
	if t.Name == "" {
		return &FieldError{Field: "name", Reason: "required"}
	}
	if t.ActionType == "" {
		return &FieldError{Field: "action_type", Reason: "required"}
	}
	if !actionTypes[t.ActionType] {
		return &FieldError{Field: "action_type", Reason: fmt.Sprintf("unknown action type %q", t.ActionType)}
	}

	switch t.ActionType {
	case ActionTypeEmail:
		if t.ConfigString("subject") == "" {
			return &FieldError{Field: "config.subject", Reason: "required for email templates"}
		}
		if t.ConfigString("html_content") == "" {
			return &FieldError{Field: "config.html_content", Reason: "required for email templates"}
		}
	case ActionTypeSMS:
		if t.ConfigString("message") == "" {
			return &FieldError{Field: "config.message", Reason: "required for sms templates"}
		}
	case ActionTypeWebhook:
		raw := t.ConfigString("url")
		if raw == "" {
			return &FieldError{Field: "config.url", Reason: "required for webhook templates"}
		}
		u, err := url.Parse(raw)
		if err != nil || !u.IsAbs() || u.Host == "" {
			return &FieldError{Field: "config.url", Reason: fmt.Sprintf("invalid URL %q", raw)}
		}
		if m := t.ConfigString("method"); !webhookMethods[m] {
			return &FieldError{Field: "config.method", Reason: fmt.Sprintf("invalid HTTP method %q", m)}
		}
	case ActionTypeNotification:
		if t.ConfigString("title") == "" {
			return &FieldError{Field: "config.title", Reason: "required for notification templates"}
		}
		if t.ConfigString("message") == "" {
			return &FieldError{Field: "config.message", Reason: "required for notification templates"}
		}
	case ActionTypeSlack, ActionTypeTeams:
		if t.ConfigString("message") == "" {
			return &FieldError{Field: "config.message", Reason: fmt.Sprintf("required for %s templates", t.ActionType)}
		}
		if raw := t.ConfigString("webhook_url"); raw != "" {
			u, err := url.Parse(raw)
			if err != nil || !u.IsAbs() || u.Host == "" {
				return &FieldError{Field: "config.webhook_url", Reason: fmt.Sprintf("invalid URL %q", raw)}
			}
		}
	}
	return nil
}
