package providers

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/time/rate"

	"merchant-backoffice/internal/models"
	"merchant-backoffice/pkg/webhook"
)

// SendWebhook posts the rendered body to the template's URL with the
// configured method and headers. Outbound webhook-family sends share a rate
// limiter so a burst of trigger firings cannot hammer an endpoint.
func SendWebhook(ctx context.Context, msg models.Message, limiter *rate.Limiter) error {
	if msg.URL == "" {
		return fmt.Errorf("webhook message has no URL")
	}
	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("webhook rate limit: %w", err)
	}
	return webhook.Post(ctx, msg.Method, msg.URL, msg.Headers, []byte(msg.Body))
}

// SendSlack posts a Slack incoming-webhook payload.
func SendSlack(ctx context.Context, msg models.Message, limiter *rate.Limiter) error {
	if msg.WebhookURL == "" {
		return fmt.Errorf("slack message has no webhook URL")
	}
	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("slack rate limit: %w", err)
	}

	payload := map[string]string{"text": msg.Body}
	if msg.RoomOrChan != "" {
		payload["channel"] = msg.RoomOrChan
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode slack payload: %w", err)
	}
	return webhook.Post(ctx, "POST", msg.WebhookURL, nil, body)
}

// SendTeams posts a Microsoft Teams MessageCard payload.
func SendTeams(ctx context.Context, msg models.Message, limiter *rate.Limiter) error {
	if msg.WebhookURL == "" {
		return fmt.Errorf("teams message has no webhook URL")
	}
	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("teams rate limit: %w", err)
	}

	card := map[string]interface{}{
		"@type":    "MessageCard",
		"@context": "http://schema.org/extensions",
		"title":    msg.Title,
		"text":     msg.Body,
	}
	body, err := json.Marshal(card)
	if err != nil {
		return fmt.Errorf("failed to encode teams payload: %w", err)
	}
	return webhook.Post(ctx, "POST", msg.WebhookURL, nil, body)
}
