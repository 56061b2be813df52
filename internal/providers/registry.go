package providers

import (
	"context"

	"golang.org/x/time/rate"

	"merchant-backoffice/internal/config"
	"merchant-backoffice/internal/hub"
	"merchant-backoffice/internal/models"
)

// SenderFunc delivers one rendered message over its channel.
type SenderFunc func(ctx context.Context, msg models.Message) error

// NewRegistry wires one sender per action type, injecting config where
// needed.
func NewRegistry(cfg config.Config, wsHub *hub.Hub) map[string]SenderFunc {
	limiter := rate.NewLimiter(rate.Limit(float64(cfg.Dispatch.WebhookPerSec)), cfg.Dispatch.WebhookPerSec)

	return map[string]SenderFunc{
		models.ActionTypeEmail: func(ctx context.Context, msg models.Message) error {
			return SendEmail(msg, cfg)
		},
		models.ActionTypeSMS: func(ctx context.Context, msg models.Message) error {
			return SendSMS(ctx, msg, cfg)
		},
		models.ActionTypeWebhook: func(ctx context.Context, msg models.Message) error {
			return SendWebhook(ctx, msg, limiter)
		},
		models.ActionTypeSlack: func(ctx context.Context, msg models.Message) error {
			return SendSlack(ctx, msg, limiter)
		},
		models.ActionTypeTeams: func(ctx context.Context, msg models.Message) error {
			return SendTeams(ctx, msg, limiter)
		},
		models.ActionTypeNotification: func(ctx context.Context, msg models.Message) error {
			return wsHub.Push(msg)
		},
	}
}
