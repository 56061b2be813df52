// Package dispatch executes the action chain configured for a trigger key:
// it resolves the trigger, renders each linked template against the firing
// context, and hands the result to the channel senders.
package dispatch

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"merchant-backoffice/internal/models"
	"merchant-backoffice/internal/providers"
	"merchant-backoffice/internal/render"
)

// TriggerStore resolves triggers and their action chains.
type TriggerStore interface {
	GetActiveTriggerByKey(ctx context.Context, key string) (models.TriggerCatalogEntry, bool, error)
	ListActiveTriggerActions(ctx context.Context, triggerID uuid.UUID) ([]models.TriggerActionLink, error)
}

// ActivityStore records one entry per attempted action.
type ActivityStore interface {
	InsertActivity(ctx context.Context, e models.ActivityEntry) error
}

// OutboxStore accepts deferred and retryable sends.
type OutboxStore interface {
	EnqueueOutbox(ctx context.Context, e models.OutboxEntry) error
}

// PreferenceStore answers channel opt-out lookups.
type PreferenceStore interface {
	GetPreference(ctx context.Context, recipient string) (models.NotificationPreference, error)
}

// Logger is the minimal logging surface the dispatcher needs.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// Dispatcher fires trigger keys. Firing is best-effort: callers never see
// per-action failures, they are logged to the activity store instead.
type Dispatcher struct {
	triggers TriggerStore
	activity ActivityStore
	outbox   OutboxStore
	prefs    PreferenceStore
	senders  map[string]providers.SenderFunc
	logger   Logger
	now      func() time.Time
}

func New(triggers TriggerStore, activity ActivityStore, outbox OutboxStore, prefs PreferenceStore, senders map[string]providers.SenderFunc, logger Logger) *Dispatcher {
	return &Dispatcher{
		triggers: triggers,
		activity: activity,
		outbox:   outbox,
		prefs:    prefs,
		senders:  senders,
		logger:   logger,
		now:      time.Now,
	}
}

// Fire executes every active action linked to triggerKey, in sequence
// order, rendering each template against data. An unknown or inactive key
// is a silent no-op: triggers are fired speculatively from many code paths.
// A failure in one action never prevents later actions from running.
func (d *Dispatcher) Fire(ctx context.Context, triggerKey string, data map[string]string) {
	trigger, found, err := d.triggers.GetActiveTriggerByKey(ctx, triggerKey)
	if err != nil {
		d.logger.Errorf("Failed to resolve trigger %q: %v", triggerKey, err)
		return
	}
	if !found {
		d.logger.Debugf("Trigger %q not configured, skipping", triggerKey)
		return
	}

	links, err := d.triggers.ListActiveTriggerActions(ctx, trigger.ID)
	if err != nil {
		d.logger.Errorf("Failed to load actions for trigger %q: %v", triggerKey, err)
		return
	}

	// sequence_order is a plain sort key: re-derive execution order here
	// rather than trusting store ordering, tolerating duplicates and gaps
	sort.SliceStable(links, func(i, j int) bool {
		return links[i].SequenceOrder < links[j].SequenceOrder
	})

	for _, link := range links {
		d.dispatchAction(ctx, triggerKey, link, data)
	}
}

func (d *Dispatcher) dispatchAction(ctx context.Context, triggerKey string, link models.TriggerActionLink, data map[string]string) {
	msg := buildMessage(triggerKey, link.Template, data)

	if skip, reason := d.shouldSkip(ctx, link, msg, data); skip {
		d.record(ctx, triggerKey, link, msg, models.ActivityStatusSkipped, reason)
		d.logger.Infof("Trigger %q action %s skipped: %s", triggerKey, link.ID, reason)
		return
	}

	// delayed or retryable actions go through the outbox worker instead of
	// blocking the caller
	if link.DelaySeconds > 0 || link.RetryOnFailure {
		attempts := 1
		if link.RetryOnFailure && link.MaxRetries > 0 {
			attempts = link.MaxRetries + 1
		}
		entry := models.OutboxEntry{
			Payload:           msg,
			NotBefore:         d.now().Add(time.Duration(link.DelaySeconds) * time.Second),
			AttemptsRemaining: attempts,
			Status:            models.OutboxStatusPending,
		}
		if err := d.outbox.EnqueueOutbox(ctx, entry); err != nil {
			d.logger.Errorf("Failed to enqueue action for trigger %q: %v", triggerKey, err)
			d.record(ctx, triggerKey, link, msg, models.ActivityStatusFailed, err.Error())
		}
		return
	}

	sender, ok := d.senders[link.Template.ActionType]
	if !ok {
		d.record(ctx, triggerKey, link, msg, models.ActivityStatusFailed, "no sender for action type "+link.Template.ActionType)
		return
	}

	if err := sender(ctx, msg); err != nil {
		d.logger.Errorf("Dispatch error via %s for trigger %q: %v", link.Template.ActionType, triggerKey, err)
		d.record(ctx, triggerKey, link, msg, models.ActivityStatusFailed, err.Error())
		return
	}
	d.record(ctx, triggerKey, link, msg, models.ActivityStatusSent, "")
	d.logger.Infof("Trigger %q dispatched via %s to %s", triggerKey, link.Template.ActionType, msg.Recipient)
}

// shouldSkip honors recipient channel opt-outs. A preference lookup failure
// is treated as opted in rather than blocking the send.
func (d *Dispatcher) shouldSkip(ctx context.Context, link models.TriggerActionLink, msg models.Message, data map[string]string) (bool, string) {
	if !link.RequiresEmailPreference && !link.RequiresSmsPreference {
		return false, ""
	}

	identity := data["recipientEmail"]
	if identity == "" {
		identity = msg.Recipient
	}
	pref, err := d.prefs.GetPreference(ctx, identity)
	if err != nil {
		d.logger.Warnf("Preference lookup failed for %s: %v", identity, err)
		return false, ""
	}
	if link.RequiresEmailPreference && pref.EmailOptOut {
		return true, "recipient opted out of email"
	}
	if link.RequiresSmsPreference && pref.SmsOptOut {
		return true, "recipient opted out of sms"
	}
	return false, ""
}

func (d *Dispatcher) record(ctx context.Context, triggerKey string, link models.TriggerActionLink, msg models.Message, status, detail string) {
	entry := models.ActivityEntry{
		TriggerKey: triggerKey,
		TemplateID: link.TemplateID,
		Channel:    link.Template.ActionType,
		Recipient:  msg.Recipient,
		Subject:    summaryOf(msg),
		Status:     status,
		Detail:     detail,
		CreatedAt:  d.now(),
	}
	if err := d.activity.InsertActivity(ctx, entry); err != nil {
		d.logger.Errorf("Failed to record activity for trigger %q: %v", triggerKey, err)
	}
}

func summaryOf(msg models.Message) string {
	if msg.Subject != "" {
		return msg.Subject
	}
	if msg.Title != "" {
		return msg.Title
	}
	if len(msg.Body) > 120 {
		return msg.Body[:120]
	}
	return msg.Body
}

// buildMessage renders a template's channel-specific fields against the
// firing context.
func buildMessage(triggerKey string, t models.ActionTemplate, data map[string]string) models.Message {
	msg := models.Message{
		Channel:    t.ActionType,
		TriggerKey: triggerKey,
		TemplateID: t.ID,
	}

	switch t.ActionType {
	case models.ActionTypeEmail:
		msg.Recipient = recipient(t, data, "recipientEmail")
		msg.Subject = render.Render(t.ConfigString("subject"), data)
		msg.HTML = render.Render(t.ConfigString("html_content"), data)
		msg.Body = render.Render(t.ConfigString("text_content"), data)
	case models.ActionTypeSMS:
		msg.Recipient = recipient(t, data, "recipientPhone")
		msg.Body = render.Render(t.ConfigString("message"), data)
	case models.ActionTypeWebhook:
		msg.URL = render.Render(t.ConfigString("url"), data)
		msg.Method = t.ConfigString("method")
		msg.Body = render.Render(t.ConfigString("body"), data)
		msg.Headers = renderedHeaders(t, data)
		msg.Recipient = msg.URL
	case models.ActionTypeNotification:
		msg.Recipient = recipient(t, data, "recipientEmail")
		msg.Title = render.Render(t.ConfigString("title"), data)
		msg.Body = render.Render(t.ConfigString("message"), data)
	case models.ActionTypeSlack, models.ActionTypeTeams:
		msg.WebhookURL = render.Render(t.ConfigString("webhook_url"), data)
		msg.RoomOrChan = render.Render(t.ConfigString("channel"), data)
		msg.Title = render.Render(t.ConfigString("title"), data)
		msg.Body = render.Render(t.ConfigString("message"), data)
		if msg.RoomOrChan != "" {
			msg.Recipient = msg.RoomOrChan
		} else {
			msg.Recipient = msg.WebhookURL
		}
	}
	return msg
}

// recipient prefers an explicit config "to" field, then the conventional
// context key for the channel.
func recipient(t models.ActionTemplate, data map[string]string, contextKey string) string {
	if to := t.ConfigString("to"); to != "" {
		return render.Render(to, data)
	}
	return data[contextKey]
}

func renderedHeaders(t models.ActionTemplate, data map[string]string) map[string]string {
	raw, ok := t.Config["headers"].(map[string]interface{})
	if !ok {
		return nil
	}
	headers := make(map[string]string, len(raw))
	for k, v := range raw {
		if s, ok := v.(string); ok {
			headers[k] = render.Render(s, data)
		}
	}
	return headers
}
