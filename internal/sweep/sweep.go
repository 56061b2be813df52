// Package sweep scans pending signature requests for expiry and reminder
// handling.
package sweep

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"merchant-backoffice/internal/logging"
	"merchant-backoffice/internal/models"
	"merchant-backoffice/internal/providers"
	"merchant-backoffice/internal/render"
	"merchant-backoffice/internal/utils"
)

// SignatureStore is the persistence surface the sweep needs.
type SignatureStore interface {
	ListRequestedSignatures(ctx context.Context) ([]models.SignatureCapture, error)
	ExpireSignature(ctx context.Context, id uuid.UUID, note string) error
	MarkReminderSent(ctx context.Context, id uuid.UUID, kind string, at time.Time) error
	SignatureParty(ctx context.Context, sig models.SignatureCapture) (models.SignatureParty, error)
}

// TemplateStore looks up the reminder templates by name.
type TemplateStore interface {
	GetTemplateByName(ctx context.Context, name string) (models.ActionTemplate, bool, error)
}

// ActivityStore records reminder sends for the analytics view.
type ActivityStore interface {
	InsertActivity(ctx context.Context, e models.ActivityEntry) error
}

// Firer fires a trigger key with a context mapping.
type Firer interface {
	Fire(ctx context.Context, triggerKey string, data map[string]string)
}

const (
	// TriggerKeyExpired fires when a signature request passes its window.
	TriggerKeyExpired = "signature_expired"

	reminder3Day = "3day"
	reminder1Day = "1day"
)

// Sweeper walks every requested signature: expired ones transition and fire
// the signature_expired trigger; requests 3 days or 1 day from expiring get
// a templated reminder email, sent directly and stamped so it never repeats.
type Sweeper struct {
	sigs      SignatureStore
	templates TemplateStore
	activity  ActivityStore
	firer     Firer
	sendEmail providers.SenderFunc
	logger    *logging.Logger

	tmpl3Day string
	tmpl1Day string

	ctx    context.Context
	cancel context.CancelFunc
	now    func() time.Time
}

func New(sigs SignatureStore, templates TemplateStore, activity ActivityStore, firer Firer, sendEmail providers.SenderFunc, logger *logging.Logger, tmpl3Day, tmpl1Day string) *Sweeper {
	ctx, cancel := context.WithCancel(context.Background())
	return &Sweeper{
		sigs:      sigs,
		templates: templates,
		activity:  activity,
		firer:     firer,
		sendEmail: sendEmail,
		logger:    logger,
		tmpl3Day:  tmpl3Day,
		tmpl1Day:  tmpl1Day,
		ctx:       ctx,
		cancel:    cancel,
		now:       time.Now,
	}
}

// Start runs the sweep on a fixed interval until Stop is called.
func (s *Sweeper) Start(wg *sync.WaitGroup, interval time.Duration) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-s.ctx.Done():
				s.logger.Infof("Signature sweep stopped")
				return
			case <-ticker.C:
				s.Run(s.ctx)
			}
		}
	}()
}

func (s *Sweeper) Stop() {
	s.cancel()
}

// Run performs one sweep pass. Errors on one signature are logged and never
// halt the rest of the pass.
func (s *Sweeper) Run(ctx context.Context) {
	sigs, err := s.sigs.ListRequestedSignatures(ctx)
	if err != nil {
		s.logger.Errorf("Signature sweep failed to list requests: %v", err)
		return
	}

	for _, sig := range sigs {
		if err := s.process(ctx, sig); err != nil {
			s.logger.Errorf("Signature sweep failed for %s: %v", sig.ID, err)
		}
	}
}

func (s *Sweeper) process(ctx context.Context, sig models.SignatureCapture) error {
	now := s.now()

	if !now.Before(sig.ExpiresAt) {
		return s.expire(ctx, sig, now)
	}

	daysUntil := int(math.Ceil(sig.ExpiresAt.Sub(now).Hours() / 24))
	daysSince := int(math.Floor(now.Sub(sig.RequestedAt).Hours() / 24))

	switch {
	case daysUntil == 3 && daysSince >= 4 && sig.Reminder3DaySentAt == nil:
		return s.sendReminder(ctx, sig, s.tmpl3Day, reminder3Day, daysUntil, now)
	case daysUntil == 1 && daysSince >= 6 && sig.Reminder1DaySentAt == nil:
		return s.sendReminder(ctx, sig, s.tmpl1Day, reminder1Day, daysUntil, now)
	}
	return nil
}

func (s *Sweeper) expire(ctx context.Context, sig models.SignatureCapture, now time.Time) error {
	note := fmt.Sprintf("Signature request expired on %s", now.Format("2006-01-02"))
	if err := s.sigs.ExpireSignature(ctx, sig.ID, note); err != nil {
		return err
	}

	party, err := s.sigs.SignatureParty(ctx, sig)
	if err != nil {
		s.logger.Warnf("Party lookup failed for signature %s, using defaults: %v", sig.ID, err)
	}

	s.firer.Fire(ctx, TriggerKeyExpired, s.contextFor(sig, party))
	s.logger.Infof("Signature %s expired, fired %s", sig.ID, TriggerKeyExpired)
	return nil
}

// sendReminder renders and sends the reminder email directly, bypassing the
// trigger dispatcher, then stamps the reminder so a second sweep pass is a
// no-op.
func (s *Sweeper) sendReminder(ctx context.Context, sig models.SignatureCapture, templateName, kind string, daysUntil int, now time.Time) error {
	tmpl, found, err := s.templates.GetTemplateByName(ctx, templateName)
	if err != nil {
		return err
	}
	if !found {
		s.logger.Warnf("Reminder template %q not configured, skipping signature %s", templateName, sig.ID)
		return nil
	}

	party, err := s.sigs.SignatureParty(ctx, sig)
	if err != nil {
		s.logger.Warnf("Party lookup failed for signature %s, using defaults: %v", sig.ID, err)
	}
	data := s.contextFor(sig, party)
	data["daysRemaining"] = strconv.Itoa(daysUntil)

	msg := models.Message{
		Channel:    models.ActionTypeEmail,
		TriggerKey: "signature_reminder_" + kind,
		TemplateID: tmpl.ID,
		Recipient:  sig.SignerEmail,
		Subject:    renderField(tmpl, "subject", data),
		HTML:       renderField(tmpl, "html_content", data),
		Body:       renderField(tmpl, "text_content", data),
	}

	sendErr := utils.Retry(ctx, s.logger, 3, time.Second, func() error {
		return s.sendEmail(ctx, msg)
	})

	status := models.ActivityStatusSent
	detail := ""
	if sendErr != nil {
		status = models.ActivityStatusFailed
		detail = sendErr.Error()
	}
	record := models.ActivityEntry{
		TriggerKey: msg.TriggerKey,
		TemplateID: tmpl.ID,
		Channel:    models.ActionTypeEmail,
		Recipient:  sig.SignerEmail,
		Subject:    msg.Subject,
		Status:     status,
		Detail:     detail,
		CreatedAt:  now,
	}
	if err := s.activity.InsertActivity(ctx, record); err != nil {
		s.logger.Errorf("Failed to record reminder activity for %s: %v", sig.ID, err)
	}

	if sendErr != nil {
		return sendErr
	}
	return s.sigs.MarkReminderSent(ctx, sig.ID, kind, now)
}

func renderField(t models.ActionTemplate, key string, data map[string]string) string {
	return render.Render(t.ConfigString(key), data)
}

func (s *Sweeper) contextFor(sig models.SignatureCapture, party models.SignatureParty) map[string]string {
	companyName := party.CompanyName
	if companyName == "" {
		companyName = "Merchant Application"
	}
	agentName := party.AgentName
	if agentName == "" {
		agentName = "Agent"
	}
	return map[string]string{
		"ownerName":           sig.SignerName,
		"ownerEmail":          sig.SignerEmail,
		"companyName":         companyName,
		"roleKey":             sig.RoleKey,
		"originalRequestDate": sig.RequestedAt.Format("January 2, 2006"),
		"agentName":           agentName,
		"recipientEmail":      sig.SignerEmail,
	}
}
