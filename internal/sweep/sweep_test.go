package sweep

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"merchant-backoffice/internal/logging"
	"merchant-backoffice/internal/models"
)

type fakeSignatureStore struct {
	sigs      []models.SignatureCapture
	party     models.SignatureParty
	expireErr map[uuid.UUID]error

	expired  []uuid.UUID
	notes    []string
	marked   []string
	markedID uuid.UUID
}

func (f *fakeSignatureStore) ListRequestedSignatures(_ context.Context) ([]models.SignatureCapture, error) {
	return f.sigs, nil
}

func (f *fakeSignatureStore) ExpireSignature(_ context.Context, id uuid.UUID, note string) error {
	if err := f.expireErr[id]; err != nil {
		return err
	}
	f.expired = append(f.expired, id)
	f.notes = append(f.notes, note)
	return nil
}

func (f *fakeSignatureStore) MarkReminderSent(_ context.Context, id uuid.UUID, kind string, _ time.Time) error {
	f.marked = append(f.marked, kind)
	f.markedID = id
	return nil
}

func (f *fakeSignatureStore) SignatureParty(_ context.Context, _ models.SignatureCapture) (models.SignatureParty, error) {
	return f.party, nil
}

type fakeTemplateStore struct {
	templates map[string]models.ActionTemplate
}

func (f *fakeTemplateStore) GetTemplateByName(_ context.Context, name string) (models.ActionTemplate, bool, error) {
	t, ok := f.templates[name]
	return t, ok, nil
}

type fakeActivityStore struct {
	entries []models.ActivityEntry
}

func (f *fakeActivityStore) InsertActivity(_ context.Context, e models.ActivityEntry) error {
	f.entries = append(f.entries, e)
	return nil
}

type fakeFirer struct {
	keys []string
	data []map[string]string
}

func (f *fakeFirer) Fire(_ context.Context, triggerKey string, data map[string]string) {
	f.keys = append(f.keys, triggerKey)
	f.data = append(f.data, data)
}

var sweepNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func reminderTemplate(name string) models.ActionTemplate {
	return models.ActionTemplate{
		ID:         uuid.New(),
		Name:       name,
		ActionType: models.ActionTypeEmail,
		Config: map[string]interface{}{
			"subject":      "Reminder for {{ownerName}}: {{daysRemaining}} days left",
			"html_content": "<p>{{companyName}} signature expires soon</p>",
		},
		IsActive: true,
	}
}

func pendingSignature(requested, expires time.Time) models.SignatureCapture {
	return models.SignatureCapture{
		ID:          uuid.New(),
		SignerName:  "Dana Owner",
		SignerEmail: "dana@example.com",
		RoleKey:     "owner",
		Status:      models.SignatureStatusRequested,
		RequestedAt: requested,
		ExpiresAt:   expires,
	}
}

func newTestSweeper(sigs *fakeSignatureStore, templates *fakeTemplateStore) (*Sweeper, *fakeActivityStore, *fakeFirer, *[]models.Message) {
	activity := &fakeActivityStore{}
	firer := &fakeFirer{}
	var sent []models.Message
	sendEmail := func(_ context.Context, msg models.Message) error {
		sent = append(sent, msg)
		return nil
	}
	s := New(sigs, templates, activity, firer, sendEmail, logging.NewNop(),
		"signature_reminder_3day", "signature_reminder_1day")
	s.now = func() time.Time { return sweepNow }
	return s, activity, firer, &sent
}

func TestRunSends3DayReminderOnce(t *testing.T) {
	sig := pendingSignature(sweepNow.Add(-4*24*time.Hour), sweepNow.Add(72*time.Hour))
	store := &fakeSignatureStore{sigs: []models.SignatureCapture{sig}}
	templates := &fakeTemplateStore{templates: map[string]models.ActionTemplate{
		"signature_reminder_3day": reminderTemplate("signature_reminder_3day"),
	}}

	s, activity, firer, sent := newTestSweeper(store, templates)
	s.Run(context.Background())

	require.Len(t, *sent, 1)
	msg := (*sent)[0]
	assert.Equal(t, "dana@example.com", msg.Recipient)
	assert.Equal(t, "Reminder for Dana Owner: 3 days left", msg.Subject)

	assert.Equal(t, []string{"3day"}, store.marked)
	assert.Equal(t, sig.ID, store.markedID)
	assert.Empty(t, firer.keys)
	require.Len(t, activity.entries, 1)
	assert.Equal(t, models.ActivityStatusSent, activity.entries[0].Status)
}

func TestRunAlreadyStampedReminderIsNoOp(t *testing.T) {
	stamped := sweepNow.Add(-time.Hour)
	sig := pendingSignature(sweepNow.Add(-4*24*time.Hour), sweepNow.Add(72*time.Hour))
	sig.Reminder3DaySentAt = &stamped
	store := &fakeSignatureStore{sigs: []models.SignatureCapture{sig}}
	templates := &fakeTemplateStore{templates: map[string]models.ActionTemplate{
		"signature_reminder_3day": reminderTemplate("signature_reminder_3day"),
	}}

	s, activity, _, sent := newTestSweeper(store, templates)
	s.Run(context.Background())

	assert.Empty(t, *sent)
	assert.Empty(t, store.marked)
	assert.Empty(t, activity.entries)
}

func TestRunSends1DayReminder(t *testing.T) {
	sig := pendingSignature(sweepNow.Add(-6*24*time.Hour), sweepNow.Add(24*time.Hour))
	store := &fakeSignatureStore{sigs: []models.SignatureCapture{sig}}
	templates := &fakeTemplateStore{templates: map[string]models.ActionTemplate{
		"signature_reminder_1day": reminderTemplate("signature_reminder_1day"),
	}}

	s, _, _, sent := newTestSweeper(store, templates)
	s.Run(context.Background())

	require.Len(t, *sent, 1)
	assert.Equal(t, "Reminder for Dana Owner: 1 days left", (*sent)[0].Subject)
	assert.Equal(t, []string{"1day"}, store.marked)
}

func TestRunTooEarlyForReminderIsNoOp(t *testing.T) {
	// three days from expiry but only three days since request
	sig := pendingSignature(sweepNow.Add(-3*24*time.Hour), sweepNow.Add(72*time.Hour))
	store := &fakeSignatureStore{sigs: []models.SignatureCapture{sig}}
	templates := &fakeTemplateStore{templates: map[string]models.ActionTemplate{
		"signature_reminder_3day": reminderTemplate("signature_reminder_3day"),
	}}

	s, _, _, sent := newTestSweeper(store, templates)
	s.Run(context.Background())

	assert.Empty(t, *sent)
	assert.Empty(t, store.marked)
}

func TestRunExpiresAndFiresTrigger(t *testing.T) {
	sig := pendingSignature(sweepNow.Add(-8*24*time.Hour), sweepNow.Add(-time.Hour))
	store := &fakeSignatureStore{
		sigs:  []models.SignatureCapture{sig},
		party: models.SignatureParty{CompanyName: "Acme Foods LLC", AgentName: "Riley Agent"},
	}

	s, _, firer, sent := newTestSweeper(store, &fakeTemplateStore{})
	s.Run(context.Background())

	assert.Empty(t, *sent)
	require.Len(t, store.expired, 1)
	assert.Equal(t, sig.ID, store.expired[0])
	assert.Contains(t, store.notes[0], "2026-03-10")

	require.Len(t, firer.keys, 1)
	assert.Equal(t, TriggerKeyExpired, firer.keys[0])
	data := firer.data[0]
	assert.Equal(t, "Acme Foods LLC", data["companyName"])
	assert.Equal(t, "Riley Agent", data["agentName"])
	assert.Equal(t, "dana@example.com", data["ownerEmail"])
	assert.Equal(t, "owner", data["roleKey"])
}

func TestRunMissingPartyUsesDefaults(t *testing.T) {
	sig := pendingSignature(sweepNow.Add(-8*24*time.Hour), sweepNow.Add(-time.Hour))
	store := &fakeSignatureStore{sigs: []models.SignatureCapture{sig}}

	s, _, firer, _ := newTestSweeper(store, &fakeTemplateStore{})
	s.Run(context.Background())

	require.Len(t, firer.data, 1)
	assert.Equal(t, "Merchant Application", firer.data[0]["companyName"])
	assert.Equal(t, "Agent", firer.data[0]["agentName"])
}

func TestRunMissingTemplateSkipsReminder(t *testing.T) {
	sig := pendingSignature(sweepNow.Add(-4*24*time.Hour), sweepNow.Add(72*time.Hour))
	store := &fakeSignatureStore{sigs: []models.SignatureCapture{sig}}

	s, activity, _, sent := newTestSweeper(store, &fakeTemplateStore{})
	s.Run(context.Background())

	assert.Empty(t, *sent)
	assert.Empty(t, store.marked)
	assert.Empty(t, activity.entries)
}

func TestRunOneFailureDoesNotStopThePass(t *testing.T) {
	bad := pendingSignature(sweepNow.Add(-8*24*time.Hour), sweepNow.Add(-time.Hour))
	good := pendingSignature(sweepNow.Add(-9*24*time.Hour), sweepNow.Add(-2*time.Hour))
	store := &fakeSignatureStore{
		sigs:      []models.SignatureCapture{bad, good},
		expireErr: map[uuid.UUID]error{bad.ID: errors.New("deadlock detected")},
	}

	s, _, firer, _ := newTestSweeper(store, &fakeTemplateStore{})
	s.Run(context.Background())

	require.Len(t, store.expired, 1)
	assert.Equal(t, good.ID, store.expired[0])
	assert.Len(t, firer.keys, 1)
}
