package dispatch

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
	"merchant-backoffice/internal/providers"
)

// fakeOutboxQueue mirrors the store contract: DueOutbox claims the entries
// it returns, so a later poll never hands them out again until a reschedule
// releases them back to pending.
type fakeOutboxQueue struct {
	pending []models.OutboxEntry
	claimed map[uuid.UUID]models.OutboxEntry

	finishedID     uuid.UUID
	finishedStatus string
	finishedError  string

	rescheduledID        uuid.UUID
	rescheduledNotBefore time.Time
	rescheduledAttempts  int
}

func (f *fakeOutboxQueue) DueOutbox(_ context.Context, _ time.Time, _ int) ([]models.OutboxEntry, error) {
	if f.claimed == nil {
		f.claimed = make(map[uuid.UUID]models.OutboxEntry)
	}
	due := f.pending
	f.pending = nil
	for _, e := range due {
		f.claimed[e.ID] = e
	}
	return due, nil
}

func (f *fakeOutboxQueue) FinishOutbox(_ context.Context, id uuid.UUID, status, lastError string) error {
	delete(f.claimed, id)
	f.finishedID = id
	f.finishedStatus = status
	f.finishedError = lastError
	return nil
}

func (f *fakeOutboxQueue) RescheduleOutbox(_ context.Context, id uuid.UUID, notBefore time.Time, attemptsRemaining int, _ string) error {
	if e, ok := f.claimed[id]; ok {
		delete(f.claimed, id)
		e.NotBefore = notBefore
		e.AttemptsRemaining = attemptsRemaining
		f.pending = append(f.pending, e)
	}
	f.rescheduledID = id
	f.rescheduledNotBefore = notBefore
	f.rescheduledAttempts = attemptsRemaining
	return nil
}

func outboxEntry(attempts int) models.OutboxEntry {
	return models.OutboxEntry{
		ID: uuid.New(),
		Payload: models.Message{
			Channel:    models.ActionTypeEmail,
			TriggerKey: "t",
			Recipient:  "x@example.com",
			Subject:    "Hello",
		},
		AttemptsRemaining: attempts,
		Status:            models.OutboxStatusPending,
	}
}

func newTestWorker(queue *fakeOutboxQueue, senders map[string]providers.SenderFunc) (*OutboxWorker, *fakeActivityStore) {
	activity := &fakeActivityStore{}
	w := NewOutboxWorker(queue, activity, senders, logging.NewNop(), 1, 10, time.Minute, time.Minute)
	return w, activity
}

func TestProcessSuccessFinalizesSent(t *testing.T) {
	queue := &fakeOutboxQueue{}
	senders := map[string]providers.SenderFunc{
		models.ActionTypeEmail: func(_ context.Context, _ models.Message) error { return nil },
	}
	w, activity := newTestWorker(queue, senders)

	entry := outboxEntry(1)
	w.Process(context.Background(), entry)

	assert.Equal(t, entry.ID, queue.finishedID)
	assert.Equal(t, models.OutboxStatusSent, queue.finishedStatus)
	require.Len(t, activity.entries, 1)
	assert.Equal(t, models.ActivityStatusSent, activity.entries[0].Status)
	assert.Equal(t, "Hello", activity.entries[0].Subject)
}

func TestProcessFailureReschedulesWithBackoff(t *testing.T) {
	queue := &fakeOutboxQueue{}
	senders := map[string]providers.SenderFunc{
		models.ActionTypeEmail: func(_ context.Context, _ models.Message) error {
			return errors.New("smtp timeout")
		},
	}
	w, activity := newTestWorker(queue, senders)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	w.now = func() time.Time { return base }

	entry := outboxEntry(3)
	w.Process(context.Background(), entry)

	assert.Equal(t, entry.ID, queue.rescheduledID)
	assert.Equal(t, 2, queue.rescheduledAttempts)
	assert.Equal(t, base.Add(time.Minute), queue.rescheduledNotBefore)
	assert.Equal(t, uuid.Nil, queue.finishedID)
	assert.Empty(t, activity.entries)
}

func TestProcessLastAttemptFinalizesFailed(t *testing.T) {
	queue := &fakeOutboxQueue{}
	senders := map[string]providers.SenderFunc{
		models.ActionTypeEmail: func(_ context.Context, _ models.Message) error {
			return errors.New("smtp timeout")
		},
	}
	w, activity := newTestWorker(queue, senders)

	entry := outboxEntry(1)
	w.Process(context.Background(), entry)

	assert.Equal(t, entry.ID, queue.finishedID)
	assert.Equal(t, models.OutboxStatusFailed, queue.finishedStatus)
	assert.Equal(t, "smtp timeout", queue.finishedError)
	require.Len(t, activity.entries, 1)
	assert.Equal(t, models.ActivityStatusFailed, activity.entries[0].Status)
	assert.Equal(t, "smtp timeout", activity.entries[0].Detail)
}

func TestProcessUnknownChannelFinalizesFailed(t *testing.T) {
	queue := &fakeOutboxQueue{}
	w, activity := newTestWorker(queue, map[string]providers.SenderFunc{})

	entry := outboxEntry(5)
	entry.Payload.Channel = "carrier_pigeon"
	w.Process(context.Background(), entry)

	assert.Equal(t, models.OutboxStatusFailed, queue.finishedStatus)
	require.Len(t, activity.entries, 1)
	assert.Equal(t, models.ActivityStatusFailed, activity.entries[0].Status)
}

func TestDrainFeedsDueEntriesToWorkers(t *testing.T) {
	queue := &fakeOutboxQueue{pending: []models.OutboxEntry{outboxEntry(1), outboxEntry(1)}}
	w, _ := newTestWorker(queue, map[string]providers.SenderFunc{})

	w.Drain(context.Background())
	assert.Len(t, w.entries, 2)
}

func TestDrainNeverHandsOutAnEntryTwice(t *testing.T) {
	entry := outboxEntry(1)
	queue := &fakeOutboxQueue{pending: []models.OutboxEntry{entry}}
	w, _ := newTestWorker(queue, map[string]providers.SenderFunc{})

	w.Drain(context.Background())
	w.Drain(context.Background())

	require.Len(t, w.entries, 1)
	queued := <-w.entries
	assert.Equal(t, entry.ID, queued.ID)
}

func TestDrainReleasesOverflowBackToPending(t *testing.T) {
	first := outboxEntry(1)
	second := outboxEntry(1)
	queue := &fakeOutboxQueue{pending: []models.OutboxEntry{first, second}}
	activity := &fakeActivityStore{}
	w := NewOutboxWorker(queue, activity, map[string]providers.SenderFunc{}, logging.NewNop(), 1, 1, time.Minute, time.Minute)

	w.Drain(context.Background())

	assert.Len(t, w.entries, 1)
	assert.Equal(t, second.ID, queue.rescheduledID)
	assert.Equal(t, second.AttemptsRemaining, queue.rescheduledAttempts)

	// the released entry is due again on the next poll
	w2, _ := newTestWorker(queue, map[string]providers.SenderFunc{})
	w2.Drain(context.Background())
	require.Len(t, w2.entries, 1)
	released := <-w2.entries
	assert.Equal(t, second.ID, released.ID)
}
