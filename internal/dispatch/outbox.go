package dispatch

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"merchant-backoffice/internal/models"
	"merchant-backoffice/internal/providers"
)

// OutboxQueue is the store side of the outbox worker.
type OutboxQueue interface {
	DueOutbox(ctx context.Context, now time.Time, limit int) ([]models.OutboxEntry, error)
	FinishOutbox(ctx context.Context, id uuid.UUID, status, lastError string) error
	RescheduleOutbox(ctx context.Context, id uuid.UUID, notBefore time.Time, attemptsRemaining int, lastError string) error
}

// OutboxWorker drains due outbox entries: delayed sends wait for their
// not_before, retryable sends are rescheduled with linear backoff until the
// attempt budget runs out. The terminal outcome of every entry is written to
// the activity log.
type OutboxWorker struct {
	queue    OutboxQueue
	activity ActivityStore
	senders  map[string]providers.SenderFunc
	logger   Logger

	pollInterval time.Duration
	retryBackoff time.Duration
	batchSize    int

	entries chan models.OutboxEntry
	workers int
	ctx     context.Context
	cancel  context.CancelFunc
	wg      *sync.WaitGroup
	now     func() time.Time
}

func NewOutboxWorker(queue OutboxQueue, activity ActivityStore, senders map[string]providers.SenderFunc, logger Logger, workers, queueSize int, pollInterval, retryBackoff time.Duration) *OutboxWorker {
	ctx, cancel := context.WithCancel(context.Background())
	return &OutboxWorker{
		queue:        queue,
		activity:     activity,
		senders:      senders,
		logger:       logger,
		pollInterval: pollInterval,
		retryBackoff: retryBackoff,
		batchSize:    100,
		entries:      make(chan models.OutboxEntry, queueSize),
		workers:      workers,
		ctx:          ctx,
		cancel:       cancel,
		now:          time.Now,
	}
}

// Start launches the poll loop and the worker pool.
func (w *OutboxWorker) Start(wg *sync.WaitGroup) {
	w.wg = wg
	for i := 0; i < w.workers; i++ {
		w.wg.Add(1)
		go w.worker(i)
	}
	w.wg.Add(1)
	go w.poll()
}

// Stop cancels the poll loop and workers.
func (w *OutboxWorker) Stop() {
	w.cancel()
}

func (w *OutboxWorker) poll() {
	defer w.wg.Done()
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-w.ctx.Done():
			w.logger.Infof("Outbox poller stopped")
			return
		case <-ticker.C:
			w.Drain(w.ctx)
		}
	}
}

// Drain claims every due entry and feeds the worker queue. Exposed so tests
// can run one pass synchronously. Claimed entries that do not fit in the
// queue are released back to pending for the next poll; nothing holds a
// claim without either a worker or a reschedule owning it.
func (w *OutboxWorker) Drain(ctx context.Context) {
	due, err := w.queue.DueOutbox(ctx, w.now(), w.batchSize)
	if err != nil {
		w.logger.Errorf("Outbox poll failed: %v", err)
		return
	}
	for _, entry := range due {
		select {
		case w.entries <- entry:
		default:
			w.logger.Warnf("Outbox queue full, releasing entry %s", entry.ID)
			if err := w.queue.RescheduleOutbox(ctx, entry.ID, entry.NotBefore, entry.AttemptsRemaining, entry.LastError); err != nil {
				w.logger.Errorf("Failed to release outbox entry %s: %v", entry.ID, err)
			}
		}
	}
}

func (w *OutboxWorker) worker(id int) {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			w.logger.Infof("Outbox worker %d stopped", id)
			return
		case entry := <-w.entries:
			w.Process(w.ctx, entry)
		}
	}
}

// Process attempts one send of an outbox entry and finalizes or reschedules
// it.
func (w *OutboxWorker) Process(ctx context.Context, entry models.OutboxEntry) {
	sender, ok := w.senders[entry.Payload.Channel]
	if !ok {
		w.finalize(ctx, entry, models.ActivityStatusFailed, "no sender for channel "+entry.Payload.Channel)
		return
	}

	err := sender(ctx, entry.Payload)
	if err == nil {
		w.finalize(ctx, entry, models.ActivityStatusSent, "")
		return
	}

	remaining := entry.AttemptsRemaining - 1
	if remaining > 0 {
		next := w.now().Add(w.retryBackoff)
		if rerr := w.queue.RescheduleOutbox(ctx, entry.ID, next, remaining, err.Error()); rerr != nil {
			w.logger.Errorf("Failed to reschedule outbox entry %s: %v", entry.ID, rerr)
		}
		w.logger.Warnf("Outbox entry %s failed, %d attempts left: %v", entry.ID, remaining, err)
		return
	}
	w.finalize(ctx, entry, models.ActivityStatusFailed, err.Error())
}

func (w *OutboxWorker) finalize(ctx context.Context, entry models.OutboxEntry, status, detail string) {
	outboxStatus := models.OutboxStatusSent
	if status != models.ActivityStatusSent {
		outboxStatus = models.OutboxStatusFailed
	}
	if err := w.queue.FinishOutbox(ctx, entry.ID, outboxStatus, detail); err != nil {
		w.logger.Errorf("Failed to finish outbox entry %s: %v", entry.ID, err)
	}

	record := models.ActivityEntry{
		TriggerKey: entry.Payload.TriggerKey,
		TemplateID: entry.Payload.TemplateID,
		Channel:    entry.Payload.Channel,
		Recipient:  entry.Payload.Recipient,
		Subject:    summaryOf(entry.Payload),
		Status:     status,
		Detail:     detail,
		CreatedAt:  w.now(),
	}
	if err := w.activity.InsertActivity(ctx, record); err != nil {
		w.logger.Errorf("Failed to record outbox activity for %s: %v", entry.ID, err)
	}
}
