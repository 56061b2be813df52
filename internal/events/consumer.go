// Package events consumes trigger events published by other back-office
// services and fires them through the dispatcher.
package events

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/segmentio/kafka-go"

	"merchant-backoffice/internal/config"
	"merchant-backoffice/internal/logging"
)

// Firer fires a trigger key with a context mapping.
type Firer interface {
	Fire(ctx context.Context, triggerKey string, data map[string]string)
}

// TriggerEvent is the wire format other services publish.
type TriggerEvent struct {
	TriggerKey string            `json:"trigger_key"`
	Context    map[string]string `json:"context"`
}

type Consumer struct {
	reader *kafka.Reader
	firer  Firer
	logger *logging.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

func NewConsumer(cfg config.Config, firer Firer, logger *logging.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: []string{cfg.Kafka.Broker},
		Topic:   cfg.Kafka.Topic,
		GroupID: cfg.Kafka.GroupID,
	})
	ctx, cancel := context.WithCancel(context.Background())
	return &Consumer{reader: reader, firer: firer, logger: logger, ctx: ctx, cancel: cancel}
}

// Start reads trigger events until Close is called. Malformed messages are
// logged and skipped; an unknown trigger key is handled by the dispatcher's
// silent no-op, so publishers never need to know what is configured.
func (c *Consumer) Start(wg *sync.WaitGroup) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.logger.Infof("Trigger event consumer started")
		for {
			msg, err := c.reader.ReadMessage(c.ctx)
			if err != nil {
				if c.ctx.Err() != nil {
					return
				}
				c.logger.Errorf("Read message failed: %v", err)
				continue
			}

			var event TriggerEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				c.logger.Errorf("Unmarshal trigger event failed: %v", err)
				continue
			}
			if event.TriggerKey == "" {
				c.logger.Errorf("Invalid trigger event: missing trigger_key")
				continue
			}
			if event.Context == nil {
				event.Context = map[string]string{}
			}

			c.firer.Fire(c.ctx, event.TriggerKey, event.Context)
			c.logger.Infof("Processed trigger event %q", event.TriggerKey)
		}
	}()
}

func (c *Consumer) Close() {
	c.cancel()
	if err := c.reader.Close(); err != nil {
		c.logger.Errorf("Failed to close kafka reader: %v", err)
	}
}
