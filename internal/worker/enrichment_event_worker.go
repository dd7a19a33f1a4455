package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"coursegen/internal/model"
)

// EventStore persists consumed enrichment events.
type EventStore interface {
	Create(ctx context.Context, event *model.EnrichmentEvent) error
}

// EnrichmentEventWorker drains the enrichment event queue into the audit table.
type EnrichmentEventWorker struct {
	conn      *amqp.Connection
	store     EventStore
	queueName string
	log       *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewEnrichmentEventWorker(conn *amqp.Connection, store EventStore, queueName string, log *zap.Logger) *EnrichmentEventWorker {
	return &EnrichmentEventWorker{
		conn:      conn,
		store:     store,
		queueName: queueName,
		log:       log,
	}
}

func (w *EnrichmentEventWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	_, err = ch.QueueDeclare(
		w.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("declare worker queue failed: %w", err)
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				if err := w.handle(workerCtx, d.Body); err != nil {
					w.log.Warn("drop enrichment event", zap.Error(err))
					_ = d.Nack(false, false)
					continue
				}
				_ = d.Ack(false)
			}
		}
	}()

	return nil
}

func (w *EnrichmentEventWorker) handle(ctx context.Context, body []byte) error {
	var event model.EnrichmentEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("decode enrichment event failed: %w", err)
	}
	if event.CourseID == "" || event.Field == "" || event.Status == "" {
		return fmt.Errorf("incomplete enrichment event")
	}
	// The id is assigned by the audit table.
	event.ID = 0
	return w.store.Create(ctx, &event)
}

func (w *EnrichmentEventWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
