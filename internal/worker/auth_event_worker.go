package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"tasktrack/internal/model"
	rabbitmqClient "tasktrack/internal/platform/rabbitmq"
	"tasktrack/internal/repository"
)

var errInvalidEvent = errors.New("invalid auth event")

// AuthEventWorker drains the audit queue into the auth_events table.
type AuthEventWorker struct {
	conn      *amqp.Connection
	repo      *repository.AuthEventRepository
	queueName string
	logger    *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewAuthEventWorker(conn *amqp.Connection, repo *repository.AuthEventRepository, queueName string, logger *slog.Logger) *AuthEventWorker {
	return &AuthEventWorker{
		conn:      conn,
		repo:      repo,
		queueName: queueName,
		logger:    logger,
	}
}

func (w *AuthEventWorker) Start(ctx context.Context) error {
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

	if _, err := rabbitmqClient.DeclareQueue(ch, w.queueName); err != nil {
		_ = ch.Close()
		cancel()
		return err
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
		w.consume(workerCtx, deliveries)
	}()

	w.logger.Info("auth event worker started", slog.String("queue", w.queueName))
	return nil
}

// consume acks each persisted event and drops (nacks without requeue) any
// that cannot be decoded or stored. It returns when ctx is done or the
// delivery channel closes.
func (w *AuthEventWorker) consume(ctx context.Context, deliveries <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				return
			}
			if err := w.handle(ctx, d.Body); err != nil {
				w.logger.Error("persist auth event failed",
					slog.String("queue", w.queueName),
					slog.String("error", err.Error()),
				)
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func (w *AuthEventWorker) handle(ctx context.Context, body []byte) error {
	var event model.AuthEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("decode auth event: %w", err)
	}
	if event.Type == "" || event.OccurredAt.IsZero() {
		return errInvalidEvent
	}
	// ids are assigned by the table, never taken from the wire
	event.ID = 0
	return w.repo.Create(ctx, &event)
}

func (w *AuthEventWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
