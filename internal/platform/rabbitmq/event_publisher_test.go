package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasktrack/internal/model"
)

type recordingChannel struct {
	exchange   string
	key        string
	msg        amqp.Publishing
	publishErr error
	closed     bool
}

func (c *recordingChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	c.exchange = exchange
	c.key = key
	c.msg = msg
	return c.publishErr
}

func (c *recordingChannel) Close() error {
	c.closed = true
	return nil
}

func newTestPublisher(ch *recordingChannel, openErr error) *EventPublisher {
	return &EventPublisher{
		openChannel: func() (publishChannel, error) {
			if openErr != nil {
				return nil, openErr
			}
			return ch, nil
		},
		queueName: "auth.events",
	}
}

func TestEventPublisher_Publish(t *testing.T) {
	ch := &recordingChannel{}
	occurred := time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)
	event := model.AuthEvent{
		Type:       model.AuthEventLogin,
		UserID:     3,
		Username:   "alice",
		RemoteAddr: "10.0.0.1",
		OccurredAt: occurred,
	}

	require.NoError(t, newTestPublisher(ch, nil).Publish(context.Background(), event))

	assert.Empty(t, ch.exchange)
	assert.Equal(t, "auth.events", ch.key)
	assert.Equal(t, "application/json", ch.msg.ContentType)
	assert.Equal(t, model.AuthEventLogin, ch.msg.Type)
	assert.Equal(t, amqp.Persistent, ch.msg.DeliveryMode)
	assert.True(t, occurred.Equal(ch.msg.Timestamp))
	assert.True(t, ch.closed)

	var decoded model.AuthEvent
	require.NoError(t, json.Unmarshal(ch.msg.Body, &decoded))
	assert.Equal(t, event.Username, decoded.Username)
	assert.Equal(t, event.UserID, decoded.UserID)
	assert.True(t, occurred.Equal(decoded.OccurredAt))
}

func TestEventPublisher_Errors(t *testing.T) {
	t.Run("open channel", func(t *testing.T) {
		err := newTestPublisher(nil, errors.New("connection closed")).
			Publish(context.Background(), model.AuthEvent{Type: model.AuthEventLogout})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "open rabbitmq channel failed: connection closed")
	})

	t.Run("publish", func(t *testing.T) {
		ch := &recordingChannel{publishErr: errors.New("channel closed")}
		err := newTestPublisher(ch, nil).Publish(context.Background(), model.AuthEvent{Type: model.AuthEventLogout})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "publish auth event failed: channel closed")
		assert.True(t, ch.closed)
	})
}
