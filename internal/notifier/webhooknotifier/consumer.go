package webhooknotifier

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/billforge/billforge/internal/config"
	"github.com/billforge/billforge/internal/logger"
	"github.com/billforge/billforge/internal/pubsub"
	"github.com/billforge/billforge/internal/types"
)

// Handler processes one consumed notification event. A non-nil error nacks
// the message so the pubsub can redeliver it.
type Handler func(ctx context.Context, event *types.NotificationEvent) error

// Consumer drains the notification topic and hands each event to its handler.
// Without a running consumer the gochannel pubsub would buffer published
// events forever, so the daemon always starts one; deployments with a real
// dispatcher swap the handler.
type Consumer struct {
	subscriber pubsub.Subscriber
	topic      string
	handler    Handler
	logger     *logger.Logger
}

func NewConsumer(subscriber pubsub.Subscriber, cfg *config.Configuration, handler Handler, logger *logger.Logger) *Consumer {
	return &Consumer{
		subscriber: subscriber,
		topic:      cfg.Webhook.Topic,
		handler:    handler,
		logger:     logger,
	}
}

// Start subscribes to the topic and consumes until the context is canceled.
func (c *Consumer) Start(ctx context.Context) error {
	msgs, err := c.subscriber.Subscribe(ctx, c.topic)
	if err != nil {
		return err
	}
	go c.run(ctx, msgs)
	return nil
}

func (c *Consumer) run(ctx context.Context, msgs <-chan *message.Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			c.handle(ctx, msg)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, msg *message.Message) {
	var event types.NotificationEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		c.logger.Errorw("failed to decode notification event",
			"message_id", msg.UUID, "error", err)
		// Malformed payloads never become valid; drop them.
		msg.Ack()
		return
	}

	if err := c.handler(ctx, &event); err != nil {
		c.logger.Errorw("notification handler failed",
			"event_id", event.ID,
			"type", event.Type,
			"subscription_id", event.SubscriptionID,
			"error", err)
		msg.Nack()
		return
	}
	msg.Ack()
}

// LogHandler logs each event. It is the drain used when no external
// dispatcher is attached to the topic.
func LogHandler(logger *logger.Logger) Handler {
	return func(ctx context.Context, event *types.NotificationEvent) error {
		logger.Infow("notification event",
			"event_id", event.ID,
			"type", event.Type,
			"subscription_id", event.SubscriptionID,
			"owner_type", event.OwnerType,
			"owner_id", event.OwnerID)
		return nil
	}
}
