package webhooknotifier

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/billforge/billforge/internal/config"
	"github.com/billforge/billforge/internal/domain/subscription"
	"github.com/billforge/billforge/internal/logger"
	"github.com/billforge/billforge/internal/pubsub"
	"github.com/billforge/billforge/internal/types"
)

// Notifier publishes notification events to a pubsub topic, from which a
// delivery worker (mailer, webhook dispatcher) can consume them. Publishing
// is best-effort like every notifier.
type Notifier struct {
	publisher pubsub.Publisher
	topic     string
	logger    *logger.Logger
}

func NewNotifier(publisher pubsub.Publisher, cfg *config.Configuration, logger *logger.Logger) *Notifier {
	return &Notifier{
		publisher: publisher,
		topic:     cfg.Webhook.Topic,
		logger:    logger,
	}
}

func (n *Notifier) SendInvoice(ctx context.Context, sub *subscription.Subscription) error {
	return n.publish(ctx, types.NotificationInvoice, sub, map[string]any{
		"paid_through":        sub.PaidThrough,
		"last_transaction_at": sub.LastTransactionAt,
	})
}

func (n *Notifier) SendGraceWarning(ctx context.Context, sub *subscription.Subscription) error {
	return n.publish(ctx, types.NotificationGraceWarning, sub, map[string]any{
		"expire_on": sub.ExpireOn,
	})
}

func (n *Notifier) SendExpirationNotice(ctx context.Context, sub *subscription.Subscription) error {
	return n.publish(ctx, types.NotificationExpirationNotice, sub, nil)
}

func (n *Notifier) publish(ctx context.Context, eventType types.NotificationEventType, sub *subscription.Subscription, payload map[string]any) error {
	event := types.NotificationEvent{
		ID:             types.GenerateUUID(),
		Type:           eventType,
		SubscriptionID: sub.ID,
		OwnerID:        sub.OwnerID,
		OwnerType:      sub.OwnerType,
		Timestamp:      time.Now().UTC(),
		Payload:        payload,
	}

	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := message.NewMessage(event.ID, body)
	if err := n.publisher.Publish(ctx, n.topic, msg); err != nil {
		n.logger.Errorw("failed to publish notification event",
			"type", eventType,
			"subscription_id", sub.ID,
			"error", err)
		return err
	}

	return nil
}
