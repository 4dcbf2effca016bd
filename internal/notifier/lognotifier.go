package notifier

import (
	"context"

	"github.com/billforge/billforge/internal/domain/subscription"
	"github.com/billforge/billforge/internal/logger"
)

// LogNotifier writes notifications to the log. It is the default binding for
// local development and scripts.
type LogNotifier struct {
	logger *logger.Logger
}

func NewLogNotifier(logger *logger.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) SendInvoice(ctx context.Context, sub *subscription.Subscription) error {
	n.logger.Infow("invoice notification",
		"subscription_id", sub.ID,
		"owner_id", sub.OwnerID,
		"paid_through", sub.PaidThrough)
	return nil
}

func (n *LogNotifier) SendGraceWarning(ctx context.Context, sub *subscription.Subscription) error {
	n.logger.Infow("grace warning notification",
		"subscription_id", sub.ID,
		"owner_id", sub.OwnerID,
		"expire_on", sub.ExpireOn)
	return nil
}

func (n *LogNotifier) SendExpirationNotice(ctx context.Context, sub *subscription.Subscription) error {
	n.logger.Infow("expiration notice",
		"subscription_id", sub.ID,
		"owner_id", sub.OwnerID)
	return nil
}
