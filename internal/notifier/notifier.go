package notifier

import (
	"context"

	"github.com/billforge/billforge/internal/domain/subscription"
)

// Notifier is the outbound notification capability. Delivery is fire-and-
// forget from the engine's perspective: callers log failures and move on, the
// billing state change is never rolled back over a lost notice.
type Notifier interface {
	// SendInvoice acknowledges a received payment.
	SendInvoice(ctx context.Context, sub *subscription.Subscription) error
	// SendGraceWarning tells the subscriber payment is overdue and expiration
	// is pending.
	SendGraceWarning(ctx context.Context, sub *subscription.Subscription) error
	// SendExpirationNotice tells the subscriber the subscription has expired.
	SendExpirationNotice(ctx context.Context, sub *subscription.Subscription) error
}
