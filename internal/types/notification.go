package types

import "time"

// NotificationEventType identifies the kind of subscriber-facing notice.
type NotificationEventType string

const (
	NotificationInvoice          NotificationEventType = "subscription.invoice"
	NotificationGraceWarning     NotificationEventType = "subscription.grace_warning"
	NotificationExpirationNotice NotificationEventType = "subscription.expired"
)

// NotificationEvent is the payload handed to the notifier boundary. Delivery
// is best-effort; the billing state change it describes has already been
// committed.
type NotificationEvent struct {
	ID             string                `json:"id"`
	Type           NotificationEventType `json:"type"`
	SubscriptionID string                `json:"subscription_id"`
	OwnerID        string                `json:"owner_id"`
	OwnerType      string                `json:"owner_type"`
	Timestamp      time.Time             `json:"timestamp"`
	Payload        map[string]any        `json:"payload,omitempty"`
}
