package gateway

import (
	"context"

	"github.com/billforge/billforge/internal/domain/card"
)

// Response is the gateway's answer to a store/update/cancel call. Success is
// authoritative: a false Success always signals failure, and BillingKey is
// populated only on success.
type Response struct {
	Success    bool   `json:"success"`
	BillingKey string `json:"billing_key,omitempty"`
	Message    string `json:"message,omitempty"`
}

// Gateway is the payment processor capability. Implementations vary by
// processor; all are synchronous from the engine's perspective and surface
// timeouts as errors, never as silent no-ops.
type Gateway interface {
	// Store tokenizes a card and opens a billing agreement.
	Store(ctx context.Context, c *card.CreditCard) (*Response, error)
	// Update replaces the card behind an existing billing agreement.
	Update(ctx context.Context, billingKey string, c *card.CreditCard) (*Response, error)
	// Cancel terminates the billing agreement.
	Cancel(ctx context.Context, billingKey string) (*Response, error)
}
