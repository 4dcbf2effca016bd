package dto

import (
	"time"

	"github.com/billforge/billforge/internal/domain/card"
	"github.com/billforge/billforge/internal/domain/subscription"
	"github.com/billforge/billforge/internal/types"
	"github.com/billforge/billforge/internal/validator"
)

// CreateSubscriptionRequest represents the signup request
type CreateSubscriptionRequest struct {
	OwnerID   string `json:"owner_id" validate:"required"`
	OwnerType string `json:"owner_type" validate:"required"`
	PlanKey   string `json:"plan_key" validate:"required"`

	// CreditCard, when present, is stored at the gateway during signup.
	CreditCard *card.CreditCard `json:"credit_card,omitempty"`

	// CouponID, when present, is redeemed as part of signup.
	CouponID string `json:"coupon_id,omitempty"`

	// WithTrial grants the configured trial period on a paid plan.
	WithTrial bool `json:"with_trial,omitempty"`
}

func (r *CreateSubscriptionRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// ReceivePaymentRequest represents an incoming payment to apply
type ReceivePaymentRequest struct {
	AmountCents int64     `json:"amount_cents" validate:"required,gt=0"`
	ReceivedAt  time.Time `json:"received_at"`
}

func (r *ReceivePaymentRequest) Validate() error {
	return validator.ValidateRequest(r)
}

func (r *ReceivePaymentRequest) Amount() types.Money {
	return types.NewMoney(r.AmountCents)
}

// SubscriptionResponse represents the subscription in API responses,
// enriched with the derived lifecycle fields.
type SubscriptionResponse struct {
	*subscription.Subscription

	State          types.SubscriptionState `json:"state"`
	EffectiveRate  types.Money             `json:"effective_rate"`
	RemainingDays  int                     `json:"remaining_days"`
	RemainingValue types.Money             `json:"remaining_value"`
}

// NewSubscriptionResponse derives the response fields as of today.
func NewSubscriptionResponse(sub *subscription.Subscription) *SubscriptionResponse {
	today := types.Today()
	return &SubscriptionResponse{
		Subscription:   sub,
		State:          sub.State(today),
		EffectiveRate:  sub.EffectiveRate(today),
		RemainingDays:  sub.RemainingDays(today),
		RemainingValue: sub.RemainingValue(today),
	}
}
