package subscription

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/billforge/billforge/internal/domain/coupon"
	"github.com/billforge/billforge/internal/domain/plan"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/types"
)

// Subscription is the aggregate root of the billing engine. It ties an owner
// to a plan, tracks how far service is paid for, and carries the coupon
// redemptions that discount its rate.
type Subscription struct {
	ID string `db:"id" json:"id"`

	// OwnerID/OwnerType reference the subscribing entity. The billing engine
	// treats them as opaque; resolution happens through an OwnerResolver.
	OwnerID   string `db:"owner_id" json:"owner_id"`
	OwnerType string `db:"owner_type" json:"owner_type"`

	PlanID string `db:"subscription_plan_id" json:"subscription_plan_id"`

	// BillingKey is the gateway's token for the stored payment method or
	// recurring billing agreement. Nil until a card has been stored.
	BillingKey *string `db:"billing_key" json:"billing_key"`

	CreditCardID *string `db:"credit_card_id" json:"credit_card_id"`

	// PaidThrough is the date through which service is paid. Nil means the
	// subscription has never been charged.
	PaidThrough *time.Time `db:"paid_through" json:"paid_through"`

	// ExpireOn is the date the subscription will be force-expired if the
	// overdue payment is not cured. Nil when no expiration is pending.
	ExpireOn *time.Time `db:"expire_on" json:"expire_on"`

	StartedOn         *time.Time `db:"started_on" json:"started_on"`
	LastTransactionAt *time.Time `db:"last_transaction_at" json:"last_transaction_at"`

	// Plan is the current plan, attached on load.
	Plan *plan.Plan `db:"-" json:"plan,omitempty"`

	// Redemptions are the subscription's coupon redemptions, attached on load.
	Redemptions []*coupon.CouponRedemption `db:"-" json:"redemptions,omitempty"`

	types.BaseModel
}

// BestDiscountPercentage returns the maximum discount percentage among the
// redemptions active on the given date, or 0 when none apply. Ties need no
// further break since the result is numerically identical.
func (s *Subscription) BestDiscountPercentage(on time.Time) int {
	best := 0
	for _, r := range s.Redemptions {
		if r.Coupon == nil || !r.ActiveOn(on) {
			continue
		}
		if r.Coupon.DiscountPercentage > best {
			best = r.Coupon.DiscountPercentage
		}
	}
	return best
}

// EffectiveRate is the plan rate after the best applicable discount, rounded
// to the nearest cent.
func (s *Subscription) EffectiveRate(on time.Time) types.Money {
	if s.Plan == nil {
		return types.NewMoney(0)
	}
	rate := s.Plan.Rate()
	if discount := s.BestDiscountPercentage(on); discount > 0 {
		multiplier := decimal.NewFromInt(1).
			Sub(decimal.NewFromInt(int64(discount)).Div(decimal.NewFromInt(100)))
		rate = rate.MulDecimal(multiplier)
	}
	return rate
}

// IsPaid reports whether the subscription carries a charge on the given date.
func (s *Subscription) IsPaid(on time.Time) bool {
	return s.EffectiveRate(on).IsPositive()
}

// InGrace holds when payment is overdue but the hard expiration date has not
// yet arrived.
func (s *Subscription) InGrace(today time.Time) bool {
	if s.PaidThrough == nil {
		return false
	}
	today = types.ToDate(today)
	if !types.ToDate(*s.PaidThrough).Before(today) {
		return false
	}
	return s.ExpireOn == nil || today.Before(types.ToDate(*s.ExpireOn))
}

// IsExpired holds once the hard expiration date has arrived.
func (s *Subscription) IsExpired(today time.Time) bool {
	return s.ExpireOn != nil && !types.ToDate(today).Before(types.ToDate(*s.ExpireOn))
}

// RemainingDaysOfGrace is the number of days strictly remaining before the
// expiration takes effect; negative once expired, and meaningless while no
// expiration is pending.
func (s *Subscription) RemainingDaysOfGrace(today time.Time) int {
	if s.ExpireOn == nil {
		return 0
	}
	return types.DaysBetween(today, *s.ExpireOn) - 1
}

// RemainingDays is the number of paid days left from today.
func (s *Subscription) RemainingDays(today time.Time) int {
	if s.PaidThrough == nil {
		return 0
	}
	return types.DaysBetween(today, *s.PaidThrough)
}

// RemainingValue is the monetary worth of the remaining paid period, at the
// plan's daily rate.
func (s *Subscription) RemainingValue(today time.Time) types.Money {
	if s.Plan == nil {
		return types.NewMoney(0)
	}
	days := s.RemainingDays(today)
	if days <= 0 {
		return types.NewMoney(0)
	}
	return s.Plan.DailyRate().MulInt(int64(days))
}

// State derives the explicit lifecycle state from the subscription's dates.
func (s *Subscription) State(today time.Time) types.SubscriptionState {
	free := s.Plan != nil && s.Plan.IsFree()
	return types.ComputeSubscriptionState(s.PaidThrough, s.ExpireOn, free, today)
}

// HasBillingKey reports whether a payment method is stored at the gateway.
func (s *Subscription) HasBillingKey() bool {
	return s.BillingKey != nil && *s.BillingKey != ""
}

// Validate applies the aggregate invariants: plan and owner are required, and
// a paid subscription needs a credit card or an existing billing key.
func (s *Subscription) Validate(today time.Time) error {
	details := make(map[string]any)
	if s.Plan == nil || s.PlanID == "" {
		details["subscription_plan"] = "subscription plan is required"
	}
	if s.OwnerID == "" || s.OwnerType == "" {
		details["owner"] = "owner is required"
	}
	if s.Plan != nil && s.IsPaid(today) && !s.HasBillingKey() && s.CreditCardID == nil {
		details["credit_card"] = "credit card is required for a paid plan"
	}
	if len(details) > 0 {
		return ierr.NewError("subscription validation failed").
			WithHint("Please correct the subscription fields").
			WithReportableDetails(details).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// ApplyPayment credits paid time for the received amount. One billing month is
// exactly 30 days, so days credited = round(amount/rate * 30), counted from
// the later of the current paid-through date and the receipt date. A
// successful payment cancels any pending expiration.
func (s *Subscription) ApplyPayment(amount types.Money, receivedAt time.Time, basis types.ProrationBasis) (int, error) {
	if s.Plan == nil {
		return 0, ierr.NewError("subscription has no plan").
			WithHint("A plan is required to receive payments").
			Mark(ierr.ErrInvalidOperation)
	}

	rate := s.Plan.Rate()
	if basis == types.ProrationBasisEffectiveRate {
		rate = s.EffectiveRate(receivedAt)
	}
	if !rate.IsPositive() {
		return 0, ierr.NewError("cannot prorate against a zero rate").
			WithHint("Payments cannot be applied to a free plan").
			Mark(ierr.ErrInvalidOperation)
	}

	fraction := amount.Decimal().Div(rate.Decimal())
	daysCredited := int(fraction.Mul(decimal.NewFromInt(types.DaysPerBillingMonth)).Round(0).IntPart())

	receivedOn := types.ToDate(receivedAt)
	base := receivedOn
	if s.PaidThrough != nil {
		base = types.MaxDate(*s.PaidThrough, receivedOn)
	}
	paidThrough := types.AddDays(base, daysCredited)

	s.PaidThrough = &paidThrough
	s.ExpireOn = nil
	received := receivedAt.UTC()
	s.LastTransactionAt = &received

	return daysCredited, nil
}

// ChangePlan moves the subscription to a new plan. Discounts do not survive a
// plan change: every coupon redemption is invalidated, whatever the reason
// for the change.
func (s *Subscription) ChangePlan(p *plan.Plan) {
	s.Plan = p
	s.PlanID = p.ID
	s.Redemptions = nil
}

// FlagExpiration sets the hard expiration date after the grace window,
// counted from the later of today and the paid-through date so a subscriber
// always gets the full grace period. Returns true when the date was newly
// set; an already-pending expiration is left untouched.
func (s *Subscription) FlagExpiration(today time.Time, daysGrace int) bool {
	if s.ExpireOn != nil {
		return false
	}
	base := types.ToDate(today)
	if s.PaidThrough != nil {
		base = types.MaxDate(base, *s.PaidThrough)
	}
	expireOn := types.AddDays(base, daysGrace)
	s.ExpireOn = &expireOn
	return true
}

// Expire downgrades the subscription to the fallback plan and discards the
// stored payment method. The record stays live but generates no further
// charges until a new plan and card are set.
func (s *Subscription) Expire(fallback *plan.Plan) {
	s.ChangePlan(fallback)
	s.BillingKey = nil
	s.CreditCardID = nil
}
