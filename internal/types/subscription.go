package types

import "time"

// SubscriptionState is the explicit lifecycle state of a subscription. It is
// always recomputed from the subscription's dates, never stored.
type SubscriptionState string

const (
	// SubscriptionStateActive covers subscriptions paid into the future and
	// subscriptions on a free plan.
	SubscriptionStateActive SubscriptionState = "active"
	// SubscriptionStateGrace covers subscriptions whose payment is overdue but
	// whose hard expiration date has not yet arrived.
	SubscriptionStateGrace SubscriptionState = "grace"
	// SubscriptionStateExpired covers subscriptions on or past their hard
	// expiration date.
	SubscriptionStateExpired SubscriptionState = "expired"
)

func (s SubscriptionState) String() string {
	return string(s)
}

// ComputeSubscriptionState derives the lifecycle state from the paid-through
// and expire-on dates. A nil paidThrough means the subscription has never been
// charged (always-free) and counts as active. free marks a zero-rate plan,
// which never leaves the active state on its own.
func ComputeSubscriptionState(paidThrough, expireOn *time.Time, free bool, today time.Time) SubscriptionState {
	today = ToDate(today)

	if expireOn != nil && !today.Before(ToDate(*expireOn)) {
		return SubscriptionStateExpired
	}
	if free || paidThrough == nil {
		return SubscriptionStateActive
	}
	if ToDate(*paidThrough).Before(today) {
		return SubscriptionStateGrace
	}
	return SubscriptionStateActive
}

// ProrationBasis selects which rate a received payment is prorated against.
type ProrationBasis string

const (
	// ProrationBasisPlanRate credits paid time against the plan's full rate.
	ProrationBasisPlanRate ProrationBasis = "plan_rate"
	// ProrationBasisEffectiveRate credits paid time against the discounted rate.
	ProrationBasisEffectiveRate ProrationBasis = "effective_rate"
)

func (p ProrationBasis) Validate() bool {
	switch p {
	case ProrationBasisPlanRate, ProrationBasisEffectiveRate:
		return true
	}
	return false
}

// DaysPerBillingMonth fixes one billing month at exactly 30 days for
// proration. Quarterly payment = 3x rate = 90 days; half payment = 15 days.
const DaysPerBillingMonth = 30
