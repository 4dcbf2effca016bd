package coupon

import (
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/billforge/billforge/internal/types"
)

// Coupon represents a percentage discount that subscriptions can redeem.
type Coupon struct {
	ID          string `db:"id" json:"id"`
	Description string `db:"description" json:"description"`

	// DiscountPercentage is the percentage taken off the plan rate, 0-100.
	DiscountPercentage int `db:"discount_percentage" json:"discount_percentage"`

	// RedemptionLimit caps the number of active redemptions across all
	// subscriptions. Nil means unlimited.
	RedemptionLimit *int `db:"redemption_limit" json:"redemption_limit"`

	// RedemptionExpiration is the last date on which new redemptions are
	// allowed. Nil means redeemable forever. Existing redemptions are not
	// affected.
	RedemptionExpiration *time.Time `db:"redemption_expiration" json:"redemption_expiration"`

	// DurationInMonths bounds how long a redemption stays active. Nil means
	// the discount is permanent once redeemed.
	DurationInMonths *int `db:"duration_in_months" json:"duration_in_months"`

	// PlanIDs is the whitelist of plans this coupon is restricted to. Empty
	// means valid for any plan.
	PlanIDs []string `db:"-" json:"plan_ids,omitempty"`

	types.BaseModel
}

// DiscountMultiplier returns the factor applied to a rate under this coupon,
// e.g. 0.7 for a 30% discount.
func (c *Coupon) DiscountMultiplier() decimal.Decimal {
	return decimal.NewFromInt(1).
		Sub(decimal.NewFromInt(int64(c.DiscountPercentage)).Div(decimal.NewFromInt(100)))
}

// ApplyDiscount applies the coupon's percentage to a rate, rounding to the
// nearest cent.
func (c *Coupon) ApplyDiscount(rate types.Money) types.Money {
	return rate.MulDecimal(c.DiscountMultiplier())
}

// AppliesToPlan reports whether the coupon may be redeemed against the given
// plan. An empty whitelist admits every plan.
func (c *Coupon) AppliesToPlan(planID string) bool {
	if len(c.PlanIDs) == 0 {
		return true
	}
	return lo.Contains(c.PlanIDs, planID)
}

// RedeemableOn reports whether new redemptions are still allowed on the given
// date.
func (c *Coupon) RedeemableOn(on time.Time) bool {
	if c.RedemptionExpiration == nil {
		return true
	}
	return !types.ToDate(on).After(types.ToDate(*c.RedemptionExpiration))
}
