package coupon

import (
	"time"

	"github.com/billforge/billforge/internal/types"
)

// CouponRedemption joins a subscription to a coupon it has redeemed. Its
// validity window is independent of the coupon's own redemption rules: the
// window is fixed at creation from the coupon's duration.
type CouponRedemption struct {
	ID             string `db:"id" json:"id"`
	SubscriptionID string `db:"subscription_id" json:"subscription_id"`
	CouponID       string `db:"coupon_id" json:"coupon_id"`

	// RedeemedOn is the date the discount takes effect.
	RedeemedOn time.Time `db:"redeemed_on" json:"redeemed_on"`

	// ExpiredOn is the last date the discount applies, computed at creation as
	// redeemed_on + duration_in_months. Nil means the discount never expires.
	ExpiredOn *time.Time `db:"expired_on" json:"expired_on"`

	// Coupon is the redeemed coupon, attached on load.
	Coupon *Coupon `db:"-" json:"coupon,omitempty"`

	types.BaseModel
}

// NewCouponRedemption builds a redemption for the given coupon and
// subscription, fixing the expiry window from the coupon's duration.
func NewCouponRedemption(c *Coupon, subscriptionID string, redeemedOn time.Time) *CouponRedemption {
	r := &CouponRedemption{
		ID:             types.GenerateUUIDWithPrefix(types.UUIDPrefixCouponRedemption),
		SubscriptionID: subscriptionID,
		CouponID:       c.ID,
		RedeemedOn:     types.ToDate(redeemedOn),
		Coupon:         c,
	}
	if c.DurationInMonths != nil {
		expiredOn := types.AddMonths(r.RedeemedOn, *c.DurationInMonths)
		r.ExpiredOn = &expiredOn
	}
	return r
}

// ActiveOn reports whether the redemption's discount applies on the given
// date: redeemed on or before it, and not yet past the expiry date.
func (r *CouponRedemption) ActiveOn(on time.Time) bool {
	on = types.ToDate(on)
	if types.ToDate(r.RedeemedOn).After(on) {
		return false
	}
	if r.ExpiredOn != nil && on.After(types.ToDate(*r.ExpiredOn)) {
		return false
	}
	return true
}
