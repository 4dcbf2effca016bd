package coupon

import (
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"

	"github.com/billforge/billforge/internal/types"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestApplyDiscount(t *testing.T) {
	c := &Coupon{DiscountPercentage: 30}
	assert.Equal(t, types.NewMoney(910), c.ApplyDiscount(types.NewMoney(1300)))

	// 999 * 0.7 = 699.3 rounds to the nearest cent
	assert.Equal(t, types.NewMoney(699), c.ApplyDiscount(types.NewMoney(999)))

	free := &Coupon{DiscountPercentage: 100}
	assert.Equal(t, types.NewMoney(0), free.ApplyDiscount(types.NewMoney(1300)))

	nop := &Coupon{DiscountPercentage: 0}
	assert.Equal(t, types.NewMoney(1300), nop.ApplyDiscount(types.NewMoney(1300)))
}

func TestAppliesToPlan(t *testing.T) {
	anyPlan := &Coupon{}
	assert.True(t, anyPlan.AppliesToPlan("plan_1"))

	restricted := &Coupon{PlanIDs: []string{"plan_1", "plan_2"}}
	assert.True(t, restricted.AppliesToPlan("plan_1"))
	assert.False(t, restricted.AppliesToPlan("plan_3"))
}

func TestRedeemableOn(t *testing.T) {
	forever := &Coupon{}
	assert.True(t, forever.RedeemableOn(date(2030, 1, 1)))

	deadline := date(2026, 6, 30)
	limited := &Coupon{RedemptionExpiration: &deadline}
	assert.True(t, limited.RedeemableOn(date(2026, 6, 29)))
	assert.True(t, limited.RedeemableOn(date(2026, 6, 30)))
	assert.False(t, limited.RedeemableOn(date(2026, 7, 1)))
}

func TestNewCouponRedemptionWindow(t *testing.T) {
	c := &Coupon{ID: "coupon_1", DurationInMonths: lo.ToPtr(3)}
	redeemedOn := date(2026, 1, 15)

	r := NewCouponRedemption(c, "subs_1", redeemedOn)

	assert.Equal(t, redeemedOn, r.RedeemedOn)
	assert.NotNil(t, r.ExpiredOn)
	assert.Equal(t, date(2026, 4, 15), *r.ExpiredOn)
	assert.Equal(t, "coupon_1", r.CouponID)
	assert.Equal(t, "subs_1", r.SubscriptionID)
}

func TestNewCouponRedemptionPermanent(t *testing.T) {
	c := &Coupon{ID: "coupon_1"}
	r := NewCouponRedemption(c, "subs_1", date(2026, 1, 15))
	assert.Nil(t, r.ExpiredOn)
}

func TestActiveOn(t *testing.T) {
	c := &Coupon{ID: "coupon_1", DurationInMonths: lo.ToPtr(1)}
	r := NewCouponRedemption(c, "subs_1", date(2026, 1, 15))

	assert.False(t, r.ActiveOn(date(2026, 1, 14)), "not active before redemption")
	assert.True(t, r.ActiveOn(date(2026, 1, 15)), "active on the redemption date")
	assert.True(t, r.ActiveOn(date(2026, 2, 15)), "active through the expiry date inclusive")
	assert.False(t, r.ActiveOn(date(2026, 2, 16)), "inactive the day after expiry")

	permanent := NewCouponRedemption(&Coupon{ID: "coupon_2"}, "subs_1", date(2026, 1, 15))
	assert.True(t, permanent.ActiveOn(date(2036, 1, 15)))
}
