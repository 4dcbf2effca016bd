package coupon

import (
	"context"
	"time"
)

// Repository defines the interface for coupon data access
type Repository interface {
	Create(ctx context.Context, coupon *Coupon) error
	Get(ctx context.Context, id string) (*Coupon, error)
	List(ctx context.Context) ([]*Coupon, error)
	Update(ctx context.Context, coupon *Coupon) error
	Delete(ctx context.Context, id string) error
}

// RedemptionRepository defines the interface for coupon redemption data
// access. The billing engine validates redemptions; this stores them.
type RedemptionRepository interface {
	Create(ctx context.Context, redemption *CouponRedemption) error
	Get(ctx context.Context, id string) (*CouponRedemption, error)
	// ListBySubscription returns the subscription's redemptions with their
	// coupons attached.
	ListBySubscription(ctx context.Context, subscriptionID string) ([]*CouponRedemption, error)
	// CountActiveByCoupon counts redemptions of the coupon still active on the
	// given date, for redemption-limit enforcement.
	CountActiveByCoupon(ctx context.Context, couponID string, on time.Time) (int, error)
	Delete(ctx context.Context, id string) error
	// DeleteBySubscription removes every redemption held by the subscription,
	// used when a plan change invalidates its discounts.
	DeleteBySubscription(ctx context.Context, subscriptionID string) error
}
