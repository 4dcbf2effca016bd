package service

import (
	"context"
	"time"

	"github.com/samber/lo"

	"github.com/billforge/billforge/internal/api/dto"
	"github.com/billforge/billforge/internal/domain/coupon"
	"github.com/billforge/billforge/internal/domain/subscription"
	ierr "github.com/billforge/billforge/internal/errors"
)

// CouponService defines the interface for coupon operations
type CouponService interface {
	CreateCoupon(ctx context.Context, req dto.CreateCouponRequest) (*dto.CouponResponse, error)
	GetCoupon(ctx context.Context, id string) (*dto.CouponResponse, error)
	ListCoupons(ctx context.Context) ([]*dto.CouponResponse, error)
	DeleteCoupon(ctx context.Context, id string) error

	// ValidateRedemption applies every coupon engine rule to a prospective
	// redemption as of the given date. It has no side effects.
	ValidateRedemption(ctx context.Context, c *coupon.Coupon, sub *subscription.Subscription, on time.Time) error

	// ApplyCouponToSubscription validates and records a redemption.
	ApplyCouponToSubscription(ctx context.Context, couponID, subscriptionID string, on time.Time) (*dto.CouponRedemptionResponse, error)

	// RemoveCouponRedemption drops a subscription's redemption of a coupon,
	// restoring the undiscounted rate.
	RemoveCouponRedemption(ctx context.Context, subscriptionID, couponID string) error

	// BestDiscountPercentage returns the strongest discount active on the
	// subscription as of the given date, or 0.
	BestDiscountPercentage(ctx context.Context, subscriptionID string, on time.Time) (int, error)
}

type couponService struct {
	ServiceParams
}

// NewCouponService creates a new coupon service
func NewCouponService(params ServiceParams) CouponService {
	return &couponService{
		ServiceParams: params,
	}
}

func (s *couponService) CreateCoupon(ctx context.Context, req dto.CreateCouponRequest) (*dto.CouponResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	c := req.ToCoupon(ctx)
	if err := s.CouponRepo.Create(ctx, c); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to create coupon").
			Mark(ierr.ErrInternal)
	}

	return &dto.CouponResponse{Coupon: c}, nil
}

func (s *couponService) GetCoupon(ctx context.Context, id string) (*dto.CouponResponse, error) {
	c, err := s.CouponRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.CouponResponse{Coupon: c}, nil
}

func (s *couponService) ListCoupons(ctx context.Context) ([]*dto.CouponResponse, error) {
	coupons, err := s.CouponRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	return lo.Map(coupons, func(c *coupon.Coupon, _ int) *dto.CouponResponse {
		return &dto.CouponResponse{Coupon: c}
	}), nil
}

func (s *couponService) DeleteCoupon(ctx context.Context, id string) error {
	if _, err := s.CouponRepo.Get(ctx, id); err != nil {
		return err
	}
	return s.CouponRepo.Delete(ctx, id)
}

func (s *couponService) ValidateRedemption(ctx context.Context, c *coupon.Coupon, sub *subscription.Subscription, on time.Time) error {
	// No duplicate redemption of the same coupon on one subscription.
	already := lo.ContainsBy(sub.Redemptions, func(r *coupon.CouponRedemption) bool {
		return r.CouponID == c.ID
	})
	if already {
		return ierr.NewError("coupon already redeemed").
			WithHint("This coupon has already been applied to the subscription").
			WithReportableDetails(map[string]any{"coupon_id": "already redeemed"}).
			Mark(ierr.ErrCouponInvalid)
	}

	if !c.RedeemableOn(on) {
		return ierr.NewError("coupon redemption period has ended").
			WithHint("This coupon can no longer be redeemed").
			WithReportableDetails(map[string]any{"coupon": "redemption expired"}).
			Mark(ierr.ErrCouponInvalid)
	}

	if c.RedemptionLimit != nil {
		active, err := s.RedemptionRepo.CountActiveByCoupon(ctx, c.ID, on)
		if err != nil {
			return err
		}
		if active >= *c.RedemptionLimit {
			return ierr.NewError("coupon redemption limit reached").
				WithHint("This coupon has no redemptions left").
				WithReportableDetails(map[string]any{"coupon": "redemption limit reached"}).
				Mark(ierr.ErrCouponInvalid)
		}
	}

	if !c.AppliesToPlan(sub.PlanID) {
		return ierr.NewError("coupon not valid for plan").
			WithHint("This coupon is restricted to other plans").
			WithReportableDetails(map[string]any{"subscription_plan": "not in coupon whitelist"}).
			Mark(ierr.ErrCouponInvalid)
	}

	// Only paid subscriptions can redeem; a zero effective rate means there is
	// nothing to discount.
	if !sub.IsPaid(on) {
		return ierr.NewError("coupon cannot apply to an unpaid subscription").
			WithHint("Coupons only apply to paid subscriptions").
			WithReportableDetails(map[string]any{"subscription": "not a paid subscription"}).
			Mark(ierr.ErrCouponInvalid)
	}

	return nil
}

func (s *couponService) ApplyCouponToSubscription(ctx context.Context, couponID, subscriptionID string, on time.Time) (*dto.CouponRedemptionResponse, error) {
	c, err := s.CouponRepo.Get(ctx, couponID)
	if err != nil {
		return nil, err
	}

	sub, err := s.loadSubscription(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}

	if err := s.ValidateRedemption(ctx, c, sub, on); err != nil {
		return nil, err
	}

	redemption := coupon.NewCouponRedemption(c, sub.ID, on)
	if err := s.RedemptionRepo.Create(ctx, redemption); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to record coupon redemption").
			Mark(ierr.ErrInternal)
	}

	s.Logger.Infow("coupon redeemed",
		"coupon_id", c.ID,
		"subscription_id", sub.ID,
		"discount_percentage", c.DiscountPercentage,
		"expired_on", redemption.ExpiredOn)

	return &dto.CouponRedemptionResponse{CouponRedemption: redemption}, nil
}

func (s *couponService) RemoveCouponRedemption(ctx context.Context, subscriptionID, couponID string) error {
	redemptions, err := s.RedemptionRepo.ListBySubscription(ctx, subscriptionID)
	if err != nil {
		return err
	}

	redemption, found := lo.Find(redemptions, func(r *coupon.CouponRedemption) bool {
		return r.CouponID == couponID
	})
	if !found {
		return ierr.NewError("redemption not found").
			WithHint("The subscription has not redeemed this coupon").
			Mark(ierr.ErrNotFound)
	}

	return s.RedemptionRepo.Delete(ctx, redemption.ID)
}

func (s *couponService) BestDiscountPercentage(ctx context.Context, subscriptionID string, on time.Time) (int, error) {
	sub, err := s.loadSubscription(ctx, subscriptionID)
	if err != nil {
		return 0, err
	}
	return sub.BestDiscountPercentage(on), nil
}
