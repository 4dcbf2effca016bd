package dto

import (
	"context"
	"time"

	"github.com/billforge/billforge/internal/domain/coupon"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/types"
	"github.com/billforge/billforge/internal/validator"
)

// CreateCouponRequest represents the request to create a new coupon
type CreateCouponRequest struct {
	Description          string     `json:"description" validate:"required"`
	DiscountPercentage   int        `json:"discount_percentage" validate:"min=0,max=100"`
	RedemptionLimit      *int       `json:"redemption_limit,omitempty"`
	RedemptionExpiration *time.Time `json:"redemption_expiration,omitempty"`
	DurationInMonths     *int       `json:"duration_in_months,omitempty"`
	PlanIDs              []string   `json:"plan_ids,omitempty"`
}

func (r *CreateCouponRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if r.RedemptionLimit != nil && *r.RedemptionLimit <= 0 {
		return ierr.NewError("redemption_limit must be positive when set").
			WithHint("Please provide a valid redemption limit").
			Mark(ierr.ErrValidation)
	}
	if r.DurationInMonths != nil && *r.DurationInMonths <= 0 {
		return ierr.NewError("duration_in_months must be positive when set").
			WithHint("Please provide a valid coupon duration").
			Mark(ierr.ErrValidation)
	}
	return nil
}

func (r *CreateCouponRequest) ToCoupon(ctx context.Context) *coupon.Coupon {
	return &coupon.Coupon{
		ID:                   types.GenerateUUIDWithPrefix(types.UUIDPrefixCoupon),
		Description:          r.Description,
		DiscountPercentage:   r.DiscountPercentage,
		RedemptionLimit:      r.RedemptionLimit,
		RedemptionExpiration: r.RedemptionExpiration,
		DurationInMonths:     r.DurationInMonths,
		PlanIDs:              r.PlanIDs,
		BaseModel:            types.GetDefaultBaseModel(ctx),
	}
}

// CouponResponse represents the coupon in API responses
type CouponResponse struct {
	*coupon.Coupon
}

// CouponRedemptionResponse represents a redemption in API responses
type CouponRedemptionResponse struct {
	*coupon.CouponRedemption
}
