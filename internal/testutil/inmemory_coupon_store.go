package testutil

import (
	"context"
	"time"

	"github.com/billforge/billforge/internal/domain/coupon"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/types"
)

// InMemoryCouponStore implements coupon.Repository
type InMemoryCouponStore struct {
	*InMemoryStore[*coupon.Coupon]
}

// NewInMemoryCouponStore creates a new in-memory coupon store
func NewInMemoryCouponStore() *InMemoryCouponStore {
	return &InMemoryCouponStore{
		InMemoryStore: NewInMemoryStore[*coupon.Coupon](),
	}
}

func (s *InMemoryCouponStore) Create(ctx context.Context, c *coupon.Coupon) error {
	if c == nil {
		return ierr.NewError("coupon cannot be nil").Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Create(ctx, c.ID, c)
}

func (s *InMemoryCouponStore) Get(ctx context.Context, id string) (*coupon.Coupon, error) {
	c, err := s.InMemoryStore.Get(ctx, id)
	if err != nil || c.Status == types.StatusDeleted {
		return nil, ierr.NewError("coupon not found").
			WithHintf("No coupon with id %s", id).
			Mark(ierr.ErrNotFound)
	}
	return c, nil
}

func (s *InMemoryCouponStore) List(ctx context.Context) ([]*coupon.Coupon, error) {
	return s.InMemoryStore.List(ctx, func(ctx context.Context, c *coupon.Coupon) bool {
		return c != nil && c.Status != types.StatusDeleted
	}, func(i, j *coupon.Coupon) bool {
		return i.CreatedAt.Before(j.CreatedAt)
	})
}

func (s *InMemoryCouponStore) Update(ctx context.Context, c *coupon.Coupon) error {
	if c == nil {
		return ierr.NewError("coupon cannot be nil").Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Update(ctx, c.ID, c)
}

func (s *InMemoryCouponStore) Delete(ctx context.Context, id string) error {
	c, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	c.Status = types.StatusDeleted
	return s.InMemoryStore.Update(ctx, c.ID, c)
}

// InMemoryRedemptionStore implements coupon.RedemptionRepository
type InMemoryRedemptionStore struct {
	*InMemoryStore[*coupon.CouponRedemption]
}

// NewInMemoryRedemptionStore creates a new in-memory coupon redemption store
func NewInMemoryRedemptionStore() *InMemoryRedemptionStore {
	return &InMemoryRedemptionStore{
		InMemoryStore: NewInMemoryStore[*coupon.CouponRedemption](),
	}
}

func (s *InMemoryRedemptionStore) Create(ctx context.Context, r *coupon.CouponRedemption) error {
	if r == nil {
		return ierr.NewError("redemption cannot be nil").Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Create(ctx, r.ID, r)
}

func (s *InMemoryRedemptionStore) Get(ctx context.Context, id string) (*coupon.CouponRedemption, error) {
	r, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("redemption not found").
			WithHintf("No coupon redemption with id %s", id).
			Mark(ierr.ErrNotFound)
	}
	return r, nil
}

func (s *InMemoryRedemptionStore) ListBySubscription(ctx context.Context, subscriptionID string) ([]*coupon.CouponRedemption, error) {
	return s.InMemoryStore.List(ctx, func(ctx context.Context, r *coupon.CouponRedemption) bool {
		return r != nil && r.SubscriptionID == subscriptionID
	}, func(i, j *coupon.CouponRedemption) bool {
		return i.RedeemedOn.Before(j.RedeemedOn)
	})
}

func (s *InMemoryRedemptionStore) CountActiveByCoupon(ctx context.Context, couponID string, on time.Time) (int, error) {
	return s.InMemoryStore.Count(ctx, func(ctx context.Context, r *coupon.CouponRedemption) bool {
		return r != nil && r.CouponID == couponID && r.ActiveOn(on)
	})
}

func (s *InMemoryRedemptionStore) Delete(ctx context.Context, id string) error {
	return s.InMemoryStore.Delete(ctx, id)
}

func (s *InMemoryRedemptionStore) DeleteBySubscription(ctx context.Context, subscriptionID string) error {
	return s.InMemoryStore.DeleteWhere(ctx, func(ctx context.Context, r *coupon.CouponRedemption) bool {
		return r != nil && r.SubscriptionID == subscriptionID
	})
}
