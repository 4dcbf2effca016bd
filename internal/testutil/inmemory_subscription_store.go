package testutil

import (
	"context"
	"time"

	"github.com/billforge/billforge/internal/domain/subscription"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/types"
)

// InMemorySubscriptionStore implements subscription.Repository
type InMemorySubscriptionStore struct {
	*InMemoryStore[*subscription.Subscription]
}

// NewInMemorySubscriptionStore creates a new in-memory subscription store
func NewInMemorySubscriptionStore() *InMemorySubscriptionStore {
	return &InMemorySubscriptionStore{
		InMemoryStore: NewInMemoryStore[*subscription.Subscription](),
	}
}

func (s *InMemorySubscriptionStore) Create(ctx context.Context, sub *subscription.Subscription) error {
	if sub == nil {
		return ierr.NewError("subscription cannot be nil").Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Create(ctx, sub.ID, sub)
}

func (s *InMemorySubscriptionStore) Get(ctx context.Context, id string) (*subscription.Subscription, error) {
	sub, err := s.InMemoryStore.Get(ctx, id)
	if err != nil || sub.Status == types.StatusDeleted {
		return nil, ierr.NewError("subscription not found").
			WithHintf("No subscription with id %s", id).
			Mark(ierr.ErrNotFound)
	}
	return sub, nil
}

func (s *InMemorySubscriptionStore) GetByOwner(ctx context.Context, ownerType, ownerID string) (*subscription.Subscription, error) {
	subs, _ := s.InMemoryStore.List(ctx, func(ctx context.Context, sub *subscription.Subscription) bool {
		return sub != nil && sub.OwnerType == ownerType && sub.OwnerID == ownerID &&
			sub.Status != types.StatusDeleted
	}, nil)
	if len(subs) == 0 {
		return nil, ierr.NewError("subscription not found").
			WithHintf("No subscription for %s %s", ownerType, ownerID).
			Mark(ierr.ErrNotFound)
	}
	return subs[0], nil
}

func (s *InMemorySubscriptionStore) Update(ctx context.Context, sub *subscription.Subscription) error {
	if sub == nil {
		return ierr.NewError("subscription cannot be nil").Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Update(ctx, sub.ID, sub)
}

func (s *InMemorySubscriptionStore) Delete(ctx context.Context, id string) error {
	sub, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	sub.Status = types.StatusDeleted
	return s.InMemoryStore.Update(ctx, sub.ID, sub)
}

func (s *InMemorySubscriptionStore) List(ctx context.Context) ([]*subscription.Subscription, error) {
	return s.InMemoryStore.List(ctx, func(ctx context.Context, sub *subscription.Subscription) bool {
		return sub != nil && sub.Status != types.StatusDeleted
	}, func(i, j *subscription.Subscription) bool {
		return i.CreatedAt.Before(j.CreatedAt)
	})
}

func (s *InMemorySubscriptionStore) ListExpireDue(ctx context.Context, asOf time.Time, excludePlanID string) ([]*subscription.Subscription, error) {
	day := types.ToDate(asOf)
	return s.InMemoryStore.List(ctx, func(ctx context.Context, sub *subscription.Subscription) bool {
		return sub != nil && sub.Status != types.StatusDeleted &&
			sub.ExpireOn != nil && !sub.ExpireOn.After(day) &&
			sub.PlanID != excludePlanID
	}, func(i, j *subscription.Subscription) bool {
		return i.ExpireOn.Before(*j.ExpireOn)
	})
}

func (s *InMemorySubscriptionStore) ListOverdue(ctx context.Context, asOf time.Time) ([]*subscription.Subscription, error) {
	day := types.ToDate(asOf)
	return s.InMemoryStore.List(ctx, func(ctx context.Context, sub *subscription.Subscription) bool {
		return sub != nil && sub.Status != types.StatusDeleted &&
			sub.PaidThrough != nil && sub.PaidThrough.Before(day) &&
			sub.ExpireOn == nil
	}, func(i, j *subscription.Subscription) bool {
		return i.PaidThrough.Before(*j.PaidThrough)
	})
}
