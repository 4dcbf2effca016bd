package testutil

import (
	"context"

	"github.com/billforge/billforge/internal/domain/plan"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/types"
)

// InMemoryPlanStore implements plan.Repository
type InMemoryPlanStore struct {
	*InMemoryStore[*plan.Plan]
}

// NewInMemoryPlanStore creates a new in-memory plan store
func NewInMemoryPlanStore() *InMemoryPlanStore {
	return &InMemoryPlanStore{
		InMemoryStore: NewInMemoryStore[*plan.Plan](),
	}
}

func planSortFn(i, j *plan.Plan) bool {
	if i == nil || j == nil {
		return false
	}
	return i.RateCents.LessThan(j.RateCents)
}

func (s *InMemoryPlanStore) Create(ctx context.Context, p *plan.Plan) error {
	if p == nil {
		return ierr.NewError("plan cannot be nil").Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Create(ctx, p.ID, p)
}

func (s *InMemoryPlanStore) Get(ctx context.Context, id string) (*plan.Plan, error) {
	p, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, ierr.NewError("plan not found").
			WithHintf("No plan with id %s", id).
			Mark(ierr.ErrNotFound)
	}
	return p, nil
}

func (s *InMemoryPlanStore) GetByKey(ctx context.Context, key string) (*plan.Plan, error) {
	plans, _ := s.InMemoryStore.List(ctx, func(ctx context.Context, p *plan.Plan) bool {
		return p != nil && p.Key == key && p.Status != types.StatusDeleted
	}, nil)
	if len(plans) == 0 {
		return nil, ierr.NewError("plan not found").
			WithHintf("No plan with key %s", key).
			Mark(ierr.ErrNotFound)
	}
	return plans[0], nil
}

func (s *InMemoryPlanStore) GetFree(ctx context.Context) (*plan.Plan, error) {
	plans, _ := s.InMemoryStore.List(ctx, func(ctx context.Context, p *plan.Plan) bool {
		return p != nil && p.IsFree() && p.Status != types.StatusDeleted
	}, func(i, j *plan.Plan) bool {
		return i.CreatedAt.Before(j.CreatedAt)
	})
	if len(plans) == 0 {
		return nil, ierr.NewError("no free plan configured").
			WithHint("Create a zero-rate plan to act as the expiration fallback").
			Mark(ierr.ErrNotFound)
	}
	return plans[0], nil
}

func (s *InMemoryPlanStore) List(ctx context.Context) ([]*plan.Plan, error) {
	return s.InMemoryStore.List(ctx, func(ctx context.Context, p *plan.Plan) bool {
		return p != nil && p.Status != types.StatusDeleted
	}, planSortFn)
}

func (s *InMemoryPlanStore) Update(ctx context.Context, p *plan.Plan) error {
	if p == nil {
		return ierr.NewError("plan cannot be nil").Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Update(ctx, p.ID, p)
}
