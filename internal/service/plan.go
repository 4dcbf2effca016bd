package service

import (
	"context"

	"github.com/samber/lo"

	"github.com/billforge/billforge/internal/api/dto"
	"github.com/billforge/billforge/internal/domain/plan"
	ierr "github.com/billforge/billforge/internal/errors"
)

// PlanService defines the interface for plan operations
type PlanService interface {
	CreatePlan(ctx context.Context, req dto.CreatePlanRequest) (*dto.PlanResponse, error)
	GetPlan(ctx context.Context, id string) (*dto.PlanResponse, error)
	GetPlanByKey(ctx context.Context, key string) (*dto.PlanResponse, error)
	ListPlans(ctx context.Context) ([]*dto.PlanResponse, error)
}

type planService struct {
	ServiceParams
}

// NewPlanService creates a new plan service
func NewPlanService(params ServiceParams) PlanService {
	return &planService{
		ServiceParams: params,
	}
}

func (s *planService) CreatePlan(ctx context.Context, req dto.CreatePlanRequest) (*dto.PlanResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if existing, err := s.PlanRepo.GetByKey(ctx, req.Key); err == nil && existing != nil {
		return nil, ierr.NewError("plan key already in use").
			WithHintf("A plan with key %q already exists", req.Key).
			Mark(ierr.ErrAlreadyExists)
	}

	p := req.ToPlan(ctx)
	if err := s.Plans.Create(ctx, p); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to create plan").
			Mark(ierr.ErrInternal)
	}

	return &dto.PlanResponse{Plan: p}, nil
}

func (s *planService) GetPlan(ctx context.Context, id string) (*dto.PlanResponse, error) {
	p, err := s.Plans.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.PlanResponse{Plan: p}, nil
}

func (s *planService) GetPlanByKey(ctx context.Context, key string) (*dto.PlanResponse, error) {
	p, err := s.Plans.GetByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	return &dto.PlanResponse{Plan: p}, nil
}

func (s *planService) ListPlans(ctx context.Context) ([]*dto.PlanResponse, error) {
	plans, err := s.PlanRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	return lo.Map(plans, func(p *plan.Plan, _ int) *dto.PlanResponse {
		return &dto.PlanResponse{Plan: p}
	}), nil
}
