package dto

import (
	"context"

	"github.com/billforge/billforge/internal/domain/plan"
	"github.com/billforge/billforge/internal/types"
	"github.com/billforge/billforge/internal/validator"
)

// CreatePlanRequest represents the request to create a new subscription plan
type CreatePlanRequest struct {
	Key          string `json:"key" validate:"required"`
	Name         string `json:"name" validate:"required"`
	RateCents    int64  `json:"rate_cents" validate:"min=0"`
	FeatureSetID string `json:"feature_set_id" validate:"required"`
}

func (r *CreatePlanRequest) Validate() error {
	return validator.ValidateRequest(r)
}

func (r *CreatePlanRequest) ToPlan(ctx context.Context) *plan.Plan {
	return &plan.Plan{
		ID:           types.GenerateUUIDWithPrefix(types.UUIDPrefixPlan),
		Key:          r.Key,
		Name:         r.Name,
		RateCents:    types.NewMoney(r.RateCents),
		FeatureSetID: r.FeatureSetID,
		BaseModel:    types.GetDefaultBaseModel(ctx),
	}
}

// PlanResponse represents the plan in API responses
type PlanResponse struct {
	*plan.Plan
}
