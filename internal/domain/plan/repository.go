package plan

import (
	"context"
)

// Repository defines the interface for plan data access
type Repository interface {
	Create(ctx context.Context, plan *Plan) error
	Get(ctx context.Context, id string) (*Plan, error)
	GetByKey(ctx context.Context, key string) (*Plan, error)
	// GetFree returns the first plan with a zero rate, used as the expiration
	// fallback when no expired-plan key is configured.
	GetFree(ctx context.Context) (*Plan, error)
	List(ctx context.Context) ([]*Plan, error)
	Update(ctx context.Context, plan *Plan) error
}
