package subscription

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, subscription *Subscription) error
	Get(ctx context.Context, id string) (*Subscription, error)
	GetByOwner(ctx context.Context, ownerType, ownerID string) (*Subscription, error)
	Update(ctx context.Context, subscription *Subscription) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*Subscription, error)
	// ListExpireDue returns subscriptions whose expire_on has arrived and that
	// are not already on the given fallback plan, so the expiry batch stays
	// idempotent.
	ListExpireDue(ctx context.Context, asOf time.Time, excludePlanID string) ([]*Subscription, error)
	// ListOverdue returns subscriptions whose paid_through has passed and that
	// have no expiration flagged yet.
	ListOverdue(ctx context.Context, asOf time.Time) ([]*Subscription, error)
}
