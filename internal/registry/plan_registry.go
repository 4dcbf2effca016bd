package registry

import (
	"context"
	"time"

	goCache "github.com/patrickmn/go-cache"

	"github.com/billforge/billforge/internal/domain/plan"
)

// Cache key prefixes; plans are immutable once created so a long TTL is safe.
const (
	prefixPlanID  = "plan:id:"
	prefixPlanKey = "plan:key:"
	keyFreePlan   = "plan:free"

	defaultExpiration = 30 * time.Minute
	cleanupInterval   = 1 * time.Hour
)

// PlanRegistry is a read-through cache over the plan repository. Rate lookups
// sit on the hot path of every payment and rate computation, so plan reads go
// through here rather than the repository directly.
type PlanRegistry struct {
	repo  plan.Repository
	cache *goCache.Cache
}

func NewPlanRegistry(repo plan.Repository) *PlanRegistry {
	return &PlanRegistry{
		repo:  repo,
		cache: goCache.New(defaultExpiration, cleanupInterval),
	}
}

// Get returns the plan by id.
func (r *PlanRegistry) Get(ctx context.Context, id string) (*plan.Plan, error) {
	if cached, found := r.cache.Get(prefixPlanID + id); found {
		return cached.(*plan.Plan), nil
	}

	p, err := r.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	r.put(p)
	return p, nil
}

// GetByKey returns the plan with the given lookup key.
func (r *PlanRegistry) GetByKey(ctx context.Context, key string) (*plan.Plan, error) {
	if cached, found := r.cache.Get(prefixPlanKey + key); found {
		return cached.(*plan.Plan), nil
	}

	p, err := r.repo.GetByKey(ctx, key)
	if err != nil {
		return nil, err
	}

	r.put(p)
	return p, nil
}

// GetFree returns the zero-rate fallback plan.
func (r *PlanRegistry) GetFree(ctx context.Context) (*plan.Plan, error) {
	if cached, found := r.cache.Get(keyFreePlan); found {
		return cached.(*plan.Plan), nil
	}

	p, err := r.repo.GetFree(ctx)
	if err != nil {
		return nil, err
	}

	r.cache.Set(keyFreePlan, p, goCache.DefaultExpiration)
	r.put(p)
	return p, nil
}

// Create stores a new plan and primes the cache.
func (r *PlanRegistry) Create(ctx context.Context, p *plan.Plan) error {
	if err := r.repo.Create(ctx, p); err != nil {
		return err
	}
	r.put(p)
	if p.IsFree() {
		r.cache.Delete(keyFreePlan)
	}
	return nil
}

// Invalidate drops a plan from the cache after an out-of-band change.
func (r *PlanRegistry) Invalidate(p *plan.Plan) {
	r.cache.Delete(prefixPlanID + p.ID)
	r.cache.Delete(prefixPlanKey + p.Key)
	r.cache.Delete(keyFreePlan)
}

func (r *PlanRegistry) put(p *plan.Plan) {
	r.cache.Set(prefixPlanID+p.ID, p, goCache.DefaultExpiration)
	r.cache.Set(prefixPlanKey+p.Key, p, goCache.DefaultExpiration)
}
