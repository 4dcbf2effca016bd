package service

import (
	"context"

	"github.com/billforge/billforge/internal/config"
	"github.com/billforge/billforge/internal/domain/coupon"
	"github.com/billforge/billforge/internal/domain/plan"
	"github.com/billforge/billforge/internal/domain/subscription"
	"github.com/billforge/billforge/internal/gateway"
	"github.com/billforge/billforge/internal/logger"
	"github.com/billforge/billforge/internal/notifier"
	"github.com/billforge/billforge/internal/registry"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration

	// Repositories
	PlanRepo       plan.Repository
	CouponRepo     coupon.Repository
	RedemptionRepo coupon.RedemptionRepository
	SubRepo        subscription.Repository

	// Cached plan lookups
	Plans *registry.PlanRegistry

	// Capabilities
	Gateway       gateway.Gateway
	Notifier      notifier.Notifier
	OwnerResolver subscription.OwnerResolver
}

// NewServiceParams assembles the dependency bundle shared by all services.
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	planRepo plan.Repository,
	couponRepo coupon.Repository,
	redemptionRepo coupon.RedemptionRepository,
	subRepo subscription.Repository,
	gw gateway.Gateway,
	notifier notifier.Notifier,
	ownerResolver subscription.OwnerResolver,
) ServiceParams {
	return ServiceParams{
		Logger:         logger,
		Config:         config,
		PlanRepo:       planRepo,
		CouponRepo:     couponRepo,
		RedemptionRepo: redemptionRepo,
		SubRepo:        subRepo,
		Plans:          registry.NewPlanRegistry(planRepo),
		Gateway:        gw,
		Notifier:       notifier,
		OwnerResolver:  ownerResolver,
	}
}

// hydrateSubscription attaches the plan and coupon redemptions to a
// subscription loaded from the repository.
func (p ServiceParams) hydrateSubscription(ctx context.Context, sub *subscription.Subscription) error {
	pl, err := p.Plans.Get(ctx, sub.PlanID)
	if err != nil {
		return err
	}
	sub.Plan = pl

	redemptions, err := p.RedemptionRepo.ListBySubscription(ctx, sub.ID)
	if err != nil {
		return err
	}
	sub.Redemptions = redemptions
	return nil
}

// loadSubscription fetches a subscription with its plan and redemptions.
func (p ServiceParams) loadSubscription(ctx context.Context, id string) (*subscription.Subscription, error) {
	sub, err := p.SubRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := p.hydrateSubscription(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}
