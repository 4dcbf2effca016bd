package service

import (
	"context"
	"time"

	"github.com/billforge/billforge/internal/domain/plan"
	"github.com/billforge/billforge/internal/domain/subscription"
	ierr "github.com/billforge/billforge/internal/errors"
)

// LifecycleService drives the grace and expiration transitions, both per
// subscription and as scheduled batch passes over the whole population.
type LifecycleService interface {
	// ExpireAfterGrace flags the hard expiration date after the grace window
	// and sends a grace warning. The date is set once; the warning goes out on
	// every invocation.
	ExpireAfterGrace(ctx context.Context, id string, today time.Time) error

	// ExpireSubscription downgrades the subscription to the expired plan,
	// discards the stored payment method, cancels the gateway agreement and
	// sends an expiration notice.
	ExpireSubscription(ctx context.Context, id string, today time.Time) error

	// ProcessOverdue flags every overdue, not-yet-flagged subscription that
	// still owes something at its current rate.
	ProcessOverdue(ctx context.Context, today time.Time) (*BatchResult, error)

	// ExpireDueSubscriptions expires every subscription whose expire_on has
	// arrived. Safe to re-run: subscriptions already on the expired plan are
	// skipped.
	ExpireDueSubscriptions(ctx context.Context, today time.Time) (*BatchResult, error)
}

// BatchResult reports a scheduler pass. Per-subscription failures never abort
// the batch; they are collected here and retried on the next pass.
type BatchResult struct {
	Processed int
	Succeeded int
	Failed    int
	Errors    map[string]error
}

func newBatchResult() *BatchResult {
	return &BatchResult{Errors: make(map[string]error)}
}

func (r *BatchResult) ok() {
	r.Processed++
	r.Succeeded++
}

func (r *BatchResult) fail(id string, err error) {
	r.Processed++
	r.Failed++
	r.Errors[id] = err
}

type lifecycleService struct {
	ServiceParams
}

// NewLifecycleService creates a new lifecycle service
func NewLifecycleService(params ServiceParams) LifecycleService {
	return &lifecycleService{
		ServiceParams: params,
	}
}

func (s *lifecycleService) ExpireAfterGrace(ctx context.Context, id string, today time.Time) error {
	sub, err := s.loadSubscription(ctx, id)
	if err != nil {
		return err
	}
	return s.expireAfterGrace(ctx, sub, today)
}

func (s *lifecycleService) expireAfterGrace(ctx context.Context, sub *subscription.Subscription, today time.Time) error {
	if sub.FlagExpiration(today, s.Config.Billing.DaysGrace) {
		if err := s.SubRepo.Update(ctx, sub); err != nil {
			return ierr.WithError(err).
				WithHint("Failed to flag subscription for expiration").
				Mark(ierr.ErrInternal)
		}
		s.Logger.Infow("subscription flagged for expiration",
			"subscription_id", sub.ID,
			"expire_on", sub.ExpireOn)
	}

	// The warning repeats on every invocation even when the date was already
	// set; the subscriber keeps hearing about it until they cure the overdue
	// payment.
	if err := s.Notifier.SendGraceWarning(ctx, sub); err != nil {
		s.Logger.Errorw("failed to send grace warning",
			"subscription_id", sub.ID, "error", err)
	}

	return nil
}

func (s *lifecycleService) ExpireSubscription(ctx context.Context, id string, today time.Time) error {
	sub, err := s.loadSubscription(ctx, id)
	if err != nil {
		return err
	}

	fallback, err := s.expiredPlan(ctx)
	if err != nil {
		return err
	}

	if sub.PlanID == fallback.ID {
		// Already expired; nothing to do.
		return nil
	}

	// A failed gateway cancel leaves the subscription due so the next pass
	// retries it; the local downgrade only commits after the agreement is
	// gone.
	if sub.HasBillingKey() {
		if _, err := s.Gateway.Cancel(ctx, *sub.BillingKey); err != nil {
			return ierr.WithError(err).
				WithHint("Failed to cancel the billing agreement").
				Mark(ierr.ErrGateway)
		}
	}

	sub.Expire(fallback)

	if err := s.RedemptionRepo.DeleteBySubscription(ctx, sub.ID); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to clear coupon redemptions").
			Mark(ierr.ErrInternal)
	}
	if err := s.SubRepo.Update(ctx, sub); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to expire subscription").
			Mark(ierr.ErrInternal)
	}

	s.Logger.Infow("subscription expired",
		"subscription_id", sub.ID,
		"fallback_plan", fallback.Key)

	if err := s.Notifier.SendExpirationNotice(ctx, sub); err != nil {
		s.Logger.Errorw("failed to send expiration notice",
			"subscription_id", sub.ID, "error", err)
	}

	return nil
}

func (s *lifecycleService) ProcessOverdue(ctx context.Context, today time.Time) (*BatchResult, error) {
	overdue, err := s.SubRepo.ListOverdue(ctx, today)
	if err != nil {
		return nil, err
	}

	result := newBatchResult()
	for _, candidate := range overdue {
		sub, err := s.loadSubscription(ctx, candidate.ID)
		if err != nil {
			result.fail(candidate.ID, err)
			continue
		}

		// An old paid-through date alone does not make a subscription
		// overdue; one that owes nothing now, say after a downgrade to a
		// free plan, is current regardless of its dates.
		if !sub.IsPaid(today) {
			continue
		}

		if err := s.expireAfterGrace(ctx, sub, today); err != nil {
			s.Logger.Errorw("failed to process overdue subscription",
				"subscription_id", sub.ID, "error", err)
			result.fail(sub.ID, err)
			continue
		}
		result.ok()
	}

	s.Logger.Infow("overdue pass complete",
		"processed", result.Processed,
		"failed", result.Failed)
	return result, nil
}

func (s *lifecycleService) ExpireDueSubscriptions(ctx context.Context, today time.Time) (*BatchResult, error) {
	fallback, err := s.expiredPlan(ctx)
	if err != nil {
		return nil, err
	}

	due, err := s.SubRepo.ListExpireDue(ctx, today, fallback.ID)
	if err != nil {
		return nil, err
	}

	result := newBatchResult()
	for _, sub := range due {
		if err := s.ExpireSubscription(ctx, sub.ID, today); err != nil {
			s.Logger.Errorw("failed to expire subscription",
				"subscription_id", sub.ID, "error", err)
			result.fail(sub.ID, err)
			continue
		}
		result.ok()
	}

	s.Logger.Infow("expiry pass complete",
		"processed", result.Processed,
		"failed", result.Failed)
	return result, nil
}

// expiredPlan resolves the plan expired subscriptions are downgraded to: the
// configured key when set, otherwise the first zero-rate plan.
func (s *lifecycleService) expiredPlan(ctx context.Context) (*plan.Plan, error) {
	if key := s.Config.Billing.ExpiredPlanKey; key != "" {
		return s.Plans.GetByKey(ctx, key)
	}
	return s.Plans.GetFree(ctx)
}
