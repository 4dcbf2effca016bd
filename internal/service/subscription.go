package service

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/billforge/billforge/internal/api/dto"
	"github.com/billforge/billforge/internal/domain/card"
	"github.com/billforge/billforge/internal/domain/subscription"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/gateway"
	"github.com/billforge/billforge/internal/types"
)

// SubscriptionService defines the command surface of the subscription
// aggregate: signup, payment application, plan change, card replacement and
// cancellation.
type SubscriptionService interface {
	CreateSubscription(ctx context.Context, req dto.CreateSubscriptionRequest) (*dto.SubscriptionResponse, error)
	GetSubscription(ctx context.Context, id string) (*dto.SubscriptionResponse, error)

	// ChangePlan moves the subscription to the plan with the given key and
	// invalidates all of its coupon redemptions.
	ChangePlan(ctx context.Context, id string, planKey string) (*dto.SubscriptionResponse, error)

	// ReceivePayment credits paid time for the amount, cancels any pending
	// expiration, and sends an invoice notification best-effort.
	ReceivePayment(ctx context.Context, id string, req dto.ReceivePaymentRequest) (*dto.SubscriptionResponse, error)

	// SetCreditCard stores or replaces the card at the gateway and attaches
	// the returned billing key. A working card lifts a pending expiration.
	SetCreditCard(ctx context.Context, id string, c *card.CreditCard) (*dto.SubscriptionResponse, error)

	// CancelSubscription cancels the gateway billing agreement and deletes
	// the record.
	CancelSubscription(ctx context.Context, id string) error
}

type subscriptionService struct {
	ServiceParams
	couponService CouponService
}

// NewSubscriptionService creates a new subscription service
func NewSubscriptionService(params ServiceParams) SubscriptionService {
	return &subscriptionService{
		ServiceParams: params,
		couponService: NewCouponService(params),
	}
}

func (s *subscriptionService) CreateSubscription(ctx context.Context, req dto.CreateSubscriptionRequest) (*dto.SubscriptionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if err := s.OwnerResolver.ResolveOwner(ctx, req.OwnerType, req.OwnerID); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Subscription owner could not be resolved").
			WithReportableDetails(map[string]any{"owner": "unknown owner"}).
			Mark(ierr.ErrValidation)
	}

	pl, err := s.Plans.GetByKey(ctx, req.PlanKey)
	if err != nil {
		return nil, err
	}

	today := types.Today()
	startedOn := today
	sub := &subscription.Subscription{
		ID:        types.GenerateUUIDWithPrefix(types.UUIDPrefixSubscription),
		OwnerID:   req.OwnerID,
		OwnerType: req.OwnerType,
		PlanID:    pl.ID,
		Plan:      pl,
		StartedOn: &startedOn,
		BaseModel: types.GetDefaultBaseModel(ctx),
	}

	if req.WithTrial && !pl.IsFree() && s.Config.Billing.DaysTrial > 0 {
		paidThrough := types.AddDays(today, s.Config.Billing.DaysTrial)
		sub.PaidThrough = &paidThrough
	}

	// Store the card before the first save so a declined card aborts signup.
	if req.CreditCard != nil {
		if err := s.storeCard(ctx, sub, req.CreditCard); err != nil {
			return nil, err
		}
	}

	if err := sub.Validate(today); err != nil {
		return nil, err
	}

	if err := s.SubRepo.Create(ctx, sub); err != nil {
		s.releaseBillingKey(ctx, sub)
		return nil, ierr.WithError(err).
			WithHint("Failed to create subscription").
			Mark(ierr.ErrInternal)
	}

	if req.CouponID != "" {
		if _, err := s.couponService.ApplyCouponToSubscription(ctx, req.CouponID, sub.ID, today); err != nil {
			// Signup promised the discount; roll the record back.
			if delErr := s.SubRepo.Delete(ctx, sub.ID); delErr != nil {
				s.Logger.Errorw("failed to roll back subscription after coupon rejection",
					"subscription_id", sub.ID, "error", delErr)
			}
			s.releaseBillingKey(ctx, sub)
			return nil, err
		}
		if err := s.hydrateSubscription(ctx, sub); err != nil {
			return nil, err
		}
	}

	s.Logger.Infow("subscription created",
		"subscription_id", sub.ID,
		"owner_id", sub.OwnerID,
		"plan_key", pl.Key)

	return dto.NewSubscriptionResponse(sub), nil
}

func (s *subscriptionService) GetSubscription(ctx context.Context, id string) (*dto.SubscriptionResponse, error) {
	sub, err := s.loadSubscription(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewSubscriptionResponse(sub), nil
}

func (s *subscriptionService) ChangePlan(ctx context.Context, id string, planKey string) (*dto.SubscriptionResponse, error) {
	sub, err := s.loadSubscription(ctx, id)
	if err != nil {
		return nil, err
	}

	pl, err := s.Plans.GetByKey(ctx, planKey)
	if err != nil {
		return nil, err
	}

	sub.ChangePlan(pl)
	if err := sub.Validate(types.Today()); err != nil {
		return nil, err
	}

	// Discounts do not survive a plan change.
	if err := s.RedemptionRepo.DeleteBySubscription(ctx, sub.ID); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to clear coupon redemptions").
			Mark(ierr.ErrInternal)
	}

	if err := s.SubRepo.Update(ctx, sub); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to update subscription").
			Mark(ierr.ErrInternal)
	}

	s.Logger.Infow("subscription plan changed",
		"subscription_id", sub.ID,
		"plan_key", pl.Key)

	return dto.NewSubscriptionResponse(sub), nil
}

func (s *subscriptionService) ReceivePayment(ctx context.Context, id string, req dto.ReceivePaymentRequest) (*dto.SubscriptionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	sub, err := s.loadSubscription(ctx, id)
	if err != nil {
		return nil, err
	}

	receivedAt := req.ReceivedAt
	if receivedAt.IsZero() {
		receivedAt = time.Now().UTC()
	}

	basis := s.Config.Billing.ProrationBasis
	if basis == "" {
		basis = types.ProrationBasisPlanRate
	}

	daysCredited, err := sub.ApplyPayment(req.Amount(), receivedAt, basis)
	if err != nil {
		return nil, err
	}

	if err := s.SubRepo.Update(ctx, sub); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to record payment").
			Mark(ierr.ErrInternal)
	}

	s.Logger.Infow("payment received",
		"subscription_id", sub.ID,
		"amount", req.Amount().String(),
		"days_credited", daysCredited,
		"paid_through", sub.PaidThrough)

	// Notification is best-effort; a lost invoice never unwinds a payment.
	if err := s.Notifier.SendInvoice(ctx, sub); err != nil {
		s.Logger.Errorw("failed to send invoice notification",
			"subscription_id", sub.ID, "error", err)
	}

	return dto.NewSubscriptionResponse(sub), nil
}

func (s *subscriptionService) SetCreditCard(ctx context.Context, id string, c *card.CreditCard) (*dto.SubscriptionResponse, error) {
	sub, err := s.loadSubscription(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.storeCard(ctx, sub, c); err != nil {
		return nil, err
	}

	// The gateway holds the new agreement; losing the local commit would leave
	// the two permanently inconsistent, so retry before surfacing the error.
	commit := func() error {
		return s.SubRepo.Update(ctx, sub)
	}
	if err := backoff.Retry(commit, backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3)); err != nil {
		s.Logger.Errorw("gateway accepted card but local commit failed; reconciliation required",
			"subscription_id", sub.ID,
			"billing_key", sub.BillingKey,
			"error", err)
		return nil, ierr.WithError(err).
			WithHint("Card was stored but the subscription could not be saved").
			Mark(ierr.ErrInternal)
	}

	return dto.NewSubscriptionResponse(sub), nil
}

// storeCard runs the gateway store/update exchange and applies its outcome to
// the aggregate: billing key attached and any pending expiration lifted on
// success, CreditCardStorageError with the gateway's message on decline.
func (s *subscriptionService) storeCard(ctx context.Context, sub *subscription.Subscription, c *card.CreditCard) error {
	if err := c.Validate(); err != nil {
		return err
	}

	var (
		resp *gateway.Response
		err  error
	)
	if sub.HasBillingKey() {
		resp, err = s.Gateway.Update(ctx, *sub.BillingKey, c)
	} else {
		resp, err = s.Gateway.Store(ctx, c)
	}
	if err != nil {
		return ierr.WithError(err).
			WithHint("The payment gateway could not be reached").
			Mark(ierr.ErrGateway)
	}

	if !resp.Success {
		return ierr.NewError("credit card could not be stored").
			WithHintf("The card was declined: %s", resp.Message).
			WithReportableDetails(map[string]any{"credit_card": resp.Message}).
			Mark(ierr.ErrCardStorage)
	}

	// Updates may rotate the billing key; always take the response's value.
	if resp.BillingKey != "" {
		key := resp.BillingKey
		sub.BillingKey = &key
	}

	if c.ID == "" {
		c.ID = types.GenerateUUID()
	}
	c.Mask()
	cardID := c.ID
	sub.CreditCardID = &cardID

	// A working card means expiration is no longer imminent.
	sub.ExpireOn = nil

	return nil
}

// releaseBillingKey undoes the gateway side of a signup whose local commit
// failed, so no billing agreement outlives the subscription it was opened
// for. A failed cancel leaves the key in the log for manual reconciliation.
func (s *subscriptionService) releaseBillingKey(ctx context.Context, sub *subscription.Subscription) {
	if !sub.HasBillingKey() {
		return
	}
	if _, err := s.Gateway.Cancel(ctx, *sub.BillingKey); err != nil {
		s.Logger.Errorw("signup aborted but the billing agreement could not be canceled; reconciliation required",
			"subscription_id", sub.ID,
			"billing_key", sub.BillingKey,
			"error", err)
	}
}

func (s *subscriptionService) CancelSubscription(ctx context.Context, id string) error {
	sub, err := s.loadSubscription(ctx, id)
	if err != nil {
		return err
	}

	if sub.HasBillingKey() {
		if _, err := s.Gateway.Cancel(ctx, *sub.BillingKey); err != nil {
			return ierr.WithError(err).
				WithHint("Failed to cancel the billing agreement").
				Mark(ierr.ErrGateway)
		}
	}

	if err := s.RedemptionRepo.DeleteBySubscription(ctx, sub.ID); err != nil {
		return err
	}
	if err := s.SubRepo.Delete(ctx, sub.ID); err != nil {
		return err
	}

	s.Logger.Infow("subscription canceled", "subscription_id", sub.ID)
	return nil
}
