package service

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/billforge/billforge/internal/api/dto"
	"github.com/billforge/billforge/internal/domain/coupon"
	"github.com/billforge/billforge/internal/domain/subscription"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/testutil"
	"github.com/billforge/billforge/internal/types"
)

type LifecycleServiceSuite struct {
	testutil.BaseServiceTestSuite
	service LifecycleService

	freePlanID  string
	basicPlanID string
}

func TestLifecycleService(t *testing.T) {
	suite.Run(t, new(LifecycleServiceSuite))
}

func (s *LifecycleServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	params := s.newParams()
	s.service = NewLifecycleService(params)

	planService := NewPlanService(params)
	for _, req := range []dto.CreatePlanRequest{
		{Key: "free", Name: "Free", RateCents: 0, FeatureSetID: "fs_free"},
		{Key: "basic", Name: "Basic", RateCents: 1295, FeatureSetID: "fs_basic"},
	} {
		resp, err := planService.CreatePlan(s.GetContext(), req)
		s.Require().NoError(err)
		switch req.Key {
		case "free":
			s.freePlanID = resp.Plan.ID
		case "basic":
			s.basicPlanID = resp.Plan.ID
		}
	}
}

func (s *LifecycleServiceSuite) newParams() ServiceParams {
	stores := s.GetStores()
	return NewServiceParams(
		s.GetLogger(), s.GetConfig(),
		stores.PlanRepo, stores.CouponRepo, stores.RedemptionRepo, stores.SubRepo,
		s.GetGateway(), s.GetNotifier(), s.GetOwnerResolver(),
	)
}

// overdueSub seeds a paid subscription whose paid-through date lies the given
// number of days in the past.
func (s *LifecycleServiceSuite) overdueSub(owner string, daysOverdue int) *subscription.Subscription {
	key := "bk_" + owner
	cardID := "card_" + owner
	paidThrough := types.AddDays(s.GetNow(), -daysOverdue)
	sub := &subscription.Subscription{
		ID:           types.GenerateUUIDWithPrefix(types.UUIDPrefixSubscription),
		OwnerID:      owner,
		OwnerType:    "account",
		PlanID:       s.basicPlanID,
		BillingKey:   &key,
		CreditCardID: &cardID,
		PaidThrough:  &paidThrough,
		BaseModel:    types.GetDefaultBaseModel(s.GetContext()),
	}
	s.Require().NoError(s.GetStores().SubRepo.Create(s.GetContext(), sub))
	return sub
}

func (s *LifecycleServiceSuite) TestExpireAfterGrace() {
	sub := s.overdueSub("owner_grace", 2)

	s.Run("flags the expiration date once", func() {
		s.NoError(s.service.ExpireAfterGrace(s.GetContext(), sub.ID, s.GetNow()))

		stored, err := s.GetStores().SubRepo.Get(s.GetContext(), sub.ID)
		s.NoError(err)
		s.NotNil(stored.ExpireOn)
		// grace counts from today since paid-through is already past
		s.Equal(types.AddDays(s.GetNow(), s.GetConfig().Billing.DaysGrace), *stored.ExpireOn)
	})

	s.Run("repeat calls keep the date but warn again", func() {
		s.NoError(s.service.ExpireAfterGrace(s.GetContext(), sub.ID, types.AddDays(s.GetNow(), 1)))

		stored, err := s.GetStores().SubRepo.Get(s.GetContext(), sub.ID)
		s.NoError(err)
		s.Equal(types.AddDays(s.GetNow(), s.GetConfig().Billing.DaysGrace), *stored.ExpireOn)
		s.Len(s.GetNotifier().GraceWarnings, 2)
	})

	s.Run("a failed warning does not fail the call", func() {
		s.GetNotifier().GraceWarningErr = ierr.NewError("smtp down").Mark(ierr.ErrInternal)
		s.NoError(s.service.ExpireAfterGrace(s.GetContext(), sub.ID, s.GetNow()))
	})
}

func (s *LifecycleServiceSuite) TestExpireSubscription() {
	sub := s.overdueSub("owner_expire", 10)

	c := &coupon.Coupon{
		ID:                 types.GenerateUUIDWithPrefix(types.UUIDPrefixCoupon),
		Description:        "30% off",
		DiscountPercentage: 30,
		BaseModel:          types.GetDefaultBaseModel(s.GetContext()),
	}
	s.Require().NoError(s.GetStores().CouponRepo.Create(s.GetContext(), c))
	s.Require().NoError(s.GetStores().RedemptionRepo.Create(s.GetContext(),
		coupon.NewCouponRedemption(c, sub.ID, s.GetNow())))

	s.NoError(s.service.ExpireSubscription(s.GetContext(), sub.ID, s.GetNow()))

	stored, err := s.GetStores().SubRepo.Get(s.GetContext(), sub.ID)
	s.NoError(err)
	s.Equal(s.freePlanID, stored.PlanID)
	s.Nil(stored.BillingKey)
	s.Nil(stored.CreditCardID)

	s.Equal(1, s.GetGateway().CallCount("cancel"))
	s.Len(s.GetNotifier().ExpirationNotices, 1)

	redemptions, err := s.GetStores().RedemptionRepo.ListBySubscription(s.GetContext(), sub.ID)
	s.NoError(err)
	s.Empty(redemptions)
}

func (s *LifecycleServiceSuite) TestExpireSubscriptionIdempotent() {
	sub := s.overdueSub("owner_idem", 10)

	s.NoError(s.service.ExpireSubscription(s.GetContext(), sub.ID, s.GetNow()))
	s.NoError(s.service.ExpireSubscription(s.GetContext(), sub.ID, s.GetNow()))

	// already on the fallback plan; no second cancel, no second notice
	s.Equal(1, s.GetGateway().CallCount("cancel"))
	s.Len(s.GetNotifier().ExpirationNotices, 1)
}

func (s *LifecycleServiceSuite) TestExpireSubscriptionGatewayFailure() {
	sub := s.overdueSub("owner_gwfail", 10)
	s.GetGateway().CancelErr = ierr.NewError("gateway unreachable").Mark(ierr.ErrGateway)

	err := s.service.ExpireSubscription(s.GetContext(), sub.ID, s.GetNow())
	s.Error(err)
	s.True(ierr.IsGateway(err))

	// local state is untouched so the next pass retries the cancel
	stored, getErr := s.GetStores().SubRepo.Get(s.GetContext(), sub.ID)
	s.NoError(getErr)
	s.Equal(s.basicPlanID, stored.PlanID)
	s.NotNil(stored.BillingKey)
	s.Empty(s.GetNotifier().ExpirationNotices)
}

func (s *LifecycleServiceSuite) TestProcessOverdue() {
	first := s.overdueSub("owner_od1", 2)
	second := s.overdueSub("owner_od2", 5)

	// paid into the future; must not be touched
	current := s.overdueSub("owner_current", -10)

	result, err := s.service.ProcessOverdue(s.GetContext(), s.GetNow())
	s.NoError(err)
	s.Equal(2, result.Processed)
	s.Equal(2, result.Succeeded)
	s.Equal(0, result.Failed)

	for _, id := range []string{first.ID, second.ID} {
		stored, err := s.GetStores().SubRepo.Get(s.GetContext(), id)
		s.NoError(err)
		s.NotNil(stored.ExpireOn)
	}

	untouched, err := s.GetStores().SubRepo.Get(s.GetContext(), current.ID)
	s.NoError(err)
	s.Nil(untouched.ExpireOn)

	// flagged subscriptions drop out of the next overdue pass
	result, err = s.service.ProcessOverdue(s.GetContext(), s.GetNow())
	s.NoError(err)
	s.Equal(0, result.Processed)
}

func (s *LifecycleServiceSuite) TestProcessOverdueIgnoresFreePlans() {
	// Downgrading keeps the old paid-through date, so a free subscription can
	// look overdue on dates alone.
	paidThrough := types.AddDays(s.GetNow(), -10)
	sub := &subscription.Subscription{
		ID:          types.GenerateUUIDWithPrefix(types.UUIDPrefixSubscription),
		OwnerID:     "owner_free",
		OwnerType:   "account",
		PlanID:      s.freePlanID,
		PaidThrough: &paidThrough,
		BaseModel:   types.GetDefaultBaseModel(s.GetContext()),
	}
	s.Require().NoError(s.GetStores().SubRepo.Create(s.GetContext(), sub))

	result, err := s.service.ProcessOverdue(s.GetContext(), s.GetNow())
	s.NoError(err)
	s.Equal(0, result.Processed)
	s.Empty(s.GetNotifier().GraceWarnings)

	loaded, err := s.newParams().loadSubscription(s.GetContext(), sub.ID)
	s.NoError(err)
	s.Nil(loaded.ExpireOn)
	s.Equal(types.SubscriptionStateActive, loaded.State(types.AddDays(s.GetNow(), 4)))
}

func (s *LifecycleServiceSuite) TestExpireDueSubscriptions() {
	due := s.overdueSub("owner_due", 10)
	expireOn := types.AddDays(s.GetNow(), -1)
	due.ExpireOn = &expireOn
	s.Require().NoError(s.GetStores().SubRepo.Update(s.GetContext(), due))

	pending := s.overdueSub("owner_pending", 2)
	futureExpire := types.AddDays(s.GetNow(), 2)
	pending.ExpireOn = &futureExpire
	s.Require().NoError(s.GetStores().SubRepo.Update(s.GetContext(), pending))

	result, err := s.service.ExpireDueSubscriptions(s.GetContext(), s.GetNow())
	s.NoError(err)
	s.Equal(1, result.Processed)
	s.Equal(1, result.Succeeded)

	expired, err := s.GetStores().SubRepo.Get(s.GetContext(), due.ID)
	s.NoError(err)
	s.Equal(s.freePlanID, expired.PlanID)

	waiting, err := s.GetStores().SubRepo.Get(s.GetContext(), pending.ID)
	s.NoError(err)
	s.Equal(s.basicPlanID, waiting.PlanID)

	// a second pass finds nothing left to expire
	result, err = s.service.ExpireDueSubscriptions(s.GetContext(), s.GetNow())
	s.NoError(err)
	s.Equal(0, result.Processed)
}

func (s *LifecycleServiceSuite) TestExpireDueCollectsFailures() {
	s.overdueSub("owner_fail", 10)
	due, err := s.GetStores().SubRepo.GetByOwner(s.GetContext(), "account", "owner_fail")
	s.Require().NoError(err)
	expireOn := types.AddDays(s.GetNow(), -1)
	due.ExpireOn = &expireOn
	s.Require().NoError(s.GetStores().SubRepo.Update(s.GetContext(), due))

	s.GetGateway().CancelErr = ierr.NewError("gateway unreachable").Mark(ierr.ErrGateway)

	result, err := s.service.ExpireDueSubscriptions(s.GetContext(), s.GetNow())
	s.NoError(err)
	s.Equal(1, result.Processed)
	s.Equal(1, result.Failed)
	s.Contains(result.Errors, due.ID)
}
