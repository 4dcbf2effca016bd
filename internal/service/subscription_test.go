package service

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/billforge/billforge/internal/api/dto"
	"github.com/billforge/billforge/internal/domain/card"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/gateway"
	"github.com/billforge/billforge/internal/testutil"
	"github.com/billforge/billforge/internal/types"
)

type SubscriptionServiceSuite struct {
	testutil.BaseServiceTestSuite
	service       SubscriptionService
	couponService CouponService
}

func TestSubscriptionService(t *testing.T) {
	suite.Run(t, new(SubscriptionServiceSuite))
}

func (s *SubscriptionServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	params := s.newParams()
	s.service = NewSubscriptionService(params)
	s.couponService = NewCouponService(params)

	planService := NewPlanService(params)
	for _, req := range []dto.CreatePlanRequest{
		{Key: "free", Name: "Free", RateCents: 0, FeatureSetID: "fs_free"},
		{Key: "basic", Name: "Basic", RateCents: 1295, FeatureSetID: "fs_basic"},
		{Key: "premium", Name: "Premium", RateCents: 2495, FeatureSetID: "fs_premium"},
	} {
		_, err := planService.CreatePlan(s.GetContext(), req)
		s.NoError(err)
	}
}

func (s *SubscriptionServiceSuite) newParams() ServiceParams {
	stores := s.GetStores()
	return NewServiceParams(
		s.GetLogger(), s.GetConfig(),
		stores.PlanRepo, stores.CouponRepo, stores.RedemptionRepo, stores.SubRepo,
		s.GetGateway(), s.GetNotifier(), s.GetOwnerResolver(),
	)
}

func (s *SubscriptionServiceSuite) validCard() *card.CreditCard {
	return &card.CreditCard{
		Number:          "4111111111111111",
		CVV:             "123",
		CardType:        "visa",
		ExpirationMonth: 12,
		ExpirationYear:  2030,
	}
}

func (s *SubscriptionServiceSuite) createPaid() *dto.SubscriptionResponse {
	resp, err := s.service.CreateSubscription(s.GetContext(), dto.CreateSubscriptionRequest{
		OwnerID:    types.GenerateUUID(),
		OwnerType:  "account",
		PlanKey:    "basic",
		CreditCard: s.validCard(),
	})
	s.Require().NoError(err)
	return resp
}

func (s *SubscriptionServiceSuite) TestCreateSubscription() {
	s.Run("free plan needs no card", func() {
		resp, err := s.service.CreateSubscription(s.GetContext(), dto.CreateSubscriptionRequest{
			OwnerID:   "owner_free",
			OwnerType: "account",
			PlanKey:   "free",
		})
		s.NoError(err)
		s.Equal(types.SubscriptionStateActive, resp.State)
		s.Nil(resp.BillingKey)
	})

	s.Run("paid plan without card is rejected", func() {
		_, err := s.service.CreateSubscription(s.GetContext(), dto.CreateSubscriptionRequest{
			OwnerID:   "owner_nocard",
			OwnerType: "account",
			PlanKey:   "basic",
		})
		s.Error(err)
		s.True(ierr.IsValidation(err))
	})

	s.Run("paid plan with card stores it at the gateway", func() {
		resp, err := s.service.CreateSubscription(s.GetContext(), dto.CreateSubscriptionRequest{
			OwnerID:    "owner_card",
			OwnerType:  "account",
			PlanKey:    "basic",
			CreditCard: s.validCard(),
		})
		s.NoError(err)
		s.True(resp.HasBillingKey())
		s.Equal(1, s.GetGateway().CallCount("store"))
	})

	s.Run("unknown plan key", func() {
		_, err := s.service.CreateSubscription(s.GetContext(), dto.CreateSubscriptionRequest{
			OwnerID:    "owner_unknown",
			OwnerType:  "account",
			PlanKey:    "enterprise",
			CreditCard: s.validCard(),
		})
		s.Error(err)
		s.True(ierr.IsNotFound(err))
	})

	s.Run("unknown owner is rejected", func() {
		s.GetOwnerResolver().MarkUnknown("account", "missing_owner")
		_, err := s.service.CreateSubscription(s.GetContext(), dto.CreateSubscriptionRequest{
			OwnerID:    "missing_owner",
			OwnerType:  "account",
			PlanKey:    "basic",
			CreditCard: s.validCard(),
		})
		s.Error(err)
		s.True(ierr.IsValidation(err))
	})
}

func (s *SubscriptionServiceSuite) TestCreateWithTrial() {
	resp, err := s.service.CreateSubscription(s.GetContext(), dto.CreateSubscriptionRequest{
		OwnerID:    "owner_trial",
		OwnerType:  "account",
		PlanKey:    "basic",
		CreditCard: s.validCard(),
		WithTrial:  true,
	})
	s.NoError(err)
	s.NotNil(resp.PaidThrough)
	s.Equal(types.AddDays(types.Today(), s.GetConfig().Billing.DaysTrial), *resp.PaidThrough)
	s.Equal(types.SubscriptionStateActive, resp.State)
}

func (s *SubscriptionServiceSuite) TestCreateWithDeclinedCard() {
	s.GetGateway().StoreResponse = &gateway.Response{Success: false, Message: "card declined"}

	req := dto.CreateSubscriptionRequest{
		OwnerID:    "owner_declined",
		OwnerType:  "account",
		PlanKey:    "basic",
		CreditCard: s.validCard(),
	}
	_, err := s.service.CreateSubscription(s.GetContext(), req)
	s.Error(err)
	s.True(ierr.IsCardStorage(err))

	// a declined card aborts signup entirely
	_, err = s.GetStores().SubRepo.GetByOwner(s.GetContext(), "account", "owner_declined")
	s.Error(err)
}

func (s *SubscriptionServiceSuite) TestCreateWithCoupon() {
	couponResp, err := s.couponService.CreateCoupon(s.GetContext(), dto.CreateCouponRequest{
		Description:        "30% off",
		DiscountPercentage: 30,
	})
	s.NoError(err)

	resp, err := s.service.CreateSubscription(s.GetContext(), dto.CreateSubscriptionRequest{
		OwnerID:    "owner_coupon",
		OwnerType:  "account",
		PlanKey:    "basic",
		CreditCard: s.validCard(),
		CouponID:   couponResp.Coupon.ID,
	})
	s.NoError(err)
	s.Len(resp.Redemptions, 1)
	// 1295 * 0.7 = 906.5 rounds to 907
	s.Equal(types.NewMoney(907), resp.EffectiveRate)
}

func (s *SubscriptionServiceSuite) TestCreateWithRejectedCouponRollsBack() {
	yesterday := types.AddDays(types.Today(), -1)
	couponResp, err := s.couponService.CreateCoupon(s.GetContext(), dto.CreateCouponRequest{
		Description:          "ended",
		DiscountPercentage:   30,
		RedemptionExpiration: &yesterday,
	})
	s.NoError(err)

	_, err = s.service.CreateSubscription(s.GetContext(), dto.CreateSubscriptionRequest{
		OwnerID:    "owner_rollback",
		OwnerType:  "account",
		PlanKey:    "basic",
		CreditCard: s.validCard(),
		CouponID:   couponResp.Coupon.ID,
	})
	s.Error(err)
	s.True(ierr.IsCouponInvalid(err))

	// signup promised the discount; the record must not survive without it
	_, err = s.GetStores().SubRepo.GetByOwner(s.GetContext(), "account", "owner_rollback")
	s.Error(err)

	// nor may the billing agreement opened during the failed signup
	s.Equal(1, s.GetGateway().CallCount("cancel"))
	calls := s.GetGateway().Calls()
	s.Equal("bk_000001", calls[len(calls)-1].BillingKey)
}

func (s *SubscriptionServiceSuite) TestReceivePayment() {
	created := s.createPaid()

	s.Run("a month of rate credits thirty days", func() {
		resp, err := s.service.ReceivePayment(s.GetContext(), created.ID, dto.ReceivePaymentRequest{
			AmountCents: 1295,
			ReceivedAt:  s.GetNow(),
		})
		s.NoError(err)
		s.Equal(types.AddDays(s.GetNow(), 30), *resp.PaidThrough)
		s.Equal(types.SubscriptionStateActive, resp.State)
		s.Len(s.GetNotifier().Invoices, 1)
	})

	s.Run("a second payment extends the same subscription", func() {
		resp, err := s.service.ReceivePayment(s.GetContext(), created.ID, dto.ReceivePaymentRequest{
			AmountCents: 3885,
			ReceivedAt:  s.GetNow(),
		})
		s.NoError(err)
		s.Equal(types.AddDays(s.GetNow(), 120), *resp.PaidThrough)
		s.Len(s.GetNotifier().Invoices, 2)
	})

	s.Run("a lost invoice never unwinds the payment", func() {
		s.GetNotifier().InvoiceErr = ierr.NewError("smtp down").Mark(ierr.ErrInternal)
		resp, err := s.service.ReceivePayment(s.GetContext(), created.ID, dto.ReceivePaymentRequest{
			AmountCents: 1295,
			ReceivedAt:  s.GetNow(),
		})
		s.NoError(err)
		s.Equal(types.AddDays(s.GetNow(), 150), *resp.PaidThrough)
	})

	s.Run("non-positive amounts are rejected", func() {
		_, err := s.service.ReceivePayment(s.GetContext(), created.ID, dto.ReceivePaymentRequest{
			AmountCents: 0,
		})
		s.Error(err)
		s.True(ierr.IsValidation(err))
	})
}

func (s *SubscriptionServiceSuite) TestChangePlanClearsDiscounts() {
	created := s.createPaid()

	couponResp, err := s.couponService.CreateCoupon(s.GetContext(), dto.CreateCouponRequest{
		Description:        "30% off",
		DiscountPercentage: 30,
	})
	s.NoError(err)
	_, err = s.couponService.ApplyCouponToSubscription(s.GetContext(), couponResp.Coupon.ID, created.ID, s.GetNow())
	s.NoError(err)

	resp, err := s.service.ChangePlan(s.GetContext(), created.ID, "premium")
	s.NoError(err)
	s.Equal("premium", resp.Plan.Key)
	s.Empty(resp.Redemptions)
	s.Equal(types.NewMoney(2495), resp.EffectiveRate)

	redemptions, err := s.GetStores().RedemptionRepo.ListBySubscription(s.GetContext(), created.ID)
	s.NoError(err)
	s.Empty(redemptions)
}

func (s *SubscriptionServiceSuite) TestSetCreditCard() {
	created := s.createPaid()

	s.Run("replacing the card goes through the existing agreement", func() {
		resp, err := s.service.SetCreditCard(s.GetContext(), created.ID, s.validCard())
		s.NoError(err)
		s.True(resp.HasBillingKey())
		s.Equal(1, s.GetGateway().CallCount("update"))
	})

	s.Run("a working card lifts a pending expiration", func() {
		sub, err := s.GetStores().SubRepo.Get(s.GetContext(), created.ID)
		s.NoError(err)
		expireOn := types.AddDays(s.GetNow(), 2)
		sub.ExpireOn = &expireOn
		s.NoError(s.GetStores().SubRepo.Update(s.GetContext(), sub))

		resp, err := s.service.SetCreditCard(s.GetContext(), created.ID, s.validCard())
		s.NoError(err)
		s.Nil(resp.ExpireOn)
	})

	s.Run("a declined replacement leaves the subscription untouched", func() {
		s.GetGateway().UpdateResponse = &gateway.Response{Success: false, Message: "do not honor"}
		_, err := s.service.SetCreditCard(s.GetContext(), created.ID, s.validCard())
		s.Error(err)
		s.True(ierr.IsCardStorage(err))
	})

	s.Run("an invalid card never reaches the gateway", func() {
		before := s.GetGateway().CallCount("update")
		_, err := s.service.SetCreditCard(s.GetContext(), created.ID, &card.CreditCard{})
		s.Error(err)
		s.True(ierr.IsValidation(err))
		s.Equal(before, s.GetGateway().CallCount("update"))
	})
}

func (s *SubscriptionServiceSuite) TestCancelSubscription() {
	created := s.createPaid()

	couponResp, err := s.couponService.CreateCoupon(s.GetContext(), dto.CreateCouponRequest{
		Description:        "30% off",
		DiscountPercentage: 30,
	})
	s.NoError(err)
	_, err = s.couponService.ApplyCouponToSubscription(s.GetContext(), couponResp.Coupon.ID, created.ID, s.GetNow())
	s.NoError(err)

	s.NoError(s.service.CancelSubscription(s.GetContext(), created.ID))
	s.Equal(1, s.GetGateway().CallCount("cancel"))

	_, err = s.service.GetSubscription(s.GetContext(), created.ID)
	s.Error(err)
	s.True(ierr.IsNotFound(err))

	redemptions, err := s.GetStores().RedemptionRepo.ListBySubscription(s.GetContext(), created.ID)
	s.NoError(err)
	s.Empty(redemptions)
}
