package service

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/billforge/billforge/internal/api/dto"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/testutil"
)

type PlanServiceSuite struct {
	testutil.BaseServiceTestSuite
	service PlanService
}

func TestPlanService(t *testing.T) {
	suite.Run(t, new(PlanServiceSuite))
}

func (s *PlanServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewPlanService(s.newParams())
}

func (s *PlanServiceSuite) newParams() ServiceParams {
	stores := s.GetStores()
	return NewServiceParams(
		s.GetLogger(), s.GetConfig(),
		stores.PlanRepo, stores.CouponRepo, stores.RedemptionRepo, stores.SubRepo,
		s.GetGateway(), s.GetNotifier(), s.GetOwnerResolver(),
	)
}

func (s *PlanServiceSuite) TestCreatePlan() {
	s.Run("valid plan", func() {
		resp, err := s.service.CreatePlan(s.GetContext(), dto.CreatePlanRequest{
			Key:          "basic",
			Name:         "Basic",
			RateCents:    1295,
			FeatureSetID: "fs_basic",
		})
		s.NoError(err)
		s.NotNil(resp)
		s.Equal("basic", resp.Plan.Key)
		s.False(resp.Plan.IsFree())
	})

	s.Run("duplicate key is rejected", func() {
		_, err := s.service.CreatePlan(s.GetContext(), dto.CreatePlanRequest{
			Key:          "basic",
			Name:         "Basic Again",
			RateCents:    999,
			FeatureSetID: "fs_basic",
		})
		s.Error(err)
		s.True(ierr.IsAlreadyExists(err))
	})

	s.Run("missing key is rejected", func() {
		_, err := s.service.CreatePlan(s.GetContext(), dto.CreatePlanRequest{
			Name:         "No Key",
			FeatureSetID: "fs_basic",
		})
		s.Error(err)
		s.True(ierr.IsValidation(err))
	})
}

func (s *PlanServiceSuite) TestGetPlanByKey() {
	created, err := s.service.CreatePlan(s.GetContext(), dto.CreatePlanRequest{
		Key:          "premium",
		Name:         "Premium",
		RateCents:    2495,
		FeatureSetID: "fs_premium",
	})
	s.NoError(err)

	resp, err := s.service.GetPlanByKey(s.GetContext(), "premium")
	s.NoError(err)
	s.Equal(created.Plan.ID, resp.Plan.ID)

	_, err = s.service.GetPlanByKey(s.GetContext(), "missing")
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *PlanServiceSuite) TestListPlans() {
	for _, req := range []dto.CreatePlanRequest{
		{Key: "free", Name: "Free", RateCents: 0, FeatureSetID: "fs_free"},
		{Key: "basic", Name: "Basic", RateCents: 1295, FeatureSetID: "fs_basic"},
	} {
		_, err := s.service.CreatePlan(s.GetContext(), req)
		s.NoError(err)
	}

	plans, err := s.service.ListPlans(s.GetContext())
	s.NoError(err)
	s.Len(plans, 2)
}
