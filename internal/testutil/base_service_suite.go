package testutil

import (
	"context"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/billforge/billforge/internal/config"
	"github.com/billforge/billforge/internal/logger"
	"github.com/billforge/billforge/internal/types"
)

// Stores holds all the repository interfaces for testing
type Stores struct {
	PlanRepo       *InMemoryPlanStore
	CouponRepo     *InMemoryCouponStore
	RedemptionRepo *InMemoryRedemptionStore
	SubRepo        *InMemorySubscriptionStore
}

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx           context.Context
	stores        Stores
	gateway       *FakeGateway
	notifier      *FakeNotifier
	ownerResolver *FakeOwnerResolver
	logger        *logger.Logger
	config        *config.Configuration
	now           time.Time
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	s.config = config.GetDefaultConfig()
	s.config.Logging.Level = types.LogLevelInfo

	var err error
	s.logger, err = logger.NewLogger(s.config)
	if err != nil {
		s.T().Fatalf("failed to create logger: %v", err)
	}
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.ctx = SetupContext()
	s.setupStores()
	s.now = types.Today()
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.clearStores()
}

func (s *BaseServiceTestSuite) setupStores() {
	s.stores = Stores{
		PlanRepo:       NewInMemoryPlanStore(),
		CouponRepo:     NewInMemoryCouponStore(),
		RedemptionRepo: NewInMemoryRedemptionStore(),
		SubRepo:        NewInMemorySubscriptionStore(),
	}
	s.gateway = NewFakeGateway()
	s.notifier = NewFakeNotifier()
	s.ownerResolver = NewFakeOwnerResolver()
}

func (s *BaseServiceTestSuite) clearStores() {
	s.stores.PlanRepo.Clear()
	s.stores.CouponRepo.Clear()
	s.stores.RedemptionRepo.Clear()
	s.stores.SubRepo.Clear()
	s.gateway.Reset()
	s.notifier.Reset()
}

func (s *BaseServiceTestSuite) ClearStores() {
	s.clearStores()
}

// GetContext returns the test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetStores returns the test stores
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

// GetGateway returns the fake payment gateway
func (s *BaseServiceTestSuite) GetGateway() *FakeGateway {
	return s.gateway
}

// GetNotifier returns the fake notifier
func (s *BaseServiceTestSuite) GetNotifier() *FakeNotifier {
	return s.notifier
}

// GetOwnerResolver returns the fake owner resolver
func (s *BaseServiceTestSuite) GetOwnerResolver() *FakeOwnerResolver {
	return s.ownerResolver
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetNow returns the current test date, normalized to UTC midnight
func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now
}
