package testutil

import (
	"context"
	"time"

	"github.com/gamalabdu/purchase-ledger/internal/cache"
	"github.com/gamalabdu/purchase-ledger/internal/config"
	"github.com/gamalabdu/purchase-ledger/internal/logger"
	"github.com/gamalabdu/purchase-ledger/internal/types"
	"github.com/stretchr/testify/suite"
)

// Stores holds the billing-side fakes used by service tests
type Stores struct {
	BillingProvider   *InMemoryBillingProvider
	CustomerDirectory *InMemoryCustomerDirectory
	Checkout          *InMemoryCheckout
}

// BaseServiceTestSuite provides common setup for service layer tests
type BaseServiceTestSuite struct {
	suite.Suite
	ctx    context.Context
	cfg    *config.Configuration
	logger *logger.Logger
	stores Stores
	cache  cache.Cache
	now    time.Time
}

// SetupSuite is called once before all tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	s.logger = logger.NewNoOpLogger()
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.ctx = context.WithValue(context.Background(), types.CtxRequestID, types.GenerateUUID())
	s.cfg = config.GetDefaultConfig()
	s.stores = Stores{
		BillingProvider:   NewInMemoryBillingProvider(),
		CustomerDirectory: NewInMemoryCustomerDirectory(),
		Checkout:          NewInMemoryCheckout(),
	}
	s.cache = cache.NewInMemoryCache()
	s.now = time.Now().UTC()
}

// GetContext returns the test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.cfg
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetStores returns the billing fakes
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

// GetCache returns the test cache
func (s *BaseServiceTestSuite) GetCache() cache.Cache {
	return s.cache
}

// GetNow returns the suite's reference time
func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now
}
