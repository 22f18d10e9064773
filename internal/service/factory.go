package service

import (
	"github.com/gamalabdu/purchase-ledger/internal/cache"
	"github.com/gamalabdu/purchase-ledger/internal/config"
	"github.com/gamalabdu/purchase-ledger/internal/domain/billing"
	"github.com/gamalabdu/purchase-ledger/internal/logger"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration

	Provider  billing.Provider
	Directory billing.CustomerDirectory
	Checkout  billing.Checkout
	Cache     cache.Cache
}
