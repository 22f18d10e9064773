package main

import (
	"context"
	"time"

	"github.com/gamalabdu/purchase-ledger/internal/api"
	v1 "github.com/gamalabdu/purchase-ledger/internal/api/v1"
	"github.com/gamalabdu/purchase-ledger/internal/cache"
	"github.com/gamalabdu/purchase-ledger/internal/config"
	"github.com/gamalabdu/purchase-ledger/internal/domain/billing"
	"github.com/gamalabdu/purchase-ledger/internal/logger"
	"github.com/gamalabdu/purchase-ledger/internal/service"
	"github.com/gamalabdu/purchase-ledger/internal/types"
	"github.com/gamalabdu/purchase-ledger/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/fx"

	stripeint "github.com/gamalabdu/purchase-ledger/internal/integration/stripe"
)

// @title Purchase Ledger API
// @version 1.0
// @description Customer purchase reconciliation service
// @BasePath /v1
// @schemes http https

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	// Load .env if present; real config comes from file/env via viper
	_ = godotenv.Load()

	app := fx.New(
		fx.Provide(
			// Validator
			validator.NewValidator,

			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// Cache
			cache.NewInMemoryCache,

			// Stripe integration
			stripeint.NewClient,
			provideProvider,
			provideDirectory,
			provideCheckout,

			// Services
			provideServiceParams,
			service.NewReconciliationService,
			service.NewCustomerService,
			service.NewCheckoutService,

			// HTTP
			provideHandlers,
			api.NewRouter,
		),
		fx.Invoke(startServer),
	)

	app.Run()
}

func provideProvider(client *stripeint.Client, log *logger.Logger) billing.Provider {
	return stripeint.NewProvider(client, log)
}

func provideDirectory(client *stripeint.Client, log *logger.Logger) billing.CustomerDirectory {
	return stripeint.NewDirectory(client, log)
}

func provideCheckout(client *stripeint.Client, log *logger.Logger) billing.Checkout {
	return stripeint.NewCheckoutService(client, log)
}

func provideServiceParams(
	cfg *config.Configuration,
	log *logger.Logger,
	provider billing.Provider,
	directory billing.CustomerDirectory,
	checkout billing.Checkout,
	c cache.Cache,
) service.ServiceParams {
	return service.ServiceParams{
		Logger:    log,
		Config:    cfg,
		Provider:  provider,
		Directory: directory,
		Checkout:  checkout,
		Cache:     c,
	}
}

func provideHandlers(
	reconciliation service.ReconciliationService,
	customer service.CustomerService,
	checkout service.CheckoutService,
	log *logger.Logger,
) api.Handlers {
	return api.Handlers{
		Purchase: v1.NewPurchaseHandler(reconciliation, log),
		Customer: v1.NewCustomerHandler(customer, log),
		Checkout: v1.NewCheckoutHandler(checkout, log),
		Health:   v1.NewHealthHandler(),
	}
}

func startServer(
	lc fx.Lifecycle,
	r *gin.Engine,
	cfg *config.Configuration,
	log *logger.Logger,
) {
	if cfg.Deployment.Mode != types.ModeLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting API server", "address", cfg.Server.Address)
			go func() {
				if err := r.Run(cfg.Server.Address); err != nil {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down server...")
			return nil
		},
	})
}
