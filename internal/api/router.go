package api

import (
	v1 "github.com/gamalabdu/purchase-ledger/internal/api/v1"
	"github.com/gamalabdu/purchase-ledger/internal/rest/middleware"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type Handlers struct {
	Purchase *v1.PurchaseHandler
	Customer *v1.CustomerHandler
	Checkout *v1.CheckoutHandler
	Health   *v1.HealthHandler
}

func NewRouter(handlers Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware)
	router.Use(middleware.CORSMiddleware)
	router.Use(middleware.ErrorHandler())

	router.GET("/health", handlers.Health.Health)

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// v1 routes
	v1Group := router.Group("/v1")
	registerV1Routes(v1Group, handlers)

	return router
}

func registerV1Routes(router *gin.RouterGroup, handlers Handlers) {
	customers := router.Group("/customers")
	{
		customers.POST("/lookup", handlers.Customer.LookupCustomer)
		customers.GET("/:id/purchases", handlers.Purchase.GetPurchases)
	}

	checkout := router.Group("/checkout")
	{
		checkout.POST("/sessions", handlers.Checkout.CreateSession)
	}
}
