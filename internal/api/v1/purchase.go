package v1

import (
	"net/http"

	"github.com/gamalabdu/purchase-ledger/internal/api/dto"
	ierr "github.com/gamalabdu/purchase-ledger/internal/errors"
	"github.com/gamalabdu/purchase-ledger/internal/logger"
	"github.com/gamalabdu/purchase-ledger/internal/service"
	"github.com/gin-gonic/gin"
)

type PurchaseHandler struct {
	service service.ReconciliationService
	log     *logger.Logger
}

func NewPurchaseHandler(service service.ReconciliationService, log *logger.Logger) *PurchaseHandler {
	return &PurchaseHandler{service: service, log: log}
}

// @Summary Get a customer's reconciled purchase history
// @Description Assembles the deduplicated, classified purchase ledger for a customer
// @Tags Purchases
// @Produce json
// @Param id path string true "Customer ID"
// @Param status query string false "Exact-match status filter"
// @Success 200 {object} dto.PurchaseLedgerResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 502 {object} ierr.ErrorResponse
// @Router /customers/{id}/purchases [get]
func (h *PurchaseHandler) GetPurchases(c *gin.Context) {
	customerID := c.Param("id")
	if customerID == "" {
		c.Error(ierr.NewError("customer id is required").
			WithHint("Customer ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	req := &dto.ReconcilePurchasesRequest{
		CustomerID: customerID,
		Status:     c.Query("status"),
	}

	resp, err := h.service.ReconcilePurchases(c.Request.Context(), req)
	if err != nil {
		h.log.Errorw("failed to reconcile purchases", "customer_id", customerID, "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
