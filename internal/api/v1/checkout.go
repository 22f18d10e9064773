package v1

import (
	"net/http"

	"github.com/gamalabdu/purchase-ledger/internal/api/dto"
	ierr "github.com/gamalabdu/purchase-ledger/internal/errors"
	"github.com/gamalabdu/purchase-ledger/internal/logger"
	"github.com/gamalabdu/purchase-ledger/internal/service"
	"github.com/gin-gonic/gin"
)

type CheckoutHandler struct {
	service service.CheckoutService
	log     *logger.Logger
}

func NewCheckoutHandler(service service.CheckoutService, log *logger.Logger) *CheckoutHandler {
	return &CheckoutHandler{service: service, log: log}
}

// @Summary Create a checkout session
// @Description Creates a hosted checkout session for a one-time payment or subscription
// @Tags Checkout
// @Accept json
// @Produce json
// @Param session body dto.CreateCheckoutSessionRequest true "Session configuration"
// @Success 201 {object} dto.CheckoutSessionResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 502 {object} ierr.ErrorResponse
// @Router /checkout/sessions [post]
func (h *CheckoutHandler) CreateSession(c *gin.Context) {
	var req dto.CreateCheckoutSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CreateSession(c.Request.Context(), &req)
	if err != nil {
		h.log.Errorw("failed to create checkout session", "customer_id", req.CustomerID, "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}
