package v1

import (
	"net/http"

	"github.com/gamalabdu/purchase-ledger/internal/api/dto"
	ierr "github.com/gamalabdu/purchase-ledger/internal/errors"
	"github.com/gamalabdu/purchase-ledger/internal/logger"
	"github.com/gamalabdu/purchase-ledger/internal/service"
	"github.com/gin-gonic/gin"
)

type CustomerHandler struct {
	service service.CustomerService
	log     *logger.Logger
}

func NewCustomerHandler(service service.CustomerService, log *logger.Logger) *CustomerHandler {
	return &CustomerHandler{service: service, log: log}
}

// @Summary Look up a customer by email
// @Description Resolves a billing-provider customer id from an email address
// @Tags Customers
// @Accept json
// @Produce json
// @Param lookup body dto.LookupCustomerRequest true "Lookup request"
// @Success 200 {object} dto.LookupCustomerResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /customers/lookup [post]
func (h *CustomerHandler) LookupCustomer(c *gin.Context) {
	var req dto.LookupCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.LookupByEmail(c.Request.Context(), &req)
	if err != nil {
		h.log.Errorw("failed to look up customer", "email", req.Email, "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
