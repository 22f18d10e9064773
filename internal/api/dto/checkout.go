package dto

import (
	"github.com/gamalabdu/purchase-ledger/internal/domain/billing"
	ierr "github.com/gamalabdu/purchase-ledger/internal/errors"
	"github.com/shopspring/decimal"
)

// CreateCheckoutSessionRequest creates a hosted checkout session
type CreateCheckoutSessionRequest struct {
	CustomerID  string            `json:"customer_id" validate:"required"`
	Mode        string            `json:"mode" validate:"required"`
	Amount      decimal.Decimal   `json:"amount" validate:"required"`
	Currency    string            `json:"currency" validate:"required,len=3"`
	ProductName string            `json:"product_name" validate:"required"`
	Description string            `json:"description,omitempty"`
	SuccessURL  string            `json:"success_url,omitempty"`
	CancelURL   string            `json:"cancel_url,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

func (r *CreateCheckoutSessionRequest) Validate() error {
	mode := billing.SessionMode(r.Mode)
	if mode != billing.SessionModePayment && mode != billing.SessionModeSubscription {
		return ierr.NewError("invalid checkout mode").
			WithHintf("Mode must be %s or %s", billing.SessionModePayment, billing.SessionModeSubscription).
			Mark(ierr.ErrValidation)
	}
	if r.Amount.LessThanOrEqual(decimal.Zero) {
		return ierr.NewError("invalid checkout amount").
			WithHint("Amount must be greater than zero").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// AmountMinorUnits converts the decimal amount to the provider's minor units
func (r *CreateCheckoutSessionRequest) AmountMinorUnits() int64 {
	return r.Amount.Mul(decimal.NewFromInt(100)).IntPart()
}

// CheckoutSessionResponse is the created session handle
type CheckoutSessionResponse struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
	ExpiresAt int64  `json:"expires_at,omitempty"`
}
