package dto

import (
	"github.com/gamalabdu/purchase-ledger/internal/domain/billing"
	"github.com/gamalabdu/purchase-ledger/internal/domain/purchase"
	ierr "github.com/gamalabdu/purchase-ledger/internal/errors"
	"github.com/shopspring/decimal"
)

// ReconcilePurchasesRequest asks for one customer's reconciled purchase history
type ReconcilePurchasesRequest struct {
	CustomerID string `json:"customer_id" validate:"required"`
	// Status, when set, keeps only purchases whose status matches exactly
	Status string `json:"status,omitempty"`
}

func (r *ReconcilePurchasesRequest) Validate() error {
	if r.CustomerID == "" {
		return ierr.NewError("customer_id is required").
			WithHint("Customer ID is required").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// PurchaseResponse is one classified purchase as returned to the caller
type PurchaseResponse struct {
	ID              string                  `json:"id"`
	Type            purchase.Type           `json:"type"`
	Amount          int64                   `json:"amount"`
	AmountDisplay   decimal.Decimal         `json:"amount_display"`
	Currency        string                  `json:"currency"`
	Date            int64                   `json:"date"`
	Status          string                  `json:"status"`
	Description     string                  `json:"description,omitempty"`
	ReceiptURL      string                  `json:"receipt_url,omitempty"`
	InvoiceID       *string                 `json:"invoice_id,omitempty"`
	PaymentIntentID *string                 `json:"payment_intent_id,omitempty"`
	SubscriptionID  *string                 `json:"subscription_id,omitempty"`
	BillingDetails  *billing.BillingDetails `json:"billing_details,omitempty"`
	PaymentMethod   string                  `json:"payment_method,omitempty"`
	Source          purchase.Source         `json:"source"`
}

// NewPurchaseResponse converts a domain purchase, deriving the display amount
// from minor units.
func NewPurchaseResponse(p *purchase.Purchase) *PurchaseResponse {
	return &PurchaseResponse{
		ID:              p.ID,
		Type:            p.Type,
		Amount:          p.Amount,
		AmountDisplay:   decimal.NewFromInt(p.Amount).Div(decimal.NewFromInt(100)),
		Currency:        p.Currency,
		Date:            p.Date,
		Status:          p.Status,
		Description:     p.Description,
		ReceiptURL:      p.ReceiptURL,
		InvoiceID:       p.InvoiceID,
		PaymentIntentID: p.PaymentIntentID,
		SubscriptionID:  p.SubscriptionID,
		BillingDetails:  p.BillingDetails,
		PaymentMethod:   p.PaymentMethod,
		Source:          p.Source,
	}
}

// PurchaseLedgerResponse is the full reconciled ledger for one customer
type PurchaseLedgerResponse struct {
	Purchases []*PurchaseResponse `json:"purchases"`
	Breakdown purchase.Breakdown  `json:"breakdown"`
	// Truncated is set when a collection fetch hit the safety cap and the
	// ledger may be missing the oldest records
	Truncated bool `json:"truncated"`
}

// NewPurchaseLedgerResponse converts a domain ledger
func NewPurchaseLedgerResponse(l *purchase.Ledger) *PurchaseLedgerResponse {
	resp := &PurchaseLedgerResponse{
		Purchases: make([]*PurchaseResponse, 0, len(l.Purchases)),
		Breakdown: l.Breakdown,
		Truncated: l.Truncated,
	}
	for _, p := range l.Purchases {
		resp.Purchases = append(resp.Purchases, NewPurchaseResponse(p))
	}
	return resp
}
