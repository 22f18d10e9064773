package purchase

import (
	"github.com/gamalabdu/purchase-ledger/internal/domain/billing"
)

// Type labels a purchase as one-time or subscription. Every purchase in a
// ledger carries exactly one type.
type Type string

const (
	TypeOneTime      Type = "one_time"
	TypeSubscription Type = "subscription"
)

// Source records which provider stream produced a purchase. Charges are
// authoritative, checkout sessions and payment intents only fill gaps.
type Source string

const (
	SourceCharge          Source = "charge"
	SourceCheckoutSession Source = "checkout_session"
	SourcePaymentIntent   Source = "payment_intent"
)

// Purchase is the canonical, classified output unit of a reconciliation.
// Constructed once, never mutated.
type Purchase struct {
	ID              string                  `json:"id"`
	Type            Type                    `json:"type"`
	Amount          int64                   `json:"amount"` // minor units
	Currency        string                  `json:"currency"`
	Date            int64                   `json:"date"` // epoch seconds
	Status          string                  `json:"status"`
	Description     string                  `json:"description,omitempty"`
	ReceiptURL      string                  `json:"receipt_url,omitempty"`
	InvoiceID       *string                 `json:"invoice_id,omitempty"`
	PaymentIntentID *string                 `json:"payment_intent_id,omitempty"`
	SubscriptionID  *string                 `json:"subscription_id,omitempty"`
	BillingDetails  *billing.BillingDetails `json:"billing_details,omitempty"`
	PaymentMethod   string                  `json:"payment_method,omitempty"`
	Source          Source                  `json:"source"`
}

// DedupKey identifies the underlying real-world payment. Two records from
// different streams that share a payment intent are the same payment; records
// without one fall back to their own id.
func (p *Purchase) DedupKey() string {
	if p.PaymentIntentID != nil && *p.PaymentIntentID != "" {
		return *p.PaymentIntentID
	}
	return p.ID
}

// IsSubscription reports whether the purchase was classified as recurring
func (p *Purchase) IsSubscription() bool {
	return p.Type == TypeSubscription
}

// Breakdown summarizes a ledger by purchase type
type Breakdown struct {
	OneTime      int `json:"one_time"`
	Subscription int `json:"subscription"`
	Total        int `json:"total"`
}

// Ledger is the final deduplicated, classified, sorted purchase history
type Ledger struct {
	Purchases []*Purchase
	Breakdown Breakdown
	// Truncated is set when any of the underlying collection fetches hit the
	// safety cap, so the ledger may be missing the oldest records.
	Truncated bool
}
