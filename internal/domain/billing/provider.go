package billing

import "context"

// ListParams is one page worth of a customer-scoped list call
type ListParams struct {
	CustomerID    string
	StartingAfter string
	Limit         int64
}

type ChargePage struct {
	Data    []*RawCharge
	HasMore bool
}

type InvoicePage struct {
	Data    []*RawInvoice
	HasMore bool
}

type CheckoutSessionPage struct {
	Data    []*RawCheckoutSession
	HasMore bool
}

type PaymentIntentPage struct {
	Data    []*RawPaymentIntent
	HasMore bool
}

// Provider is the capability surface the reconciliation engine needs from a
// billing provider. Each list call returns a single page; the caller drives
// the cursor. GetInvoice is the point-lookup fallback used during
// classification and may fail without aborting a reconciliation.
type Provider interface {
	ListCharges(ctx context.Context, params ListParams) (*ChargePage, error)
	ListInvoices(ctx context.Context, params ListParams) (*InvoicePage, error)
	ListCheckoutSessions(ctx context.Context, params ListParams) (*CheckoutSessionPage, error)
	ListPaymentIntents(ctx context.Context, params ListParams) (*PaymentIntentPage, error)
	GetInvoice(ctx context.Context, invoiceID string) (*RawInvoice, error)
}

// CustomerDirectory resolves customers outside the reconciliation path
type CustomerDirectory interface {
	FindByEmail(ctx context.Context, email string) (*Customer, error)
}

// CheckoutParams describes a hosted checkout session to create
type CheckoutParams struct {
	CustomerID  string
	Mode        SessionMode
	Amount      int64 // minor units
	Currency    string
	ProductName string
	Description string
	SuccessURL  string
	CancelURL   string
	Metadata    map[string]string
}

// CheckoutSessionHandle is the created session's caller-facing identity
type CheckoutSessionHandle struct {
	ID        string
	URL       string
	ExpiresAt int64
}

// Checkout creates hosted checkout sessions
type Checkout interface {
	CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSessionHandle, error)
}
