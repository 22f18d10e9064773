package billing

// Raw records are the provider's view of a customer's payment history. They
// are fetched fresh for every reconciliation, never mutated, and discarded
// once the ledger has been built. The same underlying payment can surface in
// up to four of these record streams at once.

// RawCharge is a realized payment capture
type RawCharge struct {
	ID             string
	Amount         int64 // minor units
	Currency       string
	Created        int64 // epoch seconds
	Status         string
	Description    string
	ReceiptURL     string
	Paid           bool
	Refunded       bool
	Invoice        *InvoiceRef
	PaymentIntent  *PaymentIntentRef
	BillingDetails *BillingDetails
	PaymentMethod  string
}

// RawInvoice is a billing document, optionally linked to a subscription
type RawInvoice struct {
	ID             string
	Created        int64
	Status         string
	Total          int64
	Currency       string
	SubscriptionID string
	// PaymentIntentIDs are the payment intents the provider has attached to
	// this invoice. Used to restore charge->invoice links the charge stream
	// no longer carries itself.
	PaymentIntentIDs []string
}

// SessionMode distinguishes one-time from subscription checkout
type SessionMode string

const (
	SessionModePayment      SessionMode = "payment"
	SessionModeSubscription SessionMode = "subscription"
)

// Checkout session payment status values
const (
	SessionPaymentStatusPaid   = "paid"
	SessionPaymentStatusUnpaid = "unpaid"
)

// RawCheckoutSession is a hosted-payment-page transaction record
type RawCheckoutSession struct {
	ID             string
	AmountTotal    int64
	Currency       string
	Created        int64
	Status         string
	PaymentStatus  string
	Mode           SessionMode
	Description    string
	PaymentIntent  *PaymentIntentRef
	SubscriptionID string
}

// Payment intent status values this package cares about
const (
	IntentStatusSucceeded = "succeeded"
)

// RawPaymentIntent tracks a single payment attempt's lifecycle. A succeeded
// intent may exist before its charge does, e.g. async settlement.
type RawPaymentIntent struct {
	ID             string
	Amount         int64
	Currency       string
	Created        int64
	Status         string
	Description    string
	Invoice        *InvoiceRef
	LatestChargeID string
	PaymentMethod  string
}

// BillingDetails carries the payer identity attached to a charge
type BillingDetails struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// Customer is the provider's customer record, as much of it as lookups need
type Customer struct {
	ID    string
	Email string
	Name  string
}
