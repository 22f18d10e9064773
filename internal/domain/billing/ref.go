package billing

// Cross-reference fields on provider records arrive either as a bare
// identifier or as an expanded nested object, depending on which expansions
// the caller asked for. The ref types below normalize both shapes behind one
// accessor so call sites never branch on the representation.

// InvoiceRef points at an invoice, expanded or not
type InvoiceRef struct {
	id       string
	expanded *RawInvoice
}

// InvoiceID returns a bare-id reference
func InvoiceID(id string) *InvoiceRef {
	if id == "" {
		return nil
	}
	return &InvoiceRef{id: id}
}

// ExpandedInvoice returns a reference carrying the full record
func ExpandedInvoice(inv *RawInvoice) *InvoiceRef {
	if inv == nil {
		return nil
	}
	return &InvoiceRef{id: inv.ID, expanded: inv}
}

// ID returns the invoice id regardless of representation
func (r *InvoiceRef) ID() string {
	if r == nil {
		return ""
	}
	if r.expanded != nil {
		return r.expanded.ID
	}
	return r.id
}

// Invoice returns the expanded record, or nil for a bare-id reference
func (r *InvoiceRef) Invoice() *RawInvoice {
	if r == nil {
		return nil
	}
	return r.expanded
}

// SubscriptionID returns the subscription the expanded invoice carries.
// A bare-id reference always answers "" since the link isn't known yet.
func (r *InvoiceRef) SubscriptionID() string {
	if r == nil || r.expanded == nil {
		return ""
	}
	return r.expanded.SubscriptionID
}

// PaymentIntentRef points at a payment intent, expanded or not
type PaymentIntentRef struct {
	id       string
	expanded *RawPaymentIntent
}

// PaymentIntentID returns a bare-id reference
func PaymentIntentID(id string) *PaymentIntentRef {
	if id == "" {
		return nil
	}
	return &PaymentIntentRef{id: id}
}

// ExpandedPaymentIntent returns a reference carrying the full record
func ExpandedPaymentIntent(pi *RawPaymentIntent) *PaymentIntentRef {
	if pi == nil {
		return nil
	}
	return &PaymentIntentRef{id: pi.ID, expanded: pi}
}

// ID returns the payment intent id regardless of representation
func (r *PaymentIntentRef) ID() string {
	if r == nil {
		return ""
	}
	if r.expanded != nil {
		return r.expanded.ID
	}
	return r.id
}

// PaymentIntent returns the expanded record, or nil for a bare-id reference
func (r *PaymentIntentRef) PaymentIntent() *RawPaymentIntent {
	if r == nil {
		return nil
	}
	return r.expanded
}
