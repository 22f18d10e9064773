package testutil

import (
	"context"
	"sync"

	"github.com/gamalabdu/purchase-ledger/internal/domain/billing"
	ierr "github.com/gamalabdu/purchase-ledger/internal/errors"
)

// InMemoryBillingProvider implements billing.Provider for testing. Records
// are served in insertion order with real cursor pagination so fetcher
// behavior (paging, caps, truncation) is exercised for real.
type InMemoryBillingProvider struct {
	mu sync.Mutex

	charges  []*billing.RawCharge
	invoices []*billing.RawInvoice
	sessions []*billing.RawCheckoutSession
	intents  []*billing.RawPaymentIntent

	// lookupOnly invoices are visible to GetInvoice but never listed,
	// mirroring invoices outside the fetched window
	lookupOnly []*billing.RawInvoice

	// Errors returned by the corresponding list call when set
	ChargesErr  error
	InvoicesErr error
	SessionsErr error
	IntentsErr  error

	// FailGetInvoiceTimes makes the next N GetInvoice calls fail
	FailGetInvoiceTimes int

	// Call counters
	GetInvoiceCalls int
	ListCalls       map[string]int
}

// NewInMemoryBillingProvider creates a new empty provider
func NewInMemoryBillingProvider() *InMemoryBillingProvider {
	return &InMemoryBillingProvider{
		ListCalls: make(map[string]int),
	}
}

func (p *InMemoryBillingProvider) AddCharge(ch *billing.RawCharge) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.charges = append(p.charges, ch)
}

func (p *InMemoryBillingProvider) AddInvoice(inv *billing.RawInvoice) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.invoices = append(p.invoices, inv)
}

// AddLookupOnlyInvoice registers an invoice that GetInvoice can retrieve but
// ListInvoices never returns
func (p *InMemoryBillingProvider) AddLookupOnlyInvoice(inv *billing.RawInvoice) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lookupOnly = append(p.lookupOnly, inv)
}

func (p *InMemoryBillingProvider) AddCheckoutSession(cs *billing.RawCheckoutSession) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sessions = append(p.sessions, cs)
}

func (p *InMemoryBillingProvider) AddPaymentIntent(pi *billing.RawPaymentIntent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.intents = append(p.intents, pi)
}

func (p *InMemoryBillingProvider) ListCharges(_ context.Context, params billing.ListParams) (*billing.ChargePage, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ListCalls["charges"]++
	if p.ChargesErr != nil {
		return nil, p.ChargesErr
	}
	data, hasMore := pageSlice(p.charges, func(c *billing.RawCharge) string { return c.ID }, params)
	return &billing.ChargePage{Data: data, HasMore: hasMore}, nil
}

func (p *InMemoryBillingProvider) ListInvoices(_ context.Context, params billing.ListParams) (*billing.InvoicePage, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ListCalls["invoices"]++
	if p.InvoicesErr != nil {
		return nil, p.InvoicesErr
	}
	data, hasMore := pageSlice(p.invoices, func(inv *billing.RawInvoice) string { return inv.ID }, params)
	return &billing.InvoicePage{Data: data, HasMore: hasMore}, nil
}

func (p *InMemoryBillingProvider) ListCheckoutSessions(_ context.Context, params billing.ListParams) (*billing.CheckoutSessionPage, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ListCalls["checkout_sessions"]++
	if p.SessionsErr != nil {
		return nil, p.SessionsErr
	}
	data, hasMore := pageSlice(p.sessions, func(cs *billing.RawCheckoutSession) string { return cs.ID }, params)
	return &billing.CheckoutSessionPage{Data: data, HasMore: hasMore}, nil
}

func (p *InMemoryBillingProvider) ListPaymentIntents(_ context.Context, params billing.ListParams) (*billing.PaymentIntentPage, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ListCalls["payment_intents"]++
	if p.IntentsErr != nil {
		return nil, p.IntentsErr
	}
	data, hasMore := pageSlice(p.intents, func(pi *billing.RawPaymentIntent) string { return pi.ID }, params)
	return &billing.PaymentIntentPage{Data: data, HasMore: hasMore}, nil
}

func (p *InMemoryBillingProvider) GetInvoice(_ context.Context, invoiceID string) (*billing.RawInvoice, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.GetInvoiceCalls++
	if p.FailGetInvoiceTimes > 0 {
		p.FailGetInvoiceTimes--
		return nil, ierr.NewError("invoice retrieval failed").Mark(ierr.ErrHTTPClient)
	}
	for _, inv := range p.invoices {
		if inv.ID == invoiceID {
			return inv, nil
		}
	}
	for _, inv := range p.lookupOnly {
		if inv.ID == invoiceID {
			return inv, nil
		}
	}
	return nil, ierr.NewError("invoice not found").Mark(ierr.ErrNotFound)
}

// pageSlice serves one page after the cursor, reporting whether records remain
func pageSlice[T any](items []*T, id func(*T) string, params billing.ListParams) ([]*T, bool) {
	start := 0
	if params.StartingAfter != "" {
		for i, item := range items {
			if id(item) == params.StartingAfter {
				start = i + 1
				break
			}
		}
	}

	end := len(items)
	if params.Limit > 0 && start+int(params.Limit) < end {
		end = start + int(params.Limit)
	}
	if start >= len(items) {
		return nil, false
	}
	return items[start:end], end < len(items)
}
