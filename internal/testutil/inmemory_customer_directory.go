package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/gamalabdu/purchase-ledger/internal/domain/billing"
	ierr "github.com/gamalabdu/purchase-ledger/internal/errors"
)

// InMemoryCustomerDirectory implements billing.CustomerDirectory for testing
type InMemoryCustomerDirectory struct {
	mu        sync.Mutex
	customers map[string]*billing.Customer

	// FailTimes makes the next N FindByEmail calls fail with an upstream error
	FailTimes int
	Calls     int
}

func NewInMemoryCustomerDirectory() *InMemoryCustomerDirectory {
	return &InMemoryCustomerDirectory{
		customers: make(map[string]*billing.Customer),
	}
}

func (d *InMemoryCustomerDirectory) AddCustomer(c *billing.Customer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.customers[c.Email] = c
}

func (d *InMemoryCustomerDirectory) FindByEmail(_ context.Context, email string) (*billing.Customer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Calls++
	if d.FailTimes > 0 {
		d.FailTimes--
		return nil, ierr.NewError("customer search failed").Mark(ierr.ErrHTTPClient)
	}
	c, ok := d.customers[email]
	if !ok {
		return nil, ierr.NewError(fmt.Sprintf("no customer with email %s", email)).Mark(ierr.ErrNotFound)
	}
	return c, nil
}

// InMemoryCheckout implements billing.Checkout for testing
type InMemoryCheckout struct {
	mu sync.Mutex

	// LastParams captures the params of the most recent CreateCheckoutSession call
	LastParams *billing.CheckoutParams
	Err        error
	seq        int
}

func NewInMemoryCheckout() *InMemoryCheckout {
	return &InMemoryCheckout{}
}

func (c *InMemoryCheckout) CreateCheckoutSession(_ context.Context, params billing.CheckoutParams) (*billing.CheckoutSessionHandle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return nil, c.Err
	}
	c.seq++
	p := params
	c.LastParams = &p
	id := fmt.Sprintf("cs_test_%d", c.seq)
	return &billing.CheckoutSessionHandle{
		ID:  id,
		URL: "https://checkout.example.com/pay/" + id,
	}, nil
}
