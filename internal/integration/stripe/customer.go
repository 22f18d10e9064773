package stripe

import (
	"context"

	"github.com/gamalabdu/purchase-ledger/internal/domain/billing"
	ierr "github.com/gamalabdu/purchase-ledger/internal/errors"
	"github.com/gamalabdu/purchase-ledger/internal/logger"
	"github.com/stripe/stripe-go/v82"
)

// Directory implements billing.CustomerDirectory using Stripe customer search
type Directory struct {
	client *Client
	logger *logger.Logger
}

// NewDirectory creates a new Stripe-backed customer directory
func NewDirectory(client *Client, logger *logger.Logger) *Directory {
	return &Directory{
		client: client,
		logger: logger,
	}
}

// FindByEmail finds a Stripe customer by exact email match. Search results
// lag behind customer creation, so callers retry under the shared policy.
func (d *Directory) FindByEmail(ctx context.Context, email string) (*billing.Customer, error) {
	if err := d.client.throttle(ctx); err != nil {
		return nil, err
	}

	params := &stripe.CustomerSearchParams{}
	params.Query = "email:'" + email + "'"
	params.Limit = stripe.Int64(1)

	iter := d.client.API().V1Customers.Search(ctx, params)
	for customer, err := range iter {
		if err != nil {
			return nil, ierr.WithError(err).
				WithHint("Unable to search customers in Stripe").
				Mark(ierr.ErrHTTPClient)
		}
		return &billing.Customer{
			ID:    customer.ID,
			Email: customer.Email,
			Name:  customer.Name,
		}, nil
	}

	return nil, ierr.NewError("customer not found").
		WithHint("No customer with this email").
		Mark(ierr.ErrNotFound)
}
