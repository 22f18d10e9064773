package stripe

import (
	"context"

	"github.com/gamalabdu/purchase-ledger/internal/domain/billing"
	ierr "github.com/gamalabdu/purchase-ledger/internal/errors"
	"github.com/gamalabdu/purchase-ledger/internal/logger"
	"github.com/stripe/stripe-go/v82"
)

// Provider implements billing.Provider on top of the Stripe API. Each list
// call fetches exactly one page; the reconciliation fetcher drives the cursor
// and enforces the collection safety cap.
type Provider struct {
	client *Client
	logger *logger.Logger
}

// NewProvider creates a new Stripe-backed billing provider
func NewProvider(client *Client, logger *logger.Logger) *Provider {
	return &Provider{
		client: client,
		logger: logger,
	}
}

func (p *Provider) ListCharges(ctx context.Context, params billing.ListParams) (*billing.ChargePage, error) {
	if err := p.client.throttle(ctx); err != nil {
		return nil, err
	}

	listParams := &stripe.ChargeListParams{
		Customer: stripe.String(params.CustomerID),
	}
	applyPagination(&listParams.ListParams, params)

	data := make([]*billing.RawCharge, 0, params.Limit)
	for ch, err := range p.client.API().V1Charges.List(ctx, listParams) {
		if err != nil {
			return nil, listError(err, "charges")
		}
		data = append(data, convertCharge(ch))
		if int64(len(data)) >= params.Limit {
			break
		}
	}

	return &billing.ChargePage{
		Data:    data,
		HasMore: hasMore(len(data), params.Limit),
	}, nil
}

func (p *Provider) ListInvoices(ctx context.Context, params billing.ListParams) (*billing.InvoicePage, error) {
	if err := p.client.throttle(ctx); err != nil {
		return nil, err
	}

	listParams := &stripe.InvoiceListParams{
		Customer: stripe.String(params.CustomerID),
	}
	applyPagination(&listParams.ListParams, params)
	listParams.AddExpand("data.payments")

	data := make([]*billing.RawInvoice, 0, params.Limit)
	for inv, err := range p.client.API().V1Invoices.List(ctx, listParams) {
		if err != nil {
			return nil, listError(err, "invoices")
		}
		data = append(data, convertInvoice(inv))
		if int64(len(data)) >= params.Limit {
			break
		}
	}

	return &billing.InvoicePage{
		Data:    data,
		HasMore: hasMore(len(data), params.Limit),
	}, nil
}

func (p *Provider) ListCheckoutSessions(ctx context.Context, params billing.ListParams) (*billing.CheckoutSessionPage, error) {
	if err := p.client.throttle(ctx); err != nil {
		return nil, err
	}

	listParams := &stripe.CheckoutSessionListParams{
		Customer: stripe.String(params.CustomerID),
	}
	applyPagination(&listParams.ListParams, params)

	data := make([]*billing.RawCheckoutSession, 0, params.Limit)
	for cs, err := range p.client.API().V1CheckoutSessions.List(ctx, listParams) {
		if err != nil {
			return nil, listError(err, "checkout sessions")
		}
		data = append(data, convertCheckoutSession(cs))
		if int64(len(data)) >= params.Limit {
			break
		}
	}

	return &billing.CheckoutSessionPage{
		Data:    data,
		HasMore: hasMore(len(data), params.Limit),
	}, nil
}

func (p *Provider) ListPaymentIntents(ctx context.Context, params billing.ListParams) (*billing.PaymentIntentPage, error) {
	if err := p.client.throttle(ctx); err != nil {
		return nil, err
	}

	listParams := &stripe.PaymentIntentListParams{
		Customer: stripe.String(params.CustomerID),
	}
	applyPagination(&listParams.ListParams, params)

	data := make([]*billing.RawPaymentIntent, 0, params.Limit)
	for pi, err := range p.client.API().V1PaymentIntents.List(ctx, listParams) {
		if err != nil {
			return nil, listError(err, "payment intents")
		}
		data = append(data, convertPaymentIntent(pi))
		if int64(len(data)) >= params.Limit {
			break
		}
	}

	return &billing.PaymentIntentPage{
		Data:    data,
		HasMore: hasMore(len(data), params.Limit),
	}, nil
}

func (p *Provider) GetInvoice(ctx context.Context, invoiceID string) (*billing.RawInvoice, error) {
	if err := p.client.throttle(ctx); err != nil {
		return nil, err
	}

	inv, err := p.client.API().V1Invoices.Retrieve(ctx, invoiceID, nil)
	if err != nil {
		p.logger.Warnw("failed to retrieve invoice", "invoice_id", invoiceID, "error", err)
		return nil, ierr.WithError(err).
			WithHint("Unable to retrieve invoice from Stripe").
			WithReportableDetails(map[string]any{
				"invoice_id": invoiceID,
			}).
			Mark(ierr.ErrHTTPClient)
	}

	return convertInvoice(inv), nil
}

func applyPagination(lp *stripe.ListParams, params billing.ListParams) {
	lp.Limit = stripe.Int64(params.Limit)
	if params.StartingAfter != "" {
		lp.StartingAfter = stripe.String(params.StartingAfter)
	}
}

// hasMore mirrors how full pages signal continuation: a page shorter than the
// limit is the last one. A full final page costs one extra empty list call.
func hasMore(count int, limit int64) bool {
	return limit > 0 && int64(count) == limit
}

func listError(err error, resource string) error {
	return ierr.WithError(err).
		WithHintf("Unable to list %s from Stripe", resource).
		Mark(ierr.ErrHTTPClient)
}
