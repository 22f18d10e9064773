package service

import (
	"context"

	"github.com/gamalabdu/purchase-ledger/internal/domain/billing"
	ierr "github.com/gamalabdu/purchase-ledger/internal/errors"
)

// pageFunc fetches one page of records after the given cursor
type pageFunc[T any] func(ctx context.Context, cursor string) ([]*T, bool, error)

// fetchAll drains a paginated collection, using the last record's id as the
// cursor for the next page, until the provider reports no further pages or
// the accumulated-record safety cap is reached. Hitting the cap is a
// recoverable truncation, not a failure: the partial collection is returned
// with truncated set. An empty collection is a valid outcome.
func fetchAll[T any](ctx context.Context, fetch pageFunc[T], id func(*T) string, maxRecords int) ([]*T, bool, error) {
	var records []*T
	cursor := ""

	for {
		if err := ctx.Err(); err != nil {
			return nil, false, ierr.WithError(err).
				WithHint("Fetch canceled before completion").
				Mark(ierr.ErrUpstreamUnavailable)
		}

		page, hasMore, err := fetch(ctx, cursor)
		if err != nil {
			return nil, false, err
		}

		records = append(records, page...)
		if len(records) >= maxRecords {
			return records[:maxRecords], true, nil
		}
		if !hasMore || len(page) == 0 {
			return records, false, nil
		}
		cursor = id(page[len(page)-1])
	}
}

// fetchResult carries one bulk fetch's outcome across the concurrent stage
type fetchResult[T any] struct {
	records   []*T
	truncated bool
}

func (s *purchaseReconciliationService) fetchCharges(ctx context.Context, customerID string) (*fetchResult[billing.RawCharge], error) {
	records, truncated, err := fetchAll(ctx,
		func(ctx context.Context, cursor string) ([]*billing.RawCharge, bool, error) {
			page, err := s.Provider.ListCharges(ctx, s.listParams(customerID, cursor))
			if err != nil {
				return nil, false, err
			}
			return page.Data, page.HasMore, nil
		},
		func(c *billing.RawCharge) string { return c.ID },
		s.maxRecords(),
	)
	if err != nil {
		return nil, s.upstreamError(err, "charges", customerID)
	}
	return &fetchResult[billing.RawCharge]{records: records, truncated: truncated}, nil
}

func (s *purchaseReconciliationService) fetchInvoices(ctx context.Context, customerID string) (*fetchResult[billing.RawInvoice], error) {
	records, truncated, err := fetchAll(ctx,
		func(ctx context.Context, cursor string) ([]*billing.RawInvoice, bool, error) {
			page, err := s.Provider.ListInvoices(ctx, s.listParams(customerID, cursor))
			if err != nil {
				return nil, false, err
			}
			return page.Data, page.HasMore, nil
		},
		func(inv *billing.RawInvoice) string { return inv.ID },
		s.maxRecords(),
	)
	if err != nil {
		return nil, s.upstreamError(err, "invoices", customerID)
	}
	return &fetchResult[billing.RawInvoice]{records: records, truncated: truncated}, nil
}

func (s *purchaseReconciliationService) fetchCheckoutSessions(ctx context.Context, customerID string) (*fetchResult[billing.RawCheckoutSession], error) {
	records, truncated, err := fetchAll(ctx,
		func(ctx context.Context, cursor string) ([]*billing.RawCheckoutSession, bool, error) {
			page, err := s.Provider.ListCheckoutSessions(ctx, s.listParams(customerID, cursor))
			if err != nil {
				return nil, false, err
			}
			return page.Data, page.HasMore, nil
		},
		func(cs *billing.RawCheckoutSession) string { return cs.ID },
		s.maxRecords(),
	)
	if err != nil {
		return nil, s.upstreamError(err, "checkout_sessions", customerID)
	}
	return &fetchResult[billing.RawCheckoutSession]{records: records, truncated: truncated}, nil
}

func (s *purchaseReconciliationService) fetchPaymentIntents(ctx context.Context, customerID string) (*fetchResult[billing.RawPaymentIntent], error) {
	records, truncated, err := fetchAll(ctx,
		func(ctx context.Context, cursor string) ([]*billing.RawPaymentIntent, bool, error) {
			page, err := s.Provider.ListPaymentIntents(ctx, s.listParams(customerID, cursor))
			if err != nil {
				return nil, false, err
			}
			return page.Data, page.HasMore, nil
		},
		func(pi *billing.RawPaymentIntent) string { return pi.ID },
		s.maxRecords(),
	)
	if err != nil {
		return nil, s.upstreamError(err, "payment_intents", customerID)
	}
	return &fetchResult[billing.RawPaymentIntent]{records: records, truncated: truncated}, nil
}

func (s *purchaseReconciliationService) listParams(customerID, cursor string) billing.ListParams {
	limit := s.Config.Reconciliation.PageLimit
	if limit <= 0 {
		limit = 100
	}
	return billing.ListParams{
		CustomerID:    customerID,
		StartingAfter: cursor,
		Limit:         limit,
	}
}

func (s *purchaseReconciliationService) maxRecords() int {
	if s.Config.Reconciliation.MaxRecords > 0 {
		return s.Config.Reconciliation.MaxRecords
	}
	return 1000
}

// upstreamError marks a failed bulk fetch as retryable. A failed bulk fetch
// always aborts the reconciliation; there is no partial ledger.
func (s *purchaseReconciliationService) upstreamError(err error, resource, customerID string) error {
	if ierr.IsUpstreamUnavailable(err) {
		return err
	}
	s.Logger.Errorw("bulk fetch failed",
		"resource", resource,
		"customer_id", customerID,
		"error", err)
	return ierr.WithError(err).
		WithHintf("Failed to list %s from billing provider", resource).
		WithReportableDetails(map[string]any{
			"resource":    resource,
			"customer_id": customerID,
		}).
		Mark(ierr.ErrUpstreamUnavailable)
}
