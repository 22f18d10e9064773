package service

import (
	"context"
	"strings"

	"github.com/gamalabdu/purchase-ledger/internal/domain/billing"
	"github.com/gamalabdu/purchase-ledger/internal/domain/purchase"
	"github.com/gamalabdu/purchase-ledger/internal/retry"
)

// subscriptionLinkIndex maps invoice id -> subscription id for every invoice
// in the fetched collection that carries a subscription link. It resolves
// records whose invoice reference is a bare id rather than an expanded object.
type subscriptionLinkIndex map[string]string

func buildSubscriptionLinkIndex(invoices []*billing.RawInvoice) subscriptionLinkIndex {
	idx := make(subscriptionLinkIndex, len(invoices))
	for _, inv := range invoices {
		if inv.SubscriptionID != "" {
			idx[inv.ID] = inv.SubscriptionID
		}
	}
	return idx
}

// intentInvoiceIndex maps payment intent id -> invoice, built from the
// payments each invoice reports. It backfills the invoice link on charges and
// intents whose own stream doesn't carry one.
type intentInvoiceIndex map[string]*billing.RawInvoice

func buildIntentInvoiceIndex(invoices []*billing.RawInvoice) intentInvoiceIndex {
	idx := make(intentInvoiceIndex)
	for _, inv := range invoices {
		for _, piID := range inv.PaymentIntentIDs {
			idx[piID] = inv
		}
	}
	return idx
}

// classification is the classifier's verdict for one record
type classification struct {
	purchaseType   purchase.Type
	subscriptionID string
}

func oneTime() classification {
	return classification{purchaseType: purchase.TypeOneTime}
}

func subscription(id string) classification {
	return classification{purchaseType: purchase.TypeSubscription, subscriptionID: id}
}

// classifyRecord labels one charge-shaped record as one-time or subscription.
// No single field reliably encodes purchase type across every path that can
// produce a charge (direct charge, checkout-derived charge, invoice-driven
// renewal), so three independent signals are checked in priority order:
//
//  1. the record's invoice reference is expanded and carries a subscription
//  2. the invoice id is in the subscription link index
//  3. direct point lookup of the invoice; a failed lookup is recovered
//     locally and the record defaults to one-time
//  4. no invoice at all: one-time
//
// As a final double-check, a record whose description mentions "subscription"
// but still classified one-time re-runs the point lookup, compensating for
// call sites that never expand the invoice reference.
func (s *purchaseReconciliationService) classifyRecord(ctx context.Context, invoiceRef *billing.InvoiceRef, description string, idx subscriptionLinkIndex) classification {
	result := s.classifyByInvoice(ctx, invoiceRef, idx)

	if result.purchaseType == purchase.TypeOneTime &&
		invoiceRef.ID() != "" &&
		strings.Contains(strings.ToLower(description), "subscription") {
		s.Logger.Debugw("description hints at subscription, re-checking invoice",
			"invoice_id", invoiceRef.ID())
		if rechecked := s.classifyByLookup(ctx, invoiceRef.ID()); rechecked.purchaseType == purchase.TypeSubscription {
			return rechecked
		}
	}

	return result
}

func (s *purchaseReconciliationService) classifyByInvoice(ctx context.Context, invoiceRef *billing.InvoiceRef, idx subscriptionLinkIndex) classification {
	invoiceID := invoiceRef.ID()
	if invoiceID == "" {
		return oneTime()
	}

	if subID := invoiceRef.SubscriptionID(); subID != "" {
		return subscription(subID)
	}

	if subID, ok := idx[invoiceID]; ok {
		return subscription(subID)
	}

	return s.classifyByLookup(ctx, invoiceID)
}

// classifyByLookup retrieves a single invoice under the shared bounded-retry
// policy. Lookup failure is recovered locally: the record stays one-time and
// the reconciliation continues.
func (s *purchaseReconciliationService) classifyByLookup(ctx context.Context, invoiceID string) classification {
	inv, err := s.lookupInvoice(ctx, invoiceID)
	if err != nil {
		s.Logger.Warnw("invoice fallback lookup failed, defaulting to one-time",
			"invoice_id", invoiceID,
			"error", err)
		return oneTime()
	}
	if inv.SubscriptionID != "" {
		return subscription(inv.SubscriptionID)
	}
	return oneTime()
}

func (s *purchaseReconciliationService) lookupInvoice(ctx context.Context, invoiceID string) (*billing.RawInvoice, error) {
	var inv *billing.RawInvoice
	policy := s.lookupPolicy()
	err := retry.Do(ctx, policy, func() error {
		var err error
		inv, err = s.Provider.GetInvoice(ctx, invoiceID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *purchaseReconciliationService) lookupPolicy() retry.Policy {
	policy := retry.DefaultPolicy()
	if s.Config.Reconciliation.LookupMaxAttempts > 0 {
		policy.MaxAttempts = s.Config.Reconciliation.LookupMaxAttempts
	}
	return policy
}
