package service

import (
	"context"

	"github.com/gamalabdu/purchase-ledger/internal/api/dto"
	"github.com/gamalabdu/purchase-ledger/internal/domain/billing"
	"github.com/gamalabdu/purchase-ledger/internal/domain/purchase"
	"github.com/gamalabdu/purchase-ledger/internal/types"
	"github.com/sourcegraph/conc/pool"
)

// ReconciliationService assembles a single, deduplicated, classified purchase
// history for a customer from the billing provider's overlapping record
// streams. Reconciliation is a pure function of the customer, the status
// filter, and provider state at call time; nothing is persisted.
type ReconciliationService interface {
	ReconcilePurchases(ctx context.Context, req *dto.ReconcilePurchasesRequest) (*dto.PurchaseLedgerResponse, error)
}

type purchaseReconciliationService struct {
	ServiceParams
}

// NewReconciliationService creates a new ReconciliationService
func NewReconciliationService(params ServiceParams) ReconciliationService {
	return &purchaseReconciliationService{
		ServiceParams: params,
	}
}

func (s *purchaseReconciliationService) ReconcilePurchases(ctx context.Context, req *dto.ReconcilePurchasesRequest) (*dto.PurchaseLedgerResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	runID := types.GenerateUUIDWithPrefix(types.UUID_PREFIX_RECONCILIATION)
	log := s.Logger.With("run_id", runID, "customer_id", req.CustomerID)

	log.Debugw("starting purchase reconciliation", "status_filter", req.Status)

	// The four bulk fetches have no dependency on one another; invoices only
	// need to be fully materialized before classification starts, which the
	// pool join below guarantees. Any bulk fetch failure cancels the others
	// and aborts the reconciliation.
	var (
		charges  *fetchResult[billing.RawCharge]
		invoices *fetchResult[billing.RawInvoice]
		sessions *fetchResult[billing.RawCheckoutSession]
		intents  *fetchResult[billing.RawPaymentIntent]
	)

	p := pool.New().WithContext(ctx).WithCancelOnError().WithFirstError()
	p.Go(func(ctx context.Context) error {
		var err error
		charges, err = s.fetchCharges(ctx, req.CustomerID)
		return err
	})
	p.Go(func(ctx context.Context) error {
		var err error
		invoices, err = s.fetchInvoices(ctx, req.CustomerID)
		return err
	})
	p.Go(func(ctx context.Context) error {
		var err error
		sessions, err = s.fetchCheckoutSessions(ctx, req.CustomerID)
		return err
	})
	p.Go(func(ctx context.Context) error {
		var err error
		intents, err = s.fetchPaymentIntents(ctx, req.CustomerID)
		return err
	})
	if err := p.Wait(); err != nil {
		return nil, err
	}

	truncated := charges.truncated || invoices.truncated || sessions.truncated || intents.truncated
	if truncated {
		log.Warnw("collection fetch hit the safety cap, ledger is truncated",
			"charges", len(charges.records),
			"invoices", len(invoices.records),
			"checkout_sessions", len(sessions.records),
			"payment_intents", len(intents.records))
	}

	linkIndex := buildSubscriptionLinkIndex(invoices.records)
	intentIndex := buildIntentInvoiceIndex(invoices.records)

	chargePurchases := s.classifyCharges(ctx, charges.records, linkIndex, intentIndex)
	sessionPurchases := s.convertSessions(sessions.records)
	intentPurchases := s.classifyIntents(ctx, intents.records, linkIndex, intentIndex)

	merged := mergePurchases(chargePurchases, sessionPurchases, intentPurchases)
	ledger := buildLedger(merged, req.Status, truncated)

	log.Infow("purchase reconciliation complete",
		"total", ledger.Breakdown.Total,
		"one_time", ledger.Breakdown.OneTime,
		"subscription", ledger.Breakdown.Subscription,
		"truncated", ledger.Truncated)

	return dto.NewPurchaseLedgerResponse(ledger), nil
}

func (s *purchaseReconciliationService) classifyCharges(ctx context.Context, charges []*billing.RawCharge, linkIndex subscriptionLinkIndex, intentIndex intentInvoiceIndex) []*purchase.Purchase {
	out := make([]*purchase.Purchase, 0, len(charges))
	for _, ch := range charges {
		ref := resolveInvoiceRef(ch.Invoice, ch.PaymentIntent.ID(), intentIndex)
		cls := s.classifyRecord(ctx, ref, ch.Description, linkIndex)
		out = append(out, chargeToPurchase(ch, ref, cls))
	}
	return out
}

// convertSessions keeps only sessions that represent money actually paid;
// unpaid or expired sessions never belonged in a purchase history.
func (s *purchaseReconciliationService) convertSessions(sessions []*billing.RawCheckoutSession) []*purchase.Purchase {
	out := make([]*purchase.Purchase, 0, len(sessions))
	for _, cs := range sessions {
		if cs.PaymentStatus != billing.SessionPaymentStatusPaid {
			continue
		}
		out = append(out, sessionToPurchase(cs))
	}
	return out
}

// classifyIntents converts succeeded payment intents. Intents that did
// produce a charge are dropped later by the merger via their dedup key; only
// intents no other stream covered survive.
func (s *purchaseReconciliationService) classifyIntents(ctx context.Context, intents []*billing.RawPaymentIntent, linkIndex subscriptionLinkIndex, intentIndex intentInvoiceIndex) []*purchase.Purchase {
	out := make([]*purchase.Purchase, 0, len(intents))
	for _, pi := range intents {
		if pi.Status != billing.IntentStatusSucceeded {
			continue
		}
		ref := resolveInvoiceRef(pi.Invoice, pi.ID, intentIndex)
		cls := s.classifyRecord(ctx, ref, pi.Description, linkIndex)
		out = append(out, intentToPurchase(pi, ref, cls))
	}
	return out
}

// resolveInvoiceRef keeps the record's own invoice reference when it has one,
// otherwise restores the link through the invoices' reported payments. Raw
// records stay untouched.
func resolveInvoiceRef(ref *billing.InvoiceRef, intentID string, intentIndex intentInvoiceIndex) *billing.InvoiceRef {
	if ref.ID() != "" {
		return ref
	}
	if intentID == "" {
		return nil
	}
	if inv, ok := intentIndex[intentID]; ok {
		return billing.ExpandedInvoice(inv)
	}
	return nil
}
