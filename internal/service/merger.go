package service

import (
	"fmt"
	"sort"

	"github.com/gamalabdu/purchase-ledger/internal/domain/billing"
	"github.com/gamalabdu/purchase-ledger/internal/domain/purchase"
	"github.com/samber/lo"
)

// Merge trust order: charges are authoritative, checkout sessions cover
// payments not yet reflected as a settled charge, payment intents cover
// succeeded intents with no charge at all (async settlement). A secondary or
// tertiary candidate is dropped when its dedup key is already present.

func chargeToPurchase(ch *billing.RawCharge, invoiceRef *billing.InvoiceRef, cls classification) *purchase.Purchase {
	p := &purchase.Purchase{
		ID:             ch.ID,
		Type:           cls.purchaseType,
		Amount:         ch.Amount,
		Currency:       ch.Currency,
		Date:           ch.Created,
		Status:         ch.Status,
		Description:    ch.Description,
		ReceiptURL:     ch.ReceiptURL,
		BillingDetails: ch.BillingDetails,
		PaymentMethod:  ch.PaymentMethod,
		Source:         purchase.SourceCharge,
	}
	if id := invoiceRef.ID(); id != "" {
		p.InvoiceID = lo.ToPtr(id)
	}
	if id := ch.PaymentIntent.ID(); id != "" {
		p.PaymentIntentID = lo.ToPtr(id)
	}
	if cls.subscriptionID != "" {
		p.SubscriptionID = lo.ToPtr(cls.subscriptionID)
	}
	return p
}

// sessionPurchaseID namespaces session-derived ids so they can never collide
// with charge ids in the merged set.
func sessionPurchaseID(sessionID string) string {
	return fmt.Sprintf("session_%s", sessionID)
}

func sessionToPurchase(cs *billing.RawCheckoutSession) *purchase.Purchase {
	p := &purchase.Purchase{
		ID:          sessionPurchaseID(cs.ID),
		Type:        purchase.TypeOneTime,
		Amount:      cs.AmountTotal,
		Currency:    cs.Currency,
		Date:        cs.Created,
		Status:      cs.Status,
		Description: cs.Description,
		Source:      purchase.SourceCheckoutSession,
	}
	// The session's mode field already distinguishes the two checkout kinds;
	// a subscription-mode session without a subscription link stays one-time
	// so every subscription purchase carries its subscription id.
	if cs.Mode == billing.SessionModeSubscription && cs.SubscriptionID != "" {
		p.Type = purchase.TypeSubscription
		p.SubscriptionID = lo.ToPtr(cs.SubscriptionID)
	}
	if id := cs.PaymentIntent.ID(); id != "" {
		p.PaymentIntentID = lo.ToPtr(id)
	}
	return p
}

func intentToPurchase(pi *billing.RawPaymentIntent, invoiceRef *billing.InvoiceRef, cls classification) *purchase.Purchase {
	p := &purchase.Purchase{
		ID:              pi.ID,
		Type:            cls.purchaseType,
		Amount:          pi.Amount,
		Currency:        pi.Currency,
		Date:            pi.Created,
		Status:          pi.Status,
		Description:     pi.Description,
		PaymentIntentID: lo.ToPtr(pi.ID),
		PaymentMethod:   pi.PaymentMethod,
		Source:          purchase.SourcePaymentIntent,
	}
	if id := invoiceRef.ID(); id != "" {
		p.InvoiceID = lo.ToPtr(id)
	}
	if cls.subscriptionID != "" {
		p.SubscriptionID = lo.ToPtr(cls.subscriptionID)
	}
	return p
}

// mergePurchases folds the three streams into one set with at most one entry
// per underlying payment, regardless of how many streams surfaced it.
func mergePurchases(primary, secondary, tertiary []*purchase.Purchase) []*purchase.Purchase {
	merged := make([]*purchase.Purchase, 0, len(primary)+len(secondary)+len(tertiary))
	seen := make(map[string]struct{}, len(primary))

	appendNew := func(candidates []*purchase.Purchase) {
		for _, p := range candidates {
			key := p.DedupKey()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			merged = append(merged, p)
		}
	}

	appendNew(primary)
	appendNew(secondary)
	appendNew(tertiary)
	return merged
}

// buildLedger applies the optional exact-match status filter, sorts by date
// descending with a stable tie-break on source order, and computes the
// breakdown. Inputs are never mutated.
func buildLedger(purchases []*purchase.Purchase, statusFilter string, truncated bool) *purchase.Ledger {
	filtered := purchases
	if statusFilter != "" {
		filtered = lo.Filter(purchases, func(p *purchase.Purchase, _ int) bool {
			return p.Status == statusFilter
		})
	}

	sorted := make([]*purchase.Purchase, len(filtered))
	copy(sorted, filtered)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date > sorted[j].Date
	})

	subscriptions := lo.CountBy(sorted, func(p *purchase.Purchase) bool {
		return p.IsSubscription()
	})

	return &purchase.Ledger{
		Purchases: sorted,
		Breakdown: purchase.Breakdown{
			OneTime:      len(sorted) - subscriptions,
			Subscription: subscriptions,
			Total:        len(sorted),
		},
		Truncated: truncated,
	}
}
