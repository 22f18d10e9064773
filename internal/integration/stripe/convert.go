package stripe

import (
	"github.com/gamalabdu/purchase-ledger/internal/domain/billing"
	"github.com/stripe/stripe-go/v82"
)

// Conversions from Stripe's wire structs to the raw record model. Nested
// objects arrive id-only unless the list call expanded them, so every access
// is guarded and refs are built through the normalizing constructors.

func convertCharge(ch *stripe.Charge) *billing.RawCharge {
	raw := &billing.RawCharge{
		ID:            ch.ID,
		Amount:        ch.Amount,
		Currency:      string(ch.Currency),
		Created:       ch.Created,
		Status:        string(ch.Status),
		Description:   ch.Description,
		ReceiptURL:    ch.ReceiptURL,
		Paid:          ch.Paid,
		Refunded:      ch.Refunded,
		PaymentMethod: ch.PaymentMethod,
	}
	if ch.PaymentIntent != nil {
		raw.PaymentIntent = billing.PaymentIntentID(ch.PaymentIntent.ID)
	}
	if ch.BillingDetails != nil {
		raw.BillingDetails = &billing.BillingDetails{
			Name:  ch.BillingDetails.Name,
			Email: ch.BillingDetails.Email,
		}
	}
	return raw
}

func convertInvoice(inv *stripe.Invoice) *billing.RawInvoice {
	raw := &billing.RawInvoice{
		ID:       inv.ID,
		Created:  inv.Created,
		Status:   string(inv.Status),
		Total:    inv.Total,
		Currency: string(inv.Currency),
	}
	if inv.Parent != nil && inv.Parent.SubscriptionDetails != nil && inv.Parent.SubscriptionDetails.Subscription != nil {
		raw.SubscriptionID = inv.Parent.SubscriptionDetails.Subscription.ID
	}
	if inv.Payments != nil {
		for _, ip := range inv.Payments.Data {
			if ip.Payment != nil && ip.Payment.PaymentIntent != nil {
				raw.PaymentIntentIDs = append(raw.PaymentIntentIDs, ip.Payment.PaymentIntent.ID)
			}
		}
	}
	return raw
}

func convertCheckoutSession(cs *stripe.CheckoutSession) *billing.RawCheckoutSession {
	raw := &billing.RawCheckoutSession{
		ID:            cs.ID,
		AmountTotal:   cs.AmountTotal,
		Currency:      string(cs.Currency),
		Created:       cs.Created,
		Status:        string(cs.Status),
		PaymentStatus: string(cs.PaymentStatus),
		Mode:          billing.SessionMode(cs.Mode),
	}
	if cs.PaymentIntent != nil {
		raw.PaymentIntent = billing.PaymentIntentID(cs.PaymentIntent.ID)
	}
	if cs.Subscription != nil {
		raw.SubscriptionID = cs.Subscription.ID
	}
	return raw
}

func convertPaymentIntent(pi *stripe.PaymentIntent) *billing.RawPaymentIntent {
	raw := &billing.RawPaymentIntent{
		ID:          pi.ID,
		Amount:      pi.Amount,
		Currency:    string(pi.Currency),
		Created:     pi.Created,
		Status:      string(pi.Status),
		Description: pi.Description,
	}
	if pi.LatestCharge != nil {
		raw.LatestChargeID = pi.LatestCharge.ID
	}
	if pi.PaymentMethod != nil {
		raw.PaymentMethod = pi.PaymentMethod.ID
	}
	return raw
}
