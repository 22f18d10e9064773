package billing

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInvoiceRefBareID(t *testing.T) {
	ref := InvoiceID("in_1")
	require.Equal(t, "in_1", ref.ID())
	require.Nil(t, ref.Invoice())
	require.Equal(t, "", ref.SubscriptionID())
}

func TestInvoiceRefExpanded(t *testing.T) {
	ref := ExpandedInvoice(&RawInvoice{ID: "in_1", SubscriptionID: "sub_1"})
	require.Equal(t, "in_1", ref.ID())
	require.NotNil(t, ref.Invoice())
	require.Equal(t, "sub_1", ref.SubscriptionID())
}

func TestInvoiceRefNilSafe(t *testing.T) {
	var ref *InvoiceRef
	require.Equal(t, "", ref.ID())
	require.Nil(t, ref.Invoice())
	require.Equal(t, "", ref.SubscriptionID())

	require.Nil(t, InvoiceID(""))
	require.Nil(t, ExpandedInvoice(nil))
}

func TestPaymentIntentRefNilSafe(t *testing.T) {
	var ref *PaymentIntentRef
	require.Equal(t, "", ref.ID())
	require.Nil(t, ref.PaymentIntent())

	require.Nil(t, PaymentIntentID(""))
	require.Nil(t, ExpandedPaymentIntent(nil))
}

func TestPaymentIntentRefBothShapes(t *testing.T) {
	require.Equal(t, "pi_1", PaymentIntentID("pi_1").ID())
	require.Equal(t, "pi_1", ExpandedPaymentIntent(&RawPaymentIntent{ID: "pi_1"}).ID())
}
