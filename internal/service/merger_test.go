package service

import (
	"testing"

	"github.com/gamalabdu/purchase-ledger/internal/domain/billing"
	"github.com/gamalabdu/purchase-ledger/internal/domain/purchase"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func TestMergeTrustOrder(t *testing.T) {
	charge := &purchase.Purchase{
		ID:              "ch_1",
		PaymentIntentID: lo.ToPtr("pi_1"),
		Source:          purchase.SourceCharge,
	}
	session := &purchase.Purchase{
		ID:              "session_cs_1",
		PaymentIntentID: lo.ToPtr("pi_1"),
		Source:          purchase.SourceCheckoutSession,
	}
	intent := &purchase.Purchase{
		ID:              "pi_1",
		PaymentIntentID: lo.ToPtr("pi_1"),
		Source:          purchase.SourcePaymentIntent,
	}

	merged := mergePurchases(
		[]*purchase.Purchase{charge},
		[]*purchase.Purchase{session},
		[]*purchase.Purchase{intent},
	)
	require.Len(t, merged, 1)
	require.Equal(t, purchase.SourceCharge, merged[0].Source)
}

func TestMergeKeepsUnrelatedRecords(t *testing.T) {
	merged := mergePurchases(
		[]*purchase.Purchase{{ID: "ch_1", Source: purchase.SourceCharge}},
		[]*purchase.Purchase{{ID: "session_cs_1", Source: purchase.SourceCheckoutSession}},
		[]*purchase.Purchase{{ID: "pi_9", PaymentIntentID: lo.ToPtr("pi_9"), Source: purchase.SourcePaymentIntent}},
	)
	require.Len(t, merged, 3)

	// dedup keys are unique across the merged set
	keys := lo.Map(merged, func(p *purchase.Purchase, _ int) string { return p.DedupKey() })
	require.Len(t, lo.Uniq(keys), 3)
}

func TestDedupKeyFallsBackToOwnID(t *testing.T) {
	withIntent := &purchase.Purchase{ID: "ch_1", PaymentIntentID: lo.ToPtr("pi_1")}
	withoutIntent := &purchase.Purchase{ID: "ch_2"}

	require.Equal(t, "pi_1", withIntent.DedupKey())
	require.Equal(t, "ch_2", withoutIntent.DedupKey())
}

func TestSessionPurchaseIDNamespaced(t *testing.T) {
	// a session id can never collide with a charge-derived purchase id
	require.Equal(t, "session_cs_1", sessionPurchaseID("cs_1"))
}

func TestSessionWithoutSubscriptionLinkStaysOneTime(t *testing.T) {
	p := sessionToPurchase(&billing.RawCheckoutSession{
		ID:            "cs_1",
		AmountTotal:   999,
		PaymentStatus: billing.SessionPaymentStatusPaid,
		Mode:          billing.SessionModeSubscription,
	})
	require.Equal(t, purchase.TypeOneTime, p.Type)
	require.Nil(t, p.SubscriptionID)
}

func TestBuildLedgerDoesNotMutateInput(t *testing.T) {
	input := []*purchase.Purchase{
		{ID: "p1", Date: 100, Status: "succeeded"},
		{ID: "p2", Date: 300, Status: "succeeded"},
		{ID: "p3", Date: 200, Status: "failed"},
	}

	ledger := buildLedger(input, "", false)
	require.Equal(t, "p2", ledger.Purchases[0].ID)

	// the caller's slice keeps its original order
	require.Equal(t, "p1", input[0].ID)
	require.Equal(t, "p2", input[1].ID)
	require.Equal(t, "p3", input[2].ID)
}

func TestBuildLedgerStableTieBreak(t *testing.T) {
	input := []*purchase.Purchase{
		{ID: "first", Date: 100},
		{ID: "second", Date: 100},
		{ID: "third", Date: 100},
	}

	ledger := buildLedger(input, "", false)
	require.Equal(t, "first", ledger.Purchases[0].ID)
	require.Equal(t, "second", ledger.Purchases[1].ID)
	require.Equal(t, "third", ledger.Purchases[2].ID)
}

func TestBuildLedgerCarriesTruncation(t *testing.T) {
	ledger := buildLedger(nil, "", true)
	require.True(t, ledger.Truncated)
	require.Empty(t, ledger.Purchases)
	require.Equal(t, 0, ledger.Breakdown.Total)
}
