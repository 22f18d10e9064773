package service

import (
	"fmt"
	"testing"

	"github.com/gamalabdu/purchase-ledger/internal/api/dto"
	"github.com/gamalabdu/purchase-ledger/internal/domain/billing"
	"github.com/gamalabdu/purchase-ledger/internal/domain/purchase"
	ierr "github.com/gamalabdu/purchase-ledger/internal/errors"
	"github.com/gamalabdu/purchase-ledger/internal/testutil"
	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"
)

const testCustomerID = "cus_test_123"

type ReconciliationServiceSuite struct {
	testutil.BaseServiceTestSuite
	service ReconciliationService
}

func TestReconciliationService(t *testing.T) {
	suite.Run(t, new(ReconciliationServiceSuite))
}

func (s *ReconciliationServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.setupService()
}

func (s *ReconciliationServiceSuite) setupService() {
	s.service = NewReconciliationService(ServiceParams{
		Logger:    s.GetLogger(),
		Config:    s.GetConfig(),
		Provider:  s.GetStores().BillingProvider,
		Directory: s.GetStores().CustomerDirectory,
		Checkout:  s.GetStores().Checkout,
		Cache:     s.GetCache(),
	})
}

func (s *ReconciliationServiceSuite) reconcile(status string) (*dto.PurchaseLedgerResponse, error) {
	return s.service.ReconcilePurchases(s.GetContext(), &dto.ReconcilePurchasesRequest{
		CustomerID: testCustomerID,
		Status:     status,
	})
}

func (s *ReconciliationServiceSuite) TestMissingCustomerID() {
	resp, err := s.service.ReconcilePurchases(s.GetContext(), &dto.ReconcilePurchasesRequest{})
	s.Error(err)
	s.True(ierr.IsValidation(err))
	s.Nil(resp)

	// validation fails before any provider traffic
	s.Empty(s.GetStores().BillingProvider.ListCalls)
}

func (s *ReconciliationServiceSuite) TestEmptyHistory() {
	resp, err := s.reconcile("")
	s.NoError(err)
	s.Empty(resp.Purchases)
	s.Equal(0, resp.Breakdown.Total)
	s.False(resp.Truncated)
}

func (s *ReconciliationServiceSuite) TestSubscriptionChargeViaLinkIndex() {
	provider := s.GetStores().BillingProvider
	provider.AddCharge(&billing.RawCharge{
		ID:      "ch_1",
		Amount:  2500,
		Created: 100,
		Status:  "succeeded",
		Invoice: billing.InvoiceID("in_1"),
	})
	provider.AddInvoice(&billing.RawInvoice{
		ID:             "in_1",
		SubscriptionID: "sub_1",
	})

	resp, err := s.reconcile("")
	s.NoError(err)
	s.Len(resp.Purchases, 1)

	p := resp.Purchases[0]
	s.Equal(purchase.TypeSubscription, p.Type)
	s.Equal("sub_1", lo.FromPtr(p.SubscriptionID))
	s.Equal("in_1", lo.FromPtr(p.InvoiceID))
	s.Equal(purchase.Breakdown{OneTime: 0, Subscription: 1, Total: 1}, resp.Breakdown)

	// the fetched invoice resolved the link, no point lookup needed
	s.Equal(0, provider.GetInvoiceCalls)
}

func (s *ReconciliationServiceSuite) TestDirectChargeIsOneTime() {
	s.GetStores().BillingProvider.AddCharge(&billing.RawCharge{
		ID:      "ch_1",
		Amount:  999,
		Created: 100,
		Status:  "succeeded",
	})

	resp, err := s.reconcile("")
	s.NoError(err)
	s.Len(resp.Purchases, 1)

	p := resp.Purchases[0]
	s.Equal(purchase.TypeOneTime, p.Type)
	s.Nil(p.SubscriptionID)
	s.Nil(p.InvoiceID)
	s.Equal(purchase.SourceCharge, p.Source)
	s.Equal(purchase.Breakdown{OneTime: 1, Subscription: 0, Total: 1}, resp.Breakdown)
}

func (s *ReconciliationServiceSuite) TestChargeWinsOverCheckoutSession() {
	provider := s.GetStores().BillingProvider
	provider.AddCharge(&billing.RawCharge{
		ID:            "ch_1",
		Amount:        4200,
		Created:       100,
		Status:        "succeeded",
		PaymentIntent: billing.PaymentIntentID("pi_1"),
	})
	provider.AddCheckoutSession(&billing.RawCheckoutSession{
		ID:            "cs_1",
		AmountTotal:   4200,
		Created:       99,
		Status:        "complete",
		PaymentStatus: billing.SessionPaymentStatusPaid,
		Mode:          billing.SessionModePayment,
		PaymentIntent: billing.PaymentIntentID("pi_1"),
	})

	resp, err := s.reconcile("")
	s.NoError(err)
	s.Len(resp.Purchases, 1)
	s.Equal("ch_1", resp.Purchases[0].ID)
	s.Equal(purchase.SourceCharge, resp.Purchases[0].Source)
}

func (s *ReconciliationServiceSuite) TestChargeWinsOverPaymentIntent() {
	provider := s.GetStores().BillingProvider
	provider.AddCharge(&billing.RawCharge{
		ID:            "ch_1",
		Amount:        4200,
		Created:       100,
		Status:        "succeeded",
		PaymentIntent: billing.PaymentIntentID("pi_1"),
	})
	provider.AddPaymentIntent(&billing.RawPaymentIntent{
		ID:      "pi_1",
		Amount:  4200,
		Created: 100,
		Status:  billing.IntentStatusSucceeded,
	})

	resp, err := s.reconcile("")
	s.NoError(err)
	s.Len(resp.Purchases, 1)
	s.Equal(purchase.SourceCharge, resp.Purchases[0].Source)
}

func (s *ReconciliationServiceSuite) TestOrphanPaymentIntentSurvives() {
	s.GetStores().BillingProvider.AddPaymentIntent(&billing.RawPaymentIntent{
		ID:      "pi_1",
		Amount:  1500,
		Created: 100,
		Status:  billing.IntentStatusSucceeded,
	})

	resp, err := s.reconcile("")
	s.NoError(err)
	s.Len(resp.Purchases, 1)

	p := resp.Purchases[0]
	s.Equal("pi_1", p.ID)
	s.Equal(purchase.SourcePaymentIntent, p.Source)
	s.Equal(purchase.TypeOneTime, p.Type)
	s.Equal("pi_1", lo.FromPtr(p.PaymentIntentID))
}

func (s *ReconciliationServiceSuite) TestNonSucceededIntentExcluded() {
	s.GetStores().BillingProvider.AddPaymentIntent(&billing.RawPaymentIntent{
		ID:      "pi_1",
		Amount:  1500,
		Created: 100,
		Status:  "requires_payment_method",
	})

	resp, err := s.reconcile("")
	s.NoError(err)
	s.Empty(resp.Purchases)
}

func (s *ReconciliationServiceSuite) TestUnpaidSessionExcluded() {
	s.GetStores().BillingProvider.AddCheckoutSession(&billing.RawCheckoutSession{
		ID:            "cs_1",
		AmountTotal:   4200,
		Created:       100,
		Status:        "open",
		PaymentStatus: billing.SessionPaymentStatusUnpaid,
		Mode:          billing.SessionModePayment,
	})

	resp, err := s.reconcile("")
	s.NoError(err)
	s.Empty(resp.Purchases)
}

func (s *ReconciliationServiceSuite) TestSubscriptionCheckoutSession() {
	s.GetStores().BillingProvider.AddCheckoutSession(&billing.RawCheckoutSession{
		ID:             "cs_1",
		AmountTotal:    999,
		Created:        100,
		Status:         "complete",
		PaymentStatus:  billing.SessionPaymentStatusPaid,
		Mode:           billing.SessionModeSubscription,
		SubscriptionID: "sub_9",
	})

	resp, err := s.reconcile("")
	s.NoError(err)
	s.Len(resp.Purchases, 1)

	p := resp.Purchases[0]
	s.Equal("session_cs_1", p.ID)
	s.Equal(purchase.TypeSubscription, p.Type)
	s.Equal("sub_9", lo.FromPtr(p.SubscriptionID))
	s.Equal(purchase.SourceCheckoutSession, p.Source)
}

func (s *ReconciliationServiceSuite) TestChargeInvoiceLinkRestoredThroughIntent() {
	// The charge carries no invoice reference of its own; the link comes back
	// through the invoice's reported payment intents.
	provider := s.GetStores().BillingProvider
	provider.AddCharge(&billing.RawCharge{
		ID:            "ch_1",
		Amount:        2500,
		Created:       100,
		Status:        "succeeded",
		PaymentIntent: billing.PaymentIntentID("pi_7"),
	})
	provider.AddInvoice(&billing.RawInvoice{
		ID:               "in_7",
		SubscriptionID:   "sub_7",
		PaymentIntentIDs: []string{"pi_7"},
	})

	resp, err := s.reconcile("")
	s.NoError(err)
	s.Len(resp.Purchases, 1)

	p := resp.Purchases[0]
	s.Equal(purchase.TypeSubscription, p.Type)
	s.Equal("sub_7", lo.FromPtr(p.SubscriptionID))
	s.Equal("in_7", lo.FromPtr(p.InvoiceID))
}

func (s *ReconciliationServiceSuite) TestFallbackLookupResolvesSubscription() {
	// The invoice is outside the listed window, only the point lookup sees it.
	provider := s.GetStores().BillingProvider
	provider.AddCharge(&billing.RawCharge{
		ID:      "ch_1",
		Amount:  2500,
		Created: 100,
		Status:  "succeeded",
		Invoice: billing.InvoiceID("in_old"),
	})
	provider.AddLookupOnlyInvoice(&billing.RawInvoice{
		ID:             "in_old",
		SubscriptionID: "sub_old",
	})

	resp, err := s.reconcile("")
	s.NoError(err)
	s.Len(resp.Purchases, 1)
	s.Equal(purchase.TypeSubscription, resp.Purchases[0].Type)
	s.Equal("sub_old", lo.FromPtr(resp.Purchases[0].SubscriptionID))
	s.Equal(1, provider.GetInvoiceCalls)
}

func (s *ReconciliationServiceSuite) TestFallbackLookupFailureDefaultsOneTime() {
	s.GetConfig().Reconciliation.LookupMaxAttempts = 1

	provider := s.GetStores().BillingProvider
	provider.AddCharge(&billing.RawCharge{
		ID:      "ch_1",
		Amount:  2500,
		Created: 100,
		Status:  "succeeded",
		Invoice: billing.InvoiceID("in_gone"),
	})
	provider.FailGetInvoiceTimes = 10

	resp, err := s.reconcile("")
	s.NoError(err)
	s.Len(resp.Purchases, 1)
	s.Equal(purchase.TypeOneTime, resp.Purchases[0].Type)
	s.Nil(resp.Purchases[0].SubscriptionID)
}

func (s *ReconciliationServiceSuite) TestDescriptionHeuristicRecheck() {
	// First lookup fails, the description mentions a subscription, and the
	// re-check lookup succeeds.
	s.GetConfig().Reconciliation.LookupMaxAttempts = 1

	provider := s.GetStores().BillingProvider
	provider.AddCharge(&billing.RawCharge{
		ID:          "ch_1",
		Amount:      2500,
		Created:     100,
		Status:      "succeeded",
		Description: "Premium Subscription renewal",
		Invoice:     billing.InvoiceID("in_flaky"),
	})
	provider.AddLookupOnlyInvoice(&billing.RawInvoice{
		ID:             "in_flaky",
		SubscriptionID: "sub_flaky",
	})
	provider.FailGetInvoiceTimes = 1

	resp, err := s.reconcile("")
	s.NoError(err)
	s.Len(resp.Purchases, 1)
	s.Equal(purchase.TypeSubscription, resp.Purchases[0].Type)
	s.Equal("sub_flaky", lo.FromPtr(resp.Purchases[0].SubscriptionID))
	s.Equal(2, provider.GetInvoiceCalls)
}

func (s *ReconciliationServiceSuite) TestBulkFetchFailureAbortsReconciliation() {
	provider := s.GetStores().BillingProvider
	provider.AddInvoice(&billing.RawInvoice{ID: "in_1"})
	provider.ChargesErr = ierr.NewError("provider unavailable").Mark(ierr.ErrHTTPClient)

	resp, err := s.reconcile("")
	s.Error(err)
	s.True(ierr.IsUpstreamUnavailable(err))
	s.Nil(resp)
}

func (s *ReconciliationServiceSuite) TestTruncatedCollection() {
	s.GetConfig().Reconciliation.PageLimit = 4
	s.GetConfig().Reconciliation.MaxRecords = 10

	provider := s.GetStores().BillingProvider
	for i := 0; i < 15; i++ {
		provider.AddCharge(&billing.RawCharge{
			ID:      chargeID(i),
			Amount:  100,
			Created: int64(1000 + i),
			Status:  "succeeded",
		})
	}

	resp, err := s.reconcile("")
	s.NoError(err)
	s.True(resp.Truncated)
	s.Len(resp.Purchases, 10)
	s.Equal(10, resp.Breakdown.Total)
}

func (s *ReconciliationServiceSuite) TestStatusFilter() {
	provider := s.GetStores().BillingProvider
	provider.AddCharge(&billing.RawCharge{ID: "ch_1", Created: 100, Status: "succeeded"})
	provider.AddCharge(&billing.RawCharge{ID: "ch_2", Created: 200, Status: "failed"})
	provider.AddCharge(&billing.RawCharge{ID: "ch_3", Created: 300, Status: "succeeded"})

	resp, err := s.reconcile("succeeded")
	s.NoError(err)
	s.Len(resp.Purchases, 2)
	for _, p := range resp.Purchases {
		s.Equal("succeeded", p.Status)
	}
	// breakdown reflects the filtered set
	s.Equal(2, resp.Breakdown.Total)
}

func (s *ReconciliationServiceSuite) TestStatusFilterIsExactMatch() {
	s.GetStores().BillingProvider.AddCharge(&billing.RawCharge{ID: "ch_1", Created: 100, Status: "succeeded"})

	resp, err := s.reconcile("succeed")
	s.NoError(err)
	s.Empty(resp.Purchases)
}

func (s *ReconciliationServiceSuite) TestPurchasesSortedByDateDescending() {
	provider := s.GetStores().BillingProvider
	provider.AddCharge(&billing.RawCharge{ID: "ch_old", Created: 100, Status: "succeeded"})
	provider.AddCharge(&billing.RawCharge{ID: "ch_new", Created: 300, Status: "succeeded"})
	provider.AddCharge(&billing.RawCharge{ID: "ch_mid", Created: 200, Status: "succeeded"})

	resp, err := s.reconcile("")
	s.NoError(err)
	s.Len(resp.Purchases, 3)
	s.Equal("ch_new", resp.Purchases[0].ID)
	s.Equal("ch_mid", resp.Purchases[1].ID)
	s.Equal("ch_old", resp.Purchases[2].ID)
}

func (s *ReconciliationServiceSuite) TestBreakdownConsistency() {
	provider := s.GetStores().BillingProvider
	provider.AddCharge(&billing.RawCharge{ID: "ch_1", Created: 100, Status: "succeeded"})
	provider.AddCharge(&billing.RawCharge{
		ID:      "ch_2",
		Created: 200,
		Status:  "succeeded",
		Invoice: billing.InvoiceID("in_1"),
	})
	provider.AddInvoice(&billing.RawInvoice{ID: "in_1", SubscriptionID: "sub_1"})
	provider.AddPaymentIntent(&billing.RawPaymentIntent{
		ID:      "pi_solo",
		Created: 300,
		Status:  billing.IntentStatusSucceeded,
	})

	resp, err := s.reconcile("")
	s.NoError(err)
	s.Equal(resp.Breakdown.Total, resp.Breakdown.OneTime+resp.Breakdown.Subscription)
	s.Equal(len(resp.Purchases), resp.Breakdown.Total)
	s.Equal(purchase.Breakdown{OneTime: 2, Subscription: 1, Total: 3}, resp.Breakdown)

	// every subscription purchase carries its subscription id, one-time never does
	for _, p := range resp.Purchases {
		if p.Type == purchase.TypeSubscription {
			s.NotNil(p.SubscriptionID)
		} else {
			s.Nil(p.SubscriptionID)
		}
	}
}

func chargeID(i int) string {
	return fmt.Sprintf("ch_%03d", i)
}
