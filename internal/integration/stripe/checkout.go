package stripe

import (
	"context"

	"github.com/gamalabdu/purchase-ledger/internal/domain/billing"
	ierr "github.com/gamalabdu/purchase-ledger/internal/errors"
	"github.com/gamalabdu/purchase-ledger/internal/logger"
	"github.com/stripe/stripe-go/v82"
)

// CheckoutService implements billing.Checkout using Stripe checkout sessions
type CheckoutService struct {
	client *Client
	logger *logger.Logger
}

// NewCheckoutService creates a new Stripe checkout service
func NewCheckoutService(client *Client, logger *logger.Logger) *CheckoutService {
	return &CheckoutService{
		client: client,
		logger: logger,
	}
}

// CreateCheckoutSession creates a hosted checkout session for a one-time
// payment or a monthly subscription.
func (s *CheckoutService) CreateCheckoutSession(ctx context.Context, params billing.CheckoutParams) (*billing.CheckoutSessionHandle, error) {
	if err := s.client.throttle(ctx); err != nil {
		return nil, err
	}

	priceData := &stripe.CheckoutSessionCreateLineItemPriceDataParams{
		Currency: stripe.String(params.Currency),
		ProductData: &stripe.CheckoutSessionCreateLineItemPriceDataProductDataParams{
			Name: stripe.String(params.ProductName),
		},
		UnitAmount: stripe.Int64(params.Amount),
	}
	if params.Description != "" {
		priceData.ProductData.Description = stripe.String(params.Description)
	}
	if params.Mode == billing.SessionModeSubscription {
		priceData.Recurring = &stripe.CheckoutSessionCreateLineItemPriceDataRecurringParams{
			Interval: stripe.String("month"),
		}
	}

	createParams := &stripe.CheckoutSessionCreateParams{
		Customer: stripe.String(params.CustomerID),
		Mode:     stripe.String(string(params.Mode)),
		LineItems: []*stripe.CheckoutSessionCreateLineItemParams{
			{
				PriceData: priceData,
				Quantity:  stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(params.SuccessURL),
		CancelURL:  stripe.String(params.CancelURL),
		Metadata:   params.Metadata,
	}

	session, err := s.client.API().V1CheckoutSessions.Create(ctx, createParams)
	if err != nil {
		s.logger.Errorw("failed to create Stripe checkout session",
			"customer_id", params.CustomerID,
			"mode", params.Mode,
			"error", err)
		return nil, ierr.WithError(err).
			WithHint("Unable to create Stripe checkout session").
			WithReportableDetails(map[string]any{
				"customer_id": params.CustomerID,
				"mode":        string(params.Mode),
			}).
			Mark(ierr.ErrHTTPClient)
	}

	s.logger.Infow("created stripe checkout session",
		"session_id", session.ID,
		"customer_id", params.CustomerID,
		"mode", params.Mode)

	return &billing.CheckoutSessionHandle{
		ID:        session.ID,
		URL:       session.URL,
		ExpiresAt: session.ExpiresAt,
	}, nil
}
