package service

import (
	"context"

	"github.com/gamalabdu/purchase-ledger/internal/api/dto"
	"github.com/gamalabdu/purchase-ledger/internal/domain/billing"
	ierr "github.com/gamalabdu/purchase-ledger/internal/errors"
	"github.com/gamalabdu/purchase-ledger/internal/validator"
)

// CheckoutService creates hosted checkout sessions. Sessions created here
// later surface in reconciliation through the checkout-session stream.
type CheckoutService interface {
	CreateSession(ctx context.Context, req *dto.CreateCheckoutSessionRequest) (*dto.CheckoutSessionResponse, error)
}

type checkoutService struct {
	ServiceParams
}

// NewCheckoutService creates a new CheckoutService
func NewCheckoutService(params ServiceParams) CheckoutService {
	return &checkoutService{
		ServiceParams: params,
	}
}

func (s *checkoutService) CreateSession(ctx context.Context, req *dto.CreateCheckoutSessionRequest) (*dto.CheckoutSessionResponse, error) {
	if err := validator.ValidateRequest(req); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	successURL := req.SuccessURL
	if successURL == "" {
		successURL = s.Config.Stripe.SuccessURL
	}
	cancelURL := req.CancelURL
	if cancelURL == "" {
		cancelURL = s.Config.Stripe.CancelURL
	}

	handle, err := s.Checkout.CreateCheckoutSession(ctx, billing.CheckoutParams{
		CustomerID:  req.CustomerID,
		Mode:        billing.SessionMode(req.Mode),
		Amount:      req.AmountMinorUnits(),
		Currency:    req.Currency,
		ProductName: req.ProductName,
		Description: req.Description,
		SuccessURL:  successURL,
		CancelURL:   cancelURL,
		Metadata:    req.Metadata,
	})
	if err != nil {
		s.Logger.Errorw("failed to create checkout session",
			"customer_id", req.CustomerID,
			"mode", req.Mode,
			"error", err)
		return nil, ierr.WithError(err).
			WithHint("Unable to create checkout session").
			WithReportableDetails(map[string]any{
				"customer_id": req.CustomerID,
				"mode":        req.Mode,
			}).
			Mark(ierr.ErrUpstreamUnavailable)
	}

	s.Logger.Infow("created checkout session",
		"customer_id", req.CustomerID,
		"session_id", handle.ID,
		"mode", req.Mode)

	return &dto.CheckoutSessionResponse{
		SessionID: handle.ID,
		URL:       handle.URL,
		ExpiresAt: handle.ExpiresAt,
	}, nil
}
