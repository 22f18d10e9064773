package stripe

import (
	"context"

	"github.com/gamalabdu/purchase-ledger/internal/config"
	ierr "github.com/gamalabdu/purchase-ledger/internal/errors"
	"github.com/gamalabdu/purchase-ledger/internal/logger"
	"github.com/stripe/stripe-go/v82"
	"golang.org/x/time/rate"
)

// Client wraps the Stripe API client. The secret key is injected through
// configuration rather than bound to package state, so tests and multi-key
// deployments can construct clients independently.
type Client struct {
	api     *stripe.Client
	limiter *rate.Limiter
	logger  *logger.Logger
}

// NewClient creates a new Stripe client from configuration
func NewClient(cfg *config.Configuration, logger *logger.Logger) (*Client, error) {
	if cfg.Stripe.SecretKey == "" {
		return nil, ierr.NewError("stripe secret key not configured").
			WithHint("Set stripe.secret_key in configuration").
			Mark(ierr.ErrValidation)
	}

	rps := cfg.Stripe.RequestsPerSecond
	if rps <= 0 {
		rps = 25
	}
	burst := cfg.Stripe.Burst
	if burst <= 0 {
		burst = 50
	}

	return &Client{
		api:     stripe.NewClient(cfg.Stripe.SecretKey, nil),
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		logger:  logger,
	}, nil
}

// API returns the underlying Stripe client
func (c *Client) API() *stripe.Client {
	return c.api
}

// throttle blocks until the outbound rate limit admits one more API call or
// the context is done.
func (c *Client) throttle(ctx context.Context) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return ierr.WithError(err).
			WithHint("Request canceled while rate limited").
			Mark(ierr.ErrHTTPClient)
	}
	return nil
}
