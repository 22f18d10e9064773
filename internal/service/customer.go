package service

import (
	"context"
	"fmt"

	"github.com/gamalabdu/purchase-ledger/internal/api/dto"
	"github.com/gamalabdu/purchase-ledger/internal/cache"
	"github.com/gamalabdu/purchase-ledger/internal/domain/billing"
	ierr "github.com/gamalabdu/purchase-ledger/internal/errors"
	"github.com/gamalabdu/purchase-ledger/internal/retry"
	"github.com/gamalabdu/purchase-ledger/internal/validator"
)

// CustomerService resolves provider customers by email so callers can go from
// a visitor's email to a reconcilable customer id.
type CustomerService interface {
	LookupByEmail(ctx context.Context, req *dto.LookupCustomerRequest) (*dto.LookupCustomerResponse, error)
}

type customerService struct {
	ServiceParams
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(params ServiceParams) CustomerService {
	return &customerService{
		ServiceParams: params,
	}
}

func (s *customerService) LookupByEmail(ctx context.Context, req *dto.LookupCustomerRequest) (*dto.LookupCustomerResponse, error) {
	if err := validator.ValidateRequest(req); err != nil {
		return nil, err
	}

	cacheKey := customerCacheKey(req.Email)
	if s.Cache != nil {
		if cached, ok := s.Cache.Get(ctx, cacheKey); ok {
			if resp, ok := cached.(*dto.LookupCustomerResponse); ok {
				s.Logger.Debugw("customer lookup served from cache", "email", req.Email)
				return resp, nil
			}
		}
	}

	// Provider-side search can be briefly stale for just-created customers,
	// so the lookup runs under the shared bounded-retry policy.
	var cust *billing.Customer
	err := retry.Do(ctx, s.customerLookupPolicy(), func() error {
		var err error
		cust, err = s.Directory.FindByEmail(ctx, req.Email)
		return err
	})
	if err != nil {
		if ierr.IsNotFound(err) {
			return nil, err
		}
		s.Logger.Errorw("customer lookup failed", "email", req.Email, "error", err)
		return nil, ierr.WithError(err).
			WithHint("Failed to look up customer with billing provider").
			Mark(ierr.ErrUpstreamUnavailable)
	}

	resp := &dto.LookupCustomerResponse{
		CustomerID: cust.ID,
		Email:      cust.Email,
		Name:       cust.Name,
	}
	if s.Cache != nil {
		s.Cache.Set(ctx, cacheKey, resp, cache.DefaultExpiration)
	}
	return resp, nil
}

func (s *customerService) customerLookupPolicy() retry.Policy {
	policy := retry.DefaultPolicy()
	if s.Config.Reconciliation.LookupMaxAttempts > 0 {
		policy.MaxAttempts = s.Config.Reconciliation.LookupMaxAttempts
	}
	return policy
}

func customerCacheKey(email string) string {
	return fmt.Sprintf("customer:email:%s", email)
}
