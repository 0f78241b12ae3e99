package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hudemas/api/internal/domain"
	"github.com/hudemas/api/internal/repositories"
)

var (
	// ErrCouponNotEligible signals that a submitted code exists but cannot be
	// applied to this cart (inactive, outside its window, below the minimum).
	ErrCouponNotEligible = errors.New("coupon: not eligible")
	// ErrCouponNotFound signals an unknown coupon code.
	ErrCouponNotFound = errors.New("coupon: not found")
)

// CouponService resolves admin-managed coupon codes into the single discount
// rate the pricing engine consumes. The configured seasonal rate applies when
// no code is submitted.
type CouponService struct {
	coupons      repositories.CouponRepository
	seasonalRate float64
	now          func() time.Time
	logger       func(context.Context, string, map[string]any)
}

// CouponServiceDeps lists the collaborators for NewCouponService.
type CouponServiceDeps struct {
	Coupons      repositories.CouponRepository
	SeasonalRate float64
	Now          func() time.Time
	Logger       func(context.Context, string, map[string]any)
}

// NewCouponService constructs a CouponService.
func NewCouponService(deps CouponServiceDeps) (*CouponService, error) {
	if deps.Coupons == nil {
		return nil, errors.New("coupon service: coupon repository is required")
	}
	if deps.SeasonalRate < 0 || deps.SeasonalRate > 1 {
		return nil, fmt.Errorf("coupon service: seasonal rate %v outside [0,1]", deps.SeasonalRate)
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &CouponService{
		coupons:      deps.Coupons,
		seasonalRate: deps.SeasonalRate,
		now:          func() time.Time { return now().UTC() },
		logger:       logger,
	}, nil
}

// ResolveDiscountRate maps a coupon code and the cart subtotal to a discount
// rate in [0,1]. An empty code resolves to the seasonal rate. Fixed-amount
// coupons convert to a rate against the subtotal and clamp at 1.
func (s *CouponService) ResolveDiscountRate(ctx context.Context, code string, subtotal float64) (float64, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return s.seasonalRate, nil
	}

	coupon, err := s.coupons.FindByCode(ctx, code)
	if err != nil {
		var repoErr repositories.RepositoryError
		if errors.As(err, &repoErr) && repoErr.IsNotFound() {
			return 0, fmt.Errorf("%w: %s", ErrCouponNotFound, code)
		}
		return 0, err
	}

	if !coupon.Active {
		return 0, fmt.Errorf("%w: %s is inactive", ErrCouponNotEligible, code)
	}

	now := s.now()
	if coupon.StartsAt != nil && now.Before(*coupon.StartsAt) {
		return 0, fmt.Errorf("%w: %s is not yet valid", ErrCouponNotEligible, code)
	}
	if coupon.EndsAt != nil && now.After(*coupon.EndsAt) {
		return 0, fmt.Errorf("%w: %s has expired", ErrCouponNotEligible, code)
	}
	if coupon.MinOrderTotal > 0 && subtotal < coupon.MinOrderTotal {
		return 0, fmt.Errorf("%w: %s requires a minimum order of %s", ErrCouponNotEligible, code, domain.FormatAmount(coupon.MinOrderTotal))
	}

	rate := 0.0
	switch coupon.Type {
	case domain.CouponTypePercentage:
		rate = coupon.Value / 100
	case domain.CouponTypeFixed:
		if subtotal <= 0 {
			return 0, fmt.Errorf("%w: %s cannot apply to an empty cart", ErrCouponNotEligible, code)
		}
		rate = coupon.Value / subtotal
	default:
		return 0, fmt.Errorf("%w: %s has unknown type %q", ErrCouponNotEligible, code, coupon.Type)
	}

	if rate < 0 {
		rate = 0
	}
	if rate > 1 {
		rate = 1
	}

	s.logger(ctx, "coupon_resolved", map[string]any{
		"code":     code,
		"type":     string(coupon.Type),
		"rate":     rate,
		"subtotal": subtotal,
	})

	return rate, nil
}
