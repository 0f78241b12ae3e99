package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/hudemas/api/internal/domain"
)

type stubRepoError struct {
	notFound bool
}

func (e *stubRepoError) Error() string       { return fmt.Sprintf("stub repo error (notFound=%t)", e.notFound) }
func (e *stubRepoError) IsNotFound() bool    { return e.notFound }
func (e *stubRepoError) IsConflict() bool    { return false }
func (e *stubRepoError) IsUnavailable() bool { return !e.notFound }

type stubCouponRepository struct {
	coupons map[string]domain.Coupon
	err     error
}

func (s *stubCouponRepository) FindByCode(_ context.Context, code string) (domain.Coupon, error) {
	if s.err != nil {
		return domain.Coupon{}, s.err
	}
	coupon, ok := s.coupons[code]
	if !ok {
		return domain.Coupon{}, &stubRepoError{notFound: true}
	}
	return coupon, nil
}

func timePtr(t time.Time) *time.Time { return &t }

func newTestCouponService(t *testing.T, repo *stubCouponRepository, seasonal float64) *CouponService {
	t.Helper()
	svc, err := NewCouponService(CouponServiceDeps{
		Coupons:      repo,
		SeasonalRate: seasonal,
		Now:          fixedClock(time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)),
	})
	if err != nil {
		t.Fatalf("NewCouponService returned error: %v", err)
	}
	return svc
}

func TestResolveDiscountRateSeasonalFallback(t *testing.T) {
	svc := newTestCouponService(t, &stubCouponRepository{}, 0.15)

	rate, err := svc.ResolveDiscountRate(context.Background(), "", 200)
	if err != nil {
		t.Fatalf("ResolveDiscountRate returned error: %v", err)
	}
	if rate != 0.15 {
		t.Errorf("expected seasonal rate 0.15, got %v", rate)
	}
}

func TestResolveDiscountRatePercentage(t *testing.T) {
	repo := &stubCouponRepository{coupons: map[string]domain.Coupon{
		"MARTISOR20": {Code: "MARTISOR20", Type: domain.CouponTypePercentage, Value: 20, Active: true},
	}}
	svc := newTestCouponService(t, repo, 0)

	rate, err := svc.ResolveDiscountRate(context.Background(), " martisor20 ", 200)
	if err != nil {
		t.Fatalf("ResolveDiscountRate returned error: %v", err)
	}
	if rate != 0.20 {
		t.Errorf("expected rate 0.20, got %v", rate)
	}
}

func TestResolveDiscountRateFixedAmount(t *testing.T) {
	repo := &stubCouponRepository{coupons: map[string]domain.Coupon{
		"REDUCERE50": {Code: "REDUCERE50", Type: domain.CouponTypeFixed, Value: 50, Active: true},
	}}
	svc := newTestCouponService(t, repo, 0)

	rate, err := svc.ResolveDiscountRate(context.Background(), "REDUCERE50", 200)
	if err != nil {
		t.Fatalf("ResolveDiscountRate returned error: %v", err)
	}
	if math.Abs(rate-0.25) > 1e-9 {
		t.Errorf("expected rate 0.25, got %v", rate)
	}

	// A fixed amount above the subtotal clamps the rate at 1.
	rate, err = svc.ResolveDiscountRate(context.Background(), "REDUCERE50", 30)
	if err != nil {
		t.Fatalf("ResolveDiscountRate returned error: %v", err)
	}
	if rate != 1 {
		t.Errorf("expected clamped rate 1, got %v", rate)
	}
}

func TestResolveDiscountRateEligibility(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	repo := &stubCouponRepository{coupons: map[string]domain.Coupon{
		"INACTIV":  {Code: "INACTIV", Type: domain.CouponTypePercentage, Value: 10, Active: false},
		"EXPIRAT":  {Code: "EXPIRAT", Type: domain.CouponTypePercentage, Value: 10, Active: true, EndsAt: timePtr(now.Add(-time.Hour))},
		"VIITOR":   {Code: "VIITOR", Type: domain.CouponTypePercentage, Value: 10, Active: true, StartsAt: timePtr(now.Add(time.Hour))},
		"MINIM300": {Code: "MINIM300", Type: domain.CouponTypePercentage, Value: 10, Active: true, MinOrderTotal: 300},
	}}
	svc := newTestCouponService(t, repo, 0)
	ctx := context.Background()

	for _, code := range []string{"INACTIV", "EXPIRAT", "VIITOR", "MINIM300"} {
		if _, err := svc.ResolveDiscountRate(ctx, code, 200); !errors.Is(err, ErrCouponNotEligible) {
			t.Errorf("expected ErrCouponNotEligible for %s, got %v", code, err)
		}
	}

	// Exactly at the threshold is eligible.
	rate, err := svc.ResolveDiscountRate(ctx, "MINIM300", 300)
	if err != nil {
		t.Fatalf("ResolveDiscountRate returned error: %v", err)
	}
	if rate != 0.10 {
		t.Errorf("expected rate 0.10 at threshold, got %v", rate)
	}
}

func TestResolveDiscountRateNotFound(t *testing.T) {
	svc := newTestCouponService(t, &stubCouponRepository{}, 0)

	if _, err := svc.ResolveDiscountRate(context.Background(), "NECUNOSCUT", 200); !errors.Is(err, ErrCouponNotFound) {
		t.Errorf("expected ErrCouponNotFound, got %v", err)
	}
}

func TestResolveDiscountRatePassesThroughRepoFailures(t *testing.T) {
	backend := &stubRepoError{notFound: false}
	svc := newTestCouponService(t, &stubCouponRepository{err: backend}, 0)

	_, err := svc.ResolveDiscountRate(context.Background(), "ORICE", 200)
	var repoErr *stubRepoError
	if !errors.As(err, &repoErr) {
		t.Errorf("expected backend error passthrough, got %v", err)
	}
}
