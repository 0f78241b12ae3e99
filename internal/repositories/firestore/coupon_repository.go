package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	domain "github.com/hudemas/api/internal/domain"
	pfirestore "github.com/hudemas/api/internal/platform/firestore"
)

const defaultCouponCollection = "coupons"

type couponDocument struct {
	Code          string     `firestore:"code"`
	Type          string     `firestore:"type"`
	Value         float64    `firestore:"value"`
	MinOrderTotal float64    `firestore:"minOrderTotal"`
	Active        bool       `firestore:"active"`
	StartsAt      *time.Time `firestore:"startsAt"`
	EndsAt        *time.Time `firestore:"endsAt"`
	UpdatedAt     time.Time  `firestore:"updatedAt"`
}

// CouponRepository reads admin-managed coupon codes from Firestore. Documents
// are keyed by the upper-cased code.
type CouponRepository struct {
	coupons *pfirestore.Collection[couponDocument]
}

// NewCouponRepository constructs a Firestore-backed coupon repository.
func NewCouponRepository(provider *pfirestore.Provider, collection string) (*CouponRepository, error) {
	if provider == nil {
		return nil, errors.New("coupon repository requires firestore provider")
	}
	if strings.TrimSpace(collection) == "" {
		collection = defaultCouponCollection
	}
	return &CouponRepository{
		coupons: pfirestore.NewCollection[couponDocument](provider, collection, nil, nil),
	}, nil
}

// FindByCode looks up a coupon by its code.
func (r *CouponRepository) FindByCode(ctx context.Context, code string) (domain.Coupon, error) {
	if r == nil || r.coupons == nil {
		return domain.Coupon{}, errors.New("coupon repository not initialised")
	}

	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return domain.Coupon{}, errors.New("coupon repository: code is required")
	}

	doc, err := r.coupons.Get(ctx, code)
	if err != nil {
		return domain.Coupon{}, err
	}

	coupon := domain.Coupon{
		Code:          code,
		Type:          domain.CouponType(strings.TrimSpace(doc.Data.Type)),
		Value:         doc.Data.Value,
		MinOrderTotal: doc.Data.MinOrderTotal,
		Active:        doc.Data.Active,
		UpdatedAt:     doc.Data.UpdatedAt,
	}
	if doc.Data.StartsAt != nil {
		startsAt := doc.Data.StartsAt.UTC()
		coupon.StartsAt = &startsAt
	}
	if doc.Data.EndsAt != nil {
		endsAt := doc.Data.EndsAt.UTC()
		coupon.EndsAt = &endsAt
	}
	if stored := strings.ToUpper(strings.TrimSpace(doc.Data.Code)); stored != "" {
		coupon.Code = stored
	}
	return coupon, nil
}
