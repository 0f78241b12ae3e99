package repositories

import (
	"context"
	"time"

	domain "github.com/hudemas/api/internal/domain"
)

// RepositoryError wraps low-level persistence failures with categorisation used by services.
type RepositoryError interface {
	error
	IsNotFound() bool
	IsConflict() bool
	IsUnavailable() bool
}

// OrderRepository reads and inserts order snapshots. Status transitions are
// driven elsewhere; the fiscal side only ever reads consistent snapshots.
type OrderRepository interface {
	Insert(ctx context.Context, order domain.Order) (domain.Order, error)
	FindByID(ctx context.Context, orderID string) (domain.Order, error)
	ListByDateRange(ctx context.Context, from, to time.Time) ([]domain.Order, error)
}

// CouponRepository looks up admin-managed discount codes.
type CouponRepository interface {
	FindByCode(ctx context.Context, code string) (domain.Coupon, error)
}
