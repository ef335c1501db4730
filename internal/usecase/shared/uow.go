package shared

import (
	"context"

	"coupon-issuer/internal/domain/coupon"
	"coupon-issuer/internal/pkg/errs"
)

var (
	ErrTransactionBegin   = errs.New("failed to begin transaction")
	ErrTransactionCommit  = errs.New("failed to commit transaction")
	ErrMaxRetriesExceeded = errs.New("transaction failed after max retries")
)

type UnitOfWork interface {
	// Within: Full transaction for write operations with retry logic
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// CommandReads: Direct access to command reads outside transactions
	CommandReads() CommandReads
}

type Tx interface {
	Coupons() CouponRepository
	Issuances() IssuanceRepository
}

type CommandReads interface {
	CouponByID(ctx context.Context, id int64) (*CouponSnapshot, error)
}

type CouponRepository interface {
	FindByIDForUpdate(ctx context.Context, id int64) (*coupon.Coupon, error)
	UpdateIssuedQuantity(ctx context.Context, c *coupon.Coupon) error
}

type IssuanceRepository interface {
	FindByCouponAndUser(ctx context.Context, couponID, userID int64) (*coupon.Issuance, error)
	Create(ctx context.Context, issuance *coupon.Issuance) (int64, error)
}
