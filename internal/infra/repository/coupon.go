package repository

import (
	"context"

	"coupon-issuer/internal/domain/coupon"
	"coupon-issuer/internal/infra"
	"coupon-issuer/internal/infra/repository/converter"
	sqlc "coupon-issuer/internal/infra/sqlc/generated"
	"coupon-issuer/internal/pkg/errs"
	"coupon-issuer/internal/pkg/pgconv"
)

type CouponWriteQueries interface {
	GetCouponByIDForUpdate(ctx context.Context, db sqlc.DBTX, id int64) (sqlc.Coupons, error)
	UpdateCouponIssuedQuantity(ctx context.Context, db sqlc.DBTX, arg sqlc.UpdateCouponIssuedQuantityParams) (int64, error)
}

type CouponRepository struct {
	queries CouponWriteQueries
	db      sqlc.DBTX
}

func NewCouponRepository(queries CouponWriteQueries, db sqlc.DBTX) *CouponRepository {
	return &CouponRepository{
		queries: queries,
		db:      db,
	}
}

// FindByIDForUpdate row-locks the coupon until the enclosing transaction ends.
func (r *CouponRepository) FindByIDForUpdate(ctx context.Context, id int64) (*coupon.Coupon, error) {
	row, err := r.queries.GetCouponByIDForUpdate(ctx, r.db, id)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("coupon not found", err, infra.KindNotFound)
		}
		if pgconv.HasCode(err, pgconv.CodeLockNotAvailable) {
			return nil, infra.WrapRepoErr("coupon row lock wait timed out", err, infra.KindLockTimeout)
		}
		return nil, infra.WrapRepoErr("failed to lock coupon by ID", err)
	}

	c, err := converter.CouponFromRow(row)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to convert coupon row", err, infra.KindInvalidData)
	}
	return c, nil
}

func (r *CouponRepository) UpdateIssuedQuantity(ctx context.Context, c *coupon.Coupon) error {
	affected, err := r.queries.UpdateCouponIssuedQuantity(ctx, r.db, converter.IssuedQuantityParams(c))
	if err != nil {
		return infra.WrapRepoErr("failed to update coupon issued quantity", err)
	}
	if affected == 0 {
		return infra.WrapRepoErr("coupon not found", errs.Newf("no coupon with id %d", c.ID()), infra.KindNotFound)
	}
	return nil
}
