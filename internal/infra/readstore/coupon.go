package readstore

import (
	"context"

	"coupon-issuer/internal/domain/coupon"
	"coupon-issuer/internal/infra"
	sqlc "coupon-issuer/internal/infra/sqlc/generated"
	"coupon-issuer/internal/pkg/pgconv"
	"coupon-issuer/internal/usecase/shared"
)

type CouponReadQueries interface {
	GetCouponByID(ctx context.Context, db sqlc.DBTX, id int64) (sqlc.Coupons, error)
}

type CouponReadStore struct {
	queries CouponReadQueries
	db      sqlc.DBTX
}

func NewCouponReadStore(queries CouponReadQueries, db sqlc.DBTX) *CouponReadStore {
	return &CouponReadStore{
		queries: queries,
		db:      db,
	}
}

// FindByID reads without locking; the result is only suitable for advisory checks.
func (r *CouponReadStore) FindByID(ctx context.Context, id int64) (*shared.CouponSnapshot, error) {
	row, err := r.queries.GetCouponByID(ctx, r.db, id)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("coupon not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find coupon by ID", err)
	}
	if _, err := coupon.NewType(row.CouponType); err != nil {
		return nil, infra.WrapRepoErr("coupon row has unknown type "+row.CouponType, err, infra.KindInvalidData)
	}

	return toCouponSnapshotFromRow(row), nil
}

func toCouponSnapshotFromRow(row sqlc.Coupons) *shared.CouponSnapshot {
	return &shared.CouponSnapshot{
		ID:                 row.ID,
		Title:              row.Title,
		CouponType:         row.CouponType,
		TotalQuantity:      pgconv.IntPtrFromPgtype(row.TotalQuantity),
		IssuedQuantity:     int(row.IssuedQuantity),
		DiscountAmount:     int(row.DiscountAmount),
		MinAvailableAmount: int(row.MinAvailableAmount),
		DateIssueStart:     pgconv.TimeFromPgtype(row.DateIssueStart),
		DateIssueEnd:       pgconv.TimeFromPgtype(row.DateIssueEnd),
	}
}
