package converter

import (
	"coupon-issuer/internal/domain/coupon"
	sqlc "coupon-issuer/internal/infra/sqlc/generated"
	"coupon-issuer/internal/pkg/pgconv"
)

func CouponFromRow(row sqlc.Coupons) (*coupon.Coupon, error) {
	return coupon.NewCoupon(coupon.Params{
		ID:                 row.ID,
		Title:              row.Title,
		CouponType:         row.CouponType,
		TotalQuantity:      pgconv.IntPtrFromPgtype(row.TotalQuantity),
		IssuedQuantity:     int(row.IssuedQuantity),
		DiscountAmount:     int(row.DiscountAmount),
		MinAvailableAmount: int(row.MinAvailableAmount),
		DateIssueStart:     pgconv.TimeFromPgtype(row.DateIssueStart),
		DateIssueEnd:       pgconv.TimeFromPgtype(row.DateIssueEnd),
		CreatedAt:          pgconv.TimeFromPgtype(row.CreatedAt),
		UpdatedAt:          pgconv.TimeFromPgtype(row.UpdatedAt),
	})
}

func IssuedQuantityParams(c *coupon.Coupon) sqlc.UpdateCouponIssuedQuantityParams {
	return sqlc.UpdateCouponIssuedQuantityParams{
		ID:             c.ID(),
		IssuedQuantity: pgconv.IntToInt32(c.IssuedQuantity()),
	}
}

func IssuanceFromRow(row sqlc.CouponIssues) *coupon.Issuance {
	return coupon.ReconstructIssuance(
		row.ID,
		row.CouponID,
		row.UserID,
		pgconv.TimeFromPgtype(row.DateIssued),
		pgconv.TimePtrFromPgtype(row.DateUsed),
		row.Used,
	)
}

func IssuanceToInsertParams(i *coupon.Issuance) sqlc.InsertCouponIssueParams {
	return sqlc.InsertCouponIssueParams{
		CouponID:   i.CouponID(),
		UserID:     i.UserID(),
		DateIssued: pgconv.TimeToPgtype(i.DateIssued()),
	}
}
