package repository

import (
	"context"

	"coupon-issuer/internal/domain/coupon"
	"coupon-issuer/internal/infra"
	"coupon-issuer/internal/infra/repository/converter"
	sqlc "coupon-issuer/internal/infra/sqlc/generated"
	"coupon-issuer/internal/pkg/pgconv"
)

type CouponIssueQueries interface {
	GetCouponIssue(ctx context.Context, db sqlc.DBTX, arg sqlc.GetCouponIssueParams) (sqlc.CouponIssues, error)
	InsertCouponIssue(ctx context.Context, db sqlc.DBTX, arg sqlc.InsertCouponIssueParams) (int64, error)
}

type CouponIssueRepository struct {
	queries CouponIssueQueries
	db      sqlc.DBTX
}

func NewCouponIssueRepository(queries CouponIssueQueries, db sqlc.DBTX) *CouponIssueRepository {
	return &CouponIssueRepository{
		queries: queries,
		db:      db,
	}
}

// FindByCouponAndUser returns (nil, nil) when the user holds no issuance for the coupon.
func (r *CouponIssueRepository) FindByCouponAndUser(ctx context.Context, couponID, userID int64) (*coupon.Issuance, error) {
	row, err := r.queries.GetCouponIssue(ctx, r.db, sqlc.GetCouponIssueParams{
		CouponID: couponID,
		UserID:   userID,
	})
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, nil
		}
		return nil, infra.WrapRepoErr("failed to find coupon issue", err)
	}
	return converter.IssuanceFromRow(row), nil
}

func (r *CouponIssueRepository) Create(ctx context.Context, issuance *coupon.Issuance) (int64, error) {
	id, err := r.queries.InsertCouponIssue(ctx, r.db, converter.IssuanceToInsertParams(issuance))
	if err != nil {
		if pgconv.IsUniqueViolation(err) {
			return 0, infra.WrapRepoErr("coupon already issued to user", err, infra.KindDuplicateKey)
		}
		return 0, infra.WrapRepoErr("failed to insert coupon issue", err)
	}
	return id, nil
}
