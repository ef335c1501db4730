package queries

import (
	"context"

	"coupon-issuer/internal/pkg/clock"
	"coupon-issuer/internal/usecase/readmodel"
)

type CouponQueries interface {
	GetCoupon(ctx context.Context, couponID int64) (*CouponView, error)
}

type CouponEntryLoader interface {
	Get(ctx context.Context, couponID int64) (*readmodel.CouponCacheEntry, error)
}

type couponQueriesImpl struct {
	cache CouponEntryLoader
	clock clock.Clock
}

func NewCouponQueries(cache CouponEntryLoader, clock clock.Clock) CouponQueries {
	return &couponQueriesImpl{
		cache: cache,
		clock: clock,
	}
}

func (q *couponQueriesImpl) GetCoupon(ctx context.Context, couponID int64) (*CouponView, error) {
	entry, err := q.cache.Get(ctx, couponID)
	if err != nil {
		return nil, err
	}

	return &CouponView{
		ID:                 entry.ID,
		Title:              entry.Title,
		CouponType:         entry.CouponType,
		TotalQuantity:      entry.TotalQuantity,
		DiscountAmount:     entry.DiscountAmount,
		MinAvailableAmount: entry.MinAvailableAmount,
		DateIssueStart:     entry.DateIssueStart,
		DateIssueEnd:       entry.DateIssueEnd,
		Exhausted:          entry.Exhausted,
		Issuable:           entry.CheckIssuable(q.clock.Now()) == nil,
	}, nil
}
