//go:build unit || e2e

package builder

import (
	"time"

	domcoupon "coupon-issuer/internal/domain/coupon"
	reqdto "coupon-issuer/internal/handler/dto/request"
	sqlc "coupon-issuer/internal/infra/sqlc/generated"
	"coupon-issuer/internal/pkg/pgconv"
	"coupon-issuer/internal/usecase/shared"
)

type CouponBuilder struct {
	ID                 int64
	Title              string
	CouponType         string
	TotalQuantity      *int
	IssuedQuantity     int
	DiscountAmount     int
	MinAvailableAmount int
	DateIssueStart     time.Time
	DateIssueEnd       time.Time
	CreatedAt          time.Time
}

func NewCouponBuilder() *CouponBuilder {
	now := time.Now()
	total := 100
	return &CouponBuilder{
		ID:                 1,
		Title:              "Flash Sale 10% Off",
		CouponType:         string(domcoupon.TypeFirstComeFirstServed),
		TotalQuantity:      &total,
		DiscountAmount:     1000,
		MinAvailableAmount: 10000,
		DateIssueStart:     now.Add(-time.Hour),
		DateIssueEnd:       now.Add(time.Hour),
		CreatedAt:          now,
	}
}

func (b *CouponBuilder) With(mutate func(*CouponBuilder)) *CouponBuilder {
	mutate(b)
	return b
}

func (b *CouponBuilder) WithID(id int64) *CouponBuilder {
	b.ID = id
	return b
}

func (b *CouponBuilder) WithTotal(total int) *CouponBuilder {
	b.TotalQuantity = &total
	return b
}

func (b *CouponBuilder) Unbounded() *CouponBuilder {
	b.TotalQuantity = nil
	return b
}

func (b *CouponBuilder) WithIssued(issued int) *CouponBuilder {
	b.IssuedQuantity = issued
	return b
}

func (b *CouponBuilder) WithWindow(start, end time.Time) *CouponBuilder {
	b.DateIssueStart = start
	b.DateIssueEnd = end
	return b
}

// Build methods
func (b *CouponBuilder) BuildDomain() (*domcoupon.Coupon, error) {
	return domcoupon.NewCoupon(domcoupon.Params{
		ID:                 b.ID,
		Title:              b.Title,
		CouponType:         b.CouponType,
		TotalQuantity:      copyIntPtr(b.TotalQuantity),
		IssuedQuantity:     b.IssuedQuantity,
		DiscountAmount:     b.DiscountAmount,
		MinAvailableAmount: b.MinAvailableAmount,
		DateIssueStart:     b.DateIssueStart,
		DateIssueEnd:       b.DateIssueEnd,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.CreatedAt,
	})
}

func (b *CouponBuilder) BuildSnapshot() *shared.CouponSnapshot {
	return &shared.CouponSnapshot{
		ID:                 b.ID,
		Title:              b.Title,
		CouponType:         b.CouponType,
		TotalQuantity:      copyIntPtr(b.TotalQuantity),
		IssuedQuantity:     b.IssuedQuantity,
		DiscountAmount:     b.DiscountAmount,
		MinAvailableAmount: b.MinAvailableAmount,
		DateIssueStart:     b.DateIssueStart,
		DateIssueEnd:       b.DateIssueEnd,
	}
}

func (b *CouponBuilder) BuildCreateParams() sqlc.CreateCouponParams {
	return sqlc.CreateCouponParams{
		Title:              b.Title,
		CouponType:         b.CouponType,
		TotalQuantity:      pgconv.IntPtrToPgtype(b.TotalQuantity),
		DiscountAmount:     pgconv.IntToInt32(b.DiscountAmount),
		MinAvailableAmount: pgconv.IntToInt32(b.MinAvailableAmount),
		DateIssueStart:     pgconv.TimeToPgtype(b.DateIssueStart),
		DateIssueEnd:       pgconv.TimeToPgtype(b.DateIssueEnd),
	}
}

func (b *CouponBuilder) BuildIssueRequestDTO(userID int64) reqdto.IssueCouponRequest {
	return reqdto.IssueCouponRequest{
		CouponID: b.ID,
		UserID:   userID,
	}
}

func copyIntPtr(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
