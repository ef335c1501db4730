package readmodel

import (
	"math"
	"time"

	"coupon-issuer/internal/domain/coupon"
)

// CouponCacheEntry is the cached, advisory view of a coupon. It carries no issued
// count; Exhausted is a hint captured when the entry was loaded.
type CouponCacheEntry struct {
	ID                 int64     `json:"id"`
	Title              string    `json:"title"`
	CouponType         string    `json:"coupon_type"`
	TotalQuantity      *int      `json:"total_quantity,omitempty"`
	DiscountAmount     int       `json:"discount_amount"`
	MinAvailableAmount int       `json:"min_available_amount"`
	DateIssueStart     time.Time `json:"date_issue_start"`
	DateIssueEnd       time.Time `json:"date_issue_end"`
	Exhausted          bool      `json:"exhausted"`
}

// Capacity is the admission cap passed to the gate; unbounded coupons use MaxInt64.
func (e *CouponCacheEntry) Capacity() int64 {
	if e.TotalQuantity == nil {
		return math.MaxInt64
	}
	return int64(*e.TotalQuantity)
}

func (e *CouponCacheEntry) AvailableIssueDate(now time.Time) bool {
	return !now.Before(e.DateIssueStart) && now.Before(e.DateIssueEnd)
}

// CheckIssuable applies the same checks, in the same order and with the same
// kinds, as Coupon.Issue. Passing it guarantees nothing.
func (e *CouponCacheEntry) CheckIssuable(now time.Time) error {
	if e.Exhausted {
		return coupon.NewIssueError(coupon.KindInvalidIssueQuantity,
			"coupon issue quantity exhausted. coupon_id: %d", e.ID)
	}
	if !e.AvailableIssueDate(now) {
		return coupon.NewIssueError(coupon.KindInvalidIssueDate,
			"coupon is not issuable at %s. coupon_id: %d, date_issue_start: %s, date_issue_end: %s",
			now.Format(time.RFC3339), e.ID, e.DateIssueStart.Format(time.RFC3339), e.DateIssueEnd.Format(time.RFC3339))
	}
	return nil
}
