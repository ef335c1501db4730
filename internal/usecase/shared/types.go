package shared

import "time"

// CouponSnapshot is an unlocked read of a coupon row.
type CouponSnapshot struct {
	ID                 int64
	Title              string
	CouponType         string
	TotalQuantity      *int
	IssuedQuantity     int
	DiscountAmount     int
	MinAvailableAmount int
	DateIssueStart     time.Time
	DateIssueEnd       time.Time
}
