package queries

import "time"

// CouponView is the public, cache-backed view of a coupon.
type CouponView struct {
	ID                 int64     `json:"id"`
	Title              string    `json:"title"`
	CouponType         string    `json:"coupon_type"`
	TotalQuantity      *int      `json:"total_quantity,omitempty"`
	DiscountAmount     int       `json:"discount_amount"`
	MinAvailableAmount int       `json:"min_available_amount"`
	DateIssueStart     time.Time `json:"date_issue_start"`
	DateIssueEnd       time.Time `json:"date_issue_end"`
	Exhausted          bool      `json:"exhausted"`
	Issuable           bool      `json:"issuable"`
}
