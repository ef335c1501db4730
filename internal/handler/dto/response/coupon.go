package response

import (
	"coupon-issuer/internal/domain/coupon"
	"coupon-issuer/internal/usecase/queries"
)

type SubmitResponse struct {
	Accepted bool   `json:"accepted"`
	Reason   string `json:"reason,omitempty"`
	Message  string `json:"message,omitempty"`
}

func SubmitAccepted() *SubmitResponse {
	return &SubmitResponse{Accepted: true}
}

func SubmitRejected(err error) *SubmitResponse {
	return &SubmitResponse{
		Reason:  string(coupon.KindOf(err)),
		Message: coupon.DetailOf(err),
	}
}

type IssueResponse struct {
	Success   bool   `json:"success"`
	ErrorCode string `json:"error_code,omitempty"`
	Message   string `json:"message,omitempty"`
}

func IssueSucceeded() *IssueResponse {
	return &IssueResponse{Success: true}
}

func IssueFailed(err error) *IssueResponse {
	return &IssueResponse{
		ErrorCode: string(coupon.KindOf(err)),
		Message:   coupon.DetailOf(err),
	}
}

type CouponResponse struct {
	ID                 int64  `json:"id"`
	Title              string `json:"title"`
	CouponType         string `json:"coupon_type"`
	TotalQuantity      *int   `json:"total_quantity"`
	DiscountAmount     int    `json:"discount_amount"`
	MinAvailableAmount int    `json:"min_available_amount"`
	DateIssueStart     int64  `json:"date_issue_start"`
	DateIssueEnd       int64  `json:"date_issue_end"`
	Exhausted          bool   `json:"exhausted"`
	Issuable           bool   `json:"issuable"`
}

func FromCouponView(v *queries.CouponView) *CouponResponse {
	return &CouponResponse{
		ID:                 v.ID,
		Title:              v.Title,
		CouponType:         v.CouponType,
		TotalQuantity:      v.TotalQuantity,
		DiscountAmount:     v.DiscountAmount,
		MinAvailableAmount: v.MinAvailableAmount,
		DateIssueStart:     v.DateIssueStart.Unix(),
		DateIssueEnd:       v.DateIssueEnd.Unix(),
		Exhausted:          v.Exhausted,
		Issuable:           v.Issuable,
	}
}
