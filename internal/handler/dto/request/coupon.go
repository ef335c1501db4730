package request

type IssueCouponRequest struct {
	CouponID int64 `json:"coupon_id" binding:"required"`
	UserID   int64 `json:"user_id" binding:"required"`
}
