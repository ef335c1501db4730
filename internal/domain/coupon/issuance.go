package coupon

import "time"

// Issuance records that a user received a coupon. At most one exists per (couponID, userID).
type Issuance struct {
	id         int64
	couponID   int64
	userID     int64
	dateIssued time.Time
	dateUsed   *time.Time
	used       bool
}

func NewIssuance(couponID, userID int64, issuedAt time.Time) *Issuance {
	return &Issuance{
		couponID:   couponID,
		userID:     userID,
		dateIssued: issuedAt,
	}
}

func ReconstructIssuance(id, couponID, userID int64, dateIssued time.Time, dateUsed *time.Time, used bool) *Issuance {
	return &Issuance{
		id:         id,
		couponID:   couponID,
		userID:     userID,
		dateIssued: dateIssued,
		dateUsed:   dateUsed,
		used:       used,
	}
}

func (i *Issuance) ID() int64             { return i.id }
func (i *Issuance) CouponID() int64       { return i.couponID }
func (i *Issuance) UserID() int64         { return i.userID }
func (i *Issuance) DateIssued() time.Time { return i.dateIssued }
func (i *Issuance) DateUsed() *time.Time  { return i.dateUsed }
func (i *Issuance) Used() bool            { return i.used }
