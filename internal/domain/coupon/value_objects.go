package coupon

import (
	"errors"
	"time"
)

var (
	ErrInvalidCouponType     = errors.New("invalid coupon type")
	ErrInvalidIssueWindow    = errors.New("issue window end must be after start")
	ErrInvalidDiscountAmount = errors.New("discount amount cannot be negative")
	ErrInvalidMinAmount      = errors.New("minimum available amount cannot be negative")
	ErrInvalidTotalQuantity  = errors.New("total quantity cannot be negative")
)

type Type string

const (
	TypeFirstComeFirstServed Type = "FIRST_COME_FIRST_SERVED"
)

func NewType(s string) (Type, error) {
	switch Type(s) {
	case TypeFirstComeFirstServed:
		return Type(s), nil
	default:
		return "", ErrInvalidCouponType
	}
}

func (t Type) String() string {
	return string(t)
}

// IssueWindow is the half-open interval [start, end) during which issuance is allowed.
type IssueWindow struct {
	start time.Time
	end   time.Time
}

func NewIssueWindow(start, end time.Time) (IssueWindow, error) {
	if !end.After(start) {
		return IssueWindow{}, ErrInvalidIssueWindow
	}
	return IssueWindow{start: start, end: end}, nil
}

func (w IssueWindow) Contains(t time.Time) bool {
	return !t.Before(w.start) && t.Before(w.end)
}

func (w IssueWindow) Start() time.Time { return w.start }
func (w IssueWindow) End() time.Time   { return w.end }

// Discount is a fixed amount off an order of at least minAvailableAmount.
type Discount struct {
	amount             int
	minAvailableAmount int
}

func NewDiscount(amount, minAvailableAmount int) (Discount, error) {
	if amount < 0 {
		return Discount{}, ErrInvalidDiscountAmount
	}
	if minAvailableAmount < 0 {
		return Discount{}, ErrInvalidMinAmount
	}
	return Discount{amount: amount, minAvailableAmount: minAvailableAmount}, nil
}

func (d Discount) Amount() int             { return d.amount }
func (d Discount) MinAvailableAmount() int { return d.minAvailableAmount }
