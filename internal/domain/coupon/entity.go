package coupon

import (
	"time"
)

type Coupon struct {
	id             int64
	title          string
	couponType     Type
	totalQuantity  *int
	issuedQuantity int
	discount       Discount
	window         IssueWindow
	createdAt      time.Time
	updatedAt      time.Time
}

type Params struct {
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
	UpdatedAt          time.Time
}

func NewCoupon(p Params) (*Coupon, error) {
	couponType, err := NewType(p.CouponType)
	if err != nil {
		return nil, err
	}
	if p.TotalQuantity != nil && *p.TotalQuantity < 0 {
		return nil, ErrInvalidTotalQuantity
	}
	discount, err := NewDiscount(p.DiscountAmount, p.MinAvailableAmount)
	if err != nil {
		return nil, err
	}
	window, err := NewIssueWindow(p.DateIssueStart, p.DateIssueEnd)
	if err != nil {
		return nil, err
	}

	return &Coupon{
		id:             p.ID,
		title:          p.Title,
		couponType:     couponType,
		totalQuantity:  p.TotalQuantity,
		issuedQuantity: p.IssuedQuantity,
		discount:       discount,
		window:         window,
		createdAt:      p.CreatedAt,
		updatedAt:      p.UpdatedAt,
	}, nil
}

// AvailableIssueQuantity is always true for a coupon without a cap.
func (c *Coupon) AvailableIssueQuantity() bool {
	if c.totalQuantity == nil {
		return true
	}
	return *c.totalQuantity > c.issuedQuantity
}

func (c *Coupon) AvailableIssueDate(now time.Time) bool {
	return c.window.Contains(now)
}

// Issue re-validates quantity then window and consumes one unit.
func (c *Coupon) Issue(now time.Time) error {
	if !c.AvailableIssueQuantity() {
		return NewIssueError(KindInvalidIssueQuantity,
			"coupon issue quantity exceeded. coupon_id: %d, total: %d, issued: %d", c.id, *c.totalQuantity, c.issuedQuantity)
	}
	if !c.AvailableIssueDate(now) {
		return NewIssueError(KindInvalidIssueDate,
			"coupon is not issuable at %s. coupon_id: %d, date_issue_start: %s, date_issue_end: %s",
			now.Format(time.RFC3339), c.id, c.window.Start().Format(time.RFC3339), c.window.End().Format(time.RFC3339))
	}
	c.issuedQuantity++
	return nil
}

func (c *Coupon) ID() int64            { return c.id }
func (c *Coupon) Title() string        { return c.title }
func (c *Coupon) Type() Type           { return c.couponType }
func (c *Coupon) TotalQuantity() *int  { return c.totalQuantity }
func (c *Coupon) IssuedQuantity() int  { return c.issuedQuantity }
func (c *Coupon) Discount() Discount   { return c.discount }
func (c *Coupon) Window() IssueWindow  { return c.window }
func (c *Coupon) CreatedAt() time.Time { return c.createdAt }
func (c *Coupon) UpdatedAt() time.Time { return c.updatedAt }
