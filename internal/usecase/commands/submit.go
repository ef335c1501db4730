package commands

import (
	"context"

	"coupon-issuer/internal/domain/coupon"
	"coupon-issuer/internal/infra/redisstore"
	"coupon-issuer/internal/pkg/clock"
	"coupon-issuer/internal/usecase/readmodel"
)

type Admitter interface {
	Admit(ctx context.Context, couponID, userID, capacity int64) (redisstore.AdmitStatus, error)
}

type CouponEntryLoader interface {
	Get(ctx context.Context, couponID int64) (*readmodel.CouponCacheEntry, error)
}

type SubmitCommands interface {
	// Submit admits a request for asynchronous issuance. A nil error means the request
	// was enqueued; it does not mean a coupon will be issued.
	Submit(ctx context.Context, couponID, userID int64) error
}

type submitUseCaseImpl struct {
	cache    CouponEntryLoader
	admitter Admitter
	clock    clock.Clock
}

func NewSubmitUseCase(cache CouponEntryLoader, admitter Admitter, clock clock.Clock) SubmitCommands {
	return &submitUseCaseImpl{
		cache:    cache,
		admitter: admitter,
		clock:    clock,
	}
}

func (u *submitUseCaseImpl) Submit(ctx context.Context, couponID, userID int64) error {
	if couponID <= 0 || userID <= 0 {
		return coupon.NewIssueError(coupon.KindInvalidIssuePayload,
			"coupon_id and user_id must be positive. coupon_id: %d, user_id: %d", couponID, userID)
	}

	entry, err := u.cache.Get(ctx, couponID)
	if err != nil {
		return err
	}
	if err := entry.CheckIssuable(u.clock.Now()); err != nil {
		return err
	}

	status, err := u.admitter.Admit(ctx, couponID, userID, entry.Capacity())
	if err != nil {
		return coupon.WrapIssueError(coupon.KindFailCouponIssueRequest, err,
			"admission failed. coupon_id: %d, user_id: %d", couponID, userID)
	}

	switch status {
	case redisstore.AdmitAdmitted:
		return nil
	case redisstore.AdmitDuplicate:
		return coupon.NewIssueError(coupon.KindDuplicateIssue,
			"coupon already requested. user_id: %d, coupon_id: %d", userID, couponID)
	case redisstore.AdmitCapacityExceeded:
		return coupon.NewIssueError(coupon.KindInvalidIssueQuantity,
			"coupon issue quantity exceeded. coupon_id: %d", couponID)
	default:
		return coupon.NewIssueError(coupon.KindFailCouponIssueRequest,
			"unexpected admission status %s. coupon_id: %d", status, couponID)
	}
}
