package commands

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"coupon-issuer/internal/domain/coupon"
	"coupon-issuer/internal/infra"
	"coupon-issuer/internal/infra/redisstore"
	"coupon-issuer/internal/pkg/clock"
	"coupon-issuer/internal/pkg/config"
	"coupon-issuer/internal/pkg/errs"
	"coupon-issuer/internal/usecase/event"
	"coupon-issuer/internal/usecase/shared"
)

type Locker interface {
	Execute(ctx context.Context, key string, wait, lease time.Duration, fn func(ctx context.Context) error) error
}

type AdmissionMarker interface {
	MarkIssued(ctx context.Context, couponID, userID int64) error
}

type EventPublisher interface {
	Publish(ctx context.Context, ev event.IssueCompleted)
}

type IssueCommands interface {
	// Issue is the authoritative commit. The returned event must be published by the caller.
	Issue(ctx context.Context, couponID, userID int64) (event.IssueCompleted, error)
	// IssueSync serializes on the coupon lock, commits, publishes and marks the user admitted.
	IssueSync(ctx context.Context, couponID, userID int64) error
}

type issueUseCaseImpl struct {
	uow       shared.UnitOfWork
	locker    Locker
	marker    AdmissionMarker
	publisher EventPublisher
	clock     clock.Clock
	lockWait  time.Duration
	lockLease time.Duration
}

func NewIssueUseCase(
	uow shared.UnitOfWork,
	locker Locker,
	marker AdmissionMarker,
	publisher EventPublisher,
	clock clock.Clock,
	cfg config.IssueConfig,
) IssueCommands {
	return &issueUseCaseImpl{
		uow:       uow,
		locker:    locker,
		marker:    marker,
		publisher: publisher,
		clock:     clock,
		lockWait:  cfg.LockWait,
		lockLease: cfg.LockLease,
	}
}

func (u *issueUseCaseImpl) Issue(ctx context.Context, couponID, userID int64) (event.IssueCompleted, error) {
	var completed event.IssueCompleted

	err := u.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		c, err := tx.Coupons().FindByIDForUpdate(ctx, couponID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return coupon.WrapIssueError(coupon.KindCouponNotExist, err, "coupon does not exist. coupon_id: %d", couponID)
			}
			if infra.IsKind(err, infra.KindInvalidData) {
				return coupon.WrapIssueError(coupon.KindInvalidCoupon, err, "coupon cannot be issued. coupon_id: %d", couponID)
			}
			return err
		}

		now := u.clock.Now()
		if err := c.Issue(now); err != nil {
			return err
		}

		existing, err := tx.Issuances().FindByCouponAndUser(ctx, couponID, userID)
		if err != nil {
			return err
		}
		if existing != nil {
			return coupon.NewIssueError(coupon.KindDuplicateIssue,
				"coupon already issued. user_id: %d, coupon_id: %d", userID, couponID)
		}

		if _, err := tx.Issuances().Create(ctx, coupon.NewIssuance(couponID, userID, now)); err != nil {
			if infra.IsKind(err, infra.KindDuplicateKey) {
				return coupon.WrapIssueError(coupon.KindDuplicateIssue, err,
					"coupon already issued. user_id: %d, coupon_id: %d", userID, couponID)
			}
			return err
		}

		if err := tx.Coupons().UpdateIssuedQuantity(ctx, c); err != nil {
			return err
		}

		completed = event.IssueCompleted{
			CouponID:  couponID,
			UserID:    userID,
			Exhausted: !c.AvailableIssueQuantity(),
		}
		return nil
	})
	if err != nil {
		if errs.Is(err, shared.ErrMaxRetriesExceeded) {
			return event.IssueCompleted{}, coupon.WrapIssueError(coupon.KindSerializationFailure, err,
				"coupon issue kept conflicting. user_id: %d, coupon_id: %d", userID, couponID)
		}
		return event.IssueCompleted{}, err
	}

	return completed, nil
}

func (u *issueUseCaseImpl) IssueSync(ctx context.Context, couponID, userID int64) error {
	var completed event.IssueCompleted

	err := u.locker.Execute(ctx, lockKey(couponID), u.lockWait, u.lockLease, func(ctx context.Context) error {
		var err error
		completed, err = u.Issue(ctx, couponID, userID)
		return err
	})
	if err != nil {
		if errs.Is(err, redisstore.ErrLockNotAcquired) {
			return coupon.WrapIssueError(coupon.KindLockNotAcquired, err,
				"coupon issue lock busy. coupon_id: %d", couponID)
		}
		return err
	}

	u.publisher.Publish(ctx, completed)

	if err := u.marker.MarkIssued(ctx, couponID, userID); err != nil {
		slog.Warn("failed to mark synchronous issuance in admission set",
			"coupon_id", couponID,
			"user_id", userID,
			"error", err)
	}

	slog.Info("coupon issued",
		"coupon_id", couponID,
		"user_id", userID,
		"path", "sync")
	return nil
}

func lockKey(couponID int64) string {
	return "lock_" + strconv.FormatInt(couponID, 10)
}
