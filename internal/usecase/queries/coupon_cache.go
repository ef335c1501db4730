package queries

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"coupon-issuer/internal/domain/coupon"
	"coupon-issuer/internal/infra"
	"coupon-issuer/internal/pkg/errs"
	"coupon-issuer/internal/usecase/event"
	"coupon-issuer/internal/usecase/readmodel"
	"coupon-issuer/internal/usecase/shared"

	"github.com/jinzhu/copier"
	"golang.org/x/sync/singleflight"
)

// defaultLoadTimeout bounds a coalesced load, which no single caller can cancel.
const defaultLoadTimeout = 5 * time.Second

type LocalCouponTier interface {
	Get(couponID int64) (*readmodel.CouponCacheEntry, bool)
	Set(entry *readmodel.CouponCacheEntry)
	Remove(couponID int64)
}

type SharedCouponTier interface {
	Get(ctx context.Context, couponID int64) (*readmodel.CouponCacheEntry, bool, error)
	Set(ctx context.Context, entry *readmodel.CouponCacheEntry) error
	Delete(ctx context.Context, couponID int64) error
}

type CouponSource interface {
	CouponByID(ctx context.Context, id int64) (*shared.CouponSnapshot, error)
}

// CouponCache reads through local -> shared -> durable store. Entries are advisory;
// nothing here is consulted by the authoritative issuance path.
type CouponCache struct {
	local  LocalCouponTier
	shared SharedCouponTier
	source CouponSource
	group  singleflight.Group

	loadTimeout time.Duration
}

func NewCouponCache(local LocalCouponTier, sharedTier SharedCouponTier, source CouponSource) *CouponCache {
	return &CouponCache{
		local:  local,
		shared: sharedTier,
		source: source,

		loadTimeout: defaultLoadTimeout,
	}
}

// Get coalesces concurrent misses for the same coupon into one load. The load runs
// detached from the caller that started it, so its cancellation does not fail the waiters.
func (c *CouponCache) Get(ctx context.Context, couponID int64) (*readmodel.CouponCacheEntry, error) {
	if entry, ok := c.local.Get(couponID); ok {
		return entry, nil
	}

	v, err, _ := c.group.Do(strconv.FormatInt(couponID, 10), func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.loadTimeout)
		defer cancel()

		entry, ok, err := c.shared.Get(ctx, couponID)
		if err != nil {
			slog.Warn("shared coupon cache unavailable, falling back to store",
				"coupon_id", couponID,
				"error", err)
		}
		if ok {
			c.local.Set(entry)
			return entry, nil
		}

		entry, err = c.load(ctx, couponID)
		if err != nil {
			return nil, err
		}
		c.store(ctx, entry)
		return entry, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*readmodel.CouponCacheEntry), nil
}

// Refresh reloads from the durable store and overwrites both tiers.
func (c *CouponCache) Refresh(ctx context.Context, couponID int64) error {
	entry, err := c.load(ctx, couponID)
	if err != nil {
		if coupon.KindOf(err) == coupon.KindCouponNotExist {
			c.local.Remove(couponID)
			if delErr := c.shared.Delete(ctx, couponID); delErr != nil {
				slog.Warn("failed to evict shared coupon cache", "coupon_id", couponID, "error", delErr)
			}
		}
		return err
	}
	c.store(ctx, entry)
	return nil
}

func (c *CouponCache) OnIssueCompleted(ctx context.Context, ev event.IssueCompleted) error {
	return c.Refresh(ctx, ev.CouponID)
}

func (c *CouponCache) load(ctx context.Context, couponID int64) (*readmodel.CouponCacheEntry, error) {
	snapshot, err := c.source.CouponByID(ctx, couponID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, coupon.WrapIssueError(coupon.KindCouponNotExist, err, "coupon does not exist. coupon_id: %d", couponID)
		}
		if infra.IsKind(err, infra.KindInvalidData) {
			return nil, coupon.WrapIssueError(coupon.KindInvalidCoupon, err, "coupon cannot be issued. coupon_id: %d", couponID)
		}
		return nil, errs.Wrapf(err, "failed to load coupon %d", couponID)
	}
	return toCacheEntry(snapshot)
}

func (c *CouponCache) store(ctx context.Context, entry *readmodel.CouponCacheEntry) {
	if err := c.shared.Set(ctx, entry); err != nil {
		slog.Warn("failed to populate shared coupon cache",
			"coupon_id", entry.ID,
			"error", err)
	}
	c.local.Set(entry)
}

func toCacheEntry(s *shared.CouponSnapshot) (*readmodel.CouponCacheEntry, error) {
	entry := &readmodel.CouponCacheEntry{}
	if err := copier.CopyWithOption(entry, s, copier.Option{DeepCopy: true}); err != nil {
		return nil, errs.Wrapf(err, "failed to map coupon %d", s.ID)
	}
	entry.Exhausted = s.TotalQuantity != nil && s.IssuedQuantity >= *s.TotalQuantity
	return entry, nil
}
