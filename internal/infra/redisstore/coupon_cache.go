package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"coupon-issuer/internal/pkg/errs"
	"coupon-issuer/internal/usecase/readmodel"

	"github.com/redis/go-redis/v9"
)

// CouponCacheStore is the shared cache tier: JSON entries with a fixed TTL.
type CouponCacheStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewCouponCacheStore(rdb *redis.Client, ttl time.Duration) *CouponCacheStore {
	return &CouponCacheStore{
		rdb: rdb,
		ttl: ttl,
	}
}

// Get reports ok=false on a miss.
func (s *CouponCacheStore) Get(ctx context.Context, couponID int64) (*readmodel.CouponCacheEntry, bool, error) {
	raw, err := s.rdb.Get(ctx, couponCacheKey(couponID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, errs.Wrapf(err, "failed to read cached coupon %d", couponID)
	}

	var entry readmodel.CouponCacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, false, errs.Wrapf(err, "failed to decode cached coupon %d", couponID)
	}
	return &entry, true, nil
}

func (s *CouponCacheStore) Set(ctx context.Context, entry *readmodel.CouponCacheEntry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return errs.Wrapf(err, "failed to encode coupon %d", entry.ID)
	}
	if err := s.rdb.Set(ctx, couponCacheKey(entry.ID), raw, s.ttl).Err(); err != nil {
		return errs.Wrapf(err, "failed to cache coupon %d", entry.ID)
	}
	return nil
}

func (s *CouponCacheStore) Delete(ctx context.Context, couponID int64) error {
	if err := s.rdb.Del(ctx, couponCacheKey(couponID)).Err(); err != nil {
		return errs.Wrapf(err, "failed to evict cached coupon %d", couponID)
	}
	return nil
}
