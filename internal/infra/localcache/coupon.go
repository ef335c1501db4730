package localcache

import (
	"time"

	"coupon-issuer/internal/usecase/readmodel"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// CouponLocalCache is the per-process tier: bounded LRU with a fixed TTL per entry.
type CouponLocalCache struct {
	lru *expirable.LRU[int64, *readmodel.CouponCacheEntry]
}

func NewCouponLocalCache(size int, ttl time.Duration) *CouponLocalCache {
	return &CouponLocalCache{
		lru: expirable.NewLRU[int64, *readmodel.CouponCacheEntry](size, nil, ttl),
	}
}

func (c *CouponLocalCache) Get(couponID int64) (*readmodel.CouponCacheEntry, bool) {
	return c.lru.Get(couponID)
}

func (c *CouponLocalCache) Set(entry *readmodel.CouponCacheEntry) {
	c.lru.Add(entry.ID, entry)
}

func (c *CouponLocalCache) Remove(couponID int64) {
	c.lru.Remove(couponID)
}

func (c *CouponLocalCache) Len() int {
	return c.lru.Len()
}
