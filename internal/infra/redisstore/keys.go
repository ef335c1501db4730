package redisstore

import "strconv"

// Keys are not hash-tagged; the admission script touches two keys, so the
// deployment target is a standalone Redis (or a single-shard setup).
const (
	issueQueueKey        = "coupon:issue:queue"
	issueRequestKeyStem  = "coupon:issue:request:couponId="
	couponCacheKeyPrefix = "coupon:cache:"
)

func issueRequestKey(couponID int64) string {
	return issueRequestKeyStem + strconv.FormatInt(couponID, 10)
}

func couponCacheKey(couponID int64) string {
	return couponCacheKeyPrefix + strconv.FormatInt(couponID, 10)
}
