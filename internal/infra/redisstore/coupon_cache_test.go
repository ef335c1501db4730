//go:build unit

package redisstore

import (
	"context"
	"testing"
	"time"

	"coupon-issuer/internal/usecase/readmodel"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCouponCacheStore(t *testing.T) {
	ctx := context.Background()
	total := 30
	entry := &readmodel.CouponCacheEntry{
		ID:             12,
		Title:          "weekend",
		CouponType:     "FIRST_COME_FIRST_SERVED",
		TotalQuantity:  &total,
		DiscountAmount: 500,
		DateIssueStart: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		DateIssueEnd:   time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC),
	}

	t.Run("round trip with ttl", func(t *testing.T) {
		mr, rdb := newTestRedis(t)
		store := NewCouponCacheStore(rdb, 30*time.Minute)

		require.NoError(t, store.Set(ctx, entry))
		assert.Equal(t, 30*time.Minute, mr.TTL(couponCacheKey(12)))

		got, ok, err := store.Get(ctx, 12)
		require.NoError(t, err)
		require.True(t, ok)
		if diff := cmp.Diff(entry, got); diff != "" {
			t.Errorf("cached entry mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("miss", func(t *testing.T) {
		_, rdb := newTestRedis(t)
		store := NewCouponCacheStore(rdb, time.Minute)

		got, ok, err := store.Get(ctx, 99)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, got)
	})

	t.Run("expired entry is a miss", func(t *testing.T) {
		mr, rdb := newTestRedis(t)
		store := NewCouponCacheStore(rdb, time.Minute)
		require.NoError(t, store.Set(ctx, entry))

		mr.FastForward(2 * time.Minute)

		_, ok, err := store.Get(ctx, 12)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("corrupt entry", func(t *testing.T) {
		mr, rdb := newTestRedis(t)
		store := NewCouponCacheStore(rdb, time.Minute)
		require.NoError(t, mr.Set(couponCacheKey(12), "{not json"))

		_, _, err := store.Get(ctx, 12)
		assert.Error(t, err)
	})

	t.Run("delete", func(t *testing.T) {
		mr, rdb := newTestRedis(t)
		store := NewCouponCacheStore(rdb, time.Minute)
		require.NoError(t, store.Set(ctx, entry))

		require.NoError(t, store.Delete(ctx, 12))
		assert.False(t, mr.Exists(couponCacheKey(12)))
	})
}
