//go:build unit

package commands

import (
	"context"
	"sync"
	"testing"
	"time"

	"coupon-issuer/internal/domain/coupon"
	"coupon-issuer/internal/infra/localcache"
	"coupon-issuer/internal/infra/redisstore"
	"coupon-issuer/internal/pkg/clock"
	"coupon-issuer/internal/pkg/config"
	"coupon-issuer/internal/usecase/event"
	"coupon-issuer/internal/usecase/queries"
	"coupon-issuer/tests/common/builder"
	"coupon-issuer/tests/common/uowtest"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

var windowStart = time.Date(2026, 10, 1, 10, 0, 0, 0, time.UTC)

type IssueUseCaseTestSuite struct {
	suite.Suite
	ctx       context.Context
	uow       *uowtest.MemoryUoW
	clock     *clock.MockClock
	mr        *miniredis.Miniredis
	rdb       *redis.Client
	gate      *redisstore.AdmissionGate
	bus       *event.Bus
	published []event.IssueCompleted
	mu        sync.Mutex
	useCase   IssueCommands
}

func TestIssueUseCaseTestSuite(t *testing.T) {
	suite.Run(t, new(IssueUseCaseTestSuite))
}

func (s *IssueUseCaseTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.uow = uowtest.NewMemoryUoW(3)
	s.clock = clock.NewMockClock(windowStart.Add(time.Minute))
	s.mr = miniredis.RunT(s.T())
	s.rdb = redis.NewClient(&redis.Options{Addr: s.mr.Addr()})
	s.T().Cleanup(func() { _ = s.rdb.Close() })
	s.gate = redisstore.NewAdmissionGate(s.rdb)
	s.bus = event.NewBus()
	s.published = nil
	s.bus.Subscribe("recorder", func(_ context.Context, ev event.IssueCompleted) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.published = append(s.published, ev)
		return nil
	})

	cfg := config.NewTestConfig().Issue
	cfg.LockWait = 150 * time.Millisecond
	s.useCase = NewIssueUseCase(s.uow, redisstore.NewLocker(s.rdb), s.gate, s.bus, s.clock, cfg)
}

func (s *IssueUseCaseTestSuite) seed(mutate func(*builder.CouponBuilder)) {
	c, err := builder.NewCouponBuilder().
		WithID(1).
		WithWindow(windowStart, windowStart.Add(time.Hour)).
		With(mutate).
		BuildDomain()
	s.Require().NoError(err)
	s.uow.PutCoupon(c)
}

func (s *IssueUseCaseTestSuite) TestIssue_Success() {
	s.seed(func(b *builder.CouponBuilder) { b.WithTotal(2) })

	ev, err := s.useCase.Issue(s.ctx, 1, 42)

	s.Require().NoError(err)
	s.Equal(event.IssueCompleted{CouponID: 1, UserID: 42, Exhausted: false}, ev)
	s.Equal(1, s.uow.IssuedQuantity(1))
	s.True(s.uow.HasIssuance(1, 42))
	s.Empty(s.published, "authoritative issue leaves publishing to the caller")
}

func (s *IssueUseCaseTestSuite) TestIssue_LastUnitReportsExhausted() {
	s.seed(func(b *builder.CouponBuilder) { b.WithTotal(1) })

	ev, err := s.useCase.Issue(s.ctx, 1, 42)

	s.Require().NoError(err)
	s.True(ev.Exhausted)
}

func (s *IssueUseCaseTestSuite) TestIssue_Rejections() {
	tests := []struct {
		name     string
		mutate   func(*builder.CouponBuilder)
		couponID int64
		now      time.Time
		wantKind coupon.ErrorKind
	}{
		{
			name:     "unknown coupon",
			mutate:   func(b *builder.CouponBuilder) {},
			couponID: 2,
			wantKind: coupon.KindCouponNotExist,
		},
		{
			name:     "quantity exhausted",
			mutate:   func(b *builder.CouponBuilder) { b.WithTotal(5).WithIssued(5) },
			couponID: 1,
			wantKind: coupon.KindInvalidIssueQuantity,
		},
		{
			name:     "window closed before commit",
			mutate:   func(b *builder.CouponBuilder) { b.WithTotal(5) },
			couponID: 1,
			now:      windowStart.Add(time.Hour),
			wantKind: coupon.KindInvalidIssueDate,
		},
		{
			name:     "window not yet open",
			mutate:   func(b *builder.CouponBuilder) { b.WithTotal(5) },
			couponID: 1,
			now:      windowStart.Add(-time.Second),
			wantKind: coupon.KindInvalidIssueDate,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.SetupTest()
			s.seed(tt.mutate)
			if !tt.now.IsZero() {
				s.clock.Set(tt.now)
			}
			before := s.uow.IssuedQuantity(1)

			_, err := s.useCase.Issue(s.ctx, tt.couponID, 42)

			s.Require().Error(err)
			s.Equal(tt.wantKind, coupon.KindOf(err))
			s.Equal(before, s.uow.IssuedQuantity(1), "rejected issue leaves the counter untouched")
			s.False(s.uow.HasIssuance(tt.couponID, 42))
		})
	}
}

func (s *IssueUseCaseTestSuite) TestIssue_InvalidCouponRow() {
	s.uow.PutCouponParams(coupon.Params{
		ID:             9,
		Title:          "broken",
		CouponType:     "LOTTERY",
		DateIssueStart: s.clock.Now().Add(-time.Minute),
		DateIssueEnd:   s.clock.Now().Add(time.Hour),
	})

	_, err := s.useCase.Issue(s.ctx, 9, 42)

	s.Require().ErrorIs(err, coupon.ErrInvalidCoupon)
	s.False(s.uow.HasIssuance(9, 42))
}

func (s *IssueUseCaseTestSuite) TestIssue_ReplayIsNoOp() {
	s.seed(func(b *builder.CouponBuilder) { b.WithTotal(10) })

	_, err := s.useCase.Issue(s.ctx, 1, 42)
	s.Require().NoError(err)

	_, err = s.useCase.Issue(s.ctx, 1, 42)

	s.Require().Error(err)
	s.Equal(coupon.KindDuplicateIssue, coupon.KindOf(err))
	s.Equal(1, s.uow.IssuedQuantity(1))
	s.Equal(1, s.uow.IssuanceCount(1))
}

func (s *IssueUseCaseTestSuite) TestIssue_StaleCacheStillRejected() {
	s.seed(func(b *builder.CouponBuilder) { b.WithTotal(1) })
	cache := queries.NewCouponCache(
		localcache.NewCouponLocalCache(10, time.Minute),
		redisstore.NewCouponCacheStore(s.rdb, time.Hour),
		s.uow.CommandReads(),
	)
	_, err := cache.Get(s.ctx, 1)
	s.Require().NoError(err)

	_, err = s.useCase.Issue(s.ctx, 1, 1)
	s.Require().NoError(err)

	entry, err := cache.Get(s.ctx, 1)
	s.Require().NoError(err)
	s.Require().NoError(entry.CheckIssuable(s.clock.Now()), "no refresh event yet")

	_, err = s.useCase.Issue(s.ctx, 1, 2)

	s.Require().Error(err)
	s.Equal(coupon.KindInvalidIssueQuantity, coupon.KindOf(err))
	s.Equal(1, s.uow.IssuedQuantity(1))
}

func (s *IssueUseCaseTestSuite) TestIssue_UniqueViolationIsDuplicate() {
	s.seed(func(b *builder.CouponBuilder) { b.WithTotal(10) })
	s.uow.ForceUniqueViolation = true

	_, err := s.useCase.Issue(s.ctx, 1, 42)

	s.Require().Error(err)
	s.Equal(coupon.KindDuplicateIssue, coupon.KindOf(err))
	s.Equal(0, s.uow.IssuedQuantity(1))
}

func (s *IssueUseCaseTestSuite) TestIssue_TransientConflictIsRetried() {
	s.seed(func(b *builder.CouponBuilder) { b.WithTotal(10) })
	s.uow.Conflicts = 2

	_, err := s.useCase.Issue(s.ctx, 1, 42)

	s.Require().NoError(err)
	s.Equal(3, s.uow.Attempts)
	s.Equal(1, s.uow.IssuedQuantity(1))
}

func (s *IssueUseCaseTestSuite) TestIssue_RetriesExhausted() {
	s.seed(func(b *builder.CouponBuilder) { b.WithTotal(10) })
	s.uow.Conflicts = 100

	_, err := s.useCase.Issue(s.ctx, 1, 42)

	s.Require().Error(err)
	s.Equal(coupon.KindSerializationFailure, coupon.KindOf(err))
	s.Equal(4, s.uow.Attempts)
	s.Equal(0, s.uow.IssuedQuantity(1))
	s.False(s.uow.HasIssuance(1, 42))
}

func (s *IssueUseCaseTestSuite) TestIssue_ConcurrentIssuersNeverExceedTotal() {
	s.seed(func(b *builder.CouponBuilder) { b.WithTotal(5) })

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
		kinds   = map[coupon.ErrorKind]int{}
	)
	for u := int64(1); u <= 30; u++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			_, err := s.useCase.Issue(s.ctx, 1, userID)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				success++
				return
			}
			kinds[coupon.KindOf(err)]++
		}(u)
	}
	wg.Wait()

	s.Equal(5, success)
	s.Equal(25, kinds[coupon.KindInvalidIssueQuantity])
	s.Equal(5, s.uow.IssuedQuantity(1))
	s.Equal(5, s.uow.IssuanceCount(1))
}

func (s *IssueUseCaseTestSuite) TestIssueSync_PublishesAndMarksAdmission() {
	s.seed(func(b *builder.CouponBuilder) { b.WithTotal(10) })

	err := s.useCase.IssueSync(s.ctx, 1, 42)

	s.Require().NoError(err)
	s.Equal([]event.IssueCompleted{{CouponID: 1, UserID: 42}}, s.published)
	status, err := s.gate.Admit(s.ctx, 1, 42, 10)
	s.Require().NoError(err)
	s.Equal(redisstore.AdmitDuplicate, status, "async path sees the synchronous issuance")
	s.False(s.mr.Exists("lock_1"), "lock released")
}

func (s *IssueUseCaseTestSuite) TestIssueSync_Rejected() {
	s.seed(func(b *builder.CouponBuilder) { b.WithTotal(1).WithIssued(1) })

	err := s.useCase.IssueSync(s.ctx, 1, 42)

	s.Require().Error(err)
	s.Equal(coupon.KindInvalidIssueQuantity, coupon.KindOf(err))
	s.Empty(s.published)
	s.False(s.mr.Exists("lock_1"), "lock released on failure")
}

func (s *IssueUseCaseTestSuite) TestIssueSync_LockBusy() {
	s.seed(func(b *builder.CouponBuilder) { b.WithTotal(10) })
	release, err := redisstore.NewLocker(s.rdb).Acquire(s.ctx, "lock_1", time.Second, 10*time.Second)
	s.Require().NoError(err)
	defer func() { _ = release(s.ctx) }()

	err = s.useCase.IssueSync(s.ctx, 1, 42)

	s.Require().Error(err)
	s.Equal(coupon.KindLockNotAcquired, coupon.KindOf(err))
	s.Equal(0, s.uow.IssuedQuantity(1))
}

func TestLockKey(t *testing.T) {
	assert.Equal(t, "lock_17", lockKey(17))
	require.NotEqual(t, lockKey(1), lockKey(11))
}
