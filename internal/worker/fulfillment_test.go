//go:build unit

package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"coupon-issuer/internal/domain/coupon"
	"coupon-issuer/internal/infra"
	"coupon-issuer/internal/infra/redisstore"
	"coupon-issuer/internal/pkg/clock"
	"coupon-issuer/internal/pkg/config"
	"coupon-issuer/internal/usecase/commands"
	"coupon-issuer/internal/usecase/event"
	"coupon-issuer/tests/common/builder"
	"coupon-issuer/tests/common/uowtest"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

var windowStart = time.Date(2026, 10, 1, 10, 0, 0, 0, time.UTC)

// failingPopQueue simulates a crash between commit and removal of the head.
type failingPopQueue struct {
	*redisstore.RequestQueue
	failOnPop int32
	pops      atomic.Int32
}

func (q *failingPopQueue) Pop(ctx context.Context) error {
	if q.pops.Add(1) == q.failOnPop {
		return assert.AnError
	}
	return q.RequestQueue.Pop(ctx)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []event.IssueCompleted
}

func (p *recordingPublisher) Publish(_ context.Context, ev event.IssueCompleted) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

type stubIssuer struct {
	err error
}

func (s stubIssuer) Issue(context.Context, int64, int64) (event.IssueCompleted, error) {
	return event.IssueCompleted{}, s.err
}

type countingIssuer struct {
	err   error
	calls atomic.Int32
}

func (s *countingIssuer) Issue(context.Context, int64, int64) (event.IssueCompleted, error) {
	s.calls.Add(1)
	return event.IssueCompleted{}, s.err
}

// failingCouponIssuer fails every request for couponID and delegates the rest.
type failingCouponIssuer struct {
	commands.IssueCommands
	couponID int64
	err      error
	calls    atomic.Int32
}

func (s *failingCouponIssuer) Issue(ctx context.Context, couponID, userID int64) (event.IssueCompleted, error) {
	if couponID == s.couponID {
		s.calls.Add(1)
		return event.IssueCompleted{}, s.err
	}
	return s.IssueCommands.Issue(ctx, couponID, userID)
}

type FulfillmentWorkerTestSuite struct {
	suite.Suite
	ctx       context.Context
	mr        *miniredis.Miniredis
	rdb       *redis.Client
	gate      *redisstore.AdmissionGate
	queue     *redisstore.RequestQueue
	uow       *uowtest.MemoryUoW
	clock     *clock.MockClock
	issuer    commands.IssueCommands
	publisher *recordingPublisher
	cfg       config.IssueConfig
}

func TestFulfillmentWorkerTestSuite(t *testing.T) {
	suite.Run(t, new(FulfillmentWorkerTestSuite))
}

func (s *FulfillmentWorkerTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.mr = miniredis.RunT(s.T())
	s.rdb = redis.NewClient(&redis.Options{Addr: s.mr.Addr()})
	s.T().Cleanup(func() { _ = s.rdb.Close() })
	s.gate = redisstore.NewAdmissionGate(s.rdb)
	s.queue = redisstore.NewRequestQueue(s.rdb)
	s.uow = uowtest.NewMemoryUoW(3)
	s.clock = clock.NewMockClock(windowStart.Add(time.Minute))
	s.publisher = &recordingPublisher{}
	s.cfg = config.NewTestConfig().Issue
	s.cfg.WorkerPollInterval = 10 * time.Millisecond
	s.issuer = commands.NewIssueUseCase(s.uow, redisstore.NewLocker(s.rdb), s.gate, s.publisher, s.clock, s.cfg)
}

func (s *FulfillmentWorkerTestSuite) seed(total int) {
	c, err := builder.NewCouponBuilder().
		WithID(1).
		WithTotal(total).
		WithWindow(windowStart, windowStart.Add(time.Hour)).
		BuildDomain()
	s.Require().NoError(err)
	s.uow.PutCoupon(c)
}

func (s *FulfillmentWorkerTestSuite) admit(users ...int64) {
	for _, u := range users {
		status, err := s.gate.Admit(s.ctx, 1, u, 100)
		s.Require().NoError(err)
		s.Require().Equal(redisstore.AdmitAdmitted, status)
	}
}

func (s *FulfillmentWorkerTestSuite) newWorker(q Queue) *FulfillmentWorker {
	return NewFulfillmentWorker(q, s.issuer, s.gate, s.publisher, s.clock, s.cfg)
}

func (s *FulfillmentWorkerTestSuite) queueLen() int64 {
	n, err := s.queue.Len(s.ctx)
	s.Require().NoError(err)
	return n
}

func (s *FulfillmentWorkerTestSuite) TestDrainOnce_PreservesOrder() {
	s.seed(10)
	s.admit(3, 1, 2)

	processed, err := s.newWorker(s.queue).DrainOnce(s.ctx)

	s.Require().NoError(err)
	s.Equal(3, processed)
	s.Equal([]int64{3, 1, 2}, s.uow.IssuedUsers(1))
	s.Equal(3, s.publisher.count())
	s.Zero(s.queueLen())
}

func (s *FulfillmentWorkerTestSuite) TestDrainOnce_RestartMidDrain() {
	s.seed(10)
	s.admit(1, 2, 3)
	crashing := &failingPopQueue{RequestQueue: s.queue, failOnPop: 2}

	processed, err := s.newWorker(crashing).DrainOnce(s.ctx)
	s.Require().Error(err)
	s.Equal(1, processed)
	s.Equal(int64(2), s.queueLen(), "second request committed but still queued")

	processed, err = s.newWorker(s.queue).DrainOnce(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, processed)

	s.Equal([]int64{1, 2, 3}, s.uow.IssuedUsers(1))
	s.Equal(3, s.uow.IssuedQuantity(1), "replayed request committed once")
	s.Zero(s.queueLen())
}

func (s *FulfillmentWorkerTestSuite) TestDrainOnce_DropsMalformedPayload() {
	s.seed(10)
	s.Require().NoError(s.rdb.RPush(s.ctx, "coupon:issue:queue", "not-json").Err())
	s.admit(7)

	processed, err := s.newWorker(s.queue).DrainOnce(s.ctx)

	s.Require().NoError(err)
	s.Equal(2, processed)
	s.Equal([]int64{7}, s.uow.IssuedUsers(1))
}

func (s *FulfillmentWorkerTestSuite) TestDrainOnce_TerminalRejectionsArePopped() {
	s.seed(1)
	s.admit(1, 2, 3)

	processed, err := s.newWorker(s.queue).DrainOnce(s.ctx)

	s.Require().NoError(err)
	s.Equal(3, processed)
	s.Equal([]int64{1}, s.uow.IssuedUsers(1))
	s.Equal(1, s.publisher.count())
	s.Zero(s.queueLen())
}

func (s *FulfillmentWorkerTestSuite) TestDrainOnce_WindowClosedAfterAdmission() {
	s.seed(10)
	s.admit(1)
	s.clock.Set(windowStart.Add(2 * time.Hour))

	_, err := s.newWorker(s.queue).DrainOnce(s.ctx)

	s.Require().NoError(err)
	s.Empty(s.uow.IssuedUsers(1))
	s.Zero(s.publisher.count())
	s.Zero(s.queueLen())
}

func (s *FulfillmentWorkerTestSuite) TestDrainOnce_RetriesExhaustedReleasesAdmission() {
	s.seed(10)
	s.admit(1)
	s.uow.Conflicts = 100

	_, err := s.newWorker(s.queue).DrainOnce(s.ctx)

	s.Require().NoError(err)
	s.Zero(s.queueLen())
	n, err := s.gate.AdmittedCount(s.ctx, 1)
	s.Require().NoError(err)
	s.Zero(n, "user may retry after an infrastructure drop")
}

func (s *FulfillmentWorkerTestSuite) TestDrainOnce_InfraFailureKeepsHead() {
	s.admit(1, 2)
	w := NewFulfillmentWorker(s.queue, stubIssuer{err: assert.AnError}, s.gate, s.publisher, s.clock, s.cfg)

	processed, err := w.DrainOnce(s.ctx)

	s.Require().ErrorIs(err, assert.AnError)
	s.Zero(processed)
	s.Equal(int64(2), s.queueLen())
	s.Equal(1, w.head.attempts)
}

func (s *FulfillmentWorkerTestSuite) TestDrainOnce_BackoffDefersRetry() {
	s.admit(1)
	issuer := &countingIssuer{err: assert.AnError}
	w := NewFulfillmentWorker(s.queue, issuer, s.gate, s.publisher, s.clock, s.cfg)

	_, err := w.DrainOnce(s.ctx)
	s.Require().Error(err)

	processed, err := w.DrainOnce(s.ctx)
	s.Require().NoError(err, "head inside its backoff is left alone")
	s.Zero(processed)
	s.Equal(int32(1), issuer.calls.Load())

	s.clock.Add(s.cfg.WorkerPollInterval)
	_, err = w.DrainOnce(s.ctx)
	s.Require().Error(err)
	s.Equal(int32(2), issuer.calls.Load())
	s.Equal(2, w.head.attempts)
	s.Equal(s.clock.Now().Add(2*s.cfg.WorkerPollInterval), w.head.retryAt)
}

func (s *FulfillmentWorkerTestSuite) TestDrainOnce_UnclassifiedHeadFailureDoesNotBlockQueue() {
	s.seed(10)
	c, err := builder.NewCouponBuilder().
		WithID(2).
		WithTotal(10).
		WithWindow(windowStart, windowStart.Add(time.Hour)).
		BuildDomain()
	s.Require().NoError(err)
	s.uow.PutCoupon(c)

	s.admit(99)
	behind := []int64{11, 12, 13, 14, 15}
	for _, u := range behind {
		status, err := s.gate.Admit(s.ctx, 2, u, 100)
		s.Require().NoError(err)
		s.Require().Equal(redisstore.AdmitAdmitted, status)
	}

	badRow := infra.WrapRepoErr("failed to convert coupon row", coupon.ErrInvalidCouponType)
	issuer := &failingCouponIssuer{IssueCommands: s.issuer, couponID: 1, err: badRow}
	w := NewFulfillmentWorker(s.queue, issuer, s.gate, s.publisher, s.clock, s.cfg)

	total := 0
	for i := 0; i < s.cfg.WorkerMaxAttempts; i++ {
		processed, err := w.DrainOnce(s.ctx)
		total += processed
		if i < s.cfg.WorkerMaxAttempts-1 {
			s.Require().ErrorIs(err, coupon.ErrInvalidCouponType)
			s.Empty(s.uow.IssuedUsers(2), "requests behind an unsettled head wait")
		} else {
			s.Require().NoError(err)
		}
		s.clock.Add(s.cfg.WorkerRetryBackoffMax)
	}

	s.Equal(6, total)
	s.Equal(int32(s.cfg.WorkerMaxAttempts), issuer.calls.Load())
	s.Equal(behind, s.uow.IssuedUsers(2))
	s.Empty(s.uow.IssuedUsers(1))
	s.Zero(s.queueLen())
	n, err := s.gate.AdmittedCount(s.ctx, 1)
	s.Require().NoError(err)
	s.Zero(n, "dropped head releases its admission")
}

func (s *FulfillmentWorkerTestSuite) TestDrainOnce_InvalidCouponRowIsTerminal() {
	s.uow.PutCouponParams(coupon.Params{
		ID:             1,
		Title:          "broken",
		CouponType:     "LOTTERY",
		DateIssueStart: windowStart,
		DateIssueEnd:   windowStart.Add(time.Hour),
	})
	s.admit(1, 2)

	processed, err := s.newWorker(s.queue).DrainOnce(s.ctx)

	s.Require().NoError(err)
	s.Equal(2, processed)
	s.Zero(s.queueLen())
	s.Empty(s.uow.IssuedUsers(1))
}

func (s *FulfillmentWorkerTestSuite) TestDrainOnce_EmptyQueue() {
	processed, err := s.newWorker(s.queue).DrainOnce(s.ctx)

	s.Require().NoError(err)
	s.Zero(processed)
}

func (s *FulfillmentWorkerTestSuite) TestStartStop() {
	s.seed(10)
	w := s.newWorker(s.queue)
	w.Start(s.ctx)
	w.Start(s.ctx)
	defer w.Stop()

	s.admit(1, 2)

	s.Eventually(func() bool { return s.uow.IssuanceCount(1) == 2 }, 2*time.Second, 10*time.Millisecond)
	w.Stop()
	w.Stop()

	s.admit(3)
	time.Sleep(50 * time.Millisecond)
	s.Equal(2, s.uow.IssuanceCount(1), "stopped worker does not drain")
}

func TestNewFulfillmentWorker(t *testing.T) {
	cfg := config.NewTestConfig().Issue
	w := NewFulfillmentWorker(nil, nil, nil, nil, clock.NewRealClock(), cfg)
	require.NotNil(t, w)
	assert.Equal(t, cfg.WorkerPollInterval, w.interval)
	assert.Equal(t, cfg.WorkerMaxAttempts, w.maxAttempts)

	cfg.WorkerMaxAttempts = 0
	w = NewFulfillmentWorker(nil, nil, nil, nil, clock.NewRealClock(), cfg)
	assert.Equal(t, 1, w.maxAttempts)
}

func TestFulfillmentWorker_Backoff(t *testing.T) {
	w := &FulfillmentWorker{interval: 100 * time.Millisecond, backoffMax: time.Second}

	assert.Equal(t, 100*time.Millisecond, w.backoff(1))
	assert.Equal(t, 200*time.Millisecond, w.backoff(2))
	assert.Equal(t, 800*time.Millisecond, w.backoff(4))
	assert.Equal(t, time.Second, w.backoff(5))
	assert.Equal(t, time.Second, w.backoff(50))
}
