package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"coupon-issuer/internal/domain/coupon"
	"coupon-issuer/internal/infra/redisstore"
	"coupon-issuer/internal/pkg/clock"
	"coupon-issuer/internal/pkg/config"
	"coupon-issuer/internal/pkg/errs"
	"coupon-issuer/internal/usecase/event"
)

type Queue interface {
	Peek(ctx context.Context) (string, bool, error)
	Pop(ctx context.Context) error
}

type Issuer interface {
	Issue(ctx context.Context, couponID, userID int64) (event.IssueCompleted, error)
}

type AdmissionReleaser interface {
	Release(ctx context.Context, couponID, userID int64) error
}

type Publisher interface {
	Publish(ctx context.Context, ev event.IssueCompleted)
}

// FulfillmentWorker drains the request queue in order. It must be the only consumer:
// peek-then-pop is not safe with concurrent drainers.
type FulfillmentWorker struct {
	queue       Queue
	issuer      Issuer
	releaser    AdmissionReleaser
	publisher   Publisher
	clock       clock.Clock
	interval    time.Duration
	maxAttempts int
	backoffMax  time.Duration

	// owned by the draining goroutine
	head headState

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// headState tracks unsettled attempts on the current queue head.
type headState struct {
	raw      string
	attempts int
	retryAt  time.Time
}

func NewFulfillmentWorker(
	queue Queue,
	issuer Issuer,
	releaser AdmissionReleaser,
	publisher Publisher,
	clk clock.Clock,
	cfg config.IssueConfig,
) *FulfillmentWorker {
	maxAttempts := cfg.WorkerMaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &FulfillmentWorker{
		queue:       queue,
		issuer:      issuer,
		releaser:    releaser,
		publisher:   publisher,
		clock:       clk,
		interval:    cfg.WorkerPollInterval,
		maxAttempts: maxAttempts,
		backoffMax:  cfg.WorkerRetryBackoffMax,
	}
}

// Start is a no-op if the worker is already running.
func (w *FulfillmentWorker) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.done = make(chan struct{})

	go w.run(ctx, w.done)
	slog.Info("fulfillment worker started", "interval", w.interval)
}

// Stop waits for the in-flight request, if any, to finish.
func (w *FulfillmentWorker) Stop() {
	w.mu.Lock()
	cancel, done := w.cancel, w.done
	w.cancel, w.done = nil, nil
	w.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	slog.Info("fulfillment worker stopped")
}

func (w *FulfillmentWorker) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := w.DrainOnce(ctx); err != nil && ctx.Err() == nil {
				slog.Error("fulfillment cycle aborted", "error", err)
			}
		}
	}
}

// DrainOnce processes queued requests until the queue is empty or a request cannot be
// settled. An unsettled head stays queued and is retried once its backoff elapses;
// after WorkerMaxAttempts failures it is dropped and its admission released.
func (w *FulfillmentWorker) DrainOnce(ctx context.Context) (int, error) {
	processed := 0
	for {
		if err := ctx.Err(); err != nil {
			return processed, err
		}

		raw, ok, err := w.queue.Peek(ctx)
		if err != nil {
			return processed, err
		}
		if !ok {
			return processed, nil
		}
		if raw == w.head.raw && w.clock.Now().Before(w.head.retryAt) {
			return processed, nil
		}

		if err := w.handle(ctx, raw); err != nil {
			if ctx.Err() != nil {
				return processed, err
			}
			if !w.exhausted(ctx, raw, err) {
				return processed, err
			}
		}
		w.head = headState{}
		if err := w.queue.Pop(ctx); err != nil {
			return processed, err
		}
		processed++
	}
}

// exhausted records a failed attempt on the head. It reports true, after releasing
// the admission, once the head has used up its attempts and must be dropped.
func (w *FulfillmentWorker) exhausted(ctx context.Context, raw string, cause error) bool {
	if w.head.raw != raw {
		w.head = headState{raw: raw}
	}
	w.head.attempts++

	req, _ := redisstore.DecodeIssueRequest(raw)
	if w.head.attempts < w.maxAttempts {
		delay := w.backoff(w.head.attempts)
		w.head.retryAt = w.clock.Now().Add(delay)
		slog.Warn("issue request failed, keeping head",
			"coupon_id", req.CouponID,
			"user_id", req.UserID,
			"attempt", w.head.attempts,
			"retry_in", delay,
			"error", cause)
		return false
	}

	slog.Error("issue request dropped after attempts",
		"coupon_id", req.CouponID,
		"user_id", req.UserID,
		"attempts", w.head.attempts,
		"kind", coupon.KindOf(cause),
		"error", cause)
	w.release(ctx, req)
	return true
}

// backoff doubles the poll interval per failed attempt, capped at backoffMax.
func (w *FulfillmentWorker) backoff(attempt int) time.Duration {
	d := w.interval
	for i := 1; i < attempt && (w.backoffMax <= 0 || d < w.backoffMax); i++ {
		d *= 2
	}
	if w.backoffMax > 0 && d > w.backoffMax {
		d = w.backoffMax
	}
	return d
}

func (w *FulfillmentWorker) release(ctx context.Context, req redisstore.IssueRequest) {
	if err := w.releaser.Release(ctx, req.CouponID, req.UserID); err != nil {
		slog.Error("failed to release admission",
			"coupon_id", req.CouponID,
			"user_id", req.UserID,
			"error", err)
	}
}

// handle returns an error only when the request must stay at the head of the queue.
func (w *FulfillmentWorker) handle(ctx context.Context, raw string) error {
	req, err := redisstore.DecodeIssueRequest(raw)
	if err != nil {
		slog.Error("dropping malformed issue request",
			"kind", coupon.KindOf(err),
			"payload", raw,
			"error", err)
		return nil
	}

	slog.Debug("issue request start", "coupon_id", req.CouponID, "user_id", req.UserID)

	completed, err := w.issuer.Issue(ctx, req.CouponID, req.UserID)
	if err == nil {
		w.publisher.Publish(ctx, completed)
		slog.Info("issue request complete",
			"coupon_id", req.CouponID,
			"user_id", req.UserID,
			"exhausted", completed.Exhausted)
		return nil
	}

	kind := coupon.KindOf(err)
	switch {
	case kind.Terminal():
		slog.Warn("issue request rejected",
			"coupon_id", req.CouponID,
			"user_id", req.UserID,
			"kind", kind,
			"detail", coupon.DetailOf(err))
		return nil
	case errs.Is(err, coupon.ErrSerializationFailure):
		slog.Error("issue request dropped after retries",
			"coupon_id", req.CouponID,
			"user_id", req.UserID,
			"kind", kind,
			"error", err)
		w.release(ctx, req)
		return nil
	default:
		return err
	}
}
