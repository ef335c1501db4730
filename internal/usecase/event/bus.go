package event

import (
	"context"
	"log/slog"
	"sync"

	"coupon-issuer/internal/pkg/errs"
)

// IssueCompleted is published after an issuance transaction commits.
type IssueCompleted struct {
	CouponID  int64
	UserID    int64
	Exhausted bool
}

type IssueCompletedHandler func(ctx context.Context, ev IssueCompleted) error

// Bus delivers events synchronously, in subscription order, on the publisher's goroutine.
// Handler failures are logged and never reach the publisher: the transaction has already committed.
type Bus struct {
	mu       sync.RWMutex
	handlers []namedHandler
}

type namedHandler struct {
	name string
	fn   IssueCompletedHandler
}

func NewBus() *Bus {
	return &Bus{}
}

func (b *Bus) Subscribe(name string, fn IssueCompletedHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, namedHandler{name: name, fn: fn})
}

func (b *Bus) Publish(ctx context.Context, ev IssueCompleted) {
	b.mu.RLock()
	handlers := make([]namedHandler, len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()

	for _, h := range handlers {
		if err := b.dispatch(ctx, h, ev); err != nil {
			slog.Warn("issue completed handler failed",
				"handler", h.name,
				"coupon_id", ev.CouponID,
				"user_id", ev.UserID,
				"error", err)
		}
	}
}

func (b *Bus) dispatch(ctx context.Context, h namedHandler, ev IssueCompleted) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errs.Newf("handler panicked: %v", r)
		}
	}()
	return h.fn(ctx, ev)
}
