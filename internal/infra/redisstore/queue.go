package redisstore

import (
	"context"
	"encoding/json"
	"errors"

	"coupon-issuer/internal/domain/coupon"
	"coupon-issuer/internal/pkg/errs"

	"github.com/redis/go-redis/v9"
)

// IssueRequest is the queue payload. Field names are part of the wire contract.
type IssueRequest struct {
	CouponID int64 `json:"couponId"`
	UserID   int64 `json:"userId"`
}

func (r IssueRequest) Encode() (string, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return "", errs.Wrap(err, "failed to encode issue request")
	}
	return string(b), nil
}

// DecodeIssueRequest rejects anything that is not a well-formed request with positive ids.
func DecodeIssueRequest(raw string) (IssueRequest, error) {
	var req IssueRequest
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		return IssueRequest{}, coupon.WrapIssueError(coupon.KindInvalidIssuePayload, err, "malformed issue request payload: %q", raw)
	}
	if req.CouponID <= 0 || req.UserID <= 0 {
		return IssueRequest{}, coupon.NewIssueError(coupon.KindInvalidIssuePayload, "issue request payload missing ids: %q", raw)
	}
	return req, nil
}

// RequestQueue is a FIFO of raw issue request payloads. Consumers Peek, process, then Pop,
// so a crash between processing and Pop replays the head.
type RequestQueue struct {
	rdb *redis.Client
	key string
}

func NewRequestQueue(rdb *redis.Client) *RequestQueue {
	return &RequestQueue{
		rdb: rdb,
		key: issueQueueKey,
	}
}

func (q *RequestQueue) Push(ctx context.Context, req IssueRequest) error {
	payload, err := req.Encode()
	if err != nil {
		return err
	}
	if err := q.rdb.RPush(ctx, q.key, payload).Err(); err != nil {
		return errs.Wrap(err, "failed to push issue request")
	}
	return nil
}

// Peek returns the head without removing it. ok is false when the queue is empty.
func (q *RequestQueue) Peek(ctx context.Context) (string, bool, error) {
	raw, err := q.rdb.LIndex(ctx, q.key, 0).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, errs.Wrap(err, "failed to peek issue queue")
	}
	return raw, true, nil
}

func (q *RequestQueue) Pop(ctx context.Context) error {
	if err := q.rdb.LPop(ctx, q.key).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return errs.Wrap(err, "failed to pop issue queue")
	}
	return nil
}

func (q *RequestQueue) Len(ctx context.Context) (int64, error) {
	n, err := q.rdb.LLen(ctx, q.key).Result()
	if err != nil {
		return 0, errs.Wrap(err, "failed to read issue queue length")
	}
	return n, nil
}
