package redisstore

import (
	"context"
	"strconv"

	"coupon-issuer/internal/pkg/errs"

	"github.com/redis/go-redis/v9"
)

// KEYS[1] dedup set, KEYS[2] queue; ARGV[1] user id, ARGV[2] capacity, ARGV[3] payload.
var admitScript = redis.NewScript(`
if redis.call('SISMEMBER', KEYS[1], ARGV[1]) == 1 then
    return '2'
end

if tonumber(ARGV[2]) > redis.call('SCARD', KEYS[1]) then
    redis.call('SADD', KEYS[1], ARGV[1])
    redis.call('RPUSH', KEYS[2], ARGV[3])
    return '1'
end

return '3'
`)

type AdmitStatus int

const (
	AdmitAdmitted         AdmitStatus = 1
	AdmitDuplicate        AdmitStatus = 2
	AdmitCapacityExceeded AdmitStatus = 3
)

func (s AdmitStatus) String() string {
	switch s {
	case AdmitAdmitted:
		return "admitted"
	case AdmitDuplicate:
		return "duplicate"
	case AdmitCapacityExceeded:
		return "capacity_exceeded"
	default:
		return "unknown(" + strconv.Itoa(int(s)) + ")"
	}
}

var ErrUnexpectedAdmitResult = errs.New("unexpected admission script result")

// AdmissionGate decides admission with one server-side script: membership,
// capacity, set insert and enqueue happen atomically.
type AdmissionGate struct {
	rdb      *redis.Client
	queueKey string
}

func NewAdmissionGate(rdb *redis.Client) *AdmissionGate {
	return &AdmissionGate{
		rdb:      rdb,
		queueKey: issueQueueKey,
	}
}

// Admit never partially applies: on AdmitAdmitted the user is in the set and the
// request is enqueued, otherwise nothing changed.
func (g *AdmissionGate) Admit(ctx context.Context, couponID, userID, capacity int64) (AdmitStatus, error) {
	payload, err := IssueRequest{CouponID: couponID, UserID: userID}.Encode()
	if err != nil {
		return 0, err
	}

	keys := []string{issueRequestKey(couponID), g.queueKey}
	res, err := admitScript.Run(ctx, g.rdb, keys, strconv.FormatInt(userID, 10), strconv.FormatInt(capacity, 10), payload).Text()
	if err != nil {
		return 0, errs.Wrapf(err, "admission script failed. coupon_id: %d, user_id: %d", couponID, userID)
	}

	switch res {
	case "1":
		return AdmitAdmitted, nil
	case "2":
		return AdmitDuplicate, nil
	case "3":
		return AdmitCapacityExceeded, nil
	default:
		return 0, errs.Wrapf(ErrUnexpectedAdmitResult, "result %q", res)
	}
}

// Release frees an admitted user's slot after their request was dropped without a terminal outcome.
func (g *AdmissionGate) Release(ctx context.Context, couponID, userID int64) error {
	if err := g.rdb.SRem(ctx, issueRequestKey(couponID), strconv.FormatInt(userID, 10)).Err(); err != nil {
		return errs.Wrapf(err, "failed to release admission. coupon_id: %d, user_id: %d", couponID, userID)
	}
	return nil
}

// MarkIssued records an issuance made outside the queue so later admissions see it.
func (g *AdmissionGate) MarkIssued(ctx context.Context, couponID, userID int64) error {
	if err := g.rdb.SAdd(ctx, issueRequestKey(couponID), strconv.FormatInt(userID, 10)).Err(); err != nil {
		return errs.Wrapf(err, "failed to mark issued. coupon_id: %d, user_id: %d", couponID, userID)
	}
	return nil
}

func (g *AdmissionGate) AdmittedCount(ctx context.Context, couponID int64) (int64, error) {
	n, err := g.rdb.SCard(ctx, issueRequestKey(couponID)).Result()
	if err != nil {
		return 0, errs.Wrapf(err, "failed to count admissions. coupon_id: %d", couponID)
	}
	return n, nil
}
