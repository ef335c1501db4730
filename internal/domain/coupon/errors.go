package coupon

import (
	"errors"
	"fmt"
)

// ErrorKind is the stable, machine-readable reason an issuance was refused.
// Advisory (cache/admission) and authoritative (commit) checks for the same
// condition always report the same kind.
type ErrorKind string

const (
	KindCouponNotExist         ErrorKind = "COUPON_NOT_EXIST"
	KindInvalidCoupon          ErrorKind = "INVALID_COUPON"
	KindInvalidIssueDate       ErrorKind = "INVALID_COUPON_ISSUE_DATE"
	KindInvalidIssueQuantity   ErrorKind = "INVALID_COUPON_ISSUE_QUANTITY"
	KindDuplicateIssue         ErrorKind = "DUPLICATE_COUPON_ISSUE"
	KindSerializationFailure   ErrorKind = "SERIALIZATION_FAILURE"
	KindInvalidIssuePayload    ErrorKind = "INVALID_ISSUE_PAYLOAD"
	KindLockNotAcquired        ErrorKind = "LOCK_NOT_ACQUIRED"
	KindFailCouponIssueRequest ErrorKind = "FAIL_COUPON_ISSUE_REQUEST"
)

var kindMessages = map[ErrorKind]string{
	KindCouponNotExist:         "coupon does not exist",
	KindInvalidCoupon:          "coupon definition is invalid",
	KindInvalidIssueDate:       "coupon is not issuable at this time",
	KindInvalidIssueQuantity:   "coupon issue quantity exceeded",
	KindDuplicateIssue:         "coupon already issued to user",
	KindSerializationFailure:   "coupon issue conflicted with concurrent issuance",
	KindInvalidIssuePayload:    "malformed coupon issue request",
	KindLockNotAcquired:        "coupon issue is busy, try again",
	KindFailCouponIssueRequest: "coupon issue request failed",
}

func (k ErrorKind) Message() string {
	if m, ok := kindMessages[k]; ok {
		return m
	}
	return string(k)
}

// Terminal kinds are final for a queued request; retrying cannot change the outcome.
func (k ErrorKind) Terminal() bool {
	switch k {
	case KindCouponNotExist, KindInvalidCoupon, KindInvalidIssueDate, KindInvalidIssueQuantity, KindDuplicateIssue, KindInvalidIssuePayload:
		return true
	default:
		return false
	}
}

type IssueError struct {
	Kind   ErrorKind
	Detail string
	err    error
}

func NewIssueError(kind ErrorKind, format string, args ...any) *IssueError {
	return &IssueError{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// WrapIssueError attaches a kind to a lower-level cause.
func WrapIssueError(kind ErrorKind, err error, format string, args ...any) *IssueError {
	return &IssueError{Kind: kind, Detail: fmt.Sprintf(format, args...), err: err}
}

func (e *IssueError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("[%s] %s", e.Kind, e.Kind.Message())
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Detail)
}

func (e *IssueError) Unwrap() error {
	return e.err
}

// Is matches any IssueError of the same kind, so sentinels like ErrDuplicateIssue work with errors.Is.
func (e *IssueError) Is(target error) bool {
	t, ok := target.(*IssueError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrCouponNotExist       = &IssueError{Kind: KindCouponNotExist}
	ErrInvalidCoupon        = &IssueError{Kind: KindInvalidCoupon}
	ErrInvalidIssueDate     = &IssueError{Kind: KindInvalidIssueDate}
	ErrInvalidIssueQuantity = &IssueError{Kind: KindInvalidIssueQuantity}
	ErrDuplicateIssue       = &IssueError{Kind: KindDuplicateIssue}
	ErrSerializationFailure = &IssueError{Kind: KindSerializationFailure}
	ErrInvalidIssuePayload  = &IssueError{Kind: KindInvalidIssuePayload}
	ErrLockNotAcquired      = &IssueError{Kind: KindLockNotAcquired}
)

// KindOf reports the issuance kind carried by err, falling back to KindFailCouponIssueRequest.
func KindOf(err error) ErrorKind {
	var ie *IssueError
	if errors.As(err, &ie) {
		return ie.Kind
	}
	return KindFailCouponIssueRequest
}

// DetailOf returns the human-readable detail for err.
func DetailOf(err error) string {
	var ie *IssueError
	if errors.As(err, &ie) {
		if ie.Detail != "" {
			return ie.Detail
		}
		return ie.Kind.Message()
	}
	return KindFailCouponIssueRequest.Message()
}
