package httperr

import (
	"net/http"

	"coupon-issuer/internal/domain/coupon"

	"github.com/gin-gonic/gin"
)

type Response struct {
	Status int `json:"-"`
	Error  struct {
		Message string `json:"message"`
	} `json:"error"`
	Detail any `json:"detail,omitempty"`
}

// preserves original error for future monitoring
func AbortWithError(c *gin.Context, status int, err error, msg string, detail any) {
	if err == nil {
		panic("AbortWithError: err cannot be nil")
	}

	resp := Response{Status: status}
	resp.Error.Message = msg
	resp.Detail = detail

	_ = c.Error(gin.Error{
		Err:  err,
		Type: gin.ErrorTypePublic,
		Meta: resp,
	})
	c.AbortWithStatusJSON(status, resp)
}

// StatusOf maps an issuance failure to its HTTP status.
func StatusOf(err error) int {
	switch coupon.KindOf(err) {
	case coupon.KindCouponNotExist:
		return http.StatusNotFound
	case coupon.KindInvalidIssueDate, coupon.KindInvalidIssuePayload:
		return http.StatusBadRequest
	case coupon.KindInvalidCoupon:
		return http.StatusUnprocessableEntity
	case coupon.KindInvalidIssueQuantity, coupon.KindDuplicateIssue:
		return http.StatusConflict
	case coupon.KindSerializationFailure, coupon.KindLockNotAcquired:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// AbortWithBody records err for the logging middleware and writes body as-is.
func AbortWithBody(c *gin.Context, status int, err error, body any) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, body)
}
