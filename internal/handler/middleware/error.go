package middleware

import (
	"log/slog"
	"net/http"

	"coupon-issuer/internal/domain/coupon"
	"coupon-issuer/internal/handler/httperr"
	"coupon-issuer/internal/pkg/errs"

	"github.com/gin-gonic/gin"
)

// ErrorHandler writes a body for handlers that recorded an error without responding.
// Public errors carry their own response; issuance failures are mapped by kind.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() || len(c.Errors) == 0 {
			return
		}
		for i := len(c.Errors) - 1; i >= 0; i-- {
			err := c.Errors[i]
			if !err.IsType(gin.ErrorTypePublic) {
				continue
			}
			if resp, ok := err.Meta.(httperr.Response); ok {
				c.JSON(resp.Status, resp)
				return
			}
		}

		last := c.Errors.Last().Err
		kind := coupon.KindOf(last)
		resp := httperr.Response{Status: httperr.StatusOf(last)}
		resp.Error.Message = kind.Message()
		resp.Detail = gin.H{"code": kind}
		c.JSON(resp.Status, resp)
	}
}

func CustomRecovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("recovered from panic",
					"error", rec,
					"path", c.Request.URL.Path,
					"stack", errs.ExtractStackLines(errs.Newf("panic: %v", rec), 12))

				resp := httperr.Response{Status: http.StatusInternalServerError}
				resp.Error.Message = "Internal server error"

				c.AbortWithStatusJSON(http.StatusInternalServerError, resp)
			}
		}()
		c.Next()
	}
}
