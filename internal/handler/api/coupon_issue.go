package api

import (
	"net/http"
	"strconv"

	"coupon-issuer/internal/domain/coupon"
	reqdto "coupon-issuer/internal/handler/dto/request"
	resdto "coupon-issuer/internal/handler/dto/response"
	"coupon-issuer/internal/handler/httperr"
	"coupon-issuer/internal/usecase/commands"
	"coupon-issuer/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type CouponIssueHandler struct {
	submit commands.SubmitCommands
	issue  commands.IssueCommands
	q      queries.CouponQueries
}

func NewCouponIssueHandler(submit commands.SubmitCommands, issue commands.IssueCommands, q queries.CouponQueries) *CouponIssueHandler {
	return &CouponIssueHandler{submit: submit, issue: issue, q: q}
}

// @Summary Request coupon issuance
// @Description Admit a request for asynchronous issuance. Acceptance does not guarantee issuance.
// @Tags coupons
// @Accept json
// @Produce json
// @Param request body reqdto.IssueCouponRequest true "Issue request"
// @Success 200 {object} resdto.SubmitResponse
// @Failure 400 {object} resdto.SubmitResponse
// @Failure 404 {object} resdto.SubmitResponse
// @Failure 409 {object} resdto.SubmitResponse
// @Failure 500 {object} resdto.SubmitResponse
// @Router /api/v1/coupons/issue-async [post]
func (h *CouponIssueHandler) Submit(c *gin.Context) {
	var req reqdto.IssueCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		perr := coupon.WrapIssueError(coupon.KindInvalidIssuePayload, err, "invalid request body")
		httperr.AbortWithBody(c, http.StatusBadRequest, perr, resdto.SubmitRejected(perr))
		return
	}

	if err := h.submit.Submit(c.Request.Context(), req.CouponID, req.UserID); err != nil {
		httperr.AbortWithBody(c, httperr.StatusOf(err), err, resdto.SubmitRejected(err))
		return
	}
	c.JSON(http.StatusOK, resdto.SubmitAccepted())
}

// @Summary Issue coupon
// @Description Issue a coupon synchronously under the per-coupon lock.
// @Tags coupons
// @Accept json
// @Produce json
// @Param request body reqdto.IssueCouponRequest true "Issue request"
// @Success 200 {object} resdto.IssueResponse
// @Failure 400 {object} resdto.IssueResponse
// @Failure 404 {object} resdto.IssueResponse
// @Failure 409 {object} resdto.IssueResponse
// @Failure 503 {object} resdto.IssueResponse
// @Failure 500 {object} resdto.IssueResponse
// @Router /api/v1/coupons/issue [post]
func (h *CouponIssueHandler) Issue(c *gin.Context) {
	var req reqdto.IssueCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		perr := coupon.WrapIssueError(coupon.KindInvalidIssuePayload, err, "invalid request body")
		httperr.AbortWithBody(c, http.StatusBadRequest, perr, resdto.IssueFailed(perr))
		return
	}
	if req.CouponID <= 0 || req.UserID <= 0 {
		perr := coupon.NewIssueError(coupon.KindInvalidIssuePayload,
			"coupon_id and user_id must be positive. coupon_id: %d, user_id: %d", req.CouponID, req.UserID)
		httperr.AbortWithBody(c, http.StatusBadRequest, perr, resdto.IssueFailed(perr))
		return
	}

	if err := h.issue.IssueSync(c.Request.Context(), req.CouponID, req.UserID); err != nil {
		httperr.AbortWithBody(c, httperr.StatusOf(err), err, resdto.IssueFailed(err))
		return
	}
	c.JSON(http.StatusOK, resdto.IssueSucceeded())
}

// @Summary Get coupon
// @Description Get the cached view of a coupon
// @Tags coupons
// @Produce json
// @Param id path int true "Coupon ID"
// @Success 200 {object} resdto.CouponResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/coupons/{id} [get]
func (h *CouponIssueHandler) GetCoupon(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		if err == nil {
			err = coupon.ErrInvalidIssuePayload
		}
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid id", nil)
		return
	}

	view, err := h.q.GetCoupon(c.Request.Context(), id)
	if err != nil {
		status := httperr.StatusOf(err)
		msg := "Internal error"
		if status == http.StatusNotFound {
			msg = "Not found"
		}
		httperr.AbortWithError(c, status, err, msg, nil)
		return
	}
	c.JSON(http.StatusOK, resdto.FromCouponView(view))
}
