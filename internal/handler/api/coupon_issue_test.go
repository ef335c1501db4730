//go:build unit

package api_test

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"coupon-issuer/internal/domain/coupon"
	"coupon-issuer/internal/handler/api"
	resdto "coupon-issuer/internal/handler/dto/response"
	"coupon-issuer/internal/usecase/queries"
	"coupon-issuer/tests/common/builder"
	"coupon-issuer/tests/common/httptest"
	"coupon-issuer/tests/common/testutil"
	commandsmock "coupon-issuer/tests/mock/commands"
	queriesmock "coupon-issuer/tests/mock/queries"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type CouponIssueHandlerTestSuite struct {
	suite.Suite
	router      *gin.Engine
	mockCtrl    *gomock.Controller
	mockSubmit  *commandsmock.MockSubmitCommands
	mockIssue   *commandsmock.MockIssueCommands
	mockQueries *queriesmock.MockCouponQueries
	handler     *api.CouponIssueHandler
}

func (s *CouponIssueHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockSubmit = commandsmock.NewMockSubmitCommands(s.mockCtrl)
	s.mockIssue = commandsmock.NewMockIssueCommands(s.mockCtrl)
	s.mockQueries = queriesmock.NewMockCouponQueries(s.mockCtrl)
	s.handler = api.NewCouponIssueHandler(s.mockSubmit, s.mockIssue, s.mockQueries)

	s.router.POST("/coupons/issue-async", s.handler.Submit)
	s.router.POST("/coupons/issue", s.handler.Issue)
	s.router.GET("/coupons/:id", s.handler.GetCoupon)
}

func (s *CouponIssueHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestCouponIssueHandlerSuite(t *testing.T) {
	suite.Run(t, new(CouponIssueHandlerTestSuite))
}

type rejection struct {
	name       string
	err        error
	wantStatus int
	wantKind   coupon.ErrorKind
}

func rejections() []rejection {
	return []rejection{
		{name: "coupon missing", err: coupon.NewIssueError(coupon.KindCouponNotExist, "coupon does not exist. coupon_id: 1"), wantStatus: http.StatusNotFound, wantKind: coupon.KindCouponNotExist},
		{name: "invalid coupon definition", err: coupon.NewIssueError(coupon.KindInvalidCoupon, "bad type"), wantStatus: http.StatusUnprocessableEntity, wantKind: coupon.KindInvalidCoupon},
		{name: "outside window", err: coupon.NewIssueError(coupon.KindInvalidIssueDate, "closed"), wantStatus: http.StatusBadRequest, wantKind: coupon.KindInvalidIssueDate},
		{name: "quantity exceeded", err: coupon.NewIssueError(coupon.KindInvalidIssueQuantity, "exceeded"), wantStatus: http.StatusConflict, wantKind: coupon.KindInvalidIssueQuantity},
		{name: "duplicate", err: coupon.NewIssueError(coupon.KindDuplicateIssue, "again"), wantStatus: http.StatusConflict, wantKind: coupon.KindDuplicateIssue},
		{name: "serialization failure", err: coupon.NewIssueError(coupon.KindSerializationFailure, "conflict"), wantStatus: http.StatusServiceUnavailable, wantKind: coupon.KindSerializationFailure},
		{name: "payload", err: coupon.NewIssueError(coupon.KindInvalidIssuePayload, "bad"), wantStatus: http.StatusBadRequest, wantKind: coupon.KindInvalidIssuePayload},
		{name: "lock busy", err: coupon.NewIssueError(coupon.KindLockNotAcquired, "busy"), wantStatus: http.StatusServiceUnavailable, wantKind: coupon.KindLockNotAcquired},
		{name: "unclassified", err: errors.New("redis down"), wantStatus: http.StatusInternalServerError, wantKind: coupon.KindFailCouponIssueRequest},
	}
}

// ================================================================================
// TestSubmit
// ================================================================================

func (s *CouponIssueHandlerTestSuite) TestSubmit() {
	url := "/coupons/issue-async"
	reqBody := builder.NewCouponBuilder().WithID(1).BuildIssueRequestDTO(42)

	s.Run("success: accepted", func() {
		s.mockSubmit.EXPECT().Submit(gomock.Any(), int64(1), int64(42)).Return(nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody)

		var body resdto.SubmitResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		httptest.AssertJSONContentType(s.T(), rec)
		s.Equal(resdto.SubmitResponse{Accepted: true}, body)
	})

	s.Run("error: 400 on invalid body", func() {
		cases := []struct {
			name string
			edit testutil.BodyEdit
		}{
			{name: "missing coupon_id", edit: testutil.Without("coupon_id")},
			{name: "missing user_id", edit: testutil.Without("user_id")},
			{name: "string coupon_id", edit: testutil.With("coupon_id", "one")},
		}
		for _, tc := range cases {
			s.Run(tc.name, func() {
				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, testutil.JSONBody(s.T(), reqBody, tc.edit))

				httptest.AssertSubmitRejected(s.T(), rec, http.StatusBadRequest, string(coupon.KindInvalidIssuePayload))
			})
		}
	})

	s.Run("error: 400 on malformed JSON", func() {
		rec := httptest.PerformRawRequest(s.T(), s.router, http.MethodPost, url, `{"coupon_id":`)

		httptest.AssertSubmitRejected(s.T(), rec, http.StatusBadRequest, string(coupon.KindInvalidIssuePayload))
	})

	s.Run("error: maps rejections to statuses", func() {
		for _, tc := range rejections() {
			s.Run(tc.name, func() {
				s.mockSubmit.EXPECT().Submit(gomock.Any(), int64(1), int64(42)).Return(tc.err).Times(1)

				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody)

				msg := httptest.AssertSubmitRejected(s.T(), rec, tc.wantStatus, string(tc.wantKind))
				s.NotEmpty(msg)
			})
		}
	})
}

// ================================================================================
// TestIssue
// ================================================================================

func (s *CouponIssueHandlerTestSuite) TestIssue() {
	url := "/coupons/issue"
	reqBody := builder.NewCouponBuilder().WithID(1).BuildIssueRequestDTO(42)

	s.Run("success: issued", func() {
		s.mockIssue.EXPECT().IssueSync(gomock.Any(), int64(1), int64(42)).Return(nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody)

		var body resdto.IssueResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal(resdto.IssueResponse{Success: true}, body)
	})

	s.Run("error: 400 on non-positive ids without calling the usecase", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url,
			testutil.JSONBody(s.T(), reqBody, testutil.With("user_id", -5)))

		httptest.AssertIssueFailed(s.T(), rec, http.StatusBadRequest, string(coupon.KindInvalidIssuePayload))
	})

	s.Run("error: maps failures to statuses", func() {
		for _, tc := range rejections() {
			s.Run(tc.name, func() {
				s.mockIssue.EXPECT().IssueSync(gomock.Any(), int64(1), int64(42)).Return(tc.err).Times(1)

				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody)

				httptest.AssertIssueFailed(s.T(), rec, tc.wantStatus, string(tc.wantKind))
			})
		}
	})
}

// ================================================================================
// TestGetCoupon
// ================================================================================

func (s *CouponIssueHandlerTestSuite) TestGetCoupon() {
	start := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	total := 100
	view := &queries.CouponView{
		ID:             7,
		Title:          "flash sale",
		CouponType:     string(coupon.TypeFirstComeFirstServed),
		TotalQuantity:  &total,
		DiscountAmount: 1000,
		DateIssueStart: start,
		DateIssueEnd:   start.Add(time.Hour),
		Issuable:       true,
	}

	s.Run("success: returns view", func() {
		s.mockQueries.EXPECT().GetCoupon(gomock.Any(), int64(7)).Return(view, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/coupons/7", nil)

		var body resdto.CouponResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal(*resdto.FromCouponView(view), body)
	})

	s.Run("error: 400 on invalid id", func() {
		for _, id := range []string{"abc", "0", "-1"} {
			rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/coupons/"+id, nil)
			httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid id")
		}
	})

	s.Run("error: 404 when coupon missing", func() {
		s.mockQueries.EXPECT().GetCoupon(gomock.Any(), int64(7)).
			Return(nil, coupon.NewIssueError(coupon.KindCouponNotExist, "missing")).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/coupons/7", nil)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "Not found")
	})

	s.Run("error: 500 on lookup failure", func() {
		s.mockQueries.EXPECT().GetCoupon(gomock.Any(), int64(7)).Return(nil, errors.New("db down")).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/coupons/7", nil)
		httptest.AssertErrorResponse(s.T(), rec, http.StatusInternalServerError, "Internal error")
	})
}
