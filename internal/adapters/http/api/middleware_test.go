package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	service "github.com/goldedge/rewards/internal/app"
)

func TestMetricsMiddleware(t *testing.T) {
	Convey("Given a wrapped handler", t, func() {
		status := http.StatusOK
		h := MetricsMiddleware(func(w http.ResponseWriter, _ *http.Request) {
			if status != http.StatusOK {
				w.WriteHeader(status)
			}
			_, _ = w.Write([]byte("ok"))
		}, "probe")

		Convey("An implicit 200 passes through", func() {
			w := httptest.NewRecorder()
			h(w, httptest.NewRequest(http.MethodGet, "/probe", nil))
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldEqual, "ok")
		})

		Convey("An error status reaches the client unchanged", func() {
			status = http.StatusConflict
			w := httptest.NewRecorder()
			h(w, httptest.NewRequest(http.MethodPost, "/probe", nil))
			So(w.Code, ShouldEqual, http.StatusConflict)
		})
	})

	Convey("Error statuses map to stable labels", t, func() {
		So(errorClass(http.StatusNotFound), ShouldEqual, "not_found")
		So(errorClass(http.StatusForbidden), ShouldEqual, "forbidden")
		So(errorClass(http.StatusConflict), ShouldEqual, "conflict")
		So(errorClass(http.StatusTooManyRequests), ShouldEqual, "limit_reached")
		So(errorClass(http.StatusUnprocessableEntity), ShouldEqual, "insufficient_balance")
		So(errorClass(statusClientGone), ShouldEqual, "canceled")
		So(errorClass(http.StatusBadGateway), ShouldEqual, "server_error")
		So(errorClass(http.StatusBadRequest), ShouldEqual, "client_error")

		So(errorSeverity(http.StatusInternalServerError), ShouldEqual, "high")
		So(errorSeverity(http.StatusBadRequest), ShouldEqual, "medium")
		So(errorSeverity(http.StatusConflict), ShouldEqual, "low")
	})
}

func TestFailDuplicateRequest(t *testing.T) {
	Convey("Given a request id that is already in flight", t, func() {
		err := fmt.Errorf("%w: r1 in flight", service.ErrDuplicateRequest)

		Convey("Then it maps to 409 conflict", func() {
			status, code := classify(err)
			So(status, ShouldEqual, http.StatusConflict)
			So(code, ShouldEqual, "conflict")
		})

		Convey("Then the body carries code and message", func() {
			w := httptest.NewRecorder()
			fail(w, httptest.NewRequest(http.MethodPost, "/users/u1/transactions", nil), "api.request_transaction", err)
			So(w.Code, ShouldEqual, http.StatusConflict)

			var body map[string]string
			So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
			So(body["code"], ShouldEqual, "conflict")
			So(body["message"], ShouldContainSubstring, "duplicate request")
			So(body, ShouldHaveLength, 2)
		})
	})
}
