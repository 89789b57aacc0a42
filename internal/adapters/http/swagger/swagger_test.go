package swagger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/smartystreets/goconvey/convey"
)

type router interface {
	Mux
	http.Handler
}

func TestSwaggerHandler(t *testing.T) {
	convey.Convey("Given a standard library mux", t, func() {
		mux := http.NewServeMux()
		Register(context.Background(), mux)
		assertRoutes(mux)
	})

	convey.Convey("Given a chi router", t, func() {
		r := chi.NewRouter()
		Register(context.Background(), r)
		assertRoutes(r)
	})
}

func assertRoutes(mux router) {
	convey.Convey("Then it should handle /openapi.yaml", func() {
		req := httptest.NewRequest("GET", "/openapi.yaml", http.NoBody)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)

		convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
		convey.So(w.Header().Get("Content-Type"), convey.ShouldEqual, "application/yaml; charset=utf-8")
		convey.So(w.Body.String(), convey.ShouldContainSubstring, "/api/v1/analytics")
	})

	convey.Convey("And it should handle /api-docs", func() {
		req := httptest.NewRequest("GET", "/api-docs", http.NoBody)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)

		convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
		convey.So(w.Header().Get("Content-Type"), convey.ShouldEqual, "text/html; charset=utf-8")
		convey.So(w.Body.String(), convey.ShouldContainSubstring, "redoc-container")
	})
}

func TestSwaggerErrors(t *testing.T) {
	convey.Convey("Given swagger error constants", t, func() {
		convey.Convey("Then ErrServe should be defined", func() {
			convey.So(ErrServe, convey.ShouldNotBeNil)
			convey.So(ErrServe.Error(), convey.ShouldEqual, "swagger serve failed")
		})
	})
}
