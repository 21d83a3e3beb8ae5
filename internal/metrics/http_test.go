package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Post("/models/{model}/search", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"hits":[]}`))
	})
	r.Delete("/models/{model}/queue", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return r
}

func serve(r http.Handler, method, path string) int {
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(method, path, http.NoBody))
	return rr.Code
}

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	r := newRouter()
	c := httpRequestsTotal.WithLabelValues(http.MethodPost, "/models/{model}/search", "200")
	before := testutil.ToFloat64(c)

	for _, model := range []string{"Product", "Store", "Brand"} {
		if code := serve(r, http.MethodPost, "/models/"+model+"/search"); code != http.StatusOK {
			t.Fatalf("status = %d", code)
		}
	}

	if got := testutil.ToFloat64(c) - before; got != 3 {
		t.Errorf("requests_total delta = %v, want 3", got)
	}
	if testutil.CollectAndCount(httpRequestDuration) == 0 {
		t.Error("expected request_duration_seconds observations")
	}
}

func TestMiddleware_ExplicitStatus(t *testing.T) {
	r := newRouter()
	c := httpRequestsTotal.WithLabelValues(http.MethodDelete, "/models/{model}/queue", "204")
	before := testutil.ToFloat64(c)

	if code := serve(r, http.MethodDelete, "/models/Store/queue"); code != http.StatusNoContent {
		t.Fatalf("status = %d", code)
	}
	if got := testutil.ToFloat64(c) - before; got != 1 {
		t.Errorf("requests_total delta = %v, want 1", got)
	}
}

func TestMiddleware_UnmatchedRoute(t *testing.T) {
	r := newRouter()
	c := httpRequestsTotal.WithLabelValues(http.MethodGet, unmatchedRoute, "404")
	before := testutil.ToFloat64(c)

	serve(r, http.MethodGet, "/no/such/path/1")
	serve(r, http.MethodGet, "/no/such/path/2")

	if got := testutil.ToFloat64(c) - before; got != 2 {
		t.Errorf("unmatched delta = %v, want 2", got)
	}
}

func TestMiddleware_InFlightReturnsToZero(t *testing.T) {
	r := newRouter()
	serve(r, http.MethodPost, "/models/Product/search")

	if got := testutil.ToFloat64(httpInFlight); got != 0 {
		t.Errorf("in flight = %v, want 0", got)
	}
}

func TestRegister_Idempotent(t *testing.T) {
	Register()
	Register()
}
