package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordModality(t *testing.T) {
	before := testutil.ToFloat64(ModalityOutcomes.WithLabelValues("face", OutcomeError))

	RecordModality("face", OutcomeError)
	RecordModality("face", OutcomeError)

	after := testutil.ToFloat64(ModalityOutcomes.WithLabelValues("face", OutcomeError))
	if after-before != 2 {
		t.Errorf("face/error delta = %v, want 2", after-before)
	}
}

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	before := testutil.ToFloat64(RequestCount.WithLabelValues("GET", "/items/{id}", "418"))

	req := httptest.NewRequest(http.MethodGet, "/items/42", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)

	after := testutil.ToFloat64(RequestCount.WithLabelValues("GET", "/items/{id}", "418"))
	if after-before != 1 {
		t.Errorf("request count delta = %v, want 1", after-before)
	}
}

func TestHandler(t *testing.T) {
	RecordAnalysis("calm")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "affect_fusion_analyses_total") {
		t.Error("exposition missing affect_fusion_analyses_total")
	}
}
