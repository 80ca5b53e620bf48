package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// =============================================================================
// Test Helpers
// =============================================================================

// newRouter mounts a few routes behind mws.
func newRouter(mws ...func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(mws...)
	r.Get("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chi.URLParam(r, "id")))
	})
	r.Get("/boom", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	r.Get("/span", func(w http.ResponseWriter, r *http.Request) {
		if !trace.SpanFromContext(r.Context()).SpanContext().IsValid() {
			http.Error(w, "no span", http.StatusTeapot)
		}
	})
	return r
}

func serve(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func newRecorder(t *testing.T) (*tracetest.SpanRecorder, trace.TracerProvider) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { tp.Shutdown(context.Background()) })
	return recorder, tp
}

func attr(attrs []attribute.KeyValue, key string) (attribute.Value, bool) {
	for _, kv := range attrs {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

// =============================================================================
// Prometheus
// =============================================================================

func TestPrometheusCountsByRoute(t *testing.T) {
	reg := prometheus.NewRegistry()
	h := newRouter(Prometheus(WithRegistry(reg)))

	serve(h, "/items/1")
	serve(h, "/items/2")
	serve(h, "/boom")
	serve(h, "/nowhere")

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	counts := map[string]float64{}
	for _, mf := range metrics {
		if mf.GetName() != "silk_http_requests_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			var route, code string
			for _, lp := range m.GetLabel() {
				switch lp.GetName() {
				case "route":
					route = lp.GetValue()
				case "code":
					code = lp.GetValue()
				}
			}
			counts[route+" "+code] = m.GetCounter().GetValue()
		}
	}

	want := map[string]float64{
		"/items/{id} 200": 2,
		"/boom 500":       1,
		"unmatched 404":   1,
	}
	for k, v := range want {
		if counts[k] != v {
			t.Errorf("requests_total{%s} = %v, want %v (all: %v)", k, counts[k], v, counts)
		}
	}
}

func TestPrometheusConfig(t *testing.T) {
	reg := prometheus.NewRegistry()
	h := newRouter(Prometheus(
		WithRegistry(reg),
		WithNamespace("app"),
		WithSubsystem("web"),
		WithConstLabels(prometheus.Labels{"instance": "a"}),
		WithBuckets([]float64{0.1, 1}),
	))
	serve(h, "/items/1")

	if n, _ := testutil.GatherAndCount(reg, "app_web_request_duration_seconds"); n != 1 {
		t.Errorf("duration series = %d, want 1", n)
	}
	if n, _ := testutil.GatherAndCount(reg, "app_web_requests_in_flight"); n != 1 {
		t.Errorf("in flight series = %d, want 1", n)
	}
}

func TestPrometheusDoubleRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	Prometheus(WithRegistry(reg))

	defer func() {
		if recover() == nil {
			t.Error("second registration did not panic")
		}
	}()
	Prometheus(WithRegistry(reg))
}

// =============================================================================
// OpenTelemetry
// =============================================================================

func TestOpenTelemetryNamesSpanAfterRoute(t *testing.T) {
	recorder, tp := newRecorder(t)
	h := newRouter(OpenTelemetry(
		WithTracerProvider(tp),
		WithAttributeExtractor(func(*http.Request) []attribute.KeyValue {
			return []attribute.KeyValue{attribute.String("test.attr", "ok")}
		}),
	))

	if rec := serve(h, "/items/7"); rec.Body.String() != "7" {
		t.Fatalf("body = %q", rec.Body.String())
	}

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("spans = %d, want 1", len(spans))
	}
	span := spans[0]
	if span.Name() != "GET /items/{id}" {
		t.Errorf("Name = %q", span.Name())
	}
	if span.SpanKind() != trace.SpanKindServer {
		t.Errorf("SpanKind = %v", span.SpanKind())
	}
	if span.Status().Code != codes.Ok {
		t.Errorf("Status = %v", span.Status())
	}
	for key, want := range map[string]string{
		"url.path":   "/items/7",
		"http.route": "/items/{id}",
		"test.attr":  "ok",
	} {
		if v, ok := attr(span.Attributes(), key); !ok || v.AsString() != want {
			t.Errorf("%s = %v, want %q", key, v.AsString(), want)
		}
	}
	if _, ok := attr(span.Attributes(), "silk.request_id"); !ok {
		t.Error("no request id attribute")
	}
}

func TestOpenTelemetryMarksServerErrors(t *testing.T) {
	recorder, tp := newRecorder(t)
	h := newRouter(OpenTelemetry(WithTracerProvider(tp)))
	serve(h, "/boom")

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("spans = %d, want 1", len(spans))
	}
	if spans[0].Status().Code != codes.Error {
		t.Errorf("Status = %v, want Error", spans[0].Status())
	}
	if v, _ := attr(spans[0].Attributes(), "http.status_code"); v.AsInt64() != 500 {
		t.Errorf("status code = %d", v.AsInt64())
	}
}

func TestOpenTelemetryPropagatesSpan(t *testing.T) {
	_, tp := newRecorder(t)
	h := newRouter(OpenTelemetry(WithTracerProvider(tp)))

	if rec := serve(h, "/span"); rec.Code != http.StatusOK {
		t.Errorf("handler saw no span: %d", rec.Code)
	}
}

func TestOpenTelemetryFilter(t *testing.T) {
	recorder, tp := newRecorder(t)
	h := newRouter(OpenTelemetry(
		WithTracerProvider(tp),
		WithFilter(func(r *http.Request) bool { return r.URL.Path != "/boom" }),
	))
	serve(h, "/boom")
	serve(h, "/items/1")

	if n := len(recorder.Ended()); n != 1 {
		t.Errorf("spans = %d, want 1", n)
	}
}

func TestSpanName(t *testing.T) {
	tests := []struct {
		method, path, want string
	}{
		{"GET", "/ws", "GET /ws"},
		{"POST", "", "POST /"},
	}
	for _, tt := range tests {
		if got := spanName(tt.method, tt.path); got != tt.want {
			t.Errorf("spanName(%q, %q) = %q, want %q", tt.method, tt.path, got, tt.want)
		}
	}
}
