package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func spanAttr(span sdktrace.ReadOnlySpan, key string) (string, bool) {
	for _, kv := range span.Attributes() {
		if kv.Key == attribute.Key(key) {
			return kv.Value.AsString(), true
		}
	}
	return "", false
}

func TestTracing(t *testing.T) {
	t.Run("disabled adds no handlers", func(t *testing.T) {
		assert.Empty(t, Tracing(TracingConfig{Enabled: false}))

		r := newEngine(Tracing(TracingConfig{})...)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/echo", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	handlers := append(Tracing(TracingConfig{Enabled: true, ServiceName: "ledger", Provider: provider}), RequestID(), Actor())
	r := newEngine(handlers...)

	t.Run("tags the request span", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/echo", nil)
		req.Header.Set(RequestIDHeader, "trace-abc")
		req.Header.Set(ActorIDHeader, "6ba7b810-9dad-11d1-80b4-00c04fd430c8")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		spans := recorder.Ended()
		require.NotEmpty(t, spans)
		span := spans[len(spans)-1]
		id, ok := spanAttr(span, "request_id")
		assert.True(t, ok)
		assert.Equal(t, "trace-abc", id)
		actor, ok := spanAttr(span, "actor_id")
		assert.True(t, ok)
		assert.Equal(t, "6ba7b810-9dad-11d1-80b4-00c04fd430c8", actor)
		assert.NotEqual(t, codes.Error, span.Status().Code)
	})

	t.Run("client errors mark the span", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", nil))
		require.Equal(t, http.StatusUnauthorized, w.Code)

		spans := recorder.Ended()
		span := spans[len(spans)-1]
		assert.Equal(t, codes.Error, span.Status().Code)
		_, ok := spanAttr(span, "actor_id")
		assert.False(t, ok)
	})
}
