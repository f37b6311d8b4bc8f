package tracing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func TestSafeAttributesDropsCustomerFields(t *testing.T) {
	attrs := SafeAttributes(
		attribute.String("invoice.number", "INV/20240309/0001"),
		attribute.String("customer.company_name", "PT Maju Jaya"),
		attribute.String("Authorization", "Bearer x"),
		attribute.Int("invoice.items", 3),
	)
	require.Len(t, attrs, 2)
	assert.Equal(t, attribute.Key("invoice.number"), attrs[0].Key)
	assert.Equal(t, attribute.Key("invoice.items"), attrs[1].Key)
}

func TestSafeError(t *testing.T) {
	assert.Nil(t, SafeError(nil))
	assert.Equal(t, "*errors.errorString", SafeError(errors.New("secret details")).Error())
}

func TestClampRatio(t *testing.T) {
	assert.InDelta(t, 0.1, clampRatio(0), 1e-9)
	assert.InDelta(t, 1, clampRatio(4), 1e-9)
	assert.InDelta(t, 0.5, clampRatio(0.5), 1e-9)
}

func TestDisabledProviderIsNil(t *testing.T) {
	provider, err := NewProvider(nil, Config{Enabled: false}, nil)
	require.NoError(t, err)
	assert.Nil(t, provider)

	_, span := StartInvoiceSpan(context.Background(), "compose", attribute.Int("invoice.items", 1))
	EndSpan(span, errors.New("boom"))
}

func TestWrapHTTPClientPassesThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer srv.Close()

	base := &http.Client{}
	client := WrapHTTPClient(base)
	assert.Nil(t, base.Transport)

	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)
}

func TestGinMiddlewareRecordsServerSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinMiddleware())
	r.POST("/api/invoices", func(c *gin.Context) {
		c.Set(InvoiceNumberKey, "INV/20240309/0001")
		c.Status(http.StatusOK)
	})
	r.POST("/api/invoices/preview", func(c *gin.Context) {
		_ = c.Error(errors.New("boom"))
		c.Status(http.StatusInternalServerError)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/invoices", nil)
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	r.ServeHTTP(httptest.NewRecorder(), req)
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/invoices/preview", nil))

	spans := recorder.Ended()
	require.Len(t, spans, 2)

	generate := spans[0]
	assert.Equal(t, "POST /api/invoices", generate.Name())
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", generate.SpanContext().TraceID().String())
	assert.Equal(t, trace.SpanKindServer, generate.SpanKind())
	assert.Contains(t, generate.Attributes(), attribute.String("invoice.number", "INV/20240309/0001"))
	assert.Contains(t, generate.Attributes(), attribute.Int("http.status_code", http.StatusOK))
	assert.Equal(t, codes.Unset, generate.Status().Code)

	preview := spans[1]
	assert.Equal(t, "POST /api/invoices/preview", preview.Name())
	assert.Equal(t, codes.Error, preview.Status().Code)
	require.Len(t, preview.Events(), 1)
}
