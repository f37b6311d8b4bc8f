package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/smallbiznis/bingkai/internal/config"
	invoicedomain "github.com/smallbiznis/bingkai/internal/invoice/domain"
	"github.com/smallbiznis/bingkai/internal/observability"
	"github.com/smallbiznis/bingkai/internal/ratelimit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockInvoiceService struct {
	mock.Mock
}

func (m *mockInvoiceService) Generate(ctx context.Context, req invoicedomain.GenerateRequest) (*invoicedomain.Document, error) {
	args := m.Called(ctx, req)
	doc, _ := args.Get(0).(*invoicedomain.Document)
	return doc, args.Error(1)
}

func (m *mockInvoiceService) Preview(ctx context.Context, req invoicedomain.GenerateRequest) (*invoicedomain.Preview, error) {
	args := m.Called(ctx, req)
	preview, _ := args.Get(0).(*invoicedomain.Preview)
	return preview, args.Error(1)
}

func newTestServer(t *testing.T, svc invoicedomain.Service, limiter *ratelimit.InvoiceLimiter) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	s := NewServer(ServerParams{
		Gin:        NewEngine(observability.Config{}, nil),
		Cfg:        config.Config{Environment: "test"},
		InvoiceSvc: svc,
		Limiter:    limiter,
	})
	s.RegisterInvoiceRoutes()
	s.RegisterFallback()
	return s
}

func post(t *testing.T, s *Server, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Engine().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorPayload {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Error
}

const cartBody = `{
	"items": [
		{"name": "Bingkai Minimalis A4", "price": 125000, "quantity": 2, "image_url": "https://cdn.test/a4.png"},
		{"name": "Karikatur Wajah", "price": 2800, "quantity": 1, "image_url": "", "variation": "Ukuran 12R"}
	],
	"customer": {"company_name": "PT Maju Jaya", "contact_person": "Sari"}
}`

func TestGenerateInvoice(t *testing.T) {
	svc := new(mockInvoiceService)
	doc := &invoicedomain.Document{
		ID:       snowflake.ID(42),
		Number:   "INV/20240309/0001",
		Filename: "invoice-pt-maju-jaya-20240309.pdf",
		IssuedAt: time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC),
		Bytes:    []byte("%PDF-1.4 test"),
		Pages:    1,
	}
	svc.On("Generate", mock.Anything, mock.MatchedBy(func(req invoicedomain.GenerateRequest) bool {
		return len(req.Items) == 2 &&
			req.Items[0].Subtotal() == 250000 &&
			req.Items[1].Variation == "Ukuran 12R" &&
			req.Customer.CompanyName == "PT Maju Jaya"
	})).Return(doc, nil)

	rec := post(t, newTestServer(t, svc, nil), "/api/invoices", cartBody)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="invoice-pt-maju-jaya-20240309.pdf"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "INV/20240309/0001", rec.Header().Get(HeaderInvoiceNumber))
	assert.Equal(t, "42", rec.Header().Get(HeaderInvoiceID))
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
	assert.Equal(t, doc.Bytes, rec.Body.Bytes())
	svc.AssertExpectations(t)
}

func TestGenerateInvoiceAcceptsNegativeValues(t *testing.T) {
	svc := new(mockInvoiceService)
	svc.On("Generate", mock.Anything, mock.Anything).Return(&invoicedomain.Document{Bytes: []byte("%PDF")}, nil)

	rec := post(t, newTestServer(t, svc, nil), "/api/invoices", `{"items":[{"name":"Retur","price":-5000,"quantity":1}]}`)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGenerateInvoiceRejectsMalformedBody(t *testing.T) {
	svc := new(mockInvoiceService)

	rec := post(t, newTestServer(t, svc, nil), "/api/invoices", `{"items": [`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	payload := decodeError(t, rec)
	assert.Equal(t, "validation_error", payload.Type)
	require.Len(t, payload.Errors, 1)
	assert.Equal(t, "invalid_request", payload.Errors[0].Code)
	svc.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestGenerateInvoiceErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		kind   string
	}{
		{
			name:   "missing template",
			err:    fmt.Errorf("%w: template not found at templates/footer.pdf", invoicedomain.ErrTemplateNotFound),
			status: http.StatusBadGateway,
			kind:   "resource_unavailable",
		},
		{
			name:   "invalid font",
			err:    fmt.Errorf("%w: fonts/bold.ttf", invoicedomain.ErrInvalidFont),
			status: http.StatusBadGateway,
			kind:   "resource_unavailable",
		},
		{
			name:   "sequence",
			err:    fmt.Errorf("%w: redis down", invoicedomain.ErrSequence),
			status: http.StatusInternalServerError,
			kind:   "internal_error",
		},
		{
			name:   "render",
			err:    invoicedomain.ErrRender,
			status: http.StatusInternalServerError,
			kind:   "internal_error",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := new(mockInvoiceService)
			svc.On("Generate", mock.Anything, mock.Anything).Return(nil, tc.err)

			rec := post(t, newTestServer(t, svc, nil), "/api/invoices", cartBody)

			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.kind, decodeError(t, rec).Type)
		})
	}
}

func TestMissingTemplateMessageNamesRef(t *testing.T) {
	svc := new(mockInvoiceService)
	svc.On("Generate", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("%w: template not found at templates/footer.pdf", invoicedomain.ErrTemplateNotFound))

	rec := post(t, newTestServer(t, svc, nil), "/api/invoices", cartBody)

	assert.Contains(t, decodeError(t, rec).Message, "template not found at templates/footer.pdf")
}

func TestPreviewInvoice(t *testing.T) {
	svc := new(mockInvoiceService)
	svc.On("Preview", mock.Anything, mock.Anything).Return(&invoicedomain.Preview{
		Number:       "DRAFT",
		Pages:        2,
		ProductCount: 9,
		Total:        252800,
		TotalText:    "Rp252.800",
		Footer:       invoicedomain.FooterPreview{Page: 1, NewPage: true},
	}, nil)

	rec := post(t, newTestServer(t, svc, nil), "/api/invoices/preview", cartBody)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Data invoicedomain.Preview `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Data.Pages)
	assert.Equal(t, "Rp252.800", resp.Data.TotalText)
	assert.True(t, resp.Data.Footer.NewPage)
}

func TestHealthAndFallback(t *testing.T) {
	s := newTestServer(t, new(mockInvoiceService), nil)

	rec := httptest.NewRecorder()
	s.Engine().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	s.Engine().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeError(t, rec).Type)
}

func TestRateLimitFailsOpenWhenRedisIsDown(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	limiter, err := ratelimit.NewInvoiceLimiter(config.Config{
		RateLimit: config.RateLimitConfig{Enabled: true, Rate: 1, Burst: 1, LockTTL: time.Second},
	}, client)
	require.NoError(t, err)
	require.True(t, limiter.Enabled())

	svc := new(mockInvoiceService)
	svc.On("Generate", mock.Anything, mock.Anything).Return(&invoicedomain.Document{Bytes: []byte("%PDF")}, nil)

	rec := post(t, newTestServer(t, svc, limiter), "/api/invoices", cartBody)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDenyInvoiceRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/invoices", nil)

	denyInvoiceRateLimit(c, "/api/invoices", rateLimitReasonClientRate, 2400*time.Millisecond, nil)

	assert.True(t, c.IsAborted())
	assert.Equal(t, "2", rec.Header().Get("Retry-After"))
	assert.Equal(t, rateLimitReasonClientRate, rec.Header().Get("X-Rate-Limited-Reason"))
	status, payload := mapError(c.Errors.Last().Err)
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Equal(t, "rate_limited", payload.Type)
}

func TestClassifyErrorForLog(t *testing.T) {
	kind, code := classifyErrorForLog(fmt.Errorf("%w: x", invoicedomain.ErrFontNotFound))
	assert.Equal(t, "resource_unavailable", kind)
	assert.Equal(t, "font_not_found", code)

	kind, code = classifyErrorForLog(fmt.Errorf("%w: %w", invoicedomain.ErrRender, context.Canceled))
	assert.Equal(t, "internal_error", kind)
	assert.Equal(t, "request_canceled", code)

	kind, code = classifyErrorForLog(invalidRequestError())
	assert.Equal(t, "validation_error", kind)
	assert.Equal(t, "invalid_request", code)
}
