package metrics

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/smallbiznis/bingkai/internal/invoice/domain"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

const (
	KindPDF     = "pdf"
	KindPreview = "preview"
)

const (
	FooterSamePage = "same_page"
	FooterNewPage  = "new_page"
)

const (
	InvoiceReasonTemplate = "template"
	InvoiceReasonFont     = "font"
	InvoiceReasonSequence = "sequence"
	InvoiceReasonRender   = "render"
	InvoiceReasonCanceled = "canceled"
	InvoiceReasonUnknown  = "unknown"
)

// InvoiceMetrics captures invoice generation health for dashboards and alerts.
type InvoiceMetrics struct {
	runs          *prometheus.CounterVec
	errors        *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	pages         prometheus.Observer
	rows          prometheus.Observer
	skippedImages prometheus.Counter
	footer        *prometheus.CounterVec
}

var (
	invoiceMetricsOnce sync.Once
	invoiceMetrics     *InvoiceMetrics
)

// Invoice returns the singleton invoice metrics registry.
func Invoice() *InvoiceMetrics {
	return InvoiceWithConfig(Config{})
}

// InvoiceWithConfig returns the singleton invoice metrics registry using config labels.
func InvoiceWithConfig(cfg Config) *InvoiceMetrics {
	invoiceMetricsOnce.Do(func() {
		invoiceMetrics = NewInvoiceMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return invoiceMetrics
}

// NewInvoiceMetrics registers a fresh set of collectors on registerer.
func NewInvoiceMetrics(registerer prometheus.Registerer, cfg Config) *InvoiceMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "bingkai"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "bingkai_invoice_runs_total",
		Help:        "Invoice pipeline runs by kind and outcome.",
		ConstLabels: constLabels,
	}, []string{"kind", "outcome"})
	errs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "bingkai_invoice_errors_total",
		Help:        "Invoice pipeline failures by low-cardinality reason.",
		ConstLabels: constLabels,
	}, []string{"kind", "reason"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "bingkai_invoice_duration_seconds",
		Help:        "Invoice pipeline latency from request to serialized output.",
		Buckets:     []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		ConstLabels: constLabels,
	}, []string{"kind"})
	pages := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:        "bingkai_invoice_pages",
		Help:        "Pages per generated invoice.",
		Buckets:     []float64{1, 2, 3, 4, 5, 8, 13, 21},
		ConstLabels: constLabels,
	})
	rows := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:        "bingkai_invoice_rows",
		Help:        "Product rows per generated invoice.",
		Buckets:     []float64{0, 1, 2, 4, 7, 8, 12, 20, 50, 100},
		ConstLabels: constLabels,
	})
	skipped := prometheus.NewCounter(prometheus.CounterOpts{
		Name:        "bingkai_invoice_skipped_images_total",
		Help:        "Thumbnails that could not be fetched or decoded.",
		ConstLabels: constLabels,
	})
	footer := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "bingkai_invoice_footer_placement_total",
		Help:        "Footer placements by page rule.",
		ConstLabels: constLabels,
	}, []string{"placement"})

	registerer.MustRegister(runs, errs, duration, pages, rows, skipped, footer)

	return &InvoiceMetrics{
		runs:          runs,
		errors:        errs,
		duration:      duration,
		pages:         pages,
		rows:          rows,
		skippedImages: skipped,
		footer:        footer,
	}
}

// ResetInvoiceMetricsForTest resets the invoice metrics singleton for tests.
func ResetInvoiceMetricsForTest() {
	invoiceMetricsOnce = sync.Once{}
	invoiceMetrics = nil
}

// ObserveRun records one finished run. err decides the outcome.
func (m *InvoiceMetrics) ObserveRun(kind string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
		m.errors.WithLabelValues(kind, ClassifyInvoiceError(err)).Inc()
	}
	m.runs.WithLabelValues(kind, outcome).Inc()
	m.duration.WithLabelValues(kind).Observe(duration.Seconds())
}

// ObserveDocument records the shape of a finished document.
func (m *InvoiceMetrics) ObserveDocument(pages, rows, skippedImages int, newFooterPage bool) {
	if m == nil {
		return
	}
	m.pages.Observe(float64(pages))
	m.rows.Observe(float64(rows))
	if skippedImages > 0 {
		m.skippedImages.Add(float64(skippedImages))
	}
	placement := FooterSamePage
	if newFooterPage {
		placement = FooterNewPage
	}
	m.footer.WithLabelValues(placement).Inc()
}

// ClassifyInvoiceError maps a pipeline error to a metric reason.
func ClassifyInvoiceError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return InvoiceReasonCanceled
	case errors.Is(err, domain.ErrTemplateNotFound), errors.Is(err, domain.ErrInvalidTemplate):
		return InvoiceReasonTemplate
	case errors.Is(err, domain.ErrFontNotFound), errors.Is(err, domain.ErrInvalidFont):
		return InvoiceReasonFont
	case errors.Is(err, domain.ErrSequence):
		return InvoiceReasonSequence
	case errors.Is(err, domain.ErrRender):
		return InvoiceReasonRender
	default:
		return InvoiceReasonUnknown
	}
}
