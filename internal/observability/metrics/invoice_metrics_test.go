package metrics

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/smallbiznis/bingkai/internal/invoice/domain"
	"github.com/stretchr/testify/assert"
)

func TestClassifyInvoiceError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"deadline", context.DeadlineExceeded, InvoiceReasonCanceled},
		{"template", fmt.Errorf("load: %w", domain.ErrTemplateNotFound), InvoiceReasonTemplate},
		{"invalid template", domain.ErrInvalidTemplate, InvoiceReasonTemplate},
		{"font", fmt.Errorf("load: %w", domain.ErrFontNotFound), InvoiceReasonFont},
		{"sequence", domain.ErrSequence, InvoiceReasonSequence},
		{"render", domain.ErrRender, InvoiceReasonRender},
		{"unknown", errors.New("boom"), InvoiceReasonUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifyInvoiceError(tc.err))
		})
	}
}

func TestInvoiceMetricsCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewInvoiceMetrics(reg, Config{ServiceName: "bingkai", Environment: "test"})

	m.ObserveRun(KindPDF, 120*time.Millisecond, nil)
	m.ObserveRun(KindPDF, 10*time.Millisecond, domain.ErrFontNotFound)
	m.ObserveDocument(3, 9, 2, true)
	m.ObserveDocument(1, 2, 0, false)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues(KindPDF, OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues(KindPDF, OutcomeFailure)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.errors.WithLabelValues(KindPDF, InvoiceReasonFont)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.skippedImages))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.footer.WithLabelValues(FooterNewPage)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.footer.WithLabelValues(FooterSamePage)))

	var nilMetrics *InvoiceMetrics
	nilMetrics.ObserveRun(KindPDF, time.Second, nil)
	nilMetrics.ObserveDocument(1, 1, 0, false)
}

func TestInvoiceSingleton(t *testing.T) {
	ResetInvoiceMetricsForTest()
	t.Cleanup(ResetInvoiceMetricsForTest)

	reg := prometheus.NewRegistry()
	orig := prometheus.DefaultRegisterer
	prometheus.DefaultRegisterer = reg
	t.Cleanup(func() { prometheus.DefaultRegisterer = orig })

	assert.Same(t, Invoice(), InvoiceWithConfig(Config{ServiceName: "other"}))
}
