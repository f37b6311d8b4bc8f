package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/bingkai/internal/assets"
	"github.com/smallbiznis/bingkai/internal/clock"
	"github.com/smallbiznis/bingkai/internal/config"
	invoicedomain "github.com/smallbiznis/bingkai/internal/invoice/domain"
	"github.com/smallbiznis/bingkai/internal/invoice/format"
	"github.com/smallbiznis/bingkai/internal/invoice/layout"
	"github.com/smallbiznis/bingkai/internal/invoice/render"
	"github.com/smallbiznis/bingkai/internal/invoice/sequence"
	"github.com/smallbiznis/bingkai/internal/observability/logger"
	"github.com/smallbiznis/bingkai/internal/observability/metrics"
	"github.com/smallbiznis/bingkai/internal/observability/tracing"
	"github.com/smallbiznis/bingkai/internal/providers/pdf"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// DraftNumber is shown on previews, which never consume a sequence number.
const DraftNumber = "DRAFT"

type ServiceParam struct {
	fx.In

	Config    config.Config
	Layout    *config.LayoutHolder
	Resources assets.Loader `name:"resources"`
	Images    assets.Loader `name:"images"`
	Templates pdf.Provider
	Sequencer sequence.Sequencer
	Clock     clock.Clock
	Log       *zap.Logger
	GenID     *snowflake.Node

	InvoiceMetrics *metrics.InvoiceMetrics `optional:"true"`
	Metrics        *metrics.Metrics        `optional:"true"`
}

type Service struct {
	log *zap.Logger

	layout    *config.LayoutHolder
	resources *ResourceLoader
	images    render.ImageSource
	sequencer sequence.Sequencer
	clock     clock.Clock
	genID     *snowflake.Node

	numberTemplate string
	author         string
	creator        string

	invoiceMetrics *metrics.InvoiceMetrics
	metrics        *metrics.Metrics
}

func NewService(p ServiceParam) invoicedomain.Service {
	return New(p)
}

// New builds the concrete service; the CLI and tests use it without fx.
func New(p ServiceParam) *Service {
	log := p.Log
	if log == nil {
		log = zap.NewNop()
	}
	c := p.Clock
	if c == nil {
		c = clock.New()
	}
	seq := p.Sequencer
	if seq == nil {
		seq = sequence.NewMemorySequencer()
	}
	holder := p.Layout
	if holder == nil {
		holder = config.NewStaticLayoutHolder(layout.Default())
	}
	numberTemplate := strings.TrimSpace(p.Config.Invoice.NumberTemplate)
	if numberTemplate == "" {
		numberTemplate = format.DefaultInvoiceNumberTemplate
	}
	resources, images := p.Resources, p.Images
	if resources == nil || images == nil {
		direct := assets.NewDirect(p.Config)
		if resources == nil {
			resources = direct
		}
		if images == nil {
			images = direct
		}
	}
	creator := strings.TrimSpace(p.Config.AppName)
	if creator == "" {
		creator = "bingkai"
	}

	return &Service{
		log:            log.Named("invoice.service"),
		layout:         holder,
		resources:      NewResourceLoader(resources, p.Templates, p.Config.Assets, log),
		images:         render.NewImageSource(images),
		sequencer:      seq,
		clock:          c,
		genID:          p.GenID,
		numberTemplate: numberTemplate,
		author:         strings.TrimSpace(p.Config.Invoice.Author),
		creator:        creator,
		invoiceMetrics: p.InvoiceMetrics,
		metrics:        p.Metrics,
	}
}

func (s *Service) Generate(ctx context.Context, req invoicedomain.GenerateRequest) (doc *invoicedomain.Document, err error) {
	started := time.Now()
	ctx, span := tracing.StartInvoiceSpan(ctx, "generate", attribute.Int("invoice.items", len(req.Items)))
	defer func() {
		tracing.EndSpan(span, err)
		s.observe(ctx, metrics.KindPDF, started, len(req.Items), err)
	}()
	log := logger.WithContext(ctx, s.log)

	cfg := s.layout.Get()
	res, err := s.resources.Load(ctx, cfg)
	if err != nil {
		log.Error("invoice resources unavailable", zap.Error(err))
		return nil, err
	}

	issuedAt := s.clock.Now()
	number, err := s.nextNumber(ctx, issuedAt)
	if err != nil {
		log.Error("invoice number allocation failed", zap.Error(err))
		return nil, err
	}
	id := s.nextID()
	log = logger.WithInvoice(log, id.String(), number)
	span.SetAttributes(attribute.String("invoice.number", number))

	canvas := render.NewPDFCanvas(cfg, res.Fonts, render.Metadata{
		Title:     number,
		Author:    s.author,
		Subject:   "Invoice " + number,
		Creator:   s.creator,
		CreatedAt: issuedAt,
	})
	comp, placement, err := s.draw(ctx, cfg, canvas, res, req, number, issuedAt)
	if err != nil {
		log.Error("invoice layout failed", zap.Error(err))
		return nil, err
	}

	data, err := canvas.Bytes()
	if err != nil {
		log.Error("invoice serialization failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", invoicedomain.ErrRender, err)
	}

	s.invoiceMetrics.ObserveDocument(canvas.PageCount(), comp.ProductCount, comp.SkippedImages, placement.NewPage)
	log.Info("invoice generated",
		zap.Int("pages", canvas.PageCount()),
		zap.Int("products", comp.ProductCount),
		zap.Int64("total", comp.Total),
		zap.Bool("footer_new_page", placement.NewPage),
		zap.Int("skipped_images", comp.SkippedImages),
		zap.Int("bytes", len(data)),
	)

	return &invoicedomain.Document{
		ID:            id,
		Number:        number,
		Filename:      format.Filename(req.Customer.CompanyName, issuedAt),
		IssuedAt:      issuedAt,
		Bytes:         data,
		Pages:         canvas.PageCount(),
		ProductCount:  comp.ProductCount,
		Total:         comp.Total,
		SkippedImages: comp.SkippedImages,
	}, nil
}

func (s *Service) Preview(ctx context.Context, req invoicedomain.GenerateRequest) (preview *invoicedomain.Preview, err error) {
	started := time.Now()
	ctx, span := tracing.StartInvoiceSpan(ctx, "preview", attribute.Int("invoice.items", len(req.Items)))
	defer func() {
		tracing.EndSpan(span, err)
		s.observe(ctx, metrics.KindPreview, started, len(req.Items), err)
	}()
	log := logger.WithContext(ctx, s.log)

	cfg := s.layout.Get()
	res, err := s.resources.Load(ctx, cfg)
	if err != nil {
		log.Error("invoice resources unavailable", zap.Error(err))
		return nil, err
	}

	issuedAt := s.clock.Now()
	recorder := render.NewRecorder()
	comp, placement, err := s.draw(ctx, cfg, recorder, res, req, DraftNumber, issuedAt)
	if err != nil {
		log.Error("invoice preview failed", zap.Error(err))
		return nil, err
	}

	log.Debug("invoice previewed",
		zap.Int("pages", recorder.PageCount()),
		zap.Int("products", comp.ProductCount),
	)

	return &invoicedomain.Preview{
		Number:       DraftNumber,
		Filename:     format.Filename(req.Customer.CompanyName, issuedAt),
		Pages:        recorder.PageCount(),
		ProductCount: comp.ProductCount,
		Total:        comp.Total,
		TotalText:    placement.TotalText,
		Footer: invoicedomain.FooterPreview{
			Page:    placement.Page,
			X:       placement.X,
			Y:       placement.Y,
			Width:   placement.Width,
			Height:  placement.Height,
			NewPage: placement.NewPage,
		},
		Operations: recorder.Operations(),
	}, nil
}

// draw runs the composer and then the footer merger on canvas.
func (s *Service) draw(ctx context.Context, cfg layout.Config, canvas render.Canvas, res *Resources, req invoicedomain.GenerateRequest, number string, issuedAt time.Time) (*render.Composition, render.Placement, error) {
	composer := render.NewComposer(cfg, s.images, s.log)
	comp, err := composer.Compose(ctx, canvas, render.ComposeInput{
		Items:    req.Items,
		Customer: req.Customer,
		Number:   number,
		IssuedAt: issuedAt,
		Header:   res.Header,
	})
	if err != nil {
		return nil, render.Placement{}, err
	}
	if err := ctx.Err(); err != nil {
		return nil, render.Placement{}, err
	}

	merger := render.NewFooterMerger(cfg, s.log)
	placement, err := merger.Merge(canvas, comp, res.Footer, comp.Total)
	if err != nil {
		return nil, render.Placement{}, err
	}
	return comp, placement, nil
}

func (s *Service) nextNumber(ctx context.Context, issuedAt time.Time) (string, error) {
	seq, err := s.sequencer.Next(ctx, issuedAt)
	if err != nil {
		return "", err
	}
	number, err := format.FormatInvoiceNumber(s.numberTemplate, issuedAt, seq)
	if err != nil {
		return "", fmt.Errorf("%w: %w", invoicedomain.ErrSequence, err)
	}
	return number, nil
}

func (s *Service) nextID() snowflake.ID {
	if s.genID == nil {
		return 0
	}
	return s.genID.Generate()
}

func (s *Service) observe(ctx context.Context, kind string, started time.Time, rows int, err error) {
	s.invoiceMetrics.ObserveRun(kind, time.Since(started), err)
	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = metrics.OutcomeFailure
		rows = 0
	}
	s.metrics.RecordInvoice(ctx, kind, outcome, rows)
}
