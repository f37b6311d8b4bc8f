package render

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/smallbiznis/bingkai/internal/invoice/domain"
	"github.com/smallbiznis/bingkai/internal/invoice/format"
	"github.com/smallbiznis/bingkai/internal/invoice/layout"
	"go.uber.org/zap"
)

// ComposeInput is everything drawn before the footer.
type ComposeInput struct {
	Items    []domain.LineItem
	Customer domain.CustomerFields
	Number   string
	IssuedAt time.Time
	Header   *Template
}

// Composition is the composer's hand-off to the footer merger.
type Composition struct {
	LastRowBottomY  float64
	LastProductPage int
	PageCount       int
	ProductCount    int
	Total           int64
	SkippedImages   int

	pager *Pager
}

// Trail returns the pagination states entered so far.
func (c *Composition) Trail() []State {
	if c.pager == nil {
		return nil
	}
	return c.pager.Trail()
}

type Composer struct {
	cfg    layout.Config
	images ImageSource
	log    *zap.Logger
}

func NewComposer(cfg layout.Config, images ImageSource, log *zap.Logger) *Composer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Composer{
		cfg:    cfg,
		images: images,
		log:    log.Named("invoice.composer"),
	}
}

// Compose draws the header page and one row per item, in order.
func (c *Composer) Compose(ctx context.Context, canvas Canvas, in ComposeInput) (*Composition, error) {
	canvas.AddPage()
	if in.Header != nil {
		if err := canvas.DrawTemplate(in.Header, 0, 0, c.cfg.PageWidth, c.cfg.PageHeight); err != nil {
			return nil, fmt.Errorf("%w: draw header %s: %w", domain.ErrInvalidTemplate, in.Header.Ref, err)
		}
	}
	c.stampHeader(canvas, in)

	pager := newPager(c.cfg, canvas, c.cfg.FirstPageStartY)
	comp := &Composition{pager: pager}

	for i, item := range in.Items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		top, err := pager.Reserve()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrRender, err)
		}
		if !c.drawRow(ctx, canvas, top, i, item) {
			comp.SkippedImages++
		}
		pager.Advance()
		comp.Total += item.Subtotal()
	}

	cursor := pager.Cursor()
	comp.LastRowBottomY = cursor.Y
	comp.LastProductPage = pager.lastProductPage
	comp.ProductCount = cursor.ProductCount
	comp.PageCount = canvas.PageCount()
	return comp, nil
}

func (c *Composer) stampHeader(canvas Canvas, in ComposeInput) {
	h := c.cfg.Header
	field := TextStyle{Face: FaceMedium, Size: c.cfg.Fonts.Field, Color: c.cfg.Colors.Text}

	if in.Number != "" {
		canvas.DrawText(in.Number, h.InvoiceNumber.X, h.InvoiceNumber.Y,
			TextStyle{Face: FaceBold, Size: c.cfg.Fonts.Field, Color: c.cfg.Colors.Text})
	}
	if !in.IssuedAt.IsZero() {
		canvas.DrawText(in.IssuedAt.Format(c.dateFormat()), h.IssueDate.X, h.IssueDate.Y,
			TextStyle{Face: FaceRegular, Size: c.cfg.Fonts.Field, Color: c.cfg.Colors.Muted})
	}

	fields := []struct {
		at    layout.Point
		value string
	}{
		{h.CompanyName, in.Customer.CompanyName},
		{h.ContactPerson, in.Customer.ContactPerson},
		{h.OrderChannel, in.Customer.OrderChannel},
		{h.PaymentDate, in.Customer.PaymentDate},
		{h.EstimatedArrival, in.Customer.EstimatedArrival},
		{h.PaymentMethod, in.Customer.PaymentMethod},
	}
	for _, f := range fields {
		value := format.Placeholder(f.value)
		if h.FieldMaxChars > 0 {
			value = format.Truncate(value, h.FieldMaxChars)
		}
		canvas.DrawText(value, f.at.X, f.at.Y, field)
	}
}

func (c *Composer) dateFormat() string {
	if strings.TrimSpace(c.cfg.DateFormat) == "" {
		return "02/01/2006"
	}
	return c.cfg.DateFormat
}

// drawRow draws one product row whose top edge is at top. It reports false
// when the thumbnail had to be skipped.
func (c *Composer) drawRow(ctx context.Context, canvas Canvas, top float64, index int, item domain.LineItem) bool {
	cfg := c.cfg
	thumbOK := c.drawThumbnail(ctx, canvas, top, index, item)

	name := TextStyle{Face: FaceSemiBold, Size: cfg.Fonts.Name, Color: cfg.Colors.Text}
	canvas.DrawText(format.Truncate(item.Name, cfg.NameMaxChars), cfg.Columns.Name.X, top-cfg.Row.NameBaseline, name)

	if item.HasVariation() {
		y := top - cfg.Row.VariationBaseline
		x := cfg.Columns.Name.X
		if cfg.VariationIndicator != "" {
			glyph := TextStyle{Face: FaceSymbol, Size: cfg.Fonts.Variation, Color: cfg.Colors.Accent}
			canvas.DrawText(cfg.VariationIndicator, x, y, glyph)
			x += canvas.TextWidth(cfg.VariationIndicator, glyph) + 3
		}
		label := TextStyle{Face: FaceRegular, Size: cfg.Fonts.Variation, Color: cfg.Colors.Muted}
		canvas.DrawText(format.Truncate(strings.TrimSpace(item.Variation), cfg.NameMaxChars), x, y, label)
	}

	value := TextStyle{Face: FaceRegular, Size: cfg.Fonts.Value, Color: cfg.Colors.Text}
	valueY := top - cfg.Row.ValueBaseline
	drawCentered(canvas, format.FormatRupiah(item.Price), cfg.Columns.Price, valueY, value)
	drawCentered(canvas, format.FormatQuantity(item.Quantity), cfg.Columns.Quantity, valueY, value)

	subtotal := TextStyle{Face: FaceBold, Size: cfg.Fonts.Value, Color: cfg.Colors.Accent}
	drawCentered(canvas, format.FormatRupiah(item.Subtotal()), cfg.Columns.Total, valueY, subtotal)

	return thumbOK
}

func (c *Composer) drawThumbnail(ctx context.Context, canvas Canvas, top float64, index int, item domain.LineItem) bool {
	ref := strings.TrimSpace(item.ImageURL)
	if ref == "" || c.images == nil {
		c.log.Debug("row has no thumbnail", zap.Int("row", index))
		return true
	}

	img, err := c.images.Thumbnail(ctx, ref)
	if err != nil {
		c.log.Warn("skipping thumbnail",
			zap.Int("row", index),
			zap.String("image_url", ref),
			zap.Error(err),
		)
		return false
	}

	size := c.cfg.Row.ThumbnailSize
	x := c.cfg.Columns.Image.X + (c.cfg.Columns.Image.Width-size)/2
	y := top - (c.cfg.Row.Height+size)/2
	box := layout.FitSquare(img.Width, img.Height, x, y, size)
	if err := canvas.DrawImage(img, box.X, box.Y, box.Width, box.Height); err != nil {
		c.log.Warn("skipping thumbnail",
			zap.Int("row", index),
			zap.String("image_url", ref),
			zap.Error(err),
		)
		return false
	}
	return true
}

func drawCentered(canvas Canvas, text string, col layout.Column, y float64, style TextStyle) {
	w := canvas.TextWidth(text, style)
	canvas.DrawText(text, col.Center()-w/2, y, style)
}
