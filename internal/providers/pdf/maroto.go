package pdf

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/smallbiznis/bingkai/internal/invoice/layout"
)

// mmPerPt converts layout points into maroto's millimetres.
const mmPerPt = 25.4 / 72

// DefaultFooterHeight is the generated footer height in points when the
// layout does not fix one.
const DefaultFooterHeight = 160.0

type PDFProvider struct {
	brand Brand
}

func New() Provider {
	return &PDFProvider{brand: DefaultBrand}
}

func NewWithBrand(b Brand) Provider {
	return &PDFProvider{brand: b}
}

func toColor(c layout.Color) *props.Color {
	return &props.Color{Red: c.R, Green: c.G, Blue: c.B}
}

// GenerateHeader renders a full page with the brand block, the invoice
// title and the labels of the customer fields stamped later. Each label
// shares its baseline with the value the layout stamps beside it.
func (p *PDFProvider) GenerateHeader(ctx context.Context, cfg layout.Config) ([]byte, error) {
	mcfg := config.NewBuilder().
		WithDimensions(cfg.PageWidth*mmPerPt, cfg.PageHeight*mmPerPt).
		WithLeftMargin(cfg.Columns.Image.X * mmPerPt).
		WithRightMargin(cfg.Columns.Image.X * mmPerPt).
		WithTopMargin(cfg.TopMargin * mmPerPt).
		Build()

	m := maroto.New(mcfg)
	accent := toColor(cfg.Colors.Accent)
	muted := toColor(cfg.Colors.Muted)

	m.AddRow(14,
		text.NewCol(7, p.brand.Name, props.Text{
			Size:  22,
			Style: fontstyle.Bold,
			Align: align.Left,
			Color: accent,
		}),
		text.NewCol(5, "INVOICE", props.Text{
			Size:  18,
			Style: fontstyle.Bold,
			Align: align.Right,
		}),
	)
	m.AddRow(6,
		text.NewCol(7, p.brand.Tagline, props.Text{Size: 9, Color: muted}),
		col.New(5),
	)
	m.AddRow(6,
		text.NewCol(12, p.brand.Contact, props.Text{Size: 8, Color: muted}),
	)
	cursor := 26.0

	for i, r := range labelRows(cfg.Header) {
		top := rowTopFor(cfg, r.y, labelSize)
		if gap := top - cursor; gap > 0 {
			if i == 0 {
				m.AddRows(line.NewRow(gap))
			} else {
				m.AddRow(gap, col.New(12))
			}
			cursor = top
		}
		m.AddRow(labelRowHeight,
			labelCol(r.left),
			labelCol(r.right),
		)
		cursor += labelRowHeight
	}

	// Table header sits just above the first item row.
	if gap := rowTopFor(cfg, cfg.FirstPageStartY+tableHeaderGap, labelSize) - cursor; gap > 0 {
		m.AddRows(line.NewRow(gap))
	}
	m.AddRow(labelRowHeight,
		text.NewCol(2, "Foto", props.Text{Size: labelSize, Style: fontstyle.Bold, Align: align.Center}),
		text.NewCol(4, "Produk", props.Text{Size: labelSize, Style: fontstyle.Bold}),
		text.NewCol(2, "Harga", props.Text{Size: labelSize, Style: fontstyle.Bold, Align: align.Center}),
		text.NewCol(2, "Jumlah", props.Text{Size: labelSize, Style: fontstyle.Bold, Align: align.Center}),
		text.NewCol(2, "Subtotal", props.Text{Size: labelSize, Style: fontstyle.Bold, Align: align.Center}),
	)

	return generate(m)
}

const (
	labelSize      = 9.0
	labelRowHeight = 6.0
	tableHeaderGap = 8.0
)

// labelRow is one line of customer field labels, left and right column.
type labelRow struct {
	y           float64
	left, right string
}

// labelRows pairs the customer field labels by the baseline of their
// values. Rows are ordered top to bottom; a column without a field at that
// baseline stays empty.
func labelRows(h layout.Header) []labelRow {
	fields := []struct {
		label string
		at    layout.Point
		right bool
	}{
		{"Nama Perusahaan", h.CompanyName, false},
		{"Nama Kontak", h.ContactPerson, false},
		{"Pemesanan Melalui", h.OrderChannel, false},
		{"Tanggal Pembayaran", h.PaymentDate, true},
		{"Estimasi Tiba", h.EstimatedArrival, true},
		{"Metode Pembayaran", h.PaymentMethod, true},
	}

	var rows []labelRow
	for _, f := range fields {
		i := slices.IndexFunc(rows, func(r labelRow) bool { return r.y == f.at.Y })
		if i < 0 {
			rows = append(rows, labelRow{y: f.at.Y})
			i = len(rows) - 1
		}
		if f.right {
			rows[i].right = f.label
		} else {
			rows[i].left = f.label
		}
	}
	slices.SortFunc(rows, func(a, b labelRow) int { return cmp.Compare(b.y, a.y) })
	return rows
}

func labelCol(label string) core.Col {
	if label == "" {
		return col.New(6)
	}
	return text.NewCol(6, label, props.Text{Size: labelSize, Style: fontstyle.Bold})
}

// rowTopFor returns the row top, in millimetres below the top margin, that
// puts text of the given point size on baseline y. maroto draws text one
// font height below the top of its cell.
func rowTopFor(cfg layout.Config, y, size float64) float64 {
	return (cfg.PageHeight - y - cfg.TopMargin - size) * mmPerPt
}

// GenerateFooter renders the totals box sized to the configured footer, or
// to the content width and a fixed height when the layout leaves it open.
func (p *PDFProvider) GenerateFooter(ctx context.Context, cfg layout.Config) ([]byte, error) {
	width := cfg.Footer.Width
	if width <= 0 {
		width = cfg.PageWidth - 2*cfg.Columns.Image.X
	}
	height := cfg.Footer.Height
	if height <= 0 {
		height = DefaultFooterHeight
	}

	mcfg := config.NewBuilder().
		WithDimensions(width*mmPerPt, height*mmPerPt).
		Build()

	m := maroto.New(mcfg)
	muted := toColor(cfg.Colors.Muted)

	m.AddRows(line.NewRow(2))
	m.AddRow(8,
		col.New(6),
		text.NewCol(6, "TOTAL PEMBAYARAN", props.Text{
			Size:  10,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)
	m.AddRow(6,
		text.NewCol(12, p.brand.Bank, props.Text{Size: 8, Color: muted}),
	)
	m.AddRow(6,
		text.NewCol(12, "Terima kasih telah berbelanja di "+p.brand.Name+".", props.Text{
			Size:  8,
			Style: fontstyle.Italic,
			Color: muted,
		}),
	)

	return generate(m)
}

func generate(m core.Maroto) ([]byte, error) {
	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate template: %w", err)
	}
	return doc.GetBytes(), nil
}
