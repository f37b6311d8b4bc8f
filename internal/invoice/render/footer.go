package render

import (
	"fmt"

	"github.com/smallbiznis/bingkai/internal/invoice/domain"
	"github.com/smallbiznis/bingkai/internal/invoice/format"
	"github.com/smallbiznis/bingkai/internal/invoice/layout"
	"go.uber.org/zap"
)

// Placement is where the footer template ended up.
type Placement struct {
	Page    int
	X       float64
	Y       float64
	Width   float64
	Height  float64
	NewPage bool
	// TotalText is the stamped grand total.
	TotalText string
}

type FooterMerger struct {
	cfg layout.Config
	log *zap.Logger
}

func NewFooterMerger(cfg layout.Config, log *zap.Logger) *FooterMerger {
	if log == nil {
		log = zap.NewNop()
	}
	return &FooterMerger{cfg: cfg, log: log.Named("invoice.footer")}
}

// Merge places the footer template after the last row and stamps the grand
// total on it. From the threshold product count on, the footer always gets a
// fresh page; below it the footer sits under the last row, pushed up to the
// minimum Y when it would overrun the bottom of the page.
func (m *FooterMerger) Merge(canvas Canvas, comp *Composition, footer *Template, total int64) (Placement, error) {
	if footer == nil {
		return Placement{}, fmt.Errorf("%w: footer template missing", domain.ErrTemplateNotFound)
	}
	w, h := m.size(footer)
	if w <= 0 || h <= 0 {
		return Placement{}, fmt.Errorf("%w: footer %s has no size", domain.ErrInvalidTemplate, footer.Ref)
	}

	pager := comp.pager
	if pager == nil {
		pager = newPager(m.cfg, canvas, comp.LastRowBottomY)
		pager.cursor.ProductCount = comp.ProductCount
	}

	state, err := pager.Finish()
	if err != nil {
		return Placement{}, fmt.Errorf("%w: %w", domain.ErrRender, err)
	}

	var y float64
	newPage := state == StatePlacingFooterNewPage
	if newPage {
		pager.FooterPage()
		y = m.cfg.TopWorkingY() - h
	} else {
		y = comp.LastRowBottomY - m.cfg.Footer.TopMargin - h
		if y < m.cfg.Footer.MinY {
			m.log.Debug("footer shifted up to minimum y",
				zap.Float64("wanted_y", y),
				zap.Float64("min_y", m.cfg.Footer.MinY),
			)
			y = m.cfg.Footer.MinY
		}
	}

	x := layout.CenterX(m.cfg.PageWidth, w)
	if err := canvas.DrawTemplate(footer, x, y, w, h); err != nil {
		return Placement{}, fmt.Errorf("%w: draw footer %s: %w", domain.ErrInvalidTemplate, footer.Ref, err)
	}

	text := format.FormatRupiah(total)
	style := TextStyle{Face: FaceBold, Size: m.cfg.Fonts.Total, Color: m.cfg.Colors.Accent}
	tx := x + m.cfg.Footer.TotalOffsetX
	if m.cfg.Footer.TotalAlignRight {
		tx -= canvas.TextWidth(text, style)
	}
	canvas.DrawText(text, tx, y+m.cfg.Footer.TotalOffsetY, style)

	if err := pager.Complete(y); err != nil {
		return Placement{}, fmt.Errorf("%w: %w", domain.ErrRender, err)
	}

	return Placement{
		Page:      canvas.Page(),
		X:         x,
		Y:         y,
		Width:     w,
		Height:    h,
		NewPage:   newPage,
		TotalText: text,
	}, nil
}

func (m *FooterMerger) size(footer *Template) (float64, float64) {
	w, h := footer.Width, footer.Height
	if m.cfg.Footer.Width > 0 {
		w = m.cfg.Footer.Width
	}
	if m.cfg.Footer.Height > 0 {
		h = m.cfg.Footer.Height
	}
	return w, h
}
