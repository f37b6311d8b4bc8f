package render

import (
	"github.com/smallbiznis/bingkai/internal/invoice/domain"
)

const (
	OpPage     = "page"
	OpTemplate = "template"
	OpImage    = "image"
	OpText     = "text"
)

// Recorder is a Canvas that keeps every draw call instead of producing a PDF.
type Recorder struct {
	page  int
	pages int
	ops   []domain.Operation
}

func NewRecorder() *Recorder {
	return &Recorder{page: -1}
}

func (r *Recorder) AddPage() {
	r.pages++
	r.page = r.pages - 1
	r.ops = append(r.ops, domain.Operation{Kind: OpPage, Page: r.page})
}

func (r *Recorder) Page() int { return r.page }

func (r *Recorder) PageCount() int { return r.pages }

func (r *Recorder) DrawTemplate(tpl *Template, x, y, w, h float64) error {
	r.ops = append(r.ops, domain.Operation{
		Kind: OpTemplate, Page: r.page, X: x, Y: y, Width: w, Height: h, Ref: tpl.Ref,
	})
	return nil
}

func (r *Recorder) DrawImage(img *Image, x, y, w, h float64) error {
	r.ops = append(r.ops, domain.Operation{
		Kind: OpImage, Page: r.page, X: x, Y: y, Width: w, Height: h, Ref: img.Ref,
	})
	return nil
}

func (r *Recorder) DrawText(text string, x, y float64, style TextStyle) {
	r.ops = append(r.ops, domain.Operation{
		Kind: OpText, Page: r.page, X: x, Y: y, Text: text, Font: string(style.Face),
	})
}

// TextWidth approximates a proportional font as half an em per rune.
func (r *Recorder) TextWidth(text string, style TextStyle) float64 {
	return float64(len([]rune(text))) * style.Size * 0.5
}

// Operations returns the recorded calls in draw order.
func (r *Recorder) Operations() []domain.Operation {
	out := make([]domain.Operation, len(r.ops))
	copy(out, r.ops)
	return out
}

// Texts returns the strings drawn on page, in draw order.
func (r *Recorder) Texts(page int) []string {
	var out []string
	for _, op := range r.ops {
		if op.Kind == OpText && op.Page == page {
			out = append(out, op.Text)
		}
	}
	return out
}
