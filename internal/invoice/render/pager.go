package render

import (
	"fmt"

	"github.com/smallbiznis/bingkai/internal/invoice/layout"
)

// State is a step of the pagination state machine.
type State int

const (
	StateWritingRow State = iota
	StateNeedNewPage
	StatePlacingFooterSamePage
	StatePlacingFooterNewPage
	StateDone
)

func (s State) String() string {
	switch s {
	case StateWritingRow:
		return "writing_row"
	case StateNeedNewPage:
		return "need_new_page"
	case StatePlacingFooterSamePage:
		return "placing_footer_same_page"
	case StatePlacingFooterNewPage:
		return "placing_footer_new_page"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var transitions = map[State][]State{
	StateWritingRow:            {StateNeedNewPage, StatePlacingFooterSamePage, StatePlacingFooterNewPage},
	StateNeedNewPage:           {StateWritingRow},
	StatePlacingFooterSamePage: {StateDone},
	StatePlacingFooterNewPage:  {StateDone},
}

// PageCursor is the mutable position of one composition.
type PageCursor struct {
	Page         int
	Y            float64
	ProductCount int
}

// Pager owns the cursor and walks the state machine. It is used by exactly
// one composition and discarded afterwards.
type Pager struct {
	cfg    layout.Config
	canvas Canvas
	cursor PageCursor
	state  State
	trail  []State

	lastProductPage int
}

func newPager(cfg layout.Config, canvas Canvas, startY float64) *Pager {
	return &Pager{
		cfg:             cfg,
		canvas:          canvas,
		cursor:          PageCursor{Page: canvas.Page(), Y: startY},
		state:           StateWritingRow,
		trail:           []State{StateWritingRow},
		lastProductPage: canvas.Page(),
	}
}

func (p *Pager) Cursor() PageCursor { return p.cursor }

func (p *Pager) State() State { return p.state }

// Trail lists every state entered, starting with WritingRow.
func (p *Pager) Trail() []State {
	out := make([]State, len(p.trail))
	copy(out, p.trail)
	return out
}

func (p *Pager) transition(next State) error {
	for _, allowed := range transitions[p.state] {
		if allowed == next {
			p.state = next
			p.trail = append(p.trail, next)
			return nil
		}
	}
	return fmt.Errorf("pager: illegal transition %s -> %s", p.state, next)
}

// fits reports whether one more row fits above the bottom margin. A row
// that ends exactly on the margin fits.
func (p *Pager) fits() bool {
	return p.cursor.Y-p.cfg.Row.Height >= p.cfg.BottomMargin
}

// Reserve makes room for the next row, breaking to a new page when needed,
// and returns the row's top Y.
func (p *Pager) Reserve() (float64, error) {
	if p.fits() {
		return p.cursor.Y, nil
	}
	if err := p.transition(StateNeedNewPage); err != nil {
		return 0, err
	}
	p.canvas.AddPage()
	p.cursor.Page = p.canvas.Page()
	p.cursor.Y = p.cfg.TopWorkingY()
	if err := p.transition(StateWritingRow); err != nil {
		return 0, err
	}
	return p.cursor.Y, nil
}

// Advance moves the cursor below the row just drawn.
func (p *Pager) Advance() {
	p.cursor.Y -= p.cfg.Row.Height
	p.cursor.ProductCount++
	p.lastProductPage = p.cursor.Page
}

// Finish leaves the row loop and picks the footer placement state.
func (p *Pager) Finish() (State, error) {
	next := StatePlacingFooterSamePage
	if p.cursor.ProductCount >= p.cfg.Footer.Threshold {
		next = StatePlacingFooterNewPage
	}
	if err := p.transition(next); err != nil {
		return p.state, err
	}
	return next, nil
}

// FooterPage appends the dedicated footer page.
func (p *Pager) FooterPage() {
	p.canvas.AddPage()
	p.cursor.Page = p.canvas.Page()
	p.cursor.Y = p.cfg.TopWorkingY()
}

// Complete marks the document as finished at footer bottom y.
func (p *Pager) Complete(y float64) error {
	if err := p.transition(StateDone); err != nil {
		return err
	}
	p.cursor.Y = y
	return nil
}
