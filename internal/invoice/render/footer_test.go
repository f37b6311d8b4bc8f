package render

import (
	"testing"

	"github.com/smallbiznis/bingkai/internal/invoice/domain"
	"github.com/smallbiznis/bingkai/internal/invoice/layout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testFooter = &Template{Ref: "footer.pdf", Width: 200, Height: 30}

func merge(t *testing.T, cfg layout.Config, n int, footer *Template) (*Recorder, *Composition, Placement) {
	t.Helper()
	rec, comp := compose(t, cfg, ComposeInput{Items: items(n)})
	placement, err := NewFooterMerger(cfg, zap.NewNop()).Merge(rec, comp, footer, comp.Total)
	require.NoError(t, err)
	return rec, comp, placement
}

func TestMergeStampsGrandTotal(t *testing.T) {
	cfg := smallConfig()
	rec, comp := compose(t, cfg, ComposeInput{Items: []domain.LineItem{
		{Name: "Bingkai A4", Price: 125000, Quantity: 2},
		{Name: "Paku", Price: 2800, Quantity: 1},
	}})
	require.Equal(t, int64(252800), comp.Total)
	require.Equal(t, domain.GrandTotal([]domain.LineItem{
		{Price: 125000, Quantity: 2},
		{Price: 2800, Quantity: 1},
	}), comp.Total)

	placement, err := NewFooterMerger(cfg, zap.NewNop()).Merge(rec, comp, testFooter, comp.Total)
	require.NoError(t, err)

	assert.Equal(t, "Rp252.800", placement.TotalText)
	assert.Contains(t, rec.Texts(placement.Page), "Rp252.800")
}

func TestMergeFooterPageByThreshold(t *testing.T) {
	cfg := layout.Default()
	footer := &Template{Ref: "footer.pdf", Width: 515, Height: 60}

	cases := []struct {
		items   int
		newPage bool
		page    int
	}{
		{0, false, 0},
		{7, false, 0},
		{8, true, 1},
		{9, true, 2},
		{20, true, 2},
		{21, true, 3},
	}

	for _, tc := range cases {
		rec, comp, placement := merge(t, cfg, tc.items, footer)
		assert.Equal(t, tc.newPage, placement.NewPage, "items=%d", tc.items)
		assert.Equal(t, tc.page, placement.Page, "items=%d", tc.items)
		if tc.newPage {
			assert.Equal(t, comp.LastProductPage+1, placement.Page, "items=%d", tc.items)
			assert.Equal(t, comp.PageCount+1, rec.PageCount(), "items=%d", tc.items)
			assert.InDelta(t, cfg.TopWorkingY()-footer.Height, placement.Y, 1e-9)
		} else {
			assert.Equal(t, comp.PageCount, rec.PageCount(), "items=%d", tc.items)
		}
	}
}

func TestMergeBelowLastRow(t *testing.T) {
	cfg := smallConfig()
	_, comp, placement := merge(t, cfg, 1, testFooter)

	assert.False(t, placement.NewPage)
	assert.InDelta(t, comp.LastRowBottomY-cfg.Footer.TopMargin-testFooter.Height, placement.Y, 1e-9)
	assert.InDelta(t, (cfg.PageWidth-testFooter.Width)/2, placement.X, 1e-9)
	assert.InDelta(t, testFooter.Width, placement.Width, 1e-9)
}

func TestMergeClampsToMinY(t *testing.T) {
	cfg := smallConfig()
	_, _, placement := merge(t, cfg, 4, testFooter)

	assert.False(t, placement.NewPage)
	assert.Equal(t, 0, placement.Page)
	assert.InDelta(t, cfg.Footer.MinY, placement.Y, 1e-9)
}

func TestMergeConfigOverridesSize(t *testing.T) {
	cfg := smallConfig()
	cfg.Footer.Width = 100
	cfg.Footer.Height = 10
	rec, _, placement := merge(t, cfg, 1, testFooter)

	assert.InDelta(t, 100, placement.Width, 1e-9)
	assert.InDelta(t, 100, placement.X, 1e-9)

	ops := rec.Operations()
	var tpl domain.Operation
	for _, op := range ops {
		if op.Kind == OpTemplate && op.Ref == "footer.pdf" {
			tpl = op
		}
	}
	assert.InDelta(t, 10, tpl.Height, 1e-9)
}

func TestMergeTotalPosition(t *testing.T) {
	cfg := smallConfig()
	cfg.Footer.TotalOffsetX = 150
	cfg.Footer.TotalOffsetY = 12

	cfg.Footer.TotalAlignRight = false
	rec, _, placement := merge(t, cfg, 1, testFooter)
	total := lastText(rec, placement.TotalText)
	assert.InDelta(t, placement.X+150, total.X, 1e-9)
	assert.InDelta(t, placement.Y+12, total.Y, 1e-9)

	cfg.Footer.TotalAlignRight = true
	rec, _, placement = merge(t, cfg, 1, testFooter)
	total = lastText(rec, placement.TotalText)
	width := rec.TextWidth(placement.TotalText, TextStyle{Size: cfg.Fonts.Total})
	assert.InDelta(t, placement.X+150-width, total.X, 1e-9)
}

func TestMergeMissingFooter(t *testing.T) {
	cfg := smallConfig()
	rec, comp := compose(t, cfg, ComposeInput{Items: items(1)})

	_, err := NewFooterMerger(cfg, zap.NewNop()).Merge(rec, comp, nil, comp.Total)
	assert.ErrorIs(t, err, domain.ErrTemplateNotFound)

	_, err = NewFooterMerger(cfg, zap.NewNop()).Merge(rec, comp, &Template{Ref: "empty.pdf"}, comp.Total)
	assert.ErrorIs(t, err, domain.ErrInvalidTemplate)
}

func TestMergeTrailMovesForward(t *testing.T) {
	cfg := smallConfig()
	_, comp, _ := merge(t, cfg, 13, testFooter)

	assert.Equal(t, []State{
		StateWritingRow,
		StateNeedNewPage,
		StateWritingRow,
		StateNeedNewPage,
		StateWritingRow,
		StatePlacingFooterNewPage,
		StateDone,
	}, comp.Trail())

	_, comp, _ = merge(t, cfg, 2, testFooter)
	assert.Equal(t, []State{StateWritingRow, StatePlacingFooterSamePage, StateDone}, comp.Trail())
}

func lastText(rec *Recorder, text string) domain.Operation {
	var found domain.Operation
	for _, op := range rec.Operations() {
		if op.Kind == OpText && op.Text == text {
			found = op
		}
	}
	return found
}
