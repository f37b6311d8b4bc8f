package render

import (
	"bytes"
	"image/png"
	"testing"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/smallbiznis/bingkai/internal/invoice/layout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPDFCanvasWritesPages(t *testing.T) {
	cfg := layout.Default()
	c := NewPDFCanvas(cfg, Fonts{}, Metadata{
		Title:     "INV/20240309/0001",
		CreatedAt: time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC),
	})
	assert.Equal(t, -1, c.Page())

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, sample(4, 4)))
	img, err := DecodeImage("thumb.png", buf.Bytes())
	require.NoError(t, err)

	c.AddPage()
	c.DrawText("Bingkai Kayu ➜", 40, 700, TextStyle{Face: FaceSemiBold, Size: 11})
	c.DrawText("➜", 40, 680, TextStyle{Face: FaceSymbol, Size: 9})
	require.NoError(t, c.DrawImage(img, 40, 600, 44, 44))
	c.AddPage()
	require.NoError(t, c.DrawImage(img, 40, 600, 44, 44))

	assert.Equal(t, 1, c.Page())
	assert.Equal(t, 2, c.PageCount())
	assert.Greater(t, c.TextWidth("Rp1.000.000", TextStyle{Face: FaceBold, Size: 10}), 0.0)

	out, err := c.Bytes()
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))

	api.DisableConfigDir()
	pages, err := api.PageCount(bytes.NewReader(out), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, pages)
}

func TestPDFCanvasSkipsBrokenImage(t *testing.T) {
	c := NewPDFCanvas(layout.Default(), Fonts{}, Metadata{})
	c.AddPage()

	err := c.DrawImage(&Image{Ref: "broken.png", Format: "PNG", Data: []byte("nope"), Width: 1, Height: 1}, 0, 0, 10, 10)
	assert.Error(t, err)

	c.DrawText("still here", 40, 700, TextStyle{Face: FaceRegular, Size: 10})
	_, err = c.Bytes()
	assert.NoError(t, err)
}
