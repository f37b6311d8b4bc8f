package render

import "github.com/smallbiznis/bingkai/internal/invoice/layout"

// Face selects one of the embedded fonts.
type Face string

const (
	FaceRegular  Face = "regular"
	FaceMedium   Face = "medium"
	FaceSemiBold Face = "semibold"
	FaceBold     Face = "bold"
	FaceSymbol   Face = "symbol"
)

// TextStyle describes how a string is drawn.
type TextStyle struct {
	Face  Face
	Size  float64
	Color layout.Color
}

// Template is a pre-authored single PDF page drawn as a background.
type Template struct {
	Ref    string
	Data   []byte
	Width  float64
	Height float64
}

// Image is a decoded thumbnail ready to embed.
type Image struct {
	Ref    string
	Data   []byte
	Format string // PNG, JPG or GIF
	Width  int
	Height int
}

// Canvas is the drawing surface the composer writes to.
//
// Coordinates are points from the bottom-left corner of the current page and
// text Y is the baseline. Pages are zero based; Page returns -1 until the
// first AddPage.
type Canvas interface {
	AddPage()
	Page() int
	PageCount() int
	DrawTemplate(tpl *Template, x, y, w, h float64) error
	DrawImage(img *Image, x, y, w, h float64) error
	DrawText(text string, x, y float64, style TextStyle)
	TextWidth(text string, style TextStyle) float64
}
