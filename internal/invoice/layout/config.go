// Package layout holds the page geometry of an invoice.
//
// All values are PDF points with the origin at the bottom-left corner of the
// page; Y grows upwards. Absolute positions are calibrated against the header
// and footer templates in use and are expected to be tuned per template set.
package layout

import (
	"errors"
	"fmt"
)

// A4 page size in points.
const (
	A4Width  = 595.28
	A4Height = 841.89
)

// Color is an RGB triple in the 0..255 range.
type Color struct {
	R int `mapstructure:"r" json:"r"`
	G int `mapstructure:"g" json:"g"`
	B int `mapstructure:"b" json:"b"`
}

// Point is an absolute position on a page.
type Point struct {
	X float64 `mapstructure:"x" json:"x"`
	Y float64 `mapstructure:"y" json:"y"`
}

// Column is a horizontal slot of the product table.
type Column struct {
	X     float64 `mapstructure:"x" json:"x"`
	Width float64 `mapstructure:"width" json:"width"`
}

// Center returns the horizontal center of the column.
func (c Column) Center() float64 {
	return c.X + c.Width/2
}

type Columns struct {
	Image    Column `mapstructure:"image" json:"image"`
	Name     Column `mapstructure:"name" json:"name"`
	Price    Column `mapstructure:"price" json:"price"`
	Quantity Column `mapstructure:"quantity" json:"quantity"`
	Total    Column `mapstructure:"total" json:"total"`
}

// Row positions are offsets measured downwards from the top of the row.
type Row struct {
	Height            float64 `mapstructure:"height" json:"height"`
	ThumbnailSize     float64 `mapstructure:"thumbnailSize" json:"thumbnail_size"`
	NameBaseline      float64 `mapstructure:"nameBaseline" json:"name_baseline"`
	VariationBaseline float64 `mapstructure:"variationBaseline" json:"variation_baseline"`
	ValueBaseline     float64 `mapstructure:"valueBaseline" json:"value_baseline"`
}

type FontSizes struct {
	Field     float64 `mapstructure:"field" json:"field"`
	Name      float64 `mapstructure:"name" json:"name"`
	Variation float64 `mapstructure:"variation" json:"variation"`
	Value     float64 `mapstructure:"value" json:"value"`
	Total     float64 `mapstructure:"total" json:"total"`
}

type Colors struct {
	Text   Color `mapstructure:"text" json:"text"`
	Muted  Color `mapstructure:"muted" json:"muted"`
	Accent Color `mapstructure:"accent" json:"accent"`
}

// Footer controls where the footer template lands and where the grand
// total is stamped on it.
type Footer struct {
	// Threshold is the product count from which the footer always starts
	// on a fresh page.
	Threshold int     `mapstructure:"threshold" json:"threshold"`
	TopMargin float64 `mapstructure:"topMargin" json:"top_margin"`
	MinY      float64 `mapstructure:"minY" json:"min_y"`
	// Width and Height override the template's intrinsic size when set.
	Width  float64 `mapstructure:"width" json:"width"`
	Height float64 `mapstructure:"height" json:"height"`
	// Total stamp position relative to the footer's bottom-left corner.
	TotalOffsetX    float64 `mapstructure:"totalOffsetX" json:"total_offset_x"`
	TotalOffsetY    float64 `mapstructure:"totalOffsetY" json:"total_offset_y"`
	TotalAlignRight bool    `mapstructure:"totalAlignRight" json:"total_align_right"`
}

// Header holds the first-page stamp positions.
type Header struct {
	InvoiceNumber    Point `mapstructure:"invoiceNumber" json:"invoice_number"`
	IssueDate        Point `mapstructure:"issueDate" json:"issue_date"`
	CompanyName      Point `mapstructure:"companyName" json:"company_name"`
	ContactPerson    Point `mapstructure:"contactPerson" json:"contact_person"`
	OrderChannel     Point `mapstructure:"orderChannel" json:"order_channel"`
	PaymentDate      Point `mapstructure:"paymentDate" json:"payment_date"`
	EstimatedArrival Point `mapstructure:"estimatedArrival" json:"estimated_arrival"`
	PaymentMethod    Point `mapstructure:"paymentMethod" json:"payment_method"`
	// FieldMaxChars caps stamped customer values.
	FieldMaxChars int `mapstructure:"fieldMaxChars" json:"field_max_chars"`
}

type Config struct {
	PageWidth    float64 `mapstructure:"pageWidth" json:"page_width"`
	PageHeight   float64 `mapstructure:"pageHeight" json:"page_height"`
	TopMargin    float64 `mapstructure:"topMargin" json:"top_margin"`
	BottomMargin float64 `mapstructure:"bottomMargin" json:"bottom_margin"`
	// FirstPageStartY is the first row's top on page one, below the header.
	FirstPageStartY float64 `mapstructure:"firstPageStartY" json:"first_page_start_y"`
	NameMaxChars    int     `mapstructure:"nameMaxChars" json:"name_max_chars"`
	// VariationIndicator is drawn with the symbol font before a variation label.
	VariationIndicator string `mapstructure:"variationIndicator" json:"variation_indicator"`
	DateFormat         string `mapstructure:"dateFormat" json:"date_format"`

	Row     Row       `mapstructure:"row" json:"row"`
	Columns Columns   `mapstructure:"columns" json:"columns"`
	Fonts   FontSizes `mapstructure:"fonts" json:"fonts"`
	Colors  Colors    `mapstructure:"colors" json:"colors"`
	Header  Header    `mapstructure:"header" json:"header"`
	Footer  Footer    `mapstructure:"footer" json:"footer"`
}

// Default returns the A4 layout calibrated for the bundled templates.
func Default() Config {
	return Config{
		PageWidth:          A4Width,
		PageHeight:         A4Height,
		TopMargin:          40,
		BottomMargin:       40,
		FirstPageStartY:    520,
		NameMaxChars:       25,
		VariationIndicator: "➜",
		DateFormat:         "02/01/2006",
		Row: Row{
			Height:            60,
			ThumbnailSize:     44,
			NameBaseline:      26,
			VariationBaseline: 42,
			ValueBaseline:     34,
		},
		Columns: Columns{
			Image:    Column{X: 40, Width: 50},
			Name:     Column{X: 100, Width: 200},
			Price:    Column{X: 305, Width: 95},
			Quantity: Column{X: 400, Width: 50},
			Total:    Column{X: 450, Width: 105},
		},
		Fonts: FontSizes{
			Field:     10,
			Name:      11,
			Variation: 9,
			Value:     10,
			Total:     16,
		},
		Colors: Colors{
			Text:   Color{R: 33, G: 33, B: 33},
			Muted:  Color{R: 117, G: 117, B: 117},
			Accent: Color{R: 196, G: 92, B: 38},
		},
		Header: Header{
			InvoiceNumber:    Point{X: 400, Y: 770},
			IssueDate:        Point{X: 400, Y: 752},
			CompanyName:      Point{X: 150, Y: 680},
			ContactPerson:    Point{X: 150, Y: 660},
			OrderChannel:     Point{X: 150, Y: 640},
			PaymentDate:      Point{X: 420, Y: 680},
			EstimatedArrival: Point{X: 420, Y: 660},
			PaymentMethod:    Point{X: 420, Y: 640},
			FieldMaxChars:    28,
		},
		Footer: Footer{
			Threshold:       8,
			TopMargin:       20,
			MinY:            40,
			TotalOffsetX:    490,
			TotalOffsetY:    30,
			TotalAlignRight: true,
		},
	}
}

// Validate rejects geometry the composer cannot paginate.
func (c Config) Validate() error {
	switch {
	case c.PageWidth <= 0 || c.PageHeight <= 0:
		return errors.New("layout: page size must be positive")
	case c.Row.Height <= 0:
		return errors.New("layout: row height must be positive")
	case c.BottomMargin < 0 || c.TopMargin < 0:
		return errors.New("layout: margins cannot be negative")
	case c.TopWorkingY()-c.Row.Height < c.BottomMargin:
		return fmt.Errorf("layout: a %.2fpt row does not fit between the margins", c.Row.Height)
	case c.FirstPageStartY > c.PageHeight || c.FirstPageStartY < c.BottomMargin:
		return errors.New("layout: first page start must lie between the bottom margin and the page top")
	case c.NameMaxChars <= 0:
		return errors.New("layout: name truncation cap must be positive")
	case c.Footer.Threshold <= 0:
		return errors.New("layout: footer threshold must be positive")
	}
	return nil
}

// TopWorkingY is where rows start on every page after the first.
func (c Config) TopWorkingY() float64 {
	return c.PageHeight - c.TopMargin
}

// RowsPerPage reports how many rows fit on a page starting at startY.
func (c Config) RowsPerPage(startY float64) int {
	if c.Row.Height <= 0 {
		return 0
	}
	n := 0
	for y := startY; y-c.Row.Height >= c.BottomMargin; y -= c.Row.Height {
		n++
	}
	return n
}
