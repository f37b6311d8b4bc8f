package render

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"github.com/phpdave11/gofpdf"
	"github.com/phpdave11/gofpdf/contrib/gofpdi"
	"github.com/smallbiznis/bingkai/internal/invoice/layout"
)

// Fonts holds the TrueType files embedded in the document. A nil entry falls
// back to the built-in Helvetica; without a symbol font the variation
// indicator is drawn as SymbolFallback.
type Fonts struct {
	Regular  []byte
	Medium   []byte
	SemiBold []byte
	Bold     []byte
	Symbol   []byte
}

const SymbolFallback = ">"

// Metadata is written into the PDF info dictionary.
type Metadata struct {
	Title     string
	Author    string
	Subject   string
	Creator   string
	CreatedAt time.Time
}

type fontRef struct {
	family string
	style  string
	utf8   bool
}

// PDFCanvas draws onto a gofpdf document and imports template pages with
// gofpdi. It converts the bottom-up coordinates of Canvas into gofpdf's
// top-down ones.
type PDFCanvas struct {
	pdf      *gofpdf.Fpdf
	importer *gofpdi.Importer
	height   float64

	fonts     map[Face]fontRef
	translate func(string) string
	templates map[string]int
	images    map[string]string
}

func NewPDFCanvas(cfg layout.Config, fonts Fonts, meta Metadata) *PDFCanvas {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: cfg.PageWidth, Ht: cfg.PageHeight},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCatalogSort(true)
	if !meta.CreatedAt.IsZero() {
		pdf.SetCreationDate(meta.CreatedAt)
		pdf.SetModificationDate(meta.CreatedAt)
	}
	pdf.SetTitle(meta.Title, true)
	pdf.SetAuthor(meta.Author, true)
	pdf.SetSubject(meta.Subject, true)
	pdf.SetCreator(meta.Creator, true)

	c := &PDFCanvas{
		pdf:       pdf,
		importer:  gofpdi.NewImporter(),
		height:    cfg.PageHeight,
		fonts:     make(map[Face]fontRef, 5),
		translate: pdf.UnicodeTranslatorFromDescriptor(""),
		templates: make(map[string]int),
		images:    make(map[string]string),
	}
	c.registerFont(FaceRegular, fonts.Regular, "")
	c.registerFont(FaceMedium, fonts.Medium, "")
	c.registerFont(FaceSemiBold, fonts.SemiBold, "B")
	c.registerFont(FaceBold, fonts.Bold, "B")
	c.registerFont(FaceSymbol, fonts.Symbol, "")
	return c
}

func (c *PDFCanvas) registerFont(face Face, data []byte, fallbackStyle string) {
	if len(data) == 0 {
		c.fonts[face] = fontRef{family: "Helvetica", style: fallbackStyle}
		return
	}
	family := "bingkai-" + string(face)
	c.pdf.AddUTF8FontFromBytes(family, "", data)
	c.fonts[face] = fontRef{family: family, utf8: true}
}

func (c *PDFCanvas) AddPage() {
	c.pdf.AddPage()
}

func (c *PDFCanvas) Page() int {
	return c.pdf.PageNo() - 1
}

func (c *PDFCanvas) PageCount() int {
	return c.pdf.PageCount()
}

func (c *PDFCanvas) DrawTemplate(tpl *Template, x, y, w, h float64) error {
	id, ok := c.templates[tpl.Ref]
	if !ok {
		rs := io.ReadSeeker(bytes.NewReader(tpl.Data))
		id = c.importer.ImportPageFromStream(c.pdf, &rs, 1, "/MediaBox")
		if err := c.pdf.Error(); err != nil {
			return err
		}
		c.templates[tpl.Ref] = id
	}
	c.importer.UseImportedTemplate(c.pdf, id, x, c.height-(y+h), w, h)
	return c.pdf.Error()
}

// DrawImage embeds img. A failed registration is cleared from the document
// so that one bad thumbnail cannot poison the whole invoice.
func (c *PDFCanvas) DrawImage(img *Image, x, y, w, h float64) error {
	if err := c.pdf.Error(); err != nil {
		return err
	}
	opts := gofpdf.ImageOptions{ImageType: img.Format}
	name, ok := c.images[img.Ref]
	if !ok {
		sum := sha1.Sum([]byte(img.Ref))
		name = "thumb-" + hex.EncodeToString(sum[:])
		c.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(img.Data))
		if err := c.pdf.Error(); err != nil {
			c.pdf.ClearError()
			return fmt.Errorf("register image %s: %w", img.Ref, err)
		}
		c.images[img.Ref] = name
	}
	c.pdf.ImageOptions(name, x, c.height-(y+h), w, h, false, opts, 0, "")
	return nil
}

func (c *PDFCanvas) DrawText(text string, x, y float64, style TextStyle) {
	text = c.apply(text, style)
	c.pdf.SetTextColor(style.Color.R, style.Color.G, style.Color.B)
	c.pdf.Text(x, c.height-y, text)
}

func (c *PDFCanvas) TextWidth(text string, style TextStyle) float64 {
	return c.pdf.GetStringWidth(c.apply(text, style))
}

// apply selects the font for style and returns text encoded for it.
func (c *PDFCanvas) apply(text string, style TextStyle) string {
	ref, ok := c.fonts[style.Face]
	if !ok {
		ref = c.fonts[FaceRegular]
	}
	c.pdf.SetFont(ref.family, ref.style, style.Size)
	if ref.utf8 {
		return text
	}
	if style.Face == FaceSymbol {
		return SymbolFallback
	}
	return c.translate(text)
}

// Bytes serializes the document.
func (c *PDFCanvas) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := c.pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
