// Package templates validates pre-authored template pages and turns them
// into drawable render templates.
package templates

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/smallbiznis/bingkai/internal/invoice/domain"
	"github.com/smallbiznis/bingkai/internal/invoice/layout"
	"github.com/smallbiznis/bingkai/internal/invoice/render"
	"github.com/smallbiznis/bingkai/internal/providers/pdf"
)

var disableConfigDir sync.Once

func configuration() *model.Configuration {
	disableConfigDir.Do(api.DisableConfigDir)
	return model.NewDefaultConfiguration()
}

// Inspect validates data as a PDF and returns its first page as a template
// sized by the page's media box.
func Inspect(ref string, data []byte) (*render.Template, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", domain.ErrInvalidTemplate, ref)
	}
	conf := configuration()
	if err := api.Validate(bytes.NewReader(data), conf); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrInvalidTemplate, ref, err)
	}
	dims, err := api.PageDims(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrInvalidTemplate, ref, err)
	}
	if len(dims) == 0 || dims[0].Width <= 0 || dims[0].Height <= 0 {
		return nil, fmt.Errorf("%w: %s has no pages", domain.ErrInvalidTemplate, ref)
	}
	return &render.Template{
		Ref:    ref,
		Data:   data,
		Width:  dims[0].Width,
		Height: dims[0].Height,
	}, nil
}

// PageCount reports how many pages a serialized document has.
func PageCount(data []byte) (int, error) {
	return api.PageCount(bytes.NewReader(data), configuration())
}

const (
	DefaultHeaderRef = "builtin:header"
	DefaultFooterRef = "builtin:footer"
)

// DefaultHeader generates and inspects the built-in header page.
func DefaultHeader(ctx context.Context, p pdf.Provider, cfg layout.Config) (*render.Template, error) {
	data, err := p.GenerateHeader(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrInvalidTemplate, DefaultHeaderRef, err)
	}
	return Inspect(DefaultHeaderRef, data)
}

// DefaultFooter generates and inspects the built-in footer page.
func DefaultFooter(ctx context.Context, p pdf.Provider, cfg layout.Config) (*render.Template, error) {
	data, err := p.GenerateFooter(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrInvalidTemplate, DefaultFooterRef, err)
	}
	return Inspect(DefaultFooterRef, data)
}
