package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/smallbiznis/bingkai/internal/assets"
	"github.com/smallbiznis/bingkai/internal/cache"
	"github.com/smallbiznis/bingkai/internal/config"
	"github.com/smallbiznis/bingkai/internal/invoice/domain"
	"github.com/smallbiznis/bingkai/internal/invoice/layout"
	"github.com/smallbiznis/bingkai/internal/invoice/render"
	"github.com/smallbiznis/bingkai/internal/invoice/templates"
	"github.com/smallbiznis/bingkai/internal/providers/pdf"
	"go.uber.org/zap"
	"golang.org/x/image/font/sfnt"
)

const builtinTemplateTTL = 24 * time.Hour

// Resources is the per-call resource set: both template pages and every
// font face.
type Resources struct {
	Header *render.Template
	Footer *render.Template
	Fonts  render.Fonts
}

// ResourceLoader resolves the configured template and font refs. Built-in
// templates depend on the layout, so they are memoized per page and footer
// size.
type ResourceLoader struct {
	loader    assets.Loader
	provider  pdf.Provider
	refs      config.AssetsConfig
	log       *zap.Logger
	templates cache.Cache[string, *render.Template]
}

func NewResourceLoader(loader assets.Loader, provider pdf.Provider, refs config.AssetsConfig, log *zap.Logger) *ResourceLoader {
	if log == nil {
		log = zap.NewNop()
	}
	if provider == nil {
		provider = pdf.New()
	}
	return &ResourceLoader{
		loader:    loader,
		provider:  provider,
		refs:      refs,
		log:       log.Named("invoice.resources"),
		templates: cache.NewTTLCache[string, *render.Template](),
	}
}

// Load fetches every resource. Any missing or unparsable resource is fatal.
func (l *ResourceLoader) Load(ctx context.Context, cfg layout.Config) (*Resources, error) {
	header, err := l.template(ctx, cfg, l.refs.HeaderTemplate, templates.DefaultHeaderRef)
	if err != nil {
		return nil, err
	}
	footer, err := l.template(ctx, cfg, l.refs.FooterTemplate, templates.DefaultFooterRef)
	if err != nil {
		return nil, err
	}

	res := &Resources{Header: header, Footer: footer}
	faces := []struct {
		ref string
		dst *[]byte
	}{
		{l.refs.FontRegular, &res.Fonts.Regular},
		{l.refs.FontMedium, &res.Fonts.Medium},
		{l.refs.FontSemiBold, &res.Fonts.SemiBold},
		{l.refs.FontBold, &res.Fonts.Bold},
		{l.refs.FontSymbol, &res.Fonts.Symbol},
	}
	for _, face := range faces {
		data, err := l.font(ctx, face.ref)
		if err != nil {
			return nil, err
		}
		*face.dst = data
	}
	return res, nil
}

func (l *ResourceLoader) template(ctx context.Context, cfg layout.Config, ref, builtin string) (*render.Template, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return l.builtin(ctx, cfg, builtin)
	}
	data, err := l.loader.Load(ctx, ref)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		l.log.Error("template load failed", zap.String("ref", ref), zap.Error(err))
		return nil, fmt.Errorf("%w: template not found at %s: %w", domain.ErrTemplateNotFound, ref, err)
	}
	return templates.Inspect(ref, data)
}

func (l *ResourceLoader) builtin(ctx context.Context, cfg layout.Config, ref string) (*render.Template, error) {
	key := fmt.Sprintf("%s:%.2fx%.2f:%.2fx%.2f", ref, cfg.PageWidth, cfg.PageHeight, cfg.Footer.Width, cfg.Footer.Height)
	if tpl, ok := l.templates.Get(key); ok {
		return tpl, nil
	}

	var (
		tpl *render.Template
		err error
	)
	if ref == templates.DefaultHeaderRef {
		tpl, err = templates.DefaultHeader(ctx, l.provider, cfg)
	} else {
		tpl, err = templates.DefaultFooter(ctx, l.provider, cfg)
	}
	if err != nil {
		return nil, err
	}
	l.log.Debug("built-in template generated", zap.String("ref", ref),
		zap.Float64("width", tpl.Width), zap.Float64("height", tpl.Height))
	l.templates.Set(key, tpl, builtinTemplateTTL)
	return tpl, nil
}

// font returns nil for an empty ref so the canvas falls back to Helvetica.
func (l *ResourceLoader) font(ctx context.Context, ref string) ([]byte, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, nil
	}
	data, err := l.loader.Load(ctx, ref)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		l.log.Error("font load failed", zap.String("ref", ref), zap.Error(err))
		return nil, fmt.Errorf("%w: font not found at %s: %w", domain.ErrFontNotFound, ref, err)
	}
	if _, err := sfnt.Parse(data); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrInvalidFont, ref, err)
	}
	return data, nil
}
