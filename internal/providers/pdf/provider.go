package pdf

import (
	"context"

	"github.com/smallbiznis/bingkai/internal/invoice/layout"
	"go.uber.org/fx"
)

// Provider builds the background pages used when no template asset is
// configured. Both methods return a single-page PDF.
type Provider interface {
	GenerateHeader(ctx context.Context, cfg layout.Config) ([]byte, error)
	GenerateFooter(ctx context.Context, cfg layout.Config) ([]byte, error)
}

var Module = fx.Module("providers.pdf",
	fx.Provide(New),
)

// Brand is the fixed storefront identity printed on generated templates.
type Brand struct {
	Name    string
	Tagline string
	Contact string
	Bank    string
}

var DefaultBrand = Brand{
	Name:    "Bingkai",
	Tagline: "Bingkai foto & karikatur custom",
	Contact: "WhatsApp 0812-0000-0000 | halo@bingkai.id",
	Bank:    "Transfer BCA 000-000-0000 a.n. Bingkai",
}

type NoOpProvider struct{}

func (p *NoOpProvider) GenerateHeader(ctx context.Context, cfg layout.Config) ([]byte, error) {
	return nil, nil
}

func (p *NoOpProvider) GenerateFooter(ctx context.Context, cfg layout.Config) ([]byte, error) {
	return nil, nil
}
