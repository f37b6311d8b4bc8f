package assets

import (
	"github.com/smallbiznis/bingkai/internal/cache"
	"github.com/smallbiznis/bingkai/internal/config"
	"github.com/spf13/afero"
	"go.uber.org/fx"
)

// Loaders holds the two loader chains the invoice service needs: resources
// go through the cache, thumbnails do not.
type Loaders struct {
	fx.Out

	Resources Loader `name:"resources"`
	Images    Loader `name:"images"`
}

var Module = fx.Module("assets",
	fx.Provide(provideLoaders),
)

func provideLoaders(cfg config.Config, c cache.AssetCache) Loaders {
	direct := NewDirect(cfg)
	return Loaders{
		Resources: NewCachedLoader(direct, c),
		Images:    direct,
	}
}

// NewDirect builds the uncached router for cfg: HTTP with the configured
// timeout and the OS filesystem rooted at cfg.Assets.Root.
func NewDirect(cfg config.Config) *Router {
	return NewRouter(
		NewHTTPLoader(cfg.Assets.HTTPTimeout),
		NewFSLoader(afero.NewOsFs(), cfg.Assets.Root),
	)
}
