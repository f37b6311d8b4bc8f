package main

import (
	"github.com/smallbiznis/bingkai/internal/assets"
	"github.com/smallbiznis/bingkai/internal/cache"
	"github.com/smallbiznis/bingkai/internal/config"
	"github.com/smallbiznis/bingkai/internal/invoice"
	"github.com/smallbiznis/bingkai/internal/observability"
	"github.com/smallbiznis/bingkai/internal/providers"
	"github.com/smallbiznis/bingkai/internal/ratelimit"
	"github.com/smallbiznis/bingkai/internal/server"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		cache.Module,

		assets.Module,
		providers.Module,
		invoice.Module,
		ratelimit.Module, // invoice downloads are rate limited per client

		server.Module,
	)
	app.Run()
}
