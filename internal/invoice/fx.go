package invoice

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/bingkai/internal/clock"
	"github.com/smallbiznis/bingkai/internal/config"
	"github.com/smallbiznis/bingkai/internal/invoice/sequence"
	"github.com/smallbiznis/bingkai/internal/invoice/service"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice.service",
	fx.Provide(
		clock.New,
		sequence.New,
		provideIDNode,
		service.NewService,
	),
)

func provideIDNode(cfg config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.Invoice.NodeID)
}
