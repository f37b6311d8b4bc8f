// Command invoicegen renders an invoice from a JSON cart file without the
// HTTP server.
//
//	invoicegen --cart cart.json --out ./dist
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/bingkai/internal/assets"
	"github.com/smallbiznis/bingkai/internal/cache"
	"github.com/smallbiznis/bingkai/internal/clock"
	"github.com/smallbiznis/bingkai/internal/config"
	invoicedomain "github.com/smallbiznis/bingkai/internal/invoice/domain"
	"github.com/smallbiznis/bingkai/internal/invoice/sequence"
	"github.com/smallbiznis/bingkai/internal/invoice/service"
	"github.com/smallbiznis/bingkai/internal/observability/logger"
	"github.com/smallbiznis/bingkai/internal/providers/pdf"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

type options struct {
	cart     string
	out      string
	layout   string
	header   string
	footer   string
	logLevel string
}

func main() {
	var opts options
	flags := pflag.NewFlagSet("invoicegen", pflag.ExitOnError)
	flags.StringVarP(&opts.cart, "cart", "c", "", "JSON file with items and customer fields")
	flags.StringVarP(&opts.out, "out", "o", ".", "directory the PDF is written to")
	flags.StringVar(&opts.layout, "layout", "", "layout YAML file (default: search layout.yml)")
	flags.StringVar(&opts.header, "header", "", "header template ref, overrides ASSETS_HEADER_TEMPLATE")
	flags.StringVar(&opts.footer, "footer", "", "footer template ref, overrides ASSETS_FOOTER_TEMPLATE")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "log level")
	_ = flags.Parse(os.Args[1:])

	if strings.TrimSpace(opts.cart) == "" {
		fmt.Fprintln(os.Stderr, "invoicegen: --cart is required")
		flags.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "invoicegen: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	cfg := config.Load()
	if opts.layout != "" {
		cfg.LayoutFile = opts.layout
	}
	if opts.header != "" {
		cfg.Assets.HeaderTemplate = opts.header
	}
	if opts.footer != "" {
		cfg.Assets.FooterTemplate = opts.footer
	}

	log, err := logger.New(nil, logger.Config{
		ServiceName: "invoicegen",
		Environment: cfg.Environment,
		Version:     cfg.AppVersion,
		Level:       opts.logLevel,
		Format:      "console",
	})
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	fsys := afero.NewOsFs()
	req, err := readCart(fsys, opts.cart)
	if err != nil {
		return err
	}

	holder, err := config.ReadLayoutHolder(cfg, log)
	if err != nil {
		return err
	}
	node, err := snowflake.NewNode(cfg.Invoice.NodeID)
	if err != nil {
		return err
	}
	rdb := cache.NewRedisClient(nil, cfg, log)
	if rdb != nil {
		defer rdb.Close()
	}

	direct := assets.NewDirect(cfg)
	svc := service.New(service.ServiceParam{
		Config:    cfg,
		Layout:    holder,
		Resources: direct,
		Images:    direct,
		Templates: pdf.New(),
		Sequencer: sequence.New(rdb),
		Clock:     clock.New(),
		Log:       log,
		GenID:     node,
	})

	doc, err := svc.Generate(ctx, req)
	if err != nil {
		return err
	}

	if err := fsys.MkdirAll(opts.out, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", opts.out, err)
	}
	path := filepath.Join(opts.out, doc.Filename)
	if err := afero.WriteFile(fsys, path, doc.Bytes, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	log.Info("invoice saved", zap.String("path", path), zap.String("invoice_number", doc.Number))
	fmt.Printf("%s\t%s\t%d page(s)\n", doc.Number, path, doc.Pages)
	return nil
}

func readCart(fsys afero.Fs, path string) (invoicedomain.GenerateRequest, error) {
	var req invoicedomain.GenerateRequest
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return req, fmt.Errorf("read cart: %w", err)
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return req, fmt.Errorf("parse cart %s: %w", path, err)
	}
	return req, nil
}
