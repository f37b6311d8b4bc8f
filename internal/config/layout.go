package config

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/smallbiznis/bingkai/internal/invoice/layout"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// LayoutHolder serves the current invoice layout and swaps it when the
// layout file changes. Invalid edits are logged and ignored.
type LayoutHolder struct {
	current atomic.Value // holds layout.Config
	v       *viper.Viper
	log     *zap.Logger
}

// NewLayoutHolder reads layout.yml from cfg.LayoutFile or the default search
// paths. A missing file yields layout.Default().
func NewLayoutHolder(cfg Config, log *zap.Logger) (*LayoutHolder, error) {
	return newLayoutHolder(cfg, log, true)
}

// ReadLayoutHolder reads the layout once and does not watch it, for one-shot
// commands.
func ReadLayoutHolder(cfg Config, log *zap.Logger) (*LayoutHolder, error) {
	return newLayoutHolder(cfg, log, false)
}

func newLayoutHolder(cfg Config, log *zap.Logger, watch bool) (*LayoutHolder, error) {
	if log == nil {
		log = zap.NewNop()
	}
	v := viper.New()

	if cfg.LayoutFile != "" {
		v.SetConfigFile(cfg.LayoutFile)
	} else {
		v.SetConfigName("layout")
		v.SetConfigType("yml")
		v.AddConfigPath("/var/lib/bingkai/config")
		v.AddConfigPath("/etc/bingkai")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("BINGKAI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	holder := &LayoutHolder{v: v, log: log.Named("config.layout")}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read layout: %w", err)
		}
		holder.log.Info("layout file not found, using defaults")
		holder.current.Store(layout.Default())
		return holder, nil
	}

	current, err := holder.decode()
	if err != nil {
		return nil, err
	}
	holder.current.Store(current)

	if watch {
		v.OnConfigChange(func(e fsnotify.Event) {
			holder.reload(e.Name)
		})
		v.WatchConfig()
	}

	return holder, nil
}

// NewStaticLayoutHolder always serves cfg.
func NewStaticLayoutHolder(cfg layout.Config) *LayoutHolder {
	holder := &LayoutHolder{log: zap.NewNop()}
	holder.current.Store(cfg)
	return holder
}

func (h *LayoutHolder) Get() layout.Config {
	return h.current.Load().(layout.Config)
}

func (h *LayoutHolder) decode() (layout.Config, error) {
	cfg := layout.Default()
	if err := h.v.UnmarshalKey("layout", &cfg); err != nil {
		return layout.Config{}, fmt.Errorf("decode layout: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return layout.Config{}, err
	}
	return cfg, nil
}

func (h *LayoutHolder) reload(source string) bool {
	if h.v == nil {
		return false
	}
	if err := h.v.ReadInConfig(); err != nil {
		h.log.Warn("layout reload failed", zap.String("file", source), zap.Error(err))
		return false
	}
	updated, err := h.decode()
	if err != nil {
		h.log.Warn("invalid layout ignored", zap.String("file", source), zap.Error(err))
		return false
	}
	h.current.Store(updated)
	h.log.Info("layout reloaded", zap.String("file", source))
	return true
}
