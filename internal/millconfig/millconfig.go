// Package millconfig holds the deployment-specific mill layout: how many
// machines each section runs. The counts shape freshly created entry
// aggregates; they are not validated against incoming entry arrays.
package millconfig

import (
	"errors"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"github.com/spinmill/milltrack/internal/production/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config is the reloadable mill layout.
type Config struct {
	Machines domain.MachineCounts `mapstructure:"machines"`
}

// Holder exposes the current mill configuration, hot-reloaded when the
// mill.yml file changes.
type Holder struct {
	current atomic.Value // holds Config
}

// Module provides the mill configuration holder.
var Module = fx.Module("millconfig",
	fx.Provide(NewHolder),
)

// NewHolder reads mill.yml, falling back to the reference layout when no
// file is present, and watches it for changes.
func NewHolder(log *zap.Logger) (*Holder, error) {
	v := viper.New()

	v.SetConfigName("mill")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/milltrack/config")
	v.AddConfigPath("/etc/milltrack")
	v.AddConfigPath(".")

	v.SetEnvPrefix("MILLTRACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := domain.DefaultMachineCounts()
	v.SetDefault("machines.carding", defaults.Carding)
	v.SetDefault("machines.drawing", defaults.Drawing)
	v.SetDefault("machines.framing", defaults.Framing)
	v.SetDefault("machines.simplex", defaults.Simplex)
	v.SetDefault("machines.spinning", defaults.Spinning)
	v.SetDefault("machines.autoconer", defaults.Autoconer)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}

	holder := &Holder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated Config
		if err := v.Unmarshal(&updated); err != nil {
			log.Warn("mill config reload failed", zap.Error(err))
			return
		}
		if err := validate(updated); err != nil {
			log.Warn("mill config reload ignored", zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("mill config reloaded", zap.String("file", e.Name))
	})

	return holder, nil
}

// Get returns the current mill configuration.
func (h *Holder) Get() Config {
	return h.current.Load().(Config)
}

// Counts returns the current machine counts.
func (h *Holder) Counts() domain.MachineCounts {
	return h.Get().Machines
}

// NewStaticHolder pins a fixed layout, for tests.
func NewStaticHolder(counts domain.MachineCounts) *Holder {
	holder := &Holder{}
	holder.current.Store(Config{Machines: counts})
	return holder
}

func validate(cfg Config) error {
	m := cfg.Machines
	for _, n := range []int{m.Carding, m.Drawing, m.Framing, m.Simplex, m.Spinning, m.Autoconer} {
		if n < 0 {
			return errors.New("machine counts cannot be negative")
		}
	}
	return nil
}
