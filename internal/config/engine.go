package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// EngineConfig holds the tunable calculation rules. It is read from
// engine.yml and may be hot-reloaded; calculations read a consistent copy.
type EngineConfig struct {
	MaxNightsPerLeg   int           `mapstructure:"maxNightsPerLeg"`
	CalculatorTimeout time.Duration `mapstructure:"calculatorTimeout"`
	StoreTimeout      time.Duration `mapstructure:"storeTimeout"`
}

func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		MaxNightsPerLeg:   10,
		CalculatorTimeout: 5 * time.Second,
		StoreTimeout:      2 * time.Second,
	}
}

type EngineConfigHolder struct {
	current atomic.Value // holds EngineConfig
}

// NewStaticEngineConfigHolder returns a holder that never reloads.
func NewStaticEngineConfigHolder(cfg EngineConfig) *EngineConfigHolder {
	holder := &EngineConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func NewEngineConfigHolder(cfg Config) (*EngineConfigHolder, error) {
	v := viper.New()

	if path := strings.TrimSpace(cfg.EngineConfigPath); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("engine")
		v.SetConfigType("yml")
		v.AddConfigPath("/etc/pcsengine")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("PCSENGINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultEngineConfig()
	v.SetDefault("engine.maxNightsPerLeg", defaults.MaxNightsPerLeg)
	v.SetDefault("engine.calculatorTimeout", defaults.CalculatorTimeout)
	v.SetDefault("engine.storeTimeout", defaults.StoreTimeout)

	fileLoaded := true
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		fileLoaded = false
	}

	var engine EngineConfig
	if err := v.UnmarshalKey("engine", &engine); err != nil {
		return nil, err
	}
	if err := validateEngineConfig(engine); err != nil {
		return nil, err
	}

	holder := NewStaticEngineConfigHolder(engine)
	if !fileLoaded {
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated EngineConfig
		if err := v.UnmarshalKey("engine", &updated); err != nil {
			log.Printf("[engine-config] reload failed: %v", err)
			return
		}
		if err := validateEngineConfig(updated); err != nil {
			log.Printf("[engine-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[engine-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *EngineConfigHolder) Get() EngineConfig {
	if h == nil {
		return DefaultEngineConfig()
	}
	cfg, ok := h.current.Load().(EngineConfig)
	if !ok {
		return DefaultEngineConfig()
	}
	return cfg
}

func validateEngineConfig(cfg EngineConfig) error {
	if cfg.MaxNightsPerLeg <= 0 {
		return errors.New("engine.maxNightsPerLeg must be positive")
	}
	if cfg.CalculatorTimeout <= 0 {
		return errors.New("engine.calculatorTimeout must be positive")
	}
	if cfg.StoreTimeout <= 0 {
		return errors.New("engine.storeTimeout must be positive")
	}
	return nil
}
