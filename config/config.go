// Package config loads the daemon configuration from a JSON or YAML file
// with optional HG_-prefixed environment overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/hospigo/fleetd/core/sim"
	"github.com/hospigo/fleetd/infra/metrics"
	"github.com/hospigo/fleetd/infra/mqtt"
	"github.com/hospigo/fleetd/infra/roster"
	"github.com/hospigo/fleetd/infra/store"
)

type Config struct {
	HTTP    HTTPConfig     `json:"http"`
	Roster  roster.Config  `json:"roster"`
	Store   store.Config   `json:"store"`
	MQTT    mqtt.Config    `json:"mqtt"`
	Metrics metrics.Config `json:"metrics"`
	Sim     sim.Config     `json:"sim"`
}

// HTTPConfig configures the dashboard API listener.
type HTTPConfig struct {
	Addr string `json:"addr"`
}

// SetDefaults applies the standard API address.
func (c *HTTPConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
}

// Load reads the configuration file at path and applies HG_ environment
// overrides (HG_MQTT__BROKER sets mqtt.broker). An empty path yields a
// default configuration built from environment overrides alone.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	if err := k.Load(env.Provider("HG_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "hg_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.HTTP.SetDefaults()
	cfg.Roster.SetDefaults()
	cfg.MQTT.SetDefaults()
	cfg.Metrics.SetDefaults()
	cfg.Sim.SetDefaults()
	if err := cfg.MQTT.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
