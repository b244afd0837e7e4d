package extract

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Variant names accepted in routing files.
const (
	VariantHighwire = "highwire"
	VariantPLOS     = "plos"
)

// Subscriptions known to serve Highwire-hosted HTML.
var defaultHighwireISSNs = []string{"2053-9517", "2044-6055"}

// PLOS ONE.
const defaultPLOSISSN = "1932-6203"

type Route struct {
	ISSN    string `yaml:"issn"`
	Variant string `yaml:"variant"`
}

type RoutingConfig struct {
	Routes []Route `yaml:"routes"`
}

func LoadRouting(r io.Reader) (*RoutingConfig, error) {
	var cfg RoutingConfig
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode routing config: %w", err)
	}
	for _, route := range cfg.Routes {
		if route.ISSN == "" {
			return nil, fmt.Errorf("routing entry missing issn")
		}
		if route.Variant != VariantHighwire && route.Variant != VariantPLOS {
			return nil, fmt.Errorf("unknown extractor variant %q for issn %s", route.Variant, route.ISSN)
		}
	}
	return &cfg, nil
}

// NewRegistryFromRouting builds a registry from an explicit routing
// config.
func NewRegistryFromRouting(cfg *RoutingConfig, opts ClientOptions) *Registry {
	highwire := NewHighwire(opts)
	plos := NewPLOS()

	reg := NewRegistry()
	for _, route := range cfg.Routes {
		switch route.Variant {
		case VariantHighwire:
			reg.Register(route.ISSN, highwire)
		case VariantPLOS:
			reg.Register(route.ISSN, plos)
		}
	}
	return reg
}

// NewDefaultRegistry wires the built-in routes.
func NewDefaultRegistry(opts ClientOptions) *Registry {
	highwire := NewHighwire(opts)

	reg := NewRegistry()
	for _, issn := range defaultHighwireISSNs {
		reg.Register(issn, highwire)
	}
	reg.Register(defaultPLOSISSN, NewPLOS())
	return reg
}

// LoadRegistry reads a routing file when a path is configured and
// falls back to the default routes otherwise.
func LoadRegistry(path string, opts ClientOptions) (*Registry, error) {
	if path == "" {
		return NewDefaultRegistry(opts), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open routing config: %w", err)
	}
	defer f.Close()

	cfg, err := LoadRouting(f)
	if err != nil {
		return nil, err
	}
	return NewRegistryFromRouting(cfg, opts), nil
}
